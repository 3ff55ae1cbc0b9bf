package menus

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Collection keys used in ValidationError.Fields.
const (
	CollectionLinks     = "link_items"
	CollectionSubMenus  = "submenu_items"
	CollectionAutoFills = "autofill_items"
)

const (
	msgLinkNothingToShow = "Title, icon and linked page cannot all be left empty."
	msgLinkNoTarget      = "Linked URL and Linked Page cannot both be left empty."
	msgLinkBothTargets   = "Choose either a linked page or a linked URL, not both."
	msgSubMenuRequired   = "Sub Menu ID cannot be left blank."
	msgSubMenuSelf       = "Parent Menu cannot be a Sub Menu of itself."
	msgAutoFillPage      = "Linked page cannot be left empty."
)

// Validate checks a menu and all of its items. It returns a
// *ValidationError or nil.
func Validate(menu *Menu) error {
	if menu == nil {
		return &ValidationError{Fields: validation.Errors{"title": validation.NewError("validation_required", "cannot be blank")}}
	}

	errs := validation.Errors{}
	if strings.TrimSpace(menu.Title) == "" {
		errs["title"] = validation.NewError("validation_required", "cannot be blank")
	}

	collect(errs, CollectionSubMenus, len(menu.SubMenuItems), func(i int) validation.Errors {
		return validateSubMenu(menu.ID, menu.SubMenuItems[i])
	})
	collect(errs, CollectionLinks, len(menu.LinkItems), func(i int) validation.Errors {
		return validateLink(menu.LinkItems[i])
	})
	collect(errs, CollectionAutoFills, len(menu.AutoFillItems), func(i int) validation.Errors {
		return validateAutoFill(menu.AutoFillItems[i])
	})

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func collect(errs validation.Errors, key string, n int, check func(int) validation.Errors) {
	items := validation.Errors{}
	for i := 0; i < n; i++ {
		if itemErrs := check(i); len(itemErrs) > 0 {
			items[strconv.Itoa(i)] = itemErrs
		}
	}
	if len(items) > 0 {
		errs[key] = items
	}
}

func validateBase(base *ItemBase, errs validation.Errors) {
	if !normalizeShowWhen(base.ShowWhen).Valid() {
		errs["show_when"] = validation.NewError("validation_in_invalid", "must be always, logged_in or not_logged_in")
	}
}

func validateLink(item *LinkItem) validation.Errors {
	errs := validation.Errors{}
	if item == nil {
		return errs
	}
	validateBase(&item.ItemBase, errs)

	hasPage := item.PageID != nil && *item.PageID != uuid.Nil
	hasURL := strings.TrimSpace(item.URL) != ""

	if strings.TrimSpace(item.Title) == "" && strings.TrimSpace(item.Icon) == "" && !hasPage {
		err := validation.NewError("validation_menu_link_empty", msgLinkNothingToShow)
		errs["title"] = err
		errs["icon"] = err
		errs["link_page"] = err
	}
	switch {
	case !hasPage && !hasURL:
		err := validation.NewError("validation_menu_link_target", msgLinkNoTarget)
		errs["link_url"] = err
		errs["link_page"] = err
	case hasPage && hasURL:
		err := validation.NewError("validation_menu_link_exclusive", msgLinkBothTargets)
		errs["link_url"] = err
		errs["link_page"] = err
	}
	return errs
}

func validateSubMenu(menuID uuid.UUID, item *SubMenuItem) validation.Errors {
	errs := validation.Errors{}
	if item == nil {
		return errs
	}
	validateBase(&item.ItemBase, errs)

	switch {
	case item.TargetMenuID == uuid.Nil:
		errs["submenu_id"] = validation.NewError("validation_required", msgSubMenuRequired)
	case menuID != uuid.Nil && item.TargetMenuID == menuID:
		errs["submenu_id"] = validation.NewError("validation_menu_self_reference", msgSubMenuSelf)
	}
	if !normalizeDisplayOption(item.DisplayOption).Valid() {
		errs["display_option"] = validation.NewError("validation_in_invalid", "must be text, icon or both")
	}
	return errs
}

func validateAutoFill(item *AutoFillItem) validation.Errors {
	errs := validation.Errors{}
	if item == nil {
		return errs
	}
	validateBase(&item.ItemBase, errs)

	if item.SourcePageID == uuid.Nil {
		errs["link_page"] = validation.NewError("validation_required", msgAutoFillPage)
	}
	if err := validation.Validate(item.MaxItems, validation.Required, validation.Min(1)); err != nil {
		errs["max_items"] = err
	}
	if item.OrderBy != "" && !item.OrderBy.Valid() {
		errs["order_by"] = validation.NewError("validation_in_invalid", "must be -last_published_at, -first_published_at or first_published_at")
	}
	return errs
}
