package menus

import "strings"

// ShowWhen controls which callers see an item.
type ShowWhen string

const (
	ShowAlways      ShowWhen = "always"
	ShowLoggedIn    ShowWhen = "logged_in"
	ShowNotLoggedIn ShowWhen = "not_logged_in"
)

func (s ShowWhen) Valid() bool {
	switch s {
	case ShowAlways, ShowLoggedIn, ShowNotLoggedIn:
		return true
	}
	return false
}

// Allows reports whether a caller with the given authentication state may
// see the item.
func (s ShowWhen) Allows(authenticated bool) bool {
	switch s {
	case ShowLoggedIn:
		return authenticated
	case ShowNotLoggedIn:
		return !authenticated
	default:
		return true
	}
}

// DisplayOption selects how a sub-menu heading renders.
type DisplayOption string

const (
	DisplayText DisplayOption = "text"
	DisplayIcon DisplayOption = "icon"
	DisplayBoth DisplayOption = "both"
)

func (d DisplayOption) Valid() bool {
	switch d {
	case DisplayText, DisplayIcon, DisplayBoth:
		return true
	}
	return false
}

// ItemKind tags the concrete type behind an Item.
type ItemKind string

const (
	KindLink     ItemKind = "link"
	KindSubMenu  ItemKind = "submenu"
	KindAutoFill ItemKind = "autofill"
)

// EntryKind tags a resolved Entry for the renderer.
type EntryKind string

const (
	EntryLink           EntryKind = "link"
	EntrySubMenu        EntryKind = "submenu"
	EntryAutoFillSource EntryKind = "autofill_source"
	EntryAutoFillChild  EntryKind = "autofill_child"
)

const (
	DefaultDisplayOrder = 200
	DefaultMaxItems     = 4
)

func normalizeShowWhen(v ShowWhen) ShowWhen {
	v = ShowWhen(strings.ToLower(strings.TrimSpace(string(v))))
	if v == "" {
		return ShowAlways
	}
	return v
}

func normalizeDisplayOption(v DisplayOption) DisplayOption {
	v = DisplayOption(strings.ToLower(strings.TrimSpace(string(v))))
	if v == "" {
		return DisplayText
	}
	return v
}
