// Package menuseed reads menu definitions from front-matter documents so
// navigation can be versioned alongside site content.
package menuseed

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
)

// Item kinds accepted in the items list.
const (
	KindLink     = "link"
	KindSubMenu  = "submenu"
	KindAutoFill = "autofill"
)

var (
	ErrTitleRequired = errors.New("menuseed: title is required")
	ErrKindUnknown   = errors.New("menuseed: unknown item kind")
)

// Document is one menu definition. Body holds whatever follows the front
// matter and is kept for editors, not interpreted.
type Document struct {
	Path  string `yaml:"-"`
	Code  string `yaml:"code"`
	Title string `yaml:"title"`
	Icon  string `yaml:"icon"`
	Items []Item `yaml:"items"`
	Body  []byte `yaml:"-"`
}

// Item is a single menu item. Kind selects which of the remaining fields
// apply.
type Item struct {
	Kind     string `yaml:"kind"`
	Order    *int   `yaml:"order"`
	ShowWhen string `yaml:"show_when"`
	Divider  bool   `yaml:"divider"`

	Title  string `yaml:"title"`
	Icon   string `yaml:"icon"`
	Page   string `yaml:"page"`
	URL    string `yaml:"url"`
	Suffix string `yaml:"suffix"`

	Menu    string `yaml:"menu"`
	Display string `yaml:"display"`

	Description     string `yaml:"description"`
	IncludeSource   bool   `yaml:"include_source"`
	OnlyMenuVisible bool   `yaml:"only_menu_visible"`
	MaxItems        *int   `yaml:"max_items"`
	OrderBy         string `yaml:"order_by"`
}

// Parse reads a document from source. YAML, TOML and JSON front matter are
// accepted.
func Parse(source []byte) (*Document, error) {
	var doc Document
	body, err := frontmatter.Parse(bytes.NewReader(source), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	doc.Body = bytes.TrimSpace(body)
	if strings.TrimSpace(doc.Title) == "" {
		return nil, ErrTitleRequired
	}
	return &doc, nil
}

// Request converts the document into a menu save request.
func (d *Document) Request() (menus.SaveMenuRequest, error) {
	req := menus.SaveMenuRequest{
		Code:  strings.TrimSpace(d.Code),
		Title: strings.TrimSpace(d.Title),
		Icon:  strings.TrimSpace(d.Icon),
	}
	for i, item := range d.Items {
		base := menus.ItemInput{
			ShowWhen:     menus.ShowWhen(item.ShowWhen),
			DividerAfter: item.Divider,
			DisplayOrder: item.Order,
		}
		switch strings.ToLower(strings.TrimSpace(item.Kind)) {
		case "", KindLink:
			req.Links = append(req.Links, menus.LinkItemInput{
				ItemInput: base,
				Title:     item.Title,
				Icon:      item.Icon,
				PageSlug:  item.Page,
				URL:       item.URL,
				Suffix:    item.Suffix,
			})
		case KindSubMenu:
			req.SubMenus = append(req.SubMenus, menus.SubMenuItemInput{
				ItemInput:     base,
				MenuCode:      item.Menu,
				DisplayOption: menus.DisplayOption(item.Display),
			})
		case KindAutoFill:
			order, ok := pages.ParseOrderBy(item.OrderBy)
			if !ok {
				return menus.SaveMenuRequest{}, fmt.Errorf("menuseed: item %d: order_by %q is invalid", i, item.OrderBy)
			}
			req.AutoFills = append(req.AutoFills, menus.AutoFillItemInput{
				ItemInput:         base,
				Description:       item.Description,
				PageSlug:          item.Page,
				IncludeSourcePage: item.IncludeSource,
				OnlyMenuVisible:   item.OnlyMenuVisible,
				MaxItems:          item.MaxItems,
				OrderBy:           order,
			})
		default:
			return menus.SaveMenuRequest{}, fmt.Errorf("%w: item %d: %q", ErrKindUnknown, i, item.Kind)
		}
	}
	return req, nil
}
