package links

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Field names used in validation errors, matching the link form fields.
const (
	FieldInternalPage = "internal_page"
	FieldURL          = "url_link"
)

var (
	ErrPageNotFound    = errors.New("links: linked page not found")
	ErrNoTarget        = errors.New("links: link has neither a page nor a url")
	ErrBuilderMissing  = errors.New("links: page url builder not configured")
	ErrRouteGroupEmpty = errors.New("links: no route group for locale")
)

// Target is a stored link. At most one of PageID and URL is expected to be
// set; Suffix only applies to page links.
type Target struct {
	PageID *uuid.UUID `json:"internal_page,omitempty"`
	URL    string     `json:"url_link,omitempty"`
	Suffix string     `json:"suffix,omitempty"`
}

func (t Target) HasPage() bool {
	return t.PageID != nil && *t.PageID != uuid.Nil
}

func (t Target) HasURL() bool {
	return strings.TrimSpace(t.URL) != ""
}

// Spec is a Target as configured on a block or form; Required links must
// name exactly one destination.
type Spec struct {
	Target
	Required bool
}
