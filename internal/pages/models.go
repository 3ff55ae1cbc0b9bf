package pages

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is the slice of a site page that navigation needs: its place in the
// tree, publication state and localized titles/paths.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID               uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ParentID         *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Slug             string     `bun:"slug,notnull,unique" json:"slug"`
	Live             bool       `bun:"live,notnull,default:false" json:"live"`
	Public           bool       `bun:"public,notnull,default:true" json:"public"`
	ShowInMenus      bool       `bun:"show_in_menus,notnull,default:false" json:"show_in_menus"`
	FirstPublishedAt *time.Time `bun:"first_published_at" json:"first_published_at,omitempty"`
	LastPublishedAt  *time.Time `bun:"last_published_at" json:"last_published_at,omitempty"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Translations []*PageTranslation `bun:"rel:has-many,join:id=page_id" json:"translations,omitempty"`
}

// PageTranslation carries the title and locale-relative path of a page in
// one locale. Path never includes the locale segment.
type PageTranslation struct {
	bun.BaseModel `bun:"table:page_translations,alias:pt"`

	ID     uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Locale string    `bun:"locale,notnull" json:"locale"`
	Title  string    `bun:"title,notnull" json:"title"`
	Path   string    `bun:"path,notnull" json:"path"`
}

// Translation returns the translation for locale, then for fallback, then
// the first one stored. It returns nil for a page with no translations.
func (p *Page) Translation(locale, fallback string) *PageTranslation {
	if p == nil || len(p.Translations) == 0 {
		return nil
	}
	for _, want := range []string{locale, fallback} {
		want = strings.ToLower(strings.TrimSpace(want))
		if want == "" {
			continue
		}
		for _, tr := range p.Translations {
			if tr != nil && strings.EqualFold(tr.Locale, want) {
				return tr
			}
		}
	}
	return p.Translations[0]
}

// Title returns the localized title, falling back to the slug.
func (p *Page) Title(locale, fallback string) string {
	if tr := p.Translation(locale, fallback); tr != nil && strings.TrimSpace(tr.Title) != "" {
		return tr.Title
	}
	if p == nil {
		return ""
	}
	return p.Slug
}

func clonePage(p *Page) *Page {
	if p == nil {
		return nil
	}
	out := *p
	if p.ParentID != nil {
		parent := *p.ParentID
		out.ParentID = &parent
	}
	out.FirstPublishedAt = cloneTime(p.FirstPublishedAt)
	out.LastPublishedAt = cloneTime(p.LastPublishedAt)
	if p.Translations != nil {
		out.Translations = make([]*PageTranslation, 0, len(p.Translations))
		for _, tr := range p.Translations {
			if tr == nil {
				continue
			}
			copied := *tr
			out.Translations = append(out.Translations, &copied)
		}
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
