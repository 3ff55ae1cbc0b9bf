package links

import (
	"context"
	"fmt"
	"strings"

	"github.com/enzedonline/enzedonline-sub000/internal/locales"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
)

// Alternate is one entry of a language switcher: the page as served in
// Locale. Untranslated pages point at their fallback translation.
type Alternate struct {
	Locale     string `json:"locale"`
	URL        string `json:"url"`
	Active     bool   `json:"active"`
	Translated bool   `json:"translated"`
}

// Alternates returns the URL of page in every code, in the given order.
// The active locale is flagged so switchers can render it as current.
func (r *Resolver) Alternates(ctx context.Context, page *pages.Page, active string, codes []string) ([]Alternate, error) {
	if page == nil {
		return nil, ErrPageNotFound
	}
	active = r.locale(ctx, active)

	out := make([]Alternate, 0, len(codes))
	for _, code := range codes {
		code = locales.Normalize(code)
		if code == "" {
			continue
		}
		url, err := r.builder.PageURL(ctx, page, code)
		if err != nil {
			return nil, fmt.Errorf("links: alternate %s for page %s: %w", code, page.ID, err)
		}
		out = append(out, Alternate{
			Locale:     code,
			URL:        url,
			Active:     code == active,
			Translated: hasTranslation(page, code),
		})
	}
	return out, nil
}

func hasTranslation(page *pages.Page, code string) bool {
	for _, tr := range page.Translations {
		if tr != nil && strings.EqualFold(tr.Locale, code) {
			return true
		}
	}
	return false
}
