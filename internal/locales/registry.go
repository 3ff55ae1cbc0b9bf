package locales

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Registry is the read-only set of locales a request can resolve to. The
// default locale is always the first code.
type Registry struct {
	codes   []string
	known   map[string]struct{}
	matcher language.Matcher
}

// NewRegistry builds a registry from a default code plus extra codes.
// Duplicates and blanks are ignored.
func NewRegistry(defaultCode string, codes ...string) *Registry {
	r := &Registry{known: map[string]struct{}{}}
	for _, code := range append([]string{defaultCode}, codes...) {
		code = Normalize(code)
		if code == "" {
			continue
		}
		if _, ok := r.known[code]; ok {
			continue
		}
		r.known[code] = struct{}{}
		r.codes = append(r.codes, code)
	}
	if len(r.codes) == 0 {
		r.codes = []string{"en"}
		r.known["en"] = struct{}{}
	}

	tags := make([]language.Tag, 0, len(r.codes))
	for _, code := range r.codes {
		tags = append(tags, language.Make(code))
	}
	r.matcher = language.NewMatcher(tags)
	return r
}

// LoadRegistry reads the active locales from repo. fallbackDefault is used
// when no stored locale is flagged as default.
func LoadRegistry(ctx context.Context, repo Repository, fallbackDefault string) (*Registry, error) {
	records, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("locales: load registry: %w", err)
	}
	def := fallbackDefault
	codes := make([]string, 0, len(records))
	for _, record := range records {
		if !record.IsActive {
			continue
		}
		if record.IsDefault {
			def = record.Code
		}
		codes = append(codes, record.Code)
	}
	return NewRegistry(def, codes...), nil
}

func (r *Registry) Default() string {
	return r.codes[0]
}

func (r *Registry) Codes() []string {
	return slices.Clone(r.codes)
}

func (r *Registry) IsKnown(code string) bool {
	_, ok := r.known[Normalize(code)]
	return ok
}

// Resolve returns code when it is known and the default otherwise.
func (r *Registry) Resolve(code string) string {
	code = Normalize(code)
	if _, ok := r.known[code]; ok {
		return code
	}
	return r.Default()
}

// Negotiate picks the best supported locale for an Accept-Language header.
func (r *Registry) Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return r.Default()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.Default()
	}
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(r.codes) {
		return r.Default()
	}
	return r.codes[index]
}

// HasLocalePrefix reports whether the first segment of path is a known
// locale code, e.g. "/es/blog/" for a registry containing "es".
func (r *Registry) HasLocalePrefix(path string) bool {
	trimmed := strings.TrimPrefix(path, "/")
	segment, _, _ := strings.Cut(trimmed, "/")
	if segment == "" {
		return false
	}
	_, ok := r.known[strings.ToLower(segment)]
	return ok
}

// Normalize lowercases a language tag and reduces it to its base language.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}
