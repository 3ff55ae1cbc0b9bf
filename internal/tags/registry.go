package tags

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/identity"
	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// CreateTagRequest registers a tag. An empty Slug is derived from Name and
// a zero Type defaults to TypeKeyword.
type CreateTagRequest struct {
	Set  string
	Name string
	Slug string
	Type Type
}

// Registry is the tag service used by page filters and admin tooling.
type Registry struct {
	repo   Repository
	logger interfaces.Logger
	now    func() time.Time
}

type Option func(*Registry)

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.now = clock
		}
	}
}

func NewRegistry(repo Repository, opts ...Option) *Registry {
	r := &Registry{repo: repo, logger: logging.NoOp(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Create(ctx context.Context, req CreateTagRequest) (*Tag, error) {
	set := strings.TrimSpace(req.Set)
	if set == "" {
		return nil, ErrSetRequired
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	typ := req.Type
	if typ == 0 {
		typ = TypeKeyword
	}
	if !typ.Valid() {
		return nil, ErrTypeInvalid
	}

	tagSlug := strings.TrimSpace(req.Slug)
	if tagSlug == "" {
		normalized, err := slug.Normalize(name)
		if err != nil {
			return nil, ErrSlugInvalid
		}
		tagSlug = normalized
	}
	if !ValidSlug(tagSlug) {
		return nil, ErrSlugInvalid
	}
	if _, err := r.repo.GetBySlug(ctx, set, tagSlug); err == nil {
		return nil, ErrSlugExists
	} else if !errors.Is(err, ErrTagNotFound) {
		return nil, err
	}

	created, err := r.repo.Create(ctx, &Tag{
		ID:        identity.TagID(set, tagSlug),
		Set:       set,
		Name:      name,
		Slug:      tagSlug,
		Type:      typ,
		CreatedAt: r.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("tag.created", "set", set, "slug", tagSlug, "type", typ.String())
	return created, nil
}

// ValidSlug accepts letters and digits of any script plus '-' and '_'.
func ValidSlug(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}

func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*Tag, error) {
	return r.repo.GetByID(ctx, id)
}

func (r *Registry) GetBySlug(ctx context.Context, set, slug string) (*Tag, error) {
	return r.repo.GetBySlug(ctx, strings.TrimSpace(set), strings.TrimSpace(slug))
}

func (r *Registry) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, id)
}

func (r *Registry) Assign(ctx context.Context, pageID uuid.UUID, tagIDs ...uuid.UUID) error {
	return r.repo.Assign(ctx, pageID, tagIDs)
}

func (r *Registry) Unassign(ctx context.Context, pageID uuid.UUID, tagIDs ...uuid.UUID) error {
	return r.repo.Unassign(ctx, pageID, tagIDs)
}

// InUse lists tags of set attached to at least one page.
func (r *Registry) InUse(ctx context.Context, set string) ([]*Tag, error) {
	return r.repo.ListInUse(ctx, set, nil)
}

func (r *Registry) TypeInUse(ctx context.Context, set string, typ Type) ([]*Tag, error) {
	return r.repo.ListInUse(ctx, set, &typ)
}

// DictsForSlugs returns name/slug pairs in input order, dropping blanks,
// duplicates and unknown slugs.
func (r *Registry) DictsForSlugs(ctx context.Context, set string, slugs []string) ([]TagRef, error) {
	ordered := uniqueSlugs(slugs)
	if len(ordered) == 0 {
		return []TagRef{}, nil
	}
	found, err := r.repo.ListBySlugs(ctx, set, ordered)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(found))
	for _, tag := range found {
		names[tag.Slug] = tag.Name
	}
	out := make([]TagRef, 0, len(ordered))
	for _, s := range ordered {
		if name, ok := names[s]; ok {
			out = append(out, TagRef{Name: name, Slug: s})
		}
	}
	return out, nil
}

// FilterPages keeps the candidates carrying any of the given tags, most
// matches first, then newest first publication, then slug.
func (r *Registry) FilterPages(ctx context.Context, set string, slugs []string, candidates []*pages.Page) ([]*pages.Page, error) {
	ordered := uniqueSlugs(slugs)
	if len(ordered) == 0 {
		return candidates, nil
	}
	found, err := r.repo.ListBySlugs(ctx, set, ordered)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return []*pages.Page{}, nil
	}
	ids := make([]uuid.UUID, 0, len(found))
	for _, tag := range found {
		ids = append(ids, tag.ID)
	}
	counts, err := r.repo.MatchCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*pages.Page, 0, len(candidates))
	for _, p := range candidates {
		if p != nil && counts[p.ID] > 0 {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b *pages.Page) int {
		if d := counts[b.ID] - counts[a.ID]; d != 0 {
			return d
		}
		if c := comparePublished(b.FirstPublishedAt, a.FirstPublishedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return out, nil
}

func comparePublished(x, y *time.Time) int {
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return -1
	case y == nil:
		return 1
	}
	return x.Compare(*y)
}

// UnassignPage removes a page from every tag, e.g. once the page is gone.
func (r *Registry) UnassignPage(ctx context.Context, pageID uuid.UUID) error {
	return r.repo.UnassignPage(ctx, pageID)
}

// CleanupUnused deletes tags of set that no page carries.
func (r *Registry) CleanupUnused(ctx context.Context, set string) (int, error) {
	removed, err := r.repo.DeleteUnused(ctx, set)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		r.logger.Info("tags.cleanup", "set", set, "removed", removed)
	}
	return removed, nil
}

func uniqueSlugs(slugs []string) []string {
	seen := make(map[string]struct{}, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, s := range slugs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// SplitSlugs parses a comma separated filter value such as "?tag=a,b".
func SplitSlugs(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return uniqueSlugs(strings.Split(value, ","))
}
