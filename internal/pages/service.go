package pages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// Service writes pages and fans the change out to fragment purging and
// registered hooks. Reads go straight to the repository.
type Service interface {
	Create(ctx context.Context, req SavePageRequest) (*Page, error)
	Update(ctx context.Context, id uuid.UUID, req SavePageRequest) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	Children(ctx context.Context, parentID uuid.UUID, query ChildQuery) ([]*Page, error)
}

// SavePageRequest is the writable shape of a page.
type SavePageRequest struct {
	ID               uuid.UUID
	ParentID         *uuid.UUID
	Slug             string
	Live             bool
	Public           bool
	ShowInMenus      bool
	FirstPublishedAt *time.Time
	LastPublishedAt  *time.Time
	Translations     []TranslationInput
}

type TranslationInput struct {
	Locale string
	Title  string
	Path   string
}

// ChangeKind tags a ChangeEvent.
type ChangeKind string

const (
	ChangeSaved   ChangeKind = "saved"
	ChangeDeleted ChangeKind = "deleted"
)

type ChangeEvent struct {
	Kind   ChangeKind
	PageID uuid.UUID
	Slug   string
}

// ChangeHook runs synchronously after a page write succeeds. Errors are
// logged, never returned to the writer.
type ChangeHook func(ctx context.Context, event ChangeEvent) error

// FragmentPurger removes cached fragments rendered for a page.
type FragmentPurger interface {
	PurgePage(ctx context.Context, slug string) error
}

type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithFragmentPurger(purger FragmentPurger) ServiceOption {
	return func(s *service) {
		s.purger = purger
	}
}

func WithChangeHook(hook ChangeHook) ServiceOption {
	return func(s *service) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type service struct {
	repo   Repository
	purger FragmentPurger
	hooks  []ChangeHook
	logger interfaces.Logger
	now    func() time.Time
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req SavePageRequest) (*Page, error) {
	page, err := s.buildPage(req)
	if err != nil {
		return nil, err
	}
	if page.ID == uuid.Nil {
		page.ID = uuid.New()
	}
	page.CreatedAt = s.now().UTC()

	created, err := s.repo.Create(ctx, page)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, ChangeEvent{Kind: ChangeSaved, PageID: created.ID, Slug: created.Slug})
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req SavePageRequest) (*Page, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.ID = id
	page, err := s.buildPage(req)
	if err != nil {
		return nil, err
	}
	page.CreatedAt = current.CreatedAt

	updated, err := s.repo.Update(ctx, page)
	if err != nil {
		return nil, err
	}
	if current.Slug != updated.Slug {
		s.purge(ctx, current.Slug)
	}
	s.changed(ctx, ChangeEvent{Kind: ChangeSaved, PageID: updated.ID, Slug: updated.Slug})
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, ChangeEvent{Kind: ChangeDeleted, PageID: id, Slug: current.Slug})
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *service) Children(ctx context.Context, parentID uuid.UUID, query ChildQuery) ([]*Page, error) {
	return s.repo.ListChildren(ctx, parentID, query)
}

func (s *service) buildPage(req SavePageRequest) (*Page, error) {
	normalized, err := slug.Normalize(req.Slug)
	if err != nil || strings.TrimSpace(normalized) == "" {
		return nil, ErrSlugRequired
	}
	if req.ParentID != nil && *req.ParentID == req.ID && req.ID != uuid.Nil {
		return nil, ErrParentSelf
	}

	page := &Page{
		ID:               req.ID,
		ParentID:         req.ParentID,
		Slug:             normalized,
		Live:             req.Live,
		Public:           req.Public,
		ShowInMenus:      req.ShowInMenus,
		FirstPublishedAt: req.FirstPublishedAt,
		LastPublishedAt:  req.LastPublishedAt,
		UpdatedAt:        s.now().UTC(),
	}
	for _, tr := range req.Translations {
		path := "/" + strings.Trim(strings.TrimSpace(tr.Path), "/")
		if path != "/" {
			path += "/"
		}
		page.Translations = append(page.Translations, &PageTranslation{
			Locale: strings.ToLower(strings.TrimSpace(tr.Locale)),
			Title:  strings.TrimSpace(tr.Title),
			Path:   path,
		})
	}
	return page, nil
}

func (s *service) changed(ctx context.Context, event ChangeEvent) {
	s.purge(ctx, event.Slug)
	for _, hook := range s.hooks {
		if err := hook(ctx, event); err != nil {
			s.logger.Warn("pages.change_hook.failed", "page_id", event.PageID, "kind", string(event.Kind), "error", err)
		}
	}
}

func (s *service) purge(ctx context.Context, slug string) {
	if s.purger == nil || slug == "" {
		return
	}
	if err := s.purger.PurgePage(ctx, slug); err != nil {
		s.logger.Warn("pages.fragments.purge_failed", "slug", slug, "error", err)
	}
}

// IsNotFound reports whether err means the page does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPageNotFound)
}
