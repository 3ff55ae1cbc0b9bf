package fragments

import (
	"context"
	"errors"
	"time"

	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// Purger removes rendered fragments after content changes. It satisfies
// the purger ports of the menus and pages services.
type Purger struct {
	store  interfaces.FragmentStore
	logger interfaces.Logger
}

type PurgerOption func(*Purger)

func WithLogger(logger interfaces.Logger) PurgerOption {
	return func(p *Purger) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPurger(store interfaces.FragmentStore, opts ...PurgerOption) *Purger {
	p := &Purger{store: store, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PurgeMenus drops every menu fragment. Menus render on most pages so a
// single menu write invalidates them all.
func (p *Purger) PurgeMenus(ctx context.Context) error {
	return p.purge(ctx, "menus", patterns(NameMenu)...)
}

func (p *Purger) PurgePage(ctx context.Context, slug string) error {
	if slug == "" {
		return nil
	}
	return p.purge(ctx, "page", patterns(NamePage, slug)...)
}

func (p *Purger) PurgeAll(ctx context.Context) error {
	return p.purge(ctx, "all", KeyPrefix+".*")
}

func (p *Purger) purge(ctx context.Context, scope string, globs ...string) error {
	if p == nil || p.store == nil {
		return nil
	}
	var (
		removed int
		errs    []error
	)
	for _, glob := range globs {
		n, err := p.store.DeletePattern(ctx, glob)
		removed += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		p.logger.Error("fragments.purge_failed", "scope", scope, "error", err)
		return err
	}
	p.logger.Debug("fragments.purged", "scope", scope, "removed", removed)
	return nil
}

// Cached returns the fragment under key, rendering and storing it on a miss.
// Store failures fall back to rendering.
func Cached(ctx context.Context, store interfaces.FragmentStore, key string, ttl time.Duration, render func() ([]byte, error)) ([]byte, error) {
	if store == nil {
		return render()
	}
	if value, ok, err := store.Get(ctx, key); err == nil && ok {
		return value, nil
	}
	value, err := render()
	if err != nil {
		return nil, err
	}
	_ = store.Set(ctx, key, value, ttl)
	return value, nil
}
