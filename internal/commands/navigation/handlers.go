package navigationcmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/commands"
	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

var ErrDependencyMissing = errors.New("navigation command: dependency not configured")

type MenuCache interface {
	InvalidateCache(ctx context.Context) error
}

type PagePurger interface {
	PurgePage(ctx context.Context, slug string) error
}

type TagCleaner interface {
	UnassignPage(ctx context.Context, pageID uuid.UUID) error
	CleanupUnused(ctx context.Context, set string) (int, error)
}

// Deps lists the services the handlers act on. A nil dependency makes its
// handler fail with ErrDependencyMissing.
type Deps struct {
	Menus  MenuCache
	Pages  PagePurger
	Tags   TagCleaner
	Logger interfaces.Logger
}

// Handlers bundles one go-command handler per navigation message.
type Handlers struct {
	InvalidateMenuCache *commands.Handler[InvalidateMenuCache]
	PurgePageFragments  *commands.Handler[PurgePageFragments]
	CleanupTags         *commands.Handler[CleanupTags]

	logger interfaces.Logger
}

func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	h := &Handlers{logger: logger}

	h.InvalidateMenuCache = commands.NewHandler(func(ctx context.Context, _ InvalidateMenuCache) error {
		if deps.Menus == nil {
			return ErrDependencyMissing
		}
		return deps.Menus.InvalidateCache(ctx)
	},
		commands.WithLogger[InvalidateMenuCache](logger),
		commands.WithOperation[InvalidateMenuCache]("menus.cache.invalidate"),
	)

	h.PurgePageFragments = commands.NewHandler(func(ctx context.Context, msg PurgePageFragments) error {
		if deps.Pages == nil {
			return ErrDependencyMissing
		}
		return deps.Pages.PurgePage(ctx, msg.Slug)
	},
		commands.WithLogger[PurgePageFragments](logger),
		commands.WithOperation[PurgePageFragments]("pages.fragments.purge"),
	)

	h.CleanupTags = commands.NewHandler(func(ctx context.Context, msg CleanupTags) error {
		if deps.Tags == nil {
			return ErrDependencyMissing
		}
		if msg.PageID != uuid.Nil {
			if err := deps.Tags.UnassignPage(ctx, msg.PageID); err != nil {
				return err
			}
		}
		removed, err := deps.Tags.CleanupUnused(ctx, msg.Set)
		if err != nil {
			return err
		}
		logging.WithFields(logger, map[string]any{"set": msg.Set}).Info("tags.command.cleanup", "removed", removed)
		return nil
	},
		commands.WithLogger[CleanupTags](logger),
		commands.WithOperation[CleanupTags]("tags.cleanup"),
	)
	return h
}

// Subscribe registers every handler with the go-command dispatcher, retrying
// failed executions up to maxRetries times. The returned func unsubscribes
// them.
func (h *Handlers) Subscribe(maxRetries int) func() {
	invalidate := dispatcher.SubscribeCommand(h.InvalidateMenuCache, runner.WithMaxRetries(maxRetries))
	purge := dispatcher.SubscribeCommand(h.PurgePageFragments, runner.WithMaxRetries(maxRetries))
	cleanup := dispatcher.SubscribeCommand(h.CleanupTags, runner.WithMaxRetries(maxRetries))
	return func() {
		invalidate.Unsubscribe()
		purge.Unsubscribe()
		cleanup.Unsubscribe()
	}
}

// PageChangeHook reacts to page writes through the dispatcher: menus are
// invalidated, since autofill entries and link titles read page data, and
// each tag set is swept for tags the change left unused. A deleted page is
// first removed from its tags. Subscribe must have been called for the
// messages to reach the handlers.
func (h *Handlers) PageChangeHook(sets ...string) pages.ChangeHook {
	return func(ctx context.Context, event pages.ChangeEvent) error {
		var removed uuid.UUID
		if event.Kind == pages.ChangeDeleted {
			removed = event.PageID
		}
		var errs []error
		if err := dispatcher.Dispatch(ctx, InvalidateMenuCache{}); err != nil {
			errs = append(errs, err)
		}
		for _, set := range sets {
			if err := dispatcher.Dispatch(ctx, CleanupTags{Set: set, PageID: removed}); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
