package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/menuseed"
)

var ErrSeedModuleRequired = errors.New("site: module is required to seed menus")

// MenuDocument is a menu definition read from a front-matter file.
type MenuDocument = menuseed.Document

// ParseMenuDocument reads a single front-matter menu definition.
func ParseMenuDocument(source []byte) (*MenuDocument, error) {
	return menuseed.Parse(source)
}

// LoadMenuDocuments reads every *.md menu definition under dir.
func LoadMenuDocuments(ctx context.Context, fsys fs.FS, dir string) ([]*MenuDocument, error) {
	return menuseed.LoadDir(ctx, fsys, dir, menuseed.DefaultPattern)
}

// SeedMenus creates each documented menu, or replaces the items of an
// existing menu with the same code (or title when no code is given).
// Seeding the same documents again converges on the same menus. A sub-menu
// may reference a menu seeded by a later document.
func SeedMenus(ctx context.Context, module *Module, docs []*MenuDocument) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if module == nil || module.container == nil {
		return ErrSeedModuleRequired
	}
	svc := module.Menus()
	logger := module.Logger("site.seed")

	created, updated := 0, 0
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		req, err := doc.Request()
		if err != nil {
			return fmt.Errorf("site: seed menu %s: %w", docLabel(doc), err)
		}

		existing, err := svc.LookupMenu(ctx, menus.MenuRef{Code: req.Code, Title: req.Title})
		switch {
		case err == nil:
			if _, err := svc.UpdateMenu(ctx, existing.ID, req); err != nil {
				return fmt.Errorf("site: seed menu %s: %w", docLabel(doc), err)
			}
			updated++
		case errors.Is(err, menus.ErrMenuNotFound):
			if _, err := svc.CreateMenu(ctx, req); err != nil {
				return fmt.Errorf("site: seed menu %s: %w", docLabel(doc), err)
			}
			created++
		default:
			return fmt.Errorf("site: seed menu %s: %w", docLabel(doc), err)
		}
	}

	logger.Info("menus.seeded", "created", created, "updated", updated)
	return nil
}

func docLabel(doc *MenuDocument) string {
	if doc.Path != "" {
		return doc.Path
	}
	return doc.Title
}
