package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/enzedonline/enzedonline-sub000/internal/runtimeconfig"
	"github.com/enzedonline/enzedonline-sub000/internal/storage"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, runtimeconfig.StorageConfig{
		Driver: "sqlite",
		DSN:    "file:storage_test?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// A second run is a no-op.
	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	for _, table := range []string{"locales", "pages", "page_translations", "menus", "menu_link_items", "menu_submenu_items", "menu_autofill_items", "tags", "taggings"} {
		var count int
		if err := db.NewSelect().TableExpr(table).ColumnExpr("COUNT(*)").Scan(ctx, &count); err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), runtimeconfig.StorageConfig{Driver: "oracle", DSN: "x"})
	if !errors.Is(err, storage.ErrDriverUnsupported) {
		t.Fatalf("expected ErrDriverUnsupported, got %v", err)
	}
	if _, err := storage.Open(context.Background(), runtimeconfig.StorageConfig{Driver: "sqlite"}); !errors.Is(err, storage.ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}
