package testsupport

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"github.com/enzedonline/enzedonline-sub000/internal/runtimeconfig"
	"github.com/enzedonline/enzedonline-sub000/internal/storage"
)

// MemoryDSN names a shared in-memory database after the running test so
// parallel packages never see each other's rows.
func MemoryDSN(t testing.TB) string {
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// NewMigratedDB opens a bun handle over a fresh in-memory SQLite database
// with every migration applied. The database is closed on test cleanup.
func NewMigratedDB(t testing.TB) *bun.DB {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, runtimeconfig.StorageConfig{
		Driver: runtimeconfig.StorageSQLite,
		DSN:    MemoryDSN(t),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
