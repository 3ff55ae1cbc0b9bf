// Command sitenav serves the navigation, tag and layout API of a site.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"

	site "github.com/enzedonline/enzedonline-sub000"
	"github.com/enzedonline/enzedonline-sub000/internal/runtimeconfig"
	"github.com/enzedonline/enzedonline-sub000/internal/storage"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file loaded before reading SITE_* variables")
	seedOnly := flag.Bool("seed-only", false, "seed menus from SITE_NAVIGATION_SEED_DIR and exit")
	flag.Parse()

	if err := run(*envFile, *seedOnly); err != nil {
		log.Fatalf("sitenav: %v", err)
	}
}

func run(envFile string, seedOnly bool) error {
	// A missing .env is normal outside development.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg, err := runtimeconfig.FromEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []site.Option
	if cfg.UsesSQL() {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, site.WithBunDB(db))
	}

	module, err := site.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer module.Close()
	logger := module.Logger("site.cmd")

	if cfg.Navigation.SeedDir != "" {
		docs, err := site.LoadMenuDocuments(ctx, os.DirFS(cfg.Navigation.SeedDir), ".")
		if err != nil {
			return err
		}
		if err := site.SeedMenus(ctx, module, docs); err != nil {
			return err
		}
		logger.Info("menus.seed.loaded", "dir", cfg.Navigation.SeedDir, "documents", len(docs))
	}
	if seedOnly {
		return nil
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      module.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http.listen", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("http.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func openDB(ctx context.Context, cfg runtimeconfig.Config) (*bun.DB, error) {
	db, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Migrate {
		if err := storage.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
