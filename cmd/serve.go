package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-site/pkg/authapi"
	"portfolio-site/pkg/config"
	"portfolio-site/pkg/handlers"
	"portfolio-site/pkg/rowstore"
	"portfolio-site/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		facets, err := loadFacets(cfg)
		if err != nil {
			return err
		}
		catalog := services.NewCatalog(store, facets, cfg.CacheTTL, logger)
		contact := services.NewContact(store, cfg.ContactPersist, logger)

		var auth handlers.Authenticator
		if cfg.AuthEnabled() {
			auth = authapi.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		} else {
			logger.Info("Admin sign-in disabled; SUPABASE_URL and SUPABASE_ANON_KEY are not set")
		}

		watcher, err := startContent(ctx, cfg, store, catalog)
		if err != nil {
			return err
		}
		if watcher != nil {
			defer watcher.Stop()
		}

		router, err := handlers.NewServer(cfg, catalog, contact, auth, logger).Router()
		if err != nil {
			return fmt.Errorf("router: %w", err)
		}
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Listening", zap.String("addr", cfg.Addr), zap.String("driver", cfg.StoreDriver))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("Shutting down")
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

// startContent imports CONTENT_DIR into a SQLite store and, when asked,
// keeps watching it. It returns the running watcher, if any.
func startContent(ctx context.Context, cfg *config.Config, store rowstore.Store, catalog *services.Catalog) (*services.ContentWatcher, error) {
	if cfg.ContentDir == "" {
		return nil, nil
	}
	sqlite, ok := store.(*rowstore.SQLite)
	if !ok {
		logger.Warn("CONTENT_DIR is only imported with the sqlite driver", zap.String("driver", cfg.StoreDriver))
		return nil, nil
	}

	importer := services.NewImporter(sqlite, logger)
	if _, err := importer.ImportDir(ctx, cfg.ContentDir); err != nil {
		return nil, fmt.Errorf("import content: %w", err)
	}
	if !cfg.WatchContent {
		return nil, nil
	}

	watcher, err := services.NewContentWatcher(cfg.ContentDir, importer, catalog.Invalidate, logger)
	if err != nil {
		return nil, fmt.Errorf("watch content: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return nil, fmt.Errorf("watch content: %w", err)
	}
	return watcher, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
