package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/api"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/logging"
	"github.com/warp/cashflow-engine/store/sqlite"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the projection refresher",
		Long: `Open the database (running migrations), then serve the REST API under /api,
Prometheus metrics on /metrics and a health check on /healthz. The default
projection is recomputed in the background after every edit.

On SIGINT/SIGTERM the server stops accepting connections and waits up to
30 seconds for active requests.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().Int("port", 0, "HTTP port (overrides CASHFLOW_PORT)")
	cmd.Flags().String("seed", "", "Load this demo scenario when the database has no accounts")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	cfg, logger := a.cfg, a.logger.WithComponent(logging.ComponentApp)
	if seed, _ := cmd.Flags().GetString("seed"); seed != "" {
		cfg.SeedScenario = seed
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to create voucher pools: %w", err)
	}
	if cfg.SeedScenario != "" {
		if err := seedIfEmpty(ctx, store, cfg.SeedScenario, logger); err != nil {
			return err
		}
	}

	metrics := api.NewMetrics()
	engine := &cashflow.ProjectionEngine{Store: store, Contributions: cfg.Contributions()}
	refresher := api.NewProjectionRefresher(engine, cfg.DefaultHorizon, cfg.RefreshDebounce, a.logger, metrics)

	handler := api.NewHandler(store)
	handler.Engine = engine
	handler.Metrics = metrics
	handler.Refresher = refresher
	handler.Logger = a.logger
	handler.DefaultHorizon = cfg.DefaultHorizon

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(handler, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return refresher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStore opens the SQLite database, creating its directory first.
func openStore(path string) (*sqlite.Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}
	store, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// seedIfEmpty loads a demo scenario into a store that has no accounts yet.
func seedIfEmpty(ctx context.Context, store cashflow.Store, scenario string, logger *logging.Logger) error {
	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		logger.Info("store not empty, skipping seed", logging.FieldScenario, scenario)
		return nil
	}
	summary, err := api.SeedScenario(ctx, store, scenario, cashflow.Today())
	if err != nil {
		return fmt.Errorf("seed scenario: %w", err)
	}
	logger.Info("seeded demo scenario",
		logging.FieldScenario, scenario,
		"accounts", summary.Accounts,
		"entries", summary.Entries,
		"events", summary.Events)
	return nil
}
