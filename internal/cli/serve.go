package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trafficledger/internal/catalog"
	"trafficledger/internal/config"
	"trafficledger/internal/logging"
	"trafficledger/internal/observability"
	"trafficledger/internal/session"
	"trafficledger/internal/storage"
	"trafficledger/internal/web"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var (
		dbPath string
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the traffic stop dashboard",
		Long: `Serve the dashboard over HTTP. The police table is opened read-only and
loaded once at startup; restart the server to pick up new records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dbPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerAddr = addr
			}
			logger := logging.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}

	addDatabaseFlag(cmd, &dbPath)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := storage.OpenReadOnly(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	snapshot, err := storage.LoadSnapshot(ctx, store)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	logger.InfoContext(ctx, "snapshot loaded", "path", cfg.DatabasePath, "stops", snapshot.Len())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.New(registry)

	runner, err := catalog.NewRunner(store, catalog.WithLogger(logger), catalog.WithMetrics(metrics))
	if err != nil {
		return err
	}

	sessions, closeSessions, err := openSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	dashboard, err := web.NewServer(snapshot, runner, sessions, logger, metrics)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      dashboard.Routes(registry),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "http server listening", "addr", cfg.ServerAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.InfoContext(shutdownCtx, "http server shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openSessions uses Redis when REDIS_URL is set so several dashboard
// processes can share sessions.
func openSessions(ctx context.Context, cfg config.Config, logger *slog.Logger) (session.Store, func(), error) {
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if cfg.RedisURL == "" {
		return session.NewMemoryStore(ttl), func() {}, nil
	}
	client, err := session.Dial(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.InfoContext(ctx, "using redis session store", "ttl_minutes", cfg.SessionTTLMinutes)
	return session.NewRedisStore(client, ttl), func() { _ = client.Close() }, nil
}
