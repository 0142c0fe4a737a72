package main

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

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tablewise/internal/auth"
	"github.com/mmynk/tablewise/internal/backup"
	"github.com/mmynk/tablewise/internal/config"
	"github.com/mmynk/tablewise/internal/events"
	"github.com/mmynk/tablewise/internal/idgen"
	"github.com/mmynk/tablewise/internal/lifecycle"
	"github.com/mmynk/tablewise/internal/metrics"
	"github.com/mmynk/tablewise/internal/service"
	"github.com/mmynk/tablewise/internal/storage"
	"github.com/mmynk/tablewise/internal/storage/file"
	"github.com/mmynk/tablewise/internal/storage/postgres"
	"github.com/mmynk/tablewise/internal/storage/sqlite"
	"github.com/mmynk/tablewise/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logCloser := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	store := storage.New(backend)
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.StoreDriver)

	publisher, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	authenticator, err := auth.NewSecretAuthenticator(cfg.AdminPassword)
	if err != nil {
		return err
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	ids := idgen.UUID{}
	engine := lifecycle.NewEngine(ids)

	handler, err := newRouter(routerDeps{
		orders:     service.NewOrderService(store, engine, service.WithPublisher(publisher), service.WithMetrics(m)),
		menu:       service.NewMenuService(store, ids),
		auth:       service.NewAuthService(authenticator, jwtManager, slog.Default()),
		jwtManager: jwtManager,
		metrics:    m,
		registry:   registry,
		staticPath: cfg.StaticPath,
	})
	if err != nil {
		return err
	}

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Connect server starting", "address", cfg.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return backup.New(backend, cfg.BackupDir, cfg.BackupInterval).Run(gctx)
	})

	return g.Wait()
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return sqlite.New(cfg.SQLitePath)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return file.New(cfg.DataDir)
	}
}

func openPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		slog.Info("No AMQP_URL set, lifecycle events disabled")
		return events.NopPublisher{}, nil
	}

	publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	slog.Info("Publishing lifecycle events", "exchange", cfg.AMQPExchange)
	return publisher, nil
}
