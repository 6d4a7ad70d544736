package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"

	"github.com/vittoria-dev/menu-engine/api/controllers"
	"github.com/vittoria-dev/menu-engine/api/routes"
	"github.com/vittoria-dev/menu-engine/internal/availability"
	"github.com/vittoria-dev/menu-engine/internal/cartline"
	"github.com/vittoria-dev/menu-engine/internal/catalog"
	"github.com/vittoria-dev/menu-engine/internal/session"
	"github.com/vittoria-dev/menu-engine/pkg/config"
	"github.com/vittoria-dev/menu-engine/pkg/db"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
	"github.com/vittoria-dev/menu-engine/pkg/metrics"
	"github.com/vittoria-dev/menu-engine/pkg/migrate"
	"github.com/vittoria-dev/menu-engine/pkg/pubsub"
	"github.com/vittoria-dev/menu-engine/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "menu-engine",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "service exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := connectDB(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() { _ = dbClient.Close() }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := connectRedis(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	repo := catalog.NewRepository(dbClient.DB())
	cachedCatalog := catalog.NewCachedProvider(repo, redisClient, cfg.Catalog.CacheTTL, logg)

	gate := availability.NewFailClosedGate(
		availability.NewHTTPChecker(cfg.Inventory.BaseURL, cfg.Inventory.Timeout),
		cfg.Inventory.Timeout,
		logg,
		engineMetrics,
	)

	var publisher cartline.Publisher = cartline.NoopPublisher{}
	health := map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}
	if cfg.FeatureFlags.PublishCommits {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		defer func() { _ = psClient.Close() }()
		publisher = cartline.NewPubSubPublisher(psClient.OrderLinesPublisher(), logg)
		health["pubsub"] = psClient
	}

	committer := session.NewCommitter(gate, publisher, engineMetrics, logg)
	manager := session.NewManager(cachedCatalog, committer, cfg.Session, engineMetrics, logg)
	go manager.RunPruner(ctx, time.Minute)

	handler := routes.New(routes.Deps{
		Config:   cfg,
		Log:      logg,
		Manager:  manager,
		Catalog:  cachedCatalog,
		Health:   health,
		Registry: registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "menu engine listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// connectDB retries briefly so the service survives a database that is
// still starting alongside it.
func connectDB(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*db.Client, error) {
	var client *db.Client
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		client, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Warn(ctx, "postgres not ready, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	return client, err
}

func connectRedis(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*redis.Client, error) {
	var client *redis.Client
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		client, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Warn(ctx, "redis not ready, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	return client, err
}
