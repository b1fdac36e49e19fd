package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/submissions"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/idempotency"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
	"github.com/angelmondragon/storefront-backend/pkg/storage/local"
	"github.com/angelmondragon/storefront-backend/pkg/storage/minio"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers = append(closers, dbClient)

	if err := migrate.AutoRun(ctx, cfg, logg, dbClient, migrate.DefaultDir); err != nil {
		return err
	}

	checks := map[string]controllers.Pinger{"db": dbClient}
	deps := routes.Dependencies{Config: cfg, Logger: logg}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient)
		checks["redis"] = redisClient
		deps.Idempotency = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, idempotent replay is per-instance")
		deps.Idempotency = idempotency.NewMemory()
	}

	store, uploads, err := newImageStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	checks["storage"] = store
	deps.Uploads = uploads

	var events *pubsub.EventPublisher
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		closers = append(closers, psClient)
		checks["pubsub"] = psClient
		if events, err = psClient.Events(); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Metrics = metrics.NewHTTPMetrics(reg)
	deps.Gatherer = reg

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	submissionRepo := submissions.NewRepository(dbClient.DB())

	if deps.Products, err = products.NewService(productRepo, store, logg); err != nil {
		return err
	}
	if deps.Users, err = users.NewService(userRepo, cfg.Password, logg); err != nil {
		return err
	}
	if deps.Submissions, err = submissions.NewService(submissionRepo); err != nil {
		return err
	}
	cartDeps := cart.Dependencies{
		Users:       userRepo,
		Products:    productRepo,
		Submissions: submissionRepo,
		Tx:          dbClient,
		Metrics:     metrics.NewCartMetrics(reg),
		Logger:      logg,
	}
	if events != nil {
		cartDeps.Events = events
	}
	if deps.Cart, err = cart.NewService(cartDeps); err != nil {
		return err
	}
	deps.Checks = checks

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(deps),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"env":     cfg.App.Env,
			"addr":    addr,
			"storage": cfg.Storage.Driver,
		}), "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newImageStore picks the product image backend. Local storage also returns the
// handler that serves the files.
func newImageStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, http.Handler, error) {
	if cfg.Storage.UsesMinIO() {
		client, err := minio.NewClient(ctx, cfg.MinIO, logg)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}
	store, err := local.New(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	return store, http.FileServer(http.Dir(store.Root())), nil
}
