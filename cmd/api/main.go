package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/weldpoly/quotecart-backend/api/routes"
	"github.com/weldpoly/quotecart-backend/internal/cart"
	"github.com/weldpoly/quotecart-backend/internal/quotes"
	"github.com/weldpoly/quotecart-backend/internal/render"
	cartsync "github.com/weldpoly/quotecart-backend/internal/sync"
	"github.com/weldpoly/quotecart-backend/pkg/config"
	"github.com/weldpoly/quotecart-backend/pkg/db"
	"github.com/weldpoly/quotecart-backend/pkg/events"
	"github.com/weldpoly/quotecart-backend/pkg/logger"
	"github.com/weldpoly/quotecart-backend/pkg/metrics"
	"github.com/weldpoly/quotecart-backend/pkg/migrate"
	"github.com/weldpoly/quotecart-backend/pkg/redis"
)

// loadTemplateSet returns the deployment's row templates, falling back to the
// built-in fragments when none are configured.
func loadTemplateSet(cfg config.CartConfig) (render.TemplateSet, error) {
	if cfg.ProductRowTemplateFile == "" {
		return render.DefaultTemplateSet(), nil
	}
	productRow, err := os.ReadFile(cfg.ProductRowTemplateFile)
	if err != nil {
		return render.TemplateSet{}, err
	}
	sparePartRow := ""
	if cfg.SparePartRowTemplateFile != "" {
		raw, err := os.ReadFile(cfg.SparePartRowTemplateFile)
		if err != nil {
			return render.TemplateSet{}, err
		}
		sparePartRow = string(raw)
	}
	return render.NewTemplateSet(string(productRow), sparePartRow)
}

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	bus := events.NewBus()
	store, err := cart.NewStore(cart.StoreParams{
		Storage:       redisClient,
		Bus:           bus,
		Publisher:     redisClient,
		EventsChannel: cfg.Cart.EventsChannel,
		TTL:           cfg.Cart.TTL,
		Logger:        logg,
		Metrics:       cartMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	templates, err := loadTemplateSet(cfg.Cart)
	if err != nil {
		logg.Error(context.Background(), "failed to load cart templates", err)
		os.Exit(1)
	}

	syncer, err := cartsync.New(cartsync.Params{
		Store:         store,
		Renderer:      render.NewRenderer(templates, cartMetrics),
		Bus:           bus,
		Subscriber:    redisClient,
		EventsChannel: cfg.Cart.EventsChannel,
		CoalesceDelay: cfg.Cart.CoalesceDelay,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart syncer", err)
		os.Exit(1)
	}

	quoteService := quotes.NewService(quotes.ServiceParams{
		Repo:   quotes.NewRepository(dbClient.DB()),
		Store:  store,
		Logger: logg,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := syncer.Run(runCtx); err != nil && runCtx.Err() == nil {
			logg.Error(runCtx, "cart event subscription stopped", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			Store:    store,
			Syncer:   syncer,
			Quotes:   quoteService,
			DB:       dbClient,
			Redis:    redisClient,
			Limiter:  redisClient,
			Gatherer: registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := multierr.Append(server.Shutdown(shutdownCtx), <-errCh); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "shutdown error", err)
		}
	}
}
