package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/example/blog-publisher/internal/cache"
	"github.com/example/blog-publisher/internal/catalog"
	"github.com/example/blog-publisher/internal/config"
	"github.com/example/blog-publisher/internal/db"
	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/metrics"
	"github.com/example/blog-publisher/internal/mirror"
	"github.com/example/blog-publisher/internal/models"
	"github.com/example/blog-publisher/internal/repository"
	"github.com/example/blog-publisher/internal/service"
	"github.com/example/blog-publisher/internal/store"
	"github.com/example/blog-publisher/internal/transport/http"
	"github.com/example/blog-publisher/internal/transport/http/handlers"
)

type Application struct {
	Config *config.Config
	DB     *db.Database
	Cache  *cache.RedisClient
	Router http.Router
	log    logger.Logger
}

// Initialize builds every component from cfg. The audit database and the
// catalog cache are only connected when enabled.
func Initialize(ctx context.Context, cfg *config.Config, log logger.Logger) (*Application, error) {
	a := &Application{Config: cfg, log: log}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	met := metrics.NewMetrics(reg)

	posts := store.New(cfg.Posts.Dir, cfg.Posts.Extension)
	checks := map[string]handlers.HealthCheck{
		"posts": func(ctx context.Context) error {
			_, err := posts.List(ctx)
			return err
		},
	}

	remote, err := mirror.New(cfg.Mirror, cfg.Posts.Extension, log,
		mirror.WithStateChange(func(_, to mirror.State) { met.SetBreakerState(int(to)) }))
	if err != nil {
		return nil, fmt.Errorf("mirror: %w", err)
	}
	if !remote.Configured() {
		log.Warn("GitHub mirror disabled, posts will only be stored locally")
	}

	var catalogOpts []catalog.Option
	if cfg.Cache.Enabled {
		rc, err := cache.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.Cache = rc
		catalogOpts = append(catalogOpts, catalog.WithCache(rc))
		checks["cache"] = rc.Ping
	}
	cat := catalog.New(posts, log, catalogOpts...)

	serviceOpts := []service.Option{service.WithCatalog(cat), service.WithMetrics(met)}
	var activity handlers.ActivityReader
	if cfg.Database.Enabled {
		database, err := db.Connect(cfg.Database, cfg.Service.Debug)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.DB = database
		if err := database.AutoMigrate(&models.ActivityLog{}); err != nil {
			a.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		if err := database.EnsureTagsIndex(); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure GIN index: %w", err)
		}
		repo := repository.NewActivityRepository(database.Gorm)
		serviceOpts = append(serviceOpts, service.WithActivityLog(repo))
		activity = repo
		checks["database"] = database.SQL.PingContext
	}

	a.Router = http.NewRouter(http.Deps{
		Service:  cfg.Service,
		Posts:    service.NewPostService(posts, remote, log, serviceOpts...),
		Catalog:  cat,
		Activity: activity,
		Checks:   checks,
		Metrics:  met,
		Gatherer: reg,
		Log:      log,
	})
	return a, nil
}

func (a *Application) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.log.Error("Database close failed", logger.Error(err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.log.Error("Cache close failed", logger.Error(err))
		}
	}
}
