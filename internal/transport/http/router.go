package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/blog-publisher/internal/config"
	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/metrics"
	"github.com/example/blog-publisher/internal/transport/http/handlers"
	"github.com/example/blog-publisher/internal/transport/http/middleware"
)

type Router = *gin.Engine

// Deps are the collaborators behind the HTTP surface. Activity, Metrics and
// Gatherer are optional.
type Deps struct {
	Service  config.ServiceConfig
	Posts    handlers.PostCreator
	Catalog  handlers.CatalogReader
	Activity handlers.ActivityReader
	Checks   map[string]handlers.HealthCheck
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Log      logger.Logger
}

func NewRouter(d Deps) Router {
	switch {
	case d.Service.Debug:
		gin.SetMode(gin.DebugMode)
	case gin.Mode() != gin.TestMode:
		gin.SetMode(gin.ReleaseMode)
	}

	var rec middleware.HTTPRecorder
	if d.Metrics != nil {
		rec = d.Metrics
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(d.Log),
		middleware.Logger(d.Log, rec),
		middleware.Recovery(d.Log),
	)

	health := handlers.NewHealthHandler(d.Service.Name, d.Service.Version, d.Checks)
	r.GET("/health", health.Health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	posts := handlers.NewPostHandler(d.Posts, d.Log)
	admin := api.Group("", middleware.AdminAuth(d.Service.AdminToken))
	admin.GET("/posts", posts.APIDocs)
	admin.POST("/posts", middleware.BodyLimit(d.Service.MaxBodyBytes), posts.CreatePost)
	if d.Activity != nil {
		admin.GET("/activity", handlers.NewActivityHandler(d.Activity).Recent)
	}

	cat := handlers.NewCatalogHandler(d.Catalog, d.Log)
	api.GET("/catalog", cat.ListPosts)
	api.GET("/catalog/:slug", cat.GetPost)

	return r
}
