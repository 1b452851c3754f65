package rest

import (
	"net/http"

	"github.com/dfryer1193/keta/api"
	"github.com/dfryer1193/keta/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	// BodyLimit is the largest accepted request body in bytes.
	BodyLimit int64
	Metrics   *middleware.Collector
	Gatherer  prometheus.Gatherer
}

// NewRouter builds the gin engine with the standard middleware chain and
// every route registered.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.BodyLimit > 0 {
		router.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	NewApi(router, h, cfg.Gatherer)
	return router
}

func NewApi(router *gin.Engine, h *Handler, gatherer prometheus.Gatherer) {
	router.GET("/graphql", h.GetGraphQL)
	router.POST("/graphql", h.PostGraphQL)
	router.GET("/playground", Playground)
	router.GET("/graphiql", GraphiQL)

	router.GET("/export", h.Export)
	router.POST("/import", h.Import)

	router.GET("/healthz", Healthz)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}
