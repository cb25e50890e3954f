package api

import (
	"net/http"

	"microgrid-sim/internal/api/handlers"
	"microgrid-sim/internal/api/middleware"
	"microgrid-sim/internal/data"
	"microgrid-sim/internal/logger"
	"microgrid-sim/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the router. Zero values are usable; Log defaults to a no-op
// logger and Registry to a fresh registry served on /metrics.
type Options struct {
	DatasetDir  string
	BatteryDir  string
	Cache       *data.Cache
	CORSOrigins []string
	Registry    *prometheus.Registry
	Log         logger.Logger
}

// NewRouter wires middleware and routes.
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Log == nil {
		opts.Log = logger.NopLogger{}
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	rec, err := metrics.New(opts.Registry)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.CORS(opts.CORSOrigins))
	router.Use(middleware.Logger(opts.Log))
	router.Use(middleware.Metrics(rec))
	router.Use(middleware.ErrorHandler())

	simulateHandler := handlers.NewSimulateHandler(opts.DatasetDir, opts.BatteryDir, opts.Cache, rec, opts.Log)
	batteryHandler := handlers.NewBatteryHandler(opts.BatteryDir, opts.Log)
	datasetHandler := handlers.NewDatasetHandler(opts.DatasetDir)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/simulate", simulateHandler.Simulate)
		v1.POST("/simulate/compare", simulateHandler.Compare)

		v1.GET("/batteries", batteryHandler.ListBatteries)
		v1.GET("/strategies", handlers.ListStrategies)
		v1.GET("/datasets", datasetHandler.ListDatasets)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router, nil
}
