package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"microgrid-sim/internal/api"
	"microgrid-sim/internal/api/handlers"
	"microgrid-sim/internal/data"
	"microgrid-sim/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	log := logger.New("api")

	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if err := logger.SetLevel(os.Getenv("LOG_LEVEL")); err != nil {
		log.Warnf("ignoring LOG_LEVEL: %v", err)
	}

	datasetDir := data.DefaultDir()
	batteryDir := handlers.DefaultBatteryDir()
	log.Infof("dataset directory: %s", datasetDir)

	cacheTTL := time.Hour
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Warnf("ignoring CACHE_TTL %q", v)
		} else {
			cacheTTL = d
		}
	}
	cache := data.NewCache(cacheTTL)

	var origins []string
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	router, err := api.NewRouter(api.Options{
		DatasetDir:  datasetDir,
		BatteryDir:  batteryDir,
		Cache:       cache,
		CORSOrigins: origins,
		Registry:    reg,
		Log:         log,
	})
	if err != nil {
		log.Errorf("build router: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Expired datasets are dropped in the background.
	go cache.Run(ctx, cacheTTL/2)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("starting API server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("failed to start server: %v", err)
		os.Exit(1)
	}
}
