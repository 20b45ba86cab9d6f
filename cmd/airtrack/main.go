package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/airtrack/internal/client/catalog"
	"github.com/airtrack/internal/config"
	"github.com/airtrack/internal/handler"
	"github.com/airtrack/internal/scheduler"
	"github.com/airtrack/internal/service/refresh"
	"github.com/airtrack/internal/service/tracker"
	"github.com/airtrack/internal/store"
	"github.com/airtrack/internal/version"
	"github.com/airtrack/pkg/logger"
)

func main() {
	// Initialize logger
	isDev := os.Getenv("ENV") != "production"
	logger.Init(isDev)
	defer logger.Sync()

	version.PrintBanner(nil)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	logger.Infof("Loading config: %s", configPath)
	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}
	cfg := cfgMgr.Get()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Config error: %v", err)
	}

	// Open the followed-show store
	logger.Infof("Opening store: %s", cfg.Store.Path)
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Fatalf("Store error: %v", err)
	}
	defer st.Close()

	// Catalog client
	catalogClient := catalog.NewTMDB(cfg.Catalog)
	logger.Infof("Catalog: %s", cfg.Catalog.BaseURL)

	// Services
	trackerService := tracker.NewService(st, catalogClient)
	refreshService := refresh.NewService(st, catalogClient, cfgMgr)

	// Scheduler: the periodic trigger is registered before any refresh
	// work starts.
	sched := scheduler.New(refreshService)
	if err := sched.Start(cfg.Scheduler.Cron); err != nil {
		logger.Fatalf("Scheduler error: %v", err)
	}

	// HTTP server
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	h := handler.New(trackerService, refreshService, sched)
	h.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	logger.Infof("API server: http://localhost:%d", cfg.Server.Port)
	logger.Info("Ready, waiting for scheduled refreshes...")

	// Cold launch gets a full refresh if configured
	if cfg.Scheduler.RunOnStart {
		logger.Info("Running initial full refresh (run_on_start=true)...")
		sched.RunFullRefreshNow()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	}
}

// requestLogger returns a gin middleware for logging HTTP requests
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		// Only log non-health endpoints or errors
		status := c.Writer.Status()
		if path != "/api/v1/health" || status >= 400 {
			latency := time.Since(start)
			logger.Debugf("HTTP %s %s → %d (%v)", c.Request.Method, path, status, latency)
		}
	}
}
