package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ajharbinger/wifi-anomaly-api/internal/api"
	"github.com/ajharbinger/wifi-anomaly-api/internal/logger"
	"github.com/ajharbinger/wifi-anomaly-api/internal/middleware"
	"github.com/ajharbinger/wifi-anomaly-api/internal/scoring"
	"github.com/ajharbinger/wifi-anomaly-api/internal/services"
	"github.com/ajharbinger/wifi-anomaly-api/pkg/config"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.New()

	appLogger, err := logger.NewZapLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLogger.Sync()

	// Load the scorer; the service never starts without one
	scorer, err := scoring.Load(scoring.LoadOptions{
		ManifestPath:   cfg.ManifestPath,
		ScalerPath:     cfg.ScalerPath,
		ClassifierPath: cfg.ModelPath,
	})
	if err != nil {
		appLogger.Fatal("Failed to load model artifacts", err)
	}
	meta := scorer.Metadata()
	appLogger.Info("Model artifacts loaded",
		"name", meta.Name,
		"version", meta.Version,
		"scaler", meta.ScalerPath,
		"classifier", meta.ClassifierPath,
		"fingerprint", meta.Fingerprint,
		"features", scorer.Schema().Len(),
	)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(appLogger))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.BodyLimitMiddleware(cfg.MaxRequestSize))

	if cfg.EnableRateLimit {
		r.Use(middleware.RateLimitingMiddleware(cfg.RateLimitPerMinute))
	}

	r.Use(gin.Recovery())

	if err := api.SetupRoutes(r, services.NewServices(scorer, appLogger), cfg, appLogger); err != nil {
		appLogger.Fatal("Failed to setup API routes", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Shutting down server", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
