package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajharbinger/wifi-anomaly-api/internal/logger"
	"github.com/ajharbinger/wifi-anomaly-api/internal/services"
	"github.com/ajharbinger/wifi-anomaly-api/pkg/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, svcs *services.Services, cfg *config.Config, log logger.Logger) error {
	if svcs == nil || svcs.Inference == nil {
		return fmt.Errorf("inference service is required")
	}

	// Unknown methods on known paths get 405 rather than 404
	r.HandleMethodNotAllowed = true

	predictionHandler := NewPredictionHandler(svcs.Inference, log, cfg.ExposeErrorDetails)

	r.GET("/", predictionHandler.Index)
	r.POST("/predict", predictionHandler.Predict)
	r.GET("/model", predictionHandler.GetModelInfo)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return nil
}
