package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/wifi-anomaly-api/internal/errors"
	"github.com/ajharbinger/wifi-anomaly-api/internal/features"
	"github.com/ajharbinger/wifi-anomaly-api/internal/logger"
	"github.com/ajharbinger/wifi-anomaly-api/internal/metrics"
	"github.com/ajharbinger/wifi-anomaly-api/internal/middleware"
	"github.com/ajharbinger/wifi-anomaly-api/internal/services"
)

// LivenessMessage is returned by the index route
const LivenessMessage = "WiFi Anomaly Detection API is Live 🚀"

// genericPredictionError replaces failure details when they are not exposed
const genericPredictionError = "prediction failed"

// PredictionHandler serves liveness, prediction and model metadata
type PredictionHandler struct {
	inferenceService services.InferenceService
	logger           logger.Logger
	exposeErrors     bool
}

// NewPredictionHandler creates a new prediction handler with service injection
func NewPredictionHandler(inferenceService services.InferenceService, log logger.Logger, exposeErrors bool) *PredictionHandler {
	return &PredictionHandler{
		inferenceService: inferenceService,
		logger:           log,
		exposeErrors:     exposeErrors,
	}
}

// Index reports that the service is running
func (h *PredictionHandler) Index(c *gin.Context) {
	c.String(http.StatusOK, LivenessMessage)
}

// Predict classifies one flow
func (h *PredictionHandler) Predict(c *gin.Context) {
	payload, err := features.DecodePayload(c.Request.Body)
	if err != nil {
		metrics.PredictionErrors.WithLabelValues(metrics.KindProcessing).Inc()
		h.respondError(c, errors.ProcessingError("invalid request body", err).WithOperation("Predict"))
		return
	}

	verdict, err := h.inferenceService.Predict(c.Request.Context(), payload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// GetModelInfo returns metadata about the loaded model
func (h *PredictionHandler) GetModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.inferenceService.ModelInfo())
}

func (h *PredictionHandler) respondError(c *gin.Context, err error) {
	if missing, ok := errors.AsMissingFeatures(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    features.MissingFeaturesMessage,
			"required": missing.Required,
			"missing":  missing.Missing,
		})
		return
	}

	message := err.Error()
	if appErr, ok := errors.AsAppError(err); ok {
		message = appErr.PublicMessage()
	}
	h.logger.Error("Prediction request failed", err,
		"request_id", c.GetString(middleware.RequestIDKey),
		"path", c.Request.URL.Path,
	)

	if !h.exposeErrors {
		message = genericPredictionError
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
