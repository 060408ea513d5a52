package services

import (
	"context"

	"github.com/ajharbinger/wifi-anomaly-api/internal/logger"
	"github.com/ajharbinger/wifi-anomaly-api/internal/scoring"
)

// Services contains all application services
type Services struct {
	Inference InferenceService
}

// InferenceService defines the interface for prediction business logic
type InferenceService interface {
	Predict(ctx context.Context, payload map[string]interface{}) (*scoring.Verdict, error)
	RequiredFeatures() []string
	ModelInfo() ModelInfo
}

// ModelInfo is the public description of the loaded model
type ModelInfo struct {
	scoring.Metadata
	Features []string `json:"features"`
}

// NewServices creates a new Services instance around a loaded scorer
func NewServices(scorer *scoring.Scorer, log logger.Logger) *Services {
	return &Services{
		Inference: newInferenceService(scorer, log),
	}
}

// NewInferenceService creates a standalone inference service
func NewInferenceService(scorer *scoring.Scorer, log logger.Logger) InferenceService {
	return newInferenceService(scorer, log)
}
