package services

import (
	"context"
	"time"

	"github.com/ajharbinger/wifi-anomaly-api/internal/errors"
	"github.com/ajharbinger/wifi-anomaly-api/internal/logger"
	"github.com/ajharbinger/wifi-anomaly-api/internal/metrics"
	"github.com/ajharbinger/wifi-anomaly-api/internal/scoring"
)

// inferenceServiceImpl implements InferenceService over a loaded scorer
type inferenceServiceImpl struct {
	scorer *scoring.Scorer
	logger logger.Logger
}

// newInferenceService creates a new inference service implementation
func newInferenceService(scorer *scoring.Scorer, log logger.Logger) InferenceService {
	meta := scorer.Metadata()
	metrics.ModelInfo.WithLabelValues(meta.Name, meta.Version, meta.Fingerprint).Set(1)

	return &inferenceServiceImpl{
		scorer: scorer,
		logger: log,
	}
}

// Predict validates payload, builds the ordered feature vector and scores it
func (s *inferenceServiceImpl) Predict(ctx context.Context, payload map[string]interface{}) (*scoring.Verdict, error) {
	if err := ctx.Err(); err != nil {
		metrics.PredictionErrors.WithLabelValues(metrics.KindProcessing).Inc()
		return nil, errors.ProcessingError("request cancelled", err).WithOperation("Predict")
	}

	start := time.Now()
	vec, err := s.scorer.Schema().Build(payload)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeValidationError) {
			metrics.PredictionErrors.WithLabelValues(metrics.KindValidation).Inc()
			if missing, ok := errors.AsMissingFeatures(err); ok {
				s.logger.Debug("Rejected prediction request", "missing", missing.Missing)
			}
		} else {
			metrics.PredictionErrors.WithLabelValues(metrics.KindProcessing).Inc()
			s.logger.Warn("Failed to build feature vector", "error", err.Error())
		}
		return nil, err
	}

	verdict, err := s.scorer.Score(vec)
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PredictionErrors.WithLabelValues(metrics.KindProcessing).Inc()
		s.logger.Error("Failed to score feature vector", err)
		return nil, err
	}

	metrics.PredictionsTotal.WithLabelValues(verdict.Status).Inc()
	s.logger.Debug("Prediction served", "prediction", verdict.Prediction, "status", verdict.Status)
	return &verdict, nil
}

// RequiredFeatures returns the feature names in vector order
func (s *inferenceServiceImpl) RequiredFeatures() []string {
	return s.scorer.Schema().Names()
}

// ModelInfo describes the loaded artifacts
func (s *inferenceServiceImpl) ModelInfo() ModelInfo {
	return ModelInfo{
		Metadata: s.scorer.Metadata(),
		Features: s.scorer.Schema().Names(),
	}
}
