package scoring

import (
	"fmt"
	"time"

	apperrors "github.com/ajharbinger/wifi-anomaly-api/internal/errors"
	"github.com/ajharbinger/wifi-anomaly-api/internal/features"
)

// Transformer is a fitted scaling transform
type Transformer interface {
	Transform(x []float64) ([]float64, error)
}

// Classifier is a fitted binary classifier returning a class label
type Classifier interface {
	Predict(x []float64) (int, error)
}

// Class labels and their status strings
const (
	LabelNormal  = 0
	LabelAnomaly = 1

	StatusAnomaly = "Anomaly"
	StatusNormal  = "Normal"
)

// Verdict is the result of scoring one feature vector
type Verdict struct {
	Prediction int    `json:"prediction"`
	Status     string `json:"status"`
}

// StatusFor maps a class label to its status string
func StatusFor(label int) string {
	if label == LabelAnomaly {
		return StatusAnomaly
	}
	return StatusNormal
}

// NewVerdict builds the verdict for a class label
func NewVerdict(label int) Verdict {
	return Verdict{Prediction: label, Status: StatusFor(label)}
}

// Metadata describes the loaded artifacts
type Metadata struct {
	Name           string    `json:"name"`
	Version        string    `json:"version,omitempty"`
	ScalerPath     string    `json:"scaler_path"`
	ClassifierPath string    `json:"classifier_path"`
	Fingerprint    string    `json:"fingerprint"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// Scorer pairs a scaling transform with a classifier. It is immutable after
// construction and safe for concurrent use.
type Scorer struct {
	schema      *features.Schema
	transformer Transformer
	classifier  Classifier
	meta        Metadata
}

// NewScorer creates a scorer for vectors laid out by schema
func NewScorer(schema *features.Schema, transformer Transformer, classifier Classifier, meta Metadata) (*Scorer, error) {
	if schema == nil {
		return nil, fmt.Errorf("feature schema is required")
	}
	if transformer == nil {
		return nil, fmt.Errorf("transformer is required")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	return &Scorer{
		schema:      schema,
		transformer: transformer,
		classifier:  classifier,
		meta:        meta,
	}, nil
}

// Schema returns the feature schema
func (s *Scorer) Schema() *features.Schema {
	return s.schema
}

// Metadata returns artifact metadata
func (s *Scorer) Metadata() Metadata {
	return s.meta
}

// Score scales vec and classifies it. Panics raised by the transformer or
// classifier are returned as processing errors.
func (s *Scorer) Score(vec features.Vector) (verdict Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.ProcessingError("scorer panicked", fmt.Errorf("%v", r)).WithOperation("score")
		}
	}()

	if len(vec) != s.schema.Len() {
		return Verdict{}, apperrors.ProcessingError("feature vector has wrong length",
			fmt.Errorf("got %d features, expected %d", len(vec), s.schema.Len())).WithOperation("score")
	}

	scaled, err := s.transformer.Transform(vec)
	if err != nil {
		return Verdict{}, apperrors.ProcessingError("failed to scale features", err).WithOperation("transform")
	}

	label, err := s.classifier.Predict(scaled)
	if err != nil {
		return Verdict{}, apperrors.ProcessingError("failed to classify features", err).WithOperation("predict")
	}
	if label != LabelNormal && label != LabelAnomaly {
		return Verdict{}, apperrors.ProcessingError("classifier returned an unknown label",
			fmt.Errorf("label %d", label)).WithOperation("predict")
	}

	return NewVerdict(label), nil
}
