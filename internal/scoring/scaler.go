package scoring

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ajharbinger/wifi-anomaly-api/internal/features"
)

// Supported scaler kinds
const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

// scalerArtifact is the JSON export of a fitted scikit-learn scaler.
// standard: mean_ and scale_ of StandardScaler (mean omitted when with_mean=False).
// minmax: scale_ and min_ of MinMaxScaler.
type scalerArtifact struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean,omitempty"`
	Scale        []float64 `json:"scale"`
	Min          []float64 `json:"min,omitempty"`
}

// LinearScaler applies a per-feature affine transform
type LinearScaler struct {
	kind   string
	mean   []float64
	scale  []float64
	offset []float64
}

// NewStandardScaler computes (x - mean) / scale. A nil mean skips centering.
func NewStandardScaler(mean, scale []float64) (*LinearScaler, error) {
	if len(scale) == 0 {
		return nil, fmt.Errorf("standard scaler has no scale values")
	}
	if mean != nil && len(mean) != len(scale) {
		return nil, fmt.Errorf("standard scaler mean has %d values, scale has %d", len(mean), len(scale))
	}

	s := &LinearScaler{kind: ScalerStandard, scale: make([]float64, len(scale))}
	for i, v := range scale {
		// zero variance features are left unscaled, like scikit-learn
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	if mean != nil {
		s.mean = append([]float64(nil), mean...)
	}
	return s, nil
}

// NewMinMaxScaler computes x * scale + offset (scikit-learn min_)
func NewMinMaxScaler(scale, offset []float64) (*LinearScaler, error) {
	if len(scale) == 0 {
		return nil, fmt.Errorf("minmax scaler has no scale values")
	}
	if len(offset) != len(scale) {
		return nil, fmt.Errorf("minmax scaler min has %d values, scale has %d", len(offset), len(scale))
	}
	return &LinearScaler{
		kind:   ScalerMinMax,
		scale:  append([]float64(nil), scale...),
		offset: append([]float64(nil), offset...),
	}, nil
}

// Kind returns the scaler kind
func (s *LinearScaler) Kind() string {
	return s.kind
}

// Len returns the number of features the scaler was fit on
func (s *LinearScaler) Len() int {
	return len(s.scale)
}

// Transform scales x into a new slice
func (s *LinearScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.scale) {
		return nil, fmt.Errorf("X has %d features, but scaler is expecting %d features as input", len(x), len(s.scale))
	}

	out := make([]float64, len(x))
	switch s.kind {
	case ScalerMinMax:
		for i, v := range x {
			out[i] = v*s.scale[i] + s.offset[i]
		}
	default:
		for i, v := range x {
			if s.mean != nil {
				v -= s.mean[i]
			}
			out[i] = v / s.scale[i]
		}
	}
	return out, nil
}

// LoadScaler decodes a scaler artifact and checks it against schema
func LoadScaler(r io.Reader, schema *features.Schema) (*LinearScaler, error) {
	var art scalerArtifact
	if err := json.NewDecoder(r).Decode(&art); err != nil {
		return nil, fmt.Errorf("failed to decode scaler artifact: %w", err)
	}

	var (
		scaler *LinearScaler
		err    error
	)
	switch art.Kind {
	case ScalerStandard, "":
		scaler, err = NewStandardScaler(art.Mean, art.Scale)
	case ScalerMinMax:
		scaler, err = NewMinMaxScaler(art.Scale, art.Min)
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", art.Kind)
	}
	if err != nil {
		return nil, err
	}

	if scaler.Len() != schema.Len() {
		return nil, fmt.Errorf("scaler was fit on %d features, schema has %d", scaler.Len(), schema.Len())
	}
	if len(art.FeatureNames) > 0 && !schema.Equal(art.FeatureNames) {
		return nil, fmt.Errorf("scaler feature names %v do not match schema %v", art.FeatureNames, schema.Names())
	}
	return scaler, nil
}

// LoadScalerFile reads a scaler artifact from disk
func LoadScalerFile(path string, schema *features.Schema) (*LinearScaler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scaler artifact: %w", err)
	}
	defer f.Close()
	return LoadScaler(f, schema)
}
