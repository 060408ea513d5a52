// Package features defines the ordered flow-statistics feature schema and
// turns decoded request payloads into feature vectors.
package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/ajharbinger/wifi-anomaly-api/internal/errors"
)

// DefaultNames is the feature order the flow classifier was trained with
var DefaultNames = []string{
	"Flow Duration", "Tot Fwd Pkts", "Tot Bwd Pkts",
	"TotLen Fwd Pkts", "TotLen Bwd Pkts",
	"Fwd Pkt Len Mean", "Bwd Pkt Len Mean",
	"Flow IAT Mean", "Flow IAT Std", "Fwd IAT Mean",
}

// MissingFeaturesMessage is the caller-facing message for incomplete payloads
const MissingFeaturesMessage = "Missing one or more required features."

// Vector is an ordered feature vector
type Vector []float64

// Schema is an immutable ordered list of required feature names
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema creates a schema from an ordered list of feature names
func NewSchema(names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("feature schema is empty")
	}

	s := &Schema{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("feature %d has an empty name", i)
		}
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("feature %q is listed more than once", name)
		}
		s.names[i] = name
		s.index[name] = i
	}
	return s, nil
}

// Default returns the schema for DefaultNames
func Default() *Schema {
	s, err := NewSchema(DefaultNames)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns a copy of the feature names in order
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of features
func (s *Schema) Len() int {
	return len(s.names)
}

// Equal reports whether other lists the same names in the same order
func (s *Schema) Equal(other []string) bool {
	if len(other) != len(s.names) {
		return false
	}
	for i, name := range s.names {
		if other[i] != name {
			return false
		}
	}
	return true
}

// Missing returns the required features absent from payload, in schema order
func (s *Schema) Missing(payload map[string]interface{}) []string {
	var missing []string
	for _, name := range s.names {
		if _, ok := payload[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Build validates payload and returns its values in schema order.
// Keys not in the schema are ignored. A missing feature yields a validation
// error wrapping *MissingFeaturesError; a value that cannot be read as a
// finite number yields a processing error.
func (s *Schema) Build(payload map[string]interface{}) (Vector, error) {
	if missing := s.Missing(payload); len(missing) > 0 {
		return nil, apperrors.ValidationError(MissingFeaturesMessage, &apperrors.MissingFeaturesError{
			Required: s.Names(),
			Missing:  missing,
		}).WithOperation("build_vector")
	}

	vec := make(Vector, len(s.names))
	for i, name := range s.names {
		v, err := ToFloat(payload[name])
		if err != nil {
			return nil, apperrors.ProcessingError(fmt.Sprintf("invalid value for feature %q", name), err).
				WithOperation("build_vector")
		}
		vec[i] = v
	}
	return vec, nil
}

// ToFloat converts a decoded JSON value to a finite float64. Numbers,
// numeric strings and booleans are accepted.
func ToFloat(v interface{}) (float64, error) {
	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert number to float: %q", val.String())
		}
		f = parsed
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case bool:
		if val {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", val)
		}
		f = parsed
	case nil:
		return 0, fmt.Errorf("input contains null")
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("input contains NaN, infinity or a value too large for float64")
	}
	return f, nil
}
