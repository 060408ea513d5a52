package scoring

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"

	apperrors "github.com/ajharbinger/wifi-anomaly-api/internal/errors"
	"github.com/ajharbinger/wifi-anomaly-api/internal/features"
)

// DefaultModelName is reported when no manifest names the model
const DefaultModelName = "wifi-anomaly-xgb"

// LoadOptions locates the scorer artifacts. When ManifestPath is set it
// takes precedence over the individual paths.
type LoadOptions struct {
	ManifestPath   string
	ScalerPath     string
	ClassifierPath string
}

// Load reads, validates and fingerprints the scorer artifacts
func Load(opts LoadOptions) (*Scorer, error) {
	meta := Metadata{
		Name:           DefaultModelName,
		ScalerPath:     opts.ScalerPath,
		ClassifierPath: opts.ClassifierPath,
	}
	names := features.DefaultNames

	if opts.ManifestPath != "" {
		m, err := LoadManifest(opts.ManifestPath)
		if err != nil {
			return nil, apperrors.ArtifactError("invalid model manifest", err).WithOperation("load_manifest")
		}
		if m.Name != "" {
			meta.Name = m.Name
		}
		meta.Version = m.Version
		meta.ScalerPath = m.Scaler
		meta.ClassifierPath = m.Classifier
		if len(m.Features) > 0 {
			names = m.Features
		}
	}

	schema, err := features.NewSchema(names)
	if err != nil {
		return nil, apperrors.ArtifactError("invalid feature schema", err).WithOperation("load_schema")
	}

	scalerData, err := os.ReadFile(meta.ScalerPath)
	if err != nil {
		return nil, apperrors.ArtifactError("failed to read scaler artifact", err).WithOperation("load_scaler")
	}
	classifierData, err := os.ReadFile(meta.ClassifierPath)
	if err != nil {
		return nil, apperrors.ArtifactError("failed to read classifier artifact", err).WithOperation("load_classifier")
	}

	scaler, err := LoadScaler(bytes.NewReader(scalerData), schema)
	if err != nil {
		return nil, apperrors.ArtifactError("invalid scaler artifact", err).
			WithOperation("load_scaler").WithDetails(meta.ScalerPath)
	}
	classifier, err := LoadTreeClassifier(bytes.NewReader(classifierData), schema)
	if err != nil {
		return nil, apperrors.ArtifactError("invalid classifier artifact", err).
			WithOperation("load_classifier").WithDetails(meta.ClassifierPath)
	}

	fp, err := Fingerprint(scalerData, classifierData)
	if err != nil {
		return nil, apperrors.ArtifactError("failed to fingerprint artifacts", err)
	}
	meta.Fingerprint = fp
	meta.LoadedAt = time.Now().UTC()

	return NewScorer(schema, scaler, classifier, meta)
}

// Fingerprint returns the hex BLAKE2b-256 digest of the artifacts in order.
// Each artifact is length-prefixed so boundaries cannot shift.
func Fingerprint(artifacts ...[]byte) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, a := range artifacts {
		fmt.Fprintf(h, "%d:", len(a))
		h.Write(a)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
