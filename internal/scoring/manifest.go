package scoring

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes a deployed model: its feature order and artifact files.
//
//	name: wifi-anomaly
//	version: "2024-05-01"
//	features: ["Flow Duration", ...]
//	scaler: scaler.json
//	classifier: xgb_model.json
type Manifest struct {
	Name       string   `yaml:"name"`
	Version    string   `yaml:"version"`
	Features   []string `yaml:"features"`
	Scaler     string   `yaml:"scaler"`
	Classifier string   `yaml:"classifier"`
}

// LoadManifest reads a manifest and resolves artifact paths relative to it
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model manifest: %w", err)
	}
	if m.Scaler == "" || m.Classifier == "" {
		return nil, fmt.Errorf("model manifest must name both scaler and classifier artifacts")
	}

	dir := filepath.Dir(path)
	if !filepath.IsAbs(m.Scaler) {
		m.Scaler = filepath.Join(dir, m.Scaler)
	}
	if !filepath.IsAbs(m.Classifier) {
		m.Classifier = filepath.Join(dir, m.Classifier)
	}
	return &m, nil
}
