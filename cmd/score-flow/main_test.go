package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/wifi-anomaly-api/internal/scoring"
)

func TestScoreSource(t *testing.T) {
	scorer, err := scoring.Load(scoring.LoadOptions{ManifestPath: "../../internal/scoring/testdata/model.yaml"})
	require.NoError(t, err)

	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	normal := write("normal.json", `{"Flow Duration": 100, "Tot Fwd Pkts": 2, "Tot Bwd Pkts": 2, "TotLen Fwd Pkts": 500,
		"TotLen Bwd Pkts": 500, "Fwd Pkt Len Mean": 250, "Bwd Pkt Len Mean": 250, "Flow IAT Mean": 50,
		"Flow IAT Std": 5, "Fwd IAT Mean": 50}`)
	partial := write("partial.json", `{"Flow Duration": 100}`)

	res := scoreSource(scorer, normal)
	assert.Empty(t, res.Error)
	assert.Equal(t, scoring.Verdict{Prediction: 0, Status: scoring.StatusNormal}, res.Verdict)

	res = scoreSource(scorer, partial)
	assert.Contains(t, res.Error, "Missing one or more required features")

	res = scoreSource(scorer, filepath.Join(dir, "absent.json"))
	assert.NotEmpty(t, res.Error)
}
