// Command score-flow scores flow records offline against the same artifacts
// the server loads. Each argument is a JSON file holding one flow object; with
// no arguments a single flow is read from stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ajharbinger/wifi-anomaly-api/internal/features"
	"github.com/ajharbinger/wifi-anomaly-api/internal/scoring"
	"github.com/ajharbinger/wifi-anomaly-api/pkg/config"
)

type result struct {
	Source string `json:"source"`
	scoring.Verdict
	Error string `json:"error,omitempty"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.New()

	scorer, err := scoring.Load(scoring.LoadOptions{
		ManifestPath:   cfg.ManifestPath,
		ScalerPath:     cfg.ScalerPath,
		ClassifierPath: cfg.ModelPath,
	})
	if err != nil {
		log.Fatalf("Failed to load model artifacts: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	failed := false

	sources := os.Args[1:]
	if len(sources) == 0 {
		sources = []string{"-"}
	}
	for _, src := range sources {
		res := scoreSource(scorer, src)
		if res.Error != "" {
			failed = true
		}
		if err := enc.Encode(res); err != nil {
			log.Fatalf("Failed to write result: %v", err)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func scoreSource(scorer *scoring.Scorer, src string) result {
	res := result{Source: src}

	var r io.Reader = os.Stdin
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		defer f.Close()
		r = f
	}

	payload, err := features.DecodePayload(r)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	vec, err := scorer.Schema().Build(payload)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	verdict, err := scorer.Score(vec)
	if err != nil {
		res.Error = fmt.Sprintf("scoring failed: %v", err)
		return res
	}
	res.Verdict = verdict
	return res
}
