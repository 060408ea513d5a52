package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error kinds recorded by PredictionErrors
const (
	KindValidation = "validation"
	KindProcessing = "processing"
)

// Inference metrics
var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifi_anomaly_predictions_total",
			Help: "Total number of successful predictions by verdict status",
		},
		[]string{"status"},
	)

	PredictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifi_anomaly_prediction_errors_total",
			Help: "Total number of rejected or failed prediction requests",
		},
		[]string{"kind"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wifi_anomaly_prediction_duration_seconds",
			Help:    "Time spent building, scaling and classifying one feature vector",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		},
	)

	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wifi_anomaly_model_info",
			Help: "Loaded model artifacts; the value is always 1",
		},
		[]string{"name", "version", "fingerprint"},
	)
)
