// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors of vcompress.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	compressionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcompress_compressions_total",
		Help: "Compression runs by outcome and error class",
	}, []string{"outcome", "reason"})

	compressionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vcompress_compression_duration_seconds",
		Help:    "Wall time of a compression run",
		Buckets: prometheus.ExponentialBuckets(0.5, 2.0, 12), // 0.5s to ~17min
	}, []string{"outcome"})

	outputBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcompress_output_bytes_total",
		Help: "Bytes written to compressed output files",
	}, []string{"container"})

	compressionRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vcompress_compression_ratio",
		Help:    "Output size divided by input size",
		Buckets: prometheus.LinearBuckets(0.05, 0.1, 12),
	})

	activeJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vcompress_active_jobs",
		Help: "Compression runs currently in flight",
	})
)

// JobStarted marks a run as in flight.
func JobStarted() { activeJobs.Inc() }

// RecordJob records the terminal outcome of a run. reason is empty on success.
func RecordJob(outcome, reason string, elapsed time.Duration) {
	activeJobs.Dec()
	compressionsTotal.WithLabelValues(outcome, reason).Inc()
	compressionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordOutput records the produced file size and ratio against the input.
func RecordOutput(container string, inputSize, outputSize int64) {
	outputBytes.WithLabelValues(container).Add(float64(outputSize))
	if inputSize > 0 {
		compressionRatio.Observe(float64(outputSize) / float64(inputSize))
	}
}
