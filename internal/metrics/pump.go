// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pumpSamples = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcompress_pump_samples_total",
		Help: "Sample units moved from source to sink",
	}, []string{"track"})

	pumpWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcompress_pump_backpressure_waits_total",
		Help: "Times a pump waited for sink capacity",
	}, []string{"track"})

	pumpResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcompress_pump_results_total",
		Help: "Terminal pump states",
	}, []string{"track", "state"})
)

// IncPumpSample counts one appended sample.
func IncPumpSample(track string) { pumpSamples.WithLabelValues(track).Inc() }

// IncPumpWait counts one backpressure wait.
func IncPumpWait(track string) { pumpWaits.WithLabelValues(track).Inc() }

// RecordPumpResult counts a pump reaching a terminal state.
func RecordPumpResult(track, state string) { pumpResults.WithLabelValues(track, state).Inc() }
