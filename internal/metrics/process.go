// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	procTerminate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcompress_engine_process_terminate_total",
		Help: "Engine process terminations by signal",
	}, []string{"signal"})

	procExit = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcompress_engine_process_exit_total",
		Help: "Engine process exits by role and result",
	}, []string{"role", "result"})
)

// IncProcTerminate counts a signal sent to an engine process group.
func IncProcTerminate(signal string) { procTerminate.WithLabelValues(signal).Inc() }

// RecordProcExit counts an engine process exit. role is "probe", "decoder" or "encoder".
func RecordProcExit(role string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	procExit.WithLabelValues(role, result).Inc()
}
