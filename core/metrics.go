package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// errorLogsTotal counts logged entries by category and severity
	errorLogsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aerograph_error_logs_total",
		Help: "Total error log entries recorded by category and severity",
	}, []string{"category", "severity"})

	// validationFailuresTotal counts failed validation checks by entity kind
	validationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aerograph_validation_failures_total",
		Help: "Total failed record validations by entity kind",
	}, []string{"kind"})

	persistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aerograph_error_log_persist_failures_total",
		Help: "Total failures writing the error log buffer to durable storage",
	})

	streamDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aerograph_error_log_stream_dropped_total",
		Help: "Total entries dropped because a live subscriber was too slow",
	})
)
