// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !noprometheus

// Package instrument exports clock subsystem metrics to Prometheus.  The
// noprometheus build tag compiles it out.
package instrument

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/op/go-logging.v1"
)

var (
	readings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "katzenpost_clock_readings_total",
			Help: "Number of successful clock readings",
		},
		[]string{"clock"},
	)
	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "katzenpost_clock_failures_total",
			Help: "Number of failed clock readings",
		},
		[]string{"clock", "kind"},
	)
	anomaliesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "katzenpost_clock_anomalies_recorded_total",
			Help: "Number of clock anomalies written to the anomaly store",
		},
	)
	samplers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "katzenpost_clock_active_samplers",
			Help: "Number of goroutines currently sampling the clocks",
		},
	)
)

func init() {
	prometheus.MustRegister(readings)
	prometheus.MustRegister(failures)
	prometheus.MustRegister(anomaliesRecorded)
	prometheus.MustRegister(samplers)
}

// Init exposes the registered metrics via HTTP on address.
func Init(address string, log *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(address, mux); err != nil {
			log.Errorf("metrics listener on %v terminated: %v", address, err)
		}
	}()
}

// Reading increments the counter of successful readings of clock.
func Reading(clock string) {
	readings.WithLabelValues(clock).Inc()
}

// Failure increments the counter of failed readings of clock.
func Failure(clock, kind string) {
	failures.WithLabelValues(clock, kind).Inc()
}

// AnomalyRecorded increments the counter of persisted anomalies.
func AnomalyRecorded() {
	anomaliesRecorded.Inc()
}

// SamplerStarted increments the number of active samplers.
func SamplerStarted() {
	samplers.Inc()
}

// SamplerStopped decrements the number of active samplers.
func SamplerStopped() {
	samplers.Dec()
}
