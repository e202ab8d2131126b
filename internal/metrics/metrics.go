// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package metrics turns progress events into Prometheus metrics, written in the
// text format read by node-exporter's textfile collector.
package metrics

import (
	"errors"

	"github.com/matt-FFFFFF/integrator/internal/progress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "integrator"

// ErrWriteTextfile is returned when the metrics file cannot be written.
var ErrWriteTextfile = errors.New("failed to write metrics textfile")

var _ progress.Reporter = (*Collector)(nil)

// Collector is a progress.Reporter that records script outcomes in its own registry.
type Collector struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration prometheus.Histogram
	running  prometheus.Gauge
	finished prometheus.Gauge
}

// NewCollector returns a Collector with a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		total: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scripts_total",
				Help:      "Number of scripts by final status.",
			},
			[]string{"status"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "script_duration_seconds",
				Help:      "Wall time of executed scripts.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
		running: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scripts_running",
				Help:      "Number of scripts currently holding a slot.",
			},
		),
		finished: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished.",
			},
		),
	}
}

// Report implements progress.Reporter.
func (c *Collector) Report(e progress.Event) {
	switch e.Type {
	case progress.EventStarted:
		c.running.Inc()
	case progress.EventCompleted:
		c.running.Dec()
		c.total.WithLabelValues("succeeded").Inc()
		c.duration.Observe(e.Data.Duration.Seconds())
	case progress.EventFailed:
		c.running.Dec()
		c.total.WithLabelValues("failed").Inc()
		c.duration.Observe(e.Data.Duration.Seconds())
	case progress.EventSkipped:
		c.total.WithLabelValues("skipped").Inc()
	case progress.EventQueued, progress.EventOutput:
	}
}

// Close implements progress.Reporter. It stamps the run as finished.
func (c *Collector) Close() {
	c.finished.SetToCurrentTime()
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format. The file
// is written to a temporary name and renamed, so readers never see partial output.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Join(ErrWriteTextfile, err)
	}

	return nil
}
