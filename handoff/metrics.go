// /home/krylon/go/src/github.com/blicero/courier/handoff/metrics.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 15:25:10 krylon>

package handoff

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	handoffTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_handoff_total",
			Help: "Number of handoffs by outcome and channel",
		},
		[]string{"outcome", "channel"},
	)

	handoffStepErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_handoff_step_errors_total",
			Help: "Number of failed handoff steps",
		},
		[]string{"step"},
	)

	handoffDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "courier_handoff_duration_seconds",
			Help:    "Time spent on a handoff, from the guard to the status update",
			Buckets: prometheus.DefBuckets,
		},
	)
)
