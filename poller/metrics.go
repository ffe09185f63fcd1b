// /home/krylon/go/src/github.com/blicero/courier/poller/metrics.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 19:41:18 krylon>

package poller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cycleTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courier_poller_cycles_total",
			Help: "Number of due-detection cycles run",
		},
	)

	cycleErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courier_poller_cycle_errors_total",
			Help: "Number of cycles skipped because the due Items could not be listed",
		},
	)

	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "courier_poller_cycle_duration_seconds",
			Help:    "Duration of due-detection cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	itemsNotified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courier_poller_items_notified_total",
			Help: "Number of Items moved to notified",
		},
	)

	itemErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_poller_item_errors_total",
			Help: "Number of per-Item failures, by step",
		},
		[]string{"step"},
	)
)
