// /home/krylon/go/src/github.com/blicero/courier/dispatch/metrics.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 18:16:33 krylon>

package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_notifications_total",
			Help: "Number of alerts presented, live or simulated",
		},
		[]string{"kind"},
	)

	notifyErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courier_notification_errors_total",
			Help: "Number of alerts that could not be presented",
		},
	)

	decisionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_notification_decisions_total",
			Help: "Answers to alerts",
		},
		[]string{"decision"},
	)
)
