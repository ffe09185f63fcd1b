// /home/krylon/go/src/github.com/blicero/courier/handoff/handoff.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 14:02:37 krylon>

// Package handoff passes a due Item on to the external application that
// publishes it. It prepares the Item (caption to the clipboard, assets to
// the staging folder), then works through a Chain of destinations until
// one of them can be opened.
package handoff

import (
	"errors"
	"fmt"
	"time"
)

//go:generate stringer -type=Outcome
//go:generate stringer -type=Channel

// Outcome is the overall result of a handoff.
type Outcome uint8

// Succeeded means the Item was prepared and a destination was opened.
// Degraded means a destination was opened, but preparing the Item failed
// at least partially.
// Failed means no destination could be opened.
const (
	Succeeded Outcome = iota
	Degraded
	Failed
)

// Channel identifies the kind of destination a handoff went to.
type Channel uint8

// NoChannel is reported when no destination was opened.
const (
	NoChannel Channel = iota
	DeepLink
	Web
	Store
)

// ErrCannotOpen is the cause of a StepError for a deep link no installed
// application claims.
var ErrCannotOpen = errors.New("no application can open this link")

// StepError records the failure of one step of a handoff. It never aborts
// the handoff by itself.
type StepError struct {
	Step   string
	Target string
	Cause  error
}

func (e *StepError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("handoff step %s failed: %s", e.Step, e.Cause.Error())
	}

	return fmt.Sprintf("handoff step %s (%s) failed: %s",
		e.Step,
		e.Target,
		e.Cause.Error())
} // func (e *StepError) Error() string

func (e *StepError) Unwrap() error { return e.Cause }

// Result describes how a handoff went.
type Result struct {
	RunID    string
	ItemID   int64
	Outcome  Outcome
	Channel  Channel
	Target   string
	Message  string
	Staged   []string
	Errors   []*StepError
	Started  time.Time
	Duration time.Duration
}

// OK returns true if a destination was opened.
func (r *Result) OK() bool {
	return r.Outcome != Failed
} // func (r *Result) OK() bool
