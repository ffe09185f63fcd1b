// /home/krylon/go/src/github.com/blicero/courier/lifecycle/lifecycle.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 16:05:39 krylon>

// Package lifecycle defines which Status an Item may move to next.
// It holds no state and performs no I/O; every other part of the
// application that needs to make a decision based on an Item's Status
// asks this package instead of comparing Status values itself.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
)

// scheduled -> notified -> downloaded, and downloaded -> downloaded for
// handing off an Item a second time.
var transitions = map[status.Status]map[status.Status]bool{
	status.Scheduled: {
		status.Notified: true,
	},
	status.Notified: {
		status.Downloaded: true,
	},
	status.Downloaded: {
		status.Downloaded: true,
	},
}

// InvalidTransition is returned when an Item is asked to move to a Status
// that cannot follow its current one.
type InvalidTransition struct {
	From status.Status
	To   status.Status
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition %q -> %q", e.From, e.To)
} // func (e *InvalidTransition) Error() string

// Validate checks if an Item may move from one Status to another.
func Validate(from, to status.Status) error {
	if allowed, ok := transitions[from]; !ok || !allowed[to] {
		return &InvalidTransition{From: from, To: to}
	}

	return nil
} // func Validate(from, to status.Status) error

// IsDue returns true if the Item is still waiting for its scheduled time
// and that time has come. An Item is due at the very instant of its
// ScheduledTime.
func IsDue(item *objects.Item, now time.Time) bool {
	return item.Status == status.Scheduled && !now.Before(item.ScheduledTime)
} // func IsDue(item *objects.Item, now time.Time) bool

// NextOnDue returns the Status an Item moves to once the user has been
// notified that it is due.
func NextOnDue(item *objects.Item) (status.Status, error) {
	if err := Validate(item.Status, status.Notified); err != nil {
		return item.Status, err
	}

	return status.Notified, nil
} // func NextOnDue(item *objects.Item) (status.Status, error)

// NextOnHandoff returns the Status an Item moves to once it has been
// handed off to the external application.
func NextOnHandoff(item *objects.Item) (status.Status, error) {
	if err := Validate(item.Status, status.Downloaded); err != nil {
		return item.Status, err
	}

	return status.Downloaded, nil
} // func NextOnHandoff(item *objects.Item) (status.Status, error)

// Predecessors returns all Status values an Item may have immediately
// before moving to the given Status. Gateways use this to make status
// updates conditional on the current value in the store.
func Predecessors(to status.Status) []status.Status {
	var pred = make([]status.Status, 0, 2)

	for _, from := range status.All() {
		if transitions[from][to] {
			pred = append(pred, from)
		}
	}

	return pred
} // func Predecessors(to status.Status) []status.Status
