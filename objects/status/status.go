// /home/krylon/go/src/github.com/blicero/courier/objects/status/status.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 14:41:50 krylon>

// Package status contains symbolic constants for the stages a
// scheduled Item passes through, from creation to hand-off.
package status

import "fmt"

// Status describes where an Item stands in its lifecycle.
// The values are persisted verbatim in the store.
type Status string

// Scheduled means the Item is waiting for its scheduled time.
// Notified means the user has been alerted that the Item is due.
// Downloaded means the Item has been handed off to the external application.
const (
	Scheduled  Status = "scheduled"
	Notified   Status = "notified"
	Downloaded Status = "downloaded"
)

// All returns all known Status values in lifecycle order.
func All() []Status {
	return []Status{Scheduled, Notified, Downloaded}
} // func All() []Status

// Valid returns true if s is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case Scheduled, Notified, Downloaded:
		return true
	default:
		return false
	}
} // func (s Status) Valid() bool

// Parse converts a string as found in the store into a Status.
func Parse(str string) (Status, error) {
	var s = Status(str)

	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q", str)
	}

	return s, nil
} // func Parse(str string) (Status, error)
