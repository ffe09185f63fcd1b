// /home/krylon/go/src/github.com/blicero/courier/gateway/gateway.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 17:02:55 krylon>

// Package gateway defines the interface through which the application
// reads and writes scheduled Items, and the errors it may return.
// Implementations live in the subpackages (and in the database package);
// none of them retries a failed operation on its own.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
)

// ErrConflict is the cause of an UpdateError when no row matched the
// update, because the Item does not exist or its current Status does not
// allow the requested change.
var ErrConflict = errors.New("no item matched the conditional update")

// Gateway is the only way the application talks to the store.
//
// ListAll returns all Items ordered by ScheduledTime, earliest first.
// ListDue returns the Items whose Status is scheduled and whose
// ScheduledTime is not after now, in the same order.
// SetStatus changes the Status of exactly one Item, and nothing else.
type Gateway interface {
	Probe(ctx context.Context) error
	ListAll(ctx context.Context) ([]objects.Item, error)
	ListDue(ctx context.Context, now time.Time) ([]objects.Item, error)
	SetStatus(ctx context.Context, id int64, s status.Status) error
}

// ConnectivityError means the store could not be reached at all.
type ConnectivityError struct {
	Reason string
	Cause  error
}

func (e *ConnectivityError) Error() string {
	if e.Cause == nil {
		return "store unreachable: " + e.Reason
	}
	return fmt.Sprintf("store unreachable: %s: %s", e.Reason, e.Cause.Error())
} // func (e *ConnectivityError) Error() string

func (e *ConnectivityError) Unwrap() error { return e.Cause }

// FetchError means a listing could not be retrieved or parsed.
type FetchError struct {
	Op    string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Cause.Error())
} // func (e *FetchError) Error() string

func (e *FetchError) Unwrap() error { return e.Cause }

// UpdateError means the Status of an Item could not be changed.
type UpdateError struct {
	ID     int64
	Status status.Status
	Cause  error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("cannot set status of item %d to %s: %s",
		e.ID,
		e.Status,
		e.Cause.Error())
} // func (e *UpdateError) Error() string

func (e *UpdateError) Unwrap() error { return e.Cause }
