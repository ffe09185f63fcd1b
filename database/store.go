// /home/krylon/go/src/github.com/blicero/courier/database/store.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 12:03:19 krylon>

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
)

var _ gateway.Gateway = (*Pool)(nil)

func (pool *Pool) acquire(ctx context.Context) (*Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var db = pool.Get()
	if db == nil {
		return nil, ErrPoolClosed
	}

	return db, nil
} // func (pool *Pool) acquire(ctx context.Context) (*Database, error)

// Probe checks that the database can be queried.
func (pool *Pool) Probe(ctx context.Context) error {
	var (
		err error
		db  *Database
	)

	if db, err = pool.acquire(ctx); err != nil {
		return &gateway.ConnectivityError{Reason: pool.path, Cause: err}
	}

	defer pool.Put(db)

	if err = db.db.PingContext(ctx); err != nil {
		pool.log.Printf("[ERROR] Cannot ping database %s: %s\n",
			pool.path,
			err.Error())
		return &gateway.ConnectivityError{Reason: pool.path, Cause: err}
	}

	return nil
} // func (pool *Pool) Probe(ctx context.Context) error

// ListAll returns all Items in the database.
func (pool *Pool) ListAll(ctx context.Context) ([]objects.Item, error) {
	var (
		err   error
		db    *Database
		items []objects.Item
	)

	if db, err = pool.acquire(ctx); err != nil {
		return nil, &gateway.FetchError{Op: "ListAll", Cause: err}
	}

	defer pool.Put(db)

	if items, err = db.ItemGetAll(); err != nil {
		return nil, &gateway.FetchError{Op: "ListAll", Cause: err}
	}

	objects.Normalize(items)
	return items, nil
} // func (pool *Pool) ListAll(ctx context.Context) ([]objects.Item, error)

// ListDue returns the Items that are due at the given time.
func (pool *Pool) ListDue(ctx context.Context, now time.Time) ([]objects.Item, error) {
	var (
		err   error
		db    *Database
		items []objects.Item
	)

	if db, err = pool.acquire(ctx); err != nil {
		return nil, &gateway.FetchError{Op: "ListDue", Cause: err}
	}

	defer pool.Put(db)

	if items, err = db.ItemGetDue(now); err != nil {
		return nil, &gateway.FetchError{Op: "ListDue", Cause: err}
	}

	objects.Normalize(items)
	return items, nil
} // func (pool *Pool) ListDue(ctx context.Context, now time.Time) ([]objects.Item, error)

// SetStatus changes the Status of one Item, provided its current Status
// in the database may be followed by the new one.
func (pool *Pool) SetStatus(ctx context.Context, id int64, s status.Status) error {
	var (
		err     error
		db      *Database
		matched bool
		pred    = lifecycle.Predecessors(s)
	)

	if len(pred) == 0 {
		return &gateway.UpdateError{
			ID:     id,
			Status: s,
			Cause:  fmt.Errorf("no status may precede %q", s),
		}
	} else if db, err = pool.acquire(ctx); err != nil {
		return &gateway.UpdateError{ID: id, Status: s, Cause: err}
	}

	defer pool.Put(db)

	if matched, err = db.ItemSetStatus(id, s, pred...); err != nil {
		return &gateway.UpdateError{ID: id, Status: s, Cause: err}
	} else if !matched {
		pool.log.Printf("[INFO] Status update of Item %d to %s matched no row\n",
			id,
			s)
		return &gateway.UpdateError{ID: id, Status: s, Cause: gateway.ErrConflict}
	}

	return nil
} // func (pool *Pool) SetStatus(ctx context.Context, id int64, s status.Status) error
