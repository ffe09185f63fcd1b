// /home/krylon/go/src/github.com/blicero/courier/gateway/memory.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 09:14:26 krylon>

package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
)

// StatusCall records one call to Memory.SetStatus.
type StatusCall struct {
	ID     int64
	Status status.Status
	Err    error
}

// Memory is a Gateway that keeps its Items in RAM. Besides serving as a
// throwaway store, it can be told to fail in various ways and records the
// calls it receives.
//
// If DeferWrites is set, successful SetStatus calls are not visible to
// readers until Flush is called, mimicking a store with lagging reads.
type Memory struct {
	lock  sync.Mutex
	items map[int64]objects.Item

	ProbeErr    error
	ListAllErr  error
	ListDueErr  error
	FailStatus  map[int64]error
	DeferWrites bool

	pending      []StatusCall
	statusCalls  []StatusCall
	listAllCalls int
	listDueCalls int
}

// NewMemory creates a Memory Gateway holding copies of the given Items.
func NewMemory(items ...objects.Item) *Memory {
	var m = &Memory{
		items:      make(map[int64]objects.Item, len(items)),
		FailStatus: make(map[int64]error),
	}

	for idx := range items {
		m.items[items[idx].ID] = items[idx].Clone()
	}

	return m
} // func NewMemory(items ...objects.Item) *Memory

// Put adds or replaces an Item.
func (m *Memory) Put(item objects.Item) {
	m.lock.Lock()
	m.items[item.ID] = item.Clone()
	m.lock.Unlock()
} // func (m *Memory) Put(item objects.Item)

// Get returns a copy of the Item with the given ID.
func (m *Memory) Get(id int64) (objects.Item, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var item, ok = m.items[id]
	return item.Clone(), ok
} // func (m *Memory) Get(id int64) (objects.Item, bool)

// Probe returns ProbeErr wrapped in a ConnectivityError, if set.
func (m *Memory) Probe(ctx context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.ProbeErr != nil {
		return &ConnectivityError{Reason: "memory probe", Cause: m.ProbeErr}
	}

	return ctx.Err()
} // func (m *Memory) Probe(ctx context.Context) error

// ListAll returns all Items, earliest first.
func (m *Memory) ListAll(ctx context.Context) ([]objects.Item, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.listAllCalls++

	if m.ListAllErr != nil {
		return nil, &FetchError{Op: "ListAll", Cause: m.ListAllErr}
	}

	return m.collect(func(*objects.Item) bool { return true }), nil
} // func (m *Memory) ListAll(ctx context.Context) ([]objects.Item, error)

// ListDue returns all Items that are scheduled and not after now.
func (m *Memory) ListDue(ctx context.Context, now time.Time) ([]objects.Item, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.listDueCalls++

	if m.ListDueErr != nil {
		return nil, &FetchError{Op: "ListDue", Cause: m.ListDueErr}
	}

	return m.collect(func(i *objects.Item) bool {
		return i.Status == status.Scheduled && !i.ScheduledTime.After(now)
	}), nil
} // func (m *Memory) ListDue(ctx context.Context, now time.Time) ([]objects.Item, error)

func (m *Memory) collect(pred func(*objects.Item) bool) []objects.Item {
	var list = make([]objects.Item, 0, len(m.items))

	for id := range m.items {
		var item = m.items[id]
		if pred(&item) {
			list = append(list, item.Clone())
		}
	}

	objects.Normalize(list)
	return list
} // func (m *Memory) collect(pred func(*objects.Item) bool) []objects.Item

// SetStatus updates the Status of one Item, provided its current Status
// allows it.
func (m *Memory) SetStatus(ctx context.Context, id int64, s status.Status) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	var (
		err  error
		call = StatusCall{ID: id, Status: s}
	)

	if ferr := m.FailStatus[id]; ferr != nil {
		err = &UpdateError{ID: id, Status: s, Cause: ferr}
	} else if item, ok := m.items[id]; !ok {
		err = &UpdateError{ID: id, Status: s, Cause: ErrConflict}
	} else if lifecycle.Validate(item.Status, s) != nil {
		err = &UpdateError{ID: id, Status: s, Cause: ErrConflict}
	}

	call.Err = err
	m.statusCalls = append(m.statusCalls, call)

	if err != nil {
		return err
	} else if m.DeferWrites {
		m.pending = append(m.pending, call)
		return nil
	}

	m.apply(call)
	return nil
} // func (m *Memory) SetStatus(ctx context.Context, id int64, s status.Status) error

func (m *Memory) apply(c StatusCall) {
	var item = m.items[c.ID]
	item.Status = c.Status
	m.items[c.ID] = item
} // func (m *Memory) apply(c StatusCall)

// Flush applies all deferred status writes.
func (m *Memory) Flush() {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, c := range m.pending {
		m.apply(c)
	}

	m.pending = nil
} // func (m *Memory) Flush()

// StatusCalls returns a copy of all SetStatus calls received so far.
func (m *Memory) StatusCalls() []StatusCall {
	m.lock.Lock()
	defer m.lock.Unlock()

	var calls = make([]StatusCall, len(m.statusCalls))
	copy(calls, m.statusCalls)
	return calls
} // func (m *Memory) StatusCalls() []StatusCall

// ListDueCalls returns the number of times ListDue was called.
func (m *Memory) ListDueCalls() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.listDueCalls
} // func (m *Memory) ListDueCalls() int

// ListAllCalls returns the number of times ListAll was called.
func (m *Memory) ListAllCalls() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.listAllCalls
} // func (m *Memory) ListAllCalls() int
