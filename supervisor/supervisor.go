// /home/krylon/go/src/github.com/blicero/courier/supervisor/supervisor.go
// -*- mode: go; coding: utf-8; -*-
// Created on 21. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-21 12:47:15 krylon>

// Package supervisor decides at startup whether the application talks to
// the real store or shows demo data, and owns the list of Items presented
// to the user.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blicero/courier/clock"
	"github.com/blicero/courier/common"
	"github.com/blicero/courier/dispatch"
	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/handoff"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
	"golang.org/x/sync/singleflight"
)

// ErrOffline is returned by Refresh and Activate when the Supervisor has
// not been started or has been stopped.
var ErrOffline = errors.New("not connected to the store")

// ErrUnknownItem is returned by Activate for an ID that is not in the
// current Snapshot.
var ErrUnknownItem = errors.New("no such item")

// ErrBusy is returned by Activate while the same Item is still being
// activated.
var ErrBusy = errors.New("item is already being processed")

// Looper is the due-detection loop the Supervisor starts in connected mode.
type Looper interface {
	Start(ctx context.Context) error
	Stop()
	OnRefresh(fn func(context.Context) error)
}

// Simulator presents a demo alert for an Item.
type Simulator interface {
	Simulate(ctx context.Context, item *objects.Item) (*dispatch.Prompt, error)
}

// Snapshot is the state presented to the user.
type Snapshot struct {
	Items       []objects.Item
	Mode        objects.Mode
	Generation  uint64
	RefreshedAt time.Time
	Reason      string `json:",omitempty"`
}

// Clone returns a deep copy of the Snapshot.
func (s *Snapshot) Clone() Snapshot {
	var dup = *s

	dup.Items = make([]objects.Item, len(s.Items))
	for i := range s.Items {
		dup.Items[i] = s.Items[i].Clone()
	}

	return dup
} // func (s *Snapshot) Clone() Snapshot

// Find returns the Item with the given ID.
func (s *Snapshot) Find(id int64) (objects.Item, bool) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return s.Items[i].Clone(), true
		}
	}

	return objects.Item{}, false
} // func (s *Snapshot) Find(id int64) (objects.Item, bool)

// Activation is the result of activating an Item.
type Activation struct {
	ItemID    int64
	Mode      objects.Mode
	Simulated bool
	Result    *handoff.Result
}

// Message returns a line of text describing the Activation to the user.
func (a *Activation) Message() string {
	if a.Simulated {
		return fmt.Sprintf("Simulated notification for item %d", a.ItemID)
	} else if a.Result != nil {
		return a.Result.Summary()
	}

	return ""
} // func (a *Activation) Message() string

// Supervisor probes the store, picks the operating Mode and keeps the
// Item list current.
type Supervisor struct {
	log     *log.Logger
	gw      gateway.Gateway
	loop    Looper
	sim     Simulator
	handoff dispatch.Handoffer
	clock   clock.Clock

	readGen atomic.Uint64
	flight  singleflight.Group

	lock   sync.RWMutex
	snap   Snapshot
	subs   map[int]chan Snapshot
	subCnt int
	busy   map[int64]bool
}

// New creates a Supervisor. The Looper may be nil, in which case nothing
// is polled even in connected mode.
func New(gw gateway.Gateway, loop Looper, sim Simulator, h dispatch.Handoffer, clk clock.Clock) (*Supervisor, error) {
	var (
		err error
		s   = &Supervisor{
			gw:      gw,
			loop:    loop,
			sim:     sim,
			handoff: h,
			clock:   clk,
			subs:    make(map[int]chan Snapshot),
			busy:    make(map[int64]bool),
		}
	)

	if s.log, err = common.GetLogger(logdomain.Supervisor); err != nil {
		return nil, err
	} else if s.clock == nil {
		s.clock = clock.Real{}
	}

	s.snap.Mode = objects.Offline
	return s, nil
} // func New(...) (*Supervisor, error)

// Start probes the store. If it is reachable and the Item list can be
// loaded, the Supervisor enters connected mode and starts the Looper.
// Otherwise it enters demo mode and publishes the sample Items; the
// Looper is never started in that case.
//
// Start only returns an error if the Looper cannot be started.
func (s *Supervisor) Start(ctx context.Context) error {
	var (
		err   error
		items []objects.Item
		gen   = s.readGen.Add(1)
	)

	if err = s.gw.Probe(ctx); err != nil {
		s.log.Printf("[ERROR] Cannot reach store, using demo mode: %s\n",
			err.Error())
		s.enterDemo(err)
		return nil
	} else if items, err = s.gw.ListAll(ctx); err != nil {
		s.log.Printf("[ERROR] Cannot load Items, using demo mode: %s\n",
			err.Error())
		s.enterDemo(err)
		return nil
	}

	s.lock.Lock()
	s.snap.Mode = objects.Connected
	s.snap.Reason = ""
	s.lock.Unlock()

	s.publish(items, gen)
	s.log.Printf("[INFO] Connected to store, %d Items\n", len(items))

	if s.loop != nil {
		s.loop.OnRefresh(s.reload)
		if err = s.loop.Start(ctx); err != nil {
			s.log.Printf("[ERROR] Cannot start poller: %s\n", err.Error())
			return err
		}
	}

	return nil
} // func (s *Supervisor) Start(ctx context.Context) error

func (s *Supervisor) enterDemo(cause error) {
	var gen = s.readGen.Add(1)

	s.lock.Lock()
	s.snap.Mode = objects.Demo
	s.snap.Reason = cause.Error()
	s.lock.Unlock()

	s.publish(DemoItems(s.clock.Now()), gen)
} // func (s *Supervisor) enterDemo(cause error)

// Stop stops the Looper and returns to offline mode.
func (s *Supervisor) Stop() {
	s.lock.RLock()
	var mode = s.snap.Mode
	s.lock.RUnlock()

	if mode == objects.Connected && s.loop != nil {
		s.loop.Stop()
	}

	s.lock.Lock()
	s.snap.Mode = objects.Offline
	s.snap.Generation = s.readGen.Add(1)
	s.snap.RefreshedAt = s.clock.Now()
	var snap = s.snap.Clone()
	s.lock.Unlock()

	s.broadcast(snap)
	s.log.Println("[INFO] Supervisor stopped")
} // func (s *Supervisor) Stop()

// Mode returns the current operating Mode.
func (s *Supervisor) Mode() objects.Mode {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snap.Mode
} // func (s *Supervisor) Mode() objects.Mode

// Snapshot returns a copy of the current Snapshot.
func (s *Supervisor) Snapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snap.Clone()
} // func (s *Supervisor) Snapshot() Snapshot

// Refresh re-reads the Item list. Concurrent calls share one read. In
// demo mode, the demo Items are returned unmodified and the store is not
// contacted.
func (s *Supervisor) Refresh(ctx context.Context) (Snapshot, error) {
	switch s.Mode() {
	case objects.Demo:
		return s.Snapshot(), nil
	case objects.Offline:
		return s.Snapshot(), ErrOffline
	}

	var _, err, _ = s.flight.Do("refresh", func() (any, error) {
		return nil, s.reload(ctx)
	})

	return s.Snapshot(), err
} // func (s *Supervisor) Refresh(ctx context.Context) (Snapshot, error)

// reload reads the full Item list and publishes it, unless a read that
// started later has been published already.
func (s *Supervisor) reload(ctx context.Context) error {
	if s.Mode() != objects.Connected {
		return nil
	}

	var (
		err   error
		items []objects.Item
		gen   = s.readGen.Add(1)
	)

	if items, err = s.gw.ListAll(ctx); err != nil {
		s.log.Printf("[ERROR] Cannot refresh Item list: %s\n",
			err.Error())
		return err
	}

	s.publish(items, gen)
	return nil
} // func (s *Supervisor) reload(ctx context.Context) error

func (s *Supervisor) publish(items []objects.Item, gen uint64) {
	objects.Normalize(items)

	s.lock.Lock()
	if gen <= s.snap.Generation {
		s.lock.Unlock()
		s.log.Printf("[DEBUG] Discarding stale read #%d, #%d is already published\n",
			gen,
			s.snap.Generation)
		return
	}

	s.snap.Items = items
	s.snap.Generation = gen
	s.snap.RefreshedAt = s.clock.Now()
	var snap = s.snap.Clone()
	s.lock.Unlock()

	s.broadcast(snap)
} // func (s *Supervisor) publish(items []objects.Item, gen uint64)

// Subscribe returns a channel that receives every new Snapshot. A slow
// subscriber only ever sees the latest one. Call the returned function to
// unsubscribe.
func (s *Supervisor) Subscribe() (<-chan Snapshot, func()) {
	var ch = make(chan Snapshot, 1)

	s.lock.Lock()
	var id = s.subCnt
	s.subCnt++
	s.subs[id] = ch
	s.lock.Unlock()

	var cancel = func() {
		s.lock.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.lock.Unlock()
	}

	return ch, cancel
} // func (s *Supervisor) Subscribe() (<-chan Snapshot, func())

func (s *Supervisor) broadcast(snap Snapshot) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}

		ch <- snap.Clone()
	}
} // func (s *Supervisor) broadcast(snap Snapshot)

// Activate is what happens when the user picks an Item. In connected mode,
// the Item is handed off; in demo mode, its alert is simulated.
func (s *Supervisor) Activate(ctx context.Context, id int64) (*Activation, error) {
	var (
		err  error
		item objects.Item
		ok   bool
		snap = s.Snapshot()
		act  = &Activation{ItemID: id, Mode: snap.Mode}
	)

	if snap.Mode == objects.Offline {
		return nil, ErrOffline
	} else if item, ok = snap.Find(id); !ok {
		return nil, ErrUnknownItem
	}

	s.lock.Lock()
	if s.busy[id] {
		s.lock.Unlock()
		return nil, ErrBusy
	}
	s.busy[id] = true
	s.lock.Unlock()

	defer func() {
		s.lock.Lock()
		delete(s.busy, id)
		s.lock.Unlock()
	}()

	switch snap.Mode {
	case objects.Demo:
		if s.sim == nil {
			return nil, errors.New("no simulator available")
		} else if _, err = s.sim.Simulate(ctx, &item); err != nil {
			return nil, err
		}

		act.Simulated = true
		return act, nil
	case objects.Connected:
		if s.handoff == nil {
			return nil, errors.New("no handoff available")
		}

		// The Result is kept even if the status update failed.
		act.Result, err = s.handoff.Handoff(ctx, &item)
		if act.Result == nil {
			return nil, err
		}

		return act, err
	default:
		return nil, fmt.Errorf("unexpected mode %s", snap.Mode)
	}
} // func (s *Supervisor) Activate(ctx context.Context, id int64) (*Activation, error)

// Busy returns true while the Item with the given ID is being activated.
func (s *Supervisor) Busy(id int64) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.busy[id]
} // func (s *Supervisor) Busy(id int64) bool

// Reload re-reads the Item list without coalescing it with reads that
// are already in progress. It is meant to run after a status write, when
// a read that started before the write would not show it.
func (s *Supervisor) Reload(ctx context.Context) error {
	return s.reload(ctx)
} // func (s *Supervisor) Reload(ctx context.Context) error
