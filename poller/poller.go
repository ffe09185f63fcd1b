// /home/krylon/go/src/github.com/blicero/courier/poller/poller.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-21 10:08:57 krylon>

// Package poller periodically looks for Items that have become due and
// alerts the user about each of them exactly once.
package poller

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/blicero/courier/clock"
	"github.com/blicero/courier/common"
	"github.com/blicero/courier/dispatch"
	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
)

// DefaultInterval is the time between two cycles.
const DefaultInterval = time.Minute

// ErrStopped is returned by RunCycle once the Poller has been stopped.
var ErrStopped = errors.New("poller has been stopped")

// Dispatcher presents alerts and follows up on them.
type Dispatcher interface {
	Notify(ctx context.Context, item *objects.Item) (*dispatch.Prompt, error)
	Follow(p *dispatch.Prompt)
}

// Report summarizes one cycle.
type Report struct {
	Started  time.Time
	Due      int
	Notified int
	Skipped  int
	Failed   int
}

// Poller runs the due-detection cycle on a fixed cadence.
//
// An Item is alerted about at most once: the Poller remembers every Item
// whose status it has successfully set to notified, and does not alert
// about it again even if the store still reports it as scheduled. If
// setting the status fails, the Item is not remembered and will be
// alerted about again in the next cycle; the answer to the first alert is
// ignored, since the Item cannot be handed off while it is scheduled.
type Poller struct {
	log      *log.Logger
	gw       gateway.Gateway
	disp     Dispatcher
	clock    clock.Clock
	interval time.Duration
	refresh  func(context.Context) error

	cycleLock sync.Mutex
	notified  map[int64]bool

	lock    sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a Poller. If clk is nil, the real clock is used; if
// interval is not positive, DefaultInterval is used.
func New(gw gateway.Gateway, d Dispatcher, clk clock.Clock, interval time.Duration) (*Poller, error) {
	var (
		err error
		p   = &Poller{
			gw:       gw,
			disp:     d,
			clock:    clk,
			interval: interval,
			notified: make(map[int64]bool),
		}
	)

	if p.log, err = common.GetLogger(logdomain.Poller); err != nil {
		return nil, err
	} else if p.clock == nil {
		p.clock = clock.Real{}
	}

	if p.interval <= 0 {
		p.interval = DefaultInterval
	}

	return p, nil
} // func New(...) (*Poller, error)

// OnRefresh sets the function called at the end of every cycle to re-read
// the full Item list.
func (p *Poller) OnRefresh(fn func(context.Context) error) {
	p.cycleLock.Lock()
	p.refresh = fn
	p.cycleLock.Unlock()
} // func (p *Poller) OnRefresh(fn func(context.Context) error)

// IsRunning returns true if the Poller's loop is active.
func (p *Poller) IsRunning() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.running
} // func (p *Poller) IsRunning() bool

// Start starts the loop. The first cycle runs after one interval has
// passed. Calling Start on a running Poller does nothing.
func (p *Poller) Start(ctx context.Context) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.stopped {
		return ErrStopped
	} else if p.running {
		return nil
	}

	var (
		lctx, cancel = context.WithCancel(ctx)
		ticker       = p.clock.NewTicker(p.interval)
	)

	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(lctx, ticker, p.done)

	p.log.Printf("[INFO] Poller started, interval %s\n", p.interval)
	return nil
} // func (p *Poller) Start(ctx context.Context) error

// Stop stops the loop, waits for it to exit and rejects further cycles.
// A cycle that is already running is allowed to finish.
func (p *Poller) Stop() {
	p.lock.Lock()
	var (
		done    = p.done
		cancel  = p.cancel
		running = p.running
	)
	p.stopped = true
	p.running = false
	p.lock.Unlock()

	if !running {
		return
	}

	cancel()
	<-done
	p.log.Println("[INFO] Poller stopped")
} // func (p *Poller) Stop()

func (p *Poller) loop(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	defer p.log.Println("[TRACE] Quitting poller loop")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			// Stopping the Poller does not abort a cycle in progress.
			if _, err := p.RunCycle(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, ErrStopped) {
				p.log.Printf("[ERROR] Cycle failed: %s\n", err.Error())
			}
		}
	}
} // func (p *Poller) loop(ctx context.Context, ticker clock.Ticker, done chan struct{})

func (p *Poller) isStopped() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.stopped
} // func (p *Poller) isStopped() bool

// RunCycle looks for due Items once. Cycles never overlap; a call made
// while another cycle is running waits for it to finish.
//
// If the due Items cannot be listed, the cycle is skipped and the
// FetchError returned. Failures concerning a single Item are logged and
// counted in the Report, but do not affect the other Items.
func (p *Poller) RunCycle(ctx context.Context) (*Report, error) {
	p.cycleLock.Lock()
	defer p.cycleLock.Unlock()

	if p.isStopped() {
		return nil, ErrStopped
	}

	var (
		err   error
		items []objects.Item
		rep   = &Report{Started: p.clock.Now()}
	)

	cycleTotal.Inc()
	defer func() {
		cycleDuration.Observe(p.clock.Now().Sub(rep.Started).Seconds())
	}()

	if items, err = p.gw.ListDue(ctx, rep.Started); err != nil {
		p.log.Printf("[ERROR] Cannot list due Items, skipping cycle: %s\n",
			err.Error())
		cycleErrors.Inc()
		return nil, err
	}

	objects.Normalize(items)
	p.prune(items)

	for idx := range items {
		var item = &items[idx]

		if p.notified[item.ID] {
			item.Status = status.Notified
		}

		if !lifecycle.IsDue(item, rep.Started) {
			rep.Skipped++
			continue
		}

		rep.Due++

		if p.process(ctx, item) {
			rep.Notified++
		} else {
			rep.Failed++
		}
	}

	if rep.Due > 0 {
		p.log.Printf("[INFO] Cycle done: %d due, %d notified, %d failed, %d skipped\n",
			rep.Due,
			rep.Notified,
			rep.Failed,
			rep.Skipped)
	}

	if p.refresh != nil {
		if err = p.refresh(ctx); err != nil {
			p.log.Printf("[ERROR] Cannot refresh Item list: %s\n",
				err.Error())
		}
	}

	return rep, nil
} // func (p *Poller) RunCycle(ctx context.Context) (*Report, error)

// process alerts the user about one due Item and marks it as notified.
// It returns true if the Item's status was updated.
func (p *Poller) process(ctx context.Context, item *objects.Item) bool {
	var (
		err    error
		next   status.Status
		prompt *dispatch.Prompt
	)

	if next, err = lifecycle.NextOnDue(item); err != nil {
		p.log.Printf("[CANTHAPPEN] Due Item %d cannot be notified: %s\n",
			item.ID,
			err.Error())
		return false
	} else if prompt, err = p.disp.Notify(ctx, item); err != nil {
		p.log.Printf("[ERROR] Cannot alert about Item %d: %s\n",
			item.ID,
			err.Error())
		itemErrors.WithLabelValues("notify").Inc()
		return false
	} else if err = p.gw.SetStatus(ctx, item.ID, next); err != nil {
		p.log.Printf("[ERROR] Cannot mark Item %d as %s, it will be retried: %s\n",
			item.ID,
			next,
			err.Error())
		itemErrors.WithLabelValues("status").Inc()
		prompt.Unmarked = true
		p.disp.Follow(prompt)
		return false
	}

	p.notified[item.ID] = true
	itemsNotified.Inc()

	prompt.Item.Status = next
	p.disp.Follow(prompt)
	return true
} // func (p *Poller) process(ctx context.Context, item *objects.Item) bool

// prune forgets Items the store no longer reports as due; once the store
// has caught up with a status update, there is no need to remember it.
func (p *Poller) prune(due []objects.Item) {
	var present = make(map[int64]bool, len(due))

	for idx := range due {
		present[due[idx].ID] = true
	}

	for id := range p.notified {
		if !present[id] {
			delete(p.notified, id)
		}
	}
} // func (p *Poller) prune(due []objects.Item)
