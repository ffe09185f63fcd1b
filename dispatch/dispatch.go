// /home/krylon/go/src/github.com/blicero/courier/dispatch/dispatch.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 18:14:50 krylon>

// Package dispatch alerts the user that an Item is due and acts on their
// answer. The alert offers two choices: deal with it later, or hand the
// Item off right away.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/handoff"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
)

//go:generate stringer -type=Decision

// Decision is the user's answer to an alert.
type Decision uint8

// Defer means the user wants to deal with the Item later, or did not
// answer at all. ActNow means the Item should be handed off right away.
const (
	Defer Decision = iota
	ActNow
)

// Texts of the alert.
const (
	AlertTitle   = "Time to Post!"
	AlertAccept  = "Download & Post"
	AlertDecline = "Later"
)

// DefaultDecisionTimeout is how long Follow waits for an answer before
// treating the alert as deferred.
const DefaultDecisionTimeout = time.Hour

// ErrClosed is returned by Notify and Simulate after the Dispatcher has
// been closed.
var ErrClosed = errors.New("dispatcher has been closed")

// Notifier presents an alert to the user. The returned channel delivers
// exactly one Decision.
type Notifier interface {
	Present(ctx context.Context, n *objects.Notification) (<-chan Decision, error)
}

// Handoffer hands an Item off to the external application.
type Handoffer interface {
	Handoff(ctx context.Context, item *objects.Item) (*handoff.Result, error)
}

// NewNotification builds the alert for an Item.
func NewNotification(item *objects.Item) objects.Notification {
	return objects.Notification{
		ID:     common.GetUUID(),
		ItemID: item.ID,
		Title:  AlertTitle,
		Body: fmt.Sprintf("Your %d slide carousel is ready to post on Instagram!",
			item.PayloadCount),
		Accept:  AlertAccept,
		Decline: AlertDecline,
	}
} // func NewNotification(item *objects.Item) objects.Notification

// Prompt is an alert that has been presented and whose answer is pending.
// Unmarked is set when the Item could not be marked as notified; accepting
// such a Prompt does nothing, the Item is alerted about again instead.
type Prompt struct {
	Item         objects.Item
	Notification objects.Notification
	Simulated    bool
	Unmarked     bool
	Presented    time.Time
	answer       <-chan Decision
}

// Wait blocks until the user has answered or the Context is done. A
// Prompt that was never answered counts as deferred.
func (p *Prompt) Wait(ctx context.Context) Decision {
	select {
	case d, ok := <-p.answer:
		if !ok {
			return Defer
		}
		return d
	case <-ctx.Done():
		return Defer
	}
} // func (p *Prompt) Wait(ctx context.Context) Decision

// Dispatcher presents alerts and follows up on the answers.
type Dispatcher struct {
	log      *log.Logger
	notifier Notifier
	handoff  Handoffer
	timeout  time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lock     sync.Mutex
	closed   bool
}

// New creates a Dispatcher. The Handoffer may be nil if the Dispatcher
// only ever simulates alerts.
func New(n Notifier, h Handoffer) (*Dispatcher, error) {
	var (
		err error
		d   = &Dispatcher{
			notifier: n,
			handoff:  h,
			timeout:  DefaultDecisionTimeout,
		}
	)

	if d.log, err = common.GetLogger(logdomain.Dispatch); err != nil {
		return nil, err
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d, nil
} // func New(n Notifier, h Handoffer) (*Dispatcher, error)

// SetDecisionTimeout sets how long Follow waits for an answer.
func (d *Dispatcher) SetDecisionTimeout(t time.Duration) {
	d.lock.Lock()
	d.timeout = t
	d.lock.Unlock()
} // func (d *Dispatcher) SetDecisionTimeout(t time.Duration)

// Notify presents the alert for a due Item. It does not wait for an
// answer; pass the Prompt to Follow for that.
func (d *Dispatcher) Notify(ctx context.Context, item *objects.Item) (*Prompt, error) {
	return d.present(ctx, item, false)
} // func (d *Dispatcher) Notify(ctx context.Context, item *objects.Item) (*Prompt, error)

// Simulate presents the same alert as Notify, for demo mode, and follows
// up on it. Accepting a simulated alert never hands anything off.
func (d *Dispatcher) Simulate(ctx context.Context, item *objects.Item) (*Prompt, error) {
	var p, err = d.present(ctx, item, true)

	if err != nil {
		return nil, err
	}

	d.Follow(p)
	return p, nil
} // func (d *Dispatcher) Simulate(ctx context.Context, item *objects.Item) (*Prompt, error)

func (d *Dispatcher) present(ctx context.Context, item *objects.Item, simulated bool) (*Prompt, error) {
	var (
		err  error
		kind = "live"
		p    = &Prompt{
			Item:         item.Clone(),
			Notification: NewNotification(item),
			Simulated:    simulated,
		}
	)

	if simulated {
		kind = "simulated"
	}

	d.lock.Lock()
	var closed = d.closed
	d.lock.Unlock()

	if closed {
		return nil, ErrClosed
	} else if p.answer, err = d.notifier.Present(ctx, &p.Notification); err != nil {
		d.log.Printf("[ERROR] Cannot present alert for Item %d: %s\n",
			item.ID,
			err.Error())
		notifyErrors.Inc()
		return nil, err
	}

	p.Presented = time.Now()
	notifyTotal.WithLabelValues(kind).Inc()
	d.log.Printf("[INFO] Presented %s alert %s for Item %d\n",
		kind,
		p.Notification.ID,
		item.ID)

	return p, nil
} // func (d *Dispatcher) present(ctx context.Context, item *objects.Item, simulated bool) (*Prompt, error)

// Follow waits for the answer to a Prompt in the background. If the user
// chooses to act now, the Item is handed off, unless the Prompt is a
// simulated one.
func (d *Dispatcher) Follow(p *Prompt) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.closed {
		return
	}

	var timeout = d.timeout

	d.wg.Add(1)
	go d.follow(p, timeout)
} // func (d *Dispatcher) Follow(p *Prompt)

func (d *Dispatcher) follow(p *Prompt, timeout time.Duration) {
	defer d.wg.Done()

	var (
		ctx, cancel = context.WithTimeout(d.ctx, timeout)
		decision    = p.Wait(ctx)
	)
	defer cancel()

	decisionTotal.WithLabelValues(decision.String()).Inc()
	d.log.Printf("[DEBUG] Answer to alert %s for Item %d: %s\n",
		p.Notification.ID,
		p.Item.ID,
		decision)

	if decision != ActNow {
		return
	} else if p.Simulated {
		d.log.Printf("[INFO] Demo mode: Item %d would be handed off now\n",
			p.Item.ID)
		return
	} else if p.Unmarked {
		d.log.Printf("[WARN] Item %d is still %s, ignoring the answer until it is alerted about again\n",
			p.Item.ID,
			p.Item.Status)
		return
	} else if d.handoff == nil {
		d.log.Printf("[CANTHAPPEN] No Handoffer to act on Item %d\n",
			p.Item.ID)
		return
	}

	var res, err = d.handoff.Handoff(d.ctx, &p.Item)

	if res == nil && err != nil {
		d.log.Printf("[ERROR] Cannot hand off Item %d: %s\n",
			p.Item.ID,
			err.Error())
	} else if res != nil {
		d.log.Printf("[INFO] Item %d handed off: %s - %s\n",
			p.Item.ID,
			res.Outcome,
			res.Summary())
	}
} // func (d *Dispatcher) follow(p *Prompt, timeout time.Duration)

// Close stops accepting new alerts, abandons the pending ones and waits
// for all follow-ups to finish.
func (d *Dispatcher) Close() {
	d.lock.Lock()
	d.closed = true
	d.lock.Unlock()

	d.cancel()
	d.wg.Wait()
} // func (d *Dispatcher) Close()

// Wait blocks until all pending follow-ups are done.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
} // func (d *Dispatcher) Wait()
