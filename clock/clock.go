// /home/krylon/go/src/github.com/blicero/courier/clock/clock.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 13:05:12 krylon>

// Package clock abstracts the passing of time, so the parts of the
// application that act on a schedule can be tested without waiting.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Ticker delivers ticks on C at regular intervals until it is stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock tells the time and creates Tickers.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Real is the Clock everyone else uses.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time { return time.Now() }

// NewTicker returns a Ticker backed by a time.Ticker.
func (Real) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
} // func (Real) NewTicker(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Fake is a Clock that only moves when told to.
type Fake struct {
	lock    sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFake returns a Fake Clock set to the given time.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
} // func NewFake(now time.Time) *Fake

// Now returns the Fake's current time.
func (f *Fake) Now() time.Time {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.now
} // func (f *Fake) Now() time.Time

// NewTicker creates a Ticker that fires whenever Advance moves the Fake
// past one of its deadlines.
func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.lock.Lock()
	defer f.lock.Unlock()

	var t = &fakeTicker{
		c:      make(chan time.Time, 1),
		period: d,
		next:   f.now.Add(d),
		clock:  f,
	}

	f.tickers = append(f.tickers, t)
	return t
} // func (f *Fake) NewTicker(d time.Duration) Ticker

// Tickers returns the number of Tickers that have not been stopped.
func (f *Fake) Tickers() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.tickers)
} // func (f *Fake) Tickers() int

// Set moves the Fake to the given time without firing any Tickers.
func (f *Fake) Set(t time.Time) {
	f.lock.Lock()
	f.now = t
	f.lock.Unlock()
} // func (f *Fake) Set(t time.Time)

// Advance moves the Fake forward by d, firing every Ticker whose deadline
// is passed. Like a time.Ticker, a Fake Ticker drops ticks for a slow
// receiver.
func (f *Fake) Advance(d time.Duration) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.now = f.now.Add(d)

	var list = make([]*fakeTicker, len(f.tickers))
	copy(list, f.tickers)
	sort.Slice(list, func(i, j int) bool { return list[i].next.Before(list[j].next) })

	for _, t := range list {
		for !t.next.After(f.now) {
			select {
			case t.c <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
} // func (f *Fake) Advance(d time.Duration)

func (f *Fake) remove(t *fakeTicker) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for i, other := range f.tickers {
		if other == t {
			f.tickers = append(f.tickers[:i], f.tickers[i+1:]...)
			return
		}
	}
} // func (f *Fake) remove(t *fakeTicker)

type fakeTicker struct {
	c      chan time.Time
	period time.Duration
	next   time.Time
	clock  *Fake
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.clock.remove(t) }
