// /home/krylon/go/src/github.com/blicero/courier/clock/clock_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 13:09:40 krylon>

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeTicker(t *testing.T) {
	var (
		start = time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
		fake  = NewFake(start)
		tick  = fake.NewTicker(time.Minute)
	)

	fake.Advance(30 * time.Second)
	select {
	case <-tick.C():
		t.Fatal("Ticker fired early")
	default:
	}

	fake.Advance(30 * time.Second)
	select {
	case ts := <-tick.C():
		assert.Equal(t, start.Add(time.Minute), ts)
	default:
		t.Fatal("Ticker did not fire")
	}

	assert.Equal(t, start.Add(time.Minute), fake.Now())

	tick.Stop()
	assert.Equal(t, 0, fake.Tickers())

	fake.Advance(time.Hour)
	select {
	case <-tick.C():
		t.Fatal("Stopped Ticker fired")
	default:
	}
}

func TestFakeTickerDropsTicks(t *testing.T) {
	var (
		fake = NewFake(time.Unix(0, 0))
		tick = fake.NewTicker(time.Second)
	)

	fake.Advance(10 * time.Second)
	<-tick.C()

	select {
	case <-tick.C():
		t.Fatal("Ticker should have dropped the surplus ticks")
	default:
	}
}
