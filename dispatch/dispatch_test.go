// /home/krylon/go/src/github.com/blicero/courier/dispatch/dispatch_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 19:20:41 krylon>

package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blicero/courier/handoff"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualNotifier struct {
	lock    sync.Mutex
	err     error
	shown   []objects.Notification
	answers []chan Decision
}

func (m *manualNotifier) Present(_ context.Context, n *objects.Notification) (<-chan Decision, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	var ch = make(chan Decision, 1)
	m.shown = append(m.shown, *n)
	m.answers = append(m.answers, ch)
	return ch, nil
}

func (m *manualNotifier) answer(idx int, d Decision) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.answers[idx] <- d
}

type recordingHandoffer struct {
	lock  sync.Mutex
	items []objects.Item
	done  chan struct{}
}

func newRecordingHandoffer() *recordingHandoffer {
	return &recordingHandoffer{done: make(chan struct{}, 8)}
}

func (r *recordingHandoffer) Handoff(_ context.Context, item *objects.Item) (*handoff.Result, error) {
	r.lock.Lock()
	r.items = append(r.items, *item)
	r.lock.Unlock()
	r.done <- struct{}{}
	return &handoff.Result{ItemID: item.ID, Outcome: handoff.Succeeded, Channel: handoff.DeepLink}, nil
}

func (r *recordingHandoffer) count() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.items)
}

func dueItem() *objects.Item {
	return &objects.Item{
		ID:            3,
		Status:        status.Scheduled,
		ScheduledTime: time.Now(),
		PayloadCount:  6,
	}
}

func TestNotifyPresentsOnce(t *testing.T) {
	var (
		n = &manualNotifier{}
		h = newRecordingHandoffer()
	)

	d, err := New(n, h)
	require.NoError(t, err)
	defer d.Close()

	p, err := d.Notify(context.Background(), dueItem())
	require.NoError(t, err)
	require.Len(t, n.shown, 1)

	assert.Equal(t, AlertTitle, n.shown[0].Title)
	assert.Equal(t, "Your 6 slide carousel is ready to post on Instagram!", n.shown[0].Body)
	assert.Equal(t, AlertAccept, n.shown[0].Accept)
	assert.Equal(t, AlertDecline, n.shown[0].Decline)
	assert.Equal(t, int64(3), p.Notification.ItemID)
	assert.False(t, p.Simulated)
	assert.Zero(t, h.count(), "nothing is handed off before the user answers")
}

func TestFollowActNow(t *testing.T) {
	var (
		n = &manualNotifier{}
		h = newRecordingHandoffer()
	)

	d, err := New(n, h)
	require.NoError(t, err)
	defer d.Close()

	p, err := d.Notify(context.Background(), dueItem())
	require.NoError(t, err)

	p.Item.Status = status.Notified
	d.Follow(p)
	n.answer(0, ActNow)

	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Item was not handed off")
	}

	assert.Equal(t, status.Notified, h.items[0].Status)
}

func TestFollowDefer(t *testing.T) {
	var (
		n = &manualNotifier{}
		h = newRecordingHandoffer()
	)

	d, err := New(n, h)
	require.NoError(t, err)

	p, err := d.Notify(context.Background(), dueItem())
	require.NoError(t, err)

	d.Follow(p)
	n.answer(0, Defer)
	d.Wait()

	assert.Zero(t, h.count())
	d.Close()
}

func TestFollowTimeout(t *testing.T) {
	var (
		n = &manualNotifier{}
		h = newRecordingHandoffer()
	)

	d, err := New(n, h)
	require.NoError(t, err)
	d.SetDecisionTimeout(10 * time.Millisecond)

	p, err := d.Notify(context.Background(), dueItem())
	require.NoError(t, err)

	d.Follow(p)
	d.Wait()

	assert.Zero(t, h.count())
	d.Close()
}

func TestSimulateNeverHandsOff(t *testing.T) {
	var (
		n = &manualNotifier{}
		h = newRecordingHandoffer()
	)

	d, err := New(n, h)
	require.NoError(t, err)

	p, err := d.Simulate(context.Background(), dueItem())
	require.NoError(t, err)
	assert.True(t, p.Simulated)

	n.answer(0, ActNow)
	d.Wait()

	assert.Zero(t, h.count())
	assert.Len(t, n.shown, 1)
	d.Close()
}

func TestFollowUnmarkedNeverHandsOff(t *testing.T) {
	var (
		n = &manualNotifier{}
		h = newRecordingHandoffer()
	)

	d, err := New(n, h)
	require.NoError(t, err)

	p, err := d.Notify(context.Background(), dueItem())
	require.NoError(t, err)

	p.Unmarked = true
	d.Follow(p)
	n.answer(0, ActNow)
	d.Wait()

	assert.Zero(t, h.count(), "an Item still scheduled must not be handed off")
	d.Close()
}

func TestNotifyFailure(t *testing.T) {
	var n = &manualNotifier{err: errors.New("no notification daemon")}

	d, err := New(n, nil)
	require.NoError(t, err)
	defer d.Close()

	p, err := d.Notify(context.Background(), dueItem())
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestClosedDispatcher(t *testing.T) {
	var n = &manualNotifier{}

	d, err := New(n, nil)
	require.NoError(t, err)

	p, err := d.Notify(context.Background(), dueItem())
	require.NoError(t, err)

	d.Follow(p)
	d.Close()

	_, err = d.Notify(context.Background(), dueItem())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLogNotifier(t *testing.T) {
	ln, err := NewLogNotifier(ActNow)
	require.NoError(t, err)

	var note = NewNotification(dueItem())
	ch, err := ln.Present(context.Background(), &note)
	require.NoError(t, err)

	var p = &Prompt{answer: ch}
	assert.Equal(t, ActNow, p.Wait(context.Background()))
	assert.Equal(t, Defer, p.Wait(context.Background()), "a closed channel reads as Defer")
	assert.Len(t, ln.Shown(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ln.Present(ctx, &note)
	assert.Error(t, err)
}

func TestDBusNotifier(t *testing.T) {
	n, err := NewDBusNotifier()
	if err != nil {
		t.Skipf("No DBus session bus available: %s", err.Error())
	}
	defer n.Close() // nolint: errcheck

	var note = NewNotification(dueItem())
	note.Body = "Test notification, please ignore"

	if _, err = n.Present(context.Background(), &note); err != nil {
		t.Skipf("No notification daemon available: %s", err.Error())
	}
}
