// /home/krylon/go/src/github.com/blicero/courier/supervisor/supervisor_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 21. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-21 13:40:26 krylon>

package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blicero/courier/clock"
	"github.com/blicero/courier/dispatch"
	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/handoff"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refTime = time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC)

type fakeLooper struct {
	lock    sync.Mutex
	started int
	stopped int
	refresh func(context.Context) error
}

func (f *fakeLooper) Start(context.Context) error {
	f.lock.Lock()
	f.started++
	f.lock.Unlock()
	return nil
}

func (f *fakeLooper) Stop() {
	f.lock.Lock()
	f.stopped++
	f.lock.Unlock()
}

func (f *fakeLooper) OnRefresh(fn func(context.Context) error) {
	f.refresh = fn
}

type fakeSimulator struct {
	items []int64
}

func (f *fakeSimulator) Simulate(_ context.Context, item *objects.Item) (*dispatch.Prompt, error) {
	f.items = append(f.items, item.ID)
	return &dispatch.Prompt{Item: item.Clone(), Simulated: true}, nil
}

type fakeHandoffer struct {
	gw    gateway.Gateway
	items []int64
	block chan struct{}
}

func (f *fakeHandoffer) Handoff(ctx context.Context, item *objects.Item) (*handoff.Result, error) {
	f.items = append(f.items, item.ID)
	if f.block != nil {
		<-f.block
	}
	if err := f.gw.SetStatus(ctx, item.ID, status.Downloaded); err != nil {
		return nil, err
	}
	return &handoff.Result{ItemID: item.ID, Outcome: handoff.Succeeded, Channel: handoff.Web, Message: "opened"}, nil
}

type fixture struct {
	gw   *gateway.Memory
	loop *fakeLooper
	sim  *fakeSimulator
	ho   *fakeHandoffer
	sup  *Supervisor
}

func newFixture(t *testing.T, items ...objects.Item) *fixture {
	t.Helper()

	var f = &fixture{
		gw:   gateway.NewMemory(items...),
		loop: &fakeLooper{},
		sim:  &fakeSimulator{},
	}

	f.ho = &fakeHandoffer{gw: f.gw}

	var err error
	f.sup, err = New(f.gw, f.loop, f.sim, f.ho, clock.NewFake(refTime))
	require.NoError(t, err)
	return f
}

func TestOfflineBeforeStart(t *testing.T) {
	var f = newFixture(t)

	assert.Equal(t, objects.Offline, f.sup.Mode())

	_, err := f.sup.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrOffline)

	_, err = f.sup.Activate(context.Background(), 1)
	assert.ErrorIs(t, err, ErrOffline)
}

func TestConnected(t *testing.T) {
	var f = newFixture(t,
		objects.Item{ID: 2, Status: status.Notified, ScheduledTime: refTime.Add(time.Hour)},
		objects.Item{ID: 1, Status: status.Scheduled, ScheduledTime: refTime},
	)

	require.NoError(t, f.sup.Start(context.Background()))

	var snap = f.sup.Snapshot()
	assert.Equal(t, objects.Connected, snap.Mode)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, int64(1), snap.Items[0].ID)
	assert.Equal(t, 1, f.loop.started)
	assert.NotNil(t, f.loop.refresh)

	f.sup.Stop()
	assert.Equal(t, objects.Offline, f.sup.Mode())
	assert.Equal(t, 1, f.loop.stopped)
}

func TestDemoItems(t *testing.T) {
	var items = DemoItems(refTime)

	require.Len(t, items, 2)

	assert.Equal(t, status.Scheduled, items[0].Status)
	assert.Equal(t, refTime.Add(2*time.Minute), items[0].ScheduledTime)
	assert.Equal(t, 12, items[0].PayloadCount)
	assert.Len(t, items[0].Assets, 6)

	assert.Equal(t, status.Notified, items[1].Status)
	assert.Equal(t, refTime.Add(-5*time.Minute), items[1].ScheduledTime)
	assert.Equal(t, 8, items[1].PayloadCount)
	assert.Len(t, items[1].Assets, 3)
}

func TestProbeFailureEntersDemo(t *testing.T) {
	var f = newFixture(t)

	f.gw.ProbeErr = errors.New("connection refused")

	require.NoError(t, f.sup.Start(context.Background()))

	var (
		snap   = f.sup.Snapshot()
		sample = DemoItems(refTime)
	)

	objects.Normalize(sample)
	assert.Equal(t, objects.Demo, snap.Mode)
	assert.Equal(t, sample, snap.Items)
	assert.Contains(t, snap.Reason, "connection refused")
	assert.Zero(t, f.loop.started)

	refreshed, err := f.sup.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.Items, refreshed.Items)
	assert.Equal(t, snap.Generation, refreshed.Generation)

	assert.Zero(t, f.gw.ListDueCalls())
	assert.Zero(t, f.gw.ListAllCalls())
	assert.Empty(t, f.gw.StatusCalls())
}

func TestLoadFailureEntersDemo(t *testing.T) {
	var f = newFixture(t)

	f.gw.ListAllErr = errors.New("bad gateway")

	require.NoError(t, f.sup.Start(context.Background()))
	assert.Equal(t, objects.Demo, f.sup.Mode())
	assert.Zero(t, f.loop.started)
}

func TestActivateDemoSimulates(t *testing.T) {
	var f = newFixture(t)

	f.gw.ProbeErr = errors.New("offline")
	require.NoError(t, f.sup.Start(context.Background()))

	act, err := f.sup.Activate(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, act.Simulated)
	assert.Equal(t, []int64{2}, f.sim.items)
	assert.Empty(t, f.ho.items)
	assert.Empty(t, f.gw.StatusCalls())

	_, err = f.sup.Activate(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestActivateConnectedHandsOff(t *testing.T) {
	var f = newFixture(t,
		objects.Item{ID: 1, Status: status.Notified, ScheduledTime: refTime},
	)

	require.NoError(t, f.sup.Start(context.Background()))

	act, err := f.sup.Activate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, act.Simulated)
	require.NotNil(t, act.Result)
	assert.Equal(t, "opened", act.Message())
	assert.Equal(t, []int64{1}, f.ho.items)
	assert.Empty(t, f.sim.items)
}

func TestActivateBusy(t *testing.T) {
	var f = newFixture(t,
		objects.Item{ID: 1, Status: status.Notified, ScheduledTime: refTime},
	)

	f.ho.block = make(chan struct{})
	require.NoError(t, f.sup.Start(context.Background()))

	var done = make(chan error, 1)
	go func() {
		_, err := f.sup.Activate(context.Background(), 1)
		done <- err
	}()

	require.Eventually(t, func() bool { return f.sup.Busy(1) }, 5*time.Second, time.Millisecond)

	_, err := f.sup.Activate(context.Background(), 1)
	assert.ErrorIs(t, err, ErrBusy)

	close(f.ho.block)
	require.NoError(t, <-done)
	assert.False(t, f.sup.Busy(1))
}

func TestRefreshPublishesNewGeneration(t *testing.T) {
	var f = newFixture(t,
		objects.Item{ID: 1, Status: status.Notified, ScheduledTime: refTime},
	)

	require.NoError(t, f.sup.Start(context.Background()))

	var (
		before      = f.sup.Snapshot()
		sub, cancel = f.sup.Subscribe()
	)
	defer cancel()

	require.NoError(t, f.gw.SetStatus(context.Background(), 1, status.Downloaded))

	after, err := f.sup.Refresh(context.Background())
	require.NoError(t, err)
	assert.Greater(t, after.Generation, before.Generation)
	assert.Equal(t, status.Downloaded, after.Items[0].Status)

	select {
	case snap := <-sub:
		assert.Equal(t, after.Generation, snap.Generation)
	default:
		t.Fatal("Subscriber did not receive the new Snapshot")
	}
}

func TestStaleReadIsDiscarded(t *testing.T) {
	var f = newFixture(t,
		objects.Item{ID: 1, Status: status.Notified, ScheduledTime: refTime},
	)

	require.NoError(t, f.sup.Start(context.Background()))

	var stale = f.sup.readGen.Add(1)

	require.NoError(t, f.gw.SetStatus(context.Background(), 1, status.Downloaded))
	require.NoError(t, f.sup.Reload(context.Background()))

	f.sup.publish([]objects.Item{{ID: 1, Status: status.Notified, ScheduledTime: refTime}}, stale)

	var snap = f.sup.Snapshot()
	assert.Equal(t, status.Downloaded, snap.Items[0].Status, "an older read must not replace a newer one")
}
