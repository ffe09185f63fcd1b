// /home/krylon/go/src/github.com/blicero/courier/gateway/postgres/postgres_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 11:37:06 krylon>

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/objects/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tests that need a server only run if this variable holds a DSN.
const dsnEnv = "COURIER_TEST_POSTGRES"

func TestBuildQueries(t *testing.T) {
	var q = buildQueries(`posts"; DROP TABLE x; --`, "slides")

	assert.Contains(t, q.listAll, `FROM "posts""; DROP TABLE x; --" p`)
	assert.Contains(t, q.listAll, `LEFT OUTER JOIN "slides" s`)
	assert.NotContains(t, q.listAll, "WHERE")
	assert.Contains(t, q.listDue, "WHERE p.status = $1 AND p.scheduled_time <= $2")
	assert.Equal(t,
		`UPDATE "posts""; DROP TABLE x; --" SET status = $1 WHERE id = $2 AND status = ANY($3)`,
		q.setStatus)
}

func TestConnectBadDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://[::1", "posts", "slides", 2)
	assert.Error(t, err)
}

func TestProbeUnreachable(t *testing.T) {
	s, err := Connect(context.Background(),
		"postgres://courier@127.0.0.1:1/courier?connect_timeout=1",
		"posts",
		"slides",
		1)
	require.NoError(t, err)
	defer s.Close()

	var cerr *gateway.ConnectivityError
	err = s.Probe(context.Background())
	assert.ErrorAs(t, err, &cerr)
}

func TestStore(t *testing.T) {
	var dsn = os.Getenv(dsnEnv)
	if dsn == "" {
		t.SkipNow()
	}

	var (
		ctx    = context.Background()
		suffix = time.Now().UnixNano()
		posts  = fmt.Sprintf("courier_posts_%d", suffix)
		slides = fmt.Sprintf("courier_slides_%d", suffix)
		now    = time.Now().UTC().Truncate(time.Second)
	)

	s, err := Connect(ctx, dsn, posts, slides, 2)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Probe(ctx))

	var ddl = []string{
		fmt.Sprintf(`CREATE TABLE %s (
			id BIGINT PRIMARY KEY,
			status TEXT NOT NULL,
			scheduled_time TIMESTAMPTZ NOT NULL,
			slide_count INTEGER NOT NULL DEFAULT 0,
			caption TEXT)`, posts),
		fmt.Sprintf(`CREATE TABLE %s (
			id BIGINT PRIMARY KEY,
			post_id BIGINT NOT NULL REFERENCES %s (id),
			public_url TEXT NOT NULL,
			order_index INTEGER NOT NULL)`, slides, posts),
	}

	for _, q := range ddl {
		_, err = s.pool.Exec(ctx, q)
		require.NoError(t, err)
	}

	defer func() {
		s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE %s, %s", slides, posts)) // nolint: errcheck
	}()

	var rows = []struct {
		id     int64
		st     string
		offset time.Duration
		cap    any
	}{
		{1, "scheduled", time.Hour, "later"},
		{2, "scheduled", -time.Hour, nil},
		{3, "notified", -2 * time.Hour, "done"},
		{4, "scheduled", 0, "exactly now"},
	}

	for _, r := range rows {
		_, err = s.pool.Exec(ctx,
			fmt.Sprintf("INSERT INTO %s (id, status, scheduled_time, slide_count, caption) VALUES ($1, $2, $3, 2, $4)", posts),
			r.id, r.st, now.Add(r.offset), r.cap)
		require.NoError(t, err)

		for _, idx := range []int{1, 0} {
			_, err = s.pool.Exec(ctx,
				fmt.Sprintf("INSERT INTO %s (id, post_id, public_url, order_index) VALUES ($1, $2, $3, $4)", slides),
				r.id*10+int64(idx), r.id, fmt.Sprintf("https://cdn/%d/%d", r.id, idx), idx)
			require.NoError(t, err)
		}
	}

	items, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, []int64{3, 2, 4, 1},
		[]int64{items[0].ID, items[1].ID, items[2].ID, items[3].ID})
	assert.Equal(t, "", items[1].Caption)
	for _, item := range items {
		require.Len(t, item.Assets, 2)
		assert.Equal(t, 0, item.Assets[0].OrderIndex)
		assert.Equal(t, 1, item.Assets[1].OrderIndex)
	}

	due, err := s.ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, int64(2), due[0].ID)
	assert.Equal(t, int64(4), due[1].ID)

	require.NoError(t, s.SetStatus(ctx, 2, status.Notified))
	assert.ErrorIs(t, s.SetStatus(ctx, 2, status.Notified), gateway.ErrConflict)
	assert.ErrorIs(t, s.SetStatus(ctx, 1, status.Downloaded), gateway.ErrConflict)
	require.NoError(t, s.SetStatus(ctx, 2, status.Downloaded))
	require.NoError(t, s.SetStatus(ctx, 2, status.Downloaded))

	due, err = s.ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, int64(4), due[0].ID)
}
