// /home/krylon/go/src/github.com/blicero/courier/gateway/postgres/postgres.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 10:41:18 krylon>

// Package postgres implements the Gateway directly on a PostgreSQL
// database, using the same tables a PostgREST server would expose.
package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	listQuery = `
SELECT p.id,
       p.status,
       p.scheduled_time,
       p.slide_count,
       COALESCE(p.caption, ''),
       s.id,
       s.public_url,
       s.order_index
FROM %[1]s p
LEFT OUTER JOIN %[2]s s ON s.post_id = p.id
%[3]s
ORDER BY p.scheduled_time, p.id, s.order_index
`
	dueFilter   = "WHERE p.status = $1 AND p.scheduled_time <= $2"
	statusQuery = "UPDATE %s SET status = $1 WHERE id = $2 AND status = ANY($3)"
)

type queries struct {
	listAll   string
	listDue   string
	setStatus string
}

func buildQueries(table, assetTable string) queries {
	var (
		t = pgx.Identifier{table}.Sanitize()
		a = pgx.Identifier{assetTable}.Sanitize()
	)

	return queries{
		listAll:   fmt.Sprintf(listQuery, t, a, ""),
		listDue:   fmt.Sprintf(listQuery, t, a, dueFilter),
		setStatus: fmt.Sprintf(statusQuery, t),
	}
} // func buildQueries(table, assetTable string) queries

// Store is a Gateway backed by a pgx connection pool.
type Store struct {
	log  *log.Logger
	pool *pgxpool.Pool
	q    queries
}

var _ gateway.Gateway = (*Store)(nil)

// Connect creates a Store. The pool connects lazily, so an unreachable
// server is only noticed by Probe.
func Connect(ctx context.Context, dsn, table, assetTable string, maxConns int) (*Store, error) {
	var (
		err error
		cfg *pgxpool.Config
		s   = &Store{q: buildQueries(table, assetTable)}
	)

	if s.log, err = common.GetLogger(logdomain.Gateway); err != nil {
		return nil, err
	} else if cfg, err = pgxpool.ParseConfig(dsn); err != nil {
		s.log.Printf("[ERROR] Cannot parse DSN: %s\n", err.Error())
		return nil, err
	}

	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	if s.pool, err = pgxpool.NewWithConfig(ctx, cfg); err != nil {
		s.log.Printf("[ERROR] Cannot create connection pool for %s: %s\n",
			cfg.ConnConfig.Host,
			err.Error())
		return nil, err
	}

	return s, nil
} // func Connect(...) (*Store, error)

// Close closes all connections in the pool.
func (s *Store) Close() {
	s.pool.Close()
} // func (s *Store) Close()

// Probe pings the server.
func (s *Store) Probe(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		s.log.Printf("[ERROR] Cannot reach PostgreSQL at %s: %s\n",
			s.pool.Config().ConnConfig.Host,
			err.Error())
		return &gateway.ConnectivityError{
			Reason: s.pool.Config().ConnConfig.Host,
			Cause:  err,
		}
	}

	return nil
} // func (s *Store) Probe(ctx context.Context) error

// ListAll returns all Items with their Assets, earliest first.
func (s *Store) ListAll(ctx context.Context) ([]objects.Item, error) {
	return s.list(ctx, "ListAll", s.q.listAll)
} // func (s *Store) ListAll(ctx context.Context) ([]objects.Item, error)

// ListDue returns the scheduled Items whose time has come.
func (s *Store) ListDue(ctx context.Context, now time.Time) ([]objects.Item, error) {
	return s.list(ctx, "ListDue", s.q.listDue, string(status.Scheduled), now)
} // func (s *Store) ListDue(ctx context.Context, now time.Time) ([]objects.Item, error)

// list runs one of the join queries. Rows of the same Item are adjacent,
// one per Asset, or a single row with NULL asset columns.
func (s *Store) list(ctx context.Context, op, query string, args ...any) ([]objects.Item, error) {
	var (
		err   error
		rows  pgx.Rows
		items []objects.Item
	)

	if rows, err = s.pool.Query(ctx, query, args...); err != nil {
		s.log.Printf("[ERROR] %s failed: %s\n", op, err.Error())
		return nil, &gateway.FetchError{Op: op, Cause: err}
	}

	defer rows.Close()

	for rows.Next() {
		var (
			item    objects.Item
			stat    string
			assetID *int64
			uri     *string
			idx     *int32
			count   int32
		)

		if err = rows.Scan(
			&item.ID,
			&stat,
			&item.ScheduledTime,
			&count,
			&item.Caption,
			&assetID,
			&uri,
			&idx); err != nil {
			s.log.Printf("[ERROR] Cannot scan row: %s\n", err.Error())
			return nil, &gateway.FetchError{Op: op, Cause: err}
		} else if item.Status, err = status.Parse(stat); err != nil {
			return nil, &gateway.FetchError{
				Op:    op,
				Cause: fmt.Errorf("Item %d: %w", item.ID, err),
			}
		}

		item.PayloadCount = int(count)

		if n := len(items); n == 0 || items[n-1].ID != item.ID {
			items = append(items, item)
		}

		if assetID != nil {
			var (
				last  = &items[len(items)-1]
				asset = objects.Asset{ID: *assetID}
			)

			if uri != nil {
				asset.SourceURI = *uri
			}
			if idx != nil {
				asset.OrderIndex = int(*idx)
			}

			last.Assets = append(last.Assets, asset)
		}
	}

	if err = rows.Err(); err != nil {
		s.log.Printf("[ERROR] %s failed while reading rows: %s\n",
			op,
			err.Error())
		return nil, &gateway.FetchError{Op: op, Cause: err}
	}

	objects.Normalize(items)
	return items, nil
} // func (s *Store) list(ctx context.Context, op, query string, args ...any) ([]objects.Item, error)

// SetStatus updates the status column of one row, provided its current
// status is a legal predecessor of s.
func (s *Store) SetStatus(ctx context.Context, id int64, st status.Status) error {
	var (
		err   error
		pred  = lifecycle.Predecessors(st)
		preds = make([]string, len(pred))
	)

	if len(pred) == 0 {
		return &gateway.UpdateError{
			ID:     id,
			Status: st,
			Cause:  fmt.Errorf("no status may precede %q", st),
		}
	}

	for i, p := range pred {
		preds[i] = string(p)
	}

	tag, err := s.pool.Exec(ctx, s.q.setStatus, string(st), id, preds)
	if err != nil {
		s.log.Printf("[ERROR] Cannot set status of Item %d to %s: %s\n",
			id,
			st,
			err.Error())
		return &gateway.UpdateError{ID: id, Status: st, Cause: err}
	} else if tag.RowsAffected() == 0 {
		s.log.Printf("[INFO] Status update of Item %d to %s matched no row\n",
			id,
			st)
		return &gateway.UpdateError{ID: id, Status: st, Cause: gateway.ErrConflict}
	}

	return nil
} // func (s *Store) SetStatus(ctx context.Context, id int64, st status.Status) error
