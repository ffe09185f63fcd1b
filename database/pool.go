// /home/krylon/go/src/github.com/blicero/courier/database/pool.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 11:40:02 krylon>

package database

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/logdomain"
)

// ErrPoolClosed is returned by Get once the Pool has been closed.
var ErrPoolClosed = errors.New("database pool has been closed")

// Pool is a pool of database connections.
type Pool struct {
	cnt    int
	path   string
	log    *log.Logger
	lock   sync.Mutex
	empty  *sync.Cond
	free   []*Database
	closed bool
}

// NewPool creates a Pool of cnt connections to the database at path.
func NewPool(path string, cnt int) (*Pool, error) {
	var (
		err  error
		pool = &Pool{
			cnt:  cnt,
			path: path,
			free: make([]*Database, 0, cnt),
		}
	)

	if cnt < 1 {
		return nil, fmt.Errorf("Invalid pool size: %d", cnt)
	} else if pool.log, err = common.GetLogger(logdomain.DBPool); err != nil {
		return nil, err
	}

	pool.empty = sync.NewCond(&pool.lock)

	for i := 0; i < cnt; i++ {
		var db *Database

		if db, err = Open(path); err != nil {
			pool.log.Printf("[ERROR] Cannot open database connection #%d: %s\n",
				i,
				err.Error())
			pool.Close() // nolint: errcheck
			return nil, err
		}

		pool.free = append(pool.free, db)
	}

	return pool, nil
} // func NewPool(path string, cnt int) (*Pool, error)

// Get returns a connection from the Pool, blocking until one becomes
// available. If the Pool has been closed, it returns nil.
func (pool *Pool) Get() *Database {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	for len(pool.free) == 0 && !pool.closed {
		pool.empty.Wait()
	}

	if pool.closed {
		return nil
	}

	var db = pool.free[len(pool.free)-1]
	pool.free = pool.free[:len(pool.free)-1]
	return db
} // func (pool *Pool) Get() *Database

// Put returns a connection to the Pool.
func (pool *Pool) Put(db *Database) {
	if db == nil {
		return
	}

	pool.lock.Lock()
	defer pool.lock.Unlock()

	if pool.closed {
		db.Close() // nolint: errcheck
		return
	}

	pool.free = append(pool.free, db)
	pool.empty.Signal()
} // func (pool *Pool) Put(db *Database)

// Close closes all idle connections. Connections that are currently in use
// are closed when they are returned.
func (pool *Pool) Close() error {
	var err error

	pool.lock.Lock()
	defer pool.lock.Unlock()

	pool.closed = true

	for _, db := range pool.free {
		if cerr := db.Close(); cerr != nil {
			pool.log.Printf("[ERROR] Cannot close database connection: %s\n",
				cerr.Error())
			err = cerr
		}
	}

	pool.free = nil
	pool.empty.Broadcast()
	return err
} // func (pool *Pool) Close() error
