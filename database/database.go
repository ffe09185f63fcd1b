// /home/krylon/go/src/github.com/blicero/courier/database/database.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 11:26:58 krylon>

// Package database provides a local SQLite store for scheduled Items.
// It is used when no remote store is configured, and by the command line
// tool to enqueue Items.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/database/query"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
	_ "github.com/mattn/go-sqlite3" // Import the database driver
)

var (
	openLock sync.Mutex
	retryPat = regexp.MustCompile("(?i)database is (?:locked|busy)")
)

const (
	retryDelay = 25 * time.Millisecond
	maxRetries = 40
)

// ErrTxInProgress means Begin was called while a transaction was already
// in progress.
var ErrTxInProgress = errors.New("a transaction is already in progress")

// ErrNoTxInProgress means Commit or Rollback was called without an open
// transaction.
var ErrNoTxInProgress = errors.New("there is no transaction in progress")

func worthARetry(err error) bool {
	return retryPat.MatchString(err.Error())
} // func worthARetry(err error) bool

// Database is a wrapper around the database connection that
// keeps a cache of prepared statements.
type Database struct {
	db      *sql.DB
	tx      *sql.Tx
	log     *log.Logger
	path    string
	queries map[query.ID]*sql.Stmt
}

// Open opens the database at the given path. If the database file
// does not exist, it is created and initialized.
func Open(path string) (*Database, error) {
	var (
		err      error
		dbExists bool
		db       = &Database{
			path:    path,
			queries: make(map[query.ID]*sql.Stmt),
		}
		connstring = fmt.Sprintf("%s?_locking=NORMAL&_journal=WAL&_fk=true&_busy_timeout=5000",
			path)
	)

	openLock.Lock()
	defer openLock.Unlock()

	if db.log, err = common.GetLogger(logdomain.Database); err != nil {
		return nil, err
	} else if common.Debug {
		db.log.Printf("[DEBUG] Open database %s\n", path)
	}

	if _, err = os.Stat(path); err == nil {
		dbExists = true
	} else if !os.IsNotExist(err) {
		db.log.Printf("[ERROR] Cannot check if database %s exists: %s\n",
			path,
			err.Error())
		return nil, err
	}

	if db.db, err = sql.Open("sqlite3", connstring); err != nil {
		db.log.Printf("[ERROR] Cannot open database %s: %s\n",
			path,
			err.Error())
		return nil, err
	}

	if !dbExists {
		if err = db.initialize(); err != nil {
			db.db.Close()   // nolint: errcheck
			os.Remove(path) // nolint: errcheck
			return nil, err
		}
	}

	return db, nil
} // func Open(path string) (*Database, error)

func (db *Database) initialize() error {
	var (
		err error
		tx  *sql.Tx
	)

	if tx, err = db.db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return err
	}

	for _, q := range initQueries {
		db.log.Printf("[TRACE] Execute init query:\n%s\n", q)
		if _, err = tx.Exec(q); err != nil {
			db.log.Printf("[ERROR] Cannot execute init query: %s\n%s\n",
				err.Error(),
				q)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Printf("[CANTHAPPEN] Cannot rollback transaction: %s\n",
					rbErr.Error())
				return rbErr
			}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		db.log.Printf("[CANTHAPPEN] Failed to commit init transaction: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) initialize() error

// Close closes the database.
// If there is a pending transaction, it is rolled back.
func (db *Database) Close() error {
	for id, stmt := range db.queries {
		if err := stmt.Close(); err != nil {
			db.log.Printf("[ERROR] Cannot close statement handle %s: %s\n",
				id,
				err.Error())
		}
		delete(db.queries, id)
	}

	if db.tx != nil {
		if err := db.tx.Rollback(); err != nil {
			db.log.Printf("[ERROR] Cannot roll back pending transaction: %s\n",
				err.Error())
			return err
		}
		db.tx = nil
	}

	return db.db.Close()
} // func (db *Database) Close() error

func (db *Database) getQuery(id query.ID) (*sql.Stmt, error) {
	var (
		stmt  *sql.Stmt
		found bool
		err   error
	)

	if stmt, found = db.queries[id]; found {
		return stmt, nil
	} else if _, found = dbQueries[id]; !found {
		return nil, fmt.Errorf("Unknown Query %d",
			id)
	}

	db.log.Printf("[TRACE] Prepare query %s\n", id)

PREPARE_QUERY:
	if stmt, err = db.db.Prepare(dbQueries[id]); err != nil {
		if worthARetry(err) {
			time.Sleep(retryDelay)
			goto PREPARE_QUERY
		}

		db.log.Printf("[ERROR] Cannot parse query %s: %s\n%s\n",
			id,
			err.Error(),
			dbQueries[id])
		return nil, err
	}

	db.queries[id] = stmt
	return stmt, nil
} // func (db *Database) getQuery(query.ID) (*sql.Stmt, error)

// stmt returns the prepared statement for the given query, bound to the
// current transaction if there is one.
func (db *Database) stmt(id query.ID) (*sql.Stmt, error) {
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(id); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			id,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	return stmt, nil
} // func (db *Database) stmt(id query.ID) (*sql.Stmt, error)

// Begin begins an explicit database transaction.
// Only one transaction can be in progress at once, attempting to start one,
// while another transaction is already in progress will yield ErrTxInProgress.
func (db *Database) Begin() error {
	var err error

	if db.tx != nil {
		return ErrTxInProgress
	}

BEGIN_TX:
	for i := 0; i < maxRetries; i++ {
		if db.tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				time.Sleep(retryDelay)
				continue BEGIN_TX
			}

			db.log.Printf("[ERROR] Error beginning transaction: %s\n",
				err.Error())
			return err
		}

		return nil
	}

	return err
} // func (db *Database) Begin() error

// Commit commits the currently running transaction.
func (db *Database) Commit() error {
	var err error

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Commit(); err != nil {
		db.log.Printf("[ERROR] Cannot commit transaction: %s\n",
			err.Error())
		return err
	}

	db.tx = nil
	return nil
} // func (db *Database) Commit() error

// Rollback terminates a pending transaction, undoing any changes to the
// database made during that transaction.
func (db *Database) Rollback() error {
	var err error

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Rollback(); err != nil {
		db.log.Printf("[ERROR] Cannot roll back database transaction: %s\n",
			err.Error())
		return err
	}

	db.tx = nil
	return nil
} // func (db *Database) Rollback() error

////////////////////////////////////////////////////////////////////////////////
///// Item /////////////////////////////////////////////////////////////////////
////////////////////////////////////////////////////////////////////////////////

// ItemAdd adds an Item along with its Assets to the database.
// If the Item's Status is not set, it is added as scheduled.
func (db *Database) ItemAdd(item *objects.Item) error {
	var (
		err      error
		stmt     *sql.Stmt
		res      sql.Result
		id       int64
		txStatus bool
	)

	if item.Status == "" {
		item.Status = status.Scheduled
	}

	if !item.Status.Valid() {
		return fmt.Errorf("Item has invalid status %q", item.Status)
	} else if err = item.CheckAssets(); err != nil {
		db.log.Printf("[ERROR] %s\n", err.Error())
		return err
	}

	if db.tx == nil {
		if err = db.Begin(); err != nil {
			return err
		}

		defer func() {
			if txStatus {
				db.Commit() // nolint: errcheck
			} else {
				db.Rollback() // nolint: errcheck
			}
		}()
	}

	if stmt, err = db.stmt(query.ItemAdd); err != nil {
		return err
	}

EXEC_QUERY:
	if res, err = stmt.Exec(
		item.Status,
		item.ScheduledTime.UnixNano(),
		item.PayloadCount,
		item.Caption,
	); err != nil {
		if worthARetry(err) {
			time.Sleep(retryDelay)
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot add Item to database: %s\n",
			err.Error())
		return err
	} else if id, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new Item: %s\n",
			err.Error())
		return err
	}

	item.ID = id
	item.SortAssets()

	for idx := range item.Assets {
		if err = db.assetAdd(id, &item.Assets[idx]); err != nil {
			item.ID = 0
			return err
		}
	}

	txStatus = true
	return nil
} // func (db *Database) ItemAdd(item *objects.Item) error

func (db *Database) assetAdd(itemID int64, a *objects.Asset) error {
	var (
		err  error
		stmt *sql.Stmt
		res  sql.Result
	)

	if stmt, err = db.stmt(query.AssetAdd); err != nil {
		return err
	}

EXEC_QUERY:
	if res, err = stmt.Exec(itemID, a.SourceURI, a.OrderIndex); err != nil {
		if worthARetry(err) {
			time.Sleep(retryDelay)
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot add Asset #%d of Item %d: %s\n",
			a.OrderIndex,
			itemID,
			err.Error())
		return err
	} else if a.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new Asset: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) assetAdd(itemID int64, a *objects.Asset) error

// ItemDelete removes an Item and its Assets from the database.
func (db *Database) ItemDelete(id int64) error {
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.stmt(query.ItemDelete); err != nil {
		return err
	}

EXEC_QUERY:
	if _, err = stmt.Exec(id); err != nil {
		if worthARetry(err) {
			time.Sleep(retryDelay)
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot delete Item %d: %s\n",
			id,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) ItemDelete(id int64) error

// ItemGetAll returns all Items, earliest first.
func (db *Database) ItemGetAll() ([]objects.Item, error) {
	return db.itemList(query.ItemGetAll)
} // func (db *Database) ItemGetAll() ([]objects.Item, error)

// ItemGetDue returns all Items that are scheduled for a time no later
// than now and have not been notified, yet.
func (db *Database) ItemGetDue(now time.Time) ([]objects.Item, error) {
	return db.itemList(query.ItemGetDue, now.UnixNano())
} // func (db *Database) ItemGetDue(now time.Time) ([]objects.Item, error)

func (db *Database) itemList(id query.ID, args ...any) ([]objects.Item, error) {
	var (
		err   error
		stmt  *sql.Stmt
		rows  *sql.Rows
		items []objects.Item
	)

	if stmt, err = db.stmt(id); err != nil {
		return nil, err
	}

EXEC_QUERY:
	if rows, err = stmt.Query(args...); err != nil {
		if worthARetry(err) {
			time.Sleep(retryDelay)
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot run query %s: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	items = make([]objects.Item, 0, 16)

	for rows.Next() {
		var (
			item  objects.Item
			stamp int64
			st    string
		)

		if err = rows.Scan(&item.ID, &st, &stamp, &item.PayloadCount, &item.Caption); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n", err.Error())
			return nil, err
		} else if item.Status, err = status.Parse(st); err != nil {
			db.log.Printf("[ERROR] Item %d: %s\n", item.ID, err.Error())
			return nil, err
		}

		item.ScheduledTime = time.Unix(0, stamp)
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		db.log.Printf("[ERROR] Error iterating over result of %s: %s\n",
			id,
			err.Error())
		return nil, err
	}

	// The Assets are fetched after the item rows have been consumed,
	// because SQLite does not like nested queries on one connection
	// inside a transaction.
	for idx := range items {
		if err = db.assetsForItem(&items[idx]); err != nil {
			return nil, err
		}
	}

	return items, nil
} // func (db *Database) itemList(id query.ID, args ...any) ([]objects.Item, error)

// ItemGetByID looks up an Item by its ID. If no such Item exists, it
// returns nil and no error.
func (db *Database) ItemGetByID(id int64) (*objects.Item, error) {
	var (
		err   error
		stmt  *sql.Stmt
		rows  *sql.Rows
		stamp int64
		st    string
		item  = &objects.Item{ID: id}
	)

	if stmt, err = db.stmt(query.ItemGetByID); err != nil {
		return nil, err
	}

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			time.Sleep(retryDelay)
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot look up Item %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	if !rows.Next() {
		rows.Close() // nolint: errcheck
		return nil, nil
	} else if err = rows.Scan(&st, &stamp, &item.PayloadCount, &item.Caption); err != nil {
		rows.Close() // nolint: errcheck
		db.log.Printf("[ERROR] Cannot scan row: %s\n", err.Error())
		return nil, err
	}

	rows.Close() // nolint: errcheck

	if item.Status, err = status.Parse(st); err != nil {
		return nil, err
	}

	item.ScheduledTime = time.Unix(0, stamp)

	if err = db.assetsForItem(item); err != nil {
		return nil, err
	}

	return item, nil
} // func (db *Database) ItemGetByID(id int64) (*objects.Item, error)

func (db *Database) assetsForItem(item *objects.Item) error {
	var (
		err  error
		stmt *sql.Stmt
		rows *sql.Rows
	)

	if stmt, err = db.stmt(query.AssetGetByItem); err != nil {
		return err
	}

EXEC_QUERY:
	if rows, err = stmt.Query(item.ID); err != nil {
		if worthARetry(err) {
			time.Sleep(retryDelay)
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot load Assets of Item %d: %s\n",
			item.ID,
			err.Error())
		return err
	}

	defer rows.Close() // nolint: errcheck

	item.Assets = make([]objects.Asset, 0, item.PayloadCount)

	for rows.Next() {
		var a objects.Asset

		if err = rows.Scan(&a.ID, &a.SourceURI, &a.OrderIndex); err != nil {
			db.log.Printf("[ERROR] Cannot scan Asset row: %s\n", err.Error())
			return err
		}

		item.Assets = append(item.Assets, a)
	}

	return rows.Err()
} // func (db *Database) assetsForItem(item *objects.Item) error

// ItemSetStatus sets the Status of the Item with the given ID, if its
// current Status is one of the given predecessors. It returns true if a
// row was updated.
func (db *Database) ItemSetStatus(id int64, s status.Status, pred ...status.Status) (bool, error) {
	var (
		err  error
		stmt *sql.Stmt
		res  sql.Result
		cnt  int64
	)

	switch len(pred) {
	case 1:
		pred = append(pred, pred[0])
	case 2:
	default:
		return false, fmt.Errorf("ItemSetStatus expects 1 or 2 predecessors, got %d",
			len(pred))
	}

	if stmt, err = db.stmt(query.ItemSetStatus); err != nil {
		return false, err
	}

EXEC_QUERY:
	if res, err = stmt.Exec(s, id, pred[0], pred[1]); err != nil {
		if worthARetry(err) {
			time.Sleep(retryDelay)
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot set status of Item %d to %s: %s\n",
			id,
			s,
			err.Error())
		return false, err
	} else if cnt, err = res.RowsAffected(); err != nil {
		db.log.Printf("[ERROR] Cannot get number of affected rows: %s\n",
			err.Error())
		return false, err
	}

	return cnt == 1, nil
} // func (db *Database) ItemSetStatus(id int64, s status.Status, pred ...status.Status) (bool, error)
