// /home/krylon/go/src/github.com/blicero/courier/database/01_database_init_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 12:11:30 krylon>

package database

import (
	"testing"

	"github.com/blicero/courier/common"
)

var db *Database

func TestCreateDatabase(t *testing.T) {
	var err error

	if db, err = Open(common.DbPath); err != nil {
		db = nil
		t.Fatalf("Cannot open database at %s: %s",
			common.DbPath,
			err.Error())
	}
} // func TestCreateDatabase(t *testing.T)

// We prepare each query once to make sure there are no syntax errors in the SQL.
func TestPrepareQueries(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	for id := range dbQueries {
		var err error
		if _, err = db.getQuery(id); err != nil {
			t.Errorf("Cannot prepare query %s: %s",
				id,
				err.Error())
		}
	}
} // func TestPrepareQueries(t *testing.T)

func TestReopenDatabase(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err   error
		other *Database
	)

	// The file exists now, so the schema must not be created a second time.
	if other, err = Open(common.DbPath); err != nil {
		t.Fatalf("Cannot open existing database: %s", err.Error())
	} else if err = other.Close(); err != nil {
		t.Errorf("Cannot close second connection: %s", err.Error())
	}
} // func TestReopenDatabase(t *testing.T)
