// /home/krylon/go/src/github.com/blicero/courier/database/04_database_time_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 24. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-24 10:17:52 krylon>

package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/objects"
)

// An Item scheduled at a fractional second must not become due before its
// exact scheduled time.
func TestSubSecondDueTime(t *testing.T) {
	var (
		err   error
		tdb   *Database
		due   []objects.Item
		other *objects.Item
		when  = time.Date(2026, 10, 24, 9, 30, 0, 750_000_123, time.UTC)
		item  = &objects.Item{
			ScheduledTime: when,
			Caption:       "Fractional",
		}
	)

	if tdb, err = Open(filepath.Join(common.BaseDir, "time_test.db")); err != nil {
		t.Fatalf("Cannot open database: %s", err.Error())
	}

	defer tdb.Close() // nolint: errcheck

	if err = tdb.ItemAdd(item); err != nil {
		t.Fatalf("Cannot add Item: %s", err.Error())
	} else if other, err = tdb.ItemGetByID(item.ID); err != nil {
		t.Fatalf("Cannot load Item %d: %s", item.ID, err.Error())
	} else if !other.ScheduledTime.Equal(when) {
		t.Errorf("Scheduled time changed on the round trip: %s -> %s",
			when.Format(time.RFC3339Nano),
			other.ScheduledTime.Format(time.RFC3339Nano))
	}

	if due, err = tdb.ItemGetDue(when.Add(-time.Nanosecond)); err != nil {
		t.Fatalf("Cannot fetch due Items: %s", err.Error())
	} else if len(due) != 0 {
		t.Errorf("Item is reported due %s before its time",
			when.Sub(when.Truncate(time.Second)))
	}

	if due, err = tdb.ItemGetDue(when); err != nil {
		t.Fatalf("Cannot fetch due Items: %s", err.Error())
	} else if len(due) != 1 {
		t.Errorf("Item is not due at its scheduled time, got %d due Items",
			len(due))
	} else if !due[0].ScheduledTime.Equal(when) {
		t.Errorf("Unexpected scheduled time %s",
			due[0].ScheduledTime.Format(time.RFC3339Nano))
	}
} // func TestSubSecondDueTime(t *testing.T)
