// /home/krylon/go/src/github.com/blicero/courier/backend/01_backend_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 18:20:51 krylon>

package backend

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/config"
	"github.com/blicero/courier/database"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
)

const testItemCnt = 3

var (
	back    *Daemon
	baseURL string
)

func testConfig() *config.Config {
	var cfg = config.Default()

	cfg.Listen = "127.0.0.1:0"
	cfg.Notifier = config.NotifierLog
	cfg.StagingDir = filepath.Join(common.BaseDir, "staging")
	cfg.Store.URL = filepath.Join(common.BaseDir, "backend_test.db")

	return cfg
} // func testConfig() *config.Config

// TestPopulate puts a few Items in the database that none of the tests
// can hand off: all of them are scheduled for tomorrow.
func TestPopulate(t *testing.T) {
	var (
		err      error
		db       *database.Database
		tomorrow = time.Now().Add(time.Hour * 24)
	)

	if db, err = database.Open(testConfig().Store.URL); err != nil {
		t.Fatalf("Cannot open database: %s", err.Error())
	}

	defer db.Close() // nolint: errcheck

	for i := 0; i < testItemCnt; i++ {
		var item = objects.Item{
			Status:        status.Scheduled,
			ScheduledTime: tomorrow.Add(time.Minute * time.Duration(i)),
			PayloadCount:  2,
			Caption:       fmt.Sprintf("Test item #%d", i),
			Assets: []objects.Asset{
				{SourceURI: fmt.Sprintf("https://example.com/%d/1.jpg", i), OrderIndex: 1},
				{SourceURI: fmt.Sprintf("https://example.com/%d/0.jpg", i), OrderIndex: 0},
			},
		}

		if err = db.ItemAdd(&item); err != nil {
			t.Fatalf("Cannot add Item #%d: %s", i, err.Error())
		}
	}
} // func TestPopulate(t *testing.T)

func TestSummon(t *testing.T) {
	var err error

	if back, err = Summon(testConfig(), ""); err != nil {
		back = nil
		t.Fatalf("Cannot create Daemon: %s",
			err.Error())
	} else if !back.IsAlive() {
		t.Error("Daemon is not alive after Summon")
	} else if m := back.Supervisor().Mode(); m != objects.Connected {
		t.Errorf("Daemon should be connected, not %s", m)
	}

	baseURL = "http://" + back.Addr()
} // func TestSummon(t *testing.T)
