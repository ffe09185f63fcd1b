// /home/krylon/go/src/github.com/blicero/courier/backend/02_web_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 19:02:16 krylon>

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
	"github.com/pquerna/ffjson/ffjson"
)

func fetch(t *testing.T, method, path string, dst any) {
	t.Helper()

	var (
		err  error
		req  *http.Request
		res  *http.Response
		body []byte
	)

	if req, err = http.NewRequest(method, baseURL+path, nil); err != nil {
		t.Fatalf("Cannot create request for %s: %s", path, err.Error())
	} else if res, err = http.DefaultClient.Do(req); err != nil {
		t.Fatalf("%s %s failed: %s", method, path, err.Error())
	}

	defer res.Body.Close() // nolint: errcheck

	if res.StatusCode != http.StatusOK {
		t.Fatalf("%s %s returned %s", method, path, res.Status)
	} else if body, err = io.ReadAll(res.Body); err != nil {
		t.Fatalf("Cannot read response to %s: %s", path, err.Error())
	} else if dst == nil {
		return
	} else if err = ffjson.Unmarshal(body, dst); err != nil {
		t.Fatalf("Cannot parse response to %s: %s\n%s",
			path,
			err.Error(),
			body)
	}
} // func fetch(t *testing.T, method, path string, dst any)

func TestListItems(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var l Listing

	fetch(t, http.MethodGet, PathItems, &l)

	if l.Mode != objects.Connected {
		t.Errorf("Listing should be connected, not %s", l.Mode)
	} else if len(l.Entries) != testItemCnt {
		t.Fatalf("Expected %d Items, got %d", testItemCnt, len(l.Entries))
	}

	for idx, e := range l.Entries {
		if e.Item.Status != status.Scheduled {
			t.Errorf("Item %d has status %s", e.Item.ID, e.Item.Status)
		} else if e.Badge.Action != lifecycle.Wait {
			t.Errorf("Item %d should be waiting, not %s", e.Item.ID, e.Badge.Action)
		} else if len(e.Preview) != 2 || e.More != 0 {
			t.Errorf("Item %d: unexpected preview of %d (+%d) Assets",
				e.Item.ID,
				len(e.Preview),
				e.More)
		} else if e.Preview[0].OrderIndex != 0 {
			t.Errorf("Item %d: Assets are not in order", e.Item.ID)
		} else if idx > 0 && e.Item.ScheduledTime.Before(l.Entries[idx-1].Item.ScheduledTime) {
			t.Errorf("Item %d is out of order", e.Item.ID)
		}
	}
} // func TestListItems(t *testing.T)

func TestMode(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var res objects.Response

	fetch(t, http.MethodGet, PathMode, &res)

	if !res.Status {
		t.Errorf("Request failed: %s", res.Message)
	} else if res.Outcome != "connected" {
		t.Errorf("Unexpected mode %q", res.Outcome)
	} else if res.Message != objects.Connected.Label() {
		t.Errorf("Unexpected label %q", res.Message)
	}
} // func TestMode(t *testing.T)

func TestRefresh(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		res    objects.Response
		before = back.Supervisor().Snapshot().Generation
	)

	fetch(t, http.MethodPost, PathRefresh, &res)

	if !res.Status {
		t.Fatalf("Refresh failed: %s", res.Message)
	} else if after := back.Supervisor().Snapshot().Generation; after <= before {
		t.Errorf("Generation did not advance: %d -> %d", before, after)
	}
} // func TestRefresh(t *testing.T)

func TestFollowItems(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		l      Listing
		before = back.Supervisor().Snapshot().Generation
		done   = make(chan struct{})
	)

	go func() {
		defer close(done)
		time.Sleep(time.Millisecond * 200)
		back.Supervisor().Refresh(context.Background()) // nolint: errcheck
	}()

	fetch(t, http.MethodGet, fmt.Sprintf("%s?since=%d", PathItems, before), &l)
	<-done

	if l.Generation <= before {
		t.Errorf("Expected a generation newer than %d, got %d",
			before,
			l.Generation)
	} else if len(l.Entries) != testItemCnt {
		t.Errorf("Expected %d Items, got %d", testItemCnt, len(l.Entries))
	}
} // func TestFollowItems(t *testing.T)

func TestActivateNotDue(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		res  objects.Response
		snap = back.Supervisor().Snapshot()
		item = snap.Items[0]
	)

	fetch(t, http.MethodPost, fmt.Sprintf(PathActivate, item.ID), &res)

	if res.Status {
		t.Errorf("Activating a scheduled Item should fail: %s", res.Message)
	} else if !strings.Contains(res.Message, "cannot be handed off") {
		t.Errorf("Unexpected message: %s", res.Message)
	}

	snap = back.Supervisor().Snapshot()
	if found, _ := snap.Find(item.ID); found.Status != status.Scheduled {
		t.Errorf("Item %d was modified: %s", item.ID, found.Status)
	}
} // func TestActivateNotDue(t *testing.T)

func TestActivateUnknown(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var res objects.Response

	fetch(t, http.MethodPost, fmt.Sprintf(PathActivate, 999999), &res)

	if res.Status {
		t.Error("Activating a non-existent Item should fail")
	} else if !strings.Contains(res.Message, "not found") {
		t.Errorf("Unexpected message: %s", res.Message)
	}
} // func TestActivateUnknown(t *testing.T)

func TestMetrics(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err  error
		res  *http.Response
		body []byte
	)

	if res, err = http.Get(baseURL + PathMetrics); err != nil {
		t.Fatalf("Cannot fetch metrics: %s", err.Error())
	}

	defer res.Body.Close() // nolint: errcheck

	if body, err = io.ReadAll(res.Body); err != nil {
		t.Fatalf("Cannot read metrics: %s", err.Error())
	} else if !strings.Contains(string(body), "courier_poller_cycles_total") {
		t.Error("Poller metrics are missing")
	}
} // func TestMetrics(t *testing.T)
