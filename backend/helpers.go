// /home/krylon/go/src/github.com/blicero/courier/backend/helpers.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 16:20:13 krylon>

package backend

import (
	"time"

	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/supervisor"
)

//go:generate ffjson helpers.go

// PreviewSize is the number of Assets shown for each Item in a Listing.
const PreviewSize = 5

// Entry is one Item as clients display it.
type Entry struct {
	Item    objects.Item
	Badge   lifecycle.Badge
	Busy    bool
	Preview []objects.Asset
	More    int
}

// Listing is what GET /items returns.
type Listing struct {
	Mode        objects.Mode
	Label       string
	Banner      string
	Generation  uint64
	RefreshedAt time.Time
	Reason      string `json:",omitempty"`
	Entries     []Entry
}

func makeListing(snap *supervisor.Snapshot, busy func(int64) bool) *Listing {
	var l = &Listing{
		Mode:        snap.Mode,
		Label:       snap.Mode.Label(),
		Banner:      snap.Mode.Banner(),
		Generation:  snap.Generation,
		RefreshedAt: snap.RefreshedAt,
		Reason:      snap.Reason,
		Entries:     make([]Entry, len(snap.Items)),
	}

	for idx := range snap.Items {
		var (
			e    = &l.Entries[idx]
			item = &snap.Items[idx]
		)

		e.Item = *item
		e.Badge = lifecycle.Describe(item.Status, snap.Mode)
		e.Busy = busy(item.ID)
		e.Preview, e.More = item.Preview(PreviewSize)
	}

	return l
} // func makeListing(snap *supervisor.Snapshot, busy func(int64) bool) *Listing
