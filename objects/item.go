// /home/krylon/go/src/github.com/blicero/courier/objects/item.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 15:12:44 krylon>

package objects

import (
	"fmt"
	"sort"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/objects/status"
)

//go:generate ffjson item.go

// Asset is one constituent part of an Item, e.g. a single slide of a
// carousel post.
type Asset struct {
	ID         int64  `json:"id"`
	SourceURI  string `json:"public_url"`
	OrderIndex int    `json:"order_index"`
}

// Item is a piece of content that is scheduled for publication.
type Item struct {
	ID            int64         `json:"id"`
	Status        status.Status `json:"status"`
	ScheduledTime time.Time     `json:"scheduled_time"`
	PayloadCount  int           `json:"slide_count"`
	Caption       string        `json:"caption,omitempty"`
	Assets        []Asset       `json:"post_slides"`
}

func (i *Item) String() string {
	return fmt.Sprintf("Item{ ID: %d, Status: %s, ScheduledTime: %s, Slides: %d }",
		i.ID,
		i.Status,
		i.ScheduledTime.Format(common.TimestampFormat),
		i.PayloadCount)
} // func (i *Item) String() string

// SortAssets sorts the Item's Assets by their OrderIndex. Assets with the
// same OrderIndex keep their relative order.
func (i *Item) SortAssets() {
	sort.SliceStable(i.Assets, func(a, b int) bool {
		return i.Assets[a].OrderIndex < i.Assets[b].OrderIndex
	})
} // func (i *Item) SortAssets()

// CheckAssets verifies that the Item's Assets, once sorted, have
// contiguous, unique order indices starting at zero.
func (i *Item) CheckAssets() error {
	var idx = make([]int, len(i.Assets))

	for n, a := range i.Assets {
		idx[n] = a.OrderIndex
	}

	sort.Ints(idx)

	for n, v := range idx {
		if v != n {
			return fmt.Errorf("Item %d: asset order index %d found at position %d (expected %d)",
				i.ID,
				v,
				n,
				n)
		}
	}

	return nil
} // func (i *Item) CheckAssets() error

// Preview returns at most max Assets in display order, plus the number of
// Assets left over.
func (i *Item) Preview(max int) ([]Asset, int) {
	if len(i.Assets) <= max {
		return i.Assets, 0
	}

	return i.Assets[:max], len(i.Assets) - max
} // func (i *Item) Preview(max int) ([]Asset, int)

// Clone returns a deep copy of the Item.
func (i *Item) Clone() Item {
	var c = *i

	if i.Assets != nil {
		c.Assets = make([]Asset, len(i.Assets))
		copy(c.Assets, i.Assets)
	}

	return c
} // func (i *Item) Clone() Item

// Normalize puts a list of Items into canonical form: every Item's Assets
// sorted by OrderIndex, the Items sorted by ScheduledTime, earliest first.
// Items scheduled for the same time are ordered by ID.
func Normalize(items []Item) {
	for idx := range items {
		items[idx].SortAssets()
	}

	sort.SliceStable(items, func(a, b int) bool {
		var ta, tb = items[a].ScheduledTime, items[b].ScheduledTime

		if ta.Equal(tb) {
			return items[a].ID < items[b].ID
		}

		return ta.Before(tb)
	})
} // func Normalize(items []Item)
