// /home/krylon/go/src/github.com/blicero/courier/database/dbqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 10:11:27 krylon>

package database

import "github.com/blicero/courier/database/query"

var dbQueries = map[query.ID]string{
	query.ItemAdd: `
INSERT INTO item (status, scheduled_time, slide_count, caption)
VALUES           (     ?,              ?,           ?,       ?)
`,
	query.ItemDelete: "DELETE FROM item WHERE id = ?",
	query.ItemGetAll: `
SELECT
    id,
    status,
    scheduled_time,
    slide_count,
    caption
FROM item
ORDER BY scheduled_time, id
`,
	query.ItemGetDue: `
SELECT
    id,
    status,
    scheduled_time,
    slide_count,
    caption
FROM item
WHERE status = 'scheduled' AND scheduled_time <= ?
ORDER BY scheduled_time, id
`,
	query.ItemGetByID: `
SELECT
    status,
    scheduled_time,
    slide_count,
    caption
FROM item
WHERE id = ?
`,
	// The status of an item may only change if its current status is one
	// of two permitted predecessors. If there is only one, it is passed
	// twice.
	query.ItemSetStatus: `
UPDATE item
SET status = ?
WHERE id = ? AND status IN (?, ?)
`,
	query.AssetAdd: `
INSERT INTO asset (item_id, public_url, order_index)
VALUES            (      ?,          ?,           ?)
`,
	query.AssetGetByItem: `
SELECT
    id,
    public_url,
    order_index
FROM asset
WHERE item_id = ?
ORDER BY order_index
`,
}
