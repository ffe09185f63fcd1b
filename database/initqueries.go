// /home/krylon/go/src/github.com/blicero/courier/database/initqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 10:05:40 krylon>

package database

var initQueries = []string{
	`
CREATE TABLE item (
    id             INTEGER PRIMARY KEY,
    status         TEXT NOT NULL DEFAULT 'scheduled',
    scheduled_time INTEGER NOT NULL, -- nanoseconds since the epoch
    slide_count    INTEGER NOT NULL DEFAULT 0,
    caption        TEXT NOT NULL DEFAULT '',
    CHECK (status IN ('scheduled', 'notified', 'downloaded')),
    CHECK (slide_count >= 0)
)
`,
	"CREATE INDEX item_time_idx ON item (scheduled_time)",
	"CREATE INDEX item_status_idx ON item (status)",
	`
CREATE TABLE asset (
    id          INTEGER PRIMARY KEY,
    item_id     INTEGER NOT NULL,
    public_url  TEXT NOT NULL,
    order_index INTEGER NOT NULL,
    FOREIGN KEY (item_id) REFERENCES item (id)
        ON UPDATE RESTRICT
        ON DELETE CASCADE,
    UNIQUE (item_id, order_index),
    CHECK (order_index >= 0)
)
`,
	"CREATE INDEX asset_item_idx ON asset (item_id)",
}
