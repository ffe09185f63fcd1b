// /home/krylon/go/src/github.com/blicero/courier/database/query/query.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 10:02:13 krylon>

// Package query provides symbolic constants for identifying SQL queries.
package query

//go:generate stringer -type=ID

// ID identifies a single SQL query.
type ID uint8

// These constants identify the queries the database package knows about.
const (
	ItemAdd ID = iota
	ItemDelete
	ItemGetAll
	ItemGetDue
	ItemGetByID
	ItemSetStatus
	AssetAdd
	AssetGetByItem
)
