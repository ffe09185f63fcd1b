// /home/krylon/go/src/github.com/blicero/courier/objects/mode.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 15:31:17 krylon>

package objects

import (
	"fmt"
	"strings"
)

//go:generate stringer -type=Mode

// Mode describes whether the application is talking to the real store.
type Mode uint8

// Offline is the Mode before the store has been probed and after shutdown.
// Connected means live data from the store.
// Demo means the store was not reachable, and a fixed set of sample Items
// is shown instead.
const (
	Offline Mode = iota
	Connected
	Demo
)

// Label returns a short description of the Mode for the status line.
func (m Mode) Label() string {
	switch m {
	case Connected:
		return "Connected to store"
	case Demo:
		return "Demo Mode"
	default:
		return "Offline"
	}
} // func (m Mode) Label() string

// Banner returns the text of the banner displayed above the Item list.
func (m Mode) Banner() string {
	if m == Connected {
		return "LIVE MODE - Connected to your store!"
	}

	return "DEMO MODE - Activate items to simulate notifications!"
} // func (m Mode) Banner() string

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(m.String())), nil
} // func (m Mode) MarshalText() ([]byte, error)

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(txt []byte) error {
	for _, c := range []Mode{Offline, Connected, Demo} {
		if strings.EqualFold(c.String(), string(txt)) {
			*m = c
			return nil
		}
	}

	return fmt.Errorf("invalid Mode %q", txt)
} // func (m *Mode) UnmarshalText(txt []byte) error
