// /home/krylon/go/src/github.com/blicero/courier/lifecycle/describe.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 16:24:03 krylon>

package lifecycle

import (
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
)

//go:generate stringer -type=Action

// Action is what activating an Item does.
type Action uint8

// Wait means nothing happens, the Item is not due, yet.
// Handoff hands the Item off to the external application.
// Redownload hands off an Item that has been handed off before.
// Simulate shows the due notification without touching the store.
const (
	Wait Action = iota
	Handoff
	Redownload
	Simulate
)

// Badge contains everything a frontend needs to display an Item's Status.
type Badge struct {
	Color       string
	Emoji       string
	Label       string
	Action      Action
	ActionLabel string
}

var colors = map[status.Status]string{
	status.Scheduled:  "#f59e0b",
	status.Notified:   "#3b82f6",
	status.Downloaded: "#10b981",
}

var emojis = map[status.Status]string{
	status.Scheduled:  "⏰",
	status.Notified:   "🔔",
	status.Downloaded: "✅",
}

// Describe returns the Badge for an Item with the given Status while the
// application is running in the given Mode.
func Describe(s status.Status, m objects.Mode) Badge {
	var b = Badge{
		Color: "#6b7280",
		Emoji: "⚪",
		Label: string(s),
	}

	if c, ok := colors[s]; ok {
		b.Color = c
		b.Emoji = emojis[s]
	}

	if m != objects.Connected {
		b.Action = Simulate
		b.ActionLabel = "Tap to simulate notification"
		return b
	}

	switch {
	case Validate(s, status.Downloaded) != nil:
		b.Action = Wait
		b.ActionLabel = "Waiting for scheduled time"
	case s == status.Downloaded:
		b.Action = Redownload
		b.ActionLabel = "Re-download"
	default:
		b.Action = Handoff
		b.ActionLabel = "Download & Post"
	}

	return b
} // func Describe(s status.Status, m objects.Mode) Badge
