// /home/krylon/go/src/github.com/blicero/courier/objects/notification.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 15:20:08 krylon>

// Package objects provides the data types used by the application.
package objects

// Notification is the alert the user receives when an Item becomes due.
// Accept and Decline are the labels of the two choices offered.
type Notification struct {
	ID      string
	ItemID  int64
	Title   string
	Body    string
	Accept  string
	Decline string
}

// Payload returns the Notification's title and body.
func (n *Notification) Payload() (string, string) {
	return n.Title, n.Body
} // func (n *Notification) Payload() (string, string)
