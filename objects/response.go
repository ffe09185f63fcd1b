// /home/krylon/go/src/github.com/blicero/courier/objects/response.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 15:22:31 krylon>

package objects

//go:generate ffjson response.go

// Response is what the backend sends to a client after processing a request.
type Response struct {
	ID      string
	Status  bool
	Message string
	Outcome string `json:",omitempty"`
}
