// /home/krylon/go/src/github.com/blicero/courier/handoff/launcher.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 14:48:15 krylon>

package handoff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrUnsupported is returned by the ExecLauncher and ExecClipboard on
// systems they do not know how to handle.
var ErrUnsupported = errors.New("not supported on this system")

// Launcher opens URLs in whatever application is registered for them.
type Launcher interface {
	CanOpen(ctx context.Context, link string) (bool, error)
	Open(ctx context.Context, link string) error
}

// ExecLauncher opens URLs by running the system's opener command
// (xdg-open, open, ...).
type ExecLauncher struct{}

// CanOpen checks if an application is registered for the URL's scheme.
// Web URLs can always be opened.
func (ExecLauncher) CanOpen(ctx context.Context, link string) (bool, error) {
	var (
		err    error
		u      *url.URL
		out    bytes.Buffer
		cmd    *exec.Cmd
		scheme string
	)

	if u, err = url.Parse(link); err != nil {
		return false, err
	}

	scheme = strings.ToLower(u.Scheme)

	switch scheme {
	case "http", "https":
		return true, nil
	case "":
		return false, fmt.Errorf("URL %q has no scheme", link)
	}

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.CommandContext(ctx, "xdg-mime", "query", "default", "x-scheme-handler/"+scheme)
	default:
		return false, ErrUnsupported
	}

	cmd.Stdout = &out
	if err = cmd.Run(); err != nil {
		return false, err
	}

	return strings.TrimSpace(out.String()) != "", nil
} // func (ExecLauncher) CanOpen(ctx context.Context, link string) (bool, error)

// Open opens the URL.
func (ExecLauncher) Open(ctx context.Context, link string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.CommandContext(ctx, "xdg-open", link)
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", link)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", link)
	default:
		return ErrUnsupported
	}

	return cmd.Run()
} // func (ExecLauncher) Open(ctx context.Context, link string) error

// CachedLauncher remembers the answers of a Launcher's CanOpen for a
// while, so a handoff does not have to query the system for every deep
// link each time. Errors are not cached.
type CachedLauncher struct {
	Launcher
	cache *expirable.LRU[string, bool]
}

// NewCachedLauncher wraps a Launcher. Answers are kept for ttl.
func NewCachedLauncher(l Launcher, size int, ttl time.Duration) *CachedLauncher {
	return &CachedLauncher{
		Launcher: l,
		cache:    expirable.NewLRU[string, bool](size, nil, ttl),
	}
} // func NewCachedLauncher(l Launcher, size int, ttl time.Duration) *CachedLauncher

// CanOpen returns the cached answer for the URL, asking the wrapped
// Launcher if there is none.
func (c *CachedLauncher) CanOpen(ctx context.Context, link string) (bool, error) {
	if ok, found := c.cache.Get(link); found {
		return ok, nil
	}

	var ok, err = c.Launcher.CanOpen(ctx, link)
	if err != nil {
		return false, err
	}

	c.cache.Add(link, ok)
	return ok, nil
} // func (c *CachedLauncher) CanOpen(ctx context.Context, link string) (bool, error)

// Purge forgets all cached answers, e.g. after the Chain was changed.
func (c *CachedLauncher) Purge() {
	c.cache.Purge()
} // func (c *CachedLauncher) Purge()
