// /home/krylon/go/src/github.com/blicero/courier/handoff/chain.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 14:20:51 krylon>

package handoff

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strings"
)

// Platform names used as keys for store destinations.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// Target is one destination of a handoff and the message shown to the
// user once it has been opened.
type Target struct {
	URL     string `yaml:"url" json:"url"`
	Message string `yaml:"message" json:"message"`
}

// Chain is the ordered list of destinations a handoff tries. Deep links
// are tried first, in order, and only if an installed application claims
// them. The web destination comes next, and the store destination for
// the current platform is the last resort.
type Chain struct {
	DeepLinks []Target          `yaml:"deep_links" json:"deep_links"`
	Web       Target            `yaml:"web" json:"web"`
	Stores    map[string]Target `yaml:"stores" json:"stores"`
	Platform  string            `yaml:"platform,omitempty" json:"platform,omitempty"`
	Exhausted string            `yaml:"exhausted" json:"exhausted"`
}

// DefaultChain returns the Chain for handing off to Instagram.
func DefaultChain() Chain {
	const opened = "Go to Instagram camera and select your downloaded images to create your carousel post!"

	return Chain{
		DeepLinks: []Target{
			{URL: "instagram://user?username=instagram", Message: opened},
			{URL: "instagram://camera", Message: opened},
			{URL: "instagram://feed", Message: opened},
			{URL: "instagram://", Message: opened},
		},
		Web: Target{
			URL:     "https://www.instagram.com",
			Message: "Opened Instagram in browser. For best results, use the Instagram mobile app.",
		},
		Stores: map[string]Target{
			PlatformIOS: {
				URL:     "https://apps.apple.com/app/instagram/id389801252",
				Message: "Instagram app not found. Download it from the app store!",
			},
			PlatformAndroid: {
				URL:     "https://play.google.com/store/apps/details?id=com.instagram.android",
				Message: "Instagram app not found. Download it from the app store!",
			},
		},
		Exhausted: "Unable to open Instagram. Please open it manually.",
	}
} // func DefaultChain() Chain

// Validate checks that every URL in the Chain can be parsed and that
// there is at least one destination.
func (c *Chain) Validate() error {
	var cnt int

	for _, t := range c.targets() {
		if u, err := url.Parse(t.target.URL); err != nil {
			return fmt.Errorf("invalid %s URL %q: %w", t.channel, t.target.URL, err)
		} else if u.Scheme == "" {
			return fmt.Errorf("%s URL %q has no scheme", t.channel, t.target.URL)
		}

		cnt++
	}

	if cnt == 0 {
		return errors.New("handoff chain has no destinations")
	}

	return nil
} // func (c *Chain) Validate() error

// StorePlatform returns the platform whose store destination is used.
// If none is configured, Apple systems get the iOS store and everyone
// else the Android store.
func (c *Chain) StorePlatform() string {
	if c.Platform != "" {
		return strings.ToLower(c.Platform)
	}

	switch runtime.GOOS {
	case "darwin", "ios":
		return PlatformIOS
	default:
		return PlatformAndroid
	}
} // func (c *Chain) StorePlatform() string

// Clone returns a deep copy of the Chain.
func (c *Chain) Clone() Chain {
	var dup = *c

	dup.DeepLinks = make([]Target, len(c.DeepLinks))
	copy(dup.DeepLinks, c.DeepLinks)

	if c.Stores != nil {
		dup.Stores = make(map[string]Target, len(c.Stores))
		for k, v := range c.Stores {
			dup.Stores[k] = v
		}
	}

	return dup
} // func (c *Chain) Clone() Chain

type step struct {
	channel Channel
	target  Target
	probe   bool
}

// targets flattens the Chain into the order in which its destinations
// are tried. Empty destinations are left out.
func (c *Chain) targets() []step {
	var steps = make([]step, 0, len(c.DeepLinks)+2)

	for _, t := range c.DeepLinks {
		if t.URL != "" {
			steps = append(steps, step{channel: DeepLink, target: t, probe: true})
		}
	}

	if c.Web.URL != "" {
		steps = append(steps, step{channel: Web, target: c.Web})
	}

	if t, ok := c.Stores[c.StorePlatform()]; ok && t.URL != "" {
		steps = append(steps, step{channel: Store, target: t})
	}

	return steps
} // func (c *Chain) targets() []step
