// /home/krylon/go/src/github.com/blicero/courier/objects/status/status_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 14:43:02 krylon>

package status

import "testing"

func TestParse(t *testing.T) {
	type testCase struct {
		str   string
		s     Status
		valid bool
	}

	var cases = []testCase{
		{"scheduled", Scheduled, true},
		{"notified", Notified, true},
		{"downloaded", Downloaded, true},
		{"Scheduled", "", false},
		{"", "", false},
		{"published", "", false},
	}

	for _, c := range cases {
		var (
			err error
			s   Status
		)

		s, err = Parse(c.str)

		if c.valid && err != nil {
			t.Errorf("Cannot parse %q: %s", c.str, err.Error())
		} else if !c.valid && err == nil {
			t.Errorf("Parsing %q should have failed, but returned %q",
				c.str,
				s)
		} else if s != c.s {
			t.Errorf("Parse(%q) = %q, expected %q", c.str, s, c.s)
		}
	}
} // func TestParse(t *testing.T)
