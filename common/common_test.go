// /home/krylon/go/src/github.com/blicero/courier/common/common_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 23. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-23 14:12:40 krylon>

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blicero/courier/logdomain"
)

func TestMain(m *testing.M) {
	var (
		err     error
		result  int
		baseDir string
	)

	if baseDir, err = os.MkdirTemp("", "courier_common_test_"); err != nil {
		fmt.Printf("Cannot create temporary directory: %s\n", err.Error())
		os.Exit(1)
	} else if err = SetBaseDir(baseDir); err != nil {
		fmt.Printf("Cannot set base directory to %s: %s\n",
			baseDir,
			err.Error())
		os.Exit(1)
	} else if result = m.Run(); result == 0 {
		os.RemoveAll(baseDir) // nolint: errcheck
	} else {
		fmt.Printf(">>> TEST DIRECTORY: %s\n", baseDir)
	}

	os.Exit(result)
} // func TestMain(m *testing.M)

func TestSetBaseDir(t *testing.T) {
	if filepath.Dir(DbPath) != BaseDir {
		t.Errorf("DbPath %s is not in %s", DbPath, BaseDir)
	} else if filepath.Dir(StagingDir) != BaseDir {
		t.Errorf("StagingDir %s is not in %s", StagingDir, BaseDir)
	} else if _, err := os.Stat(StagingDir); err != nil {
		t.Errorf("StagingDir was not created: %s", err.Error())
	}
} // func TestSetBaseDir(t *testing.T)

func TestGetLogger(t *testing.T) {
	var (
		err error
		raw []byte
	)

	for _, dom := range logdomain.AllDomains() {
		var l, err = GetLogger(dom)

		if err != nil {
			t.Fatalf("Cannot create Logger for %s: %s", dom, err.Error())
		}

		l.Printf("[INFO] Hello from %s\n", dom)
	}

	MinLogLevel = "INFO"
	defer func() { MinLogLevel = "TRACE" }()

	var quiet, _ = GetLogger(logdomain.Common)
	quiet.Printf("[DEBUG] Nobody should see this\n")

	if raw, err = os.ReadFile(LogPath); err != nil {
		t.Fatalf("Cannot read log file %s: %s", LogPath, err.Error())
	}

	var txt = string(raw)

	for _, dom := range logdomain.AllDomains() {
		if !strings.Contains(txt, "Hello from "+dom.String()) {
			t.Errorf("Message from %s is missing in the log", dom)
		}
	}

	if strings.Contains(txt, "Nobody should see this") {
		t.Error("Message below MinLogLevel was not filtered")
	}
} // func TestGetLogger(t *testing.T)

func TestGetUUID(t *testing.T) {
	var a, b = GetUUID(), GetUUID()

	if len(a) != 36 {
		t.Errorf("Unexpected UUID %q", a)
	} else if a == b {
		t.Errorf("Two UUIDs are the same: %s", a)
	}
} // func TestGetUUID(t *testing.T)
