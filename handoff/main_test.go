// /home/krylon/go/src/github.com/blicero/courier/handoff/main_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 16:30:02 krylon>

package handoff

import (
	"fmt"
	"os"
	"testing"

	"github.com/blicero/courier/common"
)

func TestMain(m *testing.M) {
	var (
		err     error
		result  int
		baseDir string
	)

	if baseDir, err = os.MkdirTemp("", "courier_handoff_test_"); err != nil {
		fmt.Printf("Cannot create temporary directory: %s\n", err.Error())
		os.Exit(1)
	} else if err = common.SetBaseDir(baseDir); err != nil {
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
