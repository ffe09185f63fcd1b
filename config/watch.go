// /home/krylon/go/src/github.com/blicero/courier/config/watch.go
// -*- mode: go; coding: utf-8; -*-
// Created on 21. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-21 15:40:09 krylon>

package config

import (
	"context"
	"log"
	"path/filepath"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/logdomain"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration file whenever it changes and passes the
// new Config to fn. A file that cannot be parsed is logged and ignored.
// Watch returns once the watch has been set up; it stops when ctx is done.
//
// The folder is watched rather than the file itself, so the watch
// survives editors that replace the file when saving it.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	var (
		err     error
		lg      *log.Logger
		watcher *fsnotify.Watcher
		dir     = filepath.Dir(path)
		name    = filepath.Clean(path)
	)

	if lg, err = common.GetLogger(logdomain.Config); err != nil {
		return err
	} else if watcher, err = fsnotify.NewWatcher(); err != nil {
		lg.Printf("[ERROR] Cannot create file watcher: %s\n", err.Error())
		return err
	} else if err = watcher.Add(dir); err != nil {
		lg.Printf("[ERROR] Cannot watch %s: %s\n", dir, err.Error())
		watcher.Close() // nolint: errcheck
		return err
	}

	go func() {
		defer watcher.Close() // nolint: errcheck

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				} else if filepath.Clean(ev.Name) != name ||
					!ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}

				var cfg, lerr = Load(path)
				if lerr != nil {
					lg.Printf("[ERROR] Cannot reload configuration: %s\n",
						lerr.Error())
					continue
				}

				lg.Printf("[INFO] Configuration %s reloaded\n", path)
				fn(cfg)
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}

				lg.Printf("[ERROR] File watcher: %s\n", werr.Error())
			}
		}
	}()

	return nil
} // func Watch(ctx context.Context, path string, fn func(*Config)) error
