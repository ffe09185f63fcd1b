// /home/krylon/go/src/github.com/blicero/courier/common/common.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 14:20:37 krylon>

// Package common contains definitions used throughout the application.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blicero/courier/logdomain"
	"github.com/hashicorp/logutils"
	"github.com/odeke-em/go-uuid"
)

// Debug indicates whether to emit additional log messages and perform
// additional sanity checks.
const Debug = true

// AppName is the name of the application.
const AppName = "Courier"

// Version is the version number to display.
const Version = "0.3.0"

// DefaultPort is the TCP port the backend listens on by default.
const DefaultPort = 7211

// BuildStamp is the time the binary was built.
var BuildStamp = time.Now()

// TimestampFormat is the format string to represent timestamps.
const TimestampFormat = "2006-01-02 15:04:05"

// TimestampFormatMinute is used for timestamps that do not need sub-minute
// precision, e.g. when displaying an Item's scheduled time.
const TimestampFormatMinute = "2006-01-02 15:04"

// TimestampFormatSubSecond is the format for timestamps with millisecond
// resolution.
const TimestampFormatSubSecond = "2006-01-02 15:04:05.0000 MST"

// LogLevels are the names of the log levels supported by the logger.
var LogLevels = []logutils.LogLevel{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
	"CRITICAL",
	"CANTHAPPEN",
	"SILENT",
}

// MinLogLevel is the minimum level a log message must have to be written
// out to the log.
var MinLogLevel logutils.LogLevel = "TRACE"

var (
	pathLock sync.RWMutex
	logLock  sync.Mutex
	logFile  *os.File
)

// BaseDir is the folder where all application-specific files (database,
// log files, staged assets, configuration) are stored.
var BaseDir = filepath.Join(os.Getenv("HOME"), ".courier.d")

// LogPath is the path to the log file.
var LogPath = filepath.Join(BaseDir, "courier.log")

// DbPath is the path of the local SQLite database.
var DbPath = filepath.Join(BaseDir, "courier.db")

// ConfigPath is the path of the configuration file.
var ConfigPath = filepath.Join(BaseDir, "courier.yaml")

// StagingDir is the folder assets are downloaded into before handing an
// Item off to the external application.
var StagingDir = filepath.Join(BaseDir, "staging")

// SetBaseDir sets the BaseDir and related variables.
func SetBaseDir(path string) error {
	var err error

	fmt.Printf("Setting BASE_DIR to %s\n", path)

	pathLock.Lock()
	BaseDir = path
	LogPath = filepath.Join(BaseDir, "courier.log")
	DbPath = filepath.Join(BaseDir, "courier.db")
	ConfigPath = filepath.Join(BaseDir, "courier.yaml")
	StagingDir = filepath.Join(BaseDir, "staging")
	pathLock.Unlock()

	logLock.Lock()
	if logFile != nil {
		logFile.Close() // nolint: errcheck
		logFile = nil
	}
	logLock.Unlock()

	if err = InitApp(); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Error initializing application environment: %s\n",
			err.Error())
		return err
	}

	return nil
} // func SetBaseDir(path string) error

// InitApp performs some basic preparations for the application to run.
// Currently, this means creating the BaseDir folder and the staging folder.
func InitApp() error {
	var err error

	pathLock.RLock()
	defer pathLock.RUnlock()

	for _, dir := range []string{BaseDir, StagingDir} {
		if err = os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(
				os.Stderr,
				"Error creating folder %s: %s\n",
				dir,
				err.Error())
			return err
		}
	}

	return nil
} // func InitApp() error

// GetLogger returns a Logger for the given log domain.
// All Loggers share one log file; messages are filtered by their level
// tag, e.g. "[DEBUG] ...".
func GetLogger(dom logdomain.ID) (*log.Logger, error) {
	var (
		err    error
		writer io.Writer
		name   = fmt.Sprintf("%-10s ", dom.String())
	)

	if err = InitApp(); err != nil {
		return nil, err
	}

	logLock.Lock()
	defer logLock.Unlock()

	if logFile == nil {
		pathLock.RLock()
		var path = LogPath
		pathLock.RUnlock()

		if logFile, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600); err != nil {
			msg := fmt.Sprintf("Error opening log file %s: %s\n",
				path,
				err.Error())
			fmt.Println(msg)
			return nil, err
		}
	}

	writer = io.MultiWriter(os.Stdout, logFile)

	var filter = &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: MinLogLevel,
		Writer:   writer,
	}

	var logger = log.New(filter, name, log.Ldate|log.Ltime|log.Lshortfile)
	return logger, nil
} // func GetLogger(dom logdomain.ID) (*log.Logger, error)

// GetUUID returns a randomized UUID
func GetUUID() string {
	return uuid.New()
} // func GetUUID() string
