// /home/krylon/go/src/github.com/blicero/courier/config/config.go
// -*- mode: go; coding: utf-8; -*-
// Created on 21. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-21 15:12:40 krylon>

// Package config loads the application's configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/handoff"
	"github.com/hashicorp/logutils"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// Kinds of store the application can talk to.
const (
	StoreSQLite    = "sqlite"
	StorePostgREST = "postgrest"
	StorePostgres  = "postgres"
)

// Kinds of notifier.
const (
	NotifierDBus = "dbus"
	NotifierLog  = "log"
)

// KeyEnv is the environment variable consulted for the store's key if
// the configuration file does not contain one.
const KeyEnv = "COURIER_STORE_KEY"

// KeyringService is the service name under which the store's key is kept
// in the system keyring.
const KeyringService = "courier"

// ErrNoKey is returned by StoreKey if no key could be found anywhere.
var ErrNoKey = errors.New("no key configured for the store")

// Store describes how to reach the store.
type Store struct {
	Kind       string        `yaml:"kind"`
	URL        string        `yaml:"url"`
	Key        string        `yaml:"key,omitempty"`
	Table      string        `yaml:"table"`
	AssetTable string        `yaml:"asset_table"`
	Timeout    time.Duration `yaml:"timeout"`
	PoolSize   int           `yaml:"pool_size"`
}

// Config holds the application's settings.
type Config struct {
	Listen          string        `yaml:"listen"`
	Announce        bool          `yaml:"announce"`
	LogLevel        string        `yaml:"log_level"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	Notifier        string        `yaml:"notifier"`
	AutoAct         bool          `yaml:"auto_act"`
	DecisionTimeout time.Duration `yaml:"decision_timeout"`
	ProbeCacheTTL   time.Duration `yaml:"probe_cache_ttl"`
	StagingDir      string        `yaml:"staging_dir"`
	Store           Store         `yaml:"store"`
	Handoff         handoff.Chain `yaml:"handoff"`
}

// Default returns the default configuration: a local SQLite store,
// desktop notifications, and the default handoff chain.
func Default() *Config {
	return &Config{
		Listen:          fmt.Sprintf("localhost:%d", common.DefaultPort),
		LogLevel:        "DEBUG",
		PollInterval:    time.Minute,
		Notifier:        NotifierDBus,
		DecisionTimeout: time.Hour,
		ProbeCacheTTL:   10 * time.Minute,
		Store: Store{
			Kind:       StoreSQLite,
			URL:        common.DbPath,
			Table:      "scheduled_posts",
			AssetTable: "post_slides",
			Timeout:    15 * time.Second,
			PoolSize:   4,
		},
		Handoff: handoff.DefaultChain(),
	}
} // func Default() *Config

// Load reads the configuration file at path. Settings missing from the
// file keep their default values. If the file does not exist, the
// defaults are returned.
func Load(path string) (*Config, error) {
	var (
		err error
		raw []byte
		cfg = Default()
	)

	if raw, err = os.ReadFile(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return nil, err
	} else if err = yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	} else if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
} // func Load(path string) (*Config, error)

// Save writes the configuration to path. The store's key is never
// written to disk; use SetStoreKey to put it in the keyring.
func (c *Config) Save(path string) error {
	var (
		err error
		raw []byte
		dup = *c
	)

	dup.Store.Key = ""

	if raw, err = yaml.Marshal(&dup); err != nil {
		return err
	} else if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, raw, 0600)
} // func (c *Config) Save(path string) error

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreSQLite, StorePostgREST, StorePostgres:
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}

	switch c.Notifier {
	case NotifierDBus, NotifierLog:
	default:
		return fmt.Errorf("unknown notifier %q", c.Notifier)
	}

	if c.Store.URL == "" {
		return errors.New("store URL is missing")
	} else if c.PollInterval < time.Second {
		return fmt.Errorf("poll interval %s is too short", c.PollInterval)
	} else if c.DecisionTimeout <= 0 {
		return fmt.Errorf("invalid decision timeout %s", c.DecisionTimeout)
	} else if c.ProbeCacheTTL <= 0 {
		return fmt.Errorf("invalid probe cache TTL %s", c.ProbeCacheTTL)
	} else if c.Store.Timeout <= 0 {
		return fmt.Errorf("invalid store timeout %s", c.Store.Timeout)
	} else if c.Store.PoolSize < 1 {
		return fmt.Errorf("invalid pool size %d", c.Store.PoolSize)
	} else if !c.validLogLevel() {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return c.Handoff.Validate()
} // func (c *Config) Validate() error

func (c *Config) validLogLevel() bool {
	for _, lvl := range common.LogLevels {
		if strings.EqualFold(string(lvl), c.LogLevel) {
			return true
		}
	}

	return false
} // func (c *Config) validLogLevel() bool

// MinLogLevel returns the configured log level.
func (c *Config) MinLogLevel() logutils.LogLevel {
	return logutils.LogLevel(strings.ToUpper(c.LogLevel))
} // func (c *Config) MinLogLevel() logutils.LogLevel

// StoreKey returns the key used to authenticate to the store. It is taken
// from the configuration file, the environment, or the system keyring,
// in that order.
func (c *Config) StoreKey() (string, error) {
	if c.Store.Key != "" {
		return c.Store.Key, nil
	} else if key := os.Getenv(KeyEnv); key != "" {
		return key, nil
	}

	var key, err = keyring.Get(KeyringService, c.Store.URL)

	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoKey
	} else if err != nil {
		return "", fmt.Errorf("cannot read key from keyring: %w", err)
	}

	return key, nil
} // func (c *Config) StoreKey() (string, error)

// SetStoreKey saves the key for the configured store in the system
// keyring.
func (c *Config) SetStoreKey(key string) error {
	return keyring.Set(KeyringService, c.Store.URL, key)
} // func (c *Config) SetStoreKey(key string) error
