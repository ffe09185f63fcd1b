// /home/krylon/go/src/github.com/blicero/courier/backend/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 15:31:09 krylon>

// Package backend implements the ... backend of the application,
// the part that wires the store, the poller and the handoff together
// and exposes them to clients over HTTP.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blicero/courier/clock"
	"github.com/blicero/courier/common"
	"github.com/blicero/courier/config"
	"github.com/blicero/courier/database"
	"github.com/blicero/courier/dispatch"
	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/gateway/postgres"
	"github.com/blicero/courier/gateway/postgrest"
	"github.com/blicero/courier/handoff"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/poller"
	"github.com/blicero/courier/supervisor"
	"github.com/gorilla/mux"
	"github.com/grandcat/zeroconf"
)

const (
	probeCacheSize  = 64
	shutdownTimeout = time.Second * 3
)

// Daemon is the centerpiece of the backend, coordinating between the store, the clients, etc.
type Daemon struct {
	log      *log.Logger
	cfg      *config.Config
	cfgPath  string
	gw       gateway.Gateway
	release  func()
	notifier dispatch.Notifier
	orch     *handoff.Orchestrator
	disp     *dispatch.Dispatcher
	poll     *poller.Poller
	sup      *supervisor.Supervisor
	lock     sync.RWMutex
	active   bool
	ctx      context.Context
	cancel   context.CancelFunc
	web      http.Server
	listener net.Listener
	router   *mux.Router
	dnssd    *zeroconf.Server
}

// Summon summons a Daemon and returns it. No sacrifice or idolatry is required.
//
// If cfgPath is not empty, the file is watched, and changes to the handoff
// chain take effect without a restart.
func Summon(cfg *config.Config, cfgPath string) (*Daemon, error) {
	var (
		err error
		d   = &Daemon{
			cfg:     cfg,
			cfgPath: cfgPath,
			active:  true,
			router:  mux.NewRouter(),
		}
	)

	if d.log, err = common.GetLogger(logdomain.Backend); err != nil {
		fmt.Printf("ERROR initializing Logger: %s\n",
			err.Error())
		return nil, err
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())

	if err = d.assemble(); err != nil {
		d.teardown()
		return nil, err
	} else if d.listener, err = net.Listen("tcp", cfg.Listen); err != nil {
		d.log.Printf("[ERROR] Cannot listen on %s: %s\n",
			cfg.Listen,
			err.Error())
		d.teardown()
		return nil, err
	}

	d.web.Addr = d.listener.Addr().String()
	d.web.ErrorLog = d.log
	d.web.Handler = d.router

	if err = d.initWebHandlers(); err != nil {
		d.log.Printf("[ERROR] Failed to initialize web server: %s\n",
			err.Error())
		d.listener.Close() // nolint: errcheck
		d.teardown()
		return nil, err
	}

	if err = d.sup.Start(d.ctx); err != nil {
		d.log.Printf("[ERROR] Cannot start supervisor: %s\n",
			err.Error())
		d.listener.Close() // nolint: errcheck
		d.teardown()
		return nil, err
	}

	d.log.Printf("[INFO] Running in %s mode\n", d.sup.Mode())

	if cfgPath != "" {
		if err = config.Watch(d.ctx, cfgPath, d.reconfigure); err != nil {
			d.log.Printf("[ERROR] Cannot watch configuration file %s: %s\n",
				cfgPath,
				err.Error())
		}
	}

	if cfg.Announce {
		if err = d.initDNSSd(); err != nil {
			d.log.Printf("[ERROR] Cannot announce service: %s\n",
				err.Error())
		}
	}

	go d.serveHTTP()

	return d, nil
} // func Summon(cfg *config.Config, cfgPath string) (*Daemon, error)

// assemble creates the components, leaves first.
func (d *Daemon) assemble() error {
	var (
		err      error
		launcher *handoff.CachedLauncher
		stageDir = d.cfg.StagingDir
		decision = dispatch.Defer
	)

	if d.gw, d.release, err = openGateway(d.ctx, d.cfg, d.log); err != nil {
		d.log.Printf("[ERROR] Cannot open %s store %s: %s\n",
			d.cfg.Store.Kind,
			d.cfg.Store.URL,
			err.Error())
		return err
	}

	if stageDir == "" {
		stageDir = common.StagingDir
	}

	launcher = handoff.NewCachedLauncher(handoff.ExecLauncher{}, probeCacheSize, d.cfg.ProbeCacheTTL)

	if d.orch, err = handoff.New(
		d.gw,
		launcher,
		handoff.ExecClipboard{},
		handoff.NewFileStager(stageDir),
		d.cfg.Handoff); err != nil {
		return err
	}

	if d.cfg.AutoAct {
		decision = dispatch.ActNow
	}

	if d.cfg.Notifier == config.NotifierDBus {
		var bus *dispatch.DBusNotifier

		if bus, err = dispatch.NewDBusNotifier(); err != nil {
			d.log.Printf("[WARN] Cannot use desktop notifications, alerts go to the log: %s\n",
				err.Error())
		} else {
			d.notifier = bus
		}
	}

	if d.notifier == nil {
		if d.notifier, err = dispatch.NewLogNotifier(decision); err != nil {
			return err
		}
	}

	if d.disp, err = dispatch.New(d.notifier, d.orch); err != nil {
		return err
	}

	d.disp.SetDecisionTimeout(d.cfg.DecisionTimeout)

	if d.poll, err = poller.New(d.gw, d.disp, clock.Real{}, d.cfg.PollInterval); err != nil {
		return err
	} else if d.sup, err = supervisor.New(d.gw, d.poll, d.disp, d.orch, clock.Real{}); err != nil {
		return err
	}

	d.orch.OnRefresh(d.sup.Reload)

	return nil
} // func (d *Daemon) assemble() error

// openGateway returns the Gateway for the configured store, along with a
// function to release it.
func openGateway(ctx context.Context, cfg *config.Config, l *log.Logger) (gateway.Gateway, func(), error) {
	var s = &cfg.Store

	switch s.Kind {
	case config.StoreSQLite:
		var pool, err = database.NewPool(s.URL, s.PoolSize)
		if err != nil {
			return nil, nil, err
		}
		return pool, func() { pool.Close() }, nil // nolint: errcheck
	case config.StorePostgREST:
		var key, err = cfg.StoreKey()
		if errors.Is(err, config.ErrNoKey) {
			l.Printf("[WARN] No key found for %s, sending requests without one\n",
				s.URL)
		} else if err != nil {
			return nil, nil, err
		}

		var c *postgrest.Client
		if c, err = postgrest.New(s.URL, key, s.Table, s.AssetTable, s.Timeout); err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	case config.StorePostgres:
		var st, err = postgres.Connect(ctx, s.URL, s.Table, s.AssetTable, s.PoolSize)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", s.Kind)
	}
} // func openGateway(ctx context.Context, cfg *config.Config, l *log.Logger) (gateway.Gateway, func(), error)

func (d *Daemon) reconfigure(c *config.Config) {
	if err := d.orch.SetChain(c.Handoff); err != nil {
		d.log.Printf("[ERROR] Keeping previous handoff chain: %s\n",
			err.Error())
		return
	}

	d.disp.SetDecisionTimeout(c.DecisionTimeout)
	d.log.Printf("[INFO] Configuration reloaded from %s\n", d.cfgPath)
} // func (d *Daemon) reconfigure(c *config.Config)

// Addr returns the address the web server listens on.
func (d *Daemon) Addr() string {
	return d.web.Addr
} // func (d *Daemon) Addr() string

// Supervisor returns the Daemon's Supervisor.
func (d *Daemon) Supervisor() *supervisor.Supervisor {
	return d.sup
} // func (d *Daemon) Supervisor() *supervisor.Supervisor

// IsAlive returns true if the Daemon's active flag is set.
func (d *Daemon) IsAlive() bool {
	d.lock.RLock()
	var alive = d.active
	d.lock.RUnlock()

	return alive
} // func (d *Daemon) IsAlive() bool

// Banish clears the Daemon's active flag, telling components to shut down.
func (d *Daemon) Banish() error {
	var (
		err         error
		ctx, cancel = context.WithTimeout(context.Background(), shutdownTimeout)
	)
	defer cancel()

	if d.dnssd != nil {
		d.dnssd.Shutdown()
	}

	if err = d.web.Shutdown(ctx); err != nil {
		d.log.Printf("[ERROR] Failed to shutdown web server: %s\n",
			err.Error())
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		d.log.Printf("[ERROR] Failed to gracefully shut down web server: %s\n",
			ctx.Err().Error())
		d.web.Close() // nolint: errcheck
	}

	d.teardown()

	d.lock.Lock()
	d.active = false
	d.lock.Unlock()
	return err
} // func (d *Daemon) Banish() error

// teardown stops the components in reverse order of their creation. It
// copes with a partially assembled Daemon.
func (d *Daemon) teardown() {
	if d.sup != nil {
		d.sup.Stop()
	}

	if d.disp != nil {
		d.disp.Close()
	}

	if n, ok := d.notifier.(*dispatch.DBusNotifier); ok {
		n.Close() // nolint: errcheck
	}

	d.cancel()

	if d.release != nil {
		d.release()
	}
} // func (d *Daemon) teardown()
