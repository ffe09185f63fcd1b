// /home/krylon/go/src/github.com/blicero/courier/backend/web.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 17:48:55 krylon>

package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/supervisor"
	"github.com/gorilla/mux"
	"github.com/pquerna/ffjson/ffjson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Paths of the HTTP API.
const (
	PathItems    = "/items"
	PathMode     = "/mode"
	PathRefresh  = "/refresh"
	PathActivate = "/item/%d/activate"
	PathMetrics  = "/metrics"
)

// OutcomeSimulated is the Outcome reported for an activation in demo mode.
const OutcomeSimulated = "simulated"

// LongPollTimeout is how long GET /items?since=N waits for a newer
// generation before it returns the current one.
const LongPollTimeout = time.Second * 30

func (d *Daemon) initWebHandlers() error {
	d.router.HandleFunc(PathItems, d.handleItems).Methods(http.MethodGet)
	d.router.HandleFunc(PathMode, d.handleMode).Methods(http.MethodGet)
	d.router.HandleFunc(PathRefresh, d.handleRefresh).Methods(http.MethodPost)
	d.router.HandleFunc("/item/{id:(?:\\d+)}/activate", d.handleItemActivate).Methods(http.MethodPost)
	d.router.Handle(PathMetrics, promhttp.Handler())

	return nil
} // func (d *Daemon) initWebHandlers() error

func (d *Daemon) serveHTTP() {
	var err error

	defer d.log.Println("[INFO] Web server is shutting down")

	d.log.Printf("[INFO] Web frontend is going online at %s\n", d.web.Addr)

	if err = d.web.Serve(d.listener); err != nil {
		if err != http.ErrServerClosed {
			d.log.Printf("[ERROR] Serve returned an error: %s\n",
				err.Error())
		} else {
			d.log.Println("[INFO] HTTP Server has shut down.")
		}
	}
} // func (d *Daemon) serveHTTP()

func (d *Daemon) handleItems(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err   error
		buf   []byte
		since uint64
		snap  supervisor.Snapshot
		qstr  = r.URL.Query().Get("since")
	)

	if qstr == "" {
		snap = d.sup.Snapshot()
	} else if since, err = strconv.ParseUint(qstr, 10, 64); err != nil {
		d.log.Printf("[ERROR] Invalid generation %q: %s\n",
			qstr,
			err.Error())
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	} else {
		snap = d.awaitSnapshot(r, since)
	}

	if buf, err = ffjson.Marshal(makeListing(&snap, d.sup.Busy)); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Item list: %s\n",
			err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleItems(w http.ResponseWriter, r *http.Request)

// awaitSnapshot returns the first Snapshot newer than generation since. If
// none is published within LongPollTimeout, or the client hangs up, it
// returns the current one.
func (d *Daemon) awaitSnapshot(r *http.Request, since uint64) supervisor.Snapshot {
	var (
		sub, cancel = d.sup.Subscribe()
		snap        = d.sup.Snapshot()
		timeout     = time.NewTimer(LongPollTimeout)
	)

	defer cancel()
	defer timeout.Stop()

	for snap.Generation <= since {
		select {
		case s, ok := <-sub:
			if !ok {
				return d.sup.Snapshot()
			}
			snap = s
		case <-timeout.C:
			return d.sup.Snapshot()
		case <-r.Context().Done():
			return d.sup.Snapshot()
		case <-d.ctx.Done():
			return d.sup.Snapshot()
		}
	}

	return snap
} // func (d *Daemon) awaitSnapshot(r *http.Request, since uint64) supervisor.Snapshot

func (d *Daemon) handleMode(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		mode = d.sup.Mode()
		txt  []byte
		res  = objects.Response{
			ID:      common.GetUUID(),
			Status:  true,
			Message: mode.Label(),
		}
	)

	txt, _ = mode.MarshalText()
	res.Outcome = string(txt)

	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleMode(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleRefresh(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		snap supervisor.Snapshot
		res  = objects.Response{ID: common.GetUUID()}
	)

	if snap, err = d.sup.Refresh(r.Context()); err != nil {
		res.Message = fmt.Sprintf("Cannot refresh Item list: %s",
			err.Error())
		d.log.Printf("[ERROR] %s\n", res.Message)
		goto SEND_RESPONSE
	}

	res.Status = true
	res.Message = fmt.Sprintf("%d Items, generation %d",
		len(snap.Items),
		snap.Generation)

SEND_RESPONSE:
	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleRefresh(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleItemActivate(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		vars       map[string]string
		idstr, msg string
		id         int64
		act        *supervisor.Activation
		invalid    *lifecycle.InvalidTransition
		res        = objects.Response{ID: common.GetUUID()}
	)

	vars = mux.Vars(r)
	idstr = vars["id"]

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	// The handoff runs on the Daemon's context, a client hanging up must
	// not interrupt it halfway.
	act, err = d.sup.Activate(d.ctx, id)

	switch {
	case act != nil:
		res.Message = act.Message()
		if act.Simulated {
			res.Outcome = OutcomeSimulated
		} else {
			res.Outcome = act.Result.Outcome.String()
		}

		if err != nil {
			res.Message = fmt.Sprintf("%s, but the Item could not be updated: %s",
				res.Message,
				err.Error())
			d.log.Printf("[ERROR] Item %d: %s\n", id, res.Message)
		} else {
			res.Status = act.Simulated || act.Result.OK()
		}
	case errors.As(err, &invalid):
		res.Message = fmt.Sprintf("Item %d cannot be handed off while it is %s",
			id,
			invalid.From)
		d.log.Printf("[INFO] %s\n", res.Message)
	case errors.Is(err, supervisor.ErrUnknownItem):
		res.Message = fmt.Sprintf("Item %d was not found", id)
		d.log.Printf("[INFO] %s\n", res.Message)
	default:
		res.Message = fmt.Sprintf("Cannot activate Item %d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", res.Message)
	}

SEND_RESPONSE:
	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleItemActivate(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object %#v: %s\n",
			res,
			err.Error())
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response)
