// /home/krylon/go/src/github.com/blicero/courier/handoff/orchestrator.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 16:12:09 krylon>

package handoff

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
	"github.com/blicero/krylib"
)

// Orchestrator performs handoffs. It is safe for concurrent use, though
// handing off the same Item twice at once is not useful.
type Orchestrator struct {
	log      *log.Logger
	gw       gateway.Gateway
	launcher Launcher
	clip     Clipboard
	stager   Stager
	lock     sync.RWMutex
	chain    Chain
	refresh  func(context.Context) error
}

// New creates an Orchestrator. The Clipboard and Stager may be nil, in
// which case the respective preparation step is skipped.
func New(gw gateway.Gateway, l Launcher, clip Clipboard, stager Stager, chain Chain) (*Orchestrator, error) {
	var (
		err error
		o   = &Orchestrator{
			gw:       gw,
			launcher: l,
			clip:     clip,
			stager:   stager,
			chain:    chain.Clone(),
		}
	)

	if o.log, err = common.GetLogger(logdomain.Handoff); err != nil {
		return nil, err
	} else if err = chain.Validate(); err != nil {
		o.log.Printf("[ERROR] Invalid handoff chain: %s\n", err.Error())
		return nil, err
	}

	return o, nil
} // func New(...) (*Orchestrator, error)

// SetChain replaces the Chain used by subsequent handoffs.
func (o *Orchestrator) SetChain(c Chain) error {
	if err := c.Validate(); err != nil {
		o.log.Printf("[ERROR] Refusing invalid handoff chain: %s\n", err.Error())
		return err
	}

	o.lock.Lock()
	o.chain = c.Clone()
	o.lock.Unlock()

	if cl, ok := o.launcher.(*CachedLauncher); ok {
		cl.Purge()
	}

	o.log.Printf("[INFO] Handoff chain updated: %d deep links, web %q, store platform %s\n",
		len(c.DeepLinks),
		c.Web.URL,
		c.StorePlatform())
	return nil
} // func (o *Orchestrator) SetChain(c Chain) error

// Chain returns a copy of the current Chain.
func (o *Orchestrator) Chain() Chain {
	o.lock.RLock()
	defer o.lock.RUnlock()
	return o.chain.Clone()
} // func (o *Orchestrator) Chain() Chain

// OnRefresh sets the function that is called to re-read the Item list
// after a handoff has changed an Item's Status.
func (o *Orchestrator) OnRefresh(fn func(context.Context) error) {
	o.lock.Lock()
	o.refresh = fn
	o.lock.Unlock()
} // func (o *Orchestrator) OnRefresh(fn func(context.Context) error)

// Handoff passes the Item on to the external application.
//
// If the Item may not move to downloaded, Handoff returns the
// lifecycle.InvalidTransition without doing anything else. Otherwise the
// Result is always returned. If a destination was opened, the Item is
// marked as downloaded; should that fail, the Result is returned along
// with the gateway's error.
func (o *Orchestrator) Handoff(ctx context.Context, item *objects.Item) (*Result, error) {
	krylib.Trace()
	defer o.log.Printf("[TRACE] EXIT %s\n",
		krylib.TraceInfo())

	var (
		err      error
		prepared bool
		next     status.Status
		chain    = o.Chain()
		res      = &Result{
			RunID:   common.GetUUID(),
			ItemID:  item.ID,
			Outcome: Failed,
			Started: time.Now(),
		}
	)

	if next, err = lifecycle.NextOnHandoff(item); err != nil {
		o.log.Printf("[ERROR] Cannot hand off Item %d: %s\n",
			item.ID,
			err.Error())
		return nil, err
	}

	defer func() {
		res.Duration = time.Since(res.Started)
		handoffDuration.Observe(res.Duration.Seconds())
		handoffTotal.WithLabelValues(res.Outcome.String(), res.Channel.String()).Inc()
	}()

	o.log.Printf("[DEBUG] Handoff %s of %s\n",
		res.RunID,
		item)

	prepared = o.prepare(ctx, item, res)

	for _, s := range chain.targets() {
		if ctx.Err() != nil {
			res.fail(o.log, s.channel.String(), s.target.URL, ctx.Err())
			break
		} else if o.attempt(ctx, s, res) {
			break
		}
	}

	if res.Channel == NoChannel {
		res.Message = chain.Exhausted
		o.log.Printf("[ERROR] Handoff %s of Item %d failed after %d errors\n",
			res.RunID,
			item.ID,
			len(res.Errors))
		return res, nil
	} else if prepared {
		res.Outcome = Succeeded
	} else {
		res.Outcome = Degraded
	}

	o.log.Printf("[INFO] Handoff %s of Item %d: %s via %s (%s)\n",
		res.RunID,
		item.ID,
		res.Outcome,
		res.Channel,
		res.Target)

	if err = o.gw.SetStatus(ctx, item.ID, next); err != nil {
		o.log.Printf("[ERROR] Cannot mark Item %d as downloaded: %s\n",
			item.ID,
			err.Error())
	}

	o.runRefresh(ctx)

	return res, err
} // func (o *Orchestrator) Handoff(ctx context.Context, item *objects.Item) (*Result, error)

// prepare copies the caption and stages the assets. It returns false if
// either step failed.
func (o *Orchestrator) prepare(ctx context.Context, item *objects.Item, res *Result) bool {
	var (
		err error
		ok  = true
	)

	if o.clip != nil && item.Caption != "" {
		if err = o.clip.WriteText(ctx, item.Caption); err != nil {
			res.fail(o.log, "clipboard", "", err)
			ok = false
		} else {
			o.log.Printf("[DEBUG] Caption of Item %d copied to clipboard\n", item.ID)
		}
	}

	if o.stager != nil && len(item.Assets) > 0 {
		if res.Staged, err = o.stager.Stage(ctx, item); err != nil {
			res.fail(o.log, "stage", "", err)
			ok = false
		}

		o.log.Printf("[DEBUG] Staged %d of %d assets of Item %d\n",
			len(res.Staged),
			len(item.Assets),
			item.ID)
	}

	return ok
} // func (o *Orchestrator) prepare(ctx context.Context, item *objects.Item, res *Result) bool

// attempt tries to open one destination and returns true on success.
func (o *Orchestrator) attempt(ctx context.Context, s step, res *Result) bool {
	var (
		err  error
		ok   bool
		name = s.channel.String()
	)

	if s.probe {
		if ok, err = o.launcher.CanOpen(ctx, s.target.URL); err != nil {
			res.fail(o.log, name, s.target.URL, err)
			return false
		} else if !ok {
			res.fail(o.log, name, s.target.URL, ErrCannotOpen)
			return false
		}
	}

	if err = o.launcher.Open(ctx, s.target.URL); err != nil {
		res.fail(o.log, name, s.target.URL, err)
		return false
	}

	res.Channel = s.channel
	res.Target = s.target.URL
	res.Message = s.target.Message
	return true
} // func (o *Orchestrator) attempt(ctx context.Context, s step, res *Result) bool

func (o *Orchestrator) runRefresh(ctx context.Context) {
	o.lock.RLock()
	var fn = o.refresh
	o.lock.RUnlock()

	if fn == nil {
		return
	} else if err := fn(ctx); err != nil {
		o.log.Printf("[ERROR] Cannot refresh Item list after handoff: %s\n",
			err.Error())
	}
} // func (o *Orchestrator) runRefresh(ctx context.Context)

func (r *Result) fail(l *log.Logger, step, target string, cause error) {
	var serr = &StepError{Step: step, Target: target, Cause: cause}

	l.Printf("[INFO] %s\n", serr.Error())
	handoffStepErrors.WithLabelValues(step).Inc()
	r.Errors = append(r.Errors, serr)
} // func (r *Result) fail(l *log.Logger, step, target string, cause error)

// Summary returns a one-line description of the Result for the user.
func (r *Result) Summary() string {
	if r.Outcome == Failed {
		return r.Message
	} else if len(r.Staged) > 0 {
		return fmt.Sprintf("%s (%d slides staged)", r.Message, len(r.Staged))
	}

	return r.Message
} // func (r *Result) Summary() string
