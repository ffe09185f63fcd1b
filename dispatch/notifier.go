// /home/krylon/go/src/github.com/blicero/courier/dispatch/notifier.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 18:52:27 krylon>

package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
	"github.com/godbus/dbus/v5"
)

const (
	notifyObj       = "org.freedesktop.Notifications"
	notifyIntf      = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyMethod    = notifyIntf + ".Notify"
	closeMethod     = notifyIntf + ".CloseNotification"
	sigActInvoked   = notifyIntf + ".ActionInvoked"
	sigClosed       = notifyIntf + ".NotificationClosed"
	actionAccept    = "accept"
	actionDecline   = "decline"
	urgencyCritical = byte(2)
)

// DBusNotifier presents alerts through the desktop's notification daemon.
// The user's answer is taken from the ActionInvoked signal; an alert that
// is closed without choosing an action counts as deferred.
type DBusNotifier struct {
	log     *log.Logger
	conn    *dbus.Conn
	sigs    chan *dbus.Signal
	lock    sync.Mutex
	pending map[uint32]chan Decision
	done    chan struct{}
}

// NewDBusNotifier connects to the session bus.
func NewDBusNotifier() (*DBusNotifier, error) {
	var (
		err error
		n   = &DBusNotifier{
			sigs:    make(chan *dbus.Signal, 16),
			pending: make(map[uint32]chan Decision),
			done:    make(chan struct{}),
		}
	)

	if n.log, err = common.GetLogger(logdomain.Dispatch); err != nil {
		return nil, err
	} else if n.conn, err = dbus.ConnectSessionBus(); err != nil {
		n.log.Printf("[ERROR] Failed to connect to DBus Session bus: %s\n",
			err.Error())
		return nil, err
	} else if err = n.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notifyPath),
		dbus.WithMatchInterface(notifyIntf),
	); err != nil {
		n.log.Printf("[ERROR] Cannot subscribe to notification signals: %s\n",
			err.Error())
		n.conn.Close() // nolint: errcheck
		return nil, err
	}

	n.conn.Signal(n.sigs)
	go n.signalLoop()

	return n, nil
} // func NewDBusNotifier() (*DBusNotifier, error)

// Present sends the Notification to the notification daemon.
func (n *DBusNotifier) Present(ctx context.Context, note *objects.Notification) (<-chan Decision, error) {
	var (
		err        error
		id         uint32
		obj        = n.conn.Object(notifyObj, notifyPath)
		head, body = note.Payload()
		answer     = make(chan Decision, 1)
	)

	// The lock is held across the call, so a signal for the new ID
	// cannot be processed before the ID has been registered.
	n.lock.Lock()
	defer n.lock.Unlock()

	var call = obj.CallWithContext(
		ctx,
		notifyMethod,
		0,
		common.AppName,
		uint32(0),
		"",
		head,
		body,
		[]string{actionAccept, note.Accept, actionDecline, note.Decline},
		map[string]dbus.Variant{
			"urgency":  dbus.MakeVariant(urgencyCritical),
			"resident": dbus.MakeVariant(true),
		},
		int32(0),
	)

	if call.Err != nil {
		n.log.Printf("[ERROR] Cannot send Notification %q: %s\n",
			head,
			call.Err.Error())
		return nil, call.Err
	} else if err = call.Store(&id); err != nil {
		n.log.Printf("[ERROR] Cannot read ID of Notification %q: %s\n",
			head,
			err.Error())
		return nil, err
	}

	n.pending[id] = answer
	return answer, nil
} // func (n *DBusNotifier) Present(ctx context.Context, note *objects.Notification) (<-chan Decision, error)

func (n *DBusNotifier) signalLoop() {
	defer n.log.Println("[TRACE] Quitting signalLoop")

	for {
		select {
		case <-n.done:
			return
		case sig, ok := <-n.sigs:
			if !ok {
				return
			}

			n.handleSignal(sig)
		}
	}
} // func (n *DBusNotifier) signalLoop()

func (n *DBusNotifier) handleSignal(sig *dbus.Signal) {
	var (
		id       uint32
		ok       bool
		decision = Defer
	)

	if len(sig.Body) < 2 {
		return
	} else if id, ok = sig.Body[0].(uint32); !ok {
		n.log.Printf("[ERROR] Unexpected signal payload: %#v\n", sig.Body)
		return
	}

	switch sig.Name {
	case sigActInvoked:
		if key, _ := sig.Body[1].(string); key == actionAccept {
			decision = ActNow
		}
	case sigClosed:
	default:
		return
	}

	n.lock.Lock()
	var answer, found = n.pending[id]
	delete(n.pending, id)
	n.lock.Unlock()

	if !found {
		return
	}

	answer <- decision
	close(answer)

	if sig.Name == sigActInvoked {
		n.conn.Object(notifyObj, notifyPath).Call(closeMethod, 0, id) // nolint: errcheck
	}
} // func (n *DBusNotifier) handleSignal(sig *dbus.Signal)

// Close disconnects from the session bus. Pending alerts are resolved as
// deferred.
func (n *DBusNotifier) Close() error {
	close(n.done)
	n.conn.RemoveSignal(n.sigs)

	n.lock.Lock()
	for id, answer := range n.pending {
		answer <- Defer
		close(answer)
		delete(n.pending, id)
	}
	n.lock.Unlock()

	return n.conn.Close()
} // func (n *DBusNotifier) Close() error

// LogNotifier writes alerts to the log and answers them itself with a
// fixed Decision. It is meant for hosts without a desktop session.
type LogNotifier struct {
	log      *log.Logger
	Decision Decision
	lock     sync.Mutex
	shown    []objects.Notification
}

// NewLogNotifier creates a LogNotifier that answers every alert with d.
func NewLogNotifier(d Decision) (*LogNotifier, error) {
	var (
		err error
		n   = &LogNotifier{Decision: d}
	)

	if n.log, err = common.GetLogger(logdomain.Dispatch); err != nil {
		return nil, err
	}

	return n, nil
} // func NewLogNotifier(d Decision) (*LogNotifier, error)

// Present logs the Notification.
func (n *LogNotifier) Present(ctx context.Context, note *objects.Notification) (<-chan Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		answer     = make(chan Decision, 1)
		head, body = note.Payload()
	)

	n.log.Printf("[INFO] ALERT %s: %s [%s] [%s]\n",
		head,
		body,
		note.Decline,
		note.Accept)

	n.lock.Lock()
	n.shown = append(n.shown, *note)
	answer <- n.Decision
	n.lock.Unlock()

	close(answer)
	return answer, nil
} // func (n *LogNotifier) Present(ctx context.Context, note *objects.Notification) (<-chan Decision, error)

// Shown returns all Notifications presented so far.
func (n *LogNotifier) Shown() []objects.Notification {
	n.lock.Lock()
	defer n.lock.Unlock()

	var list = make([]objects.Notification, len(n.shown))
	copy(list, n.shown)
	return list
} // func (n *LogNotifier) Shown() []objects.Notification

func (n *LogNotifier) String() string {
	return fmt.Sprintf("LogNotifier{ Decision: %s }", n.Decision)
} // func (n *LogNotifier) String() string
