// /home/krylon/go/src/github.com/blicero/courier/clients/clientlib/lib.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 20:31:12 krylon>

// Package clientlib provides the basic framework for
// building clients that talk to the backend.
package clientlib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/blicero/courier/backend"
	"github.com/blicero/courier/common"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
	"github.com/pquerna/ffjson/ffjson"
)

const (
	defaultTimeout = time.Second * 10
	// Activating an Item may involve downloading all of its Assets.
	activateTimeout = time.Minute * 5
)

// ErrRequestFailed is wrapped by the errors of requests the backend
// processed but could not carry out.
var ErrRequestFailed = errors.New("request failed")

// Client is the basic implementation of a Courier client,
// it implements the fundamental communication with the Server.
type Client struct {
	Server *url.URL
	Client http.Client
	log    *log.Logger
}

// NewClient creates a new Client.
func NewClient(srv string) (*Client, error) {
	var (
		err error
		c   = &Client{
			Client: http.Client{
				Timeout: defaultTimeout,
			},
		}
	)

	if c.log, err = common.GetLogger(logdomain.Client); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot create Logger: %s\n",
			err.Error())
		return nil, err
	} else if c.Server, err = url.Parse("http://" + srv); err != nil {
		c.log.Printf("[ERROR] Cannot parse URL %q: %s\n",
			srv,
			err.Error())
		return nil, err
	}

	return c, nil
} // func NewClient(srv string) (*Client, error)

// GetLogger returns the Client's Logger.
func (c *Client) GetLogger() *log.Logger {
	return c.log
} // func (c *Client) GetLogger() *log.Logger

func (c *Client) endpoint(path string) string {
	var u = *c.Server

	if p, q, ok := strings.Cut(path, "?"); ok {
		u.Path, u.RawQuery = p, q
	} else {
		u.Path = path
	}

	return u.String()
} // func (c *Client) endpoint(path string) string

// call sends a request to the backend and decodes the reply into dst.
func (c *Client) call(method, path string, timeout time.Duration, dst any) error {
	var (
		err    error
		msg    string
		addr   = c.endpoint(path)
		rcvBuf bytes.Buffer
		req    *http.Request
		hres   *http.Response
		hc     = c.Client
	)

	if timeout > hc.Timeout {
		hc.Timeout = timeout
	}

	if req, err = http.NewRequest(method, addr, nil); err != nil {
		c.log.Printf("[ERROR] Cannot create request for %s: %s\n",
			addr,
			err.Error())
		return err
	} else if hres, err = hc.Do(req); err != nil {
		c.log.Printf("[ERROR] Failed to %s %s: %s\n",
			method,
			addr,
			err.Error())
		return err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		msg = fmt.Sprintf("Unexpected status from %s: %s",
			addr,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Response body from %s: %s\n",
			addr,
			err.Error())
		return err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), dst); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Response from %s: %s\n",
			addr,
			err.Error())
		return err
	}

	return nil
} // func (c *Client) call(method, path string, timeout time.Duration, dst any) error

// respond turns an unsuccessful Response into an error.
func (c *Client) respond(path string, res *objects.Response) (*objects.Response, error) {
	if !res.Status {
		var err = fmt.Errorf("%w: %s", ErrRequestFailed, res.Message)
		c.log.Printf("[ERROR] Request to %s failed: %s\n",
			path,
			res.Message)
		return res, err
	}

	c.log.Printf("[DEBUG] Request to %s was successful: %s\n",
		path,
		res.Message)
	return res, nil
} // func (c *Client) respond(path string, res *objects.Response) (*objects.Response, error)

// Items fetches the current Item list.
func (c *Client) Items() (*backend.Listing, error) {
	var l backend.Listing

	if err := c.call(http.MethodGet, backend.PathItems, 0, &l); err != nil {
		return nil, err
	}

	return &l, nil
} // func (c *Client) Items() (*backend.Listing, error)

// Follow waits until the backend publishes an Item list newer than
// generation since and returns it. If nothing changes for a while, the
// current list is returned, so callers should loop.
func (c *Client) Follow(since uint64) (*backend.Listing, error) {
	var (
		l    backend.Listing
		path = fmt.Sprintf("%s?since=%d", backend.PathItems, since)
	)

	if err := c.call(http.MethodGet, path, backend.LongPollTimeout+defaultTimeout, &l); err != nil {
		return nil, err
	}

	return &l, nil
} // func (c *Client) Follow(since uint64) (*backend.Listing, error)

// Mode asks the backend which Mode it is running in.
func (c *Client) Mode() (objects.Mode, error) {
	var (
		err  error
		mode objects.Mode
		res  objects.Response
	)

	if err = c.call(http.MethodGet, backend.PathMode, 0, &res); err != nil {
		return objects.Offline, err
	} else if err = mode.UnmarshalText([]byte(res.Outcome)); err != nil {
		c.log.Printf("[ERROR] Backend sent invalid Mode: %s\n",
			err.Error())
		return objects.Offline, err
	}

	return mode, nil
} // func (c *Client) Mode() (objects.Mode, error)

// Refresh tells the backend to re-read the Item list from the store.
func (c *Client) Refresh() (*objects.Response, error) {
	var res objects.Response

	if err := c.call(http.MethodPost, backend.PathRefresh, 0, &res); err != nil {
		return nil, err
	}

	return c.respond(backend.PathRefresh, &res)
} // func (c *Client) Refresh() (*objects.Response, error)

// Activate asks the backend to activate an Item, i.e. to hand it off,
// or to simulate its notification in demo mode.
func (c *Client) Activate(id int64) (*objects.Response, error) {
	var (
		res  objects.Response
		path = fmt.Sprintf(backend.PathActivate, id)
	)

	if err := c.call(http.MethodPost, path, activateTimeout, &res); err != nil {
		return nil, err
	}

	return c.respond(path, &res)
} // func (c *Client) Activate(id int64) (*objects.Response, error)
