// /home/krylon/go/src/github.com/blicero/courier/gateway/postgrest/postgrest.go
// -*- mode: go; coding: utf-8; -*-
// Created on 21. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-21 18:02:47 krylon>

// Package postgrest implements the Gateway on top of a PostgREST endpoint,
// such as the one Supabase provides for its projects.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blicero/courier/common"
	"github.com/blicero/courier/gateway"
	"github.com/blicero/courier/lifecycle"
	"github.com/blicero/courier/logdomain"
	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
	"github.com/pquerna/ffjson/ffjson"
)

const (
	orderAsc    = "scheduled_time.asc"
	maxErrorLen = 512
)

// Layouts PostgREST may use to render a timestamp, depending on the
// column type.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999",
}

// StatusError is returned when the server answers with a status other
// than 2xx.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
} // func (e *StatusError) Error() string

// row is an Item as PostgREST renders it.
type row struct {
	ID            int64           `json:"id"`
	Status        string          `json:"status"`
	ScheduledTime string          `json:"scheduled_time"`
	SlideCount    int             `json:"slide_count"`
	Caption       *string         `json:"caption"`
	Slides        []objects.Asset `json:"-"`
}

// Client talks to a PostgREST server.
type Client struct {
	log        *log.Logger
	base       *url.URL
	key        string
	table      string
	assetTable string
	hc         http.Client
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a Client. baseURL is the root of the REST API, for Supabase
// that is https://<project>.supabase.co/rest/v1. The key is sent both as
// apikey and as bearer token.
func New(baseURL, key, table, assetTable string, timeout time.Duration) (*Client, error) {
	var (
		err error
		c   = &Client{
			key:        key,
			table:      table,
			assetTable: assetTable,
			hc:         http.Client{Timeout: timeout},
		}
	)

	if c.log, err = common.GetLogger(logdomain.Gateway); err != nil {
		return nil, err
	} else if c.base, err = url.Parse(baseURL); err != nil {
		c.log.Printf("[ERROR] Cannot parse URL %q: %s\n",
			baseURL,
			err.Error())
		return nil, err
	} else if c.base.Scheme != "http" && c.base.Scheme != "https" {
		err = fmt.Errorf("Unsupported URL scheme %q in %s",
			c.base.Scheme,
			baseURL)
		c.log.Printf("[ERROR] %s\n", err.Error())
		return nil, err
	} else if table == "" || assetTable == "" {
		return nil, errors.New("table names must not be empty")
	}

	c.base.Path = strings.TrimSuffix(c.base.Path, "/")

	return c, nil
} // func New(baseURL, key, table, assetTable string, timeout time.Duration) (*Client, error)

func (c *Client) endpoint(q url.Values) string {
	var u = *c.base

	u.Path += "/" + c.table
	u.RawQuery = q.Encode()
	return u.String()
} // func (c *Client) endpoint(q url.Values) string

func (c *Client) request(ctx context.Context, method, addr string, body []byte) (*http.Request, error) {
	var (
		err error
		req *http.Request
		rdr io.Reader
	)

	if body != nil {
		rdr = bytes.NewReader(body)
	}

	if req, err = http.NewRequestWithContext(ctx, method, addr, rdr); err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if c.key != "" {
		req.Header.Set("apikey", c.key)
		req.Header.Set("Authorization", "Bearer "+c.key)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
} // func (c *Client) request(...) (*http.Request, error)

// do performs the request and returns the response body. Any status other
// than 2xx is returned as a *StatusError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	var (
		err  error
		res  *http.Response
		body []byte
	)

	if res, err = c.hc.Do(req); err != nil {
		return nil, err
	}

	defer res.Body.Close() // nolint: errcheck

	if body, err = io.ReadAll(res.Body); err != nil {
		return nil, err
	} else if res.StatusCode < 200 || res.StatusCode > 299 {
		var serr = &StatusError{Code: res.StatusCode}
		if len(body) > maxErrorLen {
			body = body[:maxErrorLen]
		}
		serr.Body = strings.TrimSpace(string(body))
		return nil, serr
	}

	return body, nil
} // func (c *Client) do(req *http.Request) ([]byte, error)

// Probe asks the server for the row count of the Item table.
func (c *Client) Probe(ctx context.Context) error {
	var (
		err error
		req *http.Request
		q   = url.Values{"select": []string{"id"}}
	)

	if req, err = c.request(ctx, http.MethodHead, c.endpoint(q), nil); err != nil {
		return &gateway.ConnectivityError{Reason: c.base.Host, Cause: err}
	}

	req.Header.Set("Prefer", "count=exact")

	if _, err = c.do(req); err != nil {
		c.log.Printf("[ERROR] Probe of %s failed: %s\n",
			c.base.Host,
			err.Error())
		return &gateway.ConnectivityError{Reason: c.base.Host, Cause: err}
	}

	return nil
} // func (c *Client) Probe(ctx context.Context) error

// ListAll returns all Items with their Assets, earliest first.
func (c *Client) ListAll(ctx context.Context) ([]objects.Item, error) {
	var q = url.Values{
		"select": []string{c.selection()},
		"order":  []string{orderAsc},
	}

	return c.list(ctx, "ListAll", q)
} // func (c *Client) ListAll(ctx context.Context) ([]objects.Item, error)

// ListDue returns the scheduled Items whose time has come.
func (c *Client) ListDue(ctx context.Context, now time.Time) ([]objects.Item, error) {
	var q = url.Values{
		"select":         []string{c.selection()},
		"order":          []string{orderAsc},
		"status":         []string{"eq." + string(status.Scheduled)},
		"scheduled_time": []string{"lte." + now.UTC().Format(time.RFC3339Nano)},
	}

	return c.list(ctx, "ListDue", q)
} // func (c *Client) ListDue(ctx context.Context, now time.Time) ([]objects.Item, error)

func (c *Client) selection() string {
	return fmt.Sprintf("*,%s(*)", c.assetTable)
} // func (c *Client) selection() string

func (c *Client) list(ctx context.Context, op string, q url.Values) ([]objects.Item, error) {
	var (
		err   error
		req   *http.Request
		body  []byte
		items []objects.Item
	)

	if req, err = c.request(ctx, http.MethodGet, c.endpoint(q), nil); err != nil {
		return nil, &gateway.FetchError{Op: op, Cause: err}
	} else if body, err = c.do(req); err != nil {
		c.log.Printf("[ERROR] %s failed: %s\n", op, err.Error())
		return nil, &gateway.FetchError{Op: op, Cause: err}
	} else if items, err = c.decode(body); err != nil {
		c.log.Printf("[ERROR] Cannot decode response to %s: %s\n",
			op,
			err.Error())
		return nil, &gateway.FetchError{Op: op, Cause: err}
	}

	objects.Normalize(items)
	return items, nil
} // func (c *Client) list(ctx context.Context, op string, q url.Values) ([]objects.Item, error)

// decode parses an array of rows. The nested Assets live under a key named
// after the asset table, so the rows are decoded in two passes.
func (c *Client) decode(body []byte) ([]objects.Item, error) {
	var (
		err    error
		rows   []row
		nested []map[string]json.RawMessage
		items  []objects.Item
	)

	if err = ffjson.Unmarshal(body, &rows); err != nil {
		return nil, err
	} else if err = ffjson.Unmarshal(body, &nested); err != nil {
		return nil, err
	}

	items = make([]objects.Item, len(rows))

	for idx := range rows {
		var (
			r    = &rows[idx]
			item = &items[idx]
		)

		if raw, ok := nested[idx][c.assetTable]; ok && len(raw) > 0 && string(raw) != "null" {
			if err = ffjson.Unmarshal(raw, &r.Slides); err != nil {
				return nil, fmt.Errorf("Assets of Item %d: %w", r.ID, err)
			}
		}

		item.ID = r.ID
		item.PayloadCount = r.SlideCount
		item.Assets = r.Slides
		if r.Caption != nil {
			item.Caption = *r.Caption
		}

		if item.Status, err = status.Parse(r.Status); err != nil {
			return nil, fmt.Errorf("Item %d: %w", r.ID, err)
		} else if item.ScheduledTime, err = parseTime(r.ScheduledTime); err != nil {
			return nil, fmt.Errorf("Item %d: %w", r.ID, err)
		}
	}

	return items, nil
} // func (c *Client) decode(body []byte) ([]objects.Item, error)

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("Cannot parse timestamp %q", s)
} // func parseTime(s string) (time.Time, error)

// SetStatus patches the status column of one row. The row is only matched
// if its current status is a legal predecessor of s; the server is asked
// to return the changed rows, so an empty array means nothing matched.
func (c *Client) SetStatus(ctx context.Context, id int64, s status.Status) error {
	var (
		err     error
		req     *http.Request
		payload []byte
		body    []byte
		changed []row
		pred    = lifecycle.Predecessors(s)
		preds   = make([]string, len(pred))
	)

	if len(pred) == 0 {
		return &gateway.UpdateError{
			ID:     id,
			Status: s,
			Cause:  fmt.Errorf("no status may precede %q", s),
		}
	}

	for i, p := range pred {
		preds[i] = string(p)
	}

	var q = url.Values{
		"id":     []string{"eq." + strconv.FormatInt(id, 10)},
		"status": []string{"in.(" + strings.Join(preds, ",") + ")"},
		"select": []string{"id,status"},
	}

	if payload, err = ffjson.Marshal(map[string]string{"status": string(s)}); err != nil {
		return &gateway.UpdateError{ID: id, Status: s, Cause: err}
	}

	defer ffjson.Pool(payload)

	if req, err = c.request(ctx, http.MethodPatch, c.endpoint(q), payload); err != nil {
		return &gateway.UpdateError{ID: id, Status: s, Cause: err}
	}

	req.Header.Set("Prefer", "return=representation")

	if body, err = c.do(req); err != nil {
		c.log.Printf("[ERROR] Cannot set status of Item %d to %s: %s\n",
			id,
			s,
			err.Error())
		return &gateway.UpdateError{ID: id, Status: s, Cause: err}
	} else if err = ffjson.Unmarshal(body, &changed); err != nil {
		return &gateway.UpdateError{ID: id, Status: s, Cause: err}
	} else if len(changed) == 0 {
		c.log.Printf("[INFO] Status update of Item %d to %s matched no row\n",
			id,
			s)
		return &gateway.UpdateError{ID: id, Status: s, Cause: gateway.ErrConflict}
	}

	return nil
} // func (c *Client) SetStatus(ctx context.Context, id int64, s status.Status) error
