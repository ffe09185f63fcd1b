// /home/krylon/go/src/github.com/blicero/courier/clients/clientlib/discover.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 20:58:40 krylon>

package clientlib

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/blicero/courier/backend"
	"github.com/blicero/courier/common"
	"github.com/grandcat/zeroconf"
)

// rrStr returns the address at which a backend found via DNS-SD can be
// reached.
func rrStr(rr *zeroconf.ServiceEntry) string {
	var host = strings.TrimSuffix(rr.HostName, ".")

	if len(rr.AddrIPv4) > 0 {
		host = rr.AddrIPv4[0].String()
	} else if len(rr.AddrIPv6) > 0 {
		host = rr.AddrIPv6[0].String()
	}

	return net.JoinHostPort(host, strconv.Itoa(rr.Port))
} // func rrStr(rr *zeroconf.ServiceEntry) string

// isBackend returns true if the instance name belongs to a Courier
// backend. DNS-SD escapes the @ in the name, so both forms are accepted.
func isBackend(instance string) bool {
	return strings.HasPrefix(instance, common.AppName+"@") ||
		strings.HasPrefix(instance, common.AppName+"\\@")
} // func isBackend(instance string) bool

// Discover browses the local network for backends until ctx is done and
// returns their addresses.
func Discover(ctx context.Context) ([]string, error) {
	var (
		err      error
		resolver *zeroconf.Resolver
		entries  = make(chan *zeroconf.ServiceEntry)
		found    = make([]string, 0)
		seen     = make(map[string]bool)
	)

	if resolver, err = zeroconf.NewResolver(nil); err != nil {
		return nil, fmt.Errorf("Cannot create DNS-SD Resolver: %w", err)
	} else if err = resolver.Browse(ctx, backend.SrvService, backend.SrvDomain, entries); err != nil {
		return nil, fmt.Errorf("Failed to browse for %s: %w", backend.SrvService, err)
	}

	for {
		select {
		case <-ctx.Done():
			return found, nil
		case entry, ok := <-entries:
			if !ok {
				return found, nil
			} else if !isBackend(entry.Instance) {
				continue
			}

			var addr = rrStr(entry)
			if !seen[addr] {
				seen[addr] = true
				found = append(found, addr)
			}
		}
	}
} // func Discover(ctx context.Context) ([]string, error)
