// /home/krylon/go/src/github.com/blicero/courier/backend/dnssd.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-22 16:02:44 krylon>

package backend

import (
	"fmt"
	"net"
	"os"

	"github.com/blicero/courier/common"
	"github.com/grandcat/zeroconf"
)

// Parameters of the DNS-SD announcement. Clients browse for SrvService in
// SrvDomain and pick the instances whose name starts with common.AppName.
const (
	SrvService = "_http._tcp"
	SrvDomain  = "local."
)

func (d *Daemon) initDNSSd() error {
	var (
		err      error
		hostname string
		srv      *zeroconf.Server
		addr, ok = d.listener.Addr().(*net.TCPAddr)
	)

	if !ok {
		return fmt.Errorf("Cannot announce non-TCP address %s", d.listener.Addr())
	} else if addr.IP.IsLoopback() {
		d.log.Printf("[INFO] Not announcing service, listening on loopback address %s\n",
			addr)
		return nil
	} else if hostname, err = os.Hostname(); err != nil {
		d.log.Printf("[ERROR] Cannot query hostname: %s\n",
			err.Error())
		return err
	}

	var (
		txt          = []string{"txtv=0", "version=" + common.Version}
		instanceName = fmt.Sprintf("%s@%s",
			common.AppName,
			hostname)
	)

	if srv, err = zeroconf.Register(instanceName, SrvService, SrvDomain, addr.Port, txt, nil); err != nil {
		d.log.Printf("[ERROR] Cannot register service with DNS-SD: %s\n",
			err.Error())
		return err
	}

	d.log.Printf("[INFO] Announced %s on port %d\n",
		instanceName,
		addr.Port)

	d.dnssd = srv
	return nil
} // func (d *Daemon) initDNSSd() error
