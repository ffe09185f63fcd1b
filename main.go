// /home/krylon/go/src/github.com/blicero/courier/main.go
// -*- mode: go; coding: utf-8; -*-
// Created on 23. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-23 11:52:37 krylon>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blicero/courier/backend"
	"github.com/blicero/courier/clients/clientlib"
	"github.com/blicero/courier/common"
	"github.com/blicero/courier/config"
	"github.com/blicero/courier/database"
	"github.com/blicero/courier/objects"
	"github.com/urfave/cli"
)

var (
	appDir, cfgPath, server string
	cfg                     *config.Config
)

func main() {
	var app = cli.NewApp()

	app.Name = common.AppName
	app.Usage = "Reminds you when scheduled posts are due and hands them off"
	app.Version = fmt.Sprintf("%s (built %s)",
		common.Version,
		common.BuildStamp.Format(common.TimestampFormat))
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "appdir, d",
			Value:       common.BaseDir,
			Usage:       "The directory where application-specific files live",
			Destination: &appDir,
		},
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "Path of the configuration file (default: <appdir>/courier.yaml)",
			Destination: &cfgPath,
		},
		cli.StringFlag{
			Name:        "server, s",
			Usage:       "Address of the backend (default: the configured listen address)",
			Destination: &server,
		},
	}
	app.Before = prepare
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "run the backend",
			Action: serve,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listen, l",
					Usage: "Address to listen on",
				},
			},
		},
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Usage:   "display the scheduled Items",
			Action:  list,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "follow, f",
					Usage: "Keep running and display the list again whenever it changes",
				},
			},
		},
		{
			Name:      "activate",
			Aliases:   []string{"a"},
			Usage:     "hand off an Item, or simulate its notification in demo mode",
			ArgsUsage: "<id>",
			Action:    activate,
		},
		{
			Name:   "refresh",
			Usage:  "re-read the Item list from the store",
			Action: refresh,
		},
		{
			Name:   "discover",
			Usage:  "look for backends on the local network",
			Action: discover,
			Flags: []cli.Flag{
				cli.DurationFlag{
					Name:  "timeout, t",
					Value: time.Second * 3,
					Usage: "How long to wait for answers",
				},
			},
		},
		{
			Name:   "add",
			Usage:  "add an Item to the local database",
			Action: add,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "time, t",
					Usage: "When the Item is due, as RFC 3339 timestamp or offset from now (e.g. 90m)",
				},
				cli.StringFlag{
					Name:  "caption",
					Usage: "The caption to copy to the clipboard",
				},
				cli.StringSliceFlag{
					Name:  "slide",
					Usage: "URL of a slide, may be repeated, in order",
				},
			},
		},
		{
			Name:      "setkey",
			Usage:     "store the key for the remote store in the system keyring",
			ArgsUsage: "<key>",
			Action:    setKey,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
} // func main()

func prepare(c *cli.Context) error {
	var err error

	if appDir != common.BaseDir {
		if err = common.SetBaseDir(appDir); err != nil {
			return err
		}
	}

	if cfgPath == "" {
		cfgPath = common.ConfigPath
	}

	if cfg, err = config.Load(cfgPath); err != nil {
		return cli.NewExitError(
			fmt.Sprintf("Cannot load configuration from %s: %s",
				cfgPath,
				err.Error()),
			2)
	}

	common.MinLogLevel = cfg.MinLogLevel()

	if server == "" {
		server = cfg.Listen
	}

	return nil
} // func prepare(c *cli.Context) error

func serve(c *cli.Context) error {
	var (
		err    error
		daemon *backend.Daemon
		sigQ   = make(chan os.Signal, 1)
	)

	if addr := c.String("listen"); addr != "" {
		cfg.Listen = addr
	}

	if daemon, err = backend.Summon(cfg, cfgPath); err != nil {
		return cli.NewExitError(
			fmt.Sprintf("Failed to initialize backend: %s", err.Error()),
			1)
	}

	signal.Notify(sigQ, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	var sig = <-sigQ
	fmt.Printf("Quitting on signal %s\n", sig)

	return daemon.Banish()
} // func serve(c *cli.Context) error

func list(c *cli.Context) error {
	var (
		err     error
		client  *clientlib.Client
		listing *backend.Listing
	)

	if client, err = clientlib.NewClient(server); err != nil {
		return err
	} else if listing, err = client.Items(); err != nil {
		return err
	}

	printListing(listing)

	for c.Bool("follow") {
		var gen = listing.Generation

		if listing, err = client.Follow(gen); err != nil {
			return err
		} else if listing.Generation != gen {
			fmt.Println()
			printListing(listing)
		}
	}

	return nil
} // func list(c *cli.Context) error

func printListing(listing *backend.Listing) {
	fmt.Printf("%s\n%s\n\n", listing.Label, listing.Banner)

	if len(listing.Entries) == 0 {
		fmt.Println("No scheduled posts")
		return
	}

	for _, e := range listing.Entries {
		var busy string

		if e.Busy {
			busy = " (busy)"
		}

		fmt.Printf("%s %4d  %s  %-10s  %d slides  %s%s\n",
			e.Badge.Emoji,
			e.Item.ID,
			e.Item.ScheduledTime.Local().Format(common.TimestampFormatMinute),
			e.Item.Status,
			e.Item.PayloadCount,
			e.Badge.ActionLabel,
			busy)

		if e.Item.Caption != "" {
			fmt.Printf("        %s\n", e.Item.Caption)
		}

		if e.More > 0 {
			fmt.Printf("        %d slides shown, +%d more\n", len(e.Preview), e.More)
		}
	}
} // func printListing(listing *backend.Listing)

func activate(c *cli.Context) error {
	var (
		err    error
		id     int64
		client *clientlib.Client
		res    *objects.Response
	)

	if id, err = strconv.ParseInt(c.Args().First(), 10, 64); err != nil {
		return cli.NewExitError(
			fmt.Sprintf("Invalid Item ID %q", c.Args().First()),
			2)
	} else if client, err = clientlib.NewClient(server); err != nil {
		return err
	} else if res, err = client.Activate(id); err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", res.Outcome, res.Message)
	return nil
} // func activate(c *cli.Context) error

func refresh(c *cli.Context) error {
	var (
		err    error
		client *clientlib.Client
		res    *objects.Response
	)

	if client, err = clientlib.NewClient(server); err != nil {
		return err
	} else if res, err = client.Refresh(); err != nil {
		return err
	}

	fmt.Println(res.Message)
	return nil
} // func refresh(c *cli.Context) error

func discover(c *cli.Context) error {
	var (
		err         error
		found       []string
		ctx, cancel = context.WithTimeout(context.Background(), c.Duration("timeout"))
	)
	defer cancel()

	if found, err = clientlib.Discover(ctx); err != nil {
		return err
	} else if len(found) == 0 {
		fmt.Println("No backends found")
		return nil
	}

	for _, addr := range found {
		fmt.Println(addr)
	}

	return nil
} // func discover(c *cli.Context) error

func add(c *cli.Context) error {
	var (
		err    error
		db     *database.Database
		offset time.Duration
		tstr   = c.String("time")
		slides = c.StringSlice("slide")
		item   = objects.Item{
			Caption:      c.String("caption"),
			PayloadCount: len(slides),
			Assets:       make([]objects.Asset, len(slides)),
		}
	)

	if cfg.Store.Kind != config.StoreSQLite {
		return cli.NewExitError(
			fmt.Sprintf("Items can only be added to a local database, not to a %s store",
				cfg.Store.Kind),
			2)
	}

	if tstr == "" {
		item.ScheduledTime = time.Now()
	} else if offset, err = time.ParseDuration(tstr); err == nil {
		item.ScheduledTime = time.Now().Add(offset)
	} else if item.ScheduledTime, err = time.Parse(time.RFC3339, tstr); err != nil {
		return cli.NewExitError(
			fmt.Sprintf("Cannot parse time %q: %s", tstr, err.Error()),
			2)
	}

	for i, s := range slides {
		item.Assets[i] = objects.Asset{SourceURI: s, OrderIndex: i}
	}

	if db, err = database.Open(cfg.Store.URL); err != nil {
		return err
	}

	defer db.Close() // nolint: errcheck

	if err = db.ItemAdd(&item); err != nil {
		return err
	}

	fmt.Printf("Added %s\n", &item)
	return nil
} // func add(c *cli.Context) error

func setKey(c *cli.Context) error {
	var key = c.Args().First()

	if key == "" {
		return cli.NewExitError("No key given", 2)
	} else if err := cfg.SetStoreKey(key); err != nil {
		return err
	}

	fmt.Printf("Key for %s was saved in the keyring\n", cfg.Store.URL)
	return nil
} // func setKey(c *cli.Context) error
