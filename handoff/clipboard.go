// /home/krylon/go/src/github.com/blicero/courier/handoff/clipboard.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 14:55:03 krylon>

package handoff

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Clipboard places text on the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, txt string) error
}

// ExecClipboard writes to the clipboard by piping the text into a helper
// program: pbcopy on macOS, wl-copy under Wayland, xclip or xsel under X11.
type ExecClipboard struct{}

func (ExecClipboard) command(ctx context.Context) (*exec.Cmd, error) {
	type helper struct {
		name string
		args []string
	}

	var candidates []helper

	switch runtime.GOOS {
	case "darwin":
		candidates = []helper{{name: "pbcopy"}}
	case "linux", "freebsd", "openbsd", "netbsd":
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			candidates = append(candidates, helper{name: "wl-copy"})
		}
		candidates = append(candidates,
			helper{name: "xclip", args: []string{"-selection", "clipboard"}},
			helper{name: "xsel", args: []string{"--clipboard", "--input"}})
	default:
		return nil, ErrUnsupported
	}

	for _, h := range candidates {
		if path, err := exec.LookPath(h.name); err == nil {
			return exec.CommandContext(ctx, path, h.args...), nil
		}
	}

	return nil, ErrUnsupported
} // func (c ExecClipboard) command(ctx context.Context) (*exec.Cmd, error)

// WriteText replaces the clipboard's content with txt.
func (c ExecClipboard) WriteText(ctx context.Context, txt string) error {
	var (
		err error
		cmd *exec.Cmd
	)

	if cmd, err = c.command(ctx); err != nil {
		return err
	}

	cmd.Stdin = strings.NewReader(txt)
	return cmd.Run()
} // func (c ExecClipboard) WriteText(ctx context.Context, txt string) error
