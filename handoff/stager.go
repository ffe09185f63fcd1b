// /home/krylon/go/src/github.com/blicero/courier/handoff/stager.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 15:21:44 krylon>

package handoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blicero/courier/objects"
	"github.com/spf13/afero"
)

const maxAssetSize = 64 << 20

// ErrAssetTooLarge is returned for an Asset that exceeds the size limit.
var ErrAssetTooLarge = errors.New("asset is too large")

// Stager fetches an Item's Assets and places them where the user (or the
// external application) can pick them up.
type Stager interface {
	Stage(ctx context.Context, item *objects.Item) ([]string, error)
}

// FileStager downloads Assets into a per-Item folder below Dir. File
// names start with the Asset's position, so a file manager lists them in
// the order they are meant to be posted. Assets larger than MaxSize bytes
// (64 MiB if MaxSize is 0) are rejected.
type FileStager struct {
	Fs      afero.Fs
	Dir     string
	Client  *http.Client
	MaxSize int64
}

// NewFileStager creates a FileStager writing to dir on the OS filesystem.
func NewFileStager(dir string) *FileStager {
	return &FileStager{
		Fs:     afero.NewOsFs(),
		Dir:    dir,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
} // func NewFileStager(dir string) *FileStager

// Folder returns the path of the folder the Item's Assets are staged in.
func (s *FileStager) Folder(item *objects.Item) string {
	return filepath.Join(s.Dir, fmt.Sprintf("item-%d", item.ID))
} // func (s *FileStager) Folder(item *objects.Item) string

// Stage downloads all of the Item's Assets in order. It does not stop at
// the first failure, but returns the paths of all Assets that were staged
// along with the first error encountered.
func (s *FileStager) Stage(ctx context.Context, item *objects.Item) ([]string, error) {
	var (
		err    error
		first  error
		dir    = s.Folder(item)
		assets = make([]objects.Asset, len(item.Assets))
		paths  = make([]string, 0, len(item.Assets))
	)

	copy(assets, item.Assets)
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].OrderIndex < assets[j].OrderIndex
	})

	if err = s.Fs.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	for _, a := range assets {
		var dst = filepath.Join(dir, assetFileName(&a))

		if err = s.fetch(ctx, a.SourceURI, dst); err != nil {
			if first == nil {
				first = fmt.Errorf("asset #%d: %w", a.OrderIndex, err)
			}
			continue
		}

		paths = append(paths, dst)
	}

	return paths, first
} // func (s *FileStager) Stage(ctx context.Context, item *objects.Item) ([]string, error)

func (s *FileStager) fetch(ctx context.Context, src, dst string) error {
	var (
		err   error
		n     int64
		req   *http.Request
		res   *http.Response
		fh    afero.File
		tmp   = dst + ".part"
		clnt  = s.Client
		limit = s.MaxSize
	)

	if clnt == nil {
		clnt = http.DefaultClient
	}

	if limit <= 0 {
		limit = maxAssetSize
	}

	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, src, nil); err != nil {
		return err
	} else if res, err = clnt.Do(req); err != nil {
		return err
	}

	defer res.Body.Close() // nolint: errcheck

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", src, res.Status)
	} else if res.ContentLength > limit {
		return fmt.Errorf("GET %s: %w (%d bytes, limit is %d)",
			src,
			ErrAssetTooLarge,
			res.ContentLength,
			limit)
	} else if fh, err = s.Fs.Create(tmp); err != nil {
		return err
	}

	// One byte more than allowed tells a body at the limit from a longer one.
	if n, err = io.Copy(fh, io.LimitReader(res.Body, limit+1)); err != nil {
		fh.Close()       // nolint: errcheck
		s.Fs.Remove(tmp) // nolint: errcheck
		return err
	} else if n > limit {
		fh.Close()       // nolint: errcheck
		s.Fs.Remove(tmp) // nolint: errcheck
		return fmt.Errorf("GET %s: %w (more than %d bytes)",
			src,
			ErrAssetTooLarge,
			limit)
	} else if err = fh.Close(); err != nil {
		s.Fs.Remove(tmp) // nolint: errcheck
		return err
	}

	return s.Fs.Rename(tmp, dst)
} // func (s *FileStager) fetch(ctx context.Context, src, dst string) error

func assetFileName(a *objects.Asset) string {
	var ext = ".jpg"

	if u, err := url.Parse(a.SourceURI); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}

	return fmt.Sprintf("%02d%s", a.OrderIndex+1, ext)
} // func assetFileName(a *objects.Asset) string
