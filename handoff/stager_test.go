// /home/krylon/go/src/github.com/blicero/courier/handoff/stager_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-20 17:21:13 krylon>

package handoff

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/blicero/courier/objects"
	"github.com/blicero/courier/objects/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssetServer() *httptest.Server {
	var mux = http.NewServeMux()

	mux.HandleFunc("/slides/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte(r.URL.Path)) // nolint: errcheck
	})

	// No Content-Length: the body is flushed in pieces.
	mux.HandleFunc("/stream/", func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 4; i++ {
			w.Write([]byte("0123456789")) // nolint: errcheck
			w.(http.Flusher).Flush()
		}
	})

	return httptest.NewServer(mux)
}

func TestStageInOrder(t *testing.T) {
	var (
		srv  = newAssetServer()
		fs   = afero.NewMemMapFs()
		st   = &FileStager{Fs: fs, Dir: "/staging", Client: srv.Client()}
		item = objects.Item{
			ID: 42,
			Assets: []objects.Asset{
				{ID: 3, SourceURI: srv.URL + "/slides/c.png", OrderIndex: 2},
				{ID: 1, SourceURI: srv.URL + "/slides/a.png", OrderIndex: 0},
				{ID: 2, SourceURI: srv.URL + "/slides/b.webp", OrderIndex: 1},
			},
		}
	)
	defer srv.Close()

	paths, err := st.Stage(context.Background(), &item)
	require.NoError(t, err)

	var dir = filepath.Join("/staging", "item-42")
	assert.Equal(t, []string{
		filepath.Join(dir, "01.png"),
		filepath.Join(dir, "02.webp"),
		filepath.Join(dir, "03.png"),
	}, paths)

	data, err := afero.ReadFile(fs, paths[1])
	require.NoError(t, err)
	assert.Equal(t, "/slides/b.webp", string(data))

	assert.Equal(t, int64(3), item.Assets[0].ID, "the Item itself is not reordered")

	leftovers, err := afero.Glob(fs, filepath.Join(dir, "*.part"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStagePartialFailure(t *testing.T) {
	var (
		srv  = newAssetServer()
		fs   = afero.NewMemMapFs()
		st   = &FileStager{Fs: fs, Dir: "/staging", Client: srv.Client()}
		item = objects.Item{
			ID: 5,
			Assets: []objects.Asset{
				{ID: 1, SourceURI: srv.URL + "/slides/a.png", OrderIndex: 0},
				{ID: 2, SourceURI: srv.URL + "/missing/b.png", OrderIndex: 1},
				{ID: 3, SourceURI: srv.URL + "/slides/c.png", OrderIndex: 2},
			},
		}
	)
	defer srv.Close()

	paths, err := st.Stage(context.Background(), &item)
	assert.Error(t, err)
	assert.Len(t, paths, 2)

	ok, _ := afero.Exists(fs, filepath.Join("/staging", "item-5", "02.png"))
	assert.False(t, ok)
}

func TestStageTooLarge(t *testing.T) {
	var (
		srv  = newAssetServer()
		fs   = afero.NewMemMapFs()
		st   = &FileStager{Fs: fs, Dir: "/staging", Client: srv.Client(), MaxSize: 16}
		dir  = filepath.Join("/staging", "item-7")
		item = objects.Item{
			ID: 7,
			Assets: []objects.Asset{
				{ID: 1, SourceURI: srv.URL + "/slides/a.png", OrderIndex: 0},
				{ID: 2, SourceURI: srv.URL + "/slides/far-too-long-for-the-limit.png", OrderIndex: 1},
				{ID: 3, SourceURI: srv.URL + "/stream/c.png", OrderIndex: 2},
			},
		}
	)
	defer srv.Close()

	paths, err := st.Stage(context.Background(), &item)
	assert.ErrorIs(t, err, ErrAssetTooLarge)
	assert.Equal(t, []string{filepath.Join(dir, "01.png")}, paths)

	for _, name := range []string{"02.png", "03.png"} {
		ok, _ := afero.Exists(fs, filepath.Join(dir, name))
		assert.False(t, ok, "%s must not be staged", name)
	}

	leftovers, err := afero.Glob(fs, filepath.Join(dir, "*.part"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestHandoffOversizedAssetDegrades(t *testing.T) {
	var (
		srv  = newAssetServer()
		item = notifiedItem()
		st   = &FileStager{Fs: afero.NewMemMapFs(), Dir: "/staging", Client: srv.Client(), MaxSize: 16}
	)
	defer srv.Close()

	item.Assets[0].SourceURI = srv.URL + "/slides/a.png"
	item.Assets[1].SourceURI = srv.URL + "/stream/b.png"

	o, gw := newTestOrchestrator(t, item, newFakeLauncher(), &fakeClipboard{}, st)

	res, err := o.Handoff(context.Background(), &item)
	require.NoError(t, err)
	assert.Equal(t, Degraded, res.Outcome)
	assert.Len(t, res.Staged, 1)

	stored, _ := gw.Get(item.ID)
	assert.Equal(t, status.Downloaded, stored.Status)
}

func TestStageAtLimit(t *testing.T) {
	var (
		srv  = newAssetServer()
		fs   = afero.NewMemMapFs()
		uri  = srv.URL + "/stream/x.png"
		st   = &FileStager{Fs: fs, Dir: "/staging", Client: srv.Client(), MaxSize: 40}
		item = objects.Item{
			ID:     8,
			Assets: []objects.Asset{{ID: 1, SourceURI: uri, OrderIndex: 0}},
		}
	)
	defer srv.Close()

	paths, err := st.Stage(context.Background(), &item)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	data, err := afero.ReadFile(fs, paths[0])
	require.NoError(t, err)
	assert.Len(t, data, 40)
}

func TestAssetFileName(t *testing.T) {
	assert.Equal(t, "01.jpg", assetFileName(&objects.Asset{SourceURI: "https://x.example/blob", OrderIndex: 0}))
	assert.Equal(t, "10.png", assetFileName(&objects.Asset{SourceURI: "https://x.example/a.PNG?token=1", OrderIndex: 9}))
}
