package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadNamesFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#?RADIANCE"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	saved, err := Download(context.Background(), srv.Client(), srv.URL+"/hdri/satara_night_4k.hdr?dl=1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "satara_night_4k.hdr"), saved)
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "#?RADIANCE", string(data))

	left, err := filepath.Glob(filepath.Join(dir, ".download-*"))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestDownloadNamesFromHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cd":
			w.Header().Set("Content-Disposition", `attachment; filename="Model Pack.zip"`)
		case "/ct":
			w.Header().Set("Content-Type", "application/zip")
		}
		w.Write([]byte("PK"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	saved, err := Download(context.Background(), nil, srv.URL+"/cd", dir)
	require.NoError(t, err)
	assert.Equal(t, "Model_Pack.zip", filepath.Base(saved))

	saved, err = Download(context.Background(), nil, srv.URL+"/ct", dir)
	require.NoError(t, err)
	assert.Equal(t, "ct.zip", filepath.Base(saved))
}

func TestDownloadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	_, err := Download(context.Background(), nil, srv.URL+"/missing.glb", dir)
	assert.ErrorIs(t, err, ErrStatus)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Download(ctx, nil, "http://127.0.0.1:1/x.hdr", t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "download", sanitizeFilename(""))
	assert.Equal(t, "download", sanitizeFilename("..."))
	assert.Equal(t, "a_b.ttf", sanitizeFilename("a b.ttf"))
	long := sanitizeFilename(strings.Repeat("y", 200) + ".hdr")
	assert.Len(t, long, 96)
	assert.Equal(t, ".hdr", filepath.Ext(long))
}

