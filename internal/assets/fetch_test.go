package assets

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFetchExistingPathSkipsNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.hdr")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0644))
	got, err := Fetch(context.Background(), nil, path, "http://127.0.0.1:1/sky.hdr")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestFetchWithoutURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.gltf")
	got, err := Fetch(context.Background(), nil, path, "")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestFetchDownloadsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("#?RADIANCE"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "assets", "sky.hdr")
	for range 2 {
		got, err := Fetch(context.Background(), srv.Client(), path, srv.URL+"/satara_night_4k.hdr")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	}
	assert.Equal(t, int32(1), hits.Load())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#?RADIANCE", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary directory removed")
}

func TestFetchZipBundle(t *testing.T) {
	body := zipBytes(t, map[string]string{
		"scene.gltf": `{"asset":{"version":"2.0"}}`,
		"scene.bin":  "bin",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.gltf")
	got, err := Fetch(context.Background(), srv.Client(), path, srv.URL+"/bundle.zip")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.FileExists(t, filepath.Join(dir, "scene.bin"))
}

func TestFetchNestedZipBundle(t *testing.T) {
	body := zipBytes(t, map[string]string{"pack/scene.gltf": "{}"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	got, err := Fetch(context.Background(), srv.Client(), filepath.Join(dir, "model.gltf"), srv.URL+"/bundle.zip")
	require.NoError(t, err)
	assert.Equal(t, "scene.gltf", filepath.Base(got))
	assert.Equal(t, "pack", filepath.Base(filepath.Dir(got)))
}

func TestLoaderCloseCancels(t *testing.T) {
	l := NewLoader(zerolog.Nop())
	started := make(chan struct{})
	Enqueue(l, "environment", "slow.hdr",
		func(string) (int, error) {
			close(started)
			<-l.Context().Done()
			return 0, l.Context().Err()
		},
		func(int) error { return nil })
	<-started
	l.Close()
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, 0, l.Poll())
}

func TestLoaderCloseReleasesUnpolled(t *testing.T) {
	l := NewLoader(zerolog.Nop())
	var released, finished []string
	EnqueueRelease(l, "environment", "sky.hdr",
		func(path string) (string, error) { return "decoded " + path, nil },
		func(v string) error { finished = append(finished, v); return nil },
		func(v string) { released = append(released, v) })
	EnqueueRelease(l, "environment", "broken.hdr",
		func(string) (string, error) { return "", os.ErrNotExist },
		func(string) error { return nil },
		func(v string) { released = append(released, "failed "+v) })
	l.Wait()
	l.Close()
	assert.Equal(t, []string{"decoded sky.hdr"}, released)
	assert.Empty(t, finished)
	assert.Equal(t, 0, l.Pending())
}
