package main

import (
	"path/filepath"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxdemo/internal/config"
	"fxdemo/internal/pipeline"
)

func TestParseSet(t *testing.T) {
	ev, err := ParseSet("bloom.strength=1.25")
	require.NoError(t, err)
	assert.Equal(t, pipeline.Event{Stage: "bloom", Param: "strength", Value: 1.25}, ev)

	ev, err = ParseSet("vignette.enabled=on")
	require.NoError(t, err)
	assert.Equal(t, 1.0, ev.Value)

	for _, bad := range []string{"bloom", "bloom=1", ".strength=1", "bloom.strength=much"} {
		_, err := ParseSet(bad)
		assert.ErrorIs(t, err, pipeline.ErrInvalidArgument, bad)
	}
}

func TestSetFlagsCollect(t *testing.T) {
	var s setFlags
	require.NoError(t, s.Set("a.b=1"))
	require.NoError(t, s.Set("c.d=2"))
	assert.Equal(t, "a.b=1,c.d=2", s.String())
}

func TestSourcePreviewAndFile(t *testing.T) {
	cfg := config.Default()
	f, err := source(cfg, "", "", 48, 32, 7)
	require.NoError(t, err)
	assert.Equal(t, 48, f.Image.Bounds().Dx())
	assert.Len(t, f.Depth, 48*32)

	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, imgio.Save(path, f.Image, imgio.PNGEncoder()))
	g, err := source(cfg, path, "", 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, f.Image.Pix, g.Image.Pix)
	assert.Nil(t, g.Depth)

	_, err = source(cfg, path, path, 0, 0, 0)
	require.NoError(t, err, "a same-sized depth map is accepted")
}
