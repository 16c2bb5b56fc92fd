package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxdemo/internal/pipeline"
)

const rowH = 20

func setup(t *testing.T) (*pipeline.Pipeline, *Model) {
	t.Helper()
	p, err := pipeline.Configure(pipeline.DefaultSpecs())
	require.NoError(t, err)
	return p, New(10, 10, 200, rowH)
}

func rowAt(i int) float32 { return 10 + float32(i)*rowH + rowH/2 }

func TestCollapsedLayoutHasOneFolderPerStage(t *testing.T) {
	p, m := setup(t)
	rows := m.Layout(p.Stages())
	require.Len(t, rows, p.Len())
	assert.Equal(t, "+ Render", rows[0].Text)
	assert.Equal(t, Rect{X: 10, Y: 30, W: 200, H: rowH}, rows[1].Rect)
	assert.True(t, m.Contains(50, 15))
	assert.False(t, m.Contains(50, 10+float32(p.Len())*rowH+1))
}

func TestFolderPressExpands(t *testing.T) {
	p, m := setup(t)
	m.Layout(p.Stages())
	_, ok := m.Press(20, rowAt(3)) // bloom folder
	assert.False(t, ok, "folders do not emit events")

	rows := m.Layout(p.Stages())
	require.Equal(t, Folder, rows[3].Kind)
	assert.Equal(t, "- Bloom", rows[3].Text)
	assert.Equal(t, Toggle, rows[4].Kind)
	for i, name := range []string{"strength", "radius", "threshold", "smoothing"} {
		assert.Equal(t, Slider, rows[5+i].Kind)
		assert.Equal(t, name, rows[5+i].Param.Name)
	}
	assert.Equal(t, "Intensity  0.60", rows[5].Text)
}

func TestTogglePressEmitsEnabledEvent(t *testing.T) {
	p, m := setup(t)
	m.SetOpen("bloom", true)
	m.Layout(p.Stages())

	ev, ok := m.Press(20, rowAt(4))
	require.True(t, ok)
	assert.Equal(t, pipeline.Event{Stage: "bloom", Param: "enabled", Value: 1}, ev)
	require.NoError(t, p.Apply(ev))

	m.Layout(p.Stages())
	ev, ok = m.Press(20, rowAt(4))
	require.True(t, ok)
	assert.Equal(t, 0.0, ev.Value)
}

func TestRenderToggleIsLocked(t *testing.T) {
	p, m := setup(t)
	m.SetOpen("render", true)
	rows := m.Layout(p.Stages())
	require.Equal(t, Toggle, rows[1].Kind)
	assert.False(t, rows[1].Enabled)
	_, ok := m.Press(20, rowAt(1))
	assert.False(t, ok)
}

func TestSliderDragSnapsAndDeduplicates(t *testing.T) {
	p, m := setup(t)
	m.SetOpen("pixelation", true)
	rows := m.Layout(p.Stages())
	size := rows[3]
	require.Equal(t, "pixelSize", size.Param.Name)
	track := size.Track
	assert.Equal(t, float32(10+90), track.X)

	_, ok := m.Press(size.Rect.X+5, rowAt(3))
	assert.False(t, ok, "label area does not start a drag")

	ev, ok := m.Press(track.X+track.W-0.5, rowAt(3))
	require.True(t, ok)
	assert.Equal(t, pipeline.Event{Stage: "pixelation", Param: "pixelSize", Value: 64}, ev)
	assert.True(t, m.Dragging())
	require.NoError(t, p.Apply(ev))

	_, ok = m.Drag(track.X + track.W + 50)
	assert.False(t, ok, "clamped to the same value")

	ev, ok = m.Drag(track.X - 30)
	require.True(t, ok)
	assert.Equal(t, 1.0, ev.Value)
	require.NoError(t, p.Apply(ev))

	m.Release()
	assert.False(t, m.Dragging())
	_, ok = m.Drag(track.X + 10)
	assert.False(t, ok)
}

func TestSliderValuesAlwaysValidate(t *testing.T) {
	p, m := setup(t)
	m.SetOpen("chromaticAberration", true)
	rows := m.Layout(p.Stages())
	var amount Row
	for _, r := range rows {
		if r.Kind == Slider && r.Param.Name == "amount" {
			amount = r
		}
	}
	require.Equal(t, "Offset  0.0050", amount.Text)
	y := amount.Rect.Y + 1
	for x := amount.Track.X; x < amount.Track.X+amount.Track.W; x += 7 {
		if ev, ok := m.Press(x, y); ok {
			require.NoError(t, p.Apply(ev))
		}
		m.Release()
	}
}
