package orbit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func dist(a, b [3]float32) float64 {
	dx, dy, dz := float64(a[0]-b[0]), float64(a[1]-b[1]), float64(a[2]-b[2])
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func assertVec(t *testing.T, want, got [3]float32) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestNewKeepsInitialPosition(t *testing.T) {
	c := New([3]float32{0, 0, 35})
	assertVec(t, [3]float32{0, 0, 35}, c.Position())
	assert.InDelta(t, 35, c.Radius(), 1e-5)
	assert.InDelta(t, 0, c.Azimuth(), 1e-6)
	assert.InDelta(t, 0, c.Elevation(), 1e-6)

	c = New([3]float32{3, 4, 12}, WithTarget([3]float32{1, 1, 1}))
	assertVec(t, [3]float32{3, 4, 12}, c.Position())
}

func TestRotateKeepsDistance(t *testing.T) {
	c := New([3]float32{0, 0, 35}, WithSpeeds(0.01, 0.002, 0.1))
	c.Rotate(157.0796, 0) // quarter turn
	assertVec(t, [3]float32{-35, 0, 0}, c.Position())

	c.Rotate(40, -60)
	assert.InDelta(t, 35, dist(c.Position(), c.Target()), 1e-4)
}

func TestElevationIsClamped(t *testing.T) {
	c := New([3]float32{0, 0, 10})
	c.Rotate(0, 1e6)
	assert.InDelta(t, elevationLimit, c.Elevation(), 1e-6)
	c.Rotate(0, -1e7)
	assert.InDelta(t, -elevationLimit, c.Elevation(), 1e-6)
}

func TestZoomIsClamped(t *testing.T) {
	c := New([3]float32{0, 0, 35}, WithDistanceBounds(2, 200))
	c.Zoom(1)
	assert.Less(t, c.Radius(), float32(35))
	c.Zoom(1000)
	assert.InDelta(t, 2, c.Radius(), 1e-6)
	c.Zoom(-1000)
	assert.InDelta(t, 200, c.Radius(), 1e-4)

	c = New([3]float32{0, 0, 500}, WithDistanceBounds(2, 200))
	assert.InDelta(t, 200, c.Radius(), 1e-4)
}

func TestPanMovesTargetAndCameraTogether(t *testing.T) {
	c := New([3]float32{0, 0, 35})
	before := c.Position()
	c.Pan(100, 0)

	tgt := c.Target()
	assert.Less(t, tgt[0], float32(0), "dragging right moves the target left")
	assert.InDelta(t, 0, tgt[1], 1e-6)
	assert.InDelta(t, 0, tgt[2], 1e-6)
	assert.InDelta(t, 35, dist(c.Position(), tgt), 1e-4)
	assert.InDelta(t, float64(before[0]+tgt[0]), float64(c.Position()[0]), 1e-4)
}
