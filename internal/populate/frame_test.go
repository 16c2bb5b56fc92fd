package populate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrameAssembly(t *testing.T) {
	fa, err := BuildFrameAssembly(20, 0.5)
	require.NoError(t, err)

	bars := fa.Bars()
	require.Len(t, bars, 12)
	for _, b := range bars {
		assert.Equal(t, [3]float32{0.5, 20.5, 0.5}, b.Size)
	}

	for _, g := range fa.Groups {
		assert.Equal(t, fa.Groups[0].Bars, g.Bars, "groups share geometry")
	}

	// Each group is rotated by exactly 90 degrees about a distinct principal axis.
	assert.Equal(t, [3]float32{0, 0, 0}, fa.Groups[0].Rotation)
	axes := map[int]bool{}
	for _, g := range fa.Groups[1:] {
		nonZero := 0
		for axis, a := range g.Rotation {
			if a != 0 {
				nonZero++
				assert.InDelta(t, math.Pi/2, a, 1e-6)
				axes[axis] = true
			}
		}
		assert.Equal(t, 1, nonZero)
	}
	assert.Len(t, axes, 2)
}

func TestFrameBarsCoverThreePlanes(t *testing.T) {
	fa, err := BuildFrameAssembly(20, 0.5)
	require.NoError(t, err)
	bars := fa.Bars()

	// Group 0 bars are offset in X/Z, group 1 (about X) in X/Y, group 2 (about Z) in Y/Z.
	zeroAxis := []int{1, 2, 0}
	for gi := 0; gi < 3; gi++ {
		for _, b := range bars[gi*4 : gi*4+4] {
			for axis := 0; axis < 3; axis++ {
				v := float64(b.Position[axis])
				if axis == zeroAxis[gi] {
					assert.InDelta(t, 0, v, 1e-5, "group %d axis %d", gi, axis)
				} else {
					assert.InDelta(t, 10, math.Abs(v), 1e-5, "group %d axis %d", gi, axis)
				}
			}
		}
	}
}

func TestBuildFrameAssemblyRejectsDegenerateSizes(t *testing.T) {
	_, err := BuildFrameAssembly(0, 0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = BuildFrameAssembly(20, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRotateXYZ(t *testing.T) {
	v := RotateXYZ([3]float32{0, 1, 0}, [3]float32{math.Pi / 2, 0, 0})
	assert.InDelta(t, 0, v[0], 1e-6)
	assert.InDelta(t, 0, v[1], 1e-6)
	assert.InDelta(t, 1, v[2], 1e-6)

	v = RotateXYZ([3]float32{1, 0, 0}, [3]float32{0, 0, math.Pi / 2})
	assert.InDelta(t, 0, v[0], 1e-6)
	assert.InDelta(t, 1, v[1], 1e-6)
}
