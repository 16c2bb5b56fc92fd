package shapes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOctahedron(t *testing.T) {
	m := Octahedron(2)
	require.Equal(t, 24, m.VertexCount())
	require.Equal(t, 8, m.TriangleCount())
	require.Len(t, m.Normals, len(m.Vertices))
	require.Len(t, m.Texcoords, m.VertexCount()*2)

	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertices[i*3 : i*3+3]
		assert.InDelta(t, 2, math.Sqrt(float64(v[0]*v[0]+v[1]*v[1]+v[2]*v[2])), 1e-6)
	}

	seen := map[[3]float32]bool{}
	for tri := 0; tri < m.TriangleCount(); tri++ {
		var centroid [3]float32
		for k := 0; k < 3; k++ {
			for axis := 0; axis < 3; axis++ {
				centroid[axis] += m.Vertices[tri*9+k*3+axis] / 3
			}
		}
		n := m.Normals[tri*9 : tri*9+3]
		length := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		assert.InDelta(t, 1, length, 1e-6)
		dot := n[0]*centroid[0] + n[1]*centroid[1] + n[2]*centroid[2]
		assert.Greater(t, dot, float32(0), "face %d normal points inward", tri)
		seen[[3]float32{sign(n[0]), sign(n[1]), sign(n[2])}] = true
	}
	assert.Len(t, seen, 8, "one face per octant")
}

func sign(f float32) float32 {
	if f < 0 {
		return -1
	}
	return 1
}
