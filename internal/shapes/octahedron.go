// Package shapes generates vertex data for primitives the renderer has no generator for.
package shapes

import "github.com/chewxy/math32"

// Mesh is flat, non-indexed triangle data: three floats per position/normal, two per texcoord.
type Mesh struct {
	Vertices  []float32
	Normals   []float32
	Texcoords []float32
}

// VertexCount returns the number of vertices (three per triangle).
func (m Mesh) VertexCount() int { return len(m.Vertices) / 3 }

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int { return m.VertexCount() / 3 }

// Octahedron returns a flat-shaded regular octahedron with its vertices on a sphere of radius r.
// Faces wind counter-clockwise seen from outside.
func Octahedron(r float32) Mesh {
	px := [3]float32{r, 0, 0}
	nx := [3]float32{-r, 0, 0}
	py := [3]float32{0, r, 0}
	ny := [3]float32{0, -r, 0}
	pz := [3]float32{0, 0, r}
	nz := [3]float32{0, 0, -r}

	faces := [8][3][3]float32{
		{px, py, pz},
		{pz, py, nx},
		{nx, py, nz},
		{nz, py, px},
		{px, pz, ny},
		{pz, nx, ny},
		{nx, nz, ny},
		{nz, px, ny},
	}

	m := Mesh{
		Vertices:  make([]float32, 0, 8*9),
		Normals:   make([]float32, 0, 8*9),
		Texcoords: make([]float32, 0, 8*6),
	}
	uv := [3][2]float32{{0, 0}, {1, 0}, {0.5, 1}}
	for _, f := range faces {
		n := faceNormal(f[0], f[1], f[2])
		for i, v := range f {
			m.Vertices = append(m.Vertices, v[0], v[1], v[2])
			m.Normals = append(m.Normals, n[0], n[1], n[2])
			m.Texcoords = append(m.Texcoords, uv[i][0], uv[i][1])
		}
	}
	return m
}

func faceNormal(a, b, c [3]float32) [3]float32 {
	u := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	n := [3]float32{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
	l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 {
		return n
	}
	return [3]float32{n[0] / l, n[1] / l, n[2] / l}
}
