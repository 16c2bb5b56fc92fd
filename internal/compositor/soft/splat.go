package soft

import (
	"image"
	"image/color"
	"math"

	"github.com/chewxy/math32"

	"fxdemo/internal/populate"
)

// View is a perspective camera for Splat.
type View struct {
	Position [3]float32
	Target   [3]float32
	FOV      float32 // vertical, degrees
	Near     float32
	Far      float32
}

// boundRadius is the bounding sphere radius of each unit primitive.
var boundRadius = map[populate.Kind]float32{
	populate.Cube:       0.866,
	populate.Cone:       0.8,
	populate.Octahedron: 1,
	populate.Sphere:     1,
}

// Splat renders instances as shaded discs with a depth buffer. It is a stand-in for the GPU
// scene pass when producing stills without a window: every instance becomes its bounding
// sphere, lit from the camera.
func Splat(instances []populate.Instance, w, h int, bg color.RGBA, v View) Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	depth := make([]float32, w*h)
	for i := range depth {
		depth[i] = v.Far
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = bg.R, bg.G, bg.B, 255
	}

	fwd := unitVec(sub(v.Target, v.Position))
	right := unitVec(cross(fwd, [3]float32{0, 1, 0}))
	up := cross(right, fwd)
	focal := float32(h) / 2 / math32.Tan(v.FOV*math32.Pi/360)

	for _, inst := range instances {
		d := sub(inst.Position, v.Position)
		z := dot(d, fwd)
		r := boundRadius[inst.Kind] * inst.Scale
		if z-r <= v.Near {
			continue
		}
		cx := float32(w)/2 + dot(d, right)*focal/z
		cy := float32(h)/2 - dot(d, up)*focal/z
		pr := r * focal / z
		dist := math32.Sqrt(dot(d, d))

		x0, x1 := clampInt(int(cx-pr), 0, w-1), clampInt(int(cx+pr)+1, 0, w-1)
		y0, y1 := clampInt(int(cy-pr), 0, h-1), clampInt(int(cy+pr)+1, 0, h-1)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				dx, dy := (float32(x)+0.5-cx)/pr, (float32(y)+0.5-cy)/pr
				q := dx*dx + dy*dy
				if q > 1 {
					continue
				}
				nz := math32.Sqrt(1 - q) // sphere normal towards the camera
				px := dist - nz*r
				i := y*w + x
				if px >= depth[i] {
					continue
				}
				depth[i] = px
				shade := float64(0.35 + 0.65*nz)
				o := i * 4
				img.Pix[o] = uint8(math.Round(float64(inst.Color.R) * shade))
				img.Pix[o+1] = uint8(math.Round(float64(inst.Color.G) * shade))
				img.Pix[o+2] = uint8(math.Round(float64(inst.Color.B) * shade))
			}
		}
	}
	return Frame{Image: img, Depth: depth}
}

func sub(a, b [3]float32) [3]float32 { return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func dot(a, b [3]float32) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func unitVec(a [3]float32) [3]float32 {
	n := math32.Sqrt(dot(a, a))
	if n == 0 {
		return a
	}
	return [3]float32{a[0] / n, a[1] / n, a[2] / n}
}

// DepthFromImage reads a grayscale depth map, black near and white at far, into view distances.
func DepthFromImage(img image.Image, far float32) []float32 {
	b := img.Bounds()
	out := make([]float32, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			out[(y-b.Min.Y)*b.Dx()+(x-b.Min.X)] = float32(g.Y) / 0xffff * far
		}
	}
	return out
}
