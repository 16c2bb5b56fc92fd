// Package soft is a CPU compositor: it runs the effect pipeline over still images with bild.
// Stage semantics follow the GPU shaders closely enough for previews, stills and tests.
package soft

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/anthonynsimon/bild/transform"

	"fxdemo/internal/pipeline"
)

// Frame is one image moving through the stages.
type Frame struct {
	Image *image.RGBA
	// Depth holds the view distance of every pixel, row-major; nil when the source has none.
	// Depth of field and depth edges are skipped without it.
	Depth []float32
	Time  float64 // seconds, animates film noise
	Seed  uint32  // varies film noise between stills
}

// Compositor implements pipeline.Compositor[Frame].
type Compositor struct{}

var _ pipeline.Compositor[Frame] = (*Compositor)(nil)

func New() *Compositor { return &Compositor{} }

// Composite runs stages in order over a copy of f.Image. The input is never modified.
func (c *Compositor) Composite(f Frame, stages []pipeline.Stage) Frame {
	out := f
	out.Image = normalize(f.Image)
	if len(f.Depth) != out.Image.Bounds().Dx()*out.Image.Bounds().Dy() {
		out.Depth = nil
	}
	for _, s := range stages {
		out.Image = apply(out, s)
	}
	return out
}

func apply(f Frame, s pipeline.Stage) *image.RGBA {
	switch s.Kind() {
	case pipeline.Bloom:
		return bloom(f.Image, s.Bloom())
	case pipeline.Pixelation:
		return pixelate(f, s.Pixelation())
	case pipeline.HueSaturation:
		return hueSaturation(f.Image, s.HueSaturation())
	case pipeline.BrightnessContrast:
		return brightnessContrast(f.Image, s.BrightnessContrast())
	case pipeline.Vignette:
		return vignette(f.Image, s.Vignette())
	case pipeline.FilmNoise:
		return filmNoise(f, s.FilmNoise())
	case pipeline.ChromaticAberration:
		return rgbShift(f.Image, s.ChromaticAberration())
	case pipeline.AntiAliasing:
		return fxaa(f.Image)
	case pipeline.DepthOfField:
		return depthOfField(f, s.DepthOfField())
	default: // render: the frame already holds the scene
		return f.Image
	}
}

// normalize copies img into a zero-origin RGBA.
func normalize(img *image.RGBA) *image.RGBA {
	if img.Bounds().Min == (image.Point{}) {
		return clone.AsRGBA(img)
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

func bloom(img *image.RGBA, p pipeline.BloomParams) *image.RGBA {
	if p.Strength == 0 {
		return img
	}
	lo, hi := float64(p.Threshold), float64(p.Threshold+p.Smoothing)
	bright := adjust.Apply(img, func(c color.RGBA) color.RGBA {
		w := smoothstep(lo, hi, luma(c))
		return color.RGBA{R: scale8(c.R, w), G: scale8(c.G, w), B: scale8(c.B, w), A: 255}
	})
	b := img.Bounds()
	radius := float64(p.Radius) * float64(min(b.Dx(), b.Dy())) / 16
	if radius >= 0.5 {
		bright = blur.Gaussian(bright, radius)
	}
	strength := float64(p.Strength)
	glow := adjust.Apply(bright, func(c color.RGBA) color.RGBA {
		return color.RGBA{R: scale8(c.R, strength), G: scale8(c.G, strength), B: scale8(c.B, strength), A: 255}
	})
	return blend.Add(img, glow)
}

func pixelate(f Frame, p pipeline.PixelationParams) *image.RGBA {
	b := f.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	lw, lh := max(1, w/p.PixelSize), max(1, h/p.PixelSize)
	small := transform.Resize(f.Image, lw, lh, transform.NearestNeighbor)
	if f.Depth != nil && p.DepthEdgeStrength > 0 {
		edges := effect.Sobel(transform.Resize(depthImage(f.Depth, w, h), lw, lh, transform.NearestNeighbor))
		k := float64(p.DepthEdgeStrength)
		parallel.Line(lh, func(start, end int) {
			for y := start; y < end; y++ {
				for x := 0; x < lw; x++ {
					i := small.PixOffset(x, y)
					e := float64(edges.Pix[edges.PixOffset(x, y)]) / 255
					dim := 1 - k*e
					small.Pix[i+0] = scale8(small.Pix[i+0], dim)
					small.Pix[i+1] = scale8(small.Pix[i+1], dim)
					small.Pix[i+2] = scale8(small.Pix[i+2], dim)
				}
			}
		})
	}
	if lw == w && lh == h {
		return small
	}
	return transform.Resize(small, w, h, transform.NearestNeighbor)
}

// depthImage maps depth to gray, nearest black and farthest finite depth white.
func depthImage(depth []float32, w, h int) *image.Gray {
	far := float32(0)
	for _, d := range depth {
		if d > far && !math.IsInf(float64(d), 0) {
			far = d
		}
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	if far == 0 {
		return img
	}
	for i, d := range depth {
		img.Pix[i] = uint8(clamp01(float64(d/far)) * 255)
	}
	return img
}

func hueSaturation(img *image.RGBA, p pipeline.HueSaturationParams) *image.RGBA {
	out := img
	if p.Hue != 0 {
		out = adjust.Hue(out, int(math.Round(float64(p.Hue)*180)))
	}
	if p.Saturation != 0 {
		s := float64(p.Saturation)
		out = adjust.Apply(out, func(c color.RGBA) color.RGBA {
			r, g, b := unit(c)
			avg := (r + g + b) / 3
			k := -s
			if s > 0 {
				k = 1 - 1/(1.001-s)
			}
			return rgba(r+(avg-r)*k, g+(avg-g)*k, b+(avg-b)*k, c.A)
		})
	}
	return out
}

func brightnessContrast(img *image.RGBA, p pipeline.BrightnessContrastParams) *image.RGBA {
	if p.Brightness == 0 && p.Contrast == 0 {
		return img
	}
	br, ct := float64(p.Brightness), float64(p.Contrast)
	f := func(v float64) float64 {
		v += br
		if ct > 0 {
			return (v-0.5)/(1-ct) + 0.5
		}
		return (v-0.5)*(1+ct) + 0.5
	}
	if ct >= 1 {
		f = func(v float64) float64 {
			if v+br >= 0.5 {
				return 1
			}
			return 0
		}
	}
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		r, g, b := unit(c)
		return rgba(f(r), f(g), f(b), c.A)
	})
}

func vignette(img *image.RGBA, p pipeline.VignetteParams) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(b)
	edge := 1 - float64(p.Darkness)
	off := float64(p.Offset)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			v := ((float64(y)+0.5)/float64(h) - 0.5) * off
			for x := 0; x < w; x++ {
				u := ((float64(x)+0.5)/float64(w) - 0.5) * off
				t := u*u + v*v
				i := img.PixOffset(x, y)
				for ch := 0; ch < 3; ch++ {
					c := float64(img.Pix[i+ch]) / 255
					out.Pix[i+ch] = to8(c + (edge-c)*t)
				}
				out.Pix[i+3] = img.Pix[i+3]
			}
		}
	})
	return out
}

func filmNoise(f Frame, p pipeline.FilmNoiseParams) *image.RGBA {
	img := f.Image
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(b)
	k := float64(p.Intensity)
	tick := uint32(f.Time * 1000)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := img.PixOffset(x, y)
				n := hash01(uint32(x), uint32(y), tick^f.Seed)
				gain := clamp01(0.1 + n)
				var c [3]float64
				for ch := 0; ch < 3; ch++ {
					base := float64(img.Pix[i+ch]) / 255
					c[ch] = base + k*base*gain
				}
				if p.Grayscale {
					l := 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
					c = [3]float64{l, l, l}
				}
				out.Pix[i+0], out.Pix[i+1], out.Pix[i+2] = to8(c[0]), to8(c[1]), to8(c[2])
				out.Pix[i+3] = img.Pix[i+3]
			}
		}
	})
	return out
}

func rgbShift(img *image.RGBA, p pipeline.ChromaticAberrationParams) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dx := int(math.Round(float64(p.Amount) * math.Cos(float64(p.Angle)) * float64(w)))
	dy := int(math.Round(float64(p.Amount) * math.Sin(float64(p.Angle)) * float64(h)))
	if dx == 0 && dy == 0 {
		return img
	}
	out := image.NewRGBA(b)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := img.PixOffset(x, y)
				out.Pix[i+0] = img.Pix[img.PixOffset(clampInt(x+dx, 0, w-1), clampInt(y+dy, 0, h-1))+0]
				out.Pix[i+1] = img.Pix[i+1]
				out.Pix[i+2] = img.Pix[img.PixOffset(clampInt(x-dx, 0, w-1), clampInt(y-dy, 0, h-1))+2]
				out.Pix[i+3] = img.Pix[i+3]
			}
		}
	})
	return out
}

// fxaa blends high-contrast pixels toward their neighbours along the dominant edge.
func fxaa(img *image.RGBA) *image.RGBA {
	const (
		edgeThreshold    = 0.125
		edgeThresholdMin = 0.0312
	)
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := clone.AsRGBA(img)
	lumaAt := func(x, y int) float64 {
		i := img.PixOffset(clampInt(x, 0, w-1), clampInt(y, 0, h-1))
		return (0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])) / 255
	}
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				m := lumaAt(x, y)
				n, s, e, wl := lumaAt(x, y-1), lumaAt(x, y+1), lumaAt(x+1, y), lumaAt(x-1, y)
				hi := math.Max(m, math.Max(math.Max(n, s), math.Max(e, wl)))
				lo := math.Min(m, math.Min(math.Min(n, s), math.Min(e, wl)))
				if hi-lo < math.Max(edgeThresholdMin, hi*edgeThreshold) {
					continue
				}
				// Horizontal edges blend vertically and vice versa.
				ax, ay := 0, 1
				if math.Abs(n+s-2*m) < math.Abs(e+wl-2*m) {
					ax, ay = 1, 0
				}
				i := img.PixOffset(x, y)
				p := img.PixOffset(clampInt(x-ax, 0, w-1), clampInt(y-ay, 0, h-1))
				q := img.PixOffset(clampInt(x+ax, 0, w-1), clampInt(y+ay, 0, h-1))
				for ch := 0; ch < 3; ch++ {
					v := 0.5*float64(img.Pix[i+ch]) + 0.25*float64(img.Pix[p+ch]) + 0.25*float64(img.Pix[q+ch])
					out.Pix[i+ch] = uint8(math.Round(v))
				}
			}
		}
	})
	return out
}

// dofLevels is the number of blur radii blended between for depth of field.
const dofLevels = 4

func depthOfField(f Frame, p pipeline.DepthOfFieldParams) *image.RGBA {
	if f.Depth == nil || p.Blur == 0 || p.Aperture == 0 {
		return f.Image
	}
	img := f.Image
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	maxPx := float64(p.Blur) * float64(w)
	levels := [dofLevels + 1]*image.RGBA{img}
	for l := 1; l <= dofLevels; l++ {
		levels[l] = blur.Gaussian(img, maxPx*float64(l)/dofLevels)
	}
	out := image.NewRGBA(b)
	focus, aperture, maxBlur := float64(p.Focus), float64(p.Aperture), float64(p.Blur)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				coc := math.Min(math.Abs(focus-float64(f.Depth[y*w+x]))*aperture, maxBlur) / maxBlur
				t := coc * dofLevels
				l0 := int(t)
				if l0 >= dofLevels {
					l0 = dofLevels - 1
				}
				frac := t - float64(l0)
				i := img.PixOffset(x, y)
				a, c := levels[l0].Pix, levels[l0+1].Pix
				for ch := 0; ch < 4; ch++ {
					out.Pix[i+ch] = uint8(math.Round(float64(a[i+ch])*(1-frac) + float64(c[i+ch])*frac))
				}
			}
		}
	})
	return out
}

func luma(c color.RGBA) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

func smoothstep(lo, hi, x float64) float64 {
	if hi <= lo {
		if x >= lo {
			return 1
		}
		return 0
	}
	t := clamp01((x - lo) / (hi - lo))
	return t * t * (3 - 2*t)
}

func unit(c color.RGBA) (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

func rgba(r, g, b float64, a uint8) color.RGBA {
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: a}
}

func scale8(v uint8, k float64) uint8 { return to8(float64(v) / 255 * k) }

func to8(v float64) uint8 { return uint8(math.Round(clamp01(v) * 255)) }

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// hash01 is a stateless per-pixel noise source in [0, 1).
func hash01(x, y, seed uint32) float64 {
	h := x*0x8da6b343 ^ y*0xd8163841 ^ seed*0xcb1ab31f
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return float64(h) / (1 << 32)
}
