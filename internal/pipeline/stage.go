package pipeline

// Stage is one post-processing step: a tagged variant holding its kind, enabled flag and
// parameter values in the kind's table order. Backends read it through the typed views.
type Stage struct {
	id      string
	kind    Kind
	enabled bool
	values  [maxParams]float64
}

func newStage(id string, k Kind) Stage {
	s := Stage{id: id, kind: k}
	for i, p := range Params(k) {
		s.values[i] = p.Default
	}
	return s
}

func (s Stage) ID() string    { return s.id }
func (s Stage) Kind() Kind    { return s.kind }
func (s Stage) Enabled() bool { return s.enabled }

// Value returns the current value of the named parameter.
func (s Stage) Value(name string) (float64, bool) {
	_, i, ok := LookupParam(s.kind, name)
	if !ok {
		return 0, false
	}
	return s.values[i], true
}

// Values returns all parameter values keyed by name.
func (s Stage) Values() map[string]float64 {
	specs := Params(s.kind)
	out := make(map[string]float64, len(specs))
	for i, p := range specs {
		out[p.Name] = s.values[i]
	}
	return out
}

// BloomParams are the bright-pass and glow settings.
type BloomParams struct {
	Strength, Radius, Threshold, Smoothing float32
}

func (s Stage) Bloom() BloomParams {
	return BloomParams{
		Strength:  float32(s.values[bloomStrength]),
		Radius:    float32(s.values[bloomRadius]),
		Threshold: float32(s.values[bloomThreshold]),
		Smoothing: float32(s.values[bloomSmoothing]),
	}
}

// PixelationParams: PixelSize is in screen pixels.
type PixelationParams struct {
	PixelSize         int
	DepthEdgeStrength float32
}

func (s Stage) Pixelation() PixelationParams {
	return PixelationParams{
		PixelSize:         int(s.values[pixelSize]),
		DepthEdgeStrength: float32(s.values[pixelDepthEdge]),
	}
}

// HueSaturationParams: Hue rotates by Hue*π radians (1 is half a turn), Saturation in [-1, 1].
type HueSaturationParams struct {
	Hue, Saturation float32
}

func (s Stage) HueSaturation() HueSaturationParams {
	return HueSaturationParams{
		Hue:        float32(s.values[hueHue]),
		Saturation: float32(s.values[hueSaturation]),
	}
}

type BrightnessContrastParams struct {
	Brightness, Contrast float32
}

func (s Stage) BrightnessContrast() BrightnessContrastParams {
	return BrightnessContrastParams{
		Brightness: float32(s.values[bcBrightness]),
		Contrast:   float32(s.values[bcContrast]),
	}
}

type VignetteParams struct {
	Darkness, Offset float32
}

func (s Stage) Vignette() VignetteParams {
	return VignetteParams{
		Darkness: float32(s.values[vignetteDarkness]),
		Offset:   float32(s.values[vignetteOffset]),
	}
}

type FilmNoiseParams struct {
	Intensity float32
	Grayscale bool
}

func (s Stage) FilmNoise() FilmNoiseParams {
	return FilmNoiseParams{
		Intensity: float32(s.values[noiseIntensity]),
		Grayscale: s.values[noiseGrayscale] != 0,
	}
}

// ChromaticAberrationParams: Amount is a UV-space offset applied along Angle (radians).
type ChromaticAberrationParams struct {
	Amount, Angle float32
}

func (s Stage) ChromaticAberration() ChromaticAberrationParams {
	return ChromaticAberrationParams{
		Amount: float32(s.values[rgbAmount]),
		Angle:  float32(s.values[rgbAngle]),
	}
}

// DepthOfFieldParams: Focus is a view distance, Blur caps the circle of confusion in UV units.
type DepthOfFieldParams struct {
	Focus, Blur, Aperture float32
}

func (s Stage) DepthOfField() DepthOfFieldParams {
	return DepthOfFieldParams{
		Focus:    float32(s.values[dofFocus]),
		Blur:     float32(s.values[dofBlur]),
		Aperture: float32(s.values[dofAperture]),
	}
}

// UsesDepth reports whether any of stages reads the depth pass: depth of field, or
// pixelation with depth edges.
func UsesDepth(stages []Stage) bool {
	for _, s := range stages {
		switch {
		case s.kind == DepthOfField:
			return true
		case s.kind == Pixelation && s.values[pixelDepthEdge] > 0:
			return true
		}
	}
	return false
}
