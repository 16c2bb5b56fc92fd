package pipeline

import (
	"fmt"
	"math"
)

// ParamType is the value domain of a parameter. Every value travels as a float64;
// Int parameters must hold integral values and Bool parameters 0 or 1.
type ParamType int

const (
	Float ParamType = iota
	Int
	Bool
)

func (t ParamType) String() string {
	switch t {
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return "float"
	}
}

// ParamSpec declares one parameter of a stage kind: its range, UI step and default.
type ParamSpec struct {
	Name    string
	Label   string
	Type    ParamType
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// maxParams bounds the per-stage value array.
const maxParams = 4

// Value slots per kind, in table order.
const (
	bloomStrength = iota
	bloomRadius
	bloomThreshold
	bloomSmoothing
)

const (
	pixelSize = iota
	pixelDepthEdge
)

const (
	hueHue = iota
	hueSaturation
)

const (
	bcBrightness = iota
	bcContrast
)

const (
	vignetteDarkness = iota
	vignetteOffset
)

const (
	noiseIntensity = iota
	noiseGrayscale
)

const (
	rgbAmount = iota
	rgbAngle
)

const (
	dofFocus = iota
	dofBlur
	dofAperture
)

var paramTable = [numKinds][]ParamSpec{
	Bloom: {
		{Name: "strength", Label: "Intensity", Min: 0, Max: 3, Step: 0.01, Default: 0.6},
		{Name: "radius", Label: "Blur Scale", Min: 0, Max: 1, Step: 0.01, Default: 0.5},
		{Name: "threshold", Label: "Threshold", Min: 0, Max: 1, Step: 0.01, Default: 0.3},
		{Name: "smoothing", Label: "Smoothing", Min: 0, Max: 1, Step: 0.01, Default: 0},
	},
	Pixelation: {
		{Name: "pixelSize", Label: "Pixel Size", Type: Int, Min: 1, Max: 64, Step: 1, Default: 6},
		{Name: "depthEdgeStrength", Label: "Depth Edges", Min: 0, Max: 1, Step: 0.01, Default: 0.4},
	},
	HueSaturation: {
		{Name: "hue", Label: "Hue", Min: 0, Max: 6, Step: 0.01, Default: 0},
		{Name: "saturation", Label: "Saturation", Min: -1, Max: 1, Step: 0.01, Default: 0},
	},
	BrightnessContrast: {
		{Name: "brightness", Label: "Brightness", Min: -1, Max: 1, Step: 0.01, Default: 0},
		{Name: "contrast", Label: "Contrast", Min: -1, Max: 1, Step: 0.01, Default: 0},
	},
	Vignette: {
		{Name: "darkness", Label: "Darkness", Min: 0, Max: 20, Step: 0.01, Default: 1},
		{Name: "offset", Label: "Offset", Min: 0, Max: 5, Step: 0.01, Default: 1},
	},
	FilmNoise: {
		{Name: "intensity", Label: "Intensity", Min: 0, Max: 2, Step: 0.01, Default: 0.5},
		{Name: "grayscale", Label: "Grayscale", Type: Bool, Min: 0, Max: 1, Step: 1, Default: 0},
	},
	ChromaticAberration: {
		{Name: "amount", Label: "Offset", Min: 0, Max: 0.01, Step: 0.0001, Default: 0.005},
		{Name: "angle", Label: "Angle", Min: 0, Max: 6, Step: 0.01, Default: 0},
	},
	DepthOfField: {
		{Name: "focus", Label: "Focus", Min: 0, Max: 50, Step: 0.01, Default: 1},
		{Name: "blur", Label: "Max Blur", Min: 0, Max: 0.05, Step: 0.001, Default: 0.01},
		{Name: "aperture", Label: "Aperture", Min: 0, Max: 0.004, Step: 0.0001, Default: 0.002},
	},
}

// Params returns the parameter table of kind. The slice must not be modified.
func Params(k Kind) []ParamSpec {
	if !k.valid() {
		return nil
	}
	return paramTable[k]
}

// LookupParam finds a parameter of kind by name, returning its slot index.
func LookupParam(k Kind, name string) (ParamSpec, int, bool) {
	for i, p := range Params(k) {
		if p.Name == name {
			return p, i, true
		}
	}
	return ParamSpec{}, -1, false
}

// Validate reports ErrOutOfRange for values outside [Min, Max], NaN, non-integral
// values of Int parameters, and anything but 0 or 1 for Bool parameters.
// Values are rejected, never clamped.
func (p ParamSpec) Validate(v float64) error {
	if math.IsNaN(v) || v < p.Min || v > p.Max {
		return fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrOutOfRange, p.Name, v, p.Min, p.Max)
	}
	switch p.Type {
	case Int:
		if v != math.Trunc(v) {
			return fmt.Errorf("%w: %s=%v is not an integer", ErrOutOfRange, p.Name, v)
		}
	case Bool:
		if v != 0 && v != 1 {
			return fmt.Errorf("%w: %s=%v is not 0 or 1", ErrOutOfRange, p.Name, v)
		}
	}
	return nil
}

// Snap quantizes v to the parameter's step and clamps it into range, producing a value
// Validate accepts. Controls snap before emitting; the pipeline itself never does.
func (p ParamSpec) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return p.Default
	}
	switch p.Type {
	case Bool:
		if v >= 0.5 {
			return 1
		}
		return 0
	case Int:
		v = math.Round(v)
	default:
		if p.Step > 0 {
			v = p.Min + math.Round((v-p.Min)/p.Step)*p.Step
		}
	}
	return math.Max(p.Min, math.Min(p.Max, v))
}

// Fraction maps v to [0, 1] across the parameter's range.
func (p ParamSpec) Fraction(v float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	f := (v - p.Min) / (p.Max - p.Min)
	return math.Max(0, math.Min(1, f))
}

// FromFraction maps a slider position in [0, 1] back to a snapped value.
func (p ParamSpec) FromFraction(f float64) float64 {
	f = math.Max(0, math.Min(1, f))
	return p.Snap(p.Min + f*(p.Max-p.Min))
}
