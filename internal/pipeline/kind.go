package pipeline

import (
	"fmt"
	"strings"
)

// Kind identifies a stage. The set is closed: backends switch over it exhaustively.
type Kind int

const (
	Render Kind = iota // base scene pass; always on
	Bloom
	Pixelation
	HueSaturation
	BrightnessContrast
	Vignette
	FilmNoise
	ChromaticAberration
	AntiAliasing
	DepthOfField
	numKinds
)

var kindNames = [numKinds]string{
	Render:              "render",
	Bloom:               "bloom",
	Pixelation:          "pixelation",
	HueSaturation:       "hueSaturation",
	BrightnessContrast:  "brightnessContrast",
	Vignette:            "vignette",
	FilmNoise:           "filmNoise",
	ChromaticAberration: "chromaticAberration",
	AntiAliasing:        "antiAliasing",
	DepthOfField:        "depthOfField",
}

// kindTitles are the folder names shown on control surfaces.
var kindTitles = [numKinds]string{
	Render:              "Render",
	Bloom:               "Bloom",
	Pixelation:          "Pixelation",
	HueSaturation:       "Hue",
	BrightnessContrast:  "Brightness & Contrast",
	Vignette:            "Vignette",
	FilmNoise:           "Noise",
	ChromaticAberration: "Aberration",
	AntiAliasing:        "FXAA",
	DepthOfField:        "DoF",
}

// Kinds returns every stage kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) valid() bool { return k >= 0 && k < numKinds }

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Title is the human-readable name used for panel folders.
func (k Kind) Title() string {
	if !k.valid() {
		return k.String()
	}
	return kindTitles[k]
}

// ParseKind accepts a kind name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown stage kind %q", ErrInvalidArgument, name)
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("%w: unknown stage kind %d", ErrInvalidArgument, int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
