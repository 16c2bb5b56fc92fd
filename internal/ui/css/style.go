// Package css is the small stylesheet language of the overlay: selectors and properties,
// resolved into a Style per node.
package css

import (
	"image/color"
	"strconv"
	"strings"

	"fxdemo/internal/config"
)

// Rule is one CSS rule: its selectors and raw property values.
type Rule struct {
	Selectors []string          // e.g. ".folder", "#title", "slider"
	Props     map[string]string // e.g. "background" -> "#333"
}

// Stylesheet is a list of rules; later rules override earlier ones.
type Stylesheet struct {
	Rules []Rule
}

// Style holds resolved values used for drawing.
type Style struct {
	Background color.RGBA
	Color      color.RGBA
	Border     color.RGBA
	HasBorder  bool
	Accent     color.RGBA // slider fill and checkbox mark
	Padding    int32      // text offset from node bounds
	FontSize   int32
}

// DefaultStyle is transparent with white text, no border and a grey accent.
func DefaultStyle() Style {
	return Style{
		Color:    color.RGBA{255, 255, 255, 255},
		Accent:   color.RGBA{160, 160, 160, 255},
		Padding:  4,
		FontSize: 16,
	}
}

// Match reports whether sel applies to a node of the given type, class and id.
func Match(sel, typ, class, id string) bool {
	switch sel[0] {
	case '.':
		return class != "" && sel[1:] == class
	case '#':
		return id != "" && sel[1:] == id
	default:
		return sel == typ
	}
}

// Resolve merges every matching rule in order and resolves the result.
func (s *Stylesheet) Resolve(typ, class, id string) Style {
	merged := make(map[string]string)
	if s != nil {
		for _, r := range s.Rules {
			for _, sel := range r.Selectors {
				if Match(sel, typ, class, id) {
					for k, v := range r.Props {
						merged[k] = v
					}
					break
				}
			}
		}
	}
	return ResolveProps(merged)
}

// ParsePx parses a number, with optional "px" suffix. Unitless is treated as pixels.
func ParsePx(s string) (int32, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// parseColor accepts #rgb and #rrggbb, plus an optional alpha as "#rrggbb/aa" in hex.
func parseColor(s string) (color.RGBA, bool) {
	hex, alpha, hasAlpha := strings.Cut(strings.TrimSpace(s), "/")
	c, err := config.ParseColor(hex)
	if err != nil {
		return color.RGBA{}, false
	}
	if hasAlpha {
		a, err := strconv.ParseUint(strings.TrimSpace(alpha), 16, 8)
		if err != nil {
			return color.RGBA{}, false
		}
		c.A = uint8(a)
	}
	return c, true
}

// ResolveProps builds a Style from a merged property map. Unknown properties and
// unparsable values are ignored.
func ResolveProps(props map[string]string) Style {
	out := DefaultStyle()
	for k, v := range props {
		switch k {
		case "background":
			if c, ok := parseColor(v); ok {
				out.Background = c
			}
		case "color":
			if c, ok := parseColor(v); ok {
				out.Color = c
			}
		case "border":
			if c, ok := parseColor(v); ok {
				out.Border = c
				out.HasBorder = true
			}
		case "accent":
			if c, ok := parseColor(v); ok {
				out.Accent = c
			}
		case "padding":
			if n, ok := ParsePx(v); ok && n >= 0 {
				out.Padding = n
			}
		case "font-size":
			if n, ok := ParsePx(v); ok && n > 0 {
				out.FontSize = n
			}
		}
	}
	return out
}
