package ui

import (
	"image/color"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"fxdemo/internal/ui/css"
)

// DefaultCSS styles the effect panel and overlays when no stylesheet is configured.
const DefaultCSS = `
panel { background: #14141c/d8; border: #3a3a48 }
folder { background: #22222c; color: #e8e8f0; padding: 4 }
.on { color: #9fe870 }
checkbox { color: #c8c8d0; accent: #9fe870; padding: 4 }
.locked { color: #70707a }
slider { color: #c8c8d0; background: #1a1a22; accent: #4a78c8; border: #303040; padding: 4 }
label { color: #e8e8f0; font-size: 20 }
#fps { color: #00e430 }
#stages { color: #c8c8d0; font-size: 16 }
`

// Engine holds the stylesheet and font and draws node lists with raylib.
// Draw order is list order. Resolved styles are cached per (type, class, id).
type Engine struct {
	sheet  *css.Stylesheet
	styles map[string]css.Style
	font   rl.Font
}

// New creates an engine using DefaultCSS.
func New() *Engine {
	e := &Engine{}
	e.SetStylesheet(css.Parse(DefaultCSS))
	return e
}

// LoadCSS loads a stylesheet from path. Replaces the current stylesheet.
func (e *Engine) LoadCSS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	e.SetStylesheet(css.Parse(string(data)))
	return nil
}

// SetStylesheet sets the stylesheet directly.
func (e *Engine) SetStylesheet(sheet *css.Stylesheet) {
	e.sheet = sheet
	e.styles = make(map[string]css.Style)
}

// LoadFont loads a TTF/OTF font for text rendering. On failure the engine keeps the current font.
// Call after the window/OpenGL context exists.
func (e *Engine) LoadFont(path string) error {
	f := rl.LoadFont(path)
	if f.Texture.ID == 0 {
		return os.ErrNotExist
	}
	if e.font.Texture.ID != 0 {
		rl.UnloadFont(e.font)
	}
	e.font = f
	return nil
}

// Font returns the loaded font; its texture ID is zero when raylib's default font is used.
func (e *Engine) Font() rl.Font { return e.font }

func (e *Engine) style(n *Node) css.Style {
	key := n.Type + "\x00" + n.Class + "\x00" + n.ID
	if s, ok := e.styles[key]; ok {
		return s
	}
	s := e.sheet.Resolve(n.Type, n.Class, n.ID)
	e.styles[key] = s
	return s
}

func col(c color.RGBA) rl.Color { return rl.NewColor(c.R, c.G, c.B, c.A) }

// MeasureText returns the width of text in the node's style.
func (e *Engine) MeasureText(n *Node, text string) float32 {
	size := e.style(n).FontSize
	if e.font.Texture.ID != 0 {
		return rl.MeasureTextEx(e.font, text, float32(size), 1).X
	}
	return float32(rl.MeasureText(text, size))
}

// Draw draws nodes: background, border, the slider track or checkbox, then text.
func (e *Engine) Draw(nodes []*Node) {
	for _, n := range nodes {
		st := e.style(n)
		b := n.Bounds
		x, y, w, h := int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height)

		if st.Background.A > 0 {
			rl.DrawRectangle(x, y, w, h, col(st.Background))
		}
		if st.HasBorder && w > 0 && h > 0 && n.Type != "slider" {
			rl.DrawRectangleLines(x, y, w, h, col(st.Border))
		}
		textX := x + st.Padding
		switch n.Type {
		case "slider":
			t := n.Track
			rl.DrawRectangleRec(t, col(st.Background))
			fill := t
			fill.Width *= n.Fill
			rl.DrawRectangleRec(fill, col(st.Accent))
			if st.HasBorder {
				rl.DrawRectangleLinesEx(t, 1, col(st.Border))
			}
		case "checkbox":
			box := h - 2*st.Padding
			rl.DrawRectangleLines(textX, y+st.Padding, box, box, col(st.Color))
			if n.Checked {
				rl.DrawRectangle(textX+3, y+st.Padding+3, box-6, box-6, col(st.Accent))
			}
			textX += box + st.Padding*2
		}
		if n.Text == "" {
			continue
		}
		textY := y + (h-st.FontSize)/2
		if h == 0 {
			textY = y + st.Padding
		}
		if e.font.Texture.ID != 0 {
			rl.DrawTextEx(e.font, n.Text, rl.NewVector2(float32(textX), float32(textY)), float32(st.FontSize), 1, col(st.Color))
		} else {
			rl.DrawText(n.Text, textX, textY, st.FontSize, col(st.Color))
		}
	}
}

// Unload frees the font.
func (e *Engine) Unload() {
	if e.font.Texture.ID != 0 {
		rl.UnloadFont(e.font)
		e.font = rl.Font{}
	}
}
