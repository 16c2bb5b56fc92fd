package css

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheet = `
/* panel */
.panel, #root { background: #111/c0; padding: 6px }
folder { color: #fc0; font-size: 18 }
.bad child { color: #f00; }
slider { accent: #3399ff; border: #444 }
.folder.on { color: #0f0 }
`

func TestParse(t *testing.T) {
	s := Parse(sheet)
	require.Len(t, s.Rules, 4)
	assert.Equal(t, []string{".panel", "#root"}, s.Rules[0].Selectors)
	assert.Equal(t, "#111/c0", s.Rules[0].Props["background"])
	assert.Equal(t, []string{"folder"}, s.Rules[1].Selectors)
	assert.Equal(t, "#3399ff", s.Rules[2].Props["accent"])
}

func TestResolve(t *testing.T) {
	s := Parse(sheet)

	p := s.Resolve("panel", "panel", "")
	assert.Equal(t, color.RGBA{0x11, 0x11, 0x11, 0xc0}, p.Background)
	assert.Equal(t, int32(6), p.Padding)

	f := s.Resolve("folder", "", "")
	assert.Equal(t, color.RGBA{0xff, 0xcc, 0x00, 0xff}, f.Color)
	assert.Equal(t, int32(18), f.FontSize)

	sl := s.Resolve("slider", "", "")
	assert.Equal(t, color.RGBA{0x33, 0x99, 0xff, 0xff}, sl.Accent)
	assert.True(t, sl.HasBorder)

	other := s.Resolve("label", "", "")
	assert.Equal(t, DefaultStyle(), other)
}

func TestLaterRulesWin(t *testing.T) {
	s := Parse(`.a { color: #111; padding: 2 } .a { color: #222 }`)
	st := s.Resolve("label", "a", "")
	assert.Equal(t, color.RGBA{0x22, 0x22, 0x22, 0xff}, st.Color)
	assert.Equal(t, int32(2), st.Padding)
}

func TestUnterminatedInput(t *testing.T) {
	assert.Empty(t, Parse(`.a { color: #fff`).Rules)
	assert.Empty(t, Parse(`/* open comment .a { color: #fff }`).Rules)
	var nilSheet *Stylesheet
	assert.Equal(t, DefaultStyle(), nilSheet.Resolve("x", "", ""))
}

func TestParsePx(t *testing.T) {
	n, ok := ParsePx(" 12px ")
	assert.True(t, ok)
	assert.Equal(t, int32(12), n)
	_, ok = ParsePx("1em")
	assert.False(t, ok)
}
