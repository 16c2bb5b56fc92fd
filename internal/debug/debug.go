package debug

import (
	"fmt"
	"runtime"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"fxdemo/internal/pipeline"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh the text every N frames to reduce allocations.
	updateInterval = 30
)

var stageColor = rl.NewColor(200, 200, 208, 255)

// Debug draws runtime overlays at the top-left: FPS, heap and the active effect chain.
// All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStages   bool
	font         rl.Font // optional; when set, Draw uses DrawTextEx instead of default font
	frameCount   uint32
	fpsText      string
	memText      string
	stagesText   string
	memStats     runtime.MemStats
}

func New() *Debug {
	return &Debug{}
}

// SetFont sets the font used for the overlays. Zero texture ID = raylib default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

// StageLine renders the enabled stages as "render > bloom > antiAliasing".
func StageLine(stages []pipeline.Stage) string {
	ids := make([]string, len(stages))
	for i, s := range stages {
		ids[i] = s.ID()
	}
	return strings.Join(ids, " > ")
}

func (d *Debug) text(s string, y int32, c rl.Color) {
	if d.font.Texture.ID != 0 {
		rl.DrawTextEx(d.font, s, rl.NewVector2(padding, float32(y)), fontSize, 1, c)
		return
	}
	rl.DrawText(s, padding, y, fontSize, c)
}

// Draw renders the enabled overlays. enabled is the current enabled stage list.
// Call last in the draw loop so overlays sit on top of the composited frame.
func (d *Debug) Draw(enabled []pipeline.Stage) {
	d.frameCount++
	update := d.frameCount%updateInterval == 0
	if (d.ShowFPS && d.fpsText == "") || (d.ShowMemAlloc && d.memText == "") || (d.ShowStages && d.stagesText == "") {
		update = true
	}
	if update {
		if d.ShowFPS {
			d.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		if d.ShowMemAlloc {
			runtime.ReadMemStats(&d.memStats)
			d.memText = fmt.Sprintf("Mem: %.2f MiB", float64(d.memStats.Alloc)/(1024*1024))
		}
	}
	if d.ShowStages {
		// Toggles should show up immediately, not on the next refresh.
		d.stagesText = StageLine(enabled)
	}

	y := int32(padding)
	if d.ShowFPS {
		d.text(d.fpsText, y, rl.Green)
		y += lineHeight
	}
	if d.ShowMemAlloc {
		d.text(d.memText, y, rl.Green)
		y += lineHeight
	}
	if d.ShowStages {
		d.text(d.stagesText, y, stageColor)
	}
}
