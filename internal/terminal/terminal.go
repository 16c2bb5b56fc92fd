package terminal

import (
	"unicode/utf8"

	rl "github.com/gen2brain/raylib-go/raylib"

	"fxdemo/internal/commands"
	"fxdemo/internal/logger"
)

const (
	BarHeight = 40
	// When windowed, move the bar up by this many pixels so it stays clear of window bounds.
	WindowedBarOffset = 56
	prompt            = "> "
	fontSize          = 20
	padding           = 8
	// Number of log lines drawn above the input bar when the console is open.
	maxLinesOnScreen = 14
	lineHeight       = fontSize + 4
	maxHistory       = 50
)

var (
	// Reused every frame to avoid per-frame color allocations.
	barColor     = rl.NewColor(40, 40, 40, 255)
	lineColor    = rl.NewColor(80, 80, 80, 255)
	historyColor = rl.NewColor(24, 24, 24, 240)
)

// Terminal is the console at the bottom of the screen, toggled with ESC. When open it captures
// the keyboard; every submitted line is logged and run through the command registry.
// Up and Down walk previously submitted lines.
type Terminal struct {
	log      *logger.Logger
	reg      *commands.Registry
	inputBuf string
	open     bool
	font     rl.Font // optional; when set, Draw uses DrawTextEx instead of default font
	history  []string
	recall   int // index into history while browsing, len(history) otherwise
}

// New returns a closed Terminal that logs lines and runs them through reg.
func New(log *logger.Logger, reg *commands.Registry) *Terminal {
	return &Terminal{log: log, reg: reg}
}

// IsOpen reports whether the console is visible and capturing input.
func (t *Terminal) IsOpen() bool {
	return t.open
}

// SetFont sets the font used to draw the console. Zero texture ID = raylib default.
func (t *Terminal) SetFont(font rl.Font) {
	t.font = font
}

// Submit logs line and executes it. Errors are logged, not returned.
func (t *Terminal) Submit(line string) {
	t.log.Log(prompt + line)
	if len(t.history) == 0 || t.history[len(t.history)-1] != line {
		t.history = append(t.history, line)
		if len(t.history) > maxHistory {
			t.history = t.history[1:]
		}
	}
	t.recall = len(t.history)
	args, ok := commands.Parse(line)
	if !ok {
		return
	}
	if err := t.reg.Execute(args); err != nil {
		t.log.Log(err.Error())
	}
}

// Update handles ESC (toggle), and when open: typing, paste, history, backspace, enter.
// Call once per frame.
func (t *Terminal) Update() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		t.open = !t.open
	}
	if !t.open {
		return
	}
	// Paste: Ctrl+V (Windows/Linux) or Cmd+V (macOS)
	if rl.IsKeyPressed(rl.KeyV) && (rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) || rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)) {
		if pasted := rl.GetClipboardText(); pasted != "" {
			t.inputBuf += pasted
		}
	} else {
		for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
			t.inputBuf += string(rune(c))
		}
	}
	if rl.IsKeyPressed(rl.KeyUp) && t.recall > 0 {
		t.recall--
		t.inputBuf = t.history[t.recall]
	}
	if rl.IsKeyPressed(rl.KeyDown) && t.recall < len(t.history) {
		t.recall++
		t.inputBuf = ""
		if t.recall < len(t.history) {
			t.inputBuf = t.history[t.recall]
		}
	}
	if rl.IsKeyPressed(rl.KeyBackspace) && len(t.inputBuf) > 0 {
		_, size := utf8.DecodeLastRuneInString(t.inputBuf)
		t.inputBuf = t.inputBuf[:len(t.inputBuf)-size]
	}
	if (rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter)) && t.inputBuf != "" {
		line := t.inputBuf
		t.inputBuf = ""
		t.Submit(line)
	}
}

func (t *Terminal) drawText(s string, x, y int, c rl.Color) {
	if t.font.Texture.ID != 0 {
		rl.DrawTextEx(t.font, s, rl.NewVector2(float32(x), float32(y)), fontSize, 1, c)
		return
	}
	rl.DrawText(s, int32(x), int32(y), fontSize, c)
}

// Draw draws the input bar and the recent log lines above it when open.
func (t *Terminal) Draw() {
	if !t.open {
		return
	}
	screenW := int(rl.GetScreenWidth())
	screenH := int(rl.GetScreenHeight())
	barY := screenH - BarHeight
	if !rl.IsWindowFullscreen() {
		barY -= WindowedBarOffset
	}

	histHeight := maxLinesOnScreen * lineHeight
	histY := barY - histHeight
	if histY < 0 {
		histHeight = barY
		histY = 0
	}
	if histHeight > 0 {
		rl.DrawRectangle(0, int32(histY), int32(screenW), int32(histHeight), historyColor)
	}
	lines := t.log.Lines()
	start := max(0, len(lines)-maxLinesOnScreen)
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if len(line) > 200 {
			line = line[:197] + "..."
		}
		t.drawText(line, padding, histY+(i-start)*lineHeight+padding, rl.LightGray)
	}

	rl.DrawRectangle(0, int32(barY), int32(screenW), int32(BarHeight), barColor)
	rl.DrawRectangle(0, int32(barY), int32(screenW), 1, lineColor)
	t.drawText(prompt+t.inputBuf+"|", padding, barY+padding, rl.White)
}
