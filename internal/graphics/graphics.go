package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"fxdemo/internal/config"
)

// Run opens the window described by w and drives the main loop. Each frame it calls update
// (input, control events, scene), then draw between BeginDrawing and EndDrawing. draw owns the
// whole framebuffer: the composited frame is presented first, overlays after.
// unload, if non-nil, runs after the loop while the OpenGL context still exists.
// ESC toggles the console rather than quitting; close via the window button.
func Run(w config.Window, update, draw, unload func()) {
	var flags uint32 = rl.FlagWindowResizable
	if w.MSAA {
		flags |= rl.FlagMsaa4xHint
	}
	if w.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	width, height := int32(w.Width), int32(w.Height)
	rl.InitWindow(width, height, w.Title)
	defer rl.CloseWindow()
	if w.Fullscreen {
		rl.SetWindowSize(rl.GetMonitorWidth(0), rl.GetMonitorHeight(0))
	}

	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(int32(w.FPS))

	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		draw()
		rl.EndDrawing()
	}
	if unload != nil {
		unload()
	}
}
