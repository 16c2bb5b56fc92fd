package main

import (
	"context"
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"

	"fxdemo/internal/assets"
	"fxdemo/internal/commands"
	"fxdemo/internal/compositor/gpu"
	"fxdemo/internal/config"
	"fxdemo/internal/control"
	"fxdemo/internal/debug"
	"fxdemo/internal/fonts"
	"fxdemo/internal/googlefonts"
	"fxdemo/internal/logger"
	"fxdemo/internal/pipeline"
	"fxdemo/internal/scene"
	"fxdemo/internal/terminal"
	"fxdemo/internal/ui"
)

const busCapacity = 256

// app owns everything that lives on the render thread.
type app struct {
	cfg     config.Config
	cfgPath string
	log     *logger.Logger
	zl      zerolog.Logger

	pipe   *pipeline.Pipeline
	bus    *control.Bus
	server *control.Server
	loader *assets.Loader
	scene  *scene.Scene
	comp   *gpu.Compositor

	ui    *ui.Engine
	panel *ui.Panel
	term  *terminal.Terminal
	dbg   *debug.Debug

	gpuReady bool
	start    time.Time
}

func newApp(cfg config.Config, cfgPath string, lg *logger.Logger) (*app, error) {
	zl := *lg.Zerolog()
	pipe, err := pipeline.Configure(cfg.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	a := &app{
		cfg:     cfg,
		cfgPath: cfgPath,
		log:     lg,
		zl:      zl,
		pipe:    pipe,
		bus:     control.NewBus(busCapacity, zl.With().Str("component", "bus").Logger()),
		loader:  assets.NewLoader(zl.With().Str("component", "assets").Logger()),
		comp:    gpu.New(zl.With().Str("component", "compositor").Logger()),
		ui:      ui.New(),
		dbg:     debug.New(),
		start:   time.Now(),
	}
	a.server = control.NewServer(a.bus, zl.With().Str("component", "control").Logger())
	a.scene, err = scene.New(cfg, a.loader, zl.With().Str("component", "scene").Logger())
	if err != nil {
		return nil, err
	}
	a.panel = ui.NewPanel(a.ui)
	a.panel.SetVisible(cfg.Debug.ShowPanel)
	a.dbg.ShowFPS = cfg.Debug.ShowFPS
	a.dbg.ShowStages = cfg.Debug.ShowStages

	reg := commands.NewRegistry()
	commands.RegisterEffects(reg, commands.Env{
		Pipeline: func() *pipeline.Pipeline { return a.pipe },
		Send:     a.bus.Send,
		Save:     a.save,
		Print:    a.log.Log,
		SetFPS:   func(show bool) { a.dbg.ShowFPS = show },
		SetPanel: a.panel.SetVisible,
	})
	reg.Register("stages", "stages <on|off>", nil, func(args []string) error {
		if len(args) != 1 {
			return commands.ErrUsage
		}
		v, err := commands.ParseValue(args[0])
		if err != nil {
			return err
		}
		a.dbg.ShowStages = v != 0
		return nil
	})
	a.term = terminal.New(lg, reg)
	a.scene.InputBlocked = func() bool { return a.term.IsOpen() || a.panel.Hovered() }

	a.server.Publish(a.pipe.Stages())
	if addr := cfg.Control.Addr; addr != "" {
		go func() {
			if err := a.server.ListenAndServe(addr); err != nil {
				a.zl.Error().Err(err).Str("addr", addr).Msg("control server stopped")
			}
		}()
	}
	a.zl.Info().Int("stages", a.pipe.Len()).Str("chain", debug.StageLine(a.pipe.Enabled())).Msg("pipeline configured")
	return a, nil
}

// save writes the running config, with the current pipeline state, to path or the loaded path.
func (a *app) save(path string) error {
	if path == "" {
		path = a.cfgPath
	}
	out := a.cfg.Clone()
	out.Pipeline = a.pipe.Specs()
	if err := config.Save(path, out); err != nil {
		return err
	}
	a.zl.Info().Str("path", path).Msg("config saved")
	return nil
}

// initGPU runs on the first frame, once the window and OpenGL context exist.
func (a *app) initGPU() {
	a.gpuReady = true
	if css := a.cfg.UI.Stylesheet; css != "" {
		if err := a.ui.LoadCSS(css); err != nil {
			a.zl.Warn().Err(err).Str("path", css).Msg("stylesheet not loaded; using built-in")
		}
	}
	name := a.cfg.UI.Font
	if name == "" {
		return
	}
	path, err := fonts.Find(fonts.BaseDirs(), name)
	if err != nil && a.cfg.UI.FetchFont {
		gf := googlefonts.New()
		fetch := func(family string) (string, error) {
			return fonts.Fetch(a.loader.Context(), gf, family, fonts.BaseDirs()[0])
		}
		assets.Enqueue(a.loader, "font", name, fetch, a.useFont)
		return
	}
	if err == nil {
		err = a.useFont(path)
	}
	if err != nil {
		a.zl.Warn().Err(err).Str("font", name).Msg("font not loaded; using raylib default")
	}
}

// useFont loads path and hands the font to every overlay. It runs on the render thread.
func (a *app) useFont(path string) error {
	if err := a.ui.LoadFont(path); err != nil {
		return err
	}
	a.term.SetFont(a.ui.Font())
	a.dbg.SetFont(a.ui.Font())
	return nil
}

func (a *app) update() {
	if !a.gpuReady {
		a.initGPU()
	}
	a.term.Update()
	if !a.term.IsOpen() && rl.IsKeyPressed(rl.KeyH) {
		a.panel.SetVisible(!a.panel.Visible())
	}
	if err := a.panel.Update(a.pipe.Stages(), a.bus.Send); err != nil {
		a.zl.Warn().Err(err).Msg("panel event dropped")
	}
	if a.bus.Drain(a.pipe.Apply) > 0 {
		a.server.Publish(a.pipe.Stages())
	}
	a.scene.Update()
}

func (a *app) draw() {
	frame := gpu.Frame{Scene: a.scene, Time: float32(time.Since(a.start).Seconds())}
	frame = pipeline.Composite[gpu.Frame](a.pipe, a.comp, frame)
	a.comp.Present(frame)
	a.panel.Draw(a.pipe.Stages())
	a.term.Draw()
	a.dbg.Draw(a.pipe.Enabled())
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.zl.Warn().Err(err).Msg("control server shutdown")
	}
	a.loader.Close()
	a.comp.Unload()
	a.scene.Unload()
	a.ui.Unload()
}
