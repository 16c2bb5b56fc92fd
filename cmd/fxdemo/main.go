package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fxdemo/internal/config"
	"fxdemo/internal/env"
	"fxdemo/internal/graphics"
	"fxdemo/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "path to the YAML config")
		addr       = flag.String("addr", "", "websocket control address, e.g. :8090 (overrides control.addr)")
		seed       = flag.Int64("seed", 0, "scene seed (overrides scene.seed; 0 keeps it)")
		count      = flag.Int("count", 0, "number of primitives (overrides scene.count; 0 keeps it)")
		showFPS    = flag.Bool("fps", false, "show the FPS overlay")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config: YAML, then .env / FXDEMO_* overrides, then flags ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
	}
	if n, err := env.Load(env.DefaultPath); err != nil {
		log.Warn().Err(err).Str("path", env.DefaultPath).Msg("env file not loaded")
	} else if n > 0 {
		log.Info().Int("vars", n).Str("path", env.DefaultPath).Msg("env file loaded")
	}
	if err := env.Apply(&cfg, os.LookupEnv); err != nil {
		log.Warn().Err(err).Msg("ignoring bad environment override")
	}
	if *addr != "" {
		cfg.Control.Addr = *addr
	}
	if *seed != 0 {
		cfg.Scene.Seed = *seed
	}
	if *count > 0 {
		cfg.Scene.Count = *count
	}
	if *showFPS {
		cfg.Debug.ShowFPS = true
	}

	lg := logger.New(cfg.Console.LogFile, os.Stdout)
	a, err := newApp(cfg, *configPath, lg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	graphics.Run(cfg.Window, a.update, a.draw, a.close)
}
