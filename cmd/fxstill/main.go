// Command fxstill runs the effect pipeline over a still image without opening a window.
// Without -in it renders a flat preview of the configured scene, with depth, to start from.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fxdemo/internal/compositor/soft"
	"fxdemo/internal/config"
	"fxdemo/internal/pipeline"
	"fxdemo/internal/populate"
)

// setFlags collects repeated -set stage.param=value flags.
type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ",") }

func (s *setFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// ParseSet reads "stage.param=value". Value is a number or on/off/true/false.
func ParseSet(s string) (pipeline.Event, error) {
	target, value, ok := strings.Cut(s, "=")
	if !ok {
		return pipeline.Event{}, fmt.Errorf("%w: %q is not stage.param=value", pipeline.ErrInvalidArgument, s)
	}
	stage, param, ok := strings.Cut(strings.TrimSpace(target), ".")
	if !ok || stage == "" || param == "" {
		return pipeline.Event{}, fmt.Errorf("%w: %q is not stage.param=value", pipeline.ErrInvalidArgument, s)
	}
	var v float64
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true":
		v = 1
	case "off", "false":
		v = 0
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return pipeline.Event{}, fmt.Errorf("%w: value in %q", pipeline.ErrInvalidArgument, s)
		}
		v = f
	}
	return pipeline.Event{Stage: stage, Param: param, Value: v}, nil
}

func main() {
	var sets setFlags
	var (
		in         = flag.String("in", "", "input image (PNG or JPEG); empty renders the scene preview")
		depthPath  = flag.String("depth", "", "optional grayscale depth map for -in, black near, white at camera.far")
		out        = flag.String("out", "fxstill.png", "output PNG")
		configPath = flag.String("config", config.DefaultPath, "path to the YAML config")
		width      = flag.Int("width", 0, "preview width (default window.width)")
		height     = flag.Int("height", 0, "preview height (default window.height)")
		seed       = flag.Int64("seed", 1, "scene and film noise seed")
		at         = flag.Float64("time", 0, "time in seconds, animates film noise")
	)
	flag.Var(&sets, "set", "stage.param=value; repeatable, applied in order (use stage.enabled=on to enable)")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
	}
	pipe, err := pipeline.Configure(cfg.Pipeline)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline")
	}
	for _, s := range sets {
		ev, err := ParseSet(s)
		if err == nil {
			err = pipe.Apply(ev)
		}
		if err != nil {
			log.Fatal().Err(err).Str("set", s).Msg("invalid -set")
		}
	}

	frame, err := source(cfg, *in, *depthPath, *width, *height, *seed)
	if err != nil {
		log.Fatal().Err(err).Msg("source image")
	}
	frame.Time = *at
	frame.Seed = uint32(*seed)

	start := time.Now()
	result := pipeline.Composite[soft.Frame](pipe, soft.New(), frame)
	if err := imgio.Save(*out, result.Image, imgio.PNGEncoder()); err != nil {
		log.Fatal().Err(err).Str("out", *out).Msg("save failed")
	}
	b := result.Image.Bounds()
	log.Info().
		Str("out", *out).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Int("stages", len(pipe.Enabled())).
		Dur("took", time.Since(start)).
		Msg("still written")
}

func source(cfg config.Config, in, depthPath string, w, h int, seed int64) (soft.Frame, error) {
	if in == "" {
		if w <= 0 {
			w = cfg.Window.Width
		}
		if h <= 0 {
			h = cfg.Window.Height
		}
		opts, err := cfg.PopulateOptions()
		if err != nil {
			return soft.Frame{}, err
		}
		if cfg.Scene.Seed == 0 {
			opts.Seed = seed
		}
		instances, err := populate.PopulateWith(opts)
		if err != nil {
			return soft.Frame{}, err
		}
		bg, err := config.ParseColor(cfg.Scene.Background)
		if err != nil {
			return soft.Frame{}, err
		}
		cam := cfg.Camera
		return soft.Splat(instances, w, h, bg, soft.View{Position: cam.Position, Target: cam.Target, FOV: cam.FOV, Near: cam.Near, Far: cam.Far}), nil
	}

	img, err := imgio.Open(in)
	if err != nil {
		return soft.Frame{}, err
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	f := soft.Frame{Image: rgba}
	if depthPath != "" {
		dimg, err := imgio.Open(depthPath)
		if err != nil {
			return soft.Frame{}, err
		}
		if dimg.Bounds().Size() != rgba.Bounds().Size() {
			return soft.Frame{}, fmt.Errorf("depth map is %v, image is %v", dimg.Bounds().Size(), rgba.Bounds().Size())
		}
		f.Depth = soft.DepthFromImage(dimg, cfg.Camera.Far)
	}
	return f, nil
}
