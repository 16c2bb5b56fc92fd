// Package config loads and saves the demo's YAML settings: window, camera, scene contents,
// lights, assets, the effect pipeline, and the control surfaces.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"fxdemo/internal/pipeline"
	"fxdemo/internal/populate"
)

// DefaultPath is the config file used when no -config flag is given.
const DefaultPath = "config/fxdemo.yaml"

var ErrInvalidConfig = errors.New("invalid config")

type Window struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	FPS        int    `yaml:"fps"`
	MSAA       bool   `yaml:"msaa"`
	Fullscreen bool   `yaml:"fullscreen"`
}

type Camera struct {
	FOV         float32    `yaml:"fov"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Position    [3]float32 `yaml:"position,flow"`
	Target      [3]float32 `yaml:"target,flow"`
	MinDistance float32    `yaml:"min_distance"`
	MaxDistance float32    `yaml:"max_distance"`
	RotateSpeed float32    `yaml:"rotate_speed"`
	PanSpeed    float32    `yaml:"pan_speed"`
	ZoomSpeed   float32    `yaml:"zoom_speed"`
}

type Frame struct {
	Size      float32 `yaml:"size"`
	Thickness float32 `yaml:"thickness"`
	Color     string  `yaml:"color"`
}

type Scene struct {
	Background string   `yaml:"background"`
	Count      int      `yaml:"count"`
	Radius     float32  `yaml:"radius"`
	Kinds      []string `yaml:"kinds,flow"`
	Seed       int64    `yaml:"seed"` // 0 = time-based
	Frame      Frame    `yaml:"frame"`
}

type Ambient struct {
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
}

type Directional struct {
	Color      string     `yaml:"color"`
	Intensity  float32    `yaml:"intensity"`
	Position   [3]float32 `yaml:"position,flow"`
	CastShadow bool       `yaml:"cast_shadow"`
}

type Lights struct {
	Ambient     Ambient       `yaml:"ambient"`
	Directional []Directional `yaml:"directional"`
}

// Assets names the optional environment map and model. A *URL, when set, is fetched into the
// local path the first time that path is missing; zip bundles are extracted beside it.
type Assets struct {
	EnvironmentMap        string `yaml:"environment_map"`
	EnvironmentURL        string `yaml:"environment_url,omitempty"`
	EnvironmentBackground bool   `yaml:"environment_background"`
	Model                 string `yaml:"model"`
	ModelURL              string `yaml:"model_url,omitempty"`
	AttachModel           bool   `yaml:"attach_model"`
}

type Control struct {
	Addr string `yaml:"addr"` // empty disables the websocket server
}

type Console struct {
	LogFile string `yaml:"log_file"`
}

// UI styles the overlay. Font is a font file or a family name searched under assets/fonts;
// with FetchFont a family missing there is downloaded from Google Fonts. Stylesheet overrides
// the built-in panel CSS.
type UI struct {
	Font       string `yaml:"font"`
	FetchFont  bool   `yaml:"fetch_font"`
	Stylesheet string `yaml:"stylesheet"`
}

type Debug struct {
	ShowFPS    bool `yaml:"show_fps"`
	ShowStages bool `yaml:"show_stages"`
	ShowPanel  bool `yaml:"show_panel"`
}

type Config struct {
	Window   Window               `yaml:"window"`
	Camera   Camera               `yaml:"camera"`
	Scene    Scene                `yaml:"scene"`
	Lights   Lights               `yaml:"lights"`
	Assets   Assets               `yaml:"assets"`
	Pipeline []pipeline.StageSpec `yaml:"pipeline"`
	Control  Control              `yaml:"control"`
	Console  Console              `yaml:"console"`
	UI       UI                   `yaml:"ui"`
	Debug    Debug                `yaml:"debug"`
}

// Default returns the demo's stock settings.
func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "fxdemo", FPS: 60, MSAA: true},
		Camera: Camera{
			FOV:         45,
			Near:        1,
			Far:         1000,
			Position:    [3]float32{0, 0, 35},
			MinDistance: 2,
			MaxDistance: 200,
			RotateSpeed: 0.005,
			PanSpeed:    0.002,
			ZoomSpeed:   0.1,
		},
		Scene: Scene{
			Background: "#cc33ff",
			Count:      30,
			Radius:     10,
			Kinds:      []string{"cube", "cone", "octahedron", "sphere"},
			Frame:      Frame{Size: 20, Thickness: 0.5, Color: "#ff0000"},
		},
		Lights: Lights{
			Ambient: Ambient{Color: "#ffffff", Intensity: 2},
			Directional: []Directional{
				{Color: "#ffffff", Intensity: 0.5, Position: [3]float32{5, 20, 0}, CastShadow: true},
				{Color: "#ffffff", Intensity: 1, Position: [3]float32{5, 20, 0}},
			},
		},
		Assets: Assets{
			EnvironmentMap: "assets/satara_night_4k.hdr",
			Model:          "assets/model.gltf",
		},
		Pipeline: pipeline.DefaultSpecs(),
		Console:  Console{LogFile: "logs/fxdemo.txt"},
		Debug:    Debug{ShowPanel: true},
	}
}

// Load reads path over Default(). A missing file yields the defaults and no error;
// a malformed or invalid file yields the defaults and the error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Default(), fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := c.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path as YAML, creating the directory if needed.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy that shares no slices or maps with c.
func (c Config) Clone() Config {
	var out Config
	if err := copier.CopyWithOption(&out, &c, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched types, which cannot happen for identical structs.
		panic(err)
	}
	return out
}

// Validate checks the fields the binaries depend on.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera fov %v", ErrInvalidConfig, c.Camera.FOV)
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance {
		return fmt.Errorf("%w: camera distance bounds [%v, %v]", ErrInvalidConfig, c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if _, err := c.PopulateOptions(); err != nil {
		return err
	}
	for _, s := range []string{c.Scene.Background, c.Scene.Frame.Color, c.Lights.Ambient.Color} {
		if _, err := ParseColor(s); err != nil {
			return err
		}
	}
	for _, d := range c.Lights.Directional {
		if _, err := ParseColor(d.Color); err != nil {
			return err
		}
	}
	if _, err := pipeline.Configure(c.Pipeline); err != nil {
		return fmt.Errorf("%w: pipeline: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PopulateOptions converts the scene section for populate.PopulateWith.
func (c Config) PopulateOptions() (populate.Options, error) {
	kinds, err := populate.ParseKinds(c.Scene.Kinds)
	if err != nil {
		return populate.Options{}, fmt.Errorf("%w: scene kinds: %v", ErrInvalidConfig, err)
	}
	if c.Scene.Count <= 0 || c.Scene.Radius <= 0 {
		return populate.Options{}, fmt.Errorf("%w: scene count %d radius %v", ErrInvalidConfig, c.Scene.Count, c.Scene.Radius)
	}
	return populate.Options{Count: c.Scene.Count, Radius: c.Scene.Radius, Kinds: kinds, Seed: c.Scene.Seed}, nil
}

// ParseColor accepts #rrggbb, #rgb and 0xrrggbb.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(h, "#"):
		h = h[1:]
	case strings.HasPrefix(h, "0x"), strings.HasPrefix(h, "0X"):
		h = h[2:]
	}
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalidConfig, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalidConfig, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
