package scene

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"

	"fxdemo/internal/assets"
	"fxdemo/internal/config"
	"fxdemo/internal/orbit"
	"fxdemo/internal/populate"
	"fxdemo/internal/primitives"
)

const (
	skyboxScale = 1000
	envKind     = "environment"
	modelKind   = "model"
)

var errUnsupportedAsset = errors.New("unsupported asset")

// ModelInfo describes the loaded model. Shadow flags are recorded for every mesh; the renderer
// does not draw shadow maps.
type ModelInfo struct {
	Path          string
	Meshes        int
	CastShadow    bool
	ReceiveShadow bool
}

// Scene holds the camera, the populated primitives, the frame assembly, lights, and the optional
// environment map and model. Update handles input and asset completion; Draw and DrawDepth
// render the colour and depth passes between BeginTextureMode/EndTextureMode.
type Scene struct {
	Camera rl.Camera3D
	orbit  *orbit.Controller
	far    float32

	// InputBlocked, when set and true, keeps pointer input away from the camera (panel, console).
	InputBlocked func() bool

	background color.RGBA
	instances  []populate.Instance
	frame      populate.FrameAssembly
	bars       []populate.PlacedBar
	frameColor color.RGBA

	prims   *primitives.Registry
	ambient [3]float32
	lights  []primitives.Light
	shadows int // directional lights flagged to cast shadows

	loader        *assets.Loader
	log           zerolog.Logger
	envBackground bool
	attachModel   bool

	env      rl.Texture2D
	envReady bool
	skybox   rl.Mesh
	skyMtl   rl.Material
	skyCam   int32
	skyTex   int32

	model      rl.Model
	modelReady bool
	modelInfo  ModelInfo
}

// New builds the scene from cfg: populates instances, assembles the frame, and queues the
// environment map and model on loader. Nothing touches the GPU until the first draw.
func New(cfg config.Config, loader *assets.Loader, log zerolog.Logger) (*Scene, error) {
	opts, err := cfg.PopulateOptions()
	if err != nil {
		return nil, err
	}
	instances, err := populate.PopulateWith(opts)
	if err != nil {
		return nil, fmt.Errorf("populate scene: %w", err)
	}
	frame, err := populate.BuildFrameAssembly(cfg.Scene.Frame.Size, cfg.Scene.Frame.Thickness)
	if err != nil {
		return nil, fmt.Errorf("frame assembly: %w", err)
	}
	bg, err := config.ParseColor(cfg.Scene.Background)
	if err != nil {
		return nil, err
	}
	frameColor, err := config.ParseColor(cfg.Scene.Frame.Color)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		background:    bg,
		instances:     instances,
		frame:         frame,
		bars:          frame.Bars(),
		frameColor:    frameColor,
		prims:         primitives.NewRegistry(),
		loader:        loader,
		log:           log,
		far:           cfg.Camera.Far,
		envBackground: cfg.Assets.EnvironmentBackground,
		attachModel:   cfg.Assets.AttachModel,
	}
	if err := s.setLights(cfg.Lights); err != nil {
		return nil, err
	}

	cam := cfg.Camera
	s.orbit = orbit.New(cam.Position,
		orbit.WithTarget(cam.Target),
		orbit.WithDistanceBounds(cam.MinDistance, cam.MaxDistance),
		orbit.WithSpeeds(cam.RotateSpeed, cam.PanSpeed, cam.ZoomSpeed),
	)
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = cam.FOV
	s.Camera.Projection = rl.CameraPerspective
	s.syncCamera()

	if a := cfg.Assets; a.EnvironmentMap != "" {
		assets.EnqueueRelease(loader, envKind, a.EnvironmentMap, fetched(loader, a.EnvironmentURL, decodeImage), s.finishEnvironment, rl.UnloadImage)
	}
	if a := cfg.Assets; a.Model != "" {
		assets.Enqueue(loader, modelKind, a.Model, fetched(loader, a.ModelURL, checkModelFile), s.finishModel)
	}

	s.log.Info().Int("instances", len(instances)).Int("bars", len(s.bars)).Int64("seed", opts.Seed).Msg("scene populated")
	return s, nil
}

func (s *Scene) setLights(l config.Lights) error {
	amb, err := config.ParseColor(l.Ambient.Color)
	if err != nil {
		return err
	}
	s.ambient = scaled(amb, l.Ambient.Intensity)
	for _, d := range l.Directional {
		c, err := config.ParseColor(d.Color)
		if err != nil {
			return err
		}
		p := d.Position
		n := math32.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
		if n == 0 {
			continue
		}
		s.lights = append(s.lights, primitives.Light{
			Direction: [3]float32{p[0] / n, p[1] / n, p[2] / n},
			Color:     scaled(c, d.Intensity),
		})
		if d.CastShadow {
			s.shadows++
		}
	}
	s.prims.SetLights(s.ambient, s.lights)
	return nil
}

func scaled(c color.RGBA, k float32) [3]float32 {
	return [3]float32{float32(c.R) / 255 * k, float32(c.G) / 255 * k, float32(c.B) / 255 * k}
}

// fetched wraps decode so a missing file is first downloaded from url.
func fetched[T any](l *assets.Loader, url string, decode func(string) (T, error)) func(string) (T, error) {
	return func(path string) (T, error) {
		p, err := assets.Fetch(l.Context(), nil, path, url)
		if err != nil {
			var zero T
			return zero, err
		}
		return decode(p)
	}
}

// decodeImage runs on a loader goroutine; raylib image loading is CPU only.
func decodeImage(path string) (*rl.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	img := rl.LoadImage(path)
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: cannot decode %s", errUnsupportedAsset, filepath.Base(path))
	}
	return img, nil
}

func checkModelFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb", ".obj", ".iqm", ".vox", ".m3d":
	default:
		return "", fmt.Errorf("%w: model format %q", errUnsupportedAsset, filepath.Ext(path))
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// finishEnvironment uploads the decoded map. It is kept as the scene environment and drawn as
// the background only when configured.
func (s *Scene) finishEnvironment(img *rl.Image) error {
	defer rl.UnloadImage(img)
	tex := rl.LoadTextureFromImage(img)
	if !rl.IsTextureValid(tex) {
		return fmt.Errorf("%w: texture upload failed", errUnsupportedAsset)
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	s.env = tex
	s.envReady = true
	if s.envBackground {
		s.ensureSkybox()
	}
	return nil
}

func (s *Scene) finishModel(path string) error {
	model := rl.LoadModel(path)
	if model.MeshCount == 0 {
		rl.UnloadModel(model)
		return fmt.Errorf("%w: %s has no meshes", errUnsupportedAsset, filepath.Base(path))
	}
	s.prims.PrepareModel(&model)
	s.model = model
	s.modelReady = true
	s.modelInfo = ModelInfo{Path: path, Meshes: int(model.MeshCount), CastShadow: true, ReceiveShadow: true}
	s.log.Info().Str("path", path).Int("meshes", s.modelInfo.Meshes).Bool("attached", s.attachModel).Msg("model ready")
	return nil
}

func (s *Scene) ensureSkybox() {
	shader := rl.LoadShaderFromMemory(equirectVS, equirectFS)
	if !rl.IsShaderValid(shader) {
		s.log.Warn().Msg("environment background shader failed to compile")
		return
	}
	s.skybox = rl.GenMeshCube(1, 1, 1)
	s.skyMtl = rl.LoadMaterialDefault()
	s.skyMtl.Shader = shader
	s.skyCam = rl.GetShaderLocation(shader, "cameraPosition")
	s.skyTex = rl.GetShaderLocation(shader, "skybox")
}

// Equirectangular environment shader: samples a 2D panorama by view direction.
const (
	equirectVS = `#version 330
in vec3 vertexPosition;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragWorldPos;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragWorldPos = worldPos.xyz;
  gl_Position = matProjection * matView * worldPos;
}
`
	equirectFS = `#version 330
in vec3 fragWorldPos;
out vec4 finalColor;
uniform sampler2D skybox;
uniform vec3 cameraPosition;
void main() {
  vec3 dir = normalize(fragWorldPos - cameraPosition);
  float lon = atan(dir.z, dir.x);
  float lat = asin(clamp(dir.y, -1.0, 1.0));
  float u = lon / 6.28318530718 + 0.5;
  float v = 0.5 - lat / 3.14159265359;
  vec3 hdr = texture(skybox, vec2(u, v)).rgb;
  finalColor = vec4(hdr / (hdr + vec3(1.0)), 1.0);
}
`
)

func (s *Scene) syncCamera() {
	p, t := s.orbit.Position(), s.orbit.Target()
	s.Camera.Position = rl.NewVector3(p[0], p[1], p[2])
	s.Camera.Target = rl.NewVector3(t[0], t[1], t[2])
	s.prims.SetView(p, s.far)
}

// Update runs once per frame: left drag orbits, right drag pans, the wheel zooms, and
// finished asset loads are handed over.
func (s *Scene) Update() {
	s.loader.Poll()
	if s.InputBlocked == nil || !s.InputBlocked() {
		d := rl.GetMouseDelta()
		switch {
		case rl.IsMouseButtonDown(rl.MouseButtonLeft):
			s.orbit.Rotate(d.X, d.Y)
		case rl.IsMouseButtonDown(rl.MouseButtonRight):
			s.orbit.Pan(d.X, d.Y)
		}
		if w := rl.GetMouseWheelMove(); w != 0 {
			s.orbit.Zoom(w)
		}
	}
	s.syncCamera()
}

// Background is the clear colour of the colour pass.
func (s *Scene) Background() color.RGBA { return s.background }

// Far is the distance the depth pass normalizes by.
func (s *Scene) Far() float32 { return s.far }

func (s *Scene) Instances() []populate.Instance { return s.instances }

func (s *Scene) Model() (ModelInfo, bool) { return s.modelInfo, s.modelReady }

// ShadowLights is the number of directional lights flagged to cast shadows.
func (s *Scene) ShadowLights() int { return s.shadows }

// Draw renders the colour pass. The caller clears the target.
func (s *Scene) Draw() {
	rl.BeginMode3D(s.Camera)
	if s.envReady && s.envBackground && rl.IsShaderValid(s.skyMtl.Shader) {
		s.drawSkybox()
	}
	s.prims.SetMode(primitives.ColorPass)
	s.drawGeometry()
	rl.EndMode3D()
}

// DrawDepth renders the depth pass. The caller clears the target to white (far).
func (s *Scene) DrawDepth() {
	rl.BeginMode3D(s.Camera)
	s.prims.SetMode(primitives.DepthPass)
	s.drawGeometry()
	rl.EndMode3D()
	s.prims.SetMode(primitives.ColorPass)
}

func (s *Scene) drawGeometry() {
	for _, inst := range s.instances {
		s.prims.DrawInstance(inst)
	}
	for _, b := range s.bars {
		s.prims.DrawBar(b, s.frameColor)
	}
	if s.modelReady && s.attachModel {
		s.prims.DrawModel(s.model)
	}
}

func (s *Scene) drawSkybox() {
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()
	pos := s.Camera.Position
	transform := rl.MatrixMultiply(rl.MatrixScale(skyboxScale, skyboxScale, skyboxScale), rl.MatrixTranslate(pos.X, pos.Y, pos.Z))
	if s.skyCam >= 0 {
		rl.SetShaderValueV(s.skyMtl.Shader, s.skyCam, []float32{pos.X, pos.Y, pos.Z}, rl.ShaderUniformVec3, 1)
	}
	if s.skyTex >= 0 {
		rl.SetShaderValueTexture(s.skyMtl.Shader, s.skyTex, s.env)
	}
	rl.DrawMesh(s.skybox, s.skyMtl, transform)
	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
}

// Unload frees GPU resources. Call before closing the window.
func (s *Scene) Unload() {
	s.prims.Unload()
	if s.envReady {
		rl.UnloadTexture(s.env)
	}
	if rl.IsShaderValid(s.skyMtl.Shader) {
		rl.UnloadShader(s.skyMtl.Shader)
		rl.UnloadMesh(&s.skybox)
	}
	if s.modelReady {
		rl.UnloadModel(s.model)
	}
}
