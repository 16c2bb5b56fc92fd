// Package gpu runs the effect pipeline on the GPU: the scene is drawn into an offscreen target,
// then every enabled stage is one full-screen shader pass between two ping-pong targets.
package gpu

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"

	"fxdemo/internal/pipeline"
)

// Scene is what the render stage draws.
type Scene interface {
	Draw()
	DrawDepth()
	Background() color.RGBA
	Far() float32
}

// Frame carries one composite. Output is set by Composite and stays valid until the next call.
type Frame struct {
	Scene  Scene
	Time   float32
	Output rl.Texture2D
}

// Compositor implements pipeline.Compositor[Frame]. It must only be used on the thread that
// owns the OpenGL context.
type Compositor struct {
	log     zerolog.Logger
	width   int32
	height  int32
	targets [2]rl.RenderTexture2D
	depth   rl.RenderTexture2D
	sized   bool
	passes  map[pipeline.Kind]*pass
	failed  map[pipeline.Kind]bool
}

var _ pipeline.Compositor[Frame] = (*Compositor)(nil)

func New(log zerolog.Logger) *Compositor {
	return &Compositor{
		log:    log,
		passes: make(map[pipeline.Kind]*pass),
		failed: make(map[pipeline.Kind]bool),
	}
}

type pass struct {
	shader rl.Shader
	locs   map[string]int32
}

func (p *pass) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := rl.GetShaderLocation(p.shader, name)
	p.locs[name] = l
	return l
}

func (p *pass) set(name string, v ...float32) {
	l := p.loc(name)
	if l < 0 {
		return
	}
	switch len(v) {
	case 1:
		rl.SetShaderValue(p.shader, l, v, rl.ShaderUniformFloat)
	case 2:
		rl.SetShaderValue(p.shader, l, v, rl.ShaderUniformVec2)
	case 3:
		rl.SetShaderValue(p.shader, l, v, rl.ShaderUniformVec3)
	}
}

func (p *pass) texture(name string, tex rl.Texture2D) {
	if l := p.loc(name); l >= 0 {
		rl.SetShaderValueTexture(p.shader, l, tex)
	}
}

// pass compiles the shader for kind on first use. A kind whose shader fails to compile is
// logged once and skipped from then on.
func (c *Compositor) pass(kind pipeline.Kind) *pass {
	if p, ok := c.passes[kind]; ok {
		return p
	}
	if c.failed[kind] {
		return nil
	}
	fs, ok := fragmentShaders[kind]
	if !ok {
		return nil
	}
	shader := rl.LoadShaderFromMemory(quadVS, fs)
	if !rl.IsShaderValid(shader) {
		c.failed[kind] = true
		c.log.Error().Stringer("kind", kind).Msg("effect shader failed to compile, stage skipped")
		return nil
	}
	p := &pass{shader: shader, locs: make(map[string]int32)}
	c.passes[kind] = p
	return p
}

// resize (re)creates the targets when the render size changes.
func (c *Compositor) resize() {
	w, h := int32(rl.GetRenderWidth()), int32(rl.GetRenderHeight())
	if w <= 0 || h <= 0 {
		w, h = int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	}
	if c.sized && w == c.width && h == c.height {
		return
	}
	c.unloadTargets()
	for i := range c.targets {
		c.targets[i] = rl.LoadRenderTexture(w, h)
		rl.SetTextureFilter(c.targets[i].Texture, rl.FilterBilinear)
	}
	c.depth = rl.LoadRenderTexture(w, h)
	rl.SetTextureFilter(c.depth.Texture, rl.FilterPoint)
	c.width, c.height, c.sized = w, h, true
	c.log.Debug().Int32("width", w).Int32("height", h).Msg("compositor targets resized")
}

func (c *Compositor) unloadTargets() {
	if !c.sized {
		return
	}
	for _, t := range c.targets {
		rl.UnloadRenderTexture(t)
	}
	rl.UnloadRenderTexture(c.depth)
	c.sized = false
}

// Composite renders f.Scene and the stages. The render stage draws the scene into the current
// target; stages before it (if any) work on the cleared background.
func (c *Compositor) Composite(f Frame, stages []pipeline.Stage) Frame {
	c.resize()
	bg := f.Scene.Background()
	clear := rl.NewColor(bg.R, bg.G, bg.B, 255)

	cur := 0
	rl.BeginTextureMode(c.targets[cur])
	rl.ClearBackground(clear)
	rl.EndTextureMode()

	depth := pipeline.UsesDepth(stages)
	for _, s := range stages {
		if s.Kind() == pipeline.Render {
			rl.BeginTextureMode(c.targets[cur])
			rl.ClearBackground(clear)
			f.Scene.Draw()
			rl.EndTextureMode()
			if depth {
				rl.BeginTextureMode(c.depth)
				rl.ClearBackground(rl.White)
				f.Scene.DrawDepth()
				rl.EndTextureMode()
			}
			continue
		}
		p := c.pass(s.Kind())
		if p == nil {
			continue
		}
		c.run(p, s, f, c.targets[cur], c.targets[1-cur])
		cur = 1 - cur
	}
	f.Output = c.targets[cur].Texture
	return f
}

func (c *Compositor) run(p *pass, s pipeline.Stage, f Frame, src, dst rl.RenderTexture2D) {
	rl.BeginTextureMode(dst)
	rl.ClearBackground(rl.Blank)
	rl.BeginShaderMode(p.shader)
	p.set("resolution", float32(c.width), float32(c.height))
	c.uniforms(p, s, f)
	drawFlipped(src.Texture, c.width, c.height)
	rl.EndShaderMode()
	rl.EndTextureMode()
}

func (c *Compositor) uniforms(p *pass, s pipeline.Stage, f Frame) {
	switch s.Kind() {
	case pipeline.Bloom:
		b := s.Bloom()
		p.set("strength", b.Strength)
		p.set("radius", b.Radius)
		p.set("threshold", b.Threshold)
		p.set("smoothing", b.Smoothing)
	case pipeline.Pixelation:
		px := s.Pixelation()
		p.set("pixelSize", float32(px.PixelSize))
		p.set("depthEdgeStrength", px.DepthEdgeStrength)
		c.bindDepth(p, f)
	case pipeline.HueSaturation:
		hs := s.HueSaturation()
		p.set("hue", hs.Hue)
		p.set("saturation", hs.Saturation)
	case pipeline.BrightnessContrast:
		bc := s.BrightnessContrast()
		p.set("brightness", bc.Brightness)
		p.set("contrast", bc.Contrast)
	case pipeline.Vignette:
		v := s.Vignette()
		p.set("darkness", v.Darkness)
		p.set("offset", v.Offset)
	case pipeline.FilmNoise:
		n := s.FilmNoise()
		gray := float32(0)
		if n.Grayscale {
			gray = 1
		}
		p.set("intensity", n.Intensity)
		p.set("grayscale", gray)
		p.set("time", f.Time)
	case pipeline.ChromaticAberration:
		ca := s.ChromaticAberration()
		p.set("amount", ca.Amount)
		p.set("angle", ca.Angle)
	case pipeline.DepthOfField:
		d := s.DepthOfField()
		p.set("focus", d.Focus)
		p.set("maxblur", d.Blur)
		p.set("aperture", d.Aperture)
		c.bindDepth(p, f)
	}
}

func (c *Compositor) bindDepth(p *pass, f Frame) {
	p.texture("depthMap", c.depth.Texture)
	p.set("far", f.Scene.Far())
}

// drawFlipped draws a render texture upright; OpenGL targets are stored bottom-up.
func drawFlipped(tex rl.Texture2D, w, h int32) {
	src := rl.NewRectangle(0, 0, float32(tex.Width), -float32(tex.Height))
	dst := rl.NewRectangle(0, 0, float32(w), float32(h))
	rl.DrawTexturePro(tex, src, dst, rl.NewVector2(0, 0), 0, rl.White)
}

// Present draws the composited output to the current framebuffer. Call between
// BeginDrawing and EndDrawing.
func (c *Compositor) Present(f Frame) {
	if f.Output.ID == 0 {
		return
	}
	drawFlipped(f.Output, int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
}

// Unload frees targets and shaders.
func (c *Compositor) Unload() {
	c.unloadTargets()
	for k, p := range c.passes {
		rl.UnloadShader(p.shader)
		delete(c.passes, k)
	}
}
