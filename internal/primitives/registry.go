// Package primitives owns the GPU meshes and materials the scene is drawn with: one mesh per
// populate.Kind, a bar mesh for the frame, and the basic, lit and depth shaders.
package primitives

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"fxdemo/internal/populate"
	"fxdemo/internal/shapes"
)

// Mode selects which material draws use.
type Mode int

const (
	ColorPass Mode = iota
	DepthPass      // linear view distance, see depthFS
)

// Light is a directional light; Color is premultiplied by intensity.
type Light struct {
	Direction [3]float32 // towards the light
	Color     [3]float32
}

const (
	sphereRings  = 16
	sphereSlices = 16
	coneSlices   = 16
)

// Registry maps kinds to meshes. Meshes are created on first use so that GPU resources are
// allocated after the window and OpenGL context exist.
type Registry struct {
	meshes map[populate.Kind]rl.Mesh
	octa   shapes.Mesh // backing memory for the uploaded octahedron

	bar     rl.Mesh
	barSize [3]float32
	hasBar  bool

	basic   rl.Material
	depth   rl.Material
	lit     rl.Shader
	loaded  bool
	locView int32
	locFar  int32

	mode    Mode
	viewPos [3]float32
	far     float32
	ambient [3]float32
	lights  []Light
}

// NewRegistry returns an empty registry. Nothing touches the GPU until the first draw.
func NewRegistry() *Registry {
	return &Registry{
		meshes:  make(map[populate.Kind]rl.Mesh),
		far:     1000,
		ambient: [3]float32{1, 1, 1},
	}
}

func (r *Registry) ensureMaterials() {
	if r.loaded {
		return
	}
	r.loaded = true

	r.basic = rl.LoadMaterialDefault()
	if s := rl.LoadShaderFromMemory(worldVS, basicFS); rl.IsShaderValid(s) {
		r.basic.Shader = s
	}
	r.depth = rl.LoadMaterialDefault()
	if s := rl.LoadShaderFromMemory(worldVS, depthFS); rl.IsShaderValid(s) {
		r.depth.Shader = s
		r.locView = rl.GetShaderLocation(s, "viewPos")
		r.locFar = rl.GetShaderLocation(s, "far")
	}
	r.lit = rl.LoadShaderFromMemory(worldVS, litFS)
}

// mesh returns the mesh for kind, generating it on first use. Sizes follow the unit shapes the
// populator scales: cube edge 1, cone radius 1 height 1, octahedron and sphere radius 1.
func (r *Registry) mesh(kind populate.Kind) rl.Mesh {
	if m, ok := r.meshes[kind]; ok {
		return m
	}
	var m rl.Mesh
	switch kind {
	case populate.Cube:
		m = rl.GenMeshCube(1, 1, 1)
	case populate.Cone:
		m = rl.GenMeshCone(1, 1, coneSlices)
	case populate.Octahedron:
		r.octa = shapes.Octahedron(1)
		m = rl.Mesh{
			VertexCount:   int32(r.octa.VertexCount()),
			TriangleCount: int32(r.octa.TriangleCount()),
			Vertices:      &r.octa.Vertices[0],
			Normals:       &r.octa.Normals[0],
			Texcoords:     &r.octa.Texcoords[0],
		}
		rl.UploadMesh(&m, false)
	default:
		m = rl.GenMeshSphere(1, sphereRings, sphereSlices)
	}
	r.meshes[kind] = m
	return m
}

// SetView sets the camera position and far plane for this frame's depth pass.
func (r *Registry) SetView(viewPos [3]float32, far float32) {
	r.viewPos = viewPos
	if far > 0 {
		r.far = far
	}
}

// SetLights sets the lighting used by lit materials (the loaded model). At most four
// directional lights are used.
func (r *Registry) SetLights(ambient [3]float32, lights []Light) {
	r.ambient = ambient
	if len(lights) > maxLights {
		lights = lights[:maxLights]
	}
	r.lights = append(r.lights[:0], lights...)
}

// SetMode switches every following draw to the colour or depth material.
func (r *Registry) SetMode(m Mode) {
	r.mode = m
	r.ensureMaterials()
	if m == DepthPass && rl.IsShaderValid(r.depth.Shader) {
		view := []float32{r.viewPos[0], r.viewPos[1], r.viewPos[2]}
		rl.SetShaderValueV(r.depth.Shader, r.locView, view, rl.ShaderUniformVec3, 1)
		rl.SetShaderValue(r.depth.Shader, r.locFar, []float32{r.far}, rl.ShaderUniformFloat)
	}
}

func (r *Registry) material(c color.RGBA) rl.Material {
	r.ensureMaterials()
	if r.mode == DepthPass {
		return r.depth
	}
	if albedo := r.basic.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.NewColor(c.R, c.G, c.B, c.A)
	}
	return r.basic
}

// rotation composes X, then Y, then Z, matching populate.RotateXYZ.
func rotation(rot [3]float32) rl.Matrix {
	return rl.MatrixMultiply(rl.MatrixMultiply(rl.MatrixRotateX(rot[0]), rl.MatrixRotateY(rot[1])), rl.MatrixRotateZ(rot[2]))
}

// DrawInstance draws one populated primitive. Must be called between BeginMode3D and EndMode3D.
func (r *Registry) DrawInstance(inst populate.Instance) {
	m := r.mesh(inst.Kind)
	s := inst.Scale
	transform := rl.MatrixMultiply(rl.MatrixScale(s, s, s), rotation(inst.Rotation))
	if inst.Kind == populate.Cone {
		// raylib cones stand on y=0; centre them like the other kinds.
		transform = rl.MatrixMultiply(rl.MatrixTranslate(0, -0.5, 0), transform)
	}
	transform = rl.MatrixMultiply(transform, rl.MatrixTranslate(inst.Position[0], inst.Position[1], inst.Position[2]))
	rl.DrawMesh(m, r.material(inst.Color), transform)
}

// DrawBar draws one frame bar. All bars of an assembly share a size, so the mesh is
// regenerated only when the size changes.
func (r *Registry) DrawBar(b populate.PlacedBar, c color.RGBA) {
	if !r.hasBar || r.barSize != b.Size {
		if r.hasBar {
			rl.UnloadMesh(&r.bar)
		}
		r.bar = rl.GenMeshCube(b.Size[0], b.Size[1], b.Size[2])
		r.barSize = b.Size
		r.hasBar = true
	}
	transform := rl.MatrixMultiply(rotation(b.Rotation), rl.MatrixTranslate(b.Position[0], b.Position[1], b.Position[2]))
	rl.DrawMesh(r.bar, r.material(c), transform)
}

// PrepareModel gives every material of a loaded model the lit shader.
func (r *Registry) PrepareModel(model *rl.Model) {
	r.ensureMaterials()
	if !rl.IsShaderValid(r.lit) {
		return
	}
	mats := model.GetMaterials()
	for i := range mats {
		mats[i].Shader = r.lit
	}
}

// DrawModel draws a prepared model at the origin.
func (r *Registry) DrawModel(model rl.Model) {
	r.ensureMaterials()
	if r.mode == DepthPass {
		for _, m := range model.GetMeshes() {
			rl.DrawMesh(m, r.depth, model.Transform)
		}
		return
	}
	r.setLitUniforms()
	rl.DrawModel(model, rl.NewVector3(0, 0, 0), 1, rl.White)
}

// setLitUniforms uploads ambient and lights (cgo-safe: local arrays).
func (r *Registry) setLitUniforms() {
	if !rl.IsShaderValid(r.lit) {
		return
	}
	dirs := make([]float32, 0, maxLights*3)
	cols := make([]float32, 0, maxLights*3)
	for _, l := range r.lights {
		dirs = append(dirs, l.Direction[:]...)
		cols = append(cols, l.Color[:]...)
	}
	amb := []float32{r.ambient[0], r.ambient[1], r.ambient[2]}
	rl.SetShaderValue(r.lit, rl.GetShaderLocation(r.lit, "ambient"), amb, rl.ShaderUniformVec3)
	rl.SetShaderValue(r.lit, rl.GetShaderLocation(r.lit, "lightCount"), []float32{float32(len(r.lights))}, rl.ShaderUniformFloat)
	if n := int32(len(r.lights)); n > 0 {
		rl.SetShaderValueV(r.lit, rl.GetShaderLocation(r.lit, "lightDir"), dirs, rl.ShaderUniformVec3, n)
		rl.SetShaderValueV(r.lit, rl.GetShaderLocation(r.lit, "lightColor"), cols, rl.ShaderUniformVec3, n)
	}
}

// Unload frees generated meshes and shaders.
func (r *Registry) Unload() {
	for k, m := range r.meshes {
		if k != populate.Octahedron {
			rl.UnloadMesh(&m)
		}
	}
	r.meshes = make(map[populate.Kind]rl.Mesh)
	if r.hasBar {
		rl.UnloadMesh(&r.bar)
		r.hasBar = false
	}
	if r.loaded {
		rl.UnloadShader(r.basic.Shader)
		rl.UnloadShader(r.depth.Shader)
		rl.UnloadShader(r.lit)
		r.loaded = false
	}
}
