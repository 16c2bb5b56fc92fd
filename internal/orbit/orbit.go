// Package orbit implements an orbit/pan/zoom camera rig around a target point.
// Position is kept as spherical coordinates (radius, azimuth about +Y, elevation above the
// XZ plane) relative to the target and recomputed after every change.
package orbit

import "github.com/chewxy/math32"

// elevationLimit keeps the camera off the poles so the view basis stays defined.
const elevationLimit = math32.Pi/2 - 0.01

type Controller struct {
	target   [3]float32
	position [3]float32

	radius    float32
	azimuth   float32
	elevation float32

	minRadius float32
	maxRadius float32

	rotateSpeed float32 // radians per pointer pixel
	panSpeed    float32 // world units per pixel per unit of radius
	zoomSpeed   float32 // log-radius per wheel step
}

type Option func(*Controller)

// WithTarget sets the orbit centre. Defaults to the origin.
func WithTarget(t [3]float32) Option {
	return func(c *Controller) { c.target = t }
}

// WithDistanceBounds clamps the radius to [min, max].
func WithDistanceBounds(min, max float32) Option {
	return func(c *Controller) {
		c.minRadius = min
		c.maxRadius = max
	}
}

func WithSpeeds(rotate, pan, zoom float32) Option {
	return func(c *Controller) {
		c.rotateSpeed = rotate
		c.panSpeed = pan
		c.zoomSpeed = zoom
	}
}

// New places the camera at position looking at the target.
func New(position [3]float32, options ...Option) *Controller {
	c := &Controller{
		minRadius:   1,
		maxRadius:   1000,
		rotateSpeed: 0.005,
		panSpeed:    0.002,
		zoomSpeed:   0.1,
	}
	for _, option := range options {
		option(c)
	}

	dx := position[0] - c.target[0]
	dy := position[1] - c.target[1]
	dz := position[2] - c.target[2]
	c.radius = math32.Sqrt(dx*dx + dy*dy + dz*dz)
	if c.radius > 1e-6 {
		c.azimuth = math32.Atan2(dx, dz)
		c.elevation = math32.Asin(dy / c.radius)
	}
	c.clamp()
	c.update()
	return c
}

func (c *Controller) clamp() {
	if c.radius < c.minRadius {
		c.radius = c.minRadius
	}
	if c.radius > c.maxRadius {
		c.radius = c.maxRadius
	}
	if c.elevation > elevationLimit {
		c.elevation = elevationLimit
	}
	if c.elevation < -elevationLimit {
		c.elevation = -elevationLimit
	}
}

func (c *Controller) update() {
	sinE, cosE := math32.Sincos(c.elevation)
	sinA, cosA := math32.Sincos(c.azimuth)
	c.position[0] = c.target[0] + c.radius*cosE*sinA
	c.position[1] = c.target[1] + c.radius*sinE
	c.position[2] = c.target[2] + c.radius*cosE*cosA
}

// Rotate orbits by a pointer drag of (dx, dy) pixels. Dragging right swings the camera left
// around the target; dragging down raises it.
func (c *Controller) Rotate(dx, dy float32) {
	c.azimuth -= dx * c.rotateSpeed
	c.elevation += dy * c.rotateSpeed
	c.azimuth = math32.Mod(c.azimuth, 2*math32.Pi)
	c.clamp()
	c.update()
}

// Pan slides target and camera together in the view plane. The step scales with radius so
// the scene tracks the pointer at any distance.
func (c *Controller) Pan(dx, dy float32) {
	right, up := c.axes()
	step := c.panSpeed * c.radius
	for i := 0; i < 3; i++ {
		c.target[i] += (-dx*right[i] + dy*up[i]) * step
	}
	c.update()
}

// Zoom dollies by wheel steps; positive moves closer.
func (c *Controller) Zoom(steps float32) {
	c.radius *= math32.Exp(-steps * c.zoomSpeed)
	c.clamp()
	c.update()
}

// axes returns the camera's right and up unit vectors.
func (c *Controller) axes() (right, up [3]float32) {
	sinE, cosE := math32.Sincos(c.elevation)
	sinA, cosA := math32.Sincos(c.azimuth)
	right = [3]float32{cosA, 0, -sinA}
	up = [3]float32{-sinE * sinA, cosE, -sinE * cosA}
	return right, up
}

func (c *Controller) Position() [3]float32 { return c.position }
func (c *Controller) Target() [3]float32   { return c.target }
func (c *Controller) Radius() float32      { return c.radius }
func (c *Controller) Azimuth() float32     { return c.azimuth }
func (c *Controller) Elevation() float32   { return c.elevation }
