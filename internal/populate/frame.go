package populate

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Bar is one rectangular bar of the frame, centered at Position with extents Size.
type Bar struct {
	Position [3]float32
	Size     [3]float32
}

// Group is four bars at the corners of a square, rotated as a unit (Euler XYZ radians).
type Group struct {
	Rotation [3]float32
	Bars     [4]Bar
}

// FrameAssembly is three congruent bar groups, one aligned with each coordinate plane.
// Groups share geometry and differ only by rotation.
type FrameAssembly struct {
	Size      float32
	Thickness float32
	Groups    [3]Group
}

// groupRotations turns the base group (bars parallel to Y) into the other two planes.
var groupRotations = [3][3]float32{
	{0, 0, 0},
	{math32.Pi / 2, 0, 0},
	{0, 0, math32.Pi / 2},
}

// BuildFrameAssembly returns the 12-bar frame for a square of side size.
// Each bar is thickness x (size+thickness) x thickness so the corners overlap cleanly.
func BuildFrameAssembly(size, thickness float32) (FrameAssembly, error) {
	if !(size > 0) || !(thickness > 0) {
		return FrameAssembly{}, fmt.Errorf("%w: frame size %v and thickness %v must be positive", ErrInvalidArgument, size, thickness)
	}
	half := size * 0.5
	extent := [3]float32{thickness, size + thickness, thickness}
	base := [4]Bar{
		{Position: [3]float32{-half, 0, half}, Size: extent},
		{Position: [3]float32{half, 0, half}, Size: extent},
		{Position: [3]float32{-half, 0, -half}, Size: extent},
		{Position: [3]float32{half, 0, -half}, Size: extent},
	}
	fa := FrameAssembly{Size: size, Thickness: thickness}
	for i := range fa.Groups {
		fa.Groups[i] = Group{Rotation: groupRotations[i], Bars: base}
	}
	return fa, nil
}

// PlacedBar is a bar in world space: its group rotation already applied to the position.
type PlacedBar struct {
	Bar
	Rotation [3]float32
}

// Bars flattens the assembly into its 12 bars in world placement, group by group.
func (fa FrameAssembly) Bars() []PlacedBar {
	out := make([]PlacedBar, 0, len(fa.Groups)*4)
	for _, g := range fa.Groups {
		for _, b := range g.Bars {
			out = append(out, PlacedBar{
				Bar:      Bar{Position: RotateXYZ(b.Position, g.Rotation), Size: b.Size},
				Rotation: g.Rotation,
			})
		}
	}
	return out
}

// RotateXYZ rotates v by Euler angles applied X first, then Y, then Z.
func RotateXYZ(v, rot [3]float32) [3]float32 {
	x, y, z := v[0], v[1], v[2]

	s, c := math32.Sincos(rot[0])
	y, z = y*c-z*s, y*s+z*c

	s, c = math32.Sincos(rot[1])
	x, z = x*c+z*s, -x*s+z*c

	s, c = math32.Sincos(rot[2])
	x, y = x*c-y*s, x*s+y*c

	return [3]float32{x, y, z}
}
