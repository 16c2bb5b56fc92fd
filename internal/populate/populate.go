package populate

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/chewxy/math32"
)

// ErrInvalidArgument is returned for population or frame parameters the caller should have validated.
var ErrInvalidArgument = errors.New("invalid argument")

const twoPi = 2 * math32.Pi

// Scale multipliers are drawn from [minScale, minScale+1).
const minScale = 0.75

// scale maps u in [0, 1) onto [minScale, minScale+1). Rounding to float32 can land on the
// upper bound; that case becomes the largest float32 below it.
func scale(u float64) float32 {
	s := float32(minScale + u)
	if s >= minScale+1 {
		s = math.Nextafter32(minScale+1, 0)
	}
	return s
}

// Kind is the geometry of one placed primitive.
type Kind int

const (
	Cube Kind = iota
	Cone
	Octahedron
	Sphere
)

var kindNames = [...]string{"cube", "cone", "octahedron", "sphere"}

// AllKinds lists every kind in the order the demo cycles through them.
var AllKinds = []Kind{Cube, Cone, Octahedron, Sphere}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a kind name ("cube", "cone", "octahedron", "sphere") to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown geometry kind %q", ErrInvalidArgument, name)
}

// ParseKinds parses a list of kind names, keeping order and duplicates.
func ParseKinds(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Instance is one procedurally placed primitive. Rotation is Euler XYZ in radians.
type Instance struct {
	Kind     Kind
	Scale    float32
	Rotation [3]float32
	Position [3]float32
	Color    color.RGBA
}

// Options controls PopulateWith. Seed == 0 uses a time-based seed.
type Options struct {
	Count  int
	Radius float32
	Kinds  []Kind
	Seed   int64
}

// DefaultOptions returns the demo population: 30 primitives inside a sphere of radius 10.
func DefaultOptions() Options {
	return Options{
		Count:  30,
		Radius: 10,
		Kinds:  append([]Kind(nil), AllKinds...),
	}
}

// NewRand returns a generator for seed, or a time-seeded one when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// PopulateWith builds a generator from opts.Seed and calls Populate.
func PopulateWith(opts Options) ([]Instance, error) {
	return Populate(NewRand(opts.Seed), opts.Count, opts.Radius, opts.Kinds)
}

// Populate places count primitives uniformly by volume inside a sphere of the given radius.
// Kinds are assigned round robin: instance i gets kinds[i%len(kinds)].
func Populate(rng *rand.Rand, count int, radius float32, kinds []Kind) ([]Instance, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: no geometry kinds", ErrInvalidArgument)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: count %d must be positive", ErrInvalidArgument, count)
	}
	if !(radius > 0) || math32.IsInf(radius, 1) {
		return nil, fmt.Errorf("%w: radius %v must be positive", ErrInvalidArgument, radius)
	}

	out := make([]Instance, count)
	for i := range out {
		inst := &out[i]
		inst.Kind = kinds[i%len(kinds)]
		inst.Rotation = [3]float32{
			rng.Float32() * twoPi,
			rng.Float32() * twoPi,
			rng.Float32() * twoPi,
		}
		inst.Scale = scale(rng.Float64())
		inst.Position = SampleBall(rng, radius)
		rgb := rng.Int63n(0x1000000)
		inst.Color = color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 255}
	}
	return out, nil
}

// SampleBall returns a point uniformly distributed by volume inside a sphere of radius r.
// cos(theta) is drawn uniformly so directions carry no latitude bias, and the radial
// distance is the cube root of a uniform draw so density does not pile up at the center.
func SampleBall(rng *rand.Rand, r float32) [3]float32 {
	phi := rng.Float32() * twoPi
	cosTheta := rng.Float32()*2 - 1
	u := rng.Float32()

	theta := math32.Acos(cosTheta)
	d := math32.Cbrt(u) * r

	sinTheta := math32.Sin(theta)
	sinPhi, cosPhi := math32.Sincos(phi)
	return [3]float32{
		d * sinTheta * cosPhi,
		d * sinTheta * sinPhi,
		d * math32.Cos(theta),
	}
}
