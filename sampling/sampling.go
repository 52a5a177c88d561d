// Package sampling provides seeded sample generators for points on the unit
// disk and the unit hemisphere.
package sampling

import (
	"math"
	"math/rand/v2"

	"github.com/grindrt/grind/types"
)

// Generator produces sample points on a fixed domain. The sequence is
// deterministic for a given seed.
type Generator interface {
	// Get the next sample.
	Sample() types.Vec3d

	// Reseed the generator.
	SetState(seed uint64)
}

// Second PCG stream word; keeps generators with equal seeds in sync.
const pcgStream = 0x9e3779b97f4a7c15

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// UnitDisk generates area-uniform points on the unit disk using the
// concentric mapping. The Z coordinate is always 0.
type UnitDisk struct {
	rng *rand.Rand
}

func NewUnitDisk(seed uint64) *UnitDisk {
	return &UnitDisk{rng: newRand(seed)}
}

func (d *UnitDisk) SetState(seed uint64) {
	d.rng = newRand(seed)
}

func (d *UnitDisk) Sample() types.Vec3d {
	x, y := ConcentricDisk(d.rng.Float64(), d.rng.Float64())
	return types.Vec3d{x, y, 0}
}

// ConcentricDisk maps a point of the unit square onto the unit disk
// preserving relative areas.
func ConcentricDisk(u1, u2 float64) (float64, float64) {
	sx, sy := 2*u1-1, 2*u2-1
	if sx == 0 && sy == 0 {
		return 0, 0
	}

	var r, theta float64
	if math.Abs(sx) > math.Abs(sy) {
		r, theta = sx, (math.Pi/4)*(sy/sx)
	} else {
		r, theta = sy, math.Pi/2-(math.Pi/4)*(sx/sy)
	}
	sin, cos := math.Sincos(theta)
	return r * cos, r * sin
}

// HemisphereDistribution selects how hemisphere directions are weighted.
type HemisphereDistribution uint8

const (
	Cosine HemisphereDistribution = iota
	Uniform
)

// Hemisphere generates unit directions around +Z.
type Hemisphere struct {
	rng  *rand.Rand
	dist HemisphereDistribution
}

func NewHemisphere(seed uint64, dist HemisphereDistribution) *Hemisphere {
	return &Hemisphere{rng: newRand(seed), dist: dist}
}

func (h *Hemisphere) SetState(seed uint64) {
	h.rng = newRand(seed)
}

func (h *Hemisphere) Sample() types.Vec3d {
	u1, u2 := h.rng.Float64(), h.rng.Float64()

	if h.dist == Uniform {
		z := u1
		r := math.Sqrt(math.Max(0, 1-z*z))
		sin, cos := math.Sincos(2 * math.Pi * u2)
		return types.Vec3d{r * cos, r * sin, z}
	}

	// Project disk samples up onto the hemisphere
	x, y := ConcentricDisk(u1, u2)
	z := math.Sqrt(math.Max(0, 1-x*x-y*y))
	return types.Vec3d{x, y, z}
}

// Stratified2D returns n*n jittered offsets in [0, 1)^2, one per cell of an
// n x n grid, in row-major order. A nil rng places each offset at its cell
// center.
func Stratified2D(n int, rng *rand.Rand) []types.Vec2d {
	if n <= 0 {
		return nil
	}

	inv := 1.0 / float64(n)
	offsets := make([]types.Vec2d, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			jx, jy := 0.5, 0.5
			if rng != nil {
				jx, jy = rng.Float64(), rng.Float64()
			}
			offsets = append(offsets, types.Vec2d{
				(float64(x) + jx) * inv,
				(float64(y) + jy) * inv,
			})
		}
	}
	return offsets
}

// NewRand returns a seeded source for Stratified2D.
func NewRand(seed uint64) *rand.Rand {
	return newRand(seed)
}
