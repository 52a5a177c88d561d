package scene

import (
	"math"

	"github.com/grindrt/grind/types"
)

// Ray is a parametric half line. Rays are meant to live on the stack of the
// tracing loop and be reinitialised with Reset between samples.
type Ray struct {
	Origin types.Vec3d

	// Caller-normalized direction.
	Dir types.Vec3d

	// Valid parametric range.
	MinT float64
	MaxT float64

	// Number of bounces along the traced path.
	PathLength int
}

// Create a new ray covering [0, +Inf).
func NewRay(origin, dir types.Vec3d) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		MaxT:   math.Inf(1),
	}
}

// Reinitialise the ray in place. MinT is preserved.
func (r *Ray) Reset(origin, dir types.Vec3d) {
	r.Origin = origin
	r.Dir = dir
	r.MaxT = math.Inf(1)
	r.PathLength = 0
}

// Get the point at parameter t along the ray.
func (r *Ray) At(t float64) types.Vec3d {
	return r.Origin.Add(r.Dir.Mul(t))
}

// HitRecord collects the result of intersection queries. It is reused across
// queries and must be Reset before each new one.
type HitRecord struct {
	// Closest hit parameter; +Inf when nothing was hit.
	Dist float64

	IntersectPos types.Vec3d

	// Frame anchored at the hit point.
	HitBasis types.OrthonormalBasis

	// Material of the hit surface; -1 when unset.
	HitMaterialIndex int

	// The primitive that produced the hit. Not owned by the record.
	HitPrimitive Primitive

	// Barycentric coordinates of the hit point along the triangle edges.
	B1, B2 float64
}

// Create a reset hit record.
func NewHitRecord() HitRecord {
	var h HitRecord
	h.Reset()
	return h
}

// Clear any previous hit.
func (h *HitRecord) Reset() {
	h.Dist = math.Inf(1)
	h.IntersectPos = types.Vec3d{}
	h.HitBasis = types.OrthonormalBasis{}
	h.HitMaterialIndex = -1
	h.HitPrimitive = nil
	h.B1, h.B2 = 0, 0
}

// Returns true if the record holds a hit.
func (h *HitRecord) HasHit() bool {
	return h.HitPrimitive != nil
}
