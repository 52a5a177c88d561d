package scene

import "github.com/grindrt/grind/types"

// Primitive is implemented by every geometric object that can be placed in
// the scene graph. Aggregates such as TriMesh report CanIntersect()==false
// and must be refined into triangles before ray testing.
type Primitive interface {
	// Get the primitive AABB.
	BBox() BoundingBox

	// Returns true if Intersect can be called on this primitive.
	CanIntersect() bool

	// Test the ray against the primitive and fill hit on success.
	Intersect(ray *Ray, hit *HitRecord) bool
}

// Fail with ErrNotIntersectable if p needs refinement.
func RequireIntersectable(p Primitive) error {
	if p == nil {
		return ErrNilPrimitive
	}
	if !p.CanIntersect() {
		return ErrNotIntersectable
	}
	return nil
}

// A triangle primitive.
type Triangle struct {
	V0, V1, V2 types.Vec3d

	// Optional per-vertex texture coordinates and normals.
	UV         [3]types.Vec2d
	Normals    [3]types.Vec3d
	HasUV      bool
	HasNormals bool

	MaterialIndex int

	bbox BoundingBox
}

// Create new triangle primitive.
func NewTriangle(v0, v1, v2 types.Vec3d) *Triangle {
	return &Triangle{
		V0:            v0,
		V1:            v1,
		V2:            v2,
		MaterialIndex: -1,
		bbox:          NewBoundingBoxFromPoints(v0, v1, v2),
	}
}

func (tri *Triangle) BBox() BoundingBox {
	return tri.bbox
}

func (tri *Triangle) CanIntersect() bool {
	return true
}

func (tri *Triangle) SetMaterialIndex(index int) {
	tri.MaterialIndex = index
}

// Intersect solves for the barycentric coordinates (b1, b2) and ray
// parameter t using Cramer's rule. A zero determinant is rejected exactly;
// near-parallel rays are accepted.
func (tri *Triangle) Intersect(ray *Ray, hit *HitRecord) bool {
	e1 := tri.V1.Sub(tri.V0)
	e2 := tri.V2.Sub(tri.V0)
	s1 := ray.Dir.Cross(e2)
	div := s1.Dot(e1)
	if div == 0 {
		return false
	}
	invDiv := 1.0 / div

	d := ray.Origin.Sub(tri.V0)
	b1 := d.Dot(s1) * invDiv
	if b1 < 0 || b1 > 1 {
		return false
	}

	s2 := d.Cross(e1)
	b2 := ray.Dir.Dot(s2) * invDiv
	if b2 < 0 || b1+b2 > 1 {
		return false
	}

	t := e2.Dot(s2) * invDiv
	if t < ray.MinT || t > ray.MaxT {
		return false
	}

	// The hit frame is derived from the raw edges rather than an
	// interpolated shading normal.
	var basis types.OrthonormalBasis
	if err := basis.InitFromUV(e1, e2); err != nil {
		return false
	}

	hit.Dist = t
	hit.IntersectPos = tri.V0.Add(e1.Mul(b1)).Add(e2.Mul(b2))
	hit.HitBasis = basis
	hit.HitMaterialIndex = tri.MaterialIndex
	hit.HitPrimitive = tri
	hit.B1, hit.B2 = b1, b2
	return true
}

// Interpolate the texture coordinates at barycentric coords (b1, b2).
func (tri *Triangle) InterpolateUV(b1, b2 float64) types.Vec2d {
	b0 := 1 - b1 - b2
	return tri.UV[0].Mul(b0).Add(tri.UV[1].Mul(b1)).Add(tri.UV[2].Mul(b2))
}

// Interpolate the vertex normals at barycentric coords (b1, b2). Falls back
// to the geometric normal when the triangle has no normals.
func (tri *Triangle) InterpolateNormal(b1, b2 float64) types.Vec3d {
	if tri.HasNormals {
		b0 := 1 - b1 - b2
		n := tri.Normals[0].Mul(b0).Add(tri.Normals[1].Mul(b1)).Add(tri.Normals[2].Mul(b2))
		if nn, err := n.Normalize(); err == nil {
			return nn
		}
	}
	var basis types.OrthonormalBasis
	if err := basis.InitFromUV(tri.V1.Sub(tri.V0), tri.V2.Sub(tri.V0)); err != nil {
		return types.Vec3d{}
	}
	return basis.W
}

// BoxPrimitive places a bounding volume in the scene graph, e.g. as a
// placeholder for geometry that is loaded later. It cannot be intersected.
type BoxPrimitive struct {
	Box BoundingBox
}

func NewBoxPrimitive(box BoundingBox) *BoxPrimitive {
	return &BoxPrimitive{Box: box}
}

func (bp *BoxPrimitive) BBox() BoundingBox {
	return bp.Box
}

func (bp *BoxPrimitive) CanIntersect() bool {
	return false
}

// Ray tests against box placeholders are not supported.
func (bp *BoxPrimitive) Intersect(ray *Ray, hit *HitRecord) bool {
	return false
}
