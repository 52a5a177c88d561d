package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/grindrt/grind/types"
)

// Returns true if (x, y) lies inside the 2D projection of the triangle.
func insideProjection(tri *Triangle, x, y float64) bool {
	edge := func(a, b types.Vec3d) float64 {
		return (b[0]-a[0])*(y-a[1]) - (b[1]-a[1])*(x-a[0])
	}
	e0 := edge(tri.V0, tri.V1)
	e1 := edge(tri.V1, tri.V2)
	e2 := edge(tri.V2, tri.V0)
	return (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0)
}

func TestTriangleGrid(t *testing.T) {
	tri := NewTriangle(
		types.Vec3d{5, 5, -10},
		types.Vec3d{45, 5, -10},
		types.Vec3d{25, 45, -10},
	)
	tri.MaterialIndex = 3

	var hits int
	hit := NewHitRecord()
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			ray := NewRay(types.Vec3d{px, py, 0}, types.Vec3d{0, 0, -1})
			hit.Reset()

			got := tri.Intersect(&ray, &hit)
			if exp := insideProjection(tri, px, py); got != exp {
				t.Fatalf("[pixel %d, %d] expected Intersect() to return %t; got %t", x, y, exp, got)
			}
			if !got {
				if hit.HasHit() || !math.IsInf(hit.Dist, 1) {
					t.Fatalf("[pixel %d, %d] expected miss to leave the hit record untouched", x, y)
				}
				continue
			}

			hits++
			if math.Abs(hit.Dist-10) > 1e-9 {
				t.Fatalf("[pixel %d, %d] expected dist 10; got %f", x, y, hit.Dist)
			}
			if hit.B1 < 0 || hit.B2 < 0 || hit.B1+hit.B2 > 1 {
				t.Fatalf("[pixel %d, %d] barycentric coords out of range: (%f, %f)", x, y, hit.B1, hit.B2)
			}
			if exp := (types.Vec3d{px, py, -10}); !types.ApproxEqual(hit.IntersectPos, exp, 1e-9) {
				t.Fatalf("[pixel %d, %d] expected intersection at %v; got %v", x, y, exp, hit.IntersectPos)
			}
			if !types.ApproxEqual(hit.IntersectPos, ray.At(hit.Dist), 1e-9) {
				t.Fatalf("[pixel %d, %d] intersection point does not lie on the ray", x, y)
			}
			if hit.HitMaterialIndex != 3 || hit.HitPrimitive != Primitive(tri) {
				t.Fatalf("[pixel %d, %d] expected hit to reference the triangle and its material", x, y)
			}
		}
	}

	// Triangle area is 800 so roughly that many pixel centers are covered
	if hits < 750 || hits > 850 {
		t.Fatalf("expected about 800 hits; got %d", hits)
	}
}

func TestTriangleHitBasis(t *testing.T) {
	tri := NewTriangle(
		types.Vec3d{5, 5, -10},
		types.Vec3d{45, 5, -10},
		types.Vec3d{25, 45, -10},
	)
	ray := NewRay(types.Vec3d{25, 20, 0}, types.Vec3d{0, 0, -1})
	hit := NewHitRecord()
	if !tri.Intersect(&ray, &hit) {
		t.Fatal("expected ray to hit the triangle")
	}

	// The frame is built from the edges so U follows v1-v0 and W is the
	// face normal.
	basis := hit.HitBasis
	if !types.ApproxEqual(basis.U, types.XAxis, 1e-12) ||
		!types.ApproxEqual(basis.V, types.YAxis, 1e-12) ||
		!types.ApproxEqual(basis.W, types.ZAxis, 1e-12) {
		t.Fatalf("expected an axis aligned hit frame; got %+v", basis)
	}
}

func TestTriangleParallelRay(t *testing.T) {
	tri := NewTriangle(
		types.Vec3d{0, 0, 0},
		types.Vec3d{1, 0, 0},
		types.Vec3d{0, 1, 0},
	)

	specs := []types.Vec3d{
		{1, 0, 0},
		{0, 1, 0},
		{0.6, 0.8, 0},
	}

	for specIndex, dir := range specs {
		ray := NewRay(types.Vec3d{-1, 0.25, 0}, dir)
		hit := NewHitRecord()
		if tri.Intersect(&ray, &hit) {
			t.Errorf("[spec %d] expected ray parallel to the triangle plane to miss", specIndex)
		}
	}
}

func TestTriangleDegenerate(t *testing.T) {
	tri := NewTriangle(
		types.Vec3d{0, 0, 0},
		types.Vec3d{1, 1, 1},
		types.Vec3d{2, 2, 2},
	)
	ray := NewRay(types.Vec3d{1, 1, 5}, types.Vec3d{0, 0, -1})
	hit := NewHitRecord()
	if tri.Intersect(&ray, &hit) {
		t.Fatal("expected zero area triangle not to report a hit")
	}
}

func TestTriangleRayRange(t *testing.T) {
	tri := NewTriangle(
		types.Vec3d{-1, -1, -10},
		types.Vec3d{1, -1, -10},
		types.Vec3d{0, 1, -10},
	)

	specs := []struct {
		minT, maxT float64
		expHit     bool
	}{
		{0, math.Inf(1), true},
		{0, 10, true},
		{10, 10, true},
		{0, 9.999, false},
		{10.001, math.Inf(1), false},
	}

	for specIndex, spec := range specs {
		ray := NewRay(types.Vec3d{0, 0, 0}, types.Vec3d{0, 0, -1})
		ray.MinT, ray.MaxT = spec.minT, spec.maxT
		hit := NewHitRecord()
		if got := tri.Intersect(&ray, &hit); got != spec.expHit {
			t.Errorf("[spec %d] expected Intersect() to return %t; got %t", specIndex, spec.expHit, got)
		}
	}

	// Hits behind the origin are rejected
	ray := NewRay(types.Vec3d{0, 0, -20}, types.Vec3d{0, 0, -1})
	hit := NewHitRecord()
	if tri.Intersect(&ray, &hit) {
		t.Fatal("expected triangle behind the ray origin to be missed")
	}
}

func TestTriangleClosestHit(t *testing.T) {
	far := NewTriangle(types.Vec3d{-1, -1, -20}, types.Vec3d{1, -1, -20}, types.Vec3d{0, 1, -20})
	near := NewTriangle(types.Vec3d{-1, -1, -5}, types.Vec3d{1, -1, -5}, types.Vec3d{0, 1, -5})
	far.MaterialIndex, near.MaterialIndex = 1, 2

	ray := NewRay(types.Vec3d{0, 0, 0}, types.Vec3d{0, 0, -1})
	hit := NewHitRecord()
	for _, tri := range []*Triangle{far, near, far} {
		if tri.Intersect(&ray, &hit) {
			ray.MaxT = hit.Dist
		}
	}

	if hit.HitPrimitive != Primitive(near) || hit.Dist != 5 || hit.HitMaterialIndex != 2 {
		t.Fatalf("expected closest hit against the near triangle at dist 5; got dist %f, material %d", hit.Dist, hit.HitMaterialIndex)
	}
}

func TestTriangleTiny(t *testing.T) {
	tri := NewTriangle(
		types.Vec3d{0, 0, -1},
		types.Vec3d{1e-4, 0, -1},
		types.Vec3d{0, 1e-4, -1},
	)
	ray := NewRay(types.Vec3d{2e-5, 2e-5, 0}, types.Vec3d{0, 0, -1})
	hit := NewHitRecord()
	if !tri.Intersect(&ray, &hit) {
		t.Fatal("expected ray to hit small triangle")
	}
	if !types.ApproxEqual(hit.HitBasis.W, types.ZAxis, 1e-9) {
		t.Fatalf("expected hit frame normal to be +Z; got %v", hit.HitBasis.W)
	}
}

func TestTriangleInterpolation(t *testing.T) {
	tri := NewTriangle(
		types.Vec3d{0, 0, 0},
		types.Vec3d{1, 0, 0},
		types.Vec3d{0, 1, 0},
	)
	tri.UV = [3]types.Vec2d{{0, 0}, {1, 0}, {0, 1}}
	tri.HasUV = true

	if uv := tri.InterpolateUV(0.25, 0.5); uv != (types.Vec2d{0.25, 0.5}) {
		t.Fatalf("expected uv (0.25, 0.5); got %v", uv)
	}

	// Geometric normal fallback
	if n := tri.InterpolateNormal(0.2, 0.2); !types.ApproxEqual(n, types.ZAxis, 1e-12) {
		t.Fatalf("expected geometric normal +Z; got %v", n)
	}

	tri.Normals = [3]types.Vec3d{{0, 0, 1}, {0, 0, 1}, {1, 0, 0}}
	tri.HasNormals = true
	n := tri.InterpolateNormal(0, 1)
	if !types.ApproxEqual(n, types.XAxis, 1e-12) {
		t.Fatalf("expected vertex normal at v2; got %v", n)
	}
}

func TestIntersectableCapability(t *testing.T) {
	tri := NewTriangle(types.Vec3d{0, 0, 0}, types.Vec3d{1, 0, 0}, types.Vec3d{0, 1, 0})
	box := NewBoxPrimitive(NewBoundingBoxFromPoints(types.Vec3d{-1, -1, -1}, types.Vec3d{1, 1, 1}))
	mesh := NewTriMesh()

	specs := []struct {
		prim   Primitive
		expErr error
	}{
		{tri, nil},
		{box, ErrNotIntersectable},
		{mesh, ErrNotIntersectable},
		{nil, ErrNilPrimitive},
	}

	for specIndex, spec := range specs {
		if err := RequireIntersectable(spec.prim); !errors.Is(err, spec.expErr) {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}
	}

	ray := NewRay(types.Vec3d{0, 0, 5}, types.Vec3d{0, 0, -1})
	hit := NewHitRecord()
	if box.Intersect(&ray, &hit) || hit.HasHit() {
		t.Fatal("expected box primitive never to report a hit")
	}
}
