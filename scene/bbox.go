package scene

import (
	"fmt"
	"math"

	"github.com/grindrt/grind/types"
)

// BoundingBox is an axis-aligned box. An invalidated box has min=+Inf and
// max=-Inf on every axis so the first inserted point establishes real bounds.
type BoundingBox struct {
	min types.Vec3d
	max types.Vec3d
}

// Create an invalidated bounding box.
func NewBoundingBox() BoundingBox {
	var b BoundingBox
	b.Invalidate()
	return b
}

// Create a bounding box enclosing a set of points.
func NewBoundingBoxFromPoints(points ...types.Vec3d) BoundingBox {
	b := NewBoundingBox()
	for _, p := range points {
		b.InsertPoint(p)
	}
	return b
}

// Reset the box to its empty state.
func (b *BoundingBox) Invalidate() {
	inf := math.Inf(1)
	b.min = types.Vec3d{inf, inf, inf}
	b.max = types.Vec3d{-inf, -inf, -inf}
}

// Grow the box to enclose p. Min and max are updated independently so the
// first point after Invalidate sets both corners.
func (b *BoundingBox) InsertPoint(p types.Vec3d) {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.min[axis] {
			b.min[axis] = p[axis]
		}
		if p[axis] > b.max[axis] {
			b.max[axis] = p[axis]
		}
	}
}

// Grow the box to enclose other, which must have a positive rank.
func (b *BoundingBox) InsertBBox(other BoundingBox) error {
	if other.Rank() == 0 {
		return ErrInvalidBBox
	}
	b.InsertPoint(other.min)
	b.InsertPoint(other.max)
	return nil
}

// Number of axes with positive extent: 0 for a point or an empty box, 1 for
// a line, 2 for a plane and 3 for a volume.
func (b *BoundingBox) Rank() int {
	rank := 0
	for axis := 0; axis < 3; axis++ {
		if b.max[axis] > b.min[axis] {
			rank++
		}
	}
	return rank
}

func (b *BoundingBox) HasVolume() bool {
	return b.Rank() == 3
}

// Volume of the box; zero unless the box has rank 3.
func (b *BoundingBox) Volume() float64 {
	if !b.HasVolume() {
		return 0
	}
	size := b.max.Sub(b.min)
	return size[0] * size[1] * size[2]
}

func (b *BoundingBox) Min() types.Vec3d {
	return b.min
}

func (b *BoundingBox) Max() types.Vec3d {
	return b.max
}

func (b *BoundingBox) Center() types.Vec3d {
	return b.min.Add(b.max).Mul(0.5)
}

// Exact comparison of the box corners.
func (b *BoundingBox) Equal(other *BoundingBox) bool {
	if b == other {
		return true
	}
	if other == nil {
		return false
	}
	return b.min == other.min && b.max == other.max
}

func (b *BoundingBox) String() string {
	return fmt.Sprintf(
		"bbox{min: (%.4g, %.4g, %.4g), max: (%.4g, %.4g, %.4g), rank: %d}",
		b.min[0], b.min[1], b.min[2],
		b.max[0], b.max[1], b.max[2],
		b.Rank(),
	)
}

// Hit tests the ray against the box using the slab method, limited to the
// ray's [MinT, MaxT] range.
func (b *BoundingBox) Hit(ray *Ray) bool {
	tMin, tMax := ray.MinT, ray.MaxT
	for axis := 0; axis < 3; axis++ {
		origin, dir := ray.Origin[axis], ray.Dir[axis]

		// Ray is parallel to this slab
		if math.Abs(dir) < 1e-12 {
			if origin < b.min[axis] || origin > b.max[axis] {
				return false
			}
			continue
		}

		invDir := 1.0 / dir
		t1 := (b.min[axis] - origin) * invDir
		t2 := (b.max[axis] - origin) * invDir
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	return true
}
