package types

import (
	"math"

	"golang.org/x/image/math/f64"
)

var (
	XAxis = Vec3d{1, 0, 0}
	YAxis = Vec3d{0, 1, 0}
	ZAxis = Vec3d{0, 0, 1}
)

// OrthonormalBasis is a right-handed frame of unit vectors (U x V = W).
type OrthonormalBasis struct {
	U, V, W Vec3d
}

// Build the frame from its U axis.
func (b *OrthonormalBasis) InitFromU(u Vec3d) error {
	nu, err := u.Normalize()
	if err != nil {
		return err
	}
	v := perpendicular(nu)
	b.U, b.V, b.W = nu, v, nu.Cross(v)
	return nil
}

// Build the frame from its V axis.
func (b *OrthonormalBasis) InitFromV(v Vec3d) error {
	nv, err := v.Normalize()
	if err != nil {
		return err
	}
	w := perpendicular(nv)
	b.V, b.W, b.U = nv, w, nv.Cross(w)
	return nil
}

// Build the frame from its W axis.
func (b *OrthonormalBasis) InitFromW(w Vec3d) error {
	nw, err := w.Normalize()
	if err != nil {
		return err
	}
	u := perpendicular(nw)
	b.W, b.U, b.V = nw, u, nw.Cross(u)
	return nil
}

// Build the frame from U and a second vector lying in the UV plane. The
// second vector does not need to be perpendicular to u or unit length.
func (b *OrthonormalBasis) InitFromUV(u, v Vec3d) error {
	nu, err := direction(u)
	if err != nil {
		return err
	}
	nv, err := direction(v)
	if err != nil {
		return err
	}
	w, err := direction(nu.Cross(nv))
	if err != nil {
		return err
	}
	b.U, b.W, b.V = nu, w, w.Cross(nu)
	return nil
}

// Build the frame from V and a second vector lying in the VW plane.
func (b *OrthonormalBasis) InitFromVW(v, w Vec3d) error {
	nv, err := direction(v)
	if err != nil {
		return err
	}
	nw, err := direction(w)
	if err != nil {
		return err
	}
	u, err := direction(nv.Cross(nw))
	if err != nil {
		return err
	}
	b.V, b.U, b.W = nv, u, u.Cross(nv)
	return nil
}

// Build the frame from W and a second vector lying in the WU plane.
func (b *OrthonormalBasis) InitFromWU(w, u Vec3d) error {
	nw, err := direction(w)
	if err != nil {
		return err
	}
	nu, err := direction(u)
	if err != nil {
		return err
	}
	v, err := direction(nw.Cross(nu))
	if err != nil {
		return err
	}
	b.W, b.V, b.U = nw, v, v.Cross(nw)
	return nil
}

// Transform a vector expressed in this frame to world space.
func (b *OrthonormalBasis) ToWorld(a Vec3d) Vec3d {
	return b.U.Mul(a[0]).Add(b.V.Mul(a[1])).Add(b.W.Mul(a[2]))
}

// Transform a world space vector into this frame.
func (b *OrthonormalBasis) ToLocal(a Vec3d) Vec3d {
	return Vec3d{a.Dot(b.U), a.Dot(b.V), a.Dot(b.W)}
}

// Get the frame as a row-major matrix whose rows are U, V and W.
func (b *OrthonormalBasis) Mat3() f64.Mat3 {
	return f64.Mat3{
		b.U[0], b.U[1], b.U[2],
		b.V[0], b.V[1], b.V[2],
		b.W[0], b.W[1], b.W[2],
	}
}

// Find a unit vector perpendicular to the unit vector n by crossing it with
// the X axis, or the Y axis when n is (nearly) parallel to X.
func perpendicular(n Vec3d) Vec3d {
	p := n.Cross(XAxis)
	if p.Norm() < NormEpsilon {
		p = n.Cross(YAxis)
	}
	p, _ = p.Normalize()
	return p
}

// Normalize v after rescaling it by its largest absolute component. Unlike
// Normalize this accepts short but non-zero vectors such as the edges of
// tiny triangles.
func direction(v Vec3d) (Vec3d, error) {
	s := max(math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2]))
	if s == 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return Vec3d{}, ErrDegenerateVector
	}
	return v.Mul(1 / s).Normalize()
}
