package types

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/image/math/f64"
)

// Vectors shorter than this cannot be normalized.
const NormEpsilon = 1e-3

var ErrDegenerateVector = errors.New("types: cannot normalize a vector with near-zero length")

// Scalar lists the component types that vectors can be instantiated with.
type Scalar interface {
	constraints.Signed | constraints.Float
}

// Fixed-dimension vectors. The dimension is part of the type so mixing
// vectors of different sizes is rejected by the compiler.
type Vec2[T Scalar] [2]T
type Vec3[T Scalar] [3]T
type Vec4[T Scalar] [4]T

// The float64 instantiations used by the renderer.
type (
	Vec2d = Vec2[float64]
	Vec3d = Vec3[float64]
	Vec4d = Vec4[float64]
)

// Define a 2 component vector.
func XY[T Scalar](x, y T) Vec2[T] {
	return Vec2[T]{x, y}
}

// Define a 3 component vector.
func XYZ[T Scalar](x, y, z T) Vec3[T] {
	return Vec3[T]{x, y, z}
}

// Define a 4 component vector.
func XYZW[T Scalar](x, y, z, w T) Vec4[T] {
	return Vec4[T]{x, y, z, w}
}

// Expand a 2 component vector to a Vec3.
func (v Vec2[T]) Vec3(z T) Vec3[T] {
	return Vec3[T]{v[0], v[1], z}
}

func (v Vec2[T]) Add(v2 Vec2[T]) Vec2[T] {
	return Vec2[T]{v[0] + v2[0], v[1] + v2[1]}
}

func (v Vec2[T]) Sub(v2 Vec2[T]) Vec2[T] {
	return Vec2[T]{v[0] - v2[0], v[1] - v2[1]}
}

func (v Vec2[T]) MulVec(v2 Vec2[T]) Vec2[T] {
	return Vec2[T]{v[0] * v2[0], v[1] * v2[1]}
}

func (v Vec2[T]) DivVec(v2 Vec2[T]) Vec2[T] {
	return Vec2[T]{v[0] / v2[0], v[1] / v2[1]}
}

// Multiply with a scalar.
func (v Vec2[T]) Mul(s T) Vec2[T] {
	return Vec2[T]{v[0] * s, v[1] * s}
}

// Calculate dot product of 2 vectors
func (v Vec2[T]) Dot(v2 Vec2[T]) T {
	return v[0]*v2[0] + v[1]*v2[1]
}

func (v Vec2[T]) SqrNorm() T {
	return v.Dot(v)
}

func (v Vec2[T]) Norm() float64 {
	return math.Sqrt(float64(v.SqrNorm()))
}

// Normalize returns a unit length copy of v. Integer vectors are truncated.
func (v Vec2[T]) Normalize() (Vec2[T], error) {
	n := v.Norm()
	if !(n > NormEpsilon) {
		return Vec2[T]{}, ErrDegenerateVector
	}
	return Vec2[T]{T(float64(v[0]) / n), T(float64(v[1]) / n)}, nil
}

// Expand a 3 component vector to a Vec4.
func (v Vec3[T]) Vec4(w T) Vec4[T] {
	return Vec4[T]{v[0], v[1], v[2], w}
}

// Add a vector.
func (v Vec3[T]) Add(v2 Vec3[T]) Vec3[T] {
	return Vec3[T]{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

// Subtract a vector.
func (v Vec3[T]) Sub(v2 Vec3[T]) Vec3[T] {
	return Vec3[T]{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Component-wise multiplication.
func (v Vec3[T]) MulVec(v2 Vec3[T]) Vec3[T] {
	return Vec3[T]{v[0] * v2[0], v[1] * v2[1], v[2] * v2[2]}
}

// Component-wise division.
func (v Vec3[T]) DivVec(v2 Vec3[T]) Vec3[T] {
	return Vec3[T]{v[0] / v2[0], v[1] / v2[1], v[2] / v2[2]}
}

// Multiply a 3 component vector with a scalar.
func (v Vec3[T]) Mul(s T) Vec3[T] {
	return Vec3[T]{v[0] * s, v[1] * s, v[2] * s}
}

// Calculate dot product of 2 vectors
func (v Vec3[T]) Dot(v2 Vec3[T]) T {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

// Calculate cross product of 2 vectors.
func (v Vec3[T]) Cross(v2 Vec3[T]) Vec3[T] {
	return Vec3[T]{v[1]*v2[2] - v[2]*v2[1], v[2]*v2[0] - v[0]*v2[2], v[0]*v2[1] - v[1]*v2[0]}
}

// Get squared 3 component vector length.
func (v Vec3[T]) SqrNorm() T {
	return v.Dot(v)
}

// Get 3 component vector length.
func (v Vec3[T]) Norm() float64 {
	return math.Sqrt(float64(v.SqrNorm()))
}

// Normalize returns a unit length copy of v. It fails with ErrDegenerateVector
// if the vector length does not exceed NormEpsilon.
func (v Vec3[T]) Normalize() (Vec3[T], error) {
	n := v.Norm()
	if !(n > NormEpsilon) {
		return Vec3[T]{}, ErrDegenerateVector
	}
	return Vec3[T]{T(float64(v[0]) / n), T(float64(v[1]) / n), T(float64(v[2]) / n)}, nil
}

// Get the largest component.
func (v Vec3[T]) MaxComponent() T {
	return max(v[0], v[1], v[2])
}

// Convert to a float64 vector from the x/image math package.
func (v Vec3[T]) F64() f64.Vec3 {
	return f64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Reduce a 4 component vector to a Vec3.
func (v Vec4[T]) Vec3() Vec3[T] {
	return Vec3[T]{v[0], v[1], v[2]}
}

func (v Vec4[T]) Add(v2 Vec4[T]) Vec4[T] {
	return Vec4[T]{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2], v[3] + v2[3]}
}

// Subtract a vector.
func (v Vec4[T]) Sub(v2 Vec4[T]) Vec4[T] {
	return Vec4[T]{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2], v[3] - v2[3]}
}

func (v Vec4[T]) MulVec(v2 Vec4[T]) Vec4[T] {
	return Vec4[T]{v[0] * v2[0], v[1] * v2[1], v[2] * v2[2], v[3] * v2[3]}
}

func (v Vec4[T]) DivVec(v2 Vec4[T]) Vec4[T] {
	return Vec4[T]{v[0] / v2[0], v[1] / v2[1], v[2] / v2[2], v[3] / v2[3]}
}

// Multiply 4 component vector with scalar.
func (v Vec4[T]) Mul(s T) Vec4[T] {
	return Vec4[T]{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

func (v Vec4[T]) Dot(v2 Vec4[T]) T {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2] + v[3]*v2[3]
}

func (v Vec4[T]) SqrNorm() T {
	return v.Dot(v)
}

// Get 4 component vector length.
func (v Vec4[T]) Norm() float64 {
	return math.Sqrt(float64(v.SqrNorm()))
}

// Normalize 4 component vector.
func (v Vec4[T]) Normalize() (Vec4[T], error) {
	n := v.Norm()
	if !(n > NormEpsilon) {
		return Vec4[T]{}, ErrDegenerateVector
	}
	return Vec4[T]{T(float64(v[0]) / n), T(float64(v[1]) / n), T(float64(v[2]) / n), T(float64(v[3]) / n)}, nil
}

// Calc min component from two vectors
func MinVec3[T Scalar](v1, v2 Vec3[T]) Vec3[T] {
	return Vec3[T]{min(v1[0], v2[0]), min(v1[1], v2[1]), min(v1[2], v2[2])}
}

// Calc max component from two vectors
func MaxVec3[T Scalar](v1, v2 Vec3[T]) Vec3[T] {
	return Vec3[T]{max(v1[0], v2[0]), max(v1[1], v2[1]), max(v1[2], v2[2])}
}

// Check whether all components of two vectors differ by at most eps.
func ApproxEqual[T Scalar](v1, v2 Vec3[T], eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(float64(v1[i]-v2[i])) > eps {
			return false
		}
	}
	return true
}
