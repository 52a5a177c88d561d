package scene

import "errors"

var (
	ErrInvalidBBox       = errors.New("scene: cannot insert a bounding box with zero rank")
	ErrEmptyVertexList   = errors.New("scene: mesh vertex list is empty")
	ErrIndexOutOfRange   = errors.New("scene: mesh index out of range")
	ErrIndexCount        = errors.New("scene: mesh index list length does not match face count")
	ErrNotIntersectable  = errors.New("scene: primitive must be refined before it can be intersected")
	ErrPrimitiveNode     = errors.New("scene: primitive nodes cannot have children")
	ErrHasChildren       = errors.New("scene: node already has children")
	ErrWrongKind         = errors.New("scene: operation not supported by this node kind")
	ErrNilPrimitive      = errors.New("scene: nil primitive")
	ErrDuplicateMaterial = errors.New("scene: duplicate material name")
	ErrUnnamedMaterial   = errors.New("scene: material name is empty")
	ErrInvalidTag        = errors.New("scene: invalid tag")
	ErrCycle             = errors.New("scene: scene graph contains a cycle")
)
