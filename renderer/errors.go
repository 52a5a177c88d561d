package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrNoGeometry       = errors.New("renderer: scene contains no intersectable geometry")
	ErrInvalidFrameSize = errors.New("renderer: invalid frame size")
	ErrUnknownMode      = errors.New("renderer: unknown shading mode")
)
