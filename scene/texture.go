package scene

import "github.com/grindrt/grind/types"

// Texture is implemented by image sources that materials can sample.
type Texture interface {
	Name() string

	// Sample the texture at the (u, v) coordinates. The returned color is
	// linear RGBA in [0, 1].
	Sample(u, v float64) types.Vec4d
}
