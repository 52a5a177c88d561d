package renderer

import (
	"fmt"
	"strings"
)

// Mode selects how primary ray hits are shaded.
type Mode uint8

const (
	// Normalized hit distance; closer surfaces are brighter.
	ShadeDepth Mode = iota

	// Interpolated surface normal mapped to [0, 1].
	ShadeNormal

	// Diffuse color (or texture) scaled by the cosine between the view
	// direction and the surface normal, plus any emission.
	ShadeFlat

	// Ambient occlusion.
	ShadeAO
)

var modeNames = []string{"depth", "normal", "flat", "ao"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// Parse a shading mode name.
func ParseMode(name string) (Mode, error) {
	for index, modeName := range modeNames {
		if strings.EqualFold(name, modeName) {
			return Mode(index), nil
		}
	}
	return 0, fmt.Errorf("%w %q; supported modes: %s", ErrUnknownMode, name, strings.Join(modeNames, ", "))
}

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of samples. It is rounded down to the closest square so
	// sub-samples can be stratified on a grid; values below 1 are
	// treated as 1.
	SamplesPerPixel uint32

	// Shading mode.
	Mode Mode

	// Number of hemisphere samples and max occluder distance for ShadeAO.
	AOSamples  uint32
	AODistance float64

	// A random seed value for sample jittering.
	Seed uint64

	// Number of rows rendered between progress reports. If 0, the frame
	// is split into 16 blocks.
	BlockH uint32
}
