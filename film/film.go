package film

import (
	"errors"
	"fmt"
	"math"

	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/types"
)

var (
	ErrChannelCount  = errors.New("film: color access requires a 4 channel film")
	ErrInvalidSize   = errors.New("film: film dimensions and channel count must be positive")
	ErrUnknownFormat = errors.New("film: unknown output format")
	ErrFilmTooLarge  = errors.New("film: film exceeds the maximum number of values")
)

// Upper bound for width * height * channels.
const MaxValues = 1 << 28

// Check that a film of the given dimensions can be allocated.
func checkSize(width, height, channels int) error {
	if width <= 0 || height <= 0 || channels <= 0 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, width, height, channels)
	}
	if width > MaxValues || height > MaxValues || channels > MaxValues ||
		uint64(width)*uint64(height) > MaxValues ||
		uint64(width)*uint64(height)*uint64(channels) > MaxValues {
		return fmt.Errorf("%w: %dx%dx%d", ErrFilmTooLarge, width, height, channels)
	}
	return nil
}

// Film is a named width x height x channels buffer that accumulates the
// rendered pixel values. Row 0 is the top scanline.
type Film struct {
	logger log.Logger

	name     string
	width    int
	height   int
	channels int
	gamma    float64

	data []float64
}

// Create a zero-filled film.
func New(name string, width, height, channels int, logger log.Logger) (*Film, error) {
	if err := checkSize(width, height, channels); err != nil {
		return nil, err
	}

	return &Film{
		logger:   logger,
		name:     name,
		width:    width,
		height:   height,
		channels: channels,
		gamma:    1.0,
		data:     make([]float64, width*height*channels),
	}, nil
}

func (f *Film) Name() string {
	return f.name
}

func (f *Film) Width() int {
	return f.width
}

func (f *Film) Height() int {
	return f.height
}

func (f *Film) Channels() int {
	return f.channels
}

// The gamma applied when converting to 8-bit output formats.
func (f *Film) Gamma() float64 {
	return f.gamma
}

// Set the output gamma. Values <= 0 select linear output.
func (f *Film) SetGamma(gamma float64) {
	if gamma <= 0 {
		gamma = 1.0
	}
	f.gamma = gamma
}

// Get the raw channel-interleaved pixel data.
func (f *Film) Data() []float64 {
	return f.data
}

func (f *Film) offset(x, y, c int) (int, bool) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height || c < 0 || c >= f.channels {
		return 0, false
	}
	return (y*f.width+x)*f.channels + c, true
}

// Get a channel value. Out of range reads log a warning and return 0.
func (f *Film) Get(x, y, c int) float64 {
	off, ok := f.offset(x, y, c)
	if !ok {
		f.logger.Warningf("film %q: ignoring read at (%d, %d, %d) outside %dx%dx%d", f.name, x, y, c, f.width, f.height, f.channels)
		return 0
	}
	return f.data[off]
}

// Set a channel value. Out of range writes log a warning and are ignored.
func (f *Film) Set(x, y, c int, v float64) {
	off, ok := f.offset(x, y, c)
	if !ok {
		f.logger.Warningf("film %q: ignoring write at (%d, %d, %d) outside %dx%dx%d", f.name, x, y, c, f.width, f.height, f.channels)
		return
	}
	f.data[off] = v
}

// Get the RGBA color of a pixel.
func (f *Film) GetColor(x, y int) (types.Vec4d, error) {
	if f.channels != 4 {
		return types.Vec4d{}, fmt.Errorf("%w; film %q has %d", ErrChannelCount, f.name, f.channels)
	}
	off, ok := f.offset(x, y, 0)
	if !ok {
		f.logger.Warningf("film %q: ignoring read of pixel (%d, %d) outside %dx%d", f.name, x, y, f.width, f.height)
		return types.Vec4d{}, nil
	}
	return types.Vec4d{f.data[off], f.data[off+1], f.data[off+2], f.data[off+3]}, nil
}

// Set the RGBA color of a pixel. Writes outside the film log a warning and
// are ignored.
func (f *Film) PutColor(x, y int, col types.Vec4d) error {
	if f.channels != 4 {
		return fmt.Errorf("%w; film %q has %d", ErrChannelCount, f.name, f.channels)
	}
	off, ok := f.offset(x, y, 0)
	if !ok {
		f.logger.Warningf("film %q: ignoring write of pixel (%d, %d) outside %dx%d", f.name, x, y, f.width, f.height)
		return nil
	}
	copy(f.data[off:off+4], col[:])
	return nil
}

// Overwrite every pixel with col.
func (f *Film) FillColor(col types.Vec4d) error {
	if f.channels != 4 {
		return fmt.Errorf("%w; film %q has %d", ErrChannelCount, f.name, f.channels)
	}
	for off := 0; off < len(f.data); off += 4 {
		copy(f.data[off:off+4], col[:])
	}
	return nil
}

// Get the 8-bit gamma corrected value of a channel.
func (f *Film) quantize(off int) uint8 {
	v := f.data[off]
	if !(v > 0) {
		return 0
	}
	if f.gamma != 1.0 {
		v = math.Pow(v, 1.0/f.gamma)
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
