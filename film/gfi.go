package film

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/grindrt/grind/log"
)

const (
	gfiMagic   = "GRIND_FLOAT_IMG_"
	gfiVersion = 1
)

var ErrBadGFIHeader = errors.New("film: invalid gfi header")

// The on-disk gfi header. All fields are little-endian.
type gfiHeader struct {
	Magic       [16]byte
	Version     uint32
	ResX        uint32
	ResY        uint32
	NumChannels uint32
	AppName     [32]byte
	Gamma       float32
	PixelOffset uint32
}

// GFIEncoder writes the raw float pixel data of a film, one scanline at a
// time with interleaved channels, after a fixed size header.
type GFIEncoder struct {
	// Name of the application that produced the file; truncated to 32 bytes.
	AppName string

	// Emit scanlines bottom-to-top.
	ReverseScanlines bool
}

func (enc GFIEncoder) Encode(w io.Writer, f *Film) error {
	hdr := gfiHeader{
		Version:     gfiVersion,
		ResX:        uint32(f.width),
		ResY:        uint32(f.height),
		NumChannels: uint32(f.channels),
		Gamma:       float32(f.gamma),
		PixelOffset: uint32(binary.Size(gfiHeader{})),
	}
	copy(hdr.Magic[:], gfiMagic)
	copy(hdr.AppName[:], enc.AppName)

	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}

	rowLen := f.width * f.channels
	row := make([]byte, rowLen*4)
	for i := 0; i < f.height; i++ {
		y := i
		if enc.ReverseScanlines {
			y = f.height - 1 - i
		}
		for j, v := range f.data[y*rowLen : (y+1)*rowLen] {
			binary.LittleEndian.PutUint32(row[j*4:], math.Float32bits(float32(v)))
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// DecodeGFI reads a gfi stream. reverseScanlines must match the setting
// used when encoding.
func DecodeGFI(r io.Reader, name string, reverseScanlines bool, logger log.Logger) (*Film, error) {
	var hdr gfiHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadGFIHeader, err)
	}
	if string(hdr.Magic[:]) != gfiMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadGFIHeader, hdr.Magic[:])
	}
	if hdr.Version != gfiVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadGFIHeader, hdr.Version)
	}
	if err := checkSize(int(hdr.ResX), int(hdr.ResY), int(hdr.NumChannels)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadGFIHeader, err)
	}
	hdrSize := uint32(binary.Size(hdr))
	if hdr.PixelOffset < hdrSize {
		return nil, fmt.Errorf("%w: pixel offset %d overlaps header", ErrBadGFIHeader, hdr.PixelOffset)
	}
	if _, err := io.CopyN(io.Discard, r, int64(hdr.PixelOffset-hdrSize)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadGFIHeader, err)
	}

	f, err := New(name, int(hdr.ResX), int(hdr.ResY), int(hdr.NumChannels), logger)
	if err != nil {
		return nil, err
	}
	f.SetGamma(float64(hdr.Gamma))

	rowLen := f.width * f.channels
	row := make([]byte, rowLen*4)
	for i := 0; i < f.height; i++ {
		if _, err = io.ReadFull(r, row); err != nil {
			return nil, fmt.Errorf("film: gfi scanline %d: %w", i, err)
		}
		y := i
		if reverseScanlines {
			y = f.height - 1 - i
		}
		dst := f.data[y*rowLen : (y+1)*rowLen]
		for j := range dst {
			dst[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(row[j*4:])))
		}
	}

	logger.Debugf("decoded %dx%dx%d gfi film %q written by %q", f.width, f.height, f.channels, name, hdr.appName())
	return f, nil
}

// LoadGFI reads a gfi file from disk.
func LoadGFI(path string, logger log.Logger) (*Film, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("film: open %s: %w", path, err)
	}
	defer file.Close()

	return DecodeGFI(file, path, false, logger)
}

// Get the application name stored in a gfi header.
func (hdr *gfiHeader) appName() string {
	n := 0
	for n < len(hdr.AppName) && hdr.AppName[n] != 0 {
		n++
	}
	return string(hdr.AppName[:n])
}
