package film

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/grindrt/grind/log"
)

// PPMEncoder writes binary PPM files: P5 (grayscale) for single channel
// films and P6 (RGB) otherwise. Alpha is dropped.
type PPMEncoder struct {
	// Emit scanlines bottom-to-top.
	FlipY bool
}

func (enc PPMEncoder) Encode(w io.Writer, f *Film) error {
	magic, outChannels := "P6", 3
	if f.channels == 1 {
		magic, outChannels = "P5", 1
	}

	if _, err := fmt.Fprintf(w, "%s\n%d %d\n255\n", magic, f.width, f.height); err != nil {
		return err
	}

	row := make([]byte, f.width*outChannels)
	for i := 0; i < f.height; i++ {
		y := i
		if enc.FlipY {
			y = f.height - 1 - i
		}

		for x := 0; x < f.width; x++ {
			src := (y*f.width + x) * f.channels
			dst := x * outChannels
			switch {
			case outChannels == 1:
				row[dst] = f.quantize(src)
			case f.channels == 2:
				v := f.quantize(src)
				row[dst], row[dst+1], row[dst+2] = v, v, v
			default:
				row[dst] = f.quantize(src)
				row[dst+1] = f.quantize(src + 1)
				row[dst+2] = f.quantize(src + 2)
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// DecodePPM reads a binary P5 or P6 file with a max value of 255 into a 1 or
// 3 channel film. The film gamma is set to gamma and pixel values are
// linearized accordingly. When flipY is set the scanlines in the file are
// expected bottom-to-top.
func DecodePPM(r io.Reader, name string, gamma float64, flipY bool, logger log.Logger) (*Film, error) {
	br := bufio.NewReader(r)

	var header [4]int
	magic, err := ppmToken(br)
	if err != nil {
		return nil, fmt.Errorf("film: ppm header: %w", err)
	}
	var channels int
	switch magic {
	case "P5":
		channels = 1
	case "P6":
		channels = 3
	default:
		return nil, fmt.Errorf("film: unsupported ppm type %q", magic)
	}
	for i := 1; i < 4; i++ {
		tok, err := ppmToken(br)
		if err != nil {
			return nil, fmt.Errorf("film: ppm header: %w", err)
		}
		if header[i], err = strconv.Atoi(tok); err != nil {
			return nil, fmt.Errorf("film: ppm header: invalid value %q", tok)
		}
	}
	width, height, maxVal := header[1], header[2], header[3]
	if maxVal != 255 {
		return nil, fmt.Errorf("film: unsupported ppm max value %d", maxVal)
	}
	if err = checkSize(width, height, channels); err != nil {
		return nil, fmt.Errorf("film: ppm header: %w", err)
	}

	f, err := New(name, width, height, channels, logger)
	if err != nil {
		return nil, err
	}
	f.SetGamma(gamma)

	row := make([]byte, width*channels)
	for i := 0; i < height; i++ {
		if _, err = io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("film: ppm scanline %d: %w", i, err)
		}
		y := i
		if flipY {
			y = height - 1 - i
		}
		off := y * width * channels
		for j, v := range row {
			f.data[off+j] = f.linearize(v)
		}
	}
	return f, nil
}

// Read the next whitespace separated header token skipping comments. The
// single whitespace byte after the token is consumed.
func ppmToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) != 0 {
				return string(tok), nil
			}
			return "", err
		}

		switch {
		case b == '#' && len(tok) == 0:
			if _, err = br.ReadString('\n'); err != nil {
				return "", err
			}
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			if len(tok) != 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

// LoadPPM reads a PPM file from disk.
func LoadPPM(path string, gamma float64, logger log.Logger) (*Film, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("film: open %s: %w", path, err)
	}
	defer file.Close()

	return DecodePPM(file, path, gamma, false, logger)
}
