package film

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/grindrt/grind/log"
	"golang.org/x/image/draw"
)

// ToImage converts the film into an 8-bit image applying the film gamma.
// Single channel films are expanded to gray; alpha defaults to opaque for
// films without an alpha channel.
func (f *Film) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			src := (y*f.width + x) * f.channels
			dst := img.PixOffset(x, y)

			switch f.channels {
			case 1, 2:
				v := f.quantize(src)
				img.Pix[dst], img.Pix[dst+1], img.Pix[dst+2] = v, v, v
			default:
				img.Pix[dst] = f.quantize(src)
				img.Pix[dst+1] = f.quantize(src + 1)
				img.Pix[dst+2] = f.quantize(src + 2)
			}

			img.Pix[dst+3] = 255
			if f.channels == 2 || f.channels >= 4 {
				img.Pix[dst+3] = alpha8(f.data[src+f.channels-1])
			}
		}
	}
	return img
}

// Alpha is stored linearly.
func alpha8(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// FromImage creates a 4 channel film from img, undoing the given gamma.
func FromImage(name string, img image.Image, gamma float64, logger log.Logger) (*Film, error) {
	b := img.Bounds()
	f, err := New(name, b.Dx(), b.Dy(), 4, logger)
	if err != nil {
		return nil, err
	}
	f.SetGamma(gamma)

	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			off := (y*f.width + x) * 4
			f.data[off] = f.linearize(c.R)
			f.data[off+1] = f.linearize(c.G)
			f.data[off+2] = f.linearize(c.B)
			f.data[off+3] = float64(c.A) / 255.0
		}
	}
	return f, nil
}

func (f *Film) linearize(v uint8) float64 {
	lin := float64(v) / 255.0
	if f.gamma != 1.0 {
		lin = math.Pow(lin, f.gamma)
	}
	return lin
}

// Downsample reduces the film resolution by an integer factor, e.g. to
// resolve a supersampled render. The result is a 4 channel film with the
// same gamma.
func Downsample(f *Film, factor int) (*Film, error) {
	if factor < 1 {
		return nil, fmt.Errorf("film: invalid downsample factor %d", factor)
	}
	if factor == 1 {
		return f, nil
	}

	w, h := f.width/factor, f.height/factor
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("film: cannot downsample %dx%d film by %d", f.width, f.height, factor)
	}

	// Resample the linear values at 16 bits per channel to limit banding.
	src := image.NewRGBA64(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			src.SetRGBA64(x, y, f.rgba64(x, y))
		}
	}
	dst := image.NewRGBA64(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out, err := New(f.name, w, h, 4, f.logger)
	if err != nil {
		return nil, err
	}
	out.gamma = f.gamma
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := dst.RGBA64At(x, y)
			off := (y*w + x) * 4
			out.data[off+3] = float64(c.A) / 0xffff
			if c.A == 0 {
				continue
			}
			// Undo alpha premultiplication.
			a := float64(c.A)
			out.data[off] = float64(c.R) / a
			out.data[off+1] = float64(c.G) / a
			out.data[off+2] = float64(c.B) / a
		}
	}
	return out, nil
}

// Get a pixel as a premultiplied 16-bit color. Values are clamped to [0, 1].
func (f *Film) rgba64(x, y int) color.RGBA64 {
	off := (y*f.width + x) * f.channels
	var r, g, b, a float64
	switch f.channels {
	case 1, 2:
		r = f.data[off]
		g, b = r, r
	default:
		r, g, b = f.data[off], f.data[off+1], f.data[off+2]
	}
	a = 1
	if f.channels == 2 || f.channels >= 4 {
		a = clamp01(f.data[off+f.channels-1])
	}

	return color.RGBA64{
		R: uint16(clamp01(r)*a*0xffff + 0.5),
		G: uint16(clamp01(g)*a*0xffff + 0.5),
		B: uint16(clamp01(b)*a*0xffff + 0.5),
		A: uint16(a*0xffff + 0.5),
	}
}

func clamp01(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Convert returns a copy of a 4 channel film with the given channel count.
// Single channel output holds the Rec. 709 luminance and 3 channel output
// drops alpha. Converting to 4 channels returns f.
func Convert(f *Film, channels int) (*Film, error) {
	if f.channels != 4 {
		return nil, fmt.Errorf("%w; film %q has %d", ErrChannelCount, f.name, f.channels)
	}
	switch channels {
	case 4:
		return f, nil
	case 1, 3:
	default:
		return nil, fmt.Errorf("film: cannot convert to %d channels", channels)
	}

	out, err := New(f.name, f.width, f.height, channels, f.logger)
	if err != nil {
		return nil, err
	}
	out.gamma = f.gamma
	for src, dst := 0, 0; src < len(f.data); src, dst = src+4, dst+channels {
		r, g, b := f.data[src], f.data[src+1], f.data[src+2]
		if channels == 1 {
			out.data[dst] = 0.2126*r + 0.7152*g + 0.0722*b
			continue
		}
		out.data[dst], out.data[dst+1], out.data[dst+2] = r, g, b
	}
	return out, nil
}
