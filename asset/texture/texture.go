package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/grindrt/grind/asset"
	"github.com/grindrt/grind/types"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// A texture image and its metadata. Texel values are stored as normalized
// float32 values with row 0 at the top of the image.
type Texture struct {
	Path   string
	Format Format

	Width  uint32
	Height uint32

	Data []float32
}

// Create a new texture from a Resource. The image format is detected from
// the stream contents.
func New(res *asset.Resource) (*Texture, error) {
	img, _, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", res.Path(), err)
	}
	return FromImage(res.Path(), img)
}

// Convert an image into a texture. Grayscale images are stored as
// single-channel textures; everything else is expanded to RGBA.
func FromImage(path string, img image.Image) (*Texture, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("texture: image %s has no pixels", path)
	}

	tex := &Texture{
		Path:   path,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}

	switch img.(type) {
	case *image.Gray, *image.Gray16:
		tex.Format = Luminance32F
		tex.Data = make([]float32, 0, bounds.Dx()*bounds.Dy())
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
				tex.Data = append(tex.Data, float32(g.Y)/0xffff)
			}
		}
	default:
		tex.Format = Rgba32F
		tex.Data = make([]float32, 0, 4*bounds.Dx()*bounds.Dy())
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
				tex.Data = append(tex.Data,
					float32(c.R)/0xffff,
					float32(c.G)/0xffff,
					float32(c.B)/0xffff,
					float32(c.A)/0xffff,
				)
			}
		}
	}

	return tex, nil
}

// Check that the texel data matches the texture dimensions and format.
func (t *Texture) Validate() error {
	if !t.Format.IsValid() {
		return fmt.Errorf("texture: %s has unsupported format %d", t.Path, t.Format)
	}
	if exp := int(t.Width) * int(t.Height) * t.Format.Channels(); len(t.Data) != exp || exp == 0 {
		return fmt.Errorf("texture: %s expected %d texel values; got %d", t.Path, exp, len(t.Data))
	}
	return nil
}

func (t *Texture) Name() string {
	return t.Path
}

// Sample the texel nearest to the (u, v) coordinates. Coordinates wrap
// around and v = 0 maps to the bottom row of the image.
func (t *Texture) Sample(u, v float64) types.Vec4d {
	if t.Width == 0 || t.Height == 0 {
		return types.Vec4d{}
	}

	u -= math.Floor(u)
	v -= math.Floor(v)
	x := min(int(u*float64(t.Width)), int(t.Width)-1)
	y := min(int((1-v)*float64(t.Height)), int(t.Height)-1)

	offset := y*int(t.Width) + x
	switch t.Format {
	case Luminance32F:
		l := float64(t.Data[offset])
		return types.Vec4d{l, l, l, 1}
	default:
		px := t.Data[4*offset : 4*offset+4]
		return types.Vec4d{float64(px[0]), float64(px[1]), float64(px[2]), float64(px[3])}
	}
}
