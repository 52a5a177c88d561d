package film

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/types"
)

func TestPPMEncode(t *testing.T) {
	specs := []struct {
		channels  int
		flipY     bool
		expHeader string
		expPixels []byte
	}{
		{1, false, "P5\n2 2\n255\n", []byte{0, 255, 128, 64}},
		{1, true, "P5\n2 2\n255\n", []byte{128, 64, 0, 255}},
		{3, false, "P6\n2 2\n255\n", []byte{0, 0, 0, 255, 255, 255, 128, 128, 128, 64, 64, 64}},
		{4, false, "P6\n2 2\n255\n", []byte{0, 0, 0, 255, 255, 255, 128, 128, 128, 64, 64, 64}},
	}

	for specIndex, spec := range specs {
		f := newFilm(t, 2, 2, spec.channels)
		for i, v := range []float64{0, 1, 0.5, 0.25} {
			for c := 0; c < spec.channels; c++ {
				f.Set(i%2, i/2, c, v)
			}
		}

		var buf bytes.Buffer
		if err := (PPMEncoder{FlipY: spec.flipY}).Encode(&buf, f); err != nil {
			t.Fatalf("[spec %d] %v", specIndex, err)
		}
		exp := append([]byte(spec.expHeader), spec.expPixels...)
		if !bytes.Equal(buf.Bytes(), exp) {
			t.Errorf("[spec %d] expected output %q; got %q", specIndex, exp, buf.Bytes())
		}
	}
}

func TestPPMRoundTrip(t *testing.T) {
	f := newFilm(t, 3, 2, 3)
	for i := range f.Data() {
		f.Data()[i] = float64(i) / 17.0
	}

	var buf bytes.Buffer
	if err := (PPMEncoder{FlipY: true}).Encode(&buf, f); err != nil {
		t.Fatal(err)
	}

	back, err := DecodePPM(&buf, "back", 1, true, log.New("film test"))
	if err != nil {
		t.Fatal(err)
	}
	if back.Width() != 3 || back.Height() != 2 || back.Channels() != 3 {
		t.Fatalf("expected a 3x2x3 film; got %dx%dx%d", back.Width(), back.Height(), back.Channels())
	}
	for i, v := range f.Data() {
		if d := back.Data()[i] - v; d > 1.0/255 || d < -1.0/255 {
			t.Fatalf("value %d: expected %f; got %f", i, v, back.Data()[i])
		}
	}
}

func TestPPMDecodeComments(t *testing.T) {
	payload := "P5\n# written by hand\n2 1\n# max\n255\n\x00\xff"
	f, err := DecodePPM(strings.NewReader(payload), "gray", 1, false, log.New("film test"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Channels() != 1 || f.Get(0, 0, 0) != 0 || f.Get(1, 0, 0) != 1 {
		t.Fatalf("unexpected decoded film data %v", f.Data())
	}

	badSpecs := []string{
		"P3\n1 1\n255\n\x00\x00\x00",
		"P6\n1 1\n65535\n\x00\x00\x00\x00\x00\x00",
		"P6\n1 x\n255\n",
		"P6\n2 2\n255\n\x00\x00\x00",
	}
	for specIndex, spec := range badSpecs {
		if _, err = DecodePPM(strings.NewReader(spec), "bad", 1, false, log.New("film test")); err == nil {
			t.Errorf("[spec %d] expected an error", specIndex)
		}
	}

	sizeSpecs := []struct {
		payload string
		expErr  error
	}{
		{"P6\n3037000500 3037000500\n255\n", ErrFilmTooLarge},
		{"P5\n9223372036854775807 2\n255\n", ErrFilmTooLarge},
		{"P5\n0 2\n255\n", ErrInvalidSize},
		{"P5\n-4 2\n255\n", ErrInvalidSize},
	}
	for specIndex, spec := range sizeSpecs {
		_, err = DecodePPM(strings.NewReader(spec.payload), "bad", 1, false, log.New("film test"))
		if !errors.Is(err, spec.expErr) || !strings.Contains(err.Error(), "ppm header") {
			t.Errorf("[spec %d] expected a ppm header error wrapping %v; got %v", specIndex, spec.expErr, err)
		}
	}
}

func TestGFIRoundTrip(t *testing.T) {
	f := newFilm(t, 3, 2, 4)
	f.SetGamma(2.2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			_ = f.PutColor(x, y, types.Vec4d{float64(x), float64(y), 0.5, 0.25})
		}
	}

	for _, reverse := range []bool{false, true} {
		var buf bytes.Buffer
		if err := (GFIEncoder{AppName: "grind test", ReverseScanlines: reverse}).Encode(&buf, f); err != nil {
			t.Fatal(err)
		}

		raw := buf.Bytes()
		if !bytes.HasPrefix(raw, []byte("GRIND_FLOAT_IMG_")) {
			t.Fatalf("expected gfi magic; got %q", raw[:16])
		}
		if len(raw) != 72+3*2*4*4 {
			t.Fatalf("expected 72 header bytes and 96 pixel bytes; got %d bytes", len(raw))
		}
		if resX := binary.LittleEndian.Uint32(raw[20:]); resX != 3 {
			t.Fatalf("expected little-endian res_x 3; got %d", resX)
		}

		back, err := DecodeGFI(bytes.NewReader(raw), "back", reverse, log.New("film test"))
		if err != nil {
			t.Fatal(err)
		}
		if back.Gamma() != float64(float32(2.2)) {
			t.Fatalf("expected gamma to be preserved; got %f", back.Gamma())
		}
		for i, v := range f.Data() {
			if back.Data()[i] != v {
				t.Fatalf("[reverse %t] value %d: expected %f; got %f", reverse, i, v, back.Data()[i])
			}
		}
	}

	// Loading a reversed file without the flag swaps the rows
	var buf bytes.Buffer
	_ = (GFIEncoder{ReverseScanlines: true}).Encode(&buf, f)
	back, _ := DecodeGFI(&buf, "back", false, log.New("film test"))
	if col, _ := back.GetColor(0, 0); col[1] != 1 {
		t.Fatalf("expected first row to hold the last scanline; got %v", col)
	}
}

func TestGFIBadHeader(t *testing.T) {
	f := newFilm(t, 1, 1, 1)
	var buf bytes.Buffer
	if err := (GFIEncoder{}).Encode(&buf, f); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	badMagic := append([]byte(nil), raw...)
	badMagic[0] = 'X'
	badVersion := append([]byte(nil), raw...)
	binary.LittleEndian.PutUint32(badVersion[16:], 99)

	// The pixel count overflows the address space
	hugeRes := append([]byte(nil), raw...)
	binary.LittleEndian.PutUint32(hugeRes[20:], 0x7fffffff)
	binary.LittleEndian.PutUint32(hugeRes[24:], 0x7fffffff)
	binary.LittleEndian.PutUint32(hugeRes[28:], 4)
	zeroRes := append([]byte(nil), raw...)
	binary.LittleEndian.PutUint32(zeroRes[20:], 0)

	for specIndex, spec := range [][]byte{badMagic, badVersion, raw[:10], hugeRes, zeroRes} {
		if _, err := DecodeGFI(bytes.NewReader(spec), "bad", false, log.New("film test")); !errors.Is(err, ErrBadGFIHeader) {
			t.Errorf("[spec %d] expected ErrBadGFIHeader; got %v", specIndex, err)
		}
	}

	if _, err := DecodeGFI(bytes.NewReader(hugeRes), "bad", false, log.New("film test")); !errors.Is(err, ErrFilmTooLarge) {
		t.Fatalf("expected ErrFilmTooLarge; got %v", err)
	}
}

func TestSaveAndLoadFiles(t *testing.T) {
	f := newFilm(t, 2, 2, 4)
	_ = f.FillColor(types.Vec4d{0.5, 0.25, 1, 1})
	dir := t.TempDir()

	gfiPath := filepath.Join(dir, "out.gfi")
	if err := f.SaveFile(gfiPath, "gfi"); err != nil {
		t.Fatal(err)
	}
	back, err := LoadGFI(gfiPath, log.New("film test"))
	if err != nil {
		t.Fatal(err)
	}
	if col, _ := back.GetColor(1, 1); col != (types.Vec4d{0.5, 0.25, 1, 1}) {
		t.Fatalf("expected gfi round trip to be exact; got %v", col)
	}

	ppmPath := filepath.Join(dir, "out.ppm")
	if err = f.SaveFile(ppmPath, "ppm"); err != nil {
		t.Fatal(err)
	}
	gray, err := LoadPPM(ppmPath, 1, log.New("film test"))
	if err != nil {
		t.Fatal(err)
	}
	if gray.Channels() != 3 || gray.Get(0, 0, 2) != 1 {
		t.Fatalf("expected an RGB film with blue 1; got %d channels, %v", gray.Channels(), gray.Data())
	}

	if _, err = LoadGFI(filepath.Join(dir, "missing.gfi"), log.New("film test")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestRegisterSink(t *testing.T) {
	called := false
	RegisterSink("Null", SinkFunc(func(_ io.Writer, _ *Film) error {
		called = true
		return nil
	}))
	defer delete(sinks, "null")

	f := newFilm(t, 1, 1, 4)
	var buf bytes.Buffer
	if err := f.Encode(&buf, "null"); err != nil || !called {
		t.Fatalf("expected registered sink to be invoked; got %v", err)
	}

	found := false
	for _, format := range Formats() {
		found = found || format == "null"
	}
	if !found {
		t.Fatalf("expected null in formats list %v", Formats())
	}
}
