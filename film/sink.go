package film

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Sink encodes a film into an output format.
type Sink interface {
	Encode(w io.Writer, f *Film) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(w io.Writer, f *Film) error

func (fn SinkFunc) Encode(w io.Writer, f *Film) error {
	return fn(w, f)
}

var sinks = map[string]Sink{}

func init() {
	RegisterSink("ppm", PPMEncoder{})
	RegisterSink("gfi", GFIEncoder{AppName: "grind"})
	RegisterSink("png", SinkFunc(encodePNG))
	RegisterSink("webp", SinkFunc(encodeWebP))
}

// Register a sink for a format tag, replacing any existing one.
func RegisterSink(format string, sink Sink) {
	sinks[strings.ToLower(format)] = sink
}

// Get the list of registered format tags.
func Formats() []string {
	formats := make([]string, 0, len(sinks))
	for format := range sinks {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Encode the film using the sink registered for format.
func (f *Film) Encode(w io.Writer, format string) error {
	sink, ok := sinks[strings.ToLower(format)]
	if !ok {
		return fmt.Errorf("%w %q; supported formats: %s", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
	return sink.Encode(w, f)
}

// SaveFile writes the film to path using the sink registered for format.
func (f *Film) SaveFile(path, format string) error {
	if _, ok := sinks[strings.ToLower(format)]; !ok {
		return fmt.Errorf("%w %q; supported formats: %s", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("film: create %s: %w", path, err)
	}

	bw := bufio.NewWriter(file)
	if err = f.Encode(bw, format); err == nil {
		err = bw.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("film: write %s: %w", path, err)
	}

	f.logger.Infof("saved film %q (%dx%d) to %s", f.name, f.width, f.height, path)
	return nil
}

func encodePNG(w io.Writer, f *Film) error {
	return png.Encode(w, f.ToImage())
}

func encodeWebP(w io.Writer, f *Film) error {
	return nativewebp.Encode(w, f.ToImage(), nil)
}
