package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grindrt/grind/types"
)

var (
	ErrMissingKey   = errors.New("config: missing mandatory key")
	ErrTrailingData = errors.New("config: unexpected data after scene description")
)

// Camera settings. Pointer fields are only applied when present in the
// scene description.
type Camera struct {
	EyePos  *types.Vec3d `json:"eye_pos,omitempty"`
	LookAt  *types.Vec3d `json:"look_at,omitempty"`
	Up      *types.Vec3d `json:"up,omitempty"`
	FovYRad *float64     `json:"fovy_rad,omitempty"`
	ZNear   *float64     `json:"z_near,omitempty"`
}

// Material settings. Name and type are mandatory.
type Material struct {
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	Diffuse        *types.Vec3d `json:"diffuse,omitempty"`
	Emissive       *types.Vec3d `json:"emissive,omitempty"`
	IOR            *float64     `json:"ior,omitempty"`
	DiffuseTexture string       `json:"diffuse_texture,omitempty"`
}

// Object is either a reference to a wavefront file or an inline triangle
// mesh.
type Object struct {
	Name     string        `json:"name"`
	File     string        `json:"file,omitempty"`
	Vertices []types.Vec3d `json:"vertices,omitempty"`
	Faces    [][3]int      `json:"faces,omitempty"`
	Material string        `json:"material,omitempty"`
}

type Film struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Channels int     `json:"channels"`
	Gamma    float64 `json:"gamma"`

	// The frame is rendered at Supersample times the film size and
	// downsampled before it is saved.
	Supersample int `json:"supersample"`
}

type Render struct {
	SamplesPerPixel int     `json:"spp"`
	Mode            string  `json:"mode"`
	AOSamples       int     `json:"ao_samples"`
	AODistance      float64 `json:"ao_distance"`
	Seed            uint64  `json:"seed"`
}

// Config describes a scene and the settings used to render it.
type Config struct {
	Camera     Camera       `json:"camera"`
	Materials  []Material   `json:"materials"`
	Objects    []Object     `json:"objects"`
	Film       Film         `json:"film"`
	Render     Render       `json:"render"`
	Background *types.Vec3d `json:"background,omitempty"`
}

// Default returns a config with the default film and render settings.
func Default() Config {
	return Config{
		Film: Film{
			Width:       512,
			Height:      512,
			Channels:    4,
			Gamma:       2.2,
			Supersample: 1,
		},
		Render: Render{
			SamplesPerPixel: 1,
			Mode:            "flat",
			AOSamples:       16,
			AODistance:      1.0,
		},
	}
}

// Load reads a JSON scene description from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a JSON scene description. Settings missing from the input
// keep their default values while unknown keys are reported as errors.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Config{}, ErrTrailingData
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks mandatory keys and value ranges.
func (c *Config) Validate() error {
	var errs []error
	for i, mat := range c.Materials {
		if err := mat.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("materials[%d]: %w", i, err))
		}
	}
	for i, obj := range c.Objects {
		if obj.File == "" && len(obj.Vertices) == 0 {
			errs = append(errs, fmt.Errorf("objects[%d] (%q): %w: file or vertices", i, obj.Name, ErrMissingKey))
		}
		if obj.File != "" && len(obj.Vertices) != 0 {
			errs = append(errs, fmt.Errorf("config: objects[%d] (%q): file and vertices are mutually exclusive", i, obj.Name))
		}
	}
	if c.Film.Width <= 0 || c.Film.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: invalid film size %dx%d", c.Film.Width, c.Film.Height))
	}
	if c.Film.Supersample <= 0 {
		errs = append(errs, fmt.Errorf("config: supersample factor must be positive; got %d", c.Film.Supersample))
	}
	switch c.Film.Channels {
	case 1, 3, 4:
	default:
		errs = append(errs, fmt.Errorf("config: unsupported film channel count %d", c.Film.Channels))
	}
	if c.Render.SamplesPerPixel <= 0 {
		errs = append(errs, fmt.Errorf("config: spp must be positive; got %d", c.Render.SamplesPerPixel))
	}
	return errors.Join(errs...)
}

// Validate reports the missing mandatory material keys by name.
func (m *Material) Validate() error {
	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) != 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}
	return nil
}
