package scene

import (
	"fmt"

	"github.com/grindrt/grind/types"
)

type MaterialType uint8

const (
	DiffuseMaterial MaterialType = iota
	SpecularMaterial
	RefractiveMaterial
	EmissiveMaterial
)

var materialTypeNames = map[MaterialType]string{
	DiffuseMaterial:    "diffuse",
	SpecularMaterial:   "specular",
	RefractiveMaterial: "refractive",
	EmissiveMaterial:   "emissive",
}

func (t MaterialType) String() string {
	if name, ok := materialTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MaterialType(%d)", uint8(t))
}

// Parse a material type name such as "diffuse".
func ParseMaterialType(name string) (MaterialType, error) {
	for t, typeName := range materialTypeNames {
		if typeName == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("scene: unknown material type %q", name)
}

// Defines a scene material. Materials are registered with a SceneDB and
// referenced by index from primitives.
type Material struct {
	// Unique material name.
	Name string

	// The type of the material.
	Type MaterialType

	// Diffuse color.
	Diffuse types.Vec3d

	// Emissive color (if material is light).
	Emissive types.Vec3d

	// Index of refraction (refractive materials only)
	IOR float64

	// Diffuse texture; InvalidTag if the material is untextured.
	DiffuseTex TextureTag
}

// Create a diffuse material with no texture.
func NewMaterial(name string) *Material {
	return &Material{
		Name:       name,
		Type:       DiffuseMaterial,
		Diffuse:    types.Vec3d{0.8, 0.8, 0.8},
		IOR:        1.0,
		DiffuseTex: InvalidTag,
	}
}

// Returns true if the material emits light.
func (m *Material) IsEmissive() bool {
	return m.Type == EmissiveMaterial || m.Emissive.MaxComponent() > 0
}
