package scene

import (
	"fmt"

	"github.com/grindrt/grind/types"
)

// TriMesh is a polygon soup stored as parallel vertex, texture coordinate and
// normal arrays with per-face index triples. A mesh cannot be intersected
// directly; Refine decomposes it into triangles right before tracing.
type TriMesh struct {
	vertices    []types.Vec3d
	faceIndices [][3]int

	texCoords        []types.Vec2d
	texCoordIndices  [][3]int
	normals          []types.Vec3d
	normalIndices    [][3]int
	materialIndex    int
	bbox             BoundingBox
	refinedTriangles []*Triangle
}

// Create an empty mesh.
func NewTriMesh() *TriMesh {
	return &TriMesh{
		materialIndex: -1,
		bbox:          NewBoundingBox(),
	}
}

// Replace all mesh arrays and recalculate the mesh bbox. Texture coordinate
// and normal index lists must either be empty or contain one entry per face.
func (m *TriMesh) SetData(
	vertices []types.Vec3d, faceIndices [][3]int,
	texCoords []types.Vec2d, texCoordIndices [][3]int,
	normals []types.Vec3d, normalIndices [][3]int,
) error {
	if len(vertices) == 0 {
		return ErrEmptyVertexList
	}
	if err := checkIndices("face", faceIndices, len(vertices)); err != nil {
		return err
	}
	if len(texCoordIndices) != 0 && len(texCoordIndices) != len(faceIndices) {
		return fmt.Errorf("%w: %d texcoord index triples for %d faces", ErrIndexCount, len(texCoordIndices), len(faceIndices))
	}
	if err := checkIndices("texcoord", texCoordIndices, len(texCoords)); err != nil {
		return err
	}
	if len(normalIndices) != 0 && len(normalIndices) != len(faceIndices) {
		return fmt.Errorf("%w: %d normal index triples for %d faces", ErrIndexCount, len(normalIndices), len(faceIndices))
	}
	if err := checkIndices("normal", normalIndices, len(normals)); err != nil {
		return err
	}

	m.vertices = vertices
	m.faceIndices = faceIndices
	m.texCoords = texCoords
	m.texCoordIndices = texCoordIndices
	m.normals = normals
	m.normalIndices = normalIndices
	m.refinedTriangles = nil
	m.UpdateBBox()
	return nil
}

func checkIndices(kind string, indices [][3]int, count int) error {
	for face, triple := range indices {
		for _, index := range triple {
			if index < 0 || index >= count {
				return fmt.Errorf("%w: %s index %d of face %d (list length %d)", ErrIndexOutOfRange, kind, index, face, count)
			}
		}
	}
	return nil
}

// Recalculate the mesh bbox from its vertices.
func (m *TriMesh) UpdateBBox() {
	m.bbox.Invalidate()
	for _, v := range m.vertices {
		m.bbox.InsertPoint(v)
	}
}

func (m *TriMesh) BBox() BoundingBox {
	return m.bbox
}

// Meshes must be refined into triangles before they can be intersected.
func (m *TriMesh) CanIntersect() bool {
	return false
}

func (m *TriMesh) Intersect(ray *Ray, hit *HitRecord) bool {
	return false
}

func (m *TriMesh) MaterialIndex() int {
	return m.materialIndex
}

// Set the material index for the mesh and any already refined triangles.
func (m *TriMesh) SetMaterialIndex(index int) {
	m.materialIndex = index
	for _, tri := range m.refinedTriangles {
		tri.MaterialIndex = index
	}
}

func (m *TriMesh) NumFaces() int {
	return len(m.faceIndices)
}

func (m *TriMesh) Vertices() []types.Vec3d {
	return m.vertices
}

func (m *TriMesh) FaceIndices() [][3]int {
	return m.faceIndices
}

func (m *TriMesh) TexCoords() []types.Vec2d {
	return m.texCoords
}

func (m *TriMesh) TexCoordIndices() [][3]int {
	return m.texCoordIndices
}

func (m *TriMesh) Normals() []types.Vec3d {
	return m.normals
}

func (m *TriMesh) NormalIndices() [][3]int {
	return m.normalIndices
}

// Refine returns one triangle per face. The triangle list is built on the
// first call and cached until the next SetData.
func (m *TriMesh) Refine() []*Triangle {
	if m.refinedTriangles != nil || len(m.faceIndices) == 0 {
		return m.refinedTriangles
	}

	triangles := make([]*Triangle, len(m.faceIndices))
	for face, triple := range m.faceIndices {
		tri := NewTriangle(m.vertices[triple[0]], m.vertices[triple[1]], m.vertices[triple[2]])
		tri.MaterialIndex = m.materialIndex

		if len(m.texCoordIndices) != 0 {
			uvTriple := m.texCoordIndices[face]
			for i := 0; i < 3; i++ {
				tri.UV[i] = m.texCoords[uvTriple[i]]
			}
			tri.HasUV = true
		}
		if len(m.normalIndices) != 0 {
			nTriple := m.normalIndices[face]
			for i := 0; i < 3; i++ {
				tri.Normals[i] = m.normals[nTriple[i]]
			}
			tri.HasNormals = true
		}
		triangles[face] = tri
	}

	m.refinedTriangles = triangles
	return triangles
}
