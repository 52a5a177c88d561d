package compiler

import (
	"errors"
	"fmt"
	"time"

	"github.com/grindrt/grind/asset/texture"
	"github.com/grindrt/grind/config"
	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/scene"
	"github.com/grindrt/grind/types"
)

const (
	// Name of the snapshot entry inside compiled scene archives.
	DataFile = "scene.bin"

	// Bumped whenever the snapshot layout changes.
	SnapshotVersion = 1
)

var (
	ErrUnsupportedTexture   = errors.New("compiler: only decoded image textures can be compiled")
	ErrUnsupportedPrimitive = errors.New("compiler: unsupported primitive type")
	ErrSnapshotVersion      = errors.New("compiler: unsupported snapshot version")
)

// Camera settings stored in a snapshot.
type Camera struct {
	Eye    types.Vec3d
	LookAt types.Vec3d
	Up     types.Vec3d
	FovY   float64
	ZNear  float64
}

// A flattened triangle mesh. Material refers to a snapshot material by
// name and is empty for meshes without a material.
type Mesh struct {
	Name            string
	Material        string
	Vertices        []types.Vec3d
	FaceIndices     [][3]int
	TexCoords       []types.Vec2d
	TexCoordIndices [][3]int
	Normals         []types.Vec3d
	NormalIndices   [][3]int
}

// Snapshot is a self-contained, gob-friendly copy of a prepared scene. The
// scene graph is flattened: every reachable primitive becomes a mesh with
// its resolved material.
type Snapshot struct {
	Version    int
	Camera     Camera
	Background types.Vec3d
	Textures   []*texture.Texture
	Materials  []scene.Material
	Meshes     []Mesh
}

// Compile a prepared scene into a snapshot.
func Compile(sc *scene.Scene) (*Snapshot, error) {
	logger := log.New("scene compiler")
	start := time.Now()

	snap := &Snapshot{
		Version: SnapshotVersion,
		Camera: Camera{
			Eye:    sc.Camera.Eye,
			LookAt: sc.Camera.LookAt,
			Up:     sc.Camera.Up,
			FovY:   sc.Camera.FovY,
			ZNear:  sc.Camera.ZNear,
		},
		Background: sc.BgColor,
	}

	for tag, tex := range sc.DB.Textures() {
		imgTex, ok := tex.(*texture.Texture)
		if !ok {
			return nil, fmt.Errorf("%w: texture %d (%s)", ErrUnsupportedTexture, tag, tex.Name())
		}
		snap.Textures = append(snap.Textures, imgTex)
	}
	for _, mat := range sc.DB.Materials() {
		snap.Materials = append(snap.Materials, *mat)
	}

	nodes, err := sc.PrimitiveNodes()
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		mesh, err := flatten(sc.DB, node)
		if err != nil {
			return nil, err
		}
		snap.Meshes = append(snap.Meshes, mesh)
	}

	logger.Infof("compiled %d meshes, %d materials and %d textures in %d ms", len(snap.Meshes), len(snap.Materials), len(snap.Textures), time.Since(start).Milliseconds())
	return snap, nil
}

// Convert the primitive of a primitive node into a snapshot mesh.
func flatten(db *scene.SceneDB, node *scene.Node) (Mesh, error) {
	var (
		mesh     Mesh
		matIndex int
	)

	switch prim := node.Primitive().(type) {
	case *scene.TriMesh:
		mesh = Mesh{
			Vertices:        prim.Vertices(),
			FaceIndices:     prim.FaceIndices(),
			TexCoords:       prim.TexCoords(),
			TexCoordIndices: prim.TexCoordIndices(),
			Normals:         prim.Normals(),
			NormalIndices:   prim.NormalIndices(),
		}
		matIndex = prim.MaterialIndex()
	case *scene.Triangle:
		mesh = Mesh{
			Vertices:    []types.Vec3d{prim.V0, prim.V1, prim.V2},
			FaceIndices: [][3]int{{0, 1, 2}},
		}
		if prim.HasUV {
			mesh.TexCoords = prim.UV[:]
			mesh.TexCoordIndices = [][3]int{{0, 1, 2}}
		}
		if prim.HasNormals {
			mesh.Normals = prim.Normals[:]
			mesh.NormalIndices = [][3]int{{0, 1, 2}}
		}
		matIndex = prim.MaterialIndex
	default:
		return Mesh{}, fmt.Errorf("%w: %T in node %q", ErrUnsupportedPrimitive, prim, node.Name())
	}

	mesh.Name = node.Name()
	if matIndex >= 0 {
		mat, err := db.Material(scene.MaterialTag(matIndex))
		if err != nil {
			return Mesh{}, fmt.Errorf("compiler: mesh %q: %w", node.Name(), err)
		}
		mesh.Material = mat.Name
	}
	return mesh, nil
}

// Restore rebuilds a prepared scene from the snapshot. Meshes are attached
// directly to the scene root and keep their resolved material indices.
func (s *Snapshot) Restore() (*scene.Scene, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w %d", ErrSnapshotVersion, s.Version)
	}

	sc, err := scene.NewScene(scene.NewSceneDB(log.New("scene db")))
	if err != nil {
		return nil, err
	}
	sc.BgColor = s.Background

	fovY, zNear := s.Camera.FovY, s.Camera.ZNear
	err = sc.Camera.Configure(config.Camera{
		EyePos:  &s.Camera.Eye,
		LookAt:  &s.Camera.LookAt,
		Up:      &s.Camera.Up,
		FovYRad: &fovY,
		ZNear:   &zNear,
	})
	if err != nil {
		return nil, err
	}

	for _, tex := range s.Textures {
		if err = tex.Validate(); err != nil {
			return nil, err
		}
		if _, err = sc.DB.StoreTexture(tex); err != nil {
			return nil, err
		}
	}
	for index := range s.Materials {
		mat := s.Materials[index]
		if _, err = sc.DB.StoreMaterial(&mat); err != nil {
			return nil, err
		}
	}

	for _, mesh := range s.Meshes {
		triMesh := scene.NewTriMesh()
		err = triMesh.SetData(mesh.Vertices, mesh.FaceIndices, mesh.TexCoords, mesh.TexCoordIndices, mesh.Normals, mesh.NormalIndices)
		if err != nil {
			return nil, fmt.Errorf("compiler: mesh %q: %w", mesh.Name, err)
		}
		if mesh.Material != "" {
			matIndex := sc.DB.MaterialIndexByName(mesh.Material)
			if matIndex < 0 {
				return nil, fmt.Errorf("compiler: mesh %q references unknown material %q", mesh.Name, mesh.Material)
			}
			triMesh.SetMaterialIndex(matIndex)
		}
		if _, err = sc.AddPrimitive(sc.Root, mesh.Name, triMesh); err != nil {
			return nil, err
		}
	}

	if err = sc.Prepare(); err != nil {
		return nil, err
	}
	return sc, nil
}
