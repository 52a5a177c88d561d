package reader

import (
	"context"
	"fmt"
	"time"

	"github.com/grindrt/grind/asset"
	"github.com/grindrt/grind/config"
	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/scene"
)

type jsonSceneReader struct {
	ctx    context.Context
	logger log.Logger

	textures map[string]scene.TextureTag
	matLibs  map[string]string
}

func newJSONSceneReader(ctx context.Context) *jsonSceneReader {
	return &jsonSceneReader{
		ctx:      ctx,
		logger:   log.New("json reader"),
		textures: make(map[string]scene.TextureTag),
		matLibs:  make(map[string]string),
	}
}

// Read a JSON scene description. Each material gets its own group node
// wrapping a material node; objects referencing the material are attached
// to the material node. Wavefront files referenced by objects are resolved
// relative to the scene description.
func (r *jsonSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Infof(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	cfg, err := config.Parse(sceneRes)
	if err != nil {
		return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
	}

	sc, err := scene.NewScene(scene.NewSceneDB(log.New("scene db")))
	if err != nil {
		return nil, err
	}
	if cfg.Background != nil {
		sc.BgColor = *cfg.Background
	}

	matNodes := make(map[string]scene.NodeTag, len(cfg.Materials))
	for _, matCfg := range cfg.Materials {
		mat, err := r.material(sc.DB, matCfg, sceneRes)
		if err != nil {
			return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
		}
		matTag, err := sc.DB.StoreMaterial(mat)
		if err != nil {
			return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
		}

		// Wrap the material node in a group so the material does not
		// apply to the nodes following it.
		group, err := sc.AddNode(sc.Root, scene.NewGroupNode(mat.Name))
		if err != nil {
			return nil, err
		}
		if matNodes[mat.Name], err = sc.AddNode(group, scene.NewMaterialNode(mat.Name, matTag)); err != nil {
			return nil, err
		}
	}

	for index, obj := range cfg.Objects {
		if err = r.addObject(sc, index, obj, matNodes, sceneRes); err != nil {
			return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
		}
	}

	// Camera settings of the description override the ones found in
	// wavefront files.
	if err = sc.Camera.Configure(cfg.Camera); err != nil {
		return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
	}

	r.logger.Infof("parsed scene in %d ms", time.Since(start).Milliseconds())
	return sc, nil
}

// Convert a material description into a scene material.
func (r *jsonSceneReader) material(db *scene.SceneDB, matCfg config.Material, relTo *asset.Resource) (*scene.Material, error) {
	matType, err := scene.ParseMaterialType(matCfg.Type)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", matCfg.Name, err)
	}

	mat := scene.NewMaterial(matCfg.Name)
	mat.Type = matType
	if matCfg.Diffuse != nil {
		mat.Diffuse = *matCfg.Diffuse
	}
	if matCfg.Emissive != nil {
		mat.Emissive = *matCfg.Emissive
	}
	if matCfg.IOR != nil {
		mat.IOR = *matCfg.IOR
	}
	if matCfg.DiffuseTexture != "" {
		mat.DiffuseTex, err = loadTexture(r.ctx, db, r.textures, matCfg.DiffuseTexture, relTo)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", matCfg.Name, err)
		}
	}
	return mat, nil
}

func (r *jsonSceneReader) addObject(sc *scene.Scene, index int, obj config.Object, matNodes map[string]scene.NodeTag, relTo *asset.Resource) error {
	name := obj.Name
	if name == "" {
		name = fmt.Sprintf("object%d", index)
	}

	parent := sc.Root
	if obj.Material != "" {
		matNode, exists := matNodes[obj.Material]
		if !exists {
			return fmt.Errorf("object %q references unknown material %q", name, obj.Material)
		}
		parent = matNode
	}

	if obj.File == "" {
		mesh := scene.NewTriMesh()
		if err := mesh.SetData(obj.Vertices, obj.Faces, nil, nil, nil, nil); err != nil {
			return fmt.Errorf("object %q: %w", name, err)
		}
		_, err := sc.AddPrimitive(parent, name, mesh)
		return err
	}

	objRes, err := asset.Open(r.ctx, obj.File, relTo)
	if err != nil {
		return fmt.Errorf("object %q: %w", name, err)
	}
	defer objRes.Close()

	// Keep the material nodes of the wavefront file in their own group
	group, err := sc.AddNode(parent, scene.NewGroupNode(name))
	if err != nil {
		return err
	}
	wf := newWavefrontReader(r.ctx, sc, group)
	wf.textures = r.textures
	wf.matLibs = r.matLibs
	wf.ignoreMaterials = obj.Material != ""
	_, err = wf.Read(objRes)
	return err
}
