package reader

import (
	"context"
	"errors"
	"fmt"

	"github.com/grindrt/grind/asset"
	"github.com/grindrt/grind/asset/texture"
	"github.com/grindrt/grind/scene"
)

var (
	ErrUnsupportedFormat = errors.New("reader: unsupported scene format")
	errIndexOutOfBounds  = errors.New("index out of bounds")
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or URL. The reader is selected based on the
// file extension: .obj (wavefront), .json (scene description) or .zip
// (compiled scene). The returned scene is prepared for rendering.
func ReadScene(ctx context.Context, filename string) (*scene.Scene, error) {
	res, err := asset.Open(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	// Select reader based on file extension
	var reader Reader
	switch res.Ext() {
	case ".obj":
		reader = newWavefrontReader(ctx, nil, scene.InvalidTag)
	case ".json":
		reader = newJSONSceneReader(ctx)
	case ".zip":
		reader = newZipSceneReader()
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, res.Ext())
	}

	sc, err := reader.Read(res)
	if err != nil {
		return nil, err
	}
	if err = sc.Prepare(); err != nil {
		return nil, fmt.Errorf("reader: %s: %w", res.Path(), err)
	}
	return sc, nil
}

// Load a texture and store it in db. Textures are cached by their resolved
// path so materials sharing a texture share its tag.
func loadTexture(ctx context.Context, db *scene.SceneDB, cache map[string]scene.TextureTag, texPath string, relTo *asset.Resource) (scene.TextureTag, error) {
	res, err := asset.Open(ctx, texPath, relTo)
	if err != nil {
		return scene.InvalidTag, err
	}
	defer res.Close()

	if tag, exists := cache[res.Path()]; exists {
		return tag, nil
	}

	tex, err := texture.New(res)
	if err != nil {
		return scene.InvalidTag, err
	}
	tag, err := db.StoreTexture(tex)
	if err != nil {
		return scene.InvalidTag, err
	}
	cache[res.Path()] = tag
	return tag, nil
}
