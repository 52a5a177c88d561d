package scene

import (
	"fmt"

	"github.com/grindrt/grind/log"
)

// SceneDB owns the textures, materials and nodes of a scene. Objects are
// stored in append-only lists and referenced by their index, so tags stay
// valid until Clear is invoked.
type SceneDB struct {
	logger log.Logger

	textures      []Texture
	materials     []*Material
	materialIndex map[string]int
	nodes         []*Node
}

// Create an empty scene database.
func NewSceneDB(logger log.Logger) *SceneDB {
	return &SceneDB{
		logger:        logger,
		materialIndex: make(map[string]int),
	}
}

func (db *SceneDB) StoreTexture(tex Texture) (TextureTag, error) {
	if tex == nil {
		return InvalidTag, fmt.Errorf("scene: cannot store nil texture")
	}
	db.textures = append(db.textures, tex)
	tag := TextureTag(len(db.textures) - 1)
	db.logger.Debugf("stored texture %q with tag %d", tex.Name(), tag)
	return tag, nil
}

// Store a material. Material names must be unique.
func (db *SceneDB) StoreMaterial(mat *Material) (MaterialTag, error) {
	if mat == nil || mat.Name == "" {
		return InvalidTag, ErrUnnamedMaterial
	}
	if _, exists := db.materialIndex[mat.Name]; exists {
		return InvalidTag, fmt.Errorf("%w: %q", ErrDuplicateMaterial, mat.Name)
	}
	if mat.DiffuseTex != InvalidTag {
		if _, err := db.Texture(mat.DiffuseTex); err != nil {
			return InvalidTag, fmt.Errorf("scene: material %q: %w", mat.Name, err)
		}
	}

	db.materials = append(db.materials, mat)
	tag := len(db.materials) - 1
	db.materialIndex[mat.Name] = tag
	db.logger.Debugf("stored material %q with tag %d", mat.Name, tag)
	return MaterialTag(tag), nil
}

func (db *SceneDB) StoreNode(node *Node) (NodeTag, error) {
	if node == nil {
		return InvalidTag, fmt.Errorf("scene: cannot store nil node")
	}
	db.nodes = append(db.nodes, node)
	return NodeTag(len(db.nodes) - 1), nil
}

func (db *SceneDB) Texture(tag TextureTag) (Texture, error) {
	if tag < 0 || int(tag) >= len(db.textures) {
		return nil, fmt.Errorf("%w: texture tag %d", ErrInvalidTag, tag)
	}
	return db.textures[tag], nil
}

func (db *SceneDB) Material(tag MaterialTag) (*Material, error) {
	if tag < 0 || int(tag) >= len(db.materials) {
		return nil, fmt.Errorf("%w: material tag %d", ErrInvalidTag, tag)
	}
	return db.materials[tag], nil
}

func (db *SceneDB) Node(tag NodeTag) (*Node, error) {
	if tag < 0 || int(tag) >= len(db.nodes) {
		return nil, fmt.Errorf("%w: node tag %d", ErrInvalidTag, tag)
	}
	return db.nodes[tag], nil
}

// Lookup a material index by its name. Returns -1 if no such material exists.
func (db *SceneDB) MaterialIndexByName(name string) int {
	if index, ok := db.materialIndex[name]; ok {
		return index
	}
	return -1
}

func (db *SceneDB) Materials() []*Material {
	return db.materials
}

func (db *SceneDB) Textures() []Texture {
	return db.textures
}

func (db *SceneDB) NumTextures() int {
	return len(db.textures)
}

func (db *SceneDB) NumMaterials() int {
	return len(db.materials)
}

func (db *SceneDB) NumNodes() int {
	return len(db.nodes)
}

// Release all stored objects. Any previously returned tag becomes invalid.
func (db *SceneDB) Clear() {
	db.logger.Debugf("clearing %d nodes, %d materials and %d textures", len(db.nodes), len(db.materials), len(db.textures))
	db.textures = nil
	db.materials = nil
	db.nodes = nil
	db.materialIndex = make(map[string]int)
}

// WalkFunc is invoked for every node visited by Walk. Returning an error
// aborts the walk.
type WalkFunc func(tag NodeTag, node *Node, depth int) error

// Walk visits the graph rooted at root depth-first, parents before children.
func (db *SceneDB) Walk(root NodeTag, fn WalkFunc) error {
	return db.walk(root, 0, make(map[NodeTag]bool), fn)
}

func (db *SceneDB) walk(tag NodeTag, depth int, onPath map[NodeTag]bool, fn WalkFunc) error {
	if onPath[tag] {
		return fmt.Errorf("%w: node %d", ErrCycle, tag)
	}
	node, err := db.Node(tag)
	if err != nil {
		return err
	}
	if err = fn(tag, node, depth); err != nil {
		return err
	}

	onPath[tag] = true
	for _, child := range node.children {
		if err = db.walk(child, depth+1, onPath, fn); err != nil {
			return err
		}
	}
	delete(onPath, tag)
	return nil
}

// UpdateBBoxes recalculates the bboxes of the graph rooted at root bottom-up.
// Each non-leaf bbox becomes the union of all descendant primitive node
// bboxes with a positive rank. Nodes without such descendants end up with
// an invalidated bbox.
func (db *SceneDB) UpdateBBoxes(root NodeTag) error {
	_, err := db.updateBBox(root, make(map[NodeTag]bool))
	return err
}

func (db *SceneDB) updateBBox(tag NodeTag, onPath map[NodeTag]bool) (*Node, error) {
	if onPath[tag] {
		return nil, fmt.Errorf("%w: node %d", ErrCycle, tag)
	}
	node, err := db.Node(tag)
	if err != nil {
		return nil, err
	}

	if node.IsPrimitiveNode() {
		if node.primitive != nil {
			node.bbox = node.primitive.BBox()
		}
		return node, nil
	}

	onPath[tag] = true
	node.bbox.Invalidate()
	for _, childTag := range node.children {
		child, err := db.updateBBox(childTag, onPath)
		if err != nil {
			return nil, err
		}
		if child.bbox.Rank() > 0 {
			// Rank is checked above so this cannot fail
			_ = node.bbox.InsertBBox(child.bbox)
		}
	}
	delete(onPath, tag)
	return node, nil
}

// Primitives that accept a material assignment.
type materialAssigner interface {
	SetMaterialIndex(index int)
}

// ResolveMaterials assigns material indices to the primitives of the graph
// rooted at root. A material node applies to its own children and to the
// siblings that follow it; primitives inherit the material of their
// parent otherwise. Primitives outside any material keep their index.
func (db *SceneDB) ResolveMaterials(root NodeTag) error {
	_, err := db.resolveMaterials(root, InvalidTag, make(map[NodeTag]bool))
	return err
}

func (db *SceneDB) resolveMaterials(tag NodeTag, current MaterialTag, onPath map[NodeTag]bool) (MaterialTag, error) {
	if onPath[tag] {
		return current, fmt.Errorf("%w: node %d", ErrCycle, tag)
	}
	node, err := db.Node(tag)
	if err != nil {
		return current, err
	}

	switch node.kind {
	case PrimitiveNode:
		if current == InvalidTag {
			return current, nil
		}
		if assigner, ok := node.primitive.(materialAssigner); ok {
			assigner.SetMaterialIndex(int(current))
		}
		return current, nil
	case MaterialNode:
		if node.material != InvalidTag {
			if _, err = db.Material(node.material); err != nil {
				return current, fmt.Errorf("scene: material node %q: %w", node.name, err)
			}
			current = node.material
		}
	}

	onPath[tag] = true
	inherited := current
	for _, child := range node.children {
		if inherited, err = db.resolveMaterials(child, inherited, onPath); err != nil {
			return current, err
		}
	}
	delete(onPath, tag)

	// Only material nodes leak their material to the following siblings.
	return current, nil
}
