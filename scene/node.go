package scene

import "fmt"

// Tags are opaque handles returned by a SceneDB. A tag is only meaningful
// within its own object category.
type (
	NodeTag     int
	MaterialTag int
	TextureTag  int
)

// Tag value used for unset references.
const InvalidTag = -1

type NodeKind uint8

const (
	GroupNode NodeKind = iota
	MaterialNode
	PrimitiveNode
)

func (k NodeKind) String() string {
	switch k {
	case GroupNode:
		return "group"
	case MaterialNode:
		return "material"
	case PrimitiveNode:
		return "primitive"
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is a scene graph node. Children are referenced by tag and resolved
// through the SceneDB that owns them.
type Node struct {
	name     string
	kind     NodeKind
	children []NodeTag
	bbox     BoundingBox

	material  MaterialTag
	primitive Primitive
}

func newNode(name string, kind NodeKind) *Node {
	return &Node{
		name:     name,
		kind:     kind,
		bbox:     NewBoundingBox(),
		material: InvalidTag,
	}
}

// Create a node that groups other nodes.
func NewGroupNode(name string) *Node {
	return newNode(name, GroupNode)
}

// Create a node that applies a material to the nodes following it in its
// parent's child list as well as to its own children.
func NewMaterialNode(name string, material MaterialTag) *Node {
	n := newNode(name, MaterialNode)
	n.material = material
	return n
}

// Create a leaf node wrapping a primitive.
func NewPrimitiveNode(name string, primitive Primitive) (*Node, error) {
	n := newNode(name, PrimitiveNode)
	if err := n.SetPrimitive(primitive); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Kind() NodeKind {
	return n.kind
}

func (n *Node) IsPrimitiveNode() bool {
	return n.kind == PrimitiveNode
}

func (n *Node) Children() []NodeTag {
	return n.children
}

func (n *Node) BBox() BoundingBox {
	return n.bbox
}

// Material tag of a material node; InvalidTag for other kinds.
func (n *Node) Material() MaterialTag {
	return n.material
}

// Primitive of a primitive node; nil for other kinds.
func (n *Node) Primitive() Primitive {
	return n.primitive
}

// Append a child node. Primitive nodes are leaves and reject children.
func (n *Node) AppendChild(child NodeTag) error {
	if n.IsPrimitiveNode() {
		return fmt.Errorf("%w: %q", ErrPrimitiveNode, n.name)
	}
	if child < 0 {
		return fmt.Errorf("%w: node tag %d", ErrInvalidTag, child)
	}
	n.children = append(n.children, child)
	return nil
}

// Assign the material of a material node.
func (n *Node) SetMaterial(material MaterialTag) error {
	if n.kind != MaterialNode {
		return fmt.Errorf("%w: SetMaterial on %s node %q", ErrWrongKind, n.kind, n.name)
	}
	if len(n.children) != 0 {
		return fmt.Errorf("%w: %q", ErrHasChildren, n.name)
	}
	n.material = material
	return nil
}

// Assign the primitive of a primitive node and adopt its bbox.
func (n *Node) SetPrimitive(primitive Primitive) error {
	if n.kind != PrimitiveNode {
		return fmt.Errorf("%w: SetPrimitive on %s node %q", ErrWrongKind, n.kind, n.name)
	}
	if len(n.children) != 0 {
		return fmt.Errorf("%w: %q", ErrHasChildren, n.name)
	}
	if primitive == nil {
		return ErrNilPrimitive
	}
	n.primitive = primitive
	n.bbox = primitive.BBox()
	return nil
}
