package scene

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/grindrt/grind/types"
	"github.com/olekukonko/tablewriter"
)

// Scene bundles a scene database, the root of its scene graph and the
// camera used to view it.
type Scene struct {
	DB     *SceneDB
	Root   NodeTag
	Camera *Camera

	BgColor types.Vec3d
}

// Create a scene with an empty root group node.
func NewScene(db *SceneDB) (*Scene, error) {
	root, err := db.StoreNode(NewGroupNode("root"))
	if err != nil {
		return nil, err
	}
	return &Scene{
		DB:     db,
		Root:   root,
		Camera: NewCamera(),
	}, nil
}

// Store node and append it to the children of parent.
func (sc *Scene) AddNode(parent NodeTag, node *Node) (NodeTag, error) {
	parentNode, err := sc.DB.Node(parent)
	if err != nil {
		return InvalidTag, err
	}
	// Check before storing so a rejected node does not linger in the db.
	if parentNode.IsPrimitiveNode() {
		return InvalidTag, fmt.Errorf("%w: %q", ErrPrimitiveNode, parentNode.Name())
	}

	tag, err := sc.DB.StoreNode(node)
	if err != nil {
		return InvalidTag, err
	}
	if err = parentNode.AppendChild(tag); err != nil {
		return InvalidTag, err
	}
	return tag, nil
}

// Wrap primitive in a primitive node and append it to parent.
func (sc *Scene) AddPrimitive(parent NodeTag, name string, primitive Primitive) (NodeTag, error) {
	node, err := NewPrimitiveNode(name, primitive)
	if err != nil {
		return InvalidTag, err
	}
	return sc.AddNode(parent, node)
}

// Prepare the scene for rendering by propagating the node bboxes and
// assigning materials to primitives.
func (sc *Scene) Prepare() error {
	if err := sc.DB.UpdateBBoxes(sc.Root); err != nil {
		return err
	}
	return sc.DB.ResolveMaterials(sc.Root)
}

// Get the bbox of the root node. It is only up to date after Prepare.
func (sc *Scene) BBox() BoundingBox {
	root, err := sc.DB.Node(sc.Root)
	if err != nil {
		return NewBoundingBox()
	}
	return root.BBox()
}

// Collect all primitive nodes reachable from the scene root.
func (sc *Scene) PrimitiveNodes() ([]*Node, error) {
	var nodes []*Node
	err := sc.DB.Walk(sc.Root, func(_ NodeTag, node *Node, _ int) error {
		if node.IsPrimitiveNode() && node.Primitive() != nil {
			nodes = append(nodes, node)
		}
		return nil
	})
	return nodes, err
}

// Stats returns a table with a summary of the scene contents.
func (sc *Scene) Stats() string {
	var (
		meshes, triangles, faces, other int
		vertices                        []types.Vec3d
		normals                         []types.Vec3d
		uvs                             []types.Vec2d
		indices                         [][3]int
	)
	nodes, err := sc.PrimitiveNodes()
	if err != nil {
		return fmt.Sprintf("scene: unable to collect stats: %v", err)
	}
	for _, node := range nodes {
		switch p := node.Primitive().(type) {
		case *TriMesh:
			meshes++
			faces += p.NumFaces()
			vertices = append(vertices, p.Vertices()...)
			normals = append(normals, p.Normals()...)
			uvs = append(uvs, p.TexCoords()...)
			indices = append(indices, p.FaceIndices()...)
			indices = append(indices, p.TexCoordIndices()...)
			indices = append(indices, p.NormalIndices()...)
		case *Triangle:
			triangles++
		default:
			other++
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", " ", fmtSize(vertices, normals, uvs, indices)})
	table.Append([]string{"", "Vertices", fmt.Sprint(len(vertices)), fmtSize(vertices)})
	table.Append([]string{"", "Normals", fmt.Sprint(len(normals)), fmtSize(normals)})
	table.Append([]string{"", "UVs", fmt.Sprint(len(uvs)), fmtSize(uvs)})
	table.Append([]string{"", "Indices", fmt.Sprint(len(indices)), fmtSize(indices)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Primitives", "---", fmt.Sprint(len(nodes)), " "})
	table.Append([]string{"", "Meshes", fmt.Sprint(meshes), " "})
	table.Append([]string{"", "Mesh faces", fmt.Sprint(faces), " "})
	table.Append([]string{"", "Triangles", fmt.Sprint(triangles), " "})
	table.Append([]string{"", "Other", fmt.Sprint(other), " "})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Scene graph", "Nodes", fmt.Sprint(sc.DB.NumNodes()), " "})
	table.Append([]string{"", "Materials", fmt.Sprint(sc.DB.NumMaterials()), " "})
	table.Append([]string{"", "Textures", fmt.Sprint(sc.DB.NumTextures()), " "})
	bbox := sc.BBox()
	table.SetFooter([]string{"BBox", " ", fmt.Sprintf("rank %d", bbox.Rank()), fmt.Sprintf("volume %.3g", bbox.Volume())})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float64
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float64(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}

	return fmt.Sprintf("%3.1f mb", totalBytes/1e6)
}
