package scene

import (
	"errors"
	"testing"

	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/types"
)

type constTexture struct {
	name  string
	color types.Vec4d
}

func (tex *constTexture) Name() string { return tex.name }
func (tex *constTexture) Sample(_, _ float64) types.Vec4d { return tex.color }

func newTestDB() *SceneDB {
	return NewSceneDB(log.New("scene test"))
}

func mustStoreNode(t *testing.T, db *SceneDB, node *Node) NodeTag {
	tag, err := db.StoreNode(node)
	if err != nil {
		t.Fatal(err)
	}
	return tag
}

func mustAppend(t *testing.T, db *SceneDB, parent, child NodeTag) {
	node, err := db.Node(parent)
	if err != nil {
		t.Fatal(err)
	}
	if err = node.AppendChild(child); err != nil {
		t.Fatal(err)
	}
}

func meshPrimitive(t *testing.T, verts ...types.Vec3d) *TriMesh {
	mesh := NewTriMesh()
	var faces [][3]int
	for i := 0; i+2 < len(verts); i += 3 {
		faces = append(faces, [3]int{i, i + 1, i + 2})
	}
	if err := mesh.SetData(verts, faces, nil, nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	return mesh
}

func TestNodeRules(t *testing.T) {
	prim, err := NewPrimitiveNode("tri", NewTriangle(types.Vec3d{0, 0, 0}, types.Vec3d{1, 0, 0}, types.Vec3d{0, 1, 0}))
	if err != nil {
		t.Fatal(err)
	}
	if !prim.IsPrimitiveNode() {
		t.Fatal("expected primitive node to report IsPrimitiveNode() == true")
	}
	if err = prim.AppendChild(0); !errors.Is(err, ErrPrimitiveNode) {
		t.Fatalf("expected ErrPrimitiveNode; got %v", err)
	}
	if len(prim.Children()) != 0 {
		t.Fatal("expected rejected child not to be appended")
	}
	if err = prim.SetMaterial(0); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind; got %v", err)
	}
	if err = prim.SetPrimitive(nil); !errors.Is(err, ErrNilPrimitive) {
		t.Fatalf("expected ErrNilPrimitive; got %v", err)
	}

	mat := NewMaterialNode("mat", 0)
	if mat.IsPrimitiveNode() {
		t.Fatal("expected material node to report IsPrimitiveNode() == false")
	}
	if err = mat.SetMaterial(1); err != nil || mat.Material() != 1 {
		t.Fatalf("expected SetMaterial to succeed; got %v", err)
	}
	if err = mat.AppendChild(3); err != nil {
		t.Fatal(err)
	}
	if err = mat.SetMaterial(2); !errors.Is(err, ErrHasChildren) {
		t.Fatalf("expected ErrHasChildren; got %v", err)
	}
	if err = mat.SetPrimitive(NewTriMesh()); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind; got %v", err)
	}

	group := NewGroupNode("group")
	if err = group.AppendChild(InvalidTag); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag; got %v", err)
	}
	if err = group.AppendChild(1); err != nil {
		t.Fatal(err)
	}
	if err = group.SetPrimitive(NewTriMesh()); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind; got %v", err)
	}
}

func TestSceneDBMaterials(t *testing.T) {
	db := newTestDB()

	tag, err := db.StoreMaterial(NewMaterial("red"))
	if err != nil {
		t.Fatal(err)
	}
	if tag != 0 {
		t.Fatalf("expected first material tag to be 0; got %d", tag)
	}
	if _, err = db.StoreMaterial(NewMaterial("green")); err != nil {
		t.Fatal(err)
	}

	_, err = db.StoreMaterial(NewMaterial("red"))
	if !errors.Is(err, ErrDuplicateMaterial) {
		t.Fatalf("expected ErrDuplicateMaterial; got %v", err)
	}
	if db.NumMaterials() != 2 {
		t.Fatalf("expected 2 materials; got %d", db.NumMaterials())
	}

	if _, err = db.StoreMaterial(NewMaterial("")); !errors.Is(err, ErrUnnamedMaterial) {
		t.Fatalf("expected ErrUnnamedMaterial; got %v", err)
	}

	specs := []struct {
		name     string
		expIndex int
	}{
		{"red", 0},
		{"green", 1},
		{"blue", -1},
		{"", -1},
	}
	for specIndex, spec := range specs {
		if got := db.MaterialIndexByName(spec.name); got != spec.expIndex {
			t.Errorf("[spec %d] expected index %d for %q; got %d", specIndex, spec.expIndex, spec.name, got)
		}
	}

	mat, err := db.Material(1)
	if err != nil || mat.Name != "green" {
		t.Fatalf("expected material 1 to be green; got %v, %v", mat, err)
	}
	if _, err = db.Material(2); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag; got %v", err)
	}
}

func TestSceneDBTextures(t *testing.T) {
	db := newTestDB()

	texTag, err := db.StoreTexture(&constTexture{name: "checker", color: types.Vec4d{1, 1, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}

	mat := NewMaterial("textured")
	mat.DiffuseTex = texTag
	if _, err = db.StoreMaterial(mat); err != nil {
		t.Fatal(err)
	}

	bad := NewMaterial("dangling")
	bad.DiffuseTex = 5
	if _, err = db.StoreMaterial(bad); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag for dangling texture reference; got %v", err)
	}

	tex, err := db.Texture(texTag)
	if err != nil || tex.Name() != "checker" {
		t.Fatalf("expected texture checker; got %v, %v", tex, err)
	}

	db.Clear()
	if db.NumTextures() != 0 || db.NumMaterials() != 0 || db.NumNodes() != 0 {
		t.Fatal("expected Clear to release all objects")
	}
	if db.MaterialIndexByName("textured") != -1 {
		t.Fatal("expected material name index to be cleared")
	}
	if _, err = db.Texture(texTag); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag after Clear; got %v", err)
	}
}

func TestUpdateBBoxes(t *testing.T) {
	db := newTestDB()

	//    root
	//   /    \
	//  g1     g2
	//  |  \    \
	//  m1  m2   empty
	root := mustStoreNode(t, db, NewGroupNode("root"))
	g1 := mustStoreNode(t, db, NewGroupNode("g1"))
	g2 := mustStoreNode(t, db, NewGroupNode("g2"))
	empty := mustStoreNode(t, db, NewGroupNode("empty"))

	m1Node, _ := NewPrimitiveNode("m1", meshPrimitive(t, types.Vec3d{0, 0, 0}, types.Vec3d{1, 0, 0}, types.Vec3d{0, 1, 1}))
	m2Node, _ := NewPrimitiveNode("m2", meshPrimitive(t, types.Vec3d{-3, 2, 0}, types.Vec3d{-2, 2, 0}, types.Vec3d{-2, 4, 0}))
	m1 := mustStoreNode(t, db, m1Node)
	m2 := mustStoreNode(t, db, m2Node)

	mustAppend(t, db, root, g1)
	mustAppend(t, db, root, g2)
	mustAppend(t, db, g1, m1)
	mustAppend(t, db, g1, m2)
	mustAppend(t, db, g2, empty)

	if err := db.UpdateBBoxes(root); err != nil {
		t.Fatal(err)
	}

	rootNode, _ := db.Node(root)
	rootBox := rootNode.BBox()
	expMin, expMax := types.Vec3d{-3, 0, 0}, types.Vec3d{1, 4, 1}
	if rootBox.Min() != expMin || rootBox.Max() != expMax {
		t.Fatalf("expected root bbox [%v, %v]; got %s", expMin, expMax, rootBox.String())
	}

	g1Node, _ := db.Node(g1)
	g1Box := g1Node.BBox()
	if !g1Box.Equal(&rootBox) {
		t.Fatalf("expected g1 bbox to match the root bbox; got %s", g1Box.String())
	}

	for _, tag := range []NodeTag{g2, empty} {
		node, _ := db.Node(tag)
		box := node.BBox()
		if box.Rank() != 0 {
			t.Fatalf("expected node %q without primitives to keep an invalidated bbox; got %s", node.Name(), box.String())
		}
	}
}

func TestUpdateBBoxesSkipsZeroRank(t *testing.T) {
	db := newTestDB()
	root := mustStoreNode(t, db, NewGroupNode("root"))

	point, _ := NewPrimitiveNode("point", NewBoxPrimitive(NewBoundingBoxFromPoints(types.Vec3d{100, 100, 100})))
	mustAppend(t, db, root, mustStoreNode(t, db, point))
	box, _ := NewPrimitiveNode("box", NewBoxPrimitive(NewBoundingBoxFromPoints(types.Vec3d{0, 0, 0}, types.Vec3d{1, 1, 1})))
	mustAppend(t, db, root, mustStoreNode(t, db, box))

	if err := db.UpdateBBoxes(root); err != nil {
		t.Fatal(err)
	}
	rootNode, _ := db.Node(root)
	rootBox := rootNode.BBox()
	if rootBox.Max() != (types.Vec3d{1, 1, 1}) {
		t.Fatalf("expected zero rank primitive bbox to be ignored; got %s", rootBox.String())
	}
}

func TestGraphCycles(t *testing.T) {
	db := newTestDB()
	a := mustStoreNode(t, db, NewGroupNode("a"))
	b := mustStoreNode(t, db, NewGroupNode("b"))
	mustAppend(t, db, a, b)
	mustAppend(t, db, b, a)

	if err := db.UpdateBBoxes(a); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle from UpdateBBoxes; got %v", err)
	}
	if err := db.ResolveMaterials(a); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle from ResolveMaterials; got %v", err)
	}
	err := db.Walk(a, func(NodeTag, *Node, int) error { return nil })
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle from Walk; got %v", err)
	}

	// Shared subgraphs are not cycles
	db = newTestDB()
	root := mustStoreNode(t, db, NewGroupNode("root"))
	shared := mustStoreNode(t, db, NewGroupNode("shared"))
	mustAppend(t, db, root, shared)
	mustAppend(t, db, root, shared)
	if err = db.UpdateBBoxes(root); err != nil {
		t.Fatalf("expected shared subgraph to be accepted; got %v", err)
	}
}

func TestWalkOrder(t *testing.T) {
	db := newTestDB()
	root := mustStoreNode(t, db, NewGroupNode("root"))
	a := mustStoreNode(t, db, NewGroupNode("a"))
	b := mustStoreNode(t, db, NewGroupNode("b"))
	c := mustStoreNode(t, db, NewGroupNode("c"))
	mustAppend(t, db, root, a)
	mustAppend(t, db, a, c)
	mustAppend(t, db, root, b)

	var names []string
	var depths []int
	err := db.Walk(root, func(_ NodeTag, node *Node, depth int) error {
		names = append(names, node.Name())
		depths = append(depths, depth)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	expNames := []string{"root", "a", "c", "b"}
	expDepths := []int{0, 1, 2, 1}
	for i := range expNames {
		if names[i] != expNames[i] || depths[i] != expDepths[i] {
			t.Fatalf("expected visit order %v with depths %v; got %v, %v", expNames, expDepths, names, depths)
		}
	}

	stop := errors.New("stop")
	visited := 0
	err = db.Walk(root, func(NodeTag, *Node, int) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})
	if err != stop || visited != 2 {
		t.Fatalf("expected walk to abort after 2 visits; got %d visits, err %v", visited, err)
	}
}

func TestResolveMaterials(t *testing.T) {
	db := newTestDB()
	red, _ := db.StoreMaterial(NewMaterial("red"))
	blue, _ := db.StoreMaterial(NewMaterial("blue"))

	// root: [meshA, mat(red), meshB, group: [meshC, mat(blue), meshD], meshE, mat(blue): [meshF]]
	root := mustStoreNode(t, db, NewGroupNode("root"))
	meshes := make(map[string]*TriMesh)
	addMesh := func(parent NodeTag, name string) {
		mesh := meshPrimitive(t, types.Vec3d{0, 0, 0}, types.Vec3d{1, 0, 0}, types.Vec3d{0, 1, 0})
		meshes[name] = mesh
		node, err := NewPrimitiveNode(name, mesh)
		if err != nil {
			t.Fatal(err)
		}
		mustAppend(t, db, parent, mustStoreNode(t, db, node))
	}

	addMesh(root, "A")
	mustAppend(t, db, root, mustStoreNode(t, db, NewMaterialNode("red", red)))
	addMesh(root, "B")
	group := mustStoreNode(t, db, NewGroupNode("group"))
	mustAppend(t, db, root, group)
	addMesh(group, "C")
	mustAppend(t, db, group, mustStoreNode(t, db, NewMaterialNode("blue", blue)))
	addMesh(group, "D")
	addMesh(root, "E")
	blueParent := mustStoreNode(t, db, NewMaterialNode("blue parent", blue))
	mustAppend(t, db, root, blueParent)
	addMesh(blueParent, "F")

	// Refined triangles pick up the resolved material too
	tris := meshes["D"].Refine()

	if err := db.ResolveMaterials(root); err != nil {
		t.Fatal(err)
	}

	expIndices := map[string]int{
		"A": -1,
		"B": int(red),
		"C": int(red),
		"D": int(blue),
		"E": int(red),
		"F": int(blue),
	}
	for name, exp := range expIndices {
		if got := meshes[name].MaterialIndex(); got != exp {
			t.Errorf("expected mesh %s to have material index %d; got %d", name, exp, got)
		}
	}
	if tris[0].MaterialIndex != int(blue) {
		t.Fatalf("expected refined triangle material index %d; got %d", blue, tris[0].MaterialIndex)
	}

	// Dangling material references are reported
	bad := mustStoreNode(t, db, NewMaterialNode("bad", 9))
	mustAppend(t, db, root, bad)
	if err := db.ResolveMaterials(root); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag; got %v", err)
	}
}
