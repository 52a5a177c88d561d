package reader

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/grindrt/grind/asset"
	"github.com/grindrt/grind/config"
	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/scene"
	"github.com/grindrt/grind/types"
)

// Name of the material assigned to faces that precede any usemtl statement.
const defaultMaterialName = "default"

type wavefrontMaterial struct {
	Name string

	// Diffuse/Albedo color.
	Kd types.Vec3d

	// Specular color.
	Ks types.Vec3d

	// Emissive color and scaler.
	Ke       types.Vec3d
	KeScaler float64

	// Transmission filter
	Tf types.Vec3d

	// Index of refraction.
	Ni float64

	// Diffuse texture.
	KdTex string

	// Relative path for textures.
	AssetRelPath *asset.Resource

	// True if this material is used by at least one face.
	Used bool
}

// Get the path of the material library that defined the material. The
// built-in default material reports an empty path.
func (wf *wavefrontMaterial) library() string {
	if wf.AssetRelPath == nil {
		return ""
	}
	return wf.AssetRelPath.Path()
}

// Map the wavefront material properties to a scene material.
func (wf *wavefrontMaterial) sceneMaterial() *scene.Material {
	mat := scene.NewMaterial(wf.Name)
	mat.Diffuse = wf.Kd

	isSpecular := wf.Ks.MaxComponent() > 0
	isTransmissive := wf.Tf.MaxComponent() > 0
	switch {
	case wf.Ke.MaxComponent() > 0:
		mat.Type = scene.EmissiveMaterial
		mat.Emissive = wf.Ke
		if wf.KeScaler != 0 {
			mat.Emissive = wf.Ke.Mul(wf.KeScaler)
		}
	case (isSpecular || isTransmissive) && wf.Ni != 0:
		mat.Type = scene.RefractiveMaterial
		mat.IOR = wf.Ni
	case isSpecular:
		mat.Type = scene.SpecularMaterial
	}
	return mat
}

// A run of faces of a wavefront object that share the same material.
// Indices are local to the part.
type wavefrontPart struct {
	material *wavefrontMaterial

	vertices    []types.Vec3d
	vertexIndex map[int]int
	uvs         []types.Vec2d
	uvIndex     map[int]int
	normals     []types.Vec3d
	normalIndex map[int]int

	faces       [][3]int
	uvFaces     [][3]int
	normalFaces [][3]int
}

func newWavefrontPart(material *wavefrontMaterial) *wavefrontPart {
	return &wavefrontPart{
		material:    material,
		vertexIndex: make(map[int]int),
		uvIndex:     make(map[int]int),
		normalIndex: make(map[int]int),
	}
}

// Map a global coordinate index to a part-local one, copying the coordinate
// on first use. Negative global indices yield -1.
func remap[T any](global int, list []T, index map[int]int, local *[]T) int {
	if global < 0 {
		return -1
	}
	if localIndex, exists := index[global]; exists {
		return localIndex
	}
	*local = append(*local, list[global])
	index[global] = len(*local) - 1
	return len(*local) - 1
}

// Assemble the part into a triangle mesh. Faces without uv coordinates get
// a (0, 0) coordinate if other faces of the part define them; faces without
// normals get their geometric normal under the same condition.
func (p *wavefrontPart) triMesh(transform func(types.Vec3d) types.Vec3d, normalTransform func(types.Vec3d) types.Vec3d) (*scene.TriMesh, error) {
	vertices := make([]types.Vec3d, len(p.vertices))
	for index, v := range p.vertices {
		vertices[index] = transform(v)
	}

	uvs, uvFaces := p.uvs, p.uvFaces
	normalFaces := p.normalFaces
	var normals []types.Vec3d
	if len(p.uvs) == 0 {
		uvs, uvFaces = nil, nil
	} else if missing(p.uvFaces) {
		uvs = append(append([]types.Vec2d(nil), p.uvs...), types.Vec2d{})
		uvFaces = fill(p.uvFaces, func(int) int { return len(uvs) - 1 })
	}

	if len(p.normals) == 0 {
		normalFaces = nil
	} else {
		for _, n := range p.normals {
			normals = append(normals, normalTransform(n))
		}
		if missing(p.normalFaces) {
			normalFaces = fill(p.normalFaces, func(face int) int {
				f := p.faces[face]
				e01 := vertices[f[1]].Sub(vertices[f[0]])
				e02 := vertices[f[2]].Sub(vertices[f[0]])
				// Degenerate faces keep a zero normal
				n, _ := e01.Cross(e02).Normalize()
				normals = append(normals, n)
				return len(normals) - 1
			})
		}
	}

	mesh := scene.NewTriMesh()
	if err := mesh.SetData(vertices, p.faces, uvs, uvFaces, normals, normalFaces); err != nil {
		return nil, err
	}
	return mesh, nil
}

// Returns true if any face misses an index.
func missing(faces [][3]int) bool {
	for _, f := range faces {
		if f[0] < 0 {
			return true
		}
	}
	return false
}

// Copy faces replacing every missing index triplet with the value returned
// by fn. Fn is invoked once per incomplete face.
func fill(faces [][3]int, fn func(face int) int) [][3]int {
	out := make([][3]int, len(faces))
	for index, f := range faces {
		if f[0] < 0 {
			v := fn(index)
			f = [3]int{v, v, v}
		}
		out[index] = f
	}
	return out
}

type wavefrontObject struct {
	name  string
	parts []*wavefrontPart
}

// The part receiving faces with the given material.
func (o *wavefrontObject) partFor(material *wavefrontMaterial) *wavefrontPart {
	if len(o.parts) != 0 && o.parts[len(o.parts)-1].material == material {
		return o.parts[len(o.parts)-1]
	}
	for _, part := range o.parts {
		if part.material == material {
			return part
		}
	}
	part := newWavefrontPart(material)
	o.parts = append(o.parts, part)
	return part
}

func (o *wavefrontObject) numFaces() int {
	count := 0
	for _, part := range o.parts {
		count += len(part.faces)
	}
	return count
}

// A transformed copy of a parsed object.
type wavefrontInstance struct {
	object *wavefrontObject
	name   string

	translation types.Vec3d
	rotation    types.Quat
	scale       types.Vec3d
}

func (inst *wavefrontInstance) transformPoint(v types.Vec3d) types.Vec3d {
	return inst.rotation.Rotate(v.MulVec(inst.scale)).Add(inst.translation)
}

func (inst *wavefrontInstance) transformNormal(n types.Vec3d) types.Vec3d {
	t := inst.rotation.Rotate(n.DivVec(inst.scale))
	if out, err := t.Normalize(); err == nil {
		return out
	}
	return t
}

type wavefrontSceneReader struct {
	ctx    context.Context
	logger log.Logger

	// The scene being populated and the node that receives the parsed
	// geometry.
	scene  *scene.Scene
	parent scene.NodeTag

	// If set, parsed materials are ignored and all geometry is attached
	// directly to parent.
	ignoreMaterials bool

	// A map of material names to parsed wavefront materials
	matNameToIndex map[string]int

	// Currently selected material.
	curMaterial *wavefrontMaterial

	// Parsed wavefront materials.
	materials []*wavefrontMaterial

	// Parsed objects and instances.
	objects   []*wavefrontObject
	instances []*wavefrontInstance

	// Camera settings found in the scene file.
	camera config.Camera

	// Texture cache shared by all materials.
	textures map[string]scene.TextureTag

	// The material library each stored material was parsed from. Shared
	// by readers populating the same scene.
	matLibs map[string]string

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3d
	normalList []types.Vec3d
	uvList     []types.Vec2d

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront reader that populates the scene graph below
// parent.
func newWavefrontReader(ctx context.Context, sc *scene.Scene, parent scene.NodeTag) *wavefrontSceneReader {
	return &wavefrontSceneReader{
		ctx:            ctx,
		logger:         log.New("wavefront reader"),
		scene:          sc,
		parent:         parent,
		matNameToIndex: make(map[string]int),
		textures:       make(map[string]scene.TextureTag),
		matLibs:        make(map[string]string),
		errStack:       make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	if r.scene == nil {
		sc, err := scene.NewScene(scene.NewSceneDB(log.New("scene db")))
		if err != nil {
			return nil, err
		}
		r.scene, r.parent = sc, sc.Root
	}

	r.logger.Infof(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	if err := r.parse(sceneRes); err != nil {
		return nil, err
	}
	if err := r.build(); err != nil {
		return nil, fmt.Errorf("%s: %w", sceneRes.Path(), err)
	}
	if err := r.scene.Camera.Configure(r.camera); err != nil {
		return nil, fmt.Errorf("%s: %w", sceneRes.Path(), err)
	}

	r.logger.Infof("parsed scene in %d ms", time.Since(start).Milliseconds())
	return r.scene, nil
}

// Populate the scene graph with the parsed objects. Each used material
// becomes a scene material and a material node below parent; the object
// parts using it are attached to that node. If instances were defined only
// the instances are added to the scene.
func (r *wavefrontSceneReader) build() error {
	materialNodes := make(map[*wavefrontMaterial]scene.NodeTag)
	attachTo := func(wf *wavefrontMaterial) (scene.NodeTag, error) {
		if r.ignoreMaterials {
			return r.parent, nil
		}
		if tag, exists := materialNodes[wf]; exists {
			return tag, nil
		}

		matTag, err := r.storeMaterial(wf)
		if err != nil {
			return scene.InvalidTag, err
		}
		tag, err := r.scene.AddNode(r.parent, scene.NewMaterialNode(wf.Name, matTag))
		if err != nil {
			return scene.InvalidTag, err
		}
		materialNodes[wf] = tag
		return tag, nil
	}

	identity := func(v types.Vec3d) types.Vec3d { return v }
	addObject := func(obj *wavefrontObject, name string, transform, normalTransform func(types.Vec3d) types.Vec3d) error {
		for _, part := range obj.parts {
			mesh, err := part.triMesh(transform, normalTransform)
			if err != nil {
				return fmt.Errorf("object %q: %w", name, err)
			}
			parent, err := attachTo(part.material)
			if err != nil {
				return err
			}
			partName := name
			if len(obj.parts) > 1 {
				partName = name + ":" + part.material.Name
			}
			if _, err = r.scene.AddPrimitive(parent, partName, mesh); err != nil {
				return err
			}
		}
		return nil
	}

	if len(r.instances) == 0 {
		for _, obj := range r.objects {
			if err := addObject(obj, obj.name, identity, identity); err != nil {
				return err
			}
		}
	}
	for _, inst := range r.instances {
		if err := addObject(inst.object, inst.name, inst.transformPoint, inst.transformNormal); err != nil {
			return err
		}
	}

	for _, wf := range r.materials {
		if !wf.Used && !r.ignoreMaterials {
			r.logger.Infof("skipping unused material %q", wf.Name)
		}
	}
	return nil
}

// Register a wavefront material with the scene db. A material already
// present in the db is reused only if it was parsed from the same material
// library; any other name clash fails with scene.ErrDuplicateMaterial.
func (r *wavefrontSceneReader) storeMaterial(wf *wavefrontMaterial) (scene.MaterialTag, error) {
	lib := wf.library()
	if index := r.scene.DB.MaterialIndexByName(wf.Name); index >= 0 {
		if prevLib, ok := r.matLibs[wf.Name]; ok && prevLib == lib {
			r.logger.Debugf("reusing existing material %q from %q", wf.Name, lib)
			return scene.MaterialTag(index), nil
		}
		return scene.InvalidTag, fmt.Errorf("%w: %q defined by %q clashes with an existing material", scene.ErrDuplicateMaterial, wf.Name, lib)
	}

	mat := wf.sceneMaterial()
	if wf.KdTex != "" {
		mat.DiffuseTex = r.loadTexture(wf.KdTex, wf.AssetRelPath)
	}
	tag, err := r.scene.DB.StoreMaterial(mat)
	if err != nil {
		return tag, err
	}
	r.matLibs[wf.Name] = lib
	return tag, nil
}

// Load a texture relative to the material library that references it. Load
// failures are logged and result in an untextured material.
func (r *wavefrontSceneReader) loadTexture(texPath string, relTo *asset.Resource) scene.TextureTag {
	tag, err := loadTexture(r.ctx, r.scene.DB, r.textures, texPath, relTo)
	if err != nil {
		r.logger.Warningf("could not load texture %q: %v", texPath, err)
		return scene.InvalidTag
	}
	return tag
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	err := fmt.Errorf(msgFormat, args...)

	var prefix string
	if file != "" {
		prefix = fmt.Sprintf("[%s: %d] ", file, line)
	}
	if len(r.errStack) == 0 {
		return fmt.Errorf("%serror: %w", prefix, err)
	}
	return fmt.Errorf("%serror: %w\n%s", prefix, err, strings.Join(r.errStack, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Create and select a default material for surfaces not using one.
func (r *wavefrontSceneReader) defaultMaterial() *wavefrontMaterial {
	matIndex, exists := r.matNameToIndex[defaultMaterialName]
	if !exists {
		r.materials = append(r.materials, &wavefrontMaterial{
			Name: defaultMaterialName,
			Kd:   types.Vec3d{0.7, 0.7, 0.7},
		})
		matIndex = len(r.materials) - 1
		r.matNameToIndex[defaultMaterialName] = matIndex
	}
	return r.materials[matIndex]
}

// The object receiving parsed faces.
func (r *wavefrontSceneReader) curObject() *wavefrontObject {
	if len(r.objects) == 0 {
		r.objects = append(r.objects, &wavefrontObject{name: "default"})
	}
	return r.objects[len(r.objects)-1]
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := len(r.uvList)
	relNormalOffset := len(r.normalList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.Open(r.ctx, lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "usemtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			// Lookup material
			matName := lineTokens[1]
			matIndex, exists := r.matNameToIndex[matName]
			if !exists {
				return r.emitError(res.Path(), lineNum, `undefined material with name "%s"`, matName)
			}

			// Activate material
			r.curMaterial = r.materials[matIndex]
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedObject()
			r.objects = append(r.objects, &wavefrontObject{name: lineTokens[1]})
		case "f":
			if err = r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset); err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}
		case "camera_fov":
			fov, err := parseFloat(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}
			fov *= math.Pi / 180.0
			r.camera.FovYRad = &fov
		case "camera_eye", "camera_look", "camera_up":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}
			switch lineTokens[0] {
			case "camera_eye":
				r.camera.EyePos = &v
			case "camera_look":
				r.camera.LookAt = &v
			case "camera_up":
				r.camera.Up = &v
			}
		case "instance":
			instance, err := r.parseInstance(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}
			r.instances = append(r.instances, instance)
		}
	}
	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%w", err)
	}

	r.verifyLastParsedObject()
	return nil
}

// Drop the last parsed object if it contains no faces.
func (r *wavefrontSceneReader) verifyLastParsedObject() {
	lastIndex := len(r.objects) - 1
	if lastIndex >= 0 && r.objects[lastIndex].numFaces() == 0 {
		r.logger.Warningf(`dropping object "%s" as it contains no polygons`, r.objects[lastIndex].name)
		r.objects = r.objects[:lastIndex]
	}
}

// Parse object instance definition. Definitions use the following format:
// instance object_name tX tY tZ rX rY rZ sX sY sZ
// where:
// - tX, tY, tZ : translation vector
// - rX, rY, rZ : rotation angles around the X, Y and Z axis in degrees
// - sX, sY, sZ : scale
//
// Instance vertices are scaled, then rotated and finally translated.
func (r *wavefrontSceneReader) parseInstance(lineTokens []string) (*wavefrontInstance, error) {
	if len(lineTokens) != 11 {
		return nil, fmt.Errorf(`unsupported syntax for "instance"; expected 10 arguments: object_name tX tY tZ rX rY rZ sX sY sZ; got %d`, len(lineTokens)-1)
	}

	// Find object by name
	objName := lineTokens[1]
	var obj *wavefrontObject
	for _, candidate := range r.objects {
		if candidate.name == objName {
			obj = candidate
			break
		}
	}
	if obj == nil {
		return nil, fmt.Errorf(`unknown object with name "%s"`, objName)
	}

	var args [9]float64
	for index := range args {
		v, err := strconv.ParseFloat(lineTokens[index+2], 64)
		if err != nil {
			return nil, err
		}
		args[index] = v
	}

	inst := &wavefrontInstance{
		object:      obj,
		name:        fmt.Sprintf("%s#%d", objName, len(r.instances)),
		translation: types.Vec3d{args[0], args[1], args[2]},
		rotation:    types.QuatFromEuler(args[3]*math.Pi/180.0, args[4]*math.Pi/180.0, args[5]*math.Pi/180.0),
		scale:       types.Vec3d{args[6], args[7], args[8]},
	}
	if inst.scale[0] == 0 || inst.scale[1] == 0 || inst.scale[2] == 0 {
		return nil, fmt.Errorf("instance scale must not contain zero components; got %v", inst.scale)
	}
	return inst, nil
}

// Parse face definition. Each face definitions consists of 3 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// This method only works with triangular/quad faces and will return an error if a
// face with more than 4 vertices is encountered. Quads are split into two
// triangles.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) error {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	// Global indices; -1 marks a missing uv/normal.
	var vertices, uvs, normals [4]int
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
			if expIndices > 3 {
				return fmt.Errorf("face argument 0 contains %d indices; expected at most 3", expIndices)
			}
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		var err error
		vertices[arg], err = selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %w", arg, err)
		}

		uvs[arg], normals[arg] = -1, -1

		// Parse UV coords if specified
		if expIndices > 1 && vTokens[1] != "" {
			uvs[arg], err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %w", arg, err)
			}
		}

		// Parse normal coords if specified
		if expIndices > 2 && vTokens[2] != "" {
			normals[arg], err = selectFaceCoordIndex(vTokens[2], len(r.normalList), relNormalOffset)
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %w", arg, err)
			}
		}
	}

	// If no material defined select the default. Also flag the current material
	// as being in use so we don't prune it later.
	if r.curMaterial == nil {
		r.curMaterial = r.defaultMaterial()
	}
	r.curMaterial.Used = true

	part := r.curObject().partFor(r.curMaterial)

	// Assemble one or two triangles depending on whether we are parsing a
	// triangular or a quad face
	indiceList := [][3]int{{0, 1, 2}}
	if len(lineTokens) == 5 {
		indiceList = append(indiceList, [3]int{0, 2, 3})
	}

	for _, indices := range indiceList {
		var face, uvFace, normalFace [3]int
		hasUV, hasNormals := true, true
		for triIndex, selectIndex := range indices {
			face[triIndex] = remap(vertices[selectIndex], r.vertexList, part.vertexIndex, &part.vertices)
			uvFace[triIndex] = remap(uvs[selectIndex], r.uvList, part.uvIndex, &part.uvs)
			normalFace[triIndex] = remap(normals[selectIndex], r.normalList, part.normalIndex, &part.normals)
			hasUV = hasUV && uvFace[triIndex] >= 0
			hasNormals = hasNormals && normalFace[triIndex] >= 0
		}

		// Partially specified corners are dropped for the whole face
		if !hasUV {
			uvFace = [3]int{-1, -1, -1}
		}
		if !hasNormals {
			normalFace = [3]int{-1, -1, -1}
		}

		part.faces = append(part.faces, face)
		part.uvFaces = append(part.uvFaces, uvFace)
		part.normalFaces = append(part.normalFaces, normalFace)
	}

	return nil
}

// Parse a wavefront material library.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	r.logger.Infof(`parsing material library "%s"`, res.Path())

	scanner := bufio.NewScanner(res)

	var curMaterial *wavefrontMaterial = nil
	var matName string = ""

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName = lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Path(), lineNum, `material "%s" already defined`, matName)
			}

			// Allocate new material and add it to library
			curMaterial = &wavefrontMaterial{
				Name:         matName,
				AssetRelPath: res,
			}
			r.materials = append(r.materials, curMaterial)
			r.matNameToIndex[matName] = len(r.materials) - 1
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "include":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				baseMaterialIndex, exists := r.matNameToIndex[lineTokens[1]]
				if !exists {
					return r.emitError(res.Path(), lineNum, `could not include unknown material "%s"`, lineTokens[1])
				}

				// Overwrite material but keep the original name
				*curMaterial = *r.materials[baseMaterialIndex]
				curMaterial.Name = matName
				curMaterial.Used = false
			case "Kd", "Ks", "Ke", "Tf":
				var target *types.Vec3d
				switch lineTokens[0] {
				case "Kd":
					target = &curMaterial.Kd
				case "Ks":
					target = &curMaterial.Ks
				case "Ke":
					target = &curMaterial.Ke
				case "Tf":
					target = &curMaterial.Tf
				}

				*target, err = parseVec3(lineTokens)
			case "Ni":
				curMaterial.Ni, err = parseFloat(lineTokens)
			case "KeScaler":
				curMaterial.KeScaler, err = parseFloat(lineTokens)
			case "map_Kd":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}
				// Texture options precede the file name
				curMaterial.KdTex = lineTokens[len(lineTokens)-1]
			default:
				r.logger.Debugf(`%s:%d ignoring unsupported material statement "%s"`, res.Path(), lineNum, lineTokens[0])
			}

			// Report any errors
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%w", err)
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%w", err)
	}

	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, errIndexOutOfBounds
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat(lineTokens []string) (float64, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	return strconv.ParseFloat(lineTokens[1], 64)
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3d, error) {
	if len(lineTokens) < 4 {
		return types.Vec3d{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3d{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 64)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = coord
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2d, error) {
	if len(lineTokens) < 3 {
		return types.Vec2d{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2d{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 64)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = coord
	}
	return v, nil
}
