package renderer

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/grindrt/grind/film"
	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/sampling"
	"github.com/grindrt/grind/scene"
	"github.com/grindrt/grind/types"
)

type Renderer interface {
	// Render frame.
	Render() error

	// Shutdown renderer and release the scene.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// Triangles of a primitive node and the box used to cull them.
type geometry struct {
	bbox      scene.BoundingBox
	triangles []*scene.Triangle
}

// Default is a single-threaded renderer that shades the closest hit of the
// primary rays. The scene must be prepared before it is passed to the
// renderer.
type Default struct {
	logger log.Logger

	sc   *scene.Scene
	opts Options
	film *film.Film

	geometry   []geometry
	materials  []*scene.Material
	defaultMat *scene.Material

	// Normalization distance for ShadeDepth.
	far float64

	// Start offset for occlusion rays.
	aoBias float64

	hemisphere *sampling.Hemisphere
	stats      FrameStats
}

// Create a renderer for sc. The scene camera is set up for the frame aspect
// ratio and the intersectable geometry is collected from the scene graph.
func NewDefault(sc *scene.Scene, opts Options) (*Default, error) {
	if sc == nil || sc.DB == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, opts.FrameW, opts.FrameH)
	}
	if opts.SamplesPerPixel == 0 {
		opts.SamplesPerPixel = 1
	}
	if opts.Mode == ShadeAO && opts.AOSamples == 0 {
		opts.AOSamples = 1
	}
	if opts.AODistance <= 0 {
		opts.AODistance = math.Inf(1)
	}
	if opts.BlockH == 0 {
		opts.BlockH = max(1, (opts.FrameH+15)/16)
	}

	if err := sc.Camera.Setup(float64(opts.FrameW) / float64(opts.FrameH)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCameraNotDefined, err)
	}

	fm, err := film.New("frame", int(opts.FrameW), int(opts.FrameH), 4, log.New("film"))
	if err != nil {
		return nil, err
	}

	r := &Default{
		logger:     log.New("renderer"),
		sc:         sc,
		opts:       opts,
		film:       fm,
		materials:  sc.DB.Materials(),
		defaultMat: scene.NewMaterial("default"),
		hemisphere: sampling.NewHemisphere(opts.Seed, sampling.Cosine),
	}
	if err = r.collectGeometry(); err != nil {
		return nil, err
	}

	r.logger.Debugf("%s", sc.Camera.String())
	return r, nil
}

func (r *Default) collectGeometry() error {
	nodes, err := r.sc.PrimitiveNodes()
	if err != nil {
		return err
	}

	sceneBox := scene.NewBoundingBox()
	for _, node := range nodes {
		var triangles []*scene.Triangle
		switch p := node.Primitive().(type) {
		case *scene.TriMesh:
			triangles = p.Refine()
		case *scene.Triangle:
			triangles = []*scene.Triangle{p}
		default:
			r.logger.Debugf("skipping non-intersectable primitive node %q", node.Name())
			continue
		}
		if len(triangles) == 0 {
			continue
		}

		g := geometry{bbox: node.Primitive().BBox(), triangles: triangles}
		if err = sceneBox.InsertBBox(g.bbox); err != nil {
			r.logger.Warningf("skipping degenerate primitive node %q", node.Name())
			continue
		}
		r.geometry = append(r.geometry, g)
		r.stats.Triangles += len(triangles)
	}

	if r.stats.Triangles == 0 {
		return ErrNoGeometry
	}

	extent := sceneBox.Max().Sub(sceneBox.Min()).Norm()
	r.far = r.sc.Camera.Eye.Sub(sceneBox.Center()).Norm() + 0.5*extent
	if r.far == 0 {
		r.far = 1
	}
	r.aoBias = 1e-6 * math.Max(1, extent)
	return nil
}

// Get the film the frame is rendered into.
func (r *Default) Film() *film.Film {
	return r.film
}

func (r *Default) Stats() FrameStats {
	return r.stats
}

func (r *Default) Close() {
	r.sc = nil
	r.geometry = nil
	r.materials = nil
}

// Render frame. The frame is processed in blocks of rows; each row is
// seeded independently so the output does not depend on the block size.
func (r *Default) Render() error {
	if r.sc == nil {
		return ErrSceneNotDefined
	}

	start := time.Now()
	r.stats.Blocks = r.stats.Blocks[:0]
	r.stats.Rays, r.stats.Hits = 0, 0

	gridSize := max(1, int(math.Sqrt(float64(r.opts.SamplesPerPixel))))
	for _, block := range splitRows(r.opts.FrameH, r.opts.BlockH) {
		blockStart := time.Now()
		for y := block.BlockY; y < block.BlockY+block.BlockH; y++ {
			if err := r.renderRow(int(y), gridSize); err != nil {
				return err
			}
		}
		block.RenderTime = time.Since(blockStart)
		r.stats.Blocks = append(r.stats.Blocks, block)
		r.logger.Debugf("rendered rows [%d, %d) in %s", block.BlockY, block.BlockY+block.BlockH, block.RenderTime)
	}

	r.stats.RenderTime = time.Since(start)
	r.logger.Infof(
		"rendered %dx%d frame (mode: %s, spp: %d) in %d ms",
		r.opts.FrameW, r.opts.FrameH, r.opts.Mode, gridSize*gridSize, r.stats.RenderTime.Milliseconds(),
	)
	return nil
}

func (r *Default) renderRow(y, gridSize int) error {
	rowSeed := r.opts.Seed*0x9e3779b97f4a7c15 + uint64(y)
	r.hemisphere.SetState(^rowSeed)

	// A single sample goes through the pixel center
	var rng *rand.Rand
	if gridSize > 1 {
		rng = sampling.NewRand(rowSeed)
	}

	var (
		ray = scene.NewRay(types.Vec3d{}, types.Vec3d{0, 0, -1})
		hit = scene.NewHitRecord()
		w   = float64(r.opts.FrameW)
		h   = float64(r.opts.FrameH)
	)
	for x := 0; x < int(r.opts.FrameW); x++ {
		var sum types.Vec3d
		offsets := sampling.Stratified2D(gridSize, rng)
		for _, off := range offsets {
			err := r.sc.Camera.GenerateRay(&ray, (float64(x)+off[0])/w, (float64(y)+off[1])/h)
			if err != nil {
				return fmt.Errorf("renderer: pixel (%d, %d): %w", x, y, err)
			}
			sum = sum.Add(r.trace(&ray, &hit))
		}

		col := sum.Mul(1 / float64(len(offsets)))
		if err := r.film.PutColor(x, y, col.Vec4(1)); err != nil {
			return err
		}
	}
	return nil
}

// Shade the closest hit along a primary ray.
func (r *Default) trace(ray *scene.Ray, hit *scene.HitRecord) types.Vec3d {
	r.stats.Rays++
	hit.Reset()
	if !r.intersect(ray, hit, false) {
		return r.sc.BgColor
	}
	r.stats.Hits++

	tri := hit.HitPrimitive.(*scene.Triangle)
	switch r.opts.Mode {
	case ShadeDepth:
		d := 1 - clamp01(hit.Dist/r.far)
		return types.Vec3d{d, d, d}
	case ShadeNormal:
		n := tri.InterpolateNormal(hit.B1, hit.B2)
		return n.Mul(0.5).Add(types.Vec3d{0.5, 0.5, 0.5})
	case ShadeAO:
		v := r.ambientOcclusion(ray, hit)
		return types.Vec3d{v, v, v}
	default:
		return r.shadeFlat(ray, hit, tri)
	}
}

// Test ray against the scene geometry. The ray range is shrunk to each hit
// so hit ends up holding the closest one. If anyHit is set the search stops
// at the first hit.
func (r *Default) intersect(ray *scene.Ray, hit *scene.HitRecord, anyHit bool) bool {
	found := false
	for i := range r.geometry {
		g := &r.geometry[i]
		if !g.bbox.Hit(ray) {
			continue
		}
		for _, tri := range g.triangles {
			if !tri.Intersect(ray, hit) {
				continue
			}
			if anyHit {
				return true
			}
			found = true
			ray.MaxT = hit.Dist
		}
	}
	return found
}

func (r *Default) shadeFlat(ray *scene.Ray, hit *scene.HitRecord, tri *scene.Triangle) types.Vec3d {
	mat := r.material(hit.HitMaterialIndex)

	diffuse := mat.Diffuse
	if mat.DiffuseTex != scene.InvalidTag && tri.HasUV {
		if tex, err := r.sc.DB.Texture(mat.DiffuseTex); err == nil {
			uv := tri.InterpolateUV(hit.B1, hit.B2)
			diffuse = tex.Sample(uv[0], uv[1]).Vec3()
		}
	}

	cos := math.Abs(tri.InterpolateNormal(hit.B1, hit.B2).Dot(ray.Dir))
	return diffuse.Mul(cos).Add(mat.Emissive)
}

// Get the fraction of hemisphere samples around the hit point that escape
// within AODistance. The hemisphere faces the side the ray arrived from.
func (r *Default) ambientOcclusion(ray *scene.Ray, hit *scene.HitRecord) float64 {
	basis := hit.HitBasis
	flip := basis.W.Dot(ray.Dir) > 0

	var (
		occRay     scene.Ray
		occHit     scene.HitRecord
		unoccluded int
	)
	for i := 0; i < int(r.opts.AOSamples); i++ {
		s := r.hemisphere.Sample()
		if flip {
			s[2] = -s[2]
		}

		occRay.Reset(hit.IntersectPos, basis.ToWorld(s))
		occRay.MinT = r.aoBias
		occRay.MaxT = r.opts.AODistance
		occHit.Reset()
		r.stats.Rays++
		if !r.intersect(&occRay, &occHit, true) {
			unoccluded++
		}
	}
	return float64(unoccluded) / float64(r.opts.AOSamples)
}

func (r *Default) material(index int) *scene.Material {
	if index < 0 || index >= len(r.materials) {
		return r.defaultMat
	}
	return r.materials[index]
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
