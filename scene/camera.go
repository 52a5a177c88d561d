package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/grindrt/grind/config"
	"github.com/grindrt/grind/types"
	"golang.org/x/image/math/f64"
)

var errCameraNotSetup = errors.New("scene: camera frame not initialized; call Setup first")

// The camera type generates primary rays for a pinhole camera.
type Camera struct {
	Eye    types.Vec3d
	LookAt types.Vec3d
	Up     types.Vec3d

	// Vertical field of view in radians.
	FovY float64

	// Distance to the near clipping plane. Primary rays start at this
	// parametric distance.
	ZNear float64

	basis      types.OrthonormalBasis
	aspect     float64
	tanHalfFov float64
	ready      bool
}

func NewCamera() *Camera {
	return &Camera{
		Eye:    types.Vec3d{0, 0, 0},
		LookAt: types.Vec3d{0, 0, -1},
		Up:     types.Vec3d{0, 1, 0},
		FovY:   math.Pi / 3,
		ZNear:  1e-4,
	}
}

// Apply the settings present in cfg. Missing settings keep their current
// value.
func (c *Camera) Configure(cfg config.Camera) error {
	if cfg.EyePos != nil {
		c.Eye = *cfg.EyePos
	}
	if cfg.LookAt != nil {
		c.LookAt = *cfg.LookAt
	}
	if cfg.Up != nil {
		c.Up = *cfg.Up
	}
	if cfg.FovYRad != nil {
		c.FovY = *cfg.FovYRad
	}
	if cfg.ZNear != nil {
		c.ZNear = *cfg.ZNear
	}

	if !(c.FovY > 0 && c.FovY < math.Pi) {
		return fmt.Errorf("scene: camera fovy_rad must be in (0, pi); got %g", c.FovY)
	}
	if c.ZNear < 0 {
		return fmt.Errorf("scene: camera z_near must not be negative; got %g", c.ZNear)
	}
	return nil
}

// Setup the camera frame for a film with the given width/height ratio. It
// must be called after changing any of the camera settings.
func (c *Camera) Setup(aspect float64) error {
	if !(aspect > 0) {
		return fmt.Errorf("scene: invalid camera aspect ratio %g", aspect)
	}

	// The camera looks down the -W axis.
	w := c.Eye.Sub(c.LookAt)
	if err := c.basis.InitFromWU(w, c.Up.Cross(w)); err != nil {
		return fmt.Errorf("scene: invalid camera orientation (eye %v, look at %v, up %v): %w", c.Eye, c.LookAt, c.Up, err)
	}

	c.aspect = aspect
	c.tanHalfFov = math.Tan(c.FovY * 0.5)
	c.ready = true
	return nil
}

// Orbit the look at point around the eye by pitch and yaw radians.
func (c *Camera) Orbit(pitch, yaw float64) error {
	dir := c.LookAt.Sub(c.Eye)
	dist := dir.Norm()
	ndir, err := dir.Normalize()
	if err != nil {
		return fmt.Errorf("scene: cannot orbit camera: %w", err)
	}

	pitchAxis, err := ndir.Cross(c.Up).Normalize()
	if err != nil {
		return fmt.Errorf("scene: cannot orbit camera looking along its up vector: %w", err)
	}
	yawAxis, err := c.Up.Normalize()
	if err != nil {
		return fmt.Errorf("scene: cannot orbit camera: %w", err)
	}

	pitchQuat := types.QuatFromAxisAngle(pitchAxis, pitch)
	yawQuat := types.QuatFromAxisAngle(yawAxis, yaw)
	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	c.LookAt = c.Eye.Add(orientQuat.Rotate(ndir).Mul(dist))
	if c.ready {
		return c.Setup(c.aspect)
	}
	return nil
}

// Get the camera frame.
func (c *Camera) Basis() types.OrthonormalBasis {
	return c.basis
}

// Get the world to camera rotation matrix.
func (c *Camera) ViewMatrix() f64.Mat3 {
	return c.basis.Mat3()
}

// Initialize ray with the primary ray passing through the normalized film
// coordinates (sx, sy). (0, 0) is the top-left film corner and (1, 1) the
// bottom-right one.
func (c *Camera) GenerateRay(ray *Ray, sx, sy float64) error {
	if !c.ready {
		return errCameraNotSetup
	}

	local := types.Vec3d{
		(2*sx - 1) * c.aspect * c.tanHalfFov,
		(1 - 2*sy) * c.tanHalfFov,
		-1,
	}
	dir, err := c.basis.ToWorld(local).Normalize()
	if err != nil {
		return err
	}

	ray.Reset(c.Eye, dir)
	ray.MinT = c.ZNear
	return nil
}

func (c *Camera) String() string {
	return fmt.Sprintf("camera{eye: %v, look at: %v, up: %v, fovy: %.3f rad}", c.Eye, c.LookAt, c.Up, c.FovY)
}
