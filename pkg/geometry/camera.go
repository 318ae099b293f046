package geometry

import (
	"math"

	"github.com/df07/go-studio-render/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera is looking at
	Up          core.Vec3 // Up direction (usually (0,1,0))
	Width       int       // Image width in pixels
	AspectRatio float64   // Width / height
	VFov        float64   // Vertical field of view in degrees
	Near        float64   // Near clip distance (0 = none)
	Far         float64   // Far clip distance (0 = unbounded)
}

// Camera generates primary rays for a pinhole camera
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	upperLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	forward         core.Vec3
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	if config.AspectRatio <= 0 {
		config.AspectRatio = 1.0
	}
	if config.Up.IsZero() {
		config.Up = core.NewVec3(0, 1, 0)
	}

	theta := config.VFov * math.Pi / 180.0
	viewportHeight := 2.0 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	// Orthonormal camera basis; w points backwards
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	upperLeftCorner := config.Center.
		Subtract(w).
		Subtract(horizontal.Multiply(0.5)).
		Add(vertical.Multiply(0.5))

	return &Camera{
		config:          config,
		origin:          config.Center,
		upperLeftCorner: upperLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		forward:         w.Negate(),
	}
}

// GetRay generates a normalized ray through film coordinates (s, t), where (0,0) is the
// top-left corner of the image and (1,1) the bottom-right
func (c *Camera) GetRay(s, t float64) core.Ray {
	target := c.upperLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Subtract(c.vertical.Multiply(t))
	return core.NewRay(c.origin, target.Subtract(c.origin).Normalize())
}

// GetPixelRay generates a jittered ray through pixel (i, j) of a width x height image
func (c *Camera) GetPixelRay(i, j, width, height int, sample core.Vec2) core.Ray {
	s := (float64(i) + sample.X) / float64(width)
	t := (float64(j) + sample.Y) / float64(height)
	return c.GetRay(s, t)
}

// ClipRange returns the valid distance range along a primary ray. Clip planes are
// perpendicular to the view axis, so the range depends on the ray direction.
func (c *Camera) ClipRange(ray core.Ray) (tMin, tMax float64) {
	cosTheta := ray.Direction.Dot(c.forward)
	if cosTheta <= 0 {
		return 0, 0
	}

	tMin = 0.0
	if c.config.Near > 0 {
		tMin = c.config.Near / cosTheta
	}
	tMax = math.Inf(1)
	if c.config.Far > 0 {
		tMax = c.config.Far / cosTheta
	}
	return tMin, tMax
}

// GetCameraForward returns the unit view direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.forward
}
