package studio

import (
	"math"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/geometry"
)

const (
	// DefaultMargin leaves roughly 20% of empty frame around the object
	DefaultMargin = 1.2

	nearClipFactor = 0.01
	farClipFactor  = 10.0
)

// FrontView is the framing axis: the camera sits on +Z looking back at the object
var FrontView = core.NewVec3(0, 0, 1)

// FrameDistance returns how far a camera with the given field of view (radians) must be
// from an object of diagonal size so the object fits with the margin factor applied
func FrameDistance(fov, size, margin float64) float64 {
	return (size * 0.5) / math.Tan(fov*0.5) * margin
}

// ClipPlanes derives near and far clip distances proportional to the camera distance
func ClipPlanes(distance float64) (near, far float64) {
	return distance * nearClipFactor, distance * farClipFactor
}

// LimitingFOV returns the narrower of the vertical and horizontal field of view (radians)
// for an image with the given width/height aspect ratio
func LimitingFOV(vfov, aspect float64) float64 {
	if aspect >= 1 {
		return vfov
	}
	return 2 * math.Atan(math.Tan(vfov*0.5)*aspect)
}

// FramingOptions controls auto-framing
type FramingOptions struct {
	Margin   float64   // Multiplier on the tight-fit distance (0 = DefaultMargin)
	ViewAxis core.Vec3 // Direction from the object to the camera (zero = FrontView)
}

// Framing is the camera placement chosen for a model
type Framing struct {
	Camera   geometry.CameraConfig
	Distance float64
	Near     float64
	Far      float64
}

// FrameCamera places a camera on the view axis at the framing distance, aimed at the
// center of the bounds. vfov is the vertical field of view in radians.
func FrameCamera(bounds Bounds, vfov, aspect float64, opts FramingOptions) Framing {
	margin := opts.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	axis := opts.ViewAxis
	if axis.IsZero() {
		axis = FrontView
	}
	axis = axis.Normalize()

	center := bounds.Center()
	distance := FrameDistance(LimitingFOV(vfov, aspect), bounds.Size(), margin)
	near, far := ClipPlanes(distance)

	// Looking straight up or down the Y axis needs a different up vector
	up := core.NewVec3(0, 1, 0)
	if math.Abs(axis.Dot(up)) > 0.999 {
		up = core.NewVec3(0, 0, -1)
	}

	return Framing{
		Camera: geometry.CameraConfig{
			Center:      center.Add(axis.Multiply(distance)),
			LookAt:      center,
			Up:          up,
			AspectRatio: aspect,
			VFov:        vfov * 180.0 / math.Pi,
			Near:        near,
			Far:         far,
		},
		Distance: distance,
		Near:     near,
		Far:      far,
	}
}
