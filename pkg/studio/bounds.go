package studio

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/loaders"
)

// ErrNoMeshes is returned when a model contains no mesh objects to frame
var ErrNoMeshes = errors.New("no meshes found in the GLTF")

// ErrDegenerateBounds is returned when every mesh collapses to a single point
var ErrDegenerateBounds = errors.New("model has zero extent")

// BoundedObject is anything with a local bounding box placed in the world by a transform
type BoundedObject interface {
	LocalBounds() core.AABB
	WorldMatrix() mgl64.Mat4
}

// Bounds is the world-space axis-aligned box around every mesh of a model
type Bounds struct {
	Min core.Vec3
	Max core.Vec3
}

// Center returns the componentwise midpoint of the box
func (b Bounds) Center() core.Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// Size returns the length of the box diagonal
func (b Bounds) Size() float64 {
	return b.Max.Subtract(b.Min).Length()
}

// ComputeBounds folds the transformed corners of every object's local box into one
// world-space box. The result is exact for translations and conservative otherwise.
func ComputeBounds[T BoundedObject](objects []T) (Bounds, error) {
	if len(objects) == 0 {
		return Bounds{}, ErrNoMeshes
	}

	inf := math.Inf(1)
	bounds := Bounds{
		Min: core.NewVec3(inf, inf, inf),
		Max: core.NewVec3(-inf, -inf, -inf),
	}

	for _, object := range objects {
		world := object.WorldMatrix()
		for _, corner := range object.LocalBounds().Corners() {
			p := loaders.TransformPoint(world, corner)
			bounds.Min = bounds.Min.Min(p)
			bounds.Max = bounds.Max.Max(p)
		}
	}

	return bounds, nil
}
