package integrator

import (
	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance and coverage (alpha) seen along a camera ray.
	// sampleIndex is the pixel's sample number, used to delay Russian roulette.
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler, sampleIndex int) (core.Vec3, float64)
}
