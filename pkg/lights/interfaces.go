package lights

import (
	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/material"
)

type LightType string

const (
	LightTypeArea     LightType = "area"
	LightTypeInfinite LightType = "infinite"
)

// Light interface for objects that can be sampled for direct lighting
type Light interface {
	Type() LightType

	// Sample samples light toward a specific point for direct lighting
	// Returns LightSample with direction FROM shading point TO light
	// For infinite lights: normal constrains sampling to the visible hemisphere
	Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample

	// PDF calculates the solid angle density for sampling a given direction toward the light
	PDF(point core.Vec3, normal core.Vec3, direction core.Vec3) float64

	// Emit evaluates emission for a ray that escapes the scene.
	// Finite lights return zero; they are reached through Hit instead.
	Emit(ray core.Ray) core.Vec3
}

// AreaLight is a light with a surface that secondary rays can hit
type AreaLight interface {
	Light
	Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool)
}

// LightSample contains information about a sampled point on a light
type LightSample struct {
	Point     core.Vec3 // Point on the light source
	Normal    core.Vec3 // Normal at the light sample point
	Direction core.Vec3 // Direction from shading point to light
	Distance  float64   // Distance to light
	Emission  core.Vec3 // Emitted light
	PDF       float64   // Probability density of this sample
}

// LightSampler interface for different light sampling strategies
type LightSampler interface {
	// SampleLight selects a light for the given surface point and returns the light, selection probability, and light index
	SampleLight(point core.Vec3, normal core.Vec3, u float64) (Light, float64, int)

	// GetLightProbability returns the selection probability for a specific light at a surface point
	GetLightProbability(lightIndex int, point core.Vec3, normal core.Vec3) float64

	// GetLightCount returns the number of lights in this sampler
	GetLightCount() int
}
