package lights

import (
	"math"

	"github.com/df07/go-studio-render/pkg/core"
)

// UniformInfiniteLight represents a uniform infinite area light (constant emission in all directions)
type UniformInfiniteLight struct {
	emission core.Vec3 // Uniform emission color
}

// NewUniformInfiniteLight creates a new uniform infinite light
func NewUniformInfiniteLight(emission core.Vec3) *UniformInfiniteLight {
	return &UniformInfiniteLight{emission: emission}
}

func (uil *UniformInfiniteLight) Type() LightType {
	return LightTypeInfinite
}

// Sample implements the Light interface - samples the visible hemisphere with a cosine weight
func (uil *UniformInfiniteLight) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	direction := core.SampleCosineHemisphere(normal, sample)
	cosTheta := direction.Dot(normal)

	return LightSample{
		Point:     point.Add(direction.Multiply(1e10)), // Far away point
		Normal:    direction.Negate(),                  // Points toward scene
		Direction: direction,
		Distance:  math.Inf(1),
		Emission:  uil.emission,
		PDF:       cosTheta / math.Pi,
	}
}

// PDF implements the Light interface - cosine-weighted hemisphere density
func (uil *UniformInfiniteLight) PDF(point, normal, direction core.Vec3) float64 {
	cosTheta := direction.Normalize().Dot(normal)
	if cosTheta <= 0 {
		return 0.0
	}
	return cosTheta / math.Pi
}

// Emit implements the Light interface - the same radiance in every direction
func (uil *UniformInfiniteLight) Emit(ray core.Ray) core.Vec3 {
	return uil.emission
}
