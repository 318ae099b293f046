package lights

import (
	"math"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/geometry"
	"github.com/df07/go-studio-render/pkg/material"
)

// QuadLight represents a one-sided rectangular area light emitting along its normal
type QuadLight struct {
	*geometry.Quad         // Embed quad for hit testing
	Name           string  // Label used in logs
	Area           float64 // Cached area for PDF calculations
}

// NewQuadLight creates a new quad light
func NewQuadLight(corner, u, v core.Vec3, material material.Material) *QuadLight {
	quad := geometry.NewQuad(corner, u, v, material)
	return &QuadLight{
		Quad: quad,
		Area: quad.Area(),
	}
}

func (ql *QuadLight) Type() LightType {
	return LightTypeArea
}

// Sample implements the Light interface - samples a point on the quad for direct lighting
func (ql *QuadLight) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	samplePoint := ql.Corner.Add(ql.U.Multiply(sample.X)).Add(ql.V.Multiply(sample.Y))

	toLight := samplePoint.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return LightSample{Point: samplePoint, Normal: ql.Normal}
	}
	direction := toLight.Multiply(1.0 / distance)

	// PDF_solid_angle = PDF_area * distance² / |cos(θ)|
	cosTheta := math.Abs(ql.Normal.Dot(direction))
	if cosTheta < 1e-8 {
		// Edge-on, no contribution
		return LightSample{Point: samplePoint, Normal: ql.Normal, Direction: direction, Distance: distance}
	}
	solidAnglePDF := distance * distance / (cosTheta * ql.Area)

	// Front face when the direction toward the light opposes its normal
	var emission core.Vec3
	if direction.Dot(ql.Normal) < 0 {
		emission = ql.emission(core.NewRay(point, direction))
	}

	return LightSample{
		Point:     samplePoint,
		Normal:    ql.Normal,
		Direction: direction,
		Distance:  distance,
		Emission:  emission,
		PDF:       solidAnglePDF,
	}
}

// PDF implements the Light interface - returns the probability density for sampling a given direction
func (ql *QuadLight) PDF(point, normal, direction core.Vec3) float64 {
	hit, ok := ql.Quad.Hit(core.NewRay(point, direction), 0.001, math.Inf(1))
	if !ok {
		return 0.0
	}

	cosTheta := math.Abs(ql.Normal.Dot(direction.Normalize()))
	if cosTheta < 1e-8 {
		return 0.0
	}

	distance := hit.T * direction.Length()
	return distance * distance / (cosTheta * ql.Area)
}

// Emit implements the Light interface. Quad lights are only seen through Hit.
func (ql *QuadLight) Emit(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

// Power returns the total flux of a Lambertian emitter: π · L · A
func (ql *QuadLight) Power() float64 {
	return math.Pi * ql.emission(core.Ray{}).Luminance() * ql.Area
}

func (ql *QuadLight) emission(ray core.Ray) core.Vec3 {
	if emitter, ok := ql.Material.(material.Emitter); ok {
		return emitter.Emit(ray)
	}
	return core.Vec3{}
}
