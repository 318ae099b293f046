package material

import (
	"math"

	"github.com/df07/go-studio-render/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo ColorSource // Base color/reflectance
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewSolidColor(albedo)}
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit SurfaceInteraction, sampler core.Sampler) (ScatterResult, bool) {
	scatterDirection := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
	scattered := core.Ray{Origin: hit.Point, Direction: scatterDirection}

	// PDF: cos(θ) / π
	pdf := core.CosineHemispherePDF(hit.Normal, scatterDirection.Normalize())
	if pdf <= 0 {
		return ScatterResult{}, false
	}

	// BRDF: albedo / π
	albedo := l.Albedo.Evaluate(hit.UV, hit.Point)
	attenuation := albedo.Multiply(1.0 / math.Pi)

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   scattered,
		Attenuation: attenuation,
		PDF:         pdf,
	}, true
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (l *Lambertian) EvaluateBRDF(incomingDir, outgoingDir core.Vec3, hit *SurfaceInteraction) core.Vec3 {
	if outgoingDir.Dot(hit.Normal) <= 0 {
		return core.Vec3{}
	}
	return l.Albedo.Evaluate(hit.UV, hit.Point).Multiply(1.0 / math.Pi)
}

// PDF calculates the probability density function for specific incoming/outgoing directions
func (l *Lambertian) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	return core.CosineHemispherePDF(normal, outgoingDir.Normalize()), false
}
