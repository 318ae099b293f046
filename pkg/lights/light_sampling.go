package lights

import (
	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/material"
)

// CalculateLightPDF calculates the combined PDF for a given direction toward multiple lights
func CalculateLightPDF(lights []Light, lightSampler LightSampler, point, normal, direction core.Vec3) float64 {
	if len(lights) == 0 {
		return 0.0
	}
	totalPDF := 0.0

	// Each light's PDF weighted by its selection probability
	for i, light := range lights {
		lightPDF := light.PDF(point, normal, direction)
		lightSelectionPdf := lightSampler.GetLightProbability(i, point, normal)
		totalPDF += lightPDF * lightSelectionPdf
	}

	return totalPDF
}

// SampleLight selects and samples a light from the scene using importance sampling
func SampleLight(lights []Light, lightSampler LightSampler, point core.Vec3, normal core.Vec3, sampler core.Sampler) (LightSample, Light, int, bool) {
	if len(lights) == 0 {
		return LightSample{}, nil, -1, false
	}
	selectedLight, lightSelectionPdf, lightIndex := lightSampler.SampleLight(point, normal, sampler.Get1D())

	sample := selectedLight.Sample(point, normal, sampler.Get2D())
	sample.PDF *= lightSelectionPdf // Combined PDF for MIS calculations

	return sample, selectedLight, lightIndex, true
}

// EmittedRadiance returns the radiance leaving an emissive surface toward the ray origin.
// Surfaces only emit from their front face.
func EmittedRadiance(ray core.Ray, hit *material.SurfaceInteraction) core.Vec3 {
	if hit == nil || !hit.FrontFace {
		return core.Vec3{}
	}
	if emitter, ok := hit.Material.(material.Emitter); ok {
		return emitter.Emit(ray)
	}
	return core.Vec3{}
}
