package integrator

import (
	"math"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/lights"
	"github.com/df07/go-studio-render/pkg/material"
	"github.com/df07/go-studio-render/pkg/scene"
)

// Light samples taken per light at each shadow catcher hit
const catcherLightSamples = 2

// PathTracingIntegrator implements unidirectional path tracing with next event estimation
type PathTracingIntegrator struct {
	config core.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config core.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor traces a camera ray. Lights are invisible to camera rays; shadow catchers
// are visible only to them.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler, sampleIndex int) (core.Vec3, float64) {
	tMin, tMax := 0.0, math.Inf(1)
	if scene.Camera != nil {
		tMin, tMax = scene.Camera.ClipRange(ray)
	}
	if tMax <= tMin {
		return pt.background(scene)
	}

	hit, isHit := scene.BVH.Hit(ray, tMin, tMax)
	if isHit {
		tMax = hit.T
	}

	if catcher, ok := closestCatcher(scene, ray, tMin, tMax); ok {
		return pt.shadowCatcherColor(catcher, scene, sampler)
	}

	if !isHit {
		return pt.background(scene)
	}

	return pt.shade(ray, hit, scene, sampler, pt.config.MaxDepth, core.NewVec3(1, 1, 1), sampleIndex), 1.0
}

// background returns what the camera sees where nothing is hit
func (pt *PathTracingIntegrator) background(scene *scene.Scene) (core.Vec3, float64) {
	if scene.Transparent {
		return core.Vec3{}, 0.0
	}
	return scene.Background, 1.0
}

func closestCatcher(scene *scene.Scene, ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	var closest *material.SurfaceInteraction
	for _, shape := range scene.ShadowCatchers {
		if hit, ok := shape.Hit(ray, tMin, tMax); ok {
			closest = hit
			tMax = hit.T
		}
	}
	return closest, closest != nil
}

// shadowCatcherColor darkens the background by the fraction of direct light blocked at the hit
func (pt *PathTracingIntegrator) shadowCatcherColor(hit *material.SurfaceInteraction, scene *scene.Scene, sampler core.Sampler) (core.Vec3, float64) {
	ratio := pt.unshadowedRatio(hit, scene, sampler)
	if scene.Transparent {
		return core.Vec3{}, 1.0 - ratio
	}
	return scene.Background.Multiply(ratio), 1.0
}

// unshadowedRatio estimates occluded / unoccluded direct irradiance at a point
func (pt *PathTracingIntegrator) unshadowedRatio(hit *material.SurfaceInteraction, scene *scene.Scene, sampler core.Sampler) float64 {
	eps := rayEpsilon(scene)
	origin := hit.Point.Add(hit.Normal.Multiply(eps))

	total, visible := 0.0, 0.0
	for _, light := range scene.Lights {
		for i := 0; i < catcherLightSamples; i++ {
			sample := light.Sample(hit.Point, hit.Normal, sampler.Get2D())
			cosine := sample.Direction.Dot(hit.Normal)
			if sample.PDF <= 0 || cosine <= 0 {
				continue
			}

			contribution := sample.Emission.Luminance() * cosine / sample.PDF
			if contribution <= 0 {
				continue
			}
			total += contribution

			if !scene.BVH.Occluded(core.NewRay(origin, sample.Direction), eps, sample.Distance-eps) {
				visible += contribution
			}
		}
	}

	if total <= 0 {
		return 1.0
	}
	return visible / total
}

// shade computes outgoing radiance at a surface hit: direct light plus indirect bounces
func (pt *PathTracingIntegrator) shade(ray core.Ray, hit *material.SurfaceInteraction, scene *scene.Scene, sampler core.Sampler, depth int, throughput core.Vec3, sampleIndex int) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	shouldTerminate, rrCompensation := pt.applyRussianRoulette(depth, throughput, sampleIndex, sampler)
	if shouldTerminate {
		return core.Vec3{}
	}

	color := pt.calculateDirectLighting(ray, hit, scene, sampler)

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if didScatter {
		color = color.Add(pt.calculateIndirectLighting(scatter, hit, scene, sampler, depth, throughput, sampleIndex))
	}

	return color.Multiply(rrCompensation)
}

// calculateDirectLighting samples one light and weights it against BRDF sampling (MIS)
func (pt *PathTracingIntegrator) calculateDirectLighting(ray core.Ray, hit *material.SurfaceInteraction, scene *scene.Scene, sampler core.Sampler) core.Vec3 {
	lightSample, _, _, hasLight := lights.SampleLight(scene.Lights, scene.LightSampler, hit.Point, hit.Normal, sampler)
	if !hasLight || lightSample.PDF <= 0 || lightSample.Emission.IsZero() {
		return core.Vec3{}
	}

	cosine := lightSample.Direction.Dot(hit.Normal)
	if cosine <= 0 {
		return core.Vec3{} // Light is behind the surface
	}

	brdf := hit.Material.EvaluateBRDF(ray.Direction, lightSample.Direction, hit)
	if brdf.IsZero() {
		return core.Vec3{}
	}

	// Shadow rays test scene geometry only
	eps := rayEpsilon(scene)
	shadowRay := core.NewRay(hit.Point.Add(hit.Normal.Multiply(eps)), lightSample.Direction)
	if scene.BVH.Occluded(shadowRay, eps, lightSample.Distance-eps) {
		return core.Vec3{}
	}

	materialPDF, isDelta := hit.Material.PDF(ray.Direction, lightSample.Direction, hit.Normal)
	misWeight := 1.0
	if !isDelta {
		misWeight = core.PowerHeuristic(1, lightSample.PDF, 1, materialPDF)
	}

	return brdf.MultiplyVec(lightSample.Emission).Multiply(cosine * misWeight / lightSample.PDF)
}

// calculateIndirectLighting follows the sampled BRDF direction: light surfaces and the
// environment it reaches are MIS-weighted, geometry it reaches is shaded recursively
func (pt *PathTracingIntegrator) calculateIndirectLighting(scatter material.ScatterResult, hit *material.SurfaceInteraction, scene *scene.Scene, sampler core.Sampler, depth int, throughput core.Vec3, sampleIndex int) core.Vec3 {
	if scatter.PDF <= 0 {
		return core.Vec3{}
	}

	direction := scatter.Scattered.Direction.Normalize()
	cosine := direction.Dot(hit.Normal)
	if cosine <= 0 {
		return core.Vec3{}
	}

	weight := scatter.Attenuation.Multiply(cosine / scatter.PDF)
	if weight.IsZero() {
		return core.Vec3{}
	}

	eps := rayEpsilon(scene)
	ray := core.NewRay(hit.Point.Add(hit.Normal.Multiply(eps)), direction)

	next, isHit := scene.BVH.Hit(ray, eps, math.Inf(1))
	tMax := math.Inf(1)
	if isHit {
		tMax = next.T
	}

	incoming := pt.lightsAlongRay(ray, hit, scene, scatter.PDF, tMax, !isHit)
	if isHit {
		newThroughput := throughput.MultiplyVec(weight)
		incoming = incoming.Add(pt.shade(ray, next, scene, sampler, depth-1, newThroughput, sampleIndex))
	}

	return weight.MultiplyVec(incoming)
}

// lightsAlongRay sums MIS-weighted emission from every light the ray reaches before tMax.
// Lights do not occlude each other, so all of them contribute.
func (pt *PathTracingIntegrator) lightsAlongRay(ray core.Ray, from *material.SurfaceInteraction, scene *scene.Scene, brdfPDF, tMax float64, escaped bool) core.Vec3 {
	var total core.Vec3
	for i, light := range scene.Lights {
		var emission core.Vec3
		if area, ok := light.(lights.AreaLight); ok {
			lightHit, hitLight := area.Hit(ray, 0, tMax)
			if !hitLight {
				continue
			}
			emission = lights.EmittedRadiance(ray, lightHit)
		} else if escaped {
			emission = light.Emit(ray)
		}
		if emission.IsZero() {
			continue
		}

		lightPDF := light.PDF(from.Point, from.Normal, ray.Direction)
		if scene.LightSampler != nil {
			lightPDF *= scene.LightSampler.GetLightProbability(i, from.Point, from.Normal)
		}
		total = total.Add(emission.Multiply(core.PowerHeuristic(1, brdfPDF, 1, lightPDF)))
	}
	return total
}

// applyRussianRoulette determines if a ray should be terminated and returns the compensation factor
// Returns (shouldTerminate, compensationFactor)
func (pt *PathTracingIntegrator) applyRussianRoulette(depth int, throughput core.Vec3, sampleIndex int, sampler core.Sampler) (bool, float64) {
	currentBounce := pt.config.MaxDepth - depth

	shouldApplyRR := currentBounce >= pt.config.RussianRouletteMinBounces && sampleIndex >= pt.config.RussianRouletteMinSamples
	if !shouldApplyRR {
		return false, 1.0
	}

	// survivalProb between 0.5 and 0.95 limits compensation to between 1.05x and 2.0x
	survivalProb := math.Min(0.95, math.Max(0.5, throughput.Luminance()))

	if sampler.Get1D() > survivalProb {
		return true, 0.0
	}
	return false, 1.0 / survivalProb
}

// rayEpsilon scales the self-intersection offset with the scene
func rayEpsilon(scene *scene.Scene) float64 {
	return math.Max(1e-7, scene.BVH.Radius*1e-5)
}
