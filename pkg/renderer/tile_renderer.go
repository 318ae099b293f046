package renderer

import (
	"context"
	"image"
	"math"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/integrator"
	"github.com/df07/go-studio-render/pkg/scene"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(scene *scene.Scene, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      scene,
		integrator: integratorInst,
	}
}

// RenderTileBounds renders pixels within the specified bounds using the integrator.
// Cancellation is checked once per row.
func (tr *TileRenderer) RenderTileBounds(ctx context.Context, bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) (RenderStats, error) {
	stats := tr.initRenderStatsForBounds(bounds, targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			samplesUsed := tr.adaptiveSamplePixel(i, j, &pixelStats[j][i], sampler, targetSamples)
			tr.updateStats(&stats, samplesUsed)
		}
	}

	tr.finalizeStats(&stats)
	return stats, nil
}

// adaptiveSamplePixel samples one pixel until it converges or reaches maxSamples
func (tr *TileRenderer) adaptiveSamplePixel(i, j int, ps *PixelStats, sampler core.Sampler, maxSamples int) int {
	initialSampleCount := ps.SampleCount
	config := tr.scene.SamplingConfig

	for ps.SampleCount < maxSamples && !tr.shouldStopSampling(ps, maxSamples) {
		ray := tr.scene.Camera.GetPixelRay(i, j, config.Width, config.Height, sampler.Get2D())
		color, alpha := tr.integrator.RayColor(ray, tr.scene, sampler, ps.SampleCount)
		ps.AddSample(color, alpha)
	}

	return ps.SampleCount - initialSampleCount
}

// shouldStopSampling determines if adaptive sampling should stop based on perceptual relative error
func (tr *TileRenderer) shouldStopSampling(ps *PixelStats, maxSamples int) bool {
	samplingConfig := tr.scene.SamplingConfig

	// Minimum samples as a fraction of max samples, at least 1
	minSamples := max(1, int(float64(maxSamples)*samplingConfig.AdaptiveMinSamples))
	if ps.SampleCount < minSamples {
		return false
	}

	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	meanSq := ps.LuminanceSqAccum / float64(ps.SampleCount)
	variance := math.Max(0, meanSq-mean*mean)

	// Avoid division by zero for black pixels
	if mean <= 1e-8 {
		return variance < 1e-6
	}

	relativeError := math.Sqrt(variance) / mean
	return relativeError < samplingConfig.AdaptiveThreshold
}

// initRenderStatsForBounds initializes the render statistics tracking for specific bounds
func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle, maxSamples int) RenderStats {
	return RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  maxSamples,
		MinSamples:  maxSamples, // Start with max, will be reduced
	}
}

// updateStats updates the render statistics with data from a single pixel
func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

// finalizeStats calculates final statistics after all pixels are rendered
func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}
