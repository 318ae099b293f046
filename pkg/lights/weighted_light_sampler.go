package lights

import (
	"fmt"

	"github.com/df07/go-studio-render/pkg/core"
)

// WeightedLightSampler implements light sampling with user-specified weights
// Weights must match the order of lights in the scene's Lights array
type WeightedLightSampler struct {
	lights  []Light
	weights []float64
}

// NewWeightedLightSampler creates a light sampler with specified weights.
// Weights are normalized to sum to 1.0; all-zero weights fall back to uniform.
func NewWeightedLightSampler(lights []Light, weights []float64) (*WeightedLightSampler, error) {
	if len(lights) != len(weights) {
		return nil, fmt.Errorf("lights length (%d) must match weights length (%d)", len(lights), len(weights))
	}

	totalWeight := 0.0
	for i, weight := range weights {
		if weight < 0 {
			return nil, fmt.Errorf("weight %d is negative: %f", i, weight)
		}
		totalWeight += weight
	}

	normalizedWeights := make([]float64, len(weights))
	for i, weight := range weights {
		if totalWeight == 0 {
			normalizedWeights[i] = 1.0 / float64(len(weights))
		} else {
			normalizedWeights[i] = weight / totalWeight
		}
	}

	return &WeightedLightSampler{lights: lights, weights: normalizedWeights}, nil
}

// NewUniformLightSampler creates a light sampler with equal weights for all lights
func NewUniformLightSampler(lights []Light) *WeightedLightSampler {
	weights := make([]float64, len(lights))
	for i := range weights {
		weights[i] = 1.0 / float64(len(lights))
	}
	return &WeightedLightSampler{lights: lights, weights: weights}
}

// SampleLight selects a light using the fixed weights (independent of surface point)
// Returns the selected light, its selection probability, and its index
func (wls *WeightedLightSampler) SampleLight(point core.Vec3, normal core.Vec3, u float64) (Light, float64, int) {
	if len(wls.lights) == 0 {
		return nil, 0.0, -1
	}

	var cumulativeProbability float64
	for i := range wls.lights {
		cumulativeProbability += wls.weights[i]
		if u <= cumulativeProbability {
			return wls.lights[i], wls.weights[i], i
		}
	}

	// Rounding can leave u just above the final sum
	lastIdx := len(wls.lights) - 1
	return wls.lights[lastIdx], wls.weights[lastIdx], lastIdx
}

// GetLightProbability returns the fixed probability for the light at the given index
func (wls *WeightedLightSampler) GetLightProbability(lightIndex int, point core.Vec3, normal core.Vec3) float64 {
	if lightIndex < 0 || lightIndex >= len(wls.weights) {
		return 0.0
	}
	return wls.weights[lightIndex]
}

// GetLightCount returns the number of lights in this sampler
func (wls *WeightedLightSampler) GetLightCount() int {
	return len(wls.lights)
}

// String returns a string representation for logging
func (wls *WeightedLightSampler) String() string {
	if len(wls.lights) == 0 {
		return "WeightedLightSampler{no lights}"
	}

	result := fmt.Sprintf("WeightedLightSampler{%d lights with fixed weights:\n", len(wls.lights))
	for i, light := range wls.lights {
		result += fmt.Sprintf("  [%d] %s: %.1f%%\n", i, light.Type(), wls.weights[i]*100)
	}
	result += "}"
	return result
}
