package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// SamplingConfig contains the per-render sampling configuration
type SamplingConfig struct {
	Width                     int     // Image width
	Height                    int     // Image height
	SamplesPerPixel           int     // Number of rays per pixel
	MaxDepth                  int     // Maximum ray bounce depth
	RussianRouletteMinBounces int     // Minimum bounces before Russian Roulette can activate
	RussianRouletteMinSamples int     // Minimum samples per pixel before Russian Roulette can activate
	AdaptiveMinSamples        float64 // Minimum samples as fraction of max samples (0.0-1.0)
	AdaptiveThreshold         float64 // Relative error threshold for adaptive convergence (0.01 = 1%)
}

// DefaultSamplingConfig returns sampling defaults suited to a single product shot
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel:           128,
		MaxDepth:                  12,
		RussianRouletteMinBounces: 4,
		RussianRouletteMinSamples: 8,
		AdaptiveMinSamples:        0.15,
		AdaptiveThreshold:         0.02,
	}
}
