package material

import (
	"github.com/df07/go-studio-render/pkg/core"
)

// ShadowCatcher marks a surface that only records the shadows cast onto it.
// It reflects nothing; the integrator resolves it against the background.
type ShadowCatcher struct{}

// NewShadowCatcher creates a shadow catcher material
func NewShadowCatcher() *ShadowCatcher {
	return &ShadowCatcher{}
}

// Scatter never scatters
func (s *ShadowCatcher) Scatter(rayIn core.Ray, hit SurfaceInteraction, sampler core.Sampler) (ScatterResult, bool) {
	return ScatterResult{}, false
}

// EvaluateBRDF returns zero
func (s *ShadowCatcher) EvaluateBRDF(incomingDir, outgoingDir core.Vec3, hit *SurfaceInteraction) core.Vec3 {
	return core.Vec3{}
}

// PDF returns zero
func (s *ShadowCatcher) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	return 0, false
}
