package material

import (
	"github.com/df07/go-studio-render/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns color at given UV coordinates and 3D point
	Evaluate(uv core.Vec2, point core.Vec3) core.Vec3
}

// SolidColor provides a uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Color
}

// representativeColor returns a color usable where no surface point is known
func representativeColor(source ColorSource) core.Vec3 {
	if solid, ok := source.(*SolidColor); ok {
		return solid.Color
	}
	return core.NewVec3(0.5, 0.5, 0.5)
}
