package studio

import (
	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/lights"
	"github.com/df07/go-studio-render/pkg/scene"
)

// wattsPerIrradiance converts a light's energy rating into the irradiance it delivers
// at the object center, independent of the object's scale
const wattsPerIrradiance = 250.0

// LightSpec describes one studio light relative to the object
type LightSpec struct {
	Name   string     `yaml:"name"`
	Energy float64    `yaml:"energy"`
	Offset [3]float64 `yaml:"offset"` // Position relative to the center, in units of the object size
}

// DefaultLights returns the key, fill and rim lights of a three-point setup
func DefaultLights() []LightSpec {
	return []LightSpec{
		{Name: "KeyLight", Energy: 800, Offset: [3]float64{1, 1, 1}},
		{Name: "FillLight", Energy: 300, Offset: [3]float64{-1, 1, -1}},
		{Name: "RimLight", Energy: 500, Offset: [3]float64{0, -1, 1}},
	}
}

// PlacedLight is a square area light positioned for a particular model
type PlacedLight struct {
	Name     string
	Corner   core.Vec3
	U        core.Vec3
	V        core.Vec3
	Radiance core.Vec3
}

// Position returns the center of the light
func (p PlacedLight) Position() core.Vec3 {
	return p.Corner.Add(p.U.Multiply(0.5)).Add(p.V.Multiply(0.5))
}

// PlaceLights positions each light at center + offset*size as a square of edge
// size*edgeScale facing the center. Lights that land on the center are skipped.
func PlaceLights(bounds Bounds, specs []LightSpec, edgeScale float64) []PlacedLight {
	center := bounds.Center()
	size := bounds.Size()
	edge := size * edgeScale

	placed := make([]PlacedLight, 0, len(specs))
	for _, spec := range specs {
		offset := core.NewVec3(spec.Offset[0], spec.Offset[1], spec.Offset[2]).Multiply(size)
		distance := offset.Length()
		if distance == 0 || edge <= 0 {
			continue
		}

		// u × v points from the light toward the center
		normal := offset.Multiply(-1.0 / distance)
		tangent, bitangent := core.OrthonormalBasis(normal)
		u := tangent.Multiply(edge)
		v := bitangent.Multiply(edge)

		position := center.Add(offset)
		radiance := RadianceForEnergy(spec.Energy, distance, edge*edge)
		placed = append(placed, PlacedLight{
			Name:     spec.Name,
			Corner:   position.Subtract(u.Multiply(0.5)).Subtract(v.Multiply(0.5)),
			U:        u,
			V:        v,
			Radiance: core.NewVec3(radiance, radiance, radiance),
		})
	}
	return placed
}

// RadianceForEnergy returns the radiance a facing light of the given area needs to deliver
// energy/250 irradiance at distance, using the small-source approximation E = L*A/d²
func RadianceForEnergy(energy, distance, area float64) float64 {
	if area <= 0 {
		return 0
	}
	return energy / wattsPerIrradiance * distance * distance / area
}

// AddStudioLights places the lights and adds them to the scene
func AddStudioLights(s *scene.Scene, bounds Bounds, specs []LightSpec, edgeScale float64) []*lights.QuadLight {
	var added []*lights.QuadLight
	for _, light := range PlaceLights(bounds, specs, edgeScale) {
		added = append(added, s.AddQuadLight(light.Name, light.Corner, light.U, light.V, light.Radiance))
	}
	return added
}
