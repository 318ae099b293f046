package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/geometry"
	"github.com/df07/go-studio-render/pkg/lights"
	"github.com/df07/go-studio-render/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         []geometry.Shape    // Objects that cast and receive light
	ShadowCatchers []geometry.Shape    // Surfaces seen only by camera rays
	Lights         []lights.Light      // Lights in the scene
	AreaLights     []lights.AreaLight  // Lights with a surface reflection rays can hit
	LightSampler   lights.LightSampler // Light sampler
	Background     core.Vec3           // World color seen directly by the camera
	Transparent    bool                // Replace the background with alpha
	SamplingConfig core.SamplingConfig
	BVH            *geometry.BVH // Acceleration structure for ray-object intersection
}

// NewScene creates an empty scene with the given sampling configuration
func NewScene(config core.SamplingConfig) *Scene {
	return &Scene{SamplingConfig: config}
}

// NewGroundQuad creates a large horizontal quad centered at the given point with normal (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, material material.Material) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (0,0,size) × (size,0,0) = (0,size²,0) which normalizes to (0,1,0)
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, material)
}

// Preprocess prepares the scene for rendering: BVH, camera and light sampler
func (s *Scene) Preprocess() error {
	if s.SamplingConfig.Width <= 0 || s.SamplingConfig.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}

	s.BVH = geometry.NewBVH(s.Shapes)

	if s.Camera == nil {
		s.CameraConfig.Width = s.SamplingConfig.Width
		s.CameraConfig.AspectRatio = float64(s.SamplingConfig.Width) / float64(s.SamplingConfig.Height)
		s.Camera = geometry.NewCamera(s.CameraConfig)
	}

	if s.LightSampler == nil && len(s.Lights) > 0 {
		weights := make([]float64, len(s.Lights))
		for i, light := range s.Lights {
			weights[i] = lightWeight(light, s.BVH.Center)
		}
		sampler, err := lights.NewWeightedLightSampler(s.Lights, weights)
		if err != nil {
			return fmt.Errorf("failed to create light sampler: %w", err)
		}
		s.LightSampler = sampler
	}

	return nil
}

// lightWeight estimates the irradiance a light delivers at the scene center
func lightWeight(light lights.Light, center core.Vec3) float64 {
	switch l := light.(type) {
	case *lights.QuadLight:
		toCenter := center.Subtract(l.Center())
		d2 := toCenter.LengthSquared()
		if d2 == 0 {
			return 0
		}
		cosTheta := math.Max(l.Normal.Dot(toCenter.Normalize()), 0)
		return l.Power() / math.Pi * cosTheta / d2
	case *lights.UniformInfiniteLight:
		return math.Pi * l.Emit(core.Ray{}).Luminance()
	default:
		return 1.0
	}
}

// AddShape adds a shape that casts and receives light
func (s *Scene) AddShape(shape geometry.Shape) {
	s.Shapes = append(s.Shapes, shape)
}

// AddShadowCatcher adds a surface that only records shadows for the camera
func (s *Scene) AddShadowCatcher(shape geometry.Shape) {
	s.ShadowCatchers = append(s.ShadowCatchers, shape)
}

// AddQuadLight adds a one-sided rectangular area light to the scene
func (s *Scene) AddQuadLight(name string, corner, u, v core.Vec3, emission core.Vec3) *lights.QuadLight {
	quadLight := lights.NewQuadLight(corner, u, v, material.NewEmissive(emission))
	quadLight.Name = name
	s.Lights = append(s.Lights, quadLight)
	s.AreaLights = append(s.AreaLights, quadLight)
	return quadLight
}

// AddUniformInfiniteLight adds a uniform infinite light to the scene
func (s *Scene) AddUniformInfiniteLight(emission core.Vec3) {
	s.Lights = append(s.Lights, lights.NewUniformInfiniteLight(emission))
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		switch obj := shape.(type) {
		case *geometry.TriangleMesh:
			count += obj.GetTriangleCount()
		default:
			count++
		}
	}
	return count
}
