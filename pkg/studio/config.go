package studio

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/material"
)

// Config holds every tunable of a product shot. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Material MaterialConfig `yaml:"material"`
	World    WorldConfig    `yaml:"world"`
	Ground   GroundConfig   `yaml:"ground"`
	Camera   CameraConfig   `yaml:"camera"`
	Lighting LightingConfig `yaml:"lighting"`
	Render   RenderConfig   `yaml:"render"`
}

// MaterialConfig is the uniform surface applied to every mesh
type MaterialConfig struct {
	Color     [3]float64 `yaml:"color"`
	Roughness float64    `yaml:"roughness"`
	Metallic  float64    `yaml:"metallic"`
	Matte     bool       `yaml:"matte"` // Pure diffuse clay look, ignores roughness and metallic
}

// WorldConfig is the background color, which also lights the scene
type WorldConfig struct {
	Color       [3]float64 `yaml:"color"`
	Strength    float64    `yaml:"strength"`
	Transparent bool       `yaml:"transparent"` // Render the background as alpha, keeping shadows
}

// GroundConfig places the shadow catcher under the object
type GroundConfig struct {
	Scale  float64 `yaml:"scale"`  // Edge length in units of the object size
	Offset float64 `yaml:"offset"` // Distance below the lowest point
}

// CameraConfig controls auto-framing
type CameraConfig struct {
	FOV    float64 `yaml:"fov"` // Vertical field of view in degrees, used when the model has no camera
	Margin float64 `yaml:"margin"`
}

// LightingConfig lists the studio lights
type LightingConfig struct {
	EdgeScale float64     `yaml:"edge_scale"` // Light edge length in units of the object size
	Lights    []LightSpec `yaml:"lights"`
}

// RenderConfig controls the path tracer and output
type RenderConfig struct {
	Samples           int     `yaml:"samples"`
	MaxDepth          int     `yaml:"max_depth"`
	Passes            int     `yaml:"passes"`
	TileSize          int     `yaml:"tile_size"`
	Workers           int     `yaml:"workers"` // 0 = one per CPU
	Scale             int     `yaml:"scale"`   // Supersampling factor per axis
	AdaptiveThreshold float64 `yaml:"adaptive_threshold"`
	Decimate          float64 `yaml:"decimate"` // Fraction of triangles to keep (0 = off)
}

// DefaultConfig returns the classic product-shot setup: dark gray satin object on white
// with three-point lighting
func DefaultConfig() Config {
	sampling := core.DefaultSamplingConfig()
	return Config{
		Material: MaterialConfig{
			Color:     [3]float64{0.066, 0.066, 0.066},
			Roughness: 0.4,
		},
		World: WorldConfig{
			Color:    [3]float64{1, 1, 1},
			Strength: 1.0,
		},
		Ground: GroundConfig{
			Scale:  4.0,
			Offset: 0.0005,
		},
		Camera: CameraConfig{
			FOV:    39.6,
			Margin: DefaultMargin,
		},
		Lighting: LightingConfig{
			EdgeScale: 0.5,
			Lights:    DefaultLights(),
		},
		Render: RenderConfig{
			Samples:           sampling.SamplesPerPixel,
			MaxDepth:          sampling.MaxDepth,
			Passes:            5,
			TileSize:          64,
			Scale:             1,
			AdaptiveThreshold: sampling.AdaptiveThreshold,
		},
	}
}

// LoadConfig reads a YAML preset on top of the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate reports every setting that cannot produce a render
func (c Config) Validate() error {
	var errs []error

	if c.Material.Roughness < 0 || c.Material.Roughness > 1 {
		errs = append(errs, fmt.Errorf("material roughness must be in [0, 1], got %g", c.Material.Roughness))
	}
	if c.Material.Metallic < 0 || c.Material.Metallic > 1 {
		errs = append(errs, fmt.Errorf("material metallic must be in [0, 1], got %g", c.Material.Metallic))
	}
	for i, channel := range c.Material.Color {
		if channel < 0 || channel > 1 {
			errs = append(errs, fmt.Errorf("material color channel %d must be in [0, 1], got %g", i, channel))
		}
	}
	if c.World.Strength < 0 {
		errs = append(errs, fmt.Errorf("world strength must not be negative, got %g", c.World.Strength))
	}
	if c.Ground.Scale <= 0 {
		errs = append(errs, fmt.Errorf("ground scale must be positive, got %g", c.Ground.Scale))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be in (0, 180) degrees, got %g", c.Camera.FOV))
	}
	if c.Camera.Margin <= 0 {
		errs = append(errs, fmt.Errorf("camera margin must be positive, got %g", c.Camera.Margin))
	}
	if c.Lighting.EdgeScale <= 0 {
		errs = append(errs, fmt.Errorf("light edge scale must be positive, got %g", c.Lighting.EdgeScale))
	}
	for _, light := range c.Lighting.Lights {
		if light.Energy < 0 {
			errs = append(errs, fmt.Errorf("light %q energy must not be negative, got %g", light.Name, light.Energy))
		}
	}
	if c.Render.Samples <= 0 {
		errs = append(errs, fmt.Errorf("samples must be positive, got %d", c.Render.Samples))
	}
	if c.Render.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max depth must be positive, got %d", c.Render.MaxDepth))
	}
	if c.Render.Passes <= 0 {
		errs = append(errs, fmt.Errorf("passes must be positive, got %d", c.Render.Passes))
	}
	if c.Render.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tile size must be positive, got %d", c.Render.TileSize))
	}
	if c.Render.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Render.Workers))
	}
	if c.Render.Scale < 1 {
		errs = append(errs, fmt.Errorf("scale must be at least 1, got %d", c.Render.Scale))
	}
	if c.Render.AdaptiveThreshold < 0 {
		errs = append(errs, fmt.Errorf("adaptive threshold must not be negative, got %g", c.Render.AdaptiveThreshold))
	}
	if c.Render.Decimate < 0 || c.Render.Decimate >= 1 {
		errs = append(errs, fmt.Errorf("decimate must be in [0, 1), got %g", c.Render.Decimate))
	}

	return errors.Join(errs...)
}

// MaterialColor returns the material base color
func (c Config) MaterialColor() core.Vec3 {
	return core.NewVec3(c.Material.Color[0], c.Material.Color[1], c.Material.Color[2])
}

// SurfaceMaterial builds the uniform material shared by every mesh
func (c Config) SurfaceMaterial() material.Material {
	if c.Material.Matte {
		return material.NewLambertian(c.MaterialColor())
	}
	return material.NewPrincipledWithSource(material.NewSolidColor(c.MaterialColor()), c.Material.Roughness, c.Material.Metallic)
}

// WorldRadiance returns the background color scaled by its strength
func (c Config) WorldRadiance() core.Vec3 {
	return core.NewVec3(c.World.Color[0], c.World.Color[1], c.World.Color[2]).Multiply(c.World.Strength)
}

// SamplingConfig builds the path tracer settings for an image of the given size
func (c Config) SamplingConfig(width, height int) core.SamplingConfig {
	sampling := core.DefaultSamplingConfig()
	sampling.Width = width
	sampling.Height = height
	sampling.SamplesPerPixel = c.Render.Samples
	sampling.MaxDepth = c.Render.MaxDepth
	sampling.AdaptiveThreshold = c.Render.AdaptiveThreshold
	return sampling
}
