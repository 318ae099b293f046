package studio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/geometry"
	"github.com/df07/go-studio-render/pkg/integrator"
	"github.com/df07/go-studio-render/pkg/loaders"
	"github.com/df07/go-studio-render/pkg/material"
	"github.com/df07/go-studio-render/pkg/renderer"
	"github.com/df07/go-studio-render/pkg/scene"
)

// Job is one product shot: a model in, an image out
type Job struct {
	Input  string
	Output string
	Width  int
	Height int
}

// Validate checks the job before any file is read
func (j Job) Validate() error {
	if j.Input == "" {
		return errors.New("input path is required")
	}
	if j.Output == "" {
		return errors.New("output path is required")
	}
	if j.Width <= 0 || j.Height <= 0 {
		return fmt.Errorf("resolution must be positive, got %dx%d", j.Width, j.Height)
	}
	return nil
}

// Result describes a finished render
type Result struct {
	Output    string
	Bounds    Bounds
	Framing   Framing
	Meshes    int
	Triangles int
	Stats     renderer.RenderStats
	Duration  time.Duration
}

// Pipeline turns models into studio product shots
type Pipeline struct {
	config Config
	logger core.Logger
}

// NewPipeline creates a pipeline with a validated configuration
func NewPipeline(config Config, logger core.Logger) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = renderer.NewNopLogger()
	}
	return &Pipeline{config: config, logger: logger}, nil
}

// Run imports the model, stages it and renders it to job.Output. It returns ErrNoMeshes,
// without rendering, when the model has nothing to frame.
func (p *Pipeline) Run(ctx context.Context, job Job) (Result, error) {
	start := time.Now()
	if err := job.Validate(); err != nil {
		return Result{}, err
	}

	model, err := loaders.LoadGLTF(job.Input)
	if err != nil {
		return Result{}, fmt.Errorf("failed to import %s: %w", job.Input, err)
	}
	if len(model.Meshes) == 0 {
		return Result{}, ErrNoMeshes
	}

	bounds, err := ComputeBounds(model.Meshes)
	if err != nil {
		return Result{}, err
	}
	p.logger.Printf("Imported %d meshes (%d triangles), bounds %v to %v, size %.4f\n",
		len(model.Meshes), model.TriangleCount(), bounds.Min, bounds.Max, bounds.Size())

	if p.config.Render.Decimate > 0 {
		if err := loaders.Decimate(model, p.config.Render.Decimate); err != nil {
			return Result{}, err
		}
		p.logger.Printf("Decimated to %d triangles\n", model.TriangleCount())
	}

	scale := p.config.Render.Scale
	renderWidth, renderHeight := job.Width*scale, job.Height*scale

	s, framing, err := BuildScene(model, bounds, p.config, renderWidth, renderHeight)
	if err != nil {
		return Result{}, err
	}
	if len(model.Cameras) > 0 {
		p.logger.Printf("Using lens of model camera %q (yfov %.4f rad)\n", model.Cameras[0].Name, model.Cameras[0].YFov)
	}
	p.logger.Printf("Camera at %v, distance %.4f, clip %.4f to %.4f\n",
		framing.Camera.Center, framing.Distance, framing.Near, framing.Far)
	p.logger.Printf("Scene holds %d primitives\n", s.GetPrimitiveCount())

	img, stats, err := p.render(ctx, s)
	if err != nil {
		return Result{}, err
	}
	p.logger.Printf("Rendered %.1f samples per pixel, average luminance %.3f\n",
		stats.AverageSamples, renderer.CalculateAverageLuminance(img))

	var output image.Image = img
	if scale > 1 {
		output = loaders.Downsample(img, job.Width, job.Height)
	}
	if err := loaders.SaveImage(job.Output, output); err != nil {
		return Result{}, err
	}

	return Result{
		Output:    job.Output,
		Bounds:    bounds,
		Framing:   framing,
		Meshes:    len(model.Meshes),
		Triangles: model.TriangleCount(),
		Stats:     stats,
		Duration:  time.Since(start),
	}, nil
}

func (p *Pipeline) render(ctx context.Context, s *scene.Scene) (*image.NRGBA, renderer.RenderStats, error) {
	render := p.config.Render
	progressiveConfig := renderer.DefaultProgressiveConfig()
	progressiveConfig.TileSize = render.TileSize
	progressiveConfig.MaxSamplesPerPixel = render.Samples
	progressiveConfig.MaxPasses = min(render.Passes, render.Samples)
	progressiveConfig.NumWorkers = render.Workers

	raytracer, err := renderer.NewProgressiveRaytracer(s, progressiveConfig, integrator.NewPathTracingIntegrator(s.SamplingConfig), p.logger)
	if err != nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("failed to create renderer: %w", err)
	}

	img, stats, err := raytracer.Render(ctx)
	if err != nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("render failed: %w", err)
	}
	return img, stats, nil
}

// BuildScene stages a model for a width x height render: uniform material, world light,
// shadow catcher ground, framed camera and studio lights. The returned scene is preprocessed.
func BuildScene(model *loaders.Model, bounds Bounds, config Config, width, height int) (*scene.Scene, Framing, error) {
	if bounds.Size() == 0 {
		return nil, Framing{}, ErrDegenerateBounds
	}

	s := scene.NewScene(config.SamplingConfig(width, height))

	surface := config.SurfaceMaterial()
	for _, object := range model.Meshes {
		if object.TriangleCount() == 0 {
			continue
		}
		mesh := geometry.NewTriangleMesh(object.Vertices, object.Indices, surface, &geometry.TriangleMeshOptions{
			VertexNormals: object.Normals,
		})
		s.AddShape(mesh)
	}

	world := config.WorldRadiance()
	s.Background = world
	s.Transparent = config.World.Transparent
	if !world.IsZero() {
		s.AddUniformInfiniteLight(world)
	}

	center := bounds.Center()
	groundCenter := core.NewVec3(center.X, bounds.Min.Y-config.Ground.Offset, center.Z)
	s.AddShadowCatcher(scene.NewGroundQuad(groundCenter, bounds.Size()*config.Ground.Scale, material.NewShadowCatcher()))

	aspect := float64(width) / float64(height)
	framing := FrameCamera(bounds, cameraFOV(model, config), aspect, FramingOptions{Margin: config.Camera.Margin})
	s.CameraConfig = framing.Camera

	AddStudioLights(s, bounds, config.Lighting.Lights, config.Lighting.EdgeScale)

	if err := s.Preprocess(); err != nil {
		return nil, Framing{}, fmt.Errorf("failed to prepare scene: %w", err)
	}
	return s, framing, nil
}

// cameraFOV returns the vertical field of view in radians: the model's first camera if it
// has one, otherwise the configured default
func cameraFOV(model *loaders.Model, config Config) float64 {
	if len(model.Cameras) > 0 {
		return model.Cameras[0].YFov
	}
	return config.Camera.FOV * math.Pi / 180.0
}
