package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/renderer"
	"github.com/df07/go-studio-render/pkg/studio"
)

// options holds the command line flags; zero values mean "use the config"
type options struct {
	configPath  string
	samples     int
	maxDepth    int
	passes      int
	workers     int
	tileSize    int
	scale       int
	decimate    float64
	fov         float64
	transparent bool
	quiet       bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "productshot [flags] <input.gltf|glb> <output> <width> <height>",
		Short: "Render a studio product shot of a glTF model",
		Long: `productshot loads a glTF or GLB model, gives it a uniform satin material, frames it
on a white sweep with a shadow-catching floor, lights it with key, fill and rim
area lights and path traces the result to an image.`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := parseJob(args)
			if err != nil {
				return err
			}

			config, err := studio.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, opts, &config)

			var logger core.Logger = renderer.NewDefaultLogger()
			if opts.quiet {
				logger = renderer.NewNopLogger()
			}

			pipeline, err := studio.NewPipeline(config, logger)
			if err != nil {
				return err
			}

			result, err := pipeline.Run(cmd.Context(), job)
			if err != nil {
				return err
			}

			logger.Printf("Rendered %d triangles in %v (%.1f samples/pixel)\n",
				result.Triangles, result.Duration, result.Stats.AverageSamples)
			fmt.Fprintf(stdout, "Rendered → %s\n", result.Output)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML preset file")
	flags.IntVarP(&opts.samples, "samples", "s", 0, "Maximum samples per pixel")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "Maximum bounces per path")
	flags.IntVar(&opts.passes, "passes", 0, "Number of progressive passes")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Render workers (0 = one per CPU)")
	flags.IntVar(&opts.tileSize, "tile-size", 0, "Tile edge length in pixels")
	flags.IntVar(&opts.scale, "scale", 0, "Supersampling factor per axis")
	flags.Float64Var(&opts.decimate, "decimate", 0, "Fraction of triangles to keep, in (0, 1)")
	flags.Float64Var(&opts.fov, "fov", 0, "Vertical field of view in degrees when the model has no camera")
	flags.BoolVar(&opts.transparent, "transparent", false, "Transparent background with shadows kept as alpha")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Only print the result line")

	return cmd
}

// parseJob turns the four positional arguments into a job
func parseJob(args []string) (studio.Job, error) {
	width, err := strconv.Atoi(args[2])
	if err != nil || width <= 0 {
		return studio.Job{}, fmt.Errorf("invalid width %q: must be a positive integer", args[2])
	}
	height, err := strconv.Atoi(args[3])
	if err != nil || height <= 0 {
		return studio.Job{}, fmt.Errorf("invalid height %q: must be a positive integer", args[3])
	}
	return studio.Job{Input: args[0], Output: args[1], Width: width, Height: height}, nil
}

// applyFlags overrides config values with the flags given on the command line
func applyFlags(cmd *cobra.Command, opts *options, config *studio.Config) {
	flags := cmd.Flags()
	if flags.Changed("samples") {
		config.Render.Samples = opts.samples
	}
	if flags.Changed("max-depth") {
		config.Render.MaxDepth = opts.maxDepth
	}
	if flags.Changed("passes") {
		config.Render.Passes = opts.passes
	}
	if flags.Changed("workers") {
		config.Render.Workers = opts.workers
	}
	if flags.Changed("tile-size") {
		config.Render.TileSize = opts.tileSize
	}
	if flags.Changed("scale") {
		config.Render.Scale = opts.scale
	}
	if flags.Changed("decimate") {
		config.Render.Decimate = opts.decimate
	}
	if flags.Changed("fov") {
		config.Camera.FOV = opts.fov
	}
	if flags.Changed("transparent") {
		config.World.Transparent = opts.transparent
	}
}

// run executes the command and maps the outcome to a process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, studio.ErrNoMeshes) {
			fmt.Fprintln(stderr, "Error: no meshes found in the GLTF.")
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
