package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/df07/go-studio-render/pkg/loaders"
)

// fastFlags keep end-to-end renders quick
var fastFlags = []string{"--samples", "2", "--passes", "1", "--max-depth", "2", "--tile-size", "8", "--quiet"}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunRendersImage(t *testing.T) {
	tests := []struct {
		name          string
		file          string
		width, height string
		extra         []string
	}{
		{"png", "shot.png", "20", "12", nil},
		{"jpeg portrait", "shot.jpg", "10", "16", nil},
		{"supersampled tiff", "shot.tiff", "8", "8", []string{"--scale", "2"}},
		{"transparent", "shot.png", "12", "12", []string{"--transparent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), tt.file)
			args := append(append([]string{}, fastFlags...), tt.extra...)
			args = append(args, "testdata/cube.gltf", output, tt.width, tt.height)

			code, stdout, stderr := runCLI(t, args...)
			if code != 0 {
				t.Fatalf("Expected exit 0, got %d: %s", code, stderr)
			}
			if !strings.Contains(stdout, "Rendered → "+output) {
				t.Errorf("Expected success line, got %q", stdout)
			}

			img, _, err := loaders.LoadImage(output)
			if err != nil {
				t.Fatalf("Failed to read output: %v", err)
			}
			if got := img.Bounds().Dx(); got != mustAtoi(t, tt.width) {
				t.Errorf("Expected width %s, got %d", tt.width, got)
			}
			if got := img.Bounds().Dy(); got != mustAtoi(t, tt.height) {
				t.Errorf("Expected height %s, got %d", tt.height, got)
			}
		})
	}
}

func TestRunAfterDashSeparator(t *testing.T) {
	output := filepath.Join(t.TempDir(), "shot.png")
	args := append(append([]string{}, fastFlags...), "--", "testdata/cube.gltf", output, "8", "8")

	if code, _, stderr := runCLI(t, args...); code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("Expected output file: %v", err)
	}
}

func TestRunNoMeshes(t *testing.T) {
	output := filepath.Join(t.TempDir(), "shot.png")
	args := append(append([]string{}, fastFlags...), "testdata/empty.gltf", output, "8", "8")

	code, stdout, stderr := runCLI(t, args...)
	if code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if strings.TrimSpace(stderr) != "Error: no meshes found in the GLTF." {
		t.Errorf("Unexpected error output %q", stderr)
	}
	if stdout != "" {
		t.Errorf("Expected no success line, got %q", stdout)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("Expected no image to be written")
	}
}

func TestRunArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"too few arguments", []string{"in.glb", "out.png", "10"}, "accepts 4 arg(s)"},
		{"non-integer width", []string{"in.glb", "out.png", "wide", "10"}, `invalid width "wide"`},
		{"zero height", []string{"in.glb", "out.png", "10", "0"}, `invalid height "0"`},
		{"missing model", []string{"missing.glb", "out.png", "10", "10"}, "failed to import"},
		{"bad scale", []string{"--scale", "0", "testdata/cube.gltf", "out.png", "10", "10"}, "scale must be at least 1"},
		{"bad decimate", []string{"--decimate", "1.5", "testdata/cube.gltf", "out.png", "10", "10"}, "decimate must be in"},
		{"unknown flag", []string{"--bogus", "in.glb", "out.png", "10", "10"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, append([]string{"--quiet"}, tt.args...)...)
			if code != 1 {
				t.Errorf("Expected exit 1, got %d", code)
			}
			if !strings.HasPrefix(stderr, "Error: ") || !strings.Contains(stderr, tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestRunWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	preset := filepath.Join(dir, "preset.yaml")
	content := "render:\n  samples: 1\n  passes: 1\n  max_depth: 2\n  tile_size: 4\nworld:\n  color: [0.9, 0.9, 1.0]\n"
	if err := os.WriteFile(preset, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}

	output := filepath.Join(dir, "shot.bmp")
	code, _, stderr := runCLI(t, "--quiet", "--config", preset, "testdata/cube.gltf", output, "6", "4")
	if code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr)
	}
	if _, format, err := loaders.LoadImage(output); err != nil || format != loaders.FormatBMP {
		t.Errorf("Expected BMP output, got format %q, err %v", format, err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	output := filepath.Join(t.TempDir(), "shot.png")
	args := append(append([]string{}, fastFlags...), "testdata/cube.gltf", output, "8", "8")
	if code := run(ctx, args, &stdout, &stderr); code != 1 {
		t.Errorf("Expected exit 1 when cancelled, got %d", code)
	}
	if !strings.Contains(stderr.String(), "context canceled") {
		t.Errorf("Expected cancellation error, got %q", stderr.String())
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("Atoi(%q): %v", s, err)
	}
	return n
}
