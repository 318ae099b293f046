package lights

import (
	"strings"
	"testing"

	"github.com/df07/go-studio-render/pkg/core"
)

func TestWeightedLightSamplerSelection(t *testing.T) {
	quad := newTestQuadLight(1)
	world := NewUniformInfiniteLight(core.NewVec3(1, 1, 1))
	sampler, err := NewWeightedLightSampler([]Light{quad, world}, []float64{3, 1})
	if err != nil {
		t.Fatalf("NewWeightedLightSampler() error = %v", err)
	}

	tests := []struct {
		u         float64
		wantIndex int
	}{
		{0.0, 0},
		{0.5, 0},
		{0.75, 0},
		{0.76, 1},
		{0.999999, 1},
		{1.5, 1}, // Beyond the cumulative sum falls back to the last light
	}

	for _, tt := range tests {
		light, prob, index := sampler.SampleLight(core.Vec3{}, core.Vec3{}, tt.u)
		if index != tt.wantIndex {
			t.Errorf("u=%f: index = %d, want %d", tt.u, index, tt.wantIndex)
		}
		if light == nil || prob != sampler.GetLightProbability(index, core.Vec3{}, core.Vec3{}) {
			t.Errorf("u=%f: unexpected light %v with probability %f", tt.u, light, prob)
		}
	}

	if sampler.GetLightCount() != 2 {
		t.Errorf("GetLightCount() = %d, want 2", sampler.GetLightCount())
	}
	if s := sampler.String(); !strings.Contains(s, "area") || !strings.Contains(s, "75.0%") {
		t.Errorf("Unexpected String() output %q", s)
	}
	if sampler.GetLightProbability(5, core.Vec3{}, core.Vec3{}) != 0 {
		t.Error("Expected zero probability for an out of range index")
	}
}

func TestWeightedLightSamplerEmpty(t *testing.T) {
	sampler := NewUniformLightSampler(nil)
	light, prob, index := sampler.SampleLight(core.Vec3{}, core.Vec3{}, 0.5)
	if light != nil || prob != 0 || index != -1 {
		t.Errorf("Expected no light from an empty sampler, got %v %f %d", light, prob, index)
	}
}
