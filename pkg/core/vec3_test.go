package core

import (
	"math"
	"testing"
)

func TestVec3_MinMax(t *testing.T) {
	a := NewVec3(1, -2, 3)
	b := NewVec3(-1, 5, 3)

	if got := a.Min(b); got != NewVec3(-1, -2, 3) {
		t.Errorf("Min: expected (-1,-2,3), got %v", got)
	}
	if got := a.Max(b); got != NewVec3(1, 5, 3) {
		t.Errorf("Max: expected (1,5,3), got %v", got)
	}
}

func TestVec3_Reflect(t *testing.T) {
	incoming := NewVec3(1, -1, 0)
	normal := NewVec3(0, 1, 0)

	reflected := incoming.Reflect(normal)
	expected := NewVec3(1, 1, 0)

	if reflected.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, reflected)
	}
}

func TestVec3_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Vec3
		expected Vec3
	}{
		{"Unit X", NewVec3(5, 0, 0), NewVec3(1, 0, 0)},
		{"Diagonal", NewVec3(3, 4, 0), NewVec3(0.6, 0.8, 0)},
		{"Zero vector stays zero", NewVec3(0, 0, 0), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.input.Normalize()
			if result.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_GammaCorrectClampsNegative(t *testing.T) {
	v := NewVec3(-0.5, 0.25, 1).GammaCorrect(2.0)

	if v.X != 0 {
		t.Errorf("Expected negative channel to clamp to 0, got %f", v.X)
	}
	if math.Abs(v.Y-0.5) > 1e-12 {
		t.Errorf("Expected sqrt(0.25)=0.5, got %f", v.Y)
	}
}

func TestAABB_HitAndCorners(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	if !box.Hit(NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), 0.001, math.Inf(1)) {
		t.Error("Expected ray through center to hit box")
	}
	if box.Hit(NewRay(NewVec3(3, 0, -5), NewVec3(0, 0, 1)), 0.001, math.Inf(1)) {
		t.Error("Expected parallel ray outside slab to miss box")
	}

	for _, c := range box.Corners() {
		if !box.Contains(c, 0) {
			t.Errorf("Corner %v not contained in its own box", c)
		}
	}
	corners := box.Corners()
	if got := NewAABBFromPoints(corners[:]...); got != box {
		t.Errorf("Expected corners to rebuild the box, got %v", got)
	}
}
