package studio

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/loaders"
)

type boxObject struct {
	local core.AABB
	world mgl64.Mat4
}

func (b boxObject) LocalBounds() core.AABB  { return b.local }
func (b boxObject) WorldMatrix() mgl64.Mat4 { return b.world }

var unitCube = core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))

func TestComputeBounds(t *testing.T) {
	tests := []struct {
		name    string
		objects []boxObject
		wantMin core.Vec3
		wantMax core.Vec3
	}{
		{
			name:    "identity cube",
			objects: []boxObject{{unitCube, mgl64.Ident4()}},
			wantMin: core.NewVec3(-1, -1, -1),
			wantMax: core.NewVec3(1, 1, 1),
		},
		{
			name:    "translated",
			objects: []boxObject{{unitCube, mgl64.Translate3D(2, 3, -4)}},
			wantMin: core.NewVec3(1, 2, -5),
			wantMax: core.NewVec3(3, 4, -3),
		},
		{
			name:    "scaled",
			objects: []boxObject{{unitCube, mgl64.Scale3D(2, 0.5, 1)}},
			wantMin: core.NewVec3(-2, -0.5, -1),
			wantMax: core.NewVec3(2, 0.5, 1),
		},
		{
			name: "two objects",
			objects: []boxObject{
				{unitCube, mgl64.Ident4()},
				{unitCube, mgl64.Translate3D(5, 0, 0)},
			},
			wantMin: core.NewVec3(-1, -1, -1),
			wantMax: core.NewVec3(6, 1, 1),
		},
		{
			name:    "rotated 45 degrees about Y",
			objects: []boxObject{{unitCube, mgl64.HomogRotate3DY(math.Pi / 4)}},
			wantMin: core.NewVec3(-math.Sqrt2, -1, -math.Sqrt2),
			wantMax: core.NewVec3(math.Sqrt2, 1, math.Sqrt2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds, err := ComputeBounds(tt.objects)
			if err != nil {
				t.Fatalf("ComputeBounds failed: %v", err)
			}
			if !vecNear(bounds.Min, tt.wantMin, 1e-9) || !vecNear(bounds.Max, tt.wantMax, 1e-9) {
				t.Errorf("Expected %v..%v, got %v..%v", tt.wantMin, tt.wantMax, bounds.Min, bounds.Max)
			}
			if bounds.Min.X > bounds.Max.X || bounds.Min.Y > bounds.Max.Y || bounds.Min.Z > bounds.Max.Z {
				t.Errorf("Expected min <= max on every axis, got %v..%v", bounds.Min, bounds.Max)
			}

			// Every transformed corner lies inside the result
			box := core.NewAABB(bounds.Min, bounds.Max)
			for _, object := range tt.objects {
				for _, corner := range object.LocalBounds().Corners() {
					p := loaders.TransformPoint(object.WorldMatrix(), corner)
					if !box.Contains(p, 1e-9) {
						t.Errorf("Corner %v outside bounds %v", p, box)
					}
				}
			}
		})
	}
}

func TestComputeBoundsEmpty(t *testing.T) {
	_, err := ComputeBounds([]boxObject{})
	if !errors.Is(err, ErrNoMeshes) {
		t.Errorf("Expected ErrNoMeshes, got %v", err)
	}
}

func TestBoundsCenterAndSize(t *testing.T) {
	tests := []struct {
		name       string
		bounds     Bounds
		wantCenter core.Vec3
		wantSize   float64
	}{
		{"unit cube", Bounds{core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)}, core.NewVec3(0, 0, 0), 2 * math.Sqrt(3)},
		{"offset box", Bounds{core.NewVec3(1, 2, 3), core.NewVec3(4, 6, 3)}, core.NewVec3(2.5, 4, 3), 5},
		{"point", Bounds{core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1)}, core.NewVec3(1, 1, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bounds.Center(); !vecNear(got, tt.wantCenter, 1e-12) {
				t.Errorf("Expected center %v, got %v", tt.wantCenter, got)
			}
			if got := tt.bounds.Size(); math.Abs(got-tt.wantSize) > 1e-12 {
				t.Errorf("Expected size %f, got %f", tt.wantSize, got)
			}
		})
	}
}

func TestComputeBoundsFromMeshObjects(t *testing.T) {
	objects := []*loaders.MeshObject{
		{Local: unitCube, Transform: mgl64.Translate3D(0, 1, 0)},
	}
	bounds, err := ComputeBounds(objects)
	if err != nil {
		t.Fatalf("ComputeBounds failed: %v", err)
	}
	if !vecNear(bounds.Min, core.NewVec3(-1, 0, -1), 1e-12) || !vecNear(bounds.Max, core.NewVec3(1, 2, 1), 1e-12) {
		t.Errorf("Unexpected bounds %v..%v", bounds.Min, bounds.Max)
	}
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance && math.Abs(a.Z-b.Z) < tolerance
}
