package loaders

import (
	"math"
	"testing"

	"github.com/df07/go-studio-render/pkg/core"
)

// gridObject builds an n x n grid of quads in the XZ plane, two triangles per quad
func gridObject(n int) *MeshObject {
	object := &MeshObject{Name: "grid"}
	for z := 0; z <= n; z++ {
		for x := 0; x <= n; x++ {
			object.Vertices = append(object.Vertices, core.NewVec3(float64(x), 0, float64(z)))
		}
	}
	row := n + 1
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			a := z*row + x
			b, c, d := a+1, a+row, a+row+1
			object.Indices = append(object.Indices, a, c, b, b, c, d)
		}
	}
	object.Normals = make([]core.Vec3, len(object.Vertices))
	return object
}

func TestDecimateObject(t *testing.T) {
	object := gridObject(10)
	original := object.TriangleCount()

	DecimateObject(object, 0.25)

	if object.TriangleCount() >= original {
		t.Errorf("Expected fewer than %d triangles, got %d", original, object.TriangleCount())
	}
	if object.TriangleCount() == 0 {
		t.Fatal("Expected some triangles to remain")
	}
	if object.Normals != nil {
		t.Error("Expected normals to be dropped")
	}

	// A flat grid stays flat
	bounds := core.NewAABBFromPoints(object.Vertices...)
	if math.Abs(bounds.Max.Y) > 1e-9 || math.Abs(bounds.Min.Y) > 1e-9 {
		t.Errorf("Expected plane to stay at y=0, got %v", bounds)
	}
	for _, index := range object.Indices {
		if index < 0 || index >= len(object.Vertices) {
			t.Fatalf("Index %d out of range", index)
		}
	}
}

func TestDecimateFactorValidation(t *testing.T) {
	tests := []float64{0, 1, -0.5, 1.5}
	for _, factor := range tests {
		model := &Model{Meshes: []*MeshObject{gridObject(2)}}
		if err := Decimate(model, factor); err == nil {
			t.Errorf("Expected error for factor %g", factor)
		}
	}
}
