package loaders

import (
	"fmt"

	"github.com/fogleman/simplify"

	"github.com/df07/go-studio-render/pkg/core"
)

// Decimate reduces each mesh object to roughly factor of its triangles using quadric error
// simplification. Vertex normals are dropped, so the result shades flat.
func Decimate(model *Model, factor float64) error {
	if factor <= 0 || factor >= 1 {
		return fmt.Errorf("decimation factor must be in (0, 1), got %g", factor)
	}
	for _, object := range model.Meshes {
		DecimateObject(object, factor)
	}
	return nil
}

// DecimateObject simplifies a single mesh object in place
func DecimateObject(object *MeshObject, factor float64) {
	triangles := make([]*simplify.Triangle, 0, object.TriangleCount())
	for i := 0; i+2 < len(object.Indices); i += 3 {
		triangles = append(triangles, simplify.NewTriangle(
			toSimplifyVector(object.Vertices[object.Indices[i]]),
			toSimplifyVector(object.Vertices[object.Indices[i+1]]),
			toSimplifyVector(object.Vertices[object.Indices[i+2]]),
		))
	}
	if len(triangles) == 0 {
		return
	}

	simplified := simplify.NewMesh(triangles).Simplify(factor)

	// Rebuild an indexed mesh, welding vertices shared between triangles
	lookup := make(map[simplify.Vector]int)
	var vertices []core.Vec3
	indices := make([]int, 0, len(simplified.Triangles)*3)
	for _, triangle := range simplified.Triangles {
		for _, v := range [3]simplify.Vector{triangle.V1, triangle.V2, triangle.V3} {
			index, ok := lookup[v]
			if !ok {
				index = len(vertices)
				lookup[v] = index
				vertices = append(vertices, core.NewVec3(v.X, v.Y, v.Z))
			}
			indices = append(indices, index)
		}
	}

	object.Vertices = vertices
	object.Indices = indices
	object.Normals = nil
}

func toSimplifyVector(v core.Vec3) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}
