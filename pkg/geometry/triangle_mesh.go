package geometry

import (
	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/material"
)

// TriangleMesh represents a collection of triangles with efficient ray intersection
// It uses an internal BVH (Bounding Volume Hierarchy) for fast intersection tests
type TriangleMesh struct {
	triangles []Shape   // Individual triangles as shapes
	bvh       *BVH      // BVH for fast intersection
	bbox      core.AABB // Overall bounding box
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	VertexNormals []core.Vec3 // Optional smooth normals (one per vertex)
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices
// vertices: array of 3D points
// faces: array of triangle indices (each group of 3 indices forms a triangle)
// material: material for all triangles
// options: optional parameters (can be nil for a flat-shaded mesh)
func NewTriangleMesh(vertices []core.Vec3, faces []int, material material.Material, options *TriangleMeshOptions) *TriangleMesh {
	if len(faces)%3 != 0 {
		panic("Face indices must be a multiple of 3")
	}

	var normals []core.Vec3
	if options != nil && options.VertexNormals != nil {
		if len(options.VertexNormals) != len(vertices) {
			panic("Number of vertex normals must match number of vertices")
		}
		normals = options.VertexNormals
	}

	numTriangles := len(faces) / 3
	triangles := make([]Shape, 0, numTriangles)

	for i := 0; i < numTriangles; i++ {
		i0 := faces[i*3]
		i1 := faces[i*3+1]
		i2 := faces[i*3+2]

		if i0 >= len(vertices) || i1 >= len(vertices) || i2 >= len(vertices) ||
			i0 < 0 || i1 < 0 || i2 < 0 {
			panic("Face index out of bounds")
		}

		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		// Degenerate triangles can never be hit; skip them
		if v1.Subtract(v0).Cross(v2.Subtract(v0)).LengthSquared() == 0 {
			continue
		}

		if normals != nil {
			triangles = append(triangles, NewSmoothTriangle(v0, v1, v2, normals[i0], normals[i1], normals[i2], material))
		} else {
			triangles = append(triangles, NewTriangle(v0, v1, v2, material))
		}
	}

	var bbox core.AABB
	if len(triangles) > 0 {
		bbox = triangles[0].BoundingBox()
		for i := 1; i < len(triangles); i++ {
			bbox = bbox.Union(triangles[i].BoundingBox())
		}
	}

	return &TriangleMesh{
		triangles: triangles,
		bvh:       NewBVH(triangles),
		bbox:      bbox,
	}
}

// Hit tests if a ray intersects with any triangle in the mesh
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	return tm.bvh.Hit(ray, tMin, tMax)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bbox
}

// GetTriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) GetTriangleCount() int {
	return len(tm.triangles)
}

// GetTriangles returns the individual triangles
func (tm *TriangleMesh) GetTriangles() []Shape {
	return tm.triangles
}
