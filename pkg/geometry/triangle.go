package geometry

import (
	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/material"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3         // The three vertices
	Material   material.Material // Material of the triangle
	normal     core.Vec3         // Cached geometric normal
	normals    *[3]core.Vec3     // Optional per-vertex shading normals
	bbox       core.AABB         // Cached bounding box
}

// NewTriangle creates a new flat-shaded triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, material material.Material) *Triangle {
	t := &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: material,
	}

	t.computeNormal()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)

	return t
}

// NewSmoothTriangle creates a triangle whose shading normal is interpolated from vertex normals
func NewSmoothTriangle(v0, v1, v2, n0, n1, n2 core.Vec3, material material.Material) *Triangle {
	t := NewTriangle(v0, v1, v2, material)
	t.normals = &[3]core.Vec3{n0.Normalize(), n1.Normalize(), n2.Normalize()}
	return t
}

// computeNormal calculates and caches the triangle's normal vector
func (t *Triangle) computeNormal() {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	t.normal = edge1.Cross(edge2).Normalize()
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return nil, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tParam := f * edge2.Dot(q)
	if tParam < tMin || tParam > tMax {
		return nil, false
	}

	hit := &material.SurfaceInteraction{
		T:        tParam,
		Point:    ray.At(tParam),
		Material: t.Material,
		UV:       core.NewVec2(u, v),
	}
	hit.SetFaceNormal(ray, t.normal)

	if t.normals != nil {
		shading := t.normals[0].Multiply(1 - u - v).
			Add(t.normals[1].Multiply(u)).
			Add(t.normals[2].Multiply(v)).
			Normalize()
		if !hit.FrontFace {
			shading = shading.Negate()
		}
		// Keep the geometric normal where interpolation would face away from the viewer
		if shading.Dot(ray.Direction) < 0 {
			hit.Normal = shading
		}
	}

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// GetNormal returns the triangle's geometric normal vector
func (t *Triangle) GetNormal() core.Vec3 {
	return t.normal
}
