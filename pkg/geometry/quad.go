package geometry

import (
	"math"

	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/material"
)

// Quad represents a rectangular surface defined by a corner and two edge vectors
type Quad struct {
	Corner   core.Vec3         // One corner of the quad
	U        core.Vec3         // First edge vector
	V        core.Vec3         // Second edge vector
	Normal   core.Vec3         // Normal vector (computed from U × V)
	Material material.Material // Material of the quad
	D        float64           // Plane equation constant: ax + by + cz = d
	W        core.Vec3         // Cached cross product for barycentric coordinates
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, material material.Material) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		Material: material,
		D:        normal.Dot(corner),
		W:        cross.Multiply(1.0 / cross.Dot(cross)),
	}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	denominator := ray.Direction.Dot(q.Normal)

	// Ray parallel to the quad
	if math.Abs(denominator) < 1e-12 {
		return nil, false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)

	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, false
	}

	hit := &material.SurfaceInteraction{
		T:        t,
		Point:    hitPoint,
		Material: q.Material,
		UV:       core.NewVec2(alpha, beta),
	}
	hit.SetFaceNormal(ray, q.Normal)

	return hit, true
}

// BoundingBox returns the bounding box of the quad, padded on flat axes
func (q *Quad) BoundingBox() core.AABB {
	c := q.Corner
	box := core.NewAABBFromPoints(c, c.Add(q.U), c.Add(q.V), c.Add(q.U).Add(q.V))

	const pad = 1e-4
	size := box.Size()
	padding := core.NewVec3(0, 0, 0)
	if size.X < pad {
		padding.X = pad
	}
	if size.Y < pad {
		padding.Y = pad
	}
	if size.Z < pad {
		padding.Z = pad
	}
	return core.NewAABB(box.Min.Subtract(padding), box.Max.Add(padding))
}

// Area returns the surface area of the quad
func (q *Quad) Area() float64 {
	return q.U.Cross(q.V).Length()
}

// Center returns the center point of the quad
func (q *Quad) Center() core.Vec3 {
	return q.Corner.Add(q.U.Multiply(0.5)).Add(q.V.Multiply(0.5))
}
