package geometry

import (
	"github.com/df07/go-studio-render/pkg/core"
	"github.com/df07/go-studio-render/pkg/material"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Multiple shapes for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection
type BVH struct {
	Root   *BVHNode
	Center core.Vec3 // Finite scene center, used by infinite lights
	Radius float64   // World radius, used by infinite lights
}

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{Root: nil, Center: core.Vec3{}, Radius: 0}
	}

	// Copy so the caller's slice order is never touched
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)

	root := buildBVH(shapesCopy)
	center := root.BoundingBox.Center()

	return &BVH{
		Root:   root,
		Center: center,
		Radius: root.BoundingBox.Max.Subtract(center).Length(),
	}
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 8

// buildBVH recursively builds the BVH using median splits along the longest axis
func buildBVH(shapes []Shape) *BVHNode {
	boundingBox := shapes[0].BoundingBox()
	for i := 1; i < len(shapes); i++ {
		boundingBox = boundingBox.Union(shapes[i].BoundingBox())
	}

	if len(shapes) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	axis, splitPos := findSplit(boundingBox)
	if axis == -1 {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	leftShapes, rightShapes := partitionShapes(shapes, axis, splitPos)

	// Ensure we don't create empty partitions
	if len(leftShapes) == 0 || len(rightShapes) == 0 {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(leftShapes),
		Right:       buildBVH(rightShapes),
	}
}

// findSplit picks the longest axis and its spatial midpoint
func findSplit(boundingBox core.AABB) (axis int, splitPos float64) {
	axis = boundingBox.LongestAxis()
	minVal := boundingBox.Min.Axis(axis)
	maxVal := boundingBox.Max.Axis(axis)

	if maxVal <= minVal {
		return -1, 0
	}
	return axis, (minVal + maxVal) * 0.5
}

// partitionShapes partitions shapes by bounding box centroid
func partitionShapes(shapes []Shape, axis int, splitPos float64) ([]Shape, []Shape) {
	var leftShapes, rightShapes []Shape
	for _, shape := range shapes {
		if shape.BoundingBox().Center().Axis(axis) < splitPos {
			leftShapes = append(leftShapes, shape)
		} else {
			rightShapes = append(rightShapes, shape)
		}
	}
	return leftShapes, rightShapes
}

// Hit tests if a ray intersects any shape in the BVH and returns the closest hit
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	if bvh.Root == nil {
		return nil, false
	}
	return bvh.hitNode(bvh.Root, ray, tMin, tMax)
}

// hitNode recursively tests ray intersection with BVH nodes
func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return nil, false
	}

	var closest *material.SurfaceInteraction
	closestSoFar := tMax

	if node.Shapes != nil {
		for _, shape := range node.Shapes {
			if hit, ok := shape.Hit(ray, tMin, closestSoFar); ok {
				closest = hit
				closestSoFar = hit.T
			}
		}
		return closest, closest != nil
	}

	if node.Left != nil {
		if hit, ok := bvh.hitNode(node.Left, ray, tMin, closestSoFar); ok {
			closest = hit
			closestSoFar = hit.T
		}
	}
	if node.Right != nil {
		if hit, ok := bvh.hitNode(node.Right, ray, tMin, closestSoFar); ok {
			closest = hit
		}
	}

	return closest, closest != nil
}

// Occluded reports whether anything blocks the ray within (tMin, tMax).
// It stops at the first hit, which is all shadow rays need.
func (bvh *BVH) Occluded(ray core.Ray, tMin, tMax float64) bool {
	if bvh.Root == nil {
		return false
	}
	return bvh.occludedNode(bvh.Root, ray, tMin, tMax)
}

func (bvh *BVH) occludedNode(node *BVHNode, ray core.Ray, tMin, tMax float64) bool {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}
	if node.Shapes != nil {
		for _, shape := range node.Shapes {
			if _, ok := shape.Hit(ray, tMin, tMax); ok {
				return true
			}
		}
		return false
	}
	return (node.Left != nil && bvh.occludedNode(node.Left, ray, tMin, tMax)) ||
		(node.Right != nil && bvh.occludedNode(node.Right, ray, tMin, tMax))
}

// BoundingBox implements the Shape interface - returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// getStats returns statistics about the BVH structure
func (bvh *BVH) getStats() bvhStats {
	if bvh.Root == nil {
		return bvhStats{}
	}

	stats := bvhStats{}
	bvh.collectStats(bvh.Root, 0, &stats)

	if stats.leafNodes > 0 {
		stats.avgDepth = stats.avgDepth / float64(stats.leafNodes)
	}

	return stats
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes  int
	leafNodes   int
	maxDepth    int
	avgDepth    float64
	totalShapes int
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *bvhStats) {
	stats.totalNodes++

	if depth > stats.maxDepth {
		stats.maxDepth = depth
	}

	if node.Shapes != nil {
		stats.leafNodes++
		stats.totalShapes += len(node.Shapes)
		stats.avgDepth += float64(depth)
		return
	}
	if node.Left != nil {
		bvh.collectStats(node.Left, depth+1, stats)
	}
	if node.Right != nil {
		bvh.collectStats(node.Right, depth+1, stats)
	}
}
