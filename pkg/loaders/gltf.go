package loaders

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/df07/go-studio-render/pkg/core"
)

// MeshObject is one mesh node of a model, with its geometry already in world space
type MeshObject struct {
	Name      string
	Vertices  []core.Vec3 // World-space vertex positions
	Indices   []int       // Triangle indices (3 per triangle)
	Normals   []core.Vec3 // World-space vertex normals - empty if not present
	Local     core.AABB   // Bounds of the untransformed vertices
	Transform mgl64.Mat4  // Local to world transform
}

// LocalBounds returns the object's bounds in its own coordinate frame
func (m *MeshObject) LocalBounds() core.AABB {
	return m.Local
}

// WorldMatrix returns the object's local to world transform
func (m *MeshObject) WorldMatrix() mgl64.Mat4 {
	return m.Transform
}

// TriangleCount returns the number of triangles in the object
func (m *MeshObject) TriangleCount() int {
	return len(m.Indices) / 3
}

// CameraDef is a perspective camera found in a model. Only its lens is kept: the
// studio reframes the shot, so placement and clip planes are derived later.
type CameraDef struct {
	Name string
	YFov float64 // Vertical field of view in radians
}

// Model contains everything imported from a glTF file
type Model struct {
	Meshes  []*MeshObject
	Cameras []CameraDef
}

// TriangleCount returns the total number of triangles over all mesh objects
func (m *Model) TriangleCount() int {
	total := 0
	for _, mesh := range m.Meshes {
		total += mesh.TriangleCount()
	}
	return total
}

// LoadGLTF loads a .gltf or .glb file and flattens its default scene into world-space mesh objects
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open glTF file: %w", err)
	}
	return loadDocument(doc)
}

func loadDocument(doc *gltf.Document) (*Model, error) {
	model := &Model{}
	for _, root := range rootNodes(doc) {
		if err := walkNode(doc, root, mgl64.Ident4(), model, 0); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// rootNodes returns the root nodes of the default scene, or every parentless node if the
// file declares no scenes
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		index := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			index = int(*doc.Scene)
		}
		roots := make([]int, len(doc.Scenes[index].Nodes))
		for i, node := range doc.Scenes[index].Nodes {
			roots[i] = int(node)
		}
		return roots
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			if int(child) < len(isChild) {
				isChild[child] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// maxNodeDepth guards against cyclic node references in malformed files
const maxNodeDepth = 256

func walkNode(doc *gltf.Document, index int, parent mgl64.Mat4, model *Model, depth int) error {
	if index < 0 || index >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node hierarchy deeper than %d levels", maxNodeDepth)
	}

	node := doc.Nodes[index]
	world := parent.Mul4(localMatrix(node))

	if node.Mesh != nil {
		object, err := readMesh(doc, int(*node.Mesh), world)
		if err != nil {
			return fmt.Errorf("node %q: %w", node.Name, err)
		}
		if object != nil {
			if object.Name == "" {
				object.Name = node.Name
			}
			model.Meshes = append(model.Meshes, object)
		}
	}

	if node.Camera != nil && int(*node.Camera) < len(doc.Cameras) {
		if camera, ok := readCamera(doc.Cameras[*node.Camera]); ok {
			if camera.Name == "" {
				camera.Name = node.Name
			}
			model.Cameras = append(model.Cameras, camera)
		}
	}

	for _, child := range node.Children {
		if err := walkNode(doc, int(child), world, model, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// localMatrix returns the node's matrix, or T * R * S when it is given as TRS properties
func localMatrix(node *gltf.Node) mgl64.Mat4 {
	matrix := node.MatrixOrDefault()
	if matrix != gltf.DefaultMatrix {
		return mgl64.Mat4(matrix)
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	rotation := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
	return mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// readMesh merges every triangle, strip and fan primitive of a glTF mesh into one
// world-space object. Meshes without any surface primitive yield nil.
func readMesh(doc *gltf.Document, meshIndex int, world mgl64.Mat4) (*MeshObject, error) {
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	mesh := doc.Meshes[meshIndex]

	normalMatrix := world.Mat3().Inv().Transpose()
	object := &MeshObject{Name: mesh.Name, Transform: world}
	var localPoints []core.Vec3
	allNormals := true

	for _, primitive := range mesh.Primitives {
		// Points and lines have no surface to shade
		switch primitive.Mode {
		case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
		default:
			continue
		}

		posIdx, ok := primitive.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		posAccessor, err := accessor(doc, posIdx)
		if err != nil {
			return nil, err
		}
		positions, err := modeler.ReadPosition(doc, posAccessor, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := primitive.Attributes[gltf.NORMAL]; ok {
			normAccessor, err := accessor(doc, normIdx)
			if err != nil {
				return nil, err
			}
			normals, err = modeler.ReadNormal(doc, normAccessor, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to read normals: %w", err)
			}
		}
		if len(normals) != len(positions) {
			allNormals = false
		}

		var indices []uint32
		if primitive.Indices != nil {
			indexAccessor, err := accessor(doc, *primitive.Indices)
			if err != nil {
				return nil, err
			}
			// ReadIndices converts uint8/uint16/uint32 to []uint32
			indices, err = modeler.ReadIndices(doc, indexAccessor, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to read indices: %w", err)
			}
		} else {
			// Non-indexed geometry walks the vertices in order
			indices = make([]uint32, len(positions))
			for k := range indices {
				indices[k] = uint32(k)
			}
		}

		base := len(object.Vertices)
		for i, p := range positions {
			local := core.NewVec3(float64(p[0]), float64(p[1]), float64(p[2]))
			localPoints = append(localPoints, local)
			object.Vertices = append(object.Vertices, transformPoint(world, local))
			if i < len(normals) {
				n := normals[i]
				object.Normals = append(object.Normals, transformNormal(normalMatrix, core.NewVec3(float64(n[0]), float64(n[1]), float64(n[2]))))
			}
		}

		for _, tri := range triangulate(primitive.Mode, indices) {
			for _, index := range tri {
				if int(index) >= len(positions) {
					return nil, fmt.Errorf("triangle index out of range in mesh %q", mesh.Name)
				}
				object.Indices = append(object.Indices, base+int(index))
			}
		}
	}

	if len(object.Indices) == 0 {
		return nil, nil
	}
	if !allNormals {
		object.Normals = nil
	}
	object.Local = core.NewAABBFromPoints(localPoints...)
	return object, nil
}

// accessor returns the accessor at index, rejecting references past the end of the file
func accessor(doc *gltf.Document, index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return doc.Accessors[index], nil
}

// triangulate expands a triangle list, strip or fan into independent triangles.
// Strips alternate winding so every triangle keeps the orientation of the first.
func triangulate(mode gltf.PrimitiveMode, indices []uint32) [][3]uint32 {
	var triangles [][3]uint32
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				triangles = append(triangles, [3]uint32{indices[i], indices[i+1], indices[i+2]})
			} else {
				triangles = append(triangles, [3]uint32{indices[i+1], indices[i], indices[i+2]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			triangles = append(triangles, [3]uint32{indices[0], indices[i], indices[i+1]})
		}
	default:
		for i := 0; i+2 < len(indices); i += 3 {
			triangles = append(triangles, [3]uint32{indices[i], indices[i+1], indices[i+2]})
		}
	}
	return triangles
}

// readCamera keeps the lens of a perspective camera; orthographic cameras are ignored
func readCamera(camera *gltf.Camera) (CameraDef, bool) {
	if camera.Perspective == nil {
		return CameraDef{}, false
	}
	yfov := camera.Perspective.Yfov
	if yfov <= 0 || yfov >= math.Pi {
		return CameraDef{}, false
	}
	return CameraDef{Name: camera.Name, YFov: yfov}, true
}

// TransformPoint applies an affine transform to a point
func TransformPoint(m mgl64.Mat4, p core.Vec3) core.Vec3 {
	return transformPoint(m, p)
}

func transformPoint(m mgl64.Mat4, p core.Vec3) core.Vec3 {
	v := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if v[3] != 0 && v[3] != 1 {
		return core.NewVec3(v[0]/v[3], v[1]/v[3], v[2]/v[3])
	}
	return core.NewVec3(v[0], v[1], v[2])
}

func transformNormal(normalMatrix mgl64.Mat3, n core.Vec3) core.Vec3 {
	v := normalMatrix.Mul3x1(mgl64.Vec3{n.X, n.Y, n.Z})
	result := core.NewVec3(v[0], v[1], v[2])
	if result.IsZero() {
		return n
	}
	return result.Normalize()
}
