package loaders

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-studio-render/pkg/core"
)

// cubePositions and cubeIndices describe the [-1,1]^3 cube
var cubePositions = [][3]float32{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

var cubeIndices = []uint16{
	0, 2, 1, 0, 3, 2, // back
	4, 5, 6, 4, 6, 7, // front
	0, 1, 5, 0, 5, 4, // bottom
	3, 7, 6, 3, 6, 2, // top
	0, 4, 7, 0, 7, 3, // left
	1, 2, 6, 1, 6, 5, // right
}

// cubePrimitive is an indexed triangle list over the cube accessors
const cubePrimitive = `{"attributes": {"POSITION": 0}, "indices": 1}`

// writeGLTF writes a .gltf file holding one cube mesh (mesh 0) plus the given scene JSON,
// which supplies the "nodes" array and optionally "scenes", "scene" and "cameras"
func writeGLTF(t *testing.T, sceneJSON string) string {
	t.Helper()
	return writeGLTFPrimitive(t, cubePrimitive, sceneJSON)
}

// writeGLTFPrimitive is writeGLTF with the primitive of mesh 0 replaced. Accessor 0 holds
// the eight cube positions and accessor 1 the triangle list indices.
func writeGLTFPrimitive(t *testing.T, primitiveJSON, sceneJSON string) string {
	t.Helper()

	var buf bytes.Buffer
	for _, p := range cubePositions {
		if err := binary.Write(&buf, binary.LittleEndian, p); err != nil {
			t.Fatalf("Failed to encode positions: %v", err)
		}
	}
	positionBytes := buf.Len()
	if err := binary.Write(&buf, binary.LittleEndian, cubeIndices); err != nil {
		t.Fatalf("Failed to encode indices: %v", err)
	}

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": %d, "target": 34962},
    {"buffer": 0, "byteOffset": %d, "byteLength": %d, "target": 34963}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": %d, "type": "VEC3", "min": [-1, -1, -1], "max": [1, 1, 1]},
    {"bufferView": 1, "componentType": 5123, "count": %d, "type": "SCALAR"}
  ],
  "meshes": [{"name": "Cube", "primitives": [%s]}],
  %s
}`,
		buf.Len(), base64.StdEncoding.EncodeToString(buf.Bytes()),
		positionBytes, positionBytes, len(cubeIndices)*2,
		len(cubePositions), len(cubeIndices),
		primitiveJSON, sceneJSON)

	path := filepath.Join(t.TempDir(), "model.gltf")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("Failed to write glTF fixture: %v", err)
	}
	return path
}

// worldBounds returns the bounds of an object's world-space vertices
func worldBounds(object *MeshObject) core.AABB {
	return core.NewAABBFromPoints(object.Vertices...)
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance && math.Abs(a.Z-b.Z) < tolerance
}

func TestLoadGLTFTransforms(t *testing.T) {
	tests := []struct {
		name      string
		sceneJSON string
		wantMin   core.Vec3
		wantMax   core.Vec3
	}{
		{
			name:      "identity",
			sceneJSON: `"scenes": [{"nodes": [0]}], "scene": 0, "nodes": [{"name": "Body", "mesh": 0}]`,
			wantMin:   core.NewVec3(-1, -1, -1),
			wantMax:   core.NewVec3(1, 1, 1),
		},
		{
			name:      "translation",
			sceneJSON: `"scenes": [{"nodes": [0]}], "nodes": [{"mesh": 0, "translation": [2, 0, 0]}]`,
			wantMin:   core.NewVec3(1, -1, -1),
			wantMax:   core.NewVec3(3, 1, 1),
		},
		{
			name:      "scale then rotate",
			sceneJSON: `"nodes": [{"mesh": 0, "scale": [2, 1, 1], "rotation": [0, 0.7071067811865476, 0, 0.7071067811865476]}]`,
			wantMin:   core.NewVec3(-1, -1, -2),
			wantMax:   core.NewVec3(1, 1, 2),
		},
		{
			name:      "column-major matrix",
			sceneJSON: `"nodes": [{"mesh": 0, "matrix": [1,0,0,0, 0,1,0,0, 0,0,1,0, 0,5,0,1]}]`,
			wantMin:   core.NewVec3(-1, 4, -1),
			wantMax:   core.NewVec3(1, 6, 1),
		},
		{
			name:      "parent scale applies to child translation",
			sceneJSON: `"scenes": [{"nodes": [0]}], "nodes": [{"scale": [2, 2, 2], "children": [1]}, {"mesh": 0, "translation": [1, 0, 0]}]`,
			wantMin:   core.NewVec3(0, -2, -2),
			wantMax:   core.NewVec3(4, 2, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := LoadGLTF(writeGLTF(t, tt.sceneJSON))
			if err != nil {
				t.Fatalf("LoadGLTF failed: %v", err)
			}
			if len(model.Meshes) != 1 {
				t.Fatalf("Expected 1 mesh object, got %d", len(model.Meshes))
			}

			object := model.Meshes[0]
			if object.TriangleCount() != 12 {
				t.Errorf("Expected 12 triangles, got %d", object.TriangleCount())
			}

			local := object.LocalBounds()
			if !vecNear(local.Min, core.NewVec3(-1, -1, -1), 1e-6) || !vecNear(local.Max, core.NewVec3(1, 1, 1), 1e-6) {
				t.Errorf("Expected local bounds of the unit cube, got %v", local)
			}

			world := worldBounds(object)
			if !vecNear(world.Min, tt.wantMin, 1e-5) || !vecNear(world.Max, tt.wantMax, 1e-5) {
				t.Errorf("Expected world bounds %v..%v, got %v..%v", tt.wantMin, tt.wantMax, world.Min, world.Max)
			}

			// The stored transform must map local corners onto the world vertices
			for _, corner := range local.Corners() {
				p := TransformPoint(object.WorldMatrix(), corner)
				if !world.Contains(p, 1e-5) {
					t.Errorf("Transformed corner %v outside world bounds %v", p, world)
				}
			}
		})
	}
}

func TestLoadGLTFMeshName(t *testing.T) {
	model, err := LoadGLTF(writeGLTF(t, `"nodes": [{"name": "Body", "mesh": 0}]`))
	if err != nil {
		t.Fatalf("LoadGLTF failed: %v", err)
	}
	if model.Meshes[0].Name != "Cube" {
		t.Errorf("Expected mesh name Cube, got %q", model.Meshes[0].Name)
	}
	if model.Meshes[0].Normals != nil {
		t.Error("Expected no normals for a mesh without a NORMAL attribute")
	}
}

func TestLoadGLTFMultipleInstances(t *testing.T) {
	model, err := LoadGLTF(writeGLTF(t, `"nodes": [{"mesh": 0}, {"mesh": 0, "translation": [5, 0, 0]}]`))
	if err != nil {
		t.Fatalf("LoadGLTF failed: %v", err)
	}
	if len(model.Meshes) != 2 {
		t.Fatalf("Expected 2 mesh objects, got %d", len(model.Meshes))
	}
	if model.TriangleCount() != 24 {
		t.Errorf("Expected 24 triangles, got %d", model.TriangleCount())
	}
}

func TestLoadGLTFCamera(t *testing.T) {
	sceneJSON := `"cameras": [{"type": "perspective", "perspective": {"yfov": 0.8, "znear": 0.1}}],
  "nodes": [{"mesh": 0}, {"name": "Shot", "camera": 0, "translation": [0, 0, 10]}]`

	model, err := LoadGLTF(writeGLTF(t, sceneJSON))
	if err != nil {
		t.Fatalf("LoadGLTF failed: %v", err)
	}
	if len(model.Cameras) != 1 {
		t.Fatalf("Expected 1 camera, got %d", len(model.Cameras))
	}

	camera := model.Cameras[0]
	if camera.Name != "Shot" {
		t.Errorf("Expected camera name from node, got %q", camera.Name)
	}
	if math.Abs(camera.YFov-0.8) > 1e-9 {
		t.Errorf("Expected yfov 0.8, got %f", camera.YFov)
	}
}

func TestLoadGLTFIgnoresUnusableCameras(t *testing.T) {
	sceneJSON := `"cameras": [
    {"type": "orthographic", "orthographic": {"xmag": 1, "ymag": 1, "znear": 0.1, "zfar": 10}},
    {"type": "perspective", "perspective": {"yfov": 3.5, "znear": 0.1}}
  ],
  "nodes": [{"mesh": 0}, {"camera": 0}, {"camera": 1}]`

	model, err := LoadGLTF(writeGLTF(t, sceneJSON))
	if err != nil {
		t.Fatalf("LoadGLTF failed: %v", err)
	}
	if len(model.Cameras) != 0 {
		t.Errorf("Expected orthographic and out-of-range cameras to be skipped, got %v", model.Cameras)
	}
}

func TestLoadGLTFPrimitiveModes(t *testing.T) {
	tests := []struct {
		name          string
		primitiveJSON string
		wantTriangles int
	}{
		{"indexed triangle list", cubePrimitive, 12},
		{"non-indexed triangle list", `{"attributes": {"POSITION": 0}}`, 2},
		{"triangle strip", `{"attributes": {"POSITION": 0}, "mode": 5}`, 6},
		{"triangle fan", `{"attributes": {"POSITION": 0}, "mode": 6}`, 6},
		{"lines", `{"attributes": {"POSITION": 0}, "mode": 1}`, 0},
		{"points", `{"attributes": {"POSITION": 0}, "mode": 0}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := LoadGLTF(writeGLTFPrimitive(t, tt.primitiveJSON, `"nodes": [{"mesh": 0}]`))
			if err != nil {
				t.Fatalf("LoadGLTF failed: %v", err)
			}
			if tt.wantTriangles == 0 {
				if len(model.Meshes) != 0 {
					t.Errorf("Expected no mesh objects, got %d", len(model.Meshes))
				}
				return
			}
			if len(model.Meshes) != 1 {
				t.Fatalf("Expected 1 mesh object, got %d", len(model.Meshes))
			}
			if got := model.TriangleCount(); got != tt.wantTriangles {
				t.Errorf("Expected %d triangles, got %d", tt.wantTriangles, got)
			}
		})
	}
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name    string
		mode    gltf.PrimitiveMode
		indices []uint32
		want    [][3]uint32
	}{
		{"list drops trailing indices", gltf.PrimitiveTriangles, []uint32{0, 1, 2, 3, 4}, [][3]uint32{{0, 1, 2}}},
		{"strip alternates winding", gltf.PrimitiveTriangleStrip, []uint32{0, 1, 2, 3, 4}, [][3]uint32{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}},
		{"fan pivots on first vertex", gltf.PrimitiveTriangleFan, []uint32{0, 1, 2, 3}, [][3]uint32{{0, 1, 2}, {0, 2, 3}}},
		{"too few indices", gltf.PrimitiveTriangleStrip, []uint32{0, 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triangulate(tt.mode, tt.indices)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d triangles, got %v", len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Triangle %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestLoadGLTFAccessorOutOfRange(t *testing.T) {
	tests := []struct {
		name          string
		primitiveJSON string
	}{
		{"position", `{"attributes": {"POSITION": 7}, "indices": 1}`},
		{"normal", `{"attributes": {"POSITION": 0, "NORMAL": 9}, "indices": 1}`},
		{"indices", `{"attributes": {"POSITION": 0}, "indices": 4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGLTF(writeGLTFPrimitive(t, tt.primitiveJSON, `"nodes": [{"mesh": 0}]`))
			if err == nil {
				t.Fatal("Expected an error for an accessor index past the end of the file")
			}
			if !strings.Contains(err.Error(), "out of range") {
				t.Errorf("Expected an out of range error, got %v", err)
			}
		})
	}
}

func TestLoadGLTFNoMeshes(t *testing.T) {
	model, err := LoadGLTF(writeGLTF(t, `"nodes": [{"name": "Empty"}]`))
	if err != nil {
		t.Fatalf("LoadGLTF failed: %v", err)
	}
	if len(model.Meshes) != 0 {
		t.Errorf("Expected no mesh objects, got %d", len(model.Meshes))
	}
}

func TestLoadGLTFMissingFile(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Error("Expected error for a missing file")
	}
}
