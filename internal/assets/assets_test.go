package assets

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/walkmesh/pkg/formats"
	"github.com/Faultbox/walkmesh/pkg/walkmesh"
)

func squareData(name string, z float32) formats.WalkMeshData {
	return formats.WalkMeshData{
		Name:      name,
		Vertices:  [][3]float32{{0, 0, z}, {1, 0, z}, {1, 1, z}, {0, 1, z}},
		Normals:   [][3]float32{{0, 0, 2}, {0, 0, 2}, {0, 0, 2}, {0, 0, 2}},
		Triangles: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
	}
}

func writeTestFile(t *testing.T, meshes ...formats.WalkMeshData) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.w")
	require.NoError(t, (&formats.WalkMeshes{Meshes: meshes}).WriteFile(path))
	return path
}

func TestLibrary_LoadFile(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	lib := NewLibrary(zap.New(core))

	path := writeTestFile(t, squareData("Floor", 0), squareData("Roof", 3))
	names, err := lib.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Floor", "Roof"}, names)
	assert.Equal(t, []string{"Floor", "Roof"}, lib.Names())

	roof, err := lib.Mesh("Roof")
	require.NoError(t, err)
	assert.Equal(t, 4, roof.VertexCount())
	assert.Equal(t, 2, roof.TriangleCount())
	assert.Equal(t, 4, roof.BoundaryEdges())
	assert.InDelta(t, 3, roof.Vertex(2).Z(), 1e-6)
	// Stored normals are normalized on build.
	assert.InDelta(t, 1, roof.SmoothedNormal(0).Len(), 1e-6)

	entries := logs.FilterMessage("loaded walk mesh").All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Floor", fields["mesh"])
	assert.EqualValues(t, 4, fields["vertices"])
	assert.EqualValues(t, 2, fields["triangles"])
	assert.EqualValues(t, 4, fields["boundary_edges"])
}

func TestLibrary_SharedHandle(t *testing.T) {
	lib := NewLibrary(nil)
	_, err := lib.LoadFile(writeTestFile(t, squareData("Floor", 0)))
	require.NoError(t, err)

	a, err := lib.Mesh("Floor")
	require.NoError(t, err)
	b, err := lib.Mesh("Floor")
	require.NoError(t, err)
	assert.Same(t, a, b)

	hits, misses := lib.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 0, misses)
}

func TestLibrary_MeshNotFound(t *testing.T) {
	lib := NewLibrary(nil)

	_, err := lib.Mesh("Nowhere")
	require.ErrorIs(t, err, ErrMeshNotFound)

	_, misses := lib.Stats()
	assert.Equal(t, 1, misses)
}

func TestLibrary_LaterFileReplaces(t *testing.T) {
	lib := NewLibrary(nil)

	_, err := lib.LoadFile(writeTestFile(t, squareData("Floor", 0)))
	require.NoError(t, err)
	_, err = lib.LoadFile(writeTestFile(t, squareData("Floor", 5)))
	require.NoError(t, err)

	mesh, err := lib.Mesh("Floor")
	require.NoError(t, err)
	assert.InDelta(t, 5, mesh.Vertex(0).Z(), 1e-6)
	assert.Equal(t, []string{"Floor"}, lib.Names())
}

func TestLibrary_InvalidMeshLeavesLibraryUnchanged(t *testing.T) {
	lib := NewLibrary(nil)

	bad := squareData("Bad", 0)
	// Third triangle on edge 0-2 makes the mesh non-manifold.
	bad.Vertices = append(bad.Vertices, [3]float32{2, 0, 0})
	bad.Normals = append(bad.Normals, [3]float32{0, 0, 1})
	bad.Triangles = append(bad.Triangles, [3]uint32{0, 4, 2})

	_, err := lib.LoadFile(writeTestFile(t, squareData("Good", 0), bad))
	require.ErrorIs(t, err, walkmesh.ErrNonManifoldEdge)
	assert.Empty(t, lib.Names())
}

func TestLibrary_LoadErrors(t *testing.T) {
	lib := NewLibrary(nil)

	_, err := lib.LoadFile(filepath.Join(t.TempDir(), "missing.w"))
	assert.Error(t, err)

	_, err = lib.LoadData([]byte("nope"), "inline")
	assert.ErrorIs(t, err, formats.ErrTruncatedWalkMeshData)
}

func TestLibrary_LoadData(t *testing.T) {
	data, err := (&formats.WalkMeshes{Meshes: []formats.WalkMeshData{squareData("Inline", 1)}}).Encode()
	require.NoError(t, err)

	lib := NewLibrary(nil)
	names, err := lib.LoadData(data, "inline")
	require.NoError(t, err)
	assert.Equal(t, []string{"Inline"}, names)
}

func TestLibrary_AddAndClose(t *testing.T) {
	lib := NewLibrary(nil)

	mesh, err := BuildMesh(&formats.WalkMeshData{
		Vertices:  [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Triangles: [][3]uint32{{0, 1, 2}},
	})
	require.NoError(t, err)

	lib.Add("Tri", mesh)
	got, err := lib.Mesh("Tri")
	require.NoError(t, err)
	assert.Same(t, mesh, got)

	lib.Close()
	assert.Empty(t, lib.Names())
	hits, misses := lib.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestBuildMesh_ComputesMissingNormals(t *testing.T) {
	mesh, err := BuildMesh(&formats.WalkMeshData{
		Vertices:  [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Triangles: [][3]uint32{{0, 1, 2}},
	})
	require.NoError(t, err)

	n := mesh.SmoothedNormal(1)
	assert.InDelta(t, 0, n.Sub(mgl32.Vec3{0, 0, 1}).Len(), 1e-6)
}

func TestCache(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.False(t, c.Has("a"))

	c.Set("b", nil)
	c.Set("a", nil)
	assert.True(t, c.Has("a"))
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	_, ok = c.Get("a")
	assert.True(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}
