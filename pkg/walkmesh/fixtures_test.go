package walkmesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// singleTriangle is the unit right triangle in the z=0 plane.
func singleTriangle(t *testing.T) *Mesh {
	t.Helper()
	m, err := NewMesh(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		nil,
		[]Triangle{{0, 1, 2}},
	)
	require.NoError(t, err)
	return m
}

// unitSquare is the unit square split along the 0-2 diagonal.
func unitSquare(t *testing.T) *Mesh {
	t.Helper()
	m, err := NewMesh(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		nil,
		[]Triangle{{0, 1, 2}, {0, 2, 3}},
	)
	require.NoError(t, err)
	return m
}

// hinge is a floor triangle below the x axis and a wall rising from it,
// meeting at a right angle along edge 0-1.
func hinge(t *testing.T) *Mesh {
	t.Helper()
	m, err := NewMesh(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0.5, -1, 0}, {0.5, 0, 1}},
		nil,
		[]Triangle{{0, 2, 1}, {0, 1, 3}},
	)
	require.NoError(t, err)
	return m
}

// grid builds an n by n grid of unit cells in the z=0 plane.
func grid(t *testing.T, n int) *Mesh {
	t.Helper()
	var vertices []mgl32.Vec3
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			vertices = append(vertices, mgl32.Vec3{float32(x), float32(y), 0})
		}
	}
	idx := func(x, y int) uint32 { return uint32(y*(n+1) + x) }
	var triangles []Triangle
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			triangles = append(triangles,
				Triangle{idx(x, y), idx(x+1, y), idx(x+1, y+1)},
				Triangle{idx(x, y), idx(x+1, y+1), idx(x, y+1)},
			)
		}
	}
	m, err := NewMesh(vertices, nil, triangles)
	require.NoError(t, err)
	return m
}

func requireValid(t *testing.T, p WalkPoint) {
	t.Helper()
	require.Truef(t, p.Valid(1e-5), "walk point %+v has invalid weights", p)
}
