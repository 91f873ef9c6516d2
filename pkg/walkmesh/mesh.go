// Package walkmesh keeps entities on the surface of a triangulated mesh.
//
// A Mesh is built once from vertex positions and triangles and is read-only
// afterwards, so one Mesh can be shared by any number of walking entities.
// Each entity owns a WalkPoint locating it on the surface.
package walkmesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/walkmesh/pkg/math"
)

// Mesh errors.
var (
	ErrNoTriangles         = errors.New("walk mesh has no triangles")
	ErrIndexOutOfRange     = errors.New("triangle vertex index out of range")
	ErrDegenerateTriangle  = errors.New("degenerate triangle")
	ErrNonManifoldEdge     = errors.New("edge shared by more than two triangles")
	ErrInconsistentWinding = errors.New("adjacent triangles have inconsistent winding")
	ErrNormalCount         = errors.New("normal count does not match vertex count")
)

// Triangle is an ordered triple of vertex indices (a, b, c).
// Counter-clockwise winding defines the up side.
type Triangle [3]uint32

// edgeKey is an undirected edge with the smaller vertex index first.
type edgeKey struct {
	lo, hi uint32
}

func makeEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// noTriangle marks an unused adjacency slot.
const noTriangle = -1

// Mesh is an immutable walkable surface.
type Mesh struct {
	vertices  []mgl32.Vec3
	normals   []mgl32.Vec3
	triangles []Triangle

	// Triangles on each undirected edge; the second slot is noTriangle for boundary edges.
	edges map[edgeKey][2]int

	boundaryEdges int
}

// NewMesh validates the topology and builds the adjacency index.
//
// normals holds one smoothed normal per vertex. When normals is nil they are
// computed as the area-weighted average of the adjacent face normals.
// The input slices are copied.
func NewMesh(vertices []mgl32.Vec3, normals []mgl32.Vec3, triangles []Triangle) (*Mesh, error) {
	if normals != nil && len(normals) != len(vertices) {
		return nil, fmt.Errorf("%w: %d normals for %d vertices", ErrNormalCount, len(normals), len(vertices))
	}

	m := &Mesh{
		vertices:  append([]mgl32.Vec3(nil), vertices...),
		triangles: append([]Triangle(nil), triangles...),
		edges:     make(map[edgeKey][2]int, len(triangles)*3/2),
	}

	// Directed edges are only needed to detect flipped neighbours.
	directed := make(map[[2]uint32]int, len(triangles)*3)

	for ti, tri := range m.triangles {
		for _, idx := range tri {
			if int(idx) >= len(m.vertices) {
				return nil, fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrIndexOutOfRange, ti, idx, len(m.vertices))
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			return nil, fmt.Errorf("%w: triangle %d %v repeats a vertex", ErrDegenerateTriangle, ti, tri)
		}
		// A walker entering a zero-area triangle could never resolve a step out of it.
		if math.Degenerate(m.vertices[tri[0]], m.vertices[tri[1]], m.vertices[tri[2]]) {
			return nil, fmt.Errorf("%w: triangle %d %v has no area", ErrDegenerateTriangle, ti, tri)
		}

		for i := range 3 {
			a, b := tri[i], tri[(i+1)%3]

			key := makeEdgeKey(a, b)
			slots, ok := m.edges[key]
			switch {
			case !ok:
				m.edges[key] = [2]int{ti, noTriangle}
			case slots[1] == noTriangle:
				m.edges[key] = [2]int{slots[0], ti}
			default:
				return nil, fmt.Errorf("%w: edge %d-%d used by triangles %d, %d and %d", ErrNonManifoldEdge, key.lo, key.hi, slots[0], slots[1], ti)
			}

			if prev, ok := directed[[2]uint32{a, b}]; ok {
				return nil, fmt.Errorf("%w: triangles %d and %d both traverse edge %d->%d", ErrInconsistentWinding, prev, ti, a, b)
			}
			directed[[2]uint32{a, b}] = ti
		}
	}

	for _, slots := range m.edges {
		if slots[1] == noTriangle {
			m.boundaryEdges++
		}
	}

	if normals != nil {
		m.normals = make([]mgl32.Vec3, len(normals))
		for i, n := range normals {
			m.normals[i] = math.SafeNormalize(n)
		}
	} else {
		m.normals = computeSmoothNormals(m.vertices, m.triangles)
	}

	return m, nil
}

// computeSmoothNormals averages face normals weighted by face area.
// Vertices not used by any triangle keep a zero normal.
func computeSmoothNormals(vertices []mgl32.Vec3, triangles []Triangle) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(vertices))
	for _, tri := range triangles {
		a, b, c := vertices[tri[0]], vertices[tri[1]], vertices[tri[2]]
		// Unnormalized cross product has length twice the area.
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range tri {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i := range normals {
		normals[i] = math.SafeNormalize(normals[i])
	}
	return normals
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// BoundaryEdges returns the number of edges used by exactly one triangle.
func (m *Mesh) BoundaryEdges() int {
	return m.boundaryEdges
}

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i uint32) mgl32.Vec3 {
	return m.vertices[i]
}

// TriangleVertices returns the vertex indices of triangle t.
func (m *Mesh) TriangleVertices(t int) Triangle {
	return m.triangles[t]
}

// SmoothedNormal returns the smoothed normal of vertex i.
func (m *Mesh) SmoothedNormal(i uint32) mgl32.Vec3 {
	return m.normals[i]
}

// TriangleNormal returns the face normal of triangle t.
func (m *Mesh) TriangleNormal(t int) mgl32.Vec3 {
	tri := m.triangles[t]
	return math.TriangleNormal(m.vertices[tri[0]], m.vertices[tri[1]], m.vertices[tri[2]])
}

// corners returns the positions of triangle t.
func (m *Mesh) corners(t int) (a, b, c mgl32.Vec3) {
	tri := m.triangles[t]
	return m.vertices[tri[0]], m.vertices[tri[1]], m.vertices[tri[2]]
}

// Neighbor returns the triangle other than t that shares edge (a, b).
// ok is false when the edge is a boundary edge or is not an edge of the mesh.
func (m *Mesh) Neighbor(t int, a, b uint32) (int, bool) {
	slots, found := m.edges[makeEdgeKey(a, b)]
	if !found {
		return noTriangle, false
	}
	switch t {
	case slots[0]:
		return slots[1], slots[1] != noTriangle
	case slots[1]:
		return slots[0], true
	}
	return noTriangle, false
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	min, max = m.vertices[0], m.vertices[0]
	for _, v := range m.vertices[1:] {
		for i := range 3 {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max
}
