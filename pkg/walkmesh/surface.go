package walkmesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/walkmesh/pkg/math"
)

// WorldPoint converts a walk point to a world position.
func (m *Mesh) WorldPoint(at WalkPoint) mgl32.Vec3 {
	a, b, c := m.corners(at.Triangle)
	return math.Blend(at.Weights, a, b, c)
}

// SmoothNormal returns the interpolated smoothed up vector at a walk point.
// Where the vertex normals cancel out, the face normal is used instead.
func (m *Mesh) SmoothNormal(at WalkPoint) mgl32.Vec3 {
	tri := m.triangles[at.Triangle]
	n := math.Blend(at.Weights, m.normals[tri[0]], m.normals[tri[1]], m.normals[tri[2]])
	if n.Len() < 1e-6 {
		return m.TriangleNormal(at.Triangle)
	}
	return math.SafeNormalize(n)
}
