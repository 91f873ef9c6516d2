package walkmesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/walkmesh/pkg/math"
)

// NearestWalkPoint returns the walk point closest to position.
//
// Every triangle is tested, so the cost is linear in the triangle count.
// It is meant for spawning and respawning, not for per-frame use.
// On equal distances the lowest triangle index wins.
func (m *Mesh) NearestWalkPoint(position mgl32.Vec3) (WalkPoint, error) {
	if m == nil || len(m.triangles) == 0 {
		return WalkPoint{}, ErrNoTriangles
	}

	best := WalkPoint{Triangle: noTriangle}
	bestDist := float32(0)

	for t := range m.triangles {
		a, b, c := m.corners(t)
		closest, weights := math.ClosestPointOnTriangle(position, a, b, c)
		d := closest.Sub(position)
		dist := d.Dot(d)
		if best.Triangle == noTriangle || dist < bestDist {
			best = WalkPoint{Triangle: t, Weights: weights}
			bestDist = dist
		}
	}

	best.Weights = normalizeWeights(best.Weights)
	return best, nil
}
