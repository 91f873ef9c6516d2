package walkmesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/walkmesh/pkg/math"
)

// CrossEdge moves a walk point that lies on an edge into the neighbouring
// triangle across that edge.
//
// It returns the same physical point expressed in the neighbour's weights,
// and the rotation about the shared edge that takes the current triangle's
// plane onto the neighbour's. Applying rotation to a remaining in-plane step
// re-projects it into the neighbour's plane.
//
// ok is false when at is not on an edge or the edge is a boundary (a wall).
// A point on a vertex lies on two edges; CrossEdge takes at.EdgeSlot, use
// CrossEdgeAt with ExitSlot to cross the edge a step is leaving through.
func (m *Mesh) CrossEdge(at WalkPoint) (end WalkPoint, rotation mgl32.Quat, ok bool) {
	slot, onEdge := at.EdgeSlot()
	if !onEdge {
		return at, mgl32.QuatIdent(), false
	}
	return m.CrossEdgeAt(at, slot)
}

// CrossEdgeAt is CrossEdge across the edge opposite weight slot, which must
// be zero within WeightEpsilon.
func (m *Mesh) CrossEdgeAt(at WalkPoint, slot int) (end WalkPoint, rotation mgl32.Quat, ok bool) {
	if slot < 0 || slot > 2 || at.Weights[slot] > WeightEpsilon {
		return at, mgl32.QuatIdent(), false
	}

	tri := m.triangles[at.Triangle]
	ea, eb := tri[(slot+1)%3], tri[(slot+2)%3]

	next, found := m.Neighbor(at.Triangle, ea, eb)
	if !found {
		return at, mgl32.QuatIdent(), false
	}

	// Carry each edge vertex's weight over to its slot in the neighbour.
	wa, wb := at.Weights[(slot+1)%3], at.Weights[(slot+2)%3]
	var weights mgl32.Vec3
	for i, idx := range m.triangles[next] {
		switch idx {
		case ea:
			weights[i] = wa
		case eb:
			weights[i] = wb
		}
	}

	end = WalkPoint{Triangle: next, Weights: normalizeWeights(weights)}
	rotation = math.RotationAbout(
		m.vertices[eb].Sub(m.vertices[ea]),
		m.TriangleNormal(at.Triangle),
		m.TriangleNormal(next),
	)
	return end, rotation, true
}
