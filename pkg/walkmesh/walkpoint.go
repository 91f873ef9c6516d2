package walkmesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// WeightEpsilon is the tolerance under which a barycentric weight counts as zero.
const WeightEpsilon = 1e-5

// WalkPoint locates an entity on the surface: a triangle and barycentric
// weights in that triangle's vertex order. Weights sum to 1.
//
// A point lies on an edge when one weight is zero and on a vertex when two are.
type WalkPoint struct {
	Triangle int
	Weights  mgl32.Vec3
}

// EdgeSlot returns the slot of the smallest weight. The edge opposite that
// slot runs from vertex (slot+1)%3 to vertex (slot+2)%3 in winding order.
// ok is false when no weight is within WeightEpsilon of zero.
func (p WalkPoint) EdgeSlot() (slot int, ok bool) {
	slot = 0
	for i := 1; i < 3; i++ {
		if p.Weights[i] < p.Weights[slot] {
			slot = i
		}
	}
	return slot, p.Weights[slot] <= WeightEpsilon
}

// OnEdge reports whether the point lies on an edge of its triangle.
func (p WalkPoint) OnEdge() bool {
	_, ok := p.EdgeSlot()
	return ok
}

// Valid reports whether the weights sum to 1 and each lies in [0, 1],
// both within tol.
func (p WalkPoint) Valid(tol float32) bool {
	sum := p.Weights[0] + p.Weights[1] + p.Weights[2]
	if mgl32.Abs(sum-1) > tol {
		return false
	}
	for _, w := range p.Weights {
		if w < -tol || w > 1+tol {
			return false
		}
	}
	return true
}

// normalizeWeights clamps negative weights to zero and rescales so the
// weights sum to exactly 1. All-zero input falls back to the centroid.
func normalizeWeights(w mgl32.Vec3) mgl32.Vec3 {
	for i := range 3 {
		if w[i] < 0 {
			w[i] = 0
		}
	}
	sum := w[0] + w[1] + w[2]
	if sum <= 0 {
		return mgl32.Vec3{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	w = w.Mul(1 / sum)
	// Push rounding into the largest weight so the sum is exact.
	largest := 0
	for i := 1; i < 3; i++ {
		if w[i] > w[largest] {
			largest = i
		}
	}
	w[largest] = 1 - w[(largest+1)%3] - w[(largest+2)%3]
	return w
}
