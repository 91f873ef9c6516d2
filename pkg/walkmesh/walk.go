package walkmesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/walkmesh/pkg/math"
)

// WalkInTriangle moves at along step without leaving at's triangle.
//
// step should lie in the triangle's plane; any normal component is ignored.
// It returns the end point and the fraction of step consumed, in [0, 1].
// When the step leaves the triangle, end lies on the exit edge with the
// exiting weight exactly zero and time < 1. When the whole step fits,
// time is exactly 1. ExitSlot names the exit edge.
//
// A zero-area triangle cannot be walked in; at is returned with time 0.
func (m *Mesh) WalkInTriangle(at WalkPoint, step mgl32.Vec3) (end WalkPoint, time float32) {
	vel, ok := m.weightVelocity(at.Triangle, step)
	if !ok {
		return at, 0
	}

	// Earliest time at which a decreasing weight reaches zero. Weights
	// already at zero leave at once; among those the fastest falling wins.
	exit := -1
	time = 1
	for i := range 3 {
		if vel[i] >= 0 {
			continue
		}
		t := float32(0)
		if at.Weights[i] > 0 {
			t = at.Weights[i] / -vel[i]
		}
		if t < time || (t == time && exit >= 0 && vel[i] < vel[exit]) {
			time = t
			exit = i
		}
	}

	end = WalkPoint{Triangle: at.Triangle}
	if exit < 0 {
		end.Weights = normalizeWeights(at.Weights.Add(vel))
		return end, 1
	}

	w := at.Weights.Add(vel.Mul(time))
	w[exit] = 0
	end.Weights = normalizeWeights(w)
	return end, time
}

// ExitSlot returns the slot of the edge that step leaves at's triangle
// through. At a vertex two weights are zero; the edge whose opposite weight
// falls fastest along step is the one being crossed.
//
// When no zero weight is falling, or the triangle is degenerate, it falls
// back to at.EdgeSlot.
func (m *Mesh) ExitSlot(at WalkPoint, step mgl32.Vec3) (slot int, ok bool) {
	vel, valid := m.weightVelocity(at.Triangle, step)
	if !valid {
		return at.EdgeSlot()
	}

	slot = -1
	for i := range 3 {
		if at.Weights[i] > WeightEpsilon || vel[i] >= 0 {
			continue
		}
		if slot < 0 || vel[i] < vel[slot] {
			slot = i
		}
	}
	if slot < 0 {
		return at.EdgeSlot()
	}
	return slot, true
}

// weightVelocity expresses step as a change of barycentric weights in
// triangle t. The result sums to zero.
func (m *Mesh) weightVelocity(t int, step mgl32.Vec3) (mgl32.Vec3, bool) {
	a, b, c := m.corners(t)
	return math.BarycentricDelta(step, a, b, c)
}
