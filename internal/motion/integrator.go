// Package motion resolves per-frame movement of entities on a walk mesh.
package motion

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/walkmesh/pkg/math"
	"github.com/Faultbox/walkmesh/pkg/walkmesh"
)

// Params tunes the integrator.
type Params struct {
	// MaxIterations caps walk/cross steps per Advance so numerical cycles
	// cannot loop forever.
	MaxIterations int
	// Bounce scales the push back from a wall. Values above 1 leave the
	// entity moving slightly away from the wall.
	Bounce float32
	// Nudge bends a step running along a wall slightly away from it.
	Nudge float32
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		MaxIterations: 10,
		Bounce:        1.25,
		Nudge:         0.01,
	}
}

// Stats describes how one Advance call was resolved.
type Stats struct {
	Iterations int
	Crossings  int
	WallHits   int
	// Remaining is the displacement left over when the budget ran out.
	Remaining mgl32.Vec3
	// Exhausted is set when the iteration cap stopped the loop early.
	Exhausted bool
}

// Integrator moves walk points across a shared, read-only mesh.
type Integrator struct {
	mesh   *walkmesh.Mesh
	params Params
	log    *zap.Logger
}

// NewIntegrator creates an integrator over mesh. A nil logger discards diagnostics.
func NewIntegrator(mesh *walkmesh.Mesh, params Params, log *zap.Logger) *Integrator {
	if log == nil {
		log = zap.NewNop()
	}
	if params.MaxIterations < 1 {
		params.MaxIterations = 1
	}
	return &Integrator{
		mesh:   mesh,
		params: params,
		log:    log,
	}
}

// Mesh returns the surface the integrator walks on.
func (in *Integrator) Mesh() *walkmesh.Mesh {
	return in.mesh
}

// Params returns the integrator's tuning.
func (in *Integrator) Params() Params {
	return in.params
}

// Advance moves at along step, sliding over edges into neighbouring
// triangles and deflecting off boundary edges.
//
// The loop is bounded by Params.MaxIterations. Running out of budget is not
// an error: the entity just covers less ground this frame, Stats.Exhausted
// is set and a warning is logged.
func (in *Integrator) Advance(at walkmesh.WalkPoint, step mgl32.Vec3) (walkmesh.WalkPoint, Stats) {
	var stats Stats
	remain := step

	for range in.params.MaxIterations {
		if remain == (mgl32.Vec3{}) {
			break
		}
		stats.Iterations++

		end, time := in.mesh.WalkInTriangle(at, remain)
		at = end
		if time == 1 {
			remain = mgl32.Vec3{}
			break
		}

		remain = remain.Mul(1 - time)

		// On a vertex the point touches two edges; take the one remain leaves by.
		slot, _ := in.mesh.ExitSlot(at, remain)
		if next, rotation, ok := in.mesh.CrossEdgeAt(at, slot); ok {
			at = next
			remain = rotation.Rotate(remain)
			stats.Crossings++
		} else {
			remain = in.WallResponse(at, slot, remain)
			stats.WallHits++
		}
	}

	if remain != (mgl32.Vec3{}) {
		stats.Remaining = remain
		stats.Exhausted = true
		in.log.Warn("walk used full iteration budget",
			zap.Int("triangle", at.Triangle),
			zap.Int("iterations", stats.Iterations),
			zap.Float32("remaining", remain.Len()),
		)
	}

	return at, stats
}

// WallResponse deflects remain off the boundary edge opposite weight slot
// of at.
//
// A component pointing out through the wall is reflected and scaled by
// Params.Bounce; otherwise the step is bent away from the wall by
// Params.Nudge so it does not stick to the edge.
func (in *Integrator) WallResponse(at walkmesh.WalkPoint, slot int, remain mgl32.Vec3) mgl32.Vec3 {
	inward, ok := in.inward(at, slot)
	if !ok {
		return remain
	}

	d := remain.Dot(inward)
	if d < 0 {
		return remain.Add(inward.Mul(-in.params.Bounce * d))
	}
	return remain.Add(inward.Mul(in.params.Nudge * d))
}

// inward returns the in-plane unit vector perpendicular to the edge
// opposite slot, pointing into at's triangle.
func (in *Integrator) inward(at walkmesh.WalkPoint, slot int) (mgl32.Vec3, bool) {
	if slot < 0 || slot > 2 {
		return mgl32.Vec3{}, false
	}
	tri := in.mesh.TriangleVertices(at.Triangle)
	a := in.mesh.Vertex(tri[(slot+1)%3])
	b := in.mesh.Vertex(tri[(slot+2)%3])
	c := in.mesh.Vertex(tri[slot])

	along := math.SafeNormalize(b.Sub(a))
	normal := math.TriangleNormal(a, b, c)
	if along.Len() == 0 || normal.Len() == 0 {
		return mgl32.Vec3{}, false
	}
	return normal.Cross(along), true
}
