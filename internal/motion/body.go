package motion

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/walkmesh/pkg/math"
	"github.com/Faultbox/walkmesh/pkg/walkmesh"
)

// DefaultSpeed is the walking speed in world units per second.
const DefaultSpeed = 3.0

// localUp is the body's up axis in its own frame. Local +X is right and
// local +Y is forward.
var localUp = mgl32.Vec3{0, 0, 1}

// Body is an entity walking on a mesh. Its feet are at Position and its
// orientation keeps local up aligned with the smoothed surface normal.
type Body struct {
	ID       uuid.UUID
	At       walkmesh.WalkPoint
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Speed    float32

	integrator *Integrator
}

// NewBody places a body on the mesh point nearest to position.
func NewBody(mesh *walkmesh.Mesh, params Params, speed float32, log *zap.Logger, position mgl32.Vec3) (*Body, error) {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()

	b := &Body{
		ID:         id,
		Rotation:   mgl32.QuatIdent(),
		Speed:      speed,
		integrator: NewIntegrator(mesh, params, log.With(zap.Stringer("walker", id))),
	}
	if err := b.Respawn(position); err != nil {
		return nil, err
	}
	return b, nil
}

// Respawn moves the body to the mesh point nearest to position.
func (b *Body) Respawn(position mgl32.Vec3) error {
	at, err := b.integrator.Mesh().NearestWalkPoint(position)
	if err != nil {
		return fmt.Errorf("placing walker %s: %w", b.ID, err)
	}
	b.At = at
	b.Position = b.integrator.Mesh().WorldPoint(at)
	b.alignUp()
	return nil
}

// Update walks the body for elapsed seconds.
// intent is the desired direction in the body's local XY plane; any
// non-zero intent moves at Speed regardless of its length.
func (b *Body) Update(elapsed float32, intent mgl32.Vec2) Stats {
	var move mgl32.Vec2
	if intent != (mgl32.Vec2{}) {
		move = intent.Normalize().Mul(b.Speed * elapsed)
	}

	step := b.Rotation.Rotate(mgl32.Vec3{move.X(), move.Y(), 0})
	at, stats := b.integrator.Advance(b.At, step)

	b.At = at
	b.Position = b.integrator.Mesh().WorldPoint(at)
	b.alignUp()
	return stats
}

// Look turns the body by yaw radians about the surface up vector.
func (b *Body) Look(yaw float32) {
	up := b.Up()
	b.Rotation = mgl32.QuatRotate(yaw, up).Mul(b.Rotation).Normalize()
}

// Up returns the smoothed surface normal under the body.
func (b *Body) Up() mgl32.Vec3 {
	return b.integrator.Mesh().SmoothNormal(b.At)
}

// Forward returns the body's facing direction in world space.
func (b *Body) Forward() mgl32.Vec3 {
	return b.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

// alignUp applies the minimal rotation taking the current local up onto
// the smoothed normal at the walk point.
func (b *Body) alignUp() {
	current := b.Rotation.Rotate(localUp)
	adjust := math.RotationBetween(current, b.Up())
	b.Rotation = adjust.Mul(b.Rotation).Normalize()
}
