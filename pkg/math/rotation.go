package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// RotationBetween returns the minimal rotation taking direction from onto
// direction to. Zero-length inputs produce the identity.
func RotationBetween(from, to mgl32.Vec3) mgl32.Quat {
	if from.Len() == 0 || to.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatBetweenVectors(from, to).Normalize()
}

// RotationAbout returns the rotation about axis that takes the plane normal
// from onto the plane normal to. Both normals are expected to be
// perpendicular to axis, as for two faces sharing an edge; the signed angle
// keeps a half-turn fold well defined.
func RotationAbout(axis, from, to mgl32.Vec3) mgl32.Quat {
	axis = SafeNormalize(axis)
	if axis.Len() == 0 {
		return RotationBetween(from, to)
	}
	sin := from.Cross(to).Dot(axis)
	cos := from.Dot(to)
	if sin == 0 && cos == 0 {
		return mgl32.QuatIdent()
	}
	angle := float32(gomath.Atan2(float64(sin), float64(cos)))
	return mgl32.QuatRotate(angle, axis)
}

// IsIdentity reports whether q is the identity rotation within tol.
func IsIdentity(q mgl32.Quat, tol float32) bool {
	// q and -q encode the same rotation.
	if mgl32.Abs(q.V.X()) > tol || mgl32.Abs(q.V.Y()) > tol || mgl32.Abs(q.V.Z()) > tol {
		return false
	}
	return mgl32.Abs(mgl32.Abs(q.W)-1) <= tol
}
