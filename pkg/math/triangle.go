// Package math provides triangle geometry helpers for game development.
package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TriangleNormal returns the unit normal of triangle (a, b, c) following
// counter-clockwise winding. Degenerate triangles return the zero vector.
func TriangleNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	return SafeNormalize(n)
}

// SafeNormalize returns a unit vector, or the zero vector when v has no length.
func SafeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// Blend returns the barycentric combination w[0]*a + w[1]*b + w[2]*c.
func Blend(w mgl32.Vec3, a, b, c mgl32.Vec3) mgl32.Vec3 {
	return a.Mul(w[0]).Add(b.Mul(w[1])).Add(c.Mul(w[2]))
}

// degenerateRatio bounds the squared sine of the corner angle at a below
// which a triangle counts as having no area.
const degenerateRatio = 1e-10

// Degenerate reports whether triangle (a, b, c) is too thin, relative to its
// edge lengths, to resolve barycentric weights in.
func Degenerate(a, b, c mgl32.Vec3) bool {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	d00 := e1.Dot(e1)
	d01 := e1.Dot(e2)
	d11 := e2.Dot(e2)
	return d00 == 0 || d11 == 0 || d00*d11-d01*d01 <= degenerateRatio*d00*d11
}

// BarycentricDelta returns the change of barycentric weights in triangle
// (a, b, c) caused by displacement d. The part of d normal to the plane is
// ignored and the result sums to zero. ok is false for degenerate triangles.
//
// The weights of a point p are (1, 0, 0) + BarycentricDelta(p-a, a, b, c).
func BarycentricDelta(d, a, b, c mgl32.Vec3) (delta mgl32.Vec3, ok bool) {
	if Degenerate(a, b, c) {
		return mgl32.Vec3{}, false
	}
	e1 := b.Sub(a)
	e2 := c.Sub(a)

	d00 := e1.Dot(e1)
	d01 := e1.Dot(e2)
	d11 := e2.Dot(e2)
	d20 := d.Dot(e1)
	d21 := d.Dot(e2)

	denom := d00*d11 - d01*d01
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return mgl32.Vec3{-v - w, v, w}, true
}

// ClosestPointOnTriangle finds the point of triangle (a, b, c) nearest to p.
// It returns the point together with its barycentric weights, which are
// always inside [0, 1] and sum to 1.
//
// Voronoi region tests follow Ericson, Real-Time Collision Detection 5.1.5.
func ClosestPointOnTriangle(p, a, b, c mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	// Vertex region outside A
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, mgl32.Vec3{1, 0, 0}
	}

	// Vertex region outside B
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, mgl32.Vec3{0, 1, 0}
	}

	// Edge region AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), mgl32.Vec3{1 - v, v, 0}
	}

	// Vertex region outside C
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, mgl32.Vec3{0, 0, 1}
	}

	// Edge region AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), mgl32.Vec3{1 - w, 0, w}
	}

	// Edge region BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), mgl32.Vec3{0, 1 - w, w}
	}

	// Face region
	sum := va + vb + vc
	if sum == 0 {
		// Zero-area triangle that slipped through every region test.
		return a, mgl32.Vec3{1, 0, 0}
	}
	denom := 1 / sum
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), mgl32.Vec3{1 - v - w, v, w}
}

// ApproxEqualVec3 reports whether every component of a and b differs by at most tol.
func ApproxEqualVec3(a, b mgl32.Vec3, tol float32) bool {
	for i := range 3 {
		if mgl32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
