package common

import (
	"cmp"
	"math"
)

// / Returns the square of the value.
// / @param[in]		a	The value.
// / @return The square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

// / Returns the absolute value.
// / @param[in]		a	The value.
// / @return The absolute value of the specified value.
func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// / Clamps the value to the specified range.
// / @param[in]		value			The value to clamp.
// / @param[in]		minInclusive	The minimum permitted return value.
// / @param[in]		maxInclusive	The maximum permitted return value.
// / @return The value, clamped to the specified range.
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

func Sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// / Signed distance of @p p from the line through @p a with direction @p dir.
// / Positive when @p p lies to the right of the line (clockwise from @p dir).
// / If |dir| = 1 the value is the distance from p to the line {a, a+dir}.
func Det(a, dir, p Vec2) float32 {
	return (p[0]-a[0])*dir[1] - dir[0]*(p[1]-a[1])
}

// / Returns true if @p p lies to the right of the line through @p a with
// / direction @p dir, or on it.
func RightOrColinear(a, dir, p Vec2) bool {
	return dir[0]*(p[1]-a[1])-(p[0]-a[0])*dir[1] <= 0
}

// / Derives the 2D perp product of two vectors. (u.x*v.y - u.y*v.x)
func Cross2D(u, v Vec2) float32 {
	return u[0]*v[1] - u[1]*v[0]
}

// Normalize2D returns v scaled to unit length. The second result is false
// when v is too short to have a direction, in which case the zero vector
// is returned.
func Normalize2D(v Vec2) (Vec2, bool) {
	l := v.Len()
	if l < 1e-6 || !IsFinite(l) {
		return Vec2{}, false
	}
	return Vec2{v[0] / l, v[1] / l}, true
}

// / Rotates @p v by the angle with the given cosine and sine.
func Rotate2D(v Vec2, c, s float32) Vec2 {
	return Vec2{v[0]*c - v[1]*s, v[0]*s + v[1]*c}
}

// ClampMagnitude2D shortens v to maxLength if it is longer.
func ClampMagnitude2D(v Vec2, maxLength float32) Vec2 {
	sq := v.Dot(v)
	if sq <= maxLength*maxLength {
		return v
	}
	if maxLength <= 0 {
		return Vec2{}
	}
	return v.Mul(maxLength / Sqrt32(sq))
}

// / Finds the closest point on the segment [a, b] to @p p.
func ClosestPointOnSegment2D(a, b, p Vec2) Vec2 {
	ab := b.Sub(a)
	d := ab.Dot(ab)
	if d < 1e-12 {
		return a
	}
	t := Clamp(p.Sub(a).Dot(ab)/d, 0, 1)
	return a.Add(ab.Mul(t))
}

// / Derives the squared distance between point @p p and segment [a, b] on the xz-plane.
func SqrDistancePointSegment2D(a, b, p Vec2) float32 {
	d := ClosestPointOnSegment2D(a, b, p).Sub(p)
	return d.Dot(d)
}

// / Derives the square of the distance between the specified points on the xz-plane.
// / The vectors are projected onto the xz-plane, so the y-values are ignored.
func Vdist2DSqr(v1, v2 Vec3) float32 {
	dx := v2[0] - v1[0]
	dz := v2[2] - v1[2]
	return dx*dx + dz*dz
}

// / Performs a linear interpolation between two vectors. (@p v1 toward @p v2)
func Vlerp(v1, v2 Vec3, t float32) Vec3 {
	return Vec3{
		v1[0] + (v2[0]-v1[0])*t,
		v1[1] + (v2[1]-v1[1])*t,
		v1[2] + (v2[2]-v1[2])*t,
	}
}

func IsFinite(v float32) bool {
	return !math.IsInf(float64(v), 0) && !math.IsNaN(float64(v))
}

// / Checks that the specified vector's components are all finite.
func Visfinite2D(v Vec2) bool {
	return IsFinite(v[0]) && IsFinite(v[1])
}
