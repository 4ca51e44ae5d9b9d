package common

import "github.com/go-gl/mathgl/mgl32"

type Vec3 = mgl32.Vec3
type Vec2 = mgl32.Vec2

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// / Projects a world position onto the xz-plane used by the solver.
func To2D(v Vec3) Vec2 {
	return Vec2{v[0], v[2]}
}

// / Lifts a planar vector back into world space at height @p y.
func To3D(v Vec2, y float32) Vec3 {
	return Vec3{v[0], y, v[1]}
}

// GrowSlice returns s with length n, reusing the backing array when it is
// large enough and otherwise at least doubling the capacity.
func GrowSlice[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	ns := make([]T, n, max(cap(s)*2, n))
	copy(ns, s)
	return ns
}
