package common

import (
	"math"
	"testing"
)

func assertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Error(msg)
	}
}

func near(a, b float32) bool { return Abs(a-b) < 1e-5 }

func TestDetSides(t *testing.T) {
	a, dir := Vec2{0, 0}, Vec2{1, 0}
	assertTrue(t, Det(a, dir, Vec2{0, -1}) > 0, "right of the line is positive")
	assertTrue(t, Det(a, dir, Vec2{0, 1}) < 0, "left of the line is negative")
	assertTrue(t, RightOrColinear(a, dir, Vec2{0, -1}), "right side")
	assertTrue(t, RightOrColinear(a, dir, Vec2{3, 0}), "colinear")
	assertTrue(t, !RightOrColinear(a, dir, Vec2{0, 1}), "left side")
}

func TestNormalize2D(t *testing.T) {
	v, ok := Normalize2D(Vec2{3, 4})
	assertTrue(t, ok && near(v[0], 0.6) && near(v[1], 0.8), "unit vector")
	_, ok = Normalize2D(Vec2{})
	assertTrue(t, !ok, "zero vector rejected")
	_, ok = Normalize2D(Vec2{float32(math.NaN()), 1})
	assertTrue(t, !ok, "nan rejected")
}

func TestClampMagnitude2D(t *testing.T) {
	v := ClampMagnitude2D(Vec2{3, 4}, 2)
	assertTrue(t, near(v[0], 1.2) && near(v[1], 1.6), "clamped to length 2")
	v = ClampMagnitude2D(Vec2{0.3, 0.4}, 2)
	assertTrue(t, v == Vec2{0.3, 0.4}, "short vector untouched")
	v = ClampMagnitude2D(Vec2{3, 4}, 0)
	assertTrue(t, v == Vec2{}, "zero max gives zero")
}

func TestRotate2D(t *testing.T) {
	v := Rotate2D(Vec2{1, 0}, 0, 1)
	assertTrue(t, near(v[0], 0) && near(v[1], 1), "quarter turn counter clockwise")
}

func TestSqrDistancePointSegment2D(t *testing.T) {
	a, b := Vec2{0, 0}, Vec2{4, 0}
	assertTrue(t, near(SqrDistancePointSegment2D(a, b, Vec2{2, 3}), 9), "perpendicular distance")
	assertTrue(t, near(SqrDistancePointSegment2D(a, b, Vec2{-3, 4}), 25), "clamped to endpoint")
	assertTrue(t, near(SqrDistancePointSegment2D(a, a, Vec2{0, 2}), 4), "degenerate segment")
}

func TestIsFinite(t *testing.T) {
	assertTrue(t, IsFinite(1), "finite")
	assertTrue(t, !IsFinite(float32(math.Inf(1))), "inf")
	assertTrue(t, !IsFinite(float32(math.NaN())), "nan")
}

func TestGrowSlice(t *testing.T) {
	s := make([]int, 2, 4)
	g := GrowSlice(s, 3)
	assertTrue(t, len(g) == 3 && &g[0] == &s[0], "reuses backing array")
	g = GrowSlice(g, 9)
	assertTrue(t, len(g) == 9 && cap(g) >= 9, "grows")
}

func TestTo2D(t *testing.T) {
	v := Vec3{1, 2, 3}
	assertTrue(t, To2D(v) == Vec2{1, 3}, "drops y")
	assertTrue(t, To3D(Vec2{1, 3}, 2) == v, "restores y")
}
