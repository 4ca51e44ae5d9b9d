package rvo

import (
	"math"
	"testing"

	"github.com/gorustyt/gorvo/common"
)

func assertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Error(msg)
	}
}

func approx(a, b, eps float32) bool { return common.Abs(a-b) <= eps }

func approx2(a, b Vec2, eps float32) bool {
	return approx(a[0], b[0], eps) && approx(a[1], b[1], eps)
}

func TestHalfPlaneVO(t *testing.T) {
	vo := NewHalfPlaneVO(Vec2{0, 0}, Vec2{0, 2}, 2, 30)
	assertTrue(t, vo.Valid() && vo.Colliding(), "half plane is a collision VO")

	assertTrue(t, approx(vo.ScalarSample(Vec2{1, 0}), 30, 1e-5), "penalty scaled by incompressibility")
	assertTrue(t, vo.ScalarSample(Vec2{-1, 0}) == 0, "allowed side has no penalty")

	d, w := vo.Sample(Vec2{1, 0})
	assertTrue(t, approx(w, 1, 1e-6), "weight is not scaled by incompressibility")
	assertTrue(t, approx2(d, Vec2{-30, 0}, 1e-4), "escape points to the allowed side")

	bad := NewHalfPlaneVO(Vec2{0, 0}, Vec2{}, 1, 30)
	assertTrue(t, !bad.Valid(), "zero direction is degenerate")
	assertTrue(t, bad.ScalarSample(Vec2{1, 1}) == 0, "degenerate VO contributes nothing")
}

func TestCircleVO(t *testing.T) {
	vo := NewCircleVO(Vec2{4, 0}, Vec2{}, 1, Vec2{1, 0}, 1, 1, 30)
	assertTrue(t, vo.Valid() && !vo.Colliding(), "separated agents give a cone")

	assertTrue(t, vo.ScalarSample(Vec2{0, 0}) == 0, "apex is free")
	assertTrue(t, vo.ScalarSample(Vec2{0, 3}) == 0, "velocity passing beside is free")
	// Behind the cutoff line the distance to a tangent is used.
	assertTrue(t, approx(vo.ScalarSample(Vec2{4, 0}), 0.5, 1e-4), "center penalty is radius times weight")
	// In front of it the cutoff line itself.
	assertTrue(t, approx(vo.ScalarSample(Vec2{3.5, 0}), 0.25, 1e-4), "cutoff band penalty")

	d, w := vo.Sample(Vec2{3.5, 0})
	assertTrue(t, approx(w, 0.25, 1e-4), "cutoff weight")
	assertTrue(t, approx2(d, Vec2{-0.25, 0}, 1e-4), "cutoff escape points back to the apex")

	for i := 0; i < 2; i++ {
		point, dir, ok := vo.Boundary(i)
		assertTrue(t, ok, "tangent boundary")
		// Both tangents pass through the apex.
		assertTrue(t, approx(common.Det(point, dir, Vec2{}), 0, 1e-4), "tangent passes through apex")
	}
}

func TestCircleVOTimeHorizon(t *testing.T) {
	near := NewCircleVO(Vec2{4, 0}, Vec2{}, 1, Vec2{1, 0}, 1, 1, 30)
	far := NewCircleVO(Vec2{4, 0}, Vec2{}, 1, Vec2{1, 0}, 0.25, 1, 30)
	p := Vec2{1.5, 0}
	assertTrue(t, near.ScalarSample(p) == 0, "slow approach within a short horizon is free")
	assertTrue(t, far.ScalarSample(p) > 0, "the same velocity collides within a long horizon")
}

func TestCircleVOOverlap(t *testing.T) {
	vo := NewCircleVO(Vec2{1, 0}, Vec2{}, 1, Vec2{1, 0}, 0.5, 1, 30)
	assertTrue(t, vo.Colliding(), "touching agents give a half plane")
	assertTrue(t, vo.ScalarSample(Vec2{-0.5, 0}) == 0, "moving away is free")
	d, _ := vo.Sample(Vec2{1, 0})
	assertTrue(t, d[0] < 0 && approx(d[1], 0, 1e-5), "escape points away from the other agent")

	same := NewCircleVO(Vec2{}, Vec2{}, 1, Vec2{1, 0}, 0.5, 1, 30)
	assertTrue(t, !same.Valid(), "coincident agents are degenerate")

	nan := NewCircleVO(Vec2{float32(math.NaN()), 0}, Vec2{}, 1, Vec2{}, 1, 1, 30)
	assertTrue(t, !nan.Valid(), "non finite input is degenerate")
}

func TestEdgeVO(t *testing.T) {
	vo := NewEdgeVO(Vec2{-1, 1}, Vec2{1, 1}, 2)
	assertTrue(t, vo.Valid(), "edge VO")

	assertTrue(t, vo.ScalarSample(Vec2{0, 0.5}) == 0, "stopping before the edge is free")
	assertTrue(t, vo.ScalarSample(Vec2{3, 2}) == 0, "passing beside the edge is free")
	assertTrue(t, approx(vo.ScalarSample(Vec2{0, 2}), 1, 1e-4), "crossing the edge is penalised")

	d, w := vo.Sample(Vec2{0, 2})
	assertTrue(t, approx(w, 1, 1e-4), "edge weight")
	assertTrue(t, approx2(d, Vec2{0, -1}, 1e-4), "escape back across the edge line")

	degenerate := NewEdgeVO(Vec2{1, 1}, Vec2{1, 1}, 1)
	assertTrue(t, !degenerate.Valid(), "zero length edge is degenerate")
}
