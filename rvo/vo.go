package rvo

import (
	"github.com/gorustyt/gorvo/common"
)

type Vec2 = common.Vec2
type Vec3 = common.Vec3

type voKind uint8

const (
	voNone      voKind = iota ///< Degenerate, contributes nothing.
	voHalfPlane               ///< Already overlapping, single half-plane.
	voEdge                    ///< Static obstacle edge seen from outside.
	voCircle                  ///< Truncated cone around another agent.
)

// VO is a velocity obstacle: the set of relative velocities that collide
// with one neighbour or obstacle edge within the time horizon.
//
// For a half-plane VO the forbidden side of the line {line1, line1+dir1}
// is where common.Det is >= 0. Cone and edge VOs are the intersection of
// three such half-planes: the two tangents and the cutoff line.
type VO struct {
	kind       voKind
	line1      Vec2
	dir1       Vec2
	line2      Vec2
	dir2       Vec2
	cutoffLine Vec2
	cutoffDir  Vec2
	useFirst   bool    ///< Escape through the first tangent.
	radius     float32 ///< Scaled combined radius, cutoff band width.

	weightFactor      float32
	incompressibility float32
}

// outward normal of a boundary line, pointing away from the forbidden side.
func escapeNormal(dir Vec2) Vec2 {
	return Vec2{-dir[1], dir[0]}
}

// NewHalfPlaneVO creates a VO forbidding the side of the line through p0
// with tangent dir where common.Det(p0, dir, p) >= 0. Penalties are
// multiplied by incompressibility since the entities already overlap.
func NewHalfPlaneVO(p0, dir Vec2, weightFactor, incompressibility float32) VO {
	d, ok := common.Normalize2D(dir)
	if !ok || !common.Visfinite2D(p0) {
		return VO{}
	}
	return VO{
		kind:              voHalfPlane,
		line1:             p0,
		dir1:              d,
		weightFactor:      weightFactor * 0.5,
		incompressibility: incompressibility,
	}
}

// NewEdgeVO creates a VO for a static edge with endpoints p1 and p2 given
// relative to the agent (and scaled by the inverse time horizon). The agent
// must be on the outer side of the edge. The forbidden region is bounded by
// the rays toward both endpoints and the edge line itself.
func NewEdgeVO(p1, p2 Vec2, weightFactor float32) VO {
	tang1, ok1 := common.Normalize2D(p1)
	tang2, ok2 := common.Normalize2D(p2)
	edge, ok3 := common.Normalize2D(p2.Sub(p1))
	if !ok1 || !ok2 || !ok3 {
		return VO{}
	}
	return VO{
		kind:         voEdge,
		line1:        p1,
		dir1:         tang1,
		line2:        p2,
		dir2:         tang2.Mul(-1),
		cutoffLine:   p1,
		cutoffDir:    edge.Mul(-1),
		weightFactor: weightFactor * 0.5,
	}
}

// NewCircleVO creates a VO for an agent whose position relative to us is
// center, with combined radius radius. offset is the apex of the cone in
// velocity space (the velocity the other agent is assumed to keep).
// sideChooser is the current relative velocity; the tangent on its side of
// the center line is used for escaping so that the choice does not flip
// between ticks.
func NewCircleVO(center, offset Vec2, radius float32, sideChooser Vec2, inverseDt, weightFactor, incompressibility float32) VO {
	dist := center.Len()
	if !common.IsFinite(dist) || !common.Visfinite2D(offset) {
		return VO{}
	}
	if dist <= radius {
		n, ok := common.Normalize2D(center)
		if !ok {
			// Coincident positions, no usable direction.
			return VO{}
		}
		return NewHalfPlaneVO(offset.Add(n.Mul(dist-radius)), Vec2{-n[1], n[0]}, weightFactor, incompressibility)
	}

	center = center.Mul(inverseDt)
	radius *= inverseDt
	dist *= inverseDt
	n, ok := common.Normalize2D(center)
	if !ok {
		return VO{}
	}

	vo := VO{
		kind:         voCircle,
		radius:       radius,
		weightFactor: weightFactor * 0.5,
		cutoffLine:   offset.Add(n.Mul(dist - radius)),
		cutoffDir:    Vec2{-n[1], n[0]},
		useFirst:     common.RightOrColinear(Vec2{}, center, sideChooser),
	}

	// delta = acos(radius/dist), the half angle of the cone seen from the circle center.
	cosDelta := common.Clamp(radius/dist, -1, 1)
	sinDelta := common.Sqrt32(max(0, 1-cosDelta*cosDelta))
	back := n.Mul(-1)
	globalCenter := center.Add(offset)

	t1 := common.Rotate2D(back, cosDelta, sinDelta)
	t2 := common.Rotate2D(back, cosDelta, -sinDelta)
	vo.line1 = globalCenter.Add(t1.Mul(radius))
	vo.dir1 = Vec2{t1[1], -t1[0]}
	vo.line2 = globalCenter.Add(t2.Mul(radius))
	vo.dir2 = Vec2{t2[1], -t2[0]}
	return vo
}

// escape finds the boundary to leave through from p, and its distance.
func (vo *VO) escape(p Vec2) (float32, Vec2) {
	det3 := common.Det(vo.cutoffLine, vo.cutoffDir, p)
	if det3 <= 0 {
		return 0, Vec2{}
	}
	det1 := common.Det(vo.line1, vo.dir1, p)
	det2 := common.Det(vo.line2, vo.dir2, p)
	if det1 < 0 || det2 < 0 {
		return 0, Vec2{}
	}

	if vo.kind == voEdge {
		switch {
		case det3 <= det1 && det3 <= det2:
			return det3, escapeNormal(vo.cutoffDir)
		case det1 <= det2:
			return det1, escapeNormal(vo.dir1)
		default:
			return det2, escapeNormal(vo.dir2)
		}
	}

	if det3 < vo.radius {
		return det3, escapeNormal(vo.cutoffDir)
	}
	if vo.useFirst {
		return det1, escapeNormal(vo.dir1)
	}
	return det2, escapeNormal(vo.dir2)
}

// Sample returns the escape direction at velocity p scaled by the penalty,
// and the weight (escape distance times the weight factor). Overlap VOs
// scale the direction, not the weight, by the incompressibility.
func (vo *VO) Sample(p Vec2) (Vec2, float32) {
	switch vo.kind {
	case voHalfPlane:
		d := common.Det(vo.line1, vo.dir1, p)
		if d < 0 {
			return Vec2{}, 0
		}
		w := d * vo.weightFactor
		return escapeNormal(vo.dir1).Mul(w * vo.incompressibility), w
	case voEdge, voCircle:
		d, n := vo.escape(p)
		if d <= 0 {
			return Vec2{}, 0
		}
		w := d * vo.weightFactor
		return n.Mul(w), w
	}
	return Vec2{}, 0
}

// ScalarSample returns the penalty of velocity p, zero outside the VO.
func (vo *VO) ScalarSample(p Vec2) float32 {
	switch vo.kind {
	case voHalfPlane:
		d := common.Det(vo.line1, vo.dir1, p)
		if d < 0 {
			return 0
		}
		return d * vo.incompressibility * vo.weightFactor
	case voEdge, voCircle:
		d, _ := vo.escape(p)
		return d * vo.weightFactor
	}
	return 0
}

func (vo *VO) Valid() bool           { return vo.kind != voNone }
func (vo *VO) Colliding() bool       { return vo.kind == voHalfPlane }
func (vo *VO) WeightFactor() float32 { return vo.weightFactor }

// Boundary returns the i-th boundary line (0..2) of the VO for debug drawing.
func (vo *VO) Boundary(i int) (point, dir Vec2, ok bool) {
	switch {
	case vo.kind == voNone:
		return
	case i == 0:
		return vo.line1, vo.dir1, true
	case vo.kind == voHalfPlane:
		return
	case i == 1:
		return vo.line2, vo.dir2, true
	case i == 2:
		return vo.cutoffLine, vo.cutoffDir, true
	}
	return
}
