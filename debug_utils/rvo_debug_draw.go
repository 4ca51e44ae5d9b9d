package debug_utils

import (
	"github.com/gorustyt/gorvo/common"
	"github.com/gorustyt/gorvo/rvo"
)

// voLineLength is the length of a drawn VO boundary in velocity units.
const voLineLength = 4

// Grids spanning more cells are not drawn.
const maxDrawnCells = 64 * 64

// DuDebugDrawAgent draws an agent's body, its velocities and the edges and
// neighbours found in the last tick. Call it between ticks.
func DuDebugDrawAgent(dd DuDebugDraw, ag *rvo.Agent) {
	if dd == nil || ag == nil {
		return
	}
	p := ag.InterpolatedPosition()
	params := ag.Params()
	y := p[1] + 0.05

	col := colAgent
	if params.Locked {
		col = colLocked
	}
	DuDebugDrawCircle(dd, p[0], y, p[2], params.Radius, col, 2)

	dd.Begin(DU_DRAW_LINES, 1)
	for i := 0; i < ag.NeighbourCount(); i++ {
		n := ag.Neighbour(i).InterpolatedPosition()
		DuAppendLine(dd, common.Vec3{p[0], y, p[2]}, common.Vec3{n[0], y, n[2]}, colNeighbour)
	}
	for i := 0; i < ag.ObstacleCount(); i++ {
		v := ag.Obstacle(i)
		a, b := v.Position, v.Next.Position
		DuAppendLine(dd, common.Vec3{a[0], a[1] + 0.1, a[2]}, common.Vec3{b[0], b[1] + 0.1, b[2]}, colObstacle)
	}
	dd.End()

	dd.Begin(DU_DRAW_LINES, 2)
	base := common.Vec3{p[0], y, p[2]}
	v := ag.Velocity()
	DuAppendArrow(dd, base, common.Vec3{p[0] + v[0], y, p[2] + v[2]}, 0, 0.2, colVelocity)
	dv := params.DesiredVelocity
	DuAppendArrow(dd, base, common.Vec3{p[0] + dv[0], y, p[2] + dv[2]}, 0, 0.2, colDesired)
	dd.End()
}

// DuDebugDrawAgentVOs draws the VOs and evaluated samples of the agent's last
// solve in velocity space, centered on the agent. Nothing is drawn unless
// the agent has DebugDraw enabled.
func DuDebugDrawAgentVOs(dd DuDebugDraw, ag *rvo.Agent) {
	if dd == nil || ag == nil {
		return
	}
	data := ag.DebugData()
	if data == nil {
		return
	}
	o := data.Origin()
	y := o[1] + 0.1
	at := func(v rvo.Vec2) common.Vec3 { return common.Vec3{o[0] + v[0], y, o[2] + v[1]} }

	dd.Begin(DU_DRAW_LINES, 1)
	for i := 0; i < data.GetVOCount(); i++ {
		vo := data.GetVO(i)
		// Heavier VOs, walls mostly, are drawn more opaque.
		col := DuTransCol(colVOBoundary, uint8(min(64+vo.WeightFactor()*128, 255)))
		for j := 0; j < 3; j++ {
			point, dir, ok := vo.Boundary(j)
			if !ok {
				break
			}
			DuAppendLine(dd, at(point), at(point.Add(dir.Mul(voLineLength))), col)
		}
	}

	data.NormalizeSamples()
	for i := 0; i < data.GetSampleCount(); i++ {
		s := at(data.GetSampleVelocity(i))
		col := DuLerpCol(colSampleGood, colSampleBad, uint8(data.GetSamplePenalty(i)*255))
		DuAppendCross(dd, s[0], s[1], s[2], data.GetSampleSize(i)*0.1, col)
	}
	r := at(data.Result())
	DuAppendCross(dd, r[0], r[1], r[2], 0.25, colResultCross)
	dd.End()
}

// DuDebugDrawObstacles draws every edge of the given obstacles with its
// outward normal. Ignored edges are drawn dark.
func DuDebugDrawObstacles(dd DuDebugDraw, obstacles []*rvo.ObstacleVertex) {
	if dd == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, 2)
	for _, first := range obstacles {
		v := first
		for {
			col := colObstacle
			if v.Ignore {
				col = DuDarkenCol(col)
			}
			a, b := v.Position, v.Next.Position
			DuAppendLine(dd, a, b, col)
			mid := a.Add(b).Mul(0.5)
			// Outside is on the right of the edge direction.
			normal := common.Vec3{v.Dir[1], 0, -v.Dir[0]}
			DuAppendLine(dd, mid, mid.Add(normal.Mul(0.3)), DuTransCol(col, 96))
			v = v.Next
			if v == first {
				break
			}
		}
	}
	dd.End()
}

// DuDebugDrawProximityGrid draws the occupied cells of the grid, shaded by
// the number of agents registered in each, over the grid lines of its bounds.
func DuDebugDrawProximityGrid(dd DuDebugDraw, grid *rvo.ProximityGrid, y float32) {
	if dd == nil || grid == nil {
		return
	}
	b := grid.Bounds()
	if b[0] > b[2] || b[1] > b[3] {
		return
	}
	cs := grid.CellSize()
	w, h := int(b[2]-b[0])+1, int(b[3]-b[1])+1
	if w*h > maxDrawnCells {
		return
	}
	DuDebugDrawGridXZ(dd, float32(b[0])*cs, y, float32(b[1])*cs, w, h, cs, DuRGBAf(1, 1, 1, 0.1), 1)

	dd.Begin(DU_DRAW_QUADS)
	for cy := b[1]; cy <= b[3]; cy++ {
		for cx := b[0]; cx <= b[2]; cx++ {
			n := grid.ItemCountAt(cx, cy)
			if n == 0 {
				continue
			}
			col := DuRGBAf(1, 0.5, 0, min(float32(n)*0.2, 1))
			x0, z0 := float32(cx)*cs, float32(cy)*cs
			dd.Vertex1(x0, y, z0, col)
			dd.Vertex1(x0, y, z0+cs, col)
			dd.Vertex1(x0+cs, y, z0+cs, col)
			dd.Vertex1(x0+cs, y, z0, col)
		}
	}
	dd.End()
}
