package rvo

import (
	"slices"
	"sync"

	"github.com/gorustyt/gorvo/common"
)

// / Configuration parameters for an agent.
// / Written by controllers at any time; the solver only sees the copy taken
// / by the last buffer switch.
type AgentParams struct {
	Radius              float32 ///< Agent radius. [Limit: >= 0]
	Height              float32 ///< Agent height. [Limit: >= 0]
	MaxSpeed            float32 ///< Maximum allowed speed. [Limit: >= 0]
	NeighbourDist       float32 ///< Max distance to other agents taken into account.
	AgentTimeHorizon    float32 ///< Look-ahead for agent collisions. [Limit: > 0]
	ObstacleTimeHorizon float32 ///< Look-ahead for obstacle collisions. [Limit: > 0]
	MaxNeighbours       int     ///< Max number of other agents taken into account.

	DesiredVelocity Vec3 ///< Velocity the agent would like to move with, y is ignored.
	Locked          bool ///< Does not move but is avoided by others.

	Layer        Layer ///< Layers this agent is on.
	CollidesWith Layer ///< Layers of agents and obstacles this agent avoids.

	DebugDraw bool ///< Record VO and solver debug data.
}

func DefaultAgentParams() AgentParams {
	return AgentParams{
		Radius:              0.5,
		Height:              2,
		MaxSpeed:            2,
		NeighbourDist:       10,
		AgentTimeHorizon:    2,
		ObstacleTimeHorizon: 2,
		MaxNeighbours:       10,
		Layer:               1,
		CollidesWith:        AllLayers,
	}
}

const minTimeHorizon = 1e-3

// sanitized returns p with out of range values clamped and reports whether
// anything changed.
func (p AgentParams) sanitized() (AgentParams, bool) {
	q := p
	q.Radius = max(q.Radius, 0)
	q.Height = max(q.Height, 0)
	q.MaxSpeed = max(q.MaxSpeed, 0)
	q.NeighbourDist = max(q.NeighbourDist, 0)
	q.AgentTimeHorizon = max(q.AgentTimeHorizon, minTimeHorizon)
	q.ObstacleTimeHorizon = max(q.ObstacleTimeHorizon, minTimeHorizon)
	q.MaxNeighbours = max(q.MaxNeighbours, 0)
	if !common.IsFinite(q.DesiredVelocity[0]) || !common.IsFinite(q.DesiredVelocity[2]) {
		q.DesiredVelocity = Vec3{}
	}
	return q, q != p
}

// Agent is one moving entity of the simulation.
//
// Values read by the solver (hot params, position, velocity) are only
// written at tick boundaries. The exported methods may be called from any
// goroutine; methods documented as between-tick only read solver state.
type Agent struct {
	id uint32

	mu   sync.Mutex
	live AgentParams ///< Written by controllers.
	hot  AgentParams ///< Read by the solver.

	position    Vec3 ///< Logical position used by the solver.
	velocity    Vec3 ///< Velocity applied in the last tick.
	newVelocity Vec3 ///< Pending velocity, applied by update.

	pubPosition   Vec3
	pubVelocity   Vec3
	smoothPos     Vec3
	prevSmoothPos Vec3

	neighbours        []*Agent
	neighbourDists    []float32
	obstacles         []*ObstacleVertex
	obstaclesBuffered []*ObstacleVertex
	obstacleDists     []float32

	lastScore float32
	clamped   bool
	debug     *DebugData
}

func newAgent(id uint32, pos Vec3) *Agent {
	a := &Agent{id: id, live: DefaultAgentParams()}
	a.position = pos
	a.pubPosition = pos
	a.smoothPos = pos
	a.prevSmoothPos = pos
	a.bufferSwitch()
	return a
}

func (a *Agent) ID() uint32 { return a.id }

func (a *Agent) Params() AgentParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// SetParams replaces all tunables. Takes effect at the next tick.
func (a *Agent) SetParams(p AgentParams) {
	a.mu.Lock()
	a.live = p
	a.mu.Unlock()
}

func (a *Agent) SetDesiredVelocity(v Vec3) {
	a.mu.Lock()
	a.live.DesiredVelocity = v
	a.mu.Unlock()
}

func (a *Agent) SetMaxSpeed(speed float32) {
	a.mu.Lock()
	a.live.MaxSpeed = speed
	a.mu.Unlock()
}

func (a *Agent) SetRadius(r float32) {
	a.mu.Lock()
	a.live.Radius = r
	a.mu.Unlock()
}

func (a *Agent) SetLocked(locked bool) {
	a.mu.Lock()
	a.live.Locked = locked
	a.mu.Unlock()
}

func (a *Agent) SetDebugDraw(enabled bool) {
	a.mu.Lock()
	a.live.DebugDraw = enabled
	a.mu.Unlock()
}

// Position returns the logical position after the last tick.
func (a *Agent) Position() Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pubPosition
}

// Velocity returns the velocity applied in the last tick.
func (a *Agent) Velocity() Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pubVelocity
}

// InterpolatedPosition is the position to render, between the two last ticks.
func (a *Agent) InterpolatedPosition() Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.smoothPos
}

// Teleport moves the agent without interpolation.
func (a *Agent) Teleport(pos Vec3) {
	a.mu.Lock()
	a.pubPosition = pos
	a.smoothPos = pos
	a.prevSmoothPos = pos
	a.mu.Unlock()
}

func (a *Agent) SetYPosition(y float32) {
	a.mu.Lock()
	a.pubPosition[1] = y
	a.smoothPos[1] = y
	a.prevSmoothPos[1] = y
	a.mu.Unlock()
}

// NeighbourCount returns the number of agents found by the last tick. Between-tick only.
func (a *Agent) NeighbourCount() int { return len(a.neighbours) }

// Neighbour returns the i-th nearest agent of the last tick. Between-tick only.
func (a *Agent) Neighbour(i int) *Agent { return a.neighbours[i] }

// NeighbourDistSqr returns the squared planar distance to the i-th neighbour. Between-tick only.
func (a *Agent) NeighbourDistSqr(i int) float32 { return a.neighbourDists[i] }

// ObstacleCount returns the number of obstacle edges considered in the last tick.
func (a *Agent) ObstacleCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.obstaclesBuffered)
}

// Obstacle returns the first vertex of the i-th nearest edge of the last tick.
func (a *Agent) Obstacle(i int) *ObstacleVertex {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.obstaclesBuffered[i]
}

// LastScore is the penalty of the velocity chosen in the last tick. Between-tick only.
func (a *Agent) LastScore() float32 { return a.lastScore }

// DebugData returns the records of the last solve, nil unless DebugDraw is set. Between-tick only.
func (a *Agent) DebugData() *DebugData {
	if !a.hot.DebugDraw {
		return nil
	}
	return a.debug
}

// bufferSwitch copies the controller-written tunables and any teleported
// position into the solver copy and publishes the applied velocity. It
// reports whether the tunables started needing to be clamped.
func (a *Agent) bufferSwitch() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	var fixed bool
	a.hot, fixed = a.live.sanitized()
	a.position = a.pubPosition
	a.pubVelocity = a.velocity
	report := fixed && !a.clamped
	a.clamped = fixed
	return report
}

// update applies the pending velocity and swaps the obstacle lists so that
// the ones found in this tick become readable. The new position starts from
// the smoothed position so that teleports between ticks are honoured.
func (a *Agent) update(dt float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.velocity = a.newVelocity
	a.prevSmoothPos = a.smoothPos
	a.position = a.prevSmoothPos.Add(a.velocity.Mul(dt))
	a.pubPosition = a.position
	a.pubVelocity = a.velocity
	a.obstacles, a.obstaclesBuffered = a.obstaclesBuffered, a.obstacles
}

func (a *Agent) interpolate(t float32) {
	a.mu.Lock()
	a.smoothPos = common.Vlerp(a.prevSmoothPos, a.pubPosition, t)
	a.mu.Unlock()
}

// insertSorted inserts item into the ascending keys list keeping at most
// maxN entries. The last entry is dropped when the list is full.
func insertSorted[T any](items []T, keys []float32, item T, key float32, maxN int) ([]T, []float32) {
	n := len(items)
	if n < maxN {
		items = append(items, item)
		keys = append(keys, key)
	} else if n == 0 || key >= keys[n-1] {
		return items, keys
	}
	i := len(items) - 1
	for i > 0 && key < keys[i-1] {
		items[i] = items[i-1]
		keys[i] = keys[i-1]
		i--
	}
	items[i] = item
	keys[i] = key
	return items, keys
}

// calculateNeighbours fills the bounded neighbour and obstacle lists.
func (a *Agent) calculateNeighbours(index NeighbourQuery, maxObstacles int) {
	a.neighbours = a.neighbours[:0]
	a.neighbourDists = a.neighbourDists[:0]
	a.obstacles = a.obstacles[:0]
	a.obstacleDists = a.obstacleDists[:0]

	if a.hot.Locked {
		return
	}

	pos := common.To2D(a.position)
	if a.hot.MaxNeighbours > 0 {
		rangeSq := common.Sqr(a.hot.NeighbourDist)
		index.QueryAgents(pos, a.hot.NeighbourDist, func(other *Agent) {
			rangeSq = a.insertAgentNeighbour(other, rangeSq)
		})
	}

	if maxObstacles > 0 {
		r := a.hot.ObstacleTimeHorizon*a.hot.MaxSpeed + a.hot.Radius
		rangeSq := r * r
		index.QueryObstacles(pos, r, func(v *ObstacleVertex) {
			rangeSq = a.insertObstacleNeighbour(v, rangeSq, maxObstacles)
		})
	}
}

// insertAgentNeighbour returns the search range after considering other,
// which shrinks to the farthest kept distance once the list is full.
func (a *Agent) insertAgentNeighbour(other *Agent, rangeSq float32) float32 {
	if other == a || other.hot.Layer&a.hot.CollidesWith == 0 {
		return rangeSq
	}
	dist := common.Vdist2DSqr(other.position, a.position)
	if dist >= rangeSq || slices.Contains(a.neighbours, other) {
		return rangeSq
	}
	a.neighbours, a.neighbourDists = insertSorted(a.neighbours, a.neighbourDists, other, dist, a.hot.MaxNeighbours)
	if len(a.neighbours) == a.hot.MaxNeighbours {
		rangeSq = a.neighbourDists[len(a.neighbourDists)-1]
	}
	return rangeSq
}

func (a *Agent) insertObstacleNeighbour(v *ObstacleVertex, rangeSq float32, maxObstacles int) float32 {
	if v.Ignore || v.Next == nil {
		return rangeSq
	}
	dist := v.SqrDistance(common.To2D(a.position))
	if dist >= rangeSq || slices.Contains(a.obstacles, v) {
		return rangeSq
	}
	a.obstacles, a.obstacleDists = insertSorted(a.obstacles, a.obstacleDists, v, dist, maxObstacles)
	if len(a.obstacles) == maxObstacles {
		rangeSq = a.obstacleDists[len(a.obstacleDists)-1]
	}
	return rangeSq
}

// calculateVelocity builds the VOs of this tick and solves for the pending velocity.
func (a *Agent) calculateVelocity(ctx *WorkerContext) {
	if a.hot.Locked {
		a.newVelocity = Vec3{}
		a.lastScore = 0
		return
	}

	cfg := &ctx.cfg
	var debug *DebugData
	if a.hot.DebugDraw {
		if a.debug == nil {
			a.debug = NewDebugData(256)
		}
		debug = a.debug
		debug.reset(a.position)
	}

	pos := common.To2D(a.position)
	optimal := common.To2D(a.velocity)
	desired := common.To2D(a.hot.DesiredVelocity)
	y, height := a.position[1], a.hot.Height

	vos := ctx.vos[:0]
	wallWeight := ctx.solver.WallWeight()
	inverseObstacleHorizon := 1 / a.hot.ObstacleTimeHorizon

	for _, v := range a.obstacles {
		if v.Ignore || !v.OverlapsBand(y, height) || v.Layer&a.hot.CollidesWith == 0 {
			continue
		}
		if v.Dir == (Vec2{}) {
			continue
		}

		vp := v.Position2D()
		np := v.Next.Position2D()
		// Signed distance from the edge line, positive on the outer side.
		signedDist := common.Det(vp, v.Dir, pos)
		if common.Abs(signedDist) >= a.hot.NeighbourDist {
			continue
		}

		dotFactor := v.Dir.Dot(pos.Sub(vp))
		// The margin avoids false positives when sliding along the corners of boxes.
		margin := cfg.WallThickness * 0.05
		closestIsEndpoint := dotFactor <= margin || dotFactor >= np.Sub(vp).Len()-margin

		// A two vertex obstacle is a segment blocked from both sides, it has no body.
		solid := v.Next.Next != v

		var vo VO
		// Behind the edge is only inside the body when the polygon encloses the
		// agent. Thin polygons put an outside agent behind their far edge.
		if solid && signedDist <= 0 && signedDist > -cfg.WallThickness && !closestIsEndpoint && v.Encloses(pos) {
			// Inside the wall body, push back out.
			vo = NewHalfPlaneVO(vp.Sub(pos), v.Dir.Mul(-1), wallWeight*2, cfg.GlobalIncompressibility)
		} else if signedDist > 0 {
			p1 := vp.Sub(pos).Mul(inverseObstacleHorizon)
			p2 := np.Sub(pos).Mul(inverseObstacleHorizon)
			vo = NewEdgeVO(p1, p2, wallWeight)
		}
		if vo.Valid() {
			vos = append(vos, vo)
		}
	}

	inverseAgentHorizon := 1 / a.hot.AgentTimeHorizon
	for _, other := range a.neighbours {
		// Different height bands can not collide.
		maxY := min(y+height, other.position[1]+other.hot.Height)
		minY := max(y, other.position[1])
		if maxY-minY < 0 {
			continue
		}

		otherVelocity := common.To2D(other.velocity)
		totalRadius := a.hot.Radius + other.hot.Radius
		center := common.To2D(other.position).Sub(pos)
		relative := optimal.Sub(otherVelocity)

		var voCenter Vec2
		if other.hot.Locked {
			voCenter = otherVelocity
		} else {
			// Reciprocal, each agent takes half the responsibility.
			voCenter = optimal.Add(otherVelocity).Mul(0.5)
		}

		vo := NewCircleVO(center, voCenter, totalRadius, relative, inverseAgentHorizon, 1, cfg.GlobalIncompressibility)
		if vo.Valid() {
			vos = append(vos, vo)
		}
	}
	ctx.vos = vos
	ctx.voCount += len(vos)

	if debug != nil {
		for i := range vos {
			debug.addVO(&vos[i])
		}
	}

	result, score := ctx.solver.Solve(ctx, vos, SolveInput{
		Desired: desired,
		Current: optimal,
		Radius:  a.hot.Radius,
		Debug:   debug,
	})
	if !common.Visfinite2D(result) {
		result = Vec2{}
	}
	result = common.ClampMagnitude2D(result, a.hot.MaxSpeed)
	if debug != nil {
		debug.result = result
	}
	a.lastScore = score
	a.newVelocity = common.To3D(result, 0)
}
