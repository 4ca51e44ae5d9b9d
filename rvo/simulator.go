package rvo

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/gorustyt/gorvo/common"
	"github.com/gorustyt/gorvo/common/message"
	"go.uber.org/zap"
)

// Stats describes the last completed tick.
type Stats struct {
	Tick       uint64
	Agents     int
	Edges      int
	VOs        int ///< VOs built by all agents.
	Samples    int ///< Velocities evaluated by all solvers.
	Neighbours int
	Duration   time.Duration
}

type Option func(*Simulator)

func WithLogger(log *zap.Logger) Option {
	return func(d *Simulator) {
		if log != nil {
			d.log = log
		}
	}
}

// WithNeighbourQuery replaces the default proximity grid.
func WithNeighbourQuery(q NeighbourQuery) Option {
	return func(d *Simulator) {
		if q != nil {
			d.index = q
		}
	}
}

// Simulator owns agents and obstacles and advances them in fixed ticks.
// Registration calls and ticks are serialized by an internal mutex, agent
// setters may be called concurrently with a tick.
type Simulator struct {
	mu  sync.Mutex
	cfg Config
	log *zap.Logger

	solver   VelocitySolver
	index    NeighbourQuery
	contexts []*WorkerContext

	agents    []*Agent
	obstacles []*ObstacleVertex ///< First vertex of every obstacle.
	edges     []*ObstacleVertex ///< Every vertex, rebuilt when obstacles change.
	dirty     bool

	nextID      uint32
	tick        uint64
	time        float64
	accumulator float32
	stats       Stats
}

func NewSimulator(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Simulator{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.index == nil {
		d.index = NewProximityGrid(cfg.GridCellSize)
	}
	d.solver = NewSolver(cfg)
	d.contexts = make([]*WorkerContext, cfg.Workers)
	for i := range d.contexts {
		d.contexts[i] = NewWorkerContext(i, cfg, d.solver)
	}
	d.log.Info("simulator created",
		zap.Int("workers", cfg.Workers),
		zap.Stringer("algorithm", cfg.Algorithm),
		zap.Float32("dt", cfg.DesiredDeltaTime))
	return d, nil
}

func (d *Simulator) Config() Config { return d.cfg }

// AddAgent registers a new agent with default parameters at pos.
func (d *Simulator) AddAgent(pos Vec3) *Agent {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	ag := newAgent(d.nextID, pos)
	d.agents = append(d.agents, ag)
	d.log.Debug("agent added", zap.Uint32("id", ag.id), zap.Int("agents", len(d.agents)))
	return ag
}

func (d *Simulator) RemoveAgent(ag *Agent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.Index(d.agents, ag)
	if i < 0 {
		return ErrUnknownAgent
	}
	d.agents = slices.Delete(d.agents, i, i+1)
	d.log.Debug("agent removed", zap.Uint32("id", ag.id), zap.Int("agents", len(d.agents)))
	return nil
}

func (d *Simulator) ClearAgents() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.agents)
	d.agents = d.agents[:0]
}

func (d *Simulator) Agents() []*Agent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.agents)
}

// AddObstacle adds a closed polygon. Vertices should be wound counter
// clockwise on the xz-plane; agents are then kept outside the polygon.
// Two vertices make a segment blocked from both sides.
func (d *Simulator) AddObstacle(vertices []Vec3, height float32, layer Layer) (*ObstacleVertex, error) {
	if len(vertices) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewVertices, len(vertices))
	}
	first := buildObstacle(vertices, height, layer)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.obstacles = append(d.obstacles, first)
	d.dirty = true
	d.log.Info("obstacle added", zap.Int("vertices", len(vertices)), zap.Float32("height", height))
	return first, nil
}

// AddObstacleSegment adds a single wall from a to b.
func (d *Simulator) AddObstacleSegment(a, b Vec3, height float32, layer Layer) (*ObstacleVertex, error) {
	return d.AddObstacle([]Vec3{a, b}, height, layer)
}

func (d *Simulator) RemoveObstacle(first *ObstacleVertex) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.Index(d.obstacles, first)
	if i < 0 {
		return ErrUnknownObstacle
	}
	d.obstacles = slices.Delete(d.obstacles, i, i+1)
	d.dirty = true
	d.log.Info("obstacle removed", zap.Int("vertices", vertexCount(first)), zap.Int("obstacles", len(d.obstacles)))
	return nil
}

// UpdateObstacle moves the vertices of an obstacle. The vertex count must not change.
func (d *Simulator) UpdateObstacle(first *ObstacleVertex, vertices []Vec3) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !slices.Contains(d.obstacles, first) {
		return ErrUnknownObstacle
	}
	if n := vertexCount(first); n != len(vertices) {
		return fmt.Errorf("%w: obstacle has %d, got %d", ErrVertexCountMismatch, n, len(vertices))
	}
	i := 0
	forEachVertex(first, func(v *ObstacleVertex) {
		v.Position = vertices[i]
		i++
	})
	forEachVertex(first, func(v *ObstacleVertex) { v.updateDir() })
	d.dirty = true
	return nil
}

func (d *Simulator) ClearObstacles() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.obstacles = d.obstacles[:0]
	d.dirty = true
}

func (d *Simulator) Obstacles() []*ObstacleVertex {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.obstacles)
}

func (d *Simulator) rebuildEdges() {
	for _, v := range d.edges {
		v.id = -1
	}
	d.edges = d.edges[:0]
	for _, first := range d.obstacles {
		forEachVertex(first, func(v *ObstacleVertex) {
			v.id = int32(len(d.edges))
			d.edges = append(d.edges, v)
		})
	}
	d.dirty = false
}

// parallel runs fn over all agents split into contiguous chunks, one per
// worker, and returns when every chunk is done.
func (d *Simulator) parallel(fn func(ctx *WorkerContext, ag *Agent)) {
	n := len(d.agents)
	workers := min(len(d.contexts), n)
	if workers <= 1 {
		for _, ag := range d.agents {
			fn(d.contexts[0], ag)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(ctx *WorkerContext, part []*Agent) {
			defer wg.Done()
			for _, ag := range part {
				fn(ctx, ag)
			}
		}(d.contexts[w], d.agents[start:end])
	}
	wg.Wait()
}

// Tick advances the simulation by dt seconds.
func (d *Simulator) Tick(dt float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.step(dt)
	for _, ag := range d.agents {
		ag.interpolate(1)
	}
}

func (d *Simulator) step(dt float32) {
	start := time.Now()
	if d.dirty {
		d.rebuildEdges()
	}
	for _, ctx := range d.contexts {
		ctx.resetCounters()
	}

	// Tick boundary: pick up parameters written since the last tick.
	d.parallel(func(_ *WorkerContext, ag *Agent) {
		ag.interpolate(1)
		if ag.bufferSwitch() {
			d.log.Warn("agent parameters out of range, clamped", zap.Uint32("id", ag.id))
		}
	})

	d.index.Rebuild(d.agents, d.edges)

	maxObstacles := d.cfg.MaxObstacleNeighbours
	d.parallel(func(_ *WorkerContext, ag *Agent) {
		ag.calculateNeighbours(d.index, maxObstacles)
	})
	d.parallel(func(ctx *WorkerContext, ag *Agent) {
		ag.calculateVelocity(ctx)
	})
	d.parallel(func(_ *WorkerContext, ag *Agent) {
		ag.update(dt)
	})

	d.tick++
	d.time += float64(dt)

	stats := Stats{Tick: d.tick, Agents: len(d.agents), Edges: len(d.edges), Duration: time.Since(start)}
	for _, ctx := range d.contexts {
		stats.VOs += ctx.voCount
		stats.Samples += ctx.sampleCount
	}
	for _, ag := range d.agents {
		stats.Neighbours += len(ag.neighbours)
	}
	d.stats = stats

	if ce := d.log.Check(zap.DebugLevel, "tick"); ce != nil {
		ce.Write(
			zap.Uint64("tick", stats.Tick),
			zap.Int("agents", stats.Agents),
			zap.Int("vos", stats.VOs),
			zap.Int("samples", stats.Samples),
			zap.Duration("took", stats.Duration))
	}
}

// Advance accumulates elapsed wall time and runs as many fixed ticks of
// Config.DesiredDeltaTime as fit, at most Config.MaxStepsPerFrame. Agent
// positions are then interpolated into the remaining fraction of a tick.
// It returns the number of ticks run.
func (d *Simulator) Advance(elapsed float32) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	dt := d.cfg.DesiredDeltaTime
	if elapsed > 0 && common.IsFinite(elapsed) {
		d.accumulator += elapsed
	}
	steps := 0
	for d.accumulator >= dt && steps < d.cfg.MaxStepsPerFrame {
		d.step(dt)
		d.accumulator -= dt
		steps++
	}
	if d.accumulator >= dt {
		dropped := d.accumulator
		d.accumulator = float32(math.Mod(float64(d.accumulator), float64(dt)))
		d.log.Debug("simulation falling behind, dropping time", zap.Float32("dropped", dropped-d.accumulator))
	}

	t := float32(1)
	if d.cfg.Interpolation {
		t = d.accumulator / dt
	}
	for _, ag := range d.agents {
		ag.interpolate(t)
	}
	return steps
}

func (d *Simulator) TickCount() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tick
}

func (d *Simulator) Time() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.time
}

func (d *Simulator) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Snapshot captures the published state of every agent.
func (d *Simulator) Snapshot() *message.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &message.Snapshot{Tick: d.tick, Time: d.time, Agents: make([]message.AgentState, 0, len(d.agents))}
	for _, ag := range d.agents {
		p := ag.Params()
		s.Agents = append(s.Agents, message.AgentState{
			ID:       ag.id,
			Position: ag.Position(),
			Velocity: ag.Velocity(),
			Desired:  p.DesiredVelocity,
			Radius:   p.Radius,
			Locked:   p.Locked,
		})
	}
	return s
}
