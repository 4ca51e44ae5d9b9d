package rvo

// WorkerContext holds the scratch memory of one worker. Buffers only grow,
// so a warmed up simulator does not allocate during velocity calculation.
type WorkerContext struct {
	id     int
	cfg    Config
	solver VelocitySolver

	vos        []VO
	samplePos  []Vec2
	sampleSize []float32
	keep       []sampleCandidate
	keepScores []float32

	voCount     int
	sampleCount int
}

func NewWorkerContext(id int, cfg Config, solver VelocitySolver) *WorkerContext {
	return &WorkerContext{
		id:         id,
		cfg:        cfg,
		solver:     solver,
		vos:        make([]VO, 0, 32),
		samplePos:  make([]Vec2, 0, 32),
		sampleSize: make([]float32, 0, 32),
		keep:       make([]sampleCandidate, 0, cfg.AdaptiveKeepCount),
		keepScores: make([]float32, 0, cfg.AdaptiveKeepCount),
	}
}

func (ctx *WorkerContext) ID() int { return ctx.id }

func (ctx *WorkerContext) addSample(p Vec2, size float32) {
	ctx.samplePos = append(ctx.samplePos, p)
	ctx.sampleSize = append(ctx.sampleSize, size)
}

func (ctx *WorkerContext) resetCounters() {
	ctx.voCount = 0
	ctx.sampleCount = 0
}
