package rvo

import (
	"math"

	"github.com/gorustyt/gorvo/common"
)

// SolveInput is the per-agent data a VelocitySolver needs besides the VOs.
type SolveInput struct {
	Desired Vec2    ///< Preferred velocity.
	Current Vec2    ///< Velocity applied in the last tick.
	Radius  float32 ///< Agent radius, lower bound of the sampling scale.
	Debug   *DebugData
}

// VelocitySolver picks a velocity with a low sum of VO penalties. Solve must
// only use ctx for scratch memory so that workers can run it in parallel.
type VelocitySolver interface {
	Solve(ctx *WorkerContext, vos []VO, in SolveInput) (Vec2, float32)
	// WallWeight is the weight factor given to obstacle edge VOs.
	WallWeight() float32
}

// NewSolver returns the solver selected by cfg.Algorithm.
func NewSolver(cfg Config) VelocitySolver {
	if cfg.Algorithm == GradientDescent {
		return &GradientDescentSolver{
			Iterations:            cfg.GradientIterations,
			MinIterations:         cfg.GradientMinIterations,
			QualityCutoff:         cfg.QualityCutoff,
			StepScale:             cfg.StepScale,
			DesiredVelocityWeight: cfg.DesiredVelocityWeight,
			DesiredVelocityScale:  cfg.DesiredVelocityScale,
		}
	}
	return &AdaptiveSamplingSolver{
		DesiredVelocityWeight: cfg.DesiredVelocityWeight,
		Wall:                  cfg.WallWeight,
		KeepCount:             cfg.AdaptiveKeepCount,
		Rounds:                cfg.AdaptiveRounds,
	}
}

// GradientDescentSolver follows the summed escape vectors of all VOs plus a
// pull toward the desired velocity, from two seeds.
type GradientDescentSolver struct {
	Iterations            int
	MinIterations         int
	QualityCutoff         float32
	StepScale             float32
	DesiredVelocityWeight float32
	DesiredVelocityScale  float32
}

func (s *GradientDescentSolver) WallWeight() float32 { return 1 }

func (s *GradientDescentSolver) Solve(ctx *WorkerContext, vos []VO, in SolveInput) (Vec2, float32) {
	cutoff := in.Current.Len() * s.QualityCutoff

	best, bestScore := s.trace(ctx, vos, in.Desired, in.Desired, cutoff, in.Debug)
	if p, score := s.trace(ctx, vos, in.Current, in.Desired, cutoff, in.Debug); score < bestScore {
		best, bestScore = p, score
	}
	return best, bestScore
}

// trace descends from p and returns the best point visited.
func (s *GradientDescentSolver) trace(ctx *WorkerContext, vos []VO, p, desired Vec2, cutoff float32, debug *DebugData) (Vec2, float32) {
	bestP := p
	bestScore := float32(math.Inf(1))

	for it := 0; it < s.Iterations; it++ {
		step := (1 - float32(it)/float32(s.Iterations)) * s.StepScale

		var dir Vec2
		var mx float32
		for i := range vos {
			d, w := vos[i].Sample(p)
			dir = dir.Add(d)
			mx = max(mx, w)
		}
		toDesired := desired.Sub(p)
		dir = dir.Add(toDesired.Mul(s.DesiredVelocityScale))
		mx = max(mx, toDesired.Len()*s.DesiredVelocityWeight)

		score := mx
		ctx.sampleCount++
		if debug != nil {
			debug.addSample(p, step, score)
		}
		if score < bestScore {
			bestP, bestScore = p, score
		}
		if score <= cutoff && it > s.MinIterations {
			break
		}

		if sq := dir.Dot(dir); sq > 0 {
			dir = dir.Mul(mx / common.Sqrt32(sq))
		}
		p = p.Add(dir.Mul(step))
		if !common.Visfinite2D(p) {
			break
		}
	}
	return bestP, bestScore
}

type sampleCandidate struct {
	pos  Vec2
	size float32
}

// AdaptiveSamplingSolver scores a fixed seed pattern and then refines around
// the best few samples with shrinking patterns.
type AdaptiveSamplingSolver struct {
	DesiredVelocityWeight float32
	Wall                  float32
	KeepCount             int
	Rounds                int
}

func (s *AdaptiveSamplingSolver) WallWeight() float32 { return s.Wall }

const (
	refineShrink = 0.6
	// Tie breaker toward the desired velocity for the overall best.
	bestEverBias = 0.001
)

func (s *AdaptiveSamplingSolver) seed(ctx *WorkerContext, desired, optimal Vec2, scale float32) {
	ctx.addSample(desired, scale*0.3)
	ctx.addSample(optimal, scale*0.3)

	fw := desired.Mul(0.5)
	rw := Vec2{fw[1], -fw[0]}

	const outer = 8
	for i := 0; i < outer; i++ {
		a := float64(i) * 2 * math.Pi / outer
		sin, cos := float32(math.Sin(a)), float32(math.Cos(a))
		p := rw.Mul(sin).Add(fw.Mul(1 + cos))
		size := (1 - common.Abs(float32(i)-outer/2)/outer) * scale * 0.5
		ctx.addSample(p, size)
	}

	const inner = 6
	ifw, irw := fw.Mul(0.6), rw.Mul(0.6)
	for i := 0; i < inner; i++ {
		a := (float64(i) + 0.5) * 2 * math.Pi / inner
		sin, cos := float32(math.Sin(a)), float32(math.Cos(a))
		p := irw.Mul(cos).Add(ifw.Mul(1/0.6 + sin))
		ctx.addSample(p, scale*0.3)
	}

	for i := 0; i < inner; i++ {
		a := (float64(i) + 0.5) * 2 * math.Pi / inner
		p := optimal.Add(Vec2{float32(math.Cos(a)), float32(math.Sin(a))}.Mul(scale * 0.2))
		ctx.addSample(p, scale*0.4)
	}

	ctx.addSample(optimal.Mul(0.5), scale*0.4)
}

func (s *AdaptiveSamplingSolver) Solve(ctx *WorkerContext, vos []VO, in SolveInput) (Vec2, float32) {
	desired, optimal := in.Desired, in.Current
	scale := max(in.Radius, desired.Len(), optimal.Len())

	ctx.samplePos = ctx.samplePos[:0]
	ctx.sampleSize = ctx.sampleSize[:0]
	s.seed(ctx, desired, optimal, scale)

	bestEver := optimal
	bestEverScore := float32(math.Inf(1))

	for round := 0; ; round++ {
		ctx.keep = ctx.keep[:0]
		ctx.keepScores = ctx.keepScores[:0]

		for i, p := range ctx.samplePos {
			var score float32
			for j := range vos {
				score = max(score, vos[j].ScalarSample(p))
			}
			dist := p.Sub(desired).Len()
			biased := score + dist*s.DesiredVelocityWeight
			score += dist * bestEverBias
			ctx.sampleCount++
			if in.Debug != nil {
				in.Debug.addSample(p, ctx.sampleSize[i], biased)
			}

			ctx.keep, ctx.keepScores = insertSorted(ctx.keep, ctx.keepScores,
				sampleCandidate{pos: p, size: ctx.sampleSize[i]}, biased, s.KeepCount)

			if score < bestEverScore {
				bestEver, bestEverScore = p, score
				if score == 0 {
					return bestEver, 0
				}
			}
		}

		if round == s.Rounds {
			break
		}

		ctx.samplePos = ctx.samplePos[:0]
		ctx.sampleSize = ctx.sampleSize[:0]
		for _, c := range ctx.keep {
			size := c.size * refineShrink
			offset := size * 0.5
			ctx.addSample(c.pos.Add(Vec2{offset, offset}), size)
			ctx.addSample(c.pos.Add(Vec2{offset, -offset}), size)
			ctx.addSample(c.pos.Add(Vec2{-offset, -offset}), size)
			ctx.addSample(c.pos.Add(Vec2{-offset, offset}), size)
		}
	}
	return bestEver, bestEverScore
}
