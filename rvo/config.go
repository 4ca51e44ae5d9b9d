package rvo

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	ErrInvalidConfig       = errors.New("rvo: invalid config")
	ErrTooFewVertices      = errors.New("rvo: obstacle needs at least two vertices")
	ErrUnknownObstacle     = errors.New("rvo: obstacle is not registered")
	ErrVertexCountMismatch = errors.New("rvo: vertex count does not match obstacle")
	ErrUnknownAgent        = errors.New("rvo: agent is not registered")
)

// SamplingAlgorithm selects the velocity solver used by every agent of a simulator.
type SamplingAlgorithm int

const (
	AdaptiveSampling SamplingAlgorithm = iota
	GradientDescent
)

func (a SamplingAlgorithm) String() string {
	switch a {
	case AdaptiveSampling:
		return "adaptive"
	case GradientDescent:
		return "gradient"
	}
	return fmt.Sprintf("SamplingAlgorithm(%d)", int(a))
}

func ParseSamplingAlgorithm(s string) (SamplingAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adaptive", "adaptivesampling", "sampling":
		return AdaptiveSampling, nil
	case "gradient", "gradientdescent", "gradient_descent":
		return GradientDescent, nil
	}
	return 0, fmt.Errorf("%w: unknown sampling algorithm %q", ErrInvalidConfig, s)
}

// Config holds the global tuning of a Simulator. It is copied into every
// WorkerContext when the simulator is created and is never written during a tick.
type Config struct {
	Workers   int               ///< Number of parallel workers. [Limit: >= 1]
	Algorithm SamplingAlgorithm ///< Solver used by all agents.

	WallThickness           float32 ///< Depth behind an obstacle edge that still counts as inside the wall body.
	QualityCutoff           float32 ///< Gradient descent stops once the penalty is below speed*QualityCutoff.
	StepScale               float32 ///< Gradient descent initial step length scale.
	DesiredVelocityWeight   float32 ///< Penalty per unit distance from the desired velocity.
	DesiredVelocityScale    float32 ///< Gradient descent attraction toward the desired velocity.
	GlobalIncompressibility float32 ///< Penalty multiplier for already overlapping entities.
	WallWeight              float32 ///< Weight of obstacle edges for adaptive sampling.

	GradientIterations    int ///< Iterations per gradient descent seed.
	GradientMinIterations int ///< Iterations before the quality cutoff may stop a trace.
	AdaptiveKeepCount     int ///< Best candidates kept between sampling rounds.
	AdaptiveRounds        int ///< Refinement rounds after the seed pattern.

	MaxObstacleNeighbours int     ///< Cap of every agent's obstacle list.
	GridCellSize          float32 ///< Cell size of the default proximity grid.

	DesiredDeltaTime float32 ///< Fixed step used by Simulator.Advance.
	MaxStepsPerFrame int     ///< Upper bound of ticks run by one Advance call.
	Interpolation    bool    ///< Interpolate agent positions between ticks in Advance.
}

func DefaultConfig() Config {
	return Config{
		Workers:                 runtime.GOMAXPROCS(0),
		Algorithm:               AdaptiveSampling,
		WallThickness:           1,
		QualityCutoff:           0.05,
		StepScale:               1.5,
		DesiredVelocityWeight:   0.02,
		DesiredVelocityScale:    0.1,
		GlobalIncompressibility: 30,
		WallWeight:              5,
		GradientIterations:      50,
		GradientMinIterations:   10,
		AdaptiveKeepCount:       3,
		AdaptiveRounds:          3,
		MaxObstacleNeighbours:   16,
		GridCellSize:            4,
		DesiredDeltaTime:        0.05,
		MaxStepsPerFrame:        4,
		Interpolation:           true,
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, c.Workers)
	case c.Algorithm != AdaptiveSampling && c.Algorithm != GradientDescent:
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Algorithm)
	case c.WallThickness < 0:
		return fmt.Errorf("%w: wall thickness must be >= 0", ErrInvalidConfig)
	case c.StepScale <= 0:
		return fmt.Errorf("%w: step scale must be > 0", ErrInvalidConfig)
	case c.GradientIterations < 1 || c.GradientMinIterations < 0:
		return fmt.Errorf("%w: gradient iterations %d/%d", ErrInvalidConfig, c.GradientIterations, c.GradientMinIterations)
	case c.AdaptiveKeepCount < 1 || c.AdaptiveRounds < 0:
		return fmt.Errorf("%w: adaptive keep %d rounds %d", ErrInvalidConfig, c.AdaptiveKeepCount, c.AdaptiveRounds)
	case c.MaxObstacleNeighbours < 0:
		return fmt.Errorf("%w: max obstacle neighbours must be >= 0", ErrInvalidConfig)
	case c.GridCellSize <= 0:
		return fmt.Errorf("%w: grid cell size must be > 0", ErrInvalidConfig)
	case c.DesiredDeltaTime <= 0 || c.MaxStepsPerFrame < 1:
		return fmt.Errorf("%w: desired delta time %v max steps %d", ErrInvalidConfig, c.DesiredDeltaTime, c.MaxStepsPerFrame)
	}
	return nil
}
