// Package config assembles the demo settings from a .env file, RVO_*
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/gorustyt/gorvo/common/logger"
	"github.com/gorustyt/gorvo/rvo"
	"github.com/joho/godotenv"
)

type Config struct {
	Sim rvo.Config
	Log logger.Config

	Agents   int           ///< Agents placed on the circle.
	Radius   float32       ///< Radius of the start circle.
	Speed    float32       ///< Max and desired speed of every agent.
	Duration time.Duration ///< Simulated time to run.
	Obstacle bool          ///< Place a box in the middle of the circle.
	Snapshot string        ///< Write the final snapshot to this file.
}

func Default() Config {
	return Config{
		Sim:      rvo.DefaultConfig(),
		Log:      logger.DefaultConfig(),
		Agents:   64,
		Radius:   20,
		Speed:    2,
		Duration: 30 * time.Second,
		Obstacle: true,
	}
}

// Load reads envFile (missing is fine), the environment and args.
func Load(envFile string, args []string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", envFile, err)
		}
	}
	cfg := Default()
	if err := cfg.fromEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.fromFlags(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Sim.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Agents < 0 || cfg.Speed < 0 {
		return Config{}, fmt.Errorf("%w: agents %d speed %v", rvo.ErrInvalidConfig, cfg.Agents, cfg.Speed)
	}
	return cfg, nil
}

type envParser struct {
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func (p *envParser) fail(key string, err error) {
	p.err = fmt.Errorf("config: %s: %w", key, err)
}

func (p *envParser) intVar(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = n
	}
}

func (p *envParser) floatVar(key string, dst *float32) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = float32(f)
	}
}

func (p *envParser) boolVar(key string, dst *bool) {
	if v, ok := p.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = b
	}
}

func (p *envParser) stringVar(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *envParser) durationVar(key string, dst *time.Duration) {
	if v, ok := p.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, err)
			return
		}
		*dst = d
	}
}

func (cfg *Config) fromEnv() error {
	var p envParser
	p.intVar("RVO_WORKERS", &cfg.Sim.Workers)
	if v, ok := p.lookup("RVO_ALGORITHM"); ok {
		alg, err := rvo.ParseSamplingAlgorithm(v)
		if err != nil {
			return err
		}
		cfg.Sim.Algorithm = alg
	}
	p.floatVar("RVO_DT", &cfg.Sim.DesiredDeltaTime)
	p.intVar("RVO_MAX_STEPS", &cfg.Sim.MaxStepsPerFrame)
	p.floatVar("RVO_CELL_SIZE", &cfg.Sim.GridCellSize)
	p.floatVar("RVO_WALL_THICKNESS", &cfg.Sim.WallThickness)
	p.intVar("RVO_MAX_OBSTACLES", &cfg.Sim.MaxObstacleNeighbours)

	p.intVar("RVO_AGENTS", &cfg.Agents)
	p.floatVar("RVO_CIRCLE_RADIUS", &cfg.Radius)
	p.floatVar("RVO_SPEED", &cfg.Speed)
	p.durationVar("RVO_DURATION", &cfg.Duration)
	p.boolVar("RVO_OBSTACLE", &cfg.Obstacle)
	p.stringVar("RVO_SNAPSHOT", &cfg.Snapshot)

	p.stringVar("RVO_LOG_LEVEL", &cfg.Log.Level)
	p.stringVar("RVO_LOG_FILE", &cfg.Log.File)
	p.boolVar("RVO_LOG_JSON", &cfg.Log.JSON)
	return p.err
}

type algorithmFlag struct{ dst *rvo.SamplingAlgorithm }

func (f algorithmFlag) String() string {
	if f.dst == nil {
		return ""
	}
	return f.dst.String()
}

func (f algorithmFlag) Set(s string) error {
	alg, err := rvo.ParseSamplingAlgorithm(s)
	if err != nil {
		return err
	}
	*f.dst = alg
	return nil
}

type float32Flag struct{ dst *float32 }

func (f float32Flag) String() string {
	if f.dst == nil {
		return ""
	}
	return strconv.FormatFloat(float64(*f.dst), 'g', -1, 32)
}

func (f float32Flag) Set(s string) error {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*f.dst = float32(v)
	return nil
}

func (cfg *Config) fromFlags(args []string) error {
	set := flag.NewFlagSet("rvo-demo", flag.ContinueOnError)
	set.IntVar(&cfg.Sim.Workers, "workers", cfg.Sim.Workers, "parallel workers")
	set.Var(algorithmFlag{&cfg.Sim.Algorithm}, "algorithm", "velocity solver: adaptive or gradient")
	set.Var(float32Flag{&cfg.Sim.DesiredDeltaTime}, "dt", "fixed simulation step in seconds")
	set.IntVar(&cfg.Agents, "agents", cfg.Agents, "number of agents")
	set.Var(float32Flag{&cfg.Radius}, "radius", "start circle radius")
	set.Var(float32Flag{&cfg.Speed}, "speed", "agent speed")
	set.DurationVar(&cfg.Duration, "duration", cfg.Duration, "simulated time")
	set.BoolVar(&cfg.Obstacle, "obstacle", cfg.Obstacle, "place a box in the middle")
	set.StringVar(&cfg.Snapshot, "snapshot", cfg.Snapshot, "write the final snapshot to this file")
	set.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	set.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "rotated log file")
	return set.Parse(args)
}
