// Command demo runs a headless circle swap: agents start on a circle and
// walk to the opposite point, avoiding each other and an optional box.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gorustyt/gorvo/common"
	"github.com/gorustyt/gorvo/common/logger"
	"github.com/gorustyt/gorvo/common/message"
	"github.com/gorustyt/gorvo/demo/config"
	"github.com/gorustyt/gorvo/rvo"
	"go.uber.org/zap"
)

type walker struct {
	agent  *rvo.Agent
	target common.Vec3
}

func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	sim, err := rvo.NewSimulator(cfg.Sim, rvo.WithLogger(log))
	if err != nil {
		return err
	}

	if cfg.Obstacle {
		s := cfg.Radius * 0.15
		box := []common.Vec3{{-s, 0, -s}, {s, 0, -s}, {s, 0, s}, {-s, 0, s}}
		if _, err := sim.AddObstacle(box, 2, rvo.AllLayers); err != nil {
			return err
		}
	}

	walkers := make([]walker, 0, cfg.Agents)
	for i := 0; i < cfg.Agents; i++ {
		a := float64(i) / float64(cfg.Agents) * 2 * math.Pi
		start := common.Vec3{float32(math.Cos(a)) * cfg.Radius, 0, float32(math.Sin(a)) * cfg.Radius}
		ag := sim.AddAgent(start)
		p := ag.Params()
		p.MaxSpeed = cfg.Speed
		ag.SetParams(p)
		walkers = append(walkers, walker{agent: ag, target: start.Mul(-1)})
	}

	dt := cfg.Sim.DesiredDeltaTime
	steps := int(cfg.Duration.Seconds() / float64(dt))
	began := time.Now()
	arrived := 0
	for i := 0; i < steps; i++ {
		arrived = steer(walkers, cfg.Speed)
		sim.Advance(dt)
		if i%100 == 0 {
			st := sim.Stats()
			log.Info("progress",
				zap.Uint64("tick", st.Tick),
				zap.Int("arrived", arrived),
				zap.Int("vos", st.VOs),
				zap.Duration("tick_time", st.Duration))
		}
		if arrived == len(walkers) {
			break
		}
	}
	log.Info("done",
		zap.Int("arrived", arrived),
		zap.Int("agents", len(walkers)),
		zap.Float64("simulated", sim.Time()),
		zap.Duration("wall", time.Since(began)))

	if cfg.Snapshot != "" {
		data := message.EncodeSnapshot(nil, sim.Snapshot())
		if err := os.WriteFile(cfg.Snapshot, data, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.Info("snapshot written", zap.String("file", cfg.Snapshot), zap.Int("bytes", len(data)))
	}
	return nil
}

// steer points every agent at its target, slowing down on arrival, and
// returns how many have arrived.
func steer(walkers []walker, speed float32) int {
	arrived := 0
	for _, w := range walkers {
		d := w.target.Sub(w.agent.Position())
		d[1] = 0
		dist := d.Len()
		if dist < 0.1 {
			arrived++
			w.agent.SetDesiredVelocity(common.Vec3{})
			continue
		}
		w.agent.SetDesiredVelocity(d.Mul(min(speed, dist) / dist))
	}
	return arrived
}
