package debug_utils

import (
	"testing"

	"github.com/gorustyt/gorvo/common"
	"github.com/gorustyt/gorvo/rvo"
)

func assertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Error(msg)
	}
}

func TestDisplayListReplay(t *testing.T) {
	src := NewDuDisplayList(64)
	DuDebugDrawCircle(src, 0, 0, 0, 1, colAgent, 2)
	assertTrue(t, src.BatchCount() == 1, "one batch")
	assertTrue(t, src.VertexCount() == circleSegments*2, "circle vertex count")

	dst := NewDuDisplayList(64)
	src.Draw(dst)
	assertTrue(t, dst.VertexCount() == src.VertexCount(), "replay keeps vertices")
	assertTrue(t, dst.BatchCount() == src.BatchCount(), "replay keeps batches")
}

func TestDrawAgentDebug(t *testing.T) {
	cfg := rvo.DefaultConfig()
	cfg.Workers = 1
	sim, err := rvo.NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	a := sim.AddAgent(common.Vec3{0, 0, 0})
	b := sim.AddAgent(common.Vec3{3, 0, 0})
	a.SetDesiredVelocity(common.Vec3{1, 0, 0})
	b.SetDesiredVelocity(common.Vec3{-1, 0, 0})
	a.SetDebugDraw(true)
	wall, err := sim.AddObstacleSegment(common.Vec3{-2, 0, 2}, common.Vec3{4, 0, 2}, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	sim.Tick(0.1)

	dd := NewDuDisplayList(256)
	DuDebugDrawAgent(dd, a)
	assertTrue(t, dd.VertexCount() > circleSegments*2, "body plus velocity and neighbour lines")

	dd.Clear()
	DuDebugDrawAgentVOs(dd, a)
	assertTrue(t, dd.VertexCount() > 0, "agent with debug draw records VOs and samples")
	assertTrue(t, dd.batches[0].count > 0, "VO boundaries drawn")
	c := dd.verts[0].color
	assertTrue(t, c.R() == colVOBoundary.R() && c.A() >= 64, "VO boundary shaded by its weight")

	dd.Clear()
	DuDebugDrawAgentVOs(dd, b)
	assertTrue(t, dd.VertexCount() == 0, "agent without debug draw draws nothing")

	dd.Clear()
	DuDebugDrawObstacles(dd, []*rvo.ObstacleVertex{wall})
	// Two edges, each a line and a normal.
	assertTrue(t, dd.VertexCount() == 8, "segment obstacle draws two edges")
}

func TestDrawProximityGrid(t *testing.T) {
	grid := rvo.NewProximityGrid(1)
	dd := NewDuDisplayList(256)
	DuDebugDrawProximityGrid(dd, grid, 0)
	assertTrue(t, dd.VertexCount() == 0, "empty grid draws nothing")

	cfg := rvo.DefaultConfig()
	cfg.Workers = 1
	sim, err := rvo.NewSimulator(cfg, rvo.WithNeighbourQuery(grid))
	if err != nil {
		t.Fatal(err)
	}
	sim.AddAgent(common.Vec3{0.5, 0, 0.5})
	sim.AddAgent(common.Vec3{3.5, 0, 1.5})
	sim.Tick(0.1)

	b := grid.Bounds()
	w, h := int(b[2]-b[0])+1, int(b[3]-b[1])+1
	lines := 2 * ((w + 1) + (h + 1))
	occupied := 0
	for y := b[1]; y <= b[3]; y++ {
		for x := b[0]; x <= b[2]; x++ {
			if grid.ItemCountAt(x, y) > 0 {
				occupied++
			}
		}
	}
	DuDebugDrawProximityGrid(dd, grid, 0)
	assertTrue(t, occupied > 0, "agents occupy cells")
	assertTrue(t, dd.BatchCount() == 2, "grid lines and cells")
	assertTrue(t, dd.VertexCount() == lines+occupied*4, "one quad per occupied cell")
	assertTrue(t, dd.verts[0].color == DuRGBAf(1, 1, 1, 0.1), "grid line colour")
	assertTrue(t, dd.verts[0].pos == common.Vec3{float32(b[0]), 0, float32(b[1])}, "grid starts at the bounds")
}
