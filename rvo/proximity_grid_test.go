package rvo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gorustyt/gorvo/common"
)

func gridAgent(id uint32, pos Vec3, radius float32) *Agent {
	a := newAgent(id, pos)
	a.SetRadius(radius)
	a.bufferSwitch()
	return a
}

func TestProximityGridQueryAgents(t *testing.T) {
	grid := NewProximityGrid(1.5)
	rnd := rand.New(rand.NewSource(7))
	var agents []*Agent
	for i := 0; i < 200; i++ {
		agents = append(agents, gridAgent(uint32(i), Vec3{rnd.Float32()*60 - 30, 0, rnd.Float32()*60 - 30}, 0.5))
	}
	grid.Rebuild(agents, nil)

	center := Vec2{3, -2}
	const radius = 8
	seen := map[*Agent]int{}
	grid.QueryAgents(center, radius, func(a *Agent) { seen[a]++ })

	for _, n := range seen {
		assertTrue(t, n == 1, "each candidate is reported once")
	}
	for _, a := range agents {
		if common.Vdist2DSqr(a.position, common.To3D(center, 0)) <= radius*radius {
			assertTrue(t, seen[a] == 1, "agent within range is reported")
		}
	}
}

func TestProximityGridMultiCellAgent(t *testing.T) {
	grid := NewProximityGrid(1)
	big := gridAgent(1, Vec3{}, 3)
	huge := gridAgent(2, Vec3{100, 0, 100}, 10)
	grid.Rebuild([]*Agent{big, huge}, nil)

	n := 0
	grid.QueryAgents(Vec2{}, 5, func(a *Agent) {
		if a == big {
			n++
		}
	})
	assertTrue(t, n == 1, "agent covering many cells is reported once")
	assertTrue(t, grid.ItemCountAt(0, 0) == 1 && grid.ItemCountAt(-3, 2) == 1, "agent registered in every covered cell")
	assertTrue(t, grid.ItemCountAt(4, 4) == 0, "cell outside the radius bounds is empty")

	// Too large for the hash grid, it is a candidate for every query.
	found := false
	grid.QueryAgents(Vec2{-50, -50}, 1, func(a *Agent) { found = found || a == huge })
	assertTrue(t, found, "large agent is always a candidate")
	assertTrue(t, grid.ItemCountAt(100, 100) == 0, "large agent is not stored per cell")

	b := grid.Bounds()
	assertTrue(t, b[0] == -3 && b[1] == -3 && b[2] == 110 && b[3] == 110, "bounds cover all items")
}

func TestProximityGridQueryObstacles(t *testing.T) {
	grid := NewProximityGrid(2)
	near := buildObstacle([]Vec3{{-1, 0, 1}, {1, 0, 1}}, 1, AllLayers)
	far := buildObstacle([]Vec3{{40, 0, 40}, {42, 0, 40}}, 1, AllLayers)
	edges := []*ObstacleVertex{near, near.Next, far, far.Next}
	grid.Rebuild(nil, edges)

	var got []*ObstacleVertex
	grid.QueryObstacles(Vec2{}, 3, func(v *ObstacleVertex) { got = append(got, v) })
	assertTrue(t, len(got) == 2, "both edges of the near segment")
	for _, v := range got {
		assertTrue(t, v == near || v == near.Next, "only near edges")
	}
	assertTrue(t, grid.CellSize() == 2, "cell size")
}

func TestProximityGridRebuildReuses(t *testing.T) {
	grid := NewProximityGrid(1)
	a := gridAgent(1, Vec3{}, 0.5)
	grid.Rebuild([]*Agent{a}, nil)

	a.Teleport(Vec3{10, 0, 10})
	a.bufferSwitch()
	grid.Rebuild([]*Agent{a}, nil)
	n := 0
	grid.QueryAgents(Vec2{}, 1, func(*Agent) { n++ })
	assertTrue(t, n == 0, "old position is forgotten")
	grid.QueryAgents(Vec2{10, 10}, 1, func(*Agent) { n++ })
	assertTrue(t, n == 1, "new position is indexed")
}

func TestProximityGridWideQuery(t *testing.T) {
	grid := NewProximityGrid(4)
	a := gridAgent(1, Vec3{}, 0.5)
	b := gridAgent(2, Vec3{1e6, 0, 1e6}, 0.5)
	grid.Rebuild([]*Agent{a, b}, nil)

	count := func(pos Vec2, radius float32) int {
		n := 0
		grid.QueryAgents(pos, radius, func(*Agent) { n++ })
		return n
	}
	assertTrue(t, count(Vec2{}, 4e6) == 2, "radius covering both agents")
	assertTrue(t, count(Vec2{}, float32(math.Inf(1))) == 2, "infinite radius is clipped to the occupied cells")
	assertTrue(t, count(Vec2{5e5, 5e5}, 10) == 0, "empty space between far apart agents")
	assertTrue(t, count(Vec2{-1e7, -1e7}, 1) == 0, "query outside the bounds")
}
