package rvo

import (
	"math"

	"github.com/gorustyt/gorvo/common"
)

// NeighbourQuery is the spatial index consulted during neighbour discovery.
// Rebuild is called by a single goroutine at the start of a tick; the query
// methods are then called concurrently and must not mutate the index. They
// invoke visit once per candidate in range (candidates may lie slightly
// outside the radius, the caller filters).
type NeighbourQuery interface {
	Rebuild(agents []*Agent, edges []*ObstacleVertex)
	QueryAgents(pos Vec2, radius float32, visit func(a *Agent))
	QueryObstacles(pos Vec2, radius float32, visit func(v *ObstacleVertex))
}

type gridItem struct {
	id         int32
	x, y       int32
	minx, miny int32 ///< First covered cell, used to report the item once.
	next       int32
}

// Items covering more cells than this are checked on every query instead.
const maxItemCells = 64

type hashGrid struct {
	buckets []int32
	pool    []gridItem
	large   []int32
}

func hashPos2(x, y, n int32) int32 {
	return ((x * 73856093) ^ (y * 19349663)) & (n - 1)
}

func (g *hashGrid) reset(items int) {
	n := int(nextPow2(uint32(max(items, 16))))
	g.buckets = common.GrowSlice(g.buckets, n)
	for i := range g.buckets {
		g.buckets[i] = -1
	}
	g.pool = g.pool[:0]
	g.large = g.large[:0]
}

func cellCount(minx, miny, maxx, maxy int32) int64 {
	return (int64(maxx) - int64(minx) + 1) * (int64(maxy) - int64(miny) + 1)
}

func (g *hashGrid) add(id, minx, miny, maxx, maxy int32) {
	if cellCount(minx, miny, maxx, maxy) > maxItemCells {
		g.large = append(g.large, id)
		return
	}
	n := int32(len(g.buckets))
	for y := miny; y <= maxy; y++ {
		for x := minx; x <= maxx; x++ {
			h := hashPos2(x, y, n)
			g.pool = append(g.pool, gridItem{id: id, x: x, y: y, minx: minx, miny: miny, next: g.buckets[h]})
			g.buckets[h] = int32(len(g.pool) - 1)
		}
	}
}

func (g *hashGrid) query(minx, miny, maxx, maxy int32, visit func(id int32)) {
	for _, id := range g.large {
		visit(id)
	}
	if len(g.buckets) == 0 || minx > maxx || miny > maxy {
		return
	}
	first := func(item *gridItem) bool {
		return item.x == max(item.minx, minx) && item.y == max(item.miny, miny)
	}
	// Sparse items under a wide box, scanning the pool is cheaper.
	if cellCount(minx, miny, maxx, maxy) > int64(len(g.pool)) {
		for i := range g.pool {
			item := &g.pool[i]
			if item.x <= maxx && item.y <= maxy && first(item) {
				visit(item.id)
			}
		}
		return
	}
	n := int32(len(g.buckets))
	for y := miny; y <= maxy; y++ {
		for x := minx; x <= maxx; x++ {
			idx := g.buckets[hashPos2(x, y, n)]
			for idx != -1 {
				item := &g.pool[idx]
				if item.x == x && item.y == y && first(item) {
					visit(item.id)
				}
				idx = item.next
			}
		}
	}
}

// ProximityGrid is a hashed uniform grid over the xz-plane holding agents
// (by their radius bounds) and obstacle edges (by their segment bounds).
type ProximityGrid struct {
	cellSize    float32
	invCellSize float32

	agentGrid hashGrid
	edgeGrid  hashGrid
	agents    []*Agent
	edges     []*ObstacleVertex

	bounds [4]int32
}

func NewProximityGrid(cellSize float32) *ProximityGrid {
	if cellSize <= 0 {
		panic("rvo: proximity grid cell size must be > 0")
	}
	return &ProximityGrid{cellSize: cellSize, invCellSize: 1 / cellSize}
}

func (d *ProximityGrid) CellSize() float32 { return d.cellSize }
func (d *ProximityGrid) Bounds() [4]int32  { return d.bounds }

// Cell coordinates are kept well inside int32 so that loops over a cell
// range can not overflow.
const maxCell = 1 << 30

func (d *ProximityGrid) cell(v float32) int32 {
	c := math.Floor(float64(v) * float64(d.invCellSize))
	if !(c > -maxCell) {
		return -maxCell
	}
	return int32(min(c, maxCell))
}

func (d *ProximityGrid) expand(minx, miny, maxx, maxy int32) {
	d.bounds[0] = min(d.bounds[0], minx)
	d.bounds[1] = min(d.bounds[1], miny)
	d.bounds[2] = max(d.bounds[2], maxx)
	d.bounds[3] = max(d.bounds[3], maxy)
}

func (d *ProximityGrid) Rebuild(agents []*Agent, edges []*ObstacleVertex) {
	d.agents = agents
	d.edges = edges
	d.bounds = [4]int32{math.MaxInt32, math.MaxInt32, math.MinInt32, math.MinInt32}

	d.agentGrid.reset(len(agents))
	for i, ag := range agents {
		p := common.To2D(ag.position)
		r := ag.hot.Radius
		minx, miny := d.cell(p[0]-r), d.cell(p[1]-r)
		maxx, maxy := d.cell(p[0]+r), d.cell(p[1]+r)
		d.expand(minx, miny, maxx, maxy)
		d.agentGrid.add(int32(i), minx, miny, maxx, maxy)
	}

	d.edgeGrid.reset(len(edges))
	for i, v := range edges {
		a, b := v.Position2D(), v.Next.Position2D()
		minx, miny := d.cell(min(a[0], b[0])), d.cell(min(a[1], b[1]))
		maxx, maxy := d.cell(max(a[0], b[0])), d.cell(max(a[1], b[1]))
		d.expand(minx, miny, maxx, maxy)
		d.edgeGrid.add(int32(i), minx, miny, maxx, maxy)
	}
}

// queryBox returns the cells covered by the query clipped to the occupied
// bounds. The box is empty (min > max) when it misses every item.
func (d *ProximityGrid) queryBox(pos Vec2, radius float32) (int32, int32, int32, int32) {
	minx := max(d.cell(pos[0]-radius), d.bounds[0])
	miny := max(d.cell(pos[1]-radius), d.bounds[1])
	maxx := min(d.cell(pos[0]+radius), d.bounds[2])
	maxy := min(d.cell(pos[1]+radius), d.bounds[3])
	return minx, miny, maxx, maxy
}

func (d *ProximityGrid) QueryAgents(pos Vec2, radius float32, visit func(a *Agent)) {
	minx, miny, maxx, maxy := d.queryBox(pos, radius)
	d.agentGrid.query(minx, miny, maxx, maxy, func(id int32) {
		visit(d.agents[id])
	})
}

func (d *ProximityGrid) QueryObstacles(pos Vec2, radius float32, visit func(v *ObstacleVertex)) {
	minx, miny, maxx, maxy := d.queryBox(pos, radius)
	d.edgeGrid.query(minx, miny, maxx, maxy, func(id int32) {
		visit(d.edges[id])
	})
}

// ItemCountAt returns the number of agents registered in cell (x, y).
func (d *ProximityGrid) ItemCountAt(x, y int32) int {
	if len(d.agentGrid.buckets) == 0 {
		return 0
	}
	n := 0
	idx := d.agentGrid.buckets[hashPos2(x, y, int32(len(d.agentGrid.buckets)))]
	for idx != -1 {
		item := &d.agentGrid.pool[idx]
		if item.x == x && item.y == y {
			n++
		}
		idx = item.next
	}
	return n
}

func nextPow2(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
