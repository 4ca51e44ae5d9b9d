package rvo

import (
	"github.com/gorustyt/gorvo/common"
)

// Layer is a bitmask used to filter which agents and obstacles interact.
type Layer uint32

const AllLayers Layer = 0xffffffff

// ObstacleVertex is one node of a closed obstacle polyline. The edge from a
// vertex to its next vertex is blocked; agents are expected on its right
// side (vertices wound counter-clockwise on the xz-plane enclose a solid).
type ObstacleVertex struct {
	Position Vec3    ///< World position of the vertex.
	Dir      Vec2    ///< Unit direction toward next on the xz-plane.
	Height   float32 ///< Vertical extent above Position.Y.
	Layer    Layer
	Ignore   bool ///< Skip the edge starting at this vertex.

	Next, Prev *ObstacleVertex

	id int32 ///< Index into the simulator's edge table, -1 when unregistered.
}

func (v *ObstacleVertex) Position2D() Vec2 { return common.To2D(v.Position) }

// OverlapsBand reports whether the vertical band of the edge intersects [y, y+height].
func (v *ObstacleVertex) OverlapsBand(y, height float32) bool {
	return !(y > v.Position[1]+v.Height || y+height < v.Position[1])
}

// SqrDistance returns the squared planar distance from p to the edge.
func (v *ObstacleVertex) SqrDistance(p Vec2) float32 {
	return common.SqrDistancePointSegment2D(v.Position2D(), v.Next.Position2D(), p)
}

// Encloses reports whether p lies inside the polygon v belongs to, by its
// winding number. Segments enclose nothing.
func (v *ObstacleVertex) Encloses(p Vec2) bool {
	winding := 0
	forEachVertex(v, func(e *ObstacleVertex) {
		a, b := e.Position2D(), e.Next.Position2D()
		side := common.Cross2D(b.Sub(a), p.Sub(a))
		if a[1] <= p[1] {
			if b[1] > p[1] && side > 0 {
				winding++
			}
		} else if b[1] <= p[1] && side < 0 {
			winding--
		}
	})
	return winding != 0
}

func (v *ObstacleVertex) updateDir() {
	d, ok := common.Normalize2D(v.Next.Position2D().Sub(v.Position2D()))
	if !ok {
		// Zero length edge, it can never be hit.
		v.Dir = Vec2{}
		return
	}
	v.Dir = d
}

// buildObstacle links the vertices into a circular list and returns its first node.
func buildObstacle(vertices []Vec3, height float32, layer Layer) *ObstacleVertex {
	nodes := make([]*ObstacleVertex, len(vertices))
	for i := range vertices {
		nodes[i] = &ObstacleVertex{Position: vertices[i], Height: height, Layer: layer, id: -1}
	}
	for i, v := range nodes {
		v.Next = nodes[(i+1)%len(nodes)]
		v.Prev = nodes[(i+len(nodes)-1)%len(nodes)]
	}
	for _, v := range nodes {
		v.updateDir()
	}
	return nodes[0]
}

// forEachVertex visits every vertex of the obstacle starting at first.
func forEachVertex(first *ObstacleVertex, fn func(v *ObstacleVertex)) {
	v := first
	for {
		next := v.Next
		fn(v)
		v = next
		if v == first || v == nil {
			return
		}
	}
}

func vertexCount(first *ObstacleVertex) int {
	n := 0
	forEachVertex(first, func(*ObstacleVertex) { n++ })
	return n
}
