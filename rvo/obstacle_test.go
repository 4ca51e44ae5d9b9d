package rvo

import (
	"testing"
)

func TestObstacleEncloses(t *testing.T) {
	square := buildObstacle([]Vec3{{0, 0, 0}, {4, 0, 0}, {4, 0, 4}, {0, 0, 4}}, 1, AllLayers)
	assertTrue(t, square.Encloses(Vec2{2, 0.1}), "point inside the square")
	assertTrue(t, square.Next.Next.Encloses(Vec2{2, 0.1}), "any vertex of the ring answers the same")
	assertTrue(t, !square.Encloses(Vec2{2, -0.55}), "point outside the square")

	// L shape, the notch at the top right is outside.
	l := buildObstacle([]Vec3{{0, 0, 0}, {4, 0, 0}, {4, 0, 2}, {2, 0, 2}, {2, 0, 4}, {0, 0, 4}}, 1, AllLayers)
	assertTrue(t, l.Encloses(Vec2{1, 3}), "inside the upright of the L")
	assertTrue(t, l.Encloses(Vec2{3, 1}), "inside the foot of the L")
	assertTrue(t, !l.Encloses(Vec2{3, 3}), "notch is outside")

	seg := buildObstacle([]Vec3{{-1, 0, 0}, {1, 0, 0}}, 1, AllLayers)
	assertTrue(t, !seg.Encloses(Vec2{0, 0.1}) && !seg.Encloses(Vec2{0, -0.1}), "segments enclose nothing")
}

func TestVertexCountAndDir(t *testing.T) {
	box := buildObstacle([]Vec3{{0, 0, 0}, {2, 0, 0}, {2, 0, 2}}, 1, AllLayers)
	assertTrue(t, vertexCount(box) == 3, "three vertices")
	assertTrue(t, box.Dir == Vec2{1, 0} && box.Prev.Next == box, "linked with unit directions")
	assertTrue(t, box.OverlapsBand(0.5, 2) && !box.OverlapsBand(1.5, 2), "vertical band")
}
