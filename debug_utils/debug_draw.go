package debug_utils

import (
	"math"

	"github.com/gorustyt/gorvo/common"
)

type DuDebugDrawPrimitives int

const (
	DU_DRAW_POINTS DuDebugDrawPrimitives = iota
	DU_DRAW_LINES
	DU_DRAW_TRIS
	DU_DRAW_QUADS
)

// / Abstract debug draw interface.
type DuDebugDraw interface {
	DepthMask(state bool)

	/// Begin drawing primitives.
	///  @param prim [in] primitive type to draw, one of DuDebugDrawPrimitives.
	///  @param size [in] size of a primitive, applies to point size and line width only.
	Begin(prim DuDebugDrawPrimitives, size ...float32)

	/// Submit a vertex
	///  @param x,y,z [in] position of the verts.
	///  @param color [in] color of the verts.
	Vertex1(x, y, z float32, color Colorb)

	/// End drawing primitives.
	End()
}

func DuRGBA[T int | int32 | uint8](r, g, b, a T) Colorb {
	return Colorb{uint8(r), uint8(g), uint8(b), uint8(a)}
}

func DuRGBAf(fr, fg, fb, fa float32) Colorb {
	return DuRGBA(int(fr*255.0), int(fg*255.0), int(fb*255.0), int(fa*255.0))
}

func DuLerpCol(ca, cb Colorb, u uint8) Colorb {
	var res Colorb
	for i := range res {
		res[i] = uint8((int(ca[i])*(255-int(u)) + int(cb[i])*int(u)) / 255)
	}
	return res
}

func DuTransCol(c Colorb, a uint8) Colorb {
	return Colorb{c.R(), c.G(), c.B(), a}
}

func DuDarkenCol(col Colorb) (res Colorb) {
	i := col.Int()
	res.FromInt(((i >> 1) & 0x007f7f7f) | (i & 0xff000000))
	return res
}

func duVertex(dd DuDebugDraw, p common.Vec3, col Colorb) {
	dd.Vertex1(p[0], p[1], p[2], col)
}

func DuAppendLine(dd DuDebugDraw, a, b common.Vec3, col Colorb) {
	if dd == nil {
		return
	}
	duVertex(dd, a, col)
	duVertex(dd, b, col)
}

func appendArrowHead(dd DuDebugDraw, p, q common.Vec3, s float32, col Colorb) {
	const eps = 0.001
	az := q.Sub(p)
	if az.Dot(az) < eps*eps {
		return
	}
	az = az.Normalize()
	ax := common.Vec3{0, 1, 0}.Cross(az)
	if ax.Dot(ax) < eps*eps {
		return
	}
	ax = ax.Normalize()

	duVertex(dd, p, col)
	duVertex(dd, p.Add(az.Mul(s)).Add(ax.Mul(s/3)), col)
	duVertex(dd, p, col)
	duVertex(dd, p.Add(az.Mul(s)).Sub(ax.Mul(s/3)), col)
}

// DuAppendArrow appends a line from a to b with optional heads of size as0 at a and as1 at b.
func DuAppendArrow(dd DuDebugDraw, a, b common.Vec3, as0, as1 float32, col Colorb) {
	if dd == nil {
		return
	}
	duVertex(dd, a, col)
	duVertex(dd, b, col)
	if as0 > 0.001 {
		appendArrowHead(dd, a, b, as0, col)
	}
	if as1 > 0.001 {
		appendArrowHead(dd, b, a, as1, col)
	}
}

const circleSegments = 40

var circleDir [circleSegments * 2]float32

func init() {
	for i := 0; i < circleSegments; i++ {
		a := float64(i) / circleSegments * math.Pi * 2
		circleDir[i*2] = float32(math.Cos(a))
		circleDir[i*2+1] = float32(math.Sin(a))
	}
}

func DuAppendCircle(dd DuDebugDraw, x, y, z, r float32, col Colorb) {
	if dd == nil {
		return
	}
	for i, j := 0, circleSegments-1; i < circleSegments; j, i = i, i+1 {
		dd.Vertex1(x+circleDir[j*2+0]*r, y, z+circleDir[j*2+1]*r, col)
		dd.Vertex1(x+circleDir[i*2+0]*r, y, z+circleDir[i*2+1]*r, col)
	}
}

func DuAppendCross(dd DuDebugDraw, x, y, z, s float32, col Colorb) {
	if dd == nil {
		return
	}
	dd.Vertex1(x-s, y, z, col)
	dd.Vertex1(x+s, y, z, col)
	dd.Vertex1(x, y-s, z, col)
	dd.Vertex1(x, y+s, z, col)
	dd.Vertex1(x, y, z-s, col)
	dd.Vertex1(x, y, z+s, col)
}

func DuDebugDrawCircle(dd DuDebugDraw, x, y, z, r float32, col Colorb, lineWidth float32) {
	if dd == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, lineWidth)
	DuAppendCircle(dd, x, y, z, r, col)
	dd.End()
}

func DuDebugDrawGridXZ(dd DuDebugDraw, ox, oy, oz float32, w, h int, size float32, col Colorb, lineWidth float32) {
	if dd == nil {
		return
	}
	dd.Begin(DU_DRAW_LINES, lineWidth)
	for i := 0; i <= h; i++ {
		dd.Vertex1(ox, oy, oz+float32(i)*size, col)
		dd.Vertex1(ox+float32(w)*size, oy, oz+float32(i)*size, col)
	}
	for i := 0; i <= w; i++ {
		dd.Vertex1(ox+float32(i)*size, oy, oz, col)
		dd.Vertex1(ox+float32(i)*size, oy, oz+float32(h)*size, col)
	}
	dd.End()
}

type displayVertex struct {
	pos   common.Vec3
	color Colorb
}

type displayBatch struct {
	prim  DuDebugDrawPrimitives
	size  float32
	first int
	count int
}

// DuDisplayList records draw calls so they can be replayed into another
// DuDebugDraw, or inspected.
type DuDisplayList struct {
	verts     []displayVertex
	batches   []displayBatch
	depthMask bool
}

func NewDuDisplayList(capacity int) *DuDisplayList {
	return &DuDisplayList{verts: make([]displayVertex, 0, capacity), depthMask: true}
}

func (d *DuDisplayList) Clear() {
	d.verts = d.verts[:0]
	d.batches = d.batches[:0]
}

func (d *DuDisplayList) DepthMask(state bool) { d.depthMask = state }

func (d *DuDisplayList) Begin(prim DuDebugDrawPrimitives, size ...float32) {
	s := float32(1)
	if len(size) > 0 {
		s = size[0]
	}
	d.batches = append(d.batches, displayBatch{prim: prim, size: s, first: len(d.verts)})
}

func (d *DuDisplayList) Vertex1(x, y, z float32, color Colorb) {
	if len(d.batches) == 0 {
		d.Begin(DU_DRAW_POINTS)
	}
	d.verts = append(d.verts, displayVertex{pos: common.Vec3{x, y, z}, color: color})
	d.batches[len(d.batches)-1].count++
}

func (d *DuDisplayList) End() {}

func (d *DuDisplayList) VertexCount() int { return len(d.verts) }
func (d *DuDisplayList) BatchCount() int  { return len(d.batches) }

// Draw replays the recorded primitives into dd.
func (d *DuDisplayList) Draw(dd DuDebugDraw) {
	if dd == nil {
		return
	}
	dd.DepthMask(d.depthMask)
	for _, b := range d.batches {
		dd.Begin(b.prim, b.size)
		for _, v := range d.verts[b.first : b.first+b.count] {
			duVertex(dd, v.pos, v.color)
		}
		dd.End()
	}
	dd.DepthMask(true)
}
