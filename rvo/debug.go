package rvo

import (
	"math"

	"github.com/gorustyt/gorvo/common"
)

// DebugData records the VOs and evaluated samples of one agent's last solve.
type DebugData struct {
	nsamples   int
	maxSamples int
	vel        []Vec2
	ssize      []float32
	pen        []float32

	vos    []VO
	origin Vec3
	result Vec2
}

func NewDebugData(maxSamples int) *DebugData {
	d := &DebugData{}
	d.maxSamples = maxSamples
	d.vel = make([]Vec2, d.maxSamples)
	d.ssize = make([]float32, d.maxSamples)
	d.pen = make([]float32, d.maxSamples)
	return d
}

func (d *DebugData) reset(origin Vec3) {
	d.nsamples = 0
	d.vos = d.vos[:0]
	d.origin = origin
	d.result = Vec2{}
}

func (d *DebugData) addVO(vo *VO) {
	d.vos = append(d.vos, *vo)
}

func (d *DebugData) addSample(vel Vec2, ssize, pen float32) {
	if d.nsamples >= d.maxSamples {
		return
	}
	d.vel[d.nsamples] = vel
	d.ssize[d.nsamples] = ssize
	d.pen[d.nsamples] = pen
	d.nsamples++
}

func (d *DebugData) GetSampleCount() int            { return d.nsamples }
func (d *DebugData) GetSampleVelocity(i int) Vec2   { return d.vel[i] }
func (d *DebugData) GetSampleSize(i int) float32    { return d.ssize[i] }
func (d *DebugData) GetSamplePenalty(i int) float32 { return d.pen[i] }
func (d *DebugData) GetVOCount() int                { return len(d.vos) }
func (d *DebugData) GetVO(i int) *VO                { return &d.vos[i] }
func (d *DebugData) Origin() Vec3                   { return d.origin }
func (d *DebugData) Result() Vec2                   { return d.result }

// NormalizeSamples maps the recorded penalties to [0, 1].
func (d *DebugData) NormalizeSamples() {
	normalizeArray(d.pen[:d.nsamples])
}

func normalizeArray(arr []float32) {
	minPen := float32(math.MaxFloat32)
	maxPen := float32(-math.MaxFloat32)
	for _, v := range arr {
		minPen = min(minPen, v)
		maxPen = max(maxPen, v)
	}
	penRange := maxPen - minPen
	s := float32(1)
	if penRange > 0.001 {
		s = 1.0 / penRange
	}
	for i := range arr {
		arr[i] = common.Clamp((arr[i]-minPen)*s, 0.0, 1.0)
	}
}
