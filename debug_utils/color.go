package debug_utils

// Colorb is an RGBA color, one byte per channel.
type Colorb [4]uint8

func (c Colorb) R() uint8 { return c[0] }
func (c Colorb) G() uint8 { return c[1] }
func (c Colorb) B() uint8 { return c[2] }
func (c Colorb) A() uint8 { return c[3] }

// Int packs the color as 0xAABBGGRR.
func (c Colorb) Int() uint32 {
	return uint32(c.R()) | (uint32(c.G()) << 8) | (uint32(c.B()) << 16) | (uint32(c.A()) << 24)
}

func (c *Colorb) FromInt(col uint32) {
	c[0] = uint8(col & 0xff)
	c[1] = uint8((col >> 8) & 0xff)
	c[2] = uint8((col >> 16) & 0xff)
	c[3] = uint8((col >> 24) & 0xff)
}

var (
	colAgent       = Colorb{0, 192, 255, 255}
	colLocked      = Colorb{128, 128, 128, 255}
	colVelocity    = Colorb{0, 255, 64, 255}
	colDesired     = Colorb{255, 192, 0, 192}
	colNeighbour   = Colorb{255, 255, 255, 64}
	colObstacle    = Colorb{255, 64, 0, 192}
	colVOBoundary  = Colorb{255, 0, 128, 160}
	colSampleGood  = Colorb{0, 255, 0, 220}
	colSampleBad   = Colorb{255, 0, 0, 220}
	colResultCross = Colorb{255, 255, 0, 255}
)
