package model

import (
	"fmt"
	"image/color"
)

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// Color is a packed 0x00RRGGBB value, the same layout rpi_ws281x keeps in its
// LED buffer and hands back from a pixel read.
type Color uint32

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

// RGB packs three 8-bit channels.
func RGB(r, g, b uint8) Color {
	var v uint32
	v = setcolor(v, r, RED_OFFSET)
	v = setcolor(v, g, GREEN_OFFSET)
	v = setcolor(v, b, BLUE_OFFSET)
	return Color(v)
}

func (c Color) R() uint8 { return getcolor(uint32(c), RED_OFFSET) }
func (c Color) G() uint8 { return getcolor(uint32(c), GREEN_OFFSET) }
func (c Color) B() uint8 { return getcolor(uint32(c), BLUE_OFFSET) }

func (c Color) WithR(r uint8) Color { return Color(setcolor(uint32(c), r, RED_OFFSET)) }
func (c Color) WithG(g uint8) Color { return Color(setcolor(uint32(c), g, GREEN_OFFSET)) }
func (c Color) WithB(b uint8) Color { return Color(setcolor(uint32(c), b, BLUE_OFFSET)) }

// Scale multiplies every channel by f and truncates. f is clamped to [0,1].
func (c Color) Scale(f float64) Color {
	if f <= 0 {
		return Off
	}
	if f >= 1 {
		return c
	}
	return RGB(
		uint8(float64(c.R())*f),
		uint8(float64(c.G())*f),
		uint8(float64(c.B())*f),
	)
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: 255}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
}

// FromHSV converts hue/saturation/value in [0,1] to a packed color, each
// channel truncated from v*255.
func FromHSV(h, s, v float64) Color {
	r, g, b := hsvToRGB(h, s, v)
	return RGB(uint8(r*255), uint8(g*255), uint8(b*255))
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	if s == 0 {
		return v, v, v
	}
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - f*s)
	t := v * (1.0 - (1.0-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
