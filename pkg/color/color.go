// Package color converts hue angles to 8-bit RGB for driving status LEDs and
// displays.
package color

import (
	"image/color"
	"math"
)

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B uint8
}

// Common LED colors.
var (
	Off    = RGB{}
	Red    = RGB{R: 255}
	Green  = RGB{G: 255}
	Blue   = RGB{B: 255}
	Yellow = RGB{R: 255, G: 255}
)

// RGBA returns c as an opaque image/color value.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// RGB565 packs c into the 16-bit format used by small TFT panels.
func (c RGB) RGB565() uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// FromRGB565 expands a 16-bit TFT color to 8-bit channels, replicating the
// high bits so that 0x1F and 0x3F map to 255.
func FromRGB565(v uint16) RGB {
	r5 := uint8(v >> 11 & 0x1F)
	g6 := uint8(v >> 5 & 0x3F)
	b5 := uint8(v & 0x1F)
	return RGB{
		R: r5<<3 | r5>>2,
		G: g6<<2 | g6>>4,
		B: b5<<3 | b5>>2,
	}
}

// HueToRGB converts a hue angle in degrees at full saturation and value to
// 8-bit channels. The hue is reduced modulo 360 first, so 360 maps to 0 and
// negative hues wrap forward.
func HueToRGB(hue float64) (r, g, b uint8) {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}

	const s, v = 1.0, 1.0
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = c, x, 0
	case h < 120:
		rf, gf, bf = x, c, 0
	case h < 180:
		rf, gf, bf = 0, c, x
	case h < 240:
		rf, gf, bf = 0, x, c
	case h < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	return toByte(rf + m), toByte(gf + m), toByte(bf + m)
}

// Hue is HueToRGB returning an RGB value.
func Hue(hue float64) RGB {
	r, g, b := HueToRGB(hue)
	return RGB{R: r, G: g, B: b}
}

func toByte(v float64) uint8 {
	v = math.Round(v * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Scale maps v from [0, inMax] onto [0, outMax] with integer arithmetic,
// clamping v to the input range.
func Scale(v, inMax, outMax int) int {
	if inMax <= 0 {
		return 0
	}
	if v < 0 {
		v = 0
	}
	if v > inMax {
		v = inMax
	}
	return v * outMax / inMax
}
