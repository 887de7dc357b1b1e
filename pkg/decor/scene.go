// Package decor draws the decorative TFT display: a school crest and a
// blocky character face, swapped on a timer, with a backlight dimmed by a
// potentiometer.
package decor

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/itohio/badgelab/pkg/color"
)

// Panel geometry in landscape orientation.
const (
	Width  = 320
	Height = 240
)

// Scene selects what the display shows.
type Scene int

const (
	Logo Scene = iota
	Steve
)

// Next returns the other scene.
func (s Scene) Next() Scene {
	if s == Logo {
		return Steve
	}
	return Logo
}

func (s Scene) String() string {
	switch s {
	case Logo:
		return "logo"
	case Steve:
		return "steve"
	}
	return "unknown"
}

// Palette, defined in the panel's native RGB565.
var (
	Background = color.FromRGB565(0x2D43)
	SkyBlue    = color.FromRGB565(0x867D)
	DarkBlue   = color.FromRGB565(0x324D)
	HillLight  = color.FromRGB565(0x7E08)
	HillDark   = color.FromRGB565(0x44C4)
	Brown      = color.FromRGB565(0x8200)
	TextGrey   = color.FromRGB565(0x4208)
	AppleRed   = color.FromRGB565(0xF800)

	Skin  = color.FromRGB565(0xFD4B)
	Hair  = color.FromRGB565(0x4200)
	Eye   = color.FromRGB565(0x421F)
	Mouth = color.FromRGB565(0x6180)
	White = color.FromRGB565(0xFFFF)
)

// Scene placement.
const (
	logoX, logoY   = 20, 60
	steveX, steveY = 100, 60
	steveScale     = 15
	textScale      = 3
)

// Render clears fb to the background and draws scene on it.
func Render(fb *Framebuffer, scene Scene) {
	fb.Fill(Background)
	switch scene {
	case Logo:
		drawLogo(fb, logoX, logoY)
	case Steve:
		drawSteve(fb, steveX, steveY, steveScale)
	}
}

func drawLogo(fb *Framebuffer, x, y int) {
	// Shield
	fb.FillRect(x, y, 120, 100, SkyBlue)
	fb.FillTriangle(x, y+100, x+120, y+100, x+60, y+150, SkyBlue)

	// Hills
	fb.FillCircle(x+30, y+115, 45, HillLight)
	fb.FillCircle(x+90, y+105, 40, HillLight)

	// Tree with apples
	fb.FillRect(x+58, y+55, 6, 20, Brown)
	fb.FillCircle(x+60, y+45, 18, HillDark)
	fb.FillCircle(x+52, y+42, 3, AppleRed)
	fb.FillCircle(x+68, y+48, 3, AppleRed)
	fb.FillCircle(x+60, y+35, 3, AppleRed)

	// Shield outline
	fb.DrawRect(x, y, 120, 100, DarkBlue)
	fb.DrawLine(x, y+100, x+60, y+150, DarkBlue)
	fb.DrawLine(x+120, y+100, x+60, y+150, DarkBlue)

	fb.DrawArc(x+40, y+110, 30, TopRight, HillDark)
	fb.DrawArc(x+80, y+100, 35, TopLeft, HillDark)

	drawText(fb, x+140, y+30, textScale, "Bridge", TextGrey)
	drawText(fb, x+140, y+65, textScale, "Farm", TextGrey)
}

// drawSteve draws an 8x8 block face, each block s pixels wide.
func drawSteve(fb *Framebuffer, x, y, s int) {
	fb.FillRect(x, y, 8*s, 8*s, Skin)

	fb.FillRect(x, y, 8*s, 2*s, Hair)
	fb.FillRect(x, y+2*s, s, 3*s, Hair)
	fb.FillRect(x+7*s, y+2*s, s, 3*s, Hair)

	fb.FillRect(x+s, y+4*s, 2*s, s, White)
	fb.FillRect(x+s, y+4*s, s, s, Eye)
	fb.FillRect(x+5*s, y+4*s, 2*s, s, White)
	fb.FillRect(x+6*s, y+4*s, s, s, Eye)

	fb.FillRect(x+3*s, y+5*s, 2*s, s, Mouth)
	fb.FillRect(x+2*s, y+6*s, 4*s, s, Mouth)
}

// drawText renders text in the fixed 7x13 face, every font pixel blown up
// to a scale x scale block. x, y is the top left corner of the text.
func drawText(fb *Framebuffer, x, y, scale int, text string, c color.RGB) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	glyphs := image.NewAlpha(image.Rect(0, 0, w, face.Height))

	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	for py := 0; py < face.Height; py++ {
		for px := 0; px < w; px++ {
			if glyphs.AlphaAt(px, py).A == 0 {
				continue
			}
			fb.FillRect(x+px*scale, y+py*scale, scale, scale, c)
		}
	}
}
