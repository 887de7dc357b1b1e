package decor

import (
	"image"
	stdcolor "image/color"

	"github.com/itohio/badgelab/pkg/color"
)

// Framebuffer is an RGB565 pixel buffer the size of a small TFT panel. It
// implements image.Image so it can be shown by any image consumer.
// Drawing outside the buffer is clipped.
type Framebuffer struct {
	w, h int
	pix  []uint16
}

// NewFramebuffer allocates a black w x h buffer.
func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{w: w, h: h, pix: make([]uint16, w*h)}
}

// ColorModel implements image.Image.
func (f *Framebuffer) ColorModel() stdcolor.Model { return stdcolor.RGBAModel }

// Bounds implements image.Image.
func (f *Framebuffer) Bounds() image.Rectangle { return image.Rect(0, 0, f.w, f.h) }

// At implements image.Image.
func (f *Framebuffer) At(x, y int) stdcolor.Color {
	return color.FromRGB565(f.Pixel(x, y)).RGBA()
}

// Pixel returns the raw RGB565 value at x, y, or 0 outside the buffer.
func (f *Framebuffer) Pixel(x, y int) uint16 {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return 0
	}
	return f.pix[y*f.w+x]
}

// SetPixel sets a single pixel.
func (f *Framebuffer) SetPixel(x, y int, c color.RGB) {
	f.set(x, y, c.RGB565())
}

func (f *Framebuffer) set(x, y int, v uint16) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.pix[y*f.w+x] = v
}

// Fill paints the whole buffer.
func (f *Framebuffer) Fill(c color.RGB) {
	v := c.RGB565()
	for i := range f.pix {
		f.pix[i] = v
	}
}

// FillRect paints a w x h rectangle with its top left corner at x, y.
func (f *Framebuffer) FillRect(x, y, w, h int, c color.RGB) {
	v := c.RGB565()
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, f.w), min(y+h, f.h)
	for py := y0; py < y1; py++ {
		row := f.pix[py*f.w:]
		for px := x0; px < x1; px++ {
			row[px] = v
		}
	}
}

// DrawRect outlines a w x h rectangle.
func (f *Framebuffer) DrawRect(x, y, w, h int, c color.RGB) {
	if w <= 0 || h <= 0 {
		return
	}
	f.FillRect(x, y, w, 1, c)
	f.FillRect(x, y+h-1, w, 1, c)
	f.FillRect(x, y, 1, h, c)
	f.FillRect(x+w-1, y, 1, h, c)
}

// DrawLine draws a one pixel line between two points (Bresenham).
func (f *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGB) {
	v := c.RGB565()
	dx, sx := abs(x1-x0), sign(x1-x0)
	dy, sy := -abs(y1-y0), sign(y1-y0)
	e := dx + dy
	for {
		f.set(x0, y0, v)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// FillCircle paints every pixel within r of cx, cy.
func (f *Framebuffer) FillCircle(cx, cy, r int, c color.RGB) {
	v := c.RGB565()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				f.set(cx+dx, cy+dy, v)
			}
		}
	}
}

// Quadrants of a circle for DrawArc.
const (
	TopLeft = 1 << iota
	TopRight
	BottomRight
	BottomLeft
)

// DrawArc outlines the quadrants of a circle selected by the corners mask.
func (f *Framebuffer) DrawArc(cx, cy, r, corners int, c color.RGB) {
	v := c.RGB565()
	x, y := r, 0
	e := 1 - r
	for x >= y {
		for _, p := range [][2]int{{x, y}, {y, x}} {
			dx, dy := p[0], p[1]
			if corners&TopLeft != 0 {
				f.set(cx-dx, cy-dy, v)
			}
			if corners&TopRight != 0 {
				f.set(cx+dx, cy-dy, v)
			}
			if corners&BottomRight != 0 {
				f.set(cx+dx, cy+dy, v)
			}
			if corners&BottomLeft != 0 {
				f.set(cx-dx, cy+dy, v)
			}
		}
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
}

// FillTriangle paints the triangle with the given corners, edges included.
func (f *Framebuffer) FillTriangle(x0, y0, x1, y1, x2, y2 int, c color.RGB) {
	v := c.RGB565()
	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		f.DrawLine(x0, y0, x1, y1, c)
		f.DrawLine(x1, y1, x2, y2, c)
		return
	}
	minX, maxX := min(x0, x1, x2), max(x0, x1, x2)
	minY, maxY := min(y0, y1, y2), max(y0, y1, y2)
	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			w0 := edge(x1, y1, x2, y2, px, py)
			w1 := edge(x2, y2, x0, y0, px, py)
			w2 := edge(x0, y0, x1, y1, px, py)
			if area < 0 {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				f.set(px, py, v)
			}
		}
	}
}

// edge is twice the signed area of the triangle a, b, p.
func edge(ax, ay, bx, by, px, py int) int {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
