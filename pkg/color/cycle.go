package color

import (
	"math"
	"time"
)

// Cycle steps a hue around the color wheel, wrapping at 360 back to 0 so a
// continuous loop has no seam. A Cycle is not safe for concurrent use.
type Cycle struct {
	hue  float64
	step float64
}

// NewCycle returns a Cycle starting at red that advances step degrees per
// call to Next. A non-positive step defaults to one degree.
func NewCycle(step float64) *Cycle {
	if step <= 0 {
		step = 1
	}
	return &Cycle{step: step}
}

// Hue returns the hue that the next call to Next will render.
func (c *Cycle) Hue() float64 {
	return c.hue
}

// Next returns the color at the current hue and advances.
func (c *Cycle) Next() RGB {
	out := Hue(c.hue)
	c.hue = math.Mod(c.hue+c.step, 360)
	return out
}

// Reset moves the cycle back to red.
func (c *Cycle) Reset() {
	c.hue = 0
}

// Steps returns how many frames of length tick fit in d, and the hue
// increment that spreads one full turn over them. At least one frame is
// returned.
func Steps(d, tick time.Duration) (frames int, step float64) {
	if tick <= 0 || d < tick {
		return 1, 360
	}
	frames = int(d / tick)
	return frames, 360 / float64(frames)
}
