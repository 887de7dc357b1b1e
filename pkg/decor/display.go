package decor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/itohio/badgelab/pkg/color"
)

// Default timing of the display loop.
const (
	DefaultToggleInterval = 20 * time.Second
	DefaultPollInterval   = 200 * time.Millisecond
)

// MaxPot is the full scale reading of the 12-bit potentiometer ADC.
const MaxPot = 4095

// Brightness maps a potentiometer reading onto an 8-bit backlight level.
func Brightness(pot int) uint8 {
	return uint8(color.Scale(pot, MaxPot, 255))
}

// Dimmer sets the backlight level.
type Dimmer interface {
	SetBrightness(v uint8) error
}

// Option configures a Display.
type Option func(*Display)

// WithToggleInterval sets how long each scene stays on screen.
func WithToggleInterval(interval time.Duration) Option {
	return func(d *Display) { d.toggle = interval }
}

// WithPollInterval sets how often the potentiometer is read.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Display) { d.poll = interval }
}

// OnFrame registers a callback invoked with every newly rendered frame. The
// frame is not modified afterwards.
func OnFrame(fn func(*Framebuffer, Scene)) Option {
	return func(d *Display) { d.onFrame = fn }
}

// Display alternates the scenes and follows the potentiometer with the
// backlight.
type Display struct {
	pot     func() int
	dimmer  Dimmer
	toggle  time.Duration
	poll    time.Duration
	onFrame func(*Framebuffer, Scene)

	mu         sync.Mutex
	scene      Scene
	frame      *Framebuffer
	brightness int // Last level written, -1 before the first write
}

// NewDisplay creates a display showing the logo. pot returns the current
// potentiometer reading.
func NewDisplay(pot func() int, dimmer Dimmer, opts ...Option) *Display {
	d := &Display{
		pot:        pot,
		dimmer:     dimmer,
		toggle:     DefaultToggleInterval,
		poll:       DefaultPollInterval,
		brightness: -1,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.frame = d.render(Logo)
	return d
}

// Frame returns the current frame and its scene.
func (d *Display) Frame() (*Framebuffer, Scene) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame, d.scene
}

// Brightness returns the last backlight level written, or -1.
func (d *Display) Brightness() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

// Run drives the display until ctx is cancelled.
func (d *Display) Run(ctx context.Context) error {
	d.emit()
	d.Poll()

	toggle := time.NewTicker(d.toggle)
	defer toggle.Stop()
	poll := time.NewTicker(d.poll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-toggle.C:
			d.Toggle()
		case <-poll.C:
			d.Poll()
		}
	}
}

// Toggle switches to the other scene.
func (d *Display) Toggle() {
	d.mu.Lock()
	next := d.scene.Next()
	d.mu.Unlock()

	fb := d.render(next)

	d.mu.Lock()
	d.scene, d.frame = next, fb
	d.mu.Unlock()
	d.emit()
}

// Poll reads the potentiometer and updates the backlight when the level
// changed.
func (d *Display) Poll() {
	level := Brightness(d.pot())

	d.mu.Lock()
	unchanged := d.brightness == int(level)
	d.mu.Unlock()
	if unchanged || d.dimmer == nil {
		return
	}

	if err := d.dimmer.SetBrightness(level); err != nil {
		log.Printf("Failed to set backlight: %v", err)
		return
	}
	d.mu.Lock()
	d.brightness = int(level)
	d.mu.Unlock()
}

func (d *Display) render(scene Scene) *Framebuffer {
	fb := NewFramebuffer(Width, Height)
	Render(fb, scene)
	return fb
}

func (d *Display) emit() {
	if d.onFrame == nil {
		return
	}
	fb, scene := d.Frame()
	d.onFrame(fb, scene)
}
