package reader

import (
	"context"
	"time"

	"github.com/itohio/badgelab/pkg/access"
	"github.com/itohio/badgelab/pkg/color"
)

// Feedback signals access decisions to the person at the reader.
type Feedback interface {
	// Idle shows the waiting state.
	Idle() error
	// Show plays the signal for level and returns to idle.
	Show(ctx context.Context, level access.Level) error
}

// RGBLED is an RGB LED.
type RGBLED interface {
	SetColor(c color.RGB) error
}

// Timing holds the LED feedback durations.
type Timing struct {
	Granted     time.Duration // Solid green
	Pause       time.Duration // Dark gap before the rainbow
	Rainbow     time.Duration // Full hue cycle
	RainbowTick time.Duration
	Flash       time.Duration // Each half of a red flash
	Flashes     int
}

// DefaultTiming matches the reader hardware.
var DefaultTiming = Timing{
	Granted:     2 * time.Second,
	Pause:       150 * time.Millisecond,
	Rainbow:     5 * time.Second,
	RainbowTick: 20 * time.Millisecond,
	Flash:       150 * time.Millisecond,
	Flashes:     4,
}

// LEDFeedback signals with an RGB LED: blue while idle, green then a rainbow
// when granted, yellow when limited and red flashes when denied.
type LEDFeedback struct {
	LED    RGBLED
	Timing Timing
}

// NewLEDFeedback returns feedback on led with DefaultTiming.
func NewLEDFeedback(led RGBLED) *LEDFeedback {
	return &LEDFeedback{LED: led, Timing: DefaultTiming}
}

// Idle shows blue.
func (f *LEDFeedback) Idle() error {
	return f.LED.SetColor(color.Blue)
}

// Show plays the signal for level. Cancelling ctx cuts the signal short; the
// LED is returned to idle either way.
func (f *LEDFeedback) Show(ctx context.Context, level access.Level) error {
	var err error
	switch level {
	case access.Granted:
		err = f.granted(ctx)
	case access.Limited:
		err = f.hold(ctx, color.Yellow, f.Timing.Granted)
	default:
		err = f.denied(ctx)
	}

	if idleErr := f.Idle(); err == nil {
		err = idleErr
	}
	return err
}

func (f *LEDFeedback) granted(ctx context.Context) error {
	if err := f.hold(ctx, color.Green, f.Timing.Granted); err != nil {
		return err
	}
	if err := f.hold(ctx, color.Off, f.Timing.Pause); err != nil {
		return err
	}

	frames, step := color.Steps(f.Timing.Rainbow, f.Timing.RainbowTick)
	cycle := color.NewCycle(step)
	for range frames {
		if err := f.hold(ctx, cycle.Next(), f.Timing.RainbowTick); err != nil {
			return err
		}
	}
	return nil
}

func (f *LEDFeedback) denied(ctx context.Context) error {
	for range f.Timing.Flashes {
		if err := f.hold(ctx, color.Red, f.Timing.Flash); err != nil {
			return err
		}
		if err := f.hold(ctx, color.Off, f.Timing.Flash); err != nil {
			return err
		}
	}
	return nil
}

// hold shows c for d.
func (f *LEDFeedback) hold(ctx context.Context, c color.RGB, d time.Duration) error {
	if err := f.LED.SetColor(c); err != nil {
		return err
	}
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
