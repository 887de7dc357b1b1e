package decor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingDimmer struct {
	mu     sync.Mutex
	levels []uint8
	err    error
}

func (d *recordingDimmer) SetBrightness(v uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.levels = append(d.levels, v)
	return nil
}

func (d *recordingDimmer) Levels() []uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint8(nil), d.levels...)
}

func TestBrightness(t *testing.T) {
	assert.Equal(t, uint8(0), Brightness(0))
	assert.Equal(t, uint8(127), Brightness(2048))
	assert.Equal(t, uint8(255), Brightness(MaxPot))
	assert.Equal(t, uint8(255), Brightness(5000), "over range clamps")
	assert.Equal(t, uint8(0), Brightness(-3))
}

func TestDisplay_PollWritesOnChange(t *testing.T) {
	pot := 0
	dimmer := &recordingDimmer{}
	d := NewDisplay(func() int { return pot }, dimmer)

	d.Poll()
	d.Poll()
	pot = MaxPot
	d.Poll()

	assert.Equal(t, []uint8{0, 255}, dimmer.Levels())
	assert.Equal(t, 255, d.Brightness())
}

func TestDisplay_PollRetriesFailedWrite(t *testing.T) {
	dimmer := &recordingDimmer{err: errors.New("bus error")}
	d := NewDisplay(func() int { return MaxPot }, dimmer)

	d.Poll()
	assert.Equal(t, -1, d.Brightness())

	dimmer.mu.Lock()
	dimmer.err = nil
	dimmer.mu.Unlock()

	d.Poll()
	assert.Equal(t, []uint8{255}, dimmer.Levels())
}

func TestDisplay_Toggle(t *testing.T) {
	d := NewDisplay(func() int { return 0 }, nil)

	first, scene := d.Frame()
	assert.Equal(t, Logo, scene)
	assert.Equal(t, SkyBlue.RGB565(), first.Pixel(logoX+5, logoY+5))

	d.Toggle()
	second, scene := d.Frame()
	assert.Equal(t, Steve, scene)
	assert.Equal(t, Hair.RGB565(), second.Pixel(steveX+1, steveY+1))
	assert.Equal(t, SkyBlue.RGB565(), first.Pixel(logoX+5, logoY+5), "earlier frames are left untouched")

	d.Toggle()
	_, scene = d.Frame()
	assert.Equal(t, Logo, scene)
}

func TestDisplay_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	var pot atomic.Int64
	pot.Store(MaxPot)
	dimmer := &recordingDimmer{}

	var mu sync.Mutex
	var scenes []Scene
	d := NewDisplay(
		func() int { return int(pot.Load()) },
		dimmer,
		WithToggleInterval(20*time.Millisecond),
		WithPollInterval(5*time.Millisecond),
		OnFrame(func(_ *Framebuffer, s Scene) {
			mu.Lock()
			scenes = append(scenes, s)
			mu.Unlock()
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(scenes) >= 3
	}, 2*time.Second, time.Millisecond)

	pot.Store(0)
	require.Eventually(t, func() bool { return d.Brightness() == 0 }, 2*time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Scene{Logo, Steve, Logo}, scenes[:3])
	assert.Equal(t, uint8(255), dimmer.Levels()[0], "backlight follows the pot before the first tick")
}
