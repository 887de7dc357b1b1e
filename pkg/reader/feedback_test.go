package reader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/itohio/badgelab/pkg/access"
	"github.com/itohio/badgelab/pkg/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red    = color.Red
	green  = color.Green
	blue   = color.Blue
	off    = color.Off
	yellow = color.Yellow
)

type recordingLED struct {
	mu     sync.Mutex
	colors []color.RGB
}

func (l *recordingLED) SetColor(c color.RGB) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colors = append(l.colors, c)
	return nil
}

func (l *recordingLED) Colors() []color.RGB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]color.RGB(nil), l.colors...)
}

func fastTiming() Timing {
	return Timing{
		Granted:     time.Millisecond,
		Pause:       time.Millisecond,
		Rainbow:     10 * time.Millisecond,
		RainbowTick: time.Millisecond,
		Flash:       time.Millisecond,
		Flashes:     4,
	}
}

func TestLEDFeedback_Granted(t *testing.T) {
	led := &recordingLED{}
	fb := &LEDFeedback{LED: led, Timing: fastTiming()}

	require.NoError(t, fb.Show(context.Background(), access.Granted))

	colors := led.Colors()
	require.Len(t, colors, 2+10+1)
	assert.Equal(t, green, colors[0])
	assert.Equal(t, off, colors[1])
	assert.Equal(t, red, colors[2], "rainbow starts at red")
	assert.Equal(t, color.Hue(36), colors[3])
	assert.Equal(t, blue, colors[len(colors)-1])
}

func TestLEDFeedback_Denied(t *testing.T) {
	led := &recordingLED{}
	fb := &LEDFeedback{LED: led, Timing: fastTiming()}

	require.NoError(t, fb.Show(context.Background(), access.Denied))

	assert.Equal(t, []color.RGB{red, off, red, off, red, off, red, off, blue}, led.Colors())
}

func TestLEDFeedback_Limited(t *testing.T) {
	led := &recordingLED{}
	fb := &LEDFeedback{LED: led, Timing: fastTiming()}

	require.NoError(t, fb.Show(context.Background(), access.Limited))

	assert.Equal(t, []color.RGB{yellow, blue}, led.Colors())
}

func TestLEDFeedback_Cancelled(t *testing.T) {
	led := &recordingLED{}
	fb := NewLEDFeedback(led)
	assert.Equal(t, DefaultTiming, fb.Timing)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := fb.Show(ctx, access.Granted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	colors := led.Colors()
	assert.Equal(t, []color.RGB{green, blue}, colors)
}

func TestLEDFeedback_Idle(t *testing.T) {
	led := &recordingLED{}
	require.NoError(t, NewLEDFeedback(led).Idle())
	assert.Equal(t, []color.RGB{blue}, led.Colors())
}
