package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/itohio/badgelab/pkg/color"
)

func TestDuty(t *testing.T) {
	assert.Equal(t, gpio.Duty(0), Duty(0))
	assert.Equal(t, gpio.DutyMax, Duty(255))
	assert.InDelta(t, int64(gpio.DutyHalf), int64(Duty(128)), float64(gpio.DutyMax)/255)
}

func TestLED(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO17"}
	led := &LED{pin: p}

	require.NoError(t, led.SetLED(true))
	assert.Equal(t, gpio.High, p.L)

	require.NoError(t, led.SetLED(false))
	assert.Equal(t, gpio.Low, p.L)
}

func TestBuzzer(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO18"}
	b := &Buzzer{pin: p}

	require.NoError(t, b.Tone(784))
	assert.Equal(t, gpio.DutyHalf, p.D)
	assert.Equal(t, 784*physic.Hertz, p.F)

	require.NoError(t, b.Stop())
	assert.Equal(t, gpio.Low, p.L)

	p.L = gpio.High
	require.NoError(t, b.Tone(0))
	assert.Equal(t, gpio.Low, p.L, "rest silences the buzzer")
}

func TestRGB_SetColor(t *testing.T) {
	r, g, b := &gpiotest.Pin{N: "R"}, &gpiotest.Pin{N: "G"}, &gpiotest.Pin{N: "B"}
	rgb := &RGB{pins: [3]gpio.PinIO{r, g, b}}

	require.NoError(t, rgb.SetColor(color.RGB{R: 255, G: 0, B: 128}))
	assert.Equal(t, gpio.High, r.L)
	assert.Equal(t, gpio.Low, g.L)
	assert.Equal(t, Duty(128), b.D)
	assert.Equal(t, PWMFrequency, b.F)
}

func TestDimmer_SetBrightness(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO12"}
	d := &Dimmer{pin: p}

	require.NoError(t, d.SetBrightness(64))
	assert.Equal(t, Duty(64), p.D)
	assert.Equal(t, PWMFrequency, p.F)

	require.NoError(t, d.SetBrightness(255))
	assert.Equal(t, gpio.High, p.L)

	require.NoError(t, d.SetBrightness(0))
	assert.Equal(t, gpio.Low, p.L)
}

func TestLogOutputs(t *testing.T) {
	assert.NoError(t, LogLED{Name: "status"}.SetLED(true))

	var nb NopBuzzer
	assert.NoError(t, nb.Tone(440))
	assert.NoError(t, nb.Stop())

	var l LogRGB
	assert.NoError(t, l.SetColor(color.Blue))
	assert.NoError(t, l.SetColor(color.Blue))
	assert.Equal(t, color.Blue, l.last)

	var ld LogDimmer
	assert.NoError(t, ld.SetBrightness(10))
	assert.NoError(t, ld.SetBrightness(10))
	assert.Equal(t, uint8(10), ld.last)
}
