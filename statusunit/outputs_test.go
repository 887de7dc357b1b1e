package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/hal"
	"github.com/itohio/badgelab/pkg/sensor"
	"github.com/itohio/badgelab/pkg/thermistor"
)

type recordingPin struct {
	states []bool
	err    error
}

func (p *recordingPin) SetLED(on bool) error {
	p.states = append(p.states, on)
	return p.err
}

func quietMock() *config.MockConfig {
	cfg := config.Default().Mock
	cfg.SampleRate = 50 * time.Millisecond
	cfg.NoiseLevel = 0
	return &cfg
}

func TestOpenOutputs_NoGPIO(t *testing.T) {
	o, err := openOutputs(config.GPIOConfig{LED: "GPIO17"}, false)
	require.NoError(t, err)
	assert.Equal(t, hal.LogLED{Name: "Status"}, o.led.pin)
	assert.Equal(t, hal.NopBuzzer{}, o.buzzer)
}

func TestLedFanout_PinOnly(t *testing.T) {
	pin := &recordingPin{}
	l := &ledFanout{pin: pin}

	require.NoError(t, l.SetLED(true))
	require.NoError(t, l.SetLED(false))
	assert.Equal(t, []bool{true, false}, pin.states)
}

func TestLedFanout_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	l := &ledFanout{pin: &recordingPin{err: boom}}

	assert.ErrorIs(t, l.SetLED(true), boom)
}

func TestLedFanout_AttachSyncsDevice(t *testing.T) {
	pin := &recordingPin{}
	l := &ledFanout{pin: pin}
	require.NoError(t, l.SetLED(true))

	mock := sensor.NewMock(quietMock(), thermistor.DefaultParams())
	require.NoError(t, mock.Connect())
	defer mock.Close()

	require.NoError(t, l.Attach(mock))

	// A disconnected device is skipped
	require.NoError(t, mock.Close())
	require.NoError(t, l.SetLED(false))
	assert.Equal(t, []bool{true, false}, pin.states)

	require.NoError(t, l.Attach(nil))
}

func TestLedFanout_AttachDisconnected(t *testing.T) {
	l := &ledFanout{}
	mock := sensor.NewMock(quietMock(), thermistor.DefaultParams())
	assert.NoError(t, l.Attach(mock))
}
