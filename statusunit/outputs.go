package main

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/hal"
	"github.com/itohio/badgelab/pkg/sensor"
	"github.com/itohio/badgelab/pkg/status"
	"github.com/itohio/badgelab/pkg/tone"
)

// outputs holds the status LED and buzzer.
type outputs struct {
	led    *ledFanout
	buzzer tone.Buzzer
}

// Close switches the outputs off.
func (o outputs) Close() {
	if err := o.led.SetLED(false); err != nil {
		log.Printf("Failed to switch LED off: %v", err)
	}
	if err := o.buzzer.Stop(); err != nil {
		log.Printf("Failed to stop buzzer: %v", err)
	}
}

// openOutputs opens the GPIO LED and buzzer when useGPIO is set. Otherwise
// LED changes are logged and tones are discarded.
func openOutputs(cfg config.GPIOConfig, useGPIO bool) (outputs, error) {
	o := outputs{
		led:    &ledFanout{pin: hal.LogLED{Name: "Status"}},
		buzzer: hal.NopBuzzer{},
	}
	if !useGPIO {
		return o, nil
	}

	if cfg.LED != "" {
		led, err := hal.OpenLED(cfg.LED)
		if err != nil {
			return outputs{}, fmt.Errorf("led: %w", err)
		}
		o.led.pin = led
	}
	if cfg.Buzzer != "" {
		buzzer, err := hal.OpenBuzzer(cfg.Buzzer)
		if err != nil {
			return outputs{}, fmt.Errorf("buzzer: %w", err)
		}
		o.buzzer = buzzer
	}
	return o, nil
}

// ledFanout drives the status LED on the host pin and on the attached
// sensor firmware.
type ledFanout struct {
	mu     sync.Mutex
	on     bool
	pin    status.Indicator
	device sensor.Device
}

// SetLED sets every output. Errors from the outputs are joined.
func (l *ledFanout) SetLED(on bool) error {
	l.mu.Lock()
	l.on = on
	pin, device := l.pin, l.device
	l.mu.Unlock()

	var errs []error
	if pin != nil {
		if err := pin.SetLED(on); err != nil {
			errs = append(errs, fmt.Errorf("pin: %w", err))
		}
	}
	if device != nil && device.IsConnected() {
		if err := device.SetLED(on); err != nil {
			errs = append(errs, fmt.Errorf("sensor: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Attach makes d follow the LED state and syncs it to the current state.
// A nil d detaches the sensor.
func (l *ledFanout) Attach(d sensor.Device) error {
	l.mu.Lock()
	l.device = d
	on := l.on
	l.mu.Unlock()

	if d == nil || !d.IsConnected() {
		return nil
	}
	return d.SetLED(on)
}
