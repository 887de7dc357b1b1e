// Package hal drives the LED, buzzer, RGB LED and backlight dimmer from host
// GPIO pins using periph.io. Pins are named the periph way, e.g. "GPIO17".
package hal

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/itohio/badgelab/pkg/color"
)

// PWMFrequency is the carrier used to dim the RGB LED channels.
const PWMFrequency = physic.KiloHertz

// ErrUnknownPin is returned when a pin name is not registered.
var ErrUnknownPin = errors.New("unknown pin")

var (
	initOnce sync.Once
	initErr  error
)

// Init initialises the periph host drivers. It is safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			initErr = fmt.Errorf("failed to initialise GPIO host: %w", err)
		}
	})
	return initErr
}

func openPin(name string) (gpio.PinIO, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPin, name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to set %s as output: %w", name, err)
	}
	return p, nil
}

// LED is a single on/off output.
type LED struct {
	pin gpio.PinIO
}

// OpenLED opens the named pin as an LED output, initially off.
func OpenLED(name string) (*LED, error) {
	p, err := openPin(name)
	if err != nil {
		return nil, err
	}
	return &LED{pin: p}, nil
}

// SetLED switches the LED.
func (l *LED) SetLED(on bool) error {
	return l.pin.Out(gpio.Level(on))
}

// Buzzer is a passive piezo buzzer driven by a 50 % duty square wave.
type Buzzer struct {
	pin gpio.PinIO
}

// OpenBuzzer opens the named PWM capable pin as a buzzer output.
func OpenBuzzer(name string) (*Buzzer, error) {
	p, err := openPin(name)
	if err != nil {
		return nil, err
	}
	return &Buzzer{pin: p}, nil
}

// Tone starts a square wave at freq Hz. A non-positive freq silences the buzzer.
func (b *Buzzer) Tone(freq int) error {
	if freq <= 0 {
		return b.Stop()
	}
	return b.pin.PWM(gpio.DutyHalf, physic.Frequency(freq)*physic.Hertz)
}

// Stop silences the buzzer.
func (b *Buzzer) Stop() error {
	return b.pin.Out(gpio.Low)
}

// RGB is a common cathode RGB LED with one PWM pin per channel.
type RGB struct {
	pins [3]gpio.PinIO
}

// OpenRGB opens the three channel pins.
func OpenRGB(red, green, blue string) (*RGB, error) {
	var rgb RGB
	for i, name := range []string{red, green, blue} {
		p, err := openPin(name)
		if err != nil {
			return nil, err
		}
		rgb.pins[i] = p
	}
	return &rgb, nil
}

// SetColor sets the channel duty cycles from c.
func (r *RGB) SetColor(c color.RGB) error {
	for i, v := range []uint8{c.R, c.G, c.B} {
		if err := setChannel(r.pins[i], v); err != nil {
			return fmt.Errorf("failed to set %s: %w", r.pins[i], err)
		}
	}
	return nil
}

// Dimmer is a PWM driven backlight or LED.
type Dimmer struct {
	pin gpio.PinIO
}

// OpenDimmer opens the named PWM capable pin, initially dark.
func OpenDimmer(name string) (*Dimmer, error) {
	p, err := openPin(name)
	if err != nil {
		return nil, err
	}
	return &Dimmer{pin: p}, nil
}

// SetBrightness sets the duty cycle from an 8-bit level.
func (d *Dimmer) SetBrightness(v uint8) error {
	if err := setChannel(d.pin, v); err != nil {
		return fmt.Errorf("failed to dim %s: %w", d.pin, err)
	}
	return nil
}

func setChannel(p gpio.PinIO, v uint8) error {
	switch v {
	case 0:
		return p.Out(gpio.Low)
	case 255:
		return p.Out(gpio.High)
	}
	return p.PWM(Duty(v), PWMFrequency)
}

// Duty converts an 8-bit channel value to a PWM duty cycle.
func Duty(v uint8) gpio.Duty {
	return gpio.Duty(int64(v) * int64(gpio.DutyMax) / 255)
}

// LogLED logs LED changes instead of driving a pin.
type LogLED struct {
	Name string
}

// SetLED logs the state.
func (l LogLED) SetLED(on bool) error {
	log.Printf("%s LED: %v", l.Name, on)
	return nil
}

// NopBuzzer discards tones.
type NopBuzzer struct{}

// Tone does nothing.
func (NopBuzzer) Tone(int) error { return nil }

// Stop does nothing.
func (NopBuzzer) Stop() error { return nil }

// LogRGB logs color changes instead of driving pins.
type LogRGB struct {
	mu   sync.Mutex
	last color.RGB
	set  bool
}

// SetColor logs c when it differs from the previous color.
func (l *LogRGB) SetColor(c color.RGB) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set && l.last == c {
		return nil
	}
	l.last, l.set = c, true
	log.Printf("RGB LED: #%02X%02X%02X", c.R, c.G, c.B)
	return nil
}

// LogDimmer logs brightness changes instead of driving a pin.
type LogDimmer struct {
	mu   sync.Mutex
	last uint8
	set  bool
}

// SetBrightness logs v when it differs from the previous level.
func (l *LogDimmer) SetBrightness(v uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set && l.last == v {
		return nil
	}
	l.last, l.set = v, true
	log.Printf("Backlight: %d", v)
	return nil
}
