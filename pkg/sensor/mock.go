package sensor

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/thermistor"
)

// Mock simulates a sensor node for testing and development. The simulated
// temperature follows a sine around BaseTempC; the thermistor reading is the
// count the configured divider would produce at that temperature.
type Mock struct {
	cfg    *config.MockConfig
	params thermistor.Params

	samples   chan RawSample
	done      chan struct{}
	mu        sync.RWMutex
	cancel    context.CancelFunc
	connected bool

	led       bool
	startTime time.Time
}

// NewMock creates a new mocked device instance. A nil cfg uses defaults.
func NewMock(cfg *config.MockConfig, params thermistor.Params) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	if params == (thermistor.Params{}) {
		params = thermistor.DefaultParams()
	}

	return &Mock{
		cfg:     cfg,
		params:  params,
		samples: make(chan RawSample, DefaultBufferSize),
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.connected = true
	m.cancel = cancel
	m.startTime = time.Now()
	m.samples = make(chan RawSample, DefaultBufferSize)
	m.done = make(chan struct{})

	go m.generateSamples(ctx, m.samples, m.done)

	return nil
}

// Close stops the generator. The samples channel is closed once it exits.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.connected = false
	done := m.done
	m.mu.Unlock()

	<-done
	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// SetLED sets the simulated LED state.
func (m *Mock) SetLED(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.led = on
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateSamples(ctx context.Context, out chan<- RawSample, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.mu.RLock()
			elapsed := now.Sub(m.startTime)
			led := m.led
			m.mu.RUnlock()

			sample := m.generateSample(elapsed)
			sample.Timestamp = now
			sample.LED = led

			select {
			case out <- sample:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateSample computes the readings at the given time since Connect.
func (m *Mock) generateSample(elapsed time.Duration) RawSample {
	phase := 0.0
	if m.cfg.Period > 0 {
		phase = 2 * math.Pi * elapsed.Seconds() / m.cfg.Period.Seconds()
	}
	tempC := m.cfg.BaseTempC + m.cfg.SwingC*math.Sin(phase)

	// Deterministic pseudo-noise, same shape as the light flicker
	ns := float64(elapsed.Nanoseconds())
	noise := (math.Sin(ns*0.001) + math.Cos(ns*0.0013)) * m.cfg.NoiseLevel * 0.5

	reading := float64(thermistor.RawFor(tempC, m.params)) + noise
	light := float64(m.cfg.Light) + 200*math.Sin(phase/3) + noise

	return RawSample{
		Thermistor: clampADC(reading),
		Light:      clampADC(light),
	}
}

func clampADC(v float64) uint16 {
	switch {
	case v < 0:
		return 0
	case v > thermistor.MaxADC:
		return thermistor.MaxADC
	}
	return uint16(math.Round(v))
}
