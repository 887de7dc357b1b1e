package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"go.bug.st/serial"

	"github.com/itohio/badgelab/pkg/thermistor"
)

const (
	// DefaultBaudRate is the baud rate of the sensor firmware.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
	// DefaultOpenTimeout bounds the retries when the port is not ready yet,
	// e.g. right after the board re-enumerates.
	DefaultOpenTimeout = 3 * time.Second
)

// RawSample represents a raw measurement sample from the sensor node.
type RawSample struct {
	Timestamp  time.Time
	Thermistor uint16 // Single 12-bit thermistor reading (0-4095), averaged on the host
	Light      uint16 // 12-bit light sensor reading (0-4095)
	LED        bool   // Firmware LED state
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the sensor firmware.
type Serial struct {
	port        string
	baudRate    int
	bufSize     int
	openTimeout time.Duration

	conn      serial.Port
	samples   chan RawSample
	done      chan struct{}
	mu        sync.RWMutex
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:        port,
		baudRate:    baudRate,
		bufSize:     bufSize,
		openTimeout: DefaultOpenTimeout,
		samples:     make(chan RawSample, bufSize),
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading samples. Opening is
// retried with exponential backoff for up to the open timeout.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	var port serial.Port
	op := func() error {
		p, err := serial.Open(d.port, mode)
		if err != nil {
			return err
		}
		port = p
		return nil
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     50 * time.Millisecond,
		RandomizationFactor: 0.2,
		Multiplier:          2,
		MaxInterval:         time.Second,
		MaxElapsedTime:      d.openTimeout,
		Clock:               backoff.SystemClock})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = port
	d.cancel = cancel
	d.done = make(chan struct{})
	d.samples = make(chan RawSample, d.bufSize)
	d.connected = true

	go d.readSamples(ctx, port, d.samples, d.done)

	return nil
}

// Close closes the port and waits for the reader to stop. The samples
// channel is closed once the reader has exited.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}
	d.cancel()
	err := d.conn.Close()
	done := d.done
	d.conn = nil
	d.connected = false
	d.mu.Unlock()

	<-done

	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.samples
}

// SetLED sends the LED command to the firmware.
func (d *Serial) SetLED(on bool) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return ErrNotConnected
	}

	if _, err := d.conn.Write([]byte(ledCommand(on))); err != nil {
		return fmt.Errorf("failed to send LED command: %w", err)
	}
	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines from r and publishes parsed samples on out.
func (d *Serial) readSamples(ctx context.Context, r io.Reader, out chan<- RawSample, done chan<- struct{}) {
	defer close(done)
	defer close(out)
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Panic in readSamples: %v", rec)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sample, err := parseLine(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		select {
		case out <- sample:
		case <-ctx.Done():
			return
		default:
			log.Printf("Samples channel full, dropping sample")
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, io.EOF) {
		log.Printf("Error reading from serial port: %v", err)
	}
}

func ledCommand(on bool) string {
	if on {
		return "L1\n"
	}
	return "L0\n"
}

// parseLine parses a line from the firmware into a RawSample.
// Format: unix_micros,thermistor,light,led
// Example: 1234567890123,2048,812,1
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 4 comma-separated values, got %d", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	reading, err := parseADC(parts[1])
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid thermistor reading: %w", err)
	}

	light, err := parseADC(parts[2])
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid light reading: %w", err)
	}

	var led bool
	switch parts[3] {
	case "0":
	case "1":
		led = true
	default:
		return RawSample{}, fmt.Errorf("invalid LED state %q", parts[3])
	}

	return RawSample{
		Timestamp:  time.UnixMicro(timestampMicros),
		Thermistor: reading,
		Light:      light,
		LED:        led,
	}, nil
}

func parseADC(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	if v > thermistor.MaxADC {
		return 0, fmt.Errorf("out of range: %d (max %d)", v, thermistor.MaxADC)
	}
	return uint16(v), nil
}
