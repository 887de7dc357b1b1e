package reader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-pn532"
	"github.com/ZaparooProject/go-pn532/transport/uart"
)

// TagSource detects NFC tags.
type TagSource interface {
	// DetectUID returns the UID of a tag in the field, or nil when there
	// is none.
	DetectUID(ctx context.Context) ([]byte, error)
	Close() error
}

// PN532 reads tags with a PN532 module on a serial port.
type PN532 struct {
	device  *pn532.Device
	timeout time.Duration
}

// OpenPN532 opens and initialises a PN532 on the UART at path. Each detection
// attempt waits at most timeout for a tag.
func OpenPN532(ctx context.Context, path string, timeout time.Duration) (*PN532, error) {
	transport, err := uart.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PN532 transport %s: %w", path, err)
	}

	device, err := pn532.New(transport)
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("failed to create PN532 device: %w", err)
	}

	if err := device.InitContext(ctx); err != nil {
		device.Close()
		return nil, fmt.Errorf("failed to initialise PN532: %w", err)
	}

	return &PN532{device: device, timeout: timeout}, nil
}

// DetectUID polls for a single ISO14443A target.
func (p *PN532) DetectUID(ctx context.Context) ([]byte, error) {
	pollCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tags, err := p.device.InListPassiveTargetContext(pollCtx, 1, 0x00)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, nil
		}
		if errors.Is(err, pn532.ErrNoTagDetected) {
			return nil, nil
		}
		return nil, fmt.Errorf("tag detection failed: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags[0].UIDBytes, nil
}

// Close releases the device and its transport.
func (p *PN532) Close() error {
	return p.device.Close()
}
