package sensor

import "errors"

var (
	// ErrNotConnected is returned by commands issued to a closed device.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by Connect on an open device.
	ErrAlreadyConnected = errors.New("already connected")
)
