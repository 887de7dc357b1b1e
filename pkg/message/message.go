// Package message encodes the UID broadcast exchanged between badge readers
// and status units.
//
// The frame is the 32-byte NUL-terminated character buffer the ESP32 boards
// send over ESP-NOW, optionally followed by one byte carrying the reader's
// access decision. Peers that copy only the first 32 bytes ignore it.
package message

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/itohio/badgelab/pkg/access"
)

const (
	// UIDSize is the size of the UID buffer including the terminating NUL.
	UIDSize = 32
	// MaxUIDLen is the longest UID that fits in the buffer.
	MaxUIDLen = UIDSize - 1
	// MaxSize is the size of a frame carrying an access level.
	MaxSize = UIDSize + 1
)

// ErrFrameSize is returned for empty or oversized payloads.
var ErrFrameSize = errors.New("invalid frame size")

// Frame is a decoded broadcast.
type Frame struct {
	UID      string
	Level    access.Level
	HasLevel bool // Level is only meaningful when set
}

// Marshal encodes f. UIDs longer than MaxUIDLen are truncated.
func Marshal(f Frame) []byte {
	size := UIDSize
	if f.HasLevel {
		size = MaxSize
	}
	buf := make([]byte, size)

	uid := f.UID
	if len(uid) > MaxUIDLen {
		uid = uid[:MaxUIDLen]
	}
	copy(buf, uid)

	if f.HasLevel {
		buf[UIDSize] = byte(f.Level)
	}
	return buf
}

// Unmarshal decodes a payload of 1 to MaxSize bytes. Payloads shorter than
// UIDSize are treated as zero-padded. The UID is upper-cased.
func Unmarshal(data []byte) (Frame, error) {
	if len(data) == 0 || len(data) > MaxSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameSize, len(data))
	}

	uidBuf := data
	if len(uidBuf) > UIDSize {
		uidBuf = uidBuf[:UIDSize]
	}
	if i := bytes.IndexByte(uidBuf, 0); i >= 0 {
		uidBuf = uidBuf[:i]
	}

	f := Frame{UID: strings.ToUpper(string(uidBuf))}

	if len(data) == MaxSize {
		level := access.Level(data[UIDSize])
		if level > access.Granted {
			return Frame{}, fmt.Errorf("invalid access level byte %d", data[UIDSize])
		}
		f.Level = level
		f.HasLevel = true
	}
	return f, nil
}
