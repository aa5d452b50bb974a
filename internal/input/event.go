// Package input discovers keyboards under the Linux raw-input directory and
// turns their key-down events into activity signals.
package input

import (
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Linux input-event-codes.h
const (
	EvSyn = 0x00
	EvKey = 0x01

	KeyA = 30

	ValueRelease = 0
	ValuePress   = 1
	ValueRepeat  = 2
)

// ErrUnsupported is returned by OpenDevice on platforms without evdev.
var ErrUnsupported = errors.New("raw input devices are not supported on this platform")

// Signal marks one key-down on some monitored keyboard.
type Signal struct{}

// Event is one decoded input_event record.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// IsKeyDown reports whether e is an initial key press (not a repeat or release).
func (e Event) IsKeyDown() bool {
	return e.Type == EvKey && e.Value == ValuePress
}

// Device is one open input source. It is owned by a single goroutine.
type Device interface {
	Name() string
	// HasKey reports whether the device advertises the given key code.
	HasKey(code uint16) (bool, error)
	// ReadEvents blocks until at least one event arrives, the device fails,
	// or ctx is done.
	ReadEvents(ctx context.Context) ([]Event, error)
	Close() error
}

// Opener opens the device at path.
type Opener func(path string) (Device, error)

// Logger is the logging surface used by scanners and listeners.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// decodeEvents parses a sequence of input_event records laid out as
// timeval + u16 type + u16 code + s32 value. Bytes of a trailing partial
// record are returned as rest.
func decodeEvents(buf []byte, tvSize int) (events []Event, rest []byte) {
	eventSize := tvSize + 2 + 2 + 4
	off := 0
	for ; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		events = append(events, Event{
			Type:  binary.LittleEndian.Uint16(rec[tvSize : tvSize+2]),
			Code:  binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4]),
			Value: int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8])),
		})
	}
	return events, buf[off:]
}
