package input

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// scriptedDevice replays batches of events and then fails with err, or
// blocks until the context is done when err is nil.
type scriptedDevice struct {
	name    string
	keys    map[uint16]bool
	keysErr error
	batches [][]Event
	err     error

	mu     sync.Mutex
	closed bool
}

func (d *scriptedDevice) Name() string { return d.name }

func (d *scriptedDevice) HasKey(code uint16) (bool, error) {
	if d.keysErr != nil {
		return false, d.keysErr
	}
	return d.keys[code], nil
}

func (d *scriptedDevice) ReadEvents(ctx context.Context) ([]Event, error) {
	d.mu.Lock()
	if len(d.batches) > 0 {
		batch := d.batches[0]
		d.batches = d.batches[1:]
		d.mu.Unlock()
		return batch, nil
	}
	d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (d *scriptedDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *scriptedDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func keyboard(name string) *scriptedDevice {
	return &scriptedDevice{name: name, keys: map[uint16]bool{KeyA: true}}
}

func openerFor(devices map[string]*scriptedDevice) Opener {
	return func(path string) (Device, error) {
		for suffix, dev := range devices {
			if len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix {
				return dev, nil
			}
		}
		return nil, errors.Errorf("permission denied: %s", path)
	}
}

type collectingSink struct {
	mu    sync.Mutex
	count int
	err   error
}

func (s *collectingSink) TrySend(Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.count++
	return nil
}

func (s *collectingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func keyDown(code uint16) Event { return Event{Type: EvKey, Code: code, Value: ValuePress} }
func keyUp(code uint16) Event   { return Event{Type: EvKey, Code: code, Value: ValueRelease} }
func repeat(code uint16) Event  { return Event{Type: EvKey, Code: code, Value: ValueRepeat} }
func syn() Event                { return Event{Type: EvSyn} }
