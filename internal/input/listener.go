package input

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Sink accepts activity signals without blocking.
type Sink interface {
	TrySend(Signal) error
}

// Listener reads one device and forwards its key-downs to a Sink. A listener
// never reconnects: once its device fails it stays down.
type Listener struct {
	Path   string
	Open   Opener
	Sink   Sink
	Logger Logger

	signals atomic.Uint64
	dropped atomic.Uint64

	done chan struct{}
	err  error
}

func NewListener(path string, open Opener, sink Sink, logger Logger) *Listener {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Listener{Path: path, Open: open, Sink: sink, Logger: logger, done: make(chan struct{})}
}

// Run opens the device and forwards signals until the device fails or ctx is
// done. A cancelled context is not an error.
func (l *Listener) Run(ctx context.Context) (err error) {
	defer func() {
		l.err = err
		close(l.done)
	}()

	if l.Open == nil || l.Sink == nil {
		return errors.New("listener not configured")
	}
	dev, err := l.Open(l.Path)
	if err != nil {
		l.Logger.Errorf("input", "failed to open %s: %v (is the user in the 'input' group?)", l.Path, err)
		return err
	}
	defer func() { _ = dev.Close() }()
	l.Logger.Infof("input", "listening on %s (%s)", l.Path, dev.Name())

	for {
		events, err := dev.ReadEvents(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.Logger.Errorf("input", "error reading events from %s: %v", l.Path, err)
			return err
		}
		for _, ev := range events {
			if !ev.IsKeyDown() {
				continue
			}
			if sendErr := l.Sink.TrySend(Signal{}); sendErr != nil {
				l.dropped.Add(1)
				continue
			}
			l.signals.Add(1)
		}
	}
}

// Done is closed when Run returns.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Err returns the error Run exited with. Only valid after Done is closed.
func (l *Listener) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Signals returns how many key-downs were forwarded.
func (l *Listener) Signals() uint64 { return l.signals.Load() }

// Dropped returns how many key-downs the sink refused.
func (l *Listener) Dropped() uint64 { return l.dropped.Load() }
