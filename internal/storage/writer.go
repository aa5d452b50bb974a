package storage

import (
	"context"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/rook-computer/bongocat/internal/counter"
	"github.com/rook-computer/bongocat/internal/queue"
)

// CounterWriter is the storage surface the writer needs.
type CounterWriter interface {
	WriteCounter(ctx context.Context, value *big.Int) error
	Close() error
}

// Opener opens the writer's connection.
type Opener func(ctx context.Context, path string) (CounterWriter, error)

// OpenWriter opens a Store as a CounterWriter.
func OpenWriter(ctx context.Context, path string) (CounterWriter, error) {
	return Open(ctx, path)
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Writer owns one long-lived connection and applies queued counter values in
// order. A failed write is logged and skipped; the next value supersedes it.
type Writer struct {
	Path   string
	Queue  *queue.Queue[*big.Int]
	Open   Opener
	Logger Logger
	// OnWrite, when set, is called after each durable write.
	OnWrite func(value *big.Int)

	mu       sync.Mutex
	last     *big.Int
	failures uint64
}

func NewWriter(path string, q *queue.Queue[*big.Int], logger Logger) *Writer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Writer{Path: path, Queue: q, Open: OpenWriter, Logger: logger}
}

// Run connects and drains the queue until it is closed and empty or ctx is
// done. If the connection cannot be opened the queue is closed, so producers
// see their sends fail, and the error is returned.
func (w *Writer) Run(ctx context.Context) error {
	if w.Queue == nil {
		return errors.New("writer has no queue")
	}
	open := w.Open
	if open == nil {
		open = OpenWriter
	}
	conn, err := open(ctx, w.Path)
	if err != nil {
		w.Logger.Errorf("storage", "failed to connect to database: %v", err)
		w.Queue.Close()
		return errors.Wrap(err, "writer connect")
	}
	defer func() { _ = conn.Close() }()

	for {
		value, err := w.Queue.Recv(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) {
				return nil
			}
			return err
		}
		if w.regresses(value) {
			w.Logger.Errorf("storage", "skipping counter %s below last written %s", counter.Format(value), counter.Format(w.LastWritten()))
			continue
		}
		if err := conn.WriteCounter(ctx, value); err != nil {
			w.mu.Lock()
			w.failures++
			w.mu.Unlock()
			w.Logger.Errorf("storage", "database write error: %v", err)
			continue
		}
		w.mu.Lock()
		w.last = value
		w.mu.Unlock()
		if w.OnWrite != nil {
			w.OnWrite(value)
		}
	}
}

// LastWritten returns the most recent durably written value, or nil.
func (w *Writer) LastWritten() *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return nil
	}
	return new(big.Int).Set(w.last)
}

// Failures returns how many writes failed.
func (w *Writer) Failures() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures
}

func (w *Writer) regresses(value *big.Int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return value == nil || (w.last != nil && value.Cmp(w.last) < 0)
}
