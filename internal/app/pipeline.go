package app

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/counter"
	"github.com/rook-computer/bongocat/internal/input"
	"github.com/rook-computer/bongocat/internal/queue"
)

// Display is the surface the consumer drives.
type Display interface {
	Show(frame animation.Frame)
	SetCounterText(text string)
}

// Pipeline is the single consumer: it takes activity signals one at a time,
// animates, counts and hands the new value to the persistence queue. Revert
// timers fire on the same goroutine as Run.
type Pipeline struct {
	Activity *queue.Queue[input.Signal]
	Persist  *queue.Queue[*big.Int]
	Counter  *counter.Counter
	Animator *animation.Animator
	Timers   *animation.Timers
	Display  Display
	Logger   Logger

	clock          func() time.Time
	persistFailing bool
	persistDropped uint64
}

// PipelineOptions configure NewPipeline.
type PipelineOptions struct {
	Animation animation.Options
	// ActivityLimit caps pending activity signals; 0 is unbounded.
	ActivityLimit int
	Clock         func() time.Time
}

func NewPipeline(initial *big.Int, display Display, logger Logger, opts PipelineOptions) *Pipeline {
	if logger == nil {
		logger = NoopLogger{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	timers := animation.NewTimers(clock)
	return &Pipeline{
		Activity: queue.NewBounded[input.Signal](opts.ActivityLimit),
		Persist:  queue.New[*big.Int](),
		Counter:  counter.New(initial),
		Animator: animation.New(display, timers, opts.Animation),
		Timers:   timers,
		Display:  display,
		Logger:   logger,
		clock:    clock,
	}
}

// Handle consumes one activity signal and returns the new counter value.
// A failed hand-off to persistence is reported but never undoes the count.
func (p *Pipeline) Handle() *big.Int {
	p.Animator.Animate()
	value := p.Counter.Increment()
	p.Display.SetCounterText(counter.Format(value))

	if err := p.Persist.TrySend(value); err != nil {
		p.persistDropped++
		if !p.persistFailing {
			p.Logger.Errorf("pipeline", "database thread error: %v", err)
		}
		p.persistFailing = true
	} else if p.persistFailing {
		p.Logger.Infof("pipeline", "persistence queue accepting values again after %d drops", p.persistDropped)
		p.persistFailing = false
	}
	return value
}

// PersistDropped counts values the persistence queue refused.
func (p *Pipeline) PersistDropped() uint64 { return p.persistDropped }

// Run consumes until ctx is done or the activity queue is closed and drained.
func (p *Pipeline) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		var wake <-chan time.Time
		if next, ok := p.Timers.Next(); ok {
			wait := next.Sub(p.clock())
			if wait < 0 {
				wait = 0
			}
			timer.Reset(wait)
			wake = timer.C
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-p.Activity.Ready():
			for {
				if _, ok := p.Activity.TryRecv(); !ok {
					break
				}
				p.Handle()
			}
			if p.Activity.Closed() && p.Activity.Len() == 0 {
				p.Timers.RunDue(p.clock())
				return nil
			}
		case <-wake:
			p.Timers.RunDue(p.clock())
		}
	}
}
