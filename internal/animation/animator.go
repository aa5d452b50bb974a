// Package animation drives the two-paw hit/idle sprite.
package animation

import "time"

// DefaultDuration is how long a hit frame stays up before reverting to idle.
const DefaultDuration = 150 * time.Millisecond

// Side is the paw used for the next hit.
type Side int

const (
	Left Side = iota
	Right
)

// Flip returns the opposite side.
func (s Side) Flip() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Frame names one of the three sprite bitmaps.
type Frame string

const (
	FrameIdle     Frame = "idle"
	FrameHitLeft  Frame = "hit_left"
	FrameHitRight Frame = "hit_right"
)

// HitFrame returns the hit frame for side.
func HitFrame(side Side) Frame {
	if side == Left {
		return FrameHitLeft
	}
	return FrameHitRight
}

// State is the frame currently on display.
type State int

const (
	Idle State = iota
	ShowingHitLeft
	ShowingHitRight
)

func (s State) String() string {
	switch s {
	case ShowingHitLeft:
		return "showing_hit_left"
	case ShowingHitRight:
		return "showing_hit_right"
	default:
		return "idle"
	}
}

// Display swaps the visible frame.
type Display interface {
	Show(frame Frame)
}

// Scheduler runs callbacks on the animator's own goroutine after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Token
	Cancel(token Token) bool
}

// Options configure an Animator.
type Options struct {
	Duration time.Duration
	// RestartOnHit cancels a still-pending revert when a new hit arrives.
	// When false every hit keeps its own revert and the last one to fire wins.
	RestartOnHit bool
}

// Animator is not safe for concurrent use; it belongs to the consumer loop.
type Animator struct {
	display  Display
	timers   Scheduler
	duration time.Duration
	restart  bool

	next    Side
	state   State
	pending map[Token]struct{}
	hits    uint64
}

func New(display Display, timers Scheduler, opts Options) *Animator {
	duration := opts.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Animator{
		display:  display,
		timers:   timers,
		duration: duration,
		restart:  opts.RestartOnHit,
		next:     Left,
		state:    Idle,
		pending:  make(map[Token]struct{}),
	}
}

// Animate shows the hit frame for the current side, flips the side for the
// next hit and schedules the revert to idle. It returns the side shown.
func (a *Animator) Animate() Side {
	side := a.next
	a.next = side.Flip()
	a.hits++

	if side == Left {
		a.state = ShowingHitLeft
	} else {
		a.state = ShowingHitRight
	}
	a.display.Show(HitFrame(side))

	if a.restart {
		for token := range a.pending {
			a.timers.Cancel(token)
			delete(a.pending, token)
		}
	}

	var token Token
	token = a.timers.AfterFunc(a.duration, func() {
		delete(a.pending, token)
		a.state = Idle
		a.display.Show(FrameIdle)
	})
	a.pending[token] = struct{}{}
	return side
}

// Next returns the side the next hit will use.
func (a *Animator) Next() Side { return a.next }

// State returns the frame currently shown.
func (a *Animator) State() State { return a.state }

// PendingReverts returns how many revert timers have not fired yet.
func (a *Animator) PendingReverts() int { return len(a.pending) }

// Hits returns how many hits have been animated.
func (a *Animator) Hits() uint64 { return a.hits }

// Duration returns the hit frame duration.
func (a *Animator) Duration() time.Duration { return a.duration }
