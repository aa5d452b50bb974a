package animation

import (
	"container/heap"
	"time"
)

// Token identifies a scheduled timer.
type Token uint64

// Timers is a min-heap of one-shot deadlines. It never fires anything on its
// own: the owning loop asks for the next deadline and calls RunDue, so every
// callback runs on that loop's goroutine.
type Timers struct {
	clock func() time.Time
	seq   Token
	items deadlineHeap
	index map[Token]*deadline
}

type deadline struct {
	at    time.Time
	token Token
	fn    func()
	pos   int
}

// NewTimers returns an empty timer set. A nil clock uses time.Now.
func NewTimers(clock func() time.Time) *Timers {
	if clock == nil {
		clock = time.Now
	}
	return &Timers{clock: clock, index: make(map[Token]*deadline)}
}

// AfterFunc schedules fn to run d after the current clock reading.
func (t *Timers) AfterFunc(d time.Duration, fn func()) Token {
	t.seq++
	item := &deadline{at: t.clock().Add(d), token: t.seq, fn: fn}
	heap.Push(&t.items, item)
	t.index[item.token] = item
	return item.token
}

// Cancel removes a pending timer. It reports false if the timer already ran
// or was cancelled.
func (t *Timers) Cancel(token Token) bool {
	item, ok := t.index[token]
	if !ok {
		return false
	}
	heap.Remove(&t.items, item.pos)
	delete(t.index, token)
	return true
}

// Next returns the earliest pending deadline.
func (t *Timers) Next() (time.Time, bool) {
	if len(t.items) == 0 {
		return time.Time{}, false
	}
	return t.items[0].at, true
}

// RunDue runs, in deadline order, every timer due at or before now and
// returns how many ran.
func (t *Timers) RunDue(now time.Time) int {
	ran := 0
	for len(t.items) > 0 && !t.items[0].at.After(now) {
		item := heap.Pop(&t.items).(*deadline)
		delete(t.index, item.token)
		if item.fn != nil {
			item.fn()
		}
		ran++
	}
	return ran
}

// Len returns the number of pending timers.
func (t *Timers) Len() int { return len(t.items) }

type deadlineHeap []*deadline

func (h deadlineHeap) Len() int { return len(h) }

func (h deadlineHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].token < h[j].token
	}
	return h[i].at.Before(h[j].at)
}

func (h deadlineHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].pos = i
	h[j].pos = j
}

func (h *deadlineHeap) Push(x any) {
	item := x.(*deadline)
	item.pos = len(*h)
	*h = append(*h, item)
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
