package state

import (
	"sync"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/input"
)

// State is what renderers and the status API see.
type State struct {
	// Version changes whenever anything visible changes.
	Version     uint64
	Frame       animation.Frame
	CounterText string
	// Persisted is the last durably written counter, empty until the first write.
	Persisted         string
	SessionKeystrokes uint64
	Devices           []input.DeviceInfo
	// WriterDown is set once the persistence writer has stopped.
	WriterDown bool
}

// Store is the display surface the consumer loop drives. Writers hold the
// lock only long enough to copy small values; renderers take snapshots.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(counterText string) *Store {
	return &Store{state: State{Frame: animation.FrameIdle, CounterText: counterText}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	snap := store.state
	snap.Devices = append([]input.DeviceInfo(nil), store.state.Devices...)
	return snap
}

// Version is a cheap way for render loops to skip unchanged frames.
func (store *Store) Version() uint64 {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state.Version
}

// Show swaps the visible frame.
func (store *Store) Show(frame animation.Frame) {
	store.mu.Lock()
	if store.state.Frame != frame {
		store.state.Frame = frame
		store.state.Version++
	}
	store.mu.Unlock()
}

// SetCounterText updates the label and counts the keystroke for this session.
func (store *Store) SetCounterText(text string) {
	store.mu.Lock()
	store.state.CounterText = text
	store.state.SessionKeystrokes++
	store.state.Version++
	store.mu.Unlock()
}

func (store *Store) SetPersisted(text string) {
	store.mu.Lock()
	store.state.Persisted = text
	store.mu.Unlock()
}

func (store *Store) SetWriterDown() {
	store.mu.Lock()
	store.state.WriterDown = true
	store.mu.Unlock()
}

func (store *Store) SetDevices(devices []input.DeviceInfo) {
	store.mu.Lock()
	store.state.Devices = append([]input.DeviceInfo(nil), devices...)
	store.mu.Unlock()
}
