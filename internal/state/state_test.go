package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/input"
)

func TestStoreStartsIdleWithInitialLabel(t *testing.T) {
	store := NewStore("41")
	snap := store.Snapshot()
	require.Equal(t, animation.FrameIdle, snap.Frame)
	require.Equal(t, "41", snap.CounterText)
	require.Zero(t, snap.SessionKeystrokes)
}

func TestShowBumpsVersionOnlyOnChange(t *testing.T) {
	store := NewStore("0")
	v0 := store.Version()
	store.Show(animation.FrameIdle)
	require.Equal(t, v0, store.Version())
	store.Show(animation.FrameHitLeft)
	require.Equal(t, v0+1, store.Version())
	require.Equal(t, animation.FrameHitLeft, store.Snapshot().Frame)
}

func TestSetCounterTextCountsSessionKeystrokes(t *testing.T) {
	store := NewStore("0")
	store.SetCounterText("1")
	store.SetCounterText("2")
	snap := store.Snapshot()
	require.Equal(t, "2", snap.CounterText)
	require.Equal(t, uint64(2), snap.SessionKeystrokes)
}

func TestSnapshotCopiesDevices(t *testing.T) {
	store := NewStore("0")
	devices := []input.DeviceInfo{{Path: "/dev/input/event3", Name: "kbd"}}
	store.SetDevices(devices)
	devices[0].Name = "changed"

	snap := store.Snapshot()
	snap.Devices[0].Path = "mutated"
	require.Equal(t, "kbd", store.Snapshot().Devices[0].Name)
	require.Equal(t, "/dev/input/event3", store.Snapshot().Devices[0].Path)
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	store := NewStore("0")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			store.Show(animation.HitFrame(animation.Side(i % 2)))
			store.SetCounterText("n")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = store.Snapshot()
		}
	}()
	wg.Wait()
	require.Equal(t, uint64(1000), store.Snapshot().SessionKeystrokes)
}
