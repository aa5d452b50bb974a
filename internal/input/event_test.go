package input

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func encode(tvSize int, events ...Event) []byte {
	size := tvSize + 8
	out := make([]byte, 0, size*len(events))
	for _, ev := range events {
		rec := make([]byte, size)
		binary.LittleEndian.PutUint16(rec[tvSize:], ev.Type)
		binary.LittleEndian.PutUint16(rec[tvSize+2:], ev.Code)
		binary.LittleEndian.PutUint32(rec[tvSize+4:], uint32(ev.Value))
		out = append(out, rec...)
	}
	return out
}

func TestDecodeEvents(t *testing.T) {
	raw := encode(16, keyDown(KeyA), syn(), keyUp(KeyA))
	events, rest := decodeEvents(raw, 16)
	require.Empty(t, rest)
	require.Equal(t, []Event{keyDown(KeyA), syn(), keyUp(KeyA)}, events)
}

func TestDecodeEventsKeepsPartialRecord(t *testing.T) {
	raw := encode(8, keyDown(KeyA), repeat(KeyA))
	events, rest := decodeEvents(raw[:len(raw)-3], 8)
	require.Equal(t, []Event{keyDown(KeyA)}, events)
	require.Len(t, rest, 13)

	events, rest = decodeEvents(append(rest, raw[len(raw)-3:]...), 8)
	require.Empty(t, rest)
	require.Equal(t, []Event{repeat(KeyA)}, events)
}

func TestIsKeyDown(t *testing.T) {
	require.True(t, keyDown(KeyA).IsKeyDown())
	require.False(t, keyUp(KeyA).IsKeyDown())
	require.False(t, repeat(KeyA).IsKeyDown())
	require.False(t, Event{Type: EvSyn, Value: 1}.IsKeyDown())
}
