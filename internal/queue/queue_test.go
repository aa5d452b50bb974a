package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueDeliversInSendOrder(t *testing.T) {
	q := New[int]()
	for i := 1; i <= 5; i++ {
		require.NoError(t, q.TrySend(i))
	}
	require.Equal(t, 5, q.Len())

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		v, err := q.Recv(ctx)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	_, ok := q.TryRecv()
	require.False(t, ok)
}

func TestQueueCloseRejectsSendsButDrainsPending(t *testing.T) {
	q := New[string]()
	require.NoError(t, q.TrySend("a"))
	q.Close()
	q.Close()

	require.ErrorIs(t, q.TrySend("b"), ErrClosed)
	require.True(t, q.Closed())

	v, err := q.Recv(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a", v)

	_, err = q.Recv(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestBoundedQueueDropsWhenFull(t *testing.T) {
	q := NewBounded[int](2)
	require.NoError(t, q.TrySend(1))
	require.NoError(t, q.TrySend(2))
	require.ErrorIs(t, q.TrySend(3), ErrFull)

	v, ok := q.TryRecv()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.NoError(t, q.TrySend(3))
}

func TestRecvHonoursContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Recv(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRecvWakesOnSend(t *testing.T) {
	q := New[int]()
	got := make(chan int, 1)
	go func() {
		v, err := q.Recv(context.Background())
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.TrySend(42))

	select {
	case v := <-got:
		require.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("receiver was not woken")
	}
}

func TestConcurrentProducersNeverBlock(t *testing.T) {
	q := New[struct{}]()
	const producers, perProducer = 8, 500

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				_ = q.TrySend(struct{}{})
			}
		}()
	}
	wg.Wait()

	received := 0
	for {
		if _, ok := q.TryRecv(); !ok {
			break
		}
		received++
	}
	require.Equal(t, producers*perProducer, received)
}

func TestReadyFiresAfterClose(t *testing.T) {
	q := New[int]()
	q.Close()
	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready did not fire after close")
	}
}
