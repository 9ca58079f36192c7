package queue

import (
	"testing"

	"github.com/ProtonMail/photon/async"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueuedChannel(t *testing.T) {
	queue := NewQueuedChannel[int](3, 3, async.NoopPanicHandler{})

	require.True(t, queue.Enqueue(1, 2, 3))

	resCh := queue.GetChannel()

	// Items enqueued before closing are still delivered.
	queue.Close()

	require.Equal(t, 1, <-resCh)
	require.Equal(t, 2, <-resCh)
	require.Equal(t, 3, <-resCh)

	_, ok := <-resCh
	require.False(t, ok)
}

func TestQueuedChannel_EnqueueAfterClose(t *testing.T) {
	queue := NewQueuedChannel[int](0, 0, nil)

	queue.Close()

	require.False(t, queue.Enqueue(1))

	_, ok := <-queue.GetChannel()
	require.False(t, ok)
}

func TestQueuedChannel_DoesNotBlockProducer(t *testing.T) {
	queue := NewQueuedChannel[int](0, 0, nil)

	for i := 0; i < 1000; i++ {
		require.True(t, queue.Enqueue(i))
	}

	for i := 0; i < 1000; i++ {
		require.Equal(t, i, <-queue.GetChannel())
	}

	queue.Close()
}

func TestQueuedChannel_CloseAndDiscard(t *testing.T) {
	queue := NewQueuedChannel[string](1, 0, nil)

	require.True(t, queue.Enqueue("a", "b", "c"))

	queue.CloseAndDiscard()

	_, ok := <-queue.GetChannel()
	require.False(t, ok)
}
