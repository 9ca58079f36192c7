// Package queue provides an unbounded channel used to hand events to a consumer that reads at its own pace.
package queue

import (
	"sync"
	"sync/atomic"

	"github.com/ProtonMail/photon/async"
)

// QueuedChannel publishes items on a channel without the producer ever blocking on a slow reader.
// Items enqueued before Close are still delivered; the channel is closed once they are consumed.
type QueuedChannel[T any] struct {
	ch     chan T
	items  []T
	cond   *sync.Cond
	closed int32
	done   chan struct{}
}

func NewQueuedChannel[T any](chanBufferSize, queueCapacity int, panicHandler async.PanicHandler) *QueuedChannel[T] {
	queue := &QueuedChannel[T]{
		ch:    make(chan T, chanBufferSize),
		items: make([]T, 0, queueCapacity),
		cond:  sync.NewCond(&sync.Mutex{}),
		done:  make(chan struct{}),
	}

	go func() {
		defer async.HandlePanic(panicHandler)

		defer close(queue.done)
		defer close(queue.ch)

		for {
			item, ok := queue.pop()
			if !ok {
				return
			}

			queue.ch <- item
		}
	}()

	return queue
}

// Enqueue appends items to the queue. It returns false if the queue is already closed.
func (q *QueuedChannel[T]) Enqueue(items ...T) bool {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	if q.isClosed() {
		return false
	}

	q.items = append(q.items, items...)

	q.cond.Broadcast()

	return true
}

func (q *QueuedChannel[T]) GetChannel() <-chan T {
	return q.ch
}

// Close stops accepting new items. Pending items remain readable.
func (q *QueuedChannel[T]) Close() {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	atomic.StoreInt32(&q.closed, 1)

	q.cond.Broadcast()
}

// CloseAndDiscard closes the queue, drops whatever was not consumed yet and waits for the forwarding goroutine.
func (q *QueuedChannel[T]) CloseAndDiscard() {
	q.cond.L.Lock()
	atomic.StoreInt32(&q.closed, 1)
	q.items = nil
	q.cond.Broadcast()
	q.cond.L.Unlock()

	for {
		select {
		case <-q.ch:
		case <-q.done:
			return
		}
	}
}

func (q *QueuedChannel[T]) isClosed() bool {
	return atomic.LoadInt32(&q.closed) == 1
}

func (q *QueuedChannel[T]) pop() (T, bool) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	var item T

	for len(q.items) == 0 {
		if q.isClosed() {
			return item, false
		}

		q.cond.Wait()
	}

	item, q.items = q.items[0], q.items[1:]

	return item, true
}
