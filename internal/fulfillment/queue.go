package fulfillment

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("fulfillment queue full")

// Queue carries accepted order ids to the fulfillment worker. Ids appear
// in the order their Accept calls committed.
type Queue interface {
	Enqueue(ctx context.Context, orderID int) error
	Dequeue(ctx context.Context) (int, error)
}

// MemoryQueue is the in-process queue. It is lost on restart; the worker
// re-derives pending work from persisted Processing orders on startup
// (see Recover).
type MemoryQueue struct {
	ch chan int
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{ch: make(chan int, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, orderID int) error {
	select {
	case q.ch <- orderID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (int, error) {
	select {
	case id := <-q.ch:
		return id, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Len reports the number of queued ids. Test helper.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}
