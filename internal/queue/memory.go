package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultMemoryCapacity = 1024

// Memory is an in-process queue with the same at-least-once contract as the
// Postgres queue: nacked deliveries reappear after the retry backoff until
// the attempt cap is reached. Suited to tests and single-process deployments.
type Memory struct {
	ch           chan Delivery
	retryBackoff time.Duration
	maxAttempts  int

	mu     sync.Mutex
	closed bool
}

// NewMemory constructs an in-memory queue.
func NewMemory(capacity int, retryBackoff time.Duration, maxAttempts int) *Memory {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Memory{
		ch:           make(chan Delivery, capacity),
		retryBackoff: retryBackoff,
		maxAttempts:  maxAttempts,
	}
}

// Send enqueues one sync message.
func (q *Memory) Send(ctx context.Context, msg SyncMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	d := Delivery{ID: uuid.New(), Message: msg}
	select {
	case q.ch <- d:
		return nil
	default:
		return ErrQueueFull
	}
}

// Receive blocks for the next delivery.
func (q *Memory) Receive(ctx context.Context) (Delivery, error) {
	select {
	case <-ctx.Done():
		return Delivery{}, ctx.Err()
	case d, ok := <-q.ch:
		if !ok {
			return Delivery{}, ErrQueueClosed
		}
		d.Attempt++
		return d, nil
	}
}

// Ack settles a processed delivery.
func (q *Memory) Ack(ctx context.Context, d Delivery) error {
	return nil
}

// requeueRetryDelay spaces out requeue attempts while the channel is at
// capacity.
const requeueRetryDelay = 10 * time.Millisecond

// Nack requeues a failed delivery after the retry backoff, or drops it once
// the attempt cap is reached. A requeue that finds the channel at capacity
// keeps retrying until a slot frees up or the queue closes, so no delivery
// below the attempt cap is ever lost.
func (q *Memory) Nack(ctx context.Context, d Delivery) error {
	if d.Attempt >= q.maxAttempts {
		return nil
	}

	var requeue func()
	requeue = func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.closed {
			return
		}
		select {
		case q.ch <- d:
		default:
			time.AfterFunc(requeueRetryDelay, requeue)
		}
	}

	if q.retryBackoff <= 0 {
		requeue()
		return nil
	}
	time.AfterFunc(q.retryBackoff, requeue)
	return nil
}

// Close rejects further sends. In-flight deliveries drain normally.
func (q *Memory) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
