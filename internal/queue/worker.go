package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// receiveBackoff spaces out retries after a failed Receive so an unreachable
// queue is not hammered in a hot loop.
const receiveBackoff = time.Second

// Workers drains a Source with a pool of goroutines, invoking the handler
// once per delivery. Distinct messages are processed concurrently; the
// handler must tolerate redelivery of the same message.
type Workers struct {
	source  Source
	handler Handler
	count   int
	log     *zap.Logger

	wg sync.WaitGroup
}

// NewWorkers constructs a worker pool.
func NewWorkers(source Source, handler Handler, count int, log *zap.Logger) *Workers {
	if count < 1 {
		count = 1
	}
	return &Workers{
		source:  source,
		handler: handler,
		count:   count,
		log:     log,
	}
}

// Start launches the pool. Workers run until the context is cancelled.
func (w *Workers) Start(ctx context.Context) {
	for i := 0; i < w.count; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.run(ctx, id)
		}(i)
	}
	w.log.Info("sync workers started", zap.Int("count", w.count))
}

// Wait blocks until all workers have exited.
func (w *Workers) Wait() {
	w.wg.Wait()
}

func (w *Workers) run(ctx context.Context, id int) {
	for {
		d, err := w.source.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrQueueClosed) {
				return
			}
			w.log.Error("receive sync message", zap.Int("worker", id), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(receiveBackoff):
			}
			continue
		}

		if err := w.handler(ctx, d.Message); err != nil {
			w.log.Warn("sync message failed",
				zap.Int("worker", id),
				zap.String("file_id", d.Message.FileID),
				zap.Int("attempt", d.Attempt),
				zap.Error(err),
			)
			if nackErr := w.source.Nack(ctx, d); nackErr != nil {
				w.log.Error("nack sync message", zap.Error(nackErr))
			}
			continue
		}

		if ackErr := w.source.Ack(ctx, d); ackErr != nil {
			w.log.Error("ack sync message", zap.Error(ackErr))
		}
	}
}
