package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySendReceive(t *testing.T) {
	q := NewMemory(4, 0, 3)
	defer q.Close()
	ctx := context.Background()

	msg := SyncMessage{AccountID: "acc1", FileID: "f1", RemoteURL: "https://remote/f1"}
	if err := q.Send(ctx, msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	d, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if d.Message.FileID != "f1" || d.Message.AccountID != "acc1" {
		t.Fatalf("unexpected message %+v", d.Message)
	}
	if d.Attempt != 1 {
		t.Fatalf("attempt = %d, want 1", d.Attempt)
	}
}

func TestMemoryNackRedelivers(t *testing.T) {
	q := NewMemory(4, 0, 3)
	defer q.Close()
	ctx := context.Background()

	if err := q.Send(ctx, SyncMessage{FileID: "f1"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	d, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := q.Nack(ctx, d); err != nil {
		t.Fatalf("nack: %v", err)
	}

	redelivered, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive redelivery: %v", err)
	}
	if redelivered.ID != d.ID {
		t.Fatalf("redelivery id = %s, want %s", redelivered.ID, d.ID)
	}
	if redelivered.Attempt != 2 {
		t.Fatalf("attempt = %d, want 2", redelivered.Attempt)
	}
}

func TestMemoryNackDropsAtAttemptCap(t *testing.T) {
	q := NewMemory(4, 0, 2)
	ctx := context.Background()

	if err := q.Send(ctx, SyncMessage{FileID: "f1"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	d, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := q.Nack(ctx, d); err != nil {
		t.Fatalf("nack 1: %v", err)
	}

	d, err = q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive 2: %v", err)
	}
	if err := q.Nack(ctx, d); err != nil {
		t.Fatalf("nack 2: %v", err)
	}

	recvCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := q.Receive(recvCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("receive after drop = %v, want deadline exceeded", err)
	}
}

func TestMemoryNackHonorsBackoff(t *testing.T) {
	q := NewMemory(4, 20*time.Millisecond, 3)
	defer q.Close()
	ctx := context.Background()

	if err := q.Send(ctx, SyncMessage{FileID: "f1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	d, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := q.Nack(ctx, d); err != nil {
		t.Fatalf("nack: %v", err)
	}

	immediate, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	if _, err := q.Receive(immediate); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("redelivery before backoff: err = %v", err)
	}

	later, cancelLater := context.WithTimeout(ctx, time.Second)
	defer cancelLater()
	if _, err := q.Receive(later); err != nil {
		t.Fatalf("redelivery after backoff: %v", err)
	}
}

func TestMemoryNackRetriesWhenFull(t *testing.T) {
	q := NewMemory(1, 0, 5)
	defer q.Close()
	ctx := context.Background()

	if err := q.Send(ctx, SyncMessage{FileID: "f1"}); err != nil {
		t.Fatalf("send f1: %v", err)
	}
	d1, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive f1: %v", err)
	}

	// Fill the only slot so the nacked delivery cannot requeue yet.
	if err := q.Send(ctx, SyncMessage{FileID: "f2"}); err != nil {
		t.Fatalf("send f2: %v", err)
	}
	if err := q.Nack(ctx, d1); err != nil {
		t.Fatalf("nack f1: %v", err)
	}

	d2, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive f2: %v", err)
	}
	if d2.Message.FileID != "f2" {
		t.Fatalf("received %q, want f2", d2.Message.FileID)
	}

	// With a slot free again the nacked delivery must come back.
	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	redelivered, err := q.Receive(recvCtx)
	if err != nil {
		t.Fatalf("nacked delivery never requeued: %v", err)
	}
	if redelivered.Message.FileID != "f1" {
		t.Fatalf("received %q, want f1", redelivered.Message.FileID)
	}
}

func TestMemoryClose(t *testing.T) {
	q := NewMemory(4, 0, 3)
	ctx := context.Background()

	q.Close()
	q.Close() // idempotent

	if err := q.Send(ctx, SyncMessage{FileID: "f1"}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("send after close = %v, want ErrQueueClosed", err)
	}
	if _, err := q.Receive(ctx); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("receive after close = %v, want ErrQueueClosed", err)
	}
}

func TestMemorySendFull(t *testing.T) {
	q := NewMemory(1, 0, 3)
	defer q.Close()
	ctx := context.Background()

	if err := q.Send(ctx, SyncMessage{FileID: "f1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := q.Send(ctx, SyncMessage{FileID: "f2"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("send to full queue = %v, want ErrQueueFull", err)
	}
}
