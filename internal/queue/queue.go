// Package queue carries sync messages from the webhook intake to the
// download workers with at-least-once delivery.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrQueueClosed signals that the queue no longer accepts messages.
	ErrQueueClosed = errors.New("queue closed")
	// ErrQueueFull signals that the queue cannot accept more messages.
	ErrQueueFull = errors.New("queue full")
)

// FileMetadata describes the remote file being transferred. It travels
// inside the sync message and is persisted into the eventual file record,
// which stamps its own transfer time.
type FileMetadata struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
}

// SyncMessage instructs a download worker to transfer one remote file.
type SyncMessage struct {
	AccountID    string       `json:"account_id"`
	FileID       string       `json:"file_id"`
	RemoteURL    string       `json:"remote_url"`
	DeclaredSize int64        `json:"declared_size,omitempty"`
	Metadata     FileMetadata `json:"metadata"`
	Timestamp    time.Time    `json:"timestamp"`
}

// Delivery is one handed-out instance of a queued message. The same message
// may be delivered more than once.
type Delivery struct {
	ID      uuid.UUID
	Message SyncMessage
	Attempt int
}

// Queue is the producer side of the event queue.
type Queue interface {
	Send(ctx context.Context, msg SyncMessage) error
}

// Source is the consumer side. Receive blocks until a delivery is available
// or the context is done. A delivery must be settled with Ack or Nack;
// unsettled deliveries reappear after the visibility window.
type Source interface {
	Receive(ctx context.Context) (Delivery, error)
	Ack(ctx context.Context, d Delivery) error
	Nack(ctx context.Context, d Delivery) error
}

// Handler processes one delivery. A non-nil error triggers redelivery.
type Handler func(ctx context.Context, msg SyncMessage) error
