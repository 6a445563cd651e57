package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/askhat/filesync/internal/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sendTimeout = 5 * time.Second

// Postgres is a durable at-least-once queue backed by the sync_queue table.
// Claimed rows stay invisible for the configured visibility window, so a
// crashed worker's messages come back on their own.
type Postgres struct {
	pool         *pgxpool.Pool
	pollInterval time.Duration
	visibility   time.Duration
	retryBackoff time.Duration
	maxAttempts  int
}

// NewPostgres constructs a Postgres-backed queue.
func NewPostgres(pool *pgxpool.Pool, cfg config.QueueConfig) *Postgres {
	return &Postgres{
		pool:         pool,
		pollInterval: cfg.PollInterval,
		visibility:   cfg.Visibility,
		retryBackoff: cfg.RetryBackoff,
		maxAttempts:  cfg.MaxAttempts,
	}
}

// Send durably enqueues one sync message.
func (q *Postgres) Send(ctx context.Context, msg SyncMessage) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode sync message: %w", err)
	}

	query := `INSERT INTO sync_queue (id, payload) VALUES ($1, $2);`
	if _, err := q.pool.Exec(ctx, query, uuid.New(), payload); err != nil {
		return fmt.Errorf("enqueue sync message: %w", err)
	}
	return nil
}

// Receive polls for the next visible message and claims it for the
// visibility window.
func (q *Postgres) Receive(ctx context.Context) (Delivery, error) {
	for {
		d, ok, err := q.tryClaim(ctx)
		if err != nil {
			return Delivery{}, err
		}
		if ok {
			return d, nil
		}

		select {
		case <-ctx.Done():
			return Delivery{}, ctx.Err()
		case <-time.After(q.pollInterval):
		}
	}
}

func (q *Postgres) tryClaim(ctx context.Context) (Delivery, bool, error) {
	query := `
UPDATE sync_queue
SET attempts = attempts + 1,
    available_at = NOW() + make_interval(secs => $1)
WHERE id = (
    SELECT id FROM sync_queue
    WHERE available_at <= NOW()
    ORDER BY enqueued_at
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
RETURNING id, payload, attempts;`

	var (
		id      uuid.UUID
		payload []byte
		attempt int
	)
	err := q.pool.QueryRow(ctx, query, q.visibility.Seconds()).Scan(&id, &payload, &attempt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Delivery{}, false, nil
	}
	if err != nil {
		return Delivery{}, false, fmt.Errorf("claim sync message: %w", err)
	}

	var msg SyncMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		// Unparseable rows cannot ever be processed; drop them.
		_, _ = q.pool.Exec(ctx, `DELETE FROM sync_queue WHERE id = $1;`, id)
		return Delivery{}, false, fmt.Errorf("decode sync message %s: %w", id, err)
	}

	return Delivery{ID: id, Message: msg, Attempt: attempt}, true, nil
}

// Ack removes a processed message from the queue.
func (q *Postgres) Ack(ctx context.Context, d Delivery) error {
	if _, err := q.pool.Exec(ctx, `DELETE FROM sync_queue WHERE id = $1;`, d.ID); err != nil {
		return fmt.Errorf("ack sync message: %w", err)
	}
	return nil
}

// Nack schedules a failed message for redelivery, or drops it once the
// attempt cap is reached. Failure bookkeeping has already happened by the
// time a message is nacked, so dropping loses no information.
func (q *Postgres) Nack(ctx context.Context, d Delivery) error {
	if d.Attempt >= q.maxAttempts {
		if _, err := q.pool.Exec(ctx, `DELETE FROM sync_queue WHERE id = $1;`, d.ID); err != nil {
			return fmt.Errorf("drop exhausted sync message: %w", err)
		}
		return nil
	}

	query := `UPDATE sync_queue SET available_at = NOW() + make_interval(secs => $2) WHERE id = $1;`
	if _, err := q.pool.Exec(ctx, query, d.ID, q.retryBackoff.Seconds()); err != nil {
		return fmt.Errorf("nack sync message: %w", err)
	}
	return nil
}

// Depth reports the number of queued messages, including invisible ones.
func (q *Postgres) Depth(ctx context.Context) (int, error) {
	var n int
	if err := q.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sync_queue;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return n, nil
}
