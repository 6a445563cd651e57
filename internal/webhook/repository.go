package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository provides access to raw webhook event storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a webhook event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save durably persists a raw event before any interpretation.
func (r *Repository) Save(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `INSERT INTO webhook_events (id, event_type, payload) VALUES ($1, $2, $3);`

	if _, err := r.pool.Exec(ctx, query, event.ID, event.EventType, []byte(event.Payload)); err != nil {
		return fmt.Errorf("save webhook event: %w", err)
	}
	return nil
}

// MarkProcessed stamps the event with a completion timestamp.
func (r *Repository) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `UPDATE webhook_events SET processed_at = $2, updated_at = NOW() WHERE id = $1;`

	if _, err := r.pool.Exec(ctx, query, id, processedAt); err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	return nil
}
