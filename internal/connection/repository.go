package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository provides read access to stored customer connections.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a connection repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByAccountID resolves the connection owning an external linked account.
func (r *Repository) FindByAccountID(ctx context.Context, accountID string) (Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT id, customer_id, customer_email, customer_org, connector_type, account_id, account_token, last_synced_at, created_at, updated_at
FROM connections
WHERE account_id = $1;`

	var conn Connection
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&conn.ID,
		&conn.CustomerID,
		&conn.CustomerEmail,
		&conn.CustomerOrg,
		&conn.ConnectorType,
		&conn.AccountID,
		&conn.AccountToken,
		&conn.LastSyncedAt,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Connection{}, ErrConnectionNotFound
		}
		return Connection{}, fmt.Errorf("find connection by account: %w", err)
	}
	return conn, nil
}

// MarkSynced advances the connection's sync cursor.
func (r *Repository) MarkSynced(ctx context.Context, id uuid.UUID, syncedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `UPDATE connections SET last_synced_at = $2, updated_at = NOW() WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, id, syncedAt)
	if err != nil {
		return fmt.Errorf("mark connection synced: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConnectionNotFound
	}
	return nil
}
