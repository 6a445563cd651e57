package transfer

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

// Repository provides access to file record storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new file record repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the record for a completed transfer.
func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO file_records (id, original_name, mime_type, size_bytes, storage_key, customer_id, remote_file_id, account_id, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, original_name, mime_type, size_bytes, storage_key, customer_id, remote_file_id, account_id, uploaded_at, created_at, updated_at;`

	row := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.OriginalName,
		rec.MimeType,
		rec.Size,
		rec.StorageKey,
		rec.CustomerID,
		rec.RemoteFileID,
		rec.AccountID,
		rec.UploadedAt,
	)

	var stored Record
	if err := row.Scan(&stored.ID, &stored.OriginalName, &stored.MimeType, &stored.Size, &stored.StorageKey, &stored.CustomerID, &stored.RemoteFileID, &stored.AccountID, &stored.UploadedAt, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return Record{}, fmt.Errorf("create file record: %w", err)
	}
	return stored, nil
}

// Get fetches one file record by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT id, original_name, mime_type, size_bytes, storage_key, customer_id, remote_file_id, account_id, uploaded_at, created_at, updated_at
FROM file_records
WHERE id = $1;`

	var rec Record
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.OriginalName,
		&rec.MimeType,
		&rec.Size,
		&rec.StorageKey,
		&rec.CustomerID,
		&rec.RemoteFileID,
		&rec.AccountID,
		&rec.UploadedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("get file record: %w", err)
	}
	return rec, nil
}

// ExistsByRemoteFile reports whether the account already has a record for
// the remote file. Used by the reconciliation sweep to skip files the
// event-driven path already transferred.
func (r *Repository) ExistsByRemoteFile(ctx context.Context, accountID, remoteFileID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM file_records WHERE account_id = $1 AND remote_file_id = $2);`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, accountID, remoteFileID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check file record existence: %w", err)
	}
	return exists, nil
}
