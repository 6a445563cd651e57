package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/askhat/filesync/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// FailureRepository provides access to the failed sync ledger.
type FailureRepository struct {
	pool *pgxpool.Pool
}

// NewFailureRepository builds a new failure ledger repository.
func NewFailureRepository(pool *pgxpool.Pool) *FailureRepository {
	return &FailureRepository{pool: pool}
}

// Save appends one failure record.
func (r *FailureRepository) Save(ctx context.Context, f FailedSync) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO failed_file_syncs (id, file_id, account_id, reason, attempted_at)
VALUES ($1, $2, $3, $4, $5);`

	if _, err := r.pool.Exec(ctx, query, f.ID, f.FileID, f.AccountID, f.Reason, f.AttemptedAt); err != nil {
		return fmt.Errorf("save failed sync: %w", err)
	}
	return nil
}

// LatestByFileID fetches the most recent failure record for a file.
func (r *FailureRepository) LatestByFileID(ctx context.Context, fileID string) (FailedSync, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT id, file_id, account_id, reason, attempted_at
FROM failed_file_syncs
WHERE file_id = $1
ORDER BY attempted_at DESC
LIMIT 1;`

	var f FailedSync
	err := r.pool.QueryRow(ctx, query, fileID).Scan(&f.ID, &f.FileID, &f.AccountID, &f.Reason, &f.AttemptedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FailedSync{}, ErrNoFailedSyncs
		}
		return FailedSync{}, fmt.Errorf("latest failed sync: %w", err)
	}
	return f, nil
}

type failureStore interface {
	Save(ctx context.Context, f FailedSync) error
	LatestByFileID(ctx context.Context, fileID string) (FailedSync, error)
}

// Ledger records transfer failures, collapsing consecutive identical
// failures for a file into a single row. It records failure transitions,
// not every attempt.
type Ledger struct {
	store failureStore
	log   *zap.Logger
}

// NewLedger constructs a failure ledger.
func NewLedger(store failureStore, log *zap.Logger) *Ledger {
	return &Ledger{store: store, log: log}
}

// Record writes a failure row unless the latest row for the file carries
// exactly the same reason. Reason comparison is exact-string; an embedded
// id or other cosmetic variation defeats deduplication.
func (l *Ledger) Record(ctx context.Context, fileID, accountID, reason string) error {
	latest, err := l.store.LatestByFileID(ctx, fileID)
	if err != nil && !errors.Is(err, ErrNoFailedSyncs) {
		return err
	}
	if err == nil && latest.Reason == reason {
		l.log.Info("skipping duplicate failure record",
			zap.String("file_id", fileID),
			zap.String("reason", reason),
		)
		metrics.FailureRecordsDeduplicated.Inc()
		return nil
	}

	f := FailedSync{
		ID:          uuid.New(),
		FileID:      fileID,
		AccountID:   accountID,
		Reason:      reason,
		AttemptedAt: time.Now().UTC(),
	}
	if err := l.store.Save(ctx, f); err != nil {
		return err
	}
	metrics.FailureRecordsWritten.Inc()
	return nil
}
