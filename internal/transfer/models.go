package transfer

import (
	"time"

	"github.com/google/uuid"
)

// Record is the permanent record of a successfully transferred file.
type Record struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	StorageKey   string    `json:"storage_key"`
	CustomerID   string    `json:"customer_id"`
	RemoteFileID string    `json:"remote_file_id"`
	AccountID    string    `json:"account_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FailedSync is one append-only row of the failure ledger.
type FailedSync struct {
	ID          uuid.UUID `json:"id"`
	FileID      string    `json:"file_id"`
	AccountID   string    `json:"account_id"`
	Reason      string    `json:"reason"`
	AttemptedAt time.Time `json:"attempted_at"`
}
