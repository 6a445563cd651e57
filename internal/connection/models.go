package connection

import (
	"time"

	"github.com/google/uuid"
)

// Connection links a local customer to one external linked account,
// including the credential used to act on its behalf.
type Connection struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    string     `json:"customer_id"`
	CustomerEmail string     `json:"customer_email"`
	CustomerOrg   string     `json:"customer_org"`
	ConnectorType string     `json:"connector_type"`
	AccountID     string     `json:"account_id"`
	AccountToken  string     `json:"-"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
