package webhook

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one durably stored inbound webhook notification. The raw payload
// is kept verbatim so every notification stays auditable regardless of how
// its interpretation went.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	EventType   string          `json:"event_type"`
	Payload     json.RawMessage `json:"payload"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
