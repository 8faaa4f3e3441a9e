package domain

import (
	"time"

	"github.com/google/uuid"
)

// BlockedTime is an ad hoc closed window (holiday, meeting, emergency
// closure). It applies to the whole tenant when ProviderID is nil,
// otherwise to one provider.
type BlockedTime struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	ProviderID *uuid.UUID `json:"provider_id,omitempty"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      time.Time  `json:"end_at"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
