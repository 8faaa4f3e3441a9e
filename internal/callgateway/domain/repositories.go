package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TenantRepository is the consumed read interface over tenant records.
type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetByPhoneNumber(ctx context.Context, number string) (*Tenant, error)
}

// ProviderRepository is the consumed read interface over provider records.
type ProviderRepository interface {
	// GetByID returns the provider only if it belongs to tenantID;
	// ErrNotFound otherwise.
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Provider, error)
	// ListByTenantID returns active providers in creation (position) order.
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*Provider, error)
}

// BookingRepository is the consumed booking/availability storage interface.
// CreateIdempotent must be backed by a storage-level uniqueness
// constraint on the idempotency key; this layer only reacts to it.
type BookingRepository interface {
	// CreateIdempotent inserts the booking. If a booking with the same
	// idempotency key already exists it returns the stored booking and
	// ErrDuplicateEntry; no second row is ever written.
	CreateIdempotent(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Booking, error)
	// ListScheduled returns scheduled bookings for the provider on the
	// date, ordered by start time ascending.
	ListScheduled(ctx context.Context, tenantID, providerID uuid.UUID, date time.Time) ([]*Booking, error)
	// ListUpcomingByPatientPhone returns the patient's scheduled
	// bookings within the tenant, soonest first.
	ListUpcomingByPatientPhone(ctx context.Context, tenantID uuid.UUID, patientPhone string, from time.Time) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status string) error
}

// BlockedTimeRepository reads ad hoc closed windows.
type BlockedTimeRepository interface {
	// ListForDate returns the windows overlapping the date that apply
	// to the provider: rows scoped to it plus tenant-wide rows.
	ListForDate(ctx context.Context, tenantID, providerID uuid.UUID, date time.Time) ([]*BlockedTime, error)
}

// CallLogRepository persists completed-call records.
type CallLogRepository interface {
	Create(ctx context.Context, cl *CallLog) error
}

// OutboundCallRequest is handed to the telephony dispatcher.
type OutboundCallRequest struct {
	FromNumber string
	ToNumber   string
	AgentID    string
	Variables  map[string]string
}

// DispatchResult reports the telephony collaborator's outcome unchanged.
type DispatchResult struct {
	PlatformCallID string
	Accepted       bool
	ProviderStatus string
}

// TelephonyDispatcher places outbound calls on the voice platform.
// Retry and timeout policy belong to the implementation, not callers.
type TelephonyDispatcher interface {
	PlaceCall(ctx context.Context, req OutboundCallRequest) (*DispatchResult, error)
}
