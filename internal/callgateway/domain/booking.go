package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses. A booking is immutable once completed except for
// status transitions.
const (
	BookingStatusScheduled = "scheduled"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// AvailabilitySlot is an open booking window for a provider on a date.
// Slots are ephemeral: computed on demand, never persisted until booked.
type AvailabilitySlot struct {
	Start string `json:"start"` // "14:00"
	End   string `json:"end"`   // "14:30"
}

// Booking references a tenant, a provider, and a patient contact.
// Created only through the tool-call mediator. IdempotencyKey is
// unique in storage so duplicate tool invocations collapse to one row.
type Booking struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	PatientName     string    `json:"patient_name"`
	PatientPhone    string    `json:"patient_phone"`
	Date            time.Time `json:"date"`       // date only, UTC midnight
	StartTime       string    `json:"start_time"` // "14:00"
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason,omitempty"`
	Status          string    `json:"status"`
	IdempotencyKey  string    `json:"idempotency_key"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewBooking creates a scheduled Booking instance.
func NewBooking(id, tenantID, providerID uuid.UUID, patientName, patientPhone string, date time.Time, startTime string, durationMinutes int, reason, idempotencyKey string) *Booking {
	now := time.Now().UTC()
	return &Booking{
		ID:              id,
		TenantID:        tenantID,
		ProviderID:      providerID,
		PatientName:     patientName,
		PatientPhone:    patientPhone,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: durationMinutes,
		Reason:          reason,
		Status:          BookingStatusScheduled,
		IdempotencyKey:  idempotencyKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CallLog records a completed call for a tenant.
type CallLog struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	PlatformCallID  string    `json:"platform_call_id"`
	Direction       string    `json:"direction"` // "inbound" or "outbound"
	FromNumber      string    `json:"from_number"`
	ToNumber        string    `json:"to_number"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int       `json:"duration_seconds"`
	Outcome         string    `json:"outcome,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
