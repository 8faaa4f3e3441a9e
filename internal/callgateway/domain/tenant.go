package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents an independently configured clinic routed through
// the shared gateway. The phone number is unique across active tenants
// and serves only as a routing hint for inbound resolution; the tenant
// ID is the durable key for all downstream joins.
type Tenant struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PhoneNumber   string    `json:"phone_number"`
	Address       string    `json:"address,omitempty"`
	Locale        string    `json:"locale"`
	BusinessHours string    `json:"business_hours,omitempty"`
	Greeting      string    `json:"greeting,omitempty"`
	// AgentID overrides the shared master agent for this tenant when set.
	AgentID   string    `json:"agent_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTenant creates a new Tenant instance. ID is generated before calling this.
func NewTenant(id uuid.UUID, name, phoneNumber, address, locale string) *Tenant {
	now := time.Now().UTC()
	return &Tenant{
		ID:          id,
		Name:        name,
		PhoneNumber: phoneNumber,
		Address:     address,
		Locale:      locale,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DaySchedule is a provider's working window on one weekday.
type DaySchedule struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // "09:00"
	End     string `json:"end"`   // "17:00"
}

// TimeWindow is a break inside a working day, e.g. lunch.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Provider is a service provider (doctor) belonging to exactly one tenant.
// Position preserves creation order for stable roster rendering.
type Provider struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Title     string    `json:"title,omitempty"`
	Specialty string    `json:"specialty,omitempty"`
	Contact   string    `json:"contact,omitempty"`
	// WorkingHours keys are lowercase weekday names ("monday" .. "sunday").
	// Stored as JSONB.
	WorkingHours        map[string]DaySchedule `json:"working_hours,omitempty"`
	BreakTimes          []TimeWindow           `json:"break_times,omitempty"`
	SlotDurationMinutes int                    `json:"slot_duration_minutes"`
	// BufferMinutes is idle time between consecutive slots.
	BufferMinutes int `json:"buffer_minutes"`
	Position      int `json:"position"`
	IsActive            bool                   `json:"is_active"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// DisplayLabel is the provider's spoken label, used as the roster key
// for resolving a caller's provider choice back to an ID.
func (p *Provider) DisplayLabel() string {
	if p.Title == "" {
		return p.Name
	}
	return p.Title + " " + p.Name
}

// NewProvider creates a new Provider instance.
func NewProvider(id, tenantID uuid.UUID, name, title, specialty string, position int) *Provider {
	now := time.Now().UTC()
	return &Provider{
		ID:                  id,
		TenantID:            tenantID,
		Name:                name,
		Title:               title,
		Specialty:           specialty,
		SlotDurationMinutes: 30,
		BufferMinutes:       5,
		Position:            position,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
