package domain

import "github.com/google/uuid"

// ContextBundle is the tenant-specific variable set injected into a
// conversation before it starts. It is a derived value object:
// constructed per call event and discarded after the call ends. It is
// never cached across calls because the provider roster may change
// between calls.
type ContextBundle struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"tenant_name"`
	Address  string    `json:"address"`
	Phone    string    `json:"phone"`
	// RosterText is a stable, numbered, newline-joined rendering of the
	// providers in creation order.
	RosterText string `json:"provider_roster"`
	// ProviderIDIndex maps each provider's display label to its opaque
	// ID, used to resolve a spoken provider choice without ambiguity.
	ProviderIDIndex map[string]uuid.UUID `json:"provider_id_index"`
	Locale          string               `json:"locale"`
	BusinessHours   string               `json:"business_hours"`
	Greeting        string               `json:"greeting"`
}
