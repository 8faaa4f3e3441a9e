// Package binder builds the per-call ContextBundle for a tenant.
package binder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

// maxRosterProviders caps the spoken roster; past it the agent steers
// the caller toward a specialty instead of reading the full list.
const maxRosterProviders = 20

const rosterOverflowHint = "... and more doctors available. Ask me for a specific specialty."

// Bind assembles the variable bundle for a tenant and its providers.
// It is a pure function: same inputs always yield the same bundle.
// Providers are rendered in the order given (creation order). Labels
// double as index keys, so colliding labels are disambiguated rather
// than silently overwritten.
func Bind(tenant *domain.Tenant, providers []*domain.Provider) domain.ContextBundle {
	var roster strings.Builder
	index := make(map[string]uuid.UUID, len(providers))

	for i, p := range providers {
		if i == maxRosterProviders {
			roster.WriteByte('\n')
			roster.WriteString(rosterOverflowHint)
			break
		}
		if i > 0 {
			roster.WriteByte('\n')
		}
		specialty := p.Specialty
		if specialty == "" {
			specialty = "General"
		}
		label := p.DisplayLabel()
		if _, taken := index[label]; taken {
			label = fmt.Sprintf("%s (%s)", label, specialty)
		}
		if _, taken := index[label]; taken {
			label = fmt.Sprintf("%s #%d", p.DisplayLabel(), i+1)
		}
		fmt.Fprintf(&roster, "%d. %s - %s", i+1, label, specialty)
		index[label] = p.ID
	}

	return domain.ContextBundle{
		TenantID:        tenant.ID,
		Name:            tenant.Name,
		Address:         tenant.Address,
		Phone:           tenant.PhoneNumber,
		RosterText:      roster.String(),
		ProviderIDIndex: index,
		Locale:          tenant.Locale,
		BusinessHours:   tenant.BusinessHours,
		Greeting:        tenant.Greeting,
	}
}
