// Package directory is the read-only accessor over tenant and provider
// records, keyed by tenant ID or by routable phone number.
package directory

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

// Directory resolves tenants and lists their providers. Lookups are
// deterministic and side-effect-free; the underlying pool supports
// concurrent reads without locking.
type Directory struct {
	tenantRepo   domain.TenantRepository
	providerRepo domain.ProviderRepository
	logger       *slog.Logger
}

// New creates a Directory.
func New(tenantRepo domain.TenantRepository, providerRepo domain.ProviderRepository, logger *slog.Logger) *Directory {
	return &Directory{
		tenantRepo:   tenantRepo,
		providerRepo: providerRepo,
		logger:       logger.With("component", "directory"),
	}
}

// ResolveByPhoneNumber maps a routable phone number to its active tenant.
// Returns domain.ErrNotFound when no active tenant owns the number.
func (d *Directory) ResolveByPhoneNumber(ctx context.Context, number string) (*domain.Tenant, error) {
	tenant, err := d.tenantRepo.GetByPhoneNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		d.logger.WarnContext(ctx, "Tenant resolved by phone but inactive", "tenant_id", tenant.ID)
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}

// ResolveByID maps a tenant identifier to its active tenant.
// Returns domain.ErrNotFound when the ID does not match an active tenant.
func (d *Directory) ResolveByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	tenant, err := d.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		d.logger.WarnContext(ctx, "Tenant resolved by ID but inactive", "tenant_id", tenant.ID)
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}

// ListProviders returns the tenant's active providers in creation order.
func (d *Directory) ListProviders(ctx context.Context, tenantID uuid.UUID) ([]*domain.Provider, error) {
	return d.providerRepo.ListByTenantID(ctx, tenantID)
}

// ProviderBelongsTo reports whether the provider exists under the
// tenant. It is the cross-tenant isolation check used by the tool-call
// mediator: a provider ID from another tenant must not resolve.
func (d *Directory) ProviderBelongsTo(ctx context.Context, providerID, tenantID uuid.UUID) (*domain.Provider, error) {
	return d.providerRepo.GetByID(ctx, providerID, tenantID)
}
