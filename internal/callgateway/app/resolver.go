package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carevox/callgateway/internal/callgateway/binder"
	"github.com/carevox/callgateway/internal/callgateway/domain"
)

// TenantDirectory is the slice of the directory the app services need.
type TenantDirectory interface {
	ResolveByPhoneNumber(ctx context.Context, number string) (*domain.Tenant, error)
	ResolveByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	ListProviders(ctx context.Context, tenantID uuid.UUID) ([]*domain.Provider, error)
	ProviderBelongsTo(ctx context.Context, providerID, tenantID uuid.UUID) (*domain.Provider, error)
}

// CallEvent is an inbound call event from the voice platform.
// TenantID is set when the webhook URL embeds a tenant path segment
// (one webhook URL per tenant); otherwise resolution falls back to the
// dialed number (one shared webhook).
type CallEvent struct {
	TenantID   *uuid.UUID
	CallID     string
	FromNumber string
	ToNumber   string
}

// InboundResponse is the platform-facing resolution result: the shared
// agent identifier plus the tenant's variable bundle.
type InboundResponse struct {
	AgentID string
	Bundle  domain.ContextBundle
}

// InboundResolver maps an inbound call event to a tenant and binds its
// context bundle. Per call event the states are RECEIVED, RESOLVED,
// BOUND, RESPONDED, or RECEIVED, REJECTED on an unresolved tenant.
type InboundResolver struct {
	directory     TenantDirectory
	masterAgentID string
	logger        *slog.Logger
}

// NewInboundResolver creates an InboundResolver. masterAgentID is the
// single shared conversation agent, loaded at process start.
func NewInboundResolver(dir TenantDirectory, masterAgentID string, logger *slog.Logger) *InboundResolver {
	return &InboundResolver{
		directory:     dir,
		masterAgentID: masterAgentID,
		logger:        logger.With("component", "inbound_resolver"),
	}
}

// Resolve runs the resolution-and-binding sequence for one call event.
// It has no side effects beyond directory reads and must stay well
// inside the sub-second budget that gates call pickup.
func (r *InboundResolver) Resolve(ctx context.Context, event CallEvent) (*InboundResponse, error) {
	started := time.Now()
	outcome := "error"
	defer func() {
		inboundResolutionsCounter.WithLabelValues(outcome).Inc()
		inboundResolutionDurationHist.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
	}()

	var (
		tenant *domain.Tenant
		err    error
	)
	if event.TenantID != nil {
		tenant, err = r.directory.ResolveByID(ctx, *event.TenantID)
	} else {
		tenant, err = r.directory.ResolveByPhoneNumber(ctx, event.ToNumber)
	}
	if err != nil {
		if errorIsNotFound(err) {
			outcome = "not_found"
			r.logger.WarnContext(ctx, "Inbound call event rejected, tenant not resolved",
				"call_id", event.CallID, "to_number", event.ToNumber)
		}
		return nil, err
	}

	providers, err := r.directory.ListProviders(ctx, tenant.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list providers for resolved tenant",
			"error", err, "tenant_id", tenant.ID, "call_id", event.CallID)
		return nil, err
	}

	bundle := binder.Bind(tenant, providers)

	agentID := r.masterAgentID
	if tenant.AgentID != "" {
		agentID = tenant.AgentID
	}

	outcome = "resolved"
	r.logger.InfoContext(ctx, "Inbound call event resolved",
		"call_id", event.CallID, "tenant_id", tenant.ID, "providers", len(providers))
	return &InboundResponse{AgentID: agentID, Bundle: bundle}, nil
}

// BundleVariables flattens a ContextBundle into the string map the
// voice platform expects as dynamic variables. The provider index is
// serialized to JSON (Go map marshaling is key-sorted, so the output
// is deterministic for identical bundles).
func BundleVariables(b domain.ContextBundle) map[string]string {
	indexJSON, err := json.Marshal(b.ProviderIDIndex)
	if err != nil {
		indexJSON = []byte("{}")
	}
	return map[string]string{
		"tenant_id":         b.TenantID.String(),
		"tenant_name":       b.Name,
		"address":           b.Address,
		"phone":             b.Phone,
		"provider_roster":   b.RosterText,
		"provider_id_index": string(indexJSON),
		"locale":            b.Locale,
		"business_hours":    b.BusinessHours,
		"greeting":          b.Greeting,
	}
}

func errorIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
