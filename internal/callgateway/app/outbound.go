package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carevox/callgateway/internal/callgateway/binder"
	"github.com/carevox/callgateway/internal/callgateway/domain"
)

// OutboundInitiator constructs outbound call requests (reminders,
// notifications) carrying the same context bundle as inbound calls,
// and delegates dispatch to the telephony collaborator. It does not
// retry; retry policy belongs to the dispatcher's contract.
type OutboundInitiator struct {
	directory     TenantDirectory
	dispatcher    domain.TelephonyDispatcher
	masterAgentID string
	logger        *slog.Logger
}

// NewOutboundInitiator creates an OutboundInitiator.
func NewOutboundInitiator(dir TenantDirectory, dispatcher domain.TelephonyDispatcher, masterAgentID string, logger *slog.Logger) *OutboundInitiator {
	return &OutboundInitiator{
		directory:     dir,
		dispatcher:    dispatcher,
		masterAgentID: masterAgentID,
		logger:        logger.With("component", "outbound_initiator"),
	}
}

// Initiate places an outbound call from the tenant's number to
// targetNumber. Fails with domain.ErrNotFound when the tenant is
// unknown or inactive; otherwise the dispatcher's result is reported
// unchanged.
func (o *OutboundInitiator) Initiate(ctx context.Context, tenantID uuid.UUID, targetNumber, recipientName, reason string) (*domain.DispatchResult, error) {
	tenant, err := o.directory.ResolveByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			outboundDispatchCounter.WithLabelValues("tenant_not_found").Inc()
		}
		return nil, err
	}

	providers, err := o.directory.ListProviders(ctx, tenant.ID)
	if err != nil {
		outboundDispatchCounter.WithLabelValues("error").Inc()
		return nil, err
	}

	bundle := binder.Bind(tenant, providers)
	variables := BundleVariables(bundle)
	variables["recipient_name"] = recipientName
	variables["call_reason"] = reason

	agentID := o.masterAgentID
	if tenant.AgentID != "" {
		agentID = tenant.AgentID
	}

	result, err := o.dispatcher.PlaceCall(ctx, domain.OutboundCallRequest{
		FromNumber: tenant.PhoneNumber,
		ToNumber:   targetNumber,
		AgentID:    agentID,
		Variables:  variables,
	})
	if err != nil {
		outboundDispatchCounter.WithLabelValues("dispatch_failed").Inc()
		o.logger.ErrorContext(ctx, "Outbound call dispatch failed",
			"error", err, "tenant_id", tenantID, "to_number", targetNumber)
		return nil, err
	}

	outboundDispatchCounter.WithLabelValues("dispatched").Inc()
	o.logger.InfoContext(ctx, "Outbound call dispatched",
		"tenant_id", tenantID, "to_number", targetNumber, "platform_call_id", result.PlatformCallID)
	return result, nil
}
