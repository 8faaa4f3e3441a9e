package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carevox/callgateway/internal/callgateway/domain"
	"github.com/carevox/callgateway/internal/platform/messagebroker"
)

// CallEndedEvent is the call lifecycle payload from the voice platform.
type CallEndedEvent struct {
	CallID     string
	TenantID   *uuid.UUID
	Direction  string
	FromNumber string
	ToNumber   string
	StartedAt  time.Time
	EndedAt    time.Time
	Outcome    string
	Summary    string
}

// CallLogProcessor persists completed calls and republishes them as
// tenant-scoped events for downstream consumers (reporting, billing).
type CallLogProcessor struct {
	directory   TenantDirectory
	callLogRepo domain.CallLogRepository
	publisher   messagebroker.Publisher
	logger      *slog.Logger
}

// NewCallLogProcessor creates a CallLogProcessor.
func NewCallLogProcessor(dir TenantDirectory, callLogRepo domain.CallLogRepository, publisher messagebroker.Publisher, logger *slog.Logger) *CallLogProcessor {
	return &CallLogProcessor{
		directory:   dir,
		callLogRepo: callLogRepo,
		publisher:   publisher,
		logger:      logger.With("component", "calllog_processor"),
	}
}

// HandleCallEnded records one completed call. The tenant is taken from
// the event metadata when present, otherwise resolved from the tenant
// side of the call (dialed number for inbound, caller number for
// outbound).
func (p *CallLogProcessor) HandleCallEnded(ctx context.Context, event CallEndedEvent) error {
	var (
		tenant *domain.Tenant
		err    error
	)
	if event.TenantID != nil {
		tenant, err = p.directory.ResolveByID(ctx, *event.TenantID)
	} else {
		number := event.ToNumber
		if event.Direction == "outbound" {
			number = event.FromNumber
		}
		tenant, err = p.directory.ResolveByPhoneNumber(ctx, number)
	}
	if err != nil {
		return err
	}

	duration := 0
	if event.EndedAt.After(event.StartedAt) {
		duration = int(event.EndedAt.Sub(event.StartedAt).Seconds())
	}

	cl := &domain.CallLog{
		ID:              uuid.New(),
		TenantID:        tenant.ID,
		PlatformCallID:  event.CallID,
		Direction:       event.Direction,
		FromNumber:      event.FromNumber,
		ToNumber:        event.ToNumber,
		StartedAt:       event.StartedAt,
		EndedAt:         event.EndedAt,
		DurationSeconds: duration,
		Outcome:         event.Outcome,
		Summary:         event.Summary,
		CreatedAt:       time.Now().UTC(),
	}

	if err := p.callLogRepo.Create(ctx, cl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	if p.publisher != nil {
		data, err := json.Marshal(cl)
		if err == nil {
			subject := fmt.Sprintf("call.ended.%s", tenant.ID)
			if err := p.publisher.Publish(ctx, subject, data); err != nil {
				p.logger.ErrorContext(ctx, "Failed to publish call-ended event", "error", err, "subject", subject)
			}
		}
	}

	p.logger.InfoContext(ctx, "Call logged",
		"tenant_id", tenant.ID, "call_id", event.CallID, "direction", event.Direction, "duration_seconds", duration)
	return nil
}
