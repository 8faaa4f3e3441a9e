package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carevox/callgateway/internal/callgateway/domain"
	"github.com/carevox/callgateway/internal/platform/messagebroker"
)

// Tool names accepted by the mediator.
const (
	ToolCheckAvailability   = "check_availability"
	ToolBookAppointment     = "book_appointment"
	ToolCancelBooking       = "cancel_booking"
	ToolListPatientBookings = "list_patient_bookings"
)

// NATS subjects for booking lifecycle events.
const (
	subjectBookingConfirmed = "booking.confirmed"
	subjectBookingCancelled = "booking.cancelled"
)

// Spoken-result slot cap: more than six options is unusable in voice.
const maxSpokenSlots = 6

// signatureChecker verifies the raw request body against the platform
// signature header. Satisfied by auth.SignatureVerifier.
type signatureChecker interface {
	Verify(body []byte, signature string) error
}

// slotComputer is the availability collaborator.
type slotComputer interface {
	Compute(ctx context.Context, provider *domain.Provider, date time.Time) ([]domain.AvailabilitySlot, error)
}

// ToolResult is the structured result returned to the conversation
// layer. Message is spoken verbatim; Slots is always non-nil for
// availability-shaped tools so an empty day serializes as [].
type ToolResult struct {
	Message   string                    `json:"message"`
	Slots     []domain.AvailabilitySlot `json:"slots"`
	BookingID *uuid.UUID                `json:"booking_id,omitempty"`
}

// ToolCallMediator authenticates, parses, scope-checks, and executes
// mid-call tool invocations. The pipeline order is fixed: authenticate,
// validate envelope, scope check, execute, respond. Authentication is
// the only trust boundary between the platform and tenant data, so a
// signature failure performs no data access at all.
type ToolCallMediator struct {
	verifier     signatureChecker
	directory    TenantDirectory
	bookingRepo  domain.BookingRepository
	availability slotComputer
	publisher    messagebroker.Publisher
	logger       *slog.Logger
	now          func() time.Time
}

// NewToolCallMediator creates a ToolCallMediator.
func NewToolCallMediator(
	verifier signatureChecker,
	dir TenantDirectory,
	bookingRepo domain.BookingRepository,
	availability slotComputer,
	publisher messagebroker.Publisher,
	logger *slog.Logger,
) *ToolCallMediator {
	return &ToolCallMediator{
		verifier:     verifier,
		directory:    dir,
		bookingRepo:  bookingRepo,
		availability: availability,
		publisher:    publisher,
		logger:       logger.With("component", "toolcall_mediator"),
		now:          time.Now,
	}
}

type toolCallRequest struct {
	CallID string   `json:"call_id"`
	Args   toolArgs `json:"args"`
}

type toolArgs struct {
	TenantID     string `json:"tenant_id"`
	ProviderID   string `json:"provider_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone"`
	Reason       string `json:"reason"`
	BookingID    string `json:"booking_id"`
}

// envelope is the validated form of a tool-call request.
type envelope struct {
	callID       string
	tenantID     uuid.UUID
	providerID   uuid.UUID
	date         time.Time
	startTime    string
	patientName  string
	patientPhone string
	reason       string
	bookingID    uuid.UUID
}

// Handle runs the full pipeline for one tool invocation over the raw
// request body. Errors map to the gateway taxonomy: ErrUnauthorized,
// ErrInvalidRequest, ErrNotFound, ErrUpstreamFailure.
func (m *ToolCallMediator) Handle(ctx context.Context, tool string, rawBody []byte, signature string) (*ToolResult, error) {
	// 1. Authenticate. Non-bypassable; nothing downstream runs on failure.
	if err := m.verifier.Verify(rawBody, signature); err != nil {
		toolCallsCounter.WithLabelValues(tool, "unauthorized").Inc()
		m.logger.WarnContext(ctx, "Tool call rejected, signature verification failed", "tool", tool)
		return nil, domain.ErrUnauthorized
	}

	// 2. Parse and validate the envelope.
	env, err := m.parseEnvelope(tool, rawBody)
	if err != nil {
		toolCallsCounter.WithLabelValues(tool, "invalid").Inc()
		m.logger.WarnContext(ctx, "Tool call rejected, invalid envelope", "tool", tool, "error", err)
		return nil, err
	}

	// 3. Scope check: the provider must belong to the supplied tenant.
	// A mismatch is indistinguishable from a forged provider ID, so it
	// reports as an invalid request, never as cross-tenant detail.
	var provider *domain.Provider
	if env.providerID != uuid.Nil {
		provider, err = m.directory.ProviderBelongsTo(ctx, env.providerID, env.tenantID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				toolCallsCounter.WithLabelValues(tool, "invalid").Inc()
				m.logger.WarnContext(ctx, "Tool call rejected, provider out of tenant scope",
					"tool", tool, "tenant_id", env.tenantID, "provider_id", env.providerID)
				return nil, fmt.Errorf("%w: provider does not belong to tenant", domain.ErrInvalidRequest)
			}
			toolCallsCounter.WithLabelValues(tool, "upstream_error").Inc()
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
		}
	}

	// 4 and 5. Execute against tenant-scoped storage and respond.
	var result *ToolResult
	switch tool {
	case ToolCheckAvailability:
		result, err = m.checkAvailability(ctx, env, provider)
	case ToolBookAppointment:
		result, err = m.bookAppointment(ctx, env, provider)
	case ToolCancelBooking:
		result, err = m.cancelBooking(ctx, env)
	case ToolListPatientBookings:
		result, err = m.listPatientBookings(ctx, env)
	default:
		toolCallsCounter.WithLabelValues(tool, "invalid").Inc()
		return nil, fmt.Errorf("%w: unknown tool %q", domain.ErrInvalidRequest, tool)
	}
	if err != nil {
		toolCallsCounter.WithLabelValues(tool, "upstream_error").Inc()
		return nil, err
	}

	toolCallsCounter.WithLabelValues(tool, "ok").Inc()
	return result, nil
}

func (m *ToolCallMediator) parseEnvelope(tool string, rawBody []byte) (*envelope, error) {
	// An unrecognized tool is rejected before any parsing or data
	// access, so a forged tool name never reaches the directory.
	switch tool {
	case ToolCheckAvailability, ToolBookAppointment, ToolCancelBooking, ToolListPatientBookings:
	default:
		return nil, fmt.Errorf("%w: unknown tool %q", domain.ErrInvalidRequest, tool)
	}

	var req toolCallRequest
	if err := json.Unmarshal(rawBody, &req); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidRequest)
	}
	if req.CallID == "" {
		return nil, fmt.Errorf("%w: call_id is required", domain.ErrInvalidRequest)
	}

	env := &envelope{
		callID:       req.CallID,
		startTime:    req.Args.Time,
		patientName:  strings.TrimSpace(req.Args.PatientName),
		patientPhone: strings.TrimSpace(req.Args.PatientPhone),
		reason:       req.Args.Reason,
	}

	if req.Args.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant_id is required", domain.ErrInvalidRequest)
	}
	tenantID, err := uuid.Parse(req.Args.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: tenant_id is not a valid identifier", domain.ErrInvalidRequest)
	}
	env.tenantID = tenantID

	needsProvider := tool == ToolCheckAvailability || tool == ToolBookAppointment
	if needsProvider {
		if req.Args.ProviderID == "" {
			return nil, fmt.Errorf("%w: provider_id is required", domain.ErrInvalidRequest)
		}
	}
	if req.Args.ProviderID != "" {
		providerID, err := uuid.Parse(req.Args.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("%w: provider_id is not a valid identifier", domain.ErrInvalidRequest)
		}
		env.providerID = providerID
	}

	needsDate := tool == ToolCheckAvailability || tool == ToolBookAppointment
	if needsDate {
		if req.Args.Date == "" {
			return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidRequest)
		}
		date, err := time.ParseInLocation("2006-01-02", req.Args.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q is not in YYYY-MM-DD form", domain.ErrInvalidRequest, req.Args.Date)
		}
		env.date = date
	}

	switch tool {
	case ToolBookAppointment:
		if env.startTime == "" || env.patientName == "" || env.patientPhone == "" {
			return nil, fmt.Errorf("%w: booking requires time, patient_name and patient_phone", domain.ErrInvalidRequest)
		}
		if _, err := time.Parse("15:04", env.startTime); err != nil {
			return nil, fmt.Errorf("%w: time %q is not in HH:MM form", domain.ErrInvalidRequest, env.startTime)
		}
	case ToolCancelBooking:
		if req.Args.BookingID == "" {
			return nil, fmt.Errorf("%w: booking_id is required", domain.ErrInvalidRequest)
		}
		bookingID, err := uuid.Parse(req.Args.BookingID)
		if err != nil {
			return nil, fmt.Errorf("%w: booking_id is not a valid identifier", domain.ErrInvalidRequest)
		}
		env.bookingID = bookingID
	case ToolListPatientBookings:
		if env.patientPhone == "" {
			return nil, fmt.Errorf("%w: patient_phone is required", domain.ErrInvalidRequest)
		}
	}

	return env, nil
}

func (m *ToolCallMediator) checkAvailability(ctx context.Context, env *envelope, provider *domain.Provider) (*ToolResult, error) {
	today := m.now().UTC().Truncate(24 * time.Hour)
	if env.date.Before(today) {
		return &ToolResult{
			Message: "That date has already passed. Would you like to try a future date?",
			Slots:   []domain.AvailabilitySlot{},
		}, nil
	}

	slots, err := m.availability.Compute(ctx, provider, env.date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	if len(slots) == 0 {
		// A valid conversational outcome, not a failure.
		return &ToolResult{
			Message: fmt.Sprintf("No slots are available with %s on %s. Would you like to try another date?",
				provider.DisplayLabel(), env.date.Format("Monday, January 2")),
			Slots: []domain.AvailabilitySlot{},
		}, nil
	}

	spoken := make([]string, 0, maxSpokenSlots)
	for i, slot := range slots {
		if i == maxSpokenSlots {
			break
		}
		spoken = append(spoken, spokenClock(slot.Start))
	}

	return &ToolResult{
		Message: fmt.Sprintf("Available times: %s. Which one works for you?", strings.Join(spoken, ", ")),
		Slots:   slots,
	}, nil
}

func (m *ToolCallMediator) bookAppointment(ctx context.Context, env *envelope, provider *domain.Provider) (*ToolResult, error) {
	// Idempotency token: call ID plus the slot identity. A platform
	// retry of the same invocation composes the same key.
	idempotencyKey := fmt.Sprintf("%s:%s:%s", env.callID, env.date.Format("2006-01-02"), env.startTime)

	booking := domain.NewBooking(
		uuid.New(), env.tenantID, env.providerID,
		env.patientName, env.patientPhone,
		env.date, env.startTime, provider.SlotDurationMinutes,
		env.reason, idempotencyKey,
	)

	stored, err := m.bookingRepo.CreateIdempotent(ctx, booking)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) && stored != nil {
			// Replay of a retried invocation: report the original
			// booking, write nothing, publish nothing.
			m.logger.InfoContext(ctx, "Duplicate booking invocation collapsed",
				"tenant_id", env.tenantID, "booking_id", stored.ID, "idempotency_key", idempotencyKey)
			return m.bookingConfirmation(stored, provider), nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	m.publishBookingEvent(ctx, subjectBookingConfirmed, stored)
	m.logger.InfoContext(ctx, "Booking created",
		"tenant_id", env.tenantID, "provider_id", env.providerID, "booking_id", stored.ID)
	return m.bookingConfirmation(stored, provider), nil
}

func (m *ToolCallMediator) bookingConfirmation(b *domain.Booking, provider *domain.Provider) *ToolResult {
	id := b.ID
	return &ToolResult{
		Message: fmt.Sprintf("Your appointment with %s is confirmed for %s at %s. You'll receive a confirmation message shortly.",
			provider.DisplayLabel(), b.Date.Format("Monday, January 2"), spokenClock(b.StartTime)),
		Slots:     []domain.AvailabilitySlot{},
		BookingID: &id,
	}
}

func (m *ToolCallMediator) cancelBooking(ctx context.Context, env *envelope) (*ToolResult, error) {
	booking, err := m.bookingRepo.GetByID(ctx, env.bookingID, env.tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking not found for tenant", domain.ErrInvalidRequest)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	if err := m.bookingRepo.UpdateStatus(ctx, booking.ID, env.tenantID, domain.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	booking.Status = domain.BookingStatusCancelled
	m.publishBookingEvent(ctx, subjectBookingCancelled, booking)
	m.logger.InfoContext(ctx, "Booking cancelled", "tenant_id", env.tenantID, "booking_id", booking.ID)

	id := booking.ID
	return &ToolResult{
		Message:   "Your appointment has been cancelled. Would you like to reschedule?",
		Slots:     []domain.AvailabilitySlot{},
		BookingID: &id,
	}, nil
}

func (m *ToolCallMediator) listPatientBookings(ctx context.Context, env *envelope) (*ToolResult, error) {
	bookings, err := m.bookingRepo.ListUpcomingByPatientPhone(ctx, env.tenantID, env.patientPhone, m.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	if len(bookings) == 0 {
		return &ToolResult{
			Message: "I don't see any upcoming appointments for this phone number. Would you like to book one?",
			Slots:   []domain.AvailabilitySlot{},
		}, nil
	}

	next := bookings[0]
	id := next.ID
	return &ToolResult{
		Message: fmt.Sprintf("You have an appointment on %s at %s. Would you like to cancel or reschedule it?",
			next.Date.Format("Monday, January 2"), spokenClock(next.StartTime)),
		Slots:     []domain.AvailabilitySlot{},
		BookingID: &id,
	}, nil
}

func (m *ToolCallMediator) publishBookingEvent(ctx context.Context, subject string, b *domain.Booking) {
	if m.publisher == nil {
		return
	}
	data, err := json.Marshal(b)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to marshal booking event", "error", err, "booking_id", b.ID)
		return
	}
	if err := m.publisher.Publish(ctx, subject, data); err != nil {
		// Event delivery is best effort; the booking itself is committed.
		m.logger.ErrorContext(ctx, "Failed to publish booking event", "error", err, "subject", subject, "booking_id", b.ID)
	}
}

// spokenClock renders "14:30" as "2:30 PM" for voice readability.
func spokenClock(clock string) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}
