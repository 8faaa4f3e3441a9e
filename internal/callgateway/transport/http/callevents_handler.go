package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carevox/callgateway/internal/callgateway/app"
	"github.com/carevox/callgateway/internal/callgateway/auth"
)

const eventCallEnded = "call_ended"

// CallEventsHandler receives signed call lifecycle notifications.
// Events other than call_ended are acknowledged and dropped.
type CallEventsHandler struct {
	processor *app.CallLogProcessor
	verifier  *auth.SignatureVerifier
	logger    *slog.Logger
	validate  *validator.Validate
}

func NewCallEventsHandler(processor *app.CallLogProcessor, verifier *auth.SignatureVerifier, logger *slog.Logger, validate *validator.Validate) *CallEventsHandler {
	return &CallEventsHandler{
		processor: processor,
		verifier:  verifier,
		logger:    logger,
		validate:  validate,
	}
}

func (h *CallEventsHandler) HandleCallEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to read call event body", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "unreadable request body"})
		return
	}

	if err := h.verifier.Verify(body, r.Header.Get(HeaderPlatformSignature)); err != nil {
		writeDomainError(w, h.logger, err, "HandleCallEvent")
		return
	}

	var dto CallLifecycleEventDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode call event body", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "invalid request body"})
		return
	}
	if err := h.validate.StructCtx(ctx, dto); err != nil {
		h.logger.WarnContext(ctx, "Validation failed for call event", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: err.Error()})
		return
	}

	if dto.Event != eventCallEnded {
		h.logger.DebugContext(ctx, "Ignoring call lifecycle event", "event", dto.Event, "call_id", dto.Call.CallID)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	event := app.CallEndedEvent{
		CallID:     dto.Call.CallID,
		Direction:  dto.Call.Direction,
		FromNumber: dto.Call.FromNumber,
		ToNumber:   dto.Call.ToNumber,
		StartedAt:  dto.Call.StartedAt,
		EndedAt:    dto.Call.EndedAt,
		Outcome:    dto.Call.Outcome,
		Summary:    dto.Call.Summary,
	}
	if dto.Call.TenantID != "" {
		tenantID, err := uuid.Parse(dto.Call.TenantID)
		if err != nil {
			h.logger.WarnContext(ctx, "Call event carried a malformed tenant ID", "tenant_id", dto.Call.TenantID)
			writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "tenant_id is not a valid identifier"})
			return
		}
		event.TenantID = &tenantID
	}

	if err := h.processor.HandleCallEnded(ctx, event); err != nil {
		writeDomainError(w, h.logger, err, "HandleCallEvent")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes mounts the call-events webhook route on a Chi router.
func (h *CallEventsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/call-events", h.HandleCallEvent)
}
