package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carevox/callgateway/internal/callgateway/app"
)

// OutboundHandler is the operator-facing endpoint for placing outbound
// calls. It sits behind JWT authentication.
type OutboundHandler struct {
	initiator *app.OutboundInitiator
	logger    *slog.Logger
	validate  *validator.Validate
}

func NewOutboundHandler(initiator *app.OutboundInitiator, logger *slog.Logger, validate *validator.Validate) *OutboundHandler {
	return &OutboundHandler{
		initiator: initiator,
		logger:    logger,
		validate:  validate,
	}
}

func (h *OutboundHandler) CreateOutboundCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto OutboundCallRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode outbound call request", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "invalid request body"})
		return
	}
	if err := h.validate.StructCtx(ctx, dto); err != nil {
		h.logger.WarnContext(ctx, "Validation failed for outbound call request", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: err.Error()})
		return
	}

	tenantID, err := uuid.Parse(dto.TenantID)
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "tenant_id is not a valid identifier"})
		return
	}

	result, err := h.initiator.Initiate(ctx, tenantID, dto.ToNumber, dto.RecipientName, dto.Reason)
	if err != nil {
		writeDomainError(w, h.logger, err, "CreateOutboundCall")
		return
	}

	writeJSON(w, h.logger, http.StatusAccepted, OutboundCallResponseDTO{
		PlatformCallID: result.PlatformCallID,
		Accepted:       result.Accepted,
		Status:         result.ProviderStatus,
	})
}

// RegisterRoutes mounts the outbound call route on a Chi router.
func (h *OutboundHandler) RegisterRoutes(r chi.Router) {
	r.Post("/outbound-calls", h.CreateOutboundCall)
}
