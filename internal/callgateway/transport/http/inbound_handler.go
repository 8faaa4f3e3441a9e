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

// InboundHandler answers the platform's inbound-call webhook. Two
// routes feed it: a tenant-scoped URL carrying the tenant ID as a path
// segment, and a shared URL resolved by the dialed number.
type InboundHandler struct {
	resolver *app.InboundResolver
	verifier *auth.SignatureVerifier
	logger   *slog.Logger
	validate *validator.Validate
}

func NewInboundHandler(resolver *app.InboundResolver, verifier *auth.SignatureVerifier, logger *slog.Logger, validate *validator.Validate) *InboundHandler {
	return &InboundHandler{
		resolver: resolver,
		verifier: verifier,
		logger:   logger,
		validate: validate,
	}
}

func (h *InboundHandler) HandleInboundCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to read inbound webhook body", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "unreadable request body"})
		return
	}

	// Signature on the inbound webhook is optional, but a present
	// signature must verify.
	if sig := r.Header.Get(HeaderPlatformSignature); sig != "" {
		if err := h.verifier.Verify(body, sig); err != nil {
			writeDomainError(w, h.logger, err, "HandleInboundCall")
			return
		}
	}

	var dto InboundCallEventDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode inbound webhook body", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "invalid request body"})
		return
	}
	if err := h.validate.StructCtx(ctx, dto); err != nil {
		h.logger.WarnContext(ctx, "Validation failed for inbound webhook", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: err.Error()})
		return
	}

	event := app.CallEvent{
		CallID:     dto.CallID,
		FromNumber: dto.FromNumber,
		ToNumber:   dto.ToNumber,
	}
	if raw := chi.URLParam(r, "tenant_id"); raw != "" {
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			h.logger.WarnContext(ctx, "Inbound webhook path carried a malformed tenant ID", "tenant_id", raw)
			writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "tenant_id is not a valid identifier"})
			return
		}
		event.TenantID = &tenantID
	}

	resp, err := h.resolver.Resolve(ctx, event)
	if err != nil {
		writeDomainError(w, h.logger, err, "HandleInboundCall")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, InboundResponseDTO{
		AgentID:          resp.AgentID,
		DynamicVariables: app.BundleVariables(resp.Bundle),
	})
}

// RegisterRoutes mounts the inbound webhook routes on a Chi router.
func (h *InboundHandler) RegisterRoutes(r chi.Router) {
	r.Post("/inbound", h.HandleInboundCall)
	r.Post("/inbound/{tenant_id}", h.HandleInboundCall)
}
