package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carevox/callgateway/internal/callgateway/app"
)

// ToolCallHandler hands mid-call tool invocations to the mediator. The
// raw body is passed through untouched so the signature check covers
// exactly the bytes the platform signed.
type ToolCallHandler struct {
	mediator *app.ToolCallMediator
	logger   *slog.Logger
}

func NewToolCallHandler(mediator *app.ToolCallMediator, logger *slog.Logger) *ToolCallHandler {
	return &ToolCallHandler{mediator: mediator, logger: logger}
}

func (h *ToolCallHandler) HandleToolCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tool := chi.URLParam(r, "tool")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to read tool call body", "tool", tool, "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponseDTO{Error: "unreadable request body"})
		return
	}

	result, err := h.mediator.Handle(ctx, tool, body, r.Header.Get(HeaderPlatformSignature))
	if err != nil {
		writeDomainError(w, h.logger, err, "HandleToolCall")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// RegisterRoutes mounts the tool webhook route on a Chi router.
func (h *ToolCallHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tools/{tool}", h.HandleToolCall)
}
