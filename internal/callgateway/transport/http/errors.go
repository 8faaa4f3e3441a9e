package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response body", "error", err)
	}
}

// writeDomainError maps the gateway error taxonomy to HTTP statuses.
// Messages deliberately carry no tenant or record detail beyond what
// the caller already supplied.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error, operation string) {
	logEntry := logger.With("operation", operation, "error", err)

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		logEntry.Warn("Request rejected as unauthorized")
		writeJSON(w, logger, http.StatusUnauthorized, ErrorResponseDTO{Error: "unauthorized"})
	case errors.Is(err, domain.ErrInvalidRequest):
		logEntry.Warn("Request rejected as invalid")
		writeJSON(w, logger, http.StatusBadRequest, ErrorResponseDTO{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		logEntry.Warn("Requested resource not found")
		writeJSON(w, logger, http.StatusNotFound, ErrorResponseDTO{Error: "not found"})
	case errors.Is(err, domain.ErrDuplicateEntry):
		logEntry.Warn("Duplicate resource")
		writeJSON(w, logger, http.StatusConflict, ErrorResponseDTO{Error: "duplicate entry"})
	case errors.Is(err, domain.ErrUpstreamFailure):
		logEntry.Error("Upstream collaborator failed")
		writeJSON(w, logger, http.StatusBadGateway, ErrorResponseDTO{Error: "upstream failure"})
	default:
		logEntry.Error("Unhandled error")
		writeJSON(w, logger, http.StatusInternalServerError, ErrorResponseDTO{Error: "internal server error"})
	}
}
