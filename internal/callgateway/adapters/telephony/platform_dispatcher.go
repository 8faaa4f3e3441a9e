package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

// PlatformDispatcher places outbound calls through the voice platform's
// REST API. It implements domain.TelephonyDispatcher.
type PlatformDispatcher struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewPlatformDispatcher(logger *slog.Logger, baseURL, apiKey string, httpClient *http.Client) *PlatformDispatcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &PlatformDispatcher{
		logger:     logger.With("dispatcher", "platform"),
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type createCallRequest struct {
	FromNumber string            `json:"from_number"`
	ToNumber   string            `json:"to_number"`
	AgentID    string            `json:"override_agent_id,omitempty"`
	Variables  map[string]string `json:"retell_llm_dynamic_variables,omitempty"`
}

type createCallResponse struct {
	CallID     string `json:"call_id"`
	CallStatus string `json:"call_status"`
}

type platformErrorResponse struct {
	Message string `json:"message"`
}

func (d *PlatformDispatcher) PlaceCall(ctx context.Context, req domain.OutboundCallRequest) (*domain.DispatchResult, error) {
	body := createCallRequest{
		FromNumber: req.FromNumber,
		ToNumber:   req.ToNumber,
		AgentID:    req.AgentID,
		Variables:  req.Variables,
	}
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbound call request: %w", err)
	}

	url := d.baseURL + "/v2/create-phone-call"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create outbound call request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)

	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to reach voice platform", "error", err, "to_number", req.ToNumber)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to read voice platform response", "error", err, "status_code", httpResp.StatusCode)
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrUpstreamFailure, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var platformErr platformErrorResponse
		msg := fmt.Sprintf("status %d", httpResp.StatusCode)
		if jsonErr := json.Unmarshal(respBytes, &platformErr); jsonErr == nil && platformErr.Message != "" {
			msg = fmt.Sprintf("status %d: %s", httpResp.StatusCode, platformErr.Message)
		}
		d.logger.WarnContext(ctx, "Voice platform rejected outbound call", "status_code", httpResp.StatusCode, "to_number", req.ToNumber, "message", msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamFailure, msg)
	}

	var created createCallResponse
	if err := json.Unmarshal(respBytes, &created); err != nil {
		d.logger.WarnContext(ctx, "Outbound call accepted but response body was unparseable", "status_code", httpResp.StatusCode, "error", err)
		return &domain.DispatchResult{Accepted: true, ProviderStatus: "accepted"}, nil
	}

	d.logger.InfoContext(ctx, "Outbound call dispatched", "platform_call_id", created.CallID, "call_status", created.CallStatus, "to_number", req.ToNumber)
	return &domain.DispatchResult{
		PlatformCallID: created.CallID,
		Accepted:       true,
		ProviderStatus: created.CallStatus,
	}, nil
}
