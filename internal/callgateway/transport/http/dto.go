package http

import "time"

// HeaderPlatformSignature carries the platform's HMAC over the raw body.
const HeaderPlatformSignature = "X-Platform-Signature"

// InboundCallEventDTO is the call event pushed by the voice platform
// when a call arrives.
type InboundCallEventDTO struct {
	CallID     string `json:"call_id" validate:"required"`
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
}

// InboundResponseDTO tells the platform which agent answers and with
// which dynamic variables.
type InboundResponseDTO struct {
	AgentID          string            `json:"agent_id"`
	DynamicVariables map[string]string `json:"dynamic_variables"`
}

// CallLifecycleEventDTO wraps lifecycle notifications (call_started,
// call_ended, call_analyzed). Only call_ended is acted on.
type CallLifecycleEventDTO struct {
	Event string         `json:"event" validate:"required"`
	Call  CallPayloadDTO `json:"call"`
}

type CallPayloadDTO struct {
	CallID     string    `json:"call_id"`
	TenantID   string    `json:"tenant_id,omitempty"`
	Direction  string    `json:"direction"`
	FromNumber string    `json:"from_number"`
	ToNumber   string    `json:"to_number"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Outcome    string    `json:"outcome,omitempty"`
	Summary    string    `json:"summary,omitempty"`
}

// OutboundCallRequestDTO is the operator-facing request to place a call.
type OutboundCallRequestDTO struct {
	TenantID      string `json:"tenant_id" validate:"required,uuid"`
	ToNumber      string `json:"to_number" validate:"required,e164"`
	RecipientName string `json:"recipient_name,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type OutboundCallResponseDTO struct {
	PlatformCallID string `json:"platform_call_id"`
	Accepted       bool   `json:"accepted"`
	Status         string `json:"status,omitempty"`
}

// ErrorResponseDTO is the JSON error body for every non-2xx response.
type ErrorResponseDTO struct {
	Error string `json:"error"`
}
