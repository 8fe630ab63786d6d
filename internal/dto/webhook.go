package dto

import (
	"encoding/json"
	"time"
)

// WebhookActionUpdateContent is the only PUT action the dispatcher routes.
const WebhookActionUpdateContent = "update_content"

// WebhookUpdateRequest is the PUT body the n8n dispatcher expects.
type WebhookUpdateRequest struct {
	Action      string                 `json:"action"`
	ContentType string                 `json:"contentType"`
	Data        map[string]interface{} `json:"data"`
}

// WebhookResponse is the success envelope every dispatcher reply uses.
type WebhookResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// WebhookErrorResponse is the failure envelope.
type WebhookErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WebhookCapabilities describes the dispatcher on GET probes.
type WebhookCapabilities struct {
	Service      string   `json:"service"`
	Actions      []string `json:"actions"`
	ContentTypes []string `json:"content_types"`
	TokenHeader  string   `json:"token_header"`
}

// NotificationEvent is the payload relayed to the outbound n8n webhook.
type NotificationEvent struct {
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
