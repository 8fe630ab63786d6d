package handler

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/dto"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/service"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
)

// WebhookTokenHeader carries the shared secret on dispatcher requests.
const WebhookTokenHeader = "x-webhook-token"

// relayNotifier forwards accepted payloads to the outbound automation queue.
type relayNotifier interface {
	Notify(event string, payload interface{})
}

// WebhookHandler is the single entry point for the n8n content dispatcher.
// One route accepts every method: OPTIONS answers preflight, GET describes
// capabilities, POST echoes arbitrary payloads back, PUT routes content
// updates, and everything else is rejected.
type WebhookHandler struct {
	content *service.ContentService
	metrics *service.MetricsService
	notify  relayNotifier
	secret  string
	logger  *zap.Logger
}

// NewWebhookHandler creates a new handler.
func NewWebhookHandler(content *service.ContentService, metrics *service.MetricsService, notify relayNotifier, secret string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{content: content, metrics: metrics, notify: notify, secret: secret, logger: logger}
}

// Dispatch godoc
// @Summary Content webhook dispatcher
// @Description Single endpoint for the automation workflow: GET describes
// @Description capabilities, POST relays arbitrary payloads, PUT applies
// @Description content updates. POST and PUT require the x-webhook-token header.
// @Tags Webhook
// @Accept json
// @Produce json
// @Param x-webhook-token header string false "Shared secret"
// @Success 200 {object} dto.WebhookResponse
// @Failure 401 {object} dto.WebhookErrorResponse
// @Failure 405 {object} dto.WebhookErrorResponse
// @Router /webhook/content [any]
func (h *WebhookHandler) Dispatch(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		h.metrics.RecordWebhookDispatch(c.Request.Method, "ok")
		c.Status(http.StatusNoContent)
	case http.MethodGet:
		h.capabilities(c)
	case http.MethodPost:
		h.relay(c)
	case http.MethodPut:
		h.update(c)
	default:
		h.metrics.RecordWebhookDispatch(c.Request.Method, "method_not_allowed")
		c.JSON(http.StatusMethodNotAllowed, dto.WebhookErrorResponse{Success: false, Error: "Method not allowed"})
	}
}

// capabilities is unauthenticated so the automation tool can probe the
// endpoint during workflow setup.
func (h *WebhookHandler) capabilities(c *gin.Context) {
	h.metrics.RecordWebhookDispatch(c.Request.Method, "ok")
	c.JSON(http.StatusOK, dto.WebhookResponse{
		Success:   true,
		Message:   "Content webhook is active",
		Timestamp: time.Now().UTC(),
		Data: dto.WebhookCapabilities{
			Service:      "content-webhook",
			Actions:      []string{dto.WebhookActionUpdateContent},
			ContentTypes: []string{"news", "programs", "mission", "statistics"},
			TokenHeader:  WebhookTokenHeader,
		},
	})
}

func (h *WebhookHandler) relay(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	payload := h.lenientBody(c)
	if h.notify != nil {
		h.notify.Notify("webhook.received", payload)
	}
	h.metrics.RecordWebhookDispatch(c.Request.Method, "ok")
	c.JSON(http.StatusOK, dto.WebhookResponse{
		Success:   true,
		Message:   "Webhook received",
		Timestamp: time.Now().UTC(),
		Data:      payload,
	})
}

func (h *WebhookHandler) update(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	body := h.lenientBody(c)
	raw, _ := json.Marshal(body)
	var req dto.WebhookUpdateRequest
	_ = json.Unmarshal(raw, &req)

	if req.Action != dto.WebhookActionUpdateContent {
		h.metrics.RecordWebhookDispatch(c.Request.Method, "bad_action")
		c.JSON(http.StatusBadRequest, dto.WebhookErrorResponse{Success: false, Error: "Unsupported action"})
		return
	}

	summary, err := h.content.ApplyWebhookUpdate(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordWebhookDispatch(c.Request.Method, "error")
		appErr := appErrors.FromError(err)
		h.logger.Warn("content update rejected",
			zap.String("content_type", req.ContentType),
			zap.Error(err))
		c.JSON(appErr.Status, dto.WebhookErrorResponse{Success: false, Error: appErr.Message})
		return
	}

	h.metrics.RecordWebhookDispatch(c.Request.Method, "ok")
	c.JSON(http.StatusOK, dto.WebhookResponse{
		Success:   true,
		Message:   summary,
		Timestamp: time.Now().UTC(),
	})
}

// authorized validates the shared secret with a constant-time comparison.
func (h *WebhookHandler) authorized(c *gin.Context) bool {
	token := c.GetHeader(WebhookTokenHeader)
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		h.metrics.RecordWebhookDispatch(c.Request.Method, "unauthorized")
		c.JSON(http.StatusUnauthorized, dto.WebhookErrorResponse{Success: false, Error: "Invalid webhook token"})
		return false
	}
	return true
}

// lenientBody reads the request body, tolerating absent or malformed JSON
// by treating it as an empty object. The automation tool sends a few
// degenerate payloads during workflow testing and the dispatcher must not
// reject them.
func (h *WebhookHandler) lenientBody(c *gin.Context) map[string]interface{} {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		return map[string]interface{}{}
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		h.logger.Debug("webhook body not parseable as object, using empty payload")
		return map[string]interface{}{}
	}
	return body
}
