package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/dto"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/config"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/jobs"
)

// Client posts notification events to the configured n8n webhook.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient builds an outbound webhook client.
func NewClient(webhookURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send delivers a single event. Non-2xx responses are errors so the job
// queue retries them.
func (c *Client) Send(ctx context.Context, event dto.NotificationEvent) error {
	if c.webhookURL == "" {
		return fmt.Errorf("notification webhook URL not configured")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Relay queues notification events and delivers them asynchronously so
// intake and content flows never block on the automation webhook.
type Relay struct {
	queue   *jobs.Queue
	enabled bool
	logger  *zap.Logger
}

// NewRelay wires the client behind a retrying worker queue. A disabled
// relay accepts events and drops them.
func NewRelay(cfg config.NotificationsConfig, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := NewClient(cfg.WebhookURL, cfg.Timeout)
	handler := func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(dto.NotificationEvent)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return client.Send(ctx, event)
	}

	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})

	return &Relay{
		queue:   queue,
		enabled: cfg.Enabled && cfg.WebhookURL != "",
		logger:  logger,
	}
}

// Start begins background delivery.
func (r *Relay) Start(ctx context.Context) {
	if !r.enabled {
		r.logger.Info("outbound notifications disabled")
		return
	}
	r.queue.Start(ctx)
}

// Stop drains the worker pool.
func (r *Relay) Stop() {
	if !r.enabled {
		return
	}
	r.queue.Stop()
}

// Notify enqueues an event for asynchronous delivery. Failures are logged
// and never propagated to the caller.
func (r *Relay) Notify(event string, payload interface{}) {
	if !r.enabled {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn("failed to marshal notification payload", zap.String("event", event), zap.Error(err))
		return
	}

	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: event,
		Payload: dto.NotificationEvent{
			Event:     event,
			Payload:   raw,
			Timestamp: time.Now().UTC(),
		},
	}
	if err := r.queue.Enqueue(job); err != nil {
		r.logger.Warn("failed to enqueue notification", zap.String("event", event), zap.Error(err))
	}
}
