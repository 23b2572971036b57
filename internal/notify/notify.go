// Package notify delivers MovePilot's outbound side effects: the workflow
// submission webhook and the operator SMS alert. Both are best-effort and
// never fail the operation that triggered them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/flow"
	"github.com/MovePilotApp/MovePilot/internal/models"
)

// SecretHeader carries the shared webhook secret when one is configured.
const SecretHeader = "X-MovePilot-Secret"

// DefaultWebhookTimeout bounds each webhook delivery attempt.
const DefaultWebhookTimeout = 10 * time.Second

// Opts holds configuration options for outbound notifications.
type Opts struct {
	WebhookURL    string // submission webhook endpoint; empty disables delivery
	WebhookSecret string // shared secret sent in SecretHeader
	AccountSID    string // Twilio account SID for operator alerts
	AuthToken     string // Twilio auth token
	AlertFrom     string // SMS sender number
	AlertTo       string // operator number receiving alerts
}

// Option defines a configuration option for outbound notifications.
type Option func(*Opts)

// WithWebhookURL sets the submission webhook endpoint.
func WithWebhookURL(url string) Option {
	return func(o *Opts) { o.WebhookURL = url }
}

// WithWebhookSecret sets the shared secret sent with every webhook delivery.
func WithWebhookSecret(secret string) Option {
	return func(o *Opts) { o.WebhookSecret = secret }
}

// WithTwilioCredentials sets the Twilio account used for operator alerts.
func WithTwilioCredentials(accountSID, authToken string) Option {
	return func(o *Opts) {
		o.AccountSID = accountSID
		o.AuthToken = authToken
	}
}

// WithAlertNumbers sets the SMS sender and the operator recipient.
func WithAlertNumbers(from, to string) Option {
	return func(o *Opts) {
		o.AlertFrom = from
		o.AlertTo = to
	}
}

// submissionEvent is the webhook payload for one accepted submission.
type submissionEvent struct {
	UserID       string              `json:"userId"`
	WorkflowID   string              `json:"workflowId"`
	Kind         models.WorkflowKind `json:"kind"`
	TasksCreated int                 `json:"tasksCreated"`
	Timestamp    string              `json:"timestamp"`
}

// WebhookNotifier posts submission events to a configured endpoint. Delivery
// runs in a background goroutine and failures only log.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
	now    func() time.Time
}

// Compile-time check that WebhookNotifier implements flow.Notifier.
var _ flow.Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a webhook notifier. An empty URL produces a
// notifier that drops every event, so callers can wire it unconditionally.
func NewWebhookNotifier(opts ...Option) *WebhookNotifier {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewWebhookNotifier: webhook notifier configured",
		"url_set", cfg.WebhookURL != "", "secret_set", cfg.WebhookSecret != "")
	return &WebhookNotifier{
		url:    cfg.WebhookURL,
		secret: cfg.WebhookSecret,
		client: &http.Client{Timeout: DefaultWebhookTimeout},
		now:    time.Now,
	}
}

// WorkflowSubmitted fires the submission webhook without blocking the caller.
func (n *WebhookNotifier) WorkflowSubmitted(userID, workflowID string, kind models.WorkflowKind, tasksCreated int) {
	if n.url == "" {
		slog.Debug("WebhookNotifier.WorkflowSubmitted: no webhook URL configured, dropping event",
			"workflowID", workflowID)
		return
	}
	event := submissionEvent{
		UserID:       userID,
		WorkflowID:   workflowID,
		Kind:         kind,
		TasksCreated: tasksCreated,
		Timestamp:    n.now().UTC().Format(time.RFC3339),
	}
	go n.deliver(event)
}

func (n *WebhookNotifier) deliver(event submissionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("WebhookNotifier.deliver: failed to marshal event", "error", err, "workflowID", event.WorkflowID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultWebhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		slog.Error("WebhookNotifier.deliver: failed to build request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(SecretHeader, n.secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		slog.Error("WebhookNotifier.deliver: webhook delivery failed", "error", err, "workflowID", event.WorkflowID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.Error("WebhookNotifier.deliver: webhook rejected event",
			"status", resp.StatusCode, "workflowID", event.WorkflowID)
		return
	}
	slog.Debug("WebhookNotifier.deliver: submission event delivered",
		"workflowID", event.WorkflowID, "userID", event.UserID, "status", resp.StatusCode)
}
