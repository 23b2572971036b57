// Package notify delivers MovePilot's outbound side effects.
//
// This file implements the operator SMS alerter on the Twilio API. It backs
// the provider auth failure path: when the conversation provider rejects our
// credentials, the operator gets a text.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/MovePilotApp/MovePilot/internal/chat"
)

// smsAPI is the slice of the Twilio API the alerter uses.
type smsAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioAlerter sends operator alerts as SMS messages.
type TwilioAlerter struct {
	api  smsAPI
	from string
	to   string
}

// Compile-time check that TwilioAlerter implements chat.Alerter.
var _ chat.Alerter = (*TwilioAlerter)(nil)

// NewTwilioAlerter creates an SMS alerter. Credentials and numbers fall back
// to environment variables; missing configuration is an error so the caller
// can run without an alerter instead of with a broken one.
func NewTwilioAlerter(opts ...Option) (*TwilioAlerter, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	// Fallback to environment variables if not provided via options
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.AlertFrom == "" {
		cfg.AlertFrom = os.Getenv("MOVEPILOT_ALERT_FROM")
	}
	if cfg.AlertTo == "" {
		cfg.AlertTo = os.Getenv("MOVEPILOT_ALERT_TO")
	}
	slog.Debug("NewTwilioAlerter: alerter config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"AlertFrom_set", cfg.AlertFrom != "",
		"AlertTo_set", cfg.AlertTo != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.AlertFrom == "" || cfg.AlertTo == "" {
		return nil, fmt.Errorf("alert from and to numbers must be provided")
	}

	client := twilio.NewRestClientWithParams(
		twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		},
	)

	return &TwilioAlerter{
		api:  client.Api,
		from: cfg.AlertFrom,
		to:   cfg.AlertTo,
	}, nil
}

// Alert sends one SMS to the operator number. The context bounds nothing
// Twilio-side (the SDK call is synchronous) but keeps the interface uniform.
func (a *TwilioAlerter) Alert(_ context.Context, subject, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(a.to)
	params.SetFrom(a.from)
	params.SetBody(subject + "\n" + body)

	_, err := a.api.CreateMessage(params)
	if err != nil {
		slog.Error("TwilioAlerter.Alert: failed to send alert", "error", err, "subject", subject)
		return fmt.Errorf("failed to send operator alert: %w", err)
	}
	slog.Info("TwilioAlerter.Alert: operator alerted", "subject", subject)
	return nil
}
