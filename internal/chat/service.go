package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/genai"
	"github.com/MovePilotApp/MovePilot/internal/interpret"
	"github.com/MovePilotApp/MovePilot/internal/metrics"
	"github.com/MovePilotApp/MovePilot/internal/models"
	"github.com/MovePilotApp/MovePilot/internal/prompt"
	"github.com/MovePilotApp/MovePilot/internal/ratelimit"
)

// admissionDeniedText is returned when the per-user window denies a turn.
const admissionDeniedText = "You're sending messages faster than I can keep up. Give me a few seconds and try that again."

// Alerter notifies an operator about failures that need human attention,
// such as provider credential rejections. Implementations must never let a
// send failure propagate beyond a log line.
type Alerter interface {
	Alert(ctx context.Context, subject, body string) error
}

// Service runs the chat turn pipeline. Each request is an independent
// stateless unit; the only shared mutable state lives behind the admitter.
type Service struct {
	composer    *prompt.Composer
	admitter    ratelimit.Admitter
	client      genai.ClientInterface
	interpreter *interpret.Interpreter
	alerter     Alerter
	now         func() time.Time
}

// NewService creates the turn pipeline. The admitter and client are
// required; a nil composer or interpreter gets the default implementation,
// and a nil alerter downgrades operator alerts to log lines.
func NewService(admitter ratelimit.Admitter, client genai.ClientInterface, composer *prompt.Composer, interpreter *interpret.Interpreter, alerter Alerter) *Service {
	if composer == nil {
		composer = prompt.NewComposer()
	}
	if interpreter == nil {
		interpreter = interpret.NewInterpreter(nil)
	}
	slog.Debug("Service.NewService: chat pipeline assembled", "hasAlerter", alerter != nil)
	return &Service{
		composer:    composer,
		admitter:    admitter,
		client:      client,
		interpreter: interpreter,
		alerter:     alerter,
		now:         time.Now,
	}
}

// Turn processes one chat turn. On success the failure is nil; every
// non-success path returns a ChatFailure whose UserText is safe to render
// verbatim. Provider error text never reaches the caller.
func (s *Service) Turn(ctx context.Context, req *models.ChatTurnRequest) (*models.ChatTurnResponse, *models.ChatFailure) {
	start := s.now()

	in, err := AssembleContext(req, start)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("invalid").Inc()
		slog.Warn("Service.Turn: invalid request", "error", err)
		return nil, &models.ChatFailure{
			Kind:     models.FailureInvalid,
			UserText: err.Error(),
		}
	}

	uc := in.Context
	if !s.admitter.Allow(uc.UserID) {
		metrics.ChatTurnsTotal.WithLabelValues("denied").Inc()
		metrics.AdmissionDeniedTotal.Inc()
		slog.Info("Service.Turn: admission denied", "userID", uc.UserID, "sessionID", in.Session.SessionID)
		return nil, &models.ChatFailure{
			Kind:      models.FailureAdmission,
			Retryable: true,
			UserText:  admissionDeniedText,
		}
	}

	systemPrompt := s.composer.Compose(uc)

	callStart := time.Now()
	reply, err := s.client.Converse(ctx, systemPrompt, in.History, in.Message)
	metrics.ProviderLatency.Observe(time.Since(callStart).Seconds())
	if err != nil {
		failure := genai.Classify(err)
		metrics.ChatTurnsTotal.WithLabelValues("failed").Inc()
		metrics.ChatFailuresTotal.WithLabelValues(string(failure.Kind)).Inc()
		slog.Error("Service.Turn: provider call failed",
			"userID", uc.UserID,
			"sessionID", in.Session.SessionID,
			"kind", failure.Kind,
			"error", err)
		if failure.Kind == models.FailureAuth {
			s.alertOperator(ctx, err)
		}
		return nil, &failure
	}

	resp := s.interpreter.Interpret(uc, in.Message, reply)
	resp.Meta = models.ChatMeta{
		Duration:  s.now().Sub(start).Milliseconds(),
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}

	metrics.ChatTurnsTotal.WithLabelValues("ok").Inc()
	slog.Debug("Service.Turn: turn complete",
		"userID", uc.UserID,
		"sessionID", in.Session.SessionID,
		"durationMs", resp.Meta.Duration,
		"actions", len(resp.SuggestedActions))
	return &resp, nil
}

// alertOperator raises the alarm for credential failures. The alert itself
// is best-effort; a failed send only logs.
func (s *Service) alertOperator(ctx context.Context, cause error) {
	metrics.OperatorAlertsTotal.Inc()
	if s.alerter == nil {
		slog.Warn("Service.alertOperator: no alerter configured, logging only", "cause", cause)
		return
	}
	if err := s.alerter.Alert(ctx, "MovePilot provider auth failure", cause.Error()); err != nil {
		slog.Error("Service.alertOperator: alert send failed", "error", err)
	}
}
