// Package genai provides the OpenAI conversation client for MovePilot.
//
// This file maps provider errors to the normalized failure taxonomy. Every
// failed turn becomes a fixed, user-safe message; raw provider text never
// reaches the caller.
package genai

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/MovePilotApp/MovePilot/internal/models"
	"github.com/openai/openai-go"
)

// Fixed user-facing texts per failure kind.
const (
	rateLimitedText = "I'm juggling a lot of conversations right now. Give me a moment, then ask me again."
	timeoutText     = "Let me make sure I get this right. Could you send that one more time?"
	upstreamText    = "Sorry, something went wrong on my end. Please try again."
	authText        = "I'm having trouble right now. The team is on it; please try again a bit later."
	fallbackText    = "Sorry, I couldn't process that. Mind trying again?"
)

// Classify maps a failed provider call onto the failure taxonomy: 429 and
// 5xx are retryable, timeouts are retryable with their own phrasing, auth
// failures are not retryable and need operator attention, and anything else
// is a retryable generic fallback.
func Classify(err error) models.ChatFailure {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return models.ChatFailure{Kind: models.FailureRateLimited, Retryable: true, UserText: rateLimitedText}
		case apierr.StatusCode == http.StatusUnauthorized:
			return models.ChatFailure{Kind: models.FailureAuth, Retryable: false, UserText: authText}
		case apierr.StatusCode >= http.StatusInternalServerError:
			return models.ChatFailure{Kind: models.FailureUpstream, Retryable: true, UserText: upstreamText}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return models.ChatFailure{Kind: models.FailureTimeout, Retryable: true, UserText: timeoutText}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return models.ChatFailure{Kind: models.FailureTimeout, Retryable: true, UserText: timeoutText}
	}

	return models.ChatFailure{Kind: models.FailureUnknown, Retryable: true, UserText: fallbackText}
}
