// Package chat orchestrates one turn of conversation: assemble context,
// admit, compose the prompt, call the model, interpret the reply.
package chat

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/MovePilotApp/MovePilot/internal/models"
	"github.com/MovePilotApp/MovePilot/internal/util"
)

// TurnInput is the assembled, sanitized form of one chat turn request. The
// context is a private copy; the caller's request is never mutated.
type TurnInput struct {
	Context *models.UserContext
	Message string
	History []models.ConversationMessage
	Session models.SessionMetadata
}

// AssembleContext validates the request shape, sanitizes the inbound
// message, and merges profile, history, and session metadata into one
// UserContext with derived fields filled in. It performs no network or
// store access.
func AssembleContext(req *models.ChatTurnRequest, now time.Time) (*TurnInput, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	message, err := sanitizeMessage(req.Message)
	if err != nil {
		return nil, err
	}

	uc := *req.UserState
	uc.DaysUntilMove = models.DaysUntil(uc.MoveDate, now)
	if req.CurrentTask != "" {
		uc.CurrentTaskID = req.CurrentTask
	}

	session := models.SessionMetadata{}
	if req.SessionMetadata != nil {
		session = *req.SessionMetadata
	}
	if session.SessionID == "" {
		session.SessionID = util.GenerateSessionID()
	}

	return &TurnInput{
		Context: &uc,
		Message: message,
		History: req.ConversationHistory,
		Session: session,
	}, nil
}

// sanitizeMessage trims the message and strips control characters, keeping
// newlines and tabs. Empty-after-cleaning and over-length both reject.
func sanitizeMessage(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", models.ErrEmptyMessage
	}
	if len(cleaned) > models.MaxMessageLength {
		return "", fmt.Errorf("%w: %d chars, maximum is %d", models.ErrMessageTooLong, len(cleaned), models.MaxMessageLength)
	}
	return cleaned, nil
}
