package chat

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/models"
)

var assembleNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func validRequest() *models.ChatTurnRequest {
	return &models.ChatTurnRequest{
		Message: "What should I do first?",
		UserState: &models.UserContext{
			UserID:   "user-1",
			MoveDate: "2026-03-20",
		},
		ConversationHistory: []models.ConversationMessage{
			{Role: models.RoleUser, Content: "hi", Position: 0},
			{Role: models.RoleAssistant, Content: "hello", Position: 1},
		},
	}
}

func TestAssembleContextRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.ChatTurnRequest)
		wantErr error
	}{
		{
			name:    "missing message",
			mutate:  func(r *models.ChatTurnRequest) { r.Message = "" },
			wantErr: models.ErrEmptyMessage,
		},
		{
			name:    "missing user state",
			mutate:  func(r *models.ChatTurnRequest) { r.UserState = nil },
			wantErr: models.ErrMissingUserState,
		},
		{
			name:    "missing user id",
			mutate:  func(r *models.ChatTurnRequest) { r.UserState.UserID = "" },
			wantErr: models.ErrEmptyUserID,
		},
		{
			name:    "whitespace only message",
			mutate:  func(r *models.ChatTurnRequest) { r.Message = " \t \n " },
			wantErr: models.ErrEmptyMessage,
		},
		{
			name:    "over length message",
			mutate:  func(r *models.ChatTurnRequest) { r.Message = strings.Repeat("a", models.MaxMessageLength+1) },
			wantErr: models.ErrMessageTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := AssembleContext(req, assembleNow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AssembleContext error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssembleContextSanitizesMessage(t *testing.T) {
	req := validRequest()
	req.Message = "  Line one\x00\x1b[31m\nLine two\t!  "

	in, err := AssembleContext(req, assembleNow)
	if err != nil {
		t.Fatalf("AssembleContext: %v", err)
	}
	if want := "Line one[31m\nLine two\t!"; in.Message != want {
		t.Errorf("Message = %q, want %q", in.Message, want)
	}
	// The request itself stays untouched.
	if req.Message != "  Line one\x00\x1b[31m\nLine two\t!  " {
		t.Errorf("request message mutated: %q", req.Message)
	}
}

func TestAssembleContextDerivesDaysUntilMove(t *testing.T) {
	tests := []struct {
		name     string
		moveDate string
		want     int
	}{
		{name: "ten days out", moveDate: "2026-03-20", want: 10},
		{name: "today", moveDate: "2026-03-10", want: 0},
		{name: "tomorrow", moveDate: "2026-03-11", want: 1},
		{name: "already passed clamps to zero", moveDate: "2026-03-01", want: 0},
		{name: "unset", moveDate: "", want: -1},
		{name: "unparseable", moveDate: "March 20th", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.UserState.MoveDate = tt.moveDate
			in, err := AssembleContext(req, assembleNow)
			if err != nil {
				t.Fatalf("AssembleContext: %v", err)
			}
			if in.Context.DaysUntilMove != tt.want {
				t.Errorf("DaysUntilMove = %d, want %d", in.Context.DaysUntilMove, tt.want)
			}
		})
	}
}

func TestAssembleContextCopiesUserState(t *testing.T) {
	req := validRequest()
	in, err := AssembleContext(req, assembleNow)
	if err != nil {
		t.Fatalf("AssembleContext: %v", err)
	}

	in.Context.Name = "changed"
	if req.UserState.Name == "changed" {
		t.Error("assembled context aliases the request's user state")
	}
	if req.UserState.DaysUntilMove != 0 {
		t.Errorf("request DaysUntilMove mutated to %d", req.UserState.DaysUntilMove)
	}
}

func TestAssembleContextCurrentTaskWins(t *testing.T) {
	req := validRequest()
	req.UserState.CurrentTaskID = "book_movers"
	req.CurrentTask = "set_up_internet"

	in, err := AssembleContext(req, assembleNow)
	if err != nil {
		t.Fatalf("AssembleContext: %v", err)
	}
	if in.Context.CurrentTaskID != "set_up_internet" {
		t.Errorf("CurrentTaskID = %q, want the request-level task", in.Context.CurrentTaskID)
	}
}

func TestAssembleContextFillsSessionID(t *testing.T) {
	req := validRequest()
	in, err := AssembleContext(req, assembleNow)
	if err != nil {
		t.Fatalf("AssembleContext: %v", err)
	}
	if in.Session.SessionID == "" {
		t.Error("SessionID not generated for a request without session metadata")
	}

	req = validRequest()
	req.SessionMetadata = &models.SessionMetadata{SessionID: "session-7", MessageCount: 4}
	in, err = AssembleContext(req, assembleNow)
	if err != nil {
		t.Fatalf("AssembleContext: %v", err)
	}
	if in.Session.SessionID != "session-7" || in.Session.MessageCount != 4 {
		t.Errorf("session = %+v, want the caller's metadata preserved", in.Session)
	}
}
