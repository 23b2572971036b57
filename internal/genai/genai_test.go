package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MovePilotApp/MovePilot/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockChatService implements chatService for testing and records the last
// request it saw.
type mockChatService struct {
	resp   *openai.ChatCompletion
	err    error
	params openai.ChatCompletionNewParams
	called bool
}

func (m *mockChatService) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.called = true
	m.params = body
	return m.resp, m.err
}

func testClient(svc *mockChatService) *Client {
	return &Client{
		chat:        svc,
		model:       openai.ChatModelGPT4oMini,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		timeout:     DefaultTimeout,
	}
}

func TestConverseSuccess(t *testing.T) {
	svc := &mockChatService{
		resp: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "Book your movers this week."}},
			},
		},
	}
	client := testClient(svc)

	history := []models.ConversationMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello, when is the move?"},
	}
	out, err := client.Converse(context.Background(), "system text", history, "what should I do first?")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Book your movers this week." {
		t.Errorf("unexpected reply: %q", out)
	}

	msgs := svc.params.Messages
	if len(msgs) != 4 {
		t.Fatalf("sent %d messages; want system + 2 history + user = 4", len(msgs))
	}
	if msgs[0].OfSystem == nil {
		t.Error("first message should be the system prompt")
	}
	if msgs[1].OfUser == nil || msgs[2].OfAssistant == nil {
		t.Error("history messages should keep their roles in order")
	}
	if msgs[3].OfUser == nil {
		t.Error("last message should be the new user message")
	}
}

func TestConverseServiceError(t *testing.T) {
	svc := &mockChatService{err: errors.New("service failure")}
	client := testClient(svc)
	_, err := client.Converse(context.Background(), "sys", nil, "usr")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestConverseNoChoices(t *testing.T) {
	svc := &mockChatService{resp: &openai.ChatCompletion{}}
	client := testClient(svc)
	_, err := client.Converse(context.Background(), "sys", nil, "usr")
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected ErrNoChoicesReturned, got %v", err)
	}
}

func TestNewClientNoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewClientWithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-4o-mini"), WithTimeout(DefaultTimeout))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil {
		t.Error("expected client instance, got nil")
	}
}

type fakeTimeoutError struct{}

func (fakeTimeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (fakeTimeoutError) Timeout() bool   { return true }
func (fakeTimeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantKind      models.FailureKind
		wantRetryable bool
	}{
		{"provider 429", &openai.Error{StatusCode: 429}, models.FailureRateLimited, true},
		{"provider 401", &openai.Error{StatusCode: 401}, models.FailureAuth, false},
		{"provider 500", &openai.Error{StatusCode: 500}, models.FailureUpstream, true},
		{"provider 503", &openai.Error{StatusCode: 503}, models.FailureUpstream, true},
		{"deadline exceeded", context.DeadlineExceeded, models.FailureTimeout, true},
		{"network timeout", fakeTimeoutError{}, models.FailureTimeout, true},
		{"no choices", ErrNoChoicesReturned, models.FailureUnknown, true},
		{"anything else", errors.New("boom"), models.FailureUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err)
			if f.Kind != tt.wantKind {
				t.Errorf("Classify() kind = %s; want %s", f.Kind, tt.wantKind)
			}
			if f.Retryable != tt.wantRetryable {
				t.Errorf("Classify() retryable = %v; want %v", f.Retryable, tt.wantRetryable)
			}
			if f.UserText == "" {
				t.Error("Classify() must always carry a user-safe message")
			}
		})
	}
}

func TestClassifyTimeoutPhrasing(t *testing.T) {
	f := Classify(context.DeadlineExceeded)
	if !strings.Contains(f.UserText, "Let me make sure I get this right") {
		t.Errorf("timeout text = %q; want the make-sure phrasing", f.UserText)
	}
}

func TestClassifyNeverLeaksProviderText(t *testing.T) {
	providerErr := errors.New("upstream exploded: secret internal detail")
	f := Classify(providerErr)
	if strings.Contains(f.UserText, "secret") {
		t.Error("user text must not contain provider error detail")
	}
}
