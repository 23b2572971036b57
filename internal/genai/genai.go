// Package genai provides the OpenAI conversation client for MovePilot chat
// turns.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Defaults for the provider call.
const (
	// DefaultTimeout caps one provider call. It sits just under the
	// request-level deadline so a hung call surfaces as a retryable timeout
	// instead of the caller's connection dying.
	DefaultTimeout = 28 * time.Second
	// DefaultTemperature keeps replies varied without wandering off policy.
	DefaultTemperature = 0.7
	// DefaultMaxTokens bounds the reply length; the validator flags anything
	// that still comes back over the text length limit.
	DefaultMaxTokens = 600
)

// ErrNoChoicesReturned is returned when the provider responds without any
// completion choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// ClientInterface is the conversation surface the chat pipeline depends on.
type ClientInterface interface {
	Converse(ctx context.Context, systemPrompt string, history []models.ConversationMessage, userMessage string) (string, error)
}

// chatService defines the minimal interface for chat completions.
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration for the conversation client.
type Opts struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

// Option configures the client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key explicitly instead of reading the
// environment.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// WithMaxTokens overrides the reply token budget.
func WithMaxTokens(n int64) Option {
	return func(o *Opts) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	chat        chatService
	model       openai.ChatModel
	temperature float64
	maxTokens   int64
	timeout     time.Duration
}

// NewClient initializes the conversation client. The API key comes from the
// options or the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		Model:       openai.ChatModelGPT4oMini,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("Creating GenAI client", "model", cfg.Model, "timeout", cfg.Timeout)
	return &Client{
		chat:        &cli.Chat.Completions,
		model:       openai.ChatModel(cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// Converse sends the composed system prompt, the ordered history, and the
// user's new message, and returns the assistant's reply text. The call is
// capped by the client timeout. No retries happen here; failures are
// classified by the caller and shaped into user-safe responses.
func (c *Client) Converse(ctx context.Context, systemPrompt string, history []models.ConversationMessage, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userMessage))

	slog.Debug("Client.Converse: calling provider", "model", c.model, "historyLen", len(history))
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		slog.Error("Client.Converse: provider call failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		slog.Error("Client.Converse: provider returned no choices")
		return "", ErrNoChoicesReturned
	}

	reply := resp.Choices[0].Message.Content
	slog.Debug("Client.Converse: provider call succeeded", "replyLen", len(reply))
	return reply, nil
}
