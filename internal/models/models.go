// Package models defines the core data structures for MovePilot.
//
// It includes the user context, conversation types, and the request/response
// shapes shared across modules.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message written by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a message written by the assistant.
	RoleAssistant Role = "assistant"
)

// Validation constants for input validation
const (
	// MaxMessageLength defines the maximum allowed length for an inbound chat message
	MaxMessageLength = 2000
	// MinReplyLength defines the minimum length an assistant reply should have
	MinReplyLength = 20
	// MaxReplyLength defines the maximum length an assistant reply should have
	MaxReplyLength = 2000
	// MaxHistoryMessages defines the maximum number of history messages accepted per turn
	MaxHistoryMessages = 200
	// MaxTaskBatchSize defines the maximum number of task records committed per write batch
	MaxTaskBatchSize = 500
)

// Error variables for better error handling and testability
var (
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrMessageTooLong   = errors.New("message exceeds maximum length")
	ErrMissingUserState = errors.New("userState is required")
	ErrEmptyUserID      = errors.New("userId cannot be empty")
	ErrTooManyMessages  = errors.New("conversation history exceeds maximum length")
	ErrInvalidRole      = errors.New("invalid conversation role")
	ErrEmptyWorkflowID  = errors.New("workflowId cannot be empty")
	ErrMissingAnswers   = errors.New("answers are required")
)

// IsValidRole checks if the given conversation role is supported.
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Move-distance categories used by the task catalog conditions.
const (
	MoveDistanceLocal        = "Local"
	MoveDistanceLongDistance = "Long Distance"
	MoveDistanceCrossCountry = "Cross-Country"
)

// Residence describes one end of a move: where the user lives now or where
// they are headed.
type Residence struct {
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	DwellingType string `json:"dwellingType,omitempty"` // e.g., "apartment", "house"
	Bedrooms     int    `json:"bedrooms,omitempty"`
	Floor        int    `json:"floor,omitempty"`
	HasElevator  bool   `json:"hasElevator,omitempty"`
	BuildYear    int    `json:"buildYear,omitempty"`
}

// UserContext is the merged, per-request view of everything known about the
// user. It is rebuilt from the caller-supplied state on every call and never
// mutated across requests; changes flow back to the caller as stateUpdates.
type UserContext struct {
	UserID                   string    `json:"userId"`
	Name                     string    `json:"name,omitempty"`
	MoveDate                 string    `json:"moveDate,omitempty"` // YYYY-MM-DD
	DaysUntilMove            int       `json:"daysUntilMove"`      // derived from MoveDate; -1 when unknown
	MoveDistance             string    `json:"moveDistance,omitempty"`
	Origin                   Residence `json:"origin,omitempty"`
	Destination              Residence `json:"destination,omitempty"`
	HasKids                  bool      `json:"hasKids,omitempty"`
	HasPets                  bool      `json:"hasPets,omitempty"`
	PetTypes                 []string  `json:"petTypes,omitempty"`
	BudgetTier               string    `json:"budgetTier,omitempty"` // e.g., "value", "standard", "premium"
	SpecialItems             []string  `json:"specialItems,omitempty"`
	HeardAccountabilityPitch bool      `json:"heardAccountabilityPitch,omitempty"`
	CompletedTasks           []string  `json:"completedTasks,omitempty"`
	PendingTasks             []string  `json:"pendingTasks,omitempty"`
	CurrentTaskID            string    `json:"currentTaskId,omitempty"`
}

// Profile is the flattened key→value view of a user context that task catalog
// conditions are evaluated against. Keys with no known value are absent.
type Profile map[string]string

// Profile flattens the context into the key→value form consumed by catalog
// condition predicates. Only populated fields appear; a predicate on an
// absent key never matches.
func (u *UserContext) Profile() Profile {
	p := make(Profile)
	if u.MoveDistance != "" {
		p["moveDistance"] = u.MoveDistance
	}
	if u.BudgetTier != "" {
		p["budgetTier"] = u.BudgetTier
	}
	p["hasKids"] = strconv.FormatBool(u.HasKids)
	p["hasPets"] = strconv.FormatBool(u.HasPets)
	if u.Origin.DwellingType != "" {
		p["originDwelling"] = u.Origin.DwellingType
	}
	if u.Destination.DwellingType != "" {
		p["destinationDwelling"] = u.Destination.DwellingType
	}
	if u.Origin.State != "" {
		p["originState"] = u.Origin.State
	}
	if u.Destination.State != "" {
		p["destinationState"] = u.Destination.State
	}
	if u.Origin.Floor > 1 {
		p["originAboveGroundFloor"] = "true"
	}
	if len(u.SpecialItems) > 0 {
		p["hasSpecialItems"] = "true"
	}
	if u.DaysUntilMove >= 0 {
		p["urgency"] = urgencyBucket(u.DaysUntilMove)
	}
	return p
}

// urgencyBucket maps a day count to the coarse buckets the catalog keys on.
func urgencyBucket(days int) string {
	switch {
	case days <= 7:
		return "critical"
	case days <= 14:
		return "high"
	case days <= 30:
		return "medium"
	default:
		return "low"
	}
}

// HasCompleted reports whether the given task id is already in the user's
// completed set.
func (u *UserContext) HasCompleted(taskID string) bool {
	for _, id := range u.CompletedTasks {
		if id == taskID {
			return true
		}
	}
	return false
}

// MoveDateLayout is the wire format for userState.moveDate.
const MoveDateLayout = "2006-01-02"

// DaysUntil derives the whole-day count from now (UTC) to the given move
// date. Unknown or unparseable dates yield -1; dates already passed clamp
// to 0 so urgency stays at its maximum instead of vanishing.
func DaysUntil(moveDate string, now time.Time) int {
	if moveDate == "" {
		return -1
	}
	d, err := time.Parse(MoveDateLayout, moveDate)
	if err != nil {
		return -1
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(d.Sub(today).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ConversationMessage is one turn of the chat transcript. The client supplies
// the full ordered history on every call; nothing is stored server-side.
type ConversationMessage struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	Position int    `json:"position,omitempty"`
}

// SessionMetadata carries caller-side session info, used only for logging and
// telemetry correlation.
type SessionMetadata struct {
	SessionID      string `json:"sessionId,omitempty"`
	MessageCount   int    `json:"messageCount,omitempty"`
	FirstMessageAt string `json:"firstMessageAt,omitempty"`
}

// ChatTurnRequest is the payload for one turn of conversation.
type ChatTurnRequest struct {
	Message             string                `json:"message"`
	ConversationHistory []ConversationMessage `json:"conversationHistory,omitempty"`
	UserState           *UserContext          `json:"userState"`
	CurrentTask         string                `json:"currentTask,omitempty"`
	SessionMetadata     *SessionMetadata      `json:"sessionMetadata,omitempty"`
}

// Validate performs shape validation on a chat turn request. Content
// sanitization happens later, during context assembly.
func (r *ChatTurnRequest) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	if r.UserState == nil {
		return ErrMissingUserState
	}
	if r.UserState.UserID == "" {
		return ErrEmptyUserID
	}
	if len(r.ConversationHistory) > MaxHistoryMessages {
		return ErrTooManyMessages
	}
	for _, m := range r.ConversationHistory {
		if !IsValidRole(m.Role) {
			return fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
		}
	}
	return nil
}

// ActionType identifies a suggested follow-up action surfaced to the client.
type ActionType string

const (
	// ActionBookVendor suggests starting a vendor booking flow.
	ActionBookVendor ActionType = "book_vendor"
	// ActionShowInfo suggests opening a task's detail card.
	ActionShowInfo ActionType = "show_info"
	// ActionAskQuestion suggests the assistant is waiting on an answer.
	ActionAskQuestion ActionType = "ask_question"
)

// SuggestedAction is one actionable follow-up extracted from a reply.
type SuggestedAction struct {
	Type   ActionType `json:"type"`
	Vendor string     `json:"vendor,omitempty"` // vendor category for book_vendor
	TaskID string     `json:"taskId,omitempty"` // referenced task for show_info
	Label  string     `json:"label,omitempty"`
}

// StateUpdates carries context changes the caller should merge into its
// stored profile: the accountability flag, newly completed task ids, and
// per-vendor interaction markers.
type StateUpdates map[string]any

// InternalNotes carries observability-only annotations about a turn; clients
// may log them but must not render them.
type InternalNotes map[string]any

// ChatMeta is timing metadata attached to every successful chat response.
type ChatMeta struct {
	Duration  int64  `json:"duration"` // milliseconds
	Timestamp string `json:"timestamp"`
}

// ChatTurnResponse is the successful result of one chat turn.
type ChatTurnResponse struct {
	Text             string            `json:"text"`
	SuggestedActions []SuggestedAction `json:"suggestedActions"`
	StateUpdates     StateUpdates      `json:"stateUpdates"`
	InternalNotes    InternalNotes     `json:"internalNotes"`
	Meta             ChatMeta          `json:"_meta"`
}

// ChatErrorResponse is the error-shaped chat result: a user-safe message plus
// a retryability hint. Provider error text never appears here.
type ChatErrorResponse struct {
	Text      string `json:"text"`
	Error     bool   `json:"error"`
	Retryable bool   `json:"retryable"`
}

// FailureKind classifies why a chat turn could not produce a model reply.
type FailureKind string

const (
	// FailureInvalid means the request failed shape validation or sanitization.
	FailureInvalid FailureKind = "invalid_request"
	// FailureRateLimited means the provider rejected the call with 429.
	FailureRateLimited FailureKind = "rate_limited"
	// FailureTimeout means the provider call exceeded the request deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureUpstream means the provider returned a 5xx.
	FailureUpstream FailureKind = "upstream"
	// FailureAuth means the provider rejected our credentials; needs operator attention.
	FailureAuth FailureKind = "auth"
	// FailureAdmission means the local rate limiter denied the turn.
	FailureAdmission FailureKind = "admission"
	// FailureUnknown covers everything else.
	FailureUnknown FailureKind = "unknown"
)

// ChatFailure is the normalized form of a failed chat turn before it is
// shaped into a ChatErrorResponse.
type ChatFailure struct {
	Kind      FailureKind
	Retryable bool
	UserText  string
}

// Response converts the failure into the wire shape returned to the caller.
func (f ChatFailure) Response() ChatErrorResponse {
	return ChatErrorResponse{Text: f.UserText, Error: true, Retryable: f.Retryable}
}

// TaskStatus represents the lifecycle status of a generated task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is waiting on the user.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusMatching indicates vendor matching is in progress.
	TaskStatusMatching TaskStatus = "matching_in_progress"
	// TaskStatusCompleted indicates the user finished the task.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusSkipped indicates the user dismissed the task.
	TaskStatusSkipped TaskStatus = "skipped"
)

// GeneratedTask is a task record produced by the task generator. The id is a
// deterministic function of the workflow and answer so resubmission upserts
// instead of duplicating.
type GeneratedTask struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	Source      string     `json:"source"` // originating workflow id
}

// API Response types for consistent JSON responses

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{response: APIResponse{}}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build constructs and returns the final APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage(message).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}
