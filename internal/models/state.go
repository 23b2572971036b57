// Package models defines the runtime state structures for MovePilot workflows.
package models

// Stage identifies where a workflow run currently is. The flow package owns
// the transitions between stages; clients only render them.
type Stage string

const (
	// StageIntro is the opening card before any question.
	StageIntro Stage = "intro"
	// StageQuestion is an active question, indexed by WorkflowState.QuestionIndex.
	StageQuestion Stage = "question"
	// StageRecap is the vendor-flow summary awaiting confirmation.
	StageRecap Stage = "recap"
	// StageReview is the mini-assessment entry review awaiting confirmation.
	StageReview Stage = "review"
	// StageComplete is terminal; answers have been handed to submission.
	StageComplete Stage = "complete"
	// StageCancelled is terminal; answers are discarded.
	StageCancelled Stage = "cancelled"
)

// IsTerminal reports whether the stage ends the run.
func (s Stage) IsTerminal() bool {
	return s == StageComplete || s == StageCancelled
}

// WorkflowState is the complete state of one workflow run. Transition
// functions take it by value and return the successor, so a run can be
// replayed or discarded without touching shared state.
type WorkflowState struct {
	WorkflowID    string            `json:"workflowId"`
	Stage         Stage             `json:"stage"`
	QuestionIndex int               `json:"questionIndex"` // valid only in StageQuestion
	Answers       WorkflowAnswers   `json:"answers,omitempty"`
	Entries       []AssessmentEntry `json:"entries,omitempty"`
}
