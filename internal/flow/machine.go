// Package flow implements MovePilot's workflow state machine, the
// mini-assessment engine, and the task generator behind workflow
// submissions.
//
// Transitions are pure: each takes a WorkflowState by value and returns the
// successor inside a Result, never touching shared state. Anything
// time-based, like the single-select auto-advance, is returned as data for
// the caller to schedule; the machine itself owns no timers.
package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/MovePilotApp/MovePilot/internal/models"
)

// AutoAdvanceDelay is how long a client waits after a single-select (or a
// yes/no tap) before applying the continue transition, so the selection
// stays visible for a beat.
const AutoAdvanceDelay = 400 * time.Millisecond

var (
	ErrTerminalState     = errors.New("workflow run already ended")
	ErrInvalidTransition = errors.New("event not valid in the current stage")
	ErrWrongQuestion     = errors.New("event targets a question that is not current")
	ErrUnknownOption     = errors.New("option not defined on the current question")
	ErrNoSelection       = errors.New("advancing requires at least one selection")
	ErrUnknownEntry      = errors.New("entry index out of range")
	ErrEmptyEntry        = errors.New("entry needs a display name or text")
)

// Result is the outcome of one transition. AutoAdvanceAfter is non-zero when
// the caller should apply Continue once the delay elapses.
type Result struct {
	State            models.WorkflowState
	AutoAdvanceAfter time.Duration
}

// Start opens a run for the given definition at the intro stage.
func Start(def *models.WorkflowDefinition) models.WorkflowState {
	return models.WorkflowState{
		WorkflowID: def.ID,
		Stage:      models.StageIntro,
		Answers:    models.WorkflowAnswers{},
	}
}

// CurrentQuestion returns the active question, or nil outside the question
// stage.
func CurrentQuestion(def *models.WorkflowDefinition, s models.WorkflowState) *models.Question {
	if s.Stage != models.StageQuestion || s.QuestionIndex < 0 || s.QuestionIndex >= len(def.Questions) {
		return nil
	}
	return &def.Questions[s.QuestionIndex]
}

// Continue advances the run: intro to the first question (or straight to the
// closing stage when the definition has none), a question to its successor.
// A question only advances once it holds at least one selection or a yes/no
// decision.
func Continue(def *models.WorkflowDefinition, s models.WorkflowState) (Result, error) {
	if s.Stage.IsTerminal() {
		return Result{State: s}, ErrTerminalState
	}
	switch s.Stage {
	case models.StageIntro:
		return Result{State: advance(def, s, -1)}, nil
	case models.StageQuestion:
		q := CurrentQuestion(def, s)
		if q == nil {
			return Result{State: s}, ErrInvalidTransition
		}
		if len(s.Answers[q.ID]) == 0 {
			return Result{State: s}, ErrNoSelection
		}
		return Result{State: advance(def, s, s.QuestionIndex)}, nil
	default:
		return Result{State: s}, ErrInvalidTransition
	}
}

// advance moves past question index i (i < 0 enters the flow), landing on
// the next question or the kind's closing stage.
func advance(def *models.WorkflowDefinition, s models.WorkflowState, i int) models.WorkflowState {
	next := i + 1
	if next < len(def.Questions) {
		s.Stage = models.StageQuestion
		s.QuestionIndex = next
		return s
	}
	if def.Kind == models.WorkflowKindAssessment {
		s.Stage = models.StageReview
	} else {
		s.Stage = models.StageRecap
	}
	return s
}

// Select records an option on the current question. Single-select replaces
// the prior answer and schedules the auto-advance; multi-select toggles
// membership, keeping exclusive options alone in both directions.
func Select(def *models.WorkflowDefinition, s models.WorkflowState, questionID, optionID string) (Result, error) {
	if s.Stage.IsTerminal() {
		return Result{State: s}, ErrTerminalState
	}
	q := CurrentQuestion(def, s)
	if q == nil {
		return Result{State: s}, ErrInvalidTransition
	}
	if q.ID != questionID {
		return Result{State: s}, fmt.Errorf("%w: %q, current is %q", ErrWrongQuestion, questionID, q.ID)
	}
	opt := optionByID(q, optionID)
	if opt == nil {
		return Result{State: s}, fmt.Errorf("%w: %q", ErrUnknownOption, optionID)
	}

	s.Answers = cloneAnswers(s.Answers)
	switch q.Type {
	case models.QuestionSingleSelect:
		s.Answers[q.ID] = []string{opt.ID}
		return Result{State: s, AutoAdvanceAfter: AutoAdvanceDelay}, nil
	case models.QuestionMultiSelect:
		s.Answers[q.ID] = toggle(q, s.Answers[q.ID], opt)
		return Result{State: s}, nil
	default:
		return Result{State: s}, fmt.Errorf("%w: %s questions take yes/no answers", ErrInvalidTransition, q.Type)
	}
}

// toggle applies multi-select membership rules. Selecting an already
// selected option removes it; selecting an exclusive option clears
// everything else; selecting a regular option clears any selected exclusive
// one.
func toggle(q *models.Question, selected []string, opt *models.Option) []string {
	for i, id := range selected {
		if id == opt.ID {
			out := append([]string(nil), selected[:i]...)
			return append(out, selected[i+1:]...)
		}
	}
	if opt.Exclusive {
		return []string{opt.ID}
	}
	kept := make([]string, 0, len(selected)+1)
	for _, id := range selected {
		if o := optionByID(q, id); o != nil && o.Exclusive {
			continue
		}
		kept = append(kept, id)
	}
	return append(kept, opt.ID)
}

// Confirm commits the run from its closing stage. The completed state keeps
// its answers and entries so the caller can hand them to submission.
func Confirm(def *models.WorkflowDefinition, s models.WorkflowState) (Result, error) {
	if s.Stage.IsTerminal() {
		return Result{State: s}, ErrTerminalState
	}
	if s.Stage != models.StageRecap && s.Stage != models.StageReview {
		return Result{State: s}, ErrInvalidTransition
	}
	s.Stage = models.StageComplete
	return Result{State: s}, nil
}

// Cancel ends the run from any non-terminal stage and discards everything
// gathered. Terminal states come back unchanged.
func Cancel(s models.WorkflowState) models.WorkflowState {
	if s.Stage.IsTerminal() {
		return s
	}
	s.Stage = models.StageCancelled
	s.QuestionIndex = 0
	s.Answers = nil
	s.Entries = nil
	return s
}

// SummaryRow is one recap line: a question and the labels it resolved to.
type SummaryRow struct {
	QuestionID string   `json:"questionId"`
	Prompt     string   `json:"prompt"`
	Labels     []string `json:"labels"`
}

// Summary renders the recap rows: every answered question in definition
// order with the labels of its selections. Ids without a matching option
// (yes/no decisions) pass through as-is.
func Summary(def *models.WorkflowDefinition, s models.WorkflowState) []SummaryRow {
	rows := make([]SummaryRow, 0, len(def.Questions))
	for i := range def.Questions {
		q := &def.Questions[i]
		selected := s.Answers[q.ID]
		if len(selected) == 0 {
			continue
		}
		labels := make([]string, 0, len(selected))
		for _, id := range selected {
			if opt := optionByID(q, id); opt != nil {
				labels = append(labels, opt.Label)
			} else {
				labels = append(labels, id)
			}
		}
		rows = append(rows, SummaryRow{QuestionID: q.ID, Prompt: q.Prompt, Labels: labels})
	}
	return rows
}

func optionByID(q *models.Question, id string) *models.Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

func cloneAnswers(a models.WorkflowAnswers) models.WorkflowAnswers {
	out := make(models.WorkflowAnswers, len(a)+1)
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func cloneEntries(e []models.AssessmentEntry) []models.AssessmentEntry {
	return append([]models.AssessmentEntry(nil), e...)
}
