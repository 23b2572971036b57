// Package models defines workflow catalog and submission structures for MovePilot.
package models

import "time"

// WorkflowKind distinguishes the two flow families the engine drives.
type WorkflowKind string

const (
	// WorkflowKindVendor is a vendor-qualifying flow; submission starts matching.
	WorkflowKindVendor WorkflowKind = "vendor_qualifying"
	// WorkflowKindAssessment is a mini-assessment flow; submission generates tasks.
	WorkflowKindAssessment WorkflowKind = "mini_assessment"
)

// IsValidWorkflowKind checks if the given workflow kind is supported.
func IsValidWorkflowKind(k WorkflowKind) bool {
	switch k {
	case WorkflowKindVendor, WorkflowKindAssessment:
		return true
	default:
		return false
	}
}

// QuestionType defines how a question collects its answer.
type QuestionType string

const (
	// QuestionSingleSelect takes exactly one option and auto-advances.
	QuestionSingleSelect QuestionType = "single_select"
	// QuestionMultiSelect toggles options and advances on explicit continue.
	QuestionMultiSelect QuestionType = "multi_select"
	// QuestionYesNo is a binary mini-assessment decision, optionally opening
	// free-text entry capture on yes.
	QuestionYesNo QuestionType = "yes_no"
)

// Option is one selectable choice on a question.
type Option struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	Icon      string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Subtitle  string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Exclusive bool   `json:"exclusive,omitempty" yaml:"exclusive,omitempty"` // selecting it clears co-selections
}

// Question is one step of a workflow.
type Question struct {
	ID               string       `json:"id" yaml:"id"`
	Prompt           string       `json:"prompt" yaml:"prompt"`
	Type             QuestionType `json:"type" yaml:"type"`
	Options          []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	AllowsFreeText   bool         `json:"allowsFreeText,omitempty" yaml:"allows_free_text,omitempty"`
	AllowsMultiple   bool         `json:"allowsMultipleEntries,omitempty" yaml:"allows_multiple_entries,omitempty"`
	EntryPlaceholder string       `json:"entryPlaceholder,omitempty" yaml:"entry_placeholder,omitempty"`
}

// Intro is the opening card of a workflow.
type Intro struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
}

// Recap is the closing summary card of a workflow.
type Recap struct {
	Title   string `json:"title" yaml:"title"`
	Closing string `json:"closing,omitempty" yaml:"closing,omitempty"`
	Button  string `json:"button,omitempty" yaml:"button,omitempty"`
}

// TaskTemplate carries the task-generation parameters of a mini-assessment
// workflow: every generated task copies these and appends the entry name to
// the title prefix.
type TaskTemplate struct {
	TitlePrefix string `json:"titlePrefix" yaml:"title_prefix"`
	Category    string `json:"category" yaml:"category"`
	Subcategory string `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Priority    int    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// WorkflowDefinition is one immutable flow loaded from the static catalog.
type WorkflowDefinition struct {
	ID           string        `json:"id" yaml:"id"`
	Kind         WorkflowKind  `json:"kind" yaml:"kind"`
	Intro        Intro         `json:"intro" yaml:"intro"`
	Questions    []Question    `json:"questions" yaml:"questions"`
	Recap        *Recap        `json:"recap,omitempty" yaml:"recap,omitempty"`
	TaskTemplate *TaskTemplate `json:"taskTemplate,omitempty" yaml:"task_template,omitempty"`
}

// QuestionByID returns the question with the given id, or nil.
func (w *WorkflowDefinition) QuestionByID(id string) *Question {
	for i := range w.Questions {
		if w.Questions[i].ID == id {
			return &w.Questions[i]
		}
	}
	return nil
}

// WorkflowAnswers maps a question id to the ordered list of selected option
// ids. If a selection contains an exclusive option it contains nothing else;
// the state machine maintains that invariant.
type WorkflowAnswers map[string][]string

// AssessmentEntry is one accumulated mini-assessment item: a yes answer,
// optionally named via free text. AnswerID is stable for a given entry so
// task generation stays deterministic across resubmissions.
type AssessmentEntry struct {
	QuestionID  string `json:"questionId"`
	AnswerID    string `json:"answerId"`
	DisplayName string `json:"displayName,omitempty"`
	Text        string `json:"text,omitempty"`
}

// Title returns the human label for the entry: the display name when present,
// otherwise the raw captured text.
func (e AssessmentEntry) Title() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Text
}

// SubmitWorkflowRequest is the payload for committing a finished workflow.
// Vendor flows carry Answers; mini-assessments carry Entries.
type SubmitWorkflowRequest struct {
	WorkflowID string            `json:"workflowId"`
	UserID     string            `json:"userId"`
	Answers    WorkflowAnswers   `json:"answers,omitempty"`
	Entries    []AssessmentEntry `json:"entries,omitempty"`
}

// Validate checks that the required submission fields are present.
func (r *SubmitWorkflowRequest) Validate() error {
	if r.WorkflowID == "" {
		return ErrEmptyWorkflowID
	}
	if r.UserID == "" {
		return ErrEmptyUserID
	}
	if len(r.Answers) == 0 && len(r.Entries) == 0 {
		return ErrMissingAnswers
	}
	return nil
}

// VendorSubmissionResult is the response for a committed vendor workflow.
type VendorSubmissionResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status"` // always "matching_in_progress"
}

// AssessmentSubmissionResult is the response for a committed mini-assessment.
type AssessmentSubmissionResult struct {
	Success      bool `json:"success"`
	TasksCreated int  `json:"tasksCreated"`
}

// WorkflowSubmission is the audit record persisted for every accepted
// submission.
type WorkflowSubmission struct {
	ID          string       `json:"id"`
	WorkflowID  string       `json:"workflowId"`
	UserID      string       `json:"userId"`
	Kind        WorkflowKind `json:"kind"`
	AnswersJSON string       `json:"answersJson,omitempty"`
	SubmittedAt time.Time    `json:"submittedAt"`
}
