// Mini-assessment transitions: binary yes/no questions that accumulate
// named entries, reviewed before commit. Shares the stage machinery in
// machine.go; only the events differ.
package flow

import (
	"fmt"
	"strings"

	"github.com/MovePilotApp/MovePilot/internal/models"
)

// Answer markers recorded for yes/no questions.
const (
	answerYes = "yes"
	answerNo  = "no"
)

// Answer records a yes/no decision on the current mini-assessment question.
// "No" discards any entries the question had and auto-advances, as does a
// "yes" on a question without free-text capture (which records a single
// entry named after the question). A "yes" that opens free-text capture
// stays on the question until an explicit continue.
func Answer(def *models.WorkflowDefinition, s models.WorkflowState, questionID string, yes bool) (Result, error) {
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
	if q.Type != models.QuestionYesNo {
		return Result{State: s}, fmt.Errorf("%w: %s questions take selections", ErrInvalidTransition, q.Type)
	}

	s.Answers = cloneAnswers(s.Answers)
	if !yes {
		s.Answers[q.ID] = []string{answerNo}
		s.Entries = dropEntriesFor(cloneEntries(s.Entries), q.ID)
		return Result{State: s, AutoAdvanceAfter: AutoAdvanceDelay}, nil
	}

	s.Answers[q.ID] = []string{answerYes}
	if !q.AllowsFreeText {
		entry := models.AssessmentEntry{
			QuestionID:  q.ID,
			AnswerID:    q.ID,
			DisplayName: strings.ReplaceAll(q.ID, "_", " "),
		}
		s.Entries = putEntry(cloneEntries(s.Entries), entry, false)
		return Result{State: s, AutoAdvanceAfter: AutoAdvanceDelay}, nil
	}
	return Result{State: s}, nil
}

// AddEntry captures one named entry on the current question after a yes
// answer. A question that does not allow multiple entries keeps only the
// latest; re-adding the same name replaces the earlier entry either way.
func AddEntry(def *models.WorkflowDefinition, s models.WorkflowState, questionID, displayName, text string) (Result, error) {
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
	if q.Type != models.QuestionYesNo || !q.AllowsFreeText {
		return Result{State: s}, fmt.Errorf("%w: question %q does not capture entries", ErrInvalidTransition, q.ID)
	}
	if len(s.Answers[q.ID]) == 0 || s.Answers[q.ID][0] != answerYes {
		return Result{State: s}, fmt.Errorf("%w: answer yes before adding entries", ErrInvalidTransition)
	}

	displayName = strings.TrimSpace(displayName)
	text = strings.TrimSpace(text)
	if displayName == "" && text == "" {
		return Result{State: s}, ErrEmptyEntry
	}

	entry := models.AssessmentEntry{
		QuestionID:  q.ID,
		AnswerID:    deriveAnswerID(q.ID, displayName, text),
		DisplayName: displayName,
		Text:        text,
	}
	s.Entries = putEntry(cloneEntries(s.Entries), entry, q.AllowsMultiple)
	return Result{State: s}, nil
}

// RemoveEntry drops the entry at index. Valid while collecting on a question
// and during review.
func RemoveEntry(def *models.WorkflowDefinition, s models.WorkflowState, index int) (Result, error) {
	if s.Stage.IsTerminal() {
		return Result{State: s}, ErrTerminalState
	}
	if s.Stage != models.StageQuestion && s.Stage != models.StageReview {
		return Result{State: s}, ErrInvalidTransition
	}
	if index < 0 || index >= len(s.Entries) {
		return Result{State: s}, fmt.Errorf("%w: %d of %d", ErrUnknownEntry, index, len(s.Entries))
	}
	entries := cloneEntries(s.Entries)
	s.Entries = append(entries[:index], entries[index+1:]...)
	return Result{State: s}, nil
}

// putEntry inserts the entry, replacing any earlier one it supersedes:
// the question's sole entry when multiples are not allowed, or an entry
// with the same answer id when they are.
func putEntry(entries []models.AssessmentEntry, entry models.AssessmentEntry, allowsMultiple bool) []models.AssessmentEntry {
	for i := range entries {
		if entries[i].QuestionID != entry.QuestionID {
			continue
		}
		if !allowsMultiple || entries[i].AnswerID == entry.AnswerID {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

// dropEntriesFor removes every entry belonging to the question.
func dropEntriesFor(entries []models.AssessmentEntry, questionID string) []models.AssessmentEntry {
	kept := entries[:0]
	for _, e := range entries {
		if e.QuestionID != questionID {
			kept = append(kept, e)
		}
	}
	return kept
}

// deriveAnswerID builds the stable id task generation keys on: the question
// id plus a slug of the entry's name.
func deriveAnswerID(questionID, displayName, text string) string {
	base := displayName
	if base == "" {
		base = text
	}
	if slug := slugify(base); slug != "" {
		return questionID + "_" + slug
	}
	return questionID
}

// slugify lowers the label and joins its alphanumeric runs with
// underscores.
func slugify(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}
