// Package interpret turns raw model output into MovePilot's structured chat
// result: cleaned text, suggested actions, state updates, and internal
// notes.
package interpret

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MovePilotApp/MovePilot/internal/metrics"
	"github.com/MovePilotApp/MovePilot/internal/models"
)

// State update and note keys the caller merges or logs.
const (
	UpdateHeardPitch         = "heardAccountabilityPitch"
	UpdateCompletedTaskIDs   = "completedTaskIds"
	UpdateVendorInteractions = "vendorInteractions"

	NoteVendorMentions   = "vendorMentions"
	NotePitchDelivered   = "pitchDelivered"
	NoteContextFactors   = "contextFactorsUsed"
	NoteValidationFlags  = "validationWarnings"
	vendorOfferedBooking = "offered_booking"
)

// Interpreter runs the post-reply pipeline. It owns no state beyond its
// classifier and is safe for concurrent use.
type Interpreter struct {
	classifier Classifier
}

// NewInterpreter creates an Interpreter. A nil classifier gets the keyword
// implementation.
func NewInterpreter(c Classifier) *Interpreter {
	if c == nil {
		c = NewKeywordClassifier()
	}
	return &Interpreter{classifier: c}
}

// Interpret processes one assistant reply against the request's context and
// the user's message. The returned response always carries non-nil maps and
// slices so the wire shapes stay `[]`/`{}`, never null. Validation findings
// never block: they are logged, counted, and attached as notes.
func (i *Interpreter) Interpret(uc *models.UserContext, userMessage, rawReply string) models.ChatTurnResponse {
	text := Clean(rawReply)

	resp := models.ChatTurnResponse{
		Text:             text,
		SuggestedActions: make([]models.SuggestedAction, 0, 2),
		StateUpdates:     make(models.StateUpdates),
		InternalNotes:    make(models.InternalNotes),
	}

	// Vendor mentions feed both the notes and the primary pick for actions.
	mentions := i.classifier.VendorMentions(text)
	if len(mentions) > 0 {
		resp.InternalNotes[NoteVendorMentions] = mentions
	}

	// The accountability pitch is one-shot: never evaluated once the flag is
	// set, never unset by anything.
	if !uc.HeardAccountabilityPitch && i.classifier.DetectsPitch(text) {
		resp.StateUpdates[UpdateHeardPitch] = true
		resp.InternalNotes[NotePitchDelivered] = true
		slog.Debug("Interpreter.Interpret: accountability pitch delivered", "userID", uc.UserID)
	}

	offers := i.classifier.BookingOffers(text)
	if len(offers) > 0 {
		interactions := make(map[string]string, len(offers))
		for _, vendor := range offers {
			interactions[vendor] = vendorOfferedBooking
		}
		resp.StateUpdates[UpdateVendorInteractions] = interactions
	}

	// Completion claims come from the user's message, not the reply, and
	// only count for tasks not already done.
	var completed []string
	for _, taskID := range i.classifier.CompletionClaims(userMessage) {
		if !uc.HasCompleted(taskID) {
			completed = append(completed, taskID)
		}
	}
	if len(completed) > 0 {
		resp.StateUpdates[UpdateCompletedTaskIDs] = completed
		slog.Debug("Interpreter.Interpret: user reported completions", "userID", uc.UserID, "tasks", completed)
	}

	resp.SuggestedActions = i.suggestActions(uc, text, offers, mentions)

	if factors := contextFactorsUsed(uc, text); len(factors) > 0 {
		resp.InternalNotes[NoteContextFactors] = factors
	}

	if findings := Validate(text); len(findings) > 0 {
		warnings := make([]string, len(findings))
		for n, f := range findings {
			warnings[n] = fmt.Sprintf("%s: %s", f.Reason, f.Detail)
			metrics.ValidationFlagsTotal.WithLabelValues(f.Reason).Inc()
			slog.Warn("Interpreter.Interpret: reply failed validation", "reason", f.Reason, "detail", f.Detail)
		}
		resp.InternalNotes[NoteValidationFlags] = warnings
	}

	return resp
}

// suggestActions derives the actionable follow-ups: book_vendor for the
// primary offered vendor, show_info when a task start is proposed and we
// know which task, ask_question when the reply asks one.
func (i *Interpreter) suggestActions(uc *models.UserContext, text string, offers, mentions []string) []models.SuggestedAction {
	actions := make([]models.SuggestedAction, 0, 2)

	primary := ""
	if len(offers) > 0 {
		primary = offers[0]
	} else if len(mentions) > 0 && i.classifier.SuggestsTaskStart(text) {
		// A "let's start on the movers" phrasing without an explicit offer
		// still warrants the booking entry point.
		primary = mentions[0]
	}
	if primary != "" {
		actions = append(actions, models.SuggestedAction{
			Type:   models.ActionBookVendor,
			Vendor: primary,
			Label:  "Book " + vendorLabel(primary),
		})
	}

	if i.classifier.SuggestsTaskStart(text) && uc.CurrentTaskID != "" {
		actions = append(actions, models.SuggestedAction{
			Type:   models.ActionShowInfo,
			TaskID: uc.CurrentTaskID,
			Label:  "See the details",
		})
	}

	if strings.Contains(text, "?") {
		actions = append(actions, models.SuggestedAction{Type: models.ActionAskQuestion})
	}

	return actions
}

// vendorLabel renders a vendor category id as a button label.
func vendorLabel(category string) string {
	return strings.ReplaceAll(category, "_", " ")
}

// contextFactorsUsed records which context fields appear in the reply, for
// observability only. Each factor is checked only when the context actually
// carries it.
func contextFactorsUsed(uc *models.UserContext, text string) []string {
	lower := strings.ToLower(text)
	var factors []string

	if uc.Name != "" && strings.Contains(lower, strings.ToLower(uc.Name)) {
		factors = append(factors, "name")
	}
	if (uc.Origin.City != "" && strings.Contains(lower, strings.ToLower(uc.Origin.City))) ||
		(uc.Destination.City != "" && strings.Contains(lower, strings.ToLower(uc.Destination.City))) {
		factors = append(factors, "cities")
	}
	if uc.DaysUntilMove >= 0 &&
		(strings.Contains(lower, strconv.Itoa(uc.DaysUntilMove)+" days") ||
			(uc.MoveDate != "" && strings.Contains(lower, uc.MoveDate)) ||
			strings.Contains(lower, "moving day")) {
		factors = append(factors, "timeline")
	}
	if uc.MoveDistance != "" && strings.Contains(lower, strings.ToLower(uc.MoveDistance)) {
		factors = append(factors, "distance")
	}
	if uc.BudgetTier != "" && strings.Contains(lower, strings.ToLower(uc.BudgetTier)) {
		factors = append(factors, "budget")
	}
	if uc.HasKids && (strings.Contains(lower, "kid") || strings.Contains(lower, "child") || strings.Contains(lower, "school")) {
		factors = append(factors, "kids")
	}
	if uc.HasPets && petMentioned(lower, uc.PetTypes) {
		factors = append(factors, "pets")
	}
	if (uc.Origin.Bedrooms > 0 || uc.Destination.Bedrooms > 0) && strings.Contains(lower, "bedroom") {
		factors = append(factors, "bedrooms")
	}

	return factors
}

func petMentioned(lower string, petTypes []string) bool {
	if strings.Contains(lower, "pet") {
		return true
	}
	for _, p := range petTypes {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
