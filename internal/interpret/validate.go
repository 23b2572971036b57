// Package interpret turns raw model output into MovePilot's structured chat
// result.
//
// This file implements the non-blocking reply validator: findings are logged
// and counted, never returned to the user as errors.
package interpret

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MovePilotApp/MovePilot/internal/models"
)

// Validation flag reasons, used as metric labels.
const (
	FlagBannedPhrase       = "banned_phrase"
	FlagNoQuestionOrAction = "no_question_or_action"
	FlagTooShort           = "too_short"
	FlagTooLong            = "too_long"
)

// bannedPhrases are service-desk openers and AI self-references the prompt
// forbids; their presence means the model drifted off policy.
var bannedPhrases = []string{
	"how can i help you",
	"how may i help you",
	"how can i assist",
	"how may i assist",
	"as an ai",
	"i'm just an ai",
	"is there anything else i can help",
	"feel free to reach out",
}

// actionVerbRe matches verbs that make a reply actionable when it asks no
// question.
var actionVerbRe = regexp.MustCompile(`\b(book|schedule|call|check|confirm|start|pack|reserve|compare|request|update|set up|line up|get)\b`)

// Finding is one validator observation about a reply.
type Finding struct {
	Reason string
	Detail string
}

// Validate inspects a cleaned reply and returns its findings. An empty slice
// means the reply passed. Callers log and count findings; the reply is
// returned to the user either way.
func Validate(text string) []Finding {
	var findings []Finding
	lower := strings.ToLower(text)

	for _, phrase := range bannedPhrases {
		if strings.Contains(lower, phrase) {
			findings = append(findings, Finding{
				Reason: FlagBannedPhrase,
				Detail: fmt.Sprintf("contains banned phrase %q", phrase),
			})
		}
	}

	if !strings.Contains(text, "?") && !actionVerbRe.MatchString(lower) {
		findings = append(findings, Finding{
			Reason: FlagNoQuestionOrAction,
			Detail: "reply has neither a question nor an action verb",
		})
	}

	if len(text) < models.MinReplyLength {
		findings = append(findings, Finding{
			Reason: FlagTooShort,
			Detail: fmt.Sprintf("reply is %d chars, minimum is %d", len(text), models.MinReplyLength),
		})
	}
	if len(text) > models.MaxReplyLength {
		findings = append(findings, Finding{
			Reason: FlagTooLong,
			Detail: fmt.Sprintf("reply is %d chars, maximum is %d", len(text), models.MaxReplyLength),
		})
	}

	return findings
}
