package interpret

import (
	"strings"
	"testing"
)

func findingReasons(findings []Finding) []string {
	reasons := make([]string, len(findings))
	for i, f := range findings {
		reasons[i] = f.Reason
	}
	return reasons
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantReasons []string
	}{
		{
			name:        "actionable reply with a question passes",
			text:        "Your movers are confirmed for Friday. Want me to line up packing help too?",
			wantReasons: nil,
		},
		{
			name:        "actionable reply without a question passes",
			text:        "Next up: book the elevator at the new building before Friday.",
			wantReasons: nil,
		},
		{
			name:        "service desk opener is flagged",
			text:        "Hi there! How can I help you with your move today?",
			wantReasons: []string{FlagBannedPhrase},
		},
		{
			name:        "ai self reference is flagged",
			text:        "As an AI, I cannot book the movers, but here is a checklist to review?",
			wantReasons: []string{FlagBannedPhrase},
		},
		{
			name:        "no question and no action verb",
			text:        "That sounds like a wonderful plan for everyone involved.",
			wantReasons: []string{FlagNoQuestionOrAction},
		},
		{
			name:        "too short",
			text:        "Sounds good?",
			wantReasons: []string{FlagTooShort},
		},
		{
			name:        "too long",
			text:        strings.Repeat("Keep packing boxes? ", 150),
			wantReasons: []string{FlagTooLong},
		},
		{
			name:        "multiple findings accumulate",
			text:        "Okay then.",
			wantReasons: []string{FlagNoQuestionOrAction, FlagTooShort},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findingReasons(Validate(tt.text))
			if len(got) != len(tt.wantReasons) {
				t.Fatalf("Validate(%q) reasons = %v, want %v", tt.text, got, tt.wantReasons)
			}
			for i, reason := range tt.wantReasons {
				if got[i] != reason {
					t.Errorf("finding %d reason = %q, want %q", i, got[i], reason)
				}
			}
		})
	}
}

func TestValidateDetailNamesThePhrase(t *testing.T) {
	findings := Validate("How can I help you with anything at all right now?")
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if !strings.Contains(findings[0].Detail, "how can i help you") {
		t.Errorf("detail %q does not name the matched phrase", findings[0].Detail)
	}
}
