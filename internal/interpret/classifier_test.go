package interpret

import (
	"reflect"
	"testing"
)

func TestVendorMentions(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "specific category outranks the generic one",
			text: "A piano mover can handle that upright for you.",
			want: []string{"piano_moving", "movers"},
		},
		{
			name: "single category",
			text: "Your wifi install window is Tuesday morning.",
			want: []string{"internet"},
		},
		{
			name: "multiple unrelated categories",
			text: "Junk removal first, then a cleaning service for the walkthrough.",
			want: []string{"junk_removal", "cleaning"},
		},
		{
			name: "case insensitive",
			text: "SHIP YOUR CAR ahead of the flight.",
			want: []string{"auto_transport"},
		},
		{
			name: "no vendor",
			text: "Friday works better for the walkthrough.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.VendorMentions(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("VendorMentions(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestBookingOffers(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "offer phrase plus vendor",
			text: "I can book movers for Thursday if that works.",
			want: []string{"movers"},
		},
		{
			name: "offer phrase without vendor",
			text: "I can book that slot for Thursday if that works.",
			want: nil,
		},
		{
			name: "vendor without offer phrase",
			text: "Most movers need two weeks of lead time.",
			want: nil,
		},
		{
			name: "offer covers every mentioned vendor",
			text: "Want me to line up movers and a packing crew together?",
			want: []string{"movers", "packing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.BookingOffers(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BookingOffers(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCompletionClaims(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{
			name:    "single claim",
			message: "Good news, the movers are booked!",
			want:    []string{"book_movers"},
		},
		{
			name:    "two claims in one message",
			message: "Booked the movers and gave notice to my landlord yesterday.",
			want:    []string{"book_movers", "give_landlord_notice"},
		},
		{
			name:    "talking about a task is not claiming it",
			message: "Should I book movers now or wait for more quotes?",
			want:    nil,
		},
		{
			name:    "utilities",
			message: "Utilities are transferred as of this morning.",
			want:    []string{"transfer_utilities"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CompletionClaims(tt.message)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CompletionClaims(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestDetectsPitch(t *testing.T) {
	twoPatterns := "I'll keep you on track and follow up so you don't have to remember any of this."
	onePattern := "I'll follow up with you about the quotes tomorrow."

	tests := []struct {
		name      string
		threshold int
		text      string
		want      bool
	}{
		{name: "two patterns meet the default threshold", threshold: 0, text: twoPatterns, want: true},
		{name: "one pattern misses the default threshold", threshold: 0, text: onePattern, want: false},
		{name: "threshold of one accepts a single pattern", threshold: 1, text: onePattern, want: true},
		{name: "raised threshold rejects two patterns", threshold: 3, text: twoPatterns, want: false},
		{name: "no patterns", threshold: 0, text: "The truck arrives at nine on Saturday.", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &KeywordClassifier{PitchThreshold: tt.threshold}
			if got := c.DetectsPitch(tt.text); got != tt.want {
				t.Errorf("DetectsPitch(%q) with threshold %d = %v, want %v", tt.text, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestSuggestsTaskStart(t *testing.T) {
	c := NewKeywordClassifier()

	if !c.SuggestsTaskStart("Ready to tackle the address change? It takes five minutes.") {
		t.Error("expected a start suggestion to be detected")
	}
	if c.SuggestsTaskStart("The address change takes five minutes online.") {
		t.Error("did not expect a start suggestion")
	}
}
