// Package interpret turns raw model output into MovePilot's structured chat
// result.
//
// This file holds the Classifier capability interface and its keyword
// implementation. All phrase heuristics live behind the interface so they can
// be tuned or swapped without touching the interpreting pipeline.
package interpret

import "strings"

// DefaultPitchThreshold is how many pitch-indicator patterns must match
// before a reply counts as delivering the accountability pitch.
const DefaultPitchThreshold = 2

// Classifier is the text-classification capability the interpreter depends
// on. Methods take cleaned text and return what they recognized; they never
// consult user state.
type Classifier interface {
	// VendorMentions returns every vendor category the text refers to, most
	// specific first.
	VendorMentions(text string) []string
	// BookingOffers returns the vendor categories the text offers to book.
	BookingOffers(text string) []string
	// CompletionClaims returns task ids a user message claims to have
	// finished.
	CompletionClaims(userMessage string) []string
	// DetectsPitch reports whether the text delivers the accountability
	// pitch.
	DetectsPitch(text string) bool
	// SuggestsTaskStart reports whether the text proposes starting a task.
	SuggestsTaskStart(text string) bool
}

// vendorPattern maps one vendor category to its trigger keywords.
type vendorPattern struct {
	category string
	keywords []string
}

// vendorTable is ordered most-specific first so the primary pick for a reply
// like "piano movers" lands on piano_moving, not movers.
var vendorTable = []vendorPattern{
	{"piano_moving", []string{"piano mover", "piano moving", "move the piano", "move your piano", "move a piano"}},
	{"pet_transport", []string{"pet transport", "pet shipping", "pet relocation", "fly your pet", "fly the pet"}},
	{"auto_transport", []string{"auto transport", "car shipping", "car carrier", "ship your car", "ship my car", "ship the car", "vehicle transport"}},
	{"junk_removal", []string{"junk removal", "junk haul", "haul away", "junk pickup"}},
	{"movers", []string{"mover", "moving company", "moving crew", "moving truck"}},
	{"packing", []string{"packing service", "packing crew", "packing help", "packers"}},
	{"internet", []string{"internet", "wifi", "broadband", "isp"}},
	{"storage", []string{"storage unit", "self-storage", "storage"}},
	{"cleaning", []string{"cleaning service", "move-out clean", "deep clean", "cleaner"}},
	{"locksmith", []string{"locksmith", "rekey", "change the locks"}},
	{"plumber", []string{"plumber", "plumbing"}},
	{"electrician", []string{"electrician", "electrical work"}},
	{"handyman", []string{"handyman"}},
}

// offerPhrases signal the assistant offering to set a vendor up, as opposed
// to merely mentioning the category.
var offerPhrases = []string{
	"i can book",
	"want me to book",
	"should i book",
	"i can line up",
	"want me to line up",
	"i can arrange",
	"should i arrange",
	"i can get you booked",
	"get you set up with",
	"i can set you up with",
}

// pitchPatterns are the accountability-pitch indicators. A reply counts as
// the pitch only when at least PitchThreshold of them appear.
var pitchPatterns = []string{
	"keep you on track",
	"keep your move on track",
	"adapts to your date",
	"when they matter",
	"follow up",
	"nothing slips",
}

// completionPattern maps a catalog task id to user phrasings that claim it
// is done.
type completionPattern struct {
	taskID  string
	phrases []string
}

var completionTable = []completionPattern{
	{"book_movers", []string{"movers are booked", "booked the movers", "booked movers", "hired the movers", "hired movers"}},
	{"give_landlord_notice", []string{"gave notice", "gave my notice", "notice is in", "handed in my notice"}},
	{"set_up_internet", []string{"internet is set up", "set up the internet", "internet is scheduled", "scheduled the internet", "internet is sorted"}},
	{"change_of_address", []string{"changed my address", "change of address is done", "mail is forwarded", "set up mail forwarding", "filed the change of address"}},
	{"transfer_utilities", []string{"utilities are transferred", "transferred the utilities", "utilities are set", "closed the utilities", "utilities are handled"}},
	{"reserve_rental_truck", []string{"truck is reserved", "reserved the truck", "booked the truck"}},
	{"reserve_elevator", []string{"elevator is reserved", "reserved the elevator", "booked the elevator"}},
}

// startPhrases signal the user or assistant proposing to begin a task.
var startPhrases = []string{
	"want to start",
	"want to tackle",
	"let's start",
	"let's tackle",
	"ready to start",
	"ready to tackle",
	"start on this",
	"tackle this one",
}

// KeywordClassifier is the fixed-table Classifier implementation.
type KeywordClassifier struct {
	// PitchThreshold overrides how many pitch patterns must match. Zero
	// means DefaultPitchThreshold.
	PitchThreshold int
}

// NewKeywordClassifier creates a classifier with the default thresholds.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{PitchThreshold: DefaultPitchThreshold}
}

// VendorMentions implements Classifier.
func (k *KeywordClassifier) VendorMentions(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, v := range vendorTable {
		if containsAny(lower, v.keywords) {
			matched = append(matched, v.category)
		}
	}
	return matched
}

// BookingOffers implements Classifier: an offer phrase plus a vendor mention
// in the same reply.
func (k *KeywordClassifier) BookingOffers(text string) []string {
	lower := strings.ToLower(text)
	if !containsAny(lower, offerPhrases) {
		return nil
	}
	return k.VendorMentions(text)
}

// CompletionClaims implements Classifier.
func (k *KeywordClassifier) CompletionClaims(userMessage string) []string {
	lower := strings.ToLower(userMessage)
	var claimed []string
	for _, c := range completionTable {
		if containsAny(lower, c.phrases) {
			claimed = append(claimed, c.taskID)
		}
	}
	return claimed
}

// DetectsPitch implements Classifier.
func (k *KeywordClassifier) DetectsPitch(text string) bool {
	threshold := k.PitchThreshold
	if threshold <= 0 {
		threshold = DefaultPitchThreshold
	}
	lower := strings.ToLower(text)
	matches := 0
	for _, p := range pitchPatterns {
		if strings.Contains(lower, p) {
			matches++
			if matches >= threshold {
				return true
			}
		}
	}
	return false
}

// SuggestsTaskStart implements Classifier.
func (k *KeywordClassifier) SuggestsTaskStart(text string) bool {
	return containsAny(strings.ToLower(text), startPhrases)
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
