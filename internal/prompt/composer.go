// Package prompt builds the system instruction MovePilot sends to the model
// on every chat turn: fixed policy sections plus a situation section rendered
// from the user context. Same context, same prompt; there is no randomness
// here, which is what makes composition testable.
package prompt

import (
	"fmt"
	"strings"

	"github.com/MovePilotApp/MovePilot/internal/models"
)

// Thresholds for the dynamic situation section.
const (
	// CriticalDays is the cutoff for the hard urgency banner.
	CriticalDays = 7
	// SoonDays is the cutoff for the softer urgency banner.
	SoonDays = 14
	// OldBuildYear marks destinations that get the older-property note.
	OldBuildYear = 1970
)

// ---- Fixed policy sections ----

const identitySection = `<IDENTITY>
You are Pilot, the MovePilot moving assistant. You help people plan and
execute a residential move: what to do, when to do it, and which services to
line up. You are practical and specific. You never invent prices, dates, or
vendor names, and you never discuss topics unrelated to moving and settling in.
</IDENTITY>
`

const engagementSection = `<ENGAGEMENT>
Drive the conversation forward. Every reply should either answer the user's
question and point at the next concrete step, or ask exactly one clarifying
question. Reference what the user already told you instead of re-asking.
If the user seems stuck, propose the single highest-impact task for where
they are in the move.
</ENGAGEMENT>
`

const toneSection = `<TONE>
Warm, direct, unhurried. Short paragraphs. No corporate filler, no
exclamation pileups, no emojis. Never open with "How can I help you?" or
similar service-desk phrasing.
</TONE>
`

const formatSection = `<FORMAT>
Plain text only: no markdown headings, no bullet lists longer than four
items, no code blocks. Keep replies under roughly 120 words unless the user
asks for detail.
</FORMAT>
`

const vendorSection = `<VENDORS>
When a vendor category genuinely fits the user's situation (movers, internet,
cleaning, storage, junk removal, pet transport, auto transport, packing,
locksmith, plumber, electrician, handyman, piano moving), mention that
MovePilot can line it up and offer to start the booking. One category per
reply at most. Never push a vendor the situation does not call for.
</VENDORS>
`

const pitchSection = `<ACCOUNTABILITY>
Exactly once per user, at a natural moment, explain how MovePilot keeps their
move on track: the plan adapts to their date, tasks surface when they matter,
and you follow up so nothing slips. Keep it to two sentences. If the
situation section says the user already heard this, do not repeat it in any
form.
</ACCOUNTABILITY>
`

// Composer renders system prompts. It is stateless and safe for concurrent
// use.
type Composer struct{}

// NewComposer creates a Composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose builds the full instruction text for one turn.
func (c *Composer) Compose(uc *models.UserContext) string {
	var b strings.Builder
	b.WriteString(identitySection)
	b.WriteString(engagementSection)
	b.WriteString(toneSection)
	b.WriteString(formatSection)
	b.WriteString(vendorSection)
	b.WriteString(pitchSection)
	b.WriteString(c.situation(uc))
	return b.String()
}

// situation renders the dynamic section. Inclusion rules:
// urgency banners at 7/14 days, household note only with kids or pets,
// property note only for pre-1970 destinations, special items only when
// present, and the pitch-suppression line only once the flag is set.
func (c *Composer) situation(uc *models.UserContext) string {
	var b strings.Builder
	b.WriteString("<CURRENT SITUATION>\n")

	if uc.Name != "" {
		fmt.Fprintf(&b, "The user's name is %s.\n", uc.Name)
	}

	switch {
	case uc.DaysUntilMove < 0:
		b.WriteString("The move date is not set yet; help them pick one early.\n")
	case uc.DaysUntilMove == 0:
		b.WriteString("The move is TODAY.\n")
	case uc.DaysUntilMove == 1:
		b.WriteString("The move is TOMORROW.\n")
	default:
		fmt.Fprintf(&b, "The move is in %d days", uc.DaysUntilMove)
		if uc.MoveDate != "" {
			fmt.Fprintf(&b, " (%s)", uc.MoveDate)
		}
		b.WriteString(".\n")
	}

	if uc.DaysUntilMove >= 0 {
		if uc.DaysUntilMove <= CriticalDays {
			b.WriteString("URGENT: moving day is at most a week out. Focus on critical tasks only; defer anything optional.\n")
		} else if uc.DaysUntilMove <= SoonDays {
			b.WriteString("Moving day is close. Prioritize time-sensitive tasks and flag anything that books out fast.\n")
		}
	}

	if uc.MoveDistance != "" {
		fmt.Fprintf(&b, "Move distance: %s.\n", uc.MoveDistance)
	}
	if line := residenceLine("From", uc.Origin); line != "" {
		b.WriteString(line)
	}
	if line := residenceLine("To", uc.Destination); line != "" {
		b.WriteString(line)
	}

	if uc.HasKids || uc.HasPets {
		b.WriteString("Household: ")
		parts := make([]string, 0, 2)
		if uc.HasKids {
			parts = append(parts, "kids")
		}
		if uc.HasPets {
			if len(uc.PetTypes) > 0 {
				parts = append(parts, "pets ("+strings.Join(uc.PetTypes, ", ")+")")
			} else {
				parts = append(parts, "pets")
			}
		}
		b.WriteString(strings.Join(parts, " and "))
		b.WriteString(" are part of this move; factor them into timing and task suggestions.\n")
	}

	if uc.Destination.BuildYear > 0 && uc.Destination.BuildYear < OldBuildYear {
		fmt.Fprintf(&b, "The destination was built in %d. Older properties can mean lead paint, dated wiring, and quirky access; suggest the relevant checks without alarmism.\n", uc.Destination.BuildYear)
	}

	if len(uc.SpecialItems) > 0 {
		fmt.Fprintf(&b, "Special items needing extra care: %s.\n", strings.Join(uc.SpecialItems, ", "))
	}

	if uc.BudgetTier != "" {
		fmt.Fprintf(&b, "Budget tier: %s.\n", uc.BudgetTier)
	}

	if uc.CurrentTaskID != "" {
		fmt.Fprintf(&b, "The user is currently looking at task %q; keep the reply anchored to it.\n", uc.CurrentTaskID)
	}
	if len(uc.CompletedTasks) > 0 || len(uc.PendingTasks) > 0 {
		fmt.Fprintf(&b, "Progress: %d tasks done, %d still open.\n", len(uc.CompletedTasks), len(uc.PendingTasks))
	}

	if uc.HeardAccountabilityPitch {
		b.WriteString("The user has already heard the accountability pitch. Do not repeat it.\n")
	}

	b.WriteString("</CURRENT SITUATION>\n")
	return b.String()
}

// residenceLine renders one end of the move, or "" when nothing is known.
func residenceLine(label string, r models.Residence) string {
	var parts []string
	if r.City != "" {
		place := r.City
		if r.State != "" {
			place += ", " + r.State
		}
		parts = append(parts, place)
	} else if r.State != "" {
		parts = append(parts, r.State)
	}
	if r.DwellingType != "" {
		d := r.DwellingType
		if r.Bedrooms > 0 {
			d = fmt.Sprintf("%d-bedroom %s", r.Bedrooms, d)
		}
		parts = append(parts, d)
	}
	if r.Floor > 1 {
		access := fmt.Sprintf("floor %d", r.Floor)
		if !r.HasElevator {
			access += ", no elevator"
		}
		parts = append(parts, access)
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s.\n", label, strings.Join(parts, "; "))
}
