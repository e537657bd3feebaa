// Package wizard sequences the editing of a draft into four gated steps and
// exposes the completeness rules that gate them.
//
// Completeness is a pure function of the draft: nothing is cached and the
// controller's position never influences the answer.
package wizard

import (
	"fmt"
	"strings"

	"github.com/kingrea/tourdesk/internal/draft"
)

// Step is one stage of package editing.
type Step int

const (
	StepBasicInfo Step = iota
	StepGuide
	StepItinerary
	StepPricing
)

// Steps lists every step in order.
func Steps() []Step {
	return []Step{StepBasicInfo, StepGuide, StepItinerary, StepPricing}
}

// First and Last bound the sequence.
const (
	First = StepBasicInfo
	Last  = StepPricing
)

// Valid reports whether s is a known step.
func (s Step) Valid() bool { return s >= First && s <= Last }

// Title is the heading shown for the step.
func (s Step) Title() string {
	switch s {
	case StepBasicInfo:
		return "Basic Info"
	case StepGuide:
		return "Guide Selection"
	case StepItinerary:
		return "Itinerary Planning"
	case StepPricing:
		return "Pricing & Review"
	default:
		return fmt.Sprintf("Step %d", int(s)+1)
	}
}

func (s Step) String() string { return s.Title() }

// Complete reports whether the draft satisfies the step's predicate.
func Complete(step Step, d *draft.Draft) bool {
	return len(Issues(step, d)) == 0
}

// Issues explains, per field, why a step is incomplete. An empty map means
// the step is complete.
func Issues(step Step, d *draft.Draft) map[draft.Field]string {
	issues := map[draft.Field]string{}
	if d == nil {
		issues[draft.FieldName] = "no package is being edited"
		return issues
	}
	switch step {
	case StepBasicInfo:
		if strings.TrimSpace(d.Name()) == "" {
			issues[draft.FieldName] = "Package name is required"
		}
		if strings.TrimSpace(d.Description()) == "" {
			issues[draft.FieldDescription] = "Description is required"
		}
		if d.Difficulty() == "" {
			issues[draft.FieldDifficulty] = "Choose a difficulty"
		}
		if d.MealPlan() == "" {
			issues[draft.FieldMealPlan] = "Choose a meal plan"
		}
	case StepGuide:
		if d.Guide().IsZero() {
			issues[draft.FieldGuide] = "Select a tour guide"
		}
	case StepItinerary:
		if msg := itineraryIssue(d); msg != "" {
			issues[draft.FieldItinerary] = msg
		}
	case StepPricing:
		if price, ok := d.Price(); !ok || price <= 0 {
			issues[draft.FieldPrice] = "Price must be greater than zero"
		}
		if n, ok := d.MaxParticipants(); !ok || n < 1 {
			issues[draft.FieldMaxParticipants] = "Allow at least one participant"
		}
	default:
		issues[draft.FieldName] = fmt.Sprintf("unknown step %d", int(step))
	}
	return issues
}

func itineraryIssue(d *draft.Draft) string {
	var missing []string
	for _, day := range d.Days() {
		switch {
		case !day.HasDestinations() && !day.HasAccommodations():
			missing = append(missing, fmt.Sprintf("day %d needs a destination and an accommodation", day.Number))
		case !day.HasDestinations():
			missing = append(missing, fmt.Sprintf("day %d needs a destination", day.Number))
		case !day.HasAccommodations():
			missing = append(missing, fmt.Sprintf("day %d needs an accommodation", day.Number))
		}
	}
	if len(missing) == 0 {
		return ""
	}
	msg := strings.Join(missing, "; ")
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// FirstIncomplete returns the earliest step whose predicate fails.
func FirstIncomplete(d *draft.Draft) (Step, bool) {
	for _, step := range Steps() {
		if !Complete(step, d) {
			return step, true
		}
	}
	return 0, false
}
