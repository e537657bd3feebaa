// Package submission turns a draft into the payloads the tour transport
// accepts. Numeric fields are coerced fail-soft and entity references are
// flattened to bare ids; unknown ids are sent as they are.
package submission

import (
	"fmt"
	"strings"

	"github.com/kingrea/tourdesk/internal/draft"
	"github.com/kingrea/tourdesk/internal/itinerary"
	"github.com/kingrea/tourdesk/internal/tour"
)

// Values used when a numeric field cannot be parsed.
const (
	DefaultDuration        = 1
	DefaultPrice           = 1.0
	DefaultMaxParticipants = 0
)

// Diagnostic is a non-fatal note about the generated payload.
type Diagnostic struct {
	Day     int
	Message string
}

func (d Diagnostic) String() string {
	if d.Day > 0 {
		return fmt.Sprintf("day %d: %s", d.Day, d.Message)
	}
	return d.Message
}

// DayPolicy selects how days are filtered before they are sent.
type DayPolicy int

const (
	// KeepWithPlaceholder drops only days with no references at all, notes
	// kept days without destinations, and synthesizes an empty first day when
	// nothing is left. Used for create requests.
	KeepWithPlaceholder DayPolicy = iota
	// DropWithoutDestinations drops every day with no destinations. Used for
	// update requests, where an empty result omits the itinerary.
	DropWithoutDestinations
)

func (p DayPolicy) String() string {
	if p == DropWithoutDestinations {
		return "drop-without-destinations"
	}
	return "keep-with-placeholder"
}

// Create builds the create payload for d.
func Create(d *draft.Draft) (tour.CreatePayload, []Diagnostic) {
	days, diags := Days(d, KeepWithPlaceholder)
	s := coerce(d)
	return tour.CreatePayload{
		Name:             s.name,
		Description:      s.description,
		Duration:         s.duration,
		Price:            s.price,
		MaxParticipants:  s.maxParticipants,
		Difficulty:       string(d.Difficulty()),
		MealOptions:      string(d.MealPlan()),
		TourGuide:        d.Guide().ID,
		DailyItineraries: days,
	}, diags
}

// Update builds the update payload for d. DailyItineraries is nil when no
// day has a destination, which leaves the stored itinerary untouched.
func Update(d *draft.Draft) (tour.UpdatePayload, []Diagnostic) {
	days, diags := Days(d, DropWithoutDestinations)
	s := coerce(d)
	return tour.UpdatePayload{
		Name:             s.name,
		Description:      s.description,
		Duration:         s.duration,
		Price:            s.price,
		MaxParticipants:  s.maxParticipants,
		Difficulty:       string(d.Difficulty()),
		MealOptions:      string(d.MealPlan()),
		TourGuide:        d.Guide().ID,
		DailyItineraries: days,
	}, diags
}

// Days flattens the draft's itinerary under policy. Day numbers are kept as
// they appear in the draft.
func Days(d *draft.Draft, policy DayPolicy) ([]tour.DayPayload, []Diagnostic) {
	var (
		out   []tour.DayPayload
		diags []Diagnostic
	)
	for _, day := range d.Days() {
		switch policy {
		case DropWithoutDestinations:
			if !day.HasDestinations() {
				diags = append(diags, Diagnostic{Day: day.Number, Message: "dropped: no destinations"})
				continue
			}
		default:
			if day.Empty() {
				diags = append(diags, Diagnostic{Day: day.Number, Message: "dropped: no destinations or accommodations"})
				continue
			}
			if !day.HasDestinations() {
				diags = append(diags, Diagnostic{Day: day.Number, Message: "has no destinations; the backend requires at least one"})
			}
		}
		out = append(out, flatten(day))
	}
	if len(out) == 0 && policy == KeepWithPlaceholder {
		out = []tour.DayPayload{{Day: 1, Destinations: []string{}, Accommodations: []string{}}}
		diags = append(diags, Diagnostic{Message: "no usable days; sending an empty placeholder day"})
	}
	if len(out) == 0 && len(d.Days()) > 0 && policy == DropWithoutDestinations {
		diags = append(diags, Diagnostic{Message: "no day has a destination; itinerary left unchanged"})
	}
	return out, diags
}

func flatten(day itinerary.Day) tour.DayPayload {
	return tour.DayPayload{
		Day:            day.Number,
		Destinations:   day.DestinationIDs(),
		Accommodations: day.AccommodationIDs(),
	}
}

type scalars struct {
	name            string
	description     string
	duration        int
	price           float64
	maxParticipants int
}

func coerce(d *draft.Draft) scalars {
	s := scalars{
		name:            strings.TrimSpace(d.Name()),
		description:     strings.TrimSpace(d.Description()),
		duration:        d.Duration(),
		price:           DefaultPrice,
		maxParticipants: DefaultMaxParticipants,
	}
	if s.duration < 1 {
		s.duration = DefaultDuration
	}
	if price, ok := d.Price(); ok {
		s.price = price
	}
	if n, ok := d.MaxParticipants(); ok {
		s.maxParticipants = n
	}
	return s
}
