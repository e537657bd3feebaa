// Package draft implements the in-memory tour package being composed or
// edited: package-level fields, the day-by-day itinerary, and per-field
// validation messages.
//
// The package duration is not stored; it is always the itinerary length.
// Every setter clears the recorded error for the field it touches.
package draft

import (
	"math"
	"strconv"
	"strings"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/itinerary"
	"github.com/kingrea/tourdesk/internal/tour"
)

// Field identifies a validated part of the draft. Values match the wire
// field names.
type Field string

const (
	FieldName            Field = "name"
	FieldDescription     Field = "description"
	FieldDifficulty      Field = "difficulty"
	FieldMealPlan        Field = "mealOptions"
	FieldGuide           Field = "tourGuide"
	FieldItinerary       Field = "dailyItineraries"
	FieldPrice           Field = "price"
	FieldMaxParticipants Field = "maxParticipants"
)

// Fields lists every field in form order.
func Fields() []Field {
	return []Field{
		FieldName, FieldDescription, FieldDifficulty, FieldMealPlan,
		FieldGuide, FieldItinerary, FieldPrice, FieldMaxParticipants,
	}
}

// Draft is a single editing session's tour package. It is not safe for
// concurrent use.
type Draft struct {
	tourID          string
	name            string
	description     string
	difficulty      tour.Difficulty
	mealPlan        tour.MealPlan
	guide           catalog.Ref
	price           string
	maxParticipants string
	itinerary       itinerary.Itinerary
	errors          map[Field]string
}

// New returns an empty draft with a single empty day.
func New() *Draft {
	return &Draft{
		itinerary: itinerary.New(),
		errors:    map[Field]string{},
	}
}

// Reset discards everything and returns the draft to the New state.
func (d *Draft) Reset() {
	*d = *New()
}

// Clone returns an independent copy.
func (d *Draft) Clone() *Draft {
	out := *d
	out.errors = d.Errors()
	return &out
}

// TourID is the persisted identifier of the tour being edited, or empty for
// a new package.
func (d *Draft) TourID() string { return d.tourID }

// Persisted reports whether the draft was hydrated from a stored tour.
func (d *Draft) Persisted() bool { return d.tourID != "" }

func (d *Draft) Name() string                { return d.name }
func (d *Draft) Description() string         { return d.description }
func (d *Draft) Difficulty() tour.Difficulty { return d.difficulty }
func (d *Draft) MealPlan() tour.MealPlan     { return d.mealPlan }
func (d *Draft) Guide() catalog.Ref          { return d.guide }

// PriceText is the price exactly as entered.
func (d *Draft) PriceText() string { return d.price }

// MaxParticipantsText is the capacity exactly as entered.
func (d *Draft) MaxParticipantsText() string { return d.maxParticipants }

// Price parses the entered price. Non-numeric or non-finite input reports
// false.
func (d *Draft) Price() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(d.price), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// MaxParticipants parses the entered capacity as a whole number.
func (d *Draft) MaxParticipants() (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(d.maxParticipants))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Duration is the number of days in the itinerary.
func (d *Draft) Duration() int { return d.itinerary.Len() }

// Itinerary returns the current plan. The returned value is a snapshot;
// later draft mutations do not change it.
func (d *Draft) Itinerary() itinerary.Itinerary { return d.itinerary }

// Days returns a deep copy of the itinerary days.
func (d *Draft) Days() []itinerary.Day { return d.itinerary.Days() }

// Day returns a copy of one day.
func (d *Draft) Day(index int) (itinerary.Day, bool) { return d.itinerary.Day(index) }

func (d *Draft) SetName(value string) {
	d.name = value
	d.clearError(FieldName)
}

func (d *Draft) SetDescription(value string) {
	d.description = value
	d.clearError(FieldDescription)
}

func (d *Draft) SetDifficulty(value tour.Difficulty) {
	d.difficulty = value
	d.clearError(FieldDifficulty)
}

func (d *Draft) SetMealPlan(value tour.MealPlan) {
	d.mealPlan = value
	d.clearError(FieldMealPlan)
}

// SetGuide points the package at a guide identifier. A blank id clears it.
func (d *Draft) SetGuide(id string) {
	d.guide = catalog.NewRef(id)
	d.clearError(FieldGuide)
}

// ClearGuide removes the guide reference.
func (d *Draft) ClearGuide() {
	d.guide = catalog.Ref{}
	d.clearError(FieldGuide)
}

func (d *Draft) SetPrice(text string) {
	d.price = text
	d.clearError(FieldPrice)
}

func (d *Draft) SetMaxParticipants(text string) {
	d.maxParticipants = text
	d.clearError(FieldMaxParticipants)
}

// AddDay appends an empty day and returns its index.
func (d *Draft) AddDay() int {
	d.clearError(FieldItinerary)
	return d.itinerary.AddDay()
}

// RemoveDay removes a day unless it is the only one.
func (d *Draft) RemoveDay(index int) bool {
	d.clearError(FieldItinerary)
	return d.itinerary.RemoveDay(index)
}

func (d *Draft) AddDestination(dayIndex int, id string) bool {
	d.clearError(FieldItinerary)
	return d.itinerary.AddDestination(dayIndex, id)
}

func (d *Draft) RemoveDestination(dayIndex int, id string) bool {
	d.clearError(FieldItinerary)
	return d.itinerary.RemoveDestination(dayIndex, id)
}

func (d *Draft) AddAccommodation(dayIndex int, id string) bool {
	d.clearError(FieldItinerary)
	return d.itinerary.AddAccommodation(dayIndex, id)
}

func (d *Draft) RemoveAccommodation(dayIndex int, id string) bool {
	d.clearError(FieldItinerary)
	return d.itinerary.RemoveAccommodation(dayIndex, id)
}

// Bind caches catalog labels on the guide and every itinerary reference
// whose identifier is present in c.
func (d *Draft) Bind(c *catalog.Catalog) {
	d.guide = d.guide.Bind(c, catalog.KindGuide)
	d.itinerary.Bind(c)
}

// FieldError returns the recorded message for f, if any.
func (d *Draft) FieldError(f Field) string {
	return d.errors[f]
}

// Errors returns a copy of every recorded message.
func (d *Draft) Errors() map[Field]string {
	out := make(map[Field]string, len(d.errors))
	for f, msg := range d.errors {
		out[f] = msg
	}
	return out
}

// HasErrors reports whether any field has a recorded message.
func (d *Draft) HasErrors() bool {
	return len(d.errors) > 0
}

// RecordErrors stores messages for the given fields, replacing earlier ones
// for the same fields. Blank messages are ignored.
func (d *Draft) RecordErrors(issues map[Field]string) {
	if d.errors == nil {
		d.errors = map[Field]string{}
	}
	for f, msg := range issues {
		if msg = strings.TrimSpace(msg); msg != "" {
			d.errors[f] = msg
		}
	}
}

func (d *Draft) clearError(f Field) {
	delete(d.errors, f)
}
