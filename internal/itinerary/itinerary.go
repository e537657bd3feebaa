// Package itinerary implements the ordered day-by-day plan of a tour package.
//
// Day numbers are always contiguous from 1 and the plan never shrinks below a
// single day. Every mutation builds a fresh backing slice and fresh reference
// lists for the day it touches, so any Day or []Day handed out earlier is
// never modified afterwards.
package itinerary

import (
	"strings"

	"github.com/kingrea/tourdesk/internal/catalog"
)

// MaxAccommodationsPerDay caps the accommodation list of a single day.
const MaxAccommodationsPerDay = 2

// Day is one numbered entry of the plan.
type Day struct {
	Number         int
	Destinations   []catalog.Ref
	Accommodations []catalog.Ref
}

// HasDestinations reports whether at least one destination is planned.
func (d Day) HasDestinations() bool { return len(d.Destinations) > 0 }

// HasAccommodations reports whether at least one accommodation is planned.
func (d Day) HasAccommodations() bool { return len(d.Accommodations) > 0 }

// Complete is the per-day readiness rule shared by the wizard and the
// submission normalizer.
func (d Day) Complete() bool { return d.HasDestinations() && d.HasAccommodations() }

// Empty reports whether the day references nothing at all.
func (d Day) Empty() bool { return !d.HasDestinations() && !d.HasAccommodations() }

// AccommodationsFull reports whether another accommodation would be rejected.
func (d Day) AccommodationsFull() bool { return len(d.Accommodations) >= MaxAccommodationsPerDay }

// DestinationIDs returns the bare destination identifiers.
func (d Day) DestinationIDs() []string { return catalog.IDs(d.Destinations) }

// AccommodationIDs returns the bare accommodation identifiers.
func (d Day) AccommodationIDs() []string { return catalog.IDs(d.Accommodations) }

func (d Day) clone() Day {
	return Day{
		Number:         d.Number,
		Destinations:   cloneRefs(d.Destinations),
		Accommodations: cloneRefs(d.Accommodations),
	}
}

// Itinerary is the ordered list of days. The zero value holds no days; use
// New or FromDays to obtain one that satisfies the single-day minimum.
type Itinerary struct {
	days []Day
}

// New returns a plan with one empty day.
func New() Itinerary {
	return Itinerary{days: []Day{{Number: 1}}}
}

// FromDays copies days into a plan that satisfies the day invariants: days
// are renumbered 1..N, blank and repeated references are dropped and
// accommodations beyond the per-day cap are discarded. An empty input yields
// New().
func FromDays(days []Day) Itinerary {
	if len(days) == 0 {
		return New()
	}
	out := make([]Day, len(days))
	for i, day := range days {
		accommodations := uniqueRefs(day.Accommodations)
		if len(accommodations) > MaxAccommodationsPerDay {
			accommodations = accommodations[:MaxAccommodationsPerDay]
		}
		out[i] = Day{
			Destinations:   uniqueRefs(day.Destinations),
			Accommodations: accommodations,
		}
	}
	renumber(out)
	return Itinerary{days: out}
}

// Len is the number of days; a package's duration is always this value.
func (it Itinerary) Len() int { return len(it.days) }

// Days returns a deep copy of the plan.
func (it Itinerary) Days() []Day {
	out := make([]Day, len(it.days))
	for i, day := range it.days {
		out[i] = day.clone()
	}
	return out
}

// Day returns a copy of the day at index.
func (it Itinerary) Day(index int) (Day, bool) {
	if index < 0 || index >= len(it.days) {
		return Day{}, false
	}
	return it.days[index].clone(), true
}

// Complete reports whether every day is complete.
func (it Itinerary) Complete() bool {
	return len(it.days) > 0 && len(it.Incomplete()) == 0
}

// Incomplete lists the indexes of days missing a destination or an
// accommodation.
func (it Itinerary) Incomplete() []int {
	var out []int
	for i, day := range it.days {
		if !day.Complete() {
			out = append(out, i)
		}
	}
	return out
}

// AddDay appends an empty day and returns its index.
func (it *Itinerary) AddDay() int {
	next := make([]Day, len(it.days), len(it.days)+1)
	copy(next, it.days)
	next = append(next, Day{Number: len(it.days) + 1})
	it.days = next
	return len(next) - 1
}

// RemoveDay drops the day at index and renumbers the rest. It refuses to
// remove the last remaining day.
func (it *Itinerary) RemoveDay(index int) bool {
	if len(it.days) <= 1 || index < 0 || index >= len(it.days) {
		return false
	}
	next := make([]Day, 0, len(it.days)-1)
	next = append(next, it.days[:index]...)
	next = append(next, it.days[index+1:]...)
	renumber(next)
	it.days = next
	return true
}

// AddDestination appends id to the day unless it is already there. The
// identifier is not checked against any catalog.
func (it *Itinerary) AddDestination(dayIndex int, id string) bool {
	return it.update(dayIndex, func(day *Day) bool {
		next, ok := appendRef(day.Destinations, id)
		day.Destinations = next
		return ok
	})
}

// RemoveDestination removes every occurrence of id from the day.
func (it *Itinerary) RemoveDestination(dayIndex int, id string) bool {
	return it.update(dayIndex, func(day *Day) bool {
		next, ok := withoutRef(day.Destinations, id)
		day.Destinations = next
		return ok
	})
}

// AddAccommodation appends id unless the day is full or already has it.
func (it *Itinerary) AddAccommodation(dayIndex int, id string) bool {
	return it.update(dayIndex, func(day *Day) bool {
		if day.AccommodationsFull() {
			return false
		}
		next, ok := appendRef(day.Accommodations, id)
		day.Accommodations = next
		return ok
	})
}

// RemoveAccommodation removes every occurrence of id from the day.
func (it *Itinerary) RemoveAccommodation(dayIndex int, id string) bool {
	return it.update(dayIndex, func(day *Day) bool {
		next, ok := withoutRef(day.Accommodations, id)
		day.Accommodations = next
		return ok
	})
}

// Bind caches catalog labels on every reference whose identifier is known.
func (it *Itinerary) Bind(c *catalog.Catalog) {
	if len(it.days) == 0 {
		return
	}
	next := make([]Day, len(it.days))
	for i, day := range it.days {
		day = day.clone()
		for j := range day.Destinations {
			day.Destinations[j] = day.Destinations[j].Bind(c, catalog.KindDestination)
		}
		for j := range day.Accommodations {
			day.Accommodations[j] = day.Accommodations[j].Bind(c, catalog.KindAccommodation)
		}
		next[i] = day
	}
	it.days = next
}

// update applies fn to a private copy of one day and swaps it in only when
// fn reports a change.
func (it *Itinerary) update(dayIndex int, fn func(*Day) bool) bool {
	if dayIndex < 0 || dayIndex >= len(it.days) {
		return false
	}
	day := it.days[dayIndex].clone()
	if !fn(&day) {
		return false
	}
	next := make([]Day, len(it.days))
	copy(next, it.days)
	next[dayIndex] = day
	it.days = next
	return true
}

func appendRef(refs []catalog.Ref, id string) ([]catalog.Ref, bool) {
	ref := catalog.NewRef(id)
	if ref.IsZero() || indexOf(refs, ref.ID) >= 0 {
		return refs, false
	}
	return append(refs, ref), true
}

func withoutRef(refs []catalog.Ref, id string) ([]catalog.Ref, bool) {
	id = strings.TrimSpace(id)
	out := refs[:0:0]
	for _, ref := range refs {
		if ref.ID == id {
			continue
		}
		out = append(out, ref)
	}
	return out, len(out) != len(refs)
}

func indexOf(refs []catalog.Ref, id string) int {
	for i, ref := range refs {
		if ref.ID == id {
			return i
		}
	}
	return -1
}

func uniqueRefs(refs []catalog.Ref) []catalog.Ref {
	var out []catalog.Ref
	for _, ref := range refs {
		ref.ID = strings.TrimSpace(ref.ID)
		if ref.IsZero() || indexOf(out, ref.ID) >= 0 {
			continue
		}
		out = append(out, ref)
	}
	return out
}

func renumber(days []Day) {
	for i := range days {
		days[i].Number = i + 1
	}
}

func cloneRefs(refs []catalog.Ref) []catalog.Ref {
	if len(refs) == 0 {
		return nil
	}
	out := make([]catalog.Ref, len(refs))
	copy(out, refs)
	return out
}
