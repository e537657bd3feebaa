package draft

import (
	"math"
	"sort"
	"strconv"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/itinerary"
	"github.com/kingrea/tourdesk/internal/tour"
)

// Hydrate builds a draft from a stored tour. Missing or malformed parts are
// repaired silently: no itinerary becomes one empty day, unknown enum values
// are left unset, a missing guide becomes an empty reference, and blank,
// repeated or surplus references are dropped. Labels carried by resolved
// reference objects are kept as cached labels.
func Hydrate(p tour.Persisted) *Draft {
	d := New()
	d.tourID = p.ID
	d.name = p.Name
	d.description = p.Description
	if diff, ok := tour.ParseDifficulty(p.Difficulty); ok {
		d.difficulty = diff
	}
	if meal, ok := tour.ParseMealPlan(p.MealOptions); ok {
		d.mealPlan = meal
	}
	if p.TourGuide != nil {
		d.guide = refFrom(*p.TourGuide)
	}
	if p.Price.Valid {
		d.price = strconv.FormatFloat(p.Price.Value, 'f', -1, 64)
	}
	if n, ok := p.MaxParticipants.Int(); ok {
		d.maxParticipants = strconv.Itoa(n)
	}
	d.itinerary = itinerary.FromDays(hydrateDays(p.DailyItineraries))
	return d
}

// hydrateDays orders stored days by their day number. Entries without a
// usable number keep their relative order after the numbered ones.
func hydrateDays(plans []tour.DayPlan) []itinerary.Day {
	type ordered struct {
		key int
		day itinerary.Day
	}
	rows := make([]ordered, 0, len(plans))
	for _, plan := range plans {
		key := math.MaxInt
		if n, ok := plan.Day.Int(); ok && n >= 1 {
			key = n
		}
		rows = append(rows, ordered{key: key, day: itinerary.Day{
			Destinations:   refsFrom(plan.Destinations),
			Accommodations: refsFrom(plan.Accommodations),
		}})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].key < rows[j].key })
	days := make([]itinerary.Day, len(rows))
	for i, row := range rows {
		days[i] = row.day
	}
	return days
}

func refFrom(r tour.Ref) catalog.Ref {
	ref := catalog.NewRef(r.ID)
	if !ref.IsZero() {
		ref.Label = r.Name
	}
	return ref
}

func refsFrom(refs []tour.Ref) []catalog.Ref {
	out := make([]catalog.Ref, 0, len(refs))
	for _, r := range refs {
		out = append(out, refFrom(r))
	}
	return out
}
