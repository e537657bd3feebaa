package tour

import (
	"fmt"
	"strings"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/itinerary"
)

// ValidateCreate checks a create payload against the backend contract and
// returns every problem found.
func ValidateCreate(p CreatePayload) []error {
	errs := validateScalars(p.Name, p.Duration, p.Price, p.MaxParticipants, p.Difficulty, p.MealOptions)
	if strings.TrimSpace(p.TourGuide) == "" {
		errs = append(errs, fmt.Errorf("tourGuide is required"))
	}
	if len(p.DailyItineraries) == 0 {
		errs = append(errs, fmt.Errorf("dailyItineraries must contain at least one day"))
	}
	return append(errs, validateDays(p.DailyItineraries)...)
}

// ValidateUpdate checks an update payload. The guide and itinerary may be
// omitted, but whatever is sent must be valid.
func ValidateUpdate(p UpdatePayload) []error {
	errs := validateScalars(p.Name, p.Duration, p.Price, p.MaxParticipants, p.Difficulty, p.MealOptions)
	return append(errs, validateDays(p.DailyItineraries)...)
}

// ValidateReferences reports identifiers that are not present in c.
func ValidateReferences(c *catalog.Catalog, guide string, days []DayPayload) []error {
	var errs []error
	if guide = strings.TrimSpace(guide); guide != "" && !c.Contains(catalog.KindGuide, guide) {
		errs = append(errs, fmt.Errorf("tourGuide references unknown guide %q", guide))
	}
	for index, day := range days {
		for _, id := range c.Unknown(catalog.KindDestination, day.Destinations) {
			errs = append(errs, fmt.Errorf("dailyItineraries[%d].destinations references unknown destination %q", index, id))
		}
		for _, id := range c.Unknown(catalog.KindAccommodation, day.Accommodations) {
			errs = append(errs, fmt.Errorf("dailyItineraries[%d].accommodations references unknown accommodation %q", index, id))
		}
	}
	return errs
}

func validateScalars(name string, duration int, price float64, maxParticipants int, difficulty, meal string) []error {
	var errs []error
	if strings.TrimSpace(name) == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}
	if duration < 1 {
		errs = append(errs, fmt.Errorf("duration must be at least 1"))
	}
	if price < 0 {
		errs = append(errs, fmt.Errorf("price must not be negative"))
	}
	if maxParticipants < 1 {
		errs = append(errs, fmt.Errorf("maxParticipants must be at least 1"))
	}
	if !Difficulty(difficulty).Valid() {
		errs = append(errs, fmt.Errorf("difficulty %q is not recognised", difficulty))
	}
	if !MealPlan(meal).Valid() {
		errs = append(errs, fmt.Errorf("mealOptions %q is not recognised", meal))
	}
	return errs
}

func validateDays(days []DayPayload) []error {
	var errs []error
	seen := map[int]struct{}{}
	for index, day := range days {
		if day.Day < 1 {
			errs = append(errs, fmt.Errorf("dailyItineraries[%d].day must be at least 1", index))
		} else if _, dup := seen[day.Day]; dup {
			errs = append(errs, fmt.Errorf("dailyItineraries[%d].day duplicates day %d", index, day.Day))
		}
		seen[day.Day] = struct{}{}
		if len(day.Destinations) == 0 {
			errs = append(errs, fmt.Errorf("dailyItineraries[%d].destinations requires at least one destination", index))
		}
		if len(day.Accommodations) > itinerary.MaxAccommodationsPerDay {
			errs = append(errs, fmt.Errorf("dailyItineraries[%d].accommodations allows at most %d entries", index, itinerary.MaxAccommodationsPerDay))
		}
	}
	return errs
}
