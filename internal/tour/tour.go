// Package tour defines the wire shapes exchanged with the tour backend: the
// persisted tour read back on hydration, the create and update payloads
// produced on submission, and the response envelope.
//
// Decoding of persisted tours is deliberately tolerant. References may be
// bare identifier strings or resolved objects carrying an "_id", numeric
// fields may arrive as numbers or numeric strings, and anything may be null.
// Shape differences are settled here so nothing downstream branches on them.
package tour

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Difficulty grades a tour.
type Difficulty string

const (
	DifficultyEasy        Difficulty = "Easy"
	DifficultyModerate    Difficulty = "Moderate"
	DifficultyChallenging Difficulty = "Challenging"
	DifficultyDifficult   Difficulty = "Difficult"
)

// Difficulties lists the grades from easiest to hardest.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyModerate, DifficultyChallenging, DifficultyDifficult}
}

// ParseDifficulty matches case-insensitively; unknown values report false.
func ParseDifficulty(value string) (Difficulty, bool) {
	value = strings.TrimSpace(value)
	for _, d := range Difficulties() {
		if strings.EqualFold(value, string(d)) {
			return d, true
		}
	}
	return "", false
}

// Valid reports whether d is one of the known grades.
func (d Difficulty) Valid() bool {
	parsed, ok := ParseDifficulty(string(d))
	return ok && parsed == d
}

// MealPlan is the board basis included in the package.
type MealPlan string

const (
	MealRoomOnly        MealPlan = "Room Only"
	MealBedAndBreakfast MealPlan = "Bed & Breakfast"
	MealHalfBoard       MealPlan = "Half Board"
	MealFullBoard       MealPlan = "Full Board"
	MealAllInclusive    MealPlan = "All Inclusive"
)

// MealPlans lists every board basis.
func MealPlans() []MealPlan {
	return []MealPlan{MealRoomOnly, MealBedAndBreakfast, MealHalfBoard, MealFullBoard, MealAllInclusive}
}

// ParseMealPlan matches case-insensitively, also accepting compact spellings
// such as "BedAndBreakfast" or "all-inclusive".
func ParseMealPlan(value string) (MealPlan, bool) {
	key := compact(value)
	for _, m := range MealPlans() {
		if key == compact(string(m)) {
			return m, true
		}
	}
	if key == "bb" {
		return MealBedAndBreakfast, true
	}
	return "", false
}

// Valid reports whether m is one of the known board bases.
func (m MealPlan) Valid() bool {
	parsed, ok := ParseMealPlan(string(m))
	return ok && parsed == m
}

func compact(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r == '&':
			b.WriteString("and")
		}
	}
	return b.String()
}

// Ref is a reference as found in a persisted tour.
type Ref struct {
	ID   string
	Name string
}

// UnmarshalJSON accepts null, a bare identifier string, or an object with
// "_id" (or "id") and an optional "name"/"title".
func (r *Ref) UnmarshalJSON(data []byte) error {
	*r = Ref{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return nil
		}
		r.ID = strings.TrimSpace(id)
	case '{':
		var obj struct {
			MongoID json.RawMessage `json:"_id"`
			ID      json.RawMessage `json:"id"`
			Name    string          `json:"name"`
			Title   string          `json:"title"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		r.ID = rawID(obj.MongoID)
		if r.ID == "" {
			r.ID = rawID(obj.ID)
		}
		r.Name = strings.TrimSpace(obj.Name)
		if r.Name == "" {
			r.Name = strings.TrimSpace(obj.Title)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		r.ID = string(data)
	}
	return nil
}

// MarshalJSON writes the bare identifier.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &oid); err == nil && oid.OID != "" {
		return strings.TrimSpace(oid.OID)
	}
	if raw[0] != '{' && raw[0] != '[' {
		return string(raw)
	}
	return ""
}

// Number is an optional numeric field that may be encoded as a JSON number
// or a numeric string.
type Number struct {
	Value float64
	Valid bool
}

// NumberOf returns a valid Number.
func NumberOf(v float64) Number {
	return Number{Value: v, Valid: true}
}

// UnmarshalJSON never fails; unparseable input leaves the number invalid.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

// MarshalJSON writes the number or null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// Int returns the value as an int. Fractions and values outside the int
// range report false.
func (n Number) Int() (int, bool) {
	if !n.Valid || n.Value != math.Trunc(n.Value) {
		return 0, false
	}
	if n.Value < float64(math.MinInt) || n.Value >= -float64(math.MinInt) {
		return 0, false
	}
	return int(n.Value), true
}

// DayPlan is one persisted itinerary entry.
type DayPlan struct {
	Day            Number `json:"day"`
	Destinations   []Ref  `json:"destinations"`
	Accommodations []Ref  `json:"accommodations"`
}

// Persisted is a tour as stored by the backend. Every field is optional.
type Persisted struct {
	ID               string     `json:"_id,omitempty"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Duration         Number     `json:"duration"`
	Price            Number     `json:"price"`
	MaxParticipants  Number     `json:"maxParticipants"`
	Difficulty       string     `json:"difficulty"`
	MealOptions      string     `json:"mealOptions"`
	TourGuide        *Ref       `json:"tourGuide"`
	DailyItineraries []DayPlan  `json:"dailyItineraries"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// DayPayload is one itinerary entry as sent to the backend.
type DayPayload struct {
	Day            int      `json:"day"`
	Destinations   []string `json:"destinations"`
	Accommodations []string `json:"accommodations"`
}

// CreatePayload is the body of a create request. Every field is sent.
type CreatePayload struct {
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Duration         int          `json:"duration"`
	Price            float64      `json:"price"`
	MaxParticipants  int          `json:"maxParticipants"`
	Difficulty       string       `json:"difficulty"`
	MealOptions      string       `json:"mealOptions"`
	TourGuide        string       `json:"tourGuide"`
	DailyItineraries []DayPayload `json:"dailyItineraries"`
}

// UpdatePayload is the body of an update request. The guide and itinerary
// are optional; an omitted itinerary leaves the stored one in place.
type UpdatePayload struct {
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Duration         int          `json:"duration"`
	Price            float64      `json:"price"`
	MaxParticipants  int          `json:"maxParticipants"`
	Difficulty       string       `json:"difficulty"`
	MealOptions      string       `json:"mealOptions"`
	TourGuide        string       `json:"tourGuide,omitempty"`
	DailyItineraries []DayPayload `json:"dailyItineraries,omitempty"`
}

// Response is the envelope returned for single-tour operations.
type Response struct {
	Success bool       `json:"success"`
	Data    *Persisted `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Errors  []string   `json:"errors,omitempty"`
}

// ListResponse is the envelope returned when listing tours.
type ListResponse struct {
	Success bool        `json:"success"`
	Data    []Persisted `json:"data"`
	Message string      `json:"message,omitempty"`
}
