// Package catalog holds the externally owned reference collections a tour
// package is composed from (destinations, accommodations and guides) and
// resolves opaque identifiers against them.
//
// A Catalog is owned by a single editing session and is not safe for
// concurrent mutation. Loads for each kind arrive independently; the most
// recent Set for a kind replaces whatever was there before.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names one of the three reference collections.
type Kind string

const (
	KindDestination   Kind = "destination"
	KindAccommodation Kind = "accommodation"
	KindGuide         Kind = "guide"
)

// ErrUnknownKind is returned when a kind string does not name a collection.
var ErrUnknownKind = errors.New("catalog: unknown kind")

// Kinds lists every collection in load order.
func Kinds() []Kind {
	return []Kind{KindDestination, KindAccommodation, KindGuide}
}

// ParseKind accepts the singular or plural collection name.
func ParseKind(value string) (Kind, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	for _, kind := range Kinds() {
		if trimmed == string(kind) || trimmed == kind.Plural() {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindDestination, KindAccommodation, KindGuide:
		return true
	default:
		return false
	}
}

// Plural returns the collection name used by files and HTTP routes.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Title is the capitalised singular name.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Entry is one display-ready catalog record.
type Entry struct {
	ID        string   `yaml:"id" json:"_id"`
	Name      string   `yaml:"name" json:"name"`
	Location  string   `yaml:"location,omitempty" json:"location,omitempty"`
	Category  string   `yaml:"category,omitempty" json:"category,omitempty"`
	Languages []string `yaml:"languages,omitempty" json:"languages,omitempty"`
}

// Label is the name, falling back to the identifier.
func (e Entry) Label() string {
	if name := strings.TrimSpace(e.Name); name != "" {
		return name
	}
	return e.ID
}

// Subtitle joins the secondary display fields.
func (e Entry) Subtitle() string {
	var parts []string
	if loc := strings.TrimSpace(e.Location); loc != "" {
		parts = append(parts, loc)
	}
	if cat := strings.TrimSpace(e.Category); cat != "" {
		parts = append(parts, cat)
	}
	if len(e.Languages) > 0 {
		parts = append(parts, strings.Join(e.Languages, ", "))
	}
	return strings.Join(parts, " · ")
}

// Resolution is the outcome of looking an identifier up in the catalog.
type Resolution struct {
	ID    string
	Label string
	Entry Entry
	Known bool
}

// Catalog indexes the loaded collections by identifier. The zero value is
// an empty catalog ready for Set.
type Catalog struct {
	entries map[Kind][]Entry
	index   map[Kind]map[string]int
	loaded  map[Kind]bool
}

// New returns an empty catalog with nothing loaded.
func New() *Catalog {
	return &Catalog{
		entries: map[Kind][]Entry{},
		index:   map[Kind]map[string]int{},
		loaded:  map[Kind]bool{},
	}
}

// Set replaces the collection for kind. Entries without an identifier are
// skipped and duplicate identifiers keep their first occurrence.
func (c *Catalog) Set(kind Kind, entries []Entry) {
	if c == nil || !kind.Valid() {
		return
	}
	kept := make([]Entry, 0, len(entries))
	idx := make(map[string]int, len(entries))
	for _, entry := range entries {
		entry.ID = strings.TrimSpace(entry.ID)
		if entry.ID == "" {
			continue
		}
		if _, dup := idx[entry.ID]; dup {
			continue
		}
		entry.Languages = cloneStrings(entry.Languages)
		idx[entry.ID] = len(kept)
		kept = append(kept, entry)
	}
	if c.entries == nil {
		c.entries = map[Kind][]Entry{}
		c.index = map[Kind]map[string]int{}
		c.loaded = map[Kind]bool{}
	}
	c.entries[kind] = kept
	c.index[kind] = idx
	c.loaded[kind] = true
}

// Loaded reports whether a load for kind has completed, even if it was empty.
func (c *Catalog) Loaded(kind Kind) bool {
	if c == nil {
		return false
	}
	return c.loaded[kind]
}

// Len returns the number of entries held for kind.
func (c *Catalog) Len(kind Kind) int {
	if c == nil {
		return 0
	}
	return len(c.entries[kind])
}

// Entries returns a copy of the collection in load order.
func (c *Catalog) Entries(kind Kind) []Entry {
	if c == nil {
		return nil
	}
	src := c.entries[kind]
	out := make([]Entry, len(src))
	for i, entry := range src {
		entry.Languages = cloneStrings(entry.Languages)
		out[i] = entry
	}
	return out
}

// Lookup finds the entry with the given identifier.
func (c *Catalog) Lookup(kind Kind, id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	pos, ok := c.index[kind][strings.TrimSpace(id)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[kind][pos], true
}

// Contains reports whether id exists in the loaded collection for kind.
func (c *Catalog) Contains(kind Kind, id string) bool {
	_, ok := c.Lookup(kind, id)
	return ok
}

// Resolve never fails: unknown identifiers yield a placeholder label.
func (c *Catalog) Resolve(kind Kind, id string) Resolution {
	id = strings.TrimSpace(id)
	if entry, ok := c.Lookup(kind, id); ok {
		return Resolution{ID: id, Label: entry.Label(), Entry: entry, Known: true}
	}
	return Resolution{ID: id, Label: PlaceholderLabel(kind, id)}
}

// Label is shorthand for Resolve(kind, id).Label.
func (c *Catalog) Label(kind Kind, id string) string {
	return c.Resolve(kind, id).Label
}

// Unknown returns the identifiers in ids that are not in the collection, in
// their original order and without repeats.
func (c *Catalog) Unknown(kind Kind, ids []string) []string {
	var missing []string
	seen := map[string]struct{}{}
	for _, id := range ids {
		if c.Contains(kind, id) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}

const placeholderSuffixLen = 6

// PlaceholderLabel derives the deterministic label shown for an identifier
// that is not in the catalog.
func PlaceholderLabel(kind Kind, id string) string {
	id = strings.TrimSpace(id)
	noun := string(kind)
	if noun == "" {
		noun = "reference"
	}
	if id == "" {
		return fmt.Sprintf("Unknown %s", noun)
	}
	suffix := id
	if runes := []rune(id); len(runes) > placeholderSuffixLen {
		suffix = "…" + string(runes[len(runes)-placeholderSuffixLen:])
	}
	return fmt.Sprintf("Unknown %s %s", noun, suffix)
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
