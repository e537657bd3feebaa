package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type searchSource []Entry

func (s searchSource) String(i int) string {
	entry := s[i]
	if sub := entry.Subtitle(); sub != "" {
		return entry.Label() + " " + sub
	}
	return entry.Label()
}

func (s searchSource) Len() int { return len(s) }

// Search ranks the collection for kind against query. An empty query
// returns every entry in load order.
func (c *Catalog) Search(kind Kind, query string) []Entry {
	entries := c.Entries(kind)
	query = strings.TrimSpace(query)
	if query == "" || len(entries) == 0 {
		return entries
	}
	matches := fuzzy.FindFrom(query, searchSource(entries))
	out := make([]Entry, 0, len(matches))
	for _, match := range matches {
		out = append(out, entries[match.Index])
	}
	return out
}
