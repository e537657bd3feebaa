package catalog

import "strings"

// Ref is a weak reference to a catalog entry: an opaque identifier plus a
// display label cached once the identifier has been seen in a catalog.
type Ref struct {
	ID    string
	Label string
}

// NewRef builds an unlabelled reference.
func NewRef(id string) Ref {
	return Ref{ID: strings.TrimSpace(id)}
}

// IsZero reports whether the reference points at nothing.
func (r Ref) IsZero() bool {
	return strings.TrimSpace(r.ID) == ""
}

// Display resolves the label from c. Once kind has loaded, an identifier
// missing from it shows the placeholder whatever label was cached; before
// that the cached label stands in.
func (r Ref) Display(c *Catalog, kind Kind) string {
	if c.Loaded(kind) && !c.Contains(kind, r.ID) {
		return PlaceholderLabel(kind, r.ID)
	}
	if label := strings.TrimSpace(r.Label); label != "" {
		return label
	}
	return c.Label(kind, r.ID)
}

// Bind caches the catalog label when the identifier is known and drops a
// stale label when the loaded collection no longer has it. Before kind has
// loaded the reference is returned untouched.
func (r Ref) Bind(c *Catalog, kind Kind) Ref {
	if entry, ok := c.Lookup(kind, r.ID); ok {
		r.Label = entry.Label()
	} else if c.Loaded(kind) {
		r.Label = ""
	}
	return r
}

// IDs flattens references back to bare identifiers.
func IDs(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.ID)
	}
	return out
}
