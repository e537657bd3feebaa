package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleCatalog() *Catalog {
	c := New()
	c.Set(KindDestination, []Entry{
		{ID: "dest-001", Name: "Kathmandu", Location: "Nepal"},
		{ID: "dest-002", Name: "Pokhara", Location: "Nepal"},
		{ID: "dest-003", Name: "Chitwan", Location: "Nepal", Category: "National park"},
	})
	c.Set(KindAccommodation, []Entry{
		{ID: "acc-001", Name: "Yak & Yeti", Category: "Hotel"},
		{ID: "acc-002", Name: "Temple Tree", Category: "Resort"},
	})
	c.Set(KindGuide, []Entry{
		{ID: "guide-001", Name: "Pemba Sherpa", Languages: []string{"English", "Nepali"}},
	})
	return c
}

func TestResolveKnownAndUnknown(t *testing.T) {
	c := sampleCatalog()
	res := c.Resolve(KindDestination, "dest-002")
	if !res.Known || res.Label != "Pokhara" {
		t.Fatalf("resolve known = %+v, want Pokhara", res)
	}
	res = c.Resolve(KindDestination, "65f0c1e2a9b4d3")
	if res.Known {
		t.Fatalf("expected unknown resolution, got %+v", res)
	}
	if res.Label != "Unknown destination …a9b4d3" {
		t.Fatalf("placeholder = %q", res.Label)
	}
	if again := c.Resolve(KindDestination, "65f0c1e2a9b4d3"); again.Label != res.Label {
		t.Fatalf("placeholder not deterministic: %q vs %q", again.Label, res.Label)
	}
}

func TestPlaceholderLabelShortAndEmpty(t *testing.T) {
	if got := PlaceholderLabel(KindGuide, "g1"); got != "Unknown guide g1" {
		t.Fatalf("short id placeholder = %q", got)
	}
	if got := PlaceholderLabel(KindAccommodation, "  "); got != "Unknown accommodation" {
		t.Fatalf("empty id placeholder = %q", got)
	}
}

func TestNilCatalogRendersPlaceholders(t *testing.T) {
	var c *Catalog
	if c.Loaded(KindGuide) {
		t.Fatalf("nil catalog must not report loaded")
	}
	if entries := c.Entries(KindGuide); len(entries) != 0 {
		t.Fatalf("nil catalog entries = %v", entries)
	}
	if got := c.Label(KindGuide, "abc"); got != "Unknown guide abc" {
		t.Fatalf("nil catalog label = %q", got)
	}
}

func TestSetReplacesAndSkipsInvalidEntries(t *testing.T) {
	c := sampleCatalog()
	c.Set(KindDestination, []Entry{
		{ID: " dest-009 ", Name: "Lumbini"},
		{ID: "", Name: "nameless"},
		{ID: "dest-009", Name: "duplicate"},
	})
	entries := c.Entries(KindDestination)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].ID != "dest-009" || entries[0].Name != "Lumbini" {
		t.Fatalf("entry = %+v", entries[0])
	}
	if c.Contains(KindDestination, "dest-001") {
		t.Fatalf("previous load should have been replaced")
	}
}

func TestLoadedDistinguishesEmptyFromPending(t *testing.T) {
	c := New()
	if c.Loaded(KindAccommodation) {
		t.Fatalf("nothing loaded yet")
	}
	c.Set(KindAccommodation, nil)
	if !c.Loaded(KindAccommodation) {
		t.Fatalf("empty load should still mark the kind as loaded")
	}
	if c.Len(KindAccommodation) != 0 {
		t.Fatalf("expected empty collection")
	}
}

func TestUnknownKeepsOrderWithoutRepeats(t *testing.T) {
	c := sampleCatalog()
	got := c.Unknown(KindDestination, []string{"x", "dest-001", "y", "x"})
	if strings.Join(got, ",") != "x,y" {
		t.Fatalf("unknown = %v", got)
	}
}

func TestRefDisplayAndBind(t *testing.T) {
	c := sampleCatalog()
	ref := NewRef(" acc-002 ")
	if ref.ID != "acc-002" {
		t.Fatalf("NewRef did not trim: %q", ref.ID)
	}
	if got := ref.Display(c, KindAccommodation); got != "Temple Tree" {
		t.Fatalf("display = %q", got)
	}
	bound := ref.Bind(c, KindAccommodation)
	if bound.Label != "Temple Tree" {
		t.Fatalf("bind label = %q", bound.Label)
	}
	missing := NewRef("nope").Bind(c, KindAccommodation)
	if missing.Label != "" {
		t.Fatalf("unknown refs must stay unlabelled, got %q", missing.Label)
	}
	cached := Ref{ID: "nope", Label: "Cached"}
	if got := cached.Display(New(), KindAccommodation); got != "Cached" {
		t.Fatalf("cached display before load = %q", got)
	}
	if got := cached.Display(c, KindAccommodation); got != "Unknown accommodation nope" {
		t.Fatalf("cached label must not hide a missing id, got %q", got)
	}
}

func TestReloadDropsStaleLabels(t *testing.T) {
	c := sampleCatalog()
	ref := NewRef("dest-002-pokhara").Bind(c, KindDestination)
	c.Set(KindDestination, []Entry{{ID: "dest-002-pokhara", Name: "Pokhara"}})
	ref = ref.Bind(c, KindDestination)
	if ref.Label != "Pokhara" {
		t.Fatalf("label = %q", ref.Label)
	}

	c.Set(KindDestination, nil)
	if got := ref.Display(c, KindDestination); got != "Unknown destination …okhara" {
		t.Fatalf("display after reload = %q", got)
	}
	if ref = ref.Bind(c, KindDestination); ref.Label != "" {
		t.Fatalf("stale label kept: %q", ref.Label)
	}
}

func TestSearchRanksAndFallsBack(t *testing.T) {
	c := sampleCatalog()
	all := c.Search(KindDestination, "  ")
	if len(all) != 3 || all[0].ID != "dest-001" {
		t.Fatalf("empty query should list in load order, got %+v", all)
	}
	hits := c.Search(KindDestination, "pkh")
	if len(hits) == 0 || hits[0].ID != "dest-002" {
		t.Fatalf("fuzzy search = %+v, want Pokhara first", hits)
	}
	if got := c.Search(KindDestination, "zzzz"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestParseKind(t *testing.T) {
	for input, want := range map[string]Kind{
		"destination":     KindDestination,
		"Accommodations ": KindAccommodation,
		"GUIDES":          KindGuide,
	} {
		got, err := ParseKind(input)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseKind("hotel"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestFileSourceAndLoadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := strings.TrimSpace(`
destinations:
  - id: d1
    name: Kathmandu
    location: Nepal
accommodations:
  - id: a1
    name: Yak & Yeti
  - id: a2
    name: Temple Tree
guides: []
`)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New()
	if err := LoadAll(context.Background(), NewFileSource(path), c); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if c.Len(KindDestination) != 1 || c.Len(KindAccommodation) != 2 {
		t.Fatalf("unexpected sizes: %d destinations, %d accommodations", c.Len(KindDestination), c.Len(KindAccommodation))
	}
	if !c.Loaded(KindGuide) || c.Len(KindGuide) != 0 {
		t.Fatalf("guides should be loaded and empty")
	}
}

func TestFileSourceMissingFileIsEmpty(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml"))
	entries, err := src.Load(context.Background(), KindGuide)
	if err != nil || len(entries) != 0 {
		t.Fatalf("missing file load = %v, %v", entries, err)
	}
}

func TestLoadAllAppliesSuccessfulKinds(t *testing.T) {
	boom := errors.New("boom")
	src := SourceFunc(func(ctx context.Context, kind Kind) ([]Entry, error) {
		if kind == KindGuide {
			return nil, boom
		}
		return []Entry{{ID: string(kind) + "-1", Name: "x"}}, nil
	})
	c := New()
	err := LoadAll(context.Background(), src, c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected guide failure, got %v", err)
	}
	if c.Loaded(KindGuide) {
		t.Fatalf("failed kind must not be marked loaded")
	}
	if !c.Contains(KindDestination, "destination-1") || !c.Contains(KindAccommodation, "accommodation-1") {
		t.Fatalf("successful kinds should be applied")
	}
}

func TestZeroCatalogAcceptsSet(t *testing.T) {
	var c Catalog
	if c.Loaded(KindGuide) {
		t.Fatalf("zero catalog reports guides loaded")
	}
	c.Set(KindGuide, []Entry{{ID: "g-1", Name: "Pemba"}})
	if !c.Loaded(KindGuide) || c.Label(KindGuide, "g-1") != "Pemba" {
		t.Fatalf("set on zero catalog lost entries: %+v", c.Entries(KindGuide))
	}
}
