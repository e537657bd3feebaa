package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/draft"
	"github.com/kingrea/tourdesk/internal/logbook"
	"github.com/kingrea/tourdesk/internal/tour"
	"github.com/kingrea/tourdesk/internal/wizard"
)

type fakeTransport struct {
	created []tour.CreatePayload
	updated []tour.UpdatePayload
	stored  tour.Persisted
	fail    error
}

func (f *fakeTransport) Create(_ context.Context, p tour.CreatePayload) (tour.Persisted, error) {
	if f.fail != nil {
		return tour.Persisted{}, f.fail
	}
	f.created = append(f.created, p)
	return tour.Persisted{ID: "t-new", Name: p.Name}, nil
}

func (f *fakeTransport) Update(_ context.Context, id string, p tour.UpdatePayload) (tour.Persisted, error) {
	if f.fail != nil {
		return tour.Persisted{}, f.fail
	}
	f.updated = append(f.updated, p)
	saved := f.stored
	saved.ID = id
	saved.Name = p.Name
	return saved, nil
}

func (f *fakeTransport) Get(_ context.Context, id string) (tour.Persisted, error) {
	if f.stored.ID != id {
		return tour.Persisted{}, errors.New("not found")
	}
	return f.stored, nil
}

func (f *fakeTransport) List(context.Context) ([]tour.Persisted, error) {
	return []tour.Persisted{f.stored}, nil
}

func testSource() catalog.Source {
	file := catalog.File{
		Destinations:   []catalog.Entry{{ID: "d-pokhara", Name: "Pokhara"}, {ID: "d-ghandruk", Name: "Ghandruk"}},
		Accommodations: []catalog.Entry{{ID: "h-1", Name: "Fishtail Lodge"}, {ID: "h-2", Name: "Guest House"}, {ID: "h-3", Name: "Camp"}},
		Guides:         []catalog.Entry{{ID: "g-1", Name: "Pasang Sherpa"}},
	}
	return catalog.SourceFunc(func(_ context.Context, kind catalog.Kind) ([]catalog.Entry, error) {
		return file.Collection(kind)
	})
}

// runCommands executes cmd and feeds every resulting message back into the
// app, expanding batches. Spinner ticks are dropped so the loop terminates.
func runCommands(t *testing.T, app *App, cmd tea.Cmd) *App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatalf("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case nil, spinner.TickMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		model, follow := app.Update(msg)
		var ok bool
		app, ok = model.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", model)
		}
		queue = append(queue, follow)
	}
	return app
}

func press(t *testing.T, app *App, keys ...tea.KeyMsg) *App {
	t.Helper()
	for _, key := range keys {
		model, cmd := app.Update(key)
		app = runCommands(t, model.(*App), cmd)
	}
	return app
}

func typeText(t *testing.T, app *App, text string) *App {
	t.Helper()
	for _, r := range text {
		app = press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return app
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

var (
	keyNext  = tea.KeyMsg{Type: tea.KeyCtrlN}
	keyBack  = tea.KeyMsg{Type: tea.KeyCtrlB}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func newCreateApp(t *testing.T, tr *fakeTransport) *App {
	t.Helper()
	lb, err := logbook.New(filepath.Join(t.TempDir(), "session.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	app := NewCreateApp(tr, testSource(), WithLogbook(lb))
	return runCommands(t, app, app.Init())
}

func TestCatalogsLoadOnInit(t *testing.T) {
	app := newCreateApp(t, &fakeTransport{})
	for _, kind := range catalog.Kinds() {
		if !app.Catalog().Loaded(kind) {
			t.Fatalf("%s not loaded", kind.Plural())
		}
	}
	if app.busy() {
		t.Fatalf("app still busy after loads")
	}
}

func TestCreateFlowSubmitsAndResets(t *testing.T) {
	tr := &fakeTransport{}
	app := newCreateApp(t, tr)

	app = press(t, app, keyNext)
	if app.Controller().Current() != wizard.StepBasicInfo {
		t.Fatalf("advanced past incomplete basic info")
	}
	if app.Draft().FieldError(draft.FieldName) == "" {
		t.Fatalf("expected name error after rejected next")
	}

	app = typeText(t, app, "Poon Hill Trek")
	if app.Draft().FieldError(draft.FieldName) != "" {
		t.Fatalf("typing did not clear the name error")
	}
	app = press(t, app, keyTab)
	app = typeText(t, app, "Sunrise over the Annapurnas")
	app = press(t, app, keyTab, keyRight, keyTab, keyRight, keyRight)
	if app.Draft().Difficulty() != tour.DifficultyEasy || app.Draft().MealPlan() != tour.MealBedAndBreakfast {
		t.Fatalf("difficulty = %q, meal = %q", app.Draft().Difficulty(), app.Draft().MealPlan())
	}
	app = press(t, app, keyNext)
	if app.Controller().Current() != wizard.StepGuide {
		t.Fatalf("step = %s", app.Controller().Current())
	}

	app = press(t, app, keyEnter, keyEnter)
	if app.Draft().Guide().ID != "g-1" || app.Draft().Guide().Label != "Pasang Sherpa" {
		t.Fatalf("guide = %+v", app.Draft().Guide())
	}
	app = press(t, app, keyNext)

	// Day 1: Pokhara plus two lodges; a third is refused.
	app = press(t, app, runeKey('d'), keyEnter, keyEsc)
	app = press(t, app, runeKey('h'), keyEnter, keyDown, keyEnter, keyDown, keyEnter, keyEsc)
	day, _ := app.Draft().Day(0)
	if len(day.Accommodations) != 2 {
		t.Fatalf("accommodations = %v", day.Accommodations)
	}
	if !strings.Contains(app.Status(), "maximum") {
		t.Fatalf("status = %q", app.Status())
	}
	app = press(t, app, keyNext)
	if app.Controller().Current() != wizard.StepPricing {
		t.Fatalf("step = %s, issues %v", app.Controller().Current(), wizard.Issues(wizard.StepItinerary, app.Draft()))
	}

	app = typeText(t, app, "450")
	app = press(t, app, keyTab)
	app = typeText(t, app, "10")
	app = press(t, app, keyNext)

	if len(tr.created) != 1 {
		t.Fatalf("created = %d payloads", len(tr.created))
	}
	got := tr.created[0]
	if got.Name != "Poon Hill Trek" || got.TourGuide != "g-1" || got.Price != 450 || got.MaxParticipants != 10 {
		t.Fatalf("payload = %+v", got)
	}
	if len(got.DailyItineraries) != 1 || got.DailyItineraries[0].Destinations[0] != "d-pokhara" {
		t.Fatalf("days = %+v", got.DailyItineraries)
	}
	if app.Controller().Current() != wizard.StepBasicInfo || app.Draft().Name() != "" {
		t.Fatalf("draft not reset after create")
	}
	if !strings.Contains(app.Status(), "t-new") {
		t.Fatalf("status = %q", app.Status())
	}
}

func TestFailedSubmissionKeepsDraft(t *testing.T) {
	tr := &fakeTransport{fail: errors.New("backend down")}
	app := newCreateApp(t, tr)
	d := app.Draft()
	d.SetName("Trek")
	d.SetDescription("desc")
	d.SetDifficulty(tour.DifficultyEasy)
	d.SetMealPlan(tour.MealRoomOnly)
	d.SetGuide("g-1")
	d.AddDestination(0, "d-pokhara")
	d.AddAccommodation(0, "h-1")
	d.SetPrice("100")
	d.SetMaxParticipants("4")
	app = press(t, app, keyNext, keyNext, keyNext, keyNext)

	if !strings.Contains(app.Status(), "backend down") {
		t.Fatalf("status = %q", app.Status())
	}
	if app.Draft() != d || d.Name() != "Trek" || app.Controller().Current() != wizard.StepPricing {
		t.Fatalf("draft changed after failed submission")
	}
	tr.fail = nil
	app = press(t, app, keyNext)
	if len(tr.created) != 1 {
		t.Fatalf("resubmission did not reach the backend")
	}
}

func TestCreateModeRefusesJumps(t *testing.T) {
	app := newCreateApp(t, &fakeTransport{})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}, Alt: true})
	if app.Controller().Current() != wizard.StepBasicInfo {
		t.Fatalf("create flow jumped to %s", app.Controller().Current())
	}
	app = press(t, app, keyBack)
	if app.Controller().Current() != wizard.StepBasicInfo {
		t.Fatalf("back moved from first step")
	}
}

func persistedTour() tour.Persisted {
	return tour.Persisted{
		ID:              "t-9",
		Name:            "Chitwan Safari",
		Description:     "Jungle days",
		Price:           tour.NumberOf(300),
		MaxParticipants: tour.NumberOf(6),
		Difficulty:      "Easy",
		MealOptions:     "Full Board",
		TourGuide:       &tour.Ref{ID: "g-1"},
		DailyItineraries: []tour.DayPlan{
			{Day: tour.NumberOf(1), Destinations: []tour.Ref{{ID: "d-pokhara"}}, Accommodations: []tour.Ref{{ID: "h-1"}}},
			{Day: tour.NumberOf(2), Destinations: []tour.Ref{{ID: "d-gone"}}, Accommodations: []tour.Ref{{ID: "h-2"}}},
		},
	}
}

func TestEditFlowLoadsJumpsAndSaves(t *testing.T) {
	tr := &fakeTransport{stored: persistedTour()}
	app := NewEditApp("t-9", tr, testSource())
	app = runCommands(t, app, app.Init())

	if app.state != stateEditing || app.Draft().TourID() != "t-9" || app.Draft().Duration() != 2 {
		t.Fatalf("state = %d, draft = %q/%d", app.state, app.Draft().TourID(), app.Draft().Duration())
	}
	day, _ := app.Draft().Day(1)
	if got := day.Destinations[0].Display(app.Catalog(), catalog.KindDestination); !strings.HasPrefix(got, "Unknown destination") {
		t.Fatalf("unknown destination label = %q", got)
	}

	app = press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}, Alt: true})
	if app.Controller().Current() != wizard.StepPricing {
		t.Fatalf("jump landed on %s", app.Controller().Current())
	}
	app = press(t, app, keySave)
	if len(tr.updated) != 1 {
		t.Fatalf("updated = %d payloads", len(tr.updated))
	}
	if got := tr.updated[0].DailyItineraries; len(got) != 2 || got[1].Destinations[0] != "d-gone" {
		t.Fatalf("days = %+v", got)
	}
	if app.Controller().Mode() != wizard.ModeEdit || app.Draft().TourID() != "t-9" {
		t.Fatalf("edit session did not stay open")
	}
}

func TestEditLoadFailure(t *testing.T) {
	app := NewEditApp("missing", &fakeTransport{}, testSource())
	app = runCommands(t, app, app.Init())
	if app.state != stateFailed {
		t.Fatalf("state = %d", app.state)
	}
	if !strings.Contains(app.View(), "not found") {
		t.Fatalf("view does not show the load error")
	}
}

func TestItineraryKeys(t *testing.T) {
	app := newCreateApp(t, &fakeTransport{})
	app.ctrl = wizard.NewEdit(app.Draft())
	app.Controller().GoTo(wizard.StepItinerary)

	app = press(t, app, runeKey('x'))
	if app.Draft().Duration() != 1 || !strings.Contains(app.Status(), "at least one day") {
		t.Fatalf("duration = %d, status = %q", app.Draft().Duration(), app.Status())
	}
	app = press(t, app, runeKey('a'), runeKey('a'))
	if app.Draft().Duration() != 3 || app.dayCursor != 2 {
		t.Fatalf("duration = %d, cursor = %d", app.Draft().Duration(), app.dayCursor)
	}
	app = press(t, app, runeKey('k'), runeKey('x'))
	days := app.Draft().Days()
	if len(days) != 2 || days[0].Number != 1 || days[1].Number != 2 {
		t.Fatalf("days = %+v", days)
	}

	// Toggling an entry twice removes it again.
	app = press(t, app, runeKey('d'), keyEnter, keyEnter, keyEsc)
	day, _ := app.Draft().Day(app.dayCursor)
	if len(day.Destinations) != 0 {
		t.Fatalf("destinations = %v", day.Destinations)
	}
	if !strings.Contains(app.View(), "Day 2") {
		t.Fatalf("view missing day 2")
	}
}

func TestPickerFiltersByQuery(t *testing.T) {
	app := newCreateApp(t, &fakeTransport{})
	app.ctrl = wizard.NewEdit(app.Draft())
	app.Controller().GoTo(wizard.StepItinerary)
	app = press(t, app, runeKey('d'))
	app = typeText(t, app, "ghan")
	if len(app.picker.results) == 0 || app.picker.results[0].ID != "d-ghandruk" {
		t.Fatalf("results = %+v", app.picker.results)
	}
	app = press(t, app, keyEnter)
	day, _ := app.Draft().Day(0)
	if len(day.Destinations) != 1 || day.Destinations[0].ID != "d-ghandruk" {
		t.Fatalf("destinations = %v", day.Destinations)
	}
}

func TestPickerRendersBeforeCatalogArrives(t *testing.T) {
	app := NewCreateApp(&fakeTransport{}, testSource())
	app.ctrl = wizard.NewEdit(app.Draft())
	app.Controller().GoTo(wizard.StepGuide)
	app = press(t, app, keyEnter)
	if app.state != statePicking || len(app.picker.results) != 0 {
		t.Fatalf("state = %d, results = %d", app.state, len(app.picker.results))
	}
	if !strings.Contains(app.View(), "loading...") {
		t.Fatalf("picker should show loading before the guides arrive")
	}

	model, _ := app.Update(catalogLoadedMsg{
		kind:    catalog.KindGuide,
		entries: []catalog.Entry{{ID: "g-1", Name: "Pasang Sherpa"}},
	})
	app = model.(*App)
	if len(app.picker.results) != 1 {
		t.Fatalf("picker not refreshed: %+v", app.picker.results)
	}
	if strings.Contains(app.View(), "loading...") {
		t.Fatalf("view still loading after guides arrived")
	}
}

func TestHelpAdvertisesOnlyAcceptedMoves(t *testing.T) {
	app := newCreateApp(t, &fakeTransport{})
	help := app.renderHelp()
	if strings.Contains(help, "ctrl+n") || strings.Contains(help, "ctrl+b") {
		t.Fatalf("incomplete first step advertises navigation: %q", help)
	}

	d := app.Draft()
	d.SetName("Trek")
	d.SetDescription("desc")
	d.SetDifficulty(tour.DifficultyEasy)
	d.SetMealPlan(tour.MealRoomOnly)
	if help = app.renderHelp(); !strings.Contains(help, "ctrl+n next") || strings.Contains(help, "ctrl+b") {
		t.Fatalf("complete first step help = %q", help)
	}

	d.SetGuide("g-1")
	d.AddDestination(0, "d-pokhara")
	d.AddAccommodation(0, "h-1")
	d.SetPrice("100")
	d.SetMaxParticipants("4")
	app = press(t, app, keyNext, keyNext, keyNext)
	if app.Controller().Current() != wizard.StepPricing {
		t.Fatalf("step = %s", app.Controller().Current())
	}
	help = app.renderHelp()
	if !strings.Contains(help, "ctrl+n submit") || !strings.Contains(help, "ctrl+b back") {
		t.Fatalf("last step help = %q", help)
	}
}
