// internal/tui/app.go
//
// This is the interactive package editor. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: the wizard controller, the catalog and the widgets
// 2. Update: applies keys and async results (catalog loads, submissions)
// 3. View: renders the current step
//
// All draft mutation happens inside Update; commands only talk to the
// backend and report back with messages.

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/draft"
	"github.com/kingrea/tourdesk/internal/logbook"
	"github.com/kingrea/tourdesk/internal/transport"
	"github.com/kingrea/tourdesk/internal/wizard"
)

// appState represents which screen we're on
type appState int

const (
	stateLoading appState = iota // waiting for the tour being edited
	stateEditing                 // stepping through the wizard
	statePicking                 // choosing catalog entries
	stateFailed                  // the tour could not be loaded
)

const defaultRequestTimeout = 15 * time.Second

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook journals the session to lb.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) { a.logbook = lb }
}

// WithDisplay sets the locale and currency used for prices.
func WithDisplay(tag language.Tag, unit currency.Unit) AppOption {
	return func(a *App) {
		a.locale = tag
		a.currency = unit
	}
}

// WithRequestTimeout bounds each backend request.
func WithRequestTimeout(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// App is the main application model.
type App struct {
	state     appState
	tourID    string
	transport transport.Transport
	source    catalog.Source
	catalog   *catalog.Catalog
	ctrl      *wizard.Controller
	logbook   *logbook.Logbook
	locale    language.Tag
	currency  currency.Unit
	timeout   time.Duration

	// Form widgets. focus indexes the fields of the current step.
	inputs map[draft.Field]*textinput.Model
	focus  int

	// Itinerary step: the highlighted day.
	dayCursor int

	picker *picker

	spinner    spinner.Model
	pending    int // catalog loads in flight
	submitting bool

	statusMsg string
	err       error

	width  int
	height int
}

// NewCreateApp opens a linear session over a fresh draft.
func NewCreateApp(tr transport.Transport, src catalog.Source, opts ...AppOption) *App {
	a := newApp(tr, src, opts...)
	a.state = stateEditing
	a.ctrl = wizard.NewCreate(draft.New())
	a.syncInputs()
	a.focusField()
	a.logInfo("Session opened · new package")
	return a
}

// NewEditApp opens a direct-access session over the stored tour tourID.
func NewEditApp(tourID string, tr transport.Transport, src catalog.Source, opts ...AppOption) *App {
	a := newApp(tr, src, opts...)
	a.state = stateLoading
	a.tourID = strings.TrimSpace(tourID)
	a.ctrl = wizard.NewEdit(draft.New())
	a.logInfo("Session opened · editing %s", a.tourID)
	return a
}

func newApp(tr transport.Transport, src catalog.Source, opts ...AppOption) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	a := &App{
		transport: tr,
		source:    src,
		catalog:   catalog.New(),
		locale:    language.AmericanEnglish,
		currency:  currency.USD,
		timeout:   defaultRequestTimeout,
		inputs:    newInputs(),
		spinner:   sp,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Draft exposes the draft being edited.
func (a *App) Draft() *draft.Draft { return a.ctrl.Draft() }

// Controller exposes the wizard controller.
func (a *App) Controller() *wizard.Controller { return a.ctrl }

// Catalog exposes the catalog loaded so far.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Status returns the current status line.
func (a *App) Status() string { return a.statusMsg }

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init starts the catalog loads and, when editing, fetches the tour.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadCatalogs()}
	if a.state == stateLoading {
		cmds = append(cmds, a.loadTour(a.tourID))
	}
	return tea.Batch(cmds...)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case catalogLoadedMsg:
		return a, a.handleCatalogLoaded(msg)

	case tourLoadedMsg:
		return a, a.handleTourLoaded(msg)

	case submitFinishedMsg:
		return a, a.handleSubmitFinished(msg)

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *App) busy() bool {
	return a.pending > 0 || a.submitting || a.state == stateLoading
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c":
		a.logInfo("Session closed")
		return tea.Quit
	case "ctrl+r":
		a.statusMsg = "Reloading catalogs..."
		return a.loadCatalogs()
	}

	switch a.state {
	case stateLoading:
		return nil
	case stateFailed:
		if key == "esc" || key == "q" {
			return tea.Quit
		}
		return nil
	case statePicking:
		return a.updatePicker(msg)
	}

	switch key {
	case "ctrl+n":
		return a.next()
	case "ctrl+b":
		a.back()
		return nil
	case "ctrl+s":
		return a.submit()
	case "alt+1", "alt+2", "alt+3", "alt+4":
		a.jump(wizard.Step(int(key[len(key)-1] - '1')))
		return nil
	case "esc":
		a.logInfo("Session closed")
		return tea.Quit
	}

	switch a.ctrl.Current() {
	case wizard.StepBasicInfo, wizard.StepPricing:
		return a.updateForm(msg)
	case wizard.StepGuide:
		return a.updateGuideStep(msg)
	case wizard.StepItinerary:
		return a.updateItineraryStep(msg)
	}
	return nil
}

func (a *App) next() tea.Cmd {
	from := a.ctrl.Current()
	switch a.ctrl.Next() {
	case wizard.OutcomeAdvanced:
		a.statusMsg = ""
		a.focus = 0
		a.focusField()
		a.logInfo("Step · %s complete", from)
	case wizard.OutcomeSubmit:
		return a.startSubmit()
	default:
		a.statusMsg = fmt.Sprintf("%s is incomplete", from)
	}
	return nil
}

func (a *App) back() {
	if a.ctrl.Back() {
		a.statusMsg = ""
		a.focus = 0
		a.focusField()
	}
}

func (a *App) jump(step wizard.Step) {
	if a.ctrl.GoTo(step) {
		a.statusMsg = ""
		a.focus = 0
		a.focusField()
		return
	}
	if a.ctrl.Mode() == wizard.ModeCreate {
		a.statusMsg = "Steps are completed in order when creating a package"
	}
}

func (a *App) submit() tea.Cmd {
	if a.ctrl.Mode() == wizard.ModeCreate && a.ctrl.Current() != wizard.Last {
		a.statusMsg = "Finish every step before creating the package"
		return nil
	}
	if a.ctrl.Submit() != wizard.OutcomeSubmit {
		step, _ := a.ctrl.Blocking()
		a.statusMsg = fmt.Sprintf("Cannot submit: %s is incomplete", step)
		return nil
	}
	return a.startSubmit()
}

func (a *App) handleCatalogLoaded(msg catalogLoadedMsg) tea.Cmd {
	if a.pending > 0 {
		a.pending--
	}
	if msg.err != nil {
		a.statusMsg = fmt.Sprintf("Could not load %s: %v", msg.kind.Plural(), msg.err)
		a.logWarn("Catalog · %s failed: %v", msg.kind.Plural(), msg.err)
		return nil
	}
	a.catalog.Set(msg.kind, msg.entries)
	a.ctrl.Draft().Bind(a.catalog)
	if a.picker != nil && a.picker.kind == msg.kind {
		a.picker.refresh(a.catalog)
	}
	a.logInfo("Catalog · %d %s loaded", len(msg.entries), msg.kind.Plural())
	return nil
}

func (a *App) handleTourLoaded(msg tourLoadedMsg) tea.Cmd {
	if msg.err != nil {
		a.state = stateFailed
		a.err = msg.err
		a.statusMsg = fmt.Sprintf("Could not load tour %s", a.tourID)
		a.logError("Load · tour %s failed: %v", a.tourID, msg.err)
		return nil
	}
	d := draft.Hydrate(msg.tour)
	d.Bind(a.catalog)
	a.ctrl = wizard.NewEdit(d)
	a.state = stateEditing
	a.syncInputs()
	a.focus = 0
	a.focusField()
	a.statusMsg = fmt.Sprintf("Loaded %q", d.Name())
	a.logInfo("Load · tour %s hydrated with %d day(s)", d.TourID(), d.Duration())
	return nil
}

func (a *App) handleSubmitFinished(msg submitFinishedMsg) tea.Cmd {
	a.submitting = false
	if msg.err != nil {
		a.err = msg.err
		a.statusMsg = fmt.Sprintf("Submission failed: %v", msg.err)
		a.logError("Submit · %s failed: %v", msg.action, msg.err)
		return nil
	}
	a.err = nil
	switch msg.action {
	case actionCreate:
		a.ctrl.Restart()
		a.statusMsg = fmt.Sprintf("Created %q (%s)", msg.saved.Name, msg.saved.ID)
		a.logInfo("Submit · created tour %s", msg.saved.ID)
	default:
		d := draft.Hydrate(msg.saved)
		d.Bind(a.catalog)
		a.ctrl.Replace(d)
		a.statusMsg = fmt.Sprintf("Saved %q", msg.saved.Name)
		a.logInfo("Submit · updated tour %s", msg.saved.ID)
	}
	a.dayCursor = 0
	a.syncInputs()
	a.focus = 0
	a.focusField()
	return nil
}
