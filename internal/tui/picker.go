package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tourdesk/internal/catalog"
)

const pickerRows = 8

// picker selects catalog entries for the guide or for one itinerary day.
type picker struct {
	kind    catalog.Kind
	day     int
	query   textinput.Model
	results []catalog.Entry
	cursor  int
}

func newPicker(kind catalog.Kind, day int, c *catalog.Catalog) *picker {
	q := textinput.New()
	q.Placeholder = "type to filter"
	q.Prompt = "/ "
	q.Width = 40
	q.Focus()
	p := &picker{kind: kind, day: day, query: q}
	p.refresh(c)
	return p
}

func (p *picker) refresh(c *catalog.Catalog) {
	p.results = c.Search(p.kind, p.query.Value())
	if p.cursor >= len(p.results) {
		p.cursor = max(0, len(p.results)-1)
	}
}

func (p *picker) selected() (catalog.Entry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.results) {
		return catalog.Entry{}, false
	}
	return p.results[p.cursor], true
}

func (a *App) openPicker(kind catalog.Kind, day int) tea.Cmd {
	a.picker = newPicker(kind, day, a.catalog)
	a.state = statePicking
	if !a.catalog.Loaded(kind) {
		a.statusMsg = fmt.Sprintf("%s are still loading", kind.Title()+"s")
	}
	return textinput.Blink
}

func (a *App) closePicker() {
	a.picker = nil
	a.state = stateEditing
	a.focusField()
}

func (a *App) updatePicker(msg tea.KeyMsg) tea.Cmd {
	p := a.picker
	switch msg.String() {
	case "esc":
		a.closePicker()
		return nil
	case "up", "ctrl+p":
		if p.cursor > 0 {
			p.cursor--
		}
		return nil
	case "down", "ctrl+n":
		if p.cursor < len(p.results)-1 {
			p.cursor++
		}
		return nil
	case "enter", "tab":
		entry, ok := p.selected()
		if !ok {
			return nil
		}
		a.toggle(entry)
		if p.kind == catalog.KindGuide {
			a.closePicker()
		}
		return nil
	}
	updated, cmd := p.query.Update(msg)
	p.query = updated
	p.refresh(a.catalog)
	return cmd
}

// toggle adds the entry to the picker's target or removes it when it is
// already there.
func (a *App) toggle(entry catalog.Entry) {
	d := a.ctrl.Draft()
	p := a.picker
	switch p.kind {
	case catalog.KindGuide:
		d.SetGuide(entry.ID)
		d.Bind(a.catalog)
		a.statusMsg = fmt.Sprintf("Guide: %s", entry.Label())
	case catalog.KindDestination:
		if a.chosen(entry.ID) {
			d.RemoveDestination(p.day, entry.ID)
			a.statusMsg = fmt.Sprintf("Removed %s from day %d", entry.Label(), p.day+1)
			return
		}
		d.AddDestination(p.day, entry.ID)
		d.Bind(a.catalog)
		a.statusMsg = fmt.Sprintf("Added %s to day %d", entry.Label(), p.day+1)
	case catalog.KindAccommodation:
		if a.chosen(entry.ID) {
			d.RemoveAccommodation(p.day, entry.ID)
			a.statusMsg = fmt.Sprintf("Removed %s from day %d", entry.Label(), p.day+1)
			return
		}
		if !d.AddAccommodation(p.day, entry.ID) {
			a.statusMsg = fmt.Sprintf("Day %d already has the maximum number of accommodations", p.day+1)
			return
		}
		d.Bind(a.catalog)
		a.statusMsg = fmt.Sprintf("Added %s to day %d", entry.Label(), p.day+1)
	}
}

// chosen reports whether id is already selected for the picker's target.
func (a *App) chosen(id string) bool {
	d := a.ctrl.Draft()
	p := a.picker
	if p == nil {
		return false
	}
	if p.kind == catalog.KindGuide {
		return d.Guide().ID == id
	}
	day, ok := d.Day(p.day)
	if !ok {
		return false
	}
	if p.kind == catalog.KindDestination {
		return slices.Contains(day.DestinationIDs(), id)
	}
	return slices.Contains(day.AccommodationIDs(), id)
}
