package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/draft"
	"github.com/kingrea/tourdesk/internal/tour"
	"github.com/kingrea/tourdesk/internal/wizard"
)

func newInputs() map[draft.Field]*textinput.Model {
	specs := []struct {
		field       draft.Field
		placeholder string
		limit       int
	}{
		{draft.FieldName, "Annapurna Base Camp Trek", 120},
		{draft.FieldDescription, "What makes this package special", 500},
		{draft.FieldPrice, "1299.00", 16},
		{draft.FieldMaxParticipants, "12", 6},
	}
	inputs := make(map[draft.Field]*textinput.Model, len(specs))
	for _, spec := range specs {
		ti := textinput.New()
		ti.Placeholder = spec.placeholder
		ti.CharLimit = spec.limit
		ti.Width = 48
		ti.Prompt = ""
		inputs[spec.field] = &ti
	}
	return inputs
}

// stepFields lists the focusable fields of a form step in order.
func stepFields(step wizard.Step) []draft.Field {
	switch step {
	case wizard.StepBasicInfo:
		return []draft.Field{draft.FieldName, draft.FieldDescription, draft.FieldDifficulty, draft.FieldMealPlan}
	case wizard.StepPricing:
		return []draft.Field{draft.FieldPrice, draft.FieldMaxParticipants}
	default:
		return nil
	}
}

func (a *App) focusedField() (draft.Field, bool) {
	fields := stepFields(a.ctrl.Current())
	if len(fields) == 0 {
		return "", false
	}
	if a.focus < 0 || a.focus >= len(fields) {
		a.focus = 0
	}
	return fields[a.focus], true
}

func (a *App) focusField() {
	for _, in := range a.inputs {
		in.Blur()
	}
	if field, ok := a.focusedField(); ok {
		if in, ok := a.inputs[field]; ok {
			in.Focus()
		}
	}
}

// syncInputs copies the draft's values into the text inputs.
func (a *App) syncInputs() {
	d := a.ctrl.Draft()
	a.inputs[draft.FieldName].SetValue(d.Name())
	a.inputs[draft.FieldDescription].SetValue(d.Description())
	a.inputs[draft.FieldPrice].SetValue(d.PriceText())
	a.inputs[draft.FieldMaxParticipants].SetValue(d.MaxParticipantsText())
}

func (a *App) moveFocus(delta int) {
	fields := stepFields(a.ctrl.Current())
	if len(fields) == 0 {
		return
	}
	a.focus = (a.focus + delta + len(fields)) % len(fields)
	a.focusField()
}

func (a *App) updateForm(msg tea.KeyMsg) tea.Cmd {
	field, ok := a.focusedField()
	if !ok {
		return nil
	}
	switch msg.String() {
	case "tab", "down":
		a.moveFocus(1)
		return nil
	case "shift+tab", "up":
		a.moveFocus(-1)
		return nil
	case "enter":
		if a.focus == len(stepFields(a.ctrl.Current()))-1 {
			return a.next()
		}
		a.moveFocus(1)
		return nil
	}

	d := a.ctrl.Draft()
	switch field {
	case draft.FieldDifficulty:
		if step := choiceStep(msg); step != 0 {
			d.SetDifficulty(cycle(tour.Difficulties(), d.Difficulty(), step))
		}
		return nil
	case draft.FieldMealPlan:
		if step := choiceStep(msg); step != 0 {
			d.SetMealPlan(cycle(tour.MealPlans(), d.MealPlan(), step))
		}
		return nil
	}

	in, ok := a.inputs[field]
	if !ok {
		return nil
	}
	updated, cmd := in.Update(msg)
	*in = updated
	a.applyInput(field, in.Value())
	return cmd
}

// applyInput writes a changed input back to the draft. Unchanged values are
// skipped so navigation keys do not clear a recorded error.
func (a *App) applyInput(field draft.Field, value string) {
	d := a.ctrl.Draft()
	switch field {
	case draft.FieldName:
		if value != d.Name() {
			d.SetName(value)
		}
	case draft.FieldDescription:
		if value != d.Description() {
			d.SetDescription(value)
		}
	case draft.FieldPrice:
		if value != d.PriceText() {
			d.SetPrice(value)
		}
	case draft.FieldMaxParticipants:
		if value != d.MaxParticipantsText() {
			d.SetMaxParticipants(value)
		}
	}
}

func choiceStep(msg tea.KeyMsg) int {
	switch msg.String() {
	case "right", "l", " ":
		return 1
	case "left", "h":
		return -1
	}
	return 0
}

// cycle moves through options; from an unset value it lands on the first or
// last option depending on direction.
func cycle[T comparable](options []T, current T, step int) T {
	idx := -1
	for i, opt := range options {
		if opt == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step > 0 {
			return options[0]
		}
		return options[len(options)-1]
	}
	return options[(idx+step+len(options))%len(options)]
}

func (a *App) updateGuideStep(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "g", "/":
		return a.openPicker(catalog.KindGuide, 0)
	case "backspace", "delete":
		if !a.ctrl.Draft().Guide().IsZero() {
			a.ctrl.Draft().ClearGuide()
			a.statusMsg = "Guide cleared"
		}
	}
	return nil
}

func (a *App) updateItineraryStep(msg tea.KeyMsg) tea.Cmd {
	d := a.ctrl.Draft()
	switch msg.String() {
	case "up", "k":
		if a.dayCursor > 0 {
			a.dayCursor--
		}
	case "down", "j":
		if a.dayCursor < d.Duration()-1 {
			a.dayCursor++
		}
	case "a":
		a.dayCursor = d.AddDay()
		a.statusMsg = fmt.Sprintf("Added day %d", a.dayCursor+1)
	case "x":
		if !d.RemoveDay(a.dayCursor) {
			a.statusMsg = "A package needs at least one day"
			return nil
		}
		a.statusMsg = fmt.Sprintf("Removed day %d", a.dayCursor+1)
		if a.dayCursor >= d.Duration() {
			a.dayCursor = d.Duration() - 1
		}
	case "d", "enter":
		return a.openPicker(catalog.KindDestination, a.dayCursor)
	case "h":
		return a.openPicker(catalog.KindAccommodation, a.dayCursor)
	}
	return nil
}
