package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/draft"
	"github.com/kingrea/tourdesk/internal/itinerary"
	"github.com/kingrea/tourdesk/internal/tour"
	"github.com/kingrea/tourdesk/internal/wizard"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6BCB77"))
	activeTab    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Underline(true)
	doneTab      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	idleTab      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	labelStyle   = lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("#AAAAAA"))
	focusLabel   = labelStyle.Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")).Italic(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
)

// View renders the current state to a string.
func (a *App) View() string {
	var body string
	switch a.state {
	case stateLoading:
		body = fmt.Sprintf("%s Loading tour %s...", a.spinner.View(), a.tourID)
	case stateFailed:
		body = errorStyle.Render(fmt.Sprintf("⚠ %v", a.err)) + "\n\n" + mutedStyle.Render("esc to quit")
	case statePicking:
		body = a.renderPicker()
	default:
		body = a.renderStep()
	}
	sections := []string{a.renderHeader(), boxStyle.Render(body), a.renderStatus(), a.renderHelp()}
	if logs := a.renderLogPanel(); logs != "" {
		sections = append(sections, logs)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderHeader() string {
	title := "⬡ NEW TOUR PACKAGE"
	if a.ctrl.Mode() == wizard.ModeEdit {
		title = "⬡ EDIT TOUR PACKAGE"
		if id := a.ctrl.Draft().TourID(); id != "" {
			title += " · " + id
		}
	}
	progress := a.ctrl.Progress()
	tabs := make([]string, 0, len(progress))
	for i, step := range wizard.Steps() {
		mark := "○"
		if progress[i] {
			mark = "✓"
		}
		label := fmt.Sprintf("%d %s %s", i+1, mark, step.Title())
		switch {
		case step == a.ctrl.Current():
			tabs = append(tabs, activeTab.Render(label))
		case progress[i]:
			tabs = append(tabs, doneTab.Render(label))
		default:
			tabs = append(tabs, idleTab.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), strings.Join(tabs, "  "))
}

func (a *App) renderStep() string {
	switch a.ctrl.Current() {
	case wizard.StepBasicInfo:
		return a.renderBasicInfo()
	case wizard.StepGuide:
		return a.renderGuide()
	case wizard.StepItinerary:
		return a.renderItinerary()
	default:
		return a.renderPricing()
	}
}

func (a *App) renderField(field draft.Field, label, value string) string {
	style := labelStyle
	if f, ok := a.focusedField(); ok && f == field {
		style = focusLabel
	}
	line := style.Render(label) + value
	if msg := a.ctrl.Draft().FieldError(field); msg != "" {
		line += "\n" + labelStyle.Render("") + errorStyle.Render(msg)
	}
	return line
}

func (a *App) renderBasicInfo() string {
	d := a.ctrl.Draft()
	difficulty := string(d.Difficulty())
	if difficulty == "" {
		difficulty = mutedStyle.Render("‹ choose ›")
	} else {
		difficulty = "‹ " + difficulty + " ›"
	}
	meal := string(d.MealPlan())
	if meal == "" {
		meal = mutedStyle.Render("‹ choose ›")
	} else {
		meal = "‹ " + meal + " ›"
	}
	return strings.Join([]string{
		a.renderField(draft.FieldName, "Name", a.inputs[draft.FieldName].View()),
		a.renderField(draft.FieldDescription, "Description", a.inputs[draft.FieldDescription].View()),
		a.renderField(draft.FieldDifficulty, "Difficulty", difficulty),
		a.renderField(draft.FieldMealPlan, "Meal plan", meal),
	}, "\n")
}

func (a *App) renderGuide() string {
	d := a.ctrl.Draft()
	value := mutedStyle.Render("none selected · enter to choose")
	if g := d.Guide(); !g.IsZero() {
		value = a.renderRef(catalog.KindGuide, g)
		if entry, ok := a.catalog.Lookup(catalog.KindGuide, g.ID); ok && entry.Subtitle() != "" {
			value += mutedStyle.Render(" · " + entry.Subtitle())
		}
	}
	return a.renderField(draft.FieldGuide, "Tour guide", value)
}

func (a *App) renderItinerary() string {
	d := a.ctrl.Draft()
	lines := []string{fmt.Sprintf("%d day(s)", d.Duration())}
	for i, day := range d.Days() {
		cursor := "  "
		if i == a.dayCursor {
			cursor = cursorStyle.Render("▸ ")
		}
		header := fmt.Sprintf("%sDay %d", cursor, day.Number)
		if !day.Complete() {
			header += errorStyle.Render(" (incomplete)")
		}
		lines = append(lines,
			header,
			"    Destinations:   "+a.renderRefs(catalog.KindDestination, day.Destinations),
			fmt.Sprintf("    Accommodations: %s %s", a.renderRefs(catalog.KindAccommodation, day.Accommodations),
				mutedStyle.Render(fmt.Sprintf("(%d/%d)", len(day.Accommodations), itinerary.MaxAccommodationsPerDay))),
		)
	}
	if msg := d.FieldError(draft.FieldItinerary); msg != "" {
		lines = append(lines, errorStyle.Render(msg))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderPricing() string {
	d := a.ctrl.Draft()
	lines := []string{
		a.renderField(draft.FieldPrice, "Price", a.inputs[draft.FieldPrice].View()),
		a.renderField(draft.FieldMaxParticipants, "Max participants", a.inputs[draft.FieldMaxParticipants].View()),
		"",
		titleStyle.Render("Review"),
		labelStyle.Render("Package") + d.Name(),
		labelStyle.Render("Difficulty") + string(d.Difficulty()),
		labelStyle.Render("Meal plan") + string(d.MealPlan()),
		labelStyle.Render("Guide") + a.renderRef(catalog.KindGuide, d.Guide()),
		labelStyle.Render("Duration") + fmt.Sprintf("%d day(s)", d.Duration()),
	}
	if price, ok := d.Price(); ok {
		lines = append(lines, labelStyle.Render("Price")+tour.FormatPrice(a.locale, a.currency, price))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderRef(kind catalog.Kind, ref catalog.Ref) string {
	if ref.IsZero() {
		return mutedStyle.Render("—")
	}
	label := ref.Display(a.catalog, kind)
	if a.catalog.Loaded(kind) && !a.catalog.Contains(kind, ref.ID) {
		return unknownStyle.Render(label)
	}
	return label
}

func (a *App) renderRefs(kind catalog.Kind, refs []catalog.Ref) string {
	if len(refs) == 0 {
		return mutedStyle.Render("none")
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, a.renderRef(kind, ref))
	}
	return strings.Join(parts, ", ")
}

func (a *App) renderPicker() string {
	p := a.picker
	title := "Choose a tour guide"
	if p.kind != catalog.KindGuide {
		title = fmt.Sprintf("Day %d · %ss", p.day+1, p.kind.Title())
	}
	lines := []string{titleStyle.Render(title), p.query.View()}
	if len(p.results) == 0 {
		note := "No matches"
		if !a.catalog.Loaded(p.kind) {
			note = a.spinner.View() + " loading..."
		}
		lines = append(lines, mutedStyle.Render(note))
	}
	start := 0
	if p.cursor >= pickerRows {
		start = p.cursor - pickerRows + 1
	}
	for i := start; i < len(p.results) && i < start+pickerRows; i++ {
		entry := p.results[i]
		mark := "[ ]"
		if a.chosen(entry.ID) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, entry.Label())
		if sub := entry.Subtitle(); sub != "" {
			line += mutedStyle.Render(" · " + sub)
		}
		if i == p.cursor {
			line = cursorStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderStatus() string {
	status := a.statusMsg
	if a.busy() {
		status = strings.TrimSpace(a.spinner.View() + " " + status)
	}
	if a.err != nil && a.state != stateFailed {
		return errorStyle.Render(status)
	}
	return mutedStyle.Render(status)
}

func (a *App) renderHelp() string {
	var keys []string
	switch {
	case a.state == statePicking:
		keys = []string{"↑/↓ move", "enter toggle", "esc done"}
	case a.ctrl.Current() == wizard.StepItinerary:
		keys = []string{"↑/↓ day", "a add day", "x remove day", "d destinations", "h accommodations"}
	case a.ctrl.Current() == wizard.StepGuide:
		keys = []string{"enter choose", "del clear"}
	default:
		keys = []string{"tab next field", "←/→ choose"}
	}
	if a.state != statePicking {
		keys = append(keys, a.navigationKeys()...)
	}
	if a.ctrl.Mode() == wizard.ModeEdit {
		keys = append(keys, "alt+1-4 jump", "ctrl+s save")
	}
	keys = append(keys, "ctrl+c quit")
	return mutedStyle.Render(strings.Join(keys, " · "))
}

// navigationKeys advertises only the moves the controller would accept.
func (a *App) navigationKeys() []string {
	var keys []string
	if a.ctrl.CanAdvance() {
		if a.ctrl.IsLast() {
			keys = append(keys, "ctrl+n submit")
		} else {
			keys = append(keys, "ctrl+n next")
		}
	}
	if a.ctrl.CanGoBack() {
		keys = append(keys, "ctrl+b back")
	}
	return keys
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(4)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d)", filepath.Base(a.logbook.Path()), total))
	body := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, head, body)
}
