package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/submission"
	"github.com/kingrea/tourdesk/internal/tour"
	"github.com/kingrea/tourdesk/internal/wizard"
)

type submitAction string

const (
	actionCreate submitAction = "create"
	actionUpdate submitAction = "update"
)

type catalogLoadedMsg struct {
	kind    catalog.Kind
	entries []catalog.Entry
	err     error
}

type tourLoadedMsg struct {
	tour tour.Persisted
	err  error
}

type submitFinishedMsg struct {
	action submitAction
	saved  tour.Persisted
	err    error
}

// loadCatalogs issues one independent request per collection. A reload
// while a previous one is in flight races; whichever answer arrives last
// wins.
func (a *App) loadCatalogs() tea.Cmd {
	if a.source == nil {
		return nil
	}
	kinds := catalog.Kinds()
	cmds := make([]tea.Cmd, 0, len(kinds)+1)
	for _, kind := range kinds {
		cmds = append(cmds, a.loadCatalog(kind))
	}
	a.pending += len(kinds)
	cmds = append(cmds, a.spinner.Tick)
	return tea.Batch(cmds...)
}

func (a *App) loadCatalog(kind catalog.Kind) tea.Cmd {
	src, timeout := a.source, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		entries, err := src.Load(ctx, kind)
		return catalogLoadedMsg{kind: kind, entries: entries, err: err}
	}
}

func (a *App) loadTour(id string) tea.Cmd {
	tr, timeout := a.transport, a.timeout
	load := func() tea.Msg {
		if tr == nil {
			return tourLoadedMsg{err: fmt.Errorf("no backend configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		t, err := tr.Get(ctx, id)
		return tourLoadedMsg{tour: t, err: err}
	}
	return tea.Batch(load, a.spinner.Tick)
}

// startSubmit normalizes the draft now and sends the payload in the
// background. The draft is not touched until the answer arrives.
func (a *App) startSubmit() tea.Cmd {
	if a.submitting {
		a.statusMsg = "Submission already in progress"
		return nil
	}
	if a.transport == nil {
		a.statusMsg = "No backend configured"
		return nil
	}
	d := a.ctrl.Draft()
	tr, timeout := a.transport, a.timeout
	var send func(ctx context.Context) (tour.Persisted, error)
	action := actionCreate
	if a.ctrl.Mode() == wizard.ModeEdit && d.Persisted() {
		action = actionUpdate
		payload, diags := submission.Update(d)
		a.logDiagnostics(diags)
		id := d.TourID()
		send = func(ctx context.Context) (tour.Persisted, error) { return tr.Update(ctx, id, payload) }
	} else {
		payload, diags := submission.Create(d)
		a.logDiagnostics(diags)
		send = func(ctx context.Context) (tour.Persisted, error) { return tr.Create(ctx, payload) }
	}
	a.submitting = true
	a.statusMsg = "Submitting..."
	a.logInfo("Submit · %s requested", action)
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		saved, err := send(ctx)
		return submitFinishedMsg{action: action, saved: saved, err: err}
	}
	return tea.Batch(run, a.spinner.Tick)
}

func (a *App) logDiagnostics(diags []submission.Diagnostic) {
	for _, diag := range diags {
		a.logWarn("Submit · %s", diag)
	}
}
