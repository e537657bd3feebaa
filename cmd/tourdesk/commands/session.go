package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/tourdesk/internal/logbook"
	"github.com/kingrea/tourdesk/internal/tui"
)

func newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Compose a new tour package step by step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(func(d *deps, opts []tui.AppOption) *tui.App {
				return tui.NewCreateApp(d.tours, d.catalog, opts...)
			})
		},
	}
}

// edit <id>: open a stored tour with free navigation between steps.
func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <tour-id>",
		Short: "Edit a stored tour package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return runEditor(func(d *deps, opts []tui.AppOption) *tui.App {
				return tui.NewEditApp(id, d.tours, d.catalog, opts...)
			})
		},
	}
}

func runEditor(build func(*deps, []tui.AppOption) *tui.App) error {
	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.close()

	lb, err := logbook.Daily(cfg.LogsDir())
	if err != nil {
		return err
	}
	app := build(d, []tui.AppOption{
		tui.WithLogbook(lb),
		tui.WithDisplay(cfg.Locale(), cfg.Currency()),
		tui.WithRequestTimeout(cfg.BackendTimeout()),
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}
