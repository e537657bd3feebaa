package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/draft"
	"github.com/kingrea/tourdesk/internal/submission"
	"github.com/kingrea/tourdesk/internal/tour"
	"github.com/kingrea/tourdesk/internal/wizard"
)

// check <tour.json>: hydrate a persisted tour and show what would be sent.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <tour.json>",
		Short: "Validate a stored tour document and print its create and update payloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var persisted tour.Persisted
			if err := json.Unmarshal(data, &persisted); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			d, err := openDeps()
			if err != nil {
				return err
			}
			defer d.close()
			c, err := loadCatalog(cmd.Context(), d.catalog)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}

			r := report{locale: cfg.Locale(), currency: cfg.Currency()}
			return r.write(os.Stdout, draft.Hydrate(persisted), c)
		},
	}
}

type report struct {
	locale   language.Tag
	currency currency.Unit
}

func (r report) write(w io.Writer, d *draft.Draft, c *catalog.Catalog) error {
	d.Bind(c)
	title := d.Name()
	if title == "" {
		title = "(unnamed package)"
	}
	fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", len([]rune(title))))

	fmt.Fprintln(w, "Steps")
	for _, step := range wizard.Steps() {
		mark := "ok"
		if !wizard.Complete(step, d) {
			mark = "incomplete"
		}
		fmt.Fprintf(w, "  %-12s %s\n", step.Title(), mark)
		issues := wizard.Issues(step, d)
		for _, field := range slices.Sorted(maps.Keys(issues)) {
			fmt.Fprintf(w, "    - %s: %s\n", field, issues[field])
		}
	}

	fmt.Fprintln(w, "\nReferences")
	guide := "(none)"
	if !d.Guide().IsZero() {
		guide = d.Guide().Display(c, catalog.KindGuide)
	}
	fmt.Fprintf(w, "  Guide: %s\n", guide)
	for _, day := range d.Days() {
		fmt.Fprintf(w, "  Day %d\n", day.Number)
		fmt.Fprintf(w, "    destinations:   %s\n", labels(c, catalog.KindDestination, day.Destinations))
		fmt.Fprintf(w, "    accommodations: %s\n", labels(c, catalog.KindAccommodation, day.Accommodations))
	}
	if price, ok := d.Price(); ok {
		fmt.Fprintf(w, "  Price: %s\n", tour.FormatPrice(r.locale, r.currency, price))
	}

	create, createDiags := submission.Create(d)
	if err := writePayload(w, "Create payload", create, createDiags); err != nil {
		return err
	}
	update, updateDiags := submission.Update(d)
	return writePayload(w, "Update payload", update, updateDiags)
}

func labels(c *catalog.Catalog, kind catalog.Kind, refs []catalog.Ref) string {
	if len(refs) == 0 {
		return "(none)"
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Display(c, kind))
	}
	return strings.Join(out, ", ")
}

func writePayload(w io.Writer, heading string, payload any, diags []submission.Diagnostic) error {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", strings.ToLower(heading), err)
	}
	fmt.Fprintf(w, "\n%s\n%s\n", heading, body)
	for _, diag := range diags {
		fmt.Fprintf(w, "  warning: %s\n", diag)
	}
	return nil
}
