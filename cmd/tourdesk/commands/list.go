package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kingrea/tourdesk/internal/tour"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tour packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDeps()
			if err != nil {
				return err
			}
			defer d.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.BackendTimeout())
			defer cancel()
			tours, err := d.tours.List(ctx)
			if err != nil {
				return err
			}
			if len(tours) == 0 {
				fmt.Println("No tours stored yet.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDAYS\tPRICE\tDIFFICULTY")
			for _, t := range tours {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					t.ID, t.Name, len(t.DailyItineraries),
					tour.FormatPrice(cfg.Locale(), cfg.Currency(), t.Price.Value), t.Difficulty)
			}
			return w.Flush()
		},
	}
}
