package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/tourdesk/internal/config"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the .tourdesk directory with default config and a sample catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := projectDir
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				dir = wd
			}
			if err := config.InitDir(dir); err != nil {
				return err
			}
			fmt.Printf("Initialized %s\n", filepath.Join(dir, config.Dir))
			return nil
		},
	}
}
