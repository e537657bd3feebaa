package main

import (
	"os"

	"github.com/kingrea/tourdesk/cmd/tourdesk/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
