package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden with -ldflags on release builds.
var version = "0.3.0-dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the flatcat version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "flatcat v%s\n", version)
			return nil
		},
	}
}
