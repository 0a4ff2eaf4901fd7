package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"changelens/internal/version"
)

func newVersionCmd() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show build and platform details")
	return cmd
}
