package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"changelens/internal/categorize"
	"changelens/internal/logger"
)

func newSectionsCmd() *cobra.Command {
	var pkgName string

	cmd := &cobra.Command{
		Use:   "sections <file|->",
		Short: "Categorize a JSON document of section headings to sentence lists",
		Long: `Read a JSON object mapping each section heading to its list of sentences and print the
categorized results as JSON. Use '-' to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read sections: %w", err)
			}

			categorizer, err := categorize.NewDefault(logger.NewStyledLogger("Categorizer"))
			if err != nil {
				return err
			}
			analysis, err := categorizer.AnalyzeJSON(pkgName, data)
			if err != nil {
				return err
			}
			return writeJSON(cmd, analysis)
		},
	}

	cmd.Flags().StringVar(&pkgName, "package", "local", "Package name used in diagnostics")
	return cmd
}
