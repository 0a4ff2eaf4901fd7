package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"changelens/internal/categorize"
	"changelens/internal/logger"
	"changelens/internal/pipeline"
	"changelens/internal/report"
	"changelens/pkg/changetypes"
)

type analyzeOutput struct {
	Analysis *changetypes.Analysis   `json:"analysis"`
	Terms    []changetypes.RankedTerm `json:"terms"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		pkgName string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Categorize a local markdown or HTML changelog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			name := pkgName
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			env, err := initServices("")
			if err != nil {
				return err
			}
			categorizer, err := categorize.NewDefault(logger.NewStyledLogger("Categorizer"))
			if err != nil {
				return err
			}

			notes := []changetypes.ReleaseNote{{Body: string(data), Source: "local"}}
			analysis, terms := pipeline.Analyze(categorizer, name, notes, pipeline.DefaultTermLimit)

			if asJSON {
				return writeJSON(cmd, analyzeOutput{Analysis: analysis, Terms: terms})
			}
			return env.printMarkdown(cmd, report.PackageMarkdown(changetypes.PackageReport{
				Package:  changetypes.OutdatedPackage{Name: name},
				Notes:    notes,
				Analysis: analysis,
				Terms:    terms,
			}))
		},
	}

	cmd.Flags().StringVar(&pkgName, "package", "", "Package name used in the output [default: file name]")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
