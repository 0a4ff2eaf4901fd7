package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"changelens/internal/categorize"
	"changelens/internal/github"
	"changelens/internal/logger"
	"changelens/internal/npm"
	"changelens/internal/pipeline"
	"changelens/internal/report"
	"changelens/internal/services"
	"changelens/pkg/changetypes"
)

func newCheckCmd() *cobra.Command {
	var (
		outdatedFile   string
		failOnBreaking bool
	)

	cmd := &cobra.Command{
		Use:   "check [project-dir]",
		Short: "Analyze the release notes of outdated npm dependencies",
		Long: `Run 'npm outdated --json' in the project directory (or read its output from
--outdated-file), fetch the release notes of every selected package and write a report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runCheck(cmd, dir, outdatedFile, failOnBreaking)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&outdatedFile, "outdated-file", "", "Read 'npm outdated --json' output from a file instead of running npm")
	flags.BoolVar(&failOnBreaking, "fail-on-breaking", false, "Exit with an error when any package has breaking changes")
	flags.String("level", "", "Minimum update level to analyze (major|minor|patch)")
	flags.String("scope", "", "Only analyze packages whose name matches this glob (e.g. '@babel/*')")
	flags.Int("limit", 0, "Maximum number of packages to analyze (0 for all)")
	flags.Int("concurrency", 0, "Number of packages analyzed in parallel [default: 4]")
	flags.String("report-dir", "", "Directory for report.md and summary.json [default: changelens-report]")

	bindFlag(services.KeyLevel, flags.Lookup("level"))
	bindFlag(services.KeyScope, flags.Lookup("scope"))
	bindFlag(services.KeyLimit, flags.Lookup("limit"))
	bindFlag(services.KeyConcurrency, flags.Lookup("concurrency"))
	bindFlag(services.KeyReportDir, flags.Lookup("report-dir"))

	return cmd
}

func runCheck(cmd *cobra.Command, dir, outdatedFile string, failOnBreaking bool) error {
	env, err := initServices(dir)
	if err != nil {
		return err
	}
	cfg := env.config
	ctx := cmd.Context()

	packages, err := loadOutdated(ctx, dir, outdatedFile)
	if err != nil {
		return err
	}

	categorizer, err := categorize.NewDefault(logger.NewStyledLogger("Categorizer"))
	if err != nil {
		return err
	}

	releases := github.NewClient(ctx, env.httpClient, cfg.GitHubToken)
	if cfg.GitHubAPI != "" {
		if releases, err = releases.WithBaseURL(cfg.GitHubAPI); err != nil {
			return err
		}
	}

	p := pipeline.New(npm.NewClient(cfg.NPMRegistry, env.http), releases, categorizer, pipeline.Options{
		Level:       cfg.Level,
		Scope:       cfg.Scope,
		Limit:       cfg.Limit,
		Concurrency: cfg.Concurrency,
	})

	run, runErr := p.Run(ctx, packages)
	if run == nil {
		return runErr
	}

	bundle, err := report.WriteBundle(cfg.ReportDir, *run)
	if err != nil {
		return err
	}

	if err := env.printMarkdown(cmd, report.Markdown(*run)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", bundle.ReportPath)

	if runErr != nil {
		return runErr
	}
	if failOnBreaking {
		if n := countBreaking(run); n > 0 {
			return fmt.Errorf("%d package(s) with breaking changes", n)
		}
	}
	return nil
}

func loadOutdated(ctx context.Context, dir, outdatedFile string) ([]changetypes.OutdatedPackage, error) {
	if outdatedFile == "" {
		return npm.RunOutdated(ctx, dir)
	}

	data, err := os.ReadFile(outdatedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read outdated file: %w", err)
	}
	return npm.ParseOutdated(data)
}

func countBreaking(run *changetypes.Run) int {
	n := 0
	for _, r := range run.Packages {
		if r.HasBreakingChanges() {
			n++
		}
	}
	return n
}
