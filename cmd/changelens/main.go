// Package main provides the changelens CLI application entry point.
// changelens reads the release notes of outdated npm dependencies and sorts every change into
// categories so that upgrades can be reviewed before they are applied.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"changelens/internal/logger"
	"changelens/internal/services"
	"changelens/internal/testutils"
)

var (
	logLevel  string
	logFile   string
	testMode  bool
	configDir string
	noRender  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

// newRootCmd builds the command tree and binds its flags into viper.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "changelens",
		Short: "changelens - release note analysis for dependency updates",
		Long: `changelens fetches the release notes of outdated npm dependencies, categorizes every
change (breaking changes, features, fixes, deprecations, ...) with a confidence score and
writes a report that guides the update decision.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	flags.StringVar(&configDir, "config-dir", "", "Configuration directory [default: ~/.config/changelens]")
	flags.BoolVar(&noRender, "no-render", false, "Print plain markdown instead of rendering it for the terminal")
	flags.String("style", "", "Glamour style for terminal output (auto|dark|light|notty|<path>)")
	flags.String("registry", "", "npm registry URL")

	bindFlag("log-level", flags.Lookup("log-level"))
	bindFlag("log-file", flags.Lookup("log-file"))
	bindFlag("test-mode", flags.Lookup("test-mode"))
	bindFlag(services.KeyStyle, flags.Lookup("style"))
	bindFlag(services.KeyNPMRegistry, flags.Lookup("registry"))

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newSectionsCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag.Name, err)
		os.Exit(1)
	}
}

func initConfig() {
	testutils.SetTestMode(testMode)

	// Configure logger with CLI flags
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// environment holds the initialized services a command works with.
type environment struct {
	config     services.Config
	http       *services.HTTPRequestService
	httpClient *http.Client
	markdown   *services.MarkdownService
}

// initServices registers and initializes the standard services and applies the merged configuration.
// workDir is searched for a local .env file; empty means the current directory.
func initServices(workDir string) (*environment, error) {
	registry := services.NewRegistry()
	if err := services.RegisterDefaults(registry); err != nil {
		return nil, err
	}
	services.SetGlobalRegistry(registry)

	configService, err := services.GetGlobalConfigurationService()
	if err != nil {
		return nil, err
	}
	if configDir != "" {
		configService.SetConfigDir(configDir)
	}
	if workDir != "" {
		configService.SetWorkDir(workDir)
	}

	if err := registry.InitializeAll(); err != nil {
		return nil, err
	}

	// Report where configuration came from before validating it
	if paths, err := configService.GetConfigurationPaths(); err == nil {
		logger.Debug("Configuration sources",
			"config_env", paths.ConfigEnvPath,
			"config_env_loaded", paths.ConfigEnvLoaded,
			"local_env", paths.LocalEnvPath,
			"local_env_loaded", paths.LocalEnvLoaded)
	}
	if err := configService.ValidateConfiguration(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg, err := configService.Config()
	if err != nil {
		return nil, err
	}

	httpService, err := services.GetGlobalHTTPRequestService()
	if err != nil {
		return nil, err
	}
	httpService.SetTimeout(cfg.HTTPTimeout)
	httpClient, err := httpService.Client()
	if err != nil {
		return nil, err
	}

	markdownService, err := services.GetGlobalMarkdownService()
	if err != nil {
		return nil, err
	}
	if err := markdownService.Configure(cfg.Style, 100); err != nil {
		return nil, err
	}

	logger.Info("Services initialized successfully")
	return &environment{
		config:     cfg,
		http:       httpService,
		httpClient: httpClient,
		markdown:   markdownService,
	}, nil
}

// printMarkdown renders markdown for the terminal unless --no-render is set.
func (e *environment) printMarkdown(cmd *cobra.Command, markdown string) error {
	out := cmd.OutOrStdout()
	if noRender {
		_, err := fmt.Fprint(out, markdown)
		return err
	}

	rendered, err := e.markdown.Render(markdown)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
