package services

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"changelens/internal/logger"
	"changelens/pkg/changetypes"
)

// EnvPrefix is the prefix of changelens environment variables.
const EnvPrefix = "CHANGELENS"

// Configuration keys.
const (
	KeyGitHubToken = "github_token"
	KeyGitHubAPI   = "github_api"
	KeyNPMRegistry = "npm_registry"
	KeyConcurrency = "concurrency"
	KeyHTTPTimeout = "http_timeout"
	KeyReportDir   = "report_dir"
	KeyStyle       = "style"
	KeyLevel       = "level"
	KeyScope       = "scope"
	KeyLimit       = "limit"
)

// unprefixedEnv lists well-known variables honoured without the CHANGELENS_ prefix.
var unprefixedEnv = map[string]string{
	"GITHUB_TOKEN": KeyGitHubToken,
	"NPM_REGISTRY": KeyNPMRegistry,
}

// Config is the typed view of the merged configuration.
type Config struct {
	GitHubToken string
	GitHubAPI   string // API root override, empty for api.github.com
	NPMRegistry string
	Concurrency int
	HTTPTimeout time.Duration
	ReportDir   string
	Style       string
	Level       changetypes.Level
	Scope       string
	Limit       int
}

// ConfigPaths represents configuration file paths and their loading status
type ConfigPaths struct {
	ConfigDir       string // Configuration directory path
	ConfigDirExists bool   // Whether configuration directory exists
	ConfigEnvPath   string // Config .env file path
	ConfigEnvLoaded bool   // Whether config .env was loaded
	LocalEnvPath    string // Local .env file path
	LocalEnvLoaded  bool   // Whether local .env was loaded
}

// ConfigurationService layers defaults, .env files, environment variables and bound flags.
// Priority (highest to lowest): flags > environment > local .env > config .env > defaults.
type ConfigurationService struct {
	initialized bool
	v           *viper.Viper
	configDir   string
	workDir     string
	paths       ConfigPaths
}

// NewConfigurationService creates a new ConfigurationService backed by the global viper instance.
func NewConfigurationService() *ConfigurationService {
	return &ConfigurationService{
		initialized: false,
		v:           viper.GetViper(),
	}
}

// Name returns the service name "configuration" for registration.
func (c *ConfigurationService) Name() string {
	return "configuration"
}

// SetConfigDir overrides the user configuration directory.
func (c *ConfigurationService) SetConfigDir(dir string) {
	c.configDir = dir
}

// SetWorkDir overrides the directory searched for the local .env file (default: the current
// working directory).
func (c *ConfigurationService) SetWorkDir(dir string) {
	c.workDir = dir
}

// Initialize loads every configuration layer.
func (c *ConfigurationService) Initialize() error {
	if c.initialized {
		return nil
	}

	c.loadDefaults()

	configDir, err := c.resolveConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve config directory: %w", err)
	}
	c.paths = ConfigPaths{ConfigDir: configDir}
	if info, err := os.Stat(configDir); err == nil && info.IsDir() {
		c.paths.ConfigDirExists = true
	}

	c.paths.ConfigEnvPath = filepath.Join(configDir, ".env")
	loaded, err := c.mergeDotEnv(c.paths.ConfigEnvPath)
	if err != nil {
		return fmt.Errorf("failed to load config .env: %w", err)
	}
	c.paths.ConfigEnvLoaded = loaded

	workDir := c.workDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	c.paths.LocalEnvPath = filepath.Join(workDir, ".env")
	loaded, err = c.mergeDotEnv(c.paths.LocalEnvPath)
	if err != nil {
		return fmt.Errorf("failed to load local .env: %w", err)
	}
	c.paths.LocalEnvLoaded = loaded

	if err := c.bindEnvironment(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}

	c.initialized = true
	logger.Debug("Configuration loaded",
		"config_env", c.paths.ConfigEnvLoaded,
		"local_env", c.paths.LocalEnvLoaded)
	return nil
}

// Config returns the merged configuration.
func (c *ConfigurationService) Config() (Config, error) {
	if !c.initialized {
		return Config{}, fmt.Errorf("configuration service: %w", ErrNotInitialized)
	}

	return Config{
		GitHubToken: c.v.GetString(KeyGitHubToken),
		GitHubAPI:   c.v.GetString(KeyGitHubAPI),
		NPMRegistry: strings.TrimRight(c.v.GetString(KeyNPMRegistry), "/"),
		Concurrency: c.v.GetInt(KeyConcurrency),
		HTTPTimeout: c.v.GetDuration(KeyHTTPTimeout),
		ReportDir:   c.v.GetString(KeyReportDir),
		Style:       c.v.GetString(KeyStyle),
		Level:       changetypes.Level(strings.ToLower(c.v.GetString(KeyLevel))),
		Scope:       c.v.GetString(KeyScope),
		Limit:       c.v.GetInt(KeyLimit),
	}, nil
}

// ValidateConfiguration checks the merged values for consistency.
func (c *ConfigurationService) ValidateConfiguration() error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// GetConfigurationPaths returns the configuration file paths and their loading status.
func (c *ConfigurationService) GetConfigurationPaths() (ConfigPaths, error) {
	if !c.initialized {
		return ConfigPaths{}, fmt.Errorf("configuration service: %w", ErrNotInitialized)
	}
	return c.paths, nil
}

// Validate reports the first invalid value.
func (cfg Config) Validate() error {
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("limit cannot be negative, got %d", cfg.Limit)
	}
	if cfg.Level != "" && (!cfg.Level.IsValid() || cfg.Level == changetypes.LevelNone) {
		return fmt.Errorf("invalid level %q (expected major, minor or patch)", cfg.Level)
	}
	if !isHTTPURL(cfg.NPMRegistry) {
		return fmt.Errorf("invalid npm registry URL %q", cfg.NPMRegistry)
	}
	if cfg.GitHubAPI != "" && !isHTTPURL(cfg.GitHubAPI) {
		return fmt.Errorf("invalid GitHub API URL %q", cfg.GitHubAPI)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (c *ConfigurationService) loadDefaults() {
	c.v.SetDefault(KeyNPMRegistry, "https://registry.npmjs.org")
	c.v.SetDefault(KeyConcurrency, 4)
	c.v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	c.v.SetDefault(KeyReportDir, "changelens-report")
	c.v.SetDefault(KeyStyle, StyleAuto)
	c.v.SetDefault(KeyLimit, 0)
}

// mergeDotEnv merges a .env file into the config layer. A missing file is not an error.
func (c *ConfigurationService) mergeDotEnv(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	values := make(map[string]any, len(envMap))
	for name, value := range envMap {
		if key, ok := envKey(name); ok {
			values[key] = value
		}
	}

	if err := c.v.MergeConfigMap(values); err != nil {
		return false, fmt.Errorf("failed to merge %s: %w", path, err)
	}
	logger.Debug("Loaded .env file", "path", path, "keys", len(values))
	return true, nil
}

func (c *ConfigurationService) bindEnvironment() error {
	c.v.SetEnvPrefix(EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	for name, key := range unprefixedEnv {
		if err := c.v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), name); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConfigurationService) resolveConfigDir() (string, error) {
	if c.configDir != "" {
		return c.configDir, nil
	}
	return GetUserConfigDir()
}

// envKey maps a .env variable name to its configuration key.
func envKey(name string) (string, bool) {
	if key, ok := unprefixedEnv[name]; ok {
		return key, true
	}
	if rest, ok := strings.CutPrefix(name, EnvPrefix+"_"); ok && rest != "" {
		return strings.ToLower(rest), true
	}
	return "", false
}

// GetUserConfigDir returns the changelens configuration directory, honouring XDG_CONFIG_HOME.
func GetUserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "changelens"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "changelens"), nil
}
