package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. COURSELOGS_BACKEND_URL
const EnvPrefix = "COURSELOGS_"

const appDirName = "course-logs-tui"

// Config represents application configuration
type Config struct {
	Source              string `json:"source" koanf:"source" validate:"oneof=http gcp demo"`
	BackendURL          string `json:"backendUrl,omitempty" koanf:"backend_url" validate:"required_if=Source http,omitempty,url"`
	LogsEndpoint        string `json:"logsEndpoint" koanf:"logs_endpoint" validate:"required,startswith=/"`
	SessionLogsEndpoint string `json:"sessionLogsEndpoint" koanf:"session_logs_endpoint" validate:"required,startswith=/"`
	AuthToken           string `json:"authToken,omitempty" koanf:"auth_token"`
	TimeoutSeconds      int    `json:"timeoutSeconds" koanf:"timeout_seconds" validate:"gte=0"`
	Timezone            string `json:"timezone,omitempty" koanf:"timezone" validate:"omitempty,timezone"`
	LogsRetentionDays   int    `json:"logsRetentionDays" koanf:"logs_retention_days" validate:"gte=1"`
	GCPProject          string `json:"gcpProject,omitempty" koanf:"gcp_project"`
	CredentialsFile     string `json:"credentialsFile,omitempty" koanf:"credentials_file"`
	GCPPageSize         int    `json:"gcpPageSize" koanf:"gcp_page_size" validate:"gte=1,lte=1000"`
	LogLevel            string `json:"logLevel" koanf:"log_level" validate:"oneof=trace debug info warn error disabled"`
	VimMode             bool   `json:"vimMode" koanf:"vim_mode"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		Source:              "http",
		BackendURL:          "http://localhost:8080",
		LogsEndpoint:        "/webapi/logs",
		SessionLogsEndpoint: "/webapi/sessionlogs",
		TimeoutSeconds:      0,
		LogsRetentionDays:   30,
		GCPPageSize:         50,
		LogLevel:            "info",
		VimMode:             true,
	}
}

// Timeout returns the configured client-side timeout; zero means none
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetentionPeriod returns how far back logs can be searched
func (c Config) RetentionPeriod() time.Duration {
	return time.Duration(c.LogsRetentionDays) * 24 * time.Hour
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/course-logs-tui, or
// ~/.config/course-logs-tui, creating it if needed
func GetConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// LoadConfig loads the config file, applies environment overrides and validates.
// A missing file yields the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if _, err := readFile(configFile, &cfg); err != nil {
		return DefaultConfig(), err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return DefaultConfig(), err
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// ApplyEnv overlays COURSELOGS_* environment variables onto cfg.
// Keys that are not set keep their current value.
func ApplyEnv(cfg *Config) error {
	k := koanf.New(".")
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return fmt.Errorf("could not load environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return fmt.Errorf("could not apply environment: %w", err)
	}
	return nil
}

// SaveConfig writes cfg to config.json
func SaveConfig(cfg Config) error {
	return writeFile(configFile, cfg)
}

// State is what the TUI remembers between runs
type State struct {
	LastSeverities []string  `json:"lastSeverities,omitempty"`
	LastTimezone   string    `json:"lastTimezone,omitempty"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// LoadState reads state.json. Without one the state is empty.
func LoadState() (State, error) {
	var state State
	found, err := readFile(stateFile, &state)
	if err != nil {
		return State{}, err
	}
	if !found {
		state.LastUpdated = time.Now()
	}
	return state, nil
}

// SaveState stamps and writes state.json
func SaveState(state State) error {
	state.LastUpdated = time.Now()
	return writeFile(stateFile, state)
}
