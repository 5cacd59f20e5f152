package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/user/course-logs-tui/pkg/applog"
	"github.com/user/course-logs-tui/pkg/auth"
	"github.com/user/course-logs-tui/pkg/config"
	"github.com/user/course-logs-tui/pkg/demo"
	"github.com/user/course-logs-tui/pkg/gcp"
	"github.com/user/course-logs-tui/pkg/logservice"
	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/timezone"
	"github.com/user/course-logs-tui/pkg/ui"
)

// demoEntryCount is the number of generated entries served in demo mode
const demoEntryCount = 500

type rootFlags struct {
	source      string
	backendURL  string
	authToken   string
	zone        string
	project     string
	credentials string
	logLevel    string
	exportDir   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "course-logs",
		Short: "Browse course management logs in the terminal",
		Long: `Search, page through and inspect the logs of the course management
backend, and copy courses with their feedback sessions.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg, flags.exportDir)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.source, "source", "s", "", "Log source: http, gcp or demo")
	pf.StringVarP(&flags.backendURL, "backend", "b", "", "Backend base URL")
	pf.StringVar(&flags.authToken, "token", "", "Bearer token sent to the backend")
	pf.StringVarP(&flags.zone, "timezone", "z", "", "Zone used for the search form and timestamps")
	pf.StringVarP(&flags.project, "project", "p", "", "GCP project for --source gcp")
	pf.StringVar(&flags.credentials, "credentials", "", "Service account key file for --source gcp")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&flags.exportDir, "export-dir", ".", "Directory exported pages are written to")

	rootCmd.AddCommand(newSessionLogsCmd(flags))
	return rootCmd
}

// loadConfig reads the config file and environment, then applies flags
func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, flags, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// applyFlags overrides cfg with the flags set on the command line
func applyFlags(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) {
	set := func(name, value string, target *string) {
		if cmd.Flags().Changed(name) {
			*target = value
		}
	}
	set("source", flags.source, &cfg.Source)
	set("backend", flags.backendURL, &cfg.BackendURL)
	set("token", flags.authToken, &cfg.AuthToken)
	set("timezone", flags.zone, &cfg.Timezone)
	set("project", flags.project, &cfg.GCPProject)
	set("credentials", flags.credentials, &cfg.CredentialsFile)
	set("log-level", flags.logLevel, &cfg.LogLevel)
}

func runTUI(ctx context.Context, cfg config.Config, exportDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	logger, closer, err := applog.New(cfg.LogLevel, configDir)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()

	state, err := config.LoadState()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load state")
		state = config.State{}
	}

	zone := displayZone(cfg, state.LastTimezone)
	searcher, cleanup, err := newSearcher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	catalog, err := config.LoadCourseCatalog()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load course catalog")
		catalog = config.CourseCatalog{}
	}
	if len(catalog.Courses) == 0 && cfg.Source == "demo" {
		catalog = demo.SampleCatalog(time.Now())
	}

	app := ui.NewApp(ui.AppOptions{
		Searcher:   searcher,
		Resolver:   timezone.NewLocalResolver(),
		Zone:       zone,
		Retention:  cfg.RetentionPeriod(),
		VimMode:    cfg.VimMode,
		Severities: savedSeverities(state, logger),
		Catalog:    catalog,
		Logger:     logger,
	})
	app.SetExportDir(exportDir)
	app.SetStatePersistFn(func(levels []models.Severity) error {
		state.LastSeverities = make([]string, 0, len(levels))
		for _, level := range levels {
			state.LastSeverities = append(state.LastSeverities, string(level))
		}
		state.LastTimezone = zone
		return config.SaveState(state)
	})
	app.SetCatalogPersistFn(config.SaveCourseCatalog)

	logger.Info().Str("source", cfg.Source).Str("zone", zone).Msg("starting")
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// displayZone is the configured zone, then the zone of the last session,
// then the guessed one
func displayZone(cfg config.Config, lastZone string) string {
	if strings.TrimSpace(cfg.Timezone) != "" {
		return cfg.Timezone
	}
	if lastZone != "" {
		if _, err := time.LoadLocation(lastZone); err == nil {
			return lastZone
		}
	}
	return timezone.GuessTimezone()
}

// savedZone returns the zone remembered from the last TUI session
func savedZone() string {
	state, err := config.LoadState()
	if err != nil {
		return ""
	}
	return state.LastTimezone
}

// newSearcher builds the log source selected by cfg.Source
func newSearcher(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ui.LogSearcher, func(), error) {
	noop := func() {}
	switch cfg.Source {
	case "demo":
		return demo.NewGeneratedBackend(time.Now(), demoEntryCount, demo.DefaultPageSize), noop, nil
	case "gcp":
		project := cfg.GCPProject
		if project == "" {
			project = getGcloudProject()
		}
		client, err := auth.NewClient(ctx, project, cfg.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		searcher := gcp.NewLogsClient(client.Admin(), client.ProjectID(), cfg.GCPPageSize, cfg.Timeout(), logger)
		return searcher, func() { client.Close() }, nil
	default:
		client, err := newServiceClient(cfg, logger)
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil
	}
}

func newServiceClient(cfg config.Config, logger zerolog.Logger) (*logservice.Client, error) {
	return logservice.NewClient(logservice.Options{
		BaseURL:             cfg.BackendURL,
		LogsEndpoint:        cfg.LogsEndpoint,
		SessionLogsEndpoint: cfg.SessionLogsEndpoint,
		AuthToken:           cfg.AuthToken,
		Timeout:             cfg.Timeout(),
		Logger:              logger,
	})
}

// savedSeverities restores the severity filter of the last session
func savedSeverities(state config.State, logger zerolog.Logger) []models.Severity {
	var levels []models.Severity
	for _, raw := range state.LastSeverities {
		level, err := models.ParseSeverity(raw)
		if err != nil {
			logger.Warn().Str("severity", raw).Msg("ignoring saved severity")
			continue
		}
		levels = append(levels, level)
	}
	return levels
}

// getGcloudProject reads the default project from gcloud config
func getGcloudProject() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	configPath := filepath.Join(home, ".config", "gcloud", "configurations", "config_default")
	data, err := os.ReadFile(configPath)
	if err != nil {
		configPath = filepath.Join(home, ".config", "gcloud", "properties")
		data, err = os.ReadFile(configPath)
		if err != nil {
			return ""
		}
	}
	return parseGcloudProject(string(data))
}

// parseGcloudProject finds the project key in a gcloud properties file
func parseGcloudProject(contents string) string {
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "project") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.TrimSpace(parts[0]) != "project" {
			continue
		}
		if project := strings.TrimSpace(parts[1]); project != "" {
			return project
		}
	}
	return ""
}
