package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/user/course-logs-tui/pkg/applog"
	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/query"
)

type sessionLogFlags struct {
	courseID string
	session  string
	student  string
	logType  string
	from     string
	until    string
}

func newSessionLogsCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session-logs",
		Short: "Record and search feedback session logs",
	}
	cmd.AddCommand(newSessionLogsSearchCmd(root), newSessionLogsCreateCmd(root))
	return cmd
}

func newSessionLogsSearchCmd(root *rootFlags) *cobra.Command {
	flags := &sessionLogFlags{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the access and submission logs of a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			zone := displayZone(cfg, savedZone())
			from, err := parseTimeFlag(flags.from, zone)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			until, err := parseTimeFlag(flags.until, zone)
			if err != nil {
				return fmt.Errorf("--until: %w", err)
			}

			client, err := newServiceClient(cfg, cliLogger(cfg.LogLevel))
			if err != nil {
				return err
			}
			logs, err := client.SearchFeedbackSessionLogs(cmd.Context(), query.SearchSessionLogParams{
				CourseID:     flags.courseID,
				SearchFrom:   from,
				SearchUntil:  until,
				StudentEmail: flags.student,
				SessionName:  flags.session,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), logs)
		},
	}

	cmd.Flags().StringVarP(&flags.courseID, "course", "c", "", "Course ID")
	cmd.Flags().StringVar(&flags.from, "from", "", "Start of the period: epoch millis, RFC3339 or YYYY-MM-DD HH:MM")
	cmd.Flags().StringVar(&flags.until, "until", "", "End of the period: epoch millis, RFC3339 or YYYY-MM-DD HH:MM")
	cmd.Flags().StringVar(&flags.student, "student", "", "Only logs of this student email")
	cmd.Flags().StringVar(&flags.session, "session", "", "Only logs of this feedback session")
	cmd.MarkFlagRequired("course")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("until")
	return cmd
}

func newSessionLogsCreateCmd(root *rootFlags) *cobra.Command {
	flags := &sessionLogFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record that a student accessed or submitted a feedback session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			client, err := newServiceClient(cfg, cliLogger(cfg.LogLevel))
			if err != nil {
				return err
			}
			message, err := client.CreateFeedbackSessionLog(cmd.Context(), query.CreateSessionLogParams{
				CourseID:            flags.courseID,
				FeedbackSessionName: flags.session,
				StudentEmail:        flags.student,
				LogType:             models.LogType(strings.ToLower(flags.logType)),
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"message": message})
		},
	}

	cmd.Flags().StringVarP(&flags.courseID, "course", "c", "", "Course ID")
	cmd.Flags().StringVar(&flags.session, "session", "", "Feedback session name")
	cmd.Flags().StringVar(&flags.student, "student", "", "Student email")
	cmd.Flags().StringVarP(&flags.logType, "type", "t", string(models.LogTypeAccess), "Log type: access or submission")
	cmd.MarkFlagRequired("course")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("student")
	return cmd
}

// cliLogger logs to stderr so stdout stays valid JSON
func cliLogger(level string) zerolog.Logger {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return applog.Console(lvl)
}

// parseTimeFlag converts a time flag to epoch millis. Values without a
// zone are read in zone.
func parseTimeFlag(raw, zone string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", query.ErrMissingTimeRange
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return raw, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return strconv.FormatInt(t.UnixMilli(), 10), nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("unknown time zone %q", zone)
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", raw, loc)
	if err != nil {
		return "", fmt.Errorf("invalid time %q", raw)
	}
	return strconv.FormatInt(t.UnixMilli(), 10), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
