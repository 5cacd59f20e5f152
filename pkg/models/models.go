package models

import (
	"fmt"
	"strings"
)

// Severity is the importance level of a log entry
type Severity string

// Severity levels understood by the logs backend
const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// SeverityLevels in display order
var SeverityLevels = []Severity{
	SeverityInfo,
	SeverityWarning,
	SeverityError,
}

// Valid reports whether s is one of the known levels
func (s Severity) Valid() bool {
	for _, level := range SeverityLevels {
		if s == level {
			return true
		}
	}
	return false
}

// ParseSeverity converts a string into a Severity, case-insensitively
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid severity level: %q", raw)
	}
	return s, nil
}

// PayloadType tells how a log entry payload is encoded
type PayloadType string

const (
	PayloadString PayloadType = "STRING"
	PayloadJSON   PayloadType = "JSON"
)

// LogType is the kind of feedback session log being recorded
type LogType string

const (
	LogTypeAccess     LogType = "access"
	LogTypeSubmission LogType = "submission"
)

// Valid reports whether t is a known log type
func (t LogType) Valid() bool {
	return t == LogTypeAccess || t == LogTypeSubmission
}

// DateFormat is a calendar date as entered in the search form
type DateFormat struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// TimeFormat is a wall clock time as entered in the search form
type TimeFormat struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// LocalDateTime is a zone-less date and time
type LocalDateTime struct {
	Date DateFormat
	Time TimeFormat
}

// String formats the value as YYYY-MM-DD HH:MM
func (l LocalDateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d",
		l.Date.Year, l.Date.Month, l.Date.Day, l.Time.Hour, l.Time.Minute)
}

// SearchCriteria is what the user asked for on the logs page
type SearchCriteria struct {
	DateFrom   DateFormat
	TimeFrom   TimeFormat
	DateTo     DateFormat
	TimeTo     TimeFormat
	Severities []Severity
}

// From returns the lower bound of the search period
func (c SearchCriteria) From() LocalDateTime {
	return LocalDateTime{Date: c.DateFrom, Time: c.TimeFrom}
}

// Until returns the upper bound of the search period
func (c SearchCriteria) Until() LocalDateTime {
	return LocalDateTime{Date: c.DateTo, Time: c.TimeTo}
}

// JoinSeverities renders the severity set as a comma separated list
func JoinSeverities(levels []Severity) string {
	parts := make([]string, 0, len(levels))
	for _, level := range levels {
		parts = append(parts, string(level))
	}
	return strings.Join(parts, ",")
}

// QueryParams are the parameters of one logs search request.
// Empty optional fields are not sent.
type QueryParams struct {
	SearchFrom    string // epoch millis
	SearchUntil   string // epoch millis
	Severities    string // comma separated
	MinSeverity   string
	NextPageToken string
	APIEndpoint   string
	TraceID       string
}

// WithPageToken returns a copy of the params carrying the given token
func (p QueryParams) WithPageToken(token string) QueryParams {
	p.NextPageToken = token
	return p
}

// SourceLocation is where a log line was emitted
type SourceLocation struct {
	File     string `json:"file"`
	Line     int64  `json:"line"`
	Function string `json:"function"`
}

// LogPayload is the raw payload of a log entry
type LogPayload struct {
	Type PayloadType `json:"type"`
	Data interface{} `json:"data"`
}

// GeneralLogEntry is a single log entry as returned by the backend
type GeneralLogEntry struct {
	Timestamp      int64                  `json:"timestamp"`
	Severity       Severity               `json:"severity"`
	Payload        LogPayload             `json:"payload"`
	JSONObject     map[string]interface{} `json:"jsonObject,omitempty"`
	SourceLocation SourceLocation         `json:"sourceLocation"`
	Trace          string                 `json:"trace"`
}

// GeneralLogs is one page of log entries
type GeneralLogs struct {
	LogEntries    []GeneralLogEntry `json:"logEntries"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

// LogDetails is the expandable part of a table row
type LogDetails struct {
	SourceLocation SourceLocation `json:"sourceLocation"`
	Trace          string         `json:"trace"`
	Payload        interface{}    `json:"payload"`
}

// LogsTableRowModel is the display projection of a log entry
type LogsTableRowModel struct {
	Timestamp         string
	Severity          Severity
	Summary           string
	HTTPStatus        *int
	ResponseTime      *int64
	Details           LogDetails
	IsDetailsExpanded bool
}

// LogPage is one cached page of formatted rows
type LogPage struct {
	LogResult []LogsTableRowModel
}

// Course is a course known to the current user
type Course struct {
	CourseID   string `json:"courseId"`
	CourseName string `json:"courseName"`
	TimeZone   string `json:"timeZone"`
}

// FeedbackSession is a feedback session belonging to a course
type FeedbackSession struct {
	CourseID            string `json:"courseId"`
	FeedbackSessionName string `json:"feedbackSessionName"`
	TimeZone            string `json:"timeZone,omitempty"`
	Instructions        string `json:"instructions,omitempty"`
}

// SessionKey identifies a feedback session across copies of the struct
type SessionKey struct {
	CourseID            string
	FeedbackSessionName string
}

// Key returns the stable identifier of the session
func (fs FeedbackSession) Key() SessionKey {
	return SessionKey{CourseID: fs.CourseID, FeedbackSessionName: fs.FeedbackSessionName}
}

// CopyCourseModalResult is emitted when the copy course modal is confirmed
type CopyCourseModalResult struct {
	NewCourseID                 string            `json:"newCourseId"`
	NewCourseName               string            `json:"newCourseName"`
	NewTimeZone                 string            `json:"newTimeZone"`
	SelectedFeedbackSessionList []FeedbackSession `json:"selectedFeedbackSessionList"`
	TotalNumberOfSessions       int               `json:"totalNumberOfSessions"`
}

// Student is the student a session log refers to
type Student struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	CourseID string `json:"courseId,omitempty"`
}

// FeedbackSessionLogEntry is one access or submission record
type FeedbackSessionLogEntry struct {
	StudentData            Student `json:"studentData"`
	FeedbackSessionLogType LogType `json:"feedbackSessionLogType"`
	Timestamp              int64   `json:"timestamp"`
}

// FeedbackSessionLog groups log entries of one session
type FeedbackSessionLog struct {
	FeedbackSessionData       FeedbackSession           `json:"feedbackSessionData"`
	FeedbackSessionLogEntries []FeedbackSessionLogEntry `json:"feedbackSessionLogEntries"`
}

// FeedbackSessionLogs is the response of a session log search
type FeedbackSessionLogs struct {
	FeedbackSessionLogs []FeedbackSessionLog `json:"feedbackSessionLogs"`
}
