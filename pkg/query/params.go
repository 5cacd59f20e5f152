package query

import (
	"fmt"
	"net/url"

	"github.com/user/course-logs-tui/pkg/models"
)

// Query parameter names of the logs backend
const (
	ParamStartTime     = "startTime"
	ParamEndTime       = "endTime"
	ParamSeverity      = "severity"
	ParamMinSeverity   = "minSeverity"
	ParamNextPageToken = "nextPageToken"
	ParamAPIEndpoint   = "APIEndpoint"
	ParamTraceID       = "traceId"

	ParamCourseID        = "courseid"
	ParamSessionName     = "fsname"
	ParamStudentEmail    = "studentemail"
	ParamSessionLogType  = "fsltype"
	ParamSessionLogStart = "fslstarttime"
	ParamSessionLogEnd   = "fslendtime"
)

// Error types
var (
	ErrMissingTimeRange = fmt.Errorf("search period is required")
	ErrInvalidTimestamp = fmt.Errorf("invalid timestamp")
	ErrMissingCourseID  = fmt.Errorf("course id is required")
	ErrMissingSession   = fmt.Errorf("feedback session name is required")
	ErrMissingStudent   = fmt.Errorf("student email is required")
	ErrInvalidLogType   = fmt.Errorf("invalid feedback session log type")
)

// ValidateParams checks that a logs search can be sent
func ValidateParams(params models.QueryParams) error {
	if params.SearchFrom == "" || params.SearchUntil == "" {
		return ErrMissingTimeRange
	}
	if _, err := ParseMillis(params.SearchFrom); err != nil {
		return err
	}
	if _, err := ParseMillis(params.SearchUntil); err != nil {
		return err
	}
	if _, err := SplitSeverities(params.Severities); err != nil {
		return err
	}
	if params.MinSeverity != "" {
		if _, err := models.ParseSeverity(params.MinSeverity); err != nil {
			return err
		}
	}
	return nil
}

// SearchLogsValues encodes a logs search; unset optional fields are left out
func SearchLogsValues(params models.QueryParams) (url.Values, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set(ParamStartTime, params.SearchFrom)
	values.Set(ParamEndTime, params.SearchUntil)
	setIfPresent(values, ParamSeverity, params.Severities)
	setIfPresent(values, ParamMinSeverity, params.MinSeverity)
	setIfPresent(values, ParamNextPageToken, params.NextPageToken)
	setIfPresent(values, ParamAPIEndpoint, params.APIEndpoint)
	setIfPresent(values, ParamTraceID, params.TraceID)
	return values, nil
}

// CreateSessionLogParams describes a feedback session log to record
type CreateSessionLogParams struct {
	CourseID            string
	FeedbackSessionName string
	StudentEmail        string
	LogType             models.LogType
}

// Values encodes the params; every field is required
func (p CreateSessionLogParams) Values() (url.Values, error) {
	switch {
	case p.CourseID == "":
		return nil, ErrMissingCourseID
	case p.FeedbackSessionName == "":
		return nil, ErrMissingSession
	case p.StudentEmail == "":
		return nil, ErrMissingStudent
	case !p.LogType.Valid():
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogType, p.LogType)
	}

	values := url.Values{}
	values.Set(ParamCourseID, p.CourseID)
	values.Set(ParamSessionName, p.FeedbackSessionName)
	values.Set(ParamStudentEmail, p.StudentEmail)
	values.Set(ParamSessionLogType, string(p.LogType))
	return values, nil
}

// SearchSessionLogParams describes a feedback session log search
type SearchSessionLogParams struct {
	CourseID     string
	SearchFrom   string // epoch millis
	SearchUntil  string // epoch millis
	StudentEmail string
	SessionName  string
}

// Values encodes the params, leaving out the optional filters when empty
func (p SearchSessionLogParams) Values() (url.Values, error) {
	if p.CourseID == "" {
		return nil, ErrMissingCourseID
	}
	if p.SearchFrom == "" || p.SearchUntil == "" {
		return nil, ErrMissingTimeRange
	}

	values := url.Values{}
	values.Set(ParamCourseID, p.CourseID)
	values.Set(ParamSessionLogStart, p.SearchFrom)
	values.Set(ParamSessionLogEnd, p.SearchUntil)
	setIfPresent(values, ParamStudentEmail, p.StudentEmail)
	setIfPresent(values, ParamSessionName, p.SessionName)
	return values, nil
}

func setIfPresent(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}
