package logservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/query"
)

// Default resource endpoints of the backend
const (
	DefaultLogsEndpoint        = "/webapi/logs"
	DefaultSessionLogsEndpoint = "/webapi/sessionlogs"
)

// HTTPDoer is the subset of *http.Client the service needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client
type Options struct {
	BaseURL             string
	LogsEndpoint        string
	SessionLogsEndpoint string
	AuthToken           string
	Timeout             time.Duration // 0 disables the client-side timeout
	HTTPClient          HTTPDoer
	Logger              zerolog.Logger
}

// Client issues log related requests to the course-management backend
type Client struct {
	baseURL             *url.URL
	logsEndpoint        string
	sessionLogsEndpoint string
	authToken           string
	timeout             time.Duration
	http                HTTPDoer
	logger              zerolog.Logger
}

// APIError is a failed backend call; Message is meant for the user
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrNoBaseURL is returned when no backend URL is configured
var ErrNoBaseURL = errors.New("backend URL is not configured")

// NewClient creates a new log service client
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme and host are required", opts.BaseURL)
	}

	if opts.LogsEndpoint == "" {
		opts.LogsEndpoint = DefaultLogsEndpoint
	}
	if opts.SessionLogsEndpoint == "" {
		opts.SessionLogsEndpoint = DefaultSessionLogsEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	return &Client{
		baseURL:             base,
		logsEndpoint:        opts.LogsEndpoint,
		sessionLogsEndpoint: opts.SessionLogsEndpoint,
		authToken:           opts.AuthToken,
		timeout:             opts.Timeout,
		http:                opts.HTTPClient,
		logger:              opts.Logger,
	}, nil
}

// SearchLogs fetches one page of general logs. It does not retry.
func (c *Client) SearchLogs(ctx context.Context, params models.QueryParams) (models.GeneralLogs, error) {
	values, err := query.SearchLogsValues(params)
	if err != nil {
		return models.GeneralLogs{}, err
	}

	var out models.GeneralLogs
	if err := c.do(ctx, http.MethodGet, c.logsEndpoint, values, &out); err != nil {
		return models.GeneralLogs{}, err
	}
	if out.LogEntries == nil {
		out.LogEntries = []models.GeneralLogEntry{}
	}
	return out, nil
}

// CreateFeedbackSessionLog records a student's access to or submission of a session
func (c *Client) CreateFeedbackSessionLog(ctx context.Context, params query.CreateSessionLogParams) (string, error) {
	values, err := params.Values()
	if err != nil {
		return "", err
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionLogsEndpoint, values, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// SearchFeedbackSessionLogs searches the access/submission logs of a course
func (c *Client) SearchFeedbackSessionLogs(ctx context.Context, params query.SearchSessionLogParams) (models.FeedbackSessionLogs, error) {
	values, err := params.Values()
	if err != nil {
		return models.FeedbackSessionLogs{}, err
	}

	var out models.FeedbackSessionLogs
	if err := c.do(ctx, http.MethodGet, c.sessionLogsEndpoint, values, &out); err != nil {
		return models.FeedbackSessionLogs{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, values url.Values, out interface{}) error {
	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	target := c.baseURL.JoinPath(endpoint)
	target.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	start := time.Now()
	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Str("query", target.RawQuery).
		Msg("backend request")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Msg("backend request failed")
		return &APIError{Message: fmt.Sprintf("Failed to reach the server: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &APIError{StatusCode: status, Message: payload.Message}
	}
	msg := http.StatusText(status)
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	return &APIError{StatusCode: status, Message: fmt.Sprintf("Request failed: %s", msg)}
}
