package ui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/timezone"
)

// LogSearcher fetches one page of logs
type LogSearcher interface {
	SearchLogs(ctx context.Context, params models.QueryParams) (models.GeneralLogs, error)
}

// LogsPage runs log searches and keeps every fetched page so that
// navigating back never hits the backend again
type LogsPage struct {
	searcher LogSearcher
	resolver timezone.Resolver
	toasts   *StatusMessages
	zone     string
	logger   zerolog.Logger

	severities        map[models.Severity]bool
	queryParams       models.QueryParams
	hasQuery          bool
	pageResults       []models.LogPage
	currentPageNumber int
	nextPageToken     string
	searchResults     []models.LogsTableRowModel
	isSearching       bool
	hasResult         bool
	generation        uint64
}

// searchResolvedMsg carries both resolved bounds of a search
type searchResolvedMsg struct {
	generation uint64
	from       timezone.ResolvedTimestamp
	until      timezone.ResolvedTimestamp
	severities string
	err        error
}

// logsPageMsg carries one fetched page
type logsPageMsg struct {
	generation uint64
	params     models.QueryParams
	logs       models.GeneralLogs
	err        error
}

// NewLogsPage creates a logs page that shows timestamps in zone
func NewLogsPage(searcher LogSearcher, resolver timezone.Resolver, toasts *StatusMessages, zone string, logger zerolog.Logger) *LogsPage {
	if toasts == nil {
		toasts = NewStatusMessages()
	}
	return &LogsPage{
		searcher:   searcher,
		resolver:   resolver,
		toasts:     toasts,
		zone:       zone,
		logger:     logger,
		severities: map[models.Severity]bool{},
	}
}

// ToggleSeverity adds or removes a level from the severity filter
func (lp *LogsPage) ToggleSeverity(severity models.Severity) {
	if !severity.Valid() {
		return
	}
	if lp.severities[severity] {
		delete(lp.severities, severity)
	} else {
		lp.severities[severity] = true
	}
}

// SetSeverities replaces the severity filter
func (lp *LogsPage) SetSeverities(levels []models.Severity) {
	lp.severities = map[models.Severity]bool{}
	for _, level := range levels {
		if level.Valid() {
			lp.severities[level] = true
		}
	}
}

// SelectedSeverities returns the filter in display order
func (lp *LogsPage) SelectedSeverities() []models.Severity {
	var out []models.Severity
	for _, level := range models.SeverityLevels {
		if lp.severities[level] {
			out = append(out, level)
		}
	}
	return out
}

// Search starts a new search. Previous results are dropped immediately and
// responses belonging to earlier searches are ignored from now on.
func (lp *LogsPage) Search(criteria models.SearchCriteria) tea.Cmd {
	lp.generation++
	lp.isSearching = true
	lp.searchResults = []models.LogsTableRowModel{}
	lp.pageResults = []models.LogPage{}
	lp.currentPageNumber = 0
	lp.nextPageToken = ""
	lp.hasQuery = false

	severities := criteria.Severities
	if severities == nil {
		severities = lp.SelectedSeverities()
	}

	gen := lp.generation
	resolver := lp.resolver
	zone := lp.zone
	from, until := criteria.From(), criteria.Until()
	return func() tea.Msg {
		msg := searchResolvedMsg{generation: gen, severities: models.JoinSeverities(severities)}
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.from, err = resolver.ResolveTimestamp(ctx, from, zone, timezone.FieldSearchFrom)
			return err
		})
		g.Go(func() error {
			var err error
			msg.until, err = resolver.ResolveTimestamp(ctx, until, zone, timezone.FieldSearchUntil)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// NextPage shows the following page, from the cache when it was already
// fetched. It returns a command only when a backend request is needed.
func (lp *LogsPage) NextPage() tea.Cmd {
	if lp.isSearching {
		return nil
	}
	if lp.currentPageNumber+1 < len(lp.pageResults) {
		lp.currentPageNumber++
		lp.searchResults = lp.pageResults[lp.currentPageNumber].LogResult
		lp.logger.Debug().Int("page", lp.currentPageNumber).Msg("page served from cache")
		return nil
	}
	if !lp.hasQuery {
		return nil
	}
	if lp.nextPageToken == "" {
		lp.toasts.ShowWarningToast("No more results")
		return nil
	}

	lp.isSearching = true
	return lp.queryCmd(lp.generation, lp.queryParams.WithPageToken(lp.nextPageToken))
}

// PreviousPage shows the cached page before the current one
func (lp *LogsPage) PreviousPage() {
	if lp.currentPageNumber > 0 {
		lp.currentPageNumber--
		lp.searchResults = lp.pageResults[lp.currentPageNumber].LogResult
	}
}

// Update applies the results of commands issued by the page
func (lp *LogsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchResolvedMsg:
		if msg.generation != lp.generation {
			lp.logger.Debug().Uint64("generation", msg.generation).Msg("stale search discarded")
			return nil
		}
		if msg.err != nil {
			lp.finishSearch()
			lp.toasts.ShowErrorToast(errorMessage(msg.err))
			return nil
		}
		for _, resolved := range []timezone.ResolvedTimestamp{msg.from, msg.until} {
			if resolved.Message != "" {
				lp.toasts.ShowWarningToast(resolved.Message)
			}
		}
		lp.queryParams = models.QueryParams{
			SearchFrom:  formatMillis(msg.from.Timestamp),
			SearchUntil: formatMillis(msg.until.Timestamp),
			Severities:  msg.severities,
		}
		lp.hasQuery = true
		return lp.queryCmd(msg.generation, lp.queryParams)

	case logsPageMsg:
		if msg.generation != lp.generation {
			lp.logger.Debug().Uint64("generation", msg.generation).Msg("stale page discarded")
			return nil
		}
		lp.finishSearch()
		if msg.err != nil {
			lp.logger.Error().Err(msg.err).Str("page_token", msg.params.NextPageToken).Msg("log search failed")
			lp.toasts.ShowErrorToast(errorMessage(msg.err))
			return nil
		}

		rows := make([]models.LogsTableRowModel, 0, len(msg.logs.LogEntries))
		for _, entry := range msg.logs.LogEntries {
			rows = append(rows, ToRowModel(entry, lp.zone))
		}
		lp.pageResults = append(lp.pageResults, models.LogPage{LogResult: rows})
		lp.currentPageNumber = len(lp.pageResults) - 1
		lp.searchResults = rows
		lp.nextPageToken = msg.logs.NextPageToken
	}
	return nil
}

func (lp *LogsPage) queryCmd(gen uint64, params models.QueryParams) tea.Cmd {
	searcher := lp.searcher
	lp.logger.Info().
		Str("from", params.SearchFrom).
		Str("until", params.SearchUntil).
		Str("severity", params.Severities).
		Str("page_token", params.NextPageToken).
		Msg("searching logs")
	return func() tea.Msg {
		logs, err := searcher.SearchLogs(context.Background(), params)
		return logsPageMsg{generation: gen, params: params, logs: logs, err: err}
	}
}

func (lp *LogsPage) finishSearch() {
	lp.isSearching = false
	lp.hasResult = true
}

// SearchResults returns the rows of the page being shown
func (lp *LogsPage) SearchResults() []models.LogsTableRowModel {
	return lp.searchResults
}

// CurrentPage returns the zero based index of the page being shown
func (lp *LogsPage) CurrentPage() int {
	return lp.currentPageNumber
}

// PageCount returns how many pages are cached
func (lp *LogsPage) PageCount() int {
	return len(lp.pageResults)
}

// HasMore reports whether another page can be shown
func (lp *LogsPage) HasMore() bool {
	return lp.currentPageNumber+1 < len(lp.pageResults) || lp.nextPageToken != ""
}

// IsSearching reports whether a request is in flight
func (lp *LogsPage) IsSearching() bool {
	return lp.isSearching
}

// HasResult reports whether any search has completed
func (lp *LogsPage) HasResult() bool {
	return lp.hasResult
}

// Zone returns the zone timestamps are resolved and shown in
func (lp *LogsPage) Zone() string {
	return lp.zone
}

func formatMillis(ms int64) string {
	return strconv.FormatInt(ms, 10)
}

// errorMessage is the text shown to the user. Resolution errors name the
// offending field and backend errors carry the server message.
func errorMessage(err error) string {
	return err.Error()
}
