package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/course-logs-tui/pkg/models"
)

const (
	formDateLayout = "2006-01-02"
	formTimeLayout = "15:04"
)

// search form fields in focus order
const (
	fieldDateFrom = iota
	fieldTimeFrom
	fieldDateTo
	fieldTimeTo
	formFieldCount
)

var formFieldLabels = [formFieldCount]string{"From date", "From time", "To date", "To time"}

// TimePreset fills the form with a range ending now
type TimePreset struct {
	Name     string
	Key      string
	Duration time.Duration
}

// TimePresets are the quick ranges offered by the form
var TimePresets = []TimePreset{
	{Name: "Last 1 hour", Key: "1", Duration: time.Hour},
	{Name: "Last 24 hours", Key: "2", Duration: 24 * time.Hour},
	{Name: "Last 7 days", Key: "3", Duration: 7 * 24 * time.Hour},
	{Name: "Last 30 days", Key: "4", Duration: 30 * 24 * time.Hour},
}

// SearchForm holds the search period typed by the user
type SearchForm struct {
	inputs        [formFieldCount]textinput.Model
	focus         int
	today         time.Time
	earliestDate  time.Time
	retentionDays int
}

// NewSearchForm creates a form defaulting to yesterday 23:59 until today
// 23:59. now must already be in the user's zone.
func NewSearchForm(now time.Time, retention time.Duration) *SearchForm {
	sf := &SearchForm{
		today:         dateOnly(now),
		earliestDate:  dateOnly(now.Add(-retention)),
		retentionDays: int(retention / (24 * time.Hour)),
	}
	for i := range sf.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 10
		in.Width = 10
		if i == fieldTimeFrom || i == fieldTimeTo {
			in.CharLimit = 5
			in.Width = 5
		}
		sf.inputs[i] = in
	}

	yesterday := now.AddDate(0, 0, -1)
	sf.inputs[fieldDateFrom].SetValue(yesterday.Format(formDateLayout))
	sf.inputs[fieldTimeFrom].SetValue("23:59")
	sf.inputs[fieldDateTo].SetValue(now.Format(formDateLayout))
	sf.inputs[fieldTimeTo].SetValue("23:59")
	sf.inputs[fieldDateFrom].Focus()
	return sf
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EarliestSearchDate is the first day still inside the retention period
func (sf *SearchForm) EarliestSearchDate() models.DateFormat {
	return toDateFormat(sf.earliestDate)
}

// Focused returns the index of the focused field
func (sf *SearchForm) Focused() int {
	return sf.focus
}

// FocusNext moves focus to the next field, wrapping around
func (sf *SearchForm) FocusNext() {
	sf.setFocus((sf.focus + 1) % formFieldCount)
}

// FocusPrev moves focus to the previous field, wrapping around
func (sf *SearchForm) FocusPrev() {
	sf.setFocus((sf.focus + formFieldCount - 1) % formFieldCount)
}

func (sf *SearchForm) setFocus(i int) {
	sf.inputs[sf.focus].Blur()
	sf.focus = i
	sf.inputs[sf.focus].Focus()
}

// SetField overwrites one field
func (sf *SearchForm) SetField(i int, value string) {
	if i >= 0 && i < formFieldCount {
		sf.inputs[i].SetValue(value)
	}
}

// ApplyPreset fills the form with the range [now-d, now]
func (sf *SearchForm) ApplyPreset(preset TimePreset, now time.Time) {
	start := now.Add(-preset.Duration)
	sf.inputs[fieldDateFrom].SetValue(start.Format(formDateLayout))
	sf.inputs[fieldTimeFrom].SetValue(start.Format(formTimeLayout))
	sf.inputs[fieldDateTo].SetValue(now.Format(formDateLayout))
	sf.inputs[fieldTimeTo].SetValue(now.Format(formTimeLayout))
}

// Update forwards key input to the focused field
func (sf *SearchForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	sf.inputs[sf.focus], cmd = sf.inputs[sf.focus].Update(msg)
	return cmd
}

// Criteria parses the form into search criteria
func (sf *SearchForm) Criteria(severities []models.Severity) (models.SearchCriteria, error) {
	dateFrom, err := sf.parseDate(fieldDateFrom)
	if err != nil {
		return models.SearchCriteria{}, err
	}
	timeFrom, err := sf.parseTime(fieldTimeFrom)
	if err != nil {
		return models.SearchCriteria{}, err
	}
	dateTo, err := sf.parseDate(fieldDateTo)
	if err != nil {
		return models.SearchCriteria{}, err
	}
	timeTo, err := sf.parseTime(fieldTimeTo)
	if err != nil {
		return models.SearchCriteria{}, err
	}

	return models.SearchCriteria{
		DateFrom:   toDateFormat(dateFrom),
		TimeFrom:   timeFrom,
		DateTo:     toDateFormat(dateTo),
		TimeTo:     timeTo,
		Severities: severities,
	}, nil
}

func (sf *SearchForm) parseDate(field int) (time.Time, error) {
	raw := strings.TrimSpace(sf.inputs[field].Value())
	d, err := time.Parse(formDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected YYYY-MM-DD, got %q", formFieldLabels[field], raw)
	}
	if d.Before(sf.earliestDate) {
		return time.Time{}, fmt.Errorf("%s: logs are only kept for %d days, pick a date from %s",
			formFieldLabels[field], sf.retentionDays, sf.earliestDate.Format(formDateLayout))
	}
	if d.After(sf.today) {
		return time.Time{}, fmt.Errorf("%s: cannot be later than today", formFieldLabels[field])
	}
	return d, nil
}

func (sf *SearchForm) parseTime(field int) (models.TimeFormat, error) {
	raw := strings.TrimSpace(sf.inputs[field].Value())
	t, err := time.Parse(formTimeLayout, raw)
	if err != nil {
		return models.TimeFormat{}, fmt.Errorf("%s: expected HH:MM, got %q", formFieldLabels[field], raw)
	}
	return models.TimeFormat{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func toDateFormat(t time.Time) models.DateFormat {
	return models.DateFormat{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// View renders the form fields
func (sf *SearchForm) View(focused bool) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))

	var sb strings.Builder
	for i := range sf.inputs {
		name := padRight(formFieldLabels[i], 10)
		if focused && i == sf.focus {
			sb.WriteString(active.Render("> " + name))
		} else {
			sb.WriteString(label.Render("  " + name))
		}
		sb.WriteString(" ")
		sb.WriteString(sf.inputs[i].View())
		sb.WriteString("\n")
	}
	return sb.String()
}
