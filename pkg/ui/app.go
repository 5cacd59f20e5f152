package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/user/course-logs-tui/pkg/config"
	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/timezone"
)

// exportFormats are cycled by the export key
var exportFormats = []string{"csv", "json", "jsonl"}

type appMode string

const (
	modeForm       appMode = "form"
	modeTable      appMode = "table"
	modeCopyCourse appMode = "copyCourse"
	modeHelp       appMode = "help"
)

// focus inside the search screen
const (
	focusFormFields = iota
	focusSeverityPanel
)

// toastTickMsg expires old toasts
type toastTickMsg time.Time

// AppOptions wires the app to its collaborators
type AppOptions struct {
	Searcher   LogSearcher
	Resolver   timezone.Resolver
	Zone       string
	Retention  time.Duration
	VimMode    bool
	Severities []models.Severity
	Catalog    config.CourseCatalog
	Logger     zerolog.Logger
	Now        func() time.Time
}

// App represents the main TUI application
type App struct {
	width  int
	height int
	keys   KeyMap
	logger zerolog.Logger
	zone   string
	now    func() time.Time

	mode         appMode
	previousMode appMode
	formFocus    int
	presetIndex  int
	exportIndex  int
	exportDir    string
	vimMode      bool

	form          *SearchForm
	severityPanel *SeverityFilterPanel
	logsPage      *LogsPage
	table         *LogsTable
	toasts        *StatusMessages
	helpModal     *HelpModal
	clipboard     *ClipboardManager
	exporter      *Exporter
	copyModal     *CopyCourseModal
	spinner       spinner.Model

	catalog          config.CourseCatalog
	persistStateFn   func([]models.Severity) error
	persistCatalogFn func(config.CourseCatalog) error
}

// NewApp creates the root model
func NewApp(opts AppOptions) *App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = config.DefaultConfig().RetentionPeriod()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = timezone.NewLocalResolver()
	}

	toasts := NewStatusMessages()
	logsPage := NewLogsPage(opts.Searcher, resolver, toasts, opts.Zone, opts.Logger)
	logsPage.SetSeverities(opts.Severities)
	keys := DefaultKeyMap(opts.VimMode)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))

	a := &App{
		width:        120,
		height:       40,
		keys:         keys,
		logger:       opts.Logger,
		zone:         opts.Zone,
		now:          now,
		mode:         modeForm,
		previousMode: modeForm,
		exportDir:    ".",
		vimMode:      opts.VimMode,
		logsPage:     logsPage,
		table:        NewLogsTable(),
		toasts:       toasts,
		helpModal:    NewHelpModal(keys),
		clipboard:    NewClipboardManager(),
		exporter:     NewExporter(),
		spinner:      s,
		catalog:      opts.Catalog,
	}
	a.form = NewSearchForm(a.localNow(), retention)
	a.severityPanel = NewSeverityFilterPanel(logsPage)
	return a
}

// SetStatePersistFn is called with the selected severities whenever they change
func (a *App) SetStatePersistFn(fn func([]models.Severity) error) {
	a.persistStateFn = fn
}

// SetCatalogPersistFn is called with the catalog after a course is copied
func (a *App) SetCatalogPersistFn(fn func(config.CourseCatalog) error) {
	a.persistCatalogFn = fn
}

// SetExportDir sets where exported pages are written
func (a *App) SetExportDir(dir string) {
	a.exportDir = dir
}

// SetClipboard replaces the clipboard used by the yank key
func (a *App) SetClipboard(cm *ClipboardManager) {
	a.clipboard = cm
}

// Catalog returns the current course catalog
func (a *App) Catalog() config.CourseCatalog {
	return a.catalog
}

func (a *App) Init() tea.Cmd {
	return a.toastTick()
}

func (a *App) toastTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return toastTickMsg(t) })
}

// localNow is the current time in the display zone
func (a *App) localNow() time.Time {
	now := a.now()
	if loc, err := time.LoadLocation(a.zone); err == nil && a.zone != "" {
		return now.In(loc)
	}
	return now
}

// Update handles events and state mutations
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case toastTickMsg:
		a.toasts.ClearExpired()
		return a, a.toastTick()

	case spinner.TickMsg:
		if !a.logsPage.IsSearching() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case searchResolvedMsg, logsPageMsg:
		before := a.logsPage.SearchResults()
		cmd := a.logsPage.Update(msg)
		if rows := a.logsPage.SearchResults(); !sameRows(before, rows) {
			a.table.SetRows(rows)
		}
		return a, cmd

	case CopyCourseConfirmedMsg:
		a.addCopiedCourse(msg.Result)
		a.closeCopyModal()
		return a, nil

	case CopyCourseCancelledMsg:
		a.closeCopyModal()
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyPress(msg)
	}

	return a, nil
}

// handleKeyPress processes keyboard input
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeHelp:
		if key.Matches(msg, a.keys.Help, a.keys.Back, a.keys.Quit) {
			a.helpModal.SetVisible(false)
			a.mode = a.previousMode
		}
		return a, nil
	case modeCopyCourse:
		return a, a.copyModal.Update(msg)
	case modeForm:
		return a.handleFormInput(msg)
	default:
		return a.handleTableInput(msg)
	}
}

func (a *App) handleFormInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Submit):
		return a, a.submitSearch()
	case key.Matches(msg, a.keys.Back):
		if a.logsPage.HasResult() || a.logsPage.IsSearching() {
			a.mode = modeTable
		}
		return a, nil
	case key.Matches(msg, a.keys.NextField):
		a.focusNextFormField()
		return a, nil
	case key.Matches(msg, a.keys.PrevField):
		a.focusPrevFormField()
		return a, nil
	case key.Matches(msg, a.keys.Preset):
		preset := TimePresets[a.presetIndex%len(TimePresets)]
		a.presetIndex++
		a.form.ApplyPreset(preset, a.localNow())
		a.toasts.ShowSuccessToast(preset.Name)
		return a, nil
	}

	if a.formFocus == focusFormFields {
		return a, a.form.Update(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Up):
		a.severityPanel.MoveUp()
	case key.Matches(msg, a.keys.Down):
		a.severityPanel.MoveDown()
	case key.Matches(msg, a.keys.Toggle):
		a.severityPanel.ToggleCurrent()
		a.persistSeverities()
	case key.Matches(msg, a.keys.Help):
		a.openHelp()
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) focusNextFormField() {
	switch {
	case a.formFocus == focusSeverityPanel:
		a.formFocus = focusFormFields
		a.form.setFocus(fieldDateFrom)
	case a.form.Focused() == fieldTimeTo:
		a.formFocus = focusSeverityPanel
		a.form.inputs[a.form.Focused()].Blur()
	default:
		a.form.FocusNext()
	}
}

func (a *App) focusPrevFormField() {
	switch {
	case a.formFocus == focusSeverityPanel:
		a.formFocus = focusFormFields
		a.form.setFocus(fieldTimeTo)
	case a.form.Focused() == fieldDateFrom:
		a.formFocus = focusSeverityPanel
		a.form.inputs[a.form.Focused()].Blur()
	default:
		a.form.FocusPrev()
	}
}

// submitSearch starts a search from the form; invalid input becomes a toast
func (a *App) submitSearch() tea.Cmd {
	criteria, err := a.form.Criteria(a.logsPage.SelectedSeverities())
	if err != nil {
		a.toasts.ShowErrorToast(err.Error())
		return nil
	}
	cmd := a.logsPage.Search(criteria)
	a.table.SetRows(a.logsPage.SearchResults())
	a.mode = modeTable
	return tea.Batch(cmd, a.spinner.Tick)
}

func (a *App) handleTableInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.openHelp()
	case key.Matches(msg, a.keys.Search), key.Matches(msg, a.keys.Back):
		a.mode = modeForm
	case key.Matches(msg, a.keys.Up):
		a.table.MoveUp()
	case key.Matches(msg, a.keys.Down):
		a.table.MoveDown()
	case key.Matches(msg, a.keys.Details):
		a.table.ToggleDetails(a.table.Cursor())
	case key.Matches(msg, a.keys.NextPage):
		before := a.logsPage.CurrentPage()
		cmd := a.logsPage.NextPage()
		if a.logsPage.CurrentPage() != before {
			a.table.SetRows(a.logsPage.SearchResults())
		}
		if cmd != nil {
			return a, tea.Batch(cmd, a.spinner.Tick)
		}
	case key.Matches(msg, a.keys.PrevPage):
		before := a.logsPage.CurrentPage()
		a.logsPage.PreviousPage()
		if a.logsPage.CurrentPage() != before {
			a.table.SetRows(a.logsPage.SearchResults())
		}
	case key.Matches(msg, a.keys.Yank):
		a.copySelectedDetails()
	case key.Matches(msg, a.keys.Export):
		a.exportCurrentPage()
	case key.Matches(msg, a.keys.CopyCourse):
		a.openCopyModal()
	}
	return a, nil
}

func (a *App) openHelp() {
	a.previousMode = a.mode
	a.mode = modeHelp
	a.helpModal.SetVisible(true)
}

func (a *App) persistSeverities() {
	if a.persistStateFn == nil {
		return
	}
	if err := a.persistStateFn(a.logsPage.SelectedSeverities()); err != nil {
		a.logger.Warn().Err(err).Msg("failed to save state")
	}
}

func (a *App) copySelectedDetails() {
	copied, err := a.clipboard.CopyDetails(a.table.Selected())
	if err != nil {
		a.toasts.ShowErrorToast(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	a.toasts.ShowSuccessToast(fmt.Sprintf("Copied log details (%d bytes)", len(copied)))
}

func (a *App) exportCurrentPage() {
	format := exportFormats[a.exportIndex%len(exportFormats)]
	path := filepath.Join(a.exportDir, a.exporter.GetDefaultFileName(format, a.logsPage.CurrentPage(), a.now()))
	rows := a.logsPage.SearchResults()
	if err := a.exporter.Export(rows, path, format); err != nil {
		a.toasts.ShowErrorToast("Export failed: " + err.Error())
		return
	}
	a.exportIndex++
	a.logger.Info().Str("path", path).Int("rows", len(rows)).Msg("page exported")
	a.toasts.ShowSuccessToast(fmt.Sprintf("Exported %d logs to %s", len(rows), path))
}

func (a *App) openCopyModal() {
	a.copyModal = NewCopyCourseModal(a.catalog.SessionsByCourse(), a.catalog.ActiveCourses(), a.catalog.AllCourses(), a.toasts)
	a.previousMode = a.mode
	a.mode = modeCopyCourse
}

func (a *App) closeCopyModal() {
	a.copyModal = nil
	a.mode = a.previousMode
}

func (a *App) addCopiedCourse(result models.CopyCourseModalResult) {
	a.catalog = a.catalog.UpsertCourse(config.CopiedCourse(result))
	a.logger.Info().
		Str("course_id", result.NewCourseID).
		Int("sessions", result.TotalNumberOfSessions).
		Msg("course copied")
	if a.persistCatalogFn != nil {
		if err := a.persistCatalogFn(a.catalog); err != nil {
			a.toasts.ShowErrorToast(fmt.Sprintf("Failed to save course %s: %v", result.NewCourseID, err))
			return
		}
	}
	a.toasts.ShowSuccessToast(fmt.Sprintf("The course %s has been added with %d feedback sessions.", result.NewCourseID, result.TotalNumberOfSessions))
}

// View renders the UI
func (a *App) View() string {
	if a.mode == modeHelp {
		return a.helpModal.Render(a.width, a.height)
	}

	topBar := a.renderTopBar()
	footer := a.renderStatusPanel()
	bodyHeight := maxInt(a.height-lipgloss.Height(topBar)-lipgloss.Height(footer), 6)

	var body string
	switch a.mode {
	case modeForm:
		body = a.renderSearchPanel()
	default:
		body = a.renderLogsPanel(bodyHeight)
	}

	output := topBar + "\n" + body + "\n" + footer
	if a.mode == modeCopyCourse && a.copyModal != nil {
		output = renderCenteredPopup(output, a.copyModal.View(minInt(a.width-4, 100)), a.width, a.height)
	}
	return output
}

func (a *App) renderTopBar() string {
	left := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("27")).Padding(0, 1).Render("Course Logs")
	zone := a.zone
	if zone == "" {
		zone = "local"
	}
	keys := "std"
	if a.vimMode {
		keys = "vim"
	}
	state := "ready"
	if a.logsPage.IsSearching() {
		state = a.spinner.View() + " searching"
	}
	rightText := fmt.Sprintf("zone:%s  mode:%s  keys:%s  %s", zone, a.mode, keys, state)
	right := lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("31")).Padding(0, 1).Render(rightText)
	fill := maxInt(0, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", fill) + right
}

func (a *App) renderSearchPanel() string {
	formWidth := maxInt(a.width*2/3, 30)
	panelWidth := maxInt(a.width-formWidth, 20)

	earliest := a.form.EarliestSearchDate()
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(
		fmt.Sprintf("Logs are kept since %04d-%02d-%02d  •  ctrl+p cycles presets", earliest.Year, earliest.Month, earliest.Day))

	form := StyleBorder(a.form.View(a.formFocus == focusFormFields)+"\n"+hint, formWidth, "Search period", a.formFocus == focusFormFields)
	severities := StyleBorder(a.severityPanel.Render(a.formFocus == focusSeverityPanel)+"\n"+a.severityPanel.Summary(), panelWidth, "Severity", a.formFocus == focusSeverityPanel)
	return renderHorizontalSplit([]string{form, severities}, []int{formWidth, panelWidth})
}

func (a *App) renderLogsPanel(height int) string {
	if a.logsPage.IsSearching() && len(a.logsPage.SearchResults()) == 0 {
		return a.spinner.View() + " Searching logs..."
	}
	if !a.logsPage.HasResult() {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Press / to search logs")
	}
	return a.table.Render(a.width, height)
}

func (a *App) renderStatusPanel() string {
	var sb strings.Builder
	more := ""
	if a.logsPage.HasMore() {
		more = "+"
	}
	pages := a.logsPage.PageCount()
	page := 0
	if pages > 0 {
		page = a.logsPage.CurrentPage() + 1
	}
	sb.WriteString(fmt.Sprintf("┃ page %d/%d%s  rows:%d  sev:%s\n",
		page, pages, more, len(a.logsPage.SearchResults()), a.severityPanel.Summary()))
	if toast := a.toasts.RenderToast(a.width); toast != "" {
		sb.WriteString(toast)
		sb.WriteString("\n")
	}
	sb.WriteString(a.helpModal.ShortHelp(a.width))
	return sb.String()
}

// sameRows reports whether a and b are the same backing slice
func sameRows(a, b []models.LogsTableRowModel) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
