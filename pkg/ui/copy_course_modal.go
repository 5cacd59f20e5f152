package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"

	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/timezone"
)

// Field limits for a new course
const (
	CourseIDMaxLength   = 64
	CourseNameMaxLength = 80
)

const (
	copyFieldID = iota
	copyFieldName
	copyFieldZone
	copyFieldSource
	copyFieldSessions
	copyFieldCount
)

// CopyCourseConfirmedMsg is sent when the modal is confirmed
type CopyCourseConfirmedMsg struct {
	Result models.CopyCourseModalResult
}

// CopyCourseCancelledMsg is sent when the modal is dismissed
type CopyCourseCancelledMsg struct{}

type copyCourseForm struct {
	CourseID   string `validate:"required,max=64"`
	CourseName string `validate:"required,max=80"`
}

var copyFormValidator = validator.New()

// CopyCourseModal collects a new course ID, name and zone and the feedback
// sessions to copy from an existing course
type CopyCourseModal struct {
	courseToFeedbackSession map[string][]models.FeedbackSession
	activeCourses           []models.Course
	allCourses              []models.Course
	toasts                  *StatusMessages
	guessZone               func() string

	timezones     []timezone.Zone
	newTimezone   string
	idInput       textinput.Model
	nameInput     textinput.Model
	oldCourseID   string
	oldCourseName string

	selected      map[models.SessionKey]models.FeedbackSession
	selectedOrder []models.SessionKey

	focus         int
	sessionCursor int
}

// NewCopyCourseModal creates the modal. activeCourses are offered as copy
// sources; allCourses are checked for duplicate IDs.
func NewCopyCourseModal(courseToFeedbackSession map[string][]models.FeedbackSession, activeCourses, allCourses []models.Course, toasts *StatusMessages) *CopyCourseModal {
	if toasts == nil {
		toasts = NewStatusMessages()
	}
	idInput := textinput.New()
	idInput.Placeholder = "e.g. CS3281-2024"
	idInput.CharLimit = CourseIDMaxLength
	idInput.Focus()
	nameInput := textinput.New()
	nameInput.Placeholder = "e.g. Thematic Systems Project I"
	nameInput.CharLimit = CourseNameMaxLength

	m := &CopyCourseModal{
		courseToFeedbackSession: courseToFeedbackSession,
		activeCourses:           activeCourses,
		allCourses:              allCourses,
		toasts:                  toasts,
		guessZone:               timezone.GuessTimezone,
		timezones:               timezone.Zones(timezone.CommonZones, time.Now()),
		idInput:                 idInput,
		nameInput:               nameInput,
		selected:                map[models.SessionKey]models.FeedbackSession{},
	}
	m.newTimezone = m.guessZone()
	if len(activeCourses) > 0 {
		m.SetSourceCourse(activeCourses[0].CourseID)
	}
	return m
}

// Timezones returns the zones offered for the new course
func (m *CopyCourseModal) Timezones() []timezone.Zone {
	return m.timezones
}

// SetNewCourse fills in the ID and name fields
func (m *CopyCourseModal) SetNewCourse(id, name string) {
	m.idInput.SetValue(id)
	m.nameInput.SetValue(name)
}

// SetNewTimezone picks the zone of the new course
func (m *CopyCourseModal) SetNewTimezone(zone string) {
	m.newTimezone = zone
}

// NewTimezone returns the zone of the new course
func (m *CopyCourseModal) NewTimezone() string {
	return m.newTimezone
}

// OnAutoDetectTimezone resets the zone to the guessed host zone
func (m *CopyCourseModal) OnAutoDetectTimezone() {
	m.newTimezone = m.guessZone()
}

// SetSourceCourse selects the course whose sessions can be copied.
// Switching course clears the session selection.
func (m *CopyCourseModal) SetSourceCourse(courseID string) {
	if courseID == m.oldCourseID {
		return
	}
	m.oldCourseID = courseID
	m.oldCourseName = ""
	for _, course := range m.allCourses {
		if course.CourseID == courseID {
			m.oldCourseName = course.CourseName
			break
		}
	}
	for _, course := range m.activeCourses {
		if course.CourseID == courseID {
			m.oldCourseName = course.CourseName
			break
		}
	}
	m.sessionCursor = 0
	m.ClearSelectedFeedbackSession()
}

// SourceCourse returns the ID of the course sessions are copied from
func (m *CopyCourseModal) SourceCourse() string {
	return m.oldCourseID
}

// ToggleSelection adds or removes a session from the selection
func (m *CopyCourseModal) ToggleSelection(session models.FeedbackSession) {
	key := session.Key()
	if _, ok := m.selected[key]; ok {
		delete(m.selected, key)
		for i, k := range m.selectedOrder {
			if k == key {
				m.selectedOrder = append(m.selectedOrder[:i], m.selectedOrder[i+1:]...)
				break
			}
		}
		return
	}
	m.selected[key] = session
	m.selectedOrder = append(m.selectedOrder, key)
}

// ToggleSelectionForAll selects every session of the source course, or
// clears the selection when all of them are already selected
func (m *CopyCourseModal) ToggleSelectionForAll() {
	sessions := m.courseToFeedbackSession[m.oldCourseID]
	if len(m.selected) == len(sessions) {
		m.ClearSelectedFeedbackSession()
		return
	}
	m.ClearSelectedFeedbackSession()
	for _, session := range sessions {
		m.ToggleSelection(session)
	}
}

// ClearSelectedFeedbackSession empties the selection
func (m *CopyCourseModal) ClearSelectedFeedbackSession() {
	m.selected = map[models.SessionKey]models.FeedbackSession{}
	m.selectedOrder = nil
}

// IsSelected reports whether a session is selected
func (m *CopyCourseModal) IsSelected(session models.FeedbackSession) bool {
	_, ok := m.selected[session.Key()]
	return ok
}

// SelectedCount returns how many sessions are selected
func (m *CopyCourseModal) SelectedCount() int {
	return len(m.selected)
}

// Copy validates the form. On failure an error toast is shown and ok is
// false; nothing else changes.
func (m *CopyCourseModal) Copy() (models.CopyCourseModalResult, bool) {
	form := copyCourseForm{
		CourseID:   strings.TrimSpace(m.idInput.Value()),
		CourseName: strings.TrimSpace(m.nameInput.Value()),
	}
	if err := copyFormValidator.Struct(form); err != nil {
		m.toasts.ShowErrorToast(copyFormError(err))
		return models.CopyCourseModalResult{}, false
	}

	for _, course := range m.allCourses {
		if course.CourseID == form.CourseID {
			m.toasts.ShowErrorToast(fmt.Sprintf(
				"The course ID %s has been used by another course, possibly by some other user.", form.CourseID))
			return models.CopyCourseModalResult{}, false
		}
	}

	sessions := make([]models.FeedbackSession, 0, len(m.selectedOrder))
	for _, key := range m.selectedOrder {
		sessions = append(sessions, m.selected[key])
	}
	return models.CopyCourseModalResult{
		NewCourseID:                 form.CourseID,
		NewCourseName:               form.CourseName,
		NewTimeZone:                 m.newTimezone,
		SelectedFeedbackSessionList: sessions,
		TotalNumberOfSessions:       len(sessions),
	}, true
}

func copyFormError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return "Please make sure you have filled in both Course ID and Name before adding the course!"
			}
		}
		fe := verrs[0]
		label := "Course ID"
		if fe.Field() == "CourseName" {
			label = "Course name"
		}
		return fmt.Sprintf("%s should not exceed %s characters", label, fe.Param())
	}
	return err.Error()
}

// Update handles key input while the modal is open
func (m *CopyCourseModal) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return func() tea.Msg { return CopyCourseCancelledMsg{} }
	case "enter":
		result, ok := m.Copy()
		if !ok {
			return nil
		}
		return func() tea.Msg { return CopyCourseConfirmedMsg{Result: result} }
	case "tab":
		m.setFocus((m.focus + 1) % copyFieldCount)
		return nil
	case "shift+tab":
		m.setFocus((m.focus + copyFieldCount - 1) % copyFieldCount)
		return nil
	case "ctrl+d":
		m.OnAutoDetectTimezone()
		return nil
	case "ctrl+a":
		m.ToggleSelectionForAll()
		return nil
	case "ctrl+x":
		m.ClearSelectedFeedbackSession()
		return nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case copyFieldID:
		m.idInput, cmd = m.idInput.Update(msg)
	case copyFieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case copyFieldZone:
		switch msg.String() {
		case "left", "h":
			m.cycleTimezone(-1)
		case "right", "l":
			m.cycleTimezone(1)
		}
	case copyFieldSource:
		switch msg.String() {
		case "left", "h":
			m.cycleSource(-1)
		case "right", "l":
			m.cycleSource(1)
		}
	case copyFieldSessions:
		sessions := m.courseToFeedbackSession[m.oldCourseID]
		switch msg.String() {
		case "up", "k":
			if m.sessionCursor > 0 {
				m.sessionCursor--
			}
		case "down", "j":
			if m.sessionCursor < len(sessions)-1 {
				m.sessionCursor++
			}
		case " ", "x":
			if m.sessionCursor < len(sessions) {
				m.ToggleSelection(sessions[m.sessionCursor])
			}
		}
	}
	return cmd
}

func (m *CopyCourseModal) setFocus(i int) {
	m.idInput.Blur()
	m.nameInput.Blur()
	m.focus = i
	switch i {
	case copyFieldID:
		m.idInput.Focus()
	case copyFieldName:
		m.nameInput.Focus()
	}
}

func (m *CopyCourseModal) cycleTimezone(delta int) {
	if len(m.timezones) == 0 {
		return
	}
	idx := 0
	for i, zone := range m.timezones {
		if zone.ID == m.newTimezone {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(m.timezones)) % len(m.timezones)
	m.newTimezone = m.timezones[idx].ID
}

func (m *CopyCourseModal) cycleSource(delta int) {
	if len(m.activeCourses) == 0 {
		return
	}
	idx := 0
	for i, course := range m.activeCourses {
		if course.CourseID == m.oldCourseID {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(m.activeCourses)) % len(m.activeCourses)
	m.SetSourceCourse(m.activeCourses[idx].CourseID)
}

func (m *CopyCourseModal) zoneLabel() string {
	for _, zone := range m.timezones {
		if zone.ID == m.newTimezone {
			return fmt.Sprintf("%s (%s)", zone.ID, zone.Offset)
		}
	}
	return m.newTimezone
}

// View renders the modal
func (m *CopyCourseModal) View(width int) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	field := func(i int, name string) string {
		if i == m.focus {
			return active.Render("> " + padRight(name, 16))
		}
		return label.Render("  " + padRight(name, 16))
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Copy course"))
	sb.WriteString("\n\n")
	sb.WriteString(field(copyFieldID, "New course ID") + " " + m.idInput.View() + "\n")
	sb.WriteString(field(copyFieldName, "New course name") + " " + m.nameInput.View() + "\n")
	sb.WriteString(field(copyFieldZone, "Time zone") + " ◂ " + m.zoneLabel() + " ▸\n")

	source := m.oldCourseID
	if m.oldCourseName != "" {
		source += " (" + m.oldCourseName + ")"
	}
	sb.WriteString(field(copyFieldSource, "Copy sessions of") + " ◂ " + source + " ▸\n\n")

	sessions := m.courseToFeedbackSession[m.oldCourseID]
	if len(sessions) == 0 {
		sb.WriteString(label.Render("  No feedback sessions in this course") + "\n")
	}
	for i, session := range sessions {
		box := "[ ]"
		if m.IsSelected(session) {
			box = "[x]"
		}
		line := fmt.Sprintf("  %s %s", box, session.FeedbackSessionName)
		if m.focus == copyFieldSessions && i == m.sessionCursor {
			line = active.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(label.Render(fmt.Sprintf("%d of %d sessions selected  •  enter copy  •  esc cancel  •  ctrl+a all  •  ctrl+d detect zone",
		len(m.selected), len(sessions))))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(1, 2).
		Width(maxInt(width-4, 40)).
		Render(sb.String())
}
