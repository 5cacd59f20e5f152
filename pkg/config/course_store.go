package config

import (
	"sort"
	"strings"
	"time"

	"github.com/user/course-logs-tui/pkg/models"
)

const courseCatalogFile = "courses.json"

// CourseRecord is a course with its feedback sessions
type CourseRecord struct {
	models.Course
	Sessions  []models.FeedbackSession `json:"sessions"`
	Archived  bool                     `json:"archived,omitempty"`
	CreatedAt time.Time                `json:"createdAt"`
}

// CourseCatalog stores the courses offered by the copy course modal
type CourseCatalog struct {
	Courses []CourseRecord `json:"courses"`
}

// LoadCourseCatalog loads the catalog from disk. A missing file is an empty
// catalog.
func LoadCourseCatalog() (CourseCatalog, error) {
	var catalog CourseCatalog
	if _, err := readFile(courseCatalogFile, &catalog); err != nil {
		return CourseCatalog{}, err
	}
	if catalog.Courses == nil {
		catalog.Courses = []CourseRecord{}
	}
	return catalog, nil
}

// SaveCourseCatalog saves the catalog to disk.
func SaveCourseCatalog(catalog CourseCatalog) error {
	return writeFile(courseCatalogFile, catalog)
}

// UpsertCourse inserts a course or replaces the one with the same ID.
// Every session is re-homed to the course ID.
func (c CourseCatalog) UpsertCourse(record CourseRecord) CourseCatalog {
	record.CourseID = strings.TrimSpace(record.CourseID)
	if record.CourseID == "" {
		return c
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	sessions := make([]models.FeedbackSession, 0, len(record.Sessions))
	for _, session := range record.Sessions {
		session.CourseID = record.CourseID
		sessions = append(sessions, session)
	}
	record.Sessions = sessions

	courses := make([]CourseRecord, 0, len(c.Courses)+1)
	replaced := false
	for _, existing := range c.Courses {
		if existing.CourseID == record.CourseID {
			courses = append(courses, record)
			replaced = true
			continue
		}
		courses = append(courses, existing)
	}
	if !replaced {
		courses = append(courses, record)
	}
	return CourseCatalog{Courses: courses}
}

// CopiedCourse builds the record produced by a confirmed copy
func CopiedCourse(result models.CopyCourseModalResult) CourseRecord {
	sessions := make([]models.FeedbackSession, 0, len(result.SelectedFeedbackSessionList))
	for _, session := range result.SelectedFeedbackSessionList {
		session.CourseID = result.NewCourseID
		session.TimeZone = result.NewTimeZone
		sessions = append(sessions, session)
	}
	return CourseRecord{
		Course: models.Course{
			CourseID:   result.NewCourseID,
			CourseName: result.NewCourseName,
			TimeZone:   result.NewTimeZone,
		},
		Sessions: sessions,
	}
}

// AllCourses returns every course, newest first
func (c CourseCatalog) AllCourses() []models.Course {
	records := append([]CourseRecord(nil), c.Courses...)
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].CreatedAt.After(records[b].CreatedAt)
	})
	courses := make([]models.Course, 0, len(records))
	for _, record := range records {
		courses = append(courses, record.Course)
	}
	return courses
}

// ActiveCourses returns the courses that are not archived, newest first
func (c CourseCatalog) ActiveCourses() []models.Course {
	archived := map[string]bool{}
	for _, record := range c.Courses {
		archived[record.CourseID] = record.Archived
	}
	var courses []models.Course
	for _, course := range c.AllCourses() {
		if !archived[course.CourseID] {
			courses = append(courses, course)
		}
	}
	return courses
}

// SessionsByCourse maps course IDs to their feedback sessions
func (c CourseCatalog) SessionsByCourse() map[string][]models.FeedbackSession {
	sessions := make(map[string][]models.FeedbackSession, len(c.Courses))
	for _, record := range c.Courses {
		sessions[record.CourseID] = record.Sessions
	}
	return sessions
}
