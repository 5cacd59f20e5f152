package demo

import (
	"time"

	"github.com/user/course-logs-tui/pkg/config"
	"github.com/user/course-logs-tui/pkg/models"
)

// SampleCatalog returns the courses offered by the copy modal in demo mode
func SampleCatalog(now time.Time) config.CourseCatalog {
	course := func(id, name, zone string, archived bool, age time.Duration, sessions ...string) config.CourseRecord {
		record := config.CourseRecord{
			Course:    models.Course{CourseID: id, CourseName: name, TimeZone: zone},
			Archived:  archived,
			CreatedAt: now.Add(-age),
		}
		for _, name := range sessions {
			record.Sessions = append(record.Sessions, models.FeedbackSession{
				CourseID:            id,
				FeedbackSessionName: name,
				TimeZone:            zone,
				Instructions:        "Please answer all questions.",
			})
		}
		return record
	}

	return config.CourseCatalog{Courses: []config.CourseRecord{
		course("CS1010", "Programming Methodology", "Asia/Singapore", false, 24*time.Hour,
			"Week 1 Survey", "Midterm Peer Review", "Final Feedback"),
		course("CS2103", "Software Engineering", "Asia/Singapore", false, 48*time.Hour,
			"Team Formation", "Project Peer Evaluation"),
		course("MA1101", "Linear Algebra", "Europe/London", true, 365*24*time.Hour,
			"Tutorial Feedback"),
	}}
}
