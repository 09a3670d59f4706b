package devserver

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/campus/internal/domain"
)

// Seed fills empty collections with demo records. Collections that already
// hold data are left alone.
func (s *Server) Seed() error {
	now := s.now().UTC()

	if err := seedIfEmpty(s, NotificationSchema.Name, demoNotifications(now)); err != nil {
		return err
	}
	if err := seedIfEmpty(s, SubjectSchema.Name, demoSubjects()); err != nil {
		return err
	}
	return seedIfEmpty(s, AttendanceSchema.Name, demoAttendance(now))
}

func seedIfEmpty[T domain.Item](s *Server, bucket string, items []T) error {
	n, err := s.store.Count(bucket)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, it := range items {
		if err := insert(s.store, bucket, it.GetID(), it); err != nil {
			return fmt.Errorf("failed to seed %s: %w", bucket, err)
		}
	}
	s.logger.Info("seeded collection", "resource", bucket, "count", len(items))
	return nil
}

func demoNotifications(now time.Time) []domain.Notification {
	titles := []struct{ typ, title, msg, audience string }{
		{domain.NotificationAnnouncement, "Welcome back", "Term 1 starts Monday. Timetables are on the portal.", "all"},
		{domain.NotificationAssignment, "Algebra worksheet 3", "Complete questions 1-20 by Friday.", "9B"},
		{domain.NotificationEvent, "Sports day", "Bring a hat and water bottle.", "students"},
		{domain.NotificationAlert, "Fire drill", "Evacuation drill at 11:00 on Wednesday.", "all"},
		{domain.NotificationAnnouncement, "Library hours", "The library now opens at 7:30.", "all"},
		{domain.NotificationAssignment, "History essay", "1500 words on the industrial revolution.", "10A"},
		{domain.NotificationEvent, "Parent evening", "Book a slot with each teacher.", "teachers"},
		{domain.NotificationAlert, "Bus route change", "Route 12 is diverted via Park Road this week.", "students"},
		{domain.NotificationAnnouncement, "Uniform reminder", "Winter uniform from next month.", "students"},
		{domain.NotificationEvent, "Science fair", "Projects due in the hall by 9:00.", "all"},
		{domain.NotificationAssignment, "Chemistry lab report", "Titration write-up, template on the portal.", "11C"},
		{domain.NotificationAlert, "Water outage", "Block C taps off 13:00-15:00.", "all"},
		{domain.NotificationAnnouncement, "Staff meeting moved", "Now Thursday 15:30 in room 4.", "teachers"},
		{domain.NotificationEvent, "Chess tournament", "Sign up at reception.", "students"},
		{domain.NotificationAssignment, "French vocab quiz", "Units 3 and 4.", "8A"},
		{domain.NotificationAnnouncement, "Photo day", "Class photos on the 14th.", "all"},
		{domain.NotificationEvent, "Music recital", "Auditorium, 18:00.", "all"},
		{domain.NotificationAlert, "Lost property", "Unclaimed items donated on Friday.", "all"},
		{domain.NotificationAssignment, "Geography map task", "Label the major rivers of Europe.", "9B"},
		{domain.NotificationAnnouncement, "Canteen menu", "New vegetarian options this term.", "all"},
		{domain.NotificationEvent, "Careers fair", "Year 11 and 12, gym, period 3.", "students"},
		{domain.NotificationAssignment, "Physics problem set", "Kinematics, questions 4-12.", "10A"},
		{domain.NotificationAlert, "Road closure", "School gate B closed for repairs.", "all"},
		{domain.NotificationAnnouncement, "Exam timetable", "Published on the portal.", "students"},
	}

	out := make([]domain.Notification, len(titles))
	for i, t := range titles {
		out[i] = domain.Notification{
			ID:        uuid.NewString(),
			Type:      t.typ,
			Title:     t.title,
			Message:   t.msg,
			Audience:  t.audience,
			Read:      i%3 == 0,
			CreatedAt: now.Add(-time.Duration(i) * 7 * time.Hour),
		}
	}
	return out
}

func demoSubjects() []domain.Subject {
	return []domain.Subject{
		{ID: uuid.NewString(), Name: "Algebra", Code: "MATH-101", Category: domain.SubjectCore, TeacherID: "t-100", Grade: 9},
		{ID: uuid.NewString(), Name: "English Literature", Code: "ENG-201", Category: domain.SubjectCore, TeacherID: "t-101", Grade: 10},
		{ID: uuid.NewString(), Name: "Chemistry", Code: "SCI-301", Category: domain.SubjectCore, TeacherID: "t-102", Grade: 11},
		{ID: uuid.NewString(), Name: "Art & Design", Code: "ART-110", Category: domain.SubjectElective, Grade: 9},
		{ID: uuid.NewString(), Name: "French", Code: "LANG-120", Category: domain.SubjectElective, TeacherID: "t-103", Grade: 8},
		{ID: uuid.NewString(), Name: "Chess Club", Code: "CLUB-07", Category: domain.SubjectExtracurricular, Grade: 7},
		{ID: uuid.NewString(), Name: "Robotics", Code: "CLUB-12", Category: domain.SubjectExtracurricular, TeacherID: "t-102", Grade: 10},
	}
}

func demoAttendance(now time.Time) []domain.AttendanceRecord {
	students := []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Edsger Dijkstra", "Barbara Liskov", "Ken Thompson"}
	statuses := []string{
		domain.AttendancePresent, domain.AttendancePresent, domain.AttendanceLate,
		domain.AttendancePresent, domain.AttendanceAbsent, domain.AttendanceExcused,
	}

	var out []domain.AttendanceRecord
	for day := range 3 {
		date := now.AddDate(0, 0, -day).Format(time.DateOnly)
		for i, name := range students {
			out = append(out, domain.AttendanceRecord{
				ID:          uuid.NewString(),
				StudentID:   fmt.Sprintf("s-%03d", i+1),
				StudentName: name,
				ClassID:     "9B",
				Date:        date,
				Status:      statuses[(i+day)%len(statuses)],
			})
		}
	}
	return out
}
