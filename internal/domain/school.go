package domain

import "time"

// Notification categories
const (
	NotificationAnnouncement = "announcement"
	NotificationAssignment   = "assignment"
	NotificationEvent        = "event"
	NotificationAlert        = "alert"
)

// NotificationTypes lists the notification categories in display order
var NotificationTypes = []string{
	NotificationAnnouncement,
	NotificationAssignment,
	NotificationEvent,
	NotificationAlert,
}

// Notification is a message shown on a role dashboard
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`     // one of NotificationTypes
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Audience  string    `json:"audience"` // "all", "teachers", "students", or a class ID
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n Notification) GetID() string       { return n.ID }
func (n Notification) GetCategory() string { return n.Type }

// NotificationInput is the create/update payload. Nil fields are not sent.
type NotificationInput struct {
	Type     *string `json:"type,omitempty"`
	Title    *string `json:"title,omitempty"`
	Message  *string `json:"message,omitempty"`
	Audience *string `json:"audience,omitempty"`
	Read     *bool   `json:"read,omitempty"`
}

// Subject categories
const (
	SubjectCore            = "core"
	SubjectElective        = "elective"
	SubjectExtracurricular = "extracurricular"
)

// SubjectCategories lists the subject categories in display order
var SubjectCategories = []string{SubjectCore, SubjectElective, SubjectExtracurricular}

// Subject is a course taught at the school
type Subject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Category  string `json:"category"`
	TeacherID string `json:"teacherId"`
	Grade     int    `json:"grade"`
}

func (s Subject) GetID() string       { return s.ID }
func (s Subject) GetCategory() string { return s.Category }

// SubjectInput is the create/update payload. Nil fields are not sent.
type SubjectInput struct {
	Name      *string `json:"name,omitempty"`
	Code      *string `json:"code,omitempty"`
	Category  *string `json:"category,omitempty"`
	TeacherID *string `json:"teacherId,omitempty"`
	Grade     *int    `json:"grade,omitempty"`
}

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// AttendanceStatuses lists the attendance categories in display order
var AttendanceStatuses = []string{AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused}

// AttendanceRecord is one student's attendance for one class session
type AttendanceRecord struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	ClassID     string `json:"classId"`
	Date        string `json:"date"` // YYYY-MM-DD
	Status      string `json:"status"`
	Note        string `json:"note"`
}

func (a AttendanceRecord) GetID() string       { return a.ID }
func (a AttendanceRecord) GetCategory() string { return a.Status }

// AttendanceInput is the create/update payload. Nil fields are not sent.
type AttendanceInput struct {
	StudentID   *string `json:"studentId,omitempty"`
	StudentName *string `json:"studentName,omitempty"`
	ClassID     *string `json:"classId,omitempty"`
	Date        *string `json:"date,omitempty"`
	Status      *string `json:"status,omitempty"`
	Note        *string `json:"note,omitempty"`
}

// Ptr returns a pointer to v, for building Input payloads
func Ptr[T any](v T) *T {
	return &v
}
