package devserver

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/campus/internal/domain"
)

// Schema describes how one resource is validated, searched and sorted.
type Schema[T domain.Item, P any] struct {
	Name       string   // URL segment and bucket name
	Categories []string // allowed values of the category field

	// Build validates a create payload and returns the new record.
	Build func(id string, in P, now time.Time) (T, fieldErrors)

	// Apply validates an update payload and returns the patched record.
	Apply func(cur T, in P) (T, fieldErrors)

	// SearchText is the text a search term is matched against.
	SearchText func(T) string

	// SortKeys maps each sortable field to a key whose string order is the field's order.
	SortKeys map[string]func(T) string
}

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) required(field string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		f[field] = "is required"
	}
}

func (f fieldErrors) notBlank(field string, v *string) {
	if v != nil && strings.TrimSpace(*v) == "" {
		f[field] = "must not be blank"
	}
}

func (f fieldErrors) oneOf(field string, v *string, allowed []string) {
	if v != nil && !slices.Contains(allowed, *v) {
		f[field] = fmt.Sprintf("must be one of %s", strings.Join(allowed, ", "))
	}
}

func (f fieldErrors) date(field string, v *string) {
	if v == nil {
		return
	}
	if _, err := time.Parse(time.DateOnly, *v); err != nil {
		f[field] = "must be a date (YYYY-MM-DD)"
	}
}

func (f fieldErrors) err(message string) *domain.ValidationError {
	if len(f) == 0 {
		return nil
	}
	return &domain.ValidationError{Message: message, Fields: f}
}

func set[V any](dst *V, v *V) {
	if v != nil {
		*dst = *v
	}
}

// NotificationSchema validates notifications. Audience defaults to "all".
var NotificationSchema = Schema[domain.Notification, domain.NotificationInput]{
	Name:       "notifications",
	Categories: domain.NotificationTypes,
	Build: func(id string, in domain.NotificationInput, now time.Time) (domain.Notification, fieldErrors) {
		errs := fieldErrors{}
		errs.required("type", in.Type)
		errs.oneOf("type", in.Type, domain.NotificationTypes)
		errs.required("title", in.Title)
		errs.required("message", in.Message)
		errs.notBlank("audience", in.Audience)

		n := domain.Notification{ID: id, Audience: "all", CreatedAt: now.UTC()}
		set(&n.Type, in.Type)
		set(&n.Title, in.Title)
		set(&n.Message, in.Message)
		set(&n.Audience, in.Audience)
		set(&n.Read, in.Read)
		return n, errs
	},
	Apply: func(n domain.Notification, in domain.NotificationInput) (domain.Notification, fieldErrors) {
		errs := fieldErrors{}
		errs.oneOf("type", in.Type, domain.NotificationTypes)
		errs.notBlank("title", in.Title)
		errs.notBlank("message", in.Message)
		errs.notBlank("audience", in.Audience)

		set(&n.Type, in.Type)
		set(&n.Title, in.Title)
		set(&n.Message, in.Message)
		set(&n.Audience, in.Audience)
		set(&n.Read, in.Read)
		return n, errs
	},
	SearchText: func(n domain.Notification) string {
		return n.Title + " " + n.Message + " " + n.Audience
	},
	SortKeys: map[string]func(domain.Notification) string{
		"createdAt": func(n domain.Notification) string { return n.CreatedAt.UTC().Format(time.RFC3339Nano) },
		"title":     func(n domain.Notification) string { return strings.ToLower(n.Title) },
		"type":      func(n domain.Notification) string { return n.Type },
	},
}

// SubjectSchema validates subjects. Grade must be 1-12.
var SubjectSchema = Schema[domain.Subject, domain.SubjectInput]{
	Name:       "subjects",
	Categories: domain.SubjectCategories,
	Build: func(id string, in domain.SubjectInput, _ time.Time) (domain.Subject, fieldErrors) {
		errs := fieldErrors{}
		errs.required("name", in.Name)
		errs.required("code", in.Code)
		errs.required("category", in.Category)
		errs.oneOf("category", in.Category, domain.SubjectCategories)
		if in.Grade == nil {
			errs["grade"] = "is required"
		}
		validGrade(errs, in.Grade)

		s := domain.Subject{ID: id}
		set(&s.Name, in.Name)
		set(&s.Code, in.Code)
		set(&s.Category, in.Category)
		set(&s.TeacherID, in.TeacherID)
		set(&s.Grade, in.Grade)
		return s, errs
	},
	Apply: func(s domain.Subject, in domain.SubjectInput) (domain.Subject, fieldErrors) {
		errs := fieldErrors{}
		errs.notBlank("name", in.Name)
		errs.notBlank("code", in.Code)
		errs.oneOf("category", in.Category, domain.SubjectCategories)
		validGrade(errs, in.Grade)

		set(&s.Name, in.Name)
		set(&s.Code, in.Code)
		set(&s.Category, in.Category)
		set(&s.TeacherID, in.TeacherID)
		set(&s.Grade, in.Grade)
		return s, errs
	},
	SearchText: func(s domain.Subject) string {
		return s.Name + " " + s.Code + " " + s.TeacherID
	},
	SortKeys: map[string]func(domain.Subject) string{
		"name":     func(s domain.Subject) string { return strings.ToLower(s.Name) },
		"code":     func(s domain.Subject) string { return s.Code },
		"category": func(s domain.Subject) string { return s.Category },
		"grade":    func(s domain.Subject) string { return fmt.Sprintf("%03d", s.Grade) },
	},
}

func validGrade(errs fieldErrors, grade *int) {
	if grade != nil && (*grade < 1 || *grade > 12) {
		errs["grade"] = "must be between 1 and 12"
	}
}

// AttendanceSchema validates attendance records.
var AttendanceSchema = Schema[domain.AttendanceRecord, domain.AttendanceInput]{
	Name:       "attendance",
	Categories: domain.AttendanceStatuses,
	Build: func(id string, in domain.AttendanceInput, _ time.Time) (domain.AttendanceRecord, fieldErrors) {
		errs := fieldErrors{}
		errs.required("studentId", in.StudentID)
		errs.required("studentName", in.StudentName)
		errs.required("classId", in.ClassID)
		errs.required("date", in.Date)
		errs.date("date", in.Date)
		errs.required("status", in.Status)
		errs.oneOf("status", in.Status, domain.AttendanceStatuses)

		a := domain.AttendanceRecord{ID: id}
		set(&a.StudentID, in.StudentID)
		set(&a.StudentName, in.StudentName)
		set(&a.ClassID, in.ClassID)
		set(&a.Date, in.Date)
		set(&a.Status, in.Status)
		set(&a.Note, in.Note)
		return a, errs
	},
	Apply: func(a domain.AttendanceRecord, in domain.AttendanceInput) (domain.AttendanceRecord, fieldErrors) {
		errs := fieldErrors{}
		errs.notBlank("studentId", in.StudentID)
		errs.notBlank("studentName", in.StudentName)
		errs.notBlank("classId", in.ClassID)
		errs.date("date", in.Date)
		errs.oneOf("status", in.Status, domain.AttendanceStatuses)

		set(&a.StudentID, in.StudentID)
		set(&a.StudentName, in.StudentName)
		set(&a.ClassID, in.ClassID)
		set(&a.Date, in.Date)
		set(&a.Status, in.Status)
		set(&a.Note, in.Note)
		return a, errs
	},
	SearchText: func(a domain.AttendanceRecord) string {
		return a.StudentName + " " + a.ClassID + " " + a.Note
	},
	SortKeys: map[string]func(domain.AttendanceRecord) string{
		"date":        func(a domain.AttendanceRecord) string { return a.Date },
		"studentName": func(a domain.AttendanceRecord) string { return strings.ToLower(a.StudentName) },
		"status":      func(a domain.AttendanceRecord) string { return a.Status },
	},
}
