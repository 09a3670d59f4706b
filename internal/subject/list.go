// Package subject is the cached list of subjects taught at the school.
package subject

import (
	"context"

	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/listcache"
)

// Gateway is the remote subject collection
type Gateway = domain.Gateway[domain.Subject, domain.SubjectInput]

// List caches subjects ordered by name.
type List struct {
	*listcache.Manager[domain.Subject, domain.SubjectInput]
}

// NewList creates an unopened subject list.
func NewList(client *listcache.Client, gw Gateway) *List {
	return &List{
		Manager: listcache.NewManager(client, gw, listcache.Options{
			Name:      "subjects",
			SortField: "name",
			SortOrder: domain.SortAsc,
		}),
	}
}

// AssignTeacher sets the teacher of a subject. An empty teacherID unassigns it.
func (l *List) AssignTeacher(ctx context.Context, id, teacherID string) (domain.Subject, error) {
	return l.Update(ctx, id, domain.SubjectInput{TeacherID: domain.Ptr(teacherID)})
}

// Recategorize moves a subject to another category.
func (l *List) Recategorize(ctx context.Context, id, category string) (domain.Subject, error) {
	return l.Update(ctx, id, domain.SubjectInput{Category: domain.Ptr(category)})
}
