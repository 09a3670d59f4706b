// Package attendance is the cached attendance register.
package attendance

import (
	"context"
	"fmt"
	"slices"

	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/listcache"
)

// Gateway is the remote attendance collection
type Gateway = domain.Gateway[domain.AttendanceRecord, domain.AttendanceInput]

// List caches attendance records, most recent date first.
type List struct {
	*listcache.Manager[domain.AttendanceRecord, domain.AttendanceInput]
}

// NewList creates an unopened attendance list. A non-empty status starts the
// list filtered to that status.
func NewList(client *listcache.Client, gw Gateway, status string) *List {
	return &List{
		Manager: listcache.NewManager(client, gw, listcache.Options{
			Name:      "attendance",
			Category:  status,
			SortField: "date",
			SortOrder: domain.SortDesc,
		}),
	}
}

// SetStatus changes a record's status. Unknown statuses are rejected before
// any request is made.
func (l *List) SetStatus(ctx context.Context, id, status string) (domain.AttendanceRecord, error) {
	if !slices.Contains(domain.AttendanceStatuses, status) {
		return domain.AttendanceRecord{}, &domain.ValidationError{
			Message: "invalid attendance status",
			Fields:  map[string]string{"status": fmt.Sprintf("must be one of %v", domain.AttendanceStatuses)},
		}
	}
	return l.Update(ctx, id, domain.AttendanceInput{Status: domain.Ptr(status)})
}

// Rate returns the share of counted records that are present or late. The
// denominator is the sum of the status counters, which cover every status even
// while the list is filtered to one. It is 0 when nothing is counted.
func (l *List) Rate() float64 {
	stats := l.Statistics()
	counted := 0
	for _, status := range domain.AttendanceStatuses {
		counted += stats.Count(status)
	}
	if counted == 0 {
		return 0
	}
	attended := stats.Count(domain.AttendancePresent) + stats.Count(domain.AttendanceLate)
	return float64(attended) / float64(counted)
}
