package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/campus/internal/domain"
)

// Resource paths served by the school API
const (
	NotificationsPath = "/api/notifications"
	SubjectsPath      = "/api/subjects"
	AttendancePath    = "/api/attendance"
)

// Resource implements domain.Gateway for the collection at path
type Resource[T domain.Item, P any] struct {
	client *Client
	path   string
}

// NewResource binds a collection path to a client
func NewResource[T domain.Item, P any](c *Client, path string) *Resource[T, P] {
	return &Resource[T, P]{client: c, path: path}
}

// Notifications returns the notifications gateway
func (c *Client) Notifications() *Resource[domain.Notification, domain.NotificationInput] {
	return NewResource[domain.Notification, domain.NotificationInput](c, NotificationsPath)
}

// Subjects returns the subjects gateway
func (c *Client) Subjects() *Resource[domain.Subject, domain.SubjectInput] {
	return NewResource[domain.Subject, domain.SubjectInput](c, SubjectsPath)
}

// Attendance returns the attendance gateway
func (c *Client) Attendance() *Resource[domain.AttendanceRecord, domain.AttendanceInput] {
	return NewResource[domain.AttendanceRecord, domain.AttendanceInput](c, AttendancePath)
}

// FetchPage returns one page of the collection
func (r *Resource[T, P]) FetchPage(ctx context.Context, q domain.Query) (domain.Page[T], error) {
	_, body, err := r.client.doRequest(ctx, http.MethodGet, r.path, queryValues(q), nil)
	if err != nil {
		return domain.Page[T]{}, err
	}

	var env listEnvelope[T]
	if err := r.client.decode(body, &env); err != nil {
		return domain.Page[T]{}, err
	}
	return env.page()
}

// Create adds a record
func (r *Resource[T, P]) Create(ctx context.Context, payload P) (domain.MutationResult[T], error) {
	_, body, err := r.client.doRequest(ctx, http.MethodPost, r.path, nil, payload)
	if err != nil {
		return domain.MutationResult[T]{}, err
	}
	return r.mutationResult(body)
}

// Update applies the non-nil fields of payload to record id
func (r *Resource[T, P]) Update(ctx context.Context, id string, payload P) (domain.MutationResult[T], error) {
	_, body, err := r.client.doRequest(ctx, http.MethodPatch, r.itemPath(id), nil, payload)
	if err != nil {
		return domain.MutationResult[T]{}, err
	}
	return r.mutationResult(body)
}

// Delete removes record id. Statistics are nil when the server answers 204.
func (r *Resource[T, P]) Delete(ctx context.Context, id string) (*domain.Statistics, error) {
	status, body, err := r.client.doRequest(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(body) == 0 {
		return nil, nil
	}

	var env deleteEnvelope
	if err := r.client.decode(body, &env); err != nil {
		return nil, err
	}
	return env.Statistics, nil
}

func (r *Resource[T, P]) mutationResult(body []byte) (domain.MutationResult[T], error) {
	var env itemEnvelope[T]
	if err := r.client.decode(body, &env); err != nil {
		return domain.MutationResult[T]{}, err
	}
	return env.result()
}

func (r *Resource[T, P]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// queryValues encodes q as URL parameters, omitting empty ones
func queryValues(q domain.Query) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortField != "" {
		v.Set("sort", q.SortField)
		if q.SortOrder != "" {
			v.Set("order", string(q.SortOrder))
		}
	}
	return v
}
