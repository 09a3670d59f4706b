// Package notification is the cached notification list shown on role dashboards.
package notification

import (
	"context"

	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/listcache"
)

// Gateway is the remote notification collection
type Gateway = domain.Gateway[domain.Notification, domain.NotificationInput]

// List caches notifications, newest first.
type List struct {
	*listcache.Manager[domain.Notification, domain.NotificationInput]
}

// NewList creates an unopened notification list.
func NewList(client *listcache.Client, gw Gateway) *List {
	return &List{
		Manager: listcache.NewManager(client, gw, listcache.Options{
			Name:      "notifications",
			SortField: "createdAt",
			SortOrder: domain.SortDesc,
		}),
	}
}

// NewInput builds a create payload.
func NewInput(typ, title, message, audience string) domain.NotificationInput {
	return domain.NotificationInput{
		Type:     domain.Ptr(typ),
		Title:    domain.Ptr(title),
		Message:  domain.Ptr(message),
		Audience: domain.Ptr(audience),
	}
}

// MarkRead flags a notification as read.
func (l *List) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	return l.Update(ctx, id, domain.NotificationInput{Read: domain.Ptr(true)})
}

// MarkUnread clears the read flag.
func (l *List) MarkUnread(ctx context.Context, id string) (domain.Notification, error) {
	return l.Update(ctx, id, domain.NotificationInput{Read: domain.Ptr(false)})
}

// UnreadLoaded counts unread notifications among the loaded items.
func (l *List) UnreadLoaded() int {
	n := 0
	for _, it := range l.Items() {
		if !it.Read {
			n++
		}
	}
	return n
}
