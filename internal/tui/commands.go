package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/notification"
)

// Command factories for async operations

// mutationTimeout bounds a mutation started from the UI. The list applies its
// own fetch timeout underneath.
const mutationTimeout = 30 * time.Second

// OpenListCmd issues the first fetch of a list
func OpenListCmd(list *notification.List) tea.Cmd {
	return func() tea.Msg {
		if err := list.Open(); err != nil {
			return ErrMsg{Err: err, Context: "loading notifications"}
		}
		return nil
	}
}

// RefreshCmd re-fetches the current page
func RefreshCmd(list *notification.List) tea.Cmd {
	return func() tea.Msg {
		if err := list.Refresh(); err != nil {
			return ErrMsg{Err: err, Context: "refreshing"}
		}
		return nil
	}
}

// CreateCmd posts a new notification
func CreateCmd(list *notification.List, input domain.NotificationInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		n, err := list.Create(ctx, input)
		if err != nil {
			return ErrMsg{Err: err, Context: "creating notification"}
		}
		return MutationDoneMsg{Action: "Created", Title: n.Title}
	}
}

// ToggleReadCmd flips the read flag of a notification
func ToggleReadCmd(list *notification.List, item domain.Notification) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		if item.Read {
			if _, err := list.MarkUnread(ctx, item.ID); err != nil {
				return ErrMsg{Err: err, Context: "marking unread"}
			}
			return MutationDoneMsg{Action: "Marked unread", Title: item.Title}
		}
		if _, err := list.MarkRead(ctx, item.ID); err != nil {
			return ErrMsg{Err: err, Context: "marking read"}
		}
		return MutationDoneMsg{Action: "Marked read", Title: item.Title}
	}
}

// RemoveCmd deletes a notification
func RemoveCmd(list *notification.List, item domain.Notification) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		if err := list.Remove(ctx, item.ID); err != nil {
			return ErrMsg{Err: err, Context: "deleting notification"}
		}
		return MutationDoneMsg{Action: "Deleted", Title: item.Title}
	}
}

// ClearStatusCmd returns a command that clears status id after a delay
func ClearStatusCmd(delay time.Duration, id int) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}
