package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// NotificationList renders the cached notifications with a cursor. Rows whose
// title matches the active search term have the matched characters highlighted.
type NotificationList struct {
	items   []domain.Notification
	matches map[int][]int // item index -> matched byte offsets in the title
	cursor  int
	offset  int
	width   int
	height  int
}

// NewNotificationList creates an empty list
func NewNotificationList() NotificationList {
	return NotificationList{matches: map[int][]int{}}
}

// SetSize sets the rendering area
func (l *NotificationList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.clampOffset()
}

// SetItems replaces the rows. The cursor stays on the same notification when
// it is still present.
func (l *NotificationList) SetItems(items []domain.Notification, term string) {
	var selectedID string
	if sel, ok := l.Selected(); ok {
		selectedID = sel.ID
	}

	l.items = items
	l.matches = highlightTitles(items, term)

	l.cursor = 0
	for i, it := range items {
		if it.ID == selectedID {
			l.cursor = i
			break
		}
	}
	l.clampOffset()
}

// Len returns the number of rows
func (l NotificationList) Len() int {
	return len(l.items)
}

// Cursor returns the selected row index
func (l NotificationList) Cursor() int {
	return l.cursor
}

// Selected returns the notification under the cursor
func (l NotificationList) Selected() (domain.Notification, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return domain.Notification{}, false
	}
	return l.items[l.cursor], true
}

// MoveUp moves the cursor up one row
func (l *NotificationList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
		l.clampOffset()
	}
}

// MoveDown moves the cursor down one row
func (l *NotificationList) MoveDown() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
		l.clampOffset()
	}
}

// AtBottom reports whether the cursor is on the last row
func (l NotificationList) AtBottom() bool {
	return len(l.items) > 0 && l.cursor == len(l.items)-1
}

func (l *NotificationList) clampOffset() {
	if l.cursor >= len(l.items) {
		l.cursor = max(len(l.items)-1, 0)
	}
	if l.height <= 0 {
		l.offset = 0
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
}

// View renders the visible rows
func (l NotificationList) View() string {
	if len(l.items) == 0 {
		return styles.DimStyle.Render("  No notifications")
	}

	end := len(l.items)
	if l.height > 0 && l.offset+l.height < end {
		end = l.offset + l.height
	}

	const typeWidth = 12
	const dateWidth = 12

	var b strings.Builder
	for i := l.offset; i < end; i++ {
		it := l.items[i]
		selected := i == l.cursor

		status := styles.UnreadChar
		statusColor := styles.Accent
		if it.Read {
			status = styles.ReadChar
			statusColor = styles.Green
		}
		typeColor := styles.CategoryColor(it.Type)

		titleWidth := l.width - typeWidth - dateWidth - 8
		title := styles.Truncate(it.Title, max(titleWidth, 10))

		parts := []styles.RowPart{
			{Text: status + " ", Foreground: &statusColor},
			{Text: styles.Pad(it.Type, typeWidth), Foreground: &typeColor},
		}
		parts = append(parts, titleParts(title, l.matches[i], !it.Read)...)
		if pad := max(titleWidth, 10) - lipgloss.Width(title); pad > 0 {
			parts = append(parts, styles.RowPart{Text: strings.Repeat(" ", pad)})
		}
		dim := styles.DimGray
		parts = append(parts, styles.RowPart{Text: " " + it.CreatedAt.Format("Jan 02 15:04"), Foreground: &dim})

		b.WriteString(styles.RenderListRow(parts, selected, l.width))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// titleParts splits a title into runs of matched and unmatched text
func titleParts(title string, matched []int, bold bool) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title, Bold: bold}}
	}

	set := make(map[int]bool, len(matched))
	for _, idx := range matched {
		set[idx] = true
	}

	accent := styles.Accent
	var parts []styles.RowPart
	var run strings.Builder
	runMatch := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		p := styles.RowPart{Text: run.String(), Bold: bold}
		if runMatch {
			p.Foreground = &accent
			p.Bold = true
		}
		parts = append(parts, p)
		run.Reset()
	}

	for i, r := range title {
		if set[i] != runMatch {
			flush()
			runMatch = set[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}

// highlightTitles finds the characters of each title that match term
func highlightTitles(items []domain.Notification, term string) map[int][]int {
	out := map[int][]int{}
	term = strings.TrimSpace(term)
	if term == "" || len(items) == 0 {
		return out
	}

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = strings.ToLower(it.Title)
	}
	for _, m := range fuzzy.Find(strings.ToLower(term), titles) {
		out[m.Index] = m.MatchedIndexes
	}
	return out
}
