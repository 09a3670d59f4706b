package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/campus/internal/api"
	"github.com/mmcdole/campus/internal/domain"
	"github.com/mmcdole/campus/internal/listcache"
	"github.com/mmcdole/campus/internal/notification"
	"github.com/mmcdole/campus/internal/tui/components"
	"github.com/mmcdole/campus/internal/tui/styles"
)

// categories is the tab order of the category bar; "" is all
var categories = append([]string{""}, domain.NotificationTypes...)

// Model is the notification screen
type Model struct {
	List    *notification.List
	changes <-chan struct{}

	// UI components
	Rows    components.NotificationList
	Search  textinput.Model
	Spinner spinner.Model
	Create  components.InputModal

	// UI state
	Width       int
	Height      int
	Ready       bool
	Searching   bool
	CategoryIdx int
	ConfirmItem *domain.Notification // pending delete
	StatusMsg   string
	StatusIsErr bool

	statusID    int  // bumped on every status change
	fetchFailed bool // status shows the list's fetch error
}

// NewModel creates the screen over an unopened list. The screen owns the
// list's change subscription.
func NewModel(list *notification.List) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.PromptStyle = styles.FilterPromptStyle
	search.Placeholder = "search titles and messages"
	search.CharLimit = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Model{
		List:    list,
		changes: list.Subscribe(),
		Rows:    components.NewNotificationList(),
		Search:  search,
		Spinner: sp,
		Create: components.NewInputModal(
			components.Field{Label: "Type", Placeholder: "announcement | assignment | event | alert"},
			components.Field{Label: "Title", Placeholder: "Short headline"},
			components.Field{Label: "Message", Placeholder: "Details", CharLimit: 500},
			components.Field{Label: "Audience", Placeholder: "all"},
		),
	}
}

// Init starts the first fetch and begins listening for list changes
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		OpenListCmd(m.List),
		WaitForChangeCmd(m.changes),
		m.Spinner.Tick,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case ListChangedMsg:
		cmd := m.syncRows()
		return m, tea.Batch(cmd, WaitForChangeCmd(m.changes))

	case ListClosedMsg:
		return m, nil

	case MutationDoneMsg:
		return m, m.setStatus(fmt.Sprintf("%s: %s", msg.Action, msg.Title), false, 3*time.Second)

	case ErrMsg:
		return m, m.setStatus(describeError(msg), true, 5*time.Second)

	case ClearStatusMsg:
		if msg.ID == m.statusID {
			m.clearStatus()
		}
		return m, nil
	}

	return m, nil
}

// syncRows copies the list state into the row component. A fetch error stays
// on the status line until it expires or the list recovers.
func (m *Model) syncRows() tea.Cmd {
	st := m.List.State()
	m.Rows.SetItems(st.Items, m.List.Query().Search)

	switch {
	case st.Err != nil && !m.fetchFailed:
		cmd := m.setStatus(describeError(ErrMsg{Err: st.Err, Context: "loading notifications"}), true, 5*time.Second)
		m.fetchFailed = true
		return cmd
	case st.Err == nil && m.fetchFailed:
		m.clearStatus()
	}
	return nil
}

// setStatus shows a status line and schedules its removal. A later status
// supersedes the pending removal.
func (m *Model) setStatus(text string, isErr bool, ttl time.Duration) tea.Cmd {
	m.statusID++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	m.fetchFailed = false
	return ClearStatusCmd(ttl, m.statusID)
}

func (m *Model) clearStatus() {
	m.statusID++
	m.StatusMsg = ""
	m.StatusIsErr = false
	m.fetchFailed = false
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Create.IsVisible() {
		return m.handleCreateKeys(msg)
	}
	if m.ConfirmItem != nil {
		return m.handleConfirmKeys(msg)
	}
	if m.Searching {
		return m.handleSearchKeys(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Up):
		m.Rows.MoveUp()

	case key.Matches(msg, Keys.Down):
		m.Rows.MoveDown()

	case key.Matches(msg, Keys.Search):
		m.Searching = true
		return m, m.Search.Focus()

	case key.Matches(msg, Keys.Escape):
		if m.Search.Value() != "" {
			m.Search.SetValue("")
			m.List.Search("")
		}

	case key.Matches(msg, Keys.Category):
		m.CategoryIdx = (m.CategoryIdx + 1) % len(categories)
		m.List.Filter(categories[m.CategoryIdx])

	case key.Matches(msg, Keys.NextPage):
		if p := m.List.Pagination(); p.HasNext {
			if err := m.List.GoToPage(p.Page + 1); err != nil {
				return m, m.showError(err, "changing page")
			}
		}

	case key.Matches(msg, Keys.PrevPage):
		if p := m.List.Pagination(); p.HasPrev {
			if err := m.List.GoToPage(p.Page - 1); err != nil {
				return m, m.showError(err, "changing page")
			}
		}

	case key.Matches(msg, Keys.LoadMore):
		if err := m.List.LoadMore(); err != nil {
			if errors.Is(err, listcache.ErrNoMorePages) {
				return m, m.setStatus("All notifications loaded", false, 2*time.Second)
			}
			return m, m.showError(err, "loading more")
		}

	case key.Matches(msg, Keys.Refresh):
		return m, RefreshCmd(m.List)

	case key.Matches(msg, Keys.MarkRead):
		if item, ok := m.Rows.Selected(); ok {
			return m, ToggleReadCmd(m.List, item)
		}

	case key.Matches(msg, Keys.Delete):
		if item, ok := m.Rows.Selected(); ok {
			m.ConfirmItem = &item
		}

	case key.Matches(msg, Keys.New):
		m.Create.Show("New notification")
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.Searching = false
		m.Search.Blur()
		return m, nil
	case "esc":
		m.Searching = false
		m.Search.Blur()
		m.Search.SetValue("")
		m.List.Search("")
		return m, nil
	}

	before := m.Search.Value()
	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	if v := m.Search.Value(); v != before {
		m.List.Search(v)
	}
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := *m.ConfirmItem
	switch {
	case key.Matches(msg, Keys.Confirm):
		m.ConfirmItem = nil
		return m, RemoveCmd(m.List, item)
	case key.Matches(msg, Keys.Deny):
		m.ConfirmItem = nil
	}
	return m, nil
}

func (m Model) handleCreateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.Create, cmd, submitted = m.Create.Update(msg)
	if !submitted {
		return m, cmd
	}

	v := m.Create.Values()
	typ, title, message, audience := v[0], v[1], v[2], v[3]
	if audience == "" {
		audience = "all"
	}
	m.Create.Hide()
	return m, CreateCmd(m.List, notification.NewInput(typ, title, message, audience))
}

func (m *Model) showError(err error, context string) tea.Cmd {
	return m.setStatus(describeError(ErrMsg{Err: err, Context: context}), true, 5*time.Second)
}

func (m *Model) updateLayout() {
	// Header (title + tabs + search) and footer (status + help)
	const chrome = 6
	m.Rows.SetSize(m.Width, max(m.Height-chrome, 1))
	m.Search.Width = max(m.Width-4, 10)
}

// describeError turns list errors into short status lines
func describeError(e ErrMsg) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(e.Err, &verr):
		return e.Context + ": " + verr.Error()
	case errors.Is(e.Err, domain.ErrAuthFailed):
		return "Not authorized. Run 'campus login' with a valid token."
	case errors.Is(e.Err, domain.ErrNotFound):
		return e.Context + ": notification no longer exists"
	case errors.Is(e.Err, domain.ErrNetwork):
		return e.Context + ": server unreachable (r to retry)"
	case api.IsTransient(e.Err):
		return e.Error() + " (r to retry)"
	}
	return e.Error()
}
