package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/campus/internal/tui/styles"
)

// View renders the screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.Create.IsVisible() {
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.Create.View())
	}

	sections := []string{
		m.renderHeader(),
		m.renderTabs(),
		m.renderSearch(),
		m.Rows.View(),
	}
	body := lipgloss.JoinVertical(lipgloss.Left, sections...)

	// Pin the footer to the bottom
	bodyHeight := lipgloss.Height(body)
	footer := m.renderFooter()
	if gap := m.Height - bodyHeight - lipgloss.Height(footer); gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + "\n" + footer
}

func (m Model) renderHeader() string {
	st := m.List.State()
	left := styles.TitleStyle.Render("Notifications")

	unread := m.List.UnreadLoaded()
	right := styles.DimStyle.Render(fmt.Sprintf("%d total", st.Statistics.Total))
	if unread > 0 {
		right = styles.AccentStyle.Render(fmt.Sprintf("%d unread", unread)) + styles.DimStyle.Render(" · ") + right
	}

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return " " + left + strings.Repeat(" ", gap) + right
}

// renderTabs shows one tab per category with its server-side count
func (m Model) renderTabs() string {
	stats := m.List.Statistics()
	tabs := make([]string, len(categories))
	for i, c := range categories {
		label := "all"
		n := stats.Total
		if c != "" {
			label = c
			n = stats.Count(c)
		}
		text := fmt.Sprintf("%s %d", label, n)
		if i == m.CategoryIdx {
			tabs[i] = styles.ActiveTabStyle.Render(text)
		} else {
			tabs[i] = styles.TabStyle.Render(text)
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderSearch() string {
	if m.Searching || m.Search.Value() != "" {
		return " " + m.Search.View()
	}
	return ""
}

func (m Model) renderFooter() string {
	st := m.List.State()

	var left string
	switch {
	case m.ConfirmItem != nil:
		left = styles.ErrorStyle.Render(fmt.Sprintf("Delete %q? (y/n)", styles.Truncate(m.ConfirmItem.Title, 40)))
	case st.Loading || st.Mutating:
		left = m.Spinner.View() + " " + styles.DimStyle.Render("Syncing...")
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	p := st.Pagination
	pageInfo := ""
	if p.TotalPages > 0 {
		pageInfo = styles.DimStyle.Render(fmt.Sprintf("%d shown · page %d/%d", len(st.Items), p.Page, p.TotalPages))
	}

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(pageInfo)-2, 1)
	status := " " + left + strings.Repeat(" ", gap) + pageInfo

	return status + "\n" + " " + m.renderHelp()
}

func (m Model) renderHelp() string {
	bindings := []struct{ key, desc string }{
		{Keys.Search.Help().Key, Keys.Search.Help().Desc},
		{Keys.Category.Help().Key, Keys.Category.Help().Desc},
		{Keys.PrevPage.Help().Key + Keys.NextPage.Help().Key, "page"},
		{Keys.LoadMore.Help().Key, Keys.LoadMore.Help().Desc},
		{Keys.MarkRead.Help().Key, Keys.MarkRead.Help().Desc},
		{Keys.New.Help().Key, Keys.New.Help().Desc},
		{Keys.Delete.Help().Key, Keys.Delete.Help().Desc},
		{Keys.Refresh.Help().Key, Keys.Refresh.Help().Desc},
		{Keys.Quit.Help().Key, Keys.Quit.Help().Desc},
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = styles.HelpKeyStyle.Render(b.key) + " " + styles.HelpDescStyle.Render(b.desc)
	}
	return strings.Join(parts, "  ")
}
