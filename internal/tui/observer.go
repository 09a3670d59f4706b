package tui

import tea "github.com/charmbracelet/bubbletea"

// WaitForChangeCmd blocks on a list's change feed and turns the next signal
// into a ListChangedMsg. Re-issue it after each message to keep listening.
func WaitForChangeCmd(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return ListClosedMsg{}
		}
		return ListChangedMsg{}
	}
}
