package tui

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ListChangedMsg signals that the cached list changed state
type ListChangedMsg struct{}

// ListClosedMsg signals that the list's change feed closed
type ListClosedMsg struct{}

// MutationDoneMsg reports a finished create, update or remove
type MutationDoneMsg struct {
	Action string // "created", "marked read", ...
	Title  string
}

// ClearStatusMsg clears the status message it was scheduled for
type ClearStatusMsg struct {
	ID int
}
