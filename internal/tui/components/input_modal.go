package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/campus/internal/tui/styles"
)

// Field describes one input of an InputModal
type Field struct {
	Label       string
	Placeholder string
	CharLimit   int
}

// InputModal is a small form of labelled text inputs. Tab moves between
// fields and enter on the last field submits.
type InputModal struct {
	visible bool
	title   string
	labels  []string
	inputs  []textinput.Model
	focus   int
}

// NewInputModal creates a hidden modal with the given fields
func NewInputModal(fields ...Field) InputModal {
	m := InputModal{}
	for _, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = f.CharLimit
		if ti.CharLimit == 0 {
			ti.CharLimit = 120
		}
		ti.Width = 40
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle

		m.labels = append(m.labels, f.Label)
		m.inputs = append(m.inputs, ti)
	}
	return m
}

// Show displays the modal with a title and empty fields
func (m *InputModal) Show(title string) {
	m.visible = true
	m.title = title
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Values returns the trimmed field values in field order
func (m InputModal) Values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible || len(m.inputs) == 0 {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.Hide()
			return m, nil, false
		case "enter":
			if m.focus == len(m.inputs)-1 {
				return m, nil, true
			}
			m.setFocus(m.focus + 1)
			return m, nil, false
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil, false
		case "shift+tab", "up":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

func (m *InputModal) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 48

	bg := lipgloss.NewStyle().Width(modalWidth).Background(styles.SlateDark)
	titleStyle := bg.Foreground(styles.White).Bold(true)
	labelStyle := bg.Foreground(styles.LightGray)
	activeLabelStyle := bg.Foreground(styles.Accent).Bold(true)

	rows := []string{titleStyle.Render(m.title), bg.Render("")}
	for i, in := range m.inputs {
		label := labelStyle
		if i == m.focus {
			label = activeLabelStyle
		}
		rows = append(rows, label.Render(m.labels[i]), bg.Render(in.View()), bg.Render(""))
	}
	rows = append(rows, bg.Foreground(styles.DimGray).Render("tab next · enter submit · esc cancel"))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
