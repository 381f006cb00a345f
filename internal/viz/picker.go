package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Choice is one entry in the scenario picker.
type Choice struct {
	Name string
	Info string
}

type picker struct {
	choices  []Choice
	cursor   int
	selected string
	theme    Theme
}

func newPicker(choices []Choice) picker {
	return picker{choices: choices, theme: Themes[0]}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.choices) > 0 {
			m.selected = m.choices[m.cursor].Name
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m picker) View() string {
	t := m.theme
	title := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.Muted)
	cur := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	name := lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	info := lipgloss.NewStyle().Foreground(t.Accent)
	key := lipgloss.NewStyle().Foreground(t.Secondary).Bold(true)

	var b strings.Builder
	b.WriteString("\n\n    " + title.Render("ORBSIM") + "\n    " + sub.Render("n-body gravity") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, c := range m.choices {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cur.Render("▸"), name.Render(fmt.Sprintf("%-14s", c.Name)), info.Render(c.Info)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(fmt.Sprintf("%-14s", c.Name)), sub.Render(c.Info)))
		}
	}
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" select  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// Pick shows choices and returns the selected name, or "" if the user quit.
func Pick(choices []Choice) (string, error) {
	out, err := tea.NewProgram(newPicker(choices), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	return out.(picker).selected, nil
}
