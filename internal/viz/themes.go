package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	// Bodies colours body glyphs and trails by registry index, cycling.
	Bodies []lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:      "deep-space",
		Primary:   lipgloss.Color("#00ffff"),
		Secondary: lipgloss.Color("#8888ff"),
		Accent:    lipgloss.Color("#ff00ff"),
		Text:      lipgloss.Color("#e8e8ff"),
		Muted:     lipgloss.Color("#666688"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffaa00"),
		Bodies:    []lipgloss.Color{"#ffd75f", "#5fafff", "#ff5f87", "#87ff87", "#d787ff", "#ffaf5f"},
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Bodies:    []lipgloss.Color{"#00ff00", "#88ff88", "#00aa00"},
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Bodies:    []lipgloss.Color{"#ffffff"},
	}

	Themes = []Theme{
		ThemeDeepSpace,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// BodyColor returns the colour for the body at index i.
func (t Theme) BodyColor(i int) lipgloss.Color {
	if len(t.Bodies) == 0 {
		return t.Text
	}
	if i < 0 {
		i = -i
	}
	return t.Bodies[i%len(t.Bodies)]
}
