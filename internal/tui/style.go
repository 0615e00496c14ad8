package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme carries the four color names from the configuration.
type Theme struct {
	HighlightFG string
	HighlightBG string
	NormalFG    string
	NormalBG    string
}

// ansiColors maps the terminal color names accepted in config.json to the
// ANSI palette indices lipgloss understands.
var ansiColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

// themeColor resolves a config color name. Unknown names pass through so
// hex values like "#89ddff" keep working.
func themeColor(name string) lipgloss.Color {
	if c, ok := ansiColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lipgloss.Color(c)
	}
	return lipgloss.Color(name)
}

type styles struct {
	title    lipgloss.Style
	help     lipgloss.Style
	selected lipgloss.Style
	normal   lipgloss.Style
	status   lipgloss.Style
	errText  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true).
			Foreground(themeColor(t.HighlightBG)).
			Padding(0, 1),
		help: lipgloss.NewStyle().Faint(true),
		selected: lipgloss.NewStyle().
			Foreground(themeColor(t.HighlightFG)).
			Background(themeColor(t.HighlightBG)),
		normal: lipgloss.NewStyle().
			Foreground(themeColor(t.NormalFG)).
			Background(themeColor(t.NormalBG)),
		status:  lipgloss.NewStyle().Faint(true),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
