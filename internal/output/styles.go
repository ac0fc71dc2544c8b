package output

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#00D4FF")
	colorMuted   = lipgloss.Color("#6B7280")
)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
	key    lipgloss.Style
}

func newStyles(plain bool) styles {
	if plain {
		return styles{
			title:  lipgloss.NewStyle(),
			header: lipgloss.NewStyle(),
			muted:  lipgloss.NewStyle(),
			key:    lipgloss.NewStyle(),
		}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		header: lipgloss.NewStyle().Bold(true),
		muted:  lipgloss.NewStyle().Foreground(colorMuted),
		key:    lipgloss.NewStyle().Foreground(colorPrimary),
	}
}
