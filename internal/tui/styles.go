package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/texpad/internal/compile"
)

var (
	ink = lipgloss.Color("#111111")

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(ink).Background(lipgloss.Color("#FFFDF5"))

	metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)

	pillBase = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(ink)

	pillStyles = map[compile.Tone]lipgloss.Style{
		compile.ToneNone: pillBase.Background(lipgloss.Color("#E5E5E5")),
		compile.ToneBusy: pillBase.Background(lipgloss.Color("#FFE08A")),
		compile.ToneOK:   pillBase.Background(lipgloss.Color("#B8F2B0")),
		compile.ToneBad:  pillBase.Background(lipgloss.Color("#FF9A9A")),
	}

	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#CC0000")).
			Foreground(lipgloss.Color("#CC0000")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

func pill(s compile.Status) string {
	style, ok := pillStyles[s.Tone()]
	if !ok {
		style = pillStyles[compile.ToneNone]
	}
	return style.Render(s.Pill())
}
