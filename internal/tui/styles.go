package tui

import "github.com/charmbracelet/lipgloss"

// palette maps presentation color classes to terminal colors.
var palette = map[string]lipgloss.Color{
	"orange-400": lipgloss.Color("#FFA726"),
	"green-400":  lipgloss.Color("#66BB6A"),
	"blue-700":   lipgloss.Color("#1976D2"),
	"grey-800":   lipgloss.Color("#424242"),
	"blue-900":   lipgloss.Color("#0D47A1"),
	"grey-900":   lipgloss.Color("#212121"),
}

var (
	foreground = lipgloss.Color("#EEFFFF")
	muted      = lipgloss.Color("#757575")
	highlight  = lipgloss.Color("#42A5F5")
	danger     = lipgloss.Color("#EF5350")

	headerStyle = lipgloss.NewStyle().
			Foreground(foreground).
			Background(lipgloss.Color("#212121")).
			Bold(true).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(foreground).
			Bold(true)

	hypeStyle     = lipgloss.NewStyle().Foreground(muted).Italic(true)
	lastReadStyle = lipgloss.NewStyle().Foreground(muted)
	emptyStyle    = lipgloss.NewStyle().Foreground(danger).Padding(1, 2)
	statusStyle   = lipgloss.NewStyle().Foreground(muted)
	errorStyle    = lipgloss.NewStyle().Foreground(danger)
)

func colorFor(class string) lipgloss.Color {
	if color, ok := palette[class]; ok {
		return color
	}
	return muted
}

func cardStyle(borderClass string, selected bool) lipgloss.Style {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFor(borderClass)).
		Padding(0, 1)
	if selected {
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(highlight)
	}
	return style
}

func buttonStyle(class string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(foreground).
		Background(colorFor(class)).
		Padding(0, 1)
}
