package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	mutedColor   = lipgloss.AdaptiveColor{Light: "244", Dark: "245"}
	bubbleColor  = lipgloss.AdaptiveColor{Light: "254", Dark: "238"}
	borderColor  = lipgloss.AdaptiveColor{Light: "250", Dark: "240"}
	errorColor   = lipgloss.AdaptiveColor{Light: "160", Dark: "203"}
	contentColor = lipgloss.AdaptiveColor{Light: "235", Dark: "252"}
)

// Styles derive from the widget's primary color.
type Styles struct {
	Panel         lipgloss.Style
	Header        lipgloss.Style
	Avatar        lipgloss.Style
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	UserBubble    lipgloss.Style
	BotBubble     lipgloss.Style
	WelcomeBubble lipgloss.Style
	Loading       lipgloss.Style
	Error         lipgloss.Style
	Input         lipgloss.Style
	SendButton    lipgloss.Style
	SendDisabled  lipgloss.Style
	Help          lipgloss.Style
	Status        lipgloss.Style
	Button        lipgloss.Style
}

func NewStyles(primary string) Styles {
	accent := lipgloss.Color(primary)
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor),
		Header: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(borderColor),
		Avatar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(accent).
			Padding(0, 1).
			Bold(true),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(contentColor),
		Subtitle: lipgloss.NewStyle().Foreground(mutedColor),
		UserBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(accent).
			Padding(0, 1),
		BotBubble: lipgloss.NewStyle().
			Foreground(contentColor).
			Background(bubbleColor).
			Padding(0, 1),
		WelcomeBubble: lipgloss.NewStyle().
			Foreground(mutedColor).
			Background(bubbleColor).
			Padding(0, 1),
		Loading: lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(errorColor).
			Padding(0, 1),
		Input: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(borderColor),
		SendButton:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(accent).Padding(0, 1),
		SendDisabled: lipgloss.NewStyle().Foreground(mutedColor).Background(bubbleColor).Padding(0, 1),
		Help:         lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1),
		Status:       lipgloss.NewStyle().Foreground(accent).Padding(0, 1),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(accent).
			Bold(true).
			Padding(1, 2),
	}
}
