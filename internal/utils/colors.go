package utils

import "github.com/charmbracelet/lipgloss"

// Terminal colors (ANSI 16-color palette indexes)
var (
	RedColor     = lipgloss.Color("9")  // For errors
	GreenColor   = lipgloss.Color("10") // For success/completion
	YellowColor  = lipgloss.Color("11") // For warnings
	BlueColor    = lipgloss.Color("12") // For headers and step info
	MagentaColor = lipgloss.Color("13") // For emphasis
	CyanColor    = lipgloss.Color("14") // For debug
)

// ColoredText renders text in the given foreground color
func ColoredText(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// BoldText renders bold text in the given foreground color
func BoldText(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(text)
}

// Info returns blue-colored text for info messages
func Info(text string) string {
	return ColoredText(text, BlueColor)
}

// Success returns green-colored text for success messages
func Success(text string) string {
	return ColoredText(text, GreenColor)
}

// Warning returns yellow-colored text for warning messages
func Warning(text string) string {
	return ColoredText(text, YellowColor)
}

// Error returns red-colored text for error messages
func Error(text string) string {
	return ColoredText(text, RedColor)
}

// Highlight returns magenta-colored text for emphasized content
func Highlight(text string) string {
	return ColoredText(text, MagentaColor)
}

// Debug returns cyan-colored text for debug info
func Debug(text string) string {
	return ColoredText(text, CyanColor)
}
