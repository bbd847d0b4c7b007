// Package ui holds the terminal styling used by the muse CLI.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorText      = lipgloss.Color("252") // White/Gray
	ColorBlue      = lipgloss.Color("75")  // Blue for answers

	StyleSubtle = lipgloss.NewStyle().Foreground(ColorSecondary)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	// Answer box around a persona's reply
	StyleAnswerBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(0, 1)

	// Prompt preview box
	StylePromptBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)
)

// Prompt renders an assembled prompt preview for a persona.
func Prompt(identity, text string) string {
	return StyleHeader.Render(identity) + "\n" + StylePromptBox.Render(text)
}

// Answer renders a persona reply headed by the persona identity.
func Answer(identity, text string) string {
	header := StyleHeader.Render(identity)
	return header + "\n" + StyleAnswerBox.Render(text)
}
