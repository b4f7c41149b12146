package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. The three band colors are shared by readiness scores and
// live heart-rate alerts.
var (
	brandColor = lipgloss.Color("#7C3AED")
	dimColor   = lipgloss.Color("#6B7280")
	inkColor   = lipgloss.Color("#F9FAFB")

	goodColor = lipgloss.Color("#10B981")
	warnColor = lipgloss.Color("#F59E0B")
	badColor  = lipgloss.Color("#EF4444")
)

var (
	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(inkColor).
			Background(brandColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle       = lipgloss.NewStyle().MarginBottom(1)
	navActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(brandColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(1, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brandColor).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().Foreground(dimColor).Width(20)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(inkColor)

	// clock and distance on the live run card
	clockStyle = valueStyle.PaddingRight(2)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(brandColor).
				Padding(0, 1)

	dimStyle     = lipgloss.NewStyle().Foreground(dimColor)
	statusStyle  = dimStyle.MarginTop(1)
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(brandColor)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(goodColor)

	goodStyle = lipgloss.NewStyle().Foreground(goodColor)
	warnStyle = lipgloss.NewStyle().Foreground(warnColor)
	badStyle  = lipgloss.NewStyle().Foreground(badColor)
)

// RenderMetric renders a labelled value
func RenderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left, labelStyle.Render(label), valueStyle.Render(value))
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return keyStyle.Render(key) + " " + dimStyle.Render(desc)
}

// renderScoreBar draws score out of 100 as a bar in the score's band color
func renderScoreBar(score, width int) string {
	filled := score * width / 100
	filled = max(0, min(filled, width))
	return scoreStyle(score).Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

// scoreStyle colors a readiness score by band
func scoreStyle(score int) lipgloss.Style {
	switch {
	case score < 50:
		return badStyle
	case score < 75:
		return warnStyle
	default:
		return goodStyle
	}
}
