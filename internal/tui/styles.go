package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/VoxDesk/voxdesk/internal/format"
)

// Color palette
var (
	primaryColor   = lipgloss.Color("#2563EB") // Blue for VoxDesk branding
	secondaryColor = lipgloss.Color("#7C3AED") // Purple accent
	userColor      = lipgloss.Color("#3B82F6") // Blue for user messages
	agentColor     = lipgloss.Color("#10B981") // Green for agent replies
	dimColor       = lipgloss.Color("#6B7280") // Gray for help text
	warnColor      = lipgloss.Color("#F59E0B") // Amber for warnings
	errorColor     = lipgloss.Color("#EF4444") // Red for errors
)

// Styles
var (
	// Header bar style
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1)

	// Tab bar
	tabStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(secondaryColor).
			Padding(0, 2)

	// User message prefix
	userPrefixStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(userColor)

	// Agent message prefix
	agentPrefixStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(agentColor)

	// Message text styles
	userTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	agentTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F3F4F6"))

	// Badges behind agent replies (latency, confidence)
	badgeStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Input area border
	inputBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(secondaryColor).
				Padding(0, 1)

	// Help bar at bottom
	helpStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	// Sending indicator
	sendingStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true)

	// Error message
	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	// Warning (escalation notices)
	warnStyle = lipgloss.NewStyle().
			Foreground(warnColor).
			Bold(true)

	// System message (for commands, status)
	systemStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	// Viewport (chat area) border
	chatBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor)

	// Metric card
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1).
			Width(24)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	cardValueStyle = lipgloss.NewStyle().
			Bold(true)
)

// classColor maps a threshold class onto the palette.
func classColor(c format.Class) lipgloss.Color {
	switch c {
	case format.ClassGood:
		return agentColor
	case format.ClassWarning:
		return warnColor
	default:
		return errorColor
	}
}

// formatUserMessage formats a user message with styling
func formatUserMessage(text string) string {
	prefix := userPrefixStyle.Render("You:")
	return prefix + " " + userTextStyle.Render(text)
}

// formatAgentMessage formats an agent reply with latency and confidence badges.
func formatAgentMessage(text string, responseTimeMS int64, confidence float64) string {
	prefix := agentPrefixStyle.Render("Agent:")
	line := prefix + " " + agentTextStyle.Render(text)

	if responseTimeMS > 0 {
		latency := lipgloss.NewStyle().
			Foreground(classColor(format.ClassifyLatency(float64(responseTimeMS)))).
			Render(format.FormatResponseTime(float64(responseTimeMS)))
		conf := lipgloss.NewStyle().
			Foreground(classColor(format.ClassifyConfidence(confidence))).
			Render(format.FormatPercentage(confidence))
		line += badgeStyle.Render("  [") + latency + badgeStyle.Render(" · ") + conf + badgeStyle.Render("]")
	}
	return line
}

// formatSystemMessage formats a system message
func formatSystemMessage(text string) string {
	return systemStyle.Render("• " + text)
}

// formatError formats an error message
func formatError(text string) string {
	return errorStyle.Render("✗ " + text)
}

// formatEscalation formats an escalation notice
func formatEscalation() string {
	return warnStyle.Render("⚠ Message escalated to human agent")
}

// formatSending returns the in-flight indicator
func formatSending() string {
	return sendingStyle.Render("⏳ Sending...")
}

// formatTimestamp renders a message timestamp
func formatTimestamp(t time.Time) string {
	return badgeStyle.Render(t.Format("15:04"))
}

// renderCard renders one metric card.
func renderCard(title, value string, color lipgloss.Color) string {
	v := cardValueStyle
	if color != "" {
		v = v.Foreground(color)
	}
	return cardStyle.Render(cardTitleStyle.Render(title) + "\n" + v.Render(value))
}

// renderHeader renders the top bar with connection info.
func renderHeader(baseURL string, width int) string {
	title := headerStyle.Render(fmt.Sprintf(" VoxDesk Console · %s ", baseURL))
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Left, title)
	}
	return title
}
