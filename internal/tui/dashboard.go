package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/VoxDesk/voxdesk/internal/dashboard"
	"github.com/VoxDesk/voxdesk/internal/format"
)

// renderSnapshotTag renders the provenance of the current stats.
func renderSnapshotTag(snap dashboard.Snapshot) string {
	switch snap.State {
	case dashboard.StateLive:
		return lipgloss.NewStyle().Foreground(agentColor).Render("● live")
	case dashboard.StateStale:
		return warnStyle.Render("● stale (backend unreachable)")
	case dashboard.StatePlaceholder:
		return lipgloss.NewStyle().Foreground(secondaryColor).Render("● demo data (backend unreachable)")
	default:
		return systemStyle.Render("● loading...")
	}
}

// renderAgentStatus renders the per-status agent counts on one line.
func renderAgentStatus(status map[string]int) string {
	if len(status) == 0 {
		return ""
	}
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", status[k], k))
	}
	return systemStyle.Render(strings.Join(parts, " · "))
}

// renderStats renders the dashboard tab body.
func renderStats(snap dashboard.Snapshot, lastLoadTest *dashboard.LoadTestResult, width int) string {
	var b strings.Builder

	b.WriteString(renderSnapshotTag(snap))
	if !snap.LastUpdated.IsZero() {
		b.WriteString(badgeStyle.Render("  updated " + snap.LastUpdated.Format("15:04:05")))
	}
	b.WriteString("\n\n")

	if snap.Stats == nil {
		b.WriteString(systemStyle.Render("Waiting for the first statistics fetch..."))
		return b.String()
	}
	stats := snap.Stats

	cards := []string{
		renderCard("Agents", format.FormatNumber(stats.TotalAgents), ""),
		renderCard("Messages", format.FormatNumber(stats.TotalMessagesProcessed), ""),
		renderCard("Escalations", format.FormatNumber(stats.TotalEscalations), ""),
		renderCard("Resolution",
			format.FormatPercentage(stats.ResolutionRate),
			classColor(format.ClassifyConfidence(stats.ResolutionRate))),
		renderCard("Avg response",
			format.FormatResponseTime(stats.AverageResponseTimeMS),
			classColor(format.ClassifyLatency(stats.AverageResponseTimeMS))),
		renderCard("Pending", fmt.Sprintf("%d", stats.PendingMessages), ""),
		renderCard("Uptime", format.FormatDuration(stats.UptimeSeconds), ""),
		renderCard("Throughput", fmt.Sprintf("%.1f msg/min", stats.MessagesPerMinute), ""),
	}

	perRow := 3
	if width >= 110 {
		perRow = 4
	} else if width > 0 && width < 80 {
		perRow = 2
	}
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderAgentStatus(stats.AgentStatus))

	if lastLoadTest != nil {
		b.WriteString("\n\n")
		if lastLoadTest.Passed {
			b.WriteString(agentPrefixStyle.Render("✓ ") + systemStyle.Render(lastLoadTest.String()))
		} else {
			b.WriteString(formatError(lastLoadTest.String()))
		}
	}

	return b.String()
}
