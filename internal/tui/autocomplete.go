package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CommandSuggestion pairs a slash command with its help text.
type CommandSuggestion struct {
	Command     string
	Description string
}

// Available slash commands, in display order.
var availableCommands = []CommandSuggestion{
	{Command: "/clear", Description: "Clear the conversation"},
	{Command: "/usage", Description: "Show send statistics"},
	{Command: "/email", Description: "Switch to email mode"},
	{Command: "/chat", Description: "Switch to chat mode"},
	{Command: "/prompt", Description: "Insert a demo question"},
	{Command: "/help", Description: "Show help"},
	{Command: "/quit", Description: "Exit the console"},
}

// filterCommands returns the commands matching the typed prefix.
func filterCommands(prefix string) []CommandSuggestion {
	if prefix == "" || prefix == "/" {
		return availableCommands
	}

	prefix = strings.ToLower(prefix)
	matches := make([]CommandSuggestion, 0, len(availableCommands))
	for _, cmd := range availableCommands {
		if strings.HasPrefix(cmd.Command, prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

// Autocomplete tracks the suggestion popup shown while typing a slash
// command. It activates on a leading "/" and deactivates on the first space,
// since arguments are free text.
type Autocomplete struct {
	suggestions []CommandSuggestion
	selected    int
}

// NewAutocomplete creates an inactive autocomplete.
func NewAutocomplete() *Autocomplete {
	return &Autocomplete{}
}

// Update recomputes the suggestions for the current input.
func (a *Autocomplete) Update(input string) {
	if !strings.HasPrefix(input, "/") || strings.ContainsRune(input, ' ') {
		a.Reset()
		return
	}
	a.suggestions = filterCommands(input)
	if a.selected >= len(a.suggestions) {
		a.selected = 0
	}
}

// IsActive reports whether the popup should be shown.
func (a *Autocomplete) IsActive() bool {
	return len(a.suggestions) > 0
}

// Next moves the selection down, wrapping around.
func (a *Autocomplete) Next() {
	if len(a.suggestions) > 0 {
		a.selected = (a.selected + 1) % len(a.suggestions)
	}
}

// Prev moves the selection up, wrapping around.
func (a *Autocomplete) Prev() {
	if len(a.suggestions) > 0 {
		a.selected = (a.selected + len(a.suggestions) - 1) % len(a.suggestions)
	}
}

// Selected returns the highlighted command, or empty string when inactive.
func (a *Autocomplete) Selected() string {
	if len(a.suggestions) == 0 {
		return ""
	}
	return a.suggestions[a.selected].Command
}

// Reset deactivates the popup.
func (a *Autocomplete) Reset() {
	a.suggestions = nil
	a.selected = 0
}

var (
	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	popupSelectedStyle = lipgloss.NewStyle().
				Background(secondaryColor).
				Foreground(lipgloss.Color("#FFFFFF"))

	popupCommandStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#E5E7EB"))
)

// View renders the suggestion popup.
func (a *Autocomplete) View(width int) string {
	if !a.IsActive() {
		return ""
	}

	lines := make([]string, 0, len(a.suggestions))
	for i, cmd := range a.suggestions {
		line := cmd.Command + strings.Repeat(" ", max(1, 10-len(cmd.Command))) + cmd.Description
		if i == a.selected {
			lines = append(lines, popupSelectedStyle.Render(line))
		} else {
			lines = append(lines, popupCommandStyle.Render(cmd.Command)+
				systemStyle.Render(strings.TrimPrefix(line, cmd.Command)))
		}
	}
	return popupStyle.Render(strings.Join(lines, "\n"))
}
