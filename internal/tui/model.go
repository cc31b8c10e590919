// Package tui is the interactive console: a dashboard view, a chat/email
// demo, and a voice demo, driving the controllers underneath.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/VoxDesk/voxdesk/internal/api"
	"github.com/VoxDesk/voxdesk/internal/audio"
	"github.com/VoxDesk/voxdesk/internal/config"
	"github.com/VoxDesk/voxdesk/internal/dashboard"
	"github.com/VoxDesk/voxdesk/internal/notify"
	"github.com/VoxDesk/voxdesk/internal/ratelimit"
	"github.com/VoxDesk/voxdesk/internal/session"
	"github.com/VoxDesk/voxdesk/internal/store"
	"github.com/VoxDesk/voxdesk/internal/usage"
	"github.com/VoxDesk/voxdesk/internal/voice"
	"github.com/VoxDesk/voxdesk/pkg/types"
)

// Tab identifies the active console view.
type Tab int

const (
	TabDashboard Tab = iota
	TabChat
	TabVoice
)

// String returns the tab label.
func (t Tab) String() string {
	switch t {
	case TabChat:
		return "Chat"
	case TabVoice:
		return "Voice"
	default:
		return "Dashboard"
	}
}

// Command represents a slash command
type Command int

const (
	CmdNone Command = iota
	CmdClear
	CmdUsage
	CmdEmail
	CmdChat
	CmdPrompt
	CmdHelp
	CmdQuit
	CmdUnknown
)

// entry is one line of the chat transcript.
type entry struct {
	msg       types.Message
	timestamp time.Time
	system    bool
}

// tickMsg re-renders the live views once a second
type tickMsg time.Time

// sendResultMsg carries the outcome of one chat or email send.
type sendResultMsg struct {
	channel   types.Channel
	resp      *types.MessageResponse
	latencyMS int64
	err       error
}

// loadTestMsg carries a finished load test run.
type loadTestMsg struct {
	result dashboard.LoadTestResult
}

// scaleMsg carries an auto-scale acknowledgement.
type scaleMsg struct {
	resp *types.ScaleResponse
	err  error
}

// voiceDoneMsg is sent when a blocking voice action finishes.
type voiceDoneMsg struct {
	err error
}

// demoQuestions are the canned chat questions from the demo console.
var demoQuestions = []string{
	"Comment puis-je réinitialiser mon mot de passe ?",
	"Je n'arrive pas à me connecter à mon compte",
	"Quels sont vos tarifs pour l'abonnement premium ?",
	"Comment puis-je annuler ma commande ?",
	"Mon paiement a été refusé, que faire ?",
	"Je souhaite modifier mes informations de profil",
	"Comment contacter le support technique ?",
	"Puis-je obtenir un remboursement ?",
	"Où puis-je télécharger votre application mobile ?",
	"Comment puis-je changer mon adresse email ?",
}

// demoEmail is the canned email used when sending in email mode without a
// subject of your own.
var demoEmail = struct {
	subject string
	content string
}{
	subject: "Problème de connexion urgent",
	content: "Bonjour, je n'arrive plus à me connecter à mon compte depuis ce matin. Pouvez-vous m'aider rapidement ?",
}

// Model is the bubbletea model for the console
type Model struct {
	cfg      *config.Config
	client   *api.Client
	poller   *dashboard.Poller
	voice    *voice.Session
	sessions *session.Store
	usage    *usage.Tracker
	limiter  *ratelimit.Limiter

	tab      Tab
	viewport viewport.Model
	textarea textarea.Model
	entries  []entry

	emailMode    bool
	emailSubject string
	sending      bool
	voiceBusy    bool
	lastLoadTest *dashboard.LoadTestResult
	notice       string
	err          error

	autocomplete *Autocomplete
	promptIdx    int
	width        int
	height       int
	ready        bool
	quitting     bool
}

// New wires the console from config.
func New(cfg *config.Config) (*Model, error) {
	client := api.New(cfg.API.URL, api.StaticCredentials(cfg.API.Token), notify.Log())
	if cfg.API.TimeoutSeconds > 0 {
		client.SetTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second)
	}

	pollInterval := dashboard.DefaultPollInterval
	if cfg.Dashboard.PollSeconds > 0 {
		pollInterval = time.Duration(cfg.Dashboard.PollSeconds) * time.Second
	}
	poller := dashboard.NewWithInterval(client, pollInterval)

	sessions := session.NewStore()
	if cfg.History.Enabled {
		if persister, err := store.NewSQLiteStore(cfg.History.Path); err == nil {
			if err := sessions.SetPersister(persister); err != nil {
				return nil, fmt.Errorf("failed to load history: %w", err)
			}
		}
	}

	capture := audio.NewCapture(cfg.Voice.CaptureCommand, cfg.Voice.SampleRate)
	player := audio.NewPlayer(cfg.Voice.PlaybackCommand)
	voiceSession := voice.NewSession(
		voice.CaptureRecorder{Capture: capture},
		player,
		client,
		cfg.Console.UserID,
		notify.Log(),
	)

	ta := textarea.New()
	ta.Placeholder = "Type your message... (Enter to send)"
	ta.Focus()
	ta.CharLimit = 4096
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	return &Model{
		cfg:          cfg,
		client:       client,
		poller:       poller,
		voice:        voiceSession,
		sessions:     sessions,
		usage:        usage.NewTracker(),
		limiter:      ratelimit.New(cfg.Console.RateLimit),
		textarea:     ta,
		autocomplete: NewAutocomplete(),
	}, nil
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	m.poller.Start()
	return tea.Batch(textarea.Blink, m.tick())
}

// tick returns a command that refreshes the live views
func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.poller.Stop()
			m.quitting = true
			return m, tea.Quit

		case tea.KeyTab:
			if m.autocomplete.IsActive() {
				m.textarea.SetValue(m.autocomplete.Selected())
				m.textarea.CursorEnd()
				m.autocomplete.Reset()
				return m, nil
			}
			m.tab = (m.tab + 1) % 3
			m.notice = ""
			m.err = nil
			return m, nil

		case tea.KeyUp:
			if m.autocomplete.IsActive() {
				m.autocomplete.Prev()
				return m, nil
			}

		case tea.KeyDown:
			if m.autocomplete.IsActive() {
				m.autocomplete.Next()
				return m, nil
			}

		case tea.KeyEsc:
			if m.autocomplete.IsActive() {
				m.autocomplete.Reset()
				return m, nil
			}

		case tea.KeyEnter:
			if m.autocomplete.IsActive() {
				m.textarea.SetValue(m.autocomplete.Selected() + " ")
				m.textarea.CursorEnd()
				m.autocomplete.Reset()
				return m, nil
			}
			if m.tab == TabChat && !m.sending {
				text := strings.TrimSpace(m.textarea.Value())
				if text != "" {
					m.textarea.Reset()
					m.autocomplete.Reset()
					return m.handleInput(text)
				}
			}
			return m, nil
		}

		// Tab-local shortcuts outside the text input
		if m.tab != TabChat {
			if model, cmd, handled := m.handleShortcut(msg); handled {
				return model, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		tabsHeight := 1
		inputHeight := 5
		bodyHeight := m.height - headerHeight - tabsHeight - inputHeight - 3

		if !m.ready {
			m.viewport = viewport.New(m.width-2, bodyHeight)
			m.viewport.SetContent(m.renderEntries())
			m.ready = true
		} else {
			m.viewport.Width = m.width - 2
			m.viewport.Height = bodyHeight
		}

		m.textarea.SetWidth(m.width - 4)
		return m, nil

	case sendResultMsg:
		m.sending = false
		if msg.err != nil {
			m.err = msg.err
			m.usage.RecordFailure(msg.channel)
		} else {
			m.err = nil
			m.appendReply(msg)
		}
		m.viewport.SetContent(m.renderEntries())
		m.viewport.GotoBottom()
		return m, nil

	case loadTestMsg:
		result := msg.result
		m.lastLoadTest = &result
		m.notice = result.String()
		return m, nil

	case scaleMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.notice = msg.resp.Message
		}
		return m, nil

	case voiceDoneMsg:
		m.voiceBusy = false
		m.err = msg.err
		return m, nil

	case tickMsg:
		// Dashboard and voice views re-render from live state
		return m, m.tick()
	}

	if m.tab == TabChat {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.autocomplete.Update(m.textarea.Value())
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleShortcut handles single-key actions on the dashboard and voice tabs.
func (m Model) handleShortcut(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()

	if m.tab == TabDashboard {
		switch key {
		case "r":
			return m, func() tea.Msg {
				m.poller.Refresh(context.Background())
				return tickMsg(time.Now())
			}, true
		case "t":
			m.notice = "Load test running..."
			n := m.cfg.Dashboard.LoadTestSize
			return m, func() tea.Msg {
				return loadTestMsg{result: m.poller.RunLoadTest(context.Background(), n)}
			}, true
		case "s":
			return m, func() tea.Msg {
				resp, err := m.poller.AutoScale(context.Background())
				return scaleMsg{resp: resp, err: err}
			}, true
		}
		return m, nil, false
	}

	// Voice tab
	switch key {
	case "r":
		if m.voice.Status().State == voice.StateRecording {
			m.voiceBusy = true
			return m, func() tea.Msg {
				return voiceDoneMsg{err: m.voice.Stop(context.Background())}
			}, true
		}
		m.err = m.voice.Start()
		return m, nil, true
	case "c":
		m.err = m.voice.Clear()
		return m, nil, true
	case "1", "2", "3", "4", "5":
		prompts := voice.DemoPrompts()
		idx := int(key[0] - '1')
		if idx < len(prompts) {
			prompt := prompts[idx]
			m.voiceBusy = true
			return m, func() tea.Msg {
				return voiceDoneMsg{err: m.voice.Simulate(context.Background(), prompt)}
			}, true
		}
	}
	return m, nil, false
}

// handleInput processes chat input (message or command)
func (m Model) handleInput(text string) (tea.Model, tea.Cmd) {
	if isCommand(text) {
		cmd, arg := parseCommand(text)
		return m.handleCommand(cmd, arg)
	}

	channel := types.ChannelChat
	if m.emailMode {
		channel = types.ChannelEmail
	}

	if !m.limiter.AllowSend(channel) {
		wait := m.limiter.RetryAfter(channel)
		m.addSystemEntry(fmt.Sprintf("Rate limit reached, try again in %s", wait.Round(time.Second)))
		m.viewport.SetContent(m.renderEntries())
		m.viewport.GotoBottom()
		return m, nil
	}

	sess := m.sessions.GetOrCreate(channel, m.cfg.Console.UserID)

	userMsg := types.Message{
		Content:        text,
		SenderType:     "user",
		SenderID:       m.cfg.Console.UserID,
		CreatedAt:      time.Now(),
		ConversationID: sess.ConversationID(),
	}
	m.entries = append(m.entries, entry{msg: userMsg, timestamp: time.Now()})
	sess.Append(userMsg)

	m.sending = true
	m.err = nil
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()

	subject := m.emailSubject
	m.emailSubject = ""
	return m, m.sendCmd(channel, sess, text, subject)
}

// sendCmd fires one send against the backend.
func (m Model) sendCmd(channel types.Channel, sess *session.Session, text, subject string) tea.Cmd {
	userID := m.cfg.Console.UserID
	return func() tea.Msg {
		start := time.Now()
		var resp *types.MessageResponse
		var err error

		if channel == types.ChannelEmail {
			if subject == "" {
				subject = "Support Request"
			}
			resp, err = m.client.SendEmailMessage(context.Background(), types.EmailMessage{
				Subject:        subject,
				Content:        text,
				FromEmail:      userID + "@demo.voxdesk.io",
				ToEmail:        "support@company.com",
				ConversationID: sess.ConversationID(),
			})
		} else {
			resp, err = m.client.SendChatMessage(context.Background(), types.ChatMessage{
				Content:        text,
				ConversationID: sess.ConversationID(),
				UserID:         userID,
				Channel:        channel,
			})
		}

		return sendResultMsg{
			channel:   channel,
			resp:      resp,
			latencyMS: time.Since(start).Milliseconds(),
			err:       err,
		}
	}
}

// appendReply folds a backend reply into the transcript and the session.
func (m *Model) appendReply(msg sendResultMsg) {
	resp := msg.resp
	sess := m.sessions.GetOrCreate(msg.channel, m.cfg.Console.UserID)
	sess.BindConversation(resp.ConversationID)

	agentMsg := types.Message{
		ID:              resp.ID,
		Content:         resp.Content,
		SenderType:      "agent",
		AgentID:         resp.AgentID,
		ConfidenceScore: resp.ConfidenceScore,
		ResponseTimeMS:  resp.ResponseTimeMS,
		Escalated:       resp.Escalated,
		CreatedAt:       time.Now(),
		ConversationID:  resp.ConversationID,
	}
	m.entries = append(m.entries, entry{msg: agentMsg, timestamp: time.Now()})
	sess.Append(agentMsg)
	if m.cfg.History.Enabled {
		_ = m.sessions.Persist(sess)
	}

	m.usage.Record(msg.channel, msg.latencyMS, resp.Escalated)
	if resp.Escalated {
		m.notice = "escalated"
	}
}

// handleCommand processes slash commands
func (m Model) handleCommand(cmd Command, arg string) (tea.Model, tea.Cmd) {
	switch cmd {
	case CmdClear:
		channel := types.ChannelChat
		if m.emailMode {
			channel = types.ChannelEmail
		}
		m.sessions.GetOrCreate(channel, m.cfg.Console.UserID).Clear()
		m.entries = nil
		m.addSystemEntry("Conversation cleared")

	case CmdUsage:
		m.addSystemEntry("chat: " + statsLine(m.usage, types.ChannelChat))
		m.addSystemEntry("email: " + statsLine(m.usage, types.ChannelEmail))

	case CmdEmail:
		m.emailMode = true
		if arg != "" {
			m.emailSubject = arg
		} else {
			m.emailSubject = demoEmail.subject
			m.textarea.SetValue(demoEmail.content)
			m.textarea.CursorEnd()
		}
		m.addSystemEntry(fmt.Sprintf("Email mode, subject: %s", m.emailSubject))

	case CmdChat:
		m.emailMode = false
		m.addSystemEntry("Chat mode")

	case CmdPrompt:
		q := demoQuestions[m.promptIdx%len(demoQuestions)]
		m.promptIdx++
		m.textarea.SetValue(q)
		m.textarea.CursorEnd()

	case CmdHelp:
		m.addSystemEntry(helpText())

	case CmdQuit:
		m.poller.Stop()
		m.quitting = true
		return m, tea.Quit

	case CmdUnknown:
		m.addSystemEntry("Unknown command. Type /help for available commands.")
	}

	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
	return m, nil
}

func statsLine(tracker *usage.Tracker, channel types.Channel) string {
	s := tracker.Get(channel)
	return s.String()
}

// addSystemEntry adds a status line to the transcript
func (m *Model) addSystemEntry(text string) {
	m.entries = append(m.entries, entry{
		msg:       types.Message{Content: text},
		timestamp: time.Now(),
		system:    true,
	})
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(renderHeader(m.client.BaseURL(), m.width))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.tab {
	case TabDashboard:
		b.WriteString(renderStats(m.poller.Snapshot(), m.lastLoadTest, m.width))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("r refresh · t load test · s auto-scale · tab switch view · ctrl+c quit"))

	case TabChat:
		m.viewport.SetContent(m.renderEntries())
		b.WriteString(chatBorderStyle.Width(m.width - 2).Render(m.viewport.View()))
		b.WriteString("\n")
		if m.autocomplete.IsActive() {
			b.WriteString(m.autocomplete.View(m.width - 4))
			b.WriteString("\n")
		}
		b.WriteString(inputBorderStyle.Width(m.width - 2).Render(m.textarea.View()))
		b.WriteString("\n")
		mode := "chat"
		if m.emailMode {
			mode = "email"
		}
		b.WriteString(helpStyle.Render(fmt.Sprintf("mode: %s · enter send · /help commands · tab switch view", mode)))

	case TabVoice:
		b.WriteString(m.renderVoice())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("r record/stop · 1-5 simulate prompt · c clear · tab switch view"))
	}

	if m.notice != "" {
		b.WriteString("\n")
		if m.notice == "escalated" {
			b.WriteString(formatEscalation())
		} else {
			b.WriteString(systemStyle.Render(m.notice))
		}
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(formatError(m.err.Error()))
	}

	return b.String()
}

// renderTabs renders the tab bar.
func (m Model) renderTabs() string {
	tabs := make([]string, 0, 3)
	for _, t := range []Tab{TabDashboard, TabChat, TabVoice} {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderEntries renders the chat transcript for the viewport
func (m Model) renderEntries() string {
	if len(m.entries) == 0 && !m.sending {
		return systemStyle.Render("Commencez une conversation ou utilisez les questions demo.\n\nCommands: /clear, /usage, /email, /chat, /prompt, /help, /quit")
	}

	var lines []string
	for _, e := range m.entries {
		lines = append(lines, wrapText(m.formatEntry(e), m.viewport.Width-4))
		lines = append(lines, "")
	}
	if m.sending {
		lines = append(lines, formatSending())
	}
	return strings.Join(lines, "\n")
}

// formatEntry formats a single transcript line with timestamp
func (m Model) formatEntry(e entry) string {
	if e.system {
		return formatSystemMessage(e.msg.Content)
	}

	var content string
	if e.msg.SenderType == "agent" {
		content = formatAgentMessage(e.msg.Content, e.msg.ResponseTimeMS, e.msg.ConfidenceScore)
	} else {
		content = formatUserMessage(e.msg.Content)
	}
	if !e.timestamp.IsZero() {
		content += "  " + formatTimestamp(e.timestamp)
	}
	return content
}

// renderVoice renders the voice tab body.
func (m Model) renderVoice() string {
	st := m.voice.Status()
	var b strings.Builder

	switch st.State {
	case voice.StateRecording:
		bar := levelBar(st.Level, 30)
		b.WriteString(errorStyle.Render("● REC ") + fmt.Sprintf("%.1fs  %s", st.Elapsed.Seconds(), bar))
	case voice.StateProcessing:
		b.WriteString(sendingStyle.Render("⏳ Processing..."))
	case voice.StatePlaying:
		b.WriteString(agentPrefixStyle.Render("▶ Playing reply..."))
	default:
		b.WriteString(systemStyle.Render("Idle. Press r to record, or 1-5 to simulate a prompt."))
	}
	b.WriteString("\n\n")

	if st.Transcript != "" {
		b.WriteString(userPrefixStyle.Render("Transcript: ") + userTextStyle.Render(st.Transcript))
		b.WriteString("\n")
	}
	if st.Response != "" {
		b.WriteString(agentPrefixStyle.Render("Reply: ") + agentTextStyle.Render(st.Response))
		b.WriteString("\n")
	}
	if st.LatencyMS > 0 {
		color := classColor(st.LatencyClass)
		b.WriteString(badgeStyle.Render("Latency: ") +
			lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%dms", st.LatencyMS)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for i, prompt := range voice.DemoPrompts() {
		b.WriteString(systemStyle.Render(fmt.Sprintf("%d. %s", i+1, prompt)))
		b.WriteString("\n")
	}
	return b.String()
}

// levelBar renders an amplitude meter.
func levelBar(level float64, width int) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(level * float64(width))
	return agentPrefixStyle.Render(strings.Repeat("█", filled)) +
		systemStyle.Render(strings.Repeat("░", width-filled))
}

// parseCommand parses a slash command and its argument
func parseCommand(input string) (Command, string) {
	input = strings.TrimSpace(input)
	if input == "" || !strings.HasPrefix(input, "/") {
		return CmdNone, ""
	}

	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/clear", "/new":
		return CmdClear, arg
	case "/usage":
		return CmdUsage, arg
	case "/email":
		return CmdEmail, arg
	case "/chat":
		return CmdChat, arg
	case "/prompt":
		return CmdPrompt, arg
	case "/help":
		return CmdHelp, arg
	case "/quit", "/exit", "/q":
		return CmdQuit, arg
	default:
		return CmdUnknown, arg
	}
}

// isCommand checks if input is a slash command
func isCommand(input string) bool {
	return strings.HasPrefix(input, "/")
}

// helpText returns the help message
func helpText() string {
	return `Available commands:
  /clear          Clear the conversation (releases the conversation binding)
  /usage          Show per-channel send statistics
  /email [subj]   Switch to email mode, optionally with a subject
  /chat           Switch back to chat mode
  /prompt         Insert the next demo question
  /help           Show this help message
  /quit           Exit the console

Keyboard shortcuts:
  Enter        Send message
  Tab          Switch view (or select autocomplete)
  Ctrl+C       Quit`
}

// wrapText wraps text to fit within the given width
func wrapText(text string, width int) string {
	if width <= 0 {
		width = 80
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if lipgloss.Width(currentLine+" "+word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}
		result.WriteString(currentLine)
	}

	return result.String()
}

// Run starts the console
func Run(cfg *config.Config) error {
	model, err := New(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
