package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/VoxDesk/voxdesk/internal/api"
	"github.com/VoxDesk/voxdesk/internal/audio"
	"github.com/VoxDesk/voxdesk/internal/config"
	"github.com/VoxDesk/voxdesk/internal/dashboard"
	"github.com/VoxDesk/voxdesk/internal/format"
	"github.com/VoxDesk/voxdesk/internal/logger"
	"github.com/VoxDesk/voxdesk/internal/metrics"
	"github.com/VoxDesk/voxdesk/internal/notify"
	"github.com/VoxDesk/voxdesk/internal/tui"
	"github.com/VoxDesk/voxdesk/internal/voice"
	"github.com/VoxDesk/voxdesk/internal/webshot"
	"github.com/VoxDesk/voxdesk/pkg/types"
)

const version = "0.1.0"

func main() {
	// .env is optional; the file overrides nothing already in the environment
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "setup":
		cmdSetup()
	case "console":
		cmdConsole()
	case "chat":
		cmdChat(os.Args[2:])
	case "email":
		cmdEmail(os.Args[2:])
	case "voice":
		cmdVoice()
	case "stats":
		cmdStats()
	case "agents":
		cmdAgents()
	case "scale":
		cmdScale(os.Args[2:])
	case "loadtest":
		cmdLoadTest(os.Args[2:])
	case "conversations":
		cmdConversations(os.Args[2:])
	case "metrics":
		cmdMetrics()
	case "snapshot":
		cmdSnapshot(os.Args[2:])
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`VoxDesk — Agent Platform Console

Usage:
  voxdesk <command>

Commands:
  setup            Initial setup (backend URL, token, config file)
  console          Launch the interactive console (dashboard, chat, voice)
  chat <text>      Send one chat message and print the reply
  email <subject> <text>
                   Send one email message and print the reply
  voice            Voice exchange
    record         Record from the microphone, upload, play the reply
    simulate [1-5] Run a canned voice exchange without a microphone
  stats            Print the dashboard statistics snapshot
  agents           List agents and their current status
  scale <n|auto>   Scale the agent pool (auto picks from pending load)
  loadtest [n]     Fire n concurrent chat sends (default 50)
  conversations [channel]
                   List recent conversations
  metrics          Fetch and print the backend metrics exposition
  snapshot [url] [out.png]
                   Capture the web dashboard to a PNG (needs Chrome)
  version          Print version
  help             Show this help`)
}

// loadConfig loads the config and applies the log level. Commands that only
// read local state use it too, so failures are fatal everywhere.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	return cfg
}

func newClient(cfg *config.Config) *api.Client {
	client := api.New(cfg.API.URL, api.StaticCredentials(cfg.API.Token), notify.Discard())
	if cfg.API.TimeoutSeconds > 0 {
		client.SetTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second)
	}
	return client
}

func requestContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := 30 * time.Second
	if cfg.API.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.API.TimeoutSeconds) * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func cmdSetup() {
	fmt.Printf("🎛  VoxDesk v%s - Setup\n\n", version)

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	if cfg.API.Token != "" {
		fmt.Println("⚠️  Configuration already exists.")
		fmt.Print("Reconfigure? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			fmt.Println("Setup cancelled.")
			os.Exit(0)
		}
		fmt.Println()
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Backend URL [%s]: ", cfg.API.URL)
	urlInput, _ := reader.ReadString('\n')
	if urlInput = strings.TrimSpace(urlInput); urlInput != "" {
		cfg.API.URL = urlInput
	}

	fmt.Print("API token (empty for unauthenticated access): ")
	token, _ := reader.ReadString('\n')
	cfg.API.Token = strings.TrimSpace(token)

	result := cfg.Validate()
	for _, warn := range result.Warnings {
		fmt.Printf("⚠️  %s\n", warn)
	}
	if !result.IsValid() {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "❌ %s\n", e)
		}
		os.Exit(1)
	}

	path, err := config.Save(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n✅ Config saved: %s\n", path)

	// Probe the backend so a bad URL surfaces now, not on first use
	fmt.Println("\n🔌 Checking backend connectivity...")
	client := newClient(cfg)
	ctx, cancel := requestContext(cfg)
	defer cancel()
	if health, err := client.HealthCheck(ctx); err != nil {
		fmt.Printf("⚠️  Backend unreachable: %v\n", err)
		fmt.Println("💡 The console still works; the dashboard shows demo data until the backend is up.")
	} else {
		fmt.Printf("✅ Backend healthy (%s)\n", health.Status)
	}

	fmt.Println()
	fmt.Println("🎉 Setup complete! Run 'voxdesk console' to start.")
}

func cmdConsole() {
	cfg := loadConfig()
	result := cfg.Validate()
	if !result.IsValid() {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "❌ %s\n", e)
		}
		fmt.Println("Run 'voxdesk setup' to fix the configuration.")
		os.Exit(1)
	}

	if err := tui.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdChat(args []string) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "Usage: voxdesk chat <message>")
		os.Exit(1)
	}

	cfg := loadConfig()
	client := newClient(cfg)
	ctx, cancel := requestContext(cfg)
	defer cancel()

	resp, err := client.SendChatMessage(ctx, types.ChatMessage{
		Content: text,
		UserID:  cfg.Console.UserID,
		Channel: types.ChannelChat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Send failed: %v\n", err)
		os.Exit(1)
	}
	printReply(resp)
}

func cmdEmail(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: voxdesk email <subject> <message>")
		os.Exit(1)
	}
	subject := args[0]
	text := strings.TrimSpace(strings.Join(args[1:], " "))

	cfg := loadConfig()
	client := newClient(cfg)
	ctx, cancel := requestContext(cfg)
	defer cancel()

	resp, err := client.SendEmailMessage(ctx, types.EmailMessage{
		Subject:   subject,
		Content:   text,
		FromEmail: cfg.Console.UserID + "@demo.voxdesk.io",
		ToEmail:   "support@company.com",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Send failed: %v\n", err)
		os.Exit(1)
	}
	printReply(resp)
}

func printReply(resp *types.MessageResponse) {
	fmt.Printf("🤖 %s\n", resp.Content)
	fmt.Printf("\n   agent: %s", resp.AgentID)
	if resp.ResponseTimeMS > 0 {
		fmt.Printf("  time: %s", format.FormatResponseTime(float64(resp.ResponseTimeMS)))
	}
	if resp.ConfidenceScore > 0 {
		fmt.Printf("  confidence: %s", format.FormatPercentage(resp.ConfidenceScore))
	}
	fmt.Println()
	if resp.Escalated {
		fmt.Println("⚠️  Message escalated to human agent")
	}
}

func cmdVoice() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: voxdesk voice <command>")
		fmt.Println("\nCommands:")
		fmt.Println("  record          Record from the microphone, upload, play the reply")
		fmt.Println("  simulate [1-5]  Run a canned exchange without a microphone")
		os.Exit(1)
	}

	switch os.Args[2] {
	case "record":
		cmdVoiceRecord()
	case "simulate":
		cmdVoiceSimulate(os.Args[3:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown voice command: %s\n", os.Args[2])
		os.Exit(1)
	}
}

func newVoiceSession(cfg *config.Config) *voice.Session {
	capture := audio.NewCapture(cfg.Voice.CaptureCommand, cfg.Voice.SampleRate)
	player := audio.NewPlayer(cfg.Voice.PlaybackCommand)
	client := newClient(cfg)
	return voice.NewSession(
		voice.CaptureRecorder{Capture: capture},
		player,
		client,
		cfg.Console.UserID,
		notify.Log(),
	)
}

func cmdVoiceRecord() {
	cfg := loadConfig()

	capture := audio.NewCapture(cfg.Voice.CaptureCommand, cfg.Voice.SampleRate)
	if !capture.Available() {
		fmt.Fprintln(os.Stderr, "❌ No recording command found (tried arecord, rec, ffmpeg)")
		fmt.Println("💡 Install one of them, or set voice.captureCommand in the config.")
		os.Exit(1)
	}

	session := newVoiceSession(cfg)
	if err := session.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🎙  Recording... press Enter to stop.")
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')

	fmt.Println("⏳ Processing...")
	ctx, cancel := requestContext(cfg)
	defer cancel()
	err := session.Stop(ctx)
	printVoiceStatus(session.Status())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func cmdVoiceSimulate(args []string) {
	cfg := loadConfig()

	prompts := voice.DemoPrompts()
	prompt := prompts[0]
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n >= 1 && n <= len(prompts) {
			prompt = prompts[n-1]
		} else {
			prompt = strings.Join(args, " ")
		}
	}

	session := newVoiceSession(cfg)
	fmt.Printf("🗣  %s\n", prompt)
	fmt.Println("⏳ Processing...")

	if err := session.Simulate(context.Background(), prompt); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	printVoiceStatus(session.Status())
}

func printVoiceStatus(st voice.Status) {
	if st.Transcript != "" {
		fmt.Printf("\n📝 Transcript: %s\n", st.Transcript)
	}
	if st.Response != "" {
		fmt.Printf("🤖 Reply:      %s\n", st.Response)
	}
	if st.LatencyMS > 0 {
		fmt.Printf("   latency: %dms (%s)\n", st.LatencyMS, st.LatencyClass)
	}
}

func cmdStats() {
	cfg := loadConfig()
	client := newClient(cfg)
	ctx, cancel := requestContext(cfg)
	defer cancel()

	stats, err := client.GetDashboardStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Stats unavailable: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📊 Dashboard")
	fmt.Printf("  Agents:        %s\n", format.FormatNumber(stats.TotalAgents))
	for _, status := range []string{"idle", "busy", "error", "offline"} {
		if n, ok := stats.AgentStatus[status]; ok {
			fmt.Printf("    %-10s   %d\n", status, n)
		}
	}
	fmt.Printf("  Messages:      %s\n", format.FormatNumber(stats.TotalMessagesProcessed))
	fmt.Printf("  Escalations:   %s\n", format.FormatNumber(stats.TotalEscalations))
	fmt.Printf("  Resolution:    %s\n", format.FormatPercentage(stats.ResolutionRate))
	fmt.Printf("  Avg response:  %s\n", format.FormatResponseTime(stats.AverageResponseTimeMS))
	fmt.Printf("  Pending:       %d\n", stats.PendingMessages)
	fmt.Printf("  Uptime:        %s\n", format.FormatDuration(stats.UptimeSeconds))
	fmt.Printf("  Throughput:    %.1f msg/min\n", stats.MessagesPerMinute)
}

func cmdAgents() {
	cfg := loadConfig()
	client := newClient(cfg)
	ctx, cancel := requestContext(cfg)
	defer cancel()

	agents, err := client.GetAgentsStatus(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Agent status unavailable: %v\n", err)
		os.Exit(1)
	}
	if len(agents) == 0 {
		fmt.Println("📭 No agents registered.")
		return
	}

	fmt.Printf("%-20s %-8s %-16s %-8s %s\n", "AGENT", "STATUS", "SPECIALIZATION", "LOAD", "SUCCESS")
	for _, a := range agents {
		fmt.Printf("%-20s %-8s %-16s %d/%-6d %s\n",
			a.Name, a.Status, a.Specialization, a.CurrentLoad, a.MaxLoad,
			format.FormatPercentage(a.SuccessRate))
	}
}

func cmdScale(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: voxdesk scale <count|auto>")
		os.Exit(1)
	}

	cfg := loadConfig()
	client := newClient(cfg)
	ctx, cancel := requestContext(cfg)
	defer cancel()

	if args[0] == "auto" {
		poller := dashboard.New(client)
		if snap := poller.Refresh(ctx); snap.State != dashboard.StateLive {
			fmt.Fprintln(os.Stderr, "❌ Backend unreachable, cannot read pending load")
			os.Exit(1)
		}
		resp, err := poller.AutoScale(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Scale failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ %s\n", resp.Message)
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count <= 0 {
		fmt.Fprintf(os.Stderr, "❌ Invalid agent count: %s\n", args[0])
		os.Exit(1)
	}
	resp, err := client.ScaleAgents(ctx, count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Scale failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ %s\n", resp.Message)
}

func cmdLoadTest(args []string) {
	cfg := loadConfig()

	n := cfg.Dashboard.LoadTestSize
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed <= 0 {
			fmt.Fprintf(os.Stderr, "❌ Invalid request count: %s\n", args[0])
			os.Exit(1)
		}
		n = parsed
	}

	client := newClient(cfg)
	poller := dashboard.New(client)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("🚀 Firing %d concurrent chat sends...\n", n)
	result := poller.RunLoadTest(ctx, n)
	if result.Passed {
		fmt.Printf("✅ %s\n", result)
	} else {
		fmt.Printf("❌ %s\n", result)
		os.Exit(1)
	}
}

func cmdConversations(args []string) {
	cfg := loadConfig()
	client := newClient(cfg)
	ctx, cancel := requestContext(cfg)
	defer cancel()

	var channel types.Channel
	if len(args) > 0 {
		channel = types.Channel(args[0])
	}

	conversations, err := client.GetConversations(ctx, 20, 0, channel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Conversations unavailable: %v\n", err)
		os.Exit(1)
	}
	if len(conversations) == 0 {
		fmt.Println("📭 No conversations.")
		return
	}

	fmt.Printf("%-36s %-6s %-10s %-5s %s\n", "ID", "CHAN", "STATUS", "MSGS", "LAST ACTIVITY")
	for _, c := range conversations {
		fmt.Printf("%-36s %-6s %-10s %-5d %s\n",
			c.ID, c.Channel, c.Status, c.MessageCount,
			c.LastActivity.Format("2006-01-02 15:04"))
	}
}

func cmdMetrics() {
	cfg := loadConfig()
	client := newClient(cfg)
	ctx, cancel := requestContext(cfg)
	defer cancel()

	text, err := client.GetMetrics(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Metrics unavailable: %v\n", err)
		os.Exit(1)
	}

	report, err := metrics.ParseString(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to parse metrics: %v\n", err)
		os.Exit(1)
	}
	if len(report.Samples) == 0 {
		fmt.Println("📭 No metrics exposed.")
		return
	}

	for _, name := range report.Names() {
		if help := report.Help[name]; help != "" {
			fmt.Printf("# %s\n", help)
		}
		for _, sample := range report.ByName(name) {
			fmt.Println(sample)
		}
	}
}

func cmdSnapshot(args []string) {
	cfg := loadConfig()

	url := cfg.API.URL
	outPath := ""
	if len(args) > 0 {
		url = args[0]
	}
	if len(args) > 1 {
		outPath = args[1]
	}

	shooter, err := webshot.New(&webshot.Config{
		Enabled:        true,
		Headless:       cfg.Snapshot.Headless,
		TimeoutSeconds: cfg.Snapshot.TimeoutSeconds,
		Stealth:        cfg.Snapshot.Stealth,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer shooter.Close()

	fmt.Printf("📸 Capturing %s ...\n", url)
	path, err := shooter.Capture(url, outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Capture failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Snapshot saved: %s\n", path)
}
