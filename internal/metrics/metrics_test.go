package metrics

import (
	"testing"
)

const sampleExposition = `# HELP agents_active Number of active agents
# TYPE agents_active gauge
agents_active 487

# HELP messages_processed_total Total messages processed
# TYPE messages_processed_total counter
messages_processed_total{channel="chat"} 9120
messages_processed_total{channel="email"} 4205
messages_processed_total{channel="voice"} 2522

# HELP response_time_seconds Response time
response_time_seconds{quantile="0.5"} 1.2
response_time_seconds{quantile="0.99"} 4.7
`

func TestParse(t *testing.T) {
	report, err := ParseString(sampleExposition)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if len(report.Samples) != 6 {
		t.Fatalf("parsed %d samples, want 6", len(report.Samples))
	}

	if v, ok := report.Value("agents_active"); !ok || v != 487 {
		t.Errorf("agents_active = %v, %v", v, ok)
	}

	chat := report.ByName("messages_processed_total")
	if len(chat) != 3 {
		t.Fatalf("messages_processed_total samples = %d, want 3", len(chat))
	}
	if chat[0].Label("channel") != "chat" || chat[0].Value != 9120 {
		t.Errorf("first sample = %+v", chat[0])
	}

	if got := report.Help["agents_active"]; got != "Number of active agents" {
		t.Errorf("Help = %q", got)
	}
}

func TestParseNames(t *testing.T) {
	report, err := ParseString(sampleExposition)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	names := report.Names()
	want := []string{"agents_active", "messages_processed_total", "response_time_seconds"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseSkipsMalformedLines(t *testing.T) {
	report, err := ParseString("good_metric 1\nnot a metric at all x\nanother_good 2\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(report.Samples) != 2 {
		t.Errorf("parsed %d samples, want 2", len(report.Samples))
	}
}

func TestParseLabelEscapes(t *testing.T) {
	report, err := ParseString(`errors_total{reason="timeout \"hard\"",code="504"} 3` + "\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(report.Samples) != 1 {
		t.Fatalf("parsed %d samples, want 1", len(report.Samples))
	}
	s := report.Samples[0]
	if s.Label("reason") != `timeout "hard"` {
		t.Errorf("reason = %q", s.Label("reason"))
	}
	if s.Label("code") != "504" {
		t.Errorf("code = %q", s.Label("code"))
	}
}

func TestParseTimestampIgnored(t *testing.T) {
	report, err := ParseString("with_ts 42 1712345678000\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if v, ok := report.Value("with_ts"); !ok || v != 42 {
		t.Errorf("with_ts = %v, %v", v, ok)
	}
}

func TestSampleString(t *testing.T) {
	s := Sample{Name: "m", Labels: map[string]string{"b": "2", "a": "1"}, Value: 7}
	if got := s.String(); got != `m{a="1",b="2"} 7` {
		t.Errorf("String() = %q", got)
	}

	bare := Sample{Name: "m", Value: 1.5}
	if got := bare.String(); got != "m 1.5" {
		t.Errorf("String() = %q", got)
	}
}
