// Package format holds the pure display transforms shared by the console.
package format

import (
	"fmt"
	"math"
)

// FormatDuration formats a second count as a human-readable duration.
// 45 → "45s", 125 → "2m 5s", 7384 → "2h 3m".
func FormatDuration(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatNumber abbreviates large counts with K/M suffixes.
// 15847 → "15.8K", 2300000 → "2.3M", 847 → "847".
func FormatNumber(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

// FormatPercentage renders a fraction in [0,1] as a percentage with one
// decimal. 0.82 → "82.0%".
func FormatPercentage(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// FormatResponseTime renders a millisecond latency in adaptive units.
// 450 → "450ms", 2500 → "2.5s".
func FormatResponseTime(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", int(math.Round(ms)))
	}
	return fmt.Sprintf("%.1fs", ms/1000)
}

// Class is a presentation band for a metric value.
type Class int

const (
	ClassGood Class = iota
	ClassWarning
	ClassDanger
)

// String returns the band name used by status styling.
func (c Class) String() string {
	switch c {
	case ClassGood:
		return "good"
	case ClassWarning:
		return "warning"
	default:
		return "danger"
	}
}

// Latency bands in milliseconds. These are reporting thresholds only;
// nothing retries or enforces them.
const (
	LatencyGoodMaxMS = 1000
	LatencyWarnMaxMS = 2000
)

// Confidence bands. A score above good is shown green, above warn amber,
// anything else red.
const (
	ConfidenceGoodMin = 0.8
	ConfidenceWarnMin = 0.6
)

// ClassifyLatency maps a round-trip time to its presentation band.
func ClassifyLatency(ms float64) Class {
	if ms < LatencyGoodMaxMS {
		return ClassGood
	}
	if ms < LatencyWarnMaxMS {
		return ClassWarning
	}
	return ClassDanger
}

// ClassifyConfidence maps a confidence score in [0,1] to its band.
func ClassifyConfidence(score float64) Class {
	if score > ConfidenceGoodMin {
		return ClassGood
	}
	if score > ConfidenceWarnMin {
		return ClassWarning
	}
	return ClassDanger
}
