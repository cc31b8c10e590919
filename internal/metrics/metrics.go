// Package metrics parses the backend's plain-text metrics exposition into
// named samples for display.
package metrics

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Sample is one parsed metric line.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Label returns the value of one label, or empty string.
func (s Sample) Label(name string) string {
	return s.Labels[name]
}

// String renders the sample back in exposition form.
func (s Sample) String() string {
	if len(s.Labels) == 0 {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	keys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, s.Labels[k]))
	}
	return fmt.Sprintf("%s{%s} %g", s.Name, strings.Join(pairs, ","), s.Value)
}

// Report holds all samples of one scrape, plus the HELP text keyed by
// metric name.
type Report struct {
	Samples []Sample
	Help    map[string]string
}

// ByName returns the samples of one metric, in input order.
func (r *Report) ByName(name string) []Sample {
	var out []Sample
	for _, s := range r.Samples {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Names returns all distinct metric names, sorted.
func (r *Report) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range r.Samples {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Value returns the value of the first sample matching name, and whether
// one was found.
func (r *Report) Value(name string) (float64, bool) {
	for _, s := range r.Samples {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

// Parse reads a plain-text metrics exposition. Comment lines other than
// HELP are skipped; malformed lines are skipped rather than failing the
// whole scrape.
func Parse(r io.Reader) (*Report, error) {
	report := &Report{Help: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if name, help, ok := parseHelp(line); ok {
				report.Help[name] = help
			}
			continue
		}
		if sample, ok := parseSample(line); ok {
			report.Samples = append(report.Samples, sample)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}
	return report, nil
}

// ParseString is Parse over an in-memory exposition.
func ParseString(text string) (*Report, error) {
	return Parse(strings.NewReader(text))
}

func parseHelp(line string) (name, help string, ok bool) {
	rest, found := strings.CutPrefix(line, "# HELP ")
	if !found {
		return "", "", false
	}
	name, help, found = strings.Cut(rest, " ")
	if !found || name == "" {
		return "", "", false
	}
	return name, help, true
}

func parseSample(line string) (Sample, bool) {
	var sample Sample

	brace := strings.IndexByte(line, '{')
	if brace >= 0 {
		end := strings.LastIndexByte(line, '}')
		if end < brace {
			return sample, false
		}
		sample.Name = strings.TrimSpace(line[:brace])
		labels, ok := parseLabels(line[brace+1 : end])
		if !ok {
			return sample, false
		}
		sample.Labels = labels
		line = strings.TrimSpace(line[end+1:])
	} else {
		var rest string
		var found bool
		sample.Name, rest, found = cutAnySpace(line)
		if !found {
			return sample, false
		}
		line = rest
	}

	// A timestamp may follow the value; only the value is kept
	valueField := line
	if v, _, found := cutAnySpace(line); found {
		valueField = v
	}
	value, err := strconv.ParseFloat(valueField, 64)
	if err != nil {
		return sample, false
	}
	sample.Value = value
	return sample, sample.Name != ""
}

func parseLabels(body string) (map[string]string, bool) {
	labels := make(map[string]string)
	body = strings.TrimSpace(body)
	for body != "" {
		eq := strings.IndexByte(body, '=')
		if eq < 0 {
			return nil, false
		}
		name := strings.TrimSpace(body[:eq])
		rest := strings.TrimSpace(body[eq+1:])
		if !strings.HasPrefix(rest, `"`) {
			return nil, false
		}
		value, remainder, ok := cutQuoted(rest)
		if !ok {
			return nil, false
		}
		labels[name] = value
		body = strings.TrimPrefix(strings.TrimSpace(remainder), ",")
		body = strings.TrimSpace(body)
	}
	return labels, true
}

// cutQuoted splits a leading double-quoted string off, honoring backslash
// escapes.
func cutQuoted(s string) (value, rest string, ok bool) {
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", "", false
			}
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			default:
				sb.WriteByte(s[i])
			}
		case '"':
			return sb.String(), s[i+1:], true
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", "", false
}

func cutAnySpace(s string) (before, after string, found bool) {
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], strings.TrimSpace(s[idx+1:]), true
}
