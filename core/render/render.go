package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

const barWidth = 40

// Render returns the text representation of a validated context map: the
// summary grid by default, the detailed bar breakdown when detailed is true.
func Render(m schemacontextmap.ContextMap, detailed bool) string {
	if detailed {
		return Detailed(m)
	}
	return Summary(m)
}

func renderHeader(m schemacontextmap.ContextMap) string {
	provenance := m.Provenance

	durationText := "N/A"
	if provenance.DurationMS != nil {
		durationText = fmt.Sprintf("%.2fs", float64(*provenance.DurationMS)/1000)
	}

	timestampText := provenance.TimestampUTC
	if parsed, err := time.Parse(time.RFC3339, provenance.TimestampUTC); err == nil {
		timestampText = parsed.UTC().Format("2006-01-02 15:04:05 UTC")
	}

	var b strings.Builder
	b.WriteString("\nCONTEXT MAP REPORT\n")
	b.WriteString("==================\n")
	fmt.Fprintf(&b, "Model:       %s (%s)\n", provenance.Model, provenance.Provider)
	fmt.Fprintf(&b, "Prompt File: %s\n", provenance.PromptFile)
	fmt.Fprintf(&b, "Timestamp:   %s\n", timestampText)
	fmt.Fprintf(&b, "Duration:    %s\n", durationText)
	if provenance.PDDVersion != "" {
		fmt.Fprintf(&b, "PDD Version: %s\n", provenance.PDDVersion)
	}
	fmt.Fprintf(&b, "Total Input: %s chars\n\n", formatChars(m.Input.TotalChars))
	return b.String()
}

// formatChars renders counts with a K suffix from 1000 up.
func formatChars(count int) string {
	if count >= 1000 {
		return fmt.Sprintf("%.1fK", float64(count)/1000)
	}
	return fmt.Sprintf("%d", count)
}

func formatPercent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(float64(part)/float64(total)*100))
}

// drawBar renders one labeled horizontal bar. Fill width scales against the
// section maximum so the largest category always draws a full bar; the
// percentage annotation scales against the section total.
func drawBar(label string, value, maxValue, total int, suffix string) string {
	filled := 0
	if maxValue > 0 {
		filled = int(math.Round(float64(value) / float64(maxValue) * barWidth))
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%-25s %s %6s (%4s)%s", label, bar, formatChars(value), formatPercent(value, total), suffix)
}
