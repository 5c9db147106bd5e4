package render

import (
	"fmt"
	"sort"
	"strings"

	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

// Detailed renders the labeled bar-chart breakdown. Sections with no data
// (no tokens reported, no api structure, no few-shot examples) are omitted
// rather than drawn empty.
func Detailed(m schemacontextmap.ContextMap) string {
	var b strings.Builder
	b.WriteString(renderHeader(m))

	writeOverviewSection(&b, m)
	writeTokenSection(&b, m.Output)
	if m.Input.APIStructure != nil {
		writeAPIStructureSection(&b, *m.Input.APIStructure)
	}
	if m.Input.PromptBreakdown != nil {
		writeBreakdownSection(&b, m.Input)
		writePreprocessorSection(&b, m.Input.PromptBreakdown.PreprocessorSummary)
		writeFewShotSection(&b, m.Input.PromptBreakdown.FewShotExamples)
	}
	return b.String()
}

func sectionHeader(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
}

func writeOverviewSection(b *strings.Builder, m schemacontextmap.ContextMap) {
	sectionHeader(b, "INPUT / OUTPUT OVERVIEW")
	inputChars := m.Input.TotalChars
	outputChars := m.Output.ResponseChars
	total := inputChars + outputChars
	maxValue := maxInt(inputChars, outputChars)
	b.WriteString(drawBar("Input Chars", inputChars, maxValue, total, "") + "\n")
	b.WriteString(drawBar("Output Chars", outputChars, maxValue, total, "") + "\n\n")
}

func writeTokenSection(b *strings.Builder, output schemacontextmap.Output) {
	if output.PromptTokensReported == nil && output.ResponseTokensReported == nil {
		return
	}
	sectionHeader(b, "TOKENS (Reported by Provider)")
	promptTokens := intRefValue(output.PromptTokensReported)
	responseTokens := intRefValue(output.ResponseTokensReported)
	total := promptTokens + responseTokens
	maxValue := maxInt(promptTokens, responseTokens)
	b.WriteString(drawBar("Prompt Tokens", promptTokens, maxValue, total, "") + "\n")
	b.WriteString(drawBar("Response Tokens", responseTokens, maxValue, total, "") + "\n")
	if output.ResponseTokensEstimated != nil {
		fmt.Fprintf(b, " (Estimated Response: %d)\n", *output.ResponseTokensEstimated)
	}
	b.WriteString("\n")
}

func writeAPIStructureSection(b *strings.Builder, api schemacontextmap.APIStructure) {
	sectionHeader(b, "API STRUCTURE")
	total := api.Total()
	if total > 0 {
		maxValue := maxInt(api.SystemPromptChars, api.UserMessageChars, api.AssistantPrefillChars, api.OtherChars)
		b.WriteString(drawBar("System Prompt", api.SystemPromptChars, maxValue, total, "") + "\n")
		b.WriteString(drawBar("User Message", api.UserMessageChars, maxValue, total, "") + "\n")
		if api.AssistantPrefillChars > 0 {
			b.WriteString(drawBar("Assistant Prefill", api.AssistantPrefillChars, maxValue, total, "") + "\n")
		}
		if api.OtherChars > 0 {
			b.WriteString(drawBar("Other/Overhead", api.OtherChars, maxValue, total, "") + "\n")
		}
	}
	b.WriteString("\n")
}

func writeBreakdownSection(b *strings.Builder, input schemacontextmap.Input) {
	breakdown := *input.PromptBreakdown
	sectionHeader(b, "PROMPT BREAKDOWN")
	prependAppend := breakdown.PrependedChars + breakdown.AppendedChars
	maxValue := maxInt(
		breakdown.PDDSystemPromptChars,
		breakdown.DevunitPromptChars,
		prependAppend,
		breakdown.PreprocessorTotalChars,
		breakdown.FewShotTotalChars,
	)
	total := input.TotalChars
	b.WriteString(drawBar("PDD System Prompt", breakdown.PDDSystemPromptChars, maxValue, total, "") + "\n")
	b.WriteString(drawBar("Devunit Prompt", breakdown.DevunitPromptChars, maxValue, total, "") + "\n")
	b.WriteString(drawBar("Prepend/Append", prependAppend, maxValue, total, "") + "\n")
	b.WriteString(drawBar("Preprocessor Total", breakdown.PreprocessorTotalChars, maxValue, total, "") + "\n")
	b.WriteString(drawBar("Few-Shot Total", breakdown.FewShotTotalChars, maxValue, total, "") + "\n\n")
}

func writePreprocessorSection(b *strings.Builder, summary schemacontextmap.PreprocessorSummary) {
	sectionHeader(b, "PREPROCESSOR CONTENT")
	total := summary.IncludeChars + summary.ShellChars + summary.WebChars + summary.VariableChars
	if total == 0 {
		b.WriteString("No preprocessor content.\n\n")
		return
	}
	maxValue := maxInt(summary.IncludeChars, summary.WebChars, summary.ShellChars, summary.VariableChars)
	b.WriteString(drawBar("File Includes", summary.IncludeChars, maxValue, total, fmt.Sprintf(" [%d items]", summary.IncludeCount)) + "\n")
	b.WriteString(drawBar("Web Includes", summary.WebChars, maxValue, total, fmt.Sprintf(" [%d items]", summary.WebCount)) + "\n")
	b.WriteString(drawBar("Shell Output", summary.ShellChars, maxValue, total, fmt.Sprintf(" [%d items]", summary.ShellCount)) + "\n")
	b.WriteString(drawBar("Variables", summary.VariableChars, maxValue, total, fmt.Sprintf(" [%d items]", summary.VariableCount)) + "\n\n")
}

func writeFewShotSection(b *strings.Builder, examples []schemacontextmap.FewShotExample) {
	if len(examples) == 0 {
		return
	}
	sectionHeader(b, "FEW-SHOT EXAMPLES")
	sorted := append([]schemacontextmap.FewShotExample(nil), examples...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Chars > sorted[j].Chars })

	fmt.Fprintf(b, "%-30s %-10s %-8s %s\n", "ID", "Size", "Pinned", "Score")
	fmt.Fprintf(b, "%s %s %s %s\n", strings.Repeat("-", 30), strings.Repeat("-", 10), strings.Repeat("-", 8), strings.Repeat("-", 5))
	for _, example := range sorted {
		pinnedMark := "-"
		if example.Pinned {
			pinnedMark = "YES"
		}
		scoreText := "-"
		if example.QualityScore != nil {
			scoreText = fmt.Sprintf("%.2f", *example.QualityScore)
		}
		identifier := example.ExampleID
		if len(identifier) > 28 {
			identifier = identifier[:28]
		}
		fmt.Fprintf(b, "%-30s %-10s %-8s %s\n", identifier, formatChars(example.Chars), pinnedMark, scoreText)
	}
	b.WriteString("\n")
}

func maxInt(values ...int) int {
	maxValue := 0
	for _, value := range values {
		if value > maxValue {
			maxValue = value
		}
	}
	return maxValue
}

func intRefValue(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
