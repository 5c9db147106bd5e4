package contextmap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	coreerrors "github.com/davidahmann/ctxmap/core/errors"
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

// Violation describes one failed constraint in a context map. Field is a
// dotted path into the wire document.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violation found in one pass, not just the
// first, so callers can report all defects at once.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "context map validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, violation := range e.Violations {
		parts = append(parts, violation.Field+": "+violation.Reason)
	}
	return fmt.Sprintf("context map validation failed (%d violation(s)): %s", len(e.Violations), strings.Join(parts, "; "))
}

func classifyValidation(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return coreerrors.Wrap(
		&ValidationError{Violations: violations},
		coreerrors.CategoryValidation,
		"context_map_invalid",
		"inspect the listed fields and regenerate the context map",
		false,
	)
}

// Validate checks a decoded context map against every structural invariant:
// summary/item consistency, non-negative counts, identifier and timestamp
// shape, and schema version recognition. All violations are collected.
func Validate(m schemacontextmap.ContextMap) error {
	return classifyValidation(collectViolations(m))
}

func collectViolations(m schemacontextmap.ContextMap) []Violation {
	var violations []Violation
	add := func(field, reason string) {
		violations = append(violations, Violation{Field: field, Reason: reason})
	}

	checkSchemaVersion(m.SchemaVersion, add)
	if _, err := uuid.Parse(m.GenerationID); err != nil {
		add("generation_id", "must be a valid UUID string")
	}
	checkProvenance(m.Provenance, add)
	checkInput(m.Input, add)
	checkOutput(m.Output, add)
	return violations
}

func checkSchemaVersion(version string, add func(field, reason string)) {
	major, ok := schemaMajor(version)
	if !ok {
		add("schema_version", `must match "<major>.<minor>"`)
		return
	}
	if recognized, _ := schemaMajor(schemacontextmap.SchemaVersion); major != recognized {
		add("schema_version", fmt.Sprintf("unrecognized major version %d (reader supports %s)", major, schemacontextmap.SchemaVersion))
	}
}

func schemaMajor(version string) (int, bool) {
	parts := strings.Split(version, ".")
	if len(parts) != 2 {
		return 0, false
	}
	for _, part := range parts {
		if part == "" {
			return 0, false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, false
			}
		}
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return major, true
}

func checkProvenance(provenance schemacontextmap.Provenance, add func(field, reason string)) {
	if provenance.TimestampUTC == "" {
		add("provenance.timestamp_utc", "is required")
	} else if _, err := time.Parse(time.RFC3339, provenance.TimestampUTC); err != nil {
		add("provenance.timestamp_utc", "must be a valid ISO 8601 timestamp")
	}
	if provenance.DurationMS != nil && *provenance.DurationMS < 0 {
		add("provenance.duration_ms", "must be >= 0")
	}
	if provenance.Model == "" {
		add("provenance.model", "is required")
	}
	if provenance.Provider == "" {
		add("provenance.provider", "is required")
	}
}

func checkInput(input schemacontextmap.Input, add func(field, reason string)) {
	if input.TotalChars < 0 {
		add("input.total_chars", "must be >= 0")
	}
	if input.APIStructure != nil {
		api := *input.APIStructure
		checkNonNegative("input.api_structure.system_prompt_chars", api.SystemPromptChars, add)
		checkNonNegative("input.api_structure.user_message_chars", api.UserMessageChars, add)
		checkNonNegative("input.api_structure.assistant_prefill_chars", api.AssistantPrefillChars, add)
		checkNonNegative("input.api_structure.other_chars", api.OtherChars, add)
		if api.Total() != input.TotalChars && input.TotalChars >= 0 {
			add("input.total_chars", fmt.Sprintf("must equal sum of api_structure fields (%d != %d)", input.TotalChars, api.Total()))
		}
	}
	if input.PromptBreakdown != nil {
		checkPromptBreakdown(*input.PromptBreakdown, add)
	}
}

func checkPromptBreakdown(breakdown schemacontextmap.PromptBreakdown, add func(field, reason string)) {
	prefix := "input.prompt_breakdown."
	checkNonNegative(prefix+"pdd_system_prompt_chars", breakdown.PDDSystemPromptChars, add)
	checkNonNegative(prefix+"devunit_prompt_chars", breakdown.DevunitPromptChars, add)
	checkNonNegative(prefix+"prepended_chars", breakdown.PrependedChars, add)
	checkNonNegative(prefix+"appended_chars", breakdown.AppendedChars, add)

	itemTotal := 0
	for index, item := range breakdown.PreprocessorItems {
		itemField := fmt.Sprintf("%spreprocessor_items[%d]", prefix, index)
		checkPreprocessorItem(itemField, item, add)
		if item.Chars > 0 {
			itemTotal += item.Chars
		}
	}
	if breakdown.PreprocessorTotalChars != itemTotal {
		add(prefix+"preprocessor_total_chars", fmt.Sprintf("must equal sum of item chars (%d != %d)", breakdown.PreprocessorTotalChars, itemTotal))
	}

	wantSummary, wantExtra := SummarizeItems(breakdown.PreprocessorItems)
	if breakdown.PreprocessorSummary != wantSummary {
		add(prefix+"preprocessor_summary", "per-type counts and chars must match the item sequence")
	}
	switch {
	case wantExtra == nil && breakdown.PreprocessorSummaryExtra != nil && *breakdown.PreprocessorSummaryExtra != (schemacontextmap.PreprocessorSummaryExtra{}):
		add(prefix+"preprocessor_summary_extra", "no include_many items recorded")
	case wantExtra != nil && (breakdown.PreprocessorSummaryExtra == nil || *breakdown.PreprocessorSummaryExtra != *wantExtra):
		add(prefix+"preprocessor_summary_extra", "must match the include_many item subset")
	}

	fewShotTotal := 0
	for index, example := range breakdown.FewShotExamples {
		exampleField := fmt.Sprintf("%sfew_shot_examples[%d]", prefix, index)
		if example.ExampleID == "" {
			add(exampleField+".example_id", "is required")
		}
		checkNonNegative(exampleField+".chars", example.Chars, add)
		if example.QualityScore != nil && (*example.QualityScore < 0 || *example.QualityScore > 1) {
			add(exampleField+".quality_score", "must be within [0.0, 1.0]")
		}
		if example.Chars > 0 {
			fewShotTotal += example.Chars
		}
	}
	if breakdown.FewShotTotalChars != fewShotTotal {
		add(prefix+"few_shot_total_chars", fmt.Sprintf("must equal sum of example chars (%d != %d)", breakdown.FewShotTotalChars, fewShotTotal))
	}
}

func checkPreprocessorItem(field string, item schemacontextmap.PreprocessorItem, add func(field, reason string)) {
	switch item.Type {
	case schemacontextmap.TypeInclude, schemacontextmap.TypeShell, schemacontextmap.TypeWeb, schemacontextmap.TypeVariable:
	default:
		add(field+".type", fmt.Sprintf("unknown preprocessor type %q", item.Type))
	}
	checkNonNegative(field+".chars", item.Chars, add)
	if item.LineInPrompt != nil && *item.LineInPrompt < 1 {
		add(field+".line_in_prompt", "must be >= 1")
	}
	if item.Syntax != "" {
		if item.Type != schemacontextmap.TypeInclude {
			add(field+".syntax", "is include-only")
		} else if item.Syntax != schemacontextmap.SyntaxDirective && item.Syntax != schemacontextmap.SyntaxBackticks {
			add(field+".syntax", fmt.Sprintf("unknown include syntax %q", item.Syntax))
		}
	}
	if item.IncludeMany && item.Type != schemacontextmap.TypeInclude {
		add(field+".include_many", "is include-only")
	}
}

func checkOutput(output schemacontextmap.Output, add func(field, reason string)) {
	checkNonNegative("output.response_chars", output.ResponseChars, add)
	checkOptionalNonNegative("output.response_tokens_reported", output.ResponseTokensReported, add)
	checkOptionalNonNegative("output.response_tokens_estimated", output.ResponseTokensEstimated, add)
	checkOptionalNonNegative("output.prompt_tokens_reported", output.PromptTokensReported, add)
}

func checkNonNegative(field string, value int, add func(field, reason string)) {
	if value < 0 {
		add(field, "must be >= 0")
	}
}

func checkOptionalNonNegative(field string, value *int, add func(field, reason string)) {
	if value != nil && *value < 0 {
		add(field, "must be >= 0")
	}
}

// SummarizeItems derives the per-type aggregate and the include_many subset
// aggregate from an item sequence. The extra summary is nil when no item is
// marked include_many.
func SummarizeItems(items []schemacontextmap.PreprocessorItem) (schemacontextmap.PreprocessorSummary, *schemacontextmap.PreprocessorSummaryExtra) {
	var summary schemacontextmap.PreprocessorSummary
	var extra schemacontextmap.PreprocessorSummaryExtra
	for _, item := range items {
		switch item.Type {
		case schemacontextmap.TypeInclude:
			summary.IncludeCount++
			summary.IncludeChars += item.Chars
			if item.IncludeMany {
				extra.IncludeManyCount++
				extra.IncludeManyChars += item.Chars
			}
		case schemacontextmap.TypeShell:
			summary.ShellCount++
			summary.ShellChars += item.Chars
		case schemacontextmap.TypeWeb:
			summary.WebCount++
			summary.WebChars += item.Chars
		case schemacontextmap.TypeVariable:
			summary.VariableCount++
			summary.VariableChars += item.Chars
		}
	}
	if extra.IncludeManyCount == 0 {
		return summary, nil
	}
	return summary, &extra
}

// TotalItemChars sums the character contribution of every item.
func TotalItemChars(items []schemacontextmap.PreprocessorItem) int {
	total := 0
	for _, item := range items {
		total += item.Chars
	}
	return total
}

// TotalFewShotChars sums the character contribution of every example.
func TotalFewShotChars(examples []schemacontextmap.FewShotExample) int {
	total := 0
	for _, example := range examples {
		total += example.Chars
	}
	return total
}
