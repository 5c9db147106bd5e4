package contextmap

import (
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

const (
	sampleGenerationID = "3aa8f7de-9a5c-4f6e-8f2b-1c7d4e9b0a21"
	sampleTimestampUTC = "2025-06-01T12:00:00Z"
)

// GenerateSample returns a fixed, schema-valid context map with illustrative
// non-trivial values. It depends on no clock and no randomness, so repeated
// calls compare equal.
func GenerateSample() schemacontextmap.ContextMap {
	items := []schemacontextmap.PreprocessorItem{
		{
			Type:         schemacontextmap.TypeInclude,
			Chars:        1500,
			LineInPrompt: intRef(10),
			Syntax:       schemacontextmap.SyntaxDirective,
			Source:       "src/main.py",
		},
		{
			Type:         schemacontextmap.TypeInclude,
			Chars:        800,
			LineInPrompt: intRef(12),
			Syntax:       schemacontextmap.SyntaxBackticks,
			Source:       "src/utils.py",
			IncludeMany:  true,
		},
		{
			Type:         schemacontextmap.TypeShell,
			Chars:        200,
			LineInPrompt: intRef(25),
			Command:      "ls -la",
		},
		{
			Type:         schemacontextmap.TypeWeb,
			Chars:        5000,
			LineInPrompt: intRef(30),
			URL:          "https://docs.python.org/3/library/json.html",
		},
		{
			Type:         schemacontextmap.TypeVariable,
			Chars:        50,
			LineInPrompt: intRef(5),
			Name:         "USER_NAME",
		},
	}
	summary, summaryExtra := SummarizeItems(items)

	fewShots := []schemacontextmap.FewShotExample{
		{ExampleID: "ex_001", Chars: 400, Pinned: true, QualityScore: floatRef(0.95)},
		{ExampleID: "ex_002", Chars: 350, Pinned: false, QualityScore: floatRef(0.88)},
	}

	breakdown := schemacontextmap.PromptBreakdown{
		PDDSystemPromptChars:     500,
		DevunitPromptChars:       200,
		PrependedChars:           100,
		AppendedChars:            50,
		PreprocessorTotalChars:   TotalItemChars(items),
		PreprocessorItems:        items,
		PreprocessorSummary:      summary,
		PreprocessorSummaryExtra: summaryExtra,
		FewShotExamples:          fewShots,
		FewShotTotalChars:        TotalFewShotChars(fewShots),
	}

	apiStructure := schemacontextmap.APIStructure{
		SystemPromptChars:     600,
		UserMessageChars:      8400,
		AssistantPrefillChars: 0,
		OtherChars:            150,
	}

	return schemacontextmap.ContextMap{
		SchemaVersion: schemacontextmap.SchemaVersion,
		GenerationID:  sampleGenerationID,
		Provenance: schemacontextmap.Provenance{
			TimestampUTC: sampleTimestampUTC,
			DurationMS:   int64Ref(4500),
			Model:        "gpt-4-turbo",
			Provider:     "openai",
			PromptFile:   "prompts/code_review.pdd",
			PDDVersion:   "2.1.0",
		},
		Input: schemacontextmap.Input{
			TotalChars:      apiStructure.Total(),
			APIStructure:    &apiStructure,
			PromptBreakdown: &breakdown,
		},
		Output: schemacontextmap.Output{
			ResponseChars:           1200,
			ResponseTokensReported:  intRef(300),
			ResponseTokensEstimated: intRef(310),
			PromptTokensReported:    intRef(2500),
		},
	}
}

func intRef(value int) *int { return &value }

func int64Ref(value int64) *int64 { return &value }

func floatRef(value float64) *float64 { return &value }
