package sampler

import (
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

// CallResult is the fixed-shape record of one model invocation, returned by
// the invocation collaborator and passed into RecordCall. The core never
// reads ambient shared state; every fact arrives through this struct.
type CallResult struct {
	InputChars              int
	OutputChars             int
	DurationMS              int64
	PromptTokensReported    *int
	ResponseTokensReported  *int
	ResponseTokensEstimated *int
	APIStructure            *schemacontextmap.APIStructure
}

// Breakdown carries the preprocessing collaborator's report of how the prompt
// was assembled. Summaries are derived by the sampler, never supplied.
type Breakdown struct {
	PDDSystemPromptChars int
	DevunitPromptChars   int
	PrependedChars       int
	AppendedChars        int
	Items                []schemacontextmap.PreprocessorItem
}

// MetadataCollector is the passive contract through which the preprocessing
// and invocation collaborators hand their accumulated facts to the sampler in
// one call.
type MetadataCollector interface {
	Call() CallResult
	PromptBreakdown() Breakdown
	FewShotExamples() []schemacontextmap.FewShotExample
}
