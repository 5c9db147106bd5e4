package contextmap

// SchemaVersion is the wire version stamped into every persisted context map.
// Readers accept any release that shares the major component.
const SchemaVersion = "1.0"

type PreprocessorType string

const (
	TypeInclude  PreprocessorType = "include"
	TypeShell    PreprocessorType = "shell"
	TypeWeb      PreprocessorType = "web"
	TypeVariable PreprocessorType = "variable"
)

type IncludeSyntax string

const (
	SyntaxDirective IncludeSyntax = "directive"
	SyntaxBackticks IncludeSyntax = "backticks"
)

// PreprocessorItem records one expansion event observed while the prompt was
// assembled. The populated locator field depends on Type: Source for include,
// Command for shell, URL for web, Name for variable.
type PreprocessorItem struct {
	Type         PreprocessorType `json:"type"`
	Chars        int              `json:"chars"`
	LineInPrompt *int             `json:"line_in_prompt,omitempty"`
	Syntax       IncludeSyntax    `json:"syntax,omitempty"`
	Source       string           `json:"source,omitempty"`
	IncludeMany  bool             `json:"include_many,omitempty"`
	Command      string           `json:"command,omitempty"`
	URL          string           `json:"url,omitempty"`
	Name         string           `json:"name,omitempty"`
}

// Locator returns the type-appropriate origin string for the item.
func (item PreprocessorItem) Locator() string {
	switch item.Type {
	case TypeShell:
		return item.Command
	case TypeWeb:
		return item.URL
	case TypeVariable:
		return item.Name
	default:
		return item.Source
	}
}

type PreprocessorSummary struct {
	IncludeCount  int `json:"include_count"`
	IncludeChars  int `json:"include_chars"`
	ShellCount    int `json:"shell_count"`
	ShellChars    int `json:"shell_chars"`
	WebCount      int `json:"web_count"`
	WebChars      int `json:"web_chars"`
	VariableCount int `json:"variable_count"`
	VariableChars int `json:"variable_chars"`
}

type PreprocessorSummaryExtra struct {
	IncludeManyCount int `json:"include_many_count"`
	IncludeManyChars int `json:"include_many_chars"`
}

type FewShotExample struct {
	ExampleID    string   `json:"example_id"`
	Chars        int      `json:"chars"`
	Pinned       bool     `json:"pinned"`
	QualityScore *float64 `json:"quality_score,omitempty"`
}

type PromptBreakdown struct {
	PDDSystemPromptChars     int                       `json:"pdd_system_prompt_chars"`
	DevunitPromptChars       int                       `json:"devunit_prompt_chars"`
	PrependedChars           int                       `json:"prepended_chars"`
	AppendedChars            int                       `json:"appended_chars"`
	PreprocessorTotalChars   int                       `json:"preprocessor_total_chars"`
	PreprocessorItems        []PreprocessorItem        `json:"preprocessor_items,omitempty"`
	PreprocessorSummary      PreprocessorSummary       `json:"preprocessor_summary"`
	PreprocessorSummaryExtra *PreprocessorSummaryExtra `json:"preprocessor_summary_extra,omitempty"`
	FewShotExamples          []FewShotExample          `json:"few_shot_examples,omitempty"`
	FewShotTotalChars        int                       `json:"few_shot_total_chars"`
}

type APIStructure struct {
	SystemPromptChars     int `json:"system_prompt_chars"`
	UserMessageChars      int `json:"user_message_chars"`
	AssistantPrefillChars int `json:"assistant_prefill_chars"`
	OtherChars            int `json:"other_chars"`
}

// Total returns the character count across all API message roles.
func (api APIStructure) Total() int {
	return api.SystemPromptChars + api.UserMessageChars + api.AssistantPrefillChars + api.OtherChars
}

type Input struct {
	TotalChars      int              `json:"total_chars"`
	APIStructure    *APIStructure    `json:"api_structure,omitempty"`
	PromptBreakdown *PromptBreakdown `json:"prompt_breakdown,omitempty"`
}

type Output struct {
	ResponseChars           int  `json:"response_chars"`
	ResponseTokensReported  *int `json:"response_tokens_reported,omitempty"`
	ResponseTokensEstimated *int `json:"response_tokens_estimated,omitempty"`
	PromptTokensReported    *int `json:"prompt_tokens_reported,omitempty"`
}

type Provenance struct {
	TimestampUTC string `json:"timestamp_utc"`
	DurationMS   *int64 `json:"duration_ms,omitempty"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	PromptFile   string `json:"prompt_file"`
	PDDVersion   string `json:"pdd_version,omitempty"`
}

// ContextMap is the root artifact describing how one generation's prompt was
// assembled and how the model responded. Immutable once finalized.
type ContextMap struct {
	SchemaVersion string     `json:"schema_version"`
	GenerationID  string     `json:"generation_id"`
	Provenance    Provenance `json:"provenance"`
	Input         Input      `json:"input"`
	Output        Output     `json:"output"`
}
