package sampler

import (
	"fmt"
	"time"

	"github.com/davidahmann/ctxmap/core/contextmap"
	coreerrors "github.com/davidahmann/ctxmap/core/errors"
	"github.com/davidahmann/ctxmap/core/retention"
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

type samplerState int

const (
	stateUninitialized samplerState = iota
	stateOpen
	stateFinalized
)

func (s samplerState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateFinalized:
		return "finalized"
	default:
		return "uninitialized"
	}
}

// ContextSampler is the session-scoped accumulator for one generation. It is
// driven synchronously on the generation's own task; methods are not safe for
// concurrent use.
type ContextSampler struct {
	config Config
	state  samplerState

	generationID string
	startedAt    time.Time
	promptFile   string
	model        string
	provider     string

	call        *CallResult
	breakdown   *Breakdown
	fewShot     []schemacontextmap.FewShotExample
	fewShotSeen bool
}

var _ Sampler = (*ContextSampler)(nil)

// StartGeneration opens the sampler, assigning the generation id and the
// start instant used to derive duration when no call reports one.
func (s *ContextSampler) StartGeneration(promptFile, model, provider string) error {
	if s.state != stateUninitialized {
		return stateError("sampler_already_started", fmt.Sprintf("start_generation called in state %s", s.state))
	}
	s.generationID = s.config.NewID()
	s.startedAt = s.config.Now().UTC()
	s.promptFile = promptFile
	s.model = model
	s.provider = provider
	s.state = stateOpen
	return nil
}

// RecordCall stores the invocation facts. A second call overwrites the first
// wholesale; the model is one model call per generation, last write wins.
func (s *ContextSampler) RecordCall(result CallResult) error {
	if err := s.requireOpen("record_call"); err != nil {
		return err
	}
	s.call = &result
	return nil
}

// RecordPromptBreakdown stores the raw item sequence. Summaries are derived
// at finalize; a repeat call replaces the breakdown in full, never merges.
func (s *ContextSampler) RecordPromptBreakdown(breakdown Breakdown) error {
	if err := s.requireOpen("record_prompt_breakdown"); err != nil {
		return err
	}
	s.breakdown = &breakdown
	return nil
}

// RecordFewShot sets the few-shot example sequence, replacing any prior set.
func (s *ContextSampler) RecordFewShot(examples []schemacontextmap.FewShotExample) error {
	if err := s.requireOpen("record_few_shot"); err != nil {
		return err
	}
	s.fewShot = examples
	s.fewShotSeen = true
	return nil
}

// RecordFrom pulls every fact from the collector contract in one call.
func (s *ContextSampler) RecordFrom(collector MetadataCollector) error {
	if err := s.RecordCall(collector.Call()); err != nil {
		return err
	}
	if err := s.RecordPromptBreakdown(collector.PromptBreakdown()); err != nil {
		return err
	}
	return s.RecordFewShot(collector.FewShotExamples())
}

// Finalize closes the sampler, validates the accumulated map, and hands it to
// the retention store. It either completes with a durably renamed file or
// fails without leaving a partial artifact. A second call is a state error
// and writes nothing.
func (s *ContextSampler) Finalize() (string, error) {
	if s.state == stateFinalized {
		return "", stateError("sampler_already_finalized", "finalize called twice")
	}
	if s.state != stateOpen {
		return "", stateError("sampler_not_started", "finalize called before start_generation")
	}
	s.state = stateFinalized

	m := s.buildContextMap()
	if err := contextmap.Validate(m); err != nil {
		return "", err
	}

	store := retention.NewStore(s.config.OutputPath, s.config.MaxSamples, s.config.Logger)
	path, err := store.Persist(m)
	if err != nil {
		return "", err
	}
	return path, nil
}

func (s *ContextSampler) buildContextMap() schemacontextmap.ContextMap {
	provenance := schemacontextmap.Provenance{
		TimestampUTC: s.startedAt.Format(time.RFC3339),
		Model:        s.model,
		Provider:     s.provider,
		PromptFile:   s.promptFile,
		PDDVersion:   s.config.Version,
	}

	var input schemacontextmap.Input
	var output schemacontextmap.Output
	if s.call != nil {
		input.TotalChars = s.call.InputChars
		if s.call.APIStructure != nil {
			apiStructure := *s.call.APIStructure
			input.APIStructure = &apiStructure
			if input.TotalChars == 0 {
				input.TotalChars = apiStructure.Total()
			}
		}
		output.ResponseChars = s.call.OutputChars
		output.PromptTokensReported = copyIntRef(s.call.PromptTokensReported)
		output.ResponseTokensReported = copyIntRef(s.call.ResponseTokensReported)
		output.ResponseTokensEstimated = copyIntRef(s.call.ResponseTokensEstimated)
		durationMS := s.call.DurationMS
		provenance.DurationMS = &durationMS
	} else {
		elapsedMS := s.config.Now().UTC().Sub(s.startedAt).Milliseconds()
		provenance.DurationMS = &elapsedMS
	}

	if s.breakdown != nil || s.fewShotSeen {
		input.PromptBreakdown = s.buildPromptBreakdown()
	}

	return schemacontextmap.ContextMap{
		SchemaVersion: schemacontextmap.SchemaVersion,
		GenerationID:  s.generationID,
		Provenance:    provenance,
		Input:         input,
		Output:        output,
	}
}

func (s *ContextSampler) buildPromptBreakdown() *schemacontextmap.PromptBreakdown {
	breakdown := schemacontextmap.PromptBreakdown{}
	if s.breakdown != nil {
		breakdown.PDDSystemPromptChars = s.breakdown.PDDSystemPromptChars
		breakdown.DevunitPromptChars = s.breakdown.DevunitPromptChars
		breakdown.PrependedChars = s.breakdown.PrependedChars
		breakdown.AppendedChars = s.breakdown.AppendedChars
		breakdown.PreprocessorItems = append([]schemacontextmap.PreprocessorItem(nil), s.breakdown.Items...)
		breakdown.PreprocessorTotalChars = contextmap.TotalItemChars(breakdown.PreprocessorItems)
		summary, extra := contextmap.SummarizeItems(breakdown.PreprocessorItems)
		breakdown.PreprocessorSummary = summary
		breakdown.PreprocessorSummaryExtra = extra
	}
	if s.fewShotSeen {
		breakdown.FewShotExamples = append([]schemacontextmap.FewShotExample(nil), s.fewShot...)
		breakdown.FewShotTotalChars = contextmap.TotalFewShotChars(breakdown.FewShotExamples)
	}
	return &breakdown
}

func (s *ContextSampler) requireOpen(operation string) error {
	switch s.state {
	case stateOpen:
		return nil
	case stateFinalized:
		return stateError("sampler_already_finalized", operation+" called after finalize")
	default:
		return stateError("sampler_not_started", operation+" called before start_generation")
	}
}

func stateError(code, message string) error {
	return coreerrors.Wrap(
		fmt.Errorf("%s", message),
		coreerrors.CategoryState,
		code,
		"samplers are single-use: start, record, finalize, in that order",
		false,
	)
}

func copyIntRef(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
