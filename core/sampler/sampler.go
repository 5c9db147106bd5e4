package sampler

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

// Sampler accumulates one generation's context map. Collaborators report
// facts through the Record methods while the generation runs; Finalize
// validates, persists, and prunes. A disabled sampler is a no-op whose
// Finalize returns an empty path, so call sites need no branching.
type Sampler interface {
	StartGeneration(promptFile, model, provider string) error
	RecordCall(result CallResult) error
	RecordPromptBreakdown(breakdown Breakdown) error
	RecordFewShot(examples []schemacontextmap.FewShotExample) error
	RecordFrom(collector MetadataCollector) error
	Finalize() (string, error)
}

// Config wires one sampler instance. Now and NewID default to the wall clock
// and uuid v4; tests override them for determinism.
type Config struct {
	OutputPath string
	MaxSamples int
	Enabled    bool
	Version    string
	Logger     *zap.Logger
	Now        func() time.Time
	NewID      func() string
}

// New returns an accumulating sampler, or the shared no-op sampler when
// sampling is disabled.
func New(config Config) Sampler {
	if !config.Enabled {
		return Disabled()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}
	return &ContextSampler{config: config}
}

type disabledSampler struct{}

// Disabled returns the no-op sampler: every operation succeeds without
// effect and Finalize reports no path and zero filesystem writes.
func Disabled() Sampler {
	return disabledSampler{}
}

func (disabledSampler) StartGeneration(promptFile, model, provider string) error { return nil }

func (disabledSampler) RecordCall(result CallResult) error { return nil }

func (disabledSampler) RecordPromptBreakdown(breakdown Breakdown) error { return nil }

func (disabledSampler) RecordFewShot(examples []schemacontextmap.FewShotExample) error { return nil }

func (disabledSampler) RecordFrom(collector MetadataCollector) error { return nil }

func (disabledSampler) Finalize() (string, error) { return "", nil }
