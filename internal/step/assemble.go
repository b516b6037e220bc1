package step

import (
	"context"
	"fmt"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/internal/feature"
	"github.com/comfortlab/comfortcast/internal/job"
)

// AssembleStep joins the fetched observations into a feature matrix. The
// mode decides whether the comfort_score target is derived: training batches
// carry it, inference batches never do.
type AssembleStep struct {
	assembler *feature.Assembler
	mode      feature.Mode
}

var _ job.Step = (*AssembleStep)(nil)

func NewAssembleStep(assembler *feature.Assembler, mode feature.Mode) *AssembleStep {
	return &AssembleStep{assembler: assembler, mode: mode}
}

func (s *AssembleStep) Name() string {
	if s.mode == feature.ModeTraining {
		return "assembleTrainingFeatures"
	}
	return "assembleInferenceFeatures"
}

func (s *AssembleStep) Execute(ctx context.Context, execution *job.JobExecution, step *job.StepExecution) error {
	raw, ok := execution.Context.Get(KeyObservations)
	if !ok {
		return fmt.Errorf("assemble: no observations in execution context")
	}
	observations, ok := raw.([]domain.Observation)
	if !ok {
		return fmt.Errorf("assemble: unexpected observations type %T", raw)
	}

	result := s.assembler.Assemble(s.mode, observations)

	step.ReadCount = len(observations)
	step.WriteCount = len(result.Matrix)
	step.SkipCount = result.DroppedRows
	execution.Context.Put(KeyFeatureMatrix, result.Matrix)
	return nil
}
