package step

import (
	"context"
	"errors"
	"fmt"

	"github.com/comfortlab/comfortcast/internal/dataset"
	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/internal/job"
	"github.com/comfortlab/comfortcast/internal/storage"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// MergeStep folds the assembled batch into the persisted master dataset:
// load, rolling-window merge, save. The save only happens when the merge
// actually changed anything, so a skipped run never rewrites the object.
type MergeStep struct {
	store      storage.ObjectStore
	merger     *dataset.Merger
	datasetKey string
}

var _ job.Step = (*MergeStep)(nil)

func NewMergeStep(store storage.ObjectStore, merger *dataset.Merger, datasetKey string) *MergeStep {
	return &MergeStep{store: store, merger: merger, datasetKey: datasetKey}
}

func (s *MergeStep) Name() string { return "mergeMasterDataset" }

func (s *MergeStep) Execute(ctx context.Context, execution *job.JobExecution, step *job.StepExecution) error {
	raw, ok := execution.Context.Get(KeyFeatureMatrix)
	if !ok {
		return fmt.Errorf("merge: no feature matrix in execution context")
	}
	batch, ok := raw.(domain.FeatureMatrix)
	if !ok {
		return fmt.Errorf("merge: unexpected feature matrix type %T", raw)
	}

	existing, err := s.loadExisting(ctx)
	if err != nil {
		return err
	}

	merged, report := s.merger.Merge(existing, batch)
	step.ReadCount = len(existing) + len(batch)
	step.WriteCount = len(merged)
	step.SkipCount = report.RemovedByCutoff + report.RemovedByDedup
	execution.Context.Put(KeyMasterDataset, merged)
	execution.Context.Put(KeyMergeReport, report)

	if report.Skipped {
		return nil
	}

	data, err := dataset.MarshalCSV(merged)
	if err != nil {
		return fmt.Errorf("merge: encode master dataset: %w", err)
	}
	if err := storage.SaveBytes(ctx, s.store, s.datasetKey, data); err != nil {
		return fmt.Errorf("merge: persist master dataset: %w", err)
	}
	logger.Infof("merge: persisted %d row(s) to %s", len(merged), s.datasetKey)
	return nil
}

// loadExisting reads the persisted master dataset. A missing object is a
// cold start and yields an empty base.
func (s *MergeStep) loadExisting(ctx context.Context) (domain.FeatureMatrix, error) {
	data, err := storage.LoadBytes(ctx, s.store, s.datasetKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		logger.Infof("merge: no master dataset at %s, starting cold", s.datasetKey)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("merge: load master dataset: %w", err)
	}
	matrix, err := dataset.UnmarshalCSV(data)
	if err != nil {
		return nil, fmt.Errorf("merge: decode master dataset: %w", err)
	}
	return matrix, nil
}
