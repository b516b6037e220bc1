// Package dataset maintains the long-lived master feature dataset: the
// rolling-window merge that folds fresh batches into it, and the codecs that
// persist it.
package dataset

import (
	"fmt"
	"time"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// DefaultRetentionDays is the rolling window applied when none is configured,
// roughly 21 months.
const DefaultRetentionDays = 630

// MergeReport summarizes one merge run for logging and alerting.
type MergeReport struct {
	// Skipped is set when the new batch carried no usable rows; the dataset
	// is returned unchanged.
	Skipped            bool      `json:"skipped"`
	Reason             string    `json:"reason,omitempty"`
	RecordsBefore      int       `json:"records_before"`
	RecordsAfterCutoff int       `json:"records_after_cutoff"`
	RemovedByCutoff    int       `json:"removed_by_cutoff"`
	RecordsAfterDedup  int       `json:"records_after_dedup"`
	RemovedByDedup     int       `json:"removed_by_dedup"`
	RetentionCutoff    time.Time `json:"retention_cutoff"`
}

func (r MergeReport) String() string {
	if r.Skipped {
		return fmt.Sprintf("merge skipped (%s)", r.Reason)
	}
	return fmt.Sprintf(
		"merged %d -> %d rows (cutoff %s removed %d, dedup removed %d)",
		r.RecordsBefore, r.RecordsAfterDedup,
		r.RetentionCutoff.Format(time.RFC3339), r.RemovedByCutoff, r.RemovedByDedup,
	)
}

// Merger folds fresh feature batches into the master dataset under a rolling
// retention window. It is not safe against concurrent merges into the same
// dataset; callers must serialize runs.
type Merger struct {
	retentionDays int
	// now is the clock used to compute the retention cutoff. It is
	// recomputed on every merge, not captured at row creation time.
	now func() time.Time
}

// Option customizes a Merger.
type Option func(*Merger)

// WithClock overrides the merge-time clock.
func WithClock(now func() time.Time) Option {
	return func(m *Merger) { m.now = now }
}

// NewMerger builds a merger with the given retention horizon in days.
// Non-positive values fall back to DefaultRetentionDays.
func NewMerger(retentionDays int, opts ...Option) *Merger {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	m := &Merger{retentionDays: retentionDays, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge concatenates the existing dataset with the new batch, drops rows
// older than the retention cutoff (the boundary itself is kept), deduplicates
// on (observed_at, station_id) keeping the last occurrence in concatenation
// order so new data wins over old, and returns the result sorted ascending by
// (observed_at, station_id).
//
// A nil existing dataset is a cold start, not an error. An empty new batch
// short-circuits: the existing dataset is returned untouched with a skipped
// report, so schedulers can tell "nothing to do" from failure.
func (m *Merger) Merge(existing, batch domain.FeatureMatrix) (domain.FeatureMatrix, MergeReport) {
	if len(batch) == 0 {
		report := MergeReport{
			Skipped:           true,
			Reason:            "no new data",
			RecordsBefore:     len(existing),
			RecordsAfterDedup: len(existing),
		}
		logger.Infof("merger: %s", report)
		return existing, report
	}

	combined := make(domain.FeatureMatrix, 0, len(existing)+len(batch))
	combined = append(combined, existing...)
	combined = append(combined, batch...)

	cutoff := m.now().UTC().Add(-time.Duration(m.retentionDays) * 24 * time.Hour)

	kept := combined[:0:len(combined)]
	for _, row := range combined {
		if row.ObservedAt.UTC().Before(cutoff) {
			continue
		}
		kept = append(kept, row)
	}

	// Last occurrence wins: overwrite earlier entries for the same key.
	index := make(map[domain.ObservationKey]int, len(kept))
	deduped := make(domain.FeatureMatrix, 0, len(kept))
	for _, row := range kept {
		key := row.Key()
		if at, ok := index[key]; ok {
			deduped[at] = row
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, row)
	}
	deduped.SortStable()

	report := MergeReport{
		RecordsBefore:      len(combined),
		RecordsAfterCutoff: len(kept),
		RemovedByCutoff:    len(combined) - len(kept),
		RecordsAfterDedup:  len(deduped),
		RemovedByDedup:     len(kept) - len(deduped),
		RetentionCutoff:    cutoff,
	}
	logger.Infof("merger: %s", report)
	return deduped, report
}
