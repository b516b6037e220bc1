package dataset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comfortlab/comfortcast/internal/dataset"
	"github.com/comfortlab/comfortcast/internal/domain"
)

var mergeNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return mergeNow }

func row(stationID string, observedAt time.Time, temp float64) domain.FeatureRow {
	return domain.FeatureRow{
		StationID:   stationID,
		ObservedAt:  observedAt,
		Temperature: domain.Float(temp),
	}
}

func TestMerge_ColdStart(t *testing.T) {
	m := dataset.NewMerger(630, dataset.WithClock(fixedClock))
	batch := domain.FeatureMatrix{
		row("108", mergeNow.Add(-time.Hour), 17),
	}

	merged, report := m.Merge(nil, batch)
	assert.False(t, report.Skipped)
	assert.Len(t, merged, 1)
	assert.Equal(t, 1, report.RecordsAfterDedup)
}

func TestMerge_EmptyBatchSkips(t *testing.T) {
	m := dataset.NewMerger(630, dataset.WithClock(fixedClock))
	existing := domain.FeatureMatrix{
		row("108", mergeNow.Add(-time.Hour), 17),
	}

	merged, report := m.Merge(existing, nil)
	assert.True(t, report.Skipped)
	assert.Equal(t, "no new data", report.Reason)
	// The existing dataset comes back untouched, even if some of its rows
	// are past the retention cutoff.
	assert.Equal(t, existing, merged)
}

func TestMerge_RetentionCutoff(t *testing.T) {
	m := dataset.NewMerger(630, dataset.WithClock(fixedClock))
	cutoff := mergeNow.Add(-630 * 24 * time.Hour)

	existing := domain.FeatureMatrix{
		row("108", cutoff.Add(-time.Second), 1), // expired
		row("108", cutoff, 2),                   // boundary row is kept
	}
	batch := domain.FeatureMatrix{
		row("108", mergeNow.Add(-time.Hour), 3),
	}

	merged, report := m.Merge(existing, batch)
	assert.Len(t, merged, 2)
	assert.Equal(t, 1, report.RemovedByCutoff)
	assert.Equal(t, cutoff, report.RetentionCutoff)
	assert.Equal(t, 2.0, *merged[0].Temperature)
}

func TestMerge_LastWinsDedup(t *testing.T) {
	m := dataset.NewMerger(630, dataset.WithClock(fixedClock))
	at := mergeNow.Add(-time.Hour)

	existing := domain.FeatureMatrix{
		row("108", at, 10),
	}
	batch := domain.FeatureMatrix{
		row("108", at, 12),
	}

	merged, report := m.Merge(existing, batch)
	if assert.Len(t, merged, 1) {
		assert.Equal(t, 12.0, *merged[0].Temperature)
	}
	assert.Equal(t, 1, report.RemovedByDedup)
}

func TestMerge_SortedByTimeThenStation(t *testing.T) {
	m := dataset.NewMerger(630, dataset.WithClock(fixedClock))
	earlier := mergeNow.Add(-2 * time.Hour)
	later := mergeNow.Add(-time.Hour)

	batch := domain.FeatureMatrix{
		row("112", later, 1),
		row("108", later, 2),
		row("108", earlier, 3),
	}

	merged, _ := m.Merge(nil, batch)
	if assert.Len(t, merged, 3) {
		assert.Equal(t, earlier, merged[0].ObservedAt)
		assert.Equal(t, "108", merged[1].StationID)
		assert.Equal(t, "112", merged[2].StationID)
	}
}

func TestMerge_ReportCounts(t *testing.T) {
	m := dataset.NewMerger(630, dataset.WithClock(fixedClock))
	at := mergeNow.Add(-time.Hour)
	expired := mergeNow.Add(-631 * 24 * time.Hour)

	existing := domain.FeatureMatrix{
		row("108", expired, 1),
		row("108", at, 2),
	}
	batch := domain.FeatureMatrix{
		row("108", at, 3),
		row("112", at, 4),
	}

	merged, report := m.Merge(existing, batch)
	assert.Len(t, merged, 2)
	assert.Equal(t, 4, report.RecordsBefore)
	assert.Equal(t, 3, report.RecordsAfterCutoff)
	assert.Equal(t, 1, report.RemovedByCutoff)
	assert.Equal(t, 2, report.RecordsAfterDedup)
	assert.Equal(t, 1, report.RemovedByDedup)
}

func TestNewMerger_NonPositiveRetentionFallsBack(t *testing.T) {
	m := dataset.NewMerger(0, dataset.WithClock(fixedClock))
	old := mergeNow.Add(-time.Duration(dataset.DefaultRetentionDays)*24*time.Hour - time.Second)

	merged, report := m.Merge(nil, domain.FeatureMatrix{
		row("108", old, 1),
		row("108", mergeNow.Add(-time.Hour), 2),
	})
	assert.Len(t, merged, 1)
	assert.Equal(t, 1, report.RemovedByCutoff)
}
