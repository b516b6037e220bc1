// Package metrics records job and step telemetry: Prometheus counters and
// histograms, and OpenTelemetry spans around executions.
package metrics

import (
	"context"
	"time"
)

// Recorder receives job and step outcomes.
type Recorder interface {
	RecordJob(jobName, status string, duration time.Duration)
	RecordStep(jobName, stepName, status string, duration time.Duration)
	RecordRows(jobName, stepName string, read, written, skipped int)
	// Expose serves the metrics endpoint until the context is canceled.
	Expose(ctx context.Context, addr string) error
}

// NoopRecorder discards everything; it is the default when metrics are
// disabled in configuration.
type NoopRecorder struct{}

var _ Recorder = (*NoopRecorder)(nil)

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (NoopRecorder) RecordJob(string, string, time.Duration)          {}
func (NoopRecorder) RecordStep(string, string, string, time.Duration) {}
func (NoopRecorder) RecordRows(string, string, int, int, int)         {}
func (NoopRecorder) Expose(ctx context.Context, addr string) error {
	<-ctx.Done()
	return nil
}
