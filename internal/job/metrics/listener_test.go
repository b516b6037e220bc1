package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comfortlab/comfortcast/internal/job"
	"github.com/comfortlab/comfortcast/internal/job/metrics"
)

type fakeRecorder struct {
	jobs  []string
	steps []string
	rows  []int
}

func (r *fakeRecorder) RecordJob(jobName, status string, _ time.Duration) {
	r.jobs = append(r.jobs, jobName+":"+status)
}

func (r *fakeRecorder) RecordStep(jobName, stepName, status string, _ time.Duration) {
	r.steps = append(r.steps, jobName+":"+stepName+":"+status)
}

func (r *fakeRecorder) RecordRows(_, _ string, read, written, skipped int) {
	r.rows = append(r.rows, read, written, skipped)
}

func (r *fakeRecorder) Expose(ctx context.Context, _ string) error {
	<-ctx.Done()
	return nil
}

type countingStep struct {
	err error
}

func (s *countingStep) Name() string { return "counting" }

func (s *countingStep) Execute(_ context.Context, _ *job.JobExecution, step *job.StepExecution) error {
	step.ReadCount = 10
	step.WriteCount = 8
	step.SkipCount = 2
	return s.err
}

func TestRecorderListener(t *testing.T) {
	recorder := &fakeRecorder{}
	j := job.New("nightly", &countingStep{})
	j.AddListener(metrics.NewRecorderListener(recorder))

	_, err := j.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"nightly:COMPLETED"}, recorder.jobs)
	assert.Equal(t, []string{"nightly:counting:COMPLETED"}, recorder.steps)
	assert.Equal(t, []int{10, 8, 2}, recorder.rows)
}

func TestRecorderListener_Failure(t *testing.T) {
	recorder := &fakeRecorder{}
	j := job.New("nightly", &countingStep{err: errors.New("boom")})
	j.AddListener(metrics.NewRecorderListener(recorder))

	_, err := j.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"nightly:FAILED"}, recorder.jobs)
	assert.Equal(t, []string{"nightly:counting:FAILED"}, recorder.steps)
}

func TestTracingListener_NoopTracer(t *testing.T) {
	tracer, err := metrics.NewTracer(context.Background(), metrics.TracingConfig{Enabled: false})
	require.NoError(t, err)
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	j := job.New("nightly", &countingStep{})
	j.AddListener(metrics.NewTracingListener(tracer))

	execution, err := j.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, execution.Status)
}

func TestNoopRecorder_ExposeReturnsOnCancel(t *testing.T) {
	recorder := metrics.NewNoopRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- recorder.Expose(ctx, ":0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Expose did not return after cancel")
	}
}
