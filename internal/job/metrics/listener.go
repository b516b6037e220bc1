package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/comfortlab/comfortcast/internal/job"
)

// RecorderListener feeds job and step outcomes into a Recorder.
type RecorderListener struct {
	recorder Recorder
}

var _ job.Listener = (*RecorderListener)(nil)

func NewRecorderListener(recorder Recorder) *RecorderListener {
	return &RecorderListener{recorder: recorder}
}

func (l *RecorderListener) BeforeJob(ctx context.Context, execution *job.JobExecution) {}

func (l *RecorderListener) AfterJob(ctx context.Context, execution *job.JobExecution) {
	l.recorder.RecordJob(execution.JobName, string(execution.Status), execution.Duration())
}

func (l *RecorderListener) BeforeStep(ctx context.Context, execution *job.JobExecution, step *job.StepExecution) {
}

func (l *RecorderListener) AfterStep(ctx context.Context, execution *job.JobExecution, step *job.StepExecution) {
	l.recorder.RecordStep(execution.JobName, step.StepName, string(step.Status), step.Duration())
	l.recorder.RecordRows(execution.JobName, step.StepName, step.ReadCount, step.WriteCount, step.SkipCount)
}

// TracingListener opens one span per job execution and a child span per step.
type TracingListener struct {
	tracer *Tracer

	mu        sync.Mutex
	jobSpans  map[string]trace.Span
	jobCtxs   map[string]context.Context
	stepSpans map[string]trace.Span
}

var _ job.Listener = (*TracingListener)(nil)

func NewTracingListener(tracer *Tracer) *TracingListener {
	return &TracingListener{
		tracer:    tracer,
		jobSpans:  map[string]trace.Span{},
		jobCtxs:   map[string]context.Context{},
		stepSpans: map[string]trace.Span{},
	}
}

func (l *TracingListener) BeforeJob(ctx context.Context, execution *job.JobExecution) {
	spanCtx, span := l.tracer.Start(ctx, "job "+execution.JobName,
		attribute.String("job.name", execution.JobName),
		attribute.String("job.execution_id", execution.ID),
	)
	l.mu.Lock()
	l.jobSpans[execution.ID] = span
	l.jobCtxs[execution.ID] = spanCtx
	l.mu.Unlock()
}

func (l *TracingListener) AfterJob(ctx context.Context, execution *job.JobExecution) {
	l.mu.Lock()
	span := l.jobSpans[execution.ID]
	delete(l.jobSpans, execution.ID)
	delete(l.jobCtxs, execution.ID)
	l.mu.Unlock()
	if span == nil {
		return
	}
	if execution.Status == job.StatusFailed {
		span.SetStatus(codes.Error, "job failed")
		for _, failure := range execution.Failures {
			span.RecordError(failure)
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (l *TracingListener) BeforeStep(ctx context.Context, execution *job.JobExecution, step *job.StepExecution) {
	l.mu.Lock()
	parent, ok := l.jobCtxs[execution.ID]
	l.mu.Unlock()
	if !ok {
		parent = ctx
	}
	_, span := l.tracer.Start(parent, "step "+step.StepName,
		attribute.String("step.name", step.StepName),
		attribute.String("step.execution_id", step.ID),
	)
	l.mu.Lock()
	l.stepSpans[step.ID] = span
	l.mu.Unlock()
}

func (l *TracingListener) AfterStep(ctx context.Context, execution *job.JobExecution, step *job.StepExecution) {
	l.mu.Lock()
	span := l.stepSpans[step.ID]
	delete(l.stepSpans, step.ID)
	l.mu.Unlock()
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("step.rows_read", step.ReadCount),
		attribute.Int("step.rows_written", step.WriteCount),
		attribute.Int("step.rows_skipped", step.SkipCount),
	)
	if step.Status == job.StatusFailed {
		span.SetStatus(codes.Error, "step failed")
		if step.Failure != nil {
			span.RecordError(step.Failure)
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
