package job_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/comfortlab/comfortcast/internal/job"
)

type stubStep struct {
	name string
	err  error
	ran  bool
}

func (s *stubStep) Name() string { return s.name }

func (s *stubStep) Execute(_ context.Context, execution *job.JobExecution, step *job.StepExecution) error {
	s.ran = true
	step.ReadCount = 1
	execution.Context.Put("last", s.name)
	return s.err
}

type recordingListener struct {
	events []string
}

func (l *recordingListener) BeforeJob(_ context.Context, execution *job.JobExecution) {
	l.events = append(l.events, "beforeJob:"+execution.JobName)
}

func (l *recordingListener) AfterJob(_ context.Context, execution *job.JobExecution) {
	l.events = append(l.events, "afterJob:"+string(execution.Status))
}

func (l *recordingListener) BeforeStep(_ context.Context, _ *job.JobExecution, step *job.StepExecution) {
	l.events = append(l.events, "beforeStep:"+step.StepName)
}

func (l *recordingListener) AfterStep(_ context.Context, _ *job.JobExecution, step *job.StepExecution) {
	l.events = append(l.events, "afterStep:"+string(step.Status))
}

func TestJobRun_AllStepsSucceed(t *testing.T) {
	first := &stubStep{name: "first"}
	second := &stubStep{name: "second"}
	j := job.New("nightly", first, second)

	execution, err := j.Run(context.Background())
	assert.NoError(t, err)
	assert.True(t, first.ran)
	assert.True(t, second.ran)
	assert.Equal(t, job.StatusCompleted, execution.Status)
	assert.True(t, execution.Status.IsFinished())
	assert.Len(t, execution.StepExecutions, 2)
	assert.NotEmpty(t, execution.ID)

	last, ok := execution.Context.GetString("last")
	assert.True(t, ok)
	assert.Equal(t, "second", last)
}

func TestJobRun_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	first := &stubStep{name: "first", err: boom}
	second := &stubStep{name: "second"}
	j := job.New("nightly", first, second)

	execution, err := j.Run(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, second.ran)
	assert.Equal(t, job.StatusFailed, execution.Status)
	assert.NotEmpty(t, execution.Failures)
	if assert.Len(t, execution.StepExecutions, 1) {
		assert.Equal(t, job.StatusFailed, execution.StepExecutions[0].Status)
		assert.Equal(t, boom, execution.StepExecutions[0].Failure)
	}
}

func TestJobRun_CanceledContext(t *testing.T) {
	first := &stubStep{name: "first"}
	j := job.New("nightly", first)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	execution, err := j.Run(ctx)
	assert.Error(t, err)
	assert.False(t, first.ran)
	assert.Equal(t, job.StatusFailed, execution.Status)
}

func TestJobRun_ListenerOrder(t *testing.T) {
	listener := &recordingListener{}
	j := job.New("nightly", &stubStep{name: "only"})
	j.AddListener(listener)

	_, err := j.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"beforeJob:nightly",
		"beforeStep:only",
		"afterStep:COMPLETED",
		"afterJob:COMPLETED",
	}, listener.events)
}

func TestExecutionContext(t *testing.T) {
	ec := job.NewExecutionContext()
	ec.Put("count", 3)
	ec.Put("name", "x")

	count, ok := ec.GetInt("count")
	assert.True(t, ok)
	assert.Equal(t, 3, count)

	name, ok := ec.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "x", name)

	_, ok = ec.GetInt("name")
	assert.False(t, ok)
	_, ok = ec.Get("missing")
	assert.False(t, ok)
}
