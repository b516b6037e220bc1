package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/comfortlab/comfortcast/pkg/util/exception"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// Step is one unit of work within a job. Steps communicate through the
// execution context on the JobExecution.
type Step interface {
	Name() string
	Execute(ctx context.Context, execution *JobExecution, step *StepExecution) error
}

// Listener observes job and step lifecycle events.
type Listener interface {
	BeforeJob(ctx context.Context, execution *JobExecution)
	AfterJob(ctx context.Context, execution *JobExecution)
	BeforeStep(ctx context.Context, execution *JobExecution, step *StepExecution)
	AfterStep(ctx context.Context, execution *JobExecution, step *StepExecution)
}

// Job runs its steps sequentially. The first failing step fails the job;
// later steps do not run.
type Job struct {
	name      string
	steps     []Step
	listeners []Listener
}

func New(name string, steps ...Step) *Job {
	return &Job{name: name, steps: steps}
}

// AddListener registers a lifecycle listener.
func (j *Job) AddListener(l Listener) {
	j.listeners = append(j.listeners, l)
}

func (j *Job) Name() string { return j.name }

// Run executes the job once and returns its execution record. The returned
// error aggregates every step failure; the execution carries them too.
func (j *Job) Run(ctx context.Context) (*JobExecution, error) {
	execution := NewJobExecution(j.name)
	execution.StartTime = time.Now()
	execution.Status = StatusStarted

	for _, l := range j.listeners {
		l.BeforeJob(ctx, execution)
	}

	var runErr error
	for _, step := range j.steps {
		if err := ctx.Err(); err != nil {
			runErr = multierror.Append(runErr, fmt.Errorf("job %s canceled before step %s: %w", j.name, step.Name(), err))
			break
		}
		if err := j.runStep(ctx, execution, step); err != nil {
			runErr = multierror.Append(runErr, err)
			break
		}
	}

	execution.EndTime = time.Now()
	if runErr != nil {
		execution.Status = StatusFailed
		execution.AddFailure(runErr)
	} else {
		execution.Status = StatusCompleted
	}

	for _, l := range j.listeners {
		l.AfterJob(ctx, execution)
	}
	return execution, runErr
}

func (j *Job) runStep(ctx context.Context, execution *JobExecution, step Step) error {
	stepExecution := NewStepExecution(step.Name())
	stepExecution.StartTime = time.Now()
	stepExecution.Status = StatusStarted
	execution.StepExecutions = append(execution.StepExecutions, stepExecution)

	for _, l := range j.listeners {
		l.BeforeStep(ctx, execution, stepExecution)
	}

	err := step.Execute(ctx, execution, stepExecution)

	stepExecution.EndTime = time.Now()
	if err != nil {
		stepExecution.Status = StatusFailed
		stepExecution.Failure = err
		logger.Errorf("job %s: step %s failed: %s", j.name, step.Name(), exception.ExtractErrorMessage(err))
	} else {
		stepExecution.Status = StatusCompleted
	}

	for _, l := range j.listeners {
		l.AfterStep(ctx, execution, stepExecution)
	}

	if err != nil {
		return fmt.Errorf("step %s: %w", step.Name(), err)
	}
	return nil
}
