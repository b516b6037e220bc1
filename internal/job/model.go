// Package job provides a small sequential batch engine: named steps executed
// in order under one JobExecution, with listeners observing lifecycle events
// for logging, metrics, and tracing.
package job

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of a job or step execution.
type Status string

const (
	StatusStarting  Status = "STARTING"
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// IsFinished reports whether the status is terminal.
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ExecutionContext carries values between steps of one run, such as the
// assembled matrix or the merge report.
type ExecutionContext map[string]interface{}

func NewExecutionContext() ExecutionContext {
	return make(ExecutionContext)
}

// Put stores a value under the key.
func (ec ExecutionContext) Put(key string, value interface{}) {
	ec[key] = value
}

// Get retrieves a value and whether it was present.
func (ec ExecutionContext) Get(key string) (interface{}, bool) {
	v, ok := ec[key]
	return v, ok
}

// GetString retrieves a string value; missing or differently typed keys
// report false.
func (ec ExecutionContext) GetString(key string) (string, bool) {
	v, ok := ec[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt retrieves an int value.
func (ec ExecutionContext) GetInt(key string) (int, bool) {
	v, ok := ec[key]
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// NewID returns a unique execution identifier.
func NewID() string {
	return uuid.New().String()
}

// JobExecution records one run of a job.
type JobExecution struct {
	ID        string
	JobName   string
	Status    Status
	StartTime time.Time
	EndTime   time.Time
	Failures  []error

	Context        ExecutionContext
	StepExecutions []*StepExecution
}

func NewJobExecution(jobName string) *JobExecution {
	return &JobExecution{
		ID:      NewID(),
		JobName: jobName,
		Status:  StatusStarting,
		Context: NewExecutionContext(),
	}
}

// AddFailure records an error against the execution.
func (je *JobExecution) AddFailure(err error) {
	je.Failures = append(je.Failures, err)
}

// Duration reports how long the execution ran.
func (je *JobExecution) Duration() time.Duration {
	if je.EndTime.IsZero() {
		return time.Since(je.StartTime)
	}
	return je.EndTime.Sub(je.StartTime)
}

// StepExecution records one step within a job execution.
type StepExecution struct {
	ID        string
	StepName  string
	Status    Status
	StartTime time.Time
	EndTime   time.Time
	Failure   error

	// Row accounting for the merge and inference reports.
	ReadCount  int
	WriteCount int
	SkipCount  int
}

func NewStepExecution(stepName string) *StepExecution {
	return &StepExecution{
		ID:       NewID(),
		StepName: stepName,
		Status:   StatusStarting,
	}
}

// Duration reports how long the step ran.
func (se *StepExecution) Duration() time.Duration {
	if se.EndTime.IsZero() {
		return time.Since(se.StartTime)
	}
	return se.EndTime.Sub(se.StartTime)
}
