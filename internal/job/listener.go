package job

import (
	"context"

	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// LoggingListener logs job and step transitions at INFO level.
type LoggingListener struct{}

var _ Listener = (*LoggingListener)(nil)

func NewLoggingListener() *LoggingListener { return &LoggingListener{} }

func (l *LoggingListener) BeforeJob(ctx context.Context, execution *JobExecution) {
	logger.Infof("job %s starting (execution %s)", execution.JobName, execution.ID)
}

func (l *LoggingListener) AfterJob(ctx context.Context, execution *JobExecution) {
	logger.Infof("job %s finished with status %s in %s",
		execution.JobName, execution.Status, execution.Duration().Round(0))
}

func (l *LoggingListener) BeforeStep(ctx context.Context, execution *JobExecution, step *StepExecution) {
	logger.Infof("job %s: step %s starting", execution.JobName, step.StepName)
}

func (l *LoggingListener) AfterStep(ctx context.Context, execution *JobExecution, step *StepExecution) {
	logger.Infof("job %s: step %s finished with status %s in %s (read=%d written=%d skipped=%d)",
		execution.JobName, step.StepName, step.Status, step.Duration().Round(0),
		step.ReadCount, step.WriteCount, step.SkipCount)
}
