package app

import (
	"context"
	"io/fs"

	"go.uber.org/fx"

	"github.com/comfortlab/comfortcast/internal/config"
	"github.com/comfortlab/comfortcast/internal/job/metrics"
	"github.com/comfortlab/comfortcast/pkg/util/exception"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// RunApplication loads configuration, builds the fx container, runs the
// named job, and shuts down when it finishes or the context is cancelled.
// It returns a non-nil error when the job ends in failure.
func RunApplication(appCtx context.Context, envFilePath, jobName string, embeddedConfig config.EmbeddedConfig, migrationsFS fs.FS) error {
	cfg, err := config.Load(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Infof("Log level set to: %s", cfg.Comfortcast.System.Logging.Level)

	var runErr error
	fxApp := fx.New(
		fx.Supply(
			cfg,
			fx.Annotate(migrationsFS, fx.As(new(fs.FS))),
		),
		Module,
		fx.Invoke(func(lc fx.Lifecycle, shutdowner fx.Shutdowner, jobs Jobs, recorder metrics.Recorder) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					if cfg.Comfortcast.Metrics.Enabled {
						go func() {
							if err := recorder.Expose(appCtx, cfg.Comfortcast.Metrics.Addr); err != nil {
								logger.Errorf("Metrics endpoint stopped: %v", err)
							}
						}()
					}

					go func() {
						defer func() {
							if r := recover(); r != nil {
								logger.Errorf("Panic recovered in job execution: %v", r)
							}
							if err := shutdowner.Shutdown(); err != nil {
								logger.Errorf("Failed to shutdown application: %v", err)
							}
						}()

						j, ok := jobs[jobName]
						if !ok {
							runErr = exception.NewPipelineError("app", "unknown job '"+jobName+"'", nil, false, false)
							logger.Errorf("Unknown job '%s'. Available jobs: %s, %s.", jobName, JobMasterRefresh, JobBatchInference)
							return
						}

						execution, err := j.Run(appCtx)
						if err != nil {
							runErr = err
							logger.Errorf("Job '%s' (Execution ID: %s) failed: %v", jobName, execution.ID, err)
							return
						}
						logger.Infof("Job '%s' (Execution ID: %s) completed in %v.", jobName, execution.ID, execution.Duration())
					}()
					return nil
				},
			})
		}),
	)

	fxApp.Run()
	if fxApp.Err() != nil {
		return fxApp.Err()
	}
	return runErr
}
