// Package app wires the pipeline's components together with uber-fx.
// It resolves the configured object store, opens the prediction database,
// and assembles the named jobs the runner can launch.
package app

import (
	"context"
	"fmt"
	"io/fs"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/comfortlab/comfortcast/internal/config"
	"github.com/comfortlab/comfortcast/internal/dataset"
	"github.com/comfortlab/comfortcast/internal/feature"
	"github.com/comfortlab/comfortcast/internal/ingest"
	"github.com/comfortlab/comfortcast/internal/job"
	"github.com/comfortlab/comfortcast/internal/job/metrics"
	"github.com/comfortlab/comfortcast/internal/repository"
	"github.com/comfortlab/comfortcast/internal/step"
	"github.com/comfortlab/comfortcast/internal/storage"
	"github.com/comfortlab/comfortcast/internal/storage/gcs"
	"github.com/comfortlab/comfortcast/internal/storage/local"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// JobMasterRefresh rebuilds the rolling master dataset and exports a
// parquet snapshot of it.
const JobMasterRefresh = "masterRefresh"

// JobBatchInference scores fresh observations and upserts the
// predictions into the database.
const JobBatchInference = "batchInference"

// storeFactories maps a storage definition type to its adapter constructor.
var storeFactories = map[string]func(context.Context, storage.Config) (storage.ObjectStore, error){
	"local": func(_ context.Context, cfg storage.Config) (storage.ObjectStore, error) {
		return local.New(cfg)
	},
	"gcs": gcs.New,
}

// NewObjectStore resolves the dataset's storage definition and opens the
// matching adapter. The store is closed on application shutdown.
func NewObjectStore(lc fx.Lifecycle, cfg *config.Config) (storage.ObjectStore, error) {
	ref := cfg.Comfortcast.Dataset.StorageRef
	storeCfg, err := cfg.Comfortcast.StorageConfig(ref)
	if err != nil {
		return nil, err
	}

	factory, ok := storeFactories[storeCfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported storage type '%s' for definition '%s'", storeCfg.Type, ref)
	}

	store, err := factory(context.Background(), storeCfg)
	if err != nil {
		return nil, err
	}
	logger.Infof("Object store '%s' initialized (type: %s).", ref, storeCfg.Type)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

// NewDatabase opens the prediction database and runs its migrations.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, migrationsFS fs.FS) (*gorm.DB, error) {
	dbCfg := cfg.Comfortcast.Database
	db, err := repository.Open(dbCfg)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db, dbCfg.Driver, migrationsFS, "resources/migrations"); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return repository.Close(db)
		},
	})
	return db, nil
}

// NewRecorder selects the metrics backend from configuration.
func NewRecorder(cfg *config.Config) metrics.Recorder {
	if cfg.Comfortcast.Metrics.Enabled {
		return metrics.NewPrometheusRecorder()
	}
	return metrics.NewNoopRecorder()
}

// NewAppTracer builds the OTLP tracer, a no-op when tracing is disabled.
func NewAppTracer(lc fx.Lifecycle, cfg *config.Config) (*metrics.Tracer, error) {
	tracer, err := metrics.NewTracer(context.Background(), cfg.Comfortcast.Tracing)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
	return tracer, nil
}

// Jobs are the named pipelines the runner can launch.
type Jobs map[string]*job.Job

// JobsParams collects everything the job definitions need.
type JobsParams struct {
	fx.In

	Cfg       *config.Config
	Client    *ingest.Client
	Assembler *feature.Assembler
	Merger    *dataset.Merger
	Store     storage.ObjectStore
	Repo      *repository.PredictionRepository
	Predictor step.Predictor
	Recorder  metrics.Recorder
	Tracer    *metrics.Tracer
}

// NewJobs assembles the two pipelines and attaches the shared listeners.
func NewJobs(p JobsParams) Jobs {
	ds := p.Cfg.Comfortcast.Dataset

	masterRefresh := job.New(JobMasterRefresh,
		step.NewFetchStep(p.Client, ds.FetchWindowHours),
		step.NewAssembleStep(p.Assembler, feature.ModeTraining),
		step.NewMergeStep(p.Store, p.Merger, ds.Key),
		step.NewExportStep(p.Store, ds.SnapshotDir, ds.Compression),
	)

	batchInference := job.New(JobBatchInference,
		step.NewFetchStep(p.Client, ds.FetchWindowHours),
		step.NewAssembleStep(p.Assembler, feature.ModeInference),
		step.NewPredictStep(feature.DefaultInferenceSchema(), p.Predictor, p.Repo),
	)

	jobs := Jobs{
		JobMasterRefresh:  masterRefresh,
		JobBatchInference: batchInference,
	}
	for _, j := range jobs {
		j.AddListener(job.NewLoggingListener())
		j.AddListener(metrics.NewRecorderListener(p.Recorder))
		j.AddListener(metrics.NewTracingListener(p.Tracer))
	}
	return jobs
}

// Module provides the application's component graph.
var Module = fx.Options(
	fx.Provide(
		NewObjectStore,
		NewDatabase,
		NewRecorder,
		NewAppTracer,
		repository.NewPredictionRepository,
		func(cfg *config.Config) *ingest.Client {
			return ingest.NewClient(cfg.Comfortcast.Ingest)
		},
		func(cfg *config.Config) *feature.Assembler {
			return feature.NewAssembler(cfg.Comfortcast.Feature)
		},
		func(cfg *config.Config) *dataset.Merger {
			return dataset.NewMerger(cfg.Comfortcast.Dataset.RetentionDays)
		},
		fx.Annotate(
			func(cfg *config.Config) *step.HeuristicPredictor {
				return step.NewHeuristicPredictor(cfg.Comfortcast.Feature)
			},
			fx.As(new(step.Predictor)),
		),
		NewJobs,
	),
)
