package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// PrometheusRecorder keeps job and step telemetry in a private registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	jobDurationSeconds  *prometheus.HistogramVec
	jobStatusCounter    *prometheus.CounterVec
	stepDurationSeconds *prometheus.HistogramVec
	stepStatusCounter   *prometheus.CounterVec
	stepReadCount       *prometheus.CounterVec
	stepWriteCount      *prometheus.CounterVec
	stepSkipCount       *prometheus.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_job_duration_seconds",
			Help:    "Duration of pipeline job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "status"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_job_status_total",
			Help: "Total pipeline job executions by status.",
		}, []string{"job_name", "status"}),
		stepDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_step_duration_seconds",
			Help:    "Duration of pipeline step executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "step_name", "status"}),
		stepStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_step_status_total",
			Help: "Total pipeline step executions by status.",
		}, []string{"job_name", "step_name", "status"}),
		stepReadCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_step_read_rows_total",
			Help: "Total rows read by step.",
		}, []string{"job_name", "step_name"}),
		stepWriteCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_step_written_rows_total",
			Help: "Total rows written by step.",
		}, []string{"job_name", "step_name"}),
		stepSkipCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_step_skipped_rows_total",
			Help: "Total rows skipped or dropped by step.",
		}, []string{"job_name", "step_name"}),
	}

	registry.MustRegister(
		r.jobDurationSeconds, r.jobStatusCounter,
		r.stepDurationSeconds, r.stepStatusCounter,
		r.stepReadCount, r.stepWriteCount, r.stepSkipCount,
	)
	return r
}

func (r *PrometheusRecorder) RecordJob(jobName, status string, duration time.Duration) {
	r.jobDurationSeconds.WithLabelValues(jobName, status).Observe(duration.Seconds())
	r.jobStatusCounter.WithLabelValues(jobName, status).Inc()
}

func (r *PrometheusRecorder) RecordStep(jobName, stepName, status string, duration time.Duration) {
	r.stepDurationSeconds.WithLabelValues(jobName, stepName, status).Observe(duration.Seconds())
	r.stepStatusCounter.WithLabelValues(jobName, stepName, status).Inc()
}

func (r *PrometheusRecorder) RecordRows(jobName, stepName string, read, written, skipped int) {
	r.stepReadCount.WithLabelValues(jobName, stepName).Add(float64(read))
	r.stepWriteCount.WithLabelValues(jobName, stepName).Add(float64(written))
	r.stepSkipCount.WithLabelValues(jobName, stepName).Add(float64(skipped))
}

// Expose serves /metrics on addr until the context is canceled.
func (r *PrometheusRecorder) Expose(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("metrics: serving /metrics on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
