package step

import (
	"context"
	"time"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/internal/ingest"
	"github.com/comfortlab/comfortcast/internal/job"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// FetchStep pulls the latest ASOS and PM10 payloads and parses them into
// observations for the assembler.
type FetchStep struct {
	client *ingest.Client
	// window is how far back from now each run fetches.
	window time.Duration
	now    func() time.Time
}

var _ job.Step = (*FetchStep)(nil)

func NewFetchStep(client *ingest.Client, windowHours int) *FetchStep {
	if windowHours <= 0 {
		windowHours = 24
	}
	return &FetchStep{
		client: client,
		window: time.Duration(windowHours) * time.Hour,
		now:    time.Now,
	}
}

func (s *FetchStep) Name() string { return "fetchObservations" }

func (s *FetchStep) Execute(ctx context.Context, execution *job.JobExecution, step *job.StepExecution) error {
	to := s.now().UTC().Truncate(time.Hour)
	from := to.Add(-s.window)

	asosPayload, err := s.client.FetchASOS(ctx, from, to)
	if err != nil {
		return err
	}
	pm10Payload, err := s.client.FetchPM10(ctx, from, to)
	if err != nil {
		return err
	}

	asos := ingest.ParseASOS(asosPayload)
	pm10 := ingest.ParsePM10(pm10Payload)

	observations := make([]domain.Observation, 0, len(asos.Observations)+len(pm10.Observations))
	observations = append(observations, asos.Observations...)
	observations = append(observations, pm10.Observations...)

	step.ReadCount = len(observations)
	step.SkipCount = asos.Skipped + pm10.Skipped
	execution.Context.Put(KeyObservations, observations)

	logger.Infof("fetch: %d observation(s) for [%s, %s), %d line(s) skipped",
		len(observations), from.Format(time.RFC3339), to.Format(time.RFC3339), step.SkipCount)
	return nil
}
