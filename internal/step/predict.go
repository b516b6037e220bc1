package step

import (
	"context"
	"fmt"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/internal/feature"
	"github.com/comfortlab/comfortcast/internal/job"
	"github.com/comfortlab/comfortcast/internal/repository"
	"github.com/comfortlab/comfortcast/pkg/util/exception"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// Predictor scores schema-aligned feature vectors. The model behind it is
// opaque; rows carry the context a human needs when debugging a score.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, rows domain.FeatureMatrix, vectors [][]float64) ([]float64, error)
}

// HeuristicPredictor is the fallback model: it scores with the same comfort
// formula the training target uses, so the pipeline stays serviceable when no
// trained model is deployed.
type HeuristicPredictor struct {
	calculator *feature.ComfortCalculator
}

var _ Predictor = (*HeuristicPredictor)(nil)

func NewHeuristicPredictor(cfg feature.Config) *HeuristicPredictor {
	return &HeuristicPredictor{calculator: feature.NewComfortCalculator(cfg)}
}

func (p *HeuristicPredictor) Name() string { return "heuristic-v1" }

func (p *HeuristicPredictor) Predict(ctx context.Context, rows domain.FeatureMatrix, vectors [][]float64) ([]float64, error) {
	scores := make([]float64, len(rows))
	for i := range rows {
		scores[i] = p.calculator.Score(&rows[i])
	}
	return scores, nil
}

// PredictStep aligns the inference matrix to the model schema, scores it,
// and upserts the predictions.
type PredictStep struct {
	schema    feature.Schema
	predictor Predictor
	repo      *repository.PredictionRepository
}

var _ job.Step = (*PredictStep)(nil)

func NewPredictStep(schema feature.Schema, predictor Predictor, repo *repository.PredictionRepository) *PredictStep {
	return &PredictStep{schema: schema, predictor: predictor, repo: repo}
}

func (s *PredictStep) Name() string { return "predictAndUpsert" }

func (s *PredictStep) Execute(ctx context.Context, execution *job.JobExecution, step *job.StepExecution) error {
	raw, ok := execution.Context.Get(KeyFeatureMatrix)
	if !ok {
		return fmt.Errorf("predict: no feature matrix in execution context")
	}
	matrix, ok := raw.(domain.FeatureMatrix)
	if !ok {
		return fmt.Errorf("predict: unexpected feature matrix type %T", raw)
	}
	if len(matrix) == 0 {
		logger.Infof("predict: empty batch, nothing to score")
		execution.Context.Put(KeyPredictions, 0)
		return nil
	}

	for i := range matrix {
		if matrix[i].ComfortScore != nil {
			return exception.NewPipelineError("predict",
				fmt.Sprintf("inference row %s/%s carries the target column", matrix[i].StationID, matrix[i].ObservedAt),
				nil, false, false)
		}
	}

	vectors := s.schema.Align(matrix)
	scores, err := s.predictor.Predict(ctx, matrix, vectors)
	if err != nil {
		return fmt.Errorf("predict: scoring with %s: %w", s.predictor.Name(), err)
	}
	if len(scores) != len(matrix) {
		return fmt.Errorf("predict: %s returned %d score(s) for %d row(s)", s.predictor.Name(), len(scores), len(matrix))
	}

	predictions := make([]repository.Prediction, len(matrix))
	for i, row := range matrix {
		predictions[i] = repository.Prediction{
			PredictionDatetime: row.ObservedAt.UTC(),
			StationID:          row.StationID,
			ComfortScore:       scores[i],
			Temperature:        row.Temperature,
			Humidity:           row.Humidity,
			Rainfall:           row.Rainfall,
			PM10:               row.PM10,
			WindSpeed:          row.WindSpeed,
			Pressure:           row.Pressure,
			Region:             row.Region,
			ModelName:          s.predictor.Name(),
		}
	}
	if err := s.repo.Upsert(ctx, predictions); err != nil {
		return err
	}

	step.ReadCount = len(matrix)
	step.WriteCount = len(predictions)
	execution.Context.Put(KeyPredictions, len(predictions))
	return nil
}
