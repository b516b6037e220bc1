package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// Prediction is one scored (station, timestamp) pair together with the raw
// readings it was scored from. The (prediction_datetime, station_id) pair is
// the natural key; re-scoring the same pair overwrites the previous result.
type Prediction struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	PredictionDatetime time.Time `gorm:"column:prediction_datetime;not null;uniqueIndex:uq_prediction,priority:1"`
	StationID          string    `gorm:"column:station_id;size:16;not null;uniqueIndex:uq_prediction,priority:2"`

	ComfortScore float64  `gorm:"column:comfort_score;not null"`
	Temperature  *float64 `gorm:"column:temperature"`
	Humidity     *float64 `gorm:"column:humidity"`
	Rainfall     *float64 `gorm:"column:rainfall"`
	PM10         *float64 `gorm:"column:pm10"`
	WindSpeed    *float64 `gorm:"column:wind_speed"`
	Pressure     *float64 `gorm:"column:pressure"`

	Region    string `gorm:"column:region;size:32"`
	ModelName string `gorm:"column:model_name;size:64"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Prediction) TableName() string { return "weather_predictions" }

// PredictionRepository stores scored predictions.
type PredictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Upsert writes the predictions, overwriting the scored columns on conflict
// of (prediction_datetime, station_id). The whole batch is one transaction;
// a failed batch leaves the table untouched.
func (r *PredictionRepository) Upsert(ctx context.Context, predictions []Prediction) error {
	if len(predictions) == 0 {
		logger.Debugf("repository: no predictions to upsert")
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "prediction_datetime"}, {Name: "station_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"comfort_score", "temperature", "humidity", "rainfall",
			"pm10", "wind_speed", "pressure", "region", "model_name", "updated_at",
		}),
	}).CreateInBatches(predictions, 500).Error
	if err != nil {
		return fmt.Errorf("upsert %d prediction(s): %w", len(predictions), err)
	}
	logger.Infof("repository: upserted %d prediction(s)", len(predictions))
	return nil
}

// LatestForStation returns the most recent prediction for a station.
func (r *PredictionRepository) LatestForStation(ctx context.Context, stationID string) (Prediction, error) {
	var p Prediction
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("prediction_datetime DESC").
		First(&p).Error
	if err != nil {
		return Prediction{}, fmt.Errorf("load latest prediction for station %s: %w", stationID, err)
	}
	return p, nil
}

// CountSince reports the number of predictions at or after the given time.
func (r *PredictionRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Prediction{}).
		Where("prediction_datetime >= ?", since).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count predictions since %s: %w", since.Format(time.RFC3339), err)
	}
	return n, nil
}
