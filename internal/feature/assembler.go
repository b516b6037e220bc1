package feature

import (
	"time"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// Mode selects whether the assembled matrix carries the comfort_score target.
type Mode int

const (
	// ModeInference builds rows without the target column. Inference rows
	// must never contain comfort_score.
	ModeInference Mode = iota
	// ModeTraining appends comfort_score as the last derivation step.
	ModeTraining
)

// Result is an assembled matrix plus counts of what was dropped on the way.
type Result struct {
	Matrix domain.FeatureMatrix
	// DroppedRows counts input rows discarded for unusable timestamps or
	// malformed records. Dropping is per-row and never aborts the batch.
	DroppedRows int
}

// Assembler outer-joins observation streams on (station_id, observed_at) and
// runs the deriver chain in fixed order: time, temperature, air quality,
// region, then (training only) the comfort score. The order matters: the
// comfort calculator reads is_rush_hour, is_weekend, and temp_extreme written
// by earlier derivers.
type Assembler struct {
	time    *TimeDeriver
	temp    *TemperatureDeriver
	air     *AirQualityDeriver
	region  *RegionDeriver
	comfort *ComfortCalculator
}

func NewAssembler(cfg Config) *Assembler {
	return &Assembler{
		time:    NewTimeDeriver(cfg),
		temp:    NewTemperatureDeriver(cfg),
		air:     NewAirQualityDeriver(cfg),
		region:  NewRegionDeriver(cfg),
		comfort: NewComfortCalculator(cfg),
	}
}

// Assemble joins the given observation streams into one feature matrix.
// Keys present in any stream produce a row; categories missing for a key
// stay null rather than dropping the row. Observations with a zero timestamp
// are dropped and counted.
func (a *Assembler) Assemble(mode Mode, streams ...[]domain.Observation) Result {
	type pending struct {
		stationID  string
		observedAt int64
		values     map[domain.Category]*float64
	}

	rows := map[domain.ObservationKey]*pending{}
	order := []domain.ObservationKey{}
	dropped := 0

	for _, stream := range streams {
		for _, obs := range stream {
			if obs.ObservedAt.IsZero() {
				dropped++
				continue
			}
			key := obs.Key()
			p, ok := rows[key]
			if !ok {
				p = &pending{
					stationID:  obs.StationID,
					observedAt: key.ObservedAtUnixNano,
					values:     map[domain.Category]*float64{},
				}
				rows[key] = p
				order = append(order, key)
			}
			// Within one batch the later reading wins, matching the
			// last-write-wins rule the dataset merger applies across batches.
			p.values[obs.Category] = obs.Value
		}
	}

	matrix := make(domain.FeatureMatrix, 0, len(order))
	for _, key := range order {
		p := rows[key]
		row := domain.FeatureRow{
			StationID:  p.stationID,
			ObservedAt: unixNanoUTC(p.observedAt),
		}
		assignValues(&row, p.values)
		a.derive(&row, mode)
		matrix = append(matrix, row)
	}
	matrix.SortStable()

	if dropped > 0 {
		logger.Warnf("assembler: dropped %d observation(s) with unusable timestamps", dropped)
	}
	return Result{Matrix: matrix, DroppedRows: dropped}
}

// AssembleRaw normalizes raw readings first, dropping (and counting) records
// that fail normalization, then assembles the survivors as a single stream.
func (a *Assembler) AssembleRaw(mode Mode, raws []RawObservation) Result {
	observations := make([]domain.Observation, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		obs, err := NormalizeObservation(raw)
		if err != nil {
			logger.Debugf("assembler: dropping record station=%q observedAt=%q: %v",
				raw.StationID, raw.ObservedAt, err)
			dropped++
			continue
		}
		observations = append(observations, obs)
	}
	result := a.Assemble(mode, observations)
	result.DroppedRows += dropped
	if dropped > 0 {
		logger.Warnf("assembler: dropped %d malformed raw record(s)", dropped)
	}
	return result
}

func (a *Assembler) derive(row *domain.FeatureRow, mode Mode) {
	a.time.Derive(row)
	a.temp.Derive(row)
	a.air.Derive(row)
	a.region.Derive(row)
	if mode == ModeTraining {
		a.comfort.Derive(row)
	}
}

func unixNanoUTC(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

func assignValues(row *domain.FeatureRow, values map[domain.Category]*float64) {
	for category, value := range values {
		switch category {
		case domain.CategoryTemperature:
			row.Temperature = value
		case domain.CategoryWindSpeed:
			row.WindSpeed = value
		case domain.CategoryHumidity:
			row.Humidity = value
		case domain.CategoryPressure:
			row.Pressure = value
		case domain.CategoryRainfall:
			row.Rainfall = value
		case domain.CategoryWindDirection:
			row.WindDirection = value
		case domain.CategoryDewPoint:
			row.DewPoint = value
		case domain.CategoryCloudAmount:
			row.CloudAmount = value
		case domain.CategoryVisibility:
			row.Visibility = value
		case domain.CategorySunshine:
			row.Sunshine = value
		case domain.CategoryPM10:
			row.PM10 = value
		}
	}
}
