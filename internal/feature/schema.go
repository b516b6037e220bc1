package feature

import (
	"sort"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// Schema is the fixed, ordered column set a trained model's scaler expects.
// Categorical features appear as one-hot indicator columns. The target
// column is never part of an inference schema.
type Schema struct {
	Columns []string
}

// DefaultInferenceSchema returns the canonical training-time column order.
func DefaultInferenceSchema() Schema {
	columns := []string{
		"temperature", "wind_speed", "humidity", "pressure", "rainfall",
		"wind_direction", "dew_point", "cloud_amount", "visibility", "sunshine",
		"pm10",
		"hour", "day_of_week", "month",
		"is_morning_rush", "is_evening_rush", "is_rush_hour",
		"is_weekday", "is_weekend",
		"temp_comfort", "temp_extreme", "heating_needed", "cooling_needed",
		"mask_needed", "outdoor_activity_ok",
		"is_metro_area", "is_coastal",
	}
	for _, season := range []string{domain.SeasonSpring, domain.SeasonSummer, domain.SeasonAutumn, domain.SeasonWinter} {
		columns = append(columns, "season_"+season)
	}
	for _, category := range []string{domain.TempVeryCold, domain.TempCold, domain.TempMild, domain.TempWarm, domain.TempHot} {
		columns = append(columns, "temp_category_"+category)
	}
	for _, grade := range []string{domain.PM10Good, domain.PM10Moderate, domain.PM10Bad, domain.PM10VeryBad, domain.PM10Unknown} {
		columns = append(columns, "pm10_grade_"+grade)
	}
	for _, region := range []string{domain.RegionCentral, domain.RegionSouthern, domain.RegionEastern, domain.RegionWestern, domain.RegionUnknown} {
		columns = append(columns, "region_"+region)
	}
	return Schema{Columns: columns}
}

// Align converts a feature matrix into numeric vectors in schema order.
// Columns the schema expects but the rows cannot provide default to 0 and are
// reported with a warning, since they signal upstream drift. Columns the rows
// carry but the schema does not are dropped.
func (s Schema) Align(matrix domain.FeatureMatrix) [][]float64 {
	missing := map[string]struct{}{}
	vectors := make([][]float64, 0, len(matrix))
	for _, row := range matrix {
		values := rowValues(row)
		vector := make([]float64, len(s.Columns))
		for i, column := range s.Columns {
			v, ok := values[column]
			if !ok {
				missing[column] = struct{}{}
				continue
			}
			vector[i] = v
		}
		vectors = append(vectors, vector)
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		logger.Warnf("schema: %d expected column(s) missing, defaulted to 0: %v", len(names), names)
	}
	return vectors
}

// rowValues flattens one row into named numeric values, with categoricals
// expanded to one-hot indicators. Null numerics resolve to 0.
func rowValues(row domain.FeatureRow) map[string]float64 {
	values := map[string]float64{
		"temperature":    deref(row.Temperature),
		"wind_speed":     deref(row.WindSpeed),
		"humidity":       deref(row.Humidity),
		"pressure":       deref(row.Pressure),
		"rainfall":       deref(row.Rainfall),
		"wind_direction": deref(row.WindDirection),
		"dew_point":      deref(row.DewPoint),
		"cloud_amount":   deref(row.CloudAmount),
		"visibility":     deref(row.Visibility),
		"sunshine":       deref(row.Sunshine),
		"pm10":           deref(row.PM10),

		"hour":        float64(row.Hour),
		"day_of_week": float64(row.DayOfWeek),
		"month":       float64(row.Month),

		"is_morning_rush": float64(row.IsMorningRush),
		"is_evening_rush": float64(row.IsEveningRush),
		"is_rush_hour":    float64(row.IsRushHour),
		"is_weekday":      float64(row.IsWeekday),
		"is_weekend":      float64(row.IsWeekend),

		"temp_comfort":   deref(row.TempComfort),
		"temp_extreme":   float64(row.TempExtreme),
		"heating_needed": float64(row.HeatingNeeded),
		"cooling_needed": float64(row.CoolingNeeded),

		"mask_needed":         float64(row.MaskNeeded),
		"outdoor_activity_ok": float64(row.OutdoorActivityOK),

		"is_metro_area": float64(row.IsMetroArea),
		"is_coastal":    float64(row.IsCoastal),
	}
	if row.Season != "" {
		values["season_"+row.Season] = 1
	}
	if row.TempCategory != "" {
		values["temp_category_"+row.TempCategory] = 1
	}
	if row.PM10Grade != "" {
		values["pm10_grade_"+row.PM10Grade] = 1
	}
	if row.Region != "" {
		values["region_"+row.Region] = 1
	}
	// Indicator columns for categories this row does not take are still known
	// columns; make them explicit zeros so they are never reported missing.
	for _, column := range knownColumns {
		if _, ok := values[column]; !ok {
			values[column] = 0
		}
	}
	return values
}

var knownColumns = DefaultInferenceSchema().Columns

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
