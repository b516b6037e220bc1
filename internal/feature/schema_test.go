package feature_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/internal/feature"
)

func TestDefaultInferenceSchema_NoTargetColumn(t *testing.T) {
	schema := feature.DefaultInferenceSchema()
	assert.NotEmpty(t, schema.Columns)
	assert.NotContains(t, schema.Columns, "comfort_score")
	assert.NotContains(t, schema.Columns, "station_id")
	assert.NotContains(t, schema.Columns, "observed_at")

	// Stable order: raw numerics first, one-hot blocks last.
	assert.Equal(t, "temperature", schema.Columns[0])
	assert.Contains(t, schema.Columns, "season_winter")
	assert.Contains(t, schema.Columns, "temp_category_very_cold")
	assert.Contains(t, schema.Columns, "pm10_grade_very_bad")
	assert.Contains(t, schema.Columns, "region_unknown")
}

func TestSchemaAlign(t *testing.T) {
	assembler := feature.NewAssembler(feature.DefaultConfig())
	at := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	obs := []domain.Observation{
		{StationID: "108", ObservedAt: at, Category: domain.CategoryTemperature, Value: domain.Float(5)},
		{StationID: "108", ObservedAt: at, Category: domain.CategoryPM10, Value: domain.Float(20)},
	}
	result := assembler.Assemble(feature.ModeInference, obs)

	schema := feature.DefaultInferenceSchema()
	vectors := schema.Align(result.Matrix)

	if assert.Len(t, vectors, 1) {
		vector := vectors[0]
		assert.Len(t, vector, len(schema.Columns))

		index := map[string]int{}
		for i, c := range schema.Columns {
			index[c] = i
		}
		assert.Equal(t, 5.0, vector[index["temperature"]])
		assert.Equal(t, 20.0, vector[index["pm10"]])
		assert.Equal(t, 8.0, vector[index["hour"]])
		assert.Equal(t, 1.0, vector[index["is_morning_rush"]])
		assert.Equal(t, 1.0, vector[index["season_winter"]])
		assert.Equal(t, 0.0, vector[index["season_summer"]])
		assert.Equal(t, 1.0, vector[index["temp_category_cold"]])
		assert.Equal(t, 1.0, vector[index["pm10_grade_good"]])
		assert.Equal(t, 1.0, vector[index["region_central"]])
		assert.Equal(t, 1.0, vector[index["is_metro_area"]])
		// Null wind speed aligns to 0 rather than dropping the row.
		assert.Equal(t, 0.0, vector[index["wind_speed"]])
	}
}

func TestSchemaAlign_UnknownColumnDefaultsToZero(t *testing.T) {
	schema := feature.Schema{Columns: []string{"temperature", "not_a_feature"}}
	row := domain.FeatureRow{
		StationID:   "108",
		ObservedAt:  time.Now(),
		Temperature: domain.Float(12),
	}

	vectors := schema.Align(domain.FeatureMatrix{row})
	if assert.Len(t, vectors, 1) {
		assert.Equal(t, []float64{12, 0}, vectors[0])
	}
}
