// Package domain defines the core data model of the comfortcast pipeline:
// raw observations as produced by ingestion, and the fully derived feature
// rows consumed by training and inference.
package domain

import "time"

// Category identifies the sensor category of a single observation.
type Category string

// The fixed set of observation categories the pipeline understands.
const (
	CategoryTemperature   Category = "temperature"
	CategoryWindSpeed     Category = "wind_speed"
	CategoryHumidity      Category = "humidity"
	CategoryPressure      Category = "pressure"
	CategoryRainfall      Category = "rainfall"
	CategoryWindDirection Category = "wind_direction"
	CategoryDewPoint      Category = "dew_point"
	CategoryCloudAmount   Category = "cloud_amount"
	CategoryVisibility    Category = "visibility"
	CategorySunshine      Category = "sunshine"
	CategoryPM10          Category = "pm10"
)

// Categories lists all known categories in canonical column order.
var Categories = []Category{
	CategoryTemperature,
	CategoryWindSpeed,
	CategoryHumidity,
	CategoryPressure,
	CategoryRainfall,
	CategoryWindDirection,
	CategoryDewPoint,
	CategoryCloudAmount,
	CategoryVisibility,
	CategorySunshine,
	CategoryPM10,
}

// Observation is one timestamped, station-scoped sensor reading for a single
// category. Observations are transient: they exist between ingestion and
// feature assembly and are never persisted by this pipeline.
type Observation struct {
	StationID  string
	ObservedAt time.Time
	Category   Category
	// Value is nil when the source reported a sentinel or an uncoercible value.
	Value *float64
}

// ObservationKey identifies the logical record an observation belongs to.
// Observations from different categories sharing a key are one record and are
// joined into a single feature row.
type ObservationKey struct {
	StationID string
	// UnixNano of the observation time in UTC. Using the integer form keeps
	// the key comparable regardless of the wall clock's location or monotonic
	// reading.
	ObservedAtUnixNano int64
}

// Key returns the join key of the observation.
func (o Observation) Key() ObservationKey {
	return ObservationKey{
		StationID:          o.StationID,
		ObservedAtUnixNano: o.ObservedAt.UTC().UnixNano(),
	}
}

// Float returns a pointer to v. Convenience for building nullable values.
func Float(v float64) *float64 {
	return &v
}
