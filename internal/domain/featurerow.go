package domain

import (
	"sort"
	"time"
)

// Season values derived from the observation month.
const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonAutumn = "autumn"
	SeasonWinter = "winter"
)

// Temperature category buckets.
const (
	TempVeryCold = "very_cold"
	TempCold     = "cold"
	TempMild     = "mild"
	TempWarm     = "warm"
	TempHot      = "hot"
)

// PM10 grade buckets.
const (
	PM10Good     = "good"
	PM10Moderate = "moderate"
	PM10Bad      = "bad"
	PM10VeryBad  = "very_bad"
	PM10Unknown  = "unknown"
)

// Region group values derived from the station identifier.
const (
	RegionCentral  = "central"
	RegionSouthern = "southern"
	RegionEastern  = "eastern"
	RegionWestern  = "western"
	RegionUnknown  = "unknown"
)

// FeatureRow is one fully derived record for a (station, timestamp) pair.
// Raw weather fields are nullable; derived flags are integer 0/1 so the row
// serializes the same way for every downstream consumer. ComfortScore is set
// only on rows built for training and must stay nil on inference rows.
type FeatureRow struct {
	StationID  string
	ObservedAt time.Time

	Temperature   *float64
	WindSpeed     *float64
	Humidity      *float64
	Pressure      *float64
	Rainfall      *float64
	WindDirection *float64
	DewPoint      *float64
	CloudAmount   *float64
	Visibility    *float64
	Sunshine      *float64
	PM10          *float64

	Hour          int32
	DayOfWeek     int32 // 0=Monday .. 6=Sunday
	Month         int32
	Season        string
	IsMorningRush int32
	IsEveningRush int32
	IsRushHour    int32
	IsWeekday     int32
	IsWeekend     int32

	TempCategory  string // empty when temperature is null
	TempComfort   *float64
	TempExtreme   int32
	HeatingNeeded int32
	CoolingNeeded int32

	PM10Grade         string
	MaskNeeded        int32
	OutdoorActivityOK int32

	Region      string
	IsMetroArea int32
	IsCoastal   int32

	ComfortScore *float64
}

// Key returns the identity of the row for dedup and joins.
func (r FeatureRow) Key() ObservationKey {
	return ObservationKey{
		StationID:          r.StationID,
		ObservedAtUnixNano: r.ObservedAt.UTC().UnixNano(),
	}
}

// FeatureMatrix is an ordered collection of feature rows.
type FeatureMatrix []FeatureRow

// SortStable orders the matrix by observation time, then station id. The
// ordering is deterministic so that repeated assemblies of the same input
// produce byte-identical exports.
func (m FeatureMatrix) SortStable() {
	sort.SliceStable(m, func(i, j int) bool {
		ti, tj := m[i].ObservedAt.UTC(), m[j].ObservedAt.UTC()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return m[i].StationID < m[j].StationID
	})
}

// Stations returns the distinct station ids present in the matrix, sorted.
func (m FeatureMatrix) Stations() []string {
	seen := map[string]struct{}{}
	for _, r := range m {
		seen[r.StationID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
