package feature

import "github.com/comfortlab/comfortcast/internal/domain"

// AirQualityDeriver adds the PM10 grade and advisory flags.
type AirQualityDeriver struct {
	maskAbove   float64
	outdoorUpTo float64
}

func NewAirQualityDeriver(cfg Config) *AirQualityDeriver {
	return &AirQualityDeriver{
		maskAbove:   cfg.MaskThreshold,
		outdoorUpTo: cfg.OutdoorThreshold,
	}
}

// Derive populates the air-quality features of a single row in place.
// A null PM10 yields grade "unknown" and zeroed flags.
func (d *AirQualityDeriver) Derive(row *domain.FeatureRow) {
	if row.PM10 == nil {
		row.PM10Grade = domain.PM10Unknown
		return
	}
	pm10 := *row.PM10

	row.PM10Grade = pm10Grade(pm10)
	if pm10 > d.maskAbove {
		row.MaskNeeded = 1
	}
	if pm10 <= d.outdoorUpTo {
		row.OutdoorActivityOK = 1
	}
}

// pm10Grade buckets a PM10 concentration (µg/m³) on the government-standard
// thresholds. Boundaries are inclusive on the lower grade: exactly 30 is good.
func pm10Grade(pm10 float64) string {
	switch {
	case pm10 <= 30:
		return domain.PM10Good
	case pm10 <= 80:
		return domain.PM10Moderate
	case pm10 <= 150:
		return domain.PM10Bad
	default:
		return domain.PM10VeryBad
	}
}
