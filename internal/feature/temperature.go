package feature

import (
	"math"

	"github.com/comfortlab/comfortcast/internal/domain"
)

// TemperatureDeriver adds temperature bucket, comfort, and need flags.
type TemperatureDeriver struct {
	heatingBelow float64
	coolingAbove float64
}

func NewTemperatureDeriver(cfg Config) *TemperatureDeriver {
	return &TemperatureDeriver{
		heatingBelow: cfg.HeatingThresholdC,
		coolingAbove: cfg.CoolingThresholdC,
	}
}

// Derive populates the temperature features of a single row in place.
// A null temperature yields an empty category, a nil temp_comfort, and zeroed
// flags; it is never an error.
func (d *TemperatureDeriver) Derive(row *domain.FeatureRow) {
	if row.Temperature == nil {
		return
	}
	t := *row.Temperature

	row.TempCategory = tempCategory(t)
	// Peaks at 20 and is intentionally unbounded below; the bounded comfort
	// value lives in comfort_score, not here.
	row.TempComfort = domain.Float(20 - math.Abs(t-20))
	if t < 0 || t > 30 {
		row.TempExtreme = 1
	}
	if t < d.heatingBelow {
		row.HeatingNeeded = 1
	}
	// The cooling threshold (25) is deliberately lower than the extreme-heat
	// boundary (30); the asymmetry comes from the source data pipeline.
	if t > d.coolingAbove {
		row.CoolingNeeded = 1
	}
}

// tempCategory buckets a temperature. Boundary values belong to the upper
// bucket: exactly 0 is cold, exactly 30 is hot.
func tempCategory(t float64) string {
	switch {
	case t < 0:
		return domain.TempVeryCold
	case t < 10:
		return domain.TempCold
	case t < 20:
		return domain.TempMild
	case t < 30:
		return domain.TempWarm
	default:
		return domain.TempHot
	}
}
