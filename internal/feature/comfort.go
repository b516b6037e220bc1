package feature

import "github.com/comfortlab/comfortcast/internal/domain"

// ComfortCalculator computes the comfort_score regression target from a row
// whose time, temperature, and air-quality features are already populated.
type ComfortCalculator struct {
	nullTempScore float64
	nullPM10Score float64
}

func NewComfortCalculator(cfg Config) *ComfortCalculator {
	return &ComfortCalculator{
		nullTempScore: cfg.NullTempScore,
		nullPM10Score: cfg.NullPM10Score,
	}
}

// Score computes the comfort score of one row, clamped to [0, 100].
func (c *ComfortCalculator) Score(row *domain.FeatureRow) float64 {
	tempScore := c.nullTempScore
	if row.Temperature != nil {
		tempScore = pieceTempScore(*row.Temperature)
	}
	pm10Score := c.nullPM10Score
	if row.PM10 != nil {
		pm10Score = piecePM10Score(*row.PM10)
	}

	// Two-stage blend: temperature against a fixed 80-point base first, then
	// the blended value re-weighted 70/30 against air quality. This is not
	// equivalent to a single linear combination and must stay two stages.
	comfort := 80*0.5 + tempScore*0.5
	comfort = comfort*0.7 + pm10Score*0.3

	if row.IsRushHour == 1 {
		comfort -= 10
	}
	if row.IsWeekend == 1 {
		comfort += 5
	}
	if row.TempExtreme == 1 {
		comfort -= 20
	}

	if comfort < 0 {
		return 0
	}
	if comfort > 100 {
		return 100
	}
	return comfort
}

// Derive appends the comfort_score target to the row. Only training-mode
// assembly calls this; inference rows must never carry the target.
func (c *ComfortCalculator) Derive(row *domain.FeatureRow) {
	row.ComfortScore = domain.Float(c.Score(row))
}

// pieceTempScore maps temperature to its comfort sub-score. Bands are
// inclusive on both ends and checked narrowest first.
func pieceTempScore(t float64) float64 {
	switch {
	case t >= 15 && t <= 22:
		return 90
	case t >= 10 && t <= 25:
		return 70
	case t >= 5 && t <= 30:
		return 50
	case t >= 0 && t <= 35:
		return 20
	default:
		return 10
	}
}

// piecePM10Score maps PM10 to its comfort sub-score.
func piecePM10Score(pm10 float64) float64 {
	switch {
	case pm10 <= 15:
		return 90
	case pm10 <= 35:
		return 70
	case pm10 <= 75:
		return 50
	case pm10 <= 150:
		return 30
	default:
		return 10
	}
}
