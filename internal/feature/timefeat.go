package feature

import (
	"time"

	"github.com/comfortlab/comfortcast/internal/domain"
)

// TimeDeriver adds calendar and time-of-day features from the observation
// timestamp. All flags are derived as integer 0/1 for model compatibility.
type TimeDeriver struct {
	morningRush map[int]struct{}
	eveningRush map[int]struct{}
}

// NewTimeDeriver builds a deriver from the configured rush-hour sets.
func NewTimeDeriver(cfg Config) *TimeDeriver {
	return &TimeDeriver{
		morningRush: intSet(cfg.MorningRushHours),
		eveningRush: intSet(cfg.EveningRushHours),
	}
}

// Derive populates the time features of a single row in place.
func (d *TimeDeriver) Derive(row *domain.FeatureRow) {
	t := row.ObservedAt.UTC()
	row.Hour = int32(t.Hour())
	row.DayOfWeek = mondayIndexed(t.Weekday())
	row.Month = int32(t.Month())
	row.Season = seasonOf(t.Month())

	if _, ok := d.morningRush[t.Hour()]; ok {
		row.IsMorningRush = 1
	}
	if _, ok := d.eveningRush[t.Hour()]; ok {
		row.IsEveningRush = 1
	}
	if row.IsMorningRush == 1 || row.IsEveningRush == 1 {
		row.IsRushHour = 1
	}
	if row.DayOfWeek < 5 {
		row.IsWeekday = 1
	} else {
		row.IsWeekend = 1
	}
}

// mondayIndexed converts Go's Sunday-first weekday to 0=Monday..6=Sunday.
func mondayIndexed(w time.Weekday) int32 {
	return int32((int(w) + 6) % 7)
}

func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return domain.SeasonWinter
	case time.March, time.April, time.May:
		return domain.SeasonSpring
	case time.June, time.July, time.August:
		return domain.SeasonSummer
	default:
		return domain.SeasonAutumn
	}
}
