package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/pkg/util/exception"
)

// Source field abbreviations mapped to canonical categories. Lookups are
// case-insensitive; already-canonical names resolve to themselves.
var fieldAbbreviations = map[string]domain.Category{
	"TA":   domain.CategoryTemperature,
	"WS":   domain.CategoryWindSpeed,
	"HM":   domain.CategoryHumidity,
	"PS":   domain.CategoryPressure,
	"RN":   domain.CategoryRainfall,
	"WD":   domain.CategoryWindDirection,
	"TD":   domain.CategoryDewPoint,
	"CA":   domain.CategoryCloudAmount,
	"VS":   domain.CategoryVisibility,
	"SS":   domain.CategorySunshine,
	"PM10": domain.CategoryPM10,
}

func init() {
	for _, c := range domain.Categories {
		fieldAbbreviations[strings.ToUpper(string(c))] = c
	}
}

// CanonicalField resolves a raw field name to its canonical category.
func CanonicalField(name string) (domain.Category, bool) {
	c, ok := fieldAbbreviations[strings.ToUpper(strings.TrimSpace(name))]
	return c, ok
}

// Sentinel values the source uses for missing readings.
func isSentinel(v float64) bool {
	return v == -9 || v == -99 || v == -999
}

// CoerceValue converts a raw field value to a nullable numeric. Sentinel
// values and anything that cannot be coerced become nil, never an error.
func CoerceValue(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || isSentinel(v) {
		return nil
	}
	return &v
}

// CoerceStationID normalizes a station identifier to its string form.
// Numeric-looking ids keep their digits; surrounding whitespace is dropped.
func CoerceStationID(raw string) string {
	s := strings.TrimSpace(raw)
	// Ids sometimes arrive as floats ("108.0") after passing through numeric
	// columns upstream. Strip the fractional part when it is exactly zero.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && f >= 0 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// Accepted timestamp layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102150405",
	"200601021504",
}

// ParseTimestamp parses a raw timestamp permissively. Layouts without an
// explicit offset are interpreted as UTC. All-digit inputs of length 10 or 13
// are treated as epoch seconds or milliseconds. The returned error wraps
// ErrMalformedRecord so callers can classify it without string matching.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", exception.ErrMalformedRecord)
	}
	if isAllDigits(s) {
		switch len(s) {
		case 10:
			sec, _ := strconv.ParseInt(s, 10, 64)
			return time.Unix(sec, 0).UTC(), nil
		case 13:
			ms, _ := strconv.ParseInt(s, 10, 64)
			return time.UnixMilli(ms).UTC(), nil
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", exception.ErrMalformedRecord, raw)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// RawObservation is one ingested reading before normalization. Field values
// are strings because the upstream formats are line- or CSV-oriented.
type RawObservation struct {
	StationID  string
	ObservedAt string
	Category   string
	Value      string
}

// NormalizeObservation coerces one raw reading into a typed Observation.
// Value-level problems degrade to a nil value; an unusable timestamp or an
// unknown category is a MalformedRecord error and the row should be dropped
// by the caller, never the whole batch.
func NormalizeObservation(raw RawObservation) (domain.Observation, error) {
	category, ok := CanonicalField(raw.Category)
	if !ok {
		return domain.Observation{}, fmt.Errorf("%w: unknown category %q", exception.ErrMalformedRecord, raw.Category)
	}
	observedAt, err := ParseTimestamp(raw.ObservedAt)
	if err != nil {
		return domain.Observation{}, err
	}
	return domain.Observation{
		StationID:  CoerceStationID(raw.StationID),
		ObservedAt: observedAt,
		Category:   category,
		Value:      CoerceValue(raw.Value),
	}, nil
}
