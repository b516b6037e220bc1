// Package ingest fetches and parses raw KMA observation payloads into typed
// observations for the feature pipeline.
package ingest

import (
	"strings"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/internal/feature"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// ParseResult carries the parsed observations plus the count of lines or
// fields that had to be skipped. Skipping is per-line; a payload never fails
// as a whole.
type ParseResult struct {
	Observations []domain.Observation
	Skipped      int
}

// asosDefaultColumns is assumed when the payload carries no column header:
// observation time, station id, temperature.
var asosDefaultColumns = []string{"TM", "STN", "TA"}

// ParseASOS parses the line-oriented surface-observation payload. Lines
// starting with '#' are comments; the last comment line naming at least three
// columns is taken as the column header (e.g. "# TM STN TA HM PS"). Data
// lines are whitespace-separated in header order. Columns with unknown
// abbreviations are ignored; sentinel and uncoercible values become null
// observations rather than dropped lines.
func ParseASOS(payload string) ParseResult {
	columns := asosDefaultColumns
	result := ParseResult{}

	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if header := parseHeader(line); len(header) >= 3 {
				columns = header
			}
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			result.Skipped++
			continue
		}
		tmIdx, stnIdx := columnIndex(columns, "TM"), columnIndex(columns, "STN")
		if tmIdx < 0 || stnIdx < 0 || tmIdx >= len(parts) || stnIdx >= len(parts) {
			result.Skipped++
			continue
		}
		observedAt, err := feature.ParseTimestamp(parts[tmIdx])
		if err != nil {
			result.Skipped++
			continue
		}
		stationID := feature.CoerceStationID(parts[stnIdx])
		for i, column := range columns {
			if i == tmIdx || i == stnIdx || i >= len(parts) {
				continue
			}
			category, known := feature.CanonicalField(column)
			if !known {
				continue
			}
			result.Observations = append(result.Observations, domain.Observation{
				StationID:  stationID,
				ObservedAt: observedAt,
				Category:   category,
				Value:      feature.CoerceValue(parts[i]),
			})
		}
	}
	if result.Skipped > 0 {
		logger.Warnf("ingest: skipped %d unparseable asos line(s)/field(s)", result.Skipped)
	}
	return result
}

// ParsePM10 parses the comma-separated dust payload: time, station id, PM10
// value per line, '#' comments skipped.
func ParsePM10(payload string) ParseResult {
	result := ParseResult{}
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			result.Skipped++
			continue
		}
		obs, err := feature.NormalizeObservation(feature.RawObservation{
			StationID:  parts[1],
			ObservedAt: parts[0],
			Category:   string(domain.CategoryPM10),
			Value:      parts[2],
		})
		if err != nil {
			result.Skipped++
			continue
		}
		result.Observations = append(result.Observations, obs)
	}
	if result.Skipped > 0 {
		logger.Warnf("ingest: skipped %d unparseable pm10 line(s)", result.Skipped)
	}
	return result
}

func parseHeader(line string) []string {
	trimmed := strings.TrimSpace(strings.TrimLeft(line, "#"))
	if trimmed == "" {
		return nil
	}
	return strings.Fields(trimmed)
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}
