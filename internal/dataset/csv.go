package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/pkg/util/exception"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// csvColumns is the stable header of the persisted master dataset. The order
// never changes between merges; consumers diff snapshots byte-for-byte.
var csvColumns = []string{
	"station_id", "observed_at",
	"temperature", "wind_speed", "humidity", "pressure", "rainfall",
	"wind_direction", "dew_point", "cloud_amount", "visibility", "sunshine",
	"pm10",
	"hour", "day_of_week", "month", "season",
	"is_morning_rush", "is_evening_rush", "is_rush_hour",
	"is_weekday", "is_weekend",
	"temp_category", "temp_comfort", "temp_extreme",
	"heating_needed", "cooling_needed",
	"pm10_grade", "mask_needed", "outdoor_activity_ok",
	"region", "is_metro_area", "is_coastal",
	"comfort_score",
}

// EncodeCSV writes the matrix as CSV with the stable header. Null numerics
// encode as empty cells.
func EncodeCSV(w io.Writer, matrix domain.FeatureMatrix) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(csvColumns))
	for _, row := range matrix {
		record[0] = row.StationID
		record[1] = row.ObservedAt.UTC().Format(time.RFC3339)
		record[2] = cellFloat(row.Temperature)
		record[3] = cellFloat(row.WindSpeed)
		record[4] = cellFloat(row.Humidity)
		record[5] = cellFloat(row.Pressure)
		record[6] = cellFloat(row.Rainfall)
		record[7] = cellFloat(row.WindDirection)
		record[8] = cellFloat(row.DewPoint)
		record[9] = cellFloat(row.CloudAmount)
		record[10] = cellFloat(row.Visibility)
		record[11] = cellFloat(row.Sunshine)
		record[12] = cellFloat(row.PM10)
		record[13] = cellInt(row.Hour)
		record[14] = cellInt(row.DayOfWeek)
		record[15] = cellInt(row.Month)
		record[16] = row.Season
		record[17] = cellInt(row.IsMorningRush)
		record[18] = cellInt(row.IsEveningRush)
		record[19] = cellInt(row.IsRushHour)
		record[20] = cellInt(row.IsWeekday)
		record[21] = cellInt(row.IsWeekend)
		record[22] = row.TempCategory
		record[23] = cellFloat(row.TempComfort)
		record[24] = cellInt(row.TempExtreme)
		record[25] = cellInt(row.HeatingNeeded)
		record[26] = cellInt(row.CoolingNeeded)
		record[27] = row.PM10Grade
		record[28] = cellInt(row.MaskNeeded)
		record[29] = cellInt(row.OutdoorActivityOK)
		record[30] = row.Region
		record[31] = cellInt(row.IsMetroArea)
		record[32] = cellInt(row.IsCoastal)
		record[33] = cellFloat(row.ComfortScore)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCSV encodes the matrix into a byte slice.
func MarshalCSV(matrix domain.FeatureMatrix) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, matrix); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCSV reads a persisted matrix. Unknown columns are ignored; known
// columns the file lacks stay zero-valued. Rows whose timestamp cannot be
// parsed are dropped with a warning, matching the per-row recovery policy of
// the rest of the pipeline.
func DecodeCSV(r io.Reader) (domain.FeatureMatrix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	at := map[string]int{}
	for i, name := range header {
		at[name] = i
	}
	if _, ok := at["station_id"]; !ok {
		return nil, fmt.Errorf("%w: csv header lacks station_id", exception.ErrSchemaMismatch)
	}

	matrix := domain.FeatureMatrix{}
	dropped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		cell := func(name string) string {
			i, ok := at[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		observedAt, err := time.Parse(time.RFC3339, cell("observed_at"))
		if err != nil {
			dropped++
			continue
		}
		row := domain.FeatureRow{
			StationID:  cell("station_id"),
			ObservedAt: observedAt.UTC(),

			Temperature:   parseFloatCell(cell("temperature")),
			WindSpeed:     parseFloatCell(cell("wind_speed")),
			Humidity:      parseFloatCell(cell("humidity")),
			Pressure:      parseFloatCell(cell("pressure")),
			Rainfall:      parseFloatCell(cell("rainfall")),
			WindDirection: parseFloatCell(cell("wind_direction")),
			DewPoint:      parseFloatCell(cell("dew_point")),
			CloudAmount:   parseFloatCell(cell("cloud_amount")),
			Visibility:    parseFloatCell(cell("visibility")),
			Sunshine:      parseFloatCell(cell("sunshine")),
			PM10:          parseFloatCell(cell("pm10")),

			Hour:          parseIntCell(cell("hour")),
			DayOfWeek:     parseIntCell(cell("day_of_week")),
			Month:         parseIntCell(cell("month")),
			Season:        cell("season"),
			IsMorningRush: parseIntCell(cell("is_morning_rush")),
			IsEveningRush: parseIntCell(cell("is_evening_rush")),
			IsRushHour:    parseIntCell(cell("is_rush_hour")),
			IsWeekday:     parseIntCell(cell("is_weekday")),
			IsWeekend:     parseIntCell(cell("is_weekend")),

			TempCategory:  cell("temp_category"),
			TempComfort:   parseFloatCell(cell("temp_comfort")),
			TempExtreme:   parseIntCell(cell("temp_extreme")),
			HeatingNeeded: parseIntCell(cell("heating_needed")),
			CoolingNeeded: parseIntCell(cell("cooling_needed")),

			PM10Grade:         cell("pm10_grade"),
			MaskNeeded:        parseIntCell(cell("mask_needed")),
			OutdoorActivityOK: parseIntCell(cell("outdoor_activity_ok")),

			Region:      cell("region"),
			IsMetroArea: parseIntCell(cell("is_metro_area")),
			IsCoastal:   parseIntCell(cell("is_coastal")),

			ComfortScore: parseFloatCell(cell("comfort_score")),
		}
		matrix = append(matrix, row)
	}
	if dropped > 0 {
		logger.Warnf("dataset: dropped %d csv row(s) with unparseable timestamps", dropped)
	}
	return matrix, nil
}

// UnmarshalCSV decodes a matrix from a byte slice.
func UnmarshalCSV(data []byte) (domain.FeatureMatrix, error) {
	return DecodeCSV(bytes.NewReader(data))
}

func cellFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func cellInt(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

func parseFloatCell(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseIntCell(s string) int32 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}
