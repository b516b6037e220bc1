package dataset

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/comfortlab/comfortcast/internal/domain"
)

// parquetRecord is the flat schema used for parquet snapshots. Timestamps are
// stored as TIMESTAMP_MILLIS; nullable numerics map to OPTIONAL columns.
type parquetRecord struct {
	StationID  string `parquet:"name=station_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ObservedAt int64  `parquet:"name=observed_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`

	Temperature   *float64 `parquet:"name=temperature, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindSpeed     *float64 `parquet:"name=wind_speed, type=DOUBLE, repetitiontype=OPTIONAL"`
	Humidity      *float64 `parquet:"name=humidity, type=DOUBLE, repetitiontype=OPTIONAL"`
	Pressure      *float64 `parquet:"name=pressure, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rainfall      *float64 `parquet:"name=rainfall, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindDirection *float64 `parquet:"name=wind_direction, type=DOUBLE, repetitiontype=OPTIONAL"`
	DewPoint      *float64 `parquet:"name=dew_point, type=DOUBLE, repetitiontype=OPTIONAL"`
	CloudAmount   *float64 `parquet:"name=cloud_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	Visibility    *float64 `parquet:"name=visibility, type=DOUBLE, repetitiontype=OPTIONAL"`
	Sunshine      *float64 `parquet:"name=sunshine, type=DOUBLE, repetitiontype=OPTIONAL"`
	PM10          *float64 `parquet:"name=pm10, type=DOUBLE, repetitiontype=OPTIONAL"`

	Hour          int32  `parquet:"name=hour, type=INT32"`
	DayOfWeek     int32  `parquet:"name=day_of_week, type=INT32"`
	Month         int32  `parquet:"name=month, type=INT32"`
	Season        string `parquet:"name=season, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	IsMorningRush int32  `parquet:"name=is_morning_rush, type=INT32"`
	IsEveningRush int32  `parquet:"name=is_evening_rush, type=INT32"`
	IsRushHour    int32  `parquet:"name=is_rush_hour, type=INT32"`
	IsWeekday     int32  `parquet:"name=is_weekday, type=INT32"`
	IsWeekend     int32  `parquet:"name=is_weekend, type=INT32"`

	TempCategory  string   `parquet:"name=temp_category, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TempComfort   *float64 `parquet:"name=temp_comfort, type=DOUBLE, repetitiontype=OPTIONAL"`
	TempExtreme   int32    `parquet:"name=temp_extreme, type=INT32"`
	HeatingNeeded int32    `parquet:"name=heating_needed, type=INT32"`
	CoolingNeeded int32    `parquet:"name=cooling_needed, type=INT32"`

	PM10Grade         string `parquet:"name=pm10_grade, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	MaskNeeded        int32  `parquet:"name=mask_needed, type=INT32"`
	OutdoorActivityOK int32  `parquet:"name=outdoor_activity_ok, type=INT32"`

	Region      string `parquet:"name=region, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	IsMetroArea int32  `parquet:"name=is_metro_area, type=INT32"`
	IsCoastal   int32  `parquet:"name=is_coastal, type=INT32"`

	ComfortScore *float64 `parquet:"name=comfort_score, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func toParquetRecord(row domain.FeatureRow) parquetRecord {
	return parquetRecord{
		StationID:  row.StationID,
		ObservedAt: row.ObservedAt.UTC().UnixMilli(),

		Temperature:   row.Temperature,
		WindSpeed:     row.WindSpeed,
		Humidity:      row.Humidity,
		Pressure:      row.Pressure,
		Rainfall:      row.Rainfall,
		WindDirection: row.WindDirection,
		DewPoint:      row.DewPoint,
		CloudAmount:   row.CloudAmount,
		Visibility:    row.Visibility,
		Sunshine:      row.Sunshine,
		PM10:          row.PM10,

		Hour:          row.Hour,
		DayOfWeek:     row.DayOfWeek,
		Month:         row.Month,
		Season:        row.Season,
		IsMorningRush: row.IsMorningRush,
		IsEveningRush: row.IsEveningRush,
		IsRushHour:    row.IsRushHour,
		IsWeekday:     row.IsWeekday,
		IsWeekend:     row.IsWeekend,

		TempCategory:  row.TempCategory,
		TempComfort:   row.TempComfort,
		TempExtreme:   row.TempExtreme,
		HeatingNeeded: row.HeatingNeeded,
		CoolingNeeded: row.CoolingNeeded,

		PM10Grade:         row.PM10Grade,
		MaskNeeded:        row.MaskNeeded,
		OutdoorActivityOK: row.OutdoorActivityOK,

		Region:      row.Region,
		IsMetroArea: row.IsMetroArea,
		IsCoastal:   row.IsCoastal,

		ComfortScore: row.ComfortScore,
	}
}

// MarshalParquet encodes the matrix as a single-row-group parquet file.
// compressionType is one of SNAPPY, GZIP, or NONE (empty means SNAPPY).
func MarshalParquet(matrix domain.FeatureMatrix, compressionType string) (data []byte, err error) {
	codec, err := compressionCodec(compressionType)
	if err != nil {
		return nil, err
	}

	rowGroupSize := int64(len(matrix))
	if rowGroupSize == 0 {
		rowGroupSize = 1
	}
	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(parquetRecord), rowGroupSize)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = codec

	// The parquet library panics on some schema mismatches instead of
	// returning an error; convert that to an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked: %v", r)
		}
	}()

	for _, row := range matrix {
		record := toParquetRecord(row)
		if werr := pw.Write(record); werr != nil {
			return nil, fmt.Errorf("write parquet row station=%s: %w", row.StationID, werr)
		}
	}
	if serr := pw.WriteStop(); serr != nil {
		return nil, fmt.Errorf("finalize parquet file: %w", serr)
	}
	return buf.Bytes(), nil
}

func compressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY", "":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}
