package dataset_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comfortlab/comfortcast/internal/dataset"
	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/pkg/util/exception"
)

func TestCSVRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	matrix := domain.FeatureMatrix{
		{
			StationID:         "108",
			ObservedAt:        at,
			Temperature:       domain.Float(17.2),
			PM10:              domain.Float(22),
			Hour:              14,
			DayOfWeek:         1,
			Month:             3,
			Season:            domain.SeasonSpring,
			IsWeekday:         1,
			TempCategory:      domain.TempMild,
			TempComfort:       domain.Float(17.2),
			PM10Grade:         domain.PM10Good,
			OutdoorActivityOK: 1,
			Region:            domain.RegionCentral,
			IsMetroArea:       1,
			ComfortScore:      domain.Float(78.5),
		},
		{
			// Sparse row: nulls stay null through the round trip.
			StationID:  "112",
			ObservedAt: at,
			PM10Grade:  domain.PM10Unknown,
		},
	}

	data, err := dataset.MarshalCSV(matrix)
	assert.NoError(t, err)

	decoded, err := dataset.UnmarshalCSV(data)
	assert.NoError(t, err)
	if assert.Len(t, decoded, 2) {
		assert.Equal(t, "108", decoded[0].StationID)
		assert.Equal(t, at, decoded[0].ObservedAt)
		assert.Equal(t, 17.2, *decoded[0].Temperature)
		assert.Equal(t, domain.SeasonSpring, decoded[0].Season)
		assert.Equal(t, 78.5, *decoded[0].ComfortScore)
		assert.Equal(t, int32(1), decoded[0].IsMetroArea)

		assert.Nil(t, decoded[1].Temperature)
		assert.Nil(t, decoded[1].ComfortScore)
		assert.Equal(t, domain.PM10Unknown, decoded[1].PM10Grade)
	}
}

func TestUnmarshalCSV_Empty(t *testing.T) {
	decoded, err := dataset.UnmarshalCSV(nil)
	assert.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestUnmarshalCSV_MissingStationColumn(t *testing.T) {
	_, err := dataset.UnmarshalCSV([]byte("foo,bar\n1,2\n"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrSchemaMismatch))
}

func TestUnmarshalCSV_TolerantDecode(t *testing.T) {
	// Unknown columns are ignored; a bad timestamp drops the row, not the file.
	csv := strings.Join([]string{
		"station_id,observed_at,temperature,mystery_column",
		"108,2024-03-05T14:00:00Z,17.2,xyz",
		"112,not-a-time,5.0,xyz",
	}, "\n") + "\n"

	decoded, err := dataset.UnmarshalCSV([]byte(csv))
	assert.NoError(t, err)
	if assert.Len(t, decoded, 1) {
		assert.Equal(t, "108", decoded[0].StationID)
		assert.Equal(t, 17.2, *decoded[0].Temperature)
	}
}
