package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourRangeFromAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		want    HourRange
		wantErr bool
	}{
		{"default allowed hours", DefaultAllowedHours, DefaultHourRange, false},
		{"single hour", []string{"09:00:00"}, HourRange{StartHour: 9, EndHour: 10}, false},
		{"empty", nil, HourRange{}, true},
		{"malformed", []string{"9am"}, HourRange{}, true},
		{"reversed", []string{"17:00:00", "07:00:00"}, HourRange{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HourRangeFromAllowed(tt.allowed)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHourRange(t *testing.T) {
	tests := []struct {
		start, end int
		wantErr    bool
	}{
		{7, 18, false},
		{0, 24, false},
		{18, 7, true},
		{9, 9, true},
		{-1, 5, true},
		{20, 25, true},
	}

	for _, tt := range tests {
		_, err := NewHourRange(tt.start, tt.end)
		assert.Equal(t, tt.wantErr, err != nil, "[%d, %d)", tt.start, tt.end)
	}
}

func TestHourRangeIndex(t *testing.T) {
	r := DefaultHourRange

	idx, ok := r.Index(7)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = r.Index(17)
	assert.True(t, ok)
	assert.Equal(t, 10, idx)

	_, ok = r.Index(18)
	assert.False(t, ok)

	assert.Equal(t, 11, r.Len())
	assert.Len(t, r.Hours(), 11)
	assert.Equal(t, 0, HourRange{StartHour: 10, EndHour: 5}.Len())
}

func TestParseAndFormatHour(t *testing.T) {
	h, err := ParseHour("09:00:00")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, "09:00:00", FormatHour(h))

	_, err = ParseHour("25:00:00")
	assert.Error(t, err)
}

func TestDateHelpers(t *testing.T) {
	d, err := ParseDate("29-02-2024")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), d)
	assert.Equal(t, "29-02-2024", FormatDate(d))

	_, err = ParseDate("2024-02-29")
	assert.Error(t, err)

	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 31, DaysIn(2024, time.December))
	assert.Len(t, MonthDays(date(2024, time.April, 17)), 30)

	assert.Equal(t, date(2024, time.February, 29), AddMonths(date(2024, time.January, 31), 1))
	assert.Equal(t, date(2023, time.December, 15), AddMonths(date(2024, time.January, 15), -1))

	loc := time.FixedZone("UTC-3", -3*60*60)
	assert.True(t, Within(time.Date(2024, time.May, 31, 22, 0, 0, 0, loc), date(2024, time.May, 1), date(2024, time.May, 31)))
}
