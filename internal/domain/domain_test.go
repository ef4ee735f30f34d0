package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"start":"06-05-2024","end":null}`), &payload))
	assert.Equal(t, time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC), payload.Start.Time)
	assert.True(t, payload.End.IsZero())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"06-05-2024","end":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"start":"2024-05-06"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.May, 6, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "06-05-2024", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan("06-05-2024"))
}

func TestWorkAsCalendarItem(t *testing.T) {
	start, _ := ParseDate("01-05-2024")
	end, _ := ParseDate("31-05-2024")

	w := &Work{
		Type:      calendar.WorkTypeRecurring,
		StartDate: start,
		EndDate:   end,
		Hours: []WorkHourBlock{
			{HourBlock: "09:00:00", WeekDay: 1},
			{HourBlock: "bad", WeekDay: 1},
			{HourBlock: "14:00:00", WeekDay: 3},
		},
		PendingPostulationsCount: 2,
	}

	assert.Equal(t, []calendar.HourBlock{
		{Hour: 9, Weekday: time.Monday},
		{Hour: 14, Weekday: time.Wednesday},
	}, w.HourBlocks())
	assert.Equal(t, []int{9}, calendar.OccursOn(w, time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, w.PendingCount())

	vw := &VolunteerWork{Work: *w}
	assert.Equal(t, 0, vw.PendingCount())
	vw.IsPostulated = true
	assert.Equal(t, 1, vw.PendingCount())
}

func TestWorkSessionAsCalendarItem(t *testing.T) {
	day, _ := ParseDate("10-05-2024")
	s := &WorkSession{
		Status:         WorkSessionStatusPending,
		SessionDate:    day,
		SessionTime:    "10:00:00",
		SessionWeekDay: WeekDayNone,
	}

	flags := calendar.ReduceMonth([]*WorkSession{s}, day.Time, true)
	assert.Equal(t, []int{10}, flags.Days())
	assert.Equal(t, []int{10}, flags.PendingDays())

	s.Status = WorkSessionStatusAccepted
	flags = calendar.ReduceMonth([]*WorkSession{s}, day.Time, true)
	assert.Empty(t, flags.PendingDays())
}

func TestWorkIsFullAndFinished(t *testing.T) {
	end, _ := ParseDate("31-05-2024")
	w := &Work{EndDate: end, VolunteersNeeded: 2, AcceptedVolunteersCount: 1}

	assert.False(t, w.IsFull())
	w.AcceptedVolunteersCount = 2
	assert.True(t, w.IsFull())

	assert.False(t, w.IsFinished(time.Date(2024, time.May, 31, 23, 0, 0, 0, time.UTC)))
	assert.True(t, w.IsFinished(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
}
