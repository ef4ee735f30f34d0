package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

func mustDate(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		wantErr  bool
	}{
		{"volunteer_01", false},
		{"abc", false},
		{"ab", true},
		{"this_username_is_way_too_long_for_us", true},
		{"with space", true},
		{"中文名字", true},
		{"dash-name", true},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidateUsername(tt.username) != nil)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"abcdefg1", false},
		{"short1", true},
		{"onlyletters", true},
		{"12345678", true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidatePassword(tt.password) != nil)
		})
	}
}

func TestValidateWorkHours(t *testing.T) {
	tests := []struct {
		name    string
		work    domain.Work
		wantErr bool
	}{
		{"recurring ok", domain.Work{Type: calendar.WorkTypeRecurring, Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 1}, {HourBlock: "09:00:00", WeekDay: 2}}}, false},
		{"no hours", domain.Work{Type: calendar.WorkTypeRecurring}, true},
		{"hour not allowed", domain.Work{Type: calendar.WorkTypeRecurring, Hours: []domain.WorkHourBlock{{HourBlock: "20:00:00", WeekDay: 1}}}, true},
		{"recurring without weekday", domain.Work{Type: calendar.WorkTypeRecurring, Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: -1}}}, true},
		{"duplicated block", domain.Work{Type: calendar.WorkTypeRecurring, Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 1}, {HourBlock: "09:00:00", WeekDay: 1}}}, true},
		{"unknown type", domain.Work{Type: "DAILY", Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkHours(&tt.work, calendar.DefaultAllowedHours)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestValidateWorkHoursNormalizesSessionWeekDay(t *testing.T) {
	work := &domain.Work{
		Type:  calendar.WorkTypeSession,
		Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 3}, {HourBlock: "10:00:00", WeekDay: 4}},
	}

	require.NoError(t, ValidateWorkHours(work, calendar.DefaultAllowedHours))
	for _, h := range work.Hours {
		assert.Equal(t, domain.WeekDayNone, h.WeekDay)
	}
}

func TestValidateWorkDates(t *testing.T) {
	today := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		work    domain.Work
		wantErr bool
	}{
		{"recurring ok", domain.Work{Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "10-05-2024"), EndDate: mustDate(t, "10-06-2024")}, false},
		{"reversed", domain.Work{Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "20-05-2024"), EndDate: mustDate(t, "11-05-2024")}, true},
		{"starts in the past", domain.Work{Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "09-05-2024"), EndDate: mustDate(t, "10-06-2024")}, true},
		{"missing end", domain.Work{Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "10-05-2024")}, true},
		{"session without end", domain.Work{Type: calendar.WorkTypeSession, StartDate: mustDate(t, "12-05-2024")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkDates(&tt.work, today)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestValidateWorkDatesSessionEndsOnStart(t *testing.T) {
	work := &domain.Work{Type: calendar.WorkTypeSession, StartDate: mustDate(t, "12-05-2024"), EndDate: mustDate(t, "30-05-2024")}

	require.NoError(t, ValidateWorkDates(work, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, work.StartDate, work.EndDate)
}

func TestValidatePostulationDates(t *testing.T) {
	work := &domain.Work{StartDate: mustDate(t, "01-05-2024"), EndDate: mustDate(t, "31-05-2024")}
	today := time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{"inside", "10-05-2024", "20-05-2024", false},
		{"ends today", "01-05-2024", "10-05-2024", false},
		{"before work", "30-04-2024", "20-05-2024", true},
		{"after work", "10-05-2024", "01-06-2024", true},
		{"reversed", "20-05-2024", "12-05-2024", true},
		{"ends in the past", "01-05-2024", "09-05-2024", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePostulationDates(work, mustDate(t, tt.start), mustDate(t, tt.end), today)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}

	finished := &domain.Work{StartDate: mustDate(t, "01-04-2024"), EndDate: mustDate(t, "30-04-2024")}
	assert.Error(t, ValidatePostulationDates(finished, mustDate(t, "01-04-2024"), mustDate(t, "30-04-2024"), today))
}

func TestCheckPostulationConflict(t *testing.T) {
	// 周一 9 点，五月整月
	mondayNine := domain.ActivePostulation{
		PostulationID: 1,
		WorkID:        10,
		WorkType:      calendar.WorkTypeRecurring,
		StartDate:     mustDate(t, "01-05-2024"),
		EndDate:       mustDate(t, "31-05-2024"),
		Hours:         []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 1}},
	}
	// 2024-05-13 是周一
	sessionOnMonday := domain.ActivePostulation{
		PostulationID: 2,
		WorkID:        11,
		WorkType:      calendar.WorkTypeSession,
		StartDate:     mustDate(t, "13-05-2024"),
		EndDate:       mustDate(t, "13-05-2024"),
		Hours:         []domain.WorkHourBlock{{HourBlock: "14:00:00", WeekDay: domain.WeekDayNone}},
	}

	tests := []struct {
		name       string
		work       *domain.Work
		start, end string
		active     []domain.ActivePostulation
		skipID     int64
		wantErr    bool
	}{
		{
			name:    "same weekday and hour",
			work:    &domain.Work{ID: 20, Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "01-05-2024"), EndDate: mustDate(t, "30-06-2024"), Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 1}}},
			start:   "15-05-2024",
			end:     "15-06-2024",
			active:  []domain.ActivePostulation{mondayNine},
			wantErr: true,
		},
		{
			name:    "same block but no overlapping dates",
			work:    &domain.Work{ID: 20, Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "01-05-2024"), EndDate: mustDate(t, "30-06-2024"), Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 1}}},
			start:   "01-06-2024",
			end:     "30-06-2024",
			active:  []domain.ActivePostulation{mondayNine},
			wantErr: false,
		},
		{
			name:    "different hour",
			work:    &domain.Work{ID: 20, Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "01-05-2024"), EndDate: mustDate(t, "31-05-2024"), Hours: []domain.WorkHourBlock{{HourBlock: "10:00:00", WeekDay: 1}}},
			start:   "01-05-2024",
			end:     "31-05-2024",
			active:  []domain.ActivePostulation{mondayNine},
			wantErr: false,
		},
		{
			name:    "session against recurring",
			work:    &domain.Work{ID: 21, Type: calendar.WorkTypeSession, StartDate: mustDate(t, "20-05-2024"), EndDate: mustDate(t, "20-05-2024"), Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: domain.WeekDayNone}}},
			start:   "20-05-2024",
			end:     "20-05-2024",
			active:  []domain.ActivePostulation{mondayNine},
			wantErr: true,
		},
		{
			name:    "recurring against session",
			work:    &domain.Work{ID: 22, Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "01-05-2024"), EndDate: mustDate(t, "31-05-2024"), Hours: []domain.WorkHourBlock{{HourBlock: "14:00:00", WeekDay: 1}}},
			start:   "01-05-2024",
			end:     "31-05-2024",
			active:  []domain.ActivePostulation{sessionOnMonday},
			wantErr: true,
		},
		{
			name:    "editing skips itself",
			work:    &domain.Work{ID: 20, Type: calendar.WorkTypeRecurring, StartDate: mustDate(t, "01-05-2024"), EndDate: mustDate(t, "31-05-2024"), Hours: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 1}}},
			start:   "01-05-2024",
			end:     "31-05-2024",
			active:  []domain.ActivePostulation{mondayNine},
			skipID:  1,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPostulationConflict(tt.work, mustDate(t, tt.start), mustDate(t, tt.end), tt.active, tt.skipID)
			assert.Equal(t, tt.wantErr, err != nil, err)
		})
	}
}

func TestValidateReportRange(t *testing.T) {
	assert.NoError(t, ValidateReportRange(mustDate(t, "01-05-2024"), mustDate(t, "01-05-2024")))
	assert.Error(t, ValidateReportRange(mustDate(t, "02-05-2024"), mustDate(t, "01-05-2024")))
	assert.Error(t, ValidateReportRange(domain.Date{}, mustDate(t, "01-05-2024")))
}

func TestValidatePreferences(t *testing.T) {
	ok := &domain.UserPreferences{HourBlocks: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 0}, {HourBlock: "09:00:00", WeekDay: 6}}}
	assert.NoError(t, ValidatePreferences(ok, calendar.DefaultAllowedHours))

	bad := &domain.UserPreferences{HourBlocks: []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: -1}}}
	assert.Error(t, ValidatePreferences(bad, calendar.DefaultAllowedHours))
}
