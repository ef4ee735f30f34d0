package ics

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/teambition/rrule-go"
)

func date(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newExporter() *Exporter {
	e := NewExporter(time.UTC)
	e.now = func() time.Time { return time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func parse(t *testing.T, content string) *ical.Calendar {
	t.Helper()
	cal, err := ical.ParseCalendar(strings.NewReader(content))
	require.NoError(t, err)
	return cal
}

func TestExportSession(t *testing.T) {
	work := &domain.Work{
		ID:        1,
		Name:      "活动接待",
		Type:      calendar.WorkTypeSession,
		StartDate: date(t, "15-05-2024"),
		EndDate:   date(t, "15-05-2024"),
		Hours: []domain.WorkHourBlock{
			{HourBlock: "09:00:00", WeekDay: domain.WeekDayNone},
			{HourBlock: "10:00:00", WeekDay: domain.WeekDayNone},
		},
	}
	accepted := []*domain.AcceptedWork{{
		Instance: domain.WorkInstance{ID: 7, StartDate: work.StartDate, EndDate: work.EndDate},
		Work:     work,
	}}

	content, err := newExporter().Export("我的志愿工作", accepted)
	require.NoError(t, err)

	events := parse(t, content).Events()
	require.Len(t, events, 2)

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC), start)
	assert.Nil(t, events[0].GetProperty(ical.ComponentPropertyRrule))
	assert.Equal(t, "活动接待", events[0].GetProperty(ical.ComponentPropertySummary).Value)
}

func TestExportRecurringMatchesExpand(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	tests := []struct {
		name string
		loc  *time.Location
	}{
		{"UTC", time.UTC},
		// 东八区早上的时间在 UTC 下是前一天
		{"东八区", shanghai},
	}

	work := &domain.Work{
		ID:        2,
		Name:      "课业辅导",
		Type:      calendar.WorkTypeRecurring,
		StartDate: date(t, "01-05-2024"),
		EndDate:   date(t, "30-06-2024"),
		Hours: []domain.WorkHourBlock{
			{HourBlock: "07:00:00", WeekDay: 1},
			{HourBlock: "14:00:00", WeekDay: 1},
			{HourBlock: "14:00:00", WeekDay: 3},
			{HourBlock: "15:00:00", WeekDay: 3},
		},
	}
	instance := domain.WorkInstance{ID: 9, StartDate: date(t, "10-05-2024"), EndDate: date(t, "05-06-2024")}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExporter(tt.loc)
			e.now = func() time.Time { return time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC) }

			content, err := e.Export("我的志愿工作", []*domain.AcceptedWork{{Instance: instance, Work: work}})
			require.NoError(t, err)

			events := parse(t, content).Events()
			// 7 点、14 点和 15 点各一个事件
			require.Len(t, events, 3)

			var got []time.Time
			for _, event := range events {
				start, err := event.GetStartAt()
				require.NoError(t, err)

				prop := event.GetProperty(ical.ComponentPropertyRrule)
				require.NotNil(t, prop)

				rule, err := rrule.StrToRRule(prop.Value)
				require.NoError(t, err)
				rule.DTStart(start)

				for _, occurrence := range rule.All() {
					got = append(got, occurrence.UTC())
				}
			}

			var want []time.Time
			for _, o := range calendar.Expand(work, instance.StartDate.Time, instance.EndDate.Time) {
				want = append(want, time.Date(o.Date.Year(), o.Date.Month(), o.Date.Day(), o.Hour, 0, 0, 0, tt.loc).UTC())
			}

			assert.ElementsMatch(t, want, got)
			for _, occurrence := range got {
				wd := occurrence.In(tt.loc).Weekday()
				assert.True(t, wd == time.Monday || wd == time.Wednesday, "%s 落在 %s", occurrence.In(tt.loc), wd)
			}
		})
	}
}

func TestExportSkipsInstanceWithoutOccurrences(t *testing.T) {
	work := &domain.Work{
		Type:      calendar.WorkTypeRecurring,
		StartDate: date(t, "01-05-2024"),
		EndDate:   date(t, "31-05-2024"),
		Hours:     []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: 0}},
	}
	// 05-13 到 05-17 是周一到周五
	instance := domain.WorkInstance{ID: 1, StartDate: date(t, "13-05-2024"), EndDate: date(t, "17-05-2024")}

	content, err := newExporter().Export("我的志愿工作", []*domain.AcceptedWork{{Instance: instance, Work: work}})
	require.NoError(t, err)
	assert.Empty(t, parse(t, content).Events())
}
