package seed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

const worksCSV = "\ufeff供应方,姓名,邮箱,名称,描述,类型,开始日期,结束日期,所需人数,标签,小时块\n" +
	"library,图书馆,lib@example.com,图书整理,整理书架,RECURRING,06-05-2024,31-05-2024,3,室内、教育,1@09:00:00;3@09:00:00\n" +
	"park,公园,park@example.com,植树,,SESSION,12-05-2024,,10,户外,09:00:00;10:00:00\n" +
	"park,公园,park@example.com,坏数据,,SESSION,12-05-2024,,零,户外,09:00:00\n"

func TestParseWorksCSV(t *testing.T) {
	records, err := ParseWorksCSV(strings.NewReader(worksCSV))
	require.NoError(t, err)
	require.Len(t, records, 2)

	recurring := records[0]
	assert.Equal(t, "library", recurring.SupplierUsername)
	assert.Equal(t, "图书馆", recurring.SupplierName)
	assert.Equal(t, calendar.WorkTypeRecurring, recurring.Work.Type)
	assert.Equal(t, int32(3), recurring.Work.VolunteersNeeded)
	assert.Equal(t, []string{"室内", "教育"}, recurring.Work.Tags)
	assert.Equal(t, []domain.WorkHourBlock{
		{HourBlock: "09:00:00", WeekDay: 1},
		{HourBlock: "09:00:00", WeekDay: 3},
	}, recurring.Work.Hours)
	assert.Equal(t, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), recurring.Work.EndDate.Time)

	session := records[1]
	assert.Equal(t, calendar.WorkTypeSession, session.Work.Type)
	assert.True(t, session.Work.EndDate.IsZero())
	assert.Equal(t, []domain.WorkHourBlock{
		{HourBlock: "09:00:00", WeekDay: domain.WeekDayNone},
		{HourBlock: "10:00:00", WeekDay: domain.WeekDayNone},
	}, session.Work.Hours)
}

func TestParseWorksCSVMissingColumn(t *testing.T) {
	_, err := ParseWorksCSV(strings.NewReader("供应方,名称\nlibrary,图书整理\n"))
	assert.Error(t, err)
}

func TestPostulationRange(t *testing.T) {
	today := time.Date(2024, time.May, 10, 15, 0, 0, 0, time.UTC)

	session := &domain.Work{
		Type:      calendar.WorkTypeSession,
		StartDate: domain.NewDate(time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC)),
		EndDate:   domain.NewDate(time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC)),
	}
	start, end := postulationRange(session, today)
	assert.Equal(t, session.StartDate, start)
	assert.Equal(t, session.EndDate, end)

	recurring := &domain.Work{
		Type:      calendar.WorkTypeRecurring,
		StartDate: domain.NewDate(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:   domain.NewDate(time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)),
	}
	for i := 0; i < 20; i++ {
		start, end := postulationRange(recurring, today)
		assert.False(t, start.Before(calendar.Day(today)))
		assert.False(t, start.After(end.Time))
		assert.Equal(t, recurring.EndDate, end)
	}
}
