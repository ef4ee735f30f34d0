// Package ics 把志愿者已接受的工作导出为 iCalendar，周期性工作用 RRULE 表示。
package ics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/teambition/rrule-go"
)

const ProductID = "-//sysu-ecnc-dev//volunteer-calendar//ZH"

var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

type Exporter struct {
	loc *time.Location
	now func() time.Time
}

func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{
		loc: loc,
		now: time.Now,
	}
}

// Export 为每个工作实例生成事件：单次工作每个小时块一个事件，
// 周期性工作每个小时一个带 RRULE 的事件，RRULE 覆盖该小时所有的星期
func (e *Exporter) Export(name string, accepted []*domain.AcceptedWork) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(e.loc.String())

	stamp := e.now().UTC()

	for _, aw := range accepted {
		from, to := aw.Instance.StartDate.Time, aw.Instance.EndDate.Time

		switch aw.Work.Type {
		case calendar.WorkTypeSession:
			for _, o := range calendar.Expand(aw.Work, from, to) {
				uid := fmt.Sprintf("instance-%d-%s-%02d@volunteer-calendar", aw.Instance.ID, calendar.FormatDate(o.Date), o.Hour)
				e.addEvent(cal, uid, aw.Work, e.at(o.Date, o.Hour), stamp, "")
			}
		case calendar.WorkTypeRecurring:
			for _, hour := range hoursOf(aw.Work) {
				rule, first, ok := e.weeklyRule(aw.Work, hour, from, to)
				if !ok {
					continue
				}
				uid := fmt.Sprintf("instance-%d-%02d@volunteer-calendar", aw.Instance.ID, hour)
				e.addEvent(cal, uid, aw.Work, first, stamp, rule)
			}
		default:
			return "", fmt.Errorf("未知的工作类型 %s", aw.Work.Type)
		}
	}

	return cal.Serialize(), nil
}

func (e *Exporter) addEvent(cal *ical.Calendar, uid string, work *domain.Work, start, stamp time.Time, rule string) {
	event := cal.AddEvent(uid)
	event.SetDtStampTime(stamp)
	event.SetStartAt(start)
	event.SetEndAt(start.Add(time.Hour))
	event.SetSummary(work.Name)
	description := work.Description
	if work.SupplierName != "" {
		description = strings.TrimSpace(description + "\n供应方：" + work.SupplierName)
	}
	if description != "" {
		event.SetDescription(description)
	}
	if rule != "" {
		event.AddRrule(rule)
	}
}

// weeklyRule 返回 hour 这个小时的 RRULE 以及第一次发生的时间，
// [from, to] 内一次都不发生时 ok 为 false。
// DTSTART 以 UTC 写出，客户端按 UTC 解释 BYDAY，所以星期要换算成 UTC 下的星期
func (e *Exporter) weeklyRule(work *domain.Work, hour int, from, to time.Time) (string, time.Time, bool) {
	seen := make(map[time.Weekday]bool)
	for _, b := range work.HourBlocks() {
		if b.Hour == hour && b.Weekday >= time.Sunday && b.Weekday <= time.Saturday {
			seen[b.Weekday] = true
		}
	}

	var first time.Time
	var weekdays []rrule.Weekday
	utcSeen := make(map[time.Weekday]bool)
	for d := calendar.Day(from); !d.After(calendar.Day(to)); d = d.AddDate(0, 0, 1) {
		if !seen[d.Weekday()] {
			continue
		}
		if first.IsZero() {
			first = d
		}
		wd := e.at(d, hour).UTC().Weekday()
		if !utcSeen[wd] {
			utcSeen[wd] = true
			weekdays = append(weekdays, rruleWeekdays[wd])
		}
		if len(utcSeen) == len(seen) {
			break
		}
	}
	if first.IsZero() {
		return "", time.Time{}, false
	}

	until := e.at(calendar.Day(to), hour)
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: weekdays,
		Until:     until.UTC(),
	}
	return opt.RRuleString(), e.at(first, hour), true
}

// at 把日期和小时组合成 e.loc 时区里的时间
func (e *Exporter) at(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, e.loc)
}

func hoursOf(work *domain.Work) []int {
	seen := make(map[int]bool)
	hours := make([]int, 0)
	for _, b := range work.HourBlocks() {
		if !seen[b.Hour] {
			seen[b.Hour] = true
			hours = append(hours, b.Hour)
		}
	}
	sort.Ints(hours)
	return hours
}
