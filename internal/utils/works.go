package utils

import (
	"slices"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

// FilterVisibleWorks 去掉已经招满的工作，除非志愿者自己申请过
func FilterVisibleWorks(works []*domain.VolunteerWork) []*domain.VolunteerWork {
	visible := make([]*domain.VolunteerWork, 0, len(works))
	for _, w := range works {
		if w.IsFull() && !w.IsPostulated {
			continue
		}
		visible = append(visible, w)
	}
	return visible
}

// FilterPreferredWorks 只保留和志愿者偏好的小时块有交集的工作，没有任何匹配时返回全部工作
func FilterPreferredWorks(works []*domain.VolunteerWork, prefs *domain.UserPreferences) []*domain.VolunteerWork {
	if prefs == nil || len(prefs.HourBlocks) == 0 {
		return works
	}

	preferred := make([]*domain.VolunteerWork, 0, len(works))
	for _, w := range works {
		if w.IsPostulated || matchesPreferences(&w.Work, prefs) {
			preferred = append(preferred, w)
		}
	}

	if len(preferred) == 0 {
		return works
	}
	return preferred
}

func matchesPreferences(work *domain.Work, prefs *domain.UserPreferences) bool {
	for _, block := range work.Hours {
		weekDay := block.WeekDay
		if weekDay == domain.WeekDayNone {
			weekDay = int(work.StartDate.Weekday())
		}
		if slices.Contains(prefs.HourBlocks, domain.WorkHourBlock{HourBlock: block.HourBlock, WeekDay: weekDay}) {
			return true
		}
	}
	return false
}

// BuildWorkSessions 为被接受的申请生成每一次出勤，日期限制在申请的起止日期内
func BuildWorkSessions(work *domain.Work, p *domain.Postulation) []domain.WorkSession {
	occurrences := calendar.Expand(work, p.StartDate.Time, p.EndDate.Time)

	sessions := make([]domain.WorkSession, 0, len(occurrences))
	for _, o := range occurrences {
		sessions = append(sessions, domain.WorkSession{
			WorkID:         work.ID,
			WorkName:       work.Name,
			VolunteerID:    p.VolunteerID,
			VolunteerName:  p.VolunteerName,
			Status:         domain.WorkSessionStatusPending,
			SessionDate:    domain.NewDate(o.Date),
			SessionTime:    calendar.FormatHour(o.Hour),
			SessionWeekDay: int(o.Date.Weekday()),
		})
	}
	return sessions
}
