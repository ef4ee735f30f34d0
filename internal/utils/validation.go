package utils

import (
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 32 {
		return errors.New("用户名长度必须在 3 到 32 个字符之间")
	}
	for _, r := range username {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return errors.New("用户名只能包含字母、数字和下划线")
		}
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("密码长度不能少于 8 个字符")
	}

	hasLetter, hasDigit := false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("密码必须同时包含字母和数字")
	}
	return nil
}

// ValidateWorkHours 检查工作的小时块；单次工作的星期会被统一设置为 WeekDayNone
func ValidateWorkHours(work *domain.Work, allowed []string) error {
	if len(work.Hours) == 0 {
		return errors.New("工作至少需要一个小时块")
	}

	seen := make(map[domain.WorkHourBlock]bool, len(work.Hours))
	for i := range work.Hours {
		block := &work.Hours[i]

		if !slices.Contains(allowed, block.HourBlock) {
			return fmt.Errorf("小时块 %s 不在允许的范围内", block.HourBlock)
		}

		switch work.Type {
		case calendar.WorkTypeSession:
			block.WeekDay = domain.WeekDayNone
		case calendar.WorkTypeRecurring:
			if block.WeekDay < 0 || block.WeekDay > 6 {
				return fmt.Errorf("小时块 %s 的星期 %d 无效", block.HourBlock, block.WeekDay)
			}
		default:
			return fmt.Errorf("未知的工作类型 %s", work.Type)
		}

		if seen[*block] {
			return fmt.Errorf("小时块 %s 重复", block.HourBlock)
		}
		seen[*block] = true
	}

	return nil
}

// ValidateWorkDates 检查工作的起止日期；单次工作的结束日期会被设置为开始日期
func ValidateWorkDates(work *domain.Work, today time.Time) error {
	if work.StartDate.IsZero() || (work.EndDate.IsZero() && work.Type == calendar.WorkTypeRecurring) {
		return errors.New("工作的起止日期不能为空")
	}

	if work.Type == calendar.WorkTypeSession {
		work.EndDate = work.StartDate
	}

	if work.StartDate.After(work.EndDate.Time) {
		return errors.New("工作的开始日期不能晚于结束日期")
	}

	if work.StartDate.Before(calendar.Day(today)) {
		return errors.New("工作的开始日期不能早于今天")
	}

	return nil
}

func ValidatePostulationDates(work *domain.Work, start, end domain.Date, today time.Time) error {
	if !calendar.Within(start.Time, work.StartDate.Time, work.EndDate.Time) || !calendar.Within(end.Time, work.StartDate.Time, work.EndDate.Time) {
		return errors.New("申请的日期超出了工作的时间范围")
	}

	if start.After(end.Time) {
		return errors.New("申请的开始日期不能晚于结束日期")
	}

	today = calendar.Day(today)
	if end.Before(today) {
		return errors.New("申请的结束日期不能早于今天")
	}

	if work.IsFinished(today) {
		return errors.New("工作已经结束")
	}

	return nil
}

type postulationItem struct {
	typ    calendar.WorkType
	start  time.Time
	end    time.Time
	blocks []calendar.HourBlock
}

func (p postulationItem) WorkType() calendar.WorkType      { return p.typ }
func (p postulationItem) Span() (time.Time, time.Time)     { return p.start, p.end }
func (p postulationItem) HourBlocks() []calendar.HourBlock { return p.blocks }
func (p postulationItem) PendingCount() int                { return 0 }

// CheckPostulationConflict 检查志愿者在 [start, end] 内申请 work 是否会和已有的有效申请在同一天的同一小时冲突，skipID 用于编辑申请时跳过自身
func CheckPostulationConflict(work *domain.Work, start, end domain.Date, active []domain.ActivePostulation, skipID int64) error {
	candidate := postulationItem{
		typ:    work.Type,
		start:  start.Time,
		end:    end.Time,
		blocks: work.HourBlocks(),
	}

	for _, ap := range active {
		if ap.PostulationID == skipID || ap.WorkID == work.ID {
			continue
		}

		existing := postulationItem{
			typ:    ap.WorkType,
			start:  ap.StartDate.Time,
			end:    ap.EndDate.Time,
			blocks: (&domain.Work{Hours: ap.Hours}).HourBlocks(),
		}

		from := calendar.Day(maxTime(start.Time, ap.StartDate.Time))
		to := calendar.Day(minTime(end.Time, ap.EndDate.Time))
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			hours := calendar.OccursOn(candidate, d)
			if len(hours) == 0 {
				continue
			}
			for _, h := range calendar.OccursOn(existing, d) {
				if slices.Contains(hours, h) {
					return fmt.Errorf("%s %s 已经有其他申请", calendar.FormatDate(d), calendar.FormatHour(h))
				}
			}
		}
	}

	return nil
}

func ValidateReportRange(start, end domain.Date) error {
	if start.IsZero() || end.IsZero() {
		return errors.New("报表的起止日期不能为空")
	}
	if start.After(end.Time) {
		return errors.New("报表的开始日期不能晚于结束日期")
	}
	return nil
}

func ValidatePreferences(prefs *domain.UserPreferences, allowed []string) error {
	seen := make(map[domain.WorkHourBlock]bool, len(prefs.HourBlocks))
	for _, block := range prefs.HourBlocks {
		if !slices.Contains(allowed, block.HourBlock) {
			return fmt.Errorf("小时块 %s 不在允许的范围内", block.HourBlock)
		}
		if block.WeekDay < 0 || block.WeekDay > 6 {
			return fmt.Errorf("小时块 %s 的星期 %d 无效", block.HourBlock, block.WeekDay)
		}
		if seen[block] {
			return fmt.Errorf("小时块 %s 重复", block.HourBlock)
		}
		seen[block] = true
	}
	return nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
