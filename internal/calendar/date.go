package calendar

import "time"

// DateLayout 是前后端交换日期时使用的格式（DD-MM-YYYY）
const DateLayout = "02-01-2006"

// Day 将 t 截断为其所在的日历日，丢弃时分秒和时区
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 DD-MM-YYYY 格式的日期
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDate(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// DaysIn 返回某年某月的天数
func DaysIn(year int, month time.Month) int {
	// 下个月的第 0 天就是这个月的最后一天
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, DaysIn(y, m), 0, 0, 0, 0, time.UTC)
}

// MonthDays 返回参考日期所在月份的每一天
func MonthDays(ref time.Time) []time.Time {
	start := MonthStart(ref)
	days := make([]time.Time, DaysIn(start.Year(), start.Month()))
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// AddMonths 按月移动日期，日数超出目标月份时取目标月份的最后一天
func AddMonths(t time.Time, n int) time.Time {
	d := Day(t)
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := min(d.Day(), DaysIn(first.Year(), first.Month()))
	return first.AddDate(0, 0, day-1)
}

// Within 判断 day 是否落在 [start, end] 闭区间内，只比较日历日
func Within(day, start, end time.Time) bool {
	d := Day(day)
	return !d.Before(Day(start)) && !d.After(Day(end))
}
