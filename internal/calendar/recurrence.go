package calendar

import "time"

// OccursOn 返回 item 在 day 这一天占用的小时，不发生时返回空
func OccursOn(item Item, day time.Time) []int {
	start, end := item.Span()
	if !Within(day, start, end) {
		return nil
	}

	weekday := Day(day).Weekday()
	blocks := item.HourBlocks()

	switch item.WorkType() {
	case WorkTypeSession:
		// 单次工作只在开始日期那一天发生，所有小时块都落在这一天
		if weekday != Day(start).Weekday() {
			return nil
		}
		hours := make([]int, 0, len(blocks))
		for _, b := range blocks {
			hours = append(hours, b.Hour)
		}
		return hours
	case WorkTypeRecurring:
		var hours []int
		for _, b := range blocks {
			if b.Weekday == weekday {
				hours = append(hours, b.Hour)
			}
		}
		return hours
	default:
		return nil
	}
}

type Occurrence struct {
	Date time.Time
	Hour int
}

// Expand 列出 item 在 [from, to] 内的每一次发生，按日期再按小时块顺序排列
func Expand(item Item, from, to time.Time) []Occurrence {
	var occurrences []Occurrence
	for d := Day(from); !d.After(Day(to)); d = d.AddDate(0, 0, 1) {
		for _, hour := range OccursOn(item, d) {
			occurrences = append(occurrences, Occurrence{Date: d, Hour: hour})
		}
	}
	return occurrences
}
