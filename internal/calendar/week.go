package calendar

import "time"

// WeeklyGrid 按 [星期][小时 - StartHour] 存放工作项，星期按 time.Weekday 编号（0 为周日）
type WeeklyGrid[T any] [7][][]T

// WeekDays 返回 ref 所在周的 7 个日期，从 weekStart 开始
func WeekDays(ref time.Time, weekStart time.Weekday) [7]time.Time {
	d := Day(ref)
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	first := d.AddDate(0, 0, -offset)

	var days [7]time.Time
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

func newWeeklyGrid[T any](hours HourRange) WeeklyGrid[T] {
	var grid WeeklyGrid[T]
	for wd := range grid {
		grid[wd] = make([][]T, hours.Len())
		for h := range grid[wd] {
			grid[wd][h] = []T{}
		}
	}
	return grid
}

// ProjectWeek 将 items 投影到 ref 所在周的周视图上，同一个格子里的工作项保持输入顺序
func ProjectWeek[T Item](items []T, ref time.Time, weekStart time.Weekday, hours HourRange) WeeklyGrid[T] {
	grid := newWeeklyGrid[T](hours)

	for _, day := range WeekDays(ref, weekStart) {
		wd := day.Weekday()
		for _, item := range items {
			for _, hour := range OccursOn(item, day) {
				idx, ok := hours.Index(hour)
				if !ok {
					continue
				}
				grid[wd][idx] = append(grid[wd][idx], item)
			}
		}
	}

	return grid
}

// Cell 返回某个星期某个小时的格子，星期无效或不在小时轴上时返回 nil
func (g WeeklyGrid[T]) Cell(weekday time.Weekday, hour int, hours HourRange) []T {
	if weekday < time.Sunday || weekday > time.Saturday {
		return nil
	}
	idx, ok := hours.Index(hour)
	if !ok || idx >= len(g[weekday]) {
		return nil
	}
	return g[weekday][idx]
}
