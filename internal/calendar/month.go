package calendar

import "time"

// MonthFlags 的下标 0 对应当月 1 号；没有要求统计待处理时 HasPending 为 nil
type MonthFlags struct {
	HasItem    []bool `json:"hasItem"`
	HasPending []bool `json:"hasPending,omitempty"`
}

// ReduceMonth 计算 ref 所在月份每一天是否有工作项，trackPending 为 true 时同时标记有待处理申请的日子
func ReduceMonth[T Item](items []T, ref time.Time, trackPending bool) MonthFlags {
	days := MonthDays(ref)

	flags := MonthFlags{HasItem: make([]bool, len(days))}
	if trackPending {
		flags.HasPending = make([]bool, len(days))
	}

	for i, day := range days {
		for _, item := range items {
			if len(OccursOn(item, day)) == 0 {
				continue
			}
			flags.HasItem[i] = true
			if trackPending && item.PendingCount() > 0 {
				flags.HasPending[i] = true
			}
		}
	}

	return flags
}

// Days 返回有工作项的日期（几号）
func (f MonthFlags) Days() []int {
	days := make([]int, 0)
	for i, ok := range f.HasItem {
		if ok {
			days = append(days, i+1)
		}
	}
	return days
}

func (f MonthFlags) PendingDays() []int {
	days := make([]int, 0)
	for i, ok := range f.HasPending {
		if ok {
			days = append(days, i+1)
		}
	}
	return days
}
