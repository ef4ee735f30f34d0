package calendar

import "time"

type WorkType string

const (
	WorkTypeSession   WorkType = "SESSION"
	WorkTypeRecurring WorkType = "RECURRING"
)

// HourBlock 是一周中的一个小时块；对于 SESSION 类型的工作，Weekday 无意义
type HourBlock struct {
	Hour    int
	Weekday time.Weekday
}

// Item 是可以投影到日历上的工作项，调用方的记录类型实现这个接口即可
type Item interface {
	WorkType() WorkType
	// Span 返回起止日期（闭区间），只使用日期部分
	Span() (start, end time.Time)
	HourBlocks() []HourBlock
	PendingCount() int
}
