package calendarview

import (
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

type Mode int

const (
	ModeWeek Mode = iota
	ModeMonth
)

func (m Mode) String() string {
	if m == ModeMonth {
		return "月"
	}
	return "周"
}

// Navigator 保存当前的参考日期和视图模式
type Navigator struct {
	ref  time.Time
	mode Mode
	now  func() time.Time
}

func NewNavigator(ref time.Time, mode Mode) *Navigator {
	return &Navigator{
		ref:  calendar.Day(ref),
		mode: mode,
		now:  time.Now,
	}
}

func (n *Navigator) Ref() time.Time {
	return n.ref
}

func (n *Navigator) Mode() Mode {
	return n.mode
}

func (n *Navigator) SetMode(mode Mode) {
	n.mode = mode
}

func (n *Navigator) ToggleMode() Mode {
	if n.mode == ModeWeek {
		n.mode = ModeMonth
	} else {
		n.mode = ModeWeek
	}
	return n.mode
}

func (n *Navigator) NextWeek() time.Time {
	n.ref = n.ref.AddDate(0, 0, 7)
	return n.ref
}

func (n *Navigator) PrevWeek() time.Time {
	n.ref = n.ref.AddDate(0, 0, -7)
	return n.ref
}

func (n *Navigator) NextMonth() time.Time {
	n.ref = calendar.AddMonths(n.ref, 1)
	return n.ref
}

func (n *Navigator) PrevMonth() time.Time {
	n.ref = calendar.AddMonths(n.ref, -1)
	return n.ref
}

// Next 按当前模式前进一页
func (n *Navigator) Next() time.Time {
	if n.mode == ModeMonth {
		return n.NextMonth()
	}
	return n.NextWeek()
}

func (n *Navigator) Prev() time.Time {
	if n.mode == ModeMonth {
		return n.PrevMonth()
	}
	return n.PrevWeek()
}

func (n *Navigator) Today() time.Time {
	n.ref = calendar.Day(n.now())
	return n.ref
}

// SetDay 跳到当前月份的某一天，超出范围时不变
func (n *Navigator) SetDay(day int) time.Time {
	if day >= 1 && day <= calendar.DaysIn(n.ref.Year(), n.ref.Month()) {
		n.ref = time.Date(n.ref.Year(), n.ref.Month(), day, 0, 0, 0, 0, time.UTC)
	}
	return n.ref
}
