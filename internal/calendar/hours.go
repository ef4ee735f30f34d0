package calendar

import (
	"errors"
	"fmt"
	"time"
)

// HourLayout 是小时块的格式（HH:00:00）
const HourLayout = "15:04:05"

// DefaultAllowedHours 是允许发布工作的小时块，7 点到 17 点
var DefaultAllowedHours = []string{
	"07:00:00", "08:00:00", "09:00:00", "10:00:00", "11:00:00", "12:00:00",
	"13:00:00", "14:00:00", "15:00:00", "16:00:00", "17:00:00",
}

var DefaultHourRange = HourRange{StartHour: 7, EndHour: 18}

// HourRange 是周视图的小时轴，左闭右开 [StartHour, EndHour)
type HourRange struct {
	StartHour int `json:"startHour"`
	EndHour   int `json:"endHour"`
}

func NewHourRange(startHour, endHour int) (HourRange, error) {
	if startHour < 0 || endHour > 24 {
		return HourRange{}, fmt.Errorf("小时范围 [%d, %d) 超出了一天的范围", startHour, endHour)
	}
	if endHour <= startHour {
		return HourRange{}, fmt.Errorf("结束小时 %d 必须大于开始小时 %d", endHour, startHour)
	}
	return HourRange{StartHour: startHour, EndHour: endHour}, nil
}

// HourRangeFromAllowed 根据允许的小时块列表推出小时轴：第一个块的小时到最后一个块的小时加一
func HourRangeFromAllowed(allowed []string) (HourRange, error) {
	if len(allowed) == 0 {
		return HourRange{}, errors.New("允许的小时块列表为空")
	}

	start, err := ParseHour(allowed[0])
	if err != nil {
		return HourRange{}, err
	}
	last, err := ParseHour(allowed[len(allowed)-1])
	if err != nil {
		return HourRange{}, err
	}

	return NewHourRange(start, last+1)
}

func (r HourRange) Len() int {
	return max(0, r.EndHour-r.StartHour)
}

func (r HourRange) Contains(hour int) bool {
	return hour >= r.StartHour && hour < r.EndHour
}

// Index 返回 hour 在小时轴上的下标
func (r HourRange) Index(hour int) (int, bool) {
	if !r.Contains(hour) {
		return 0, false
	}
	return hour - r.StartHour, true
}

// Hours 按顺序返回小时轴上的每一个小时
func (r HourRange) Hours() []int {
	hours := make([]int, r.Len())
	for i := range hours {
		hours[i] = r.StartHour + i
	}
	return hours
}

// ParseHour 解析 HH:00:00 格式的小时块，返回小时
func ParseHour(s string) (int, error) {
	t, err := time.Parse(HourLayout, s)
	if err != nil {
		return 0, fmt.Errorf("小时块 %q 格式错误", s)
	}
	return t.Hour(), nil
}

func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00:00", hour)
}
