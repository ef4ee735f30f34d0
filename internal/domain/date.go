package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

// Date 是只有日期部分的时间，JSON 中以 DD-MM-YYYY 表示
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: calendar.Day(t)}
}

func ParseDate(s string) (Date, error) {
	t, err := calendar.ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("日期 %q 格式错误，应为 DD-MM-YYYY", s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return calendar.FormatDate(d.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("无法将 %T 转换为日期", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return calendar.Day(d.Time), nil
}
