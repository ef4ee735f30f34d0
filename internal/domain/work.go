package domain

import (
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

// WeekDayNone 是单次工作的小时块所使用的星期
const WeekDayNone = -1

type WorkHourBlock struct {
	HourBlock string `json:"hourBlock"`
	WeekDay   int    `json:"weekDay"`
}

type Work struct {
	ID                       int64             `json:"id"`
	Name                     string            `json:"name"`
	Description              string            `json:"description"`
	Type                     calendar.WorkType `json:"type"`
	SupplierID               int64             `json:"supplierId"`
	SupplierName             string            `json:"supplierName"`
	StartDate                Date              `json:"startDate"`
	EndDate                  Date              `json:"endDate"`
	VolunteersNeeded         int32             `json:"volunteersNeeded"`
	AcceptedVolunteersCount  int32             `json:"acceptedVolunteersCount"`
	PendingPostulationsCount int32             `json:"pendingPostulationsCount"`
	Tags                     []string          `json:"tags"`
	Hours                    []WorkHourBlock   `json:"hours"`
	CreatedAt                time.Time         `json:"createdAt"`
	Version                  int32             `json:"-"`
}

func (w *Work) WorkType() calendar.WorkType {
	return w.Type
}

func (w *Work) Span() (time.Time, time.Time) {
	return w.StartDate.Time, w.EndDate.Time
}

// HourBlocks 跳过无法解析的小时块，写入时已经校验过格式
func (w *Work) HourBlocks() []calendar.HourBlock {
	return toCalendarBlocks(w.Hours)
}

func (w *Work) PendingCount() int {
	return int(w.PendingPostulationsCount)
}

func (w *Work) IsFull() bool {
	return w.AcceptedVolunteersCount >= w.VolunteersNeeded
}

func (w *Work) IsFinished(today time.Time) bool {
	return w.EndDate.Before(calendar.Day(today))
}

// VolunteerWork 是志愿者看到的工作，待处理标记表示自己已经申请过
type VolunteerWork struct {
	Work
	IsPostulated      bool              `json:"isPostulated"`
	PostulationStatus PostulationStatus `json:"postulationStatus,omitempty"`
}

func (w *VolunteerWork) PendingCount() int {
	if w.IsPostulated {
		return 1
	}
	return 0
}

func toCalendarBlocks(hours []WorkHourBlock) []calendar.HourBlock {
	blocks := make([]calendar.HourBlock, 0, len(hours))
	for _, h := range hours {
		hour, err := calendar.ParseHour(h.HourBlock)
		if err != nil {
			continue
		}
		blocks = append(blocks, calendar.HourBlock{Hour: hour, Weekday: time.Weekday(h.WeekDay)})
	}
	return blocks
}
