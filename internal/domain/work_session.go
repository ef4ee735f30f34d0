package domain

import (
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

type WorkSessionStatus string

const (
	WorkSessionStatusPending  WorkSessionStatus = "PENDING"
	WorkSessionStatusAccepted WorkSessionStatus = "ACCEPTED"
	WorkSessionStatusRejected WorkSessionStatus = "REJECTED"
)

// WorkSession 是志愿者某一天某个小时的一次出勤，由供应方确认
type WorkSession struct {
	ID             int64             `json:"id"`
	InstanceID     int64             `json:"instanceId"`
	WorkID         int64             `json:"workId"`
	WorkName       string            `json:"workName"`
	SupplierID     int64             `json:"-"`
	SupplierName   string            `json:"supplierName"`
	VolunteerID    int64             `json:"volunteerId"`
	VolunteerName  string            `json:"volunteerName"`
	Status         WorkSessionStatus `json:"status"`
	SessionDate    Date              `json:"sessionDate"`
	SessionTime    string            `json:"sessionTime"`
	SessionWeekDay int               `json:"sessionWeekDay"`
	Version        int32             `json:"-"`
}

func (s *WorkSession) WorkType() calendar.WorkType {
	return calendar.WorkTypeSession
}

func (s *WorkSession) Span() (time.Time, time.Time) {
	return s.SessionDate.Time, s.SessionDate.Time
}

func (s *WorkSession) HourBlocks() []calendar.HourBlock {
	return toCalendarBlocks([]WorkHourBlock{{HourBlock: s.SessionTime, WeekDay: s.SessionWeekDay}})
}

func (s *WorkSession) PendingCount() int {
	if s.Status == WorkSessionStatusPending {
		return 1
	}
	return 0
}
