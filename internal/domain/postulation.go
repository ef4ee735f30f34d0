package domain

import (
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

type PostulationStatus string

const (
	PostulationStatusPending  PostulationStatus = "PENDING"
	PostulationStatusAccepted PostulationStatus = "ACCEPTED"
	PostulationStatusRejected PostulationStatus = "REJECTED"
)

type Postulation struct {
	ID                int64             `json:"id"`
	WorkID            int64             `json:"workId"`
	WorkName          string            `json:"workName"`
	VolunteerID       int64             `json:"volunteerId"`
	VolunteerName     string            `json:"volunteerName"`
	VolunteerUsername string            `json:"volunteerUsername"`
	VolunteerEmail    string            `json:"-"`
	Status            PostulationStatus `json:"status"`
	StartDate         Date              `json:"startDate"`
	EndDate           Date              `json:"endDate"`
	CreatedAt         time.Time         `json:"createdAt"`
	Version           int32             `json:"-"`
}

// ActivePostulation 是志愿者仍然有效（待处理或已接受）的申请及其对应工作的小时块，用于检查时间冲突
type ActivePostulation struct {
	PostulationID int64
	WorkID        int64
	WorkType      calendar.WorkType
	StartDate     Date
	EndDate       Date
	Hours         []WorkHourBlock
}

type WorkInstance struct {
	ID          int64     `json:"id"`
	WorkID      int64     `json:"workId"`
	VolunteerID int64     `json:"volunteerId"`
	StartDate   Date      `json:"startDate"`
	EndDate     Date      `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AcceptedWork 是志愿者被接受的工作，日期为对应工作实例的起止日期
type AcceptedWork struct {
	Instance WorkInstance
	Work     *Work
}
