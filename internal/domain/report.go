package domain

import "time"

type ReportType string

const (
	ReportTypeSupplierSessions     ReportType = "SUPPLIER_SESSIONS"
	ReportTypeSupplierPostulations ReportType = "SUPPLIER_POSTULATIONS"
	ReportTypeVolunteerSessions    ReportType = "VOLUNTEER_SESSIONS"
	ReportTypeAdminSessions        ReportType = "ADMIN_SESSIONS"
	ReportTypeAdminPostulations    ReportType = "ADMIN_POSTULATIONS"
)

type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "CSV"
	ReportFormatXLSX ReportFormat = "XLSX"
)

func (f ReportFormat) Extension() string {
	switch f {
	case ReportFormatXLSX:
		return ".xlsx"
	default:
		return ".csv"
	}
}

func (f ReportFormat) ContentType() string {
	switch f {
	case ReportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// ReportRequest 描述要生成的报表；UserIDs 为空时按报表类型决定范围。
// OwnerID 是生成报表的用户，只有他可以重新下载
type ReportRequest struct {
	OwnerID   int64
	Type      ReportType
	Format    ReportFormat
	StartDate Date
	EndDate   Date
	UserIDs   []int64
}

type Report struct {
	ID        string       `json:"id"`
	OwnerID   int64        `json:"-"`
	Type      ReportType   `json:"type"`
	Format    ReportFormat `json:"format"`
	FileName  string       `json:"fileName"`
	Path      string       `json:"-"`
	Rows      int          `json:"rows"`
	CreatedAt time.Time    `json:"createdAt"`
}
