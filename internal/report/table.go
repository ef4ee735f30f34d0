package report

import (
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

// Table 是与输出格式无关的报表内容
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

var weekDayNames = []string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

var statusNames = map[string]string{
	"PENDING":  "待处理",
	"ACCEPTED": "已接受",
	"REJECTED": "已拒绝",
}

func statusName(status string) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return status
}

func weekDayName(weekDay int) string {
	if weekDay < 0 || weekDay >= len(weekDayNames) {
		return ""
	}
	return weekDayNames[weekDay]
}

func Title(t domain.ReportType) string {
	switch t {
	case domain.ReportTypeSupplierSessions:
		return "工作出勤"
	case domain.ReportTypeSupplierPostulations:
		return "工作申请"
	case domain.ReportTypeVolunteerSessions:
		return "我的出勤"
	case domain.ReportTypeAdminSessions:
		return "出勤汇总"
	case domain.ReportTypeAdminPostulations:
		return "申请汇总"
	default:
		return string(t)
	}
}

func SessionsTable(title string, sessions []*domain.WorkSession) *Table {
	table := &Table{
		Title:   title,
		Headers: []string{"日期", "时间", "星期", "工作", "供应方", "志愿者", "状态"},
		Rows:    make([][]string, 0, len(sessions)),
	}

	for _, s := range sessions {
		table.Rows = append(table.Rows, []string{
			s.SessionDate.String(),
			s.SessionTime,
			weekDayName(s.SessionWeekDay),
			s.WorkName,
			s.SupplierName,
			s.VolunteerName,
			statusName(string(s.Status)),
		})
	}

	return table
}

func PostulationsTable(title string, postulations []*domain.Postulation) *Table {
	table := &Table{
		Title:   title,
		Headers: []string{"工作", "志愿者", "用户名", "状态", "开始日期", "结束日期", "申请时间"},
		Rows:    make([][]string, 0, len(postulations)),
	}

	for _, p := range postulations {
		table.Rows = append(table.Rows, []string{
			p.WorkName,
			p.VolunteerName,
			p.VolunteerUsername,
			statusName(string(p.Status)),
			p.StartDate.String(),
			p.EndDate.String(),
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return table
}
