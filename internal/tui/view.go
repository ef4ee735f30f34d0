package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendarview"
)

var weekdayNames = [7]string{"日", "一", "二", "三", "四", "五", "六"}

// 一个格子最多列出的工作项，多出来的显示为 +n
const maxCellLabels = 2

func (m Model[T]) View() string {
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styleTitle.Render(m.title),
		styleMode.Render(m.headline()),
	)
	b.WriteString(header)
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styleError.Render("加载失败: " + m.err.Error()))
		b.WriteString("\n")
	case m.loading:
		b.WriteString(styleLoading.Render("加载中..."))
		b.WriteString("\n")
	}

	if m.res != nil {
		if m.nav.Mode() == calendarview.ModeMonth {
			b.WriteString(renderMonth(*m.res, m.opts.WeekStart))
		} else {
			b.WriteString(renderWeek(*m.res, m.opts, m.label))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model[T]) headline() string {
	ref := m.nav.Ref()
	if m.nav.Mode() == calendarview.ModeMonth {
		return fmt.Sprintf("%s视图 %d 年 %d 月", m.nav.Mode(), ref.Year(), ref.Month())
	}
	days := calendar.WeekDays(ref, m.opts.WeekStart)
	return fmt.Sprintf("%s视图 %s 至 %s", m.nav.Mode(), calendar.FormatDate(days[0]), calendar.FormatDate(days[6]))
}

// cellText 列出格子里的工作项，标签为空时只显示数量
func cellText[T calendar.Item](items []T, label LabelFunc[T]) string {
	if len(items) == 0 {
		return ""
	}
	if label == nil {
		return strconv.Itoa(len(items))
	}

	lines := make([]string, 0, maxCellLabels+1)
	for i, item := range items {
		if i == maxCellLabels {
			lines = append(lines, fmt.Sprintf("+%d", len(items)-maxCellLabels))
			break
		}
		lines = append(lines, label(item))
	}
	return strings.Join(lines, "\n")
}

func hasPending[T calendar.Item](items []T) bool {
	for _, item := range items {
		if item.PendingCount() > 0 {
			return true
		}
	}
	return false
}

// renderWeek 画周视图：行是小时，列是一周中的每一天
func renderWeek[T calendar.Item](res calendarview.Result[T], opts calendarview.Options, label LabelFunc[T]) string {
	days := calendar.WeekDays(res.Ref, opts.WeekStart)
	hours := opts.Hours.Hours()

	headers := make([]string, 0, 8)
	headers = append(headers, "")
	for _, day := range days {
		h := fmt.Sprintf("%s %02d-%02d", weekdayNames[day.Weekday()], day.Day(), day.Month())
		if day.Equal(res.Ref) {
			h = styleRef.Render(h)
		}
		headers = append(headers, h)
	}

	rows := make([][]string, 0, len(hours))
	pending := make([][]bool, 0, len(hours))
	for i, hour := range hours {
		row := make([]string, 0, 8)
		flags := make([]bool, 8)
		row = append(row, calendar.FormatHour(hour)[:5])
		for col, day := range days {
			items := res.Week[day.Weekday()][i]
			row = append(row, cellText(items, label))
			flags[col+1] = opts.TrackPending && hasPending(items)
		}
		rows = append(rows, row)
		pending = append(pending, flags)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleBorder).
		BorderRow(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0:
				return styleHour
			case pending[row][col]:
				return stylePending
			default:
				return styleItem
			}
		})

	return t.Render()
}

// renderMonth 画月视图：有工作的日子高亮，有待处理的日子用另一种颜色
func renderMonth[T calendar.Item](res calendarview.Result[T], weekStart time.Weekday) string {
	headers := make([]string, 7)
	for i := range headers {
		headers[i] = weekdayNames[(int(weekStart)+i)%7]
	}

	first := calendar.MonthStart(res.Ref)
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	total := calendar.DaysIn(res.Ref.Year(), res.Ref.Month())

	rows := make([][]string, 0, 6)
	row := make([]string, 7)
	for day := 1; day <= total; day++ {
		col := (offset + day - 1) % 7
		row[col] = strconv.Itoa(day)
		if col == 6 || day == total {
			rows = append(rows, row)
			row = make([]string, 7)
		}
	}

	flag := func(flags []bool, cell string) bool {
		day, err := strconv.Atoi(cell)
		return err == nil && day >= 1 && day <= len(flags) && flags[day-1]
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			if r == table.HeaderRow {
				return styleHeader
			}
			cell := rows[r][c]
			style := styleOutside
			switch {
			case flag(res.Month.HasPending, cell):
				style = stylePending
			case flag(res.Month.HasItem, cell):
				style = styleItem
			case cell != "":
				style = styleCell
			}
			if cell == strconv.Itoa(res.Ref.Day()) {
				style = style.Reverse(true)
			}
			return style.Align(lipgloss.Right)
		})

	return t.Render()
}
