package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendarview"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

type WeekView[T any] struct {
	Date  domain.Date   `json:"date"`
	Days  []domain.Date `json:"days"`
	Hours []string      `json:"hours"`
	// Cells[i][j] 是 Days[i] 这一天 Hours[j] 这个小时的工作项
	Cells [][][]T `json:"cells"`
}

type MonthView struct {
	Date  domain.Date `json:"date"`
	Year  int         `json:"year"`
	Month int         `json:"month"`
	calendar.MonthFlags
	ItemDays    []int `json:"days"`
	PendingDays []int `json:"pendingDays"`
}

func newWeekView[T calendar.Item](res calendarview.Result[T], opts calendarview.Options) WeekView[T] {
	view := WeekView[T]{
		Date:  domain.NewDate(res.Ref),
		Days:  make([]domain.Date, 0, 7),
		Hours: make([]string, 0, opts.Hours.Len()),
		Cells: make([][][]T, 0, 7),
	}

	for _, hour := range opts.Hours.Hours() {
		view.Hours = append(view.Hours, calendar.FormatHour(hour))
	}

	// 网格按星期编号存放，这里按一周的显示顺序重新排列
	for _, day := range calendar.WeekDays(res.Ref, opts.WeekStart) {
		view.Days = append(view.Days, domain.NewDate(day))
		view.Cells = append(view.Cells, res.Week[day.Weekday()])
	}

	return view
}

func newMonthView[T calendar.Item](res calendarview.Result[T]) MonthView {
	return MonthView{
		Date:        domain.NewDate(res.Ref),
		Year:        res.Ref.Year(),
		Month:       int(res.Ref.Month()),
		MonthFlags:  res.Month,
		ItemDays:    res.Month.Days(),
		PendingDays: res.Month.PendingDays(),
	}
}

// calendarOptions 所有日历都统计待处理标记：供应方表示工作有待处理的申请，
// 志愿者浏览工作时表示自己已经申请过，出勤日历表示出勤尚未确认
func (h *Handler) calendarOptions() calendarview.Options {
	return calendarview.Options{
		WeekStart:    h.config.Calendar.WeekStart,
		Hours:        h.hours,
		TrackPending: true,
	}
}

// loadCalendar 解析 date 参数并加载对应的周视图和月视图，失败时已经写好了响应
func loadCalendar[T calendar.Item](h *Handler, w http.ResponseWriter, r *http.Request, opts calendarview.Options, fetch calendarview.FetcherFunc[T]) (calendarview.Result[T], bool) {
	ref, err := parseDateQuery(r, "date", h.now())
	if err != nil {
		h.badRequest(w, r, err)
		return calendarview.Result[T]{}, false
	}

	res := calendarview.NewController[T](fetch, opts).Load(r.Context(), ref)
	if res.Err != nil {
		h.internalServerError(w, r, res.Err)
		return res, false
	}

	return res, true
}

func serveWeek[T calendar.Item](h *Handler, w http.ResponseWriter, r *http.Request, fetch calendarview.FetcherFunc[T]) {
	opts := h.calendarOptions()
	res, ok := loadCalendar(h, w, r, opts, fetch)
	if !ok {
		return
	}
	h.successResponse(w, r, "获取周视图成功", newWeekView(res, opts))
}

func serveMonth[T calendar.Item](h *Handler, w http.ResponseWriter, r *http.Request, fetch calendarview.FetcherFunc[T]) {
	res, ok := loadCalendar(h, w, r, h.calendarOptions(), fetch)
	if !ok {
		return
	}
	h.successResponse(w, r, "获取月视图成功", newMonthView(res))
}

func (h *Handler) supplierWorksFetcher(r *http.Request) calendarview.FetcherFunc[*domain.Work] {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	return func(_ context.Context, from, to time.Time) ([]*domain.Work, error) {
		return h.repository.GetSupplierWorks(myInfo.ID, from, to)
	}
}

func (h *Handler) volunteerWorksFetcher(r *http.Request) calendarview.FetcherFunc[*domain.VolunteerWork] {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	preferred := r.URL.Query().Get("preferred") == "true"
	return func(_ context.Context, from, to time.Time) ([]*domain.VolunteerWork, error) {
		return h.volunteerWorks(myInfo.ID, from, to, preferred)
	}
}

func (h *Handler) volunteerSessionsFetcher(r *http.Request) calendarview.FetcherFunc[*domain.WorkSession] {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	return func(_ context.Context, from, to time.Time) ([]*domain.WorkSession, error) {
		return h.repository.GetVolunteerSessions(myInfo.ID, from, to)
	}
}

func (h *Handler) GetSupplierWeek(w http.ResponseWriter, r *http.Request) {
	serveWeek(h, w, r, h.supplierWorksFetcher(r))
}

func (h *Handler) GetSupplierMonth(w http.ResponseWriter, r *http.Request) {
	serveMonth(h, w, r, h.supplierWorksFetcher(r))
}

func (h *Handler) GetVolunteerWeek(w http.ResponseWriter, r *http.Request) {
	serveWeek(h, w, r, h.volunteerWorksFetcher(r))
}

func (h *Handler) GetVolunteerMonth(w http.ResponseWriter, r *http.Request) {
	serveMonth(h, w, r, h.volunteerWorksFetcher(r))
}

func (h *Handler) GetSessionsWeek(w http.ResponseWriter, r *http.Request) {
	serveWeek(h, w, r, h.volunteerSessionsFetcher(r))
}

func (h *Handler) GetSessionsMonth(w http.ResponseWriter, r *http.Request) {
	serveMonth(h, w, r, h.volunteerSessionsFetcher(r))
}
