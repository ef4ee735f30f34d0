package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendarview"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/report"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Calendar.WeekStart = time.Monday
	cfg.Calendar.TimeZone = "UTC"

	h, err := NewHandler(cfg, nil, nil, nil, nil)
	require.NoError(t, err)
	return h
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHandlerNowUsesCalendarTimeZone(t *testing.T) {
	cfg := &config.Config{}
	cfg.Calendar.TimeZone = "Asia/Shanghai"

	h, err := NewHandler(cfg, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", h.now().Location().String())
}

func TestResponseEnvelope(t *testing.T) {
	h := newTestHandler(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	h.successResponse(rec, r, "成功", map[string]int{"n": 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "成功", resp.Message)
	assert.Equal(t, map[string]any{"n": float64(1)}, resp.Data)

	// 业务错误仍然返回 200
	rec = httptest.NewRecorder()
	h.errorResponse(rec, r, "工作不存在")
	assert.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "工作不存在", resp.Message)
	assert.Nil(t, resp.Data)

	rec = httptest.NewRecorder()
	h.internalServerError(rec, r, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "服务器内部错误", decodeResponse(t, rec).Message)
}

func TestBadRequestTranslatesValidationError(t *testing.T) {
	h := newTestHandler(t)

	req := struct {
		Name string `json:"name" validate:"required"`
	}{}
	err := h.validate.Struct(req)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	h.badRequest(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Name")
	assert.Contains(t, resp.Message, "必填")
}

func TestRequiredRole(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		role    domain.Role
		allowed []domain.Role
		wantOK  bool
	}{
		{"允许的角色", domain.RoleSupplier, []domain.Role{domain.RoleSupplier}, true},
		{"多个角色之一", domain.RoleVolunteer, []domain.Role{domain.RoleSupplier, domain.RoleVolunteer}, true},
		{"角色不匹配", domain.RoleVolunteer, []domain.Role{domain.RoleAdmin}, false},
		{"没有角色", "", []domain.Role{domain.RoleAdmin}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				h.successResponse(w, r, "ok", nil)
			})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != "" {
				r = r.WithContext(context.WithValue(r.Context(), RoleCtxKey, string(tt.role)))
			}
			rec := httptest.NewRecorder()
			h.RequiredRole(tt.allowed)(next).ServeHTTP(rec, r)

			assert.Equal(t, tt.wantOK, called)
			resp := decodeResponse(t, rec)
			assert.Equal(t, tt.wantOK, resp.Success)
			if !tt.wantOK {
				assert.Equal(t, "权限不足", resp.Message)
			}
		})
	}
}

func TestAuth(t *testing.T) {
	h := newTestHandler(t)

	token, expiration, err := h.signToken(&domain.User{ID: 42, Role: domain.RoleVolunteer}, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiration, time.Minute)

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role:             string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	expired, _, err := h.signToken(&domain.User{ID: 42, Role: domain.RoleVolunteer}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name    string
		cookie  string
		wantSub string
		wantMsg string
	}{
		{name: "有效令牌", cookie: token, wantSub: "42"},
		{name: "未登录", wantMsg: "用户未登录"},
		{name: "签名错误", cookie: otherSecret, wantMsg: "无效的令牌"},
		{name: "令牌过期", cookie: expired, wantMsg: "无效的令牌"},
		{name: "格式错误", cookie: "not-a-token", wantMsg: "无效的令牌"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSub, gotRole string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSub, _ = r.Context().Value(SubCtxKey).(string)
				gotRole, _ = r.Context().Value(RoleCtxKey).(string)
				h.successResponse(w, r, "ok", nil)
			})

			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.auth(next).ServeHTTP(rec, r)

			resp := decodeResponse(t, rec)
			if tt.wantMsg != "" {
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantMsg, resp.Message)
				assert.Empty(t, gotSub)
				return
			}
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantSub, gotSub)
			assert.Equal(t, string(domain.RoleVolunteer), gotRole)
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := newTestHandler(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()
	h.recoverer(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, decodeResponse(t, rec).Success)
}

func TestParseRangeQuery(t *testing.T) {
	now := time.Date(2024, time.May, 8, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		wantFrom time.Time
		wantTo   time.Time
		wantErr  bool
	}{
		{name: "默认为本月", query: "", wantFrom: date(2024, time.May, 1), wantTo: date(2024, time.May, 31)},
		{name: "指定年月", query: "year=2024&month=2", wantFrom: date(2024, time.February, 1), wantTo: date(2024, time.February, 29)},
		{name: "只指定月份", query: "month=12", wantFrom: date(2024, time.December, 1), wantTo: date(2024, time.December, 31)},
		{name: "起止日期", query: "from=03-05-2024&to=10-05-2024", wantFrom: date(2024, time.May, 3), wantTo: date(2024, time.May, 10)},
		{name: "只有开始日期", query: "from=03-05-2024", wantFrom: date(2024, time.May, 3), wantTo: date(2024, time.May, 3)},
		{name: "结束早于开始", query: "from=10-05-2024&to=03-05-2024", wantErr: true},
		{name: "日期格式错误", query: "from=2024-05-03", wantErr: true},
		{name: "月份越界", query: "month=13", wantErr: true},
		{name: "年份不是数字", query: "year=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/works?"+tt.query, nil)
			from, to, err := parseRangeQuery(r, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.wantFrom.Equal(from), "from = %v", from)
			assert.True(t, tt.wantTo.Equal(to), "to = %v", to)
		})
	}
}

func TestParsePageQuery(t *testing.T) {
	tests := []struct {
		query    string
		wantPage int
		wantSize int
		wantErr  bool
	}{
		{query: "", wantPage: 1, wantSize: defaultPageSize},
		{query: "page=3&size=50", wantPage: 3, wantSize: 50},
		{query: "size=100", wantPage: 1, wantSize: 100},
		{query: "page=0", wantErr: true},
		{query: "size=101", wantErr: true},
		{query: "page=x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/volunteer/postulations?"+tt.query, nil)
			page, size, err := parsePageQuery(r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func mondayMorningWork() *domain.Work {
	return &domain.Work{
		ID:                       1,
		Type:                     calendar.WorkTypeRecurring,
		StartDate:                domain.NewDate(date(2024, time.May, 1)),
		EndDate:                  domain.NewDate(date(2024, time.May, 31)),
		VolunteersNeeded:         2,
		PendingPostulationsCount: 1,
		Hours:                    []domain.WorkHourBlock{{HourBlock: "09:00:00", WeekDay: int(time.Monday)}},
	}
}

func TestCalendarViews(t *testing.T) {
	h := newTestHandler(t)
	opts := h.calendarOptions()

	fetch := calendarview.FetcherFunc[*domain.Work](func(ctx context.Context, from, to time.Time) ([]*domain.Work, error) {
		return []*domain.Work{mondayMorningWork()}, nil
	})
	// 2024-05-08 是周三，周一开始的一周为 05-06 到 05-12
	res := calendarview.NewController[*domain.Work](fetch, opts).Load(context.Background(), date(2024, time.May, 8))
	require.NoError(t, res.Err)

	week := newWeekView(res, opts)
	require.Len(t, week.Days, 7)
	assert.Equal(t, "06-05-2024", week.Days[0].String())
	assert.Equal(t, "12-05-2024", week.Days[6].String())
	assert.Equal(t, "07:00:00", week.Hours[0])
	assert.Len(t, week.Hours, calendar.DefaultHourRange.Len())

	// 第一列是周一，09:00 在小时轴上的下标为 2
	require.Len(t, week.Cells, 7)
	assert.Len(t, week.Cells[0][2], 1)
	for day := 1; day < 7; day++ {
		assert.Empty(t, week.Cells[day][2])
	}

	month := newMonthView(res)
	assert.Equal(t, 2024, month.Year)
	assert.Equal(t, 5, month.Month)
	assert.Equal(t, []int{6, 13, 20, 27}, month.ItemDays)
	assert.Equal(t, []int{6, 13, 20, 27}, month.PendingDays)
}

func TestMonthViewJSON(t *testing.T) {
	view := MonthView{
		Date:        domain.NewDate(date(2024, time.May, 8)),
		Year:        2024,
		Month:       5,
		ItemDays:    []int{6},
		PendingDays: []int{},
	}

	b, err := json.Marshal(view)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "08-05-2024", got["date"])
	assert.Equal(t, []any{float64(6)}, got["days"])
}

func TestReadJSON(t *testing.T) {
	h := newTestHandler(t)

	type request struct {
		Name      string      `json:"name"`
		StartDate domain.Date `json:"startDate"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "合法请求", body: `{"name":"植树","startDate":"12-05-2024"}`},
		{name: "空请求体", body: ``, wantErr: "请求体不能为空"},
		{name: "语法错误", body: `{"name":`, wantErr: "请求体不是合法的 JSON"},
		{name: "类型错误", body: `{"name":1}`, wantErr: "字段 name 的类型错误"},
		{name: "未知字段", body: `{"nickname":"x"}`, wantErr: "nickname"},
		{name: "多个对象", body: `{"name":"a"}{"name":"b"}`, wantErr: "请求体只能包含一个 JSON 对象"},
		{name: "日期格式错误", body: `{"startDate":"2024-05-12"}`, wantErr: "DD-MM-YYYY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var req request
			err := h.readJSON(r, &req)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "植树", req.Name)
			assert.Equal(t, "12-05-2024", req.StartDate.String())
		})
	}
}

func TestDownloadReportOnlyByOwner(t *testing.T) {
	h := newTestHandler(t)

	reports, err := report.NewGenerator(t.TempDir())
	require.NoError(t, err)
	h.reports = reports

	start, err := domain.ParseDate("01-05-2024")
	require.NoError(t, err)
	end, err := domain.ParseDate("31-05-2024")
	require.NoError(t, err)

	rep, err := reports.Generate(&domain.ReportRequest{
		OwnerID:   1,
		Type:      domain.ReportTypeAdminSessions,
		Format:    domain.ReportFormatCSV,
		StartDate: start,
		EndDate:   end,
	}, report.SessionsTable("所有出勤", nil))
	require.NoError(t, err)

	download := func(userID int64) *httptest.ResponseRecorder {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", rep.ID)

		ctx := context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
		ctx = context.WithValue(ctx, MyInfoCtx, &domain.User{ID: userID, Role: domain.RoleVolunteer})
		r := httptest.NewRequest(http.MethodGet, "/reports/"+rep.ID, nil).WithContext(ctx)

		rec := httptest.NewRecorder()
		h.DownloadReport(rec, r)
		return rec
	}

	rec := download(1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ReportFormatCSV.ContentType(), rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "日期")

	rec = download(2)
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "报表不存在或已过期", resp.Message)
}
