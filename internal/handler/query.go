package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseDateQuery 解析 DD-MM-YYYY 格式的查询参数，缺省时返回 def 所在的日期
func parseDateQuery(r *http.Request, key string, def time.Time) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return calendar.Day(def), nil
	}

	d, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

// parseRangeQuery 优先使用 from 和 to，否则使用 year 和 month 所在的整月，都没有时为 now 所在的月份
func parseRangeQuery(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	q := r.URL.Query()

	if q.Get("from") != "" || q.Get("to") != "" {
		from, err := parseDateQuery(r, "from", now)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to, err := parseDateQuery(r, "to", from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, errors.New("结束日期不能早于开始日期")
		}
		return from, to, nil
	}

	year, month := now.Year(), now.Month()
	if s := q.Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 || y > 9999 {
			return time.Time{}, time.Time{}, errors.New("年份无效")
		}
		year = y
	}
	if s := q.Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			return time.Time{}, time.Time{}, errors.New("月份无效")
		}
		month = time.Month(m)
	}

	ref := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return calendar.MonthStart(ref), calendar.MonthEnd(ref), nil
}

// parsePageQuery 解析 page 和 size，page 从 1 开始
func parsePageQuery(r *http.Request) (int, int, error) {
	q := r.URL.Query()

	page, size := 1, defaultPageSize
	if s := q.Get("page"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil || p < 1 {
			return 0, 0, errors.New("页码无效")
		}
		page = p
	}
	if s := q.Get("size"); s != "" {
		ps, err := strconv.Atoi(s)
		if err != nil || ps < 1 || ps > maxPageSize {
			return 0, 0, errors.New("每页数量无效")
		}
		size = ps
	}

	return page, size, nil
}

type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}
