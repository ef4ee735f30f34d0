package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/repository"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/utils"
)

// validateWork 检查小时块和日期，同时规范化单次工作的星期和结束日期
func (h *Handler) validateWork(work *domain.Work, today time.Time) error {
	if err := utils.ValidateWorkHours(work, h.config.Calendar.Allowed()); err != nil {
		return err
	}
	return utils.ValidateWorkDates(work, today)
}

// workConstraintError 把工作表的约束冲突转换成提示信息
func (h *Handler) workConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "works_supplier_id_name_key":
			h.badRequest(w, r, errors.New("已经存在同名的工作"))
		case "works_date_range_check":
			h.badRequest(w, r, errors.New("工作的开始日期不能晚于结束日期"))
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, repository.ErrWorkHasPostulations):
		h.errorResponse(w, r, "工作已有待处理或已接受的申请，无法修改")
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "工作已被修改，请刷新后重试")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) CreateWork(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name             string                 `json:"name" validate:"required,max=128"`
		Description      string                 `json:"description"`
		Type             string                 `json:"type" validate:"required,oneof=SESSION RECURRING"`
		StartDate        domain.Date            `json:"startDate"`
		EndDate          domain.Date            `json:"endDate"`
		VolunteersNeeded int32                  `json:"volunteersNeeded" validate:"required,gte=1"`
		Tags             []string               `json:"tags" validate:"omitempty,dive,required,max=64"`
		Hours            []domain.WorkHourBlock `json:"hours" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	work := &domain.Work{
		Name:             req.Name,
		Description:      req.Description,
		Type:             calendar.WorkType(req.Type),
		SupplierID:       myInfo.ID,
		SupplierName:     myInfo.FullName,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		VolunteersNeeded: req.VolunteersNeeded,
		Tags:             compactTags(req.Tags),
		Hours:            req.Hours,
	}

	if err := h.validateWork(work, h.now()); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateWork(work); err != nil {
		h.workConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建工作成功", work)
}

func (h *Handler) GetSupplierWorks(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	from, to, err := parseRangeQuery(r, h.now())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	works, err := h.repository.GetSupplierWorks(myInfo.ID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工作列表成功", works)
}

func (h *Handler) GetWork(w http.ResponseWriter, r *http.Request) {
	work := r.Context().Value(WorkCtx).(*domain.Work)
	h.successResponse(w, r, "获取工作成功", work)
}

// UpdateWork 只修改请求中给出的字段，工作有待处理或已接受的申请时拒绝修改
func (h *Handler) UpdateWork(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name             *string                `json:"name" validate:"omitempty,min=1,max=128"`
		Description      *string                `json:"description"`
		Type             *string                `json:"type" validate:"omitempty,oneof=SESSION RECURRING"`
		StartDate        *domain.Date           `json:"startDate"`
		EndDate          *domain.Date           `json:"endDate"`
		VolunteersNeeded *int32                 `json:"volunteersNeeded" validate:"omitempty,gte=1"`
		Tags             []string               `json:"tags" validate:"omitempty,dive,required,max=64"`
		Hours            []domain.WorkHourBlock `json:"hours"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	work := r.Context().Value(WorkCtx).(*domain.Work)

	today := calendar.Day(h.now())
	if work.IsFinished(today) {
		h.errorResponse(w, r, "工作已经结束，无法修改")
		return
	}
	// 已经开始的工作可以保留原来的开始日期
	if work.StartDate.Before(today) {
		today = work.StartDate.Time
	}

	if req.Name != nil {
		work.Name = *req.Name
	}
	if req.Description != nil {
		work.Description = *req.Description
	}
	if req.Type != nil {
		work.Type = calendar.WorkType(*req.Type)
	}
	if req.StartDate != nil {
		work.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		work.EndDate = *req.EndDate
	}
	if req.VolunteersNeeded != nil {
		work.VolunteersNeeded = *req.VolunteersNeeded
	}
	if req.Tags != nil {
		work.Tags = compactTags(req.Tags)
	}
	if req.Hours != nil {
		work.Hours = req.Hours
	}

	if err := h.validateWork(work, today); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateWork(work); err != nil {
		h.workConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新工作成功", work)
}

func (h *Handler) DeleteWork(w http.ResponseWriter, r *http.Request) {
	work := r.Context().Value(WorkCtx).(*domain.Work)

	if err := h.repository.DeleteWork(work.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除工作成功", nil)
}

// GetVolunteerWorks 返回志愿者可以看到的工作，preferred=true 时按偏好筛选
func (h *Handler) GetVolunteerWorks(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	from, to, err := parseRangeQuery(r, h.now())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	works, err := h.volunteerWorks(myInfo.ID, from, to, r.URL.Query().Get("preferred") == "true")
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if tag := r.URL.Query().Get("tag"); tag != "" {
		works = slices.DeleteFunc(works, func(w *domain.VolunteerWork) bool {
			return !slices.Contains(w.Tags, tag)
		})
	}

	h.successResponse(w, r, "获取工作列表成功", works)
}

func (h *Handler) volunteerWorks(volunteerID int64, from, to time.Time, preferred bool) ([]*domain.VolunteerWork, error) {
	works, err := h.repository.GetVolunteerWorks(volunteerID, from, to)
	if err != nil {
		return nil, err
	}
	works = utils.FilterVisibleWorks(works)

	if !preferred {
		return works, nil
	}

	prefs, err := h.repository.GetUserPreferences(volunteerID)
	if err != nil {
		return nil, err
	}
	return utils.FilterPreferredWorks(works, prefs), nil
}

// compactTags 去掉重复的标签，保持原有顺序
func compactTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}
