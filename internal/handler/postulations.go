package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/repository"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/utils"
)

type postulationDatesRequest struct {
	StartDate domain.Date `json:"startDate"`
	EndDate   domain.Date `json:"endDate"`
}

// dates 单次工作不需要给出日期，缺省时使用工作本身的日期
func (req postulationDatesRequest) dates(work *domain.Work) (domain.Date, domain.Date) {
	start, end := req.StartDate, req.EndDate
	if work.Type == calendar.WorkTypeSession || start.IsZero() && end.IsZero() {
		return work.StartDate, work.EndDate
	}
	return start, end
}

// checkPostulation 检查申请的日期以及和志愿者其他有效申请的冲突，skipID 为正在编辑的申请。
// 不通过时已经写好了响应
func (h *Handler) checkPostulation(w http.ResponseWriter, r *http.Request, work *domain.Work, volunteerID int64, start, end domain.Date, skipID int64) bool {
	if err := utils.ValidatePostulationDates(work, start, end, h.now()); err != nil {
		h.badRequest(w, r, err)
		return false
	}

	active, err := h.repository.GetActivePostulations(volunteerID)
	if err != nil {
		h.internalServerError(w, r, err)
		return false
	}

	if err := utils.CheckPostulationConflict(work, start, end, active, skipID); err != nil {
		h.badRequest(w, r, err)
		return false
	}

	return true
}

func (h *Handler) GetMyPostulations(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	page, size, err := parsePageQuery(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	postulations, total, err := h.repository.GetVolunteerPostulations(myInfo.ID, size, (page-1)*size)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取申请列表成功", Page[*domain.Postulation]{
		Items:    postulations,
		Page:     page,
		PageSize: size,
		Total:    total,
	})
}

func (h *Handler) CreatePostulation(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		WorkID int64 `json:"workId" validate:"required,gt=0"`
		postulationDatesRequest
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	work, err := h.repository.GetWorkByID(req.WorkID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "工作不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if work.IsFull() {
		h.errorResponse(w, r, "该工作已招满")
		return
	}

	start, end := req.dates(work)
	if !h.checkPostulation(w, r, work, myInfo.ID, start, end, 0) {
		return
	}

	p := &domain.Postulation{
		WorkID:            work.ID,
		WorkName:          work.Name,
		VolunteerID:       myInfo.ID,
		VolunteerName:     myInfo.FullName,
		VolunteerUsername: myInfo.Username,
		StartDate:         start,
		EndDate:           end,
	}

	if err := h.repository.CreatePostulation(p); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "您已经申请过该工作")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "申请成功", p)
}

// UpdatePostulation 修改待处理申请的日期
func (h *Handler) UpdatePostulation(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	p := r.Context().Value(PostulationCtx).(*domain.Postulation)

	var req postulationDatesRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if p.Status != domain.PostulationStatusPending {
		h.errorResponse(w, r, "只能修改待处理的申请")
		return
	}

	work, err := h.repository.GetWorkByID(p.WorkID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	start, end := req.dates(work)
	if !h.checkPostulation(w, r, work, myInfo.ID, start, end, p.ID) {
		return
	}

	p.StartDate, p.EndDate = start, end
	if err := h.repository.UpdatePostulationDates(p); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "申请已被处理或已被修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "修改申请成功", p)
}

func (h *Handler) DeletePostulation(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PostulationCtx).(*domain.Postulation)

	if err := h.repository.DeletePostulation(p.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "只能取消待处理的申请")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "取消申请成功", nil)
}

func (h *Handler) GetWorkPostulations(w http.ResponseWriter, r *http.Request) {
	work := r.Context().Value(WorkCtx).(*domain.Work)

	status := domain.PostulationStatus(r.URL.Query().Get("status"))
	switch status {
	case "":
		status = domain.PostulationStatusPending
	case "ALL":
		status = ""
	case domain.PostulationStatusPending, domain.PostulationStatusAccepted, domain.PostulationStatusRejected:
	default:
		h.errorResponse(w, r, "申请状态无效")
		return
	}

	postulations, err := h.repository.GetWorkPostulations(work.ID, status)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取申请列表成功", postulations)
}

func (h *Handler) GetPendingPostulations(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	postulations, err := h.repository.GetSupplierPendingPostulations(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取待处理申请成功", postulations)
}

// AcceptPostulation 接受申请并生成出勤记录，工作因此招满时其余待处理申请会被一并拒绝
func (h *Handler) AcceptPostulation(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PostulationCtx).(*domain.Postulation)
	work := r.Context().Value(WorkCtx).(*domain.Work)

	if p.Status != domain.PostulationStatusPending {
		h.errorResponse(w, r, "申请已被处理")
		return
	}

	sessions := utils.BuildWorkSessions(work, p)
	if len(sessions) == 0 {
		h.errorResponse(w, r, "申请的日期内没有任何需要出勤的时间")
		return
	}

	rejected, err := h.repository.AcceptPostulation(p, sessions)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrWorkFull):
			h.errorResponse(w, r, "该工作已招满")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "申请已被处理或已被修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 数据库已经提交，通知失败只记录日志
	for _, notified := range append([]*domain.Postulation{p}, rejected...) {
		if err := h.NotifyPostulationStatus(notified); err != nil {
			slog.Error("无法发送申请状态通知", "postulation_id", notified.ID, "error", err)
		}
	}

	h.successResponse(w, r, "接受申请成功", p)
}

func (h *Handler) RejectPostulation(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PostulationCtx).(*domain.Postulation)

	if p.Status != domain.PostulationStatusPending {
		h.errorResponse(w, r, "申请已被处理")
		return
	}

	if err := h.repository.RejectPostulation(p); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "申请已被处理或已被修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.NotifyPostulationStatus(p); err != nil {
		slog.Error("无法发送申请状态通知", "postulation_id", p.ID, "error", err)
	}

	h.successResponse(w, r, "拒绝申请成功", p)
}
