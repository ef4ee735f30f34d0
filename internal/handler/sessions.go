package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

func (h *Handler) GetWorkSessions(w http.ResponseWriter, r *http.Request) {
	work := r.Context().Value(WorkCtx).(*domain.Work)

	sessions, err := h.repository.GetWorkSessions(work.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取出勤记录成功", sessions)
}

// UpdateWorkSessionStatus 供应方确认志愿者是否出勤，只能确认已经到来的出勤
func (h *Handler) UpdateWorkSessionStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required,oneof=PENDING ACCEPTED REJECTED"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	s := r.Context().Value(WorkSessionCtx).(*domain.WorkSession)

	if s.SessionDate.After(calendar.Day(h.now())) {
		h.errorResponse(w, r, "出勤日期尚未到来")
		return
	}

	s.Status = domain.WorkSessionStatus(req.Status)
	if err := h.repository.UpdateWorkSessionStatus(s); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "出勤记录已被修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新出勤状态成功", s)
}

func (h *Handler) GetMySessions(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	from, to, err := parseRangeQuery(r, h.now())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	sessions, err := h.repository.GetVolunteerSessions(myInfo.ID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取出勤记录成功", sessions)
}
