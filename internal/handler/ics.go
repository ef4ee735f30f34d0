package handler

import (
	"fmt"
	"net/http"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

// GetVolunteerICS 导出志愿者所有已被接受的工作
func (h *Handler) GetVolunteerICS(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	accepted, err := h.repository.GetVolunteerAcceptedWorks(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	content, err := h.icsExporter.Export(fmt.Sprintf("%s的志愿工作", myInfo.FullName), accepted)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="volunteer.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content)); err != nil {
		h.logInternalServerError(r, err)
	}
}
