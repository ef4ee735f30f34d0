package handler

import "net/http"

func (h *Handler) GetAllTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.repository.GetAllTags()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取标签成功", tags)
}
