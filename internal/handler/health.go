package handler

import (
	"net/http"
)

type healthStatus struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
	RabbitMQ string `json:"rabbitmq"`
}

func statusOf(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.redisContext()
	defer cancel()

	status := healthStatus{
		Database: statusOf(h.repository.Ping()),
		Redis:    statusOf(h.redisClient.Ping(ctx).Err()),
		RabbitMQ: "ok",
	}
	if h.mailChannel.IsClosed() {
		status.RabbitMQ = "closed"
	}

	if status.Database != "ok" || status.Redis != "ok" || status.RabbitMQ != "ok" {
		h.writeJSON(w, r, http.StatusServiceUnavailable, Response{
			Success: false,
			Message: "服务不可用",
			Data:    status,
		})
		return
	}

	h.successResponse(w, r, "服务正常", status)
}
