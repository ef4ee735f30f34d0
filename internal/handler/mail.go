package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/platform"
)

// publishMail 把邮件放入消息队列，由 mail 服务负责发送
func (h *Handler) publishMail(msg domain.MailMessage) error {
	mailData, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		platform.MailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	)
}

// NotifyPostulationStatus 通知志愿者申请已被接受或拒绝
func (h *Handler) NotifyPostulationStatus(p *domain.Postulation) error {
	if p.VolunteerEmail == "" {
		return nil
	}

	return h.publishMail(domain.MailMessage{
		Type: domain.MailTypePostulationStatus,
		To:   p.VolunteerEmail,
		Data: domain.PostulationStatusMailData{
			FullName:  p.VolunteerName,
			WorkName:  p.WorkName,
			Status:    p.Status,
			StartDate: p.StartDate.String(),
			EndDate:   p.EndDate.String(),
		},
	})
}
