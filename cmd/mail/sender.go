package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailKind struct {
	template string
	subject  string
}

var mailKinds = map[string]mailKind{
	domain.MailTypeCreateUser:         {"new_account_email.html", "ECNC 志愿日历 - 账户信息"},
	domain.MailTypeResetPassword:      {"reset_password_otp_email.html", "ECNC 志愿日历 - 重置密码"},
	domain.MailTypeChangeEmail:        {"change_email_email.html", "ECNC 志愿日历 - 修改邮箱"},
	domain.MailTypeAdminResetPassword: {"admin_reset_password_email.html", "ECNC 志愿日历 - 密码已重置"},
	domain.MailTypePostulationStatus:  {"postulation_status_email.html", "ECNC 志愿日历 - 申请状态更新"},
}

// composer 把队列里的消息渲染成邮件，模板在启动时一次性解析
type composer struct {
	from      string
	templates map[string]*template.Template
}

func newComposer(from, dir string) (*composer, error) {
	c := &composer{
		from:      from,
		templates: make(map[string]*template.Template, len(mailKinds)),
	}

	for typ, kind := range mailKinds {
		tmpl, err := template.ParseFiles(filepath.Join(dir, kind.template))
		if err != nil {
			return nil, fmt.Errorf("无法解析 %s 的邮件模板: %w", typ, err)
		}
		c.templates[typ] = tmpl
	}

	return c, nil
}

// compose 返回的错误都不可重试，消息应当直接丢弃
func (c *composer) compose(body []byte) (*mail.Msg, *domain.MailMessage, error) {
	message := &domain.MailMessage{}
	if err := json.Unmarshal(body, message); err != nil {
		return nil, nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	kind, ok := mailKinds[message.Type]
	if !ok {
		return nil, message, fmt.Errorf("不支持的邮件类型 %q", message.Type)
	}

	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return nil, message, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(message.To); err != nil {
		return nil, message, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := m.SetBodyHTMLTemplate(c.templates[message.Type], message.Data); err != nil {
		return nil, message, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	m.Subject(kind.subject)

	return m, message, nil
}
