package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/trancuong31/EnviroMonitor/internal/config"
)

// Mailer 邮件发送接口（投递器按收件人逐个调用，每次调用独立失败）
type Mailer interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

// SMTPMailer 基于 SMTP 的 Mailer 实现
// 超时由 net/smtp 的底层连接负责；上层把超时当作普通发送失败处理
type SMTPMailer struct {
	cfg    *config.EmailConfig
	logger *zap.Logger
}

// NewSMTPMailer 创建 SMTP Mailer
func NewSMTPMailer(cfg *config.EmailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

var _ Mailer = (*SMTPMailer)(nil)

// Send 发送一封 HTML 邮件
// 非法收件人地址按单收件人投递失败处理，不影响其他收件人
func (m *SMTPMailer) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	if _, err := mail.ParseAddress(recipient); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", recipient, err)
	}

	msg := buildMIMEMessage(m.cfg.From, recipient, subject, htmlBody)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}

	m.logger.Info("Email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
	)
	return nil
}

// buildMIMEMessage 组装带 HTML 正文的 MIME 报文
func buildMIMEMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: EnviroMonitor <" + from + ">\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
