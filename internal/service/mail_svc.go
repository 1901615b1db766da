package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"shopfront_api_202610/internal/config"
)

//go:generate mockgen -destination=mock_mail.go -package=service . Sender

// Sender 通知发送方
// 失败直接返回错误，不做重试
type Sender interface {
	Send(ctx context.Context, to, subject, code string) error
}

// ==================== MailSender SMTP 实现 ====================

type MailSender struct {
	from   string
	dialer *gomail.Dialer
	log    *zerolog.Logger
}

// NewMailSender 创建邮件发送器
func NewMailSender(cfg config.SMTPConfig, log *zerolog.Logger) *MailSender {
	return &MailSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log,
	}
}

func (m *MailSender) Send(ctx context.Context, to, subject, code string) error {
	// gomail 不支持 context，发送前检查一次
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", codeText(subject, code))
	msg.AddAlternative("text/html", codeHTML(subject, code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.log.Debug().Str("to", to).Str("subject", subject).Msg("verification mail sent")
	return nil
}

func codeText(subject, code string) string {
	return fmt.Sprintf("%s\n\nYour verification code is: %s\n", subject, code)
}

func codeHTML(subject, code string) string {
	return fmt.Sprintf(`<p>%s</p><p>Your verification code is: <strong>%s</strong></p>`, subject, code)
}
