package service

import (
	"context"
	"crypto/tls"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// MailConfig SMTP 配置，Host 为空时不发送邮件而是写日志
type MailConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string
	InsecureSkipVerify bool
}

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer, or a logging mailer when SMTP is not configured
// NewMailer 返回 SMTP 发送器；未配置 SMTP 时返回只写日志的发送器
func NewMailer(cfg MailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		return &logMailer{logger: logger}
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true}
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &smtpMailer{dialer: d, from: from, logger: logger}
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return err
	}
	m.logger.Info("mail sent", zap.String("subject", subject))
	return nil
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Warn("smtp not configured, mail written to log",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
