// Package notify delivers account mail to store owners.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

// Mailer sends credential-recovery mail. Delivery mechanics stay behind
// this seam so handlers and services never touch SMTP directly.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, storeName, link string) error
}

// SMTPConfig holds mail-relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, storeName, link string) error {
	msg := buildResetMessage(m.cfg.From, to, storeName, link)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("notify.SendPasswordReset: %w", err)
	}
	return nil
}

// buildResetMessage assembles the full RFC 5322 message, headers included.
func buildResetMessage(from, to, storeName, link string) []byte {
	subject := "Recuperacao de senha - " + storeName
	body := fmt.Sprintf(`<html><body>
		<h2>Recuperacao de senha</h2>
		<p>Uma troca de senha foi solicitada para a loja %s.</p>
		<p><a href="%s">Clique aqui para criar uma nova senha</a></p>
		<p>Ou copie este link no navegador: %s</p>
		<p>O link expira em 1 hora. Se voce nao pediu a troca, ignore este e-mail.</p>
	</body></html>`, storeName, link, link)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)
	return []byte(msg)
}

// LogMailer logs recovery links instead of sending them. Used when no mail
// relay is configured (local development).
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, to, storeName, link string) error {
	log.Info().
		Str("to", to).
		Str("store", storeName).
		Str("link", link).
		Msg("password reset link (mail relay not configured)")
	return nil
}
