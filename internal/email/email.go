// Package email sends plain-text mail over SMTP.
package email

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Configured reports whether SMTP delivery is set up. When it is not, the
// callers log the message instead (dev mode).
func (c SMTPConfig) Configured() bool { return c.Host != "" }

// SendText delivers a plain-text message to a single recipient.
func SendText(cfg SMTPConfig, to, subject, body string) error {
	if !cfg.Configured() {
		return errors.New("email: smtp host not configured")
	}

	from := cfg.From
	if from == "" {
		from = cfg.User
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var a smtp.Auth
	if cfg.User != "" {
		a = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	return smtp.SendMail(addr, a, from, []string{to}, []byte(b.String()))
}
