package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSink emails notifications to the shop operators.
type SMTPSink struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
}

func NewSMTPSink(host string, port int, username, password, from string, to []string) *SMTPSink {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSink{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
		to:   to,
	}
}

func (s *SMTPSink) Name() string { return "smtp" }

func (s *SMTPSink) Send(_ context.Context, n Notification) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + strings.Join(s.to, ", "),
		"Subject: " + n.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		n.Body,
	}, "\r\n")

	if err := smtp.SendMail(s.addr, s.auth, s.from, s.to, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
