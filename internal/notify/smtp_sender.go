package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender envia el mensaje por correo via SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	subject  string
	useTLS   bool
}

func NewSMTPSender(host string, port int, username, password, from, fromName string, useTLS bool) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		subject:  "Your passcode",
		useTLS:   useTLS,
	}, nil
}

func (s *SMTPSender) Send(_ context.Context, to, message string) (Result, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return Result{}, ErrRecipientRequired
	}

	msg := buildMessage(s.from, s.fromName, to, s.subject, message)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if !s.useTLS {
		if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
			return Result{}, err
		}
		return Result{Channel: "email", Status: "sent"}, nil
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return Result{}, err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return Result{}, err
		}
	}
	if err := client.Mail(s.from); err != nil {
		return Result{}, err
	}
	if err := client.Rcpt(to); err != nil {
		return Result{}, err
	}
	writer, err := client.Data()
	if err != nil {
		return Result{}, err
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		_ = writer.Close()
		return Result{}, err
	}
	if err := writer.Close(); err != nil {
		return Result{}, err
	}
	return Result{Channel: "email", Status: "sent"}, nil
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
