// Package mail renders the transactional templates and sends them over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/logging"
	"gopkg.in/gomail.v2"
)

const (
	ActivationTemplate        = "activation-mail.html"
	OrderConfirmationTemplate = "order-confirmation.html"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Message struct {
	To       string
	Subject  string
	Template string
	Data     any
}

type ActivationData struct {
	Name           string
	ActivationCode string
}

type OrderConfirmationData struct {
	Name       string
	OrderID    string
	CourseName string
	Price      float64
	Date       string
}

// Render executes the named template against data.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer renders messages and logs them instead of sending. Used when
// SMTP is not configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	body, err := Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}
	m.log.Info(ctx, "mail not sent, smtp disabled", "to", msg.To, "subject", msg.Subject, "template", msg.Template)
	m.log.Debug(ctx, "mail body", "to", msg.To, "body", body)
	return nil
}
