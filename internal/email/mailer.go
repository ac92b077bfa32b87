package email

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strings"
	"time"

	"authsvc/internal/observability/logging"

	"github.com/samber/oops"
)

// Message is one rendered outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	From        string
	FrontendURL string
	Brand       string
	Now         func() time.Time
}

// Mailer renders the account emails and hands them to a Transport.
type Mailer struct {
	transport Transport
	cfg       Config
}

func NewMailer(transport Transport, cfg Config) *Mailer {
	if cfg.Brand == "" {
		cfg.Brand = "Influencer Marketing"
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Mailer{transport: transport, cfg: cfg}
}

func (m *Mailer) SendVerification(ctx context.Context, to, token string) error {
	return m.send(ctx, to, "Verify Your Email", verificationTmpl, pageData{
		Link:   m.link("/verify-email", token),
		Expiry: "10 minutes",
	})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	return m.send(ctx, to, "Password Reset Request", resetTmpl, pageData{
		Link:   m.link("/reset-password", token),
		Expiry: "1 hour",
	})
}

func (m *Mailer) SendPasswordChanged(ctx context.Context, to string) error {
	return m.send(ctx, to, "Password Changed Successfully", changedTmpl, pageData{
		Link: m.cfg.FrontendURL + "/login",
	})
}

func (m *Mailer) link(path, token string) string {
	return m.cfg.FrontendURL + path + "?token=" + url.QueryEscape(token)
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data pageData) error {
	data.Brand = m.cfg.Brand
	data.Title = subject
	data.Year = m.now().Year()

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return oops.Code("EMAIL_RENDER_FAILED").With("template", tmpl.Name()).Wrap(err)
	}
	msg := Message{From: m.cfg.From, To: to, Subject: subject, HTML: body.String()}
	if err := m.transport.Send(ctx, msg); err != nil {
		return oops.Code("EMAIL_SEND_FAILED").With("subject", subject).Wrap(err)
	}
	logging.FromContext(ctx).Info("email sent", "to", to, "subject", subject)
	return nil
}

func (m *Mailer) now() time.Time {
	if m.cfg.Now != nil {
		return m.cfg.Now()
	}
	return time.Now()
}
