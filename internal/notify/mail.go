package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/d60-Lab/groupfeed/config"
	"github.com/d60-Lab/groupfeed/pkg/logger"
)

// Envelope is one outbound email.
type Envelope struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, env Envelope) error
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer { return &SMTPMailer{cfg: cfg} }

func (m *SMTPMailer) Send(ctx context.Context, env Envelope) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(env.Subject)
	msg.SetBodyString(mail.TypeTextPlain, env.Text)
	if env.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, env.HTML)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(20 * time.Second),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// LogMailer only logs; used when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, env Envelope) error {
	logger.Info("simulated email", zap.String("to", env.To), zap.String("subject", env.Subject))
	return nil
}

var emailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; background-color: #f4f4f4; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 20px auto; background-color: #ffffff; border-radius: 8px;">
    <div style="background-color: #db0029; color: #ffffff; padding: 24px; text-align: center;">
      <h1 style="margin: 0; font-size: 22px;">{{.AppName}}</h1>
    </div>
    <div style="padding: 24px; color: #333333; line-height: 1.6;">
      <p>Hi <strong>{{.Username}}</strong>,</p>
      <div style="border-left: 5px solid #db0029; padding: 16px; background-color: #fff5f5;">
        <div style="font-weight: bold; color: #db0029;">{{.Title}}</div>
        <p style="margin-bottom: 0;">{{.Body}}</p>
      </div>
      {{if .Link}}<p style="text-align: center;"><a href="{{.Link}}">Open</a></p>{{end}}
    </div>
    <div style="background-color: #333333; color: #cccccc; padding: 16px; text-align: center; font-size: 12px;">
      <p>You receive this email because notifications are enabled for your account.</p>
      <p>&copy; {{.Year}} {{.AppName}}</p>
    </div>
  </div>
</body>
</html>`))

type emailView struct {
	AppName  string
	Username string
	Title    string
	Body     string
	Link     string
	Year     int
}

func renderEmail(appName, baseURL, to, username string, msg Message) (Envelope, error) {
	link := absoluteLink(baseURL, msg.Link)
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, emailView{
		AppName: appName, Username: username, Title: msg.Title, Body: msg.Body, Link: link, Year: time.Now().Year(),
	})
	if err != nil {
		return Envelope{}, err
	}
	text := fmt.Sprintf("%s: %s", msg.Title, msg.Body)
	if link != "" {
		text += "\n\n" + link
	}
	return Envelope{To: to, Subject: msg.Title, Text: text, HTML: buf.String()}, nil
}
