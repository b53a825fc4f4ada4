package reminders

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"aerial/internal/catalog"
	"aerial/internal/config"
)

// Sender is the outbound mail surface. language is the recipient's
// preferred language tag and is passed per call.
type Sender interface {
	SendReminder(ctx context.Context, due catalog.ReminderDue, show *catalog.ShowData, channelName, language string) error
	SendSessionRemoved(ctx context.Context, due catalog.ReminderDue, show *catalog.ShowData, channelName, language string) error
	SendAlarmMatches(ctx context.Context, user catalog.User, matches []catalog.SessionWithShow, language string) error
}

// NewSender builds an SMTP sender from the configured account. When no
// account is configured, a noop implementation is returned.
func NewSender(cfg *config.Config) (Sender, error) {
	account := strings.TrimSpace(cfg.Email.Account)
	if account == "" {
		return noopSender{}, nil
	}

	options := []mail.Option{
		mail.WithPort(cfg.Email.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Email.User),
		mail.WithPassword(cfg.Email.Password),
	}
	client, err := mail.NewClient(cfg.Email.Host, options...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &smtpSender{
		client:  client,
		from:    account,
		appName: cfg.Application.Name,
		appLink: cfg.Application.Link,
	}, nil
}

type smtpSender struct {
	client  *mail.Client
	from    string
	appName string
	appLink string
}

func (s *smtpSender) SendReminder(ctx context.Context, due catalog.ReminderDue, show *catalog.ShowData, channelName, language string) error {
	subject, body := reminderMessage(due, show, channelName, language)
	return s.send(ctx, due.User.Email, subject, body)
}

func (s *smtpSender) SendSessionRemoved(ctx context.Context, due catalog.ReminderDue, show *catalog.ShowData, channelName, language string) error {
	subject, body := sessionRemovedMessage(due, show, channelName, language)
	return s.send(ctx, due.User.Email, subject, body)
}

func (s *smtpSender) SendAlarmMatches(ctx context.Context, user catalog.User, matches []catalog.SessionWithShow, language string) error {
	subject, body := alarmMessage(matches, language)
	return s.send(ctx, user.Email, subject, body)
}

func (s *smtpSender) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	if s.appName != "" {
		subject = s.appName + " - " + subject
	}
	msg.Subject(subject)
	if s.appLink != "" {
		body = body + "\n\n" + s.appLink
	}
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

type noopSender struct{}

func (noopSender) SendReminder(context.Context, catalog.ReminderDue, *catalog.ShowData, string, string) error {
	return nil
}

func (noopSender) SendSessionRemoved(context.Context, catalog.ReminderDue, *catalog.ShowData, string, string) error {
	return nil
}

func (noopSender) SendAlarmMatches(context.Context, catalog.User, []catalog.SessionWithShow, string) error {
	return nil
}
