package mailer

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"

	"github.com/tauhid97k/voters-info-api/internal/telemetry/tracing"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPParams struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	from   string
	client *mail.Client
}

func NewSMTPSender(params SMTPParams) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(params.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if params.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(params.Username),
			mail.WithPassword(params.Password),
		)
	}

	client, err := mail.NewClient(params.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("new smtp client: %w", err)
	}

	return &SMTPSender{
		from:   params.From,
		client: client,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "mailer.smtp.send")
	defer span.End()

	msg, err := newMessage(s.from, to, subject, body)
	if err != nil {
		return err
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		span.RecordError(err)
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}

func newMessage(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set mail from [%s]: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set mail to [%s]: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// LogSender only logs outgoing mail, for development setups without SMTP.
type LogSender struct {
	from string
}

func NewLogSender(from string) *LogSender {
	return &LogSender{from: from}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	msg, err := newMessage(s.from, to, subject, body)
	if err != nil {
		return err
	}
	log.Infof("mail [%s] -> %v: %s", subject, msg.GetToString(), body)
	return nil
}
