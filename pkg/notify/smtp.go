package notify

import (
	"context"
	"fmt"

	"interview-booking/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type SMTPNotifier struct {
	client *mail.Client
	from   string
	log    *zap.Logger
}

func NewSMTPNotifier(cfg utils.EmailConfig, log *zap.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp notifier needs SMTP_HOST and EMAIL_FROM")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPNotifier{
		client: client,
		from:   cfg.From,
		log:    log.With(zap.String("notifier", "smtp")),
	}, nil
}

func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(n.from); err != nil {
		return fmt.Errorf("set sender %s: %w", n.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set recipient %s: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := n.client.DialAndSendWithContext(ctx, m); err != nil {
		n.log.Error("Failed to send email", zap.Error(err), zap.String("to", msg.To))
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}

	n.log.Debug("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
