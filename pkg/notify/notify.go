// Package notify delivers user-facing messages such as booking reminders and
// verification codes. The driver is picked from configuration.
package notify

import (
	"context"
	"fmt"

	"interview-booking/pkg/utils"

	"go.uber.org/zap"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// New builds the notifier named by cfg.Notifier.Driver. The returned close func
// releases driver resources and is never nil.
func New(cfg *utils.Config, log *zap.Logger) (Notifier, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Notifier.Driver {
	case "", "log":
		return NewLogNotifier(log), noop, nil
	case "smtp":
		n, err := NewSMTPNotifier(cfg.Email, log)
		if err != nil {
			return nil, noop, err
		}
		return n, noop, nil
	case "amqp":
		n, err := NewAMQPNotifier(cfg.AMQP, log)
		if err != nil {
			return nil, noop, err
		}
		return n, n.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown notifier driver %q", cfg.Notifier.Driver)
	}
}
