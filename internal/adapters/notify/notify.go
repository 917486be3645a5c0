package notify

import (
	"context"
	"fmt"

	"github.com/jmorelos/accounts-backend/internal/infra/config"
	"go.uber.org/zap"
)

// Notifier delivers a plaintext reset token to a destination address,
// out-of-band. Implementations are not trusted to always succeed; callers
// decide what a failed delivery means.
type Notifier interface {
	Send(ctx context.Context, to, token string) error
}

// LogNotifier writes the token to the log instead of sending it. Intended
// for development and tests.
type LogNotifier struct {
	log    *zap.Logger
	sender string
}

func NewLogNotifier(log *zap.Logger, sender string) *LogNotifier {
	return &LogNotifier{log: log, sender: sender}
}

func (n *LogNotifier) Send(_ context.Context, to, token string) error {
	n.log.Info("password reset token issued",
		zap.String("from", n.sender),
		zap.String("to", to),
		zap.String("token", token),
	)
	return nil
}

// New builds a Notifier from configuration. Transport settings are explicit
// constructor input; nothing is read from process-global state here.
func New(cfg *config.Config, log *zap.Logger) (Notifier, error) {
	switch cfg.EmailProvider {
	case "", "log":
		return NewLogNotifier(log, cfg.EmailSender), nil
	case "smtp":
		if cfg.SMTPAddress == "" {
			return nil, fmt.Errorf("email provider is 'smtp' but SMTP_ADDRESS is not set")
		}
		return NewSMTPNotifier(cfg.SMTPAddress, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailSender), nil
	case "resend":
		if cfg.EmailAPIKey == "" {
			return nil, fmt.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
		return NewResendNotifier(cfg.EmailAPIKey, cfg.EmailSender), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.EmailProvider)
	}
}
