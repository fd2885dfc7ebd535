package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/blockedby/dosimetria-portal/internal/config"
	"github.com/blockedby/dosimetria-portal/internal/logger"
	"github.com/blockedby/dosimetria-portal/internal/mailer"
	"github.com/blockedby/dosimetria-portal/internal/models"
)

// EmailNotifier sends the operations summary and the customer confirmation
// over a single relay session.
type EmailNotifier struct {
	cfg      config.MailConfig
	dialer   mailer.Dialer
	composer *Composer
	log      *logger.Logger
}

// NewEmailNotifier creates a notifier. A nil dialer builds an SMTP dialer
// from cfg.
func NewEmailNotifier(cfg config.MailConfig, dialer mailer.Dialer, composer *Composer, log *logger.Logger) *EmailNotifier {
	if dialer == nil {
		dialer = mailer.NewSMTPDialer(SMTPConfig(cfg))
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EmailNotifier{
		cfg:      cfg,
		dialer:   dialer,
		composer: composer,
		log:      log,
	}
}

// SMTPConfig maps mail settings onto relay parameters.
func SMTPConfig(cfg config.MailConfig) mailer.Config {
	return mailer.Config{
		Host:     cfg.Server,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout(),
	}
}

// Notify delivers both messages. Failures are folded into the outcome.
func (n *EmailNotifier) Notify(ctx context.Context, d *models.DispatchRequest) NotificationOutcome {
	if !n.cfg.Complete() {
		return skipped("mail configuration incomplete")
	}
	if d == nil {
		return failed("nil dispatch request")
	}

	from := strings.TrimSpace(n.cfg.Username)

	ops, err := n.composer.Operations(d, from, n.cfg.LogisticsAddresses())
	if err != nil {
		return failed(err.Error())
	}

	var customer *mailer.Message
	if present(d.Email) {
		customer, err = n.composer.Customer(d, from)
		if err != nil {
			return failed(err.Error())
		}
	}

	sess, err := n.dialer.Dial(ctx)
	if err != nil {
		return failed(fmt.Sprintf("open session: %v", err))
	}
	defer func() {
		if err := sess.Close(); err != nil {
			n.log.Debug().Err(err).Msg("close mail session")
		}
	}()

	if err := sess.Send(ctx, ops); err != nil {
		return failed(fmt.Sprintf("operations summary: %v", err))
	}

	if customer == nil {
		return sent(1)
	}

	if err := sess.Send(ctx, customer); err != nil {
		return partial(1, fmt.Sprintf("customer confirmation: %v", err))
	}

	return sent(2)
}
