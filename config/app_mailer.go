package config

import (
	"os"

	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/internal/mailer"
)

// NewMailer builds the Postmark-backed mailer from POSTMARK_SERVER_TOKEN,
// POSTMARK_ACCOUNT_TOKEN, and FROM_EMAIL. With no server token the mailer
// runs in a disabled mode: sends report a failure result and the service
// keeps working, since email delivery is best-effort everywhere it is used.
func NewMailer(logger *log.Logger) mailer.Mailer {
	cfg := &mailer.Config{
		ServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
		AccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
		FromAddress:  os.Getenv("FROM_EMAIL"),
	}

	if cfg.ServerToken == "" {
		logger.Warn("POSTMARK_SERVER_TOKEN not set; emails will be skipped")
	} else {
		logger.Info("Mailer configured", "from", cfg.FromAddress)
	}

	return mailer.NewPostmarkMailer(cfg, logger)
}
