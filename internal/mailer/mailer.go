// Package mailer sends the waitlist's transactional email through Postmark.
// Delivery is always best-effort: callers receive a SendResult and decide
// what to log, but a failed send must never fail the surrounding workflow.
package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/pkg/circuitbreaker"
	"github.com/mrz1836/postmark"
)

// Recipient identifies who an email goes to.
type Recipient struct {
	Email string
	Name  string
}

// SendResult reports the outcome of a single send attempt.
// NeedsDomainVerification flags the provider's sender-domain-not-verified
// error, which is a configuration problem rather than a transient fault and
// is therefore not worth retrying.
type SendResult struct {
	Success                 bool
	Err                     error
	NeedsDomainVerification bool
}

// Mailer is the notification surface the waitlist workflows depend on.
type Mailer interface {
	SendWelcome(ctx context.Context, to Recipient) SendResult
	SendLaunch(ctx context.Context, to Recipient) SendResult
}

// postmarkSender is the slice of the Postmark client the mailer uses.
// Narrowed to an interface so tests can substitute a fake transport.
type postmarkSender interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

type Config struct {
	ServerToken  string
	AccountToken string
	FromAddress  string
}

// ErrNotConfigured is returned in SendResult.Err when no server token is set.
var ErrNotConfigured = errors.New("email service not configured")

type PostmarkMailer struct {
	client  postmarkSender
	from    string
	logger  *log.Logger
	breaker circuitbreaker.CircuitBreaker
}

// NewPostmarkMailer builds the production mailer. A nil client (no server
// token) yields a mailer whose sends report ErrNotConfigured; the service
// keeps running without email.
func NewPostmarkMailer(cfg *Config, logger *log.Logger) *PostmarkMailer {
	var client postmarkSender
	if strings.TrimSpace(cfg.ServerToken) != "" {
		client = postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	}

	from := strings.TrimSpace(cfg.FromAddress)
	if from == "" {
		from = "KUBO AI <hello@kubo-ai.dev>"
	}

	return &PostmarkMailer{
		client:  client,
		from:    from,
		logger:  logger,
		breaker: circuitbreaker.NewCircuitBreaker(nil),
	}
}

func (m *PostmarkMailer) SendWelcome(ctx context.Context, to Recipient) SendResult {
	body, err := renderWelcomeEmail(displayName(to))
	if err != nil {
		return SendResult{Success: false, Err: err}
	}

	return m.send(ctx, to, welcomeSubject, body)
}

func (m *PostmarkMailer) SendLaunch(ctx context.Context, to Recipient) SendResult {
	body, err := renderLaunchEmail(displayName(to))
	if err != nil {
		return SendResult{Success: false, Err: err}
	}

	return m.send(ctx, to, launchSubject, body)
}

func (m *PostmarkMailer) send(ctx context.Context, to Recipient, subject, htmlBody string) SendResult {
	if m.client == nil {
		m.logger.Warn("Email send skipped: mailer not configured", "to", to.Email)
		return SendResult{Success: false, Err: ErrNotConfigured}
	}

	err := m.breaker.Call(func() error {
		_, sendErr := m.client.SendEmail(ctx, postmark.Email{
			From:       m.from,
			To:         to.Email,
			Subject:    subject,
			HTMLBody:   htmlBody,
			TrackOpens: true,
		})
		return sendErr
	})

	if err != nil {
		result := SendResult{
			Success:                 false,
			Err:                     err,
			NeedsDomainVerification: isDomainVerificationError(err),
		}
		m.logger.Error("Email send failed",
			"to", to.Email,
			"subject", subject,
			"needs_domain_verification", result.NeedsDomainVerification,
			"error", err,
		)
		return result
	}

	m.logger.Info("Email sent", "to", to.Email, "subject", subject)
	return SendResult{Success: true}
}

func displayName(to Recipient) string {
	if strings.TrimSpace(to.Name) != "" {
		return to.Name
	}
	return "Desarrollador"
}

// isDomainVerificationError recognizes the provider's unverified-sender
// responses by message, matching both Postmark's "sender signature" wording
// and generic "verify a domain" phrasing.
func isDomainVerificationError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sender signature") ||
		strings.Contains(msg, "verify a domain") ||
		strings.Contains(msg, "domain")
}
