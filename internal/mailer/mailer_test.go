package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/pkg/circuitbreaker"
	"github.com/mrz1836/postmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records outgoing emails and returns a scripted error.
type fakeSender struct {
	sent []postmark.Email
	err  error
}

func (f *fakeSender) SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error) {
	f.sent = append(f.sent, email)
	return postmark.EmailResponse{}, f.err
}

func newTestMailer(sender postmarkSender) *PostmarkMailer {
	m := NewPostmarkMailer(&Config{FromAddress: "KUBO AI <hello@kubo-ai.dev>"}, log.NewLoggerWithJSONOutput())
	m.client = sender
	return m
}

func TestPostmarkMailerSend(t *testing.T) {
	ctx := context.Background()

	t.Run("welcome email goes out with the recipient's name", func(t *testing.T) {
		sender := &fakeSender{}
		m := newTestMailer(sender)

		result := m.SendWelcome(ctx, Recipient{Email: "ann@example.com", Name: "Ann"})

		assert.True(t, result.Success)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "ann@example.com", sender.sent[0].To)
		assert.Equal(t, welcomeSubject, sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].HTMLBody, "¡Hola Ann!")
		assert.True(t, sender.sent[0].TrackOpens)
	})

	t.Run("a missing name falls back to the generic greeting", func(t *testing.T) {
		sender := &fakeSender{}
		m := newTestMailer(sender)

		result := m.SendWelcome(ctx, Recipient{Email: "ann@example.com"})

		assert.True(t, result.Success)
		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].HTMLBody, "Desarrollador")
	})

	t.Run("launch email carries the personal access code", func(t *testing.T) {
		sender := &fakeSender{}
		m := newTestMailer(sender)

		result := m.SendLaunch(ctx, Recipient{Email: "ann@example.com", Name: "Ann Lee"})

		assert.True(t, result.Success)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, launchSubject, sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].HTMLBody, "EARLY-ANNLEE-2025")
	})

	t.Run("provider errors come back in the result", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("postmark: 500 internal")}
		m := newTestMailer(sender)

		result := m.SendWelcome(ctx, Recipient{Email: "ann@example.com", Name: "Ann"})

		assert.False(t, result.Success)
		assert.Error(t, result.Err)
		assert.False(t, result.NeedsDomainVerification)
	})

	t.Run("unverified sender errors are flagged as configuration problems", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("you must have a confirmed Sender Signature")}
		m := newTestMailer(sender)

		result := m.SendLaunch(ctx, Recipient{Email: "ann@example.com", Name: "Ann"})

		assert.False(t, result.Success)
		assert.True(t, result.NeedsDomainVerification)
	})

	t.Run("an open circuit fails sends without calling the provider", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("postmark: 500 internal")}
		m := newTestMailer(sender)

		// Enough consecutive failures to trip the breaker.
		for i := 0; i < circuitbreaker.DefaultConfig().FailureThreshold; i++ {
			result := m.SendWelcome(ctx, Recipient{Email: "ann@example.com", Name: "Ann"})
			assert.False(t, result.Success)
		}
		attempted := len(sender.sent)

		result := m.SendWelcome(ctx, Recipient{Email: "ann@example.com", Name: "Ann"})

		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Err, circuitbreaker.ErrCircuitOpen)
		assert.False(t, result.NeedsDomainVerification)
		assert.Len(t, sender.sent, attempted)
	})

	t.Run("an unconfigured mailer skips sends without crashing", func(t *testing.T) {
		m := NewPostmarkMailer(&Config{}, log.NewLoggerWithJSONOutput())

		result := m.SendWelcome(ctx, Recipient{Email: "ann@example.com", Name: "Ann"})

		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Err, ErrNotConfigured)
	})
}

func TestAccessCodeFromName(t *testing.T) {
	assert.Equal(t, "ANNLEE", accessCodeFromName("Ann Lee"))
	assert.Equal(t, "DESARROLLADOR", accessCodeFromName("Desarrollador"))
}
