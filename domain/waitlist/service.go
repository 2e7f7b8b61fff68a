package waitlist

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/kuboai/waitlist-api/internal/i18n"
	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/internal/mailer"
	"github.com/kuboai/waitlist-api/internal/models"
	apperrors "github.com/kuboai/waitlist-api/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	statsCacheKey = "waitlist:stats"
	statsCacheTTL = 10 * time.Second

	// DefaultSendsPerSecond paces the launch broadcast so the email provider
	// is not flooded. 10/s matches the landing page's original ~100ms gap.
	DefaultSendsPerSecond = 10
)

// Cache is the slice of the application cache the waitlist domain uses.
// Nil is a valid value and disables stats caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

type WaitlistService interface {
	// JoinWaitlist runs the registration workflow for one signup: sanitize,
	// validate, reject duplicates, persist, send a best-effort welcome email,
	// and confirm the record.
	JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest) (*WaitlistUserResponse, error)

	// NotifyAllUsers sends the launch email to every confirmed-but-unnotified
	// user. Per-user failures are isolated; the batch always runs to the end
	// unless the context is cancelled.
	NotifyAllUsers(ctx context.Context) (*BroadcastStatsResponse, error)

	// GetStats returns aggregate waitlist counters, served from cache when fresh.
	GetStats(ctx context.Context) (*StatsResponse, error)

	// GetAllUsers returns every signup, oldest first.
	GetAllUsers(ctx context.Context) ([]WaitlistUserResponse, error)
}

type waitlistService struct {
	logger      *log.Logger
	repository  WaitlistRepository
	mail        mailer.Mailer
	cache       Cache
	sendLimiter *rate.Limiter
}

// NewWaitlistService wires the registration and broadcast workflows. cache
// may be nil; sendsPerSecond <= 0 falls back to DefaultSendsPerSecond.
func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, mail mailer.Mailer, cache Cache, sendsPerSecond float64) WaitlistService {
	if sendsPerSecond <= 0 {
		sendsPerSecond = DefaultSendsPerSecond
	}

	return &waitlistService{
		logger:      logger,
		repository:  repository,
		mail:        mail,
		cache:       cache,
		sendLimiter: rate.NewLimiter(rate.Limit(sendsPerSecond), 1),
	}
}

func (s *waitlistService) JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest) (*WaitlistUserResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)
	loc := i18n.FromContext(ctx)

	if req == nil {
		logger.Error("JoinWaitlist received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	email := strings.ToLower(SanitizeInput(req.Email))
	name := SanitizeInput(req.Name)

	if validation := ValidateEmail(email, loc); !validation.IsValid {
		logger.Info("Email validation failed", "email", email)
		return nil, apperrors.NewInvalidRequestError(validation.Message, nil)
	}

	// Duplicates are an explicit rejection, never a silent merge. The unique
	// index on email backs this check up under concurrent signups.
	existing, err := s.repository.FindUserByEmail(ctx, email)
	if err != nil && apperrors.GetErrorType(err) != apperrors.ErrorTypeNotFound {
		logger.Error("Failed to check for existing signup", "error", err)
		return nil, apperrors.NewInternalServerError(i18n.T(loc, i18n.MsgInternalError), err)
	}
	if existing != nil {
		logger.Info("Duplicate signup rejected", "email", email)
		return nil, apperrors.NewConflictError(i18n.T(loc, i18n.MsgAlreadyRegistered), nil)
	}

	if name == "" {
		name = ExtractNameFromEmail(email)
	}

	source := SanitizeInput(req.Source)
	if source == "" {
		source = models.DefaultSignupSource
	}

	user, err := s.repository.CreateUser(ctx, &models.WaitlistUser{
		Email:  email,
		Name:   name,
		Source: source,
	})
	if err != nil {
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeConflict {
			// Lost a race with a concurrent signup for the same email.
			return nil, apperrors.NewConflictError(i18n.T(loc, i18n.MsgAlreadyRegistered), err)
		}
		logger.Error("Failed to persist signup", "error", err)
		return nil, apperrors.NewInternalServerError(i18n.T(loc, i18n.MsgInternalError), err)
	}

	logger.Info("User added to waitlist", "user_id", user.ID, "source", source)

	// Email delivery is decoupled from registration success: every outcome
	// is logged, none aborts the workflow.
	if result := s.mail.SendWelcome(ctx, mailer.Recipient{Email: email, Name: name}); !result.Success {
		if result.NeedsDomainVerification {
			logger.Warn("Welcome email needs sender domain verification", "email", email)
		} else {
			logger.Error("Welcome email failed, continuing with registration", "email", email, "error", result.Err)
		}
	}

	// Confirmed here means "registration accepted", not "email verified".
	if err := s.repository.MarkConfirmed(ctx, email); err != nil {
		logger.Error("Failed to confirm signup", "email", email, "error", err)
		return nil, apperrors.NewInternalServerError(i18n.T(loc, i18n.MsgInternalError), err)
	}
	user.Confirmed = true

	response := ToWaitlistUserResponse(user)
	return &response, nil
}

func (s *waitlistService) NotifyAllUsers(ctx context.Context) (*BroadcastStatsResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)
	loc := i18n.FromContext(ctx)

	pending, err := s.repository.GetPendingUsers(ctx)
	if err != nil {
		logger.Error("Failed to load pending users for broadcast", "error", err)
		return nil, apperrors.NewInternalServerError(i18n.T(loc, i18n.MsgBroadcastFailed), err)
	}

	stats := &BroadcastStatsResponse{Total: len(pending)}

	for _, user := range pending {
		if err := s.sendLimiter.Wait(ctx); err != nil {
			logger.Warn("Broadcast stopped", "error", err, "remaining", stats.Total-stats.SuccessCount-stats.ErrorCount)
			break
		}

		result := s.mail.SendLaunch(ctx, mailer.Recipient{Email: user.Email, Name: user.Name})
		if !result.Success {
			stats.ErrorCount++
			if result.NeedsDomainVerification {
				logger.Warn("Launch email needs sender domain verification", "email", user.Email)
			} else {
				logger.Error("Launch email failed", "email", user.Email, "error", result.Err)
			}
			continue
		}

		if err := s.repository.MarkNotified(ctx, user.Email); err != nil {
			// The email went out but the flag didn't stick; the user will be
			// retried on the next broadcast run.
			logger.Error("Failed to mark user as notified", "email", user.Email, "error", err)
			stats.ErrorCount++
			continue
		}

		stats.SuccessCount++
	}

	logger.Info("Broadcast completed",
		"total", stats.Total,
		"succeeded", stats.SuccessCount,
		"failed", stats.ErrorCount,
	)

	return stats, nil
}

func (s *waitlistService) GetStats(ctx context.Context) (*StatsResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)
	loc := i18n.FromContext(ctx)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey); err == nil && raw != "" {
			var cached StatsResponse
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	stats, err := s.repository.GetStats(ctx)
	if err != nil {
		logger.Error("Failed to load waitlist stats", "error", err)
		return nil, apperrors.NewInternalServerError(i18n.T(loc, i18n.MsgStatsFailed), err)
	}

	response := ToStatsResponse(stats)

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, string(encoded), statsCacheTTL); err != nil {
				logger.Warn("Failed to cache waitlist stats", "error", err)
			}
		}
	}

	return &response, nil
}

func (s *waitlistService) GetAllUsers(ctx context.Context) ([]WaitlistUserResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	users, err := s.repository.GetAllUsers(ctx)
	if err != nil {
		logger.Error("Failed to list waitlist users", "error", err)
		return nil, err
	}

	responses := make([]WaitlistUserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, ToWaitlistUserResponse(user))
	}

	return responses, nil
}
