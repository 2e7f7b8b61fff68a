package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kuboai/waitlist-api/internal/i18n"
	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/internal/mailer"
	"github.com/kuboai/waitlist-api/internal/models"
	apperrors "github.com/kuboai/waitlist-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/text/language"
)

// fastSendRate keeps broadcast tests from sitting in the pacing limiter.
const fastSendRate = 1000

func okSend(ctrl *gomock.Controller) *mailer.MockMailer {
	mock := mailer.NewMockMailer(ctrl)
	mock.EXPECT().SendWelcome(gomock.Any(), gomock.Any()).Return(mailer.SendResult{Success: true}).AnyTimes()
	mock.EXPECT().SendLaunch(gomock.Any(), gomock.Any()).Return(mailer.SendResult{Success: true}).AnyTimes()
	return mock
}

func TestJoinWaitlist(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	t.Run("successful signup persists, emails, and confirms", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		mockMail := mailer.NewMockMailer(ctrl)
		service := NewWaitlistService(logger, mockRepo, mockMail, nil, fastSendRate)

		mockRepo.EXPECT().
			FindUserByEmail(gomock.Any(), "ann@example.com").
			Return(nil, apperrors.NewNotFoundError("waitlist user not found", nil))

		mockRepo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user *models.WaitlistUser) (*models.WaitlistUser, error) {
				stored := *user
				stored.ID = "id-1"
				stored.JoinedAt = time.Now().UTC()
				return &stored, nil
			})

		mockMail.EXPECT().
			SendWelcome(gomock.Any(), mailer.Recipient{Email: "ann@example.com", Name: "Ann"}).
			Return(mailer.SendResult{Success: true})

		mockRepo.EXPECT().MarkConfirmed(gomock.Any(), "ann@example.com").Return(nil)

		response, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{
			Email: "Ann@Example.com",
			Name:  "  Ann  ",
		})

		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", response.Email)
		assert.Equal(t, "Ann", response.Name)
		assert.Equal(t, models.DefaultSignupSource, response.Source)
		assert.True(t, response.Confirmed)
		assert.False(t, response.Notified)
	})

	t.Run("invalid email is rejected before touching the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		service := NewWaitlistService(logger, mockRepo, okSend(ctrl), nil, fastSendRate)

		response, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Email: "not-an-email"})

		assert.Nil(t, response)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
	})

	t.Run("disposable email is rejected with a localized message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		service := NewWaitlistService(logger, mockRepo, okSend(ctrl), nil, fastSendRate)

		ctx := i18n.WithLocale(context.Background(), language.English)
		_, err := service.JoinWaitlist(ctx, &JoinWaitlistRequest{Email: "x@mailinator.com"})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
		assert.Contains(t, err.Error(), "permanent email")
	})

	t.Run("duplicate signup is rejected with a conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		service := NewWaitlistService(logger, mockRepo, okSend(ctrl), nil, fastSendRate)

		mockRepo.EXPECT().
			FindUserByEmail(gomock.Any(), "ann@example.com").
			Return(&models.WaitlistUser{ID: "id-1", Email: "ann@example.com"}, nil)

		response, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Email: "ANN@example.com"})

		assert.Nil(t, response)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.GetErrorType(err))
		assert.Contains(t, err.Error(), "ya está registrado")
	})

	t.Run("missing name falls back to the email local part", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		service := NewWaitlistService(logger, mockRepo, okSend(ctrl), nil, fastSendRate)

		mockRepo.EXPECT().
			FindUserByEmail(gomock.Any(), "john.doe@x.com").
			Return(nil, apperrors.NewNotFoundError("waitlist user not found", nil))

		var created *models.WaitlistUser
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user *models.WaitlistUser) (*models.WaitlistUser, error) {
				created = user
				return user, nil
			})
		mockRepo.EXPECT().MarkConfirmed(gomock.Any(), "john.doe@x.com").Return(nil)

		_, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Email: "john.doe@x.com"})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "John Doe", created.Name)
	})

	t.Run("welcome email failure does not abort registration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		mockMail := mailer.NewMockMailer(ctrl)
		service := NewWaitlistService(logger, mockRepo, mockMail, nil, fastSendRate)

		mockRepo.EXPECT().
			FindUserByEmail(gomock.Any(), "ann@example.com").
			Return(nil, apperrors.NewNotFoundError("waitlist user not found", nil))
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user *models.WaitlistUser) (*models.WaitlistUser, error) {
				return user, nil
			})
		mockMail.EXPECT().
			SendWelcome(gomock.Any(), gomock.Any()).
			Return(mailer.SendResult{Success: false, Err: errors.New("postmark: 500")})
		mockRepo.EXPECT().MarkConfirmed(gomock.Any(), "ann@example.com").Return(nil)

		response, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Email: "ann@example.com", Name: "Ann"})

		require.NoError(t, err)
		assert.True(t, response.Confirmed)
	})

	t.Run("create losing a duplicate race maps to a conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		service := NewWaitlistService(logger, mockRepo, okSend(ctrl), nil, fastSendRate)

		mockRepo.EXPECT().
			FindUserByEmail(gomock.Any(), "ann@example.com").
			Return(nil, apperrors.NewNotFoundError("waitlist user not found", nil))
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewConflictError("waitlist user with this email already exists", nil))

		_, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Email: "ann@example.com"})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.GetErrorType(err))
	})

	t.Run("nil request is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := NewWaitlistService(logger, NewMockWaitlistRepository(ctrl), okSend(ctrl), nil, fastSendRate)

		_, err := service.JoinWaitlist(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
	})
}

func TestNotifyAllUsers(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	pendingUsers := []*models.WaitlistUser{
		{ID: "id-1", Email: "first@example.com", Name: "First", Confirmed: true},
		{ID: "id-2", Email: "second@example.com", Name: "Second", Confirmed: true},
		{ID: "id-3", Email: "third@example.com", Name: "Third", Confirmed: true},
	}

	t.Run("per-user failures do not stop the batch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		mockMail := mailer.NewMockMailer(ctrl)
		service := NewWaitlistService(logger, mockRepo, mockMail, nil, fastSendRate)

		mockRepo.EXPECT().GetPendingUsers(gomock.Any()).Return(pendingUsers, nil)

		mockMail.EXPECT().
			SendLaunch(gomock.Any(), mailer.Recipient{Email: "first@example.com", Name: "First"}).
			Return(mailer.SendResult{Success: true})
		mockMail.EXPECT().
			SendLaunch(gomock.Any(), mailer.Recipient{Email: "second@example.com", Name: "Second"}).
			Return(mailer.SendResult{Success: false, Err: errors.New("postmark: 406")})
		mockMail.EXPECT().
			SendLaunch(gomock.Any(), mailer.Recipient{Email: "third@example.com", Name: "Third"}).
			Return(mailer.SendResult{Success: true})

		mockRepo.EXPECT().MarkNotified(gomock.Any(), "first@example.com").Return(nil)
		mockRepo.EXPECT().MarkNotified(gomock.Any(), "third@example.com").Return(nil)

		stats, err := service.NotifyAllUsers(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 2, stats.SuccessCount)
		assert.Equal(t, 1, stats.ErrorCount)
	})

	t.Run("a failed notified flag counts as an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		mockMail := mailer.NewMockMailer(ctrl)
		service := NewWaitlistService(logger, mockRepo, mockMail, nil, fastSendRate)

		mockRepo.EXPECT().GetPendingUsers(gomock.Any()).Return(pendingUsers[:1], nil)
		mockMail.EXPECT().SendLaunch(gomock.Any(), gomock.Any()).Return(mailer.SendResult{Success: true})
		mockRepo.EXPECT().
			MarkNotified(gomock.Any(), "first@example.com").
			Return(apperrors.NewDatabaseError("update failed", errors.New("connection reset")))

		stats, err := service.NotifyAllUsers(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Total)
		assert.Equal(t, 0, stats.SuccessCount)
		assert.Equal(t, 1, stats.ErrorCount)
	})

	t.Run("cancellation stops the batch between sends", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		mockMail := mailer.NewMockMailer(ctrl)
		service := NewWaitlistService(logger, mockRepo, mockMail, nil, fastSendRate)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mockRepo.EXPECT().GetPendingUsers(gomock.Any()).Return(pendingUsers, nil)

		// The first send cancels the context; the pacing limiter notices
		// before the second send, so no further emails go out.
		mockMail.EXPECT().
			SendLaunch(gomock.Any(), mailer.Recipient{Email: "first@example.com", Name: "First"}).
			DoAndReturn(func(context.Context, mailer.Recipient) mailer.SendResult {
				cancel()
				return mailer.SendResult{Success: true}
			})
		mockRepo.EXPECT().MarkNotified(gomock.Any(), "first@example.com").Return(nil)

		stats, err := service.NotifyAllUsers(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 1, stats.SuccessCount)
		assert.Equal(t, 0, stats.ErrorCount)
	})

	t.Run("empty waitlist broadcasts nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		service := NewWaitlistService(logger, mockRepo, mailer.NewMockMailer(ctrl), nil, fastSendRate)

		mockRepo.EXPECT().GetPendingUsers(gomock.Any()).Return(nil, nil)

		stats, err := service.NotifyAllUsers(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
	})

	t.Run("store failure surfaces as an internal error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		service := NewWaitlistService(logger, mockRepo, mailer.NewMockMailer(ctrl), nil, fastSendRate)

		mockRepo.EXPECT().
			GetPendingUsers(gomock.Any()).
			Return(nil, apperrors.NewDatabaseError("query failed", errors.New("connection reset")))

		stats, err := service.NotifyAllUsers(context.Background())

		assert.Nil(t, stats)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeInternalServerError, apperrors.GetErrorType(err))
	})
}

// stubCache is an in-process Cache used to exercise the stats cache path.
type stubCache struct {
	values map[string]string
	sets   int
}

func newStubCache() *stubCache {
	return &stubCache{values: make(map[string]string)}
}

func (c *stubCache) Get(ctx context.Context, key string) (string, error) {
	return c.values[key], nil
}

func (c *stubCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.values[key] = value
	c.sets++
	return nil
}

func (c *stubCache) Ping(ctx context.Context) error { return nil }

func TestGetStats(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	t.Run("stats come from the repository and fill the cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		cache := newStubCache()
		service := NewWaitlistService(logger, mockRepo, mailer.NewMockMailer(ctrl), cache, fastSendRate)

		mockRepo.EXPECT().
			GetStats(gomock.Any()).
			Return(&WaitlistStats{Total: 10, Confirmed: 8, Notified: 3, Recent: 2}, nil)

		stats, err := service.GetStats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(10), stats.Total)
		assert.Equal(t, int64(8), stats.Confirmed)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("a warm cache short-circuits the repository", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := NewMockWaitlistRepository(ctrl)
		cache := newStubCache()
		cache.values[statsCacheKey] = `{"total":5,"confirmed":4,"notified":1,"recent":0}`
		service := NewWaitlistService(logger, mockRepo, mailer.NewMockMailer(ctrl), cache, fastSendRate)

		stats, err := service.GetStats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.Total)
		assert.Equal(t, int64(4), stats.Confirmed)
	})
}
