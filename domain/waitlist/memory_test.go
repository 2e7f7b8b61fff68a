package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/internal/mailer"
	"github.com/kuboai/waitlist-api/internal/models"
	"github.com/kuboai/waitlist-api/pkg/constants"
	apperrors "github.com/kuboai/waitlist-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMemoryWaitlistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns an id and lowercases the email", func(t *testing.T) {
		repo := NewMemoryWaitlistRepository()

		user, err := repo.CreateUser(ctx, &models.WaitlistUser{Email: "Ann@Example.com", Name: "Ann"})

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "ann@example.com", user.Email)
		assert.False(t, user.JoinedAt.IsZero())
	})

	t.Run("create rejects a second signup for the same email", func(t *testing.T) {
		repo := NewMemoryWaitlistRepository()

		_, err := repo.CreateUser(ctx, &models.WaitlistUser{Email: "ann@example.com"})
		require.NoError(t, err)

		_, err = repo.CreateUser(ctx, &models.WaitlistUser{Email: "ANN@example.com"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.GetErrorType(err))
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		repo := NewMemoryWaitlistRepository()

		_, err := repo.CreateUser(ctx, &models.WaitlistUser{Email: "ann@example.com"})
		require.NoError(t, err)

		found, err := repo.FindUserByEmail(ctx, "ANN@EXAMPLE.COM")
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", found.Email)
	})

	t.Run("flag updates are idempotent", func(t *testing.T) {
		repo := NewMemoryWaitlistRepository()

		_, err := repo.CreateUser(ctx, &models.WaitlistUser{Email: "ann@example.com"})
		require.NoError(t, err)

		require.NoError(t, repo.MarkNotified(ctx, "ann@example.com"))
		require.NoError(t, repo.MarkNotified(ctx, "ann@example.com"))

		user, err := repo.FindUserByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.True(t, user.Notified)
	})

	t.Run("flag updates on unknown users report not found", func(t *testing.T) {
		repo := NewMemoryWaitlistRepository()

		err := repo.MarkConfirmed(ctx, "ghost@example.com")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.GetErrorType(err))
	})

	t.Run("pending users excludes the notified and the unconfirmed", func(t *testing.T) {
		repo := NewMemoryWaitlistRepository()

		seed := []*models.WaitlistUser{
			{Email: "a@example.com", Confirmed: true},
			{Email: "b@example.com", Confirmed: true, Notified: true},
			{Email: "c@example.com"},
		}
		for _, user := range seed {
			_, err := repo.CreateUser(ctx, user)
			require.NoError(t, err)
		}

		pending, err := repo.GetPendingUsers(ctx)

		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "a@example.com", pending[0].Email)
	})

	t.Run("stats count recent signups within a day", func(t *testing.T) {
		repo := NewMemoryWaitlistRepository()

		_, err := repo.CreateUser(ctx, &models.WaitlistUser{Email: "old@example.com", JoinedAt: time.Now().UTC().Add(-48 * time.Hour)})
		require.NoError(t, err)
		_, err = repo.CreateUser(ctx, &models.WaitlistUser{Email: "new@example.com"})
		require.NoError(t, err)

		stats, err := repo.GetStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Total)
		assert.Equal(t, int64(1), stats.Recent)
	})
}

// End-to-end workflow through the real validator, service, and in-memory
// store; only the mailer is mocked.
func TestRegistrationWorkflow(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	t.Run("signup normalizes input and survives a failing mailer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := NewMemoryWaitlistRepository()
		mockMail := mailer.NewMockMailer(ctrl)
		mockMail.EXPECT().
			SendWelcome(gomock.Any(), gomock.Any()).
			Return(mailer.SendResult{Success: false, NeedsDomainVerification: true})

		service := NewWaitlistService(logger, repo, mockMail, nil, fastSendRate)

		response, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{
			Email: "  Test@Example.com  ",
			Name:  "  Ann  ",
		})

		require.NoError(t, err)
		assert.Equal(t, "test@example.com", response.Email)
		assert.Equal(t, "Ann", response.Name)
		assert.True(t, response.Confirmed)

		stored, err := repo.FindUserByEmail(context.Background(), "test@example.com")
		require.NoError(t, err)
		assert.True(t, stored.Confirmed)
	})

	t.Run("a duplicate signup leaves the original record untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := NewMemoryWaitlistRepository()
		mockMail := mailer.NewMockMailer(ctrl)
		mockMail.EXPECT().SendWelcome(gomock.Any(), gomock.Any()).Return(mailer.SendResult{Success: true})

		service := NewWaitlistService(logger, repo, mockMail, nil, fastSendRate)

		first, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Email: "ann@example.com"})
		require.NoError(t, err)

		_, err = service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{Email: "ANN@Example.com", Name: "Other"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.GetErrorType(err))

		stored, err := repo.FindUserByEmail(context.Background(), "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, stored.ID)
		assert.Equal(t, first.JoinedAt, stored.JoinedAt.Format(constants.RFC3339DateTimeFormat))
		assert.Equal(t, "Ann", stored.Name)
	})

	t.Run("a cancelled broadcast leaves unsent users pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := NewMemoryWaitlistRepository()
		for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			_, err := repo.CreateUser(context.Background(), &models.WaitlistUser{Email: email, Confirmed: true})
			require.NoError(t, err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mockMail := mailer.NewMockMailer(ctrl)
		mockMail.EXPECT().
			SendLaunch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, mailer.Recipient) mailer.SendResult {
				cancel()
				return mailer.SendResult{Success: true}
			}).
			Times(1)

		service := NewWaitlistService(logger, repo, mockMail, nil, fastSendRate)

		stats, err := service.NotifyAllUsers(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 1, stats.SuccessCount)

		pending, err := repo.GetPendingUsers(context.Background())
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("broadcast notifies exactly the pending users", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := NewMemoryWaitlistRepository()
		seed := []*models.WaitlistUser{
			{Email: "a@example.com", Name: "A", Confirmed: true},
			{Email: "b@example.com", Name: "B", Confirmed: true},
			{Email: "c@example.com", Name: "C", Confirmed: true, Notified: true},
		}
		for _, user := range seed {
			_, err := repo.CreateUser(context.Background(), user)
			require.NoError(t, err)
		}

		mockMail := mailer.NewMockMailer(ctrl)
		mockMail.EXPECT().
			SendLaunch(gomock.Any(), gomock.Any()).
			Return(mailer.SendResult{Success: true}).
			Times(2)

		service := NewWaitlistService(logger, repo, mockMail, nil, fastSendRate)

		stats, err := service.NotifyAllUsers(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 2, stats.SuccessCount)
		assert.Equal(t, 0, stats.ErrorCount)

		// A second run has nothing left to send.
		again, err := service.NotifyAllUsers(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, again.Total)
	})
}
