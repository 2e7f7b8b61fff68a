package waitlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kuboai/waitlist-api/internal/models"
	apperrors "github.com/kuboai/waitlist-api/pkg/errors"
	"gorm.io/gorm"
)

// WaitlistStats aggregates the store. Recent counts signups from the last
// 24 hours.
type WaitlistStats struct {
	Total     int64
	Confirmed int64
	Notified  int64
	Recent    int64
}

// WaitlistRepository is the keyed waitlist store. All lookups are by
// lowercased email; implementations must enforce email uniqueness. Records
// are never deleted by workflow operations.
type WaitlistRepository interface {
	// CreateUser persists a new signup. A duplicate email yields a conflict error.
	CreateUser(ctx context.Context, user *models.WaitlistUser) (*models.WaitlistUser, error)
	// FindUserByEmail retrieves a signup, or a not-found error when absent.
	FindUserByEmail(ctx context.Context, email string) (*models.WaitlistUser, error)
	// MarkConfirmed flips the confirmed flag. Idempotent.
	MarkConfirmed(ctx context.Context, email string) error
	// MarkNotified flips the notified flag. Idempotent.
	MarkNotified(ctx context.Context, email string) error
	// GetPendingUsers returns signups that are confirmed but not yet notified.
	GetPendingUsers(ctx context.Context) ([]*models.WaitlistUser, error)
	// GetAllUsers returns every signup.
	GetAllUsers(ctx context.Context) ([]*models.WaitlistUser, error)
	// GetStats returns aggregate counters.
	GetStats(ctx context.Context) (*WaitlistStats, error)
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) CreateUser(ctx context.Context, user *models.WaitlistUser) (*models.WaitlistUser, error) {
	user.Email = strings.ToLower(user.Email)

	if err := wr.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError("waitlist user with this email already exists", err)
		}
		return nil, apperrors.NewDatabaseError("unable to create waitlist user", err)
	}

	return user, nil
}

func (wr *waitlistRepository) FindUserByEmail(ctx context.Context, email string) (*models.WaitlistUser, error) {
	var user models.WaitlistUser

	err := wr.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("waitlist user not found", err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch waitlist user", err)
	}

	return &user, nil
}

func (wr *waitlistRepository) MarkConfirmed(ctx context.Context, email string) error {
	return wr.setFlag(ctx, email, "confirmed")
}

func (wr *waitlistRepository) MarkNotified(ctx context.Context, email string) error {
	return wr.setFlag(ctx, email, "notified")
}

func (wr *waitlistRepository) setFlag(ctx context.Context, email, column string) error {
	result := wr.db.WithContext(ctx).
		Model(&models.WaitlistUser{}).
		Where("email = ?", strings.ToLower(email)).
		Update(column, true)

	if result.Error != nil {
		return apperrors.NewDatabaseError("unable to update waitlist user", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("waitlist user not found", nil)
	}

	return nil
}

func (wr *waitlistRepository) GetPendingUsers(ctx context.Context) ([]*models.WaitlistUser, error) {
	var users []*models.WaitlistUser

	err := wr.db.WithContext(ctx).
		Where("confirmed = ? AND notified = ?", true, false).
		Order("joined_at asc").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch pending waitlist users", err)
	}

	return users, nil
}

func (wr *waitlistRepository) GetAllUsers(ctx context.Context) ([]*models.WaitlistUser, error) {
	var users []*models.WaitlistUser

	if err := wr.db.WithContext(ctx).Order("joined_at asc").Find(&users).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch waitlist users", err)
	}

	return users, nil
}

func (wr *waitlistRepository) GetStats(ctx context.Context) (*WaitlistStats, error) {
	stats := &WaitlistStats{}
	base := wr.db.WithContext(ctx).Model(&models.WaitlistUser{})

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to count waitlist users", err)
	}

	if err := base.Session(&gorm.Session{}).Where("confirmed = ?", true).Count(&stats.Confirmed).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to count confirmed users", err)
	}

	if err := base.Session(&gorm.Session{}).Where("notified = ?", true).Count(&stats.Notified).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to count notified users", err)
	}

	dayAgo := time.Now().UTC().Add(-24 * time.Hour)
	if err := base.Session(&gorm.Session{}).Where("joined_at > ?", dayAgo).Count(&stats.Recent).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to count recent users", err)
	}

	return stats, nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
