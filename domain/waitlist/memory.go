package waitlist

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kuboai/waitlist-api/internal/models"
	apperrors "github.com/kuboai/waitlist-api/pkg/errors"
)

// MemoryWaitlistRepository is a map-backed store keyed by lowercased email.
// It backs unit tests and local development without a database; data does
// not survive a restart.
type MemoryWaitlistRepository struct {
	mu    sync.RWMutex
	users map[string]*models.WaitlistUser
}

func NewMemoryWaitlistRepository() *MemoryWaitlistRepository {
	return &MemoryWaitlistRepository{
		users: make(map[string]*models.WaitlistUser),
	}
}

func (mr *MemoryWaitlistRepository) CreateUser(ctx context.Context, user *models.WaitlistUser) (*models.WaitlistUser, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := mr.users[key]; exists {
		return nil, apperrors.NewConflictError("waitlist user with this email already exists", nil)
	}

	stored := *user
	stored.Email = key
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.JoinedAt.IsZero() {
		stored.JoinedAt = time.Now().UTC()
	}

	mr.users[key] = &stored

	copied := stored
	return &copied, nil
}

func (mr *MemoryWaitlistRepository) FindUserByEmail(ctx context.Context, email string) (*models.WaitlistUser, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	user, ok := mr.users[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.NewNotFoundError("waitlist user not found", nil)
	}

	copied := *user
	return &copied, nil
}

func (mr *MemoryWaitlistRepository) MarkConfirmed(ctx context.Context, email string) error {
	return mr.setFlag(email, func(u *models.WaitlistUser) { u.Confirmed = true })
}

func (mr *MemoryWaitlistRepository) MarkNotified(ctx context.Context, email string) error {
	return mr.setFlag(email, func(u *models.WaitlistUser) { u.Notified = true })
}

func (mr *MemoryWaitlistRepository) setFlag(email string, apply func(*models.WaitlistUser)) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	user, ok := mr.users[strings.ToLower(email)]
	if !ok {
		return apperrors.NewNotFoundError("waitlist user not found", nil)
	}

	apply(user)
	return nil
}

func (mr *MemoryWaitlistRepository) GetPendingUsers(ctx context.Context) ([]*models.WaitlistUser, error) {
	return mr.collect(func(u *models.WaitlistUser) bool { return u.Confirmed && !u.Notified }), nil
}

func (mr *MemoryWaitlistRepository) GetAllUsers(ctx context.Context) ([]*models.WaitlistUser, error) {
	return mr.collect(func(u *models.WaitlistUser) bool { return true }), nil
}

func (mr *MemoryWaitlistRepository) collect(keep func(*models.WaitlistUser) bool) []*models.WaitlistUser {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	users := make([]*models.WaitlistUser, 0, len(mr.users))
	for _, user := range mr.users {
		if keep(user) {
			copied := *user
			users = append(users, &copied)
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].JoinedAt.Before(users[j].JoinedAt) })
	return users
}

func (mr *MemoryWaitlistRepository) GetStats(ctx context.Context) (*WaitlistStats, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	stats := &WaitlistStats{}
	dayAgo := time.Now().UTC().Add(-24 * time.Hour)

	for _, user := range mr.users {
		stats.Total++
		if user.Confirmed {
			stats.Confirmed++
		}
		if user.Notified {
			stats.Notified++
		}
		if user.JoinedAt.After(dayAgo) {
			stats.Recent++
		}
	}

	return stats, nil
}
