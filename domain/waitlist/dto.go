package waitlist

import (
	"github.com/kuboai/waitlist-api/internal/models"
	"github.com/kuboai/waitlist-api/pkg/constants"
)

type JoinWaitlistRequest struct {
	// Email is validated by ValidateEmail rather than a binding tag so the
	// rejection message can be localized.
	Email  string `json:"email"`
	Name   string `json:"name" binding:"omitempty,max=255"`
	Source string `json:"source" binding:"omitempty,max=64"`
}

type WaitlistUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	JoinedAt  string `json:"joined_at"`
	Confirmed bool   `json:"confirmed"`
	Notified  bool   `json:"notified"`
	Source    string `json:"source"`
}

type StatsResponse struct {
	Total     int64 `json:"total"`
	Confirmed int64 `json:"confirmed"`
	Notified  int64 `json:"notified"`
	Recent    int64 `json:"recent"`
}

type BroadcastStatsResponse struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
	Total        int `json:"total"`
}

// ========================================
// Mappers
// ========================================

func ToWaitlistUserResponse(user *models.WaitlistUser) WaitlistUserResponse {
	if user == nil {
		return WaitlistUserResponse{}
	}
	return WaitlistUserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		JoinedAt:  user.JoinedAt.Format(constants.RFC3339DateTimeFormat),
		Confirmed: user.Confirmed,
		Notified:  user.Notified,
		Source:    user.Source,
	}
}

func ToStatsResponse(stats *WaitlistStats) StatsResponse {
	if stats == nil {
		return StatsResponse{}
	}
	return StatsResponse{
		Total:     stats.Total,
		Confirmed: stats.Confirmed,
		Notified:  stats.Notified,
		Recent:    stats.Recent,
	}
}
