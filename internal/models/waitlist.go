package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSignupSource tags records created through the landing page form.
const DefaultSignupSource = "landing-page"

// WaitlistUser is a single waitlist signup. The email is the logical key and
// carries a unique index so two concurrent signups for the same address
// cannot both commit.
type WaitlistUser struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Name      string    `json:"name"`
	JoinedAt  time.Time `gorm:"not null;index" json:"joined_at"`
	Confirmed bool      `gorm:"not null;default:false" json:"confirmed"`
	Notified  bool      `gorm:"not null;default:false" json:"notified"`
	Source    string    `json:"source"`
}

func (u *WaitlistUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.JoinedAt.IsZero() {
		u.JoinedAt = time.Now().UTC()
	}
	return nil
}
