package model

import (
	"time"
)

// Subscription tiers, ordered free < basic < premium.
const (
	TierFree    = "free"
	TierBasic   = "basic"
	TierPremium = "premium"
)

// TierRank maps a tier name to its position in the ordering.
// Unknown tiers rank below free.
func TierRank(tier string) int {
	switch tier {
	case TierFree:
		return 0
	case TierBasic:
		return 1
	case TierPremium:
		return 2
	}
	return -1
}

// User account with subscription state.
type User struct {
	ID                    int        `json:"id" db:"id"`
	Username              string     `json:"username" db:"username" gorm:"unique"`
	Email                 string     `json:"email" db:"email" gorm:"unique"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	Role                  string     `json:"role" db:"role"`
	SubscriptionType      string     `json:"subscription_type" db:"subscription_type" gorm:"default:free"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date" db:"subscription_start_date"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date" db:"subscription_end_date"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// HasActiveSubscription reports whether the account's subscription is live.
// Free accounts are always active; paid accounts until the end date passes.
func (u *User) HasActiveSubscription() bool {
	if u.SubscriptionType == TierFree || u.SubscriptionType == "" {
		return true
	}
	if u.SubscriptionEndDate == nil {
		return false
	}
	return !time.Now().After(*u.SubscriptionEndDate)
}

// CanWatch reports whether the user's tier unlocks a movie's required tier.
func (u *User) CanWatch(requiredTier string) bool {
	if !u.HasActiveSubscription() {
		return TierRank(requiredTier) <= TierRank(TierFree)
	}
	return TierRank(u.SubscriptionType) >= TierRank(requiredTier)
}

// SessionUser is the slim user payload stored in the cookie session.
type SessionUser struct {
	ID       int
	Email    string
	Username string
	Role     string
}
