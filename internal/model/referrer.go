package model

import (
	"time"

	"github.com/google/uuid"
)

// Referrer is a registered user holding a referral code for one campaign.
// The same email may register for different campaigns and gets a distinct
// code in each.
type Referrer struct {
	ID             int64     `json:"-" db:"id"`
	ReferralCode   string    `json:"referral_code" db:"referral_code"`
	ReferralLink   string    `json:"referral_link" db:"referral_link"`
	Email          string    `json:"email" db:"email"`
	Name           string    `json:"name" db:"name"`
	TotalReferrals int       `json:"total_referrals" db:"total_referrals"`
	CampaignID     uuid.UUID `json:"campaign_id" db:"campaign_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
