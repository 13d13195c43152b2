package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ReferralStatus string

const (
	StatusPending      ReferralStatus = "pending"      // friend signed up, waiting for purchase
	StatusPurchased    ReferralStatus = "purchased"    // purchase made, inside the 30-day window
	StatusQualified    ReferralStatus = "qualified"    // window passed, eligible for reward
	StatusRewarded     ReferralStatus = "rewarded"     // reward issued
	StatusDisqualified ReferralStatus = "disqualified" // refunded or cancelled
)

// Terminal reports whether no further status change is allowed.
func (s ReferralStatus) Terminal() bool {
	return s == StatusRewarded || s == StatusDisqualified
}

// CanTransition reports whether moving from s to next is a legal edge of
// the forward-only lifecycle graph. Disqualification is the escape hatch
// from any non-terminal state.
func (s ReferralStatus) CanTransition(next ReferralStatus) bool {
	switch next {
	case StatusPurchased:
		return s == StatusPending
	case StatusQualified:
		return s == StatusPurchased
	case StatusRewarded:
		return s == StatusQualified
	case StatusDisqualified:
		return !s.Terminal()
	}
	return false
}

type ReferralAction string

const (
	ActionMarkPurchased ReferralAction = "mark_purchased"
	ActionMarkQualified ReferralAction = "mark_qualified"
	ActionMarkRewarded  ReferralAction = "mark_rewarded"
	ActionDisqualify    ReferralAction = "disqualify"
	ActionAddNotes      ReferralAction = "add_notes"
)

// CustomValues holds the friend's answers to a campaign's custom fields,
// stored as JSONB. Values are kept as submitted and never re-validated
// against later schema changes.
type CustomValues map[string]string

func (v CustomValues) Value() (driver.Value, error) {
	if v == nil {
		return json.Marshal(CustomValues{})
	}
	return json.Marshal(v)
}

func (v *CustomValues) Scan(src interface{}) error { return scanJSON(src, v) }

// Referral records one friend signing up through a referrer's link.
// ReferrerEmail/ReferrerName are a snapshot taken at creation time and are
// deliberately never updated afterwards.
type Referral struct {
	ID                 string         `json:"id" db:"id"`
	ReferrerEmail      string         `json:"referrer_email" db:"referrer_email"`
	ReferrerName       string         `json:"referrer_name" db:"referrer_name"`
	ReferredEmail      string         `json:"referred_email" db:"referred_email"`
	ReferredName       string         `json:"referred_name" db:"referred_name"`
	ReferredPhone      string         `json:"referred_phone" db:"referred_phone"`
	ReferredChildGrade string         `json:"referred_child_grade" db:"referred_child_grade"`
	CustomFields       CustomValues   `json:"custom_fields,omitempty" db:"custom_fields"`
	CampaignID         uuid.UUID      `json:"campaign_id" db:"campaign_id"`
	Status             ReferralStatus `json:"status" db:"status"`
	SignupDate         time.Time      `json:"signup_date" db:"signup_date"`
	PurchaseDate       *time.Time     `json:"purchase_date" db:"purchase_date"`
	RewardEligibleDate *time.Time     `json:"reward_eligible_date" db:"reward_eligible_date"`
	RewardIssuedDate   *time.Time     `json:"reward_issued_date" db:"reward_issued_date"`
	Notes              string         `json:"notes" db:"notes"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
}

type ReferralStats struct {
	Total        int `json:"total" db:"total"`
	Pending      int `json:"pending" db:"pending"`
	Purchased    int `json:"purchased" db:"purchased"`
	Qualified    int `json:"qualified" db:"qualified"`
	Rewarded     int `json:"rewarded" db:"rewarded"`
	Disqualified int `json:"disqualified" db:"disqualified"`
}
