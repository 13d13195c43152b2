package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCampaignID is the well-known id of the seeded default campaign.
// It can never be deleted and its id is never reused.
var DefaultCampaignID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
)

type PhoneFormat string

const (
	PhoneFormatInternational PhoneFormat = "international"
	PhoneFormatUS            PhoneFormat = "us"
	PhoneFormatUK            PhoneFormat = "uk"
)

// CustomField describes one extra input on a campaign's friend-signup form.
type CustomField struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// CustomFields is the ordered field list, stored as JSONB.
type CustomFields []CustomField

// StandardFields toggles the built-in friend-signup inputs.
type StandardFields struct {
	Phone      bool `json:"phone"`
	ChildGrade bool `json:"child_grade"`
}

// CampaignCopy holds the page text for every public surface of a campaign.
type CampaignCopy struct {
	ReferrerPageTitle      string `json:"referrer_page_title"`
	ReferrerPageSubtitle   string `json:"referrer_page_subtitle"`
	ReferrerFormHeading    string `json:"referrer_form_heading"`
	ReferrerSuccessTitle   string `json:"referrer_success_title"`
	ReferrerSuccessMessage string `json:"referrer_success_message"`
	FriendPageTitle        string `json:"friend_page_title"`
	FriendPageSubtitle     string `json:"friend_page_subtitle"`
	FriendFormHeading      string `json:"friend_form_heading"`
	FriendSuccessTitle     string `json:"friend_success_title"`
	FriendSuccessMessage   string `json:"friend_success_message"`
	RewardDescription      string `json:"reward_description"`
	TermsContent           string `json:"terms_content"`
}

type Campaign struct {
	ID                    uuid.UUID      `json:"id" db:"id"`
	Slug                  string         `json:"slug" db:"slug"`
	Name                  string         `json:"name" db:"name"`
	Active                bool           `json:"active" db:"active"`
	RewardAmount          string         `json:"reward_amount" db:"reward_amount"`
	RewardType            string         `json:"reward_type" db:"reward_type"`
	Copy                  CampaignCopy   `json:"copy" db:"copy"`
	StandardFields        StandardFields `json:"standard_fields" db:"standard_fields"`
	CustomFields          CustomFields   `json:"custom_fields" db:"custom_fields"`
	HubSpotPortalID       *string        `json:"hubspot_portal_id" db:"hubspot_portal_id"`
	HubSpotFormGUID       *string        `json:"hubspot_form_guid" db:"hubspot_form_guid"`
	HubSpotFriendFormGUID *string        `json:"hubspot_friend_form_guid" db:"hubspot_friend_form_guid"`
	BookingURL            *string        `json:"booking_url" db:"booking_url"`
	PhoneFormat           PhoneFormat    `json:"phone_format" db:"phone_format"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`
}

type CampaignStats struct {
	Referrers int `json:"referrers" db:"referrers"`
	Referrals int `json:"referrals" db:"referrals"`
	Qualified int `json:"qualified" db:"qualified"`
	Rewarded  int `json:"rewarded" db:"rewarded"`
}

// RewardLabel is the human-readable reward, e.g. "$150 Amazon voucher".
func (c *Campaign) RewardLabel() string {
	return strings.TrimSpace(c.RewardAmount + " " + c.RewardType)
}

func DefaultCopy() CampaignCopy {
	return CampaignCopy{
		ReferrerPageTitle:      "Refer a Friend",
		ReferrerPageSubtitle:   "Share with friends and earn rewards!",
		ReferrerFormHeading:    "Get Your Referral Link",
		ReferrerSuccessTitle:   "You're In!",
		ReferrerSuccessMessage: "Share your unique link with friends to start earning rewards.",
		FriendPageTitle:        "Welcome!",
		FriendPageSubtitle:     "Your friend thinks you'll love us",
		FriendFormHeading:      "Sign Up for Your Free Trial",
		FriendSuccessTitle:     "Thanks for signing up!",
		FriendSuccessMessage:   "We'll be in touch soon to get you started.",
		RewardDescription:      "Get rewarded for each friend who signs up!",
		TermsContent:           "Standard terms and conditions apply.",
	}
}

func DefaultStandardFields() StandardFields {
	return StandardFields{Phone: true, ChildGrade: true}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)

// SanitizeSlug lowercases the slug and replaces anything outside
// [a-z0-9-] with a dash.
func SanitizeSlug(slug string) string {
	return slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(slug)), "-")
}

// CampaignCopyPatch carries a partial copy update; nil fields keep the
// current value.
type CampaignCopyPatch struct {
	ReferrerPageTitle      *string `json:"referrer_page_title"`
	ReferrerPageSubtitle   *string `json:"referrer_page_subtitle"`
	ReferrerFormHeading    *string `json:"referrer_form_heading"`
	ReferrerSuccessTitle   *string `json:"referrer_success_title"`
	ReferrerSuccessMessage *string `json:"referrer_success_message"`
	FriendPageTitle        *string `json:"friend_page_title"`
	FriendPageSubtitle     *string `json:"friend_page_subtitle"`
	FriendFormHeading      *string `json:"friend_form_heading"`
	FriendSuccessTitle     *string `json:"friend_success_title"`
	FriendSuccessMessage   *string `json:"friend_success_message"`
	RewardDescription      *string `json:"reward_description"`
	TermsContent           *string `json:"terms_content"`
}

// Merge applies the patch on top of c and returns the result.
func (c CampaignCopy) Merge(p *CampaignCopyPatch) CampaignCopy {
	if p == nil {
		return c
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.ReferrerPageTitle, p.ReferrerPageTitle)
	set(&c.ReferrerPageSubtitle, p.ReferrerPageSubtitle)
	set(&c.ReferrerFormHeading, p.ReferrerFormHeading)
	set(&c.ReferrerSuccessTitle, p.ReferrerSuccessTitle)
	set(&c.ReferrerSuccessMessage, p.ReferrerSuccessMessage)
	set(&c.FriendPageTitle, p.FriendPageTitle)
	set(&c.FriendPageSubtitle, p.FriendPageSubtitle)
	set(&c.FriendFormHeading, p.FriendFormHeading)
	set(&c.FriendSuccessTitle, p.FriendSuccessTitle)
	set(&c.FriendSuccessMessage, p.FriendSuccessMessage)
	set(&c.RewardDescription, p.RewardDescription)
	set(&c.TermsContent, p.TermsContent)
	return c
}

// StandardFieldsPatch carries a partial standard-fields update.
type StandardFieldsPatch struct {
	Phone      *bool `json:"phone"`
	ChildGrade *bool `json:"child_grade"`
}

func (f StandardFields) Merge(p *StandardFieldsPatch) StandardFields {
	if p == nil {
		return f
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.ChildGrade != nil {
		f.ChildGrade = *p.ChildGrade
	}
	return f
}

// JSONB plumbing for the structured campaign columns.

func (c CampaignCopy) Value() (driver.Value, error) { return json.Marshal(c) }

func (c *CampaignCopy) Scan(src interface{}) error { return scanJSON(src, c) }

func (f StandardFields) Value() (driver.Value, error) { return json.Marshal(f) }

func (f *StandardFields) Scan(src interface{}) error { return scanJSON(src, f) }

func (f CustomFields) Value() (driver.Value, error) {
	if f == nil {
		return json.Marshal(CustomFields{})
	}
	return json.Marshal(f)
}

func (f *CustomFields) Scan(src interface{}) error { return scanJSON(src, f) }

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
