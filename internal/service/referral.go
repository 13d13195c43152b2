package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgebier67/myedspace-referrals/internal/model"
	"github.com/georgebier67/myedspace-referrals/internal/refcode"
)

var (
	ErrInvalidAction     = errors.New("invalid action")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// rewardEligibilityDays is the calendar-day window between purchase and
// reward eligibility. Computed once at mark_purchased and never
// recomputed.
const rewardEligibilityDays = 30

type ReferralStore interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	GetReferrerByCode(ctx context.Context, code string) (*model.Referrer, error)
	GetReferral(ctx context.Context, id string) (*model.Referral, error)
	CreateReferral(ctx context.Context, referral *model.Referral, referrerID int64) error
	UpdateReferral(ctx context.Context, referral *model.Referral) error
	GetReferrals(ctx context.Context, campaignID *uuid.UUID) ([]model.Referral, error)
	GetReferralStats(ctx context.Context, campaignID *uuid.UUID) (*model.ReferralStats, error)
}

type ReferralService struct {
	store            ReferralStore
	notifier         Notifier
	bookingURL       string
	allowStatusJumps bool
	log              *zap.Logger
}

func NewReferralService(store ReferralStore, notifier Notifier, bookingURL string, allowStatusJumps bool, log *zap.Logger) *ReferralService {
	return &ReferralService{
		store:            store,
		notifier:         notifier,
		bookingURL:       bookingURL,
		allowStatusJumps: allowStatusJumps,
		log:              log,
	}
}

type CreateReferralInput struct {
	ReferralCode string
	FriendName   string
	FriendEmail  string
	FriendPhone  string
	ChildGrade   string
	CampaignID   *uuid.UUID
	CustomFields map[string]string
}

// CreateReferral records a friend signup against the referrer resolved
// from the code. The row is created with status pending and the
// referrer's counter is incremented in the same transaction; external
// notifications go out best-effort afterwards. Returns the referral and
// the booking redirect URL.
func (s *ReferralService) CreateReferral(ctx context.Context, in CreateReferralInput) (*model.Referral, string, error) {
	friendEmail := strings.ToLower(strings.TrimSpace(in.FriendEmail))
	if !emailPattern.MatchString(friendEmail) {
		return nil, "", ErrInvalidEmail
	}

	referrer, err := s.store.GetReferrerByCode(ctx, in.ReferralCode)
	if err != nil {
		return nil, "", err
	}

	campaignID := referrer.CampaignID
	if in.CampaignID != nil {
		campaignID = *in.CampaignID
	}
	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, "", err
	}

	referral := &model.Referral{
		ID:                 refcode.NewID(),
		ReferrerEmail:      referrer.Email,
		ReferrerName:       referrer.Name,
		ReferredEmail:      friendEmail,
		ReferredName:       strings.TrimSpace(in.FriendName),
		ReferredPhone:      strings.TrimSpace(in.FriendPhone),
		ReferredChildGrade: strings.TrimSpace(in.ChildGrade),
		CustomFields:       in.CustomFields,
		CampaignID:         campaignID,
		Status:             model.StatusPending,
		SignupDate:         time.Now().UTC(),
	}

	if err := s.store.CreateReferral(ctx, referral, referrer.ID); err != nil {
		return nil, "", err
	}

	if s.notifier != nil {
		s.notifier.ReferralCreated(referral, referrer, campaign)
	}

	return referral, s.bookingRedirect(campaign, in.ReferralCode), nil
}

// Transition applies an admin action to a referral. Status-changing
// actions are checked against the forward-only graph unless status jumps
// are allowed by configuration.
func (s *ReferralService) Transition(ctx context.Context, referralID string, action model.ReferralAction, notes string) (*model.Referral, error) {
	referral, err := s.store.GetReferral(ctx, referralID)
	if err != nil {
		return nil, err
	}

	if action == model.ActionAddNotes {
		referral.Notes = notes
		if err := s.store.UpdateReferral(ctx, referral); err != nil {
			return nil, err
		}
		return referral, nil
	}

	var next model.ReferralStatus
	switch action {
	case model.ActionMarkPurchased:
		next = model.StatusPurchased
	case model.ActionMarkQualified:
		next = model.StatusQualified
	case model.ActionMarkRewarded:
		next = model.StatusRewarded
	case model.ActionDisqualify:
		next = model.StatusDisqualified
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	if !s.allowStatusJumps && !referral.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, referral.Status, next)
	}

	now := time.Now().UTC()
	referral.Status = next
	switch action {
	case model.ActionMarkPurchased:
		referral.PurchaseDate = &now
		eligible := now.AddDate(0, 0, rewardEligibilityDays)
		referral.RewardEligibleDate = &eligible
	case model.ActionMarkRewarded:
		referral.RewardIssuedDate = &now
	case model.ActionDisqualify:
		if notes != "" {
			referral.Notes = notes
		}
	}

	if err := s.store.UpdateReferral(ctx, referral); err != nil {
		return nil, err
	}

	if action == model.ActionMarkQualified && s.notifier != nil {
		reward := ""
		if campaign, cerr := s.store.GetCampaign(ctx, referral.CampaignID); cerr == nil {
			reward = campaign.RewardLabel()
		}
		s.notifier.ReferralQualified(referral, reward)
	}

	return referral, nil
}

func (s *ReferralService) Get(ctx context.Context, id string) (*model.Referral, error) {
	return s.store.GetReferral(ctx, id)
}

func (s *ReferralService) List(ctx context.Context, campaignID *uuid.UUID) ([]model.Referral, error) {
	return s.store.GetReferrals(ctx, campaignID)
}

func (s *ReferralService) GetStats(ctx context.Context, campaignID *uuid.UUID) (*model.ReferralStats, error) {
	return s.store.GetReferralStats(ctx, campaignID)
}

// bookingRedirect builds the post-signup redirect: the campaign's booking
// URL (or the program default) tagged with referral UTM parameters.
func (s *ReferralService) bookingRedirect(campaign *model.Campaign, code string) string {
	raw := s.bookingURL
	if campaign != nil && campaign.BookingURL != nil && *campaign.BookingURL != "" {
		raw = *campaign.BookingURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("utm_source", "referral")
	q.Set("utm_medium", "friend_signup")
	q.Set("utm_campaign", "referral_program")
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String()
}
