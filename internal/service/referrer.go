package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgebier67/myedspace-referrals/internal/model"
	"github.com/georgebier67/myedspace-referrals/internal/refcode"
	"github.com/georgebier67/myedspace-referrals/internal/repository"
)

var ErrInvalidEmail = errors.New("invalid email address")

type ReferrerStore interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	GetReferrerByEmail(ctx context.Context, email string, campaignID uuid.UUID) (*model.Referrer, error)
	GetReferrerByCode(ctx context.Context, code string) (*model.Referrer, error)
	CreateReferrer(ctx context.Context, referrer *model.Referrer) error
	GetReferrers(ctx context.Context) ([]model.Referrer, error)
	DeleteReferrerCascade(ctx context.Context, email string) (int64, error)
}

type ReferrerService struct {
	store    ReferrerStore
	notifier Notifier
	baseURL  string
	log      *zap.Logger
}

func NewReferrerService(store ReferrerStore, notifier Notifier, baseURL string, log *zap.Logger) *ReferrerService {
	return &ReferrerService{
		store:    store,
		notifier: notifier,
		baseURL:  baseURL,
		log:      log,
	}
}

// Register creates a referrer for (email, campaign) or returns the one
// that already exists. Re-registration is a safe, repeatable read: the
// existing record comes back unchanged, no duplicate code is ever issued.
// The boolean reports whether the referrer already existed.
func (s *ReferrerService) Register(ctx context.Context, email, name string, campaignID uuid.UUID) (*model.Referrer, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, false, ErrInvalidEmail
	}

	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.store.GetReferrerByEmail(ctx, email, campaignID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, repository.ErrReferrerNotFound) {
		return nil, false, err
	}

	code := refcode.Generate()
	referrer := &model.Referrer{
		ReferralCode: code,
		ReferralLink: refcode.Link(s.baseURL, campaign.Slug, code),
		Email:        email,
		Name:         strings.TrimSpace(name),
		CampaignID:   campaignID,
	}

	if err := s.store.CreateReferrer(ctx, referrer); err != nil {
		if repository.IsUniqueViolation(err) {
			// Lost a race against a concurrent registration for the same
			// email+campaign; the stored row wins.
			winner, gerr := s.store.GetReferrerByEmail(ctx, email, campaignID)
			if gerr != nil {
				return nil, false, gerr
			}
			return winner, true, nil
		}
		return nil, false, err
	}

	if s.notifier != nil {
		s.notifier.ReferrerRegistered(referrer, campaign)
	}

	return referrer, false, nil
}

// LookupByCode resolves a referral code, both to validate links before
// rendering the friend form and to resolve the referrer during referral
// creation.
func (s *ReferrerService) LookupByCode(ctx context.Context, code string) (*model.Referrer, error) {
	return s.store.GetReferrerByCode(ctx, code)
}

func (s *ReferrerService) List(ctx context.Context) ([]model.Referrer, error) {
	return s.store.GetReferrers(ctx)
}

// Delete removes the referrer rows for an email (every campaign) together
// with all their referrals.
func (s *ReferrerService) Delete(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	deleted, err := s.store.DeleteReferrerCascade(ctx, email)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return repository.ErrReferrerNotFound
	}
	s.log.Info("referrer deleted", zap.String("email", email), zap.Int64("rows", deleted))
	return nil
}
