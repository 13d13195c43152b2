package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/georgebier67/myedspace-referrals/internal/model"
	"github.com/georgebier67/myedspace-referrals/internal/repository"
)

// mockStore is an in-memory stand-in for the repository, implementing
// ReferrerStore, ReferralStore and CampaignStore.
type mockStore struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*model.Campaign
	referrers []*model.Referrer
	referrals map[string]*model.Referral
	nextID    int64

	// failNextCreateReferrer simulates losing an insert race: the next
	// CreateReferrer call returns a unique violation instead of inserting.
	failNextCreateReferrer bool
	// missNextGetByEmail makes the next GetReferrerByEmail miss, as if
	// the winning row had not been committed yet at lookup time.
	missNextGetByEmail bool
}

func newMockStore(campaigns ...*model.Campaign) *mockStore {
	s := &mockStore{
		campaigns: make(map[uuid.UUID]*model.Campaign),
		referrals: make(map[string]*model.Referral),
		nextID:    1,
	}
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
	return s
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

func (s *mockStore) GetCampaign(_ context.Context, id uuid.UUID) (*model.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, repository.ErrCampaignNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *mockStore) GetCampaignBySlug(_ context.Context, slug string) (*model.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.campaigns {
		if c.Slug == slug && c.Active {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCampaignNotFound
}

func (s *mockStore) GetCampaigns(_ context.Context) ([]model.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, *c)
	}
	return out, nil
}

func (s *mockStore) CreateCampaign(_ context.Context, campaign *model.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.campaigns {
		if c.Slug == campaign.Slug {
			return uniqueViolation()
		}
	}
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	cp := *campaign
	s.campaigns[campaign.ID] = &cp
	return nil
}

func (s *mockStore) UpdateCampaign(_ context.Context, campaign *model.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaign.ID]; !ok {
		return repository.ErrCampaignNotFound
	}
	for _, c := range s.campaigns {
		if c.Slug == campaign.Slug && c.ID != campaign.ID {
			return uniqueViolation()
		}
	}
	cp := *campaign
	s.campaigns[campaign.ID] = &cp
	return nil
}

func (s *mockStore) DeleteCampaign(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[id]; !ok {
		return repository.ErrCampaignNotFound
	}
	delete(s.campaigns, id)
	return nil
}

func (s *mockStore) CountCampaignRefs(_ context.Context, id uuid.UUID) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	referrers, referrals := 0, 0
	for _, r := range s.referrers {
		if r.CampaignID == id {
			referrers++
		}
	}
	for _, r := range s.referrals {
		if r.CampaignID == id {
			referrals++
		}
	}
	return referrers, referrals, nil
}

func (s *mockStore) CampaignStats(_ context.Context, id uuid.UUID) (*model.CampaignStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &model.CampaignStats{}
	for _, r := range s.referrers {
		if r.CampaignID == id {
			stats.Referrers++
		}
	}
	for _, r := range s.referrals {
		if r.CampaignID != id {
			continue
		}
		stats.Referrals++
		switch r.Status {
		case model.StatusQualified:
			stats.Qualified++
		case model.StatusRewarded:
			stats.Rewarded++
		}
	}
	return stats, nil
}

func (s *mockStore) GetReferrerByEmail(_ context.Context, email string, campaignID uuid.UUID) (*model.Referrer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missNextGetByEmail {
		s.missNextGetByEmail = false
		return nil, repository.ErrReferrerNotFound
	}
	for _, r := range s.referrers {
		if r.Email == email && r.CampaignID == campaignID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrReferrerNotFound
}

func (s *mockStore) GetReferrerByCode(_ context.Context, code string) (*model.Referrer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.referrers {
		if r.ReferralCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrReferrerNotFound
}

func (s *mockStore) CreateReferrer(_ context.Context, referrer *model.Referrer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNextCreateReferrer {
		s.failNextCreateReferrer = false
		return uniqueViolation()
	}
	for _, r := range s.referrers {
		if r.Email == referrer.Email && r.CampaignID == referrer.CampaignID {
			return uniqueViolation()
		}
	}
	referrer.ID = s.nextID
	s.nextID++
	cp := *referrer
	s.referrers = append(s.referrers, &cp)
	return nil
}

func (s *mockStore) GetReferrers(_ context.Context) ([]model.Referrer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Referrer, 0, len(s.referrers))
	for _, r := range s.referrers {
		out = append(out, *r)
	}
	return out, nil
}

func (s *mockStore) DeleteReferrerCascade(_ context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	kept := s.referrers[:0]
	for _, r := range s.referrers {
		if r.Email == email {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.referrers = kept
	for id, r := range s.referrals {
		if r.ReferrerEmail == email {
			deleted++
			delete(s.referrals, id)
		}
	}
	return deleted, nil
}

func (s *mockStore) GetReferral(_ context.Context, id string) (*model.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.referrals[id]
	if !ok {
		return nil, repository.ErrReferralNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *mockStore) CreateReferral(_ context.Context, referral *model.Referral, referrerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *referral
	s.referrals[referral.ID] = &cp
	for _, r := range s.referrers {
		if r.ID == referrerID {
			r.TotalReferrals++
		}
	}
	return nil
}

func (s *mockStore) UpdateReferral(_ context.Context, referral *model.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.referrals[referral.ID]; !ok {
		return repository.ErrReferralNotFound
	}
	cp := *referral
	s.referrals[referral.ID] = &cp
	return nil
}

func (s *mockStore) GetReferrals(_ context.Context, campaignID *uuid.UUID) ([]model.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Referral, 0, len(s.referrals))
	for _, r := range s.referrals {
		if campaignID != nil && r.CampaignID != *campaignID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *mockStore) GetReferralStats(_ context.Context, campaignID *uuid.UUID) (*model.ReferralStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &model.ReferralStats{}
	for _, r := range s.referrals {
		if campaignID != nil && r.CampaignID != *campaignID {
			continue
		}
		stats.Total++
		switch r.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusPurchased:
			stats.Purchased++
		case model.StatusQualified:
			stats.Qualified++
		case model.StatusRewarded:
			stats.Rewarded++
		case model.StatusDisqualified:
			stats.Disqualified++
		}
	}
	return stats, nil
}

// mockNotifier records every event it receives.
type mockNotifier struct {
	mu         sync.Mutex
	registered []string
	created    []string
	qualified  []string
	rewards    []string
}

func (n *mockNotifier) ReferrerRegistered(referrer *model.Referrer, _ *model.Campaign) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registered = append(n.registered, referrer.Email)
}

func (n *mockNotifier) ReferralCreated(referral *model.Referral, _ *model.Referrer, _ *model.Campaign) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, referral.ReferredEmail)
}

func (n *mockNotifier) ReferralQualified(referral *model.Referral, reward string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.qualified = append(n.qualified, referral.ID)
	n.rewards = append(n.rewards, reward)
}

func testCampaign(slug string) *model.Campaign {
	return &model.Campaign{
		ID:             uuid.New(),
		Slug:           slug,
		Name:           slug + " campaign",
		Active:         true,
		RewardAmount:   "$150",
		RewardType:     "Amazon voucher",
		Copy:           model.DefaultCopy(),
		StandardFields: model.DefaultStandardFields(),
		PhoneFormat:    model.PhoneFormatInternational,
	}
}
