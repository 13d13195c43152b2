package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgebier67/myedspace-referrals/internal/model"
	"github.com/georgebier67/myedspace-referrals/internal/repository"
)

var (
	ErrInvalidSlug       = errors.New("campaign slug is empty or invalid")
	ErrSlugTaken         = errors.New("campaign slug already exists")
	ErrCampaignProtected = errors.New("the default campaign cannot be deleted")
	ErrCampaignInUse     = errors.New("campaign has existing referrers or referrals")
)

type CampaignStore interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	GetCampaignBySlug(ctx context.Context, slug string) (*model.Campaign, error)
	GetCampaigns(ctx context.Context) ([]model.Campaign, error)
	CreateCampaign(ctx context.Context, campaign *model.Campaign) error
	UpdateCampaign(ctx context.Context, campaign *model.Campaign) error
	DeleteCampaign(ctx context.Context, id uuid.UUID) error
	CountCampaignRefs(ctx context.Context, id uuid.UUID) (referrers, referrals int, err error)
	CampaignStats(ctx context.Context, id uuid.UUID) (*model.CampaignStats, error)
}

type CampaignService struct {
	store CampaignStore
	log   *zap.Logger
}

func NewCampaignService(store CampaignStore, log *zap.Logger) *CampaignService {
	return &CampaignService{store: store, log: log}
}

type CreateCampaignInput struct {
	Slug                  string
	Name                  string
	RewardAmount          string
	RewardType            string
	HubSpotPortalID       *string
	HubSpotFormGUID       *string
	HubSpotFriendFormGUID *string
	BookingURL            *string
	PhoneFormat           model.PhoneFormat
	Copy                  *model.CampaignCopyPatch
	StandardFields        *model.StandardFieldsPatch
	CustomFields          model.CustomFields
}

// Create sets up a new active campaign. The slug is sanitized and must be
// unique; unspecified copy and standard fields get the documented
// defaults.
func (s *CampaignService) Create(ctx context.Context, in CreateCampaignInput) (*model.Campaign, error) {
	slug := model.SanitizeSlug(in.Slug)
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	phoneFormat := in.PhoneFormat
	if phoneFormat == "" {
		phoneFormat = model.PhoneFormatInternational
	}
	customFields := in.CustomFields
	if customFields == nil {
		customFields = model.CustomFields{}
	}

	campaign := &model.Campaign{
		Slug:                  slug,
		Name:                  in.Name,
		Active:                true,
		RewardAmount:          in.RewardAmount,
		RewardType:            in.RewardType,
		Copy:                  model.DefaultCopy().Merge(in.Copy),
		StandardFields:        model.DefaultStandardFields().Merge(in.StandardFields),
		CustomFields:          customFields,
		HubSpotPortalID:       in.HubSpotPortalID,
		HubSpotFormGUID:       in.HubSpotFormGUID,
		HubSpotFriendFormGUID: in.HubSpotFriendFormGUID,
		BookingURL:            in.BookingURL,
		PhoneFormat:           phoneFormat,
	}

	if err := s.store.CreateCampaign(ctx, campaign); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("campaign created",
		zap.String("slug", campaign.Slug),
		zap.String("id", campaign.ID.String()))
	return campaign, nil
}

type UpdateCampaignInput struct {
	Slug                  *string
	Name                  *string
	Active                *bool
	RewardAmount          *string
	RewardType            *string
	HubSpotPortalID       *string
	HubSpotFormGUID       *string
	HubSpotFriendFormGUID *string
	BookingURL            *string
	PhoneFormat           *model.PhoneFormat
	Copy                  *model.CampaignCopy
	StandardFields        *model.StandardFields
	CustomFields          *model.CustomFields
}

// Update patches the campaign. Only supplied top-level fields are
// touched; the nested copy, standard_fields and custom_fields objects are
// replaced wholesale when supplied.
func (s *CampaignService) Update(ctx context.Context, id uuid.UUID, in UpdateCampaignInput) (*model.Campaign, error) {
	campaign, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Slug != nil {
		slug := model.SanitizeSlug(*in.Slug)
		if slug == "" {
			return nil, ErrInvalidSlug
		}
		campaign.Slug = slug
	}
	if in.Name != nil {
		campaign.Name = *in.Name
	}
	if in.Active != nil {
		campaign.Active = *in.Active
	}
	if in.RewardAmount != nil {
		campaign.RewardAmount = *in.RewardAmount
	}
	if in.RewardType != nil {
		campaign.RewardType = *in.RewardType
	}
	if in.HubSpotPortalID != nil {
		campaign.HubSpotPortalID = emptyToNil(in.HubSpotPortalID)
	}
	if in.HubSpotFormGUID != nil {
		campaign.HubSpotFormGUID = emptyToNil(in.HubSpotFormGUID)
	}
	if in.HubSpotFriendFormGUID != nil {
		campaign.HubSpotFriendFormGUID = emptyToNil(in.HubSpotFriendFormGUID)
	}
	if in.BookingURL != nil {
		campaign.BookingURL = emptyToNil(in.BookingURL)
	}
	if in.PhoneFormat != nil {
		campaign.PhoneFormat = *in.PhoneFormat
	}
	if in.Copy != nil {
		campaign.Copy = *in.Copy
	}
	if in.StandardFields != nil {
		campaign.StandardFields = *in.StandardFields
	}
	if in.CustomFields != nil {
		campaign.CustomFields = *in.CustomFields
	}

	if err := s.store.UpdateCampaign(ctx, campaign); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return campaign, nil
}

// Delete refuses the default campaign and any campaign still referenced
// by referrers or referrals.
func (s *CampaignService) Delete(ctx context.Context, id uuid.UUID) error {
	if id == model.DefaultCampaignID {
		return ErrCampaignProtected
	}

	referrers, referrals, err := s.store.CountCampaignRefs(ctx, id)
	if err != nil {
		return err
	}
	if referrers > 0 || referrals > 0 {
		return ErrCampaignInUse
	}

	return s.store.DeleteCampaign(ctx, id)
}

func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	return s.store.GetCampaign(ctx, id)
}

// GetBySlug only sees active campaigns; inactive ones stay reachable by
// id for admins.
func (s *CampaignService) GetBySlug(ctx context.Context, slug string) (*model.Campaign, error) {
	return s.store.GetCampaignBySlug(ctx, slug)
}

func (s *CampaignService) Stats(ctx context.Context, id uuid.UUID) (*model.CampaignStats, error) {
	return s.store.CampaignStats(ctx, id)
}

type CampaignWithStats struct {
	model.Campaign
	Stats model.CampaignStats `json:"stats"`
}

func (s *CampaignService) List(ctx context.Context) ([]CampaignWithStats, error) {
	campaigns, err := s.store.GetCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CampaignWithStats, 0, len(campaigns))
	for _, campaign := range campaigns {
		stats, err := s.store.CampaignStats(ctx, campaign.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CampaignWithStats{Campaign: campaign, Stats: *stats})
	}
	return out, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
