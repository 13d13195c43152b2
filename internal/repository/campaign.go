package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgebier67/myedspace-referrals/internal/model"
)

var ErrCampaignNotFound = errors.New("campaign not found")

func (r *Repository) GetCampaign(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var campaign model.Campaign
	err := r.db.GetContext(ctx, &campaign, "SELECT * FROM campaigns WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// GetCampaignBySlug resolves the public lookup path: inactive campaigns
// are invisible here, only via GetCampaign.
func (r *Repository) GetCampaignBySlug(ctx context.Context, slug string) (*model.Campaign, error) {
	var campaign model.Campaign
	err := r.db.GetContext(ctx, &campaign,
		"SELECT * FROM campaigns WHERE slug = $1 AND active = true", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *Repository) GetCampaigns(ctx context.Context) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := r.db.SelectContext(ctx, &campaigns, "SELECT * FROM campaigns ORDER BY created_at DESC")
	return campaigns, err
}

func (r *Repository) CreateCampaign(ctx context.Context, campaign *model.Campaign) error {
	query := `
		INSERT INTO campaigns (slug, name, active, reward_amount, reward_type, copy,
			standard_fields, custom_fields, hubspot_portal_id, hubspot_form_guid,
			hubspot_friend_form_guid, booking_url, phone_format)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		campaign.Slug,
		campaign.Name,
		campaign.Active,
		campaign.RewardAmount,
		campaign.RewardType,
		campaign.Copy,
		campaign.StandardFields,
		campaign.CustomFields,
		campaign.HubSpotPortalID,
		campaign.HubSpotFormGUID,
		campaign.HubSpotFriendFormGUID,
		campaign.BookingURL,
		campaign.PhoneFormat,
	).Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
}

func (r *Repository) UpdateCampaign(ctx context.Context, campaign *model.Campaign) error {
	query := `
		UPDATE campaigns SET
			slug = $2,
			name = $3,
			active = $4,
			reward_amount = $5,
			reward_type = $6,
			copy = $7,
			standard_fields = $8,
			custom_fields = $9,
			hubspot_portal_id = $10,
			hubspot_form_guid = $11,
			hubspot_friend_form_guid = $12,
			booking_url = $13,
			phone_format = $14,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		campaign.ID,
		campaign.Slug,
		campaign.Name,
		campaign.Active,
		campaign.RewardAmount,
		campaign.RewardType,
		campaign.Copy,
		campaign.StandardFields,
		campaign.CustomFields,
		campaign.HubSpotPortalID,
		campaign.HubSpotFormGUID,
		campaign.HubSpotFriendFormGUID,
		campaign.BookingURL,
		campaign.PhoneFormat,
	).Scan(&campaign.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCampaignNotFound
	}
	return err
}

func (r *Repository) DeleteCampaign(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM campaigns WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// CountCampaignRefs returns how many referrers and referrals reference the
// campaign. Deletion is rejected while either count is non-zero.
func (r *Repository) CountCampaignRefs(ctx context.Context, id uuid.UUID) (referrers, referrals int, err error) {
	err = r.db.GetContext(ctx, &referrers,
		"SELECT COUNT(*) FROM referrers WHERE campaign_id = $1", id)
	if err != nil {
		return 0, 0, fmt.Errorf("count referrers: %w", err)
	}
	err = r.db.GetContext(ctx, &referrals,
		"SELECT COUNT(*) FROM referrals WHERE campaign_id = $1", id)
	if err != nil {
		return 0, 0, fmt.Errorf("count referrals: %w", err)
	}
	return referrers, referrals, nil
}

func (r *Repository) CampaignStats(ctx context.Context, id uuid.UUID) (*model.CampaignStats, error) {
	stats := &model.CampaignStats{}
	query := `
		SELECT
			(SELECT COUNT(*) FROM referrers WHERE campaign_id = $1) AS referrers,
			COUNT(*) AS referrals,
			COUNT(*) FILTER (WHERE status = 'qualified') AS qualified,
			COUNT(*) FILTER (WHERE status = 'rewarded') AS rewarded
		FROM referrals WHERE campaign_id = $1`

	if err := r.db.GetContext(ctx, stats, query, id); err != nil {
		return nil, err
	}
	return stats, nil
}
