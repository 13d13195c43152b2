package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgebier67/myedspace-referrals/internal/model"
)

var ErrReferrerNotFound = errors.New("referrer not found")

func (r *Repository) GetReferrerByEmail(ctx context.Context, email string, campaignID uuid.UUID) (*model.Referrer, error) {
	var referrer model.Referrer
	err := r.db.GetContext(ctx, &referrer,
		"SELECT * FROM referrers WHERE email = $1 AND campaign_id = $2", email, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReferrerNotFound
		}
		return nil, err
	}
	return &referrer, nil
}

func (r *Repository) GetReferrerByCode(ctx context.Context, code string) (*model.Referrer, error) {
	var referrer model.Referrer
	err := r.db.GetContext(ctx, &referrer,
		"SELECT * FROM referrers WHERE referral_code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReferrerNotFound
		}
		return nil, err
	}
	return &referrer, nil
}

func (r *Repository) CreateReferrer(ctx context.Context, referrer *model.Referrer) error {
	query := `
		INSERT INTO referrers (email, name, referral_code, referral_link, campaign_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, total_referrals, created_at`

	return r.db.QueryRowContext(ctx, query,
		referrer.Email,
		referrer.Name,
		referrer.ReferralCode,
		referrer.ReferralLink,
		referrer.CampaignID,
	).Scan(&referrer.ID, &referrer.TotalReferrals, &referrer.CreatedAt)
}

func (r *Repository) GetReferrers(ctx context.Context) ([]model.Referrer, error) {
	var referrers []model.Referrer
	err := r.db.SelectContext(ctx, &referrers, "SELECT * FROM referrers ORDER BY created_at DESC")
	return referrers, err
}

// DeleteReferrerCascade removes the referrer's referral rows and then the
// referrer rows themselves (all campaigns for that email) in a single
// transaction. Returns how many referrer rows went away.
func (r *Repository) DeleteReferrerCascade(ctx context.Context, email string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM referrals WHERE referrer_email = $1", email); err != nil {
		return 0, fmt.Errorf("failed to delete referrals: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM referrers WHERE email = $1", email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete referrer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, tx.Commit()
}
