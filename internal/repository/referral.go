package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgebier67/myedspace-referrals/internal/model"
)

var ErrReferralNotFound = errors.New("referral not found")

func (r *Repository) GetReferral(ctx context.Context, id string) (*model.Referral, error) {
	var referral model.Referral
	err := r.db.GetContext(ctx, &referral, "SELECT * FROM referrals WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReferralNotFound
		}
		return nil, err
	}
	return &referral, nil
}

// CreateReferral inserts the referral and bumps the referrer's counter in
// one transaction. The increment is a single UPDATE so concurrent
// referrals for the same referrer never under-count, and it is keyed on
// the referrer's id: the referral's campaign may differ from the one the
// referrer registered under.
func (r *Repository) CreateReferral(ctx context.Context, referral *model.Referral, referrerID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO referrals (id, referrer_email, referrer_name, referred_email,
			referred_name, referred_phone, referred_child_grade, custom_fields,
			campaign_id, status, signup_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	err = tx.QueryRowContext(ctx, query,
		referral.ID,
		referral.ReferrerEmail,
		referral.ReferrerName,
		referral.ReferredEmail,
		referral.ReferredName,
		referral.ReferredPhone,
		referral.ReferredChildGrade,
		referral.CustomFields,
		referral.CampaignID,
		referral.Status,
		referral.SignupDate,
		referral.Notes,
	).Scan(&referral.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert referral: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE referrers SET total_referrals = total_referrals + 1
		WHERE id = $1`,
		referrerID)
	if err != nil {
		return fmt.Errorf("failed to increment referral count: %w", err)
	}

	return tx.Commit()
}

func (r *Repository) UpdateReferral(ctx context.Context, referral *model.Referral) error {
	query := `
		UPDATE referrals SET
			status = $2,
			purchase_date = $3,
			reward_eligible_date = $4,
			reward_issued_date = $5,
			notes = $6
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		referral.ID,
		referral.Status,
		referral.PurchaseDate,
		referral.RewardEligibleDate,
		referral.RewardIssuedDate,
		referral.Notes,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReferralNotFound
	}
	return nil
}

// GetReferrals lists referrals, newest first, optionally scoped to a
// campaign.
func (r *Repository) GetReferrals(ctx context.Context, campaignID *uuid.UUID) ([]model.Referral, error) {
	var referrals []model.Referral
	if campaignID != nil {
		err := r.db.SelectContext(ctx, &referrals,
			"SELECT * FROM referrals WHERE campaign_id = $1 ORDER BY created_at DESC", *campaignID)
		return referrals, err
	}
	err := r.db.SelectContext(ctx, &referrals,
		"SELECT * FROM referrals ORDER BY created_at DESC")
	return referrals, err
}

func (r *Repository) GetReferralStats(ctx context.Context, campaignID *uuid.UUID) (*model.ReferralStats, error) {
	stats := &model.ReferralStats{}
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'purchased') AS purchased,
			COUNT(*) FILTER (WHERE status = 'qualified') AS qualified,
			COUNT(*) FILTER (WHERE status = 'rewarded') AS rewarded,
			COUNT(*) FILTER (WHERE status = 'disqualified') AS disqualified
		FROM referrals`

	var err error
	if campaignID != nil {
		err = r.db.GetContext(ctx, stats, query+" WHERE campaign_id = $1", *campaignID)
	} else {
		err = r.db.GetContext(ctx, stats, query)
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}
