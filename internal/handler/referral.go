package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/georgebier67/myedspace-referrals/internal/model"
	"github.com/georgebier67/myedspace-referrals/internal/repository"
	"github.com/georgebier67/myedspace-referrals/internal/service"
)

type ReferRequest struct {
	ReferralCode string            `json:"referralCode"`
	FriendName   string            `json:"friendName"`
	FriendEmail  string            `json:"friendEmail"`
	FriendPhone  string            `json:"friendPhone"`
	ChildGrade   string            `json:"childGrade"`
	CampaignID   string            `json:"campaignId"`
	CustomFields map[string]string `json:"customFields"`
}

// Refer handles POST /api/refer: a friend signing up through a referral
// link.
func (h *Handler) Refer(c *fiber.Ctx) error {
	var req ReferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ReferralCode == "" || req.FriendName == "" || req.FriendEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and email are required",
		})
	}

	in := service.CreateReferralInput{
		ReferralCode: req.ReferralCode,
		FriendName:   req.FriendName,
		FriendEmail:  req.FriendEmail,
		FriendPhone:  req.FriendPhone,
		ChildGrade:   req.ChildGrade,
		CustomFields: req.CustomFields,
	}
	if req.CampaignID != "" {
		id, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		}
		in.CampaignID = &id
	}

	referral, bookingURL, err := h.referralSvc.CreateReferral(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Please enter a valid email address",
			})
		case errors.Is(err, repository.ErrReferrerNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid referral code. Please check your link and try again.",
			})
		case errors.Is(err, repository.ErrCampaignNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		default:
			return h.fail(c, "referral submission failed", err)
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"referral":   referral,
		"bookingUrl": bookingURL,
		"message":    "Thank you for signing up!",
	})
}

type UpdateStatusRequest struct {
	ReferralID string `json:"referralId"`
	Action     string `json:"action"`
	Notes      string `json:"notes"`
}

// UpdateStatus handles POST /api/admin/update-status: the admin-driven
// lifecycle transitions.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ReferralID == "" || req.Action == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Referral ID and action are required",
		})
	}

	referral, err := h.referralSvc.Transition(c.Context(), req.ReferralID, model.ReferralAction(req.Action), req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReferralNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Referral not found",
			})
		case errors.Is(err, service.ErrInvalidAction):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid action",
			})
		case errors.Is(err, service.ErrIllegalTransition):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return h.fail(c, "status update failed", err)
		}
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"referral": referral,
	})
}

// ListReferrals handles GET /api/admin/referrals: the dashboard feed of
// referrals, aggregate stats and referrers, optionally campaign-scoped.
func (h *Handler) ListReferrals(c *fiber.Ctx) error {
	campaignID, err := optionalCampaignID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign id",
		})
	}

	referrals, err := h.referralSvc.List(c.Context(), campaignID)
	if err != nil {
		return h.fail(c, "failed to list referrals", err)
	}
	stats, err := h.referralSvc.GetStats(c.Context(), campaignID)
	if err != nil {
		return h.fail(c, "failed to aggregate referral stats", err)
	}
	referrers, err := h.referrerSvc.List(c.Context())
	if err != nil {
		return h.fail(c, "failed to list referrers", err)
	}

	return c.JSON(fiber.Map{
		"referrals": referrals,
		"stats":     stats,
		"referrers": referrers,
	})
}

func optionalCampaignID(c *fiber.Ctx) (*uuid.UUID, error) {
	raw := c.Query("campaign_id")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
