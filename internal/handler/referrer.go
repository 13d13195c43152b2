package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/georgebier67/myedspace-referrals/internal/repository"
	"github.com/georgebier67/myedspace-referrals/internal/service"
)

type RegisterRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	CampaignID   string `json:"campaignId"`
	CampaignSlug string `json:"campaignSlug"`
}

// Register handles POST /api/register: idempotent referrer signup.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Email == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and name are required",
		})
	}

	campaignID, err := h.resolveCampaignID(c, req.CampaignID, req.CampaignSlug)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Campaign not found",
		})
	}

	referrer, isExisting, err := h.referrerSvc.Register(c.Context(), req.Email, req.Name, campaignID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Please enter a valid email address",
			})
		case errors.Is(err, repository.ErrCampaignNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		default:
			return h.fail(c, "registration failed", err)
		}
	}

	message := "Your referral link has been created!"
	if isExisting {
		message = "Welcome back! Here is your existing referral link."
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"referrer":   referrer,
		"isExisting": isExisting,
		"message":    message,
	})
}

// ValidateCode handles GET /api/validate-code?code=: link validation
// before the friend-signup form renders.
func (h *Handler) ValidateCode(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"valid": false,
			"error": "No referral code provided",
		})
	}

	referrer, err := h.referrerSvc.LookupByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrReferrerNotFound) {
			return c.JSON(fiber.Map{
				"valid": false,
				"error": "Invalid referral code",
			})
		}
		return h.fail(c, "code validation failed", err)
	}

	return c.JSON(fiber.Map{
		"valid": true,
		"referrer": fiber.Map{
			"name":  referrer.Name,
			"email": referrer.Email,
		},
	})
}

type DeleteReferrerRequest struct {
	Email string `json:"email"`
}

// DeleteReferrer handles POST /api/admin/delete-referrer: cascading
// removal of a referrer and every referral they produced.
func (h *Handler) DeleteReferrer(c *fiber.Ctx) error {
	var req DeleteReferrerRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email is required",
		})
	}

	if err := h.referrerSvc.Delete(c.Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrReferrerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Referrer not found",
			})
		}
		return h.fail(c, "referrer deletion failed", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Referrer and associated referrals deleted",
	})
}
