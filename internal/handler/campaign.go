package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/georgebier67/myedspace-referrals/internal/model"
	"github.com/georgebier67/myedspace-referrals/internal/repository"
	"github.com/georgebier67/myedspace-referrals/internal/service"
)

// GetPublicCampaign handles GET /api/campaigns/:slug. Only active
// campaigns resolve here, and only public-safe fields go out.
func (h *Handler) GetPublicCampaign(c *fiber.Ctx) error {
	campaign, err := h.campaignSvc.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Campaign not found or inactive",
			})
		}
		return h.fail(c, "failed to fetch campaign", err)
	}

	return c.JSON(fiber.Map{
		"campaign": fiber.Map{
			"id":              campaign.ID,
			"slug":            campaign.Slug,
			"name":            campaign.Name,
			"active":          campaign.Active,
			"reward_amount":   campaign.RewardAmount,
			"reward_type":     campaign.RewardType,
			"copy":            campaign.Copy,
			"standard_fields": campaign.StandardFields,
			"custom_fields":   campaign.CustomFields,
			"phone_format":    campaign.PhoneFormat,
		},
	})
}

// ListCampaigns handles GET /api/admin/campaigns.
func (h *Handler) ListCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.campaignSvc.List(c.Context())
	if err != nil {
		return h.fail(c, "failed to list campaigns", err)
	}
	return c.JSON(fiber.Map{
		"campaigns": campaigns,
	})
}

type CreateCampaignRequest struct {
	Slug                  string                     `json:"slug"`
	Name                  string                     `json:"name"`
	RewardAmount          string                     `json:"reward_amount"`
	RewardType            string                     `json:"reward_type"`
	HubSpotPortalID       *string                    `json:"hubspot_portal_id"`
	HubSpotFormGUID       *string                    `json:"hubspot_form_guid"`
	HubSpotFriendFormGUID *string                    `json:"hubspot_friend_form_guid"`
	BookingURL            *string                    `json:"booking_url"`
	PhoneFormat           model.PhoneFormat          `json:"phone_format"`
	Copy                  *model.CampaignCopyPatch   `json:"copy"`
	StandardFields        *model.StandardFieldsPatch `json:"standard_fields"`
	CustomFields          model.CustomFields         `json:"custom_fields"`
}

// CreateCampaign handles POST /api/admin/campaigns.
func (h *Handler) CreateCampaign(c *fiber.Ctx) error {
	var req CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Slug == "" || req.Name == "" || req.RewardAmount == "" || req.RewardType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: slug, name, reward_amount, reward_type",
		})
	}

	campaign, err := h.campaignSvc.Create(c.Context(), service.CreateCampaignInput{
		Slug:                  req.Slug,
		Name:                  req.Name,
		RewardAmount:          req.RewardAmount,
		RewardType:            req.RewardType,
		HubSpotPortalID:       req.HubSpotPortalID,
		HubSpotFormGUID:       req.HubSpotFormGUID,
		HubSpotFriendFormGUID: req.HubSpotFriendFormGUID,
		BookingURL:            req.BookingURL,
		PhoneFormat:           req.PhoneFormat,
		Copy:                  req.Copy,
		StandardFields:        req.StandardFields,
		CustomFields:          req.CustomFields,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlugTaken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to create campaign. Slug may already exist.",
			})
		case errors.Is(err, service.ErrInvalidSlug):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid campaign slug",
			})
		default:
			return h.fail(c, "campaign creation failed", err)
		}
	}

	return c.JSON(fiber.Map{
		"campaign": campaign,
	})
}

// GetCampaign handles GET /api/admin/campaigns/:id. Admin lookup sees
// inactive campaigns too.
func (h *Handler) GetCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign id",
		})
	}

	campaign, err := h.campaignSvc.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		}
		return h.fail(c, "failed to fetch campaign", err)
	}

	return c.JSON(fiber.Map{
		"campaign": campaign,
	})
}

type UpdateCampaignRequest struct {
	Slug                  *string               `json:"slug"`
	Name                  *string               `json:"name"`
	Active                *bool                 `json:"active"`
	RewardAmount          *string               `json:"reward_amount"`
	RewardType            *string               `json:"reward_type"`
	HubSpotPortalID       *string               `json:"hubspot_portal_id"`
	HubSpotFormGUID       *string               `json:"hubspot_form_guid"`
	HubSpotFriendFormGUID *string               `json:"hubspot_friend_form_guid"`
	BookingURL            *string               `json:"booking_url"`
	PhoneFormat           *model.PhoneFormat    `json:"phone_format"`
	Copy                  *model.CampaignCopy   `json:"copy"`
	StandardFields        *model.StandardFields `json:"standard_fields"`
	CustomFields          *model.CustomFields   `json:"custom_fields"`
}

// UpdateCampaign handles PUT /api/admin/campaigns/:id with patch
// semantics. Nested copy/standard_fields/custom_fields are replaced
// wholesale when supplied.
func (h *Handler) UpdateCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign id",
		})
	}

	var req UpdateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	campaign, err := h.campaignSvc.Update(c.Context(), id, service.UpdateCampaignInput{
		Slug:                  req.Slug,
		Name:                  req.Name,
		Active:                req.Active,
		RewardAmount:          req.RewardAmount,
		RewardType:            req.RewardType,
		HubSpotPortalID:       req.HubSpotPortalID,
		HubSpotFormGUID:       req.HubSpotFormGUID,
		HubSpotFriendFormGUID: req.HubSpotFriendFormGUID,
		BookingURL:            req.BookingURL,
		PhoneFormat:           req.PhoneFormat,
		Copy:                  req.Copy,
		StandardFields:        req.StandardFields,
		CustomFields:          req.CustomFields,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCampaignNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		case errors.Is(err, service.ErrSlugTaken), errors.Is(err, service.ErrInvalidSlug):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to update campaign",
			})
		default:
			return h.fail(c, "campaign update failed", err)
		}
	}

	return c.JSON(fiber.Map{
		"campaign": campaign,
	})
}

// DeleteCampaign handles DELETE /api/admin/campaigns/:id.
func (h *Handler) DeleteCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid campaign id",
		})
	}

	if err := h.campaignSvc.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignProtected):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Cannot delete the default campaign",
			})
		case errors.Is(err, service.ErrCampaignInUse):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to delete campaign. It may have existing referrers or referrals.",
			})
		case errors.Is(err, repository.ErrCampaignNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		default:
			return h.fail(c, "campaign deletion failed", err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
