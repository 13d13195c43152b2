package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgebier67/myedspace-referrals/internal/config"
	"github.com/georgebier67/myedspace-referrals/internal/model"
	"github.com/georgebier67/myedspace-referrals/internal/service"
)

type Handler struct {
	cfg         *config.Config
	campaignSvc *service.CampaignService
	referrerSvc *service.ReferrerService
	referralSvc *service.ReferralService
	log         *zap.Logger
}

func New(
	cfg *config.Config,
	campaignSvc *service.CampaignService,
	referrerSvc *service.ReferrerService,
	referralSvc *service.ReferralService,
	log *zap.Logger,
) *Handler {
	return &Handler{
		cfg:         cfg,
		campaignSvc: campaignSvc,
		referrerSvc: referrerSvc,
		referralSvc: referralSvc,
		log:         log,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// resolveCampaignID turns an optional id/slug pair from a request body
// into a campaign id, defaulting to the default campaign.
func (h *Handler) resolveCampaignID(c *fiber.Ctx, id, slug string) (uuid.UUID, error) {
	if id != "" {
		return uuid.Parse(id)
	}
	if slug != "" {
		campaign, err := h.campaignSvc.GetBySlug(c.Context(), slug)
		if err != nil {
			return uuid.Nil, err
		}
		return campaign.ID, nil
	}
	return model.DefaultCampaignID, nil
}

// fail logs unexpected errors and returns the generic 500 body; known
// errors should be mapped before reaching here.
func (h *Handler) fail(c *fiber.Ctx, what string, err error) error {
	h.log.Error(what, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong. Please try again.",
	})
}
