package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/georgebier67/myedspace-referrals/internal/middleware"
)

type AdminAuthRequest struct {
	Password string `json:"password"`
}

// AdminLogin handles POST /api/admin/auth: validates the shared password
// and sets the admin cookie for 24 hours.
func (h *Handler) AdminLogin(c *fiber.Ctx) error {
	var req AdminAuthRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Password is required",
		})
	}

	if h.cfg.Admin.Password == "" || req.Password != h.cfg.Admin.Password {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid password",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    req.Password,
		HTTPOnly: true,
		Secure:   h.cfg.Server.Environment == "production",
		SameSite: fiber.CookieSameSiteStrictMode,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// AdminAuthCheck handles GET /api/admin/auth.
func (h *Handler) AdminAuthCheck(c *fiber.Ctx) error {
	password := c.Cookies(middleware.AdminCookieName)
	authenticated := h.cfg.Admin.Password != "" && password == h.cfg.Admin.Password
	return c.JSON(fiber.Map{
		"authenticated": authenticated,
	})
}

// ExportReferrals handles GET /api/admin/export?type=referrals|referrers:
// CSV download for offline processing.
func (h *Handler) ExportReferrals(c *fiber.Ctx) error {
	exportType := c.Query("type", "referrals")
	date := time.Now().Format("2006-01-02")

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	switch exportType {
	case "referrers":
		referrers, err := h.referrerSvc.List(c.Context())
		if err != nil {
			return h.fail(c, "export failed", err)
		}
		_ = w.Write([]string{"Name", "Email", "Referral Code", "Referral Link", "Total Referrals", "Created At"})
		for _, r := range referrers {
			_ = w.Write([]string{
				r.Name,
				r.Email,
				r.ReferralCode,
				r.ReferralLink,
				fmt.Sprintf("%d", r.TotalReferrals),
				r.CreatedAt.Format(time.RFC3339),
			})
		}

	default:
		campaignID, err := optionalCampaignID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid campaign id",
			})
		}
		referrals, err := h.referralSvc.List(c.Context(), campaignID)
		if err != nil {
			return h.fail(c, "export failed", err)
		}
		_ = w.Write([]string{
			"ID", "Referrer Name", "Referrer Email", "Friend Name", "Friend Email",
			"Friend Phone", "Child Grade", "Status", "Signup Date", "Purchase Date",
			"Reward Eligible Date", "Reward Issued Date", "Notes", "Created At",
		})
		for _, r := range referrals {
			_ = w.Write([]string{
				r.ID,
				r.ReferrerName,
				r.ReferrerEmail,
				r.ReferredName,
				r.ReferredEmail,
				r.ReferredPhone,
				r.ReferredChildGrade,
				string(r.Status),
				r.SignupDate.Format(time.RFC3339),
				formatDate(r.PurchaseDate),
				formatDate(r.RewardEligibleDate),
				formatDate(r.RewardIssuedDate),
				r.Notes,
				r.CreatedAt.Format(time.RFC3339),
			})
		}
		exportType = "referrals"
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return h.fail(c, "export failed", err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-%s.csv"`, exportType, date))
	return c.Send(buf.Bytes())
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
