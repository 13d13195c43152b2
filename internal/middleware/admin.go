package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// AdminCookieName carries the shared admin password; anyone holding it
// has full admin rights.
const AdminCookieName = "admin_auth"

// AdminAuth guards admin routes with the shared-password cookie set by
// POST /api/admin/auth.
func AdminAuth(password string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if password == "" || c.Cookies(AdminCookieName) != password {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}
