package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gradehub/gradehub-api/internal/utils"
)

// RequireAdmin ensures the authenticated user holds the admin flag.
// Course-level roles are checked in the services, since they depend on the
// enrollment being acted on.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if admin, ok := c.Locals("is_admin").(bool); !ok || !admin {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
