package middleware

import (
	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin ensures that only users with the admin role get through. It must run after RequireAuth.
func RequireAdmin(c *fiber.Ctx) error {
	session, ok := SessionFrom(c)
	if !ok {
		return apperr.Unauthorized("Authorization required")
	}
	if !session.IsAdmin() {
		return apperr.Forbidden("Access denied. Admins only.")
	}
	return c.Next()
}
