package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "mercacomp/internal/log"
	"mercacomp/internal/services"
)

// CurrentUser puts the signed-in profile, if any, into Locals for logs and templates.
func CurrentUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c)
		if u, ok, err := auth.CurrentUser(c.UserContext(), sid); err == nil && ok {
			c.Locals("user", u)
			c.Locals(applog.LocalUserID, u.ID)
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c)
		if _, ok, err := auth.CurrentUser(c.UserContext(), sid); err != nil || !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Faça login para continuar.", "redirect": loginPath})
		}
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c)
		u, ok, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil || !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Faça login para continuar.", "redirect": loginPath})
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Acesso negado."})
		}
		return c.Next()
	}
}
