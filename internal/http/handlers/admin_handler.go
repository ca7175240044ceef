package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "mercacomp/internal/log"
	"mercacomp/internal/services"
)

// AdminHandler serves the read-only admin tables.
type AdminHandler struct {
	Admin *services.AdminService
	Auth  *services.AuthService
}

func (h *AdminHandler) Clients(c *fiber.Ctx) error {
	out, err := h.Admin.Clients(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "admin.clients", err)
	}
	applog.Audit(c, "admin.clients.view", map[string]any{"rows": len(out)})
	return c.JSON(out)
}

func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	out, err := h.Admin.Orders(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "admin.orders", err)
	}
	applog.Audit(c, "admin.orders.view", map[string]any{"rows": len(out)})
	return c.JSON(out)
}

func (h *AdminHandler) Reviews(c *fiber.Ctx) error {
	out, err := h.Admin.Reviews(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "admin.reviews", err)
	}
	return c.JSON(out)
}

func (h *AdminHandler) Companies(c *fiber.Ctx) error {
	out, err := h.Admin.Companies(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "admin.companies", err)
	}
	return c.JSON(out)
}
