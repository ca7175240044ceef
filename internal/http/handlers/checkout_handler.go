package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "mercacomp/internal/log"
	"mercacomp/internal/services"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
	Auth     *services.AuthService
}

// Begin freezes the cart and the selected address.
func (h *CheckoutHandler) Begin(c *fiber.Ctx) error {
	snap, err := h.Checkout.Begin(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "checkout.begin", err)
	}
	applog.Info(c, "checkout.begin", map[string]any{"lines": len(snap.Lines), "total": snap.Total.StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(snap)
}

func (h *CheckoutHandler) Snapshot(c *fiber.Ctx) error {
	snap, err := h.Checkout.Snapshot(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "checkout.snapshot", err)
	}
	return c.JSON(snap)
}

func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var p services.Payment
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "body", "Requisição inválida.")
	}
	rc, err := h.Checkout.Submit(c.UserContext(), sid, p)
	if err != nil {
		return fail(c, h.Auth, "order.place", err)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": rc.OrderID, "method": p.Method})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"orderId":         rc.OrderID,
		"message":         rc.Message,
		"redirect":        rc.Redirect,
		"redirectAfterMs": rc.RedirectIn.Milliseconds(),
	})
}

func (h *CheckoutHandler) Orders(c *fiber.Ctx) error {
	orders, err := h.Checkout.Orders(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "order.list", err)
	}
	return c.JSON(orders)
}
