package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mercacomp/internal/domain"
	applog "mercacomp/internal/log"
	"mercacomp/internal/services"
)

type AddressHandler struct {
	Addresses *services.AddressService
	Auth      *services.AuthService
}

type addressBook struct {
	Addresses  []domain.Address `json:"addresses"`
	SelectedID string           `json:"selectedId,omitempty"`
}

func (h *AddressHandler) book(c *fiber.Ctx, sid string) error {
	list, err := h.Addresses.List(c.UserContext(), sid)
	if err != nil {
		return fail(c, h.Auth, "address.list", err)
	}
	if list == nil {
		list = []domain.Address{}
	}
	out := addressBook{Addresses: list}
	if sel, ok, err := h.Addresses.Selected(c.UserContext(), sid); err != nil {
		return fail(c, h.Auth, "address.selected", err)
	} else if ok {
		out.SelectedID = sel.ID
	}
	return c.JSON(out)
}

func (h *AddressHandler) List(c *fiber.Ctx) error {
	return h.book(c, ensureSID(c))
}

func (h *AddressHandler) Selected(c *fiber.Ctx) error {
	a, ok, err := h.Addresses.Selected(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "address.selected", err)
	}
	if !ok {
		return fail(c, h.Auth, "address.selected", services.ErrAddressNotFound)
	}
	return c.JSON(a)
}

func (h *AddressHandler) Create(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in domain.Address
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "Requisição inválida.")
	}
	a, err := h.Addresses.Create(c.UserContext(), sid, in)
	if err != nil {
		return fail(c, h.Auth, "address.create", err)
	}
	applog.Audit(c, "address.create", map[string]any{"address_id": a.ID})
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *AddressHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in domain.Address
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "Requisição inválida.")
	}
	a, err := h.Addresses.Update(c.UserContext(), sid, c.Params("id"), in)
	if err != nil {
		return fail(c, h.Auth, "address.update", err)
	}
	applog.Audit(c, "address.update", map[string]any{"address_id": a.ID})
	return c.JSON(a)
}

func (h *AddressHandler) Delete(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id := c.Params("id")
	if err := h.Addresses.Delete(c.UserContext(), sid, id); err != nil {
		return fail(c, h.Auth, "address.delete", err)
	}
	applog.Audit(c, "address.delete", map[string]any{"address_id": id})
	return h.book(c, sid)
}

func (h *AddressHandler) Select(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Addresses.Select(c.UserContext(), sid, c.Params("id")); err != nil {
		return fail(c, h.Auth, "address.select", err)
	}
	return h.book(c, sid)
}

// Postal returns a prefilled address for a postal code.
func (h *AddressHandler) Postal(c *fiber.Ctx) error {
	a, err := h.Addresses.LookupPostal(c.UserContext(), c.Params("cep"))
	if err != nil {
		return fail(c, h.Auth, "postal.lookup", err)
	}
	return c.JSON(a)
}
