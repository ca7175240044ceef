package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mercacomp/internal/services"
	"mercacomp/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
	Auth    *services.AuthService
}

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	home, err := h.Catalog.Home(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "catalog.home", err)
	}
	return c.JSON(home)
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(h.Catalog.Categories())
}

// Products filters by ?category= and ?q=. Invalid filters are rejected.
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	var category, q string
	if raw := c.Query("category"); raw != "" {
		var ok bool
		if category, ok = validate.Category(raw); !ok {
			return badRequest(c, "category", "Categoria inválida.")
		}
	}
	if raw := c.Query("q"); raw != "" {
		var ok bool
		if q, ok = validate.Q(raw); !ok {
			return badRequest(c, "q", "Busca inválida.")
		}
	}
	ps, err := h.Catalog.Products(c.UserContext(), ensureSID(c), category, q)
	if err != nil {
		return fail(c, h.Auth, "catalog.products", err)
	}
	return c.JSON(ps)
}

func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "Produto inválido.")
	}
	p, err := h.Catalog.Product(c.UserContext(), ensureSID(c), id)
	if err != nil {
		return fail(c, h.Auth, "catalog.product", err)
	}
	return c.JSON(p)
}

func (h *CatalogHandler) Compare(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "Produto inválido.")
	}
	cmp, err := h.Catalog.Compare(c.UserContext(), ensureSID(c), id)
	if err != nil {
		return fail(c, h.Auth, "catalog.compare", err)
	}
	return c.JSON(cmp)
}

func (h *CatalogHandler) Stores(c *fiber.Ctx) error {
	stores, err := h.Catalog.Stores(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "catalog.stores", err)
	}
	return c.JSON(stores)
}

func (h *CatalogHandler) Store(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "Supermercado inválido.")
	}
	st, err := h.Catalog.Store(c.UserContext(), ensureSID(c), id)
	if err != nil {
		return fail(c, h.Auth, "catalog.store", err)
	}
	return c.JSON(st)
}

func (h *CatalogHandler) Shelf(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "Supermercado inválido.")
	}
	category := ""
	if raw := c.Query("category"); raw != "" {
		if category, ok = validate.Category(raw); !ok {
			return badRequest(c, "category", "Categoria inválida.")
		}
	}
	shelf, err := h.Catalog.Shelf(c.UserContext(), ensureSID(c), id, category)
	if err != nil {
		return fail(c, h.Auth, "catalog.shelf", err)
	}
	return c.JSON(shelf)
}
