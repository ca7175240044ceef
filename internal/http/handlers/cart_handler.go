package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "mercacomp/internal/log"
	"mercacomp/internal/services"
	"mercacomp/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
	Auth *services.AuthService
}

type addItemForm struct {
	ProductID int64 `json:"productId" form:"productId"`
	StoreID   int64 `json:"storeId" form:"storeId"`
}

type deltaForm struct {
	Delta int `json:"delta" form:"delta"`
}

func lineParams(c *fiber.Ctx) (productID, storeID int64, ok bool) {
	productID, okP := validate.ID(c.Params("productId"))
	storeID, okS := validate.ID(c.Params("storeId"))
	return productID, storeID, okP && okS
}

// Page renders the cart panel.
func (h *CartHandler) Page(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(c.UserContext(), sid)
	if err != nil {
		applog.Error(c, "cart.page", err, nil)
		return c.Status(fiber.StatusUnprocessableEntity).Render("notfound", fiber.Map{"Message": "Não foi possível carregar seu carrinho."})
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "cart.view", err)
	}
	return c.JSON(cv)
}

func (h *CartHandler) Count(c *fiber.Ctx) error {
	n, err := h.Cart.Count(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "cart.count", err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in addItemForm
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "Requisição inválida.")
	}
	productID, storeID := in.ProductID, in.StoreID
	if productID <= 0 {
		return badRequest(c, "productId", "Produto inválido.")
	}
	if storeID <= 0 {
		return badRequest(c, "storeId", "Supermercado inválido.")
	}

	cv, err := h.Cart.Add(c.UserContext(), sid, productID, storeID)
	if err != nil {
		return fail(c, h.Auth, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": productID, "store_id": storeID, "count": cv.Count})
	return c.JSON(cv)
}

func (h *CartHandler) ChangeQuantity(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, storeID, ok := lineParams(c)
	if !ok {
		return badRequest(c, "line", "Item inválido.")
	}
	var in deltaForm
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "Requisição inválida.")
	}
	delta, ok := validate.Delta(in.Delta)
	if !ok {
		return badRequest(c, "delta", "Quantidade inválida.")
	}

	cv, err := h.Cart.ChangeQuantity(c.UserContext(), sid, productID, storeID, delta)
	if err != nil {
		return fail(c, h.Auth, "cart.quantity", err)
	}
	return c.JSON(cv)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, storeID, ok := lineParams(c)
	if !ok {
		return badRequest(c, "line", "Item inválido.")
	}
	cv, err := h.Cart.Remove(c.UserContext(), sid, productID, storeID)
	if err != nil {
		return fail(c, h.Auth, "cart.remove", err)
	}
	applog.Info(c, "cart.remove", map[string]any{"product_id": productID, "store_id": storeID})
	return c.JSON(cv)
}
