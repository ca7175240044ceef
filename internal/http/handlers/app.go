package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	applog "mercacomp/internal/log"
)

const csrfCookie = "csrf_"

type AppConfig struct {
	Templates string
	CSRF      bool
	// RateLimit is requests per minute per IP; 0 disables the global limiter.
	RateLimit int
	// AccessLog enables the fiber access log line per request.
	AccessLog bool
}

// NewApp wires middleware and routes.
func NewApp(cfg AppConfig, deps *Deps) *fiber.App {
	engine := html.New(cfg.Templates, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(Session())
	app.Use(CurrentUser(deps.Auth))
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/healthz")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Muitas requisições. Tente novamente em instantes."})
			},
		}))
	}
	if cfg.CSRF {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "header:X-CSRF-Token",
			CookieName:     csrfCookie,
			CookieSameSite: "Lax",
			CookieSecure:   false, // set true behind HTTPS
			ContextKey:     "csrf",
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				applog.Security(c, "csrf.fail", nil)
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Falha na verificação de segurança. Recarregue a página."})
			},
		}))
	}

	// ---------- Pages ----------
	app.Get("/cart", deps.CartHandler.Page)
	app.Get("/login", deps.AuthHandler.LoginForm)

	// ---------- API ----------
	api := app.Group("/api/v1")

	api.Get("/cart", deps.CartHandler.View)
	api.Get("/cart/count", deps.CartHandler.Count)
	api.Post("/cart/items", deps.CartHandler.Add)
	api.Patch("/cart/items/:productId/:storeId", deps.CartHandler.ChangeQuantity)
	api.Delete("/cart/items/:productId/:storeId", deps.CartHandler.Remove)

	api.Get("/addresses", deps.AddressHandler.List)
	api.Post("/addresses", deps.AddressHandler.Create)
	api.Get("/addresses/selected", deps.AddressHandler.Selected)
	api.Put("/addresses/:id", deps.AddressHandler.Update)
	api.Delete("/addresses/:id", deps.AddressHandler.Delete)
	api.Post("/addresses/:id/select", deps.AddressHandler.Select)
	api.Get("/postal/:cep", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|postal"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.postal.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Muitas consultas de CEP. Tente novamente em instantes."})
		},
	}), deps.AddressHandler.Postal)

	api.Post("/checkout", deps.CheckoutHandler.Begin)
	api.Get("/checkout", deps.CheckoutHandler.Snapshot)
	api.Post("/checkout/submit", RequireUser(deps.Auth), deps.CheckoutHandler.Submit)
	api.Get("/orders", RequireUser(deps.Auth), deps.CheckoutHandler.Orders)

	api.Get("/home", deps.CatalogHandler.Home)
	api.Get("/categories", deps.CatalogHandler.Categories)
	api.Get("/products", deps.CatalogHandler.Products)
	api.Get("/products/:id", deps.CatalogHandler.Product)
	api.Get("/products/:id/compare", deps.CatalogHandler.Compare)
	api.Get("/stores", deps.CatalogHandler.Stores)
	api.Get("/stores/:id", deps.CatalogHandler.Store)
	api.Get("/stores/:id/products", deps.CatalogHandler.Shelf)

	// Auth routes (login throttled)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Muitas tentativas. Tente novamente mais tarde."})
		},
	}), deps.AuthHandler.Login)
	api.Post("/register", deps.AuthHandler.Register)
	api.Post("/logout", deps.AuthHandler.Logout)
	api.Get("/me", deps.AuthHandler.Me)
	api.Put("/me", RequireUser(deps.Auth), deps.AuthHandler.UpdateProfile)

	// Admin
	admin := api.Group("/admin", RequireAdmin(deps.Auth))
	admin.Get("/clients", deps.AdminHandler.Clients)
	admin.Get("/orders", deps.AdminHandler.Orders)
	admin.Get("/reviews", deps.AdminHandler.Reviews)
	admin.Get("/companies", deps.AdminHandler.Companies)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound)
	})

	return app
}
