package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	applog "mercacomp/internal/log"
	"mercacomp/internal/remote"
	"mercacomp/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"senha" form:"senha"`
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	ensureSID(c)
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in loginForm
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "Requisição inválida.")
	}

	u, err := h.Auth.Login(c.UserContext(), sid, in.Email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		// a rejected login is not an expired session, so nothing is purged
		return fail(c, nil, "auth.login", err)
	}

	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID, "role": u.Role})
	return c.JSON(fiber.Map{"user": u, "message": "Login de " + u.Name + " funcionou!"})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in remote.Registration
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "Requisição inválida.")
	}
	if err := h.Auth.Register(c.UserContext(), in); err != nil {
		return fail(c, nil, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"email": in.Email})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Cadastro realizado com sucesso!", "redirect": loginPath})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		applog.Error(c, "auth.logout", err, nil)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"redirect": loginPath})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, ok, err := h.Auth.CurrentUser(c.UserContext(), ensureSID(c))
	if err != nil {
		return fail(c, h.Auth, "auth.me", err)
	}
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Faça login para continuar.", "redirect": loginPath})
	}
	return c.JSON(u)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var in remote.ProfileUpdate
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "Requisição inválida.")
	}
	u, err := h.Auth.UpdateProfile(c.UserContext(), ensureSID(c), in)
	if err != nil {
		return fail(c, h.Auth, "auth.profile", err)
	}
	applog.Audit(c, "auth.profile.update", map[string]any{"user_id": u.ID})
	return c.JSON(u)
}
