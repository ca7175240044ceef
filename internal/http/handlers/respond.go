package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mercacomp/internal/cart"
	"mercacomp/internal/errs"
	applog "mercacomp/internal/log"
	"mercacomp/internal/services"
)

const loginPath = "/login"

// fail maps err to a JSON answer. An unauthorized error also purges the
// session's credentials and tells the client to go to the login page.
func fail(c *fiber.Ctx, auth *services.AuthService, action string, err error) error {
	ae, known := errs.From(err)

	switch {
	case errs.Is(err, errs.ErrUnauthorized):
		if auth != nil {
			if perr := auth.HandleUnauthorized(c.UserContext(), ensureSID(c)); perr != nil {
				applog.Error(c, action+".purge", perr, nil)
			}
		}
		applog.Security(c, "auth.session.invalid", map[string]any{"from": action})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    ae.Message(),
			"code":     ae.ErrorCode(),
			"redirect": loginPath,
		})
	case !known:
		applog.Error(c, action, err, nil)
	case ae.HTTPCode() >= 500:
		applog.Error(c, action, err, nil)
	case ae.ErrorCode() == "validation":
		applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": ae.Message()})
	default:
		var adm *cart.AdmissionError
		if errs.As(err, &adm) {
			applog.Info(c, "cart.admission.blocked", map[string]any{"store_id": adm.Store.ID, "units": adm.Units})
		} else {
			applog.Info(c, action+".rejected", map[string]any{"code": ae.ErrorCode()})
		}
	}
	return c.Status(ae.HTTPCode()).JSON(fiber.Map{"error": ae.Message(), "code": ae.ErrorCode()})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "code": "validation"})
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// ErrorHandler is the last resort for errors returned by handlers and
// middleware. Details never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := errs.ErrInternal.Message()
	if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
		code = fe.Code
		if code == fiber.StatusNotFound {
			msg = "Página não encontrada."
		} else {
			msg = "Requisição inválida."
		}
	}
	if code >= 500 {
		applog.Error(c, "server.error", err, nil)
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
