package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "mercacomp/internal/log"
)

const sidCookie = "sid"

// ensureSID returns the browser session id, issuing a cookie on first visit.
func ensureSID(c *fiber.Ctx) string {
	if sid, ok := c.Locals(applog.LocalSID).(string); ok && sid != "" {
		return sid
	}
	sid := c.Cookies(sidCookie)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
			Expires:  time.Now().Add(365 * 24 * time.Hour),
		})
	}
	c.Locals(applog.LocalSID, sid)
	return sid
}

// Session attaches the session id to every request so logs can carry it.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ensureSID(c)
		return c.Next()
	}
}
