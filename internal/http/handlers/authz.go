package handlers

import (
	"github.com/gofiber/fiber/v2"

	"gestock/internal/domain"
	applog "gestock/internal/log"
	"gestock/internal/services"
)

func sessionUser(c *fiber.Ctx, auth *services.AuthService) *domain.User {
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		return u
	}
	sid := c.Cookies("sid")
	if sid == "" {
		return nil
	}
	u, err := auth.CurrentUser(c.UserContext(), sid)
	if err != nil || u == nil {
		return nil
	}
	c.Locals("user", u)
	return u
}

// currentUser is the user RequireUser attached to the request.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireUser enforces that a user is logged in.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionUser(c, auth) == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Please sign in first")
		}
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := sessionUser(c, auth)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Please sign in first")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID, "role": u.Role})
			return fiber.NewError(fiber.StatusForbidden, "Access denied")
		}
		return c.Next()
	}
}

// ownClient is the client a client-profile user is limited to, or 0 when
// the user may act for any client.
func ownClient(c *fiber.Ctx) int64 {
	u := currentUser(c)
	if u == nil {
		return 0
	}
	if p, ok := u.Profile().(domain.ClientProfile); ok {
		return p.ClientID
	}
	return 0
}
