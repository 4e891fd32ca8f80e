package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gestock/internal/domain"
	"gestock/internal/log"
	"gestock/internal/services"
	"gestock/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type userView struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	ClientID   *int64 `json:"client_id,omitempty"`
	SupplierID *int64 `json:"supplier_id,omitempty"`
}

func viewOf(u *domain.User) userView {
	v := userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	switch p := u.Profile().(type) {
	case domain.ClientProfile:
		v.ClientID = &p.ClientID
	case domain.SupplierProfile:
		v.SupplierID = &p.SupplierID
	}
	return v
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "malformed login request")
	}
	fail := func(reason string) error {
		c.Status(fiber.StatusUnauthorized)
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": reason})
		return c.JSON(fiber.Map{"error": "Invalid email or password"})
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return fail("bad_format")
	}
	if !validate.Password(req.Password) {
		return fail("bad_password_format")
	}

	sid := ensureSID(c)
	u, err := h.Auth.Login(c.UserContext(), sid, email, req.Password)
	if err != nil {
		if err == services.ErrBadCreds {
			return fail("bad_credentials")
		}
		return respondError(c, "auth.login", err)
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	return c.JSON(viewOf(u))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(c.UserContext(), sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(viewOf(currentUser(c)))
}
