package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "gestock/internal/log"
	"gestock/internal/services"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	return c.Render(tmpl, data)
}

// respondError maps service errors onto status codes. action is the dotted
// name of the operation that failed.
func respondError(c *fiber.Ctx, action string, err error) error {
	var (
		stock *services.StockError
		nf    *services.NotFoundError
		pe    *services.PersistenceError
	)
	switch {
	case errors.As(err, &stock):
		c.Status(fiber.StatusConflict)
		applog.Info(c, action+".rejected", map[string]any{
			"reason":     "insufficient_stock",
			"product_id": stock.ProductID,
			"available":  stock.Available,
			"requested":  stock.Requested,
		})
		return c.JSON(fiber.Map{
			"error":     err.Error(),
			"available": stock.Available,
			"requested": stock.Requested,
			"shortfall": stock.Shortfall(),
		})
	case errors.As(err, &nf):
		c.Status(fiber.StatusNotFound)
		applog.Info(c, action+".rejected", map[string]any{"reason": "not_found", "entity": nf.Entity, "id": nf.ID})
		return c.JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput):
		c.Status(fiber.StatusBadRequest)
		applog.Security(c, "validation.fail", map[string]any{"action": action, "error": err.Error()})
		return c.JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.Status(fiber.StatusForbidden)
		applog.Security(c, "access.denied", map[string]any{"action": action})
		return c.JSON(fiber.Map{"error": "Access denied"})
	}

	c.Status(fiber.StatusInternalServerError)
	applog.Error(c, action+".fail", err, nil)
	msg := "Something went wrong. Please try again."
	if errors.As(err, &pe) {
		msg = "Could not " + pe.Op + ". Please try again."
	}
	return c.JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler logs the failure and answers without internals: JSON under
// /api, the notfound page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code, msg = fe.Code, fe.Message
	}
	c.Status(code)
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if strings.HasPrefix(c.Path(), "/api") {
		return c.JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.SendString(msg)
	}
	return nil
}
